package typefacts

import (
	"fmt"

	"fortio.org/safecast"
)

// TypeID identifies a type entry inside a Table.
type TypeID uint32

// NoTypeID marks the absence of a type.
const NoTypeID TypeID = 0

// IsValid reports whether the id references a real table entry.
func (id TypeID) IsValid() bool {
	return id != NoTypeID
}

// Facts is the static capability record the checker consults per type.
// The analyzer never infers these; they arrive from the external type system.
type Facts struct {
	// Copy marks types whose values are duplicated instead of moved.
	Copy bool `msgpack:"copy"`
	// SendSafe marks types whose values may be moved into another thread.
	SendSafe bool `msgpack:"send_safe"`
	// ShareSafe marks types that may be referenced from several threads at once.
	ShareSafe bool `msgpack:"share_safe"`
}

func (f Facts) String() string {
	return fmt.Sprintf("copy=%t send=%t share=%t", f.Copy, f.SendSafe, f.ShareSafe)
}

// and combines capabilities structurally: a composite is only as capable
// as its least capable field.
func (f Facts) and(other Facts) Facts {
	return Facts{
		Copy:      f.Copy && other.Copy,
		SendSafe:  f.SendSafe && other.SendSafe,
		ShareSafe: f.ShareSafe && other.ShareSafe,
	}
}

type entry struct {
	Name   string   `msgpack:"name"`
	Facts  Facts    `msgpack:"facts"`
	Fields []TypeID `msgpack:"fields,omitempty"`
	// Leaf entries carry their facts verbatim; composite entries recompute
	// them from Fields so late SetFields calls stay consistent.
	Leaf bool `msgpack:"leaf"`
}

// Table stores the per-type capability facts for one analysis run.
// It is read-only once analysis starts and may be shared between workers.
type Table struct {
	Entries []entry `msgpack:"entries"`
	byName  map[string]TypeID
}

// NewTable builds an empty facts table with the zero sentinel slot reserved.
func NewTable() *Table {
	return &Table{
		Entries: []entry{{}},
		byName:  make(map[string]TypeID),
	}
}

func (t *Table) add(e entry) TypeID {
	value, err := safecast.Conv[uint32](len(t.Entries))
	if err != nil {
		panic(fmt.Errorf("type table overflow: %w", err))
	}
	id := TypeID(value)
	t.Entries = append(t.Entries, e)
	if t.byName == nil {
		t.byName = make(map[string]TypeID)
	}
	if _, exists := t.byName[e.Name]; !exists {
		t.byName[e.Name] = id
	}
	return id
}

// Scalar registers a leaf type with explicit facts.
func (t *Table) Scalar(name string, facts Facts) TypeID {
	return t.add(entry{Name: name, Facts: facts, Leaf: true})
}

// Composite registers a type whose capabilities are the AND of its fields.
func (t *Table) Composite(name string, fields ...TypeID) TypeID {
	return t.add(entry{Name: name, Fields: fields})
}

// SharedAtomic registers an atomically reference-counted sharing wrapper:
// safe to move and to share across threads, never Copy, further limited by
// the element type's own facts.
func (t *Table) SharedAtomic(name string, elem TypeID) TypeID {
	id := t.add(entry{Name: name, Facts: Facts{SendSafe: true, ShareSafe: true}, Fields: []TypeID{elem}, Leaf: true})
	return id
}

// SharedNonAtomic registers a non-atomic sharing wrapper: its reference count
// is unsynchronized, so it is neither move-safe nor share-safe across threads
// regardless of the element type.
func (t *Table) SharedNonAtomic(name string, elem TypeID) TypeID {
	return t.add(entry{Name: name, Facts: Facts{}, Fields: []TypeID{elem}, Leaf: true})
}

// SetFields attaches field types to a composite after registration, allowing
// recursive type shapes.
func (t *Table) SetFields(id TypeID, fields ...TypeID) {
	if t == nil || !id.IsValid() || int(id) >= len(t.Entries) {
		return
	}
	e := &t.Entries[id]
	if e.Leaf {
		return
	}
	e.Fields = fields
}

// FactsOf resolves the effective facts for a type, combining composite fields
// structurally. Unknown ids get the most restrictive facts.
func (t *Table) FactsOf(id TypeID) Facts {
	if t == nil {
		return Facts{}
	}
	return t.factsOf(id, make(map[TypeID]struct{}))
}

func (t *Table) factsOf(id TypeID, visited map[TypeID]struct{}) Facts {
	if !id.IsValid() || int(id) >= len(t.Entries) {
		return Facts{}
	}
	// Recursive shapes contribute nothing beyond what the cycle already holds.
	if _, seen := visited[id]; seen {
		return Facts{Copy: true, SendSafe: true, ShareSafe: true}
	}
	visited[id] = struct{}{}
	e := t.Entries[id]
	if e.Leaf {
		facts := e.Facts
		// Sharing wrappers wrap exactly one element; the wrapper cannot grant
		// capabilities the element lacks, except Copy which it never has.
		for _, field := range e.Fields {
			inner := t.factsOf(field, visited)
			facts.SendSafe = facts.SendSafe && inner.SendSafe
			facts.ShareSafe = facts.ShareSafe && inner.ShareSafe
		}
		return facts
	}
	facts := Facts{Copy: true, SendSafe: true, ShareSafe: true}
	if len(e.Fields) == 0 {
		return e.Facts
	}
	for _, field := range e.Fields {
		facts = facts.and(t.factsOf(field, visited))
	}
	return facts
}

// IsCopy reports whether values of the type duplicate on move.
func (t *Table) IsCopy(id TypeID) bool {
	return t.FactsOf(id).Copy
}

// Name returns the registered display name for the type.
func (t *Table) Name(id TypeID) string {
	if t == nil || !id.IsValid() || int(id) >= len(t.Entries) {
		return "<unknown>"
	}
	return t.Entries[id].Name
}

// Lookup finds a type id by display name.
func (t *Table) Lookup(name string) TypeID {
	if t == nil {
		return NoTypeID
	}
	return t.byName[name]
}

// Len returns the number of registered types, excluding the sentinel.
func (t *Table) Len() int {
	if t == nil || len(t.Entries) == 0 {
		return 0
	}
	return len(t.Entries) - 1
}

// RebuildIndex restores the name lookup map after deserialization.
func (t *Table) RebuildIndex() {
	if t == nil {
		return
	}
	t.byName = make(map[string]TypeID, len(t.Entries))
	for idx := range t.Entries {
		if idx == 0 {
			continue
		}
		value, err := safecast.Conv[uint32](idx)
		if err != nil {
			panic(fmt.Errorf("type table overflow: %w", err))
		}
		name := t.Entries[idx].Name
		if _, exists := t.byName[name]; !exists {
			t.byName[name] = TypeID(value)
		}
	}
}
