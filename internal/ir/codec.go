package ir

import (
	"fmt"
	"os"

	"github.com/vmihailenco/msgpack/v5"

	"oxcheck/internal/typefacts"
)

// FileSchema is bumped whenever the envelope layout changes, so stale
// program files fail loudly instead of decoding garbage.
const FileSchema uint16 = 1

// Envelope is the on-disk container a front end hands to the analyzer:
// the program arena plus the type facts table it references.
type Envelope struct {
	Schema  uint16           `msgpack:"schema"`
	Program *Program         `msgpack:"program"`
	Facts   *typefacts.Table `msgpack:"facts"`
}

// Encode serializes an envelope with the current schema stamped in.
func Encode(program *Program, facts *typefacts.Table) ([]byte, error) {
	env := Envelope{Schema: FileSchema, Program: program, Facts: facts}
	data, err := msgpack.Marshal(&env)
	if err != nil {
		return nil, fmt.Errorf("encode program: %w", err)
	}
	return data, nil
}

// Decode parses an envelope and validates its schema.
func Decode(data []byte) (*Program, *typefacts.Table, error) {
	var env Envelope
	if err := msgpack.Unmarshal(data, &env); err != nil {
		return nil, nil, fmt.Errorf("decode program: %w", err)
	}
	if env.Schema != FileSchema {
		return nil, nil, fmt.Errorf("program file schema %d, expected %d", env.Schema, FileSchema)
	}
	if env.Program == nil {
		return nil, nil, fmt.Errorf("program file has no program section")
	}
	if env.Facts == nil {
		env.Facts = typefacts.NewTable()
	}
	env.Facts.RebuildIndex()
	return env.Program, env.Facts, nil
}

// WriteFile encodes and writes a program file.
func WriteFile(path string, program *Program, facts *typefacts.Table) error {
	data, err := Encode(program, facts)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// ReadFile loads and decodes a program file.
func ReadFile(path string) (*Program, *typefacts.Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, err
	}
	return Decode(data)
}
