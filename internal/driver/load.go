package driver

import (
	"fmt"

	"oxcheck/internal/ir"
	"oxcheck/internal/typefacts"
)

// LoadProgram reads a serialized program envelope produced by a front end.
// The analyzer defines no textual syntax; this is its only input surface.
func LoadProgram(path string) (*ir.Program, *typefacts.Table, error) {
	program, facts, err := ir.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("load program %s: %w", path, err)
	}
	return program, facts, nil
}
