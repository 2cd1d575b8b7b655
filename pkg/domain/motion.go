package domain

import (
	"strconv"
	"strings"
)

// Motion is one reversible unit of change: Add moves forward, Sub undoes it.
// Bodies are opaque to the engine; drivers decide how to execute them
// (SQL for relational drivers, Lua for Redis, anything for in-memory drivers).
type Motion struct {
	Name    string `json:"name"`
	Version []int  `json:"version,omitempty"`
	Add     string `json:"-"`
	Sub     string `json:"-"`
	AddPath string `json:"add_path,omitempty"`
	SubPath string `json:"sub_path,omitempty"`
}

// Body returns the half of the motion applied by op.
func (m Motion) Body(op Operation) string {
	if op == Backward {
		return m.Sub
	}
	return m.Add
}

// VersionString renders the version components joined by dots, without padding.
func (m Motion) VersionString() string {
	parts := make([]string, len(m.Version))
	for i, v := range m.Version {
		parts[i] = strconv.Itoa(v)
	}
	return strings.Join(parts, ".")
}

// Step is a single unit of work handed to a driver.
type Step struct {
	// Index is the motion's position in the catalog.
	Index     int
	Name      string
	Operation Operation
	Body      string
}

// NewStep builds the step that applies op on the motion at index.
func NewStep(index int, m Motion, op Operation) Step {
	return Step{
		Index:     index,
		Name:      m.Name,
		Operation: op,
		Body:      m.Body(op),
	}
}
