package domain

import "fmt"

// Operation selects which half of a motion is applied and which way the cursor moves.
// It is a closed set: Forward and Backward are the only valid values.
type Operation int8

const (
	// Forward applies the "add" half of a motion and moves the cursor up by one.
	Forward Operation = +1
	// Backward applies the "sub" half of a motion and moves the cursor down by one.
	Backward Operation = -1
)

// Resolve picks the operation that moves a cursor by delta.
// A zero delta resolves to Forward.
func Resolve(delta int) Operation {
	if delta >= 0 {
		return Forward
	}
	return Backward
}

// Unit is the cursor change caused by one step of this operation.
func (o Operation) Unit() int {
	return int(o)
}

// Name is the selector used in motion file names ("add" or "sub").
func (o Operation) Name() string {
	if o == Backward {
		return "sub"
	}
	return "add"
}

func (o Operation) String() string {
	return o.Name()
}

// MarshalText renders the operation by name in JSON and YAML output.
func (o Operation) MarshalText() ([]byte, error) {
	return []byte(o.Name()), nil
}

// UnmarshalText accepts the names produced by MarshalText.
func (o *Operation) UnmarshalText(text []byte) error {
	switch string(text) {
	case "add":
		*o = Forward
	case "sub":
		*o = Backward
	default:
		return fmt.Errorf("unknown operation %q", text)
	}
	return nil
}
