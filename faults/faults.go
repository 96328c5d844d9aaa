// Package faults defines the error taxonomy shared by the wire codec, the
// Field/Path extractors, and the generic decoder. Every expected failure in
// the core is one of these categories wrapped in a result.Result; none of
// them is ever raised as a panic by the library itself.
package faults

import (
	"errors"
	"fmt"
)

// Sentinel errors for conditions callers commonly branch on.
var (
	ErrOnlyStringKeys = errors.New("Only string keys are supported for maps")
	ErrEmptyInput     = errors.New("input is empty or contains only whitespace")
	ErrNoInput        = errors.New("no input provided: please specify a file with -i or pipe wire JSON to stdin")
	ErrFileNotFound   = errors.New("file not found")
	ErrFileEmpty      = errors.New("file is empty")
)

// Category classifies a failure.
type Category string

const (
	CategoryShape        Category = "shape"        // runtime variant does not match the requested coercion
	CategoryMissingPath  Category = "missing path" // object key absent or array index out of bounds
	CategoryMalformedTag Category = "malformed tag"
	CategoryKey          Category = "unsupported key"
	CategoryTarget       Category = "unresolvable target"
	CategoryConstruction Category = "construction"
	CategoryInput        Category = "input"
	CategoryOutput       Category = "output"
	CategoryUnknown      Category = "unknown"
)

// Fault is a categorized error with an optional wrapped cause.
type Fault struct {
	Category Category
	Message  string
	Err      error
}

// Error implements the error interface.
func (f *Fault) Error() string {
	if f.Err != nil {
		return fmt.Sprintf("%s: %v", f.Message, f.Err)
	}
	return f.Message
}

// Unwrap returns the wrapped cause, if any.
func (f *Fault) Unwrap() error {
	return f.Err
}

// Is matches two Faults by category, so errors.Is(err, &Fault{Category: c})
// works as a category test.
func (f *Fault) Is(target error) bool {
	t, ok := target.(*Fault)
	if !ok {
		return false
	}
	return f.Category == t.Category
}

// Shape reports a runtime-variant mismatch, naming both the requested and the
// actual kind.
func Shape(wanted, got string) *Fault {
	return &Fault{
		Category: CategoryShape,
		Message:  fmt.Sprintf("expected %s, got %s", wanted, got),
	}
}

// MissingKey reports an absent object key during path navigation.
func MissingKey(key string) *Fault {
	return &Fault{
		Category: CategoryMissingPath,
		Message:  fmt.Sprintf("Missing object key: %s", key),
	}
}

// MissingIndex reports an out-of-bounds array index during path navigation.
func MissingIndex(index int) *Fault {
	return &Fault{
		Category: CategoryMissingPath,
		Message:  fmt.Sprintf("Missing array index: %d", index),
	}
}

// MalformedTag reports a tagged wire object whose payload does not match the
// tag's grammar.
func MalformedTag(tag, detail string) *Fault {
	return &Fault{
		Category: CategoryMalformedTag,
		Message:  fmt.Sprintf("malformed %s value: %s", tag, detail),
	}
}

// Target reports a host type the decoder cannot resolve a descriptor for.
func Target(message string) *Fault {
	return &Fault{Category: CategoryTarget, Message: message}
}

// Construction reports a failure to instantiate a host value, carrying the
// concrete type name in the message.
func Construction(typeName string, err error) *Fault {
	return &Fault{
		Category: CategoryConstruction,
		Message:  fmt.Sprintf("failed to construct %s", typeName),
		Err:      err,
	}
}

// Input wraps an error related to reading CLI or file input.
func Input(message string, err error) *Fault {
	return &Fault{Category: CategoryInput, Message: message, Err: err}
}

// Output wraps an error related to writing CLI output.
func Output(message string, err error) *Fault {
	return &Fault{Category: CategoryOutput, Message: message, Err: err}
}

// UserFriendly returns a message suitable for terminal display.
func UserFriendly(err error) string {
	var fault *Fault
	if errors.As(err, &fault) {
		switch fault.Category {
		case CategoryShape:
			return fmt.Sprintf("Shape mismatch: %s", fault.Message)
		case CategoryMissingPath:
			return fmt.Sprintf("Path error: %s", fault.Message)
		case CategoryMalformedTag:
			return fmt.Sprintf("Wire format error: %s", fault.Error())
		case CategoryKey:
			return fmt.Sprintf("Unsupported key type: %s", fault.Message)
		case CategoryTarget:
			return fmt.Sprintf("Target type error: %s", fault.Message)
		case CategoryConstruction:
			return fmt.Sprintf("Construction error: %s", fault.Error())
		case CategoryInput:
			return fmt.Sprintf("Input error: %s", fault.Message)
		case CategoryOutput:
			return fmt.Sprintf("Output error: %s", fault.Message)
		default:
			return fmt.Sprintf("Error: %s", fault.Error())
		}
	}

	if errors.Is(err, ErrEmptyInput) {
		return "Error: The input is empty. Please provide wire JSON data."
	}
	if errors.Is(err, ErrNoInput) {
		return "Error: No input provided. Please specify a file with -i or pipe wire JSON to stdin."
	}
	if errors.Is(err, ErrFileNotFound) {
		return "Error: The specified file could not be found. Please check the file path."
	}
	if errors.Is(err, ErrFileEmpty) {
		return "Error: The specified file is empty. Please provide a file with wire JSON content."
	}

	return fmt.Sprintf("Error: %v", err)
}
