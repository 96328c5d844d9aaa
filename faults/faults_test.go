package faults

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFault_Error(t *testing.T) {
	tests := []struct {
		name     string
		fault    *Fault
		expected string
	}{
		{
			name: "fault with wrapped error",
			fault: &Fault{
				Category: CategoryInput,
				Message:  "failed to read input",
				Err:      errors.New("file not found"),
			},
			expected: "failed to read input: file not found",
		},
		{
			name: "fault without wrapped error",
			fault: &Fault{
				Category: CategoryShape,
				Message:  "expected Object, got String",
			},
			expected: "expected Object, got String",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.fault.Error())
		})
	}
}

func TestFault_Unwrap(t *testing.T) {
	cause := errors.New("cause")
	fault := Input("reading failed", cause)
	assert.ErrorIs(t, fault, cause)
}

func TestFault_IsMatchesByCategory(t *testing.T) {
	err := MissingKey("name")
	assert.ErrorIs(t, err, &Fault{Category: CategoryMissingPath})
	assert.NotErrorIs(t, err, &Fault{Category: CategoryShape})
}

func TestConstructors(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		category Category
		message  string
	}{
		{"shape", Shape("Array", "String"), CategoryShape, "expected Array, got String"},
		{"missing key", MissingKey("spells"), CategoryMissingPath, "Missing object key: spells"},
		{"missing index", MissingIndex(3), CategoryMissingPath, "Missing array index: 3"},
		{"malformed tag", MalformedTag("@ref", "missing id"), CategoryMalformedTag, "malformed @ref value: missing id"},
		{"target", Target("cannot decode into chan int"), CategoryTarget, "cannot decode into chan int"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var fault *Fault
			assert.True(t, errors.As(tt.err, &fault))
			assert.Equal(t, tt.category, fault.Category)
			assert.Equal(t, tt.message, fault.Message)
		})
	}
}

func TestUserFriendly(t *testing.T) {
	assert.Equal(t,
		"Path error: Missing object key: name",
		UserFriendly(MissingKey("name")))
	assert.Equal(t,
		"Shape mismatch: expected Long, got Object",
		UserFriendly(Shape("Long", "Object")))
	assert.Equal(t,
		"Error: The input is empty. Please provide wire JSON data.",
		UserFriendly(ErrEmptyInput))
	assert.Equal(t,
		"Error: plain failure",
		UserFriendly(errors.New("plain failure")))
}
