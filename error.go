package ceprep

import (
	"fmt"
	"strings"
)

// ComponentKind names the part of an AsyncAPI document a missing component belongs to.
type ComponentKind string

const (
	ComponentKindDocument      = ComponentKind("AsyncApiDocument")
	ComponentKindComponents    = ComponentKind("components")
	ComponentKindSchema        = ComponentKind("schema")
	ComponentKindMessage       = ComponentKind("message")
	ComponentKindChannel       = ComponentKind("channel")
	ComponentKindMessageTraits = ComponentKind("messageTraits")
)

// ComponentNotFoundError represents a structural component missing from a document.
// It is fatal: the pipeline stops and nothing is written.
type ComponentNotFoundError struct {
	name string
	kind ComponentKind
}

// NewComponentNotFoundError creates a new ComponentNotFoundError.
func NewComponentNotFoundError(name string, kind ComponentKind) error {
	return &ComponentNotFoundError{
		name: name,
		kind: kind,
	}
}

// Name returns the name of the missing component.
func (err *ComponentNotFoundError) Name() string {
	return err.name
}

// Error implements the error interface for ComponentNotFoundError.
func (err *ComponentNotFoundError) Error() string {
	if err.kind == "" {
		return fmt.Sprintf("Component %q not found in the specification.", err.name)
	}
	return fmt.Sprintf("Component %q of type %q not found in the specification.", err.name, err.kind)
}

// ReferenceNotSupportedError represents a $ref found where only inline objects are handled.
// It is recoverable: the affected item is skipped.
type ReferenceNotSupportedError struct {
	path []string
}

// NewReferenceNotSupportedError creates a new ReferenceNotSupportedError for the given path.
func NewReferenceNotSupportedError(path ...string) error {
	return &ReferenceNotSupportedError{
		path: path,
	}
}

// Path returns the dotted location of the reference.
func (err *ReferenceNotSupportedError) Path() string {
	return strings.Join(err.path, ".")
}

// Error implements the error interface for ReferenceNotSupportedError.
func (err *ReferenceNotSupportedError) Error() string {
	return fmt.Sprintf("Reference at %q is not supported. Please use a direct schema object instead.", err.Path())
}

// UnsupportedFormatError represents an error when an input file has an unsupported extension.
type UnsupportedFormatError struct {
	given    string
	expected []string
}

// NewUnsupportedFormatError creates a new UnsupportedFormatError.
func NewUnsupportedFormatError(given string, expected ...string) error {
	return &UnsupportedFormatError{
		given:    given,
		expected: expected,
	}
}

// Error implements the error interface for UnsupportedFormatError.
func (err *UnsupportedFormatError) Error() string {
	return fmt.Sprintf("unsupported file type: %q! Only %s is supported", err.given, strings.Join(err.expected, ", "))
}

// UnsupportedVersionError represents an AsyncAPI version a command cannot handle.
type UnsupportedVersionError struct {
	given    string
	expected string
}

// NewUnsupportedVersionError creates a new UnsupportedVersionError.
func NewUnsupportedVersionError(given, expected string) error {
	return &UnsupportedVersionError{
		given:    given,
		expected: expected,
	}
}

// Error implements the error interface for UnsupportedVersionError.
func (err *UnsupportedVersionError) Error() string {
	return fmt.Sprintf("unsupported AsyncAPI version: %q, this command only supports AsyncAPI %s", err.given, err.expected)
}
