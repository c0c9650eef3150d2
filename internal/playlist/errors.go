package playlist

import "fmt"

// MalformedOutputError means the model's response text was not parseable JSON
// at all, even after stripping code fences.
type MalformedOutputError struct {
	Message string
	Cause   error
}

func (e *MalformedOutputError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("malformed output: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("malformed output: %s", e.Message)
}

func (e *MalformedOutputError) Unwrap() error {
	return e.Cause
}

// InvalidSchemaError means the response parsed as JSON but failed shape
// validation: missing name/description, an empty track list, or a track with
// a blank name or artist.
type InvalidSchemaError struct {
	Message string
	Cause   error
}

func (e *InvalidSchemaError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("invalid schema: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("invalid schema: %s", e.Message)
}

func (e *InvalidSchemaError) Unwrap() error {
	return e.Cause
}
