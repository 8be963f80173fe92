package templates

import "fmt"

// EnvelopeError is returned when a template definition cannot be used at
// all: it is not JSON, or its id, name or sections are missing or invalid.
type EnvelopeError struct {
	Message string
	Cause   error
}

func (e *EnvelopeError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("invalid template: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("invalid template: %s", e.Message)
}

func (e *EnvelopeError) Unwrap() error {
	return e.Cause
}

// Warning describes a recoverable problem found while parsing. The affected
// section or field was dropped or replaced by a placeholder.
type Warning struct {
	SectionID string
	FieldID   string
	Message   string
}

func (w Warning) String() string {
	switch {
	case w.FieldID != "":
		return fmt.Sprintf("section %s, field %s: %s", w.SectionID, w.FieldID, w.Message)
	case w.SectionID != "":
		return fmt.Sprintf("section %s: %s", w.SectionID, w.Message)
	default:
		return w.Message
	}
}
