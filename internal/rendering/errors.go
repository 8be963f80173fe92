// Package rendering turns assembled reports into LaTeX source, XLSX workbooks or JSON.
package rendering

import "fmt"

// TemplateError represents an error parsing or executing a LaTeX template
type TemplateError struct {
	Message string
	Cause   error
}

func (e *TemplateError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("template error: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("template error: %s", e.Message)
}

func (e *TemplateError) Unwrap() error {
	return e.Cause
}

// RenderError represents a general rendering failure
type RenderError struct {
	Format  string
	Message string
	Cause   error
}

func (e *RenderError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s render error: %s: %v", e.Format, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s render error: %s", e.Format, e.Message)
}

func (e *RenderError) Unwrap() error {
	return e.Cause
}

// UnsupportedFormatError is returned by ForFormat for unknown formats.
type UnsupportedFormatError struct {
	Format string
}

func (e *UnsupportedFormatError) Error() string {
	return fmt.Sprintf("unsupported report format %q", e.Format)
}
