// Package bidi reorders mixed right-to-left and left-to-right text for
// renderers that only place glyphs left to right.
package bidi

import (
	"strings"
	"unicode"
)

// Class is the character class of a run.
type Class int

const (
	// ClassRTL covers code points in the Hebrew block.
	ClassRTL Class = iota
	// ClassLTR covers ASCII letters, digits and the token characters @ . : / -
	ClassLTR
	// ClassSpace covers whitespace.
	ClassSpace
	// ClassOther covers everything else. Each such character is its own run.
	ClassOther
)

func (c Class) String() string {
	switch c {
	case ClassRTL:
		return "rtl"
	case ClassLTR:
		return "ltr"
	case ClassSpace:
		return "space"
	default:
		return "other"
	}
}

// Run is a maximal substring of a single class.
type Run struct {
	Class Class
	Text  string
}

const (
	hebrewFirst = '\u0590'
	hebrewLast  = '\u05FF'
)

// IsRTL reports whether r is in the Hebrew block.
func IsRTL(r rune) bool {
	return r >= hebrewFirst && r <= hebrewLast
}

func isLTRToken(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		return true
	}
	switch r {
	case '@', '.', ':', '/', '-':
		return true
	}
	return false
}

func classify(r rune) Class {
	switch {
	case IsRTL(r):
		return ClassRTL
	case isLTRToken(r):
		return ClassLTR
	case unicode.IsSpace(r):
		return ClassSpace
	default:
		return ClassOther
	}
}

// Segment splits s into runs in logical order.
func Segment(s string) []Run {
	if s == "" {
		return nil
	}

	var runs []Run
	var current strings.Builder
	currentClass := ClassOther
	open := false

	flush := func() {
		if open {
			runs = append(runs, Run{Class: currentClass, Text: current.String()})
			current.Reset()
			open = false
		}
	}

	for _, r := range s {
		c := classify(r)
		if open && (c != currentClass || c == ClassOther) {
			flush()
		}
		if !open {
			currentClass = c
			open = true
		}
		current.WriteRune(r)
	}
	flush()

	return runs
}

// HasRTL reports whether s contains any right-to-left script.
func HasRTL(s string) bool {
	for _, r := range s {
		if IsRTL(r) {
			return true
		}
	}
	return false
}
