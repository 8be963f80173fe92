package bidi

import "strings"

// Directional embedding markers placed around LTR tokens in mixed mode.
const (
	LeftToRightEmbedding     = '\u202A'
	PopDirectionalFormatting = '\u202C'
)

// Reorder concatenates runs in reverse order, reversing the characters of
// every RTL run. Other runs are emitted unchanged.
func Reorder(runs []Run) string {
	var sb strings.Builder
	for i := len(runs) - 1; i >= 0; i-- {
		run := runs[i]
		if run.Class == ClassRTL {
			sb.WriteString(reverseRunes(run.Text))
			continue
		}
		sb.WriteString(run.Text)
	}
	return sb.String()
}

// ReorderMixed is Reorder for paragraphs that embed Latin tokens in RTL
// text. Each LTR run is wrapped in LRE/PDF markers so its internal order
// survives downstream handling.
func ReorderMixed(runs []Run) string {
	var sb strings.Builder
	for i := len(runs) - 1; i >= 0; i-- {
		run := runs[i]
		switch run.Class {
		case ClassRTL:
			sb.WriteString(reverseRunes(run.Text))
		case ClassLTR:
			sb.WriteRune(LeftToRightEmbedding)
			sb.WriteString(run.Text)
			sb.WriteRune(PopDirectionalFormatting)
		default:
			sb.WriteString(run.Text)
		}
	}
	return sb.String()
}

// Visual returns s in visual order. Strings without RTL content are
// returned unchanged. Lines are reordered independently.
func Visual(s string) string {
	return shapeLines(s, Reorder)
}

// VisualMixed is Visual using ReorderMixed.
func VisualMixed(s string) string {
	return shapeLines(s, ReorderMixed)
}

// StripMarkers removes the embedding markers added by ReorderMixed.
func StripMarkers(s string) string {
	if !strings.ContainsAny(s, string([]rune{LeftToRightEmbedding, PopDirectionalFormatting})) {
		return s
	}
	return strings.Map(func(r rune) rune {
		if r == LeftToRightEmbedding || r == PopDirectionalFormatting {
			return -1
		}
		return r
	}, s)
}

func shapeLines(s string, reorder func([]Run) string) string {
	if !HasRTL(s) {
		return s
	}
	if !strings.Contains(s, "\n") {
		return reorder(Segment(s))
	}
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		if HasRTL(line) {
			lines[i] = reorder(Segment(line))
		}
	}
	return strings.Join(lines, "\n")
}

func reverseRunes(s string) string {
	runes := []rune(s)
	for i, j := 0, len(runes)-1; i < j; i, j = i+1, j-1 {
		runes[i], runes[j] = runes[j], runes[i]
	}
	return string(runes)
}
