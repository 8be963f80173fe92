package rendering

import (
	"strings"

	"github.com/jonathan/inspection-reports/internal/bidi"
)

// EscapeLaTeX escapes special LaTeX characters in text
// Special characters: \ { } $ & % # ^ _ ~
// Directional embedding markers are dropped and line breaks become \\.
func EscapeLaTeX(text string) string {
	if text == "" {
		return ""
	}

	var result strings.Builder
	result.Grow(len(text) * 2)

	for _, r := range text {
		switch r {
		case '\\':
			result.WriteString(`\textbackslash{}`)
		case '{':
			result.WriteString(`\{`)
		case '}':
			result.WriteString(`\}`)
		case '$':
			result.WriteString(`\$`)
		case '&':
			result.WriteString(`\&`)
		case '%':
			result.WriteString(`\%`)
		case '#':
			result.WriteString(`\#`)
		case '^':
			result.WriteString(`\textasciicircum{}`)
		case '_':
			result.WriteString(`\_`)
		case '~':
			result.WriteString(`\textasciitilde{}`)
		case '\n':
			result.WriteString(`\\`)
			result.WriteRune('\n')
		case '\r', bidi.LeftToRightEmbedding, bidi.PopDirectionalFormatting:
		default:
			result.WriteRune(r)
		}
	}

	return result.String()
}
