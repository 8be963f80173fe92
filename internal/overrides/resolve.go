// Package overrides resolves the effective CustomContent of a job: the job's
// own override if it has a readable one, otherwise the template default,
// otherwise empty content.
package overrides

import (
	"encoding/json"
	"strings"

	"github.com/jonathan/inspection-reports/internal/types"
)

// ParseOverride decodes a stored override. It reports false for an absent
// or unreadable blob; callers treat both the same way.
func ParseOverride(blob string) (types.CustomContent, bool) {
	if trimmed := strings.TrimSpace(blob); trimmed == "" || trimmed == "null" {
		return types.CustomContent{}, false
	}
	var cc types.CustomContent
	if err := json.Unmarshal([]byte(blob), &cc); err != nil {
		return types.CustomContent{}, false
	}
	return cc, true
}

// Resolve returns the effective content. A readable override replaces the
// template default as a whole; there is no per-field merge.
func Resolve(templateDefault *types.CustomContent, overrideBlob string) types.CustomContent {
	if cc, ok := ParseOverride(overrideBlob); ok {
		return cc
	}
	if templateDefault != nil {
		return templateDefault.Clone()
	}
	return types.CustomContent{}
}

// EncodeOverride serializes content for storage in the job document.
func EncodeOverride(cc types.CustomContent) (string, error) {
	data, err := json.Marshal(cc)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
