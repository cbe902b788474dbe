package agent

import (
	"encoding/json"
	"strings"
)

// StringList is a string-array tool parameter that tolerates the documented
// model quirk of array values arriving as their string-encoded form, e.g.
// "['10-K', '10-Q']". Such strings are parsed as JSON after normalizing
// single quotes; if that fails, the fallback is naive comma-splitting.
type StringList []string

// UnmarshalJSON accepts a JSON array of strings or a string encoding one.
func (l *StringList) UnmarshalJSON(data []byte) error {
	var arr []string
	if err := json.Unmarshal(data, &arr); err == nil {
		*l = arr
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	*l = ParseStringList(s)
	return nil
}

// ParseStringList parses a string-encoded array into its elements.
func ParseStringList(s string) StringList {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return nil
	}
	if !strings.HasPrefix(trimmed, "[") || !strings.HasSuffix(trimmed, "]") {
		return StringList{trimmed}
	}

	normalized := strings.ReplaceAll(trimmed, "'", `"`)
	var arr []string
	if err := json.Unmarshal([]byte(normalized), &arr); err == nil {
		return arr
	}

	// Fallback: comma-split the raw contents.
	inner := trimmed[1 : len(trimmed)-1]
	if strings.TrimSpace(inner) == "" {
		return StringList{}
	}
	parts := strings.Split(inner, ",")
	out := make(StringList, 0, len(parts))
	for _, part := range parts {
		part = strings.Trim(part, " \t\"'")
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

// StringListSchema is the JSON Schema fragment for a StringList parameter:
// an array of strings, or a string carrying an encoded array.
func StringListSchema(description string) map[string]any {
	return map[string]any{
		"type":        []string{"array", "string"},
		"items":       map[string]any{"type": "string"},
		"description": description,
	}
}
