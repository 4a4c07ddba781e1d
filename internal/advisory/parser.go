package advisory

import (
	"encoding/json"
	"fmt"
	"strings"
	"unicode/utf8"
)

// excerptLen bounds how much of a bad completion ends up in errors and logs.
const excerptLen = 200

// MalformedError reports a completion that could not be parsed as JSON.
type MalformedError struct {
	Reason  string
	Excerpt string
}

func (e *MalformedError) Error() string {
	return fmt.Sprintf("malformed advisory response: %s: %q", e.Reason, e.Excerpt)
}

// ExtractJSON pulls the JSON object out of a raw completion. Markdown code
// fences are stripped, then everything from the first '{' to the last '}'
// is taken as the candidate document.
func ExtractJSON(raw string) ([]byte, error) {
	cleaned := strings.ReplaceAll(raw, "```json", "")
	cleaned = strings.ReplaceAll(cleaned, "```", "")
	cleaned = strings.TrimSpace(cleaned)

	start := strings.Index(cleaned, "{")
	end := strings.LastIndex(cleaned, "}")
	if start < 0 || end < start {
		return nil, &MalformedError{Reason: "no JSON object found", Excerpt: excerpt(raw)}
	}

	candidate := []byte(cleaned[start : end+1])
	if !json.Valid(candidate) {
		return nil, &MalformedError{Reason: "invalid JSON", Excerpt: excerpt(raw)}
	}
	return candidate, nil
}

// ParsePlan extracts and decodes an assignment plan from a raw completion.
func ParsePlan(raw string) (*PlanResponse, error) {
	doc, err := ExtractJSON(raw)
	if err != nil {
		return nil, err
	}
	var plan PlanResponse
	if err := json.Unmarshal(doc, &plan); err != nil {
		return nil, &MalformedError{Reason: err.Error(), Excerpt: excerpt(raw)}
	}
	return &plan, nil
}

// excerpt trims on a rune boundary so a multi-byte character in the
// completion is never cut in half.
func excerpt(raw string) string {
	if len(raw) <= excerptLen {
		return raw
	}
	cut := excerptLen
	for cut > 0 && !utf8.RuneStart(raw[cut]) {
		cut--
	}
	return raw[:cut]
}
