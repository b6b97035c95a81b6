package textgen

import (
	"encoding/json"
	"fmt"
	"strings"
)

// StripFences removes markdown code-fence lines (``` or ```json) that
// models commonly wrap JSON payloads in.
func StripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.Contains(s, "```") {
		return s
	}

	lines := strings.Split(s, "\n")
	kept := make([]string, 0, len(lines))
	for _, line := range lines {
		if strings.HasPrefix(strings.TrimSpace(line), "```") {
			continue
		}
		kept = append(kept, line)
	}
	return strings.TrimSpace(strings.Join(kept, "\n"))
}

// DecodeObject decodes model output into v, expecting a single JSON
// object. Markdown fences are stripped and a light repair pass is applied
// before giving up. Returns ErrMalformed when nothing decodable remains.
func DecodeObject(raw string, v any) error {
	return decode(raw, v, '{')
}

// DecodeArray decodes model output into v, expecting a JSON array.
func DecodeArray(raw string, v any) error {
	return decode(raw, v, '[')
}

func decode(raw string, v any, open byte) error {
	cleaned := StripFences(raw)
	if cleaned == "" {
		return fmt.Errorf("%w: empty payload", ErrMalformed)
	}

	// Models sometimes preface the payload with prose; decode from the
	// first opening bracket onward.
	if idx := strings.IndexByte(cleaned, open); idx > 0 {
		cleaned = cleaned[idx:]
	}

	if err := json.Unmarshal([]byte(cleaned), v); err == nil {
		return nil
	}

	if err := json.Unmarshal([]byte(repairJSON(cleaned)), v); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return nil
}

// repairJSON attempts to fix common JSON formatting issues from LLM
// responses. It specifically handles missing opening quotes before keys,
// e.g. `, type":` -> `, "type":`.
func repairJSON(s string) string {
	result := []rune(s)
	fixed := make([]rune, 0, len(result)+32)

	i := 0
	for i < len(result) {
		ch := result[i]

		if ch != '{' && ch != ',' {
			fixed = append(fixed, ch)
			i++
			continue
		}

		fixed = append(fixed, ch)
		i++

		for i < len(result) && (result[i] == ' ' || result[i] == '\n' || result[i] == '\t') {
			fixed = append(fixed, result[i])
			i++
		}

		if i >= len(result) || result[i] == '"' || !isLetter(result[i]) {
			continue
		}

		keyStart := i
		for i < len(result) && (isLetter(result[i]) || result[i] == '_') {
			i++
		}

		// A bare key followed by ": is missing its opening quote.
		if i+1 < len(result) && result[i] == '"' && result[i+1] == ':' {
			fixed = append(fixed, '"')
		}
		fixed = append(fixed, result[keyStart:i]...)
	}

	return string(fixed)
}

// isLetter returns true if the rune is an ASCII letter.
func isLetter(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}
