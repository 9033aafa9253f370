package llm

import (
	"encoding/json"
	"errors"
	"regexp"
	"strings"
)

var (
	fenceRe  = regexp.MustCompile("(?s)^```[a-zA-Z]*\\s*(.*?)\\s*```$")
	objectRe = regexp.MustCompile(`(?s)\{.*\}`)
)

// ErrNoJSONObject means the model output held nothing decodable as a JSON object.
var ErrNoJSONObject = errors.New("no JSON object in model output")

// StripFences removes a surrounding markdown code fence if present.
func StripFences(raw string) string {
	s := strings.TrimSpace(raw)
	if m := fenceRe.FindStringSubmatch(s); m != nil {
		return strings.TrimSpace(m[1])
	}
	return s
}

// ParseJSONObject decodes the first JSON object found in model output.
// It tries the fence-stripped text as-is, then the outermost {...} span.
func ParseJSONObject(raw string) (map[string]any, error) {
	cleaned := StripFences(raw)

	var out map[string]any
	if err := json.Unmarshal([]byte(cleaned), &out); err == nil && out != nil {
		return out, nil
	}

	candidate := objectRe.FindString(cleaned)
	if candidate == "" {
		return nil, ErrNoJSONObject
	}
	out = nil
	if err := json.Unmarshal([]byte(candidate), &out); err != nil || out == nil {
		return nil, ErrNoJSONObject
	}
	return out, nil
}
