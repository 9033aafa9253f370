package style

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// LoadProfile reads a profile from a YAML or JSON file. A document wrapped
// in a top-level "profile" key is unwrapped.
func LoadProfile(path string) (Profile, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read profile: %w", err)
	}
	return ParseProfile(raw)
}

// ParseProfile decodes YAML, which also covers JSON documents.
func ParseProfile(raw []byte) (Profile, error) {
	var doc map[string]any
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("parse profile: %w", err)
	}
	if doc == nil {
		return nil, fmt.Errorf("parse profile: empty document")
	}
	if inner, ok := doc["profile"].(map[string]any); ok && len(doc) == 1 {
		doc = inner
	}
	return Profile(doc), nil
}

// EncodeProfile renders a profile as YAML.
func EncodeProfile(p Profile) ([]byte, error) {
	return yaml.Marshal(map[string]any(p))
}
