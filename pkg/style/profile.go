// Package style learns a personal writing style from example notes and
// rewrites notes to match it.
package style

import (
	"fmt"
	"strings"

	"notes-intelligence-be/pkg/pipeline"
)

// Profile is the nested style document. Null leaves mean "no preference".
type Profile map[string]any

// Sections the learner must always produce.
var RequiredSections = []string{"detail", "abstraction", "formatting", "structure", "language", "stylistic_devices"}

// DefaultProfile returns the empty profile with every known field set to nil.
func DefaultProfile() Profile {
	null := func(keys ...string) map[string]any {
		m := make(map[string]any, len(keys))
		for _, k := range keys {
			m[k] = nil
		}
		return m
	}
	return Profile{
		"profile_id":   nil,
		"name":         nil,
		"user_persona": nil,
		"description":  nil,
		"created_at":   nil,
		"updated_at":   nil,
		"tone":         null("formality", "voice", "use_examples"),
		"detail":       null("complexity_level", "explain_example"),
		"abstraction":  null("complexity_level", "include_glossary_of_terms", "math_verbose"),
		"formatting": null("use_bullets", "use_numbered_lists", "use_headings", "heading_style", "bullet_style",
			"max_bullet_length_words", "paragraph_length", "prefer_tables_for_data", "emphasize_keywords"),
		"structure": null("include_title", "include_summary_at_top", "summary_style", "include_key_terms_section",
			"include_examples_section", "include_actions_or_todos_at_end", "section_order", "default_section_order"),
		"language": null("language", "complexity", "preferred_level_explain_like", "avoid_jargon"),
		"stylistic_devices": null("use_examples", "use_metaphors", "use_analogies", "use_acronyms_expanded_first",
			"use_abbreviations", "show_action_items", "highlight_definitions"),
		"custom_instruction": nil,
	}
}

// Merge layers learned values over the current profile without touching either.
func Merge(current, learned Profile) Profile {
	return Profile(pipeline.DeepMerge(current, learned))
}

func (p Profile) section(name string) map[string]any {
	if s, ok := p[name].(map[string]any); ok {
		return s
	}
	return map[string]any{}
}

// get returns the value at section.key, or def when it is absent or null.
func (p Profile) get(section, key string, def any) any {
	if v, ok := p.section(section)[key]; ok && v != nil {
		return v
	}
	return def
}

func (p Profile) text(key string) string {
	if v, ok := p[key]; ok && v != nil {
		return fmt.Sprint(v)
	}
	return ""
}

func joinList(v any) string {
	switch t := v.(type) {
	case []string:
		return strings.Join(t, ", ")
	case []any:
		parts := make([]string, 0, len(t))
		for _, x := range t {
			parts = append(parts, fmt.Sprint(x))
		}
		return strings.Join(parts, ", ")
	case nil:
		return ""
	default:
		return fmt.Sprint(t)
	}
}
