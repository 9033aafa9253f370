package style

import (
	"encoding/json"
	"fmt"
	"strings"
)

const defaultFeedback = "Improve style consistency and clarity."

// BuildStylePrompt renders the profile as rewriting instructions followed by the notes.
func BuildStylePrompt(p Profile, notes string) string {
	var b strings.Builder
	line := func(format string, args ...any) {
		fmt.Fprintf(&b, format+"\n", args...)
	}

	line("Rewrite the following educational notes according to this style profile:")
	line("")
	line("### User Persona")
	line("%s", p.text("user_persona"))
	line("")
	line("### Tone")
	line("Formality: %v", p.get("tone", "formality", "neutral"))
	line("Voice: %v", p.get("tone", "voice", "active"))
	line("")
	line("### Detail & Abstraction")
	line("Detail complexity: %v", p.get("detail", "complexity_level", "medium"))
	line("Example explanation: %v", p.get("detail", "explain_example", "medium_detail"))
	line("Abstraction level: %v", p.get("abstraction", "complexity_level", "beginner"))
	line("Math verbosity: %v", p.get("abstraction", "math_verbose", "sparse"))
	line("Include glossary: %v", p.get("abstraction", "include_glossary_of_terms", true))
	line("")
	line("### Formatting")
	line("Use bullets: %v", p.get("formatting", "use_bullets", true))
	line("Use numbered lists: %v", p.get("formatting", "use_numbered_lists", false))
	line("Use headings: %v", p.get("formatting", "use_headings", true))
	line("Heading style: %v", p.get("formatting", "heading_style", "##"))
	line("Max bullet length (words): %v", p.get("formatting", "max_bullet_length_words", 25))
	line("Paragraph length: %v", p.get("formatting", "paragraph_length", "short"))
	line("Prefer tables for data: %v", p.get("formatting", "prefer_tables_for_data", false))
	line("")
	line("### Structure")
	line("Include title: %v", p.get("structure", "include_title", true))
	line("Include summary at top: %v", p.get("structure", "include_summary_at_top", true))
	line("Include examples section: %v", p.get("structure", "include_examples_section", true))
	line("Include actions/todos at end: %v", p.get("structure", "include_actions_or_todos_at_end", false))
	line("Section order: %s", joinList(p.get("structure", "section_order", nil)))
	line("")
	line("### Language")
	line("Language: %v", p.get("language", "language", "English"))
	line("Avoid jargon: %v", p.get("language", "avoid_jargon", false))
	line("")
	line("### Stylistic Devices")
	line("Use examples: %v", p.get("stylistic_devices", "use_examples", true))
	line("Use metaphors: %v", p.get("stylistic_devices", "use_metaphors", true))
	line("Use analogies: %v", p.get("stylistic_devices", "use_analogies", true))
	line("Expand acronyms first: %v", p.get("stylistic_devices", "use_acronyms_expanded_first", false))
	line("Use abbreviations: %v", p.get("stylistic_devices", "use_abbreviations", false))
	line("Show action items: %v", p.get("stylistic_devices", "show_action_items", false))
	line("Highlight definitions: %v", p.get("stylistic_devices", "highlight_definitions", "italics"))
	line("")
	line("### Custom Instruction")
	line("%s", p.text("custom_instruction"))
	line("")
	line("Now rewrite the following notes in correct markdown format:")
	line("")
	line("### Base Notes:")
	b.WriteString(strings.TrimSpace(notes))
	return b.String()
}

// BuildEvalPrompt asks for a strict JSON verdict on a draft.
func BuildEvalPrompt(draft string, p Profile) string {
	return fmt.Sprintf(`Evaluate the rewritten text below against the provided style profile.
Give the result as a strict JSON object. Output ONLY a valid JSON following this schema:
{
  "style_adherence_score": (0-10),
  "clarity_score": (0-10),
  "coherence_score": (0-10),
  "overall_feedback": (2-3 sentences)
}

### Style Profile:
%s

### Rewritten Notes:
%s
`, indentJSON(p), draft)
}

// BuildRefinePrompt asks for a new draft that addresses the evaluator feedback.
func BuildRefinePrompt(draft, feedback string, p Profile) string {
	return fmt.Sprintf(`You are improving a rewritten educational note.
Use this feedback to enhance it according to the style profile.

### Feedback from Evaluator:
%s

### Style Profile:
%s

### Text to Improve:
%s

Now rewrite the text again, incorporating the feedback while keeping factual meaning intact.
`, feedback, indentJSON(p), draft)
}

// BuildLearnPrompt asks for a style document describing the example note.
func BuildLearnPrompt(f Features, note string) string {
	return fmt.Sprintf(`You are a precise JSON style learner.
Given the features and an example note written by the user, learn the user's general
note-taking style and fill the style JSON according to the schema below.
Output ONLY a valid JSON following this schema:

%s

Return only the JSON. No commentary.

FEATURES:
%s

NOTE:
%s
`, learnSchema, indentJSON(f), note)
}

const learnSchema = `{
  "tone": {
    "formality": "string enum ['very_formal','formal','neutral','conversational','friendly','playful']",
    "voice": "string enum ['active','passive']"
  },
  "detail": {
    "complexity_level": "string enum ['minimal','low','medium','high','exhaustive']",
    "explain_example": "string enum ['low_detail','medium_detail','high_detail']"
  },
  "abstraction": {
    "complexity_level": "string enum ['beginner','intermediate','expert']",
    "math_verbose": "string enum ['sparse','medium','verbose']"
  },
  "formatting": {
    "use_bullets": "boolean",
    "use_numbered_lists": "boolean",
    "use_headings": "boolean",
    "heading_style": "string enum ['#','##','###','bold','underline']",
    "max_bullet_length_words": "integer",
    "paragraph_length": "string enum ['short','medium','long']",
    "prefer_tables_for_data": "boolean"
  },
  "structure": {
    "include_title": "boolean",
    "include_summary_at_top": "boolean",
    "include_examples_section": "boolean",
    "include_actions_or_todos_at_end": "boolean",
    "section_order": "array of strings"
  },
  "language": {
    "language": "string",
    "avoid_jargon": "boolean"
  },
  "stylistic_devices": {
    "use_examples": "boolean",
    "use_metaphors": "boolean",
    "use_analogies": "boolean",
    "use_acronyms_expanded_first": "boolean",
    "use_abbreviations": "boolean",
    "show_action_items": "boolean",
    "highlight_definitions": "string enum ['none','bold','italics','quotes']"
  }
}`

func indentJSON(v any) string {
	raw, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Sprint(v)
	}
	return string(raw)
}
