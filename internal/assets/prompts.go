// Package assets provides embedded static assets for the application.
//
// Prompt texts are stored as files under prompts/ and embedded at compile
// time, keeping model-facing wording out of the Go source and reviewable as
// plain text.
package assets

import (
	"bytes"
	_ "embed"
	"text/template"
)

// --- Static prompts (no dynamic data) ---

// StorySystemPrompt is the storyteller persona and formatting rules sent as
// the system instruction on every story request. The tone (adult-oriented
// humor) is fixed per deployment, not user-configurable.
//
//go:embed prompts/story-system.txt
var StorySystemPrompt string

// LabelingInstruction asks the model for object names with normalized center
// coordinates and pins down the exact JSON array shape expected back.
//
//go:embed prompts/labeling-instruction.txt
var LabelingInstruction string

// --- Dynamic prompt templates ---

//go:embed prompts/story-instruction.txt
var storyInstructionTemplate string

// Pre-parsed at init. template.Must panics on malformed templates, catching
// errors at program startup rather than at call time.
var storyInstructionTmpl = template.Must(template.New("story").Parse(storyInstructionTemplate))

// StoryPromptData holds the dynamic data injected into the story instruction.
type StoryPromptData struct {
	// Hint is an optional scene description from the user. Empty string
	// renders the instruction without the hint block.
	Hint string
}

// RenderStoryInstruction renders the story instruction with the optional
// user-provided scene hint.
func RenderStoryInstruction(hint string) string {
	var buf bytes.Buffer
	// Execution errors are not expected with this template; return whatever
	// was rendered.
	_ = storyInstructionTmpl.Execute(&buf, StoryPromptData{Hint: hint})
	return buf.String()
}
