package dto

import (
	"notes-intelligence-be/pkg/pipeline"

	"github.com/google/uuid"
)

// RunPipelineRequest starts one workflow run. InputSource is a string or a
// list of strings (URLs, file paths or literal text).
type RunPipelineRequest struct {
	InputSource     pipeline.Sources `json:"input_source" validate:"required,min=1,dive,required"`
	UserInstruction string           `json:"user_instruction"`
	StyleProfile    map[string]any   `json:"style_profile"`
	// RunId lets a client subscribe to progress before starting the run.
	RunId string `json:"run_id" validate:"omitempty,max=64"`
}

type RunPipelineResponse struct {
	RunId  string          `json:"run_id"`
	NoteId *uuid.UUID      `json:"note_id"`
	Title  string          `json:"title"`
	State  *pipeline.State `json:"state"`
}
