package dto

import "time"

type StyleProfileResponse struct {
	Profile   map[string]any `json:"profile"`
	UpdatedAt *time.Time     `json:"updated_at"`
}

type ReplaceStyleProfileRequest struct {
	Profile map[string]any `json:"profile" validate:"required"`
}

type LearnStyleProfileRequest struct {
	Note string `json:"note" validate:"required,min=20"`
}
