package contract

import (
	"context"

	"notes-intelligence-be/internal/entity"
)

type StyleProfileRepository interface {
	// FindCurrent returns the most recently updated profile, or nil if none exists.
	FindCurrent(ctx context.Context) (*entity.StyleProfile, error)
	// Replace deletes every stored profile and saves p as the only one.
	Replace(ctx context.Context, p *entity.StyleProfile) error
}
