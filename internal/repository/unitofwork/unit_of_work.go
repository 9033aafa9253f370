package unitofwork

import (
	"context"
	"fmt"

	"notes-intelligence-be/internal/repository/contract"
)

type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error

	NoteRepository() contract.NoteRepository
	NoteEmbeddingRepository() contract.NoteEmbeddingRepository
	StyleProfileRepository() contract.StyleProfileRepository
}

// Transaction runs fn between Begin and Commit, rolling back when fn fails.
// Repositories obtained from uow inside fn share the transaction.
func Transaction(ctx context.Context, uow UnitOfWork, fn func() error) error {
	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	if err := fn(); err != nil {
		_ = uow.Rollback()
		return err
	}
	if err := uow.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}
