package unitofwork

import (
	"context"
	"errors"
	"testing"

	"notes-intelligence-be/internal/repository/contract"

	"github.com/stretchr/testify/assert"
)

type scriptedUoW struct {
	beginErr, commitErr error
	calls               []string
}

func (u *scriptedUoW) Begin(context.Context) error {
	u.calls = append(u.calls, "begin")
	return u.beginErr
}
func (u *scriptedUoW) Commit() error {
	u.calls = append(u.calls, "commit")
	return u.commitErr
}
func (u *scriptedUoW) Rollback() error {
	u.calls = append(u.calls, "rollback")
	return nil
}
func (u *scriptedUoW) NoteRepository() contract.NoteRepository                   { return nil }
func (u *scriptedUoW) NoteEmbeddingRepository() contract.NoteEmbeddingRepository { return nil }
func (u *scriptedUoW) StyleProfileRepository() contract.StyleProfileRepository   { return nil }

func TestTransaction(t *testing.T) {
	boom := errors.New("boom")

	tests := []struct {
		name      string
		uow       *scriptedUoW
		fnErr     error
		wantErr   error
		wantCalls []string
	}{
		{"commit", &scriptedUoW{}, nil, nil, []string{"begin", "fn", "commit"}},
		{"fn fails", &scriptedUoW{}, boom, boom, []string{"begin", "fn", "rollback"}},
		{"begin fails", &scriptedUoW{beginErr: boom}, nil, boom, []string{"begin"}},
		{"commit fails", &scriptedUoW{commitErr: boom}, nil, boom, []string{"begin", "fn", "commit"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Transaction(context.Background(), tt.uow, func() error {
				tt.uow.calls = append(tt.uow.calls, "fn")
				return tt.fnErr
			})

			if tt.wantErr == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.wantErr)
			}
			assert.Equal(t, tt.wantCalls, tt.uow.calls)
		})
	}
}
