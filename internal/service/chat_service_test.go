package service

import (
	"context"
	"testing"

	"notes-intelligence-be/internal/dto"
	"notes-intelligence-be/internal/pkg/logger"
	"notes-intelligence-be/internal/repository/contract"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChatGlobalUsesTopFive(t *testing.T) {
	db := newStore()
	a := seedNote(db, "a")
	for i := 0; i < 7; i++ {
		db.similar = append(db.similar, chunk(a.Id, i, "chunk", 0.9))
	}
	model := &fakeLLM{reply: "  Glucose.  "}
	svc := NewChatService(db, &fakeEmbedder{}, model, logger.NewNopLogger())

	res, err := svc.Chat(context.Background(), &dto.ChatRequest{Question: "What is produced?"})
	require.NoError(t, err)

	assert.Equal(t, "Glucose.", res.Answer)
	assert.Len(t, res.Citations, globalChatChunks)
	require.Len(t, model.prompts, 1)
	assert.Contains(t, model.prompts[0], "Use the following context")
	assert.Contains(t, model.prompts[0], "Question: What is produced?")
}

func TestChatNoteScopesToNote(t *testing.T) {
	db := newStore()
	a := seedNote(db, "a")
	b := seedNote(db, "b")
	db.similar = []*contract.ScoredNoteEmbedding{
		chunk(a.Id, 0, "from a", 0.99),
		chunk(b.Id, 0, "from b 0", 0.8),
		chunk(b.Id, 1, "from b 1", 0.7),
		chunk(b.Id, 2, "from b 2", 0.6),
		chunk(b.Id, 3, "from b 3", 0.5),
	}
	model := &fakeLLM{reply: "ok"}
	svc := NewChatService(db, &fakeEmbedder{}, model, logger.NewNopLogger())

	res, err := svc.ChatNote(context.Background(), b.Id, &dto.ChatRequest{Question: "q"})
	require.NoError(t, err)

	require.Len(t, res.Citations, noteChatChunks)
	for _, c := range res.Citations {
		assert.Equal(t, b.Id, c.NoteId)
	}
	assert.Contains(t, model.prompts[0], "Using only the content from this note")
	assert.NotContains(t, model.prompts[0], "from a")
}

func TestChatErrors(t *testing.T) {
	db := newStore()
	svc := NewChatService(db, &fakeEmbedder{}, &fakeLLM{}, logger.NewNopLogger())
	_, err := svc.ChatNote(context.Background(), uuid.New(), &dto.ChatRequest{Question: "q"})
	assert.ErrorIs(t, err, contract.ErrNotFound)

	disabled := NewChatService(db, nil, &fakeLLM{}, logger.NewNopLogger())
	_, err = disabled.Chat(context.Background(), &dto.ChatRequest{Question: "q"})
	assert.ErrorIs(t, err, ErrSearchDisabled)
}
