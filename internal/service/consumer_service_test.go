package service

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"notes-intelligence-be/internal/dto"
	"notes-intelligence-be/internal/entity"
	"notes-intelligence-be/internal/pkg/logger"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedNote(db *store, content string) *entity.Note {
	n := &entity.Note{
		Id:             uuid.New(),
		Title:          "Photosynthesis",
		Content:        content,
		Tags:           []string{"biology"},
		IndexingStatus: entity.IndexingPending,
		CreatedAt:      time.Now(),
	}
	db.notes[n.Id] = n
	return n
}

func newConsumer(db *store, emb *fakeEmbedder, bus IEventPublisher) *consumerService {
	return NewConsumerService(nil, "embed", db, emb, 500, 100, bus, logger.NewNopLogger()).(*consumerService)
}

func TestIndexNoteReplacesChunks(t *testing.T) {
	db := newStore()
	note := seedNote(db, strings.Repeat("Chlorophyll absorbs light energy in the chloroplast. ", 40))
	emb := &fakeEmbedder{}
	cs := newConsumer(db, emb, nil)

	n, err := cs.IndexNote(context.Background(), note.Id)
	require.NoError(t, err)
	assert.Greater(t, n, 1)
	assert.Len(t, db.embeddings, n)
	assert.Equal(t, n, emb.calls)
	assert.Equal(t, entity.IndexingCompleted, note.IndexingStatus)
	assert.Contains(t, db.embeddings[0].Document, "Note Title: Photosynthesis")
	for i, e := range db.embeddings {
		assert.Equal(t, i, e.ChunkIndex)
		assert.LessOrEqual(t, len(e.Document), 500)
	}

	again, err := cs.IndexNote(context.Background(), note.Id)
	require.NoError(t, err)
	assert.Equal(t, n, again)
	assert.Len(t, db.embeddings, n)
}

func TestIndexNoteMissingNote(t *testing.T) {
	cs := newConsumer(newStore(), &fakeEmbedder{}, nil)
	n, err := cs.IndexNote(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestProcessMessageMarksFailure(t *testing.T) {
	db := newStore()
	note := seedNote(db, "short note")
	bus := &recordingBus{}
	cs := newConsumer(db, &fakeEmbedder{err: errors.New("ollama down")}, bus)

	payload, _ := json.Marshal(dto.PublishEmbedNoteMessage{NoteId: note.Id})
	cs.processMessage(context.Background(), message.NewMessage(watermill.NewUUID(), payload))

	assert.Equal(t, entity.IndexingFailed, note.IndexingStatus)
	assert.Empty(t, db.embeddings)
	assert.Empty(t, bus.events)
}

func TestProcessMessageWithoutEmbeddings(t *testing.T) {
	db := newStore()
	note := seedNote(db, "short note")
	bus := &recordingBus{}
	cs := NewConsumerService(nil, "embed", db, nil, 500, 100, bus, logger.NewNopLogger()).(*consumerService)

	payload, _ := json.Marshal(dto.PublishEmbedNoteMessage{NoteId: note.Id})
	cs.processMessage(context.Background(), message.NewMessage(watermill.NewUUID(), payload))

	assert.Equal(t, entity.IndexingPending, note.IndexingStatus)
	assert.Empty(t, bus.events)

	_, err := cs.IndexNote(context.Background(), note.Id)
	assert.ErrorIs(t, err, ErrSearchDisabled)
}

func TestConsumeOverGoChannel(t *testing.T) {
	db := newStore()
	note := seedNote(db, "Photosynthesis produces glucose and oxygen.")
	pubSub := gochannel.NewGoChannel(gochannel.Config{}, watermill.NopLogger{})
	defer pubSub.Close()

	bus := &recordingBus{}
	cs := NewConsumerService(pubSub, "embed", db, &fakeEmbedder{}, 500, 100, bus, logger.NewNopLogger())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, cs.Consume(ctx))

	pub := NewPublisherService("embed", pubSub)
	payload, _ := json.Marshal(dto.PublishEmbedNoteMessage{NoteId: note.Id})
	require.NoError(t, pub.Publish(ctx, payload))

	require.Eventually(t, func() bool {
		bus.mu.Lock()
		defer bus.mu.Unlock()
		return len(bus.events) == 1
	}, 2*time.Second, 10*time.Millisecond)

	db.mu.Lock()
	defer db.mu.Unlock()
	assert.Equal(t, entity.IndexingCompleted, note.IndexingStatus)
}
