package service

import (
	"context"
	"errors"
	"sort"
	"sync"

	"notes-intelligence-be/internal/entity"
	"notes-intelligence-be/internal/repository/contract"
	"notes-intelligence-be/internal/repository/specification"
	"notes-intelligence-be/internal/repository/unitofwork"
	"notes-intelligence-be/pkg/embedding"
	"notes-intelligence-be/pkg/events"
	"notes-intelligence-be/pkg/llm"

	"github.com/google/uuid"
)

// store is an in-memory database shared by every unit of work of a test.
type store struct {
	mu         sync.Mutex
	notes      map[uuid.UUID]*entity.Note
	embeddings []*entity.NoteEmbedding
	profile    *entity.StyleProfile
	similar    []*contract.ScoredNoteEmbedding

	createErr error
	commits   int
}

func newStore() *store {
	return &store{notes: map[uuid.UUID]*entity.Note{}}
}

func (s *store) NewUnitOfWork(context.Context) unitofwork.UnitOfWork {
	return &fakeUoW{s: s}
}

type fakeUoW struct {
	s  *store
	tx bool
}

func (u *fakeUoW) Begin(context.Context) error { u.tx = true; return nil }
func (u *fakeUoW) Commit() error {
	if !u.tx {
		return errors.New("no transaction to commit")
	}
	u.tx = false
	u.s.commits++
	return nil
}
func (u *fakeUoW) Rollback() error {
	if !u.tx {
		return errors.New("no transaction to rollback")
	}
	u.tx = false
	return nil
}
func (u *fakeUoW) NoteRepository() contract.NoteRepository                   { return fakeNotes{u.s} }
func (u *fakeUoW) NoteEmbeddingRepository() contract.NoteEmbeddingRepository { return fakeEmbeddings{u.s} }
func (u *fakeUoW) StyleProfileRepository() contract.StyleProfileRepository   { return fakeProfiles{u.s} }

type fakeNotes struct{ s *store }

func (r fakeNotes) Create(_ context.Context, n *entity.Note) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.createErr != nil {
		return r.s.createErr
	}
	r.s.notes[n.Id] = n
	return nil
}

func (r fakeNotes) Update(_ context.Context, n *entity.Note) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.notes[n.Id] = n
	return nil
}

func (r fakeNotes) UpdateIndexingStatus(_ context.Context, id uuid.UUID, status string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if n, ok := r.s.notes[id]; ok {
		n.IndexingStatus = status
	}
	return nil
}

func (r fakeNotes) Delete(_ context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	delete(r.s.notes, id)
	return nil
}

// FindOne understands ByID, which is all the services use.
func (r fakeNotes) FindOne(_ context.Context, specs ...specification.Specification) (*entity.Note, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, sp := range specs {
		if byID, ok := sp.(specification.ByID); ok {
			return r.s.notes[byID.ID], nil
		}
	}
	return nil, nil
}

// FindAll honours ByIDs and returns everything else newest first.
func (r fakeNotes) FindAll(_ context.Context, specs ...specification.Specification) ([]*entity.Note, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var ids map[uuid.UUID]bool
	for _, sp := range specs {
		if byIDs, ok := sp.(specification.ByIDs); ok {
			ids = map[uuid.UUID]bool{}
			for _, id := range byIDs.IDs {
				ids[id] = true
			}
		}
	}
	var out []*entity.Note
	for _, n := range r.s.notes {
		if ids == nil || ids[n.Id] {
			out = append(out, n)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r fakeNotes) Count(_ context.Context, _ ...specification.Specification) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return int64(len(r.s.notes)), nil
}

type fakeEmbeddings struct{ s *store }

func (r fakeEmbeddings) CreateBulk(_ context.Context, e []*entity.NoteEmbedding) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.embeddings = append(r.s.embeddings, e...)
	return nil
}

func (r fakeEmbeddings) DeleteByNoteId(_ context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	kept := r.s.embeddings[:0]
	for _, e := range r.s.embeddings {
		if e.NoteId != id {
			kept = append(kept, e)
		}
	}
	r.s.embeddings = kept
	return nil
}

func (r fakeEmbeddings) FindAll(_ context.Context, _ ...specification.Specification) ([]*entity.NoteEmbedding, error) {
	return r.s.embeddings, nil
}

func (r fakeEmbeddings) Count(_ context.Context, _ ...specification.Specification) (int64, error) {
	return int64(len(r.s.embeddings)), nil
}

func (r fakeEmbeddings) SearchSimilar(_ context.Context, _ []float32, limit int, noteId *uuid.UUID) ([]*contract.ScoredNoteEmbedding, error) {
	var out []*contract.ScoredNoteEmbedding
	for _, s := range r.s.similar {
		if noteId != nil && s.Embedding.NoteId != *noteId {
			continue
		}
		if len(out) == limit {
			break
		}
		out = append(out, s)
	}
	return out, nil
}

type fakeProfiles struct{ s *store }

func (r fakeProfiles) FindCurrent(context.Context) (*entity.StyleProfile, error) {
	return r.s.profile, nil
}

func (r fakeProfiles) Replace(_ context.Context, p *entity.StyleProfile) error {
	r.s.profile = p
	return nil
}

type fakeEmbedder struct {
	calls int
	err   error
}

func (f *fakeEmbedder) Generate(context.Context, string, string) (*embedding.EmbeddingResponse, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return &embedding.EmbeddingResponse{Embedding: embedding.EmbeddingResponseEmbedding{Values: []float32{1, 0}}}, nil
}

type fakeLLM struct {
	prompts []string
	reply   string
}

func (f *fakeLLM) Chat(_ context.Context, history []llm.Message, _ ...llm.Option) (string, error) {
	f.prompts = append(f.prompts, history[len(history)-1].Content)
	return f.reply, nil
}

func (f *fakeLLM) Generate(ctx context.Context, prompt string, opts ...llm.Option) (string, error) {
	return f.Chat(ctx, []llm.Message{{Role: "user", Content: prompt}}, opts...)
}

type recordingBus struct {
	mu     sync.Mutex
	events []string
}

func (b *recordingBus) Publish(_ context.Context, ev events.Event) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, ev.EventType())
	return nil
}

type recordingQueue struct {
	payloads [][]byte
}

func (q *recordingQueue) Publish(_ context.Context, payload []byte) error {
	q.payloads = append(q.payloads, payload)
	return nil
}
