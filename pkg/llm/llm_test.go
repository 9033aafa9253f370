package llm

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseJSONObject(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		wantKey string
		wantErr bool
	}{
		{name: "plain object", raw: `{"clarity_score": 9}`, wantKey: "clarity_score"},
		{name: "fenced json", raw: "```json\n{\"clarity_score\": 9}\n```", wantKey: "clarity_score"},
		{name: "bare fence", raw: "```\n{\"a\": 1}\n```", wantKey: "a"},
		{name: "prose around object", raw: "Sure! Here it is: {\"a\": {\"b\": 2}} Hope that helps.", wantKey: "a"},
		{name: "no object", raw: "I cannot score this.", wantErr: true},
		{name: "broken object", raw: "{\"a\": ", wantErr: true},
		{name: "array is not an object", raw: "[1, 2]", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseJSONObject(tt.raw)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrNoJSONObject)
				return
			}
			require.NoError(t, err)
			assert.Contains(t, got, tt.wantKey)
		})
	}
}

type stubProvider struct {
	delay time.Duration
	err   error
}

func (s stubProvider) Chat(ctx context.Context, _ []Message, _ ...Option) (string, error) {
	select {
	case <-time.After(s.delay):
		return "ok", s.err
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

func (s stubProvider) Generate(ctx context.Context, prompt string, opts ...Option) (string, error) {
	return s.Chat(ctx, nil, opts...)
}

func TestGuardTimesOut(t *testing.T) {
	p := WithGuard("stub", stubProvider{delay: time.Second}, 10*time.Millisecond)

	_, err := p.Generate(context.Background(), "hi")
	require.Error(t, err)

	var ge *GenerationError
	require.True(t, errors.As(err, &ge))
	assert.True(t, ge.Timeout)
	assert.Equal(t, "stub", ge.Provider)
}

func TestGuardWrapsFailures(t *testing.T) {
	p := WithGuard("stub", stubProvider{err: errors.New("503")}, time.Second)

	_, err := p.Generate(context.Background(), "hi")
	assert.True(t, IsGenerationError(err))
	assert.False(t, err.(*GenerationError).Timeout)
}

func TestGuardPassesThroughSuccess(t *testing.T) {
	p := WithGuard("stub", stubProvider{}, 0)

	out, err := p.Generate(context.Background(), "hi")
	require.NoError(t, err)
	assert.Equal(t, "ok", out)
}
