package embedding

import (
	"context"
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOllamaProviderNormalizes(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/embeddings", r.URL.Path)
		var req ollamaEmbeddingRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "nomic-embed-text", req.Model)
		assert.Equal(t, "hello", req.Prompt)
		_ = json.NewEncoder(w).Encode(ollamaEmbeddingResponse{Embedding: []float64{3, 4}})
	}))
	defer srv.Close()

	p := NewOllamaProvider(srv.URL, "")
	res, err := p.Generate(context.Background(), "hello", TaskRetrievalDocument)
	require.NoError(t, err)

	assert.InDelta(t, 0.6, res.Embedding.Values[0], 1e-6)
	assert.InDelta(t, 0.8, res.Embedding.Values[1], 1e-6)
	assert.InDelta(t, 1.0, Cosine(res.Embedding.Values, res.Embedding.Values), 1e-6)
}

func TestOllamaProviderErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not found", http.StatusNotFound)
	}))
	defer srv.Close()

	_, err := NewOllamaProvider(srv.URL, "missing").Generate(context.Background(), "x", TaskSimilarity)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "model not found")
}

func TestNormalizeZeroVector(t *testing.T) {
	v := normalizeVector([]float32{0, 0})
	assert.Equal(t, []float32{0, 0}, v)
	assert.False(t, math.IsNaN(Cosine(v, v)))
}
