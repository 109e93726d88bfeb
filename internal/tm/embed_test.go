package tm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// embeddingServer answers /embeddings with one deterministic vector per
// input, echoing the request's order through the index field in reverse
// to exercise index-based reordering.
func embeddingServer(t *testing.T, calls *atomic.Int32) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		require.Equal(t, "/embeddings", r.URL.Path)
		require.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		var req struct {
			Input []string `json:"input"`
			Model string   `json:"model"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Equal(t, "test-model", req.Model)

		type datum struct {
			Embedding []float32 `json:"embedding"`
			Index     int       `json:"index"`
		}
		resp := struct {
			Data []datum `json:"data"`
		}{}
		for i := len(req.Input) - 1; i >= 0; i-- {
			resp.Data = append(resp.Data, datum{
				Embedding: []float32{float32(i), float32(len(req.Input[i]))},
				Index:     i,
			})
		}
		require.NoError(t, json.NewEncoder(w).Encode(resp))
	}))
}

// TestEmbed verifies request shape and index-aligned results.
func TestEmbed(t *testing.T) {
	var calls atomic.Int32
	srv := embeddingServer(t, &calls)
	defer srv.Close()

	client := NewEmbeddingClient("test-key", "test-model", srv.URL, 2)

	vecs, err := client.Embed(context.Background(), []string{"a", "bb", "ccc"})
	require.NoError(t, err)
	require.Len(t, vecs, 3)
	assert.Equal(t, []float32{0, 1}, vecs[0])
	assert.Equal(t, []float32{1, 2}, vecs[1])
	assert.Equal(t, []float32{2, 3}, vecs[2])
	assert.Equal(t, int32(1), calls.Load())
}

// TestEmbed_Empty short-circuits without a request.
func TestEmbed_Empty(t *testing.T) {
	var calls atomic.Int32
	srv := embeddingServer(t, &calls)
	defer srv.Close()

	client := NewEmbeddingClient("test-key", "test-model", srv.URL, 2)
	vecs, err := client.Embed(context.Background(), nil)
	require.NoError(t, err)
	assert.Nil(t, vecs)
	assert.Equal(t, int32(0), calls.Load())
}

// TestEmbed_APIError surfaces non-200 responses with their body.
func TestEmbed_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "quota exceeded", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	client := NewEmbeddingClient("test-key", "test-model", srv.URL, 2)
	_, err := client.Embed(context.Background(), []string{"a"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 429")
	assert.Contains(t, err.Error(), "quota exceeded")
}

// TestEmbedBatch splits the input and concatenates results in order.
func TestEmbedBatch(t *testing.T) {
	var calls atomic.Int32
	srv := embeddingServer(t, &calls)
	defer srv.Close()

	client := NewEmbeddingClient("test-key", "test-model", srv.URL, 2)

	vecs, err := client.EmbedBatch(context.Background(), []string{"a", "bb", "ccc", "dddd", "eeeee"}, 2)
	require.NoError(t, err)
	require.Len(t, vecs, 5)
	assert.Equal(t, int32(3), calls.Load())
	// Lengths come through batch-relative, so only the second component is
	// stable across batching.
	assert.Equal(t, float32(5), vecs[4][1])
}

// TestEmbedQuery unwraps the single-vector case.
func TestEmbedQuery(t *testing.T) {
	var calls atomic.Int32
	srv := embeddingServer(t, &calls)
	defer srv.Close()

	client := NewEmbeddingClient("test-key", "test-model", srv.URL, 2)
	vec, err := client.EmbedQuery(context.Background(), "hello")
	require.NoError(t, err)
	assert.Equal(t, []float32{0, 5}, vec)
}
