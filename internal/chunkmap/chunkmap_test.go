package chunkmap

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// diamond builds main → {a, b}, a → c, b → c, with c marked localized.
func diamond() *Graph {
	g := NewGraph()
	g.AddChunk("main", true)
	g.AddChunk("a", false)
	g.AddChunk("b", false)
	g.AddChunk("c", true)
	g.AddAsyncEdge("main", "a")
	g.AddAsyncEdge("main", "b")
	g.AddAsyncEdge("a", "c")
	g.AddAsyncEdge("b", "c")
	return g
}

// TestGraph_TransitiveAsyncChunks verifies breadth-first reachability over
// a diamond, excluding the root and deduplicating the shared child.
func TestGraph_TransitiveAsyncChunks(t *testing.T) {
	ids, err := diamond().TransitiveAsyncChunks("main")
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, ids)
}

// TestGraph_CycleSafe verifies a cyclic async graph terminates.
func TestGraph_CycleSafe(t *testing.T) {
	g := NewGraph()
	g.AddChunk("x", false)
	g.AddChunk("y", false)
	g.AddAsyncEdge("x", "y")
	g.AddAsyncEdge("y", "x")

	ids, err := g.TransitiveAsyncChunks("x")
	require.NoError(t, err)
	assert.Equal(t, []string{"y"}, ids)
}

// TestGraph_UnknownChunk verifies lookups against unregistered ids fail.
func TestGraph_UnknownChunk(t *testing.T) {
	g := NewGraph()
	_, err := g.TransitiveAsyncChunks("nope")
	require.Error(t, err)
	_, err = g.HasLocalizedContent("nope")
	require.Error(t, err)
}

// TestDeriveResolver_NoAsyncChunks verifies a chunk without async children
// gets the constant resolver.
func TestDeriveResolver_NoAsyncChunks(t *testing.T) {
	g := NewGraph()
	g.AddChunk("main", true)

	r, err := DeriveResolver("main", g, "none")
	require.NoError(t, err)

	value, err := r.Resolve("es-es", "chunkId")
	require.NoError(t, err)
	assert.Equal(t, `"none"`, value)
}

// TestDeriveResolver_NoneLocalized verifies a uniformly unlocalized async
// set gets the constant resolver.
func TestDeriveResolver_NoneLocalized(t *testing.T) {
	g := NewGraph()
	g.AddChunk("main", true)
	g.AddChunk("a", false)
	g.AddChunk("b", false)
	g.AddAsyncEdge("main", "a")
	g.AddAsyncEdge("main", "b")

	r, err := DeriveResolver("main", g, "none")
	require.NoError(t, err)

	value, err := r.Resolve("fr-fr", "id")
	require.NoError(t, err)
	assert.Equal(t, `"none"`, value)
}

// TestDeriveResolver_AllLocalized verifies a uniformly localized async set
// resolves to the rendered locale.
func TestDeriveResolver_AllLocalized(t *testing.T) {
	g := NewGraph()
	g.AddChunk("main", true)
	g.AddChunk("a", true)
	g.AddChunk("b", true)
	g.AddAsyncEdge("main", "a")
	g.AddAsyncEdge("main", "b")

	r, err := DeriveResolver("main", g, "none")
	require.NoError(t, err)

	value, err := r.Resolve("es-es", "id")
	require.NoError(t, err)
	assert.Equal(t, `"es-es"`, value)
}

// TestDeriveResolver_Mixed verifies a split async set generates an
// indexing expression that picks the right array slot for marked and
// unmarked chunk ids, for distinct locales.
func TestDeriveResolver_Mixed(t *testing.T) {
	g := NewGraph()
	g.AddChunk("main", true)
	g.AddChunk("0", true)
	g.AddChunk("5", false)
	g.AddAsyncEdge("main", "0")
	g.AddAsyncEdge("main", "5")

	r, err := DeriveResolver("main", g, "none")
	require.NoError(t, err)

	// Chunk "0" is localized so it maps to slot 0 (the locale); chunk "5"
	// maps to slot 1 (the no-strings tag).
	value, err := r.Resolve("es-es", "chunkId")
	require.NoError(t, err)
	assert.Equal(t, `(["es-es","none"])[{"0":0,"5":1}[chunkId]]`, value)

	value, err = r.Resolve("fr-fr", "chunkId")
	require.NoError(t, err)
	assert.Equal(t, `(["fr-fr","none"])[{"0":0,"5":1}[chunkId]]`, value)

	_, err = r.Resolve("", "chunkId")
	require.Error(t, err)
}

// TestMarkLocalized verifies marks applied after construction are seen by
// the deriver.
func TestMarkLocalized(t *testing.T) {
	g := NewGraph()
	g.AddChunk("main", false)
	g.AddChunk("a", false)
	g.AddAsyncEdge("main", "a")

	g.MarkLocalized("a")

	localized, err := g.HasLocalizedContent("a")
	require.NoError(t, err)
	assert.True(t, localized)
}
