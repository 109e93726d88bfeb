// Package chunkmap partitions a chunk's transitively reachable async
// chunks by localized-content membership and derives the locale resolver
// spliced into that chunk's assets.
package chunkmap

import (
	"fmt"
	"sort"

	"bundle-localizer/internal/placeholder"
)

// ChunkGraph exposes the chunk metadata the reconstruction engine is told
// about: async reachability and localized-content marks. Implementations
// are read-only during a processing call.
type ChunkGraph interface {
	// TransitiveAsyncChunks returns the ids of every chunk reachable from
	// chunkID through async-load edges, not including chunkID itself.
	TransitiveAsyncChunks(chunkID string) ([]string, error)
	// HasLocalizedContent reports whether the chunk was marked as
	// containing localized strings.
	HasLocalizedContent(chunkID string) (bool, error)
}

// DeriveResolver computes the locale resolver for chunk-mapping
// placeholders inside the given chunk's assets. The three cases are
// ordered by code-size minimality of the spliced output:
//
//   - no reachable chunk has localized content: a constant resolver
//     producing noStringsLocale;
//   - every reachable chunk has localized content: the rendered locale;
//   - mixed: a runtime indexing expression over a 0/1 chunk-id mapping.
func DeriveResolver(chunkID string, graph ChunkGraph, noStringsLocale string) (placeholder.LocaleResolver, error) {
	ids, err := graph.TransitiveAsyncChunks(chunkID)
	if err != nil {
		return placeholder.LocaleResolver{}, fmt.Errorf("resolve async chunks of %q: %w", chunkID, err)
	}

	var withStrings, withoutStrings []string
	for _, id := range ids {
		localized, err := graph.HasLocalizedContent(id)
		if err != nil {
			return placeholder.LocaleResolver{}, fmt.Errorf("localized mark of chunk %q: %w", id, err)
		}
		if localized {
			withStrings = append(withStrings, id)
		} else {
			withoutStrings = append(withoutStrings, id)
		}
	}

	switch {
	case len(withStrings) == 0:
		return placeholder.ConstantLocale(noStringsLocale), nil
	case len(withoutStrings) == 0:
		return placeholder.QuotedLocale(), nil
	default:
		mapping := make(map[string]int, len(ids))
		for _, id := range withStrings {
			mapping[id] = 0
		}
		for _, id := range withoutStrings {
			mapping[id] = 1
		}
		return placeholder.IndexedLocale(mapping, noStringsLocale), nil
	}
}

// Graph is the in-memory ChunkGraph implementation. It is built either
// from a bundler stats file or from the persistent graph store.
type Graph struct {
	children  map[string][]string
	localized map[string]bool
}

// NewGraph returns an empty chunk graph.
func NewGraph() *Graph {
	return &Graph{
		children:  make(map[string][]string),
		localized: make(map[string]bool),
	}
}

// AddChunk registers a chunk and its localized-content mark. Adding an
// already-known chunk overwrites the mark.
func (g *Graph) AddChunk(id string, localized bool) {
	if _, ok := g.children[id]; !ok {
		g.children[id] = nil
	}
	g.localized[id] = localized
}

// AddAsyncEdge records that parent asynchronously loads child.
func (g *Graph) AddAsyncEdge(parent, child string) {
	g.children[parent] = append(g.children[parent], child)
	if _, ok := g.children[child]; !ok {
		g.children[child] = nil
		g.localized[child] = false
	}
}

// MarkLocalized flags a chunk as containing localized strings. Used by the
// pipeline after scanning a chunk's assets for placeholders.
func (g *Graph) MarkLocalized(id string) {
	g.localized[id] = true
}

// ChunkIDs returns every known chunk id in sorted order.
func (g *Graph) ChunkIDs() []string {
	ids := make([]string, 0, len(g.children))
	for id := range g.children {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// TransitiveAsyncChunks walks the async edges breadth-first from chunkID
// and returns every reachable chunk id in sorted order. Cycles are safe;
// chunkID itself is excluded.
func (g *Graph) TransitiveAsyncChunks(chunkID string) ([]string, error) {
	if _, ok := g.children[chunkID]; !ok {
		return nil, fmt.Errorf("unknown chunk %q", chunkID)
	}

	seen := map[string]bool{chunkID: true}
	queue := append([]string(nil), g.children[chunkID]...)
	var reachable []string

	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		if seen[id] {
			continue
		}
		seen[id] = true
		reachable = append(reachable, id)
		queue = append(queue, g.children[id]...)
	}

	sort.Strings(reachable)
	return reachable, nil
}

// HasLocalizedContent reports the localized mark of a chunk.
func (g *Graph) HasLocalizedContent(chunkID string) (bool, error) {
	localized, ok := g.localized[chunkID]
	if !ok {
		if _, known := g.children[chunkID]; !known {
			return false, fmt.Errorf("unknown chunk %q", chunkID)
		}
	}
	return localized, nil
}
