package chunkmap

import (
	"encoding/json"
	"fmt"
	"os"
)

// Stats is the slice of a bundler stats file this tool consumes: chunk
// identities, the files each chunk emitted, and async-load edges. The tool
// does not understand the bundler's module graph beyond this.
type Stats struct {
	Chunks []ChunkStats `json:"chunks"`
}

// ChunkStats describes one chunk from the stats file.
type ChunkStats struct {
	ID string `json:"id"`
	// Files are the asset filenames emitted for this chunk, relative to
	// the output directory.
	Files []string `json:"files"`
	// AsyncChildren are the ids of chunks this chunk loads on demand.
	AsyncChildren []string `json:"asyncChildren"`
	// Localized marks the chunk as containing localized strings. The
	// pipeline may additionally mark chunks after scanning their assets.
	Localized bool `json:"localized"`
	// Entry marks top-level chunks.
	Entry bool `json:"entry"`
}

// LoadStats reads and decodes a bundler stats file.
func LoadStats(path string) (*Stats, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read stats file: %w", err)
	}

	var stats Stats
	if err := json.Unmarshal(data, &stats); err != nil {
		return nil, fmt.Errorf("decode stats file %s: %w", path, err)
	}
	return &stats, nil
}

// NewGraphFromStats builds the in-memory chunk graph from a stats file.
func NewGraphFromStats(stats *Stats) *Graph {
	g := NewGraph()
	for _, c := range stats.Chunks {
		g.AddChunk(c.ID, c.Localized)
	}
	for _, c := range stats.Chunks {
		for _, child := range c.AsyncChildren {
			g.AddAsyncEdge(c.ID, child)
		}
	}
	return g
}

// AssetIndex maps emitted asset filenames back to their owning chunk id.
type AssetIndex map[string]string

// NewAssetIndex builds the filename → chunk id index from a stats file.
func NewAssetIndex(stats *Stats) AssetIndex {
	idx := make(AssetIndex)
	for _, c := range stats.Chunks {
		for _, f := range c.Files {
			idx[f] = c.ID
		}
	}
	return idx
}

// ChunkForAsset returns the chunk id that emitted the given asset name.
func (idx AssetIndex) ChunkForAsset(name string) (string, bool) {
	id, ok := idx[name]
	return id, ok
}
