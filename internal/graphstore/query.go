package graphstore

import (
	"context"
	"fmt"

	"bundle-localizer/internal/chunkmap"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/rs/zerolog/log"
)

// Querier reads the persisted chunk graph.
type Querier struct {
	driver neo4j.DriverWithContext
}

// NewQuerier creates a new graph querier.
func NewQuerier(driver neo4j.DriverWithContext) *Querier {
	return &Querier{driver: driver}
}

// LoadGraph materializes the whole persisted graph into the in-memory
// form the reconstruction engine consumes, along with the asset filename →
// chunk id index. The chunk graph is small, so one load per run beats
// per-chunk round trips.
func (q *Querier) LoadGraph(ctx context.Context) (*chunkmap.Graph, chunkmap.AssetIndex, error) {
	session := q.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close(ctx)

	g := chunkmap.NewGraph()
	index := make(chunkmap.AssetIndex)

	nodes, err := session.Run(ctx, `
		MATCH (c:Chunk)
		RETURN c.id AS id, coalesce(c.localized, false) AS localized, coalesce(c.files, []) AS files
	`, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("query chunks: %w", err)
	}
	count := 0
	for nodes.Next(ctx) {
		record := nodes.Record()
		id, _ := record.Get("id")
		localized, _ := record.Get("localized")
		files, _ := record.Get("files")

		chunkID := fmt.Sprintf("%v", id)
		g.AddChunk(chunkID, localized == true)
		if fileList, ok := files.([]any); ok {
			for _, f := range fileList {
				index[fmt.Sprintf("%v", f)] = chunkID
			}
		}
		count++
	}

	edges, err := session.Run(ctx, `
		MATCH (a:Chunk)-[:ASYNC_CHILD]->(b:Chunk)
		RETURN a.id AS parent, b.id AS child
	`, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("query async edges: %w", err)
	}
	for edges.Next(ctx) {
		record := edges.Record()
		parent, _ := record.Get("parent")
		child, _ := record.Get("child")
		g.AddAsyncEdge(fmt.Sprintf("%v", parent), fmt.Sprintf("%v", child))
	}

	log.Info().Int("chunks", count).Msg("Loaded chunk graph")
	return g, index, nil
}

// ChunkInfo summarizes one persisted chunk for inspection.
type ChunkInfo struct {
	ID             string
	Localized      bool
	TransitiveIDs  []string
	LocalizedCount int
}

// Describe returns a chunk's localized mark and its transitively reachable
// async chunks, straight from the persisted graph.
func (q *Querier) Describe(ctx context.Context, chunkID string) (*ChunkInfo, error) {
	session := q.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close(ctx)

	self, err := session.Run(ctx, `
		MATCH (c:Chunk {id: $id})
		RETURN coalesce(c.localized, false) AS localized
	`, map[string]any{"id": chunkID})
	if err != nil {
		return nil, fmt.Errorf("query chunk %s: %w", chunkID, err)
	}
	if !self.Next(ctx) {
		return nil, fmt.Errorf("unknown chunk %q", chunkID)
	}
	localized, _ := self.Record().Get("localized")

	info := &ChunkInfo{ID: chunkID, Localized: localized == true}

	reachable, err := session.Run(ctx, `
		MATCH (c:Chunk {id: $id})-[:ASYNC_CHILD*]->(d:Chunk)
		RETURN DISTINCT d.id AS id, coalesce(d.localized, false) AS localized
		ORDER BY id
	`, map[string]any{"id": chunkID})
	if err != nil {
		return nil, fmt.Errorf("query reachable chunks of %s: %w", chunkID, err)
	}
	for reachable.Next(ctx) {
		record := reachable.Record()
		id, _ := record.Get("id")
		marked, _ := record.Get("localized")
		info.TransitiveIDs = append(info.TransitiveIDs, fmt.Sprintf("%v", id))
		if marked == true {
			info.LocalizedCount++
		}
	}

	return info, nil
}
