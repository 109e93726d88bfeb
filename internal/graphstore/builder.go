// Package graphstore persists the chunk dependency graph in Neo4j so
// chunk reachability and localized marks survive across builds and can be
// inspected without the bundler's stats output at hand.
package graphstore

import (
	"context"
	"fmt"

	"bundle-localizer/internal/chunkmap"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/rs/zerolog/log"
)

// Builder seeds and updates the Neo4j chunk graph.
type Builder struct {
	driver neo4j.DriverWithContext
}

// NewBuilder creates a new graph builder.
func NewBuilder(driver neo4j.DriverWithContext) *Builder {
	return &Builder{driver: driver}
}

// EnsureSchema creates constraints on the Neo4j database.
func (b *Builder) EnsureSchema(ctx context.Context) error {
	session := b.driver.NewSession(ctx, neo4j.SessionConfig{})
	defer session.Close(ctx)

	constraints := []string{
		"CREATE CONSTRAINT IF NOT EXISTS FOR (c:Chunk) REQUIRE c.id IS UNIQUE",
	}

	for _, c := range constraints {
		if _, err := session.Run(ctx, c, nil); err != nil {
			return fmt.Errorf("create constraint: %w", err)
		}
	}

	log.Info().Msg("Chunk graph schema ensured")
	return nil
}

// UpsertStats mirrors a bundler stats file into the graph: one Chunk node
// per chunk and one ASYNC_CHILD edge per async-load relationship.
func (b *Builder) UpsertStats(ctx context.Context, stats *chunkmap.Stats) error {
	session := b.driver.NewSession(ctx, neo4j.SessionConfig{})
	defer session.Close(ctx)

	for _, c := range stats.Chunks {
		_, err := session.Run(ctx, `
			MERGE (c:Chunk {id: $id})
			SET c.localized = $localized,
			    c.entry = $entry,
			    c.files = $files
		`, map[string]any{
			"id":        c.ID,
			"localized": c.Localized,
			"entry":     c.Entry,
			"files":     c.Files,
		})
		if err != nil {
			return fmt.Errorf("upsert chunk %s: %w", c.ID, err)
		}
	}

	edges := 0
	for _, c := range stats.Chunks {
		for _, child := range c.AsyncChildren {
			_, err := session.Run(ctx, `
				MATCH (a:Chunk {id: $parent})
				MATCH (b:Chunk {id: $child})
				MERGE (a)-[:ASYNC_CHILD]->(b)
			`, map[string]any{
				"parent": c.ID,
				"child":  child,
			})
			if err != nil {
				log.Warn().Err(err).
					Str("parent", c.ID).
					Str("child", child).
					Msg("Failed to create async edge")
				continue
			}
			edges++
		}
	}

	log.Info().Int("chunks", len(stats.Chunks)).Int("edges", edges).Msg("Chunk graph updated")
	return nil
}

// MarkLocalized flags a persisted chunk as containing localized strings.
func (b *Builder) MarkLocalized(ctx context.Context, chunkID string) error {
	session := b.driver.NewSession(ctx, neo4j.SessionConfig{})
	defer session.Close(ctx)

	_, err := session.Run(ctx, `
		MATCH (c:Chunk {id: $id})
		SET c.localized = true
	`, map[string]any{"id": chunkID})
	if err != nil {
		return fmt.Errorf("mark chunk %s: %w", chunkID, err)
	}
	return nil
}
