// Package tm is the translation memory: embeddings of source strings
// stored alongside their known translations, searched by similarity to
// propose candidates for strings a locale is missing.
package tm

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	pgvector "github.com/pgvector/pgvector-go"
	"github.com/rs/zerolog/log"
)

// Record is one translation-memory entry: a source-locale text, its
// translation in one locale, and the source text's embedding.
type Record struct {
	Hash       string
	Locale     string
	Source     string
	Translated string
	Vector     []float32
}

// Match is a similarity-search result.
type Match struct {
	Source     string
	Translated string
	Score      float64
}

// Store handles pgvector-backed embedding storage and similarity search.
type Store struct {
	pool       *pgxpool.Pool
	dimensions int
}

// NewStore creates a translation-memory store.
func NewStore(pool *pgxpool.Pool, dimensions int) *Store {
	return &Store{pool: pool, dimensions: dimensions}
}

// EnsureSchema creates the pgvector extension and memory table.
func (s *Store) EnsureSchema(ctx context.Context) error {
	statements := []string{
		`CREATE EXTENSION IF NOT EXISTS vector`,
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS translation_memory (
			hash       TEXT NOT NULL,
			locale     TEXT NOT NULL,
			source     TEXT NOT NULL,
			translated TEXT NOT NULL,
			embedding  vector(%d),
			PRIMARY KEY (hash, locale)
		)`, s.dimensions),
	}

	for _, stmt := range statements {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("ensure translation memory schema: %w", err)
		}
	}
	return nil
}

// Store upserts translation-memory records.
func (s *Store) Store(ctx context.Context, records []Record) error {
	if len(records) == 0 {
		return nil
	}

	for _, r := range records {
		_, err := s.pool.Exec(ctx, `
			INSERT INTO translation_memory (hash, locale, source, translated, embedding)
			VALUES ($1, $2, $3, $4, $5)
			ON CONFLICT (hash, locale) DO UPDATE
			SET translated = EXCLUDED.translated,
			    embedding = EXCLUDED.embedding
		`, r.Hash, r.Locale, r.Source, r.Translated, pgvector.NewVector(r.Vector))
		if err != nil {
			return fmt.Errorf("insert memory entry %s [%s]: %w", r.Hash, r.Locale, err)
		}
	}

	log.Info().Int("count", len(records)).Msg("Stored translation memory entries")
	return nil
}

// Search finds the top-K memory entries for a locale most similar to the
// query vector.
func (s *Store) Search(ctx context.Context, queryVector []float32, locale string, topK int) ([]Match, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT source, translated, 1 - (embedding <=> $1) AS similarity
		FROM translation_memory
		WHERE locale = $2
		ORDER BY embedding <=> $1
		LIMIT $3
	`, pgvector.NewVector(queryVector), locale, topK)
	if err != nil {
		return nil, fmt.Errorf("memory search: %w", err)
	}
	defer rows.Close()

	var matches []Match
	for rows.Next() {
		var m Match
		if err := rows.Scan(&m.Source, &m.Translated, &m.Score); err != nil {
			return nil, fmt.Errorf("scan memory match: %w", err)
		}
		matches = append(matches, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("memory search: %w", err)
	}

	return matches, nil
}
