package stringtable

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
)

// Entry is one (string identity, locale, value) row destined for the store.
type Entry struct {
	SourceFile string
	Name       string
	Locale     string
	Value      string
}

// Store persists the string table in PostgreSQL. Serials are assigned by
// the database and stay stable across ingests of the same string identity.
type Store struct {
	pool *pgxpool.Pool
}

// NewStore creates a store on the given pool.
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// EnsureSchema creates the string-table tables if they do not exist.
func (s *Store) EnsureSchema(ctx context.Context) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS loc_strings (
			serial      BIGINT GENERATED ALWAYS AS IDENTITY PRIMARY KEY,
			source_file TEXT NOT NULL,
			name        TEXT NOT NULL,
			UNIQUE (source_file, name)
		)`,
		`CREATE TABLE IF NOT EXISTS loc_values (
			serial BIGINT NOT NULL REFERENCES loc_strings (serial) ON DELETE CASCADE,
			locale TEXT NOT NULL,
			value  TEXT NOT NULL,
			PRIMARY KEY (serial, locale)
		)`,
	}

	for _, stmt := range statements {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("ensure string table schema: %w", err)
		}
	}
	return nil
}

// Upsert stores entries, creating string identities as needed and
// overwriting existing per-locale values. Returns the number of values
// written.
func (s *Store) Upsert(ctx context.Context, entries []Entry) (int, error) {
	written := 0
	for _, e := range entries {
		var serial int64
		err := s.pool.QueryRow(ctx, `
			INSERT INTO loc_strings (source_file, name)
			VALUES ($1, $2)
			ON CONFLICT (source_file, name) DO UPDATE SET name = EXCLUDED.name
			RETURNING serial
		`, e.SourceFile, e.Name).Scan(&serial)
		if err != nil {
			return written, fmt.Errorf("upsert string %s/%s: %w", e.SourceFile, e.Name, err)
		}

		_, err = s.pool.Exec(ctx, `
			INSERT INTO loc_values (serial, locale, value)
			VALUES ($1, $2, $3)
			ON CONFLICT (serial, locale) DO UPDATE SET value = EXCLUDED.value
		`, serial, e.Locale, e.Value)
		if err != nil {
			return written, fmt.Errorf("upsert value %s/%s [%s]: %w", e.SourceFile, e.Name, e.Locale, err)
		}
		written++
	}

	log.Info().Int("values", written).Msg("String table updated")
	return written, nil
}

// Preload reads the whole string table into memory for parsing. The
// reconstruction engine only ever sees the in-memory view.
func (s *Store) Preload(ctx context.Context) (*MemoryTable, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT s.serial, s.source_file, s.name, v.locale, v.value
		FROM loc_strings s
		JOIN loc_values v USING (serial)
		ORDER BY s.serial, v.locale
	`)
	if err != nil {
		return nil, fmt.Errorf("preload string table: %w", err)
	}
	defer rows.Close()

	table := NewMemoryTable()
	values := 0
	for rows.Next() {
		var (
			serial                          int64
			sourceFile, name, locale, value string
		)
		if err := rows.Scan(&serial, &sourceFile, &name, &locale, &value); err != nil {
			return nil, fmt.Errorf("scan string table row: %w", err)
		}
		table.RegisterSerial(int(serial), sourceFile, name)
		if err := table.SetValue(int(serial), locale, value); err != nil {
			return nil, err
		}
		values++
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("preload string table: %w", err)
	}

	log.Info().Int("strings", table.Len()).Int("values", values).Msg("Preloaded string table")
	return table, nil
}
