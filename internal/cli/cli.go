package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"bundle-localizer/internal/assets"
	"bundle-localizer/internal/chunkmap"
	"bundle-localizer/internal/config"
	"bundle-localizer/internal/graphstore"
	"bundle-localizer/internal/locfile"
	"bundle-localizer/internal/placeholder"
	"bundle-localizer/internal/reconstruct"
	"bundle-localizer/internal/stringtable"
	"bundle-localizer/internal/textutil"
	"bundle-localizer/internal/tm"
	"bundle-localizer/internal/worker"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	pgxvector "github.com/pgvector/pgvector-go/pgx"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

// Execute runs the CLI application.
func Execute() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	rootCmd := &cobra.Command{
		Use:   "bundle-localizer",
		Short: "Rewrites compiled bundle output into per-locale variants",
		Long: "A build-pipeline tool that reconstructs compiled bundle assets (and their filenames)\n" +
			"into one variant per locale by substituting localization placeholders, without\n" +
			"re-running the compiler.",
	}

	rootCmd.AddCommand(localizeCmd())
	rootCmd.AddCommand(ingestStringsCmd())
	rootCmd.AddCommand(ingestGraphCmd())
	rootCmd.AddCommand(chunkInfoCmd())
	rootCmd.AddCommand(suggestCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func localizeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "localize <dist-dir> <out-dir>",
		Short: "Reconstruct compiled assets into per-locale variants",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			locales, _ := cmd.Flags().GetStringSlice("locales")
			statsPath, _ := cmd.Flags().GetString("stats")
			useGraphStore, _ := cmd.Flags().GetBool("graph-store")
			return runLocalize(args[0], args[1], locales, statsPath, useGraphStore)
		},
	}

	cmd.Flags().StringSlice("locales", nil, "Locales to render (comma-separated, required)")
	cmd.Flags().String("stats", "", "Bundler stats file with chunk metadata")
	cmd.Flags().Bool("graph-store", false, "Load chunk metadata from Neo4j instead of a stats file")
	_ = cmd.MarkFlagRequired("locales")

	return cmd
}

func ingestStringsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ingest-strings <loc-root>",
		Short: "Load translation files into the string table",
		Long: `Parses every translation file under <loc-root> (one subdirectory per locale),
validates it, and upserts the strings into the PostgreSQL string table.
With --memory, source strings are also embedded into the translation memory.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			withMemory, _ := cmd.Flags().GetBool("memory")
			return runIngestStrings(args[0], withMemory)
		},
	}

	cmd.Flags().Bool("memory", false, "Also populate the translation memory with embeddings")

	return cmd
}

func ingestGraphCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ingest-graph <stats-file>",
		Short: "Mirror a bundler stats file into the Neo4j chunk graph",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runIngestGraph(args[0])
		},
	}
}

func chunkInfoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "chunk-info <chunk-id>",
		Short: "Inspect a chunk's async reachability and localized marks",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runChunkInfo(args[0])
		},
	}
}

func suggestCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "suggest <locale> <text>",
		Short: "Propose translation candidates from the translation memory",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			topK, _ := cmd.Flags().GetInt("top")
			return runSuggest(args[0], args[1], topK)
		},
	}

	cmd.Flags().Int("top", 5, "Number of candidates to return")

	return cmd
}

// setupContext creates a cancellable context with signal handling.
func setupContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigCh
		log.Warn().Msg("Received shutdown signal, cancelling...")
		cancel()
	}()

	return ctx, cancel
}

// openPostgres connects a pgx pool with pgvector types registered.
func openPostgres(ctx context.Context, cfg *config.Config) (*pgxpool.Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database URL: %w", err)
	}
	poolCfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		return pgxvector.RegisterTypes(ctx, conn)
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("connect PostgreSQL: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping PostgreSQL: %w", err)
	}

	log.Info().Msg("Connected to PostgreSQL")
	return pool, nil
}

// openNeo4j connects and verifies the Neo4j driver.
func openNeo4j(ctx context.Context, cfg *config.Config) (neo4j.DriverWithContext, error) {
	driver, err := neo4j.NewDriverWithContext(cfg.Neo4jURI, neo4j.BasicAuth(cfg.Neo4jUser, cfg.Neo4jPassword, ""))
	if err != nil {
		return nil, fmt.Errorf("connect Neo4j: %w", err)
	}
	if err := driver.VerifyConnectivity(ctx); err != nil {
		driver.Close(ctx)
		return nil, fmt.Errorf("verify Neo4j connectivity: %w", err)
	}

	log.Info().Msg("Connected to Neo4j")
	return driver, nil
}

// localizeResult is the per-asset outcome carried out of the worker pool.
type localizeResult struct {
	written []string
	issues  []string
}

// runLocalize handles the `localize` command.
func runLocalize(distDir, outDir string, locales []string, statsPath string, useGraphStore bool) error {
	ctx, cancel := setupContext()
	defer cancel()

	if len(locales) == 0 {
		return fmt.Errorf("at least one locale is required")
	}

	cfg := config.Load()

	pool, err := openPostgres(ctx, cfg)
	if err != nil {
		return err
	}
	defer pool.Close()

	store := stringtable.NewStore(pool)
	if err := store.EnsureSchema(ctx); err != nil {
		return err
	}
	table, err := store.Preload(ctx)
	if err != nil {
		return err
	}

	// Chunk metadata comes either from a bundler stats file or from the
	// persisted chunk graph.
	var (
		graph *chunkmap.Graph
		index chunkmap.AssetIndex
	)
	switch {
	case useGraphStore:
		driver, err := openNeo4j(ctx, cfg)
		if err != nil {
			return err
		}
		defer driver.Close(ctx)
		graph, index, err = graphstore.NewQuerier(driver).LoadGraph(ctx)
		if err != nil {
			return err
		}
	case statsPath != "":
		stats, err := chunkmap.LoadStats(statsPath)
		if err != nil {
			return err
		}
		graph = chunkmap.NewGraphFromStats(stats)
		index = chunkmap.NewAssetIndex(stats)
	default:
		log.Warn().Msg("No chunk metadata supplied; chunk mapping placeholders will be rejected")
	}

	entries, err := assets.Walk(distDir)
	if err != nil {
		return err
	}

	// Mark chunks whose assets carry localized strings before any resolver
	// is derived, so the partition sees the whole build.
	if graph != nil {
		for _, entry := range entries {
			if !entry.Localized {
				continue
			}
			if chunkID, ok := index.ChunkForAsset(entry.Name); ok {
				graph.MarkLocalized(chunkID)
			}
		}
	}

	outAbs, err := filepath.Abs(outDir)
	if err != nil {
		return fmt.Errorf("resolve output directory: %w", err)
	}
	if err := os.MkdirAll(outAbs, 0755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	procPool := worker.NewPool[assets.Entry, localizeResult](cfg.WorkerCount,
		func(ctx context.Context, entry assets.Entry) (localizeResult, error) {
			return localizeAsset(entry, outAbs, locales, cfg, table, graph, index)
		},
	)
	results := procPool.Execute(ctx, entries)

	failed := 0
	totalIssues := 0
	for _, job := range results {
		if job.Err != nil {
			failed++
			continue
		}
		if err := reconstruct.AggregateIssues(job.Input.Name, job.Result.issues); err != nil {
			log.Error().Msg(err.Error())
			totalIssues += len(job.Result.issues)
		}
	}

	log.Info().
		Int("assets", len(entries)).
		Int("locales", len(locales)).
		Str("output", outAbs).
		Msg("Localization complete")

	if failed > 0 {
		return fmt.Errorf("%d asset(s) failed to process", failed)
	}
	if totalIssues > 0 {
		return fmt.Errorf("localization completed with %d issue(s)", totalIssues)
	}
	return nil
}

// localizeAsset reconstructs one asset and writes its artifacts.
func localizeAsset(
	entry assets.Entry,
	outDir string,
	locales []string,
	cfg *config.Config,
	table placeholder.StringTable,
	graph *chunkmap.Graph,
	index chunkmap.AssetIndex,
) (localizeResult, error) {
	// A nil interface graph declares that chunk mapping placeholders are
	// unexpected; only pass a real graph when the asset's chunk is known.
	var chunkGraph chunkmap.ChunkGraph
	chunkID := ""
	if graph != nil {
		if id, ok := index.ChunkForAsset(entry.Name); ok {
			chunkGraph = graph
			chunkID = id
		}
	}

	asset := reconstruct.NewAsset(entry.Name, entry.Content)

	if !entry.Localized {
		artifact, issues, err := reconstruct.ProcessNonLocalizedAsset(asset, reconstruct.NonLocalizedOptions{
			NoStringsLocale: cfg.NoStringsLocale,
			Table:           table,
			ChunkID:         chunkID,
			Graph:           chunkGraph,
		})
		if err != nil {
			return localizeResult{}, err
		}
		path, err := writeArtifact(outDir, "", artifact)
		if err != nil {
			return localizeResult{}, err
		}
		return localizeResult{written: []string{path}, issues: issues}, nil
	}

	artifacts, issues, err := reconstruct.ProcessLocalizedAsset(asset, reconstruct.LocalizedOptions{
		Locales:         locales,
		FillMissing:     cfg.FillMissing,
		DefaultLocale:   cfg.DefaultLocale,
		NoStringsLocale: cfg.NoStringsLocale,
		Table:           table,
		ChunkID:         chunkID,
		Graph:           chunkGraph,
	})
	if err != nil {
		return localizeResult{}, err
	}

	// When the filename renders identically across locales the artifacts
	// are disambiguated by a locale subdirectory.
	perLocaleDirs := renderedNamesCollide(artifacts, locales)

	var written []string
	for _, locale := range locales {
		artifact := artifacts[locale]
		subdir := ""
		if perLocaleDirs {
			subdir = locale
		}
		path, err := writeArtifact(outDir, subdir, artifact)
		if err != nil {
			return localizeResult{}, err
		}
		written = append(written, path)
	}

	log.Info().
		Str("asset", entry.Name).
		Int("locales", len(locales)).
		Msg("Asset localized")

	return localizeResult{written: written, issues: issues}, nil
}

func renderedNamesCollide(artifacts map[string]reconstruct.Asset, locales []string) bool {
	if len(locales) < 2 {
		return false
	}
	seen := make(map[string]bool, len(locales))
	for _, locale := range locales {
		name := artifacts[locale].Name
		if seen[name] {
			return true
		}
		seen[name] = true
	}
	return false
}

// writeArtifact writes one rendered asset below outDir, creating parent
// directories as needed.
func writeArtifact(outDir, subdir string, artifact reconstruct.Asset) (string, error) {
	path := filepath.Join(outDir, subdir, filepath.FromSlash(artifact.Name))
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return "", fmt.Errorf("create artifact directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(artifact.Content), 0644); err != nil {
		return "", fmt.Errorf("write artifact %s: %w", path, err)
	}
	return path, nil
}

// runIngestStrings handles the `ingest-strings` command.
func runIngestStrings(locRoot string, withMemory bool) error {
	ctx, cancel := setupContext()
	defer cancel()

	cfg := config.Load()

	files, err := locfile.ParseDir(locRoot)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		log.Warn().Msg("No translation files found")
		return nil
	}

	var entries []stringtable.Entry
	for _, f := range files {
		for _, name := range f.SortedNames() {
			entries = append(entries, stringtable.Entry{
				SourceFile: f.SourceFile,
				Name:       name,
				Locale:     f.Locale,
				Value:      f.Strings[name],
			})
		}
	}

	pool, err := openPostgres(ctx, cfg)
	if err != nil {
		return err
	}
	defer pool.Close()

	store := stringtable.NewStore(pool)
	if err := store.EnsureSchema(ctx); err != nil {
		return err
	}
	written, err := store.Upsert(ctx, entries)
	if err != nil {
		return fmt.Errorf("upsert string table: %w", err)
	}

	log.Info().
		Int("files", len(files)).
		Int("values", written).
		Msg("String ingestion complete")

	if !withMemory {
		return nil
	}
	return ingestMemory(ctx, cfg, pool, entries)
}

// ingestMemory embeds default-locale source texts and stores each known
// translation against them in the translation memory.
func ingestMemory(ctx context.Context, cfg *config.Config, pool *pgxpool.Pool, entries []stringtable.Entry) error {
	sources := make(map[string]string)
	for _, e := range entries {
		if e.Locale == cfg.DefaultLocale {
			sources[e.SourceFile+"\x00"+e.Name] = e.Value
		}
	}

	type pair struct {
		source     string
		locale     string
		translated string
	}
	var pairs []pair
	var texts []string
	seen := make(map[string]int)
	for _, e := range entries {
		if e.Locale == cfg.DefaultLocale {
			continue
		}
		source, ok := sources[e.SourceFile+"\x00"+e.Name]
		if !ok {
			continue
		}
		if _, dup := seen[source]; !dup {
			seen[source] = len(texts)
			texts = append(texts, source)
		}
		pairs = append(pairs, pair{source: source, locale: e.Locale, translated: e.Value})
	}
	if len(pairs) == 0 {
		log.Warn().Str("locale", cfg.DefaultLocale).Msg("No translation pairs against the default locale")
		return nil
	}

	client := tm.NewEmbeddingClient(cfg.EmbeddingAPIKey, cfg.EmbeddingModel, cfg.EmbeddingBaseURL, cfg.EmbeddingDimensions)
	embeddings, err := client.EmbedBatch(ctx, texts, cfg.BatchSize)
	if err != nil {
		return fmt.Errorf("embed source texts: %w", err)
	}

	memStore := tm.NewStore(pool, cfg.EmbeddingDimensions)
	if err := memStore.EnsureSchema(ctx); err != nil {
		return err
	}

	var records []tm.Record
	for _, p := range pairs {
		idx := seen[p.source]
		if idx >= len(embeddings) || embeddings[idx] == nil {
			log.Warn().Str("text", textutil.Truncate(p.source, 30)).Msg("Missing embedding, skipping memory entry")
			continue
		}
		records = append(records, tm.Record{
			Hash:       textutil.Hash(p.source),
			Locale:     p.locale,
			Source:     p.source,
			Translated: p.translated,
			Vector:     embeddings[idx],
		})
	}
	if err := memStore.Store(ctx, records); err != nil {
		return fmt.Errorf("store translation memory: %w", err)
	}

	log.Info().Int("entries", len(records)).Msg("Translation memory updated")
	return nil
}

// runIngestGraph handles the `ingest-graph` command.
func runIngestGraph(statsPath string) error {
	ctx, cancel := setupContext()
	defer cancel()

	cfg := config.Load()

	stats, err := chunkmap.LoadStats(statsPath)
	if err != nil {
		return err
	}

	driver, err := openNeo4j(ctx, cfg)
	if err != nil {
		return err
	}
	defer driver.Close(ctx)

	builder := graphstore.NewBuilder(driver)
	if err := builder.EnsureSchema(ctx); err != nil {
		return err
	}
	return builder.UpsertStats(ctx, stats)
}

// runChunkInfo handles the `chunk-info` command.
func runChunkInfo(chunkID string) error {
	ctx, cancel := setupContext()
	defer cancel()

	cfg := config.Load()

	driver, err := openNeo4j(ctx, cfg)
	if err != nil {
		return err
	}
	defer driver.Close(ctx)

	info, err := graphstore.NewQuerier(driver).Describe(ctx, chunkID)
	if err != nil {
		return err
	}

	fmt.Printf("chunk %s (localized=%t)\n", info.ID, info.Localized)
	fmt.Printf("reachable async chunks: %d (%d localized)\n", len(info.TransitiveIDs), info.LocalizedCount)
	for _, id := range info.TransitiveIDs {
		fmt.Printf("  %s\n", id)
	}
	return nil
}

// runSuggest handles the `suggest` command.
func runSuggest(locale, text string, topK int) error {
	ctx, cancel := setupContext()
	defer cancel()

	cfg := config.Load()

	pool, err := openPostgres(ctx, cfg)
	if err != nil {
		return err
	}
	defer pool.Close()

	client := tm.NewEmbeddingClient(cfg.EmbeddingAPIKey, cfg.EmbeddingModel, cfg.EmbeddingBaseURL, cfg.EmbeddingDimensions)
	suggester := tm.NewSuggester(tm.NewStore(pool, cfg.EmbeddingDimensions), client)

	matches, err := suggester.Suggest(ctx, text, locale, topK)
	if err != nil {
		return err
	}
	if len(matches) == 0 {
		fmt.Println("no candidates found")
		return nil
	}

	for _, m := range matches {
		fmt.Printf("%.3f  %s\n       %s\n", m.Score, m.Source, m.Translated)
	}
	return nil
}
