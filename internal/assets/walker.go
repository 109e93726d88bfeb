// Package assets discovers compiled bundle output and classifies it for
// the reconstruction pipeline.
package assets

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"bundle-localizer/internal/placeholder"

	"github.com/rs/zerolog/log"
)

// SupportedExtensions lists asset types the pipeline rewrites.
var SupportedExtensions = map[string]bool{
	".js":   true,
	".css":  true,
	".json": true,
}

// Entry is one discovered asset, loaded and classified.
type Entry struct {
	// Path is the asset's absolute location on disk.
	Path string
	// Name is the path relative to the walked root, slash-separated; it is
	// the asset name the bundler emitted.
	Name string
	// Content is the raw asset text.
	Content string
	// Localized reports whether the content or the name contains a
	// localized-string placeholder. Assets carrying only locale-name or
	// chunk-mapping placeholders are rendered a single time.
	Localized bool
}

// Walk discovers all supported assets under the given output directory.
func Walk(root string) ([]Entry, error) {
	root, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve output root: %w", err)
	}

	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("stat output root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("output root is not a directory: %s", root)
	}

	var entries []Entry

	err = filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			log.Warn().Err(err).Str("path", path).Msg("Error walking output root")
			return nil
		}
		if info.IsDir() || !SupportedExtensions[strings.ToLower(filepath.Ext(path))] {
			return nil
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read asset %s: %w", path, err)
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return fmt.Errorf("relativize %s: %w", path, err)
		}

		name := filepath.ToSlash(rel)
		content := string(data)
		entries = append(entries, Entry{
			Path:      path,
			Name:      name,
			Content:   content,
			Localized: placeholder.ContainsLocalized(content) || placeholder.ContainsLocalized(name),
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk output root: %w", err)
	}

	log.Info().Int("count", len(entries)).Str("root", root).Msg("Discovered assets")
	return entries, nil
}

// ContainsPlaceholder reports whether text carries any localization
// placeholder.
func ContainsPlaceholder(text string) bool {
	return strings.Contains(text, placeholder.Prefix)
}
