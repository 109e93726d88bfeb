package assets

import (
	"os"
	"path/filepath"
	"sort"
	"testing"

	"bundle-localizer/internal/placeholder"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeAsset(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

// TestWalk verifies discovery, relative naming, extension filtering, and
// the localized/non-localized classification.
func TestWalk(t *testing.T) {
	root := t.TempDir()
	writeAsset(t, filepath.Join(root, "app.js"), "x = '"+placeholder.FormatLocalized(1)+"';")
	writeAsset(t, filepath.Join(root, "chunks", "runtime.js"), "load("+placeholder.FormatJsonp("id")+");")
	writeAsset(t, filepath.Join(root, "styles", "main.css"), "body{}")
	writeAsset(t, filepath.Join(root, "app.js.map"), "{}")

	entries, err := Walk(root)
	require.NoError(t, err)
	require.Len(t, entries, 3)

	sort.Slice(entries, func(i, j int) bool { return entries[i].Name < entries[j].Name })

	assert.Equal(t, "app.js", entries[0].Name)
	assert.True(t, entries[0].Localized)

	// Chunk-mapping placeholders alone do not make an asset localized.
	assert.Equal(t, "chunks/runtime.js", entries[1].Name)
	assert.False(t, entries[1].Localized)

	assert.Equal(t, "styles/main.css", entries[2].Name)
	assert.False(t, entries[2].Localized)
}

// TestWalk_LocalizedName classifies an asset whose name carries the
// placeholder even when its content does not.
func TestWalk_LocalizedName(t *testing.T) {
	root := t.TempDir()
	writeAsset(t, filepath.Join(root, placeholder.FormatLocalized(7)+".js"), "plain")

	entries, err := Walk(root)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.True(t, entries[0].Localized)
}

// TestWalk_NotADirectory rejects a file root.
func TestWalk_NotADirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.js")
	writeAsset(t, path, "x")

	_, err := Walk(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not a directory")
}

// TestContainsPlaceholder covers all placeholder shapes plus plain text.
func TestContainsPlaceholder(t *testing.T) {
	assert.True(t, ContainsPlaceholder(placeholder.FormatLocalized(3)))
	assert.True(t, ContainsPlaceholder(placeholder.FormatLocaleName()))
	assert.True(t, ContainsPlaceholder(placeholder.FormatJsonp("id")))
	assert.False(t, ContainsPlaceholder("var x = 1;"))
}
