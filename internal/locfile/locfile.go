// Package locfile loads translation files. A loc root holds one
// subdirectory per locale; every .resjson or .json file below a locale
// directory maps string names to translated values, with optional
// "_<name>.comment" entries carrying translator notes.
package locfile

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/santhosh-tekuri/jsonschema/v5"
)

// stringsSchema validates a translation file before any key is trusted:
// a flat object of string values.
var stringsSchema = jsonschema.MustCompileString("strings.schema.json", `{
	"type": "object",
	"additionalProperties": { "type": "string" }
}`)

const commentSuffix = ".comment"

// File is one parsed translation file.
type File struct {
	// Path is the file's location on disk.
	Path string
	// SourceFile is the path relative to the locale directory; it is the
	// stable identity shared by all locales of the same file.
	SourceFile string
	// Locale is the locale directory the file was found under.
	Locale string
	// Strings maps string name to translated value.
	Strings map[string]string
	// Comments maps string name to its translator note, when present.
	Comments map[string]string
}

// SupportedExtensions lists the translation file types handled.
var SupportedExtensions = map[string]bool{
	".resjson": true,
	".json":    true,
}

// Parse reads and validates a single translation file.
func Parse(path, sourceFile, locale string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read loc file: %w", err)
	}

	var decoded interface{}
	if err := json.Unmarshal(data, &decoded); err != nil {
		return nil, fmt.Errorf("decode loc file %s: %w", path, err)
	}
	if err := stringsSchema.Validate(decoded); err != nil {
		return nil, fmt.Errorf("validate loc file %s: %w", path, err)
	}

	raw, ok := decoded.(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("loc file %s: expected a JSON object", path)
	}

	f := &File{
		Path:       path,
		SourceFile: sourceFile,
		Locale:     locale,
		Strings:    make(map[string]string),
		Comments:   make(map[string]string),
	}

	for key, v := range raw {
		value := v.(string)
		if strings.HasPrefix(key, "_") && strings.HasSuffix(key, commentSuffix) {
			name := strings.TrimSuffix(strings.TrimPrefix(key, "_"), commentSuffix)
			f.Comments[name] = value
			continue
		}
		f.Strings[key] = value
	}

	return f, nil
}

// ParseDir walks a loc root and parses every translation file below each
// locale directory. Results are ordered by (locale, source file) so serial
// assignment downstream is deterministic.
func ParseDir(root string) ([]*File, error) {
	root, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve loc root: %w", err)
	}

	localeDirs, err := os.ReadDir(root)
	if err != nil {
		return nil, fmt.Errorf("read loc root: %w", err)
	}

	var files []*File
	for _, dir := range localeDirs {
		if !dir.IsDir() {
			continue
		}
		locale := dir.Name()
		localeRoot := filepath.Join(root, locale)

		err := filepath.Walk(localeRoot, func(path string, info os.FileInfo, err error) error {
			if err != nil {
				log.Warn().Err(err).Str("path", path).Msg("Error walking loc root")
				return nil
			}
			if info.IsDir() || !SupportedExtensions[strings.ToLower(filepath.Ext(path))] {
				return nil
			}

			rel, err := filepath.Rel(localeRoot, path)
			if err != nil {
				return fmt.Errorf("relativize %s: %w", path, err)
			}
			f, err := Parse(path, filepath.ToSlash(rel), locale)
			if err != nil {
				return err
			}
			files = append(files, f)
			return nil
		})
		if err != nil {
			return nil, err
		}
	}

	sort.Slice(files, func(i, j int) bool {
		if files[i].Locale != files[j].Locale {
			return files[i].Locale < files[j].Locale
		}
		return files[i].SourceFile < files[j].SourceFile
	})

	log.Info().Int("files", len(files)).Str("root", root).Msg("Parsed translation files")
	return files, nil
}

// SortedNames returns the string names of a file in sorted order.
func (f *File) SortedNames() []string {
	names := make([]string, 0, len(f.Strings))
	for name := range f.Strings {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
