// Package stringtable implements the serial-number → string-data
// collaborator consumed by the sequence parser: an in-memory table for
// offline runs and tests, and a PostgreSQL-backed store for shared use.
package stringtable

import (
	"fmt"
	"sync"

	"bundle-localizer/internal/placeholder"
)

// MemoryTable is an in-memory string table with stable serial assignment.
// Serials are keyed by (source file, string name) so re-registering the
// same string returns the same serial.
type MemoryTable struct {
	mu      sync.RWMutex
	entries map[int]placeholder.StringData
	serials map[string]int
	next    int
}

// NewMemoryTable returns an empty table. Serial numbers start at 1.
func NewMemoryTable() *MemoryTable {
	return &MemoryTable{
		entries: make(map[int]placeholder.StringData),
		serials: make(map[string]int),
		next:    1,
	}
}

// Register assigns (or returns the existing) serial for a string identity.
func (t *MemoryTable) Register(sourceFile, name string) int {
	key := stringKey(sourceFile, name)

	t.mu.Lock()
	defer t.mu.Unlock()

	if serial, ok := t.serials[key]; ok {
		return serial
	}
	serial := t.next
	t.next++
	t.serials[key] = serial
	t.entries[serial] = placeholder.StringData{
		Name:       name,
		SourceFile: sourceFile,
		Values:     make(map[string]string),
	}
	return serial
}

// RegisterSerial inserts a string identity under an externally assigned
// serial, keeping placeholders emitted against a persistent store aligned
// with this table. Subsequent Register calls allocate above it.
func (t *MemoryTable) RegisterSerial(serial int, sourceFile, name string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	key := stringKey(sourceFile, name)
	if existing, ok := t.serials[key]; ok && existing == serial {
		return
	}
	t.serials[key] = serial
	if _, ok := t.entries[serial]; !ok {
		t.entries[serial] = placeholder.StringData{
			Name:       name,
			SourceFile: sourceFile,
			Values:     make(map[string]string),
		}
	}
	if serial >= t.next {
		t.next = serial + 1
	}
}

// SetValue records the translation of a registered string for one locale.
func (t *MemoryTable) SetValue(serial int, locale, value string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	data, ok := t.entries[serial]
	if !ok {
		return fmt.Errorf("unknown serial %d", serial)
	}
	data.Values[locale] = value
	return nil
}

// Lookup implements placeholder.StringTable.
func (t *MemoryTable) Lookup(serial int) (placeholder.StringData, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	data, ok := t.entries[serial]
	return data, ok
}

// Len returns the number of registered strings.
func (t *MemoryTable) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.entries)
}

// Serial returns the serial assigned to a string identity, if any.
func (t *MemoryTable) Serial(sourceFile, name string) (int, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	serial, ok := t.serials[stringKey(sourceFile, name)]
	return serial, ok
}

func stringKey(sourceFile, name string) string {
	return sourceFile + "\x00" + name
}
