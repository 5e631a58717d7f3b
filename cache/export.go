package cache

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"time"
)

// SnapshotVersion is the current snapshot file format version.
const SnapshotVersion = "1.0"

// Snapshot is the JSON structure used to persist an in-memory cache.
type Snapshot struct {
	Version    string            `json:"version"`
	ExportedAt string            `json:"exported_at"`
	Entries    []SnapshotEntry   `json:"entries"`
	Metadata   map[string]string `json:"metadata,omitempty"`
}

// SnapshotEntry is a single cached result.
type SnapshotEntry struct {
	Key   string          `json:"key"`
	Value json.RawMessage `json:"value"`
}

// Exporter writes cache snapshots.
type Exporter struct {
	cache *InMemoryCache
}

// NewExporter creates a new cache exporter.
func NewExporter(cache *InMemoryCache) *Exporter {
	return &Exporter{cache: cache}
}

// Export writes the cache contents to w as indented JSON, sorted by key.
// Values that are not valid JSON are skipped.
func (e *Exporter) Export(w io.Writer, metadata map[string]string) error {
	data := e.cache.Entries()
	keys := make([]string, 0, len(data))
	for k := range data {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	snap := Snapshot{
		Version:    SnapshotVersion,
		ExportedAt: time.Now().UTC().Format(time.RFC3339),
		Entries:    make([]SnapshotEntry, 0, len(keys)),
		Metadata:   metadata,
	}
	for _, k := range keys {
		if !json.Valid([]byte(data[k])) {
			continue
		}
		snap.Entries = append(snap.Entries, SnapshotEntry{Key: k, Value: json.RawMessage(data[k])})
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(snap); err != nil {
		return fmt.Errorf("encoding JSON: %w", err)
	}

	return nil
}

// ExportToFile writes a snapshot atomically via a temporary file.
func (e *Exporter) ExportToFile(path string, metadata map[string]string) error {
	tmp := path + ".tmp"
	f, err := os.Create(tmp) // #nosec G304 - path is operator-provided
	if err != nil {
		return fmt.Errorf("creating file: %w", err)
	}

	if err := e.Export(f, metadata); err != nil {
		f.Close()
		os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("closing file: %w", err)
	}

	return os.Rename(tmp, path)
}

// Importer loads cache snapshots.
type Importer struct {
	cache ResultCache
}

// NewImporter creates a new cache importer.
func NewImporter(cache ResultCache) *Importer {
	return &Importer{cache: cache}
}

// ImportResult contains statistics about the import operation.
type ImportResult struct {
	Version  string
	Metadata map[string]string
	Imported int
	Failed   int
}

// Import reads a snapshot from r and loads its entries, compacted, into the cache.
func (i *Importer) Import(ctx context.Context, r io.Reader) (*ImportResult, error) {
	var snap Snapshot
	if err := json.NewDecoder(r).Decode(&snap); err != nil {
		return nil, fmt.Errorf("decoding JSON: %w", err)
	}
	if snap.Version != SnapshotVersion {
		return nil, fmt.Errorf("unsupported snapshot version %q", snap.Version)
	}

	result := &ImportResult{
		Version:  snap.Version,
		Metadata: snap.Metadata,
	}

	for _, entry := range snap.Entries {
		if entry.Key == "" {
			result.Failed++
			continue
		}
		var value bytes.Buffer
		if err := json.Compact(&value, entry.Value); err != nil {
			result.Failed++
			continue
		}
		if err := i.cache.Set(ctx, entry.Key, value.String()); err != nil {
			result.Failed++
			continue
		}
		result.Imported++
	}

	return result, nil
}

// ImportFromFile imports a snapshot file. A missing file is not an error
// and imports nothing.
func (i *Importer) ImportFromFile(ctx context.Context, path string) (*ImportResult, error) {
	f, err := os.Open(path) // #nosec G304 - path is operator-provided
	if errors.Is(err, os.ErrNotExist) {
		return &ImportResult{Version: SnapshotVersion}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("opening file: %w", err)
	}
	defer f.Close()

	return i.Import(ctx, f)
}
