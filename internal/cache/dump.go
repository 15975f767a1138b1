// Package cache holds the optional on-disk stores: JSON dump files written
// by bulk scrape jobs and a SQLite-backed raw response cache.
package cache

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

// DumpStore writes the results of one bulk operation to a JSON file, a
// plain array of normalized records, one file per operation.
type DumpStore struct {
	dir string
}

// NewDumpStore creates a dump store rooted at dir.
func NewDumpStore(dir string) *DumpStore {
	return &DumpStore{dir: dir}
}

// Path returns the dump file of an operation.
func (d *DumpStore) Path(operation string) string {
	return filepath.Join(d.dir, operation+".json")
}

// Write marshals records into the operation's dump file. The write goes
// through a temp file and a rename so readers never see a torn dump.
func (d *DumpStore) Write(operation string, records any) error {
	if err := os.MkdirAll(d.dir, 0755); err != nil {
		return fmt.Errorf("failed to create dump dir: %w", err)
	}

	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal %s dump: %w", operation, err)
	}

	path := d.Path(operation)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("failed to write dump: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("failed to publish dump: %w", err)
	}

	slog.Info("Dump written",
		slog.String("operation", operation),
		slog.String("path", path))
	return nil
}

// Read unmarshals the operation's dump file into out. A missing file is
// reported as os.ErrNotExist.
func (d *DumpStore) Read(operation string, out any) error {
	data, err := os.ReadFile(d.Path(operation))
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to decode %s dump: %w", operation, err)
	}
	return nil
}
