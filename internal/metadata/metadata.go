// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package metadata writes YAML sidecar records for resolved entries.
package metadata

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/bibfetch/internal/biblatex"
)

// Record is the YAML shape of a resolved entry. Fields keep the entry's
// emission order so sidecars diff cleanly against the BibLaTeX output.
type Record struct {
	Key    string        `yaml:"key" json:"key"`
	Type   string        `yaml:"type" json:"type"`
	Fields []RecordField `yaml:"fields" json:"fields"`
}

// RecordField is one name/value pair of a Record.
type RecordField struct {
	Name  string `yaml:"name" json:"name"`
	Value string `yaml:"value" json:"value"`
}

// Write stores the entry as <dir>/<sanitized key>.yaml and returns the
// path written. The directory is created if needed.
func Write(dir string, entry *biblatex.Entry) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating directory %s: %w", dir, err)
	}

	rec := Record{Key: entry.Key, Type: string(entry.Type)}
	for _, f := range entry.Fields {
		rec.Fields = append(rec.Fields, RecordField{Name: f.Name, Value: f.Value})
	}

	data, err := yaml.Marshal(rec)
	if err != nil {
		return "", fmt.Errorf("marshaling metadata: %w", err)
	}

	path := filepath.Join(dir, sanitizeKey(entry.Key)+".yaml")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("writing metadata: %w", err)
	}
	return path, nil
}

// Read loads a sidecar record written by Write.
func Read(path string) (*Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var rec Record
	if err := yaml.Unmarshal(data, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

// sanitizeKey maps an entry key to a filename-safe slug. Entry keys use
// ":" and "/" as separators, neither of which belongs in a file name.
func sanitizeKey(key string) string {
	return strings.NewReplacer("/", "-", ":", "-").Replace(key)
}
