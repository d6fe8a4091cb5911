// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"time"

	"go.yaml.in/yaml/v3"

	"github.com/kriete/station-series/pkg/types"
)

// Document is the exported form of a series: metadata plus one entry per
// sample. ID and CreatedAt are set only for stored runs.
type Document struct {
	ID        string     `json:"id,omitempty" yaml:"id,omitempty"`
	CreatedAt *time.Time `json:"created_at,omitempty" yaml:"created_at,omitempty"`

	types.SeriesMetadata `yaml:",inline"`

	Samples []ExportSample `json:"samples" yaml:"samples"`
}

// ExportSample is one sample. Time and Value are nil where the series
// holds NaN or an infinity.
type ExportSample struct {
	Time   *float64 `json:"time" yaml:"time"`
	Value  *float64 `json:"value" yaml:"value"`
	Status string   `json:"status" yaml:"status"`
	Index  int      `json:"index" yaml:"index"`
}

// NewDocument builds a Document from an unsaved series.
func NewDocument(meta types.SeriesMetadata, series types.AssembledSeries) Document {
	doc := Document{
		SeriesMetadata: meta,
		Samples:        make([]ExportSample, series.Len()),
	}
	for i := range series.Time {
		doc.Samples[i] = ExportSample{
			Time:   finite(series.Time[i]),
			Value:  finite(series.Value[i]),
			Status: series.Status[i].String(),
			Index:  series.Index[i],
		}
	}
	return doc
}

// finite returns nil for values JSON cannot represent.
func finite(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

// Document converts a stored run for export.
func (r StoredRun) Document() Document {
	doc := NewDocument(r.Metadata, r.Series)
	doc.ID = r.ID
	created := r.CreatedAt
	doc.CreatedAt = &created
	return doc
}

// ExportJSON writes doc to path as indented JSON.
func ExportJSON(path string, doc Document) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling JSON: %w", err)
	}
	return writeFile(path, data)
}

// ExportYAML writes doc to path as YAML.
func ExportYAML(path string, doc Document) error {
	data, err := yaml.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshaling YAML: %w", err)
	}
	return writeFile(path, data)
}

// Export picks JSON or YAML from the extension of path (.json, .yaml, .yml).
func Export(path string, doc Document) error {
	switch filepath.Ext(path) {
	case ".json":
		return ExportJSON(path, doc)
	case ".yaml", ".yml":
		return ExportYAML(path, doc)
	default:
		return fmt.Errorf("unsupported export format %q (want .json, .yaml or .yml)", filepath.Ext(path))
	}
}

func writeFile(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating export directory: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}
