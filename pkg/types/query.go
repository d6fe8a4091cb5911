// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the station-series pipeline:
// the query that drives a run, the links produced while resolving the
// catalog, and the raw and assembled series handed to rendering.
package types

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidQuery is wrapped by every StationQuery validation failure.
var ErrInvalidQuery = errors.New("invalid station query")

// Layout selects how a catalog's detail pages and dataset names are probed.
type Layout string

const (
	// LayoutSingle takes the first dataset of each detail page and probes
	// deployment numbers only.
	LayoutSingle Layout = "single"

	// LayoutMulti takes every dataset of each detail page and additionally
	// probes instrument-index variants.
	LayoutMulti Layout = "multi"
)

// StationQuery holds everything a pipeline run needs. It is built once by
// the caller and treated as read-only by every component.
type StationQuery struct {
	// BaseURL is the top-level catalog page listing the stations.
	BaseURL string `json:"base_url" yaml:"base_url"`

	// Stations lists the wanted station names in order. An empty list
	// accepts every station found on the catalog page.
	Stations []string `json:"stations" yaml:"stations"`

	StartYear  int `json:"start_year" yaml:"start_year"`
	EndYear    int `json:"end_year" yaml:"end_year"`
	StartMonth int `json:"start_month" yaml:"start_month"`
	EndMonth   int `json:"end_month" yaml:"end_month"`

	// Variable is the dataset variable to read (e.g. "AIR_TEM").
	Variable string `json:"variable" yaml:"variable"`

	// QC enables quality-control filtering through the QC_<variable> companion.
	QC bool `json:"qc" yaml:"qc"`

	// Layout defaults to LayoutSingle when empty.
	Layout Layout `json:"layout,omitempty" yaml:"layout,omitempty"`
}

// YearMonth is one month of the query window.
type YearMonth struct {
	Year  int
	Month int
}

func (ym YearMonth) String() string {
	return fmt.Sprintf("%04d-%02d", ym.Year, ym.Month)
}

// Validate reports the first missing or inconsistent field. A query that
// fails validation is fatal to the run.
func (q StationQuery) Validate() error {
	switch {
	case strings.TrimSpace(q.BaseURL) == "":
		return fmt.Errorf("%w: base_url is required", ErrInvalidQuery)
	case strings.TrimSpace(q.Variable) == "":
		return fmt.Errorf("%w: variable is required", ErrInvalidQuery)
	case q.StartYear <= 0 || q.EndYear <= 0:
		return fmt.Errorf("%w: start_year and end_year are required", ErrInvalidQuery)
	case q.StartMonth < 1 || q.StartMonth > 12:
		return fmt.Errorf("%w: start_month %d out of range 1-12", ErrInvalidQuery, q.StartMonth)
	case q.EndMonth < 1 || q.EndMonth > 12:
		return fmt.Errorf("%w: end_month %d out of range 1-12", ErrInvalidQuery, q.EndMonth)
	}
	if q.EndYear*12+q.EndMonth < q.StartYear*12+q.StartMonth {
		return fmt.Errorf("%w: window %04d-%02d ends before it starts (%04d-%02d)",
			ErrInvalidQuery, q.EndYear, q.EndMonth, q.StartYear, q.StartMonth)
	}
	switch q.Layout {
	case "", LayoutSingle, LayoutMulti:
	default:
		return fmt.Errorf("%w: unknown layout %q", ErrInvalidQuery, q.Layout)
	}
	return nil
}

// Months enumerates the inclusive window from (StartYear, StartMonth) to
// (EndYear, EndMonth) in calendar order.
func (q StationQuery) Months() []YearMonth {
	first := q.StartYear*12 + q.StartMonth - 1
	last := q.EndYear*12 + q.EndMonth - 1
	if last < first {
		return nil
	}
	months := make([]YearMonth, 0, last-first+1)
	for m := first; m <= last; m++ {
		months = append(months, YearMonth{Year: m / 12, Month: m%12 + 1})
	}
	return months
}

// EffectiveLayout returns the layout, defaulting to LayoutSingle.
func (q StationQuery) EffectiveLayout() Layout {
	if q.Layout == "" {
		return LayoutSingle
	}
	return q.Layout
}

// Title is the display title handed to rendering: the station names,
// followed by a marker when QC filtering was applied.
func (q StationQuery) Title() string {
	name := strings.Join(q.Stations, ", ")
	if name == "" {
		name = "all stations"
	}
	if q.QC {
		return name + " (QC filtered)"
	}
	return name
}

// ParseStationList splits a comma-separated station list, trimming blanks
// and dropping empty names.
func ParseStationList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if name := strings.TrimSpace(part); name != "" {
			out = append(out, name)
		}
	}
	return out
}
