// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pipeline drives a full run: for every month of the query window it
// lists the catalog's stations, synthesizes and expands dataset links,
// fetches them in order and assembles one time-sorted series.
package pipeline

import (
	"context"
	"log/slog"

	"github.com/kriete/station-series/internal/assemble"
	"github.com/kriete/station-series/internal/catalog"
	"github.com/kriete/station-series/internal/deploy"
	"github.com/kriete/station-series/internal/fetch"
	"github.com/kriete/station-series/internal/httputil"
	"github.com/kriete/station-series/internal/logging"
	"github.com/kriete/station-series/pkg/types"
)

// LayoutProfile is the probing strategy for one catalog layout.
type LayoutProfile struct {
	// FirstOnly keeps only the first dataset reference of a detail page.
	FirstOnly bool

	// Axes are the variant expansions applied to every synthesized link.
	Axes []deploy.VariantAxis
}

// ProfileFor returns the probing strategy for layout. The two layouts are
// kept distinct on purpose: single-station catalogs list one instrument per
// detail page, multi-station catalogs list several and vary the instrument
// index as well.
func ProfileFor(layout types.Layout) LayoutProfile {
	if layout == types.LayoutMulti {
		return LayoutProfile{Axes: []deploy.VariantAxis{deploy.Deployments, deploy.Instruments}}
	}
	return LayoutProfile{FirstOnly: true, Axes: []deploy.VariantAxis{deploy.Deployments}}
}

// Summary counts what a run did.
type Summary struct {
	Months      int `json:"months" yaml:"months"`
	Stations    int `json:"stations" yaml:"stations"`
	Candidates  int `json:"candidates" yaml:"candidates"`
	Resolved    int `json:"resolved" yaml:"resolved"`
	NotFound    int `json:"not_found" yaml:"not_found"`
	Unreachable int `json:"unreachable" yaml:"unreachable"`
	Failed      int `json:"failed" yaml:"failed"`
	Samples     int `json:"samples" yaml:"samples"`
}

// Result is what rendering consumes: the series and its metadata. Resolved
// lists every dataset read; Representatives holds the first one per station.
type Result struct {
	Series          types.AssembledSeries
	Metadata        types.SeriesMetadata
	Resolved        []types.ResolvedLink
	Representatives []types.ResolvedLink
	Summary         Summary
}

// Pipeline runs queries against one catalog server. It holds no per-run
// state and is used from a single goroutine.
type Pipeline struct {
	nav     *catalog.Navigator
	fetcher *fetch.Fetcher
	logger  *slog.Logger
}

// New returns a Pipeline whose components share client and logger.
func New(client *httputil.Client, cfg types.CatalogConfig, logger *slog.Logger) *Pipeline {
	logger = logging.OrDiscard(logger)
	return &Pipeline{
		nav:     catalog.NewNavigator(client, cfg, logger.With("component", "catalog")),
		fetcher: fetch.NewFetcher(client, logger.With("component", "fetch")),
		logger:  logger,
	}
}

// Links resolves the candidate dataset URLs for q without fetching any
// dataset. An invalid query is the only error besides context cancellation.
func (p *Pipeline) Links(ctx context.Context, q types.StationQuery) ([]types.CandidateLink, error) {
	links, _, err := p.links(ctx, q)
	return links, err
}

func (p *Pipeline) links(ctx context.Context, q types.StationQuery) ([]types.CandidateLink, Summary, error) {
	var sum Summary
	if err := q.Validate(); err != nil {
		return nil, sum, err
	}
	profile := ProfileFor(q.EffectiveLayout())
	stations := make(map[string]bool)

	var links []types.CandidateLink
	for _, ym := range q.Months() {
		if err := ctx.Err(); err != nil {
			return nil, sum, err
		}
		sum.Months++
		p.logger.Debug("resolving month", "month", ym.String())

		for _, entry := range p.nav.ListStations(ctx, q.BaseURL, ym.Year, ym.Month, q.Stations) {
			stations[entry.Station] = true
			synthesized := p.nav.Synthesize(ctx, entry, ym.Year, ym.Month, profile.FirstOnly)
			links = append(links, deploy.ExpandAll(synthesized, profile.Axes...)...)
		}
	}
	if err := ctx.Err(); err != nil {
		return nil, sum, err
	}

	sum.Stations = len(stations)
	sum.Candidates = len(links)
	p.logger.Info("candidate links resolved", "months", sum.Months, "stations", sum.Stations, "candidates", sum.Candidates)
	return links, sum, nil
}

// Run resolves, fetches and assembles the series for q. Unreachable pages
// and datasets are absorbed; an empty series is a valid result.
func (p *Pipeline) Run(ctx context.Context, q types.StationQuery) (Result, error) {
	links, sum, err := p.links(ctx, q)
	if err != nil {
		return Result{}, err
	}

	fetched := p.fetcher.FetchAll(ctx, links, q.Variable, q.QC)
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	p.logger.Info("sorting assembled samples", "datasets", len(fetched.Series))
	series := assemble.Assemble(fetched.Series...)

	sum.Resolved = len(fetched.Resolved)
	sum.NotFound = fetched.NotFound
	sum.Unreachable = fetched.Unreachable
	sum.Failed = fetched.Failed
	sum.Samples = series.Len()

	meta := types.SeriesMetadata{
		Title:    q.Title(),
		Variable: q.Variable,
		Stations: append([]string(nil), q.Stations...),
		QC:       q.QC,
	}
	if first, ok := fetched.First(); ok {
		meta.Units = first.Units
	}

	return Result{
		Series:          series,
		Metadata:        meta,
		Resolved:        fetched.Resolved,
		Representatives: representatives(fetched.Resolved),
		Summary:         sum,
	}, nil
}

// representatives keeps the first resolved link of each station, in order
// of first appearance.
func representatives(resolved []types.ResolvedLink) []types.ResolvedLink {
	seen := make(map[string]bool)
	var out []types.ResolvedLink
	for _, r := range resolved {
		if seen[r.Station] {
			continue
		}
		seen[r.Station] = true
		out = append(out, r)
	}
	return out
}
