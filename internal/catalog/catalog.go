// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package catalog walks a THREDDS-style HTML catalog: it lists the stations
// on the top-level page, probes their detail pages, and synthesizes monthly
// dataset URLs from the "latest" references found there.
package catalog

import (
	"context"
	"errors"
	"log/slog"
	"net/url"

	"github.com/kriete/station-series/internal/httputil"
	"github.com/kriete/station-series/internal/logging"
	"github.com/kriete/station-series/pkg/types"
)

// Navigator reads catalog and detail pages. Every page failure is absorbed
// and logged; the affected month or station just yields nothing.
type Navigator struct {
	client *httputil.Client
	cfg    types.CatalogConfig
	logger *slog.Logger
}

// NewNavigator returns a Navigator using client for all page fetches.
func NewNavigator(client *httputil.Client, cfg types.CatalogConfig, logger *slog.Logger) *Navigator {
	return &Navigator{
		client: client,
		cfg:    cfg.WithDefaults(),
		logger: logging.OrDiscard(logger),
	}
}

// ListStations fetches the catalog page at baseURL and returns one entry per
// station whose detail page is reachable. When wanted is non-empty only
// stations named exactly in it are kept. year and month only label logs;
// the catalog page itself is not per month.
func (n *Navigator) ListStations(ctx context.Context, baseURL string, year, month int, wanted []string) []types.CatalogEntry {
	log := n.logger.With("catalog", baseURL, "year", year, "month", month)

	page, err := n.client.Get(ctx, baseURL)
	if err != nil {
		log.Warn("catalog page unavailable", "error", err)
		return nil
	}
	hrefs, err := parseAnchors(page)
	if err != nil {
		log.Warn("catalog page unreadable", "error", err)
		return nil
	}
	base, err := url.Parse(baseURL)
	if err != nil {
		log.Warn("catalog URL invalid", "error", err)
		return nil
	}

	want := make(map[string]bool, len(wanted))
	for _, w := range wanted {
		want[w] = true
	}

	var entries []types.CatalogEntry
	seen := make(map[string]bool)
	for _, href := range trimPositions(hrefs, n.cfg.SkipLeading, n.cfg.SkipTrailing) {
		token := stationToken(href)
		if token == "" || seen[token] {
			continue
		}
		seen[token] = true
		if len(want) > 0 && !want[token] {
			log.Debug("skipping station", "station", token)
			continue
		}

		detail := base.ResolveReference(&url.URL{Path: token + "/" + n.cfg.DetailSuffix}).String()
		if ctx.Err() != nil {
			return entries
		}
		if _, err := n.client.Get(ctx, detail); err != nil {
			log.Warn("detail page unavailable", "station", token, "url", detail, "error", err)
			continue
		}
		entries = append(entries, types.CatalogEntry{Station: token, DetailURL: detail})
	}

	log.Debug("catalog scanned", "anchors", len(hrefs), "stations", len(entries))
	return entries
}

// Synthesize fetches entry's detail page and rewrites its dataset
// references into year/month URLs. With firstOnly set, only the first
// reference that rewrites cleanly is used; the first dataset listed is
// taken to be the most relevant one.
func (n *Navigator) Synthesize(ctx context.Context, entry types.CatalogEntry, year, month int, firstOnly bool) []types.CandidateLink {
	log := n.logger.With("station", entry.Station, "year", year, "month", month)

	tmpl, err := NewDatasetTemplate(entry.DetailURL, n.cfg)
	if err != nil {
		log.Warn("detail URL not under catalog service", "url", entry.DetailURL, "error", err)
		return nil
	}

	page, err := n.client.Get(ctx, entry.DetailURL)
	if err != nil {
		log.Warn("detail page unavailable", "url", entry.DetailURL, "error", err)
		return nil
	}
	hrefs, err := parseAnchors(page)
	if err != nil {
		log.Warn("detail page unreadable", "url", entry.DetailURL, "error", err)
		return nil
	}

	var links []types.CandidateLink
	for _, href := range trimPositions(hrefs, n.cfg.SkipLeading, 0) {
		if href == "" {
			continue
		}
		dataURL, err := tmpl.Resolve(href, year, month)
		if err != nil {
			if !errors.Is(err, ErrUnexpectedLayout) {
				log.Warn("dataset reference rejected", "href", href, "error", err)
			} else {
				log.Debug("dataset reference skipped", "href", href, "error", err)
			}
			continue
		}
		links = append(links, types.CandidateLink{
			Station: entry.Station,
			Year:    year,
			Month:   month,
			URL:     dataURL,
		})
		if firstOnly {
			break
		}
	}

	if len(links) == 0 {
		log.Info("no dataset references on detail page", "url", entry.DetailURL)
	}
	return links
}
