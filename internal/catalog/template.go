// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package catalog

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/kriete/station-series/pkg/types"
)

// ErrUnexpectedLayout is returned when a catalog URL or dataset reference
// does not have the path shape the template rewrites.
var ErrUnexpectedLayout = errors.New("unexpected catalog layout")

// DatasetTemplate turns a catalog "latest" dataset reference into the
// OPeNDAP URL of one monthly file:
//
//	catalog.html?dataset=mooring/station/L1/dep0001_station_L1_latest.nc
//	→ <access root>/mooring/station/L1/2019/dep0001_station_L1_2019-03.nc
type DatasetTemplate struct {
	accessRoot   *url.URL
	qualityLevel string
	latestMarker string
}

// NewDatasetTemplate derives the access root from any URL served under the
// catalog service (the catalog page or a detail page): everything before
// the catalog service segment, followed by the access service segment.
func NewDatasetTemplate(catalogURL string, cfg types.CatalogConfig) (*DatasetTemplate, error) {
	cfg = cfg.WithDefaults()
	u, err := url.Parse(catalogURL)
	if err != nil {
		return nil, fmt.Errorf("parsing catalog URL %q: %w", catalogURL, err)
	}

	segments := strings.Split(strings.Trim(u.Path, "/"), "/")
	idx := -1
	for i, s := range segments {
		if s == cfg.CatalogService {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, fmt.Errorf("%w: no %q segment in %s", ErrUnexpectedLayout, cfg.CatalogService, catalogURL)
	}

	root := *u
	root.Path = "/" + strings.Join(append(append([]string{}, segments[:idx]...), cfg.AccessService), "/") + "/"
	root.RawPath = ""
	root.RawQuery = ""
	root.Fragment = ""

	return &DatasetTemplate{
		accessRoot:   &root,
		qualityLevel: cfg.QualityLevel,
		latestMarker: cfg.LatestMarker,
	}, nil
}

// AccessRoot returns the OPeNDAP root the template writes under.
func (t *DatasetTemplate) AccessRoot() string { return t.accessRoot.String() }

// Resolve rewrites a detail-page href into the dataset URL for year/month.
// The href must carry a dataset= reference whose directory part contains
// the quality-level segment and whose file name ends in the latest marker.
func (t *DatasetTemplate) Resolve(href string, year, month int) (string, error) {
	ref, err := url.Parse(href)
	if err != nil {
		return "", fmt.Errorf("%w: parsing href %q: %v", ErrUnexpectedLayout, href, err)
	}
	dataset := strings.Trim(ref.Query().Get("dataset"), "/")
	if dataset == "" {
		return "", fmt.Errorf("%w: no dataset reference in %q", ErrUnexpectedLayout, href)
	}
	if month < 1 || month > 12 {
		return "", fmt.Errorf("month %d out of range", month)
	}

	segments := strings.Split(dataset, "/")
	dirs, file := segments[:len(segments)-1], segments[len(segments)-1]

	quality := -1
	for i := len(dirs) - 1; i >= 0; i-- {
		if dirs[i] == t.qualityLevel {
			quality = i
			break
		}
	}
	if quality < 0 {
		return "", fmt.Errorf("%w: no %q segment in dataset %q", ErrUnexpectedLayout, t.qualityLevel, dataset)
	}

	stem := strings.TrimSuffix(file, ".nc")
	if !strings.HasSuffix(stem, t.latestMarker) || stem == t.latestMarker {
		return "", fmt.Errorf("%w: dataset %q does not end in %q", ErrUnexpectedLayout, dataset, t.latestMarker)
	}
	stem = strings.TrimSuffix(stem, t.latestMarker)

	out := make([]string, 0, len(segments)+1)
	out = append(out, dirs[:quality+1]...)
	out = append(out, fmt.Sprintf("%04d", year))
	out = append(out, dirs[quality+1:]...)
	out = append(out, fmt.Sprintf("%s_%04d-%02d.nc", stem, year, month))

	return t.accessRoot.JoinPath(out...).String(), nil
}
