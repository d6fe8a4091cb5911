// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// HTTPConfig holds shared HTTP settings for catalog and dataset requests.
type HTTPConfig struct {
	// Timeout is the per-request timeout. Zero means no timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with every request
	// (e.g. "station-series/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent"`

	// RequestsPerSecond paces requests to the catalog host. Zero or
	// negative means unlimited.
	RequestsPerSecond float64 `json:"requests_per_second" yaml:"requests_per_second"`

	// Username and Password enable HTTP basic auth when both are set.
	Username string `json:"-" yaml:"-"`
	Password string `json:"-" yaml:"-"`
}

// CatalogConfig describes the catalog server's path conventions.
type CatalogConfig struct {
	HTTPConfig `yaml:",inline"`

	// SkipLeading is the number of anchors at the top of a catalog page
	// that are page chrome rather than entries. Zero means the default (1);
	// use SkipNone to skip nothing.
	SkipLeading int `json:"skip_leading" yaml:"skip_leading"`

	// SkipTrailing is the number of navigation anchors at the bottom of the
	// top-level catalog page. Zero means the default (4); use SkipNone to
	// skip nothing.
	SkipTrailing int `json:"skip_trailing" yaml:"skip_trailing"`

	// DetailSuffix is appended to "<parent>/<station>/" to reach a
	// station's detail page (default "L1/catalog.html").
	DetailSuffix string `json:"detail_suffix" yaml:"detail_suffix"`

	// CatalogService and AccessService are the THREDDS service path
	// segments for the HTML catalog and OPeNDAP access (default "catalog"
	// and "dodsC").
	CatalogService string `json:"catalog_service" yaml:"catalog_service"`
	AccessService  string `json:"access_service" yaml:"access_service"`

	// QualityLevel is the path segment after which the year directory is
	// inserted (default "L1").
	QualityLevel string `json:"quality_level" yaml:"quality_level"`

	// LatestMarker is the file-name suffix of the "latest" aggregation
	// (default "_latest").
	LatestMarker string `json:"latest_marker" yaml:"latest_marker"`
}

// SkipNone sets SkipLeading or SkipTrailing to skip no anchors. Any
// negative count has the same effect.
const SkipNone = -1

// Defaults for CatalogConfig fields left empty.
const (
	DefaultSkipLeading    = 1
	DefaultSkipTrailing   = 4
	DefaultDetailSuffix   = "L1/catalog.html"
	DefaultCatalogService = "catalog"
	DefaultAccessService  = "dodsC"
	DefaultQualityLevel   = "L1"
	DefaultLatestMarker   = "_latest"
	DefaultUserAgent      = "station-series/0.1"
)

// WithDefaults returns a copy with empty fields filled in. Negative skip
// counts are kept and read as zero.
func (c CatalogConfig) WithDefaults() CatalogConfig {
	if c.SkipLeading == 0 {
		c.SkipLeading = DefaultSkipLeading
	}
	if c.SkipTrailing == 0 {
		c.SkipTrailing = DefaultSkipTrailing
	}
	if c.DetailSuffix == "" {
		c.DetailSuffix = DefaultDetailSuffix
	}
	if c.CatalogService == "" {
		c.CatalogService = DefaultCatalogService
	}
	if c.AccessService == "" {
		c.AccessService = DefaultAccessService
	}
	if c.QualityLevel == "" {
		c.QualityLevel = DefaultQualityLevel
	}
	if c.LatestMarker == "" {
		c.LatestMarker = DefaultLatestMarker
	}
	if c.UserAgent == "" {
		c.UserAgent = DefaultUserAgent
	}
	return c
}

// LogConfig holds logger settings.
type LogConfig struct {
	// Level is one of debug, info, warn, error (default info).
	Level string `json:"level" yaml:"level"`

	// Format is text, json or auto (default auto).
	Format string `json:"format" yaml:"format"`
}

// StoreConfig holds settings for the SQLite series store.
type StoreConfig struct {
	// Path is the database file (default "data/series.db").
	Path string `json:"path" yaml:"path"`
}

// Config groups everything the CLI reads from viper.
type Config struct {
	Query   StationQuery  `json:"query" yaml:"query"`
	Catalog CatalogConfig `json:"catalog" yaml:"catalog"`
	Log     LogConfig     `json:"log" yaml:"log"`
	Store   StoreConfig   `json:"store" yaml:"store"`
}
