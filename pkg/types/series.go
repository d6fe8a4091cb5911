// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// CatalogEntry is a station found on the catalog page together with the
// detail page that lists its datasets.
type CatalogEntry struct {
	Station   string `json:"station" yaml:"station"`
	DetailURL string `json:"detail_url" yaml:"detail_url"`
}

// CandidateLink is a synthesized dataset URL for one station, month and
// deployment. It may not exist; only a fetch attempt tells.
type CandidateLink struct {
	Station string `json:"station" yaml:"station"`
	Year    int    `json:"year" yaml:"year"`
	Month   int    `json:"month" yaml:"month"`

	// Deployment is the probed deployment number, or 0 when the URL has no
	// deployment marker.
	Deployment int `json:"deployment,omitempty" yaml:"deployment,omitempty"`

	URL string `json:"url" yaml:"url"`
}

// ResolvedLink is a candidate whose dataset was opened successfully.
type ResolvedLink struct {
	CandidateLink `yaml:",inline"`

	// Units is the units attribute of the requested variable.
	Units string `json:"units,omitempty" yaml:"units,omitempty"`

	// Title is the dataset's global title attribute, if any.
	Title string `json:"title,omitempty" yaml:"title,omitempty"`
}

// SampleStatus marks how a sample's value should be read.
type SampleStatus uint8

const (
	// SamplePresent is a regular measurement.
	SamplePresent SampleStatus = iota

	// SampleMissing holds the variable's fill value as published.
	SampleMissing

	// SampleQCBad failed quality control; its value is NaN.
	SampleQCBad
)

func (s SampleStatus) String() string {
	switch s {
	case SamplePresent:
		return "present"
	case SampleMissing:
		return "missing"
	case SampleQCBad:
		return "qc_bad"
	default:
		return "unknown"
	}
}

// RawSeries is the data read from one resolved link. Time, Value and Status
// always have the same length.
type RawSeries struct {
	Link   ResolvedLink
	Time   []float64
	Value  []float64
	Status []SampleStatus
}

// Len returns the number of samples.
func (r RawSeries) Len() int { return len(r.Time) }

// AssembledSeries is the merged, time-sorted series. Index[i] is the
// position of sample i in the concatenation of the input series.
type AssembledSeries struct {
	Time   []float64      `json:"time" yaml:"time"`
	Value  []float64      `json:"value" yaml:"value"`
	Status []SampleStatus `json:"status" yaml:"status"`
	Index  []int          `json:"index" yaml:"index"`
}

// Len returns the number of samples.
func (s AssembledSeries) Len() int { return len(s.Time) }

// SeriesMetadata travels with an AssembledSeries to rendering. Units come
// from the first dataset opened and are not cross-checked.
type SeriesMetadata struct {
	Title    string   `json:"title" yaml:"title"`
	Units    string   `json:"units" yaml:"units"`
	Variable string   `json:"variable" yaml:"variable"`
	Stations []string `json:"stations" yaml:"stations"`
	QC       bool     `json:"qc" yaml:"qc"`
}
