// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package fetch opens candidate dataset URLs and reads their time and
// measurement arrays, applying quality-control masking when asked. Missing
// and unreachable datasets are logged and dropped; they never abort a batch.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"

	"github.com/kriete/station-series/internal/httputil"
	"github.com/kriete/station-series/internal/logging"
	"github.com/kriete/station-series/internal/opendap"
	"github.com/kriete/station-series/pkg/types"
)

const (
	// TimeVariable is the coordinate read from every dataset.
	TimeVariable = "time"

	// QCPrefix names the quality-control companion of a variable.
	QCPrefix = "QC_"

	// QCGood is the flag value of a sample that passed quality control.
	QCGood = 1
)

var (
	// ErrShapeMismatch means time and the variable have different lengths.
	ErrShapeMismatch = errors.New("time and variable lengths differ")

	// ErrVariableMissing means the dataset does not declare the variable.
	ErrVariableMissing = errors.New("variable not in dataset")
)

// Result holds the outcome of a FetchAll run.
type Result struct {
	Series      []types.RawSeries
	Resolved    []types.ResolvedLink
	NotFound    int
	Unreachable int
	Failed      int
}

// Total returns the number of candidates attempted.
func (r Result) Total() int {
	return len(r.Resolved) + r.NotFound + r.Unreachable + r.Failed
}

// First returns the first resolved link, the source of units and title
// metadata. ok is false when nothing resolved.
func (r Result) First() (link types.ResolvedLink, ok bool) {
	if len(r.Resolved) == 0 {
		return types.ResolvedLink{}, false
	}
	return r.Resolved[0], true
}

// Fetcher reads datasets through a DAP2 client.
type Fetcher struct {
	dap    *opendap.Client
	logger *slog.Logger
}

// NewFetcher returns a Fetcher using client for all dataset requests.
func NewFetcher(client *httputil.Client, logger *slog.Logger) *Fetcher {
	return &Fetcher{
		dap:    opendap.NewClient(client),
		logger: logging.OrDiscard(logger),
	}
}

// Fetch opens the candidate's dataset and reads time and variable. With qc
// set, samples whose QC_<variable> flag is not QCGood become NaN; when the
// companion is absent the data is returned unfiltered.
func (f *Fetcher) Fetch(ctx context.Context, candidate types.CandidateLink, variable string, qc bool) (types.RawSeries, error) {
	ds, err := f.dap.Open(ctx, candidate.URL)
	if err != nil {
		return types.RawSeries{}, err
	}
	if !ds.Has(variable) {
		return types.RawSeries{}, fmt.Errorf("%w: %q in %s", ErrVariableMissing, variable, candidate.URL)
	}

	names := []string{TimeVariable, variable}
	qcName := QCPrefix + variable
	useQC := false
	if qc {
		if ds.Has(qcName) {
			useQC = true
			names = append(names, qcName)
		} else {
			f.logger.Warn("quality-control variable missing, using unfiltered data",
				"url", candidate.URL, "variable", qcName)
		}
	}

	arrays, err := f.dap.Read(ctx, ds, names...)
	if err != nil {
		return types.RawSeries{}, err
	}

	times, values := arrays[TimeVariable], arrays[variable]
	if len(times) != len(values) {
		return types.RawSeries{}, fmt.Errorf("%w: %s has %d times and %d values",
			ErrShapeMismatch, candidate.URL, len(times), len(values))
	}
	if converted, ok := opendap.EpochSeconds(times, ds.Units(TimeVariable)); ok {
		times = converted
	} else if u := ds.Units(TimeVariable); u != "" {
		f.logger.Debug("time units not understood, keeping raw values", "url", candidate.URL, "units", u)
	}

	status := markMissing(values, ds.FillValues(variable))
	if useQC {
		flags := arrays[qcName]
		if len(flags) != len(values) {
			return types.RawSeries{}, fmt.Errorf("%w: %s has %d values and %d QC flags",
				ErrShapeMismatch, candidate.URL, len(values), len(flags))
		}
		values = applyQC(values, status, flags)
	}

	return types.RawSeries{
		Link: types.ResolvedLink{
			CandidateLink: candidate,
			Units:         ds.Units(variable),
			Title:         ds.Title(),
		},
		Time:   times,
		Value:  values,
		Status: status,
	}, nil
}

// FetchAll fetches candidates in order, one at a time. Failed candidates
// are counted and dropped, never retried. It stops early only when ctx
// ends; the caller sees that through ctx.Err().
func (f *Fetcher) FetchAll(ctx context.Context, candidates []types.CandidateLink, variable string, qc bool) Result {
	var result Result
	for _, c := range candidates {
		if ctx.Err() != nil {
			break
		}
		series, err := f.Fetch(ctx, c, variable, qc)
		if err != nil {
			if ctx.Err() != nil {
				break
			}
			switch {
			case errors.Is(err, opendap.ErrNotFound):
				result.NotFound++
				f.logger.Debug("dataset not found", "url", c.URL)
			case errors.Is(err, opendap.ErrUnreachable):
				result.Unreachable++
				f.logger.Warn("dataset unreachable", "url", c.URL, "error", err)
			default:
				result.Failed++
				f.logger.Warn("dataset unreadable", "url", c.URL, "error", err)
			}
			continue
		}
		f.logger.Info("dataset read", "url", c.URL, "samples", series.Len())
		result.Series = append(result.Series, series)
		result.Resolved = append(result.Resolved, series.Link)
	}
	return result
}

// markMissing flags values equal to a fill value. The raw fill value stays
// in place.
func markMissing(values, fills []float64) []types.SampleStatus {
	status := make([]types.SampleStatus, len(values))
	if len(fills) == 0 {
		return status
	}
	for i, v := range values {
		for _, fv := range fills {
			if v == fv {
				status[i] = types.SampleMissing
				break
			}
		}
	}
	return status
}

// applyQC returns a copy of values where every sample whose flag is not
// QCGood is NaN, updating status in place. Lengths are unchanged.
func applyQC(values []float64, status []types.SampleStatus, flags []float64) []float64 {
	out := make([]float64, len(values))
	for i, v := range values {
		if flags[i] != QCGood {
			out[i] = math.NaN()
			status[i] = types.SampleQCBad
			continue
		}
		out[i] = v
	}
	return out
}
