// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package assemble merges raw series from many datasets into one series
// sorted by time.
package assemble

import (
	"math"
	"sort"

	"github.com/kriete/station-series/pkg/types"
)

// Assemble concatenates the inputs in order and stable-sorts the result by
// time. Samples with equal timestamps are all kept. Samples with a NaN
// timestamp are placed after every timed sample, in input order. The returned Index maps
// each output sample to its position in the concatenation. Empty input
// yields an empty, non-nil series.
func Assemble(series ...types.RawSeries) types.AssembledSeries {
	n := 0
	for _, s := range series {
		n += s.Len()
	}

	times := make([]float64, 0, n)
	values := make([]float64, 0, n)
	status := make([]types.SampleStatus, 0, n)
	for _, s := range series {
		times = append(times, s.Time...)
		values = append(values, s.Value...)
		if len(s.Status) == s.Len() {
			status = append(status, s.Status...)
		} else {
			status = append(status, make([]types.SampleStatus, s.Len())...)
		}
	}

	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		return timeLess(times[idx[a]], times[idx[b]])
	})

	out := types.AssembledSeries{
		Time:   make([]float64, n),
		Value:  make([]float64, n),
		Status: make([]types.SampleStatus, n),
		Index:  idx,
	}
	for i, j := range idx {
		out.Time[i] = times[j]
		out.Value[i] = values[j]
		out.Status[i] = status[j]
	}
	return out
}

// timeLess orders NaN after every other value.
func timeLess(a, b float64) bool {
	if math.IsNaN(b) {
		return !math.IsNaN(a)
	}
	return a < b
}

// timed returns the length of the prefix of times before any NaN tail.
func timed(times []float64) int {
	n := len(times)
	for n > 0 && math.IsNaN(times[n-1]) {
		n--
	}
	return n
}

// IsSorted reports whether s.Time is non-decreasing, with NaN timestamps
// allowed only as a trailing run.
func IsSorted(s types.AssembledSeries) bool {
	head := s.Time[:timed(s.Time)]
	for i := 1; i < len(head); i++ {
		if math.IsNaN(head[i]) || head[i] < head[i-1] {
			return false
		}
	}
	return len(head) == 0 || !math.IsNaN(head[0])
}

// Span returns the first and last timestamps, ignoring a NaN tail. ok is
// false when no sample has a timestamp.
func Span(s types.AssembledSeries) (first, last float64, ok bool) {
	n := timed(s.Time)
	if n == 0 {
		return 0, 0, false
	}
	return s.Time[0], s.Time[n-1], true
}

// Valid counts samples that are neither missing nor QC-rejected.
func Valid(s types.AssembledSeries) int {
	n := 0
	for _, st := range s.Status {
		if st == types.SamplePresent {
			n++
		}
	}
	return n
}
