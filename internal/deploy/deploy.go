// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package deploy enumerates the deployment and instrument variants of a
// dataset URL. The catalog's "latest" view only lists the newest
// deployment of an instrument; earlier ones share the naming scheme and
// differ in a single digit, so they are found by brute force over a small
// fixed range. The ranges are a heuristic tied to the catalog's current
// naming and may need widening if it changes.
package deploy

import (
	"regexp"
	"strconv"

	"github.com/kriete/station-series/pkg/types"
)

// DigitRange is an inclusive range of single digits.
type DigitRange struct {
	Lo, Hi int
}

// Digits returns the digits of r in ascending order, clamped to 0-9.
func (r DigitRange) Digits() []int {
	lo, hi := max(r.Lo, 0), min(r.Hi, 9)
	if hi < lo {
		return nil
	}
	out := make([]int, 0, hi-lo+1)
	for d := lo; d <= hi; d++ {
		out = append(out, d)
	}
	return out
}

var (
	// DeploymentRange covers the deployment numbers probed for every link.
	DeploymentRange = DigitRange{Lo: 1, Hi: 5}

	// InstrumentRange covers the instrument indices probed on multi-station
	// catalogs.
	InstrumentRange = DigitRange{Lo: 1, Hi: 9}
)

const (
	// DeploymentTag precedes the deployment digit ("dep0001" → "dep000" + "1").
	DeploymentTag = "dep000"

	// InstrumentTag precedes the instrument index ("scb_met010" → "_met01" + "0").
	InstrumentTag = "_met01"
)

// VariantAxis is one dimension of probing: every occurrence of Tag followed
// by a single digit is replaced with each digit of Range.
type VariantAxis struct {
	Name  string
	Tag   string
	Range DigitRange

	// RecordsDeployment marks the axis whose digit is stored in
	// CandidateLink.Deployment.
	RecordsDeployment bool
}

// Deployments is the deployment-number axis.
var Deployments = VariantAxis{Name: "deployment", Tag: DeploymentTag, Range: DeploymentRange, RecordsDeployment: true}

// Instruments is the instrument-index axis, a lower-priority expansion
// applied after Deployments.
var Instruments = VariantAxis{Name: "instrument", Tag: InstrumentTag, Range: InstrumentRange}

func (a VariantAxis) pattern() *regexp.Regexp {
	return regexp.MustCompile(regexp.QuoteMeta(a.Tag) + `[0-9]`)
}

// Has reports whether url carries the axis marker.
func (a VariantAxis) Has(url string) bool {
	return a.Tag != "" && a.pattern().MatchString(url)
}

// Expand returns one link per digit of axis.Range, each with the marker
// digit replaced. A link without the marker is returned unchanged as the
// only element. Expand does no I/O.
func Expand(link types.CandidateLink, axis VariantAxis) []types.CandidateLink {
	if !axis.Has(link.URL) {
		return []types.CandidateLink{link}
	}
	re := axis.pattern()
	digits := axis.Range.Digits()
	out := make([]types.CandidateLink, 0, len(digits))
	for _, d := range digits {
		v := link
		v.URL = re.ReplaceAllLiteralString(link.URL, axis.Tag+strconv.Itoa(d))
		if axis.RecordsDeployment {
			v.Deployment = d
		}
		out = append(out, v)
	}
	return out
}

// ExpandAll applies axes in order to every link and drops repeated URLs,
// keeping the first occurrence.
func ExpandAll(links []types.CandidateLink, axes ...VariantAxis) []types.CandidateLink {
	current := links
	for _, axis := range axes {
		var next []types.CandidateLink
		for _, l := range current {
			next = append(next, Expand(l, axis)...)
		}
		current = next
	}

	seen := make(map[string]bool, len(current))
	out := make([]types.CandidateLink, 0, len(current))
	for _, l := range current {
		if seen[l.URL] {
			continue
		}
		seen[l.URL] = true
		out = append(out, l)
	}
	return out
}
