// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package opendap

import (
	"strings"
	"time"
)

var referenceLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04:05Z",
	"2006-01-02 15:04:05 UTC",
	"2006-01-02T15:04:05.000Z",
	"2006-01-02",
}

// EpochSeconds converts CF time values ("<unit> since <reference>") to Unix
// seconds. ok is false when units are not understood; values are then
// returned unchanged.
func EpochSeconds(values []float64, units string) (out []float64, ok bool) {
	unit, ref, found := strings.Cut(strings.TrimSpace(units), " since ")
	if !found {
		return values, false
	}

	var scale float64
	switch strings.ToLower(strings.TrimSpace(unit)) {
	case "seconds", "second", "secs", "sec", "s":
		scale = 1
	case "minutes", "minute", "mins", "min":
		scale = 60
	case "hours", "hour", "hrs", "hr", "h":
		scale = 3600
	case "days", "day", "d":
		scale = 86400
	default:
		return values, false
	}

	ref = strings.TrimSpace(ref)
	var epoch time.Time
	parsed := false
	for _, layout := range referenceLayouts {
		if t, err := time.Parse(layout, ref); err == nil {
			epoch, parsed = t, true
			break
		}
	}
	if !parsed {
		return values, false
	}

	offset := float64(epoch.Unix())
	if scale == 1 && offset == 0 {
		return values, true
	}
	out = make([]float64, len(values))
	for i, v := range values {
		out[i] = v*scale + offset
	}
	return out, true
}
