// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Integration test: catalog → synthesize → expand → fetch → assemble against a
// fake THREDDS server serving both HTML catalogs and OPeNDAP responses.

package pipeline

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kriete/station-series/internal/assemble"
	"github.com/kriete/station-series/internal/httputil"
	"github.com/kriete/station-series/pkg/types"
)

const (
	catalogPrefix = "/thredds/catalog/mooring/weather_station/"
	dodsPrefix    = "/thredds/dodsC/mooring/weather_station/"
)

const rootPage = `<html><body>
<a href="/thredds/catalog/mooring/catalog.html">Parent</a>
<a href="buoy_a/catalog.html">buoy_a/</a>
<a href="buoy_b/catalog.html">buoy_b/</a>
<a href="station_m-scb_met010/catalog.html">station_m/</a>
<a href="#">n1</a><a href="#">n2</a><a href="#">n3</a><a href="#">n4</a>
</body></html>`

func detailPage(station, file string) string {
	return fmt.Sprintf(`<html><body>
<a href="/thredds/catalog/mooring/weather_station/catalog.html">Up</a>
<a href="catalog.html?dataset=mooring/weather_station/%s/L1/%s">latest</a>
</body></html>`, station, file)
}

const das = `Attributes {
    time {
        String units "seconds since 1970-01-01 00:00:00";
    }
    AIR_TEM {
        String units "C";
    }
    NC_GLOBAL {
        String title "fake buoy";
    }
}
`

// monthly datasets keyed by their path under dodsPrefix.
var datasets = map[string][2][]float64{
	"buoy_a/L1/2019/dep0001_buoy_a_L1_2019-02.nc": {{300, 100}, {3, 1}},
	"buoy_a/L1/2019/dep0002_buoy_a_L1_2019-02.nc": {{200}, {2}},
	"buoy_a/L1/2019/dep0002_buoy_a_L1_2019-03.nc": {{400, 500}, {4, 5}},
}

func asciiBody(times, values []float64) string {
	join := func(v []float64) string {
		s := make([]string, len(v))
		for i, f := range v {
			s[i] = fmt.Sprint(f)
		}
		return strings.Join(s, ", ")
	}
	return fmt.Sprintf("Dataset {\n} x;\n-------------\ntime[%d]\n%s\n\nAIR_TEM[%d]\n%s\n\n",
		len(times), join(times), len(values), join(values))
}

func newFakeServer(t *testing.T) *httptest.Server {
	t.Helper()
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p := r.URL.Path
		switch {
		case p == catalogPrefix+"catalog.html":
			fmt.Fprint(w, rootPage)
		case p == catalogPrefix+"buoy_a/L1/catalog.html":
			fmt.Fprint(w, detailPage("buoy_a", "dep0002_buoy_a_L1_latest.nc"))
		case p == catalogPrefix+"station_m-scb_met010/L1/catalog.html":
			fmt.Fprint(w, detailPage("station_m-scb_met010", "dep0001_station_m-scb_met010_L1_latest.nc"))
		case strings.HasPrefix(p, dodsPrefix) && strings.HasSuffix(p, ".das"):
			if _, ok := datasets[strings.TrimSuffix(strings.TrimPrefix(p, dodsPrefix), ".das")]; !ok {
				http.NotFound(w, r)
				return
			}
			fmt.Fprint(w, das)
		case strings.HasPrefix(p, dodsPrefix) && strings.HasSuffix(p, ".ascii"):
			d, ok := datasets[strings.TrimSuffix(strings.TrimPrefix(p, dodsPrefix), ".ascii")]
			if !ok {
				http.NotFound(w, r)
				return
			}
			fmt.Fprint(w, asciiBody(d[0], d[1]))
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(ts.Close)
	return ts
}

func newTestPipeline(ts *httptest.Server) *Pipeline {
	return New(httputil.NewClient(ts.Client(), types.HTTPConfig{}), types.CatalogConfig{}, nil)
}

func query(ts *httptest.Server) types.StationQuery {
	return types.StationQuery{
		BaseURL:    ts.URL + catalogPrefix + "catalog.html",
		Stations:   []string{"buoy_a", "buoy_b"},
		StartYear:  2019,
		EndYear:    2019,
		StartMonth: 2,
		EndMonth:   3,
		Variable:   "AIR_TEM",
	}
}

func TestRun_AssemblesAcrossMonthsAndDeployments(t *testing.T) {
	ts := newFakeServer(t)
	p := newTestPipeline(ts)

	res, err := p.Run(context.Background(), query(ts))
	require.NoError(t, err)

	assert.Equal(t, []float64{100, 200, 300, 400, 500}, res.Series.Time)
	assert.Equal(t, []float64{1, 2, 3, 4, 5}, res.Series.Value)
	assert.True(t, assemble.IsSorted(res.Series))

	assert.Equal(t, "C", res.Metadata.Units)
	assert.Equal(t, "buoy_a, buoy_b", res.Metadata.Title)
	assert.Equal(t, "AIR_TEM", res.Metadata.Variable)

	// buoy_b has no detail page: 2 months x 1 station x 5 deployments.
	assert.Equal(t, Summary{
		Months:     2,
		Stations:   1,
		Candidates: 10,
		Resolved:   3,
		NotFound:   7,
		Samples:    5,
	}, res.Summary)

	require.Len(t, res.Resolved, 3)
	assert.Equal(t, 1, res.Resolved[0].Deployment)
	require.Len(t, res.Representatives, 1)
	assert.Equal(t, res.Resolved[0], res.Representatives[0])
}

func TestLinks_SingleLayout(t *testing.T) {
	ts := newFakeServer(t)
	p := newTestPipeline(ts)

	q := query(ts)
	q.EndMonth = 2
	links, err := p.Links(context.Background(), q)
	require.NoError(t, err)

	require.Len(t, links, 5)
	for i, l := range links {
		assert.Equal(t, "buoy_a", l.Station)
		assert.Equal(t, i+1, l.Deployment)
		assert.Equal(t, fmt.Sprintf("%s%sbuoy_a/L1/2019/dep000%d_buoy_a_L1_2019-02.nc", ts.URL, dodsPrefix, i+1), l.URL)
	}
}

func TestLinks_MultiLayoutProbesInstruments(t *testing.T) {
	ts := newFakeServer(t)
	p := newTestPipeline(ts)

	q := query(ts)
	q.EndMonth = 2
	q.Stations = []string{"station_m-scb_met010"}
	q.Layout = types.LayoutMulti

	links, err := p.Links(context.Background(), q)
	require.NoError(t, err)
	assert.Len(t, links, 45)
}

func TestRun_YearBoundary(t *testing.T) {
	ts := newFakeServer(t)
	p := newTestPipeline(ts)

	q := query(ts)
	q.StartYear, q.StartMonth = 2018, 11
	q.EndYear, q.EndMonth = 2019, 2

	res, err := p.Run(context.Background(), q)
	require.NoError(t, err)
	assert.Equal(t, 4, res.Summary.Months)
	assert.Equal(t, []float64{100, 200, 300}, res.Series.Time)
}

func TestRun_UnreachableCatalogYieldsEmptySeries(t *testing.T) {
	ts := newFakeServer(t)
	p := newTestPipeline(ts)

	q := query(ts)
	q.BaseURL = ts.URL + "/thredds/catalog/nothing/catalog.html"

	res, err := p.Run(context.Background(), q)
	require.NoError(t, err)
	assert.Equal(t, 0, res.Series.Len())
	assert.Len(t, res.Series.Value, 0)
	assert.Empty(t, res.Metadata.Units)
}

func TestRun_InvalidQueryIsFatal(t *testing.T) {
	ts := newFakeServer(t)
	p := newTestPipeline(ts)

	q := query(ts)
	q.Variable = ""

	_, err := p.Run(context.Background(), q)
	assert.ErrorIs(t, err, types.ErrInvalidQuery)
}

func TestRun_CancelledContext(t *testing.T) {
	ts := newFakeServer(t)
	p := newTestPipeline(ts)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := p.Run(ctx, query(ts))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestProfileFor(t *testing.T) {
	single := ProfileFor(types.LayoutSingle)
	assert.True(t, single.FirstOnly)
	assert.Len(t, single.Axes, 1)

	multi := ProfileFor(types.LayoutMulti)
	assert.False(t, multi.FirstOnly)
	assert.Len(t, multi.Axes, 2)
}
