// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package catalog

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kriete/station-series/internal/httputil"
	"github.com/kriete/station-series/pkg/types"
)

const rootCatalogHTML = `<html><body>
<a href="/thredds/catalog/mooring/catalog.html">Parent</a>
<table>
<tr><td><a href="buoy_a/catalog.html">buoy_a/</a></td></tr>
<tr><td><a href="buoy_b/catalog.html">buoy_b/</a></td></tr>
<tr><td><a href="station_c/catalog.html">station_c/</a></td></tr>
<tr><td><a href="buoy_a/catalog.html">buoy_a/ (duplicate)</a></td></tr>
</table>
<a href="ghost/catalog.html">footer 1</a>
<a href="http://www.unidata.ucar.edu/">footer 2</a>
<a href="/thredds/info.html">footer 3</a>
<a href="/thredds/">footer 4</a>
</body></html>`

func detailHTML(station string) string {
	return fmt.Sprintf(`<html><body>
<a href="/thredds/catalog/mooring/weather_station/catalog.html">Up</a>
<a href="catalog.html?dataset=mooring/weather_station/%[1]s/L1/dep0002_%[1]s_scb-met001_L1_latest.nc">latest</a>
<a href="catalog.html?dataset=mooring/weather_station/%[1]s/L1/dep0001_%[1]s_scb-met001_L1_latest.nc">older</a>
<a href="/thredds/fileServer/readme.txt">readme</a>
</body></html>`, station)
}

type fakeThredds struct {
	*httptest.Server
	mu   sync.Mutex
	hits map[string]int
}

func newFakeThredds(t *testing.T) *fakeThredds {
	t.Helper()
	f := &fakeThredds{hits: map[string]int{}}
	f.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		f.hits[r.URL.Path]++
		f.mu.Unlock()

		const prefix = "/thredds/catalog/mooring/weather_station/"
		switch {
		case r.URL.Path == prefix+"catalog.html":
			fmt.Fprint(w, rootCatalogHTML)
		case r.URL.Path == prefix+"buoy_b/L1/catalog.html":
			http.NotFound(w, r)
		case strings.HasPrefix(r.URL.Path, prefix) && strings.HasSuffix(r.URL.Path, "/L1/catalog.html"):
			station := strings.TrimSuffix(strings.TrimPrefix(r.URL.Path, prefix), "/L1/catalog.html")
			fmt.Fprint(w, detailHTML(station))
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(f.Close)
	return f
}

func (f *fakeThredds) baseURL() string {
	return f.URL + "/thredds/catalog/mooring/weather_station/catalog.html"
}

func (f *fakeThredds) hitCount(path string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.hits[path]
}

func newTestNavigator(f *fakeThredds) *Navigator {
	return NewNavigator(httputil.NewClient(f.Client(), types.HTTPConfig{}), types.CatalogConfig{}, nil)
}

func TestListStations_AllStations(t *testing.T) {
	f := newFakeThredds(t)
	nav := newTestNavigator(f)

	entries := nav.ListStations(context.Background(), f.baseURL(), 2019, 3, nil)

	// buoy_b has no detail page; "ghost" sits in the trailing navigation block.
	require.Len(t, entries, 2)
	assert.Equal(t, "buoy_a", entries[0].Station)
	assert.Equal(t, f.URL+"/thredds/catalog/mooring/weather_station/buoy_a/L1/catalog.html", entries[0].DetailURL)
	assert.Equal(t, "station_c", entries[1].Station)
	assert.Zero(t, f.hitCount("/thredds/catalog/mooring/weather_station/ghost/L1/catalog.html"))
}

func TestListStations_FilterIsExactMatch(t *testing.T) {
	f := newFakeThredds(t)
	nav := newTestNavigator(f)

	entries := nav.ListStations(context.Background(), f.baseURL(), 2019, 3, []string{"buoy_a", "buoy"})

	require.Len(t, entries, 1)
	assert.Equal(t, "buoy_a", entries[0].Station)
	assert.Zero(t, f.hitCount("/thredds/catalog/mooring/weather_station/station_c/L1/catalog.html"))
}

func TestListStations_SkipNoTrailingAnchors(t *testing.T) {
	f := newFakeThredds(t)
	nav := NewNavigator(httputil.NewClient(f.Client(), types.HTTPConfig{}),
		types.CatalogConfig{SkipTrailing: types.SkipNone}, nil)

	entries := nav.ListStations(context.Background(), f.baseURL(), 2019, 3, nil)

	// The footer block is no longer dropped, so "ghost" is listed.
	require.Len(t, entries, 3)
	assert.Equal(t, "buoy_a", entries[0].Station)
	assert.Equal(t, "station_c", entries[1].Station)
	assert.Equal(t, "ghost", entries[2].Station)
}

func TestListStations_UnreachableCatalog(t *testing.T) {
	f := newFakeThredds(t)
	nav := newTestNavigator(f)

	entries := nav.ListStations(context.Background(), f.URL+"/thredds/catalog/nowhere/catalog.html", 2019, 3, nil)
	assert.Empty(t, entries)
}

func TestListStations_TooFewAnchors(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `<a href="x/">1</a><a href="y/">2</a>`)
	}))
	defer ts.Close()

	nav := NewNavigator(httputil.NewClient(ts.Client(), types.HTTPConfig{}), types.CatalogConfig{}, nil)
	assert.Empty(t, nav.ListStations(context.Background(), ts.URL+"/thredds/catalog/catalog.html", 2019, 1, nil))
}

func TestSynthesize_FirstOnly(t *testing.T) {
	f := newFakeThredds(t)
	nav := newTestNavigator(f)
	entry := types.CatalogEntry{
		Station:   "buoy_a",
		DetailURL: f.URL + "/thredds/catalog/mooring/weather_station/buoy_a/L1/catalog.html",
	}

	links := nav.Synthesize(context.Background(), entry, 2019, 3, true)

	require.Len(t, links, 1)
	assert.Equal(t,
		f.URL+"/thredds/dodsC/mooring/weather_station/buoy_a/L1/2019/dep0002_buoy_a_scb-met001_L1_2019-03.nc",
		links[0].URL)
	assert.Equal(t, "buoy_a", links[0].Station)
	assert.Equal(t, 2019, links[0].Year)
	assert.Equal(t, 3, links[0].Month)
}

func TestSynthesize_AllReferences(t *testing.T) {
	f := newFakeThredds(t)
	nav := newTestNavigator(f)
	entry := types.CatalogEntry{
		Station:   "buoy_a",
		DetailURL: f.URL + "/thredds/catalog/mooring/weather_station/buoy_a/L1/catalog.html",
	}

	links := nav.Synthesize(context.Background(), entry, 2020, 11, false)

	// The readme anchor carries no dataset reference and is skipped.
	require.Len(t, links, 2)
	assert.True(t, strings.HasSuffix(links[0].URL, "/L1/2020/dep0002_buoy_a_scb-met001_L1_2020-11.nc"))
	assert.True(t, strings.HasSuffix(links[1].URL, "/L1/2020/dep0001_buoy_a_scb-met001_L1_2020-11.nc"))
}

func TestSynthesize_UnreachableDetail(t *testing.T) {
	f := newFakeThredds(t)
	nav := newTestNavigator(f)
	entry := types.CatalogEntry{
		Station:   "buoy_b",
		DetailURL: f.URL + "/thredds/catalog/mooring/weather_station/buoy_b/L1/catalog.html",
	}
	assert.Empty(t, nav.Synthesize(context.Background(), entry, 2019, 3, true))
}

func TestStationToken(t *testing.T) {
	tests := []struct {
		href string
		want string
	}{
		{"buoy_a/catalog.html", "buoy_a"},
		{"buoy_a", "buoy_a"},
		{"/thredds/", ""},
		{"http://example.com/x", ""},
		{"catalog.html?dataset=x", ""},
		{"", ""},
		{"../catalog.html", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, stationToken(tt.href), "href %q", tt.href)
	}
}

func TestTrimPositions(t *testing.T) {
	hrefs := []string{"a", "b", "c", "d", "e", "f", "g"}
	assert.Equal(t, []string{"b", "c"}, trimPositions(hrefs, 1, 4))
	assert.Nil(t, trimPositions(hrefs, 3, 4))
	assert.Equal(t, hrefs, trimPositions(hrefs, 0, 0))
}
