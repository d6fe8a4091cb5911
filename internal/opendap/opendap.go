// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package opendap reads remote datasets over the OPeNDAP DAP2 protocol.
// Attributes come from the .das response and values from the .ascii
// response, so opening a dataset and reading variables are both plain GETs.
package opendap

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/kriete/station-series/internal/httputil"
)

// Sentinels re-exported for callers that only deal with datasets.
var (
	ErrNotFound    = httputil.ErrNotFound
	ErrUnreachable = httputil.ErrUnreachable
)

// GlobalAttributes is the DAS container holding dataset-level attributes.
const GlobalAttributes = "NC_GLOBAL"

// Client opens datasets through an httputil.Client.
type Client struct {
	http *httputil.Client
}

// NewClient returns a DAP2 client.
func NewClient(c *httputil.Client) *Client {
	return &Client{http: c}
}

// Dataset is an opened remote dataset: its URL and attribute table.
type Dataset struct {
	URL        string
	Attributes map[string]map[string]string
}

// Open fetches the dataset's attribute table. A missing dataset yields an
// error wrapping ErrNotFound; transport failures wrap ErrUnreachable.
func (c *Client) Open(ctx context.Context, datasetURL string) (*Dataset, error) {
	body, err := c.http.Get(ctx, datasetURL+".das")
	if err != nil {
		return nil, err
	}
	attrs, err := ParseDAS(string(body))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrUnreachable, datasetURL, err)
	}
	return &Dataset{URL: datasetURL, Attributes: attrs}, nil
}

// Has reports whether the dataset declares a variable called name.
func (d *Dataset) Has(name string) bool {
	_, ok := d.Attributes[name]
	return ok
}

// Attr returns a variable attribute, or "" when absent.
func (d *Dataset) Attr(variable, name string) string {
	return d.Attributes[variable][name]
}

// Units returns the units attribute of variable.
func (d *Dataset) Units(variable string) string {
	return d.Attr(variable, "units")
}

// Title returns the dataset's global title attribute.
func (d *Dataset) Title() string {
	return d.Attr(GlobalAttributes, "title")
}

// FillValues returns the values that mark missing data for variable
// (_FillValue and missing_value, when declared and numeric).
func (d *Dataset) FillValues(variable string) []float64 {
	var out []float64
	for _, key := range []string{"_FillValue", "missing_value"} {
		raw := d.Attr(variable, key)
		if raw == "" {
			continue
		}
		for _, part := range strings.Split(raw, ",") {
			if v, err := strconv.ParseFloat(strings.TrimSpace(part), 64); err == nil {
				out = append(out, v)
			}
		}
	}
	return out
}

// Read fetches the named variables as flat float64 slices. Multi-dimensional
// arrays are flattened in row-major order.
func (c *Client) Read(ctx context.Context, d *Dataset, names ...string) (map[string][]float64, error) {
	projection := make([]string, len(names))
	for i, n := range names {
		projection[i] = url.QueryEscape(n)
	}
	body, err := c.http.Get(ctx, d.URL+".ascii?"+strings.Join(projection, ","))
	if err != nil {
		return nil, err
	}
	arrays, err := ParseASCII(string(body))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrUnreachable, d.URL, err)
	}

	out := make(map[string][]float64, len(names))
	for _, n := range names {
		values, ok := lookupArray(arrays, n)
		if !ok {
			return nil, fmt.Errorf("variable %q missing from %s", n, d.URL)
		}
		out[n] = values
	}
	return out, nil
}

// lookupArray finds a variable either as a plain array or as the array
// member of a Grid ("VAR.VAR").
func lookupArray(arrays map[string][]float64, name string) ([]float64, bool) {
	if v, ok := arrays[name]; ok {
		return v, true
	}
	v, ok := arrays[name+"."+name]
	return v, ok
}
