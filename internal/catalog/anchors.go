// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package catalog

import (
	"bytes"
	"fmt"
	"strings"

	"golang.org/x/net/html"
)

// parseAnchors returns the href of every <a> element in document order.
// Anchors without an href contribute an empty string so that positional
// skipping counts them.
func parseAnchors(page []byte) ([]string, error) {
	doc, err := html.Parse(bytes.NewReader(page))
	if err != nil {
		return nil, fmt.Errorf("parsing catalog HTML: %w", err)
	}

	var hrefs []string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "a" {
			href := ""
			for _, a := range n.Attr {
				if a.Key == "href" {
					href = strings.TrimSpace(a.Val)
					break
				}
			}
			hrefs = append(hrefs, href)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return hrefs, nil
}

// trimPositions drops the first leading and last trailing anchors. It
// returns nil when nothing is left.
func trimPositions(hrefs []string, leading, trailing int) []string {
	if leading < 0 {
		leading = 0
	}
	if trailing < 0 {
		trailing = 0
	}
	if leading+trailing >= len(hrefs) {
		return nil
	}
	return hrefs[leading : len(hrefs)-trailing]
}

// stationToken returns the href up to its first path separator. Absolute
// links, queries and fragments are not station entries.
func stationToken(href string) string {
	token, _, _ := strings.Cut(href, "/")
	if token == "" || token == "." || token == ".." || strings.ContainsAny(token, ":?#") {
		return ""
	}
	return token
}
