// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package opendap

import (
	"bufio"
	"fmt"
	"strings"
)

// ParseDAS parses a DAP2 Dataset Attribute Structure into
// container → attribute → raw value. String values are unquoted; numeric
// lists keep their comma-separated form. Nested containers are keyed by
// their dotted path ("DODS_EXTRA.inner").
func ParseDAS(text string) (map[string]map[string]string, error) {
	out := make(map[string]map[string]string)
	var stack []string
	opened := false

	sc := bufio.NewScanner(strings.NewReader(text))
	sc.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	var pending string
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if pending != "" {
			line = pending + "\n" + line
			pending = ""
		}
		if line == "" {
			continue
		}

		switch {
		case !opened:
			if !strings.HasPrefix(line, "Attributes") || !strings.HasSuffix(line, "{") {
				return nil, fmt.Errorf("DAS: expected \"Attributes {\", got %q", line)
			}
			opened = true
		case line == "}":
			if len(stack) == 0 {
				return out, nil
			}
			stack = stack[:len(stack)-1]
		case strings.HasSuffix(line, "{") && !strings.Contains(line, `"`):
			name := strings.TrimSpace(strings.TrimSuffix(line, "{"))
			stack = append(stack, name)
			key := strings.Join(stack, ".")
			if out[key] == nil {
				out[key] = make(map[string]string)
			}
		default:
			if !attributeComplete(line) {
				pending = line
				continue
			}
			if len(stack) == 0 {
				return nil, fmt.Errorf("DAS: attribute outside a container: %q", line)
			}
			name, value, err := parseAttribute(line)
			if err != nil {
				return nil, err
			}
			out[strings.Join(stack, ".")][name] = value
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("DAS: %w", err)
	}
	if !opened {
		return nil, fmt.Errorf("DAS: empty response")
	}
	if pending != "" || len(stack) > 0 {
		return nil, fmt.Errorf("DAS: truncated response")
	}
	return out, nil
}

// attributeComplete reports whether line ends an attribute declaration:
// a trailing ';' outside any quoted string.
func attributeComplete(line string) bool {
	inQuote, escaped := false, false
	for _, r := range line {
		switch {
		case escaped:
			escaped = false
		case r == '\\':
			escaped = true
		case r == '"':
			inQuote = !inQuote
		}
	}
	return !inQuote && strings.HasSuffix(line, ";")
}

// parseAttribute splits "Type name value;" into name and value.
func parseAttribute(line string) (string, string, error) {
	body := strings.TrimSuffix(line, ";")
	typ, rest, ok := strings.Cut(body, " ")
	if !ok {
		return "", "", fmt.Errorf("DAS: malformed attribute %q", line)
	}
	name, value, ok := strings.Cut(strings.TrimSpace(rest), " ")
	if !ok || name == "" {
		return "", "", fmt.Errorf("DAS: malformed attribute %q", line)
	}
	value = strings.TrimSpace(value)
	if typ == "String" || typ == "Url" {
		value = unquote(value)
	}
	return name, value, nil
}

func unquote(s string) string {
	if len(s) < 2 || s[0] != '"' || s[len(s)-1] != '"' {
		return s
	}
	s = s[1 : len(s)-1]
	return strings.NewReplacer(`\"`, `"`, `\\`, `\`).Replace(s)
}
