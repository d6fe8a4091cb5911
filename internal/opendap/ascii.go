// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package opendap

import (
	"bufio"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// asciiSeparator divides the DDS header from the data in a .ascii response.
const asciiSeparator = "-----"

var (
	arrayHeader = regexp.MustCompile(`^([A-Za-z_][\w.\-]*)((?:\[\d+\])+)$`)
	rowPrefix   = regexp.MustCompile(`^(?:\[\d+\])+,\s*`)
	scalarLine  = regexp.MustCompile(`^([A-Za-z_][\w.\-]*),\s*(.+)$`)
)

// ParseASCII parses the data section of a DAP2 .ascii response into
// name → flattened values. Grid members keep their dotted names
// ("AIR_TEM.AIR_TEM", "AIR_TEM.time").
func ParseASCII(text string) (map[string][]float64, error) {
	sc := bufio.NewScanner(strings.NewReader(text))
	sc.Buffer(make([]byte, 0, 1024*1024), 64*1024*1024)

	inData := false
	out := make(map[string][]float64)
	var current string
	var want int

	finish := func() error {
		if current == "" {
			return nil
		}
		if got := len(out[current]); got != want {
			return fmt.Errorf("ascii: %s has %d values, header declares %d", current, got, want)
		}
		current = ""
		return nil
	}

	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if !inData {
			if strings.HasPrefix(line, asciiSeparator) {
				inData = true
			}
			continue
		}
		if line == "" {
			if err := finish(); err != nil {
				return nil, err
			}
			continue
		}

		if m := arrayHeader.FindStringSubmatch(line); m != nil {
			if err := finish(); err != nil {
				return nil, err
			}
			current = m[1]
			want = shapeSize(m[2])
			out[current] = make([]float64, 0, want)
			continue
		}

		if current == "" {
			m := scalarLine.FindStringSubmatch(line)
			if m == nil {
				return nil, fmt.Errorf("ascii: unexpected line %q", line)
			}
			v, err := parseValue(m[2])
			if err != nil {
				return nil, err
			}
			out[m[1]] = []float64{v}
			continue
		}

		row := rowPrefix.ReplaceAllString(line, "")
		for _, field := range strings.Split(row, ",") {
			field = strings.TrimSpace(field)
			if field == "" {
				continue
			}
			v, err := parseValue(field)
			if err != nil {
				return nil, fmt.Errorf("ascii: %s: %w", current, err)
			}
			out[current] = append(out[current], v)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("ascii: %w", err)
	}
	if !inData {
		return nil, fmt.Errorf("ascii: no data section")
	}
	if err := finish(); err != nil {
		return nil, err
	}
	return out, nil
}

// shapeSize multiplies the dimensions of "[3][4]".
func shapeSize(dims string) int {
	size := 1
	for _, d := range strings.Split(strings.Trim(dims, "[]"), "][") {
		n, _ := strconv.Atoi(d)
		size *= n
	}
	return size
}

func parseValue(s string) (float64, error) {
	switch strings.ToLower(s) {
	case "nan":
		return math.NaN(), nil
	case "inf", "+inf", "infinity":
		return math.Inf(1), nil
	case "-inf", "-infinity":
		return math.Inf(-1), nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("parsing value %q: %w", s, err)
	}
	return v, nil
}
