package main

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/Faultbox/threed/internal/colormap"
	"github.com/Faultbox/threed/internal/plot"
	"github.com/Faultbox/threed/pkg/math"
)

var errBadCSV = errors.New("malformed csv")

// readRecords reads all rows, trimming spaces and skipping blank and
// '#' comment lines.
func readRecords(r io.Reader) ([][]string, error) {
	cr := csv.NewReader(r)
	cr.Comment = '#'
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	rows, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errBadCSV, err)
	}
	for _, row := range rows {
		for i := range row {
			row[i] = strings.TrimSpace(row[i])
		}
	}
	return rows, nil
}

func parseFloat(s string, line, col int) (float64, error) {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: line %d column %d: %q is not a number", errBadCSV, line, col+1, s)
	}
	return v, nil
}

// readScatter reads x,y,z rows with optional color, metal and roughness
// columns. A header row names the columns; without one they are taken
// in that order. Colors are "#rrggbb" sRGB hex.
func readScatter(r io.Reader) (plot.ScatterData, error) {
	var d plot.ScatterData
	rows, err := readRecords(r)
	if err != nil {
		return d, err
	}
	if len(rows) == 0 {
		return d, fmt.Errorf("%w: no rows", errBadCSV)
	}

	columns := []string{"x", "y", "z", "color", "metal", "roughness"}
	first := 0
	if _, err := strconv.ParseFloat(rows[0][0], 64); err != nil {
		columns = make([]string, len(rows[0]))
		for i, name := range rows[0] {
			columns[i] = strings.ToLower(name)
		}
		first = 1
	}

	for n, row := range rows[first:] {
		line := n + first + 1
		if len(row) > len(columns) {
			return d, fmt.Errorf("%w: line %d has %d fields", errBadCSV, line, len(row))
		}
		var seen int
		for i, field := range row {
			name := columns[i]
			if name == "color" {
				c, err := colormap.ParseColor(field)
				if err != nil {
					return d, fmt.Errorf("line %d: %w", line, err)
				}
				d.Colors = append(d.Colors, [3]float64{c[0], c[1], c[2]})
				continue
			}
			v, err := parseFloat(field, line, i)
			if err != nil {
				return d, err
			}
			switch name {
			case "x":
				d.X = append(d.X, v)
				seen++
			case "y":
				d.Y = append(d.Y, v)
				seen++
			case "z":
				d.Z = append(d.Z, v)
				seen++
			case "metal":
				d.Metal = append(d.Metal, v)
			case "roughness":
				d.Roughness = append(d.Roughness, v)
			default:
				return d, fmt.Errorf("%w: unknown column %q", errBadCSV, name)
			}
		}
		if seen != 3 {
			return d, fmt.Errorf("%w: line %d needs x, y and z", errBadCSV, line)
		}
	}
	return d, nil
}

// readGrid reads a density grid. The first row holds the y values after
// an ignored corner cell; every following row is an x value followed by
// one value per y.
func readGrid(r io.Reader) (plot.Grid, error) {
	var g plot.Grid
	rows, err := readRecords(r)
	if err != nil {
		return g, err
	}
	if len(rows) < 2 {
		return g, fmt.Errorf("%w: grid needs a header row and at least one data row", errBadCSV)
	}

	for i, field := range rows[0][1:] {
		v, err := parseFloat(field, 1, i+1)
		if err != nil {
			return g, err
		}
		g.Y = append(g.Y, v)
	}
	for n, row := range rows[1:] {
		line := n + 2
		if len(row) != len(g.Y)+1 {
			return g, fmt.Errorf("%w: line %d has %d values for %d y values", errBadCSV, line, len(row)-1, len(g.Y))
		}
		x, err := parseFloat(row[0], line, 0)
		if err != nil {
			return g, err
		}
		g.X = append(g.X, x)
		s := make([]float64, len(g.Y))
		for j, field := range row[1:] {
			if s[j], err = parseFloat(field, line, j+1); err != nil {
				return g, err
			}
		}
		g.S = append(g.S, s)
	}
	return g, nil
}

// readArrows reads x1,y1,z1,x2,y2,z2 rows of tail and head points.
func readArrows(r io.Reader) ([][2]math.Vec3, error) {
	rows, err := readRecords(r)
	if err != nil {
		return nil, err
	}
	var out [][2]math.Vec3
	for n, row := range rows {
		if len(row) != 6 {
			return nil, fmt.Errorf("%w: line %d has %d fields, want 6", errBadCSV, n+1, len(row))
		}
		var c [6]float64
		for i, field := range row {
			if c[i], err = parseFloat(field, n+1, i); err != nil {
				return nil, err
			}
		}
		out = append(out, [2]math.Vec3{
			{X: c[0], Y: c[1], Z: c[2]},
			{X: c[3], Y: c[4], Z: c[5]},
		})
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("%w: no arrows", errBadCSV)
	}
	return out, nil
}
