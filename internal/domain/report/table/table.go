// Package table rebuilds tables from positioned document text.
package table

import (
	"context"
	"errors"
	"math"
	"sort"
	"strings"
)

// ErrMalformed is returned when a document cannot be decoded.
var ErrMalformed = errors.New("malformed document")

// Table is a grid of cell text found on one page. Header holds the cells of
// the row that starts with the anchor label; Rows hold the rows below it
// aligned to the header columns.
type Table struct {
	Page   int
	Header []string
	Rows   [][]string
}

// Column returns the index of the header cell whose first line equals label.
func (t Table) Column(label string) int {
	for i, h := range t.Header {
		if HeaderLabel(h) == label {
			return i
		}
	}
	return -1
}

// HeaderLabel normalises a header cell: "10/2\n(三)" becomes "10/2".
func HeaderLabel(cell string) string {
	if i := strings.IndexAny(cell, "\r\n"); i >= 0 {
		cell = cell[:i]
	}
	return strings.Join(strings.Fields(cell), "")
}

// Source yields the tables of a stored document whose header row starts
// with anchor.
type Source interface {
	Tables(ctx context.Context, name string, anchor string) ([]Table, error)
}

// Run is a piece of text at a position, Y growing upwards as in PDF space.
type Run struct {
	X, Y, W float64
	S       string
}

type cell struct {
	x, end float64
	text   string
}

const (
	// Runs closer than this on one baseline belong to the same cell.
	cellGap = 2.5
	// Baselines closer than this belong to the same line.
	lineTolerance = 1.5
)

// Assemble groups runs into lines, lines into cells, and cells into tables.
// A table starts at each line whose first cell is anchor; lines above the
// first anchor are ignored. A line with text only in the first column is a
// continuation of the previous row's first cell.
func Assemble(page int, runs []Run, anchor string) []Table {
	lines := groupLines(runs)

	var (
		tables  []Table
		current *Table
		headers []cell
	)
	for _, line := range lines {
		cells := splitCells(line)
		if len(cells) == 0 {
			continue
		}

		if HeaderLabel(cells[0].text) == anchor {
			if current != nil {
				tables = append(tables, *current)
			}
			current = &Table{Page: page, Header: make([]string, len(cells))}
			headers = cells
			for i, c := range cells {
				current.Header[i] = c.text
			}
			continue
		}
		if current == nil {
			continue
		}

		row := make([]string, len(headers))
		for _, c := range cells {
			col := columnOf(headers, c)
			if row[col] != "" {
				row[col] += " "
			}
			row[col] += c.text
		}

		if isContinuation(row) && len(current.Rows) > 0 {
			prev := current.Rows[len(current.Rows)-1]
			prev[0] += "\n" + row[0]
			continue
		}
		current.Rows = append(current.Rows, row)
	}
	if current != nil {
		tables = append(tables, *current)
	}
	return tables
}

func isContinuation(row []string) bool {
	if row[0] == "" {
		return false
	}
	for _, v := range row[1:] {
		if v != "" {
			return false
		}
	}
	return true
}

// columnOf assigns a cell to the header column it overlaps most. Cells that
// overlap no header go to the column with the nearest centre.
func columnOf(headers []cell, c cell) int {
	best, bestOverlap := -1, 0.0
	for i, h := range headers {
		overlap := math.Min(c.end, h.end) - math.Max(c.x, h.x)
		if overlap > bestOverlap {
			best, bestOverlap = i, overlap
		}
	}
	if best >= 0 {
		return best
	}

	centre := (c.x + c.end) / 2
	best, bestDist := 0, math.Inf(1)
	for i, h := range headers {
		if d := math.Abs((h.x+h.end)/2 - centre); d < bestDist {
			best, bestDist = i, d
		}
	}
	return best
}

func groupLines(runs []Run) [][]Run {
	sorted := make([]Run, 0, len(runs))
	for _, r := range runs {
		if strings.TrimSpace(r.S) != "" {
			sorted = append(sorted, r)
		}
	}
	sort.SliceStable(sorted, func(i, j int) bool {
		if math.Abs(sorted[i].Y-sorted[j].Y) > lineTolerance {
			return sorted[i].Y > sorted[j].Y
		}
		return sorted[i].X < sorted[j].X
	})

	var lines [][]Run
	for _, r := range sorted {
		n := len(lines)
		if n > 0 && math.Abs(lines[n-1][0].Y-r.Y) <= lineTolerance {
			lines[n-1] = append(lines[n-1], r)
			continue
		}
		lines = append(lines, []Run{r})
	}
	for _, line := range lines {
		sort.SliceStable(line, func(i, j int) bool { return line[i].X < line[j].X })
	}
	return lines
}

func splitCells(line []Run) []cell {
	var cells []cell
	for _, r := range line {
		n := len(cells)
		if n > 0 && r.X-cells[n-1].end <= cellGap {
			cells[n-1].text += r.S
			cells[n-1].end = math.Max(cells[n-1].end, r.X+r.W)
			continue
		}
		cells = append(cells, cell{x: r.X, end: r.X + r.W, text: r.S})
	}
	for i := range cells {
		cells[i].text = strings.TrimSpace(cells[i].text)
	}
	return cells
}
