package world

import (
	"bufio"
	"io"
	"strings"

	"github.com/pkg/errors"
)

var symbols = map[rune]Tile{
	'.': Floor,
	'#': Wall,
	'G': GateClosed,
	'g': GateOpen,
}

// ParseGrid reads a text map, one row of tiles per line. The first line is
// row 0, which sits at the bottom of the world (y grows upward). Blank lines
// are skipped.
func ParseGrid(r io.Reader, tileSize float64, classifier Classifier) (*Grid, error) {
	var rows [][]Tile
	scanner := bufio.NewScanner(r)
	lineNumber := 0
	for scanner.Scan() {
		lineNumber++
		line := strings.TrimRight(scanner.Text(), " \t\r")
		if line == "" {
			continue
		}
		row := make([]Tile, 0, len(line))
		for col, ch := range line {
			tile, ok := symbols[ch]
			if !ok {
				return nil, errors.Errorf("line %d, column %d: unknown tile %q", lineNumber, col+1, ch)
			}
			row = append(row, tile)
		}
		if len(rows) > 0 && len(row) != len(rows[0]) {
			return nil, errors.Errorf("line %d: row has %d tiles, expected %d", lineNumber, len(row), len(rows[0]))
		}
		rows = append(rows, row)
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, "reading map")
	}
	return NewGrid(rows, tileSize, classifier)
}

// Format writes the grid back out in the same text form ParseGrid reads.
func (g *Grid) Format() string {
	reverse := make(map[Tile]rune, len(symbols))
	for ch, tile := range symbols {
		reverse[tile] = ch
	}
	var b strings.Builder
	for y := 0; y < g.height; y++ {
		for x := 0; x < g.width; x++ {
			ch, ok := reverse[g.tiles[y*g.width+x]]
			if !ok {
				ch = '?'
			}
			b.WriteRune(ch)
		}
		b.WriteByte('\n')
	}
	return b.String()
}
