package viz

import (
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/lucasb-eyer/go-colorful"
)

// Braille Patterns: 2x4 dots
// 1 4
// 2 5
// 3 6
// 7 8
//
// Unicode offset 0x2800
var pixelMap = [4][2]int{
	{0x1, 0x8},
	{0x2, 0x10},
	{0x4, 0x20},
	{0x40, 0x80},
}

const blank = 0x2800

// Canvas is a grid of braille cells. Every cell also carries the color and
// depth of the nearest point plotted into it.
type Canvas struct {
	Width, Height int
	Grid          [][]rune
	colors        [][]string
	depth         [][]float64
}

func NewCanvas(w, h int) *Canvas {
	c := &Canvas{}
	c.Resize(w, h)
	return c
}

// Resize reallocates the grid if the size changed and clears it.
func (c *Canvas) Resize(w, h int) {
	w, h = max(w, 1), max(h, 1)
	if w != c.Width || h != c.Height {
		c.Width, c.Height = w, h
		c.Grid = make([][]rune, h)
		c.colors = make([][]string, h)
		c.depth = make([][]float64, h)
		for i := range c.Grid {
			c.Grid[i] = make([]rune, w)
			c.colors[i] = make([]string, w)
			c.depth[i] = make([]float64, w)
		}
	}
	c.Clear()
}

// PixelSize is the canvas size in sub-pixels.
func (c *Canvas) PixelSize() (int, int) {
	return c.Width * 2, c.Height * 4
}

func (c *Canvas) cell(x, y int) (row, col int, ok bool) {
	if x < 0 || y < 0 {
		return 0, 0, false
	}
	col = x / 2
	row = y / 4
	if col >= c.Width || row >= c.Height {
		return 0, 0, false
	}
	return row, col, true
}

// Set sets a pixel at (x, y) where x,y are in sub-pixel coordinates.
func (c *Canvas) Set(x, y int) {
	row, col, ok := c.cell(x, y)
	if !ok {
		return
	}
	c.Grid[row][col] |= rune(pixelMap[y%4][x%2])
}

// Plot sets a pixel and colors its cell if depth is nearer than what the
// cell already holds.
func (c *Canvas) Plot(x, y int, color colorful.Color, depth float64) {
	row, col, ok := c.cell(x, y)
	if !ok {
		return
	}
	c.Grid[row][col] |= rune(pixelMap[y%4][x%2])
	if depth < c.depth[row][col] {
		c.depth[row][col] = depth
		c.colors[row][col] = color.Clamped().Hex()
	}
}

// Unset clears a pixel
func (c *Canvas) Unset(x, y int) {
	row, col, ok := c.cell(x, y)
	if !ok {
		return
	}
	c.Grid[row][col] &= ^rune(pixelMap[y%4][x%2])
	if c.Grid[row][col] < blank {
		c.Grid[row][col] = blank
	}
}

func (c *Canvas) Clear() {
	for i := range c.Grid {
		for j := range c.Grid[i] {
			c.Grid[i][j] = blank
			c.colors[i][j] = ""
			c.depth[i][j] = math.Inf(1)
		}
	}
}

// FillCircle plots a disc of radius r sub-pixels centered on (cx, cy).
func (c *Canvas) FillCircle(cx, cy, r int, color colorful.Color, depth float64) {
	if r <= 0 {
		c.Plot(cx, cy, color, depth)
		return
	}
	r2 := r * r
	for dy := -r; dy <= r; dy++ {
		for dx := -r; dx <= r; dx++ {
			if dx*dx+dy*dy <= r2 {
				c.Plot(cx+dx, cy+dy, color, depth)
			}
		}
	}
}

// DrawLine draws a line using Bresenham's algorithm
func (c *Canvas) DrawLine(x0, y0, x1, y1 int) {
	dx := absInt(x1 - x0)
	dy := absInt(y1 - y0)
	sx := -1
	if x0 < x1 {
		sx = 1
	}
	sy := -1
	if y0 < y1 {
		sy = 1
	}
	err := dx - dy

	for {
		c.Set(x0, y0)
		if x0 == x1 && y0 == y1 {
			break
		}
		e2 := 2 * err
		if e2 > -dy {
			err -= dy
			x0 += sx
		}
		if e2 < dx {
			err += dx
			y0 += sy
		}
	}
}

// String returns the uncolored canvas.
func (c *Canvas) String() string {
	var b strings.Builder
	for _, row := range c.Grid {
		b.WriteString(string(row) + "\n")
	}
	return b.String()
}

// Render returns the canvas with every run of same colored cells wrapped in
// a lipgloss style. Cells without a color use fallback.
func (c *Canvas) Render(fallback lipgloss.Color) string {
	cache := map[string]lipgloss.Style{}
	style := func(hex string) lipgloss.Style {
		if hex == "" {
			hex = string(fallback)
		}
		s, ok := cache[hex]
		if !ok {
			s = lipgloss.NewStyle().Foreground(lipgloss.Color(hex))
			cache[hex] = s
		}
		return s
	}

	var b strings.Builder
	for i, row := range c.Grid {
		if i > 0 {
			b.WriteByte('\n')
		}
		start := 0
		for j := 1; j <= len(row); j++ {
			if j < len(row) && c.colors[i][j] == c.colors[i][start] {
				continue
			}
			run := string(row[start:j])
			if c.colors[i][start] == "" && isBlank(row[start:j]) {
				b.WriteString(run)
			} else {
				b.WriteString(style(c.colors[i][start]).Render(run))
			}
			start = j
		}
	}
	return b.String()
}

func isBlank(cells []rune) bool {
	for _, r := range cells {
		if r != blank {
			return false
		}
	}
	return true
}

func absInt(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
