// Package export writes run results for viewing outside the terminal.
package export

import (
	"bufio"
	"fmt"
	"html"
	"io"

	"github.com/san-kum/nihilo/internal/dynamo"
)

// Series is the sampled path of one body.
type Series struct {
	Name   string
	Color  string
	Points []dynamo.Vec3
}

// OrbitsSVG draws the XY projection of every series on a shared scale,
// with 10% padding around the combined bounds. Each series ends in a dot at
// its last point; a single point draws only the dot.
func OrbitsSVG(w io.Writer, series []Series, width, height int) error {
	if width <= 0 || height <= 0 {
		return fmt.Errorf("%w: svg size %dx%d", dynamo.ErrParameterBounds, width, height)
	}

	first := true
	var minX, maxX, minY, maxY float64
	for _, s := range series {
		for _, p := range s.Points {
			if first {
				minX, maxX, minY, maxY = p.X(), p.X(), p.Y(), p.Y()
				first = false
				continue
			}
			minX, maxX = min(minX, p.X()), max(maxX, p.X())
			minY, maxY = min(minY, p.Y()), max(maxY, p.Y())
		}
	}

	// equal scale on both axes so circles stay circles
	rangeX, rangeY := maxX-minX, maxY-minY
	span := max(rangeX, rangeY)
	if span == 0 {
		span = 1
	}
	cx, cy := (minX+maxX)/2, (minY+maxY)/2
	span *= 1.2
	size := float64(min(width, height))

	project := func(p dynamo.Vec3) (float64, float64) {
		x := float64(width)/2 + (p.X()-cx)/span*size
		y := float64(height)/2 - (p.Y()-cy)/span*size
		return x, y
	}

	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
`, width, height, width, height)

	for _, s := range series {
		if len(s.Points) == 0 {
			continue
		}
		color := s.Color
		if color == "" {
			color = "#ffffff"
		}
		if len(s.Points) > 1 {
			fmt.Fprintf(bw, `<path fill="none" stroke="%s" stroke-width="1.5" d="M`, color)
			for i, p := range s.Points {
				x, y := project(p)
				if i == 0 {
					fmt.Fprintf(bw, "%.1f,%.1f", x, y)
				} else {
					fmt.Fprintf(bw, " L%.1f,%.1f", x, y)
				}
			}
			fmt.Fprintf(bw, "\"><title>%s</title></path>\n", html.EscapeString(s.Name))
		}

		x, y := project(s.Points[len(s.Points)-1])
		fmt.Fprintf(bw, `<circle cx="%.1f" cy="%.1f" r="3" fill="%s"/>`+"\n", x, y, color)
	}

	bw.WriteString("</svg>\n")
	return bw.Flush()
}
