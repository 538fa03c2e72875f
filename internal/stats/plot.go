// Package stats renders model results as text.
package stats

import (
	"fmt"
	"io"
	"math"
	"os"
	"strings"
	"unicode/utf8"

	"golang.org/x/term"
)

// Series is one stage curve: a count per generation.
type Series struct {
	Name   string
	Values []float64
}

type valueRange struct {
	min float64
	max float64
}

const (
	defaultPlotHeight   = 10
	minPlotWidth        = 10
	axisLabelReserve    = 8
	axisSeparator       = " │ "
	colorReset          = "\x1b[0m"
	terminalWidthBackup = 80
	brailleBase         = 0x2800
)

// Curves are told apart by color, and by dot spacing when color is off.
var (
	curveColors = []string{"\x1b[36m", "\x1b[35m", "\x1b[33m"}
	curveDashes = []int{1, 2, 3}
)

// brailleBits[x][y] is the dot bit for column x and row y of a 2x4 cell.
var brailleBits = [2][4]uint8{
	{0x01, 0x02, 0x04, 0x40},
	{0x08, 0x10, 0x20, 0x80},
}

// canvas holds the braille dots of one curve, a bitmask per character cell.
type canvas [][]uint8

func newCanvas(height, width int) canvas {
	c := make(canvas, height)
	for y := range c {
		c[y] = make([]uint8, width)
	}
	return c
}

func (c canvas) set(px, py int) {
	if px < 0 || py < 0 || py/4 >= len(c) || px/2 >= len(c[py/4]) {
		return
	}
	c[py/4][px/2] |= brailleBits[px%2][py%4]
}

// PlotSeries draws the series as braille curves on one scale anchored at zero.
// A non-positive width fills the terminal; color is used when forced or when
// w is a terminal, unless NO_COLOR is set.
func PlotSeries(w io.Writer, title string, series []Series, width, height int, forceColor bool) error {
	curves := make([]Series, 0, len(series))
	for _, s := range series {
		if len(s.Values) > 0 {
			curves = append(curves, s)
		}
	}
	if len(curves) == 0 {
		return nil
	}
	if height <= 0 {
		height = defaultPlotHeight
	}
	if width <= 0 {
		width = PlotWidthFor(terminalWidth())
	}
	width = max(width, minPlotWidth)

	bounds := sharedRange(curves)
	if bounds.max-bounds.min < 1e-9 {
		bounds.max = bounds.min + 1
	}
	canvases := make([]canvas, len(curves))
	for i, s := range curves {
		canvases[i] = traceCurve(s.Values, bounds, width, height, curveDashes[i%len(curveDashes)])
	}

	useColor := colorEnabled(w, forceColor)
	labels := makeAxisLabels(height, bounds)
	labelWidth := axisLabelWidth(labels)

	if title != "" {
		if _, err := fmt.Fprintln(w, title); err != nil {
			return err
		}
	}
	for y := 0; y < height; y++ {
		var row strings.Builder
		fmt.Fprintf(&row, "%*s%s", labelWidth, labels[y], axisSeparator)
		for x := 0; x < width; x++ {
			mask, owner := cellAt(canvases, x, y)
			ch := rune(brailleBase + int(mask))
			if useColor && owner >= 0 {
				row.WriteString(curveColors[owner%len(curveColors)])
				row.WriteRune(ch)
				row.WriteString(colorReset)
				continue
			}
			row.WriteRune(ch)
		}
		if _, err := fmt.Fprintln(w, row.String()); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintf(w, "%s\n\n", renderLegend(curves, useColor))
	return err
}

// traceCurve samples values across every dot column and fills the rows
// between neighbouring samples so steep generations stay connected.
func traceCurve(values []float64, bounds valueRange, width, height, dash int) canvas {
	c := newCanvas(height, width)
	dotsX, dotsY := width*2, height*4
	prev := -1
	for px := 0; px < dotsX; px += dash {
		py := valueToRow(sampleAt(values, px, dotsX), bounds, dotsY)
		from, to := py, py
		if prev >= 0 {
			from, to = min(prev, py), max(prev, py)
		}
		for y := from; y <= to; y++ {
			c.set(px, y)
		}
		prev = py
	}
	return c
}

// sampleAt interpolates the generation values at dot column px of dotsX.
func sampleAt(values []float64, px, dotsX int) float64 {
	last := len(values) - 1
	if last == 0 || dotsX <= 1 {
		return values[0]
	}
	pos := float64(px) * float64(last) / float64(dotsX-1)
	i := int(pos)
	if i >= last {
		return values[last]
	}
	return values[i] + (values[i+1]-values[i])*(pos-float64(i))
}

func valueToRow(v float64, bounds valueRange, dotsY int) int {
	if dotsY <= 1 {
		return 0
	}
	pos := (v - bounds.min) / (bounds.max - bounds.min)
	row := int(math.Round((1 - pos) * float64(dotsY-1)))
	return min(max(row, 0), dotsY-1)
}

// cellAt merges the dots of every curve in a cell; the owner is the first
// curve with a dot there, or -1.
func cellAt(canvases []canvas, x, y int) (uint8, int) {
	var mask uint8
	owner := -1
	for i, c := range canvases {
		if bits := c[y][x]; bits != 0 {
			if owner < 0 {
				owner = i
			}
			mask |= bits
		}
	}
	return mask, owner
}

// PlotWidthFor returns the plot width that fits beside the axis labels in totalWidth.
func PlotWidthFor(totalWidth int) int {
	axisWidth := axisLabelReserve + utf8.RuneCountInString(axisSeparator)
	return max(totalWidth-axisWidth, minPlotWidth)
}

func terminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		return terminalWidthBackup
	}
	return width
}

func colorEnabled(w io.Writer, force bool) bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	if force {
		return true
	}
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// sharedRange spans every curve. Populations never go negative, so the
// axis starts at zero.
func sharedRange(series []Series) valueRange {
	r := valueRange{max: math.Inf(-1)}
	for _, s := range series {
		for _, v := range s.Values {
			r.min = min(r.min, v)
			r.max = max(r.max, v)
		}
	}
	if math.IsInf(r.max, -1) {
		return valueRange{}
	}
	return r
}

// makeAxisLabels labels the top, middle and bottom rows.
func makeAxisLabels(height int, bounds valueRange) []string {
	labels := make([]string, height)
	if height <= 0 {
		return labels
	}
	labels[0] = formatAxisValue(bounds.max)
	if height > 2 {
		labels[height/2] = formatAxisValue((bounds.min + bounds.max) / 2)
	}
	if height > 1 {
		labels[height-1] = formatAxisValue(bounds.min)
	}
	return labels
}

func formatAxisValue(v float64) string {
	switch abs := math.Abs(v); {
	case abs >= 1e6:
		return fmt.Sprintf("%.1fM", v/1e6)
	case abs >= 1e4:
		return fmt.Sprintf("%.1fk", v/1e3)
	case abs == math.Trunc(abs):
		return fmt.Sprintf("%.0f", v)
	default:
		return fmt.Sprintf("%.1f", v)
	}
}

func axisLabelWidth(labels []string) int {
	width := axisLabelReserve
	for _, l := range labels {
		width = max(width, utf8.RuneCountInString(l))
	}
	return width
}

func renderLegend(series []Series, useColor bool) string {
	parts := make([]string, 0, len(series))
	for i, s := range series {
		label := fmt.Sprintf("%c %s", rune(brailleBase+int(brailleBits[0][0]|brailleBits[1][0])), s.Name)
		if dash := curveDashes[i%len(curveDashes)]; dash > 1 {
			label += fmt.Sprintf(" (every %d dots)", dash)
		}
		if useColor {
			label = curveColors[i%len(curveColors)] + label + colorReset
		}
		parts = append(parts, label)
	}
	return "Legend: " + strings.Join(parts, "  ")
}
