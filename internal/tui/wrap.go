package tui

import (
	"strings"

	"github.com/mattn/go-runewidth"
)

type measuredRune struct {
	r       rune
	width   int
	isSpace bool
}

func measureRunes(text string) []measuredRune {
	out := make([]measuredRune, 0, len(text))
	for _, r := range text {
		out = append(out, measuredRune{
			r:       r,
			width:   runewidth.RuneWidth(r),
			isSpace: r == ' ',
		})
	}
	return out
}

// wrapWords breaks text at spaces so no line exceeds width cells.
// Words wider than width are split mid-word.
func wrapWords(text string, width int) string {
	runes := measureRunes(text)
	if width <= 0 {
		return renderRunes(runes)
	}
	var out strings.Builder
	line := make([]measuredRune, 0, len(runes))
	lineWidth := 0
	lastSpaceIdx := -1

	for i := 0; i < len(runes); {
		item := runes[i]
		if lineWidth+item.width > width && len(line) > 0 {
			if lastSpaceIdx >= 0 {
				out.WriteString(renderRunes(line[:lastSpaceIdx]))
				out.WriteRune('\n')
				line = append([]measuredRune{}, line[lastSpaceIdx+1:]...)
				lineWidth = lineWidthOf(line)
				lastSpaceIdx = lastSpaceIndex(line)
			} else {
				out.WriteString(renderRunes(line))
				out.WriteRune('\n')
				line = line[:0]
				lineWidth = 0
				lastSpaceIdx = -1
			}
			continue
		}
		line = append(line, item)
		lineWidth += item.width
		if item.isSpace {
			lastSpaceIdx = len(line) - 1
		}
		i++
	}
	out.WriteString(renderRunes(line))
	return out.String()
}

func renderRunes(runes []measuredRune) string {
	var b strings.Builder
	for _, item := range runes {
		b.WriteRune(item.r)
	}
	return b.String()
}

func lineWidthOf(line []measuredRune) int {
	total := 0
	for _, item := range line {
		total += item.width
	}
	return total
}

func lastSpaceIndex(line []measuredRune) int {
	for i := len(line) - 1; i >= 0; i-- {
		if line[i].isSpace {
			return i
		}
	}
	return -1
}
