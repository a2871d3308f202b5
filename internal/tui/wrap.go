// Package tui provides the Bubble Tea trial interface.
package tui

import (
	"strings"

	"github.com/mattn/go-runewidth"
)

// wrapField wraps the field content to the given width, breaking at
// spaces where possible, and returns the resulting lines. Explicit
// newlines in the content always start a new line. The field box grows
// with the returned line count.
func wrapField(content string, width int) []string {
	if width <= 0 {
		return strings.Split(content, "\n")
	}
	var out []string
	for _, paragraph := range strings.Split(content, "\n") {
		out = append(out, wrapLine([]rune(paragraph), width)...)
	}
	if len(out) == 0 {
		out = []string{""}
	}
	return out
}

func wrapLine(runes []rune, width int) []string {
	if len(runes) == 0 {
		return []string{""}
	}
	var out []string
	line := make([]rune, 0, len(runes))
	lineWidth := 0
	lastSpaceIdx := -1

	for i := 0; i < len(runes); {
		r := runes[i]
		rw := runewidth.RuneWidth(r)
		if lineWidth+rw > width && len(line) > 0 {
			if lastSpaceIdx >= 0 {
				out = append(out, string(line[:lastSpaceIdx]))
				line = append([]rune{}, line[lastSpaceIdx+1:]...)
				lineWidth = runesWidth(line)
				lastSpaceIdx = lastSpaceIndex(line)
			} else {
				out = append(out, string(line))
				line = line[:0]
				lineWidth = 0
				lastSpaceIdx = -1
			}
			continue
		}
		line = append(line, r)
		lineWidth += rw
		if r == ' ' {
			lastSpaceIdx = len(line) - 1
		}
		i++
	}
	out = append(out, string(line))
	return out
}

func runesWidth(runes []rune) int {
	total := 0
	for _, r := range runes {
		total += runewidth.RuneWidth(r)
	}
	return total
}

func lastSpaceIndex(runes []rune) int {
	for i := len(runes) - 1; i >= 0; i-- {
		if runes[i] == ' ' {
			return i
		}
	}
	return -1
}
