package canvas

import "github.com/mattn/go-runewidth"

// MeasureText returns the display width of a string in terminal cells.
func MeasureText(text string) int {
	return runewidth.StringWidth(text)
}

// FitText truncates text to fit within maxWidth, adding ellipsis if needed.
func FitText(text string, maxWidth int, ellipsis string) string {
	if maxWidth <= 0 {
		return ""
	}
	if MeasureText(text) <= maxWidth {
		return text
	}
	if MeasureText(ellipsis) >= maxWidth {
		return runewidth.Truncate(text, maxWidth, "")
	}
	return runewidth.Truncate(text, maxWidth, ellipsis)
}

// Center returns the column at which text of the given width starts when
// centred between left and right inclusive.
func Center(left, right, width int) int {
	return left + (right-left+1-width)/2
}
