package renderer

import "strings"

// Layout heuristics for adaptive text sizing. The card canvas the external
// renderer draws on is 800x600; these mirror its geometry closely enough to
// pick a size and vertical offset before handing off.

const (
	cardHeight = 600

	// approximate glyph width as a fraction of the font size
	charWidthRatio = 0.6
)

// AdaptiveFontSize picks a font size that fits the longest line of text into
// targetWidth, clamped to [minSize, maxSize].
func AdaptiveFontSize(text string, targetWidth, minSize, maxSize int) int {
	if text == "" {
		return maxSize
	}
	longest := longestLine(text)
	estimated := float64(len([]rune(longest))) * charWidthRatio * float64(maxSize)
	if estimated <= float64(targetWidth) {
		return maxSize
	}
	scaled := int(float64(maxSize) * float64(targetWidth) / estimated)
	if scaled < minSize {
		return minSize
	}
	if scaled > maxSize {
		return maxSize
	}
	return scaled
}

// CenteredOffsets computes X/Y offsets that center the text block
// vertically on the card, with the X offset proportional to the font size.
// The Y offset is clamped into [offsetMin, offsetMax].
func CenteredOffsets(text string, fontSize int, lineSpacing float64, offsetMin, offsetMax int) (int, int) {
	_, totalHeight := TextDimensions(text, fontSize, lineSpacing)

	offsetX := fontSize / 4
	offsetY := (cardHeight - totalHeight) / 2
	if offsetY < offsetMin {
		offsetY = offsetMin
	}
	if offsetY > offsetMax {
		offsetY = offsetMax
	}
	return offsetX, offsetY
}

// TextDimensions estimates the rendered width and height of the text block.
func TextDimensions(text string, fontSize int, lineSpacing float64) (int, int) {
	if text == "" {
		return 0, 0
	}
	lines := strings.Split(text, "\n")
	longest := longestLine(text)
	width := int(float64(len([]rune(longest))) * float64(fontSize) * charWidthRatio)
	height := int(float64(len(lines)) * float64(fontSize) * lineSpacing)
	return width, height
}

// longestLine returns the longest non-blank line of a multiline text.
func longestLine(text string) string {
	var longest string
	for _, line := range strings.Split(text, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		if len([]rune(line)) > len([]rune(longest)) {
			longest = line
		}
	}
	return longest
}
