package overlay

import (
	"strings"

	"golang.org/x/image/font"
)

// Wrap breaks text into lines no wider than maxWidth pixels. Each "\n"
// starts a new paragraph; an empty paragraph yields an empty line. A word
// wider than maxWidth is never split and occupies its own line.
func Wrap(text string, face font.Face, maxWidth int) []string {
	if maxWidth <= 0 || text == "" {
		return nil
	}

	var lines []string
	for _, para := range strings.Split(text, "\n") {
		words := strings.Fields(para)
		if len(words) == 0 {
			lines = append(lines, "")
			continue
		}

		current := words[0]
		for _, word := range words[1:] {
			candidate := current + " " + word
			if font.MeasureString(face, candidate).Ceil() > maxWidth {
				lines = append(lines, current)
				current = word
				continue
			}
			current = candidate
		}
		lines = append(lines, current)
	}
	return lines
}
