package console

import "github.com/mattn/go-runewidth"

// wrapLine splits s into display lines no wider than width, breaking at the
// last space when there is one.
func wrapLine(s string, width int) []string {
	if width <= 0 || runewidth.StringWidth(s) <= width {
		return []string{s}
	}
	runes := []rune(s)
	var out []string
	line := make([]rune, 0, len(runes))
	lineWidth := 0
	lastSpace := -1
	for i := 0; i < len(runes); {
		r := runes[i]
		rw := runewidth.RuneWidth(r)
		if lineWidth+rw > width && len(line) > 0 {
			if r == ' ' {
				out = append(out, string(line))
				line, lineWidth, lastSpace = line[:0], 0, -1
				i++
				continue
			}
			if lastSpace >= 0 {
				out = append(out, string(line[:lastSpace]))
				line = append([]rune{}, line[lastSpace+1:]...)
			} else {
				out = append(out, string(line))
				line = line[:0]
			}
			lineWidth = runesWidth(line)
			lastSpace = lastSpaceIndex(line)
			continue
		}
		line = append(line, r)
		lineWidth += rw
		if r == ' ' {
			lastSpace = len(line) - 1
		}
		i++
	}
	if len(line) > 0 {
		out = append(out, string(line))
	}
	return out
}

func runesWidth(line []rune) int {
	total := 0
	for _, r := range line {
		total += runewidth.RuneWidth(r)
	}
	return total
}

func lastSpaceIndex(line []rune) int {
	for i := len(line) - 1; i >= 0; i-- {
		if line[i] == ' ' {
			return i
		}
	}
	return -1
}
