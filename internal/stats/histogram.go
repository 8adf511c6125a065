package stats

import (
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/sup9097/table-dice-app/internal/dice"
)

const (
	minTotal            = 3
	maxTotal            = 18
	histogramLabelWidth = 12
	minBarWidth         = 10
	terminalWidthBackup = 80
)

// RenderHistogram prints a bar chart of roll totals. A non-positive width
// uses the terminal width.
func RenderHistogram(w io.Writer, history []dice.Roll, width int) error {
	if len(history) == 0 {
		return nil
	}
	if width <= 0 {
		width = terminalWidth()
	}
	barWidth := width - histogramLabelWidth
	if barWidth < minBarWidth {
		barWidth = minBarWidth
	}

	lo, hi := minTotal, maxTotal
	counts := map[int]int{}
	peak := 0
	for _, s := range dice.Sums(history) {
		counts[s]++
		peak = max(peak, counts[s])
		lo = min(lo, s)
		hi = max(hi, s)
	}

	if _, err := fmt.Fprintln(w, "Totals"); err != nil {
		return err
	}
	for total := lo; total <= hi; total++ {
		n := counts[total]
		bar := n * barWidth / peak
		if n > 0 && bar == 0 {
			bar = 1
		}
		if _, err := fmt.Fprintf(w, "%3d %6d  %s\n", total, n, strings.Repeat("#", bar)); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(w, "")
	return err
}

func terminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		return terminalWidthBackup
	}
	return width
}
