package output

import (
	"fmt"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/hkdywg/toolfetch/internal/utils"
	"golang.org/x/term"
)

// ProgressLine renders one download status line. ok=false means the total
// size is unknown and the percentage is shown as n/a.
func ProgressLine(name string, percent float64, ok bool, speed float64, written int64) string {
	pct := "n/a"
	if ok {
		pct = fmt.Sprintf("%.2f%%", percent)
	}
	line := fmt.Sprintf("Download %s progress: [%s] %.2f MiB/s %s %s",
		name, pct, speed, StyleSymbols["bullet"], utils.FormatBytes(uint64(max(written, 0))))
	return FDebug(truncate(line, getTerminalWidth()-1))
}

func getTerminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		return 80 // Default fallback width
	}
	return width
}

func truncate(text string, width int) string {
	if width <= 3 || utf8.RuneCountInString(text) <= width {
		return text
	}
	runes := []rune(text)
	return string(runes[:width-3]) + strings.Repeat(".", 3)
}
