package layout

import (
	"os"
	"strings"

	"github.com/mattn/go-runewidth"
	"golang.org/x/term"
)

// Sizer measures and pads strings by display width so tables stay aligned
// when achievement names carry emojis or CJK characters.
type Sizer struct{}

// DisplayWidth returns the terminal cell width of a string.
func (s Sizer) DisplayWidth(text string) int {
	return runewidth.StringWidth(text)
}

// PadString pads text to a display width.
func (s Sizer) PadString(text string, width int, leftAlign bool) string {
	actual := s.DisplayWidth(text)
	if actual >= width {
		return text
	}

	padding := strings.Repeat(" ", width-actual)
	if leftAlign {
		return text + padding
	}
	return padding + text
}

// Truncate shortens text to fit a display width, appending an ellipsis when
// anything was cut.
func (s Sizer) Truncate(text string, width int) string {
	if s.DisplayWidth(text) <= width {
		return text
	}
	return runewidth.Truncate(text, width, "…")
}

// TerminalWidth reports the usable output width with a fallback for pipes
// and narrow terminals.
func (s Sizer) TerminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width < 60 {
		return 100
	}
	return width
}
