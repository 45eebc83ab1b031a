package cli

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"

	"github.com/amp-labs/amp-wizard/envutil"
	"github.com/amp-labs/amp-wizard/lazy"
	"github.com/amp-labs/amp-wizard/should"
	"github.com/charmbracelet/lipgloss"
)

// Alignment positions text inside a banner.
type Alignment int

const (
	AlignLeft Alignment = iota
	AlignCenter
	AlignRight
)

// DefaultTerminalWidth is used when the terminal cannot be measured.
const DefaultTerminalWidth = 80

const ellipsis = "…"

var errSttyOutput = errors.New("unexpected stty output")

var suppressBanner = lazy.New(func() bool {
	return envutil.Bool("WIZARD_NO_BANNER", envutil.Default(false)).ValueOrElse(false)
})

// BannerAutoWidth frames s in a box as wide as the terminal.
func BannerAutoWidth(s string, align Alignment) string {
	return Banner(s, TerminalWidth(), align)
}

// Banner frames s in a box width columns wide. Lines that do not fit are
// truncated. With WIZARD_NO_BANNER set, s is returned unframed.
func Banner(s string, width int, align Alignment) string {
	if suppressBanner.Get() {
		return s + "\n"
	}

	inner := width - 2
	if inner <= 0 || s == "" {
		return ""
	}

	lines := strings.Split(strings.ReplaceAll(s, "\r\n", "\n"), "\n")
	parts := make([]string, 0, len(lines)+2)

	parts = append(parts, "╒"+strings.Repeat("═", inner)+"╕")

	for _, line := range lines {
		parts = append(parts, "│"+pad(line, inner, align)+"│")
	}

	parts = append(parts, "└"+strings.Repeat("─", inner)+"┘")

	return strings.Join(parts, "\n") + "\n"
}

// Divider draws a horizontal rule width columns wide.
func Divider(width int) string {
	if width < 2 {
		return "\n"
	}

	return "┠" + strings.Repeat("─", width-2) + "┨\n"
}

// pad fits text into width display columns.
func pad(text string, width int, align Alignment) string {
	if lipgloss.Width(text) > width {
		text = truncate(text, width-1) + ellipsis
	}

	gap := width - lipgloss.Width(text)

	switch align {
	case AlignCenter:
		return strings.Repeat(" ", gap/2) + text + strings.Repeat(" ", gap-gap/2)
	case AlignRight:
		return strings.Repeat(" ", gap) + text
	default:
		return text + strings.Repeat(" ", gap)
	}
}

func truncate(text string, width int) string {
	var sb strings.Builder

	for _, r := range text {
		if lipgloss.Width(sb.String()+string(r)) > width {
			break
		}

		sb.WriteRune(r)
	}

	return sb.String()
}

// TerminalWidth returns the number of columns of the controlling terminal,
// or DefaultTerminalWidth if it cannot be determined.
func TerminalWidth() int {
	tty, err := os.Open("/dev/tty")
	if err != nil {
		return DefaultTerminalWidth
	}

	defer should.Close(tty, "closing /dev/tty")

	// Outputs: "rows columns"
	cmd := exec.Command("stty", "size")
	cmd.Stdin = tty

	out, err := cmd.Output()
	if err != nil {
		return DefaultTerminalWidth
	}

	cols, err := parseColumns(string(out))
	if err != nil || cols <= 0 {
		return DefaultTerminalWidth
	}

	return cols
}

func parseColumns(size string) (int, error) {
	fields := strings.Fields(size)
	if len(fields) != 2 {
		return 0, fmt.Errorf("%w: %q", errSttyOutput, size)
	}

	return strconv.Atoi(fields[1])
}
