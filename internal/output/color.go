package output

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
)

// ColorScheme provides color functions for different output elements
type ColorScheme struct {
	// Item colors element labels
	Item func(format string, a ...any) string

	// Success colors success status
	Success func(format string, a ...any) string

	// Error colors error messages
	Error func(format string, a ...any) string

	// Warning colors warning messages
	Warning func(format string, a ...any) string

	// Header colors table headers
	Header func(format string, a ...any) string

	// Duration colors duration values
	Duration func(format string, a ...any) string

	// Disabled indicates if colors are disabled
	Disabled bool
}

// NewColorScheme creates a new color scheme
// Colors are disabled for non-TTY writers or when noColor is true
func NewColorScheme(w io.Writer, noColor bool) *ColorScheme {
	if noColor || !isTTY(w) {
		return &ColorScheme{
			Item:     fmt.Sprintf,
			Success:  fmt.Sprintf,
			Error:    fmt.Sprintf,
			Warning:  fmt.Sprintf,
			Header:   fmt.Sprintf,
			Duration: fmt.Sprintf,
			Disabled: true,
		}
	}

	return &ColorScheme{
		Item:     color.New(color.FgCyan, color.Bold).Sprintf,
		Success:  color.New(color.FgGreen).Sprintf,
		Error:    color.New(color.FgRed, color.Bold).Sprintf,
		Warning:  color.New(color.FgYellow).Sprintf,
		Header:   color.New(color.FgWhite, color.Bold).Sprintf,
		Duration: color.New(color.FgBlue).Sprintf,
	}
}

// isTTY checks if the writer is a TTY
func isTTY(w io.Writer) bool {
	if f, ok := w.(*os.File); ok {
		return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
	}
	return false
}

// StatusColor returns an appropriate color function based on error status
func (cs *ColorScheme) StatusColor(hasError bool) func(format string, a ...any) string {
	if hasError {
		return cs.Error
	}
	return cs.Success
}
