package common

import (
	"io"
	"os"

	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"
	"github.com/mgutz/ansi"
)

// Color styles in mgutz/ansi notation.
const (
	StyleHeading = "green+b"
	StyleName    = "black+hb"
	StyleCheck   = "green+b"
	StyleCross   = "red+d"
)

// Style paints text when color output is enabled. A nil Style never paints.
type Style struct {
	Enabled bool
}

// DetectStyle enables color when f is a terminal and noColor is false.
func DetectStyle(f *os.File, noColor bool) *Style {
	enabled := !noColor && (isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd()))
	ansi.DisableColors(!enabled)
	return &Style{Enabled: enabled}
}

// Paint wraps text in the escape sequence for style.
func (s *Style) Paint(text, style string) string {
	if s == nil || !s.Enabled || style == "" {
		return text
	}
	return ansi.Color(text, style)
}

// Output returns a writer for f that translates escape sequences where the
// console needs it.
func Output(f *os.File) io.Writer {
	return colorable.NewColorable(f)
}
