package render

import (
	"fmt"
	"io"
	"os"

	"github.com/mattn/go-isatty"
)

// Screen owns the output device of the terminal host. On an interactive
// terminal each frame repaints in place; otherwise frames append, which
// keeps piped output readable.
type Screen struct {
	out   io.Writer
	clear bool
}

// NewScreen builds a Screen for out, enabling repaint only when out is a
// terminal.
func NewScreen(out *os.File) *Screen {
	return &Screen{
		out:   out,
		clear: isatty.IsTerminal(out.Fd()) || isatty.IsCygwinTerminal(out.Fd()),
	}
}

// NewScreenWriter builds a Screen over a plain writer, never repainting.
func NewScreenWriter(out io.Writer) *Screen {
	return &Screen{out: out}
}

// Show writes one rendered frame.
func (s *Screen) Show(frame string) {
	if s.clear {
		fmt.Fprint(s.out, "\x1b[2J\x1b[H")
	}
	fmt.Fprintln(s.out, frame)
}
