// Package ttestutils reads back what tview primitives drew on a
// simulation screen.
package ttestutils

import (
	"strings"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
)

// TB is the part of testing.TB the helpers need.
type TB interface {
	Helper()
	Fatalf(format string, args ...any)
}

// NewSimScreen creates an initialized simulation screen.
func NewSimScreen(t TB, charset string, width, height int) tcell.SimulationScreen {
	t.Helper()
	if charset == "" {
		charset = "UTF-8"
	}
	s := tcell.NewSimulationScreen(charset)
	if err := s.Init(); err != nil {
		t.Fatalf("failed to init simulation screen: %v", err)
	}
	s.SetSize(width, height)
	return s
}

// ReadLine reads a full line from the screen.
func ReadLine(screen tcell.Screen, y, width int) string {
	var b strings.Builder
	for x := 0; x < width; x++ {
		str, _, _ := screen.Get(x, y)
		if str == "" {
			b.WriteRune(' ')
			continue
		}
		b.WriteString(str)
	}
	return b.String()
}

// DrawLines draws p over the whole screen and returns its lines with
// trailing spaces trimmed.
func DrawLines(screen tcell.Screen, p tview.Primitive) []string {
	width, height := screen.Size()
	screen.Clear()
	p.SetRect(0, 0, width, height)
	p.Draw(screen)
	lines := make([]string, height)
	for y := range lines {
		lines[y] = strings.TrimRight(ReadLine(screen, y, width), " ")
	}
	return lines
}
