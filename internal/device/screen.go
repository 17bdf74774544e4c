package device

import (
	"strings"
	"sync"

	"github.com/gdamore/tcell/v2"
	"github.com/mattn/go-runewidth"

	"github.com/dshills/conline/internal/input/key"
)

// Screen implements Device on a tcell terminal screen. The bottom row
// is the input row; everything above it is scrollback, oldest line
// first, scrolling up as rows commit.
//
// The input row is tracked as one rune per column; a wide rune occupies
// its left column and marks the following column with a zero rune.
type Screen struct {
	mu      sync.Mutex
	screen  tcell.Screen
	width   int
	height  int
	history []string
	row     []rune
	col     int
	fini    sync.Once
}

// NewScreen creates and initializes a tcell-backed device.
func NewScreen() (*Screen, error) {
	sc, err := tcell.NewScreen()
	if err != nil {
		return nil, err
	}
	if err := sc.Init(); err != nil {
		return nil, err
	}
	return NewScreenFrom(sc), nil
}

// NewScreenFrom wraps an already initialized tcell screen, such as
// tcell's simulation screen.
func NewScreenFrom(sc tcell.Screen) *Screen {
	s := &Screen{screen: sc}
	s.width, s.height = sc.Size()
	s.mu.Lock()
	s.redraw()
	s.sync()
	s.mu.Unlock()
	return s
}

func (s *Screen) Write(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, r := range text {
		if r == '\n' {
			s.commitRow()
			continue
		}
		s.putRune(r)
	}
	s.sync()
}

// putRune draws r at the cursor column and advances. Assumes s.mu held.
func (s *Screen) putRune(r rune) {
	w := runewidth.RuneWidth(r)
	if w == 0 || s.col+w > s.width {
		return
	}
	for len(s.row) < s.col+w {
		s.row = append(s.row, ' ')
	}
	s.row[s.col] = r
	for i := 1; i < w; i++ {
		s.row[s.col+i] = 0 // continuation of a wide rune
	}
	s.screen.SetContent(s.col, s.height-1, r, nil, tcell.StyleDefault)
	s.col += w
}

// commitRow pushes the input row into scrollback and clears it.
// Assumes s.mu held.
func (s *Screen) commitRow() {
	s.history = append(s.history, rowString(s.row))
	if max := s.height - 1; max > 0 && len(s.history) > max {
		s.history = s.history[len(s.history)-max:]
	}
	s.row = s.row[:0]
	s.col = 0
	s.redraw()
}

// rowString flattens a column-indexed row, dropping wide-rune
// continuation markers and trailing blanks.
func rowString(row []rune) string {
	var b strings.Builder
	for _, r := range row {
		if r == 0 {
			continue
		}
		b.WriteRune(r)
	}
	return strings.TrimRight(b.String(), " ")
}

// redraw repaints the whole screen from history and the input row.
// Assumes s.mu held.
func (s *Screen) redraw() {
	s.screen.Clear()
	top := s.height - 1 - len(s.history)
	for i, line := range s.history {
		y := top + i
		if y < 0 {
			continue
		}
		x := 0
		for _, r := range line {
			s.screen.SetContent(x, y, r, nil, tcell.StyleDefault)
			x += runewidth.RuneWidth(r)
		}
	}
	for x, r := range s.row {
		if r == 0 {
			continue
		}
		s.screen.SetContent(x, s.height-1, r, nil, tcell.StyleDefault)
	}
}

// sync shows the cursor at the current column and flushes. Assumes
// s.mu held.
func (s *Screen) sync() {
	s.screen.ShowCursor(s.col, s.height-1)
	s.screen.Show()
}

func (s *Screen) Column() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.col
}

func (s *Screen) SetColumn(col int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if col < 0 {
		col = 0
	}
	if col > s.width {
		col = s.width
	}
	s.col = col
	s.sync()
}

func (s *Screen) Width() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.width
}

func (s *Screen) ClearLine() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.row = s.row[:0]
	s.col = 0
	for x := 0; x < s.width; x++ {
		s.screen.SetContent(x, s.height-1, ' ', nil, tcell.StyleDefault)
	}
	s.sync()
}

// ReadKey blocks on the tcell event stream until a key event arrives.
// Resize events are absorbed here: they update the cached geometry and
// trigger a repaint, then polling continues.
func (s *Screen) ReadKey() (key.Event, error) {
	for {
		ev := s.screen.PollEvent()
		switch tev := ev.(type) {
		case *tcell.EventKey:
			return convertKeyEvent(tev), nil
		case *tcell.EventResize:
			s.mu.Lock()
			s.width, s.height = tev.Size()
			s.redraw()
			s.sync()
			s.mu.Unlock()
		case nil:
			// PollEvent returns nil after Fini.
			return key.Event{}, ErrDeviceClosed
		}
	}
}

func (s *Screen) Close() error {
	s.fini.Do(func() {
		s.screen.Fini()
	})
	return nil
}

// convertKeyEvent maps a tcell key event onto the key model.
func convertKeyEvent(ev *tcell.EventKey) key.Event {
	var mod key.Modifier
	if ev.Modifiers()&tcell.ModCtrl != 0 {
		mod = mod.With(key.ModCtrl)
	}
	if ev.Modifiers()&tcell.ModAlt != 0 {
		mod = mod.With(key.ModAlt)
	}
	if ev.Modifiers()&tcell.ModShift != 0 {
		mod = mod.With(key.ModShift)
	}
	if ev.Modifiers()&tcell.ModMeta != 0 {
		mod = mod.With(key.ModMeta)
	}

	var k key.Key
	var r rune
	switch ev.Key() {
	case tcell.KeyRune:
		k = key.KeyRune
		r = ev.Rune()
	case tcell.KeyEnter:
		k = key.KeyEnter
	case tcell.KeyBackspace, tcell.KeyBackspace2:
		k = key.KeyBackspace
	case tcell.KeyDelete:
		k = key.KeyDelete
	case tcell.KeyLeft:
		k = key.KeyLeft
	case tcell.KeyRight:
		k = key.KeyRight
	case tcell.KeyUp:
		k = key.KeyUp
	case tcell.KeyDown:
		k = key.KeyDown
	case tcell.KeyHome:
		k = key.KeyHome
	case tcell.KeyEnd:
		k = key.KeyEnd
	case tcell.KeyTab:
		k = key.KeyTab
	case tcell.KeyEscape:
		k = key.KeyEscape
	default:
		k = key.KeyNone
	}

	return key.Event{Key: k, Rune: r, Mod: mod}
}
