package device

import (
	"sync"

	"github.com/mattn/go-runewidth"

	"github.com/dshills/conline/internal/input/key"
)

// Sim is an in-memory Device for tests. It records committed scrollback
// lines and the visible input row, and delivers keys injected through
// InjectKey/Type.
type Sim struct {
	mu      sync.Mutex
	width   int
	history []string
	row     []rune
	col     int

	keys      chan key.Event
	done      chan struct{}
	closeOnce sync.Once
}

// NewSim creates a simulated device with the given width.
func NewSim(width int) *Sim {
	if width <= 0 {
		width = 80
	}
	return &Sim{
		width: width,
		keys:  make(chan key.Event, 64),
		done:  make(chan struct{}),
	}
}

func (s *Sim) Write(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, r := range text {
		if r == '\n' {
			s.history = append(s.history, rowString(s.row))
			s.row = s.row[:0]
			s.col = 0
			continue
		}
		w := runewidth.RuneWidth(r)
		if w == 0 || s.col+w > s.width {
			continue
		}
		for len(s.row) < s.col+w {
			s.row = append(s.row, ' ')
		}
		s.row[s.col] = r
		for i := 1; i < w; i++ {
			s.row[s.col+i] = 0
		}
		s.col += w
	}
}

func (s *Sim) Column() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.col
}

func (s *Sim) SetColumn(col int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if col < 0 {
		col = 0
	}
	if col > s.width {
		col = s.width
	}
	s.col = col
}

func (s *Sim) Width() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.width
}

func (s *Sim) ClearLine() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.row = s.row[:0]
	s.col = 0
}

func (s *Sim) ReadKey() (key.Event, error) {
	select {
	case ev := <-s.keys:
		return ev, nil
	case <-s.done:
		return key.Event{}, ErrDeviceClosed
	}
}

func (s *Sim) Close() error {
	s.closeOnce.Do(func() {
		close(s.done)
	})
	return nil
}

// InjectKey queues a key event for ReadKey.
func (s *Sim) InjectKey(ev key.Event) {
	s.keys <- ev
}

// Type queues one rune event per character of text.
func (s *Sim) Type(text string) {
	for _, r := range text {
		s.InjectKey(key.NewRune(r))
	}
}

// Lines returns a copy of the committed scrollback lines.
func (s *Sim) Lines() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.history))
	copy(out, s.history)
	return out
}

// InputRow returns the current visible input row content.
func (s *Sim) InputRow() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return rowString(s.row)
}
