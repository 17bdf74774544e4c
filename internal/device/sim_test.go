package device

import (
	"errors"
	"testing"
	"time"

	"github.com/dshills/conline/internal/input/key"
)

func TestSimWriteAndScrollback(t *testing.T) {
	d := NewSim(20)

	d.Write("hello\n")
	d.Write("world")

	lines := d.Lines()
	if len(lines) != 1 || lines[0] != "hello" {
		t.Errorf("Lines() = %v, want [hello]", lines)
	}
	if got := d.InputRow(); got != "world" {
		t.Errorf("InputRow() = %q, want %q", got, "world")
	}
	if got := d.Column(); got != 5 {
		t.Errorf("Column() = %d, want 5", got)
	}
}

func TestSimOverwriteAtColumn(t *testing.T) {
	d := NewSim(20)

	d.Write("abcde")
	d.SetColumn(1)
	d.Write("X")

	if got := d.InputRow(); got != "aXcde" {
		t.Errorf("InputRow() = %q, want %q", got, "aXcde")
	}
	if got := d.Column(); got != 2 {
		t.Errorf("Column() = %d, want 2", got)
	}
}

func TestSimClearLine(t *testing.T) {
	d := NewSim(20)

	d.Write("garbage")
	d.ClearLine()

	if got := d.InputRow(); got != "" {
		t.Errorf("InputRow() after ClearLine = %q, want empty", got)
	}
	if got := d.Column(); got != 0 {
		t.Errorf("Column() after ClearLine = %d, want 0", got)
	}
}

func TestSimWidthClip(t *testing.T) {
	d := NewSim(4)

	d.Write("abcdef")

	if got := d.InputRow(); got != "abcd" {
		t.Errorf("InputRow() = %q, want clipped %q", got, "abcd")
	}
}

func TestSimWideRunes(t *testing.T) {
	d := NewSim(20)

	d.Write("a世b")

	if got := d.Column(); got != 4 {
		t.Errorf("Column() = %d, want 4 (wide rune spans two columns)", got)
	}
	if got := d.InputRow(); got != "a世b" {
		t.Errorf("InputRow() = %q, want %q", got, "a世b")
	}
}

func TestSimReadKey(t *testing.T) {
	d := NewSim(20)

	d.Type("hi")
	d.InjectKey(key.NewSpecial(key.KeyEnter))

	want := []key.Event{key.NewRune('h'), key.NewRune('i'), key.NewSpecial(key.KeyEnter)}
	for i, w := range want {
		ev, err := d.ReadKey()
		if err != nil {
			t.Fatalf("ReadKey() %d failed: %v", i, err)
		}
		if ev != w {
			t.Errorf("ReadKey() %d = %v, want %v", i, ev, w)
		}
	}
}

func TestSimCloseUnblocksReadKey(t *testing.T) {
	d := NewSim(20)

	errCh := make(chan error, 1)
	go func() {
		_, err := d.ReadKey()
		errCh <- err
	}()

	d.Close()
	d.Close() // idempotent

	select {
	case err := <-errCh:
		if !errors.Is(err, ErrDeviceClosed) {
			t.Errorf("ReadKey() after Close = %v, want ErrDeviceClosed", err)
		}
	case <-time.After(time.Second):
		t.Fatal("ReadKey() did not unblock on Close()")
	}
}
