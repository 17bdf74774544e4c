package input

import (
	"context"
	"testing"
	"time"

	"github.com/dshills/conline/internal/bus"
	"github.com/dshills/conline/internal/command"
	"github.com/dshills/conline/internal/device"
	"github.com/dshills/conline/internal/input/key"
)

func TestTranslate(t *testing.T) {
	tests := []struct {
		name string
		ev   key.Event
		kind command.Kind
		ok   bool
	}{
		{"left", key.NewSpecial(key.KeyLeft), command.KindMove, true},
		{"right", key.NewSpecial(key.KeyRight), command.KindMove, true},
		{"delete", key.NewSpecial(key.KeyDelete), command.KindDelete, true},
		{"backspace", key.NewSpecial(key.KeyBackspace), command.KindDelete, true},
		{"enter", key.NewSpecial(key.KeyEnter), command.KindCommit, true},
		{"rune", key.NewRune('z'), command.KindEcho, true},
		{"ctrl rune", key.Event{Key: key.KeyRune, Rune: 'c', Mod: key.ModCtrl}, 0, false},
		{"escape", key.NewSpecial(key.KeyEscape), 0, false},
		{"up", key.NewSpecial(key.KeyUp), 0, false},
		{"tab", key.NewSpecial(key.KeyTab), 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd, ok := Translate(tt.ev)
			if ok != tt.ok {
				t.Fatalf("Translate() ok = %v, want %v", ok, tt.ok)
			}
			if !ok {
				return
			}
			if cmd.Kind != tt.kind {
				t.Errorf("Translate() kind = %v, want %v", cmd.Kind, tt.kind)
			}
		})
	}
}

func TestTranslateDirections(t *testing.T) {
	cmd, _ := Translate(key.NewSpecial(key.KeyLeft))
	if cmd.Dir != command.Left {
		t.Errorf("left arrow Dir = %v, want Left", cmd.Dir)
	}
	cmd, _ = Translate(key.NewSpecial(key.KeyRight))
	if cmd.Dir != command.Right {
		t.Errorf("right arrow Dir = %v, want Right", cmd.Dir)
	}
	cmd, _ = Translate(key.NewSpecial(key.KeyBackspace))
	if cmd.Loc != command.Before {
		t.Errorf("backspace Loc = %v, want Before", cmd.Loc)
	}
	cmd, _ = Translate(key.NewSpecial(key.KeyDelete))
	if cmd.Loc != command.After {
		t.Errorf("delete Loc = %v, want After", cmd.Loc)
	}
}

func TestReaderForwardsKeys(t *testing.T) {
	dev := device.NewSim(40)
	b := bus.New(10)
	r := NewReader(dev, b, nil)

	done := make(chan error, 1)
	go func() {
		done <- r.Run(context.Background())
	}()

	dev.Type("ok")
	dev.InjectKey(key.NewSpecial(key.KeyEnter))

	wantKinds := []command.Kind{command.KindEcho, command.KindEcho, command.KindCommit}
	for i, want := range wantKinds {
		select {
		case cmd := <-b.Receive():
			if cmd.Kind != want {
				t.Errorf("command %d kind = %v, want %v", i, cmd.Kind, want)
			}
		case <-time.After(time.Second):
			t.Fatalf("command %d never arrived", i)
		}
	}

	dev.Close()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Run() = %v, want nil on device close", err)
		}
	case <-time.After(time.Second):
		t.Fatal("reader did not exit on device close")
	}
}

func TestReaderIgnoresUnmapped(t *testing.T) {
	dev := device.NewSim(40)
	b := bus.New(10)
	r := NewReader(dev, b, nil)

	go r.Run(context.Background())
	defer dev.Close()

	dev.InjectKey(key.NewSpecial(key.KeyEscape))
	dev.InjectKey(key.NewSpecial(key.KeyUp))
	dev.Type("a")

	select {
	case cmd := <-b.Receive():
		if cmd.Kind != command.KindEcho || cmd.Rune != 'a' {
			t.Errorf("got %v (%q), want Echo('a')", cmd.Kind, cmd.Rune)
		}
	case <-time.After(time.Second):
		t.Fatal("mapped key never arrived")
	}
}

func TestReaderStopsOnCancel(t *testing.T) {
	dev := device.NewSim(40)
	b := bus.New(10)
	r := NewReader(dev, b, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- r.Run(ctx)
	}()

	cancel()
	// Cancellation is only observed after the blocking read returns.
	dev.Type("x")

	select {
	case err := <-done:
		if err != context.Canceled {
			t.Errorf("Run() = %v, want context.Canceled", err)
		}
	case <-time.After(time.Second):
		t.Fatal("reader did not exit after cancellation plus a key")
	}
}

func TestReaderStopsOnBusClose(t *testing.T) {
	dev := device.NewSim(40)
	b := bus.New(10)
	r := NewReader(dev, b, nil)

	done := make(chan error, 1)
	go func() {
		done <- r.Run(context.Background())
	}()

	b.Close()
	dev.Type("x")

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Run() = %v, want nil on bus close", err)
		}
	case <-time.After(time.Second):
		t.Fatal("reader did not exit after bus close")
	}
}
