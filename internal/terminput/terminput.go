// Package terminput translates terminal key events into GUI input.
package terminput

import (
	"github.com/gdamore/tcell/v2"
	"github.com/joeycumines/go-viewdispatcher/gui"
	"github.com/joeycumines/logiface"
)

// EventSource is the subset of tcell.Screen used by Pump.
type EventSource interface {
	// PollEvent blocks until an event is available, returning nil once the
	// source is finalized.
	PollEvent() tcell.Event
}

// Key maps a terminal key event to a GUI key.
//
// Arrows and hjkl move, Enter and space are Ok, and Escape, Backspace and q
// are Back.
func Key(ev *tcell.EventKey) (gui.Key, bool) {
	switch ev.Key() {
	case tcell.KeyUp:
		return gui.KeyUp, true
	case tcell.KeyDown:
		return gui.KeyDown, true
	case tcell.KeyLeft:
		return gui.KeyLeft, true
	case tcell.KeyRight:
		return gui.KeyRight, true
	case tcell.KeyEnter:
		return gui.KeyOk, true
	case tcell.KeyEscape, tcell.KeyBackspace, tcell.KeyBackspace2:
		return gui.KeyBack, true
	case tcell.KeyRune:
		switch ev.Rune() {
		case 'k', 'K':
			return gui.KeyUp, true
		case 'j', 'J':
			return gui.KeyDown, true
		case 'h', 'H':
			return gui.KeyLeft, true
		case 'l', 'L':
			return gui.KeyRight, true
		case ' ':
			return gui.KeyOk, true
		case 'q', 'Q':
			return gui.KeyBack, true
		}
	}
	return 0, false
}

// Events returns the sequence of GUI input events a terminal key press
// stands for: press, then short (long with shift, or an upper case letter),
// then release. Terminals report no key up, so the whole sequence is
// synthesized at once.
func Events(ev *tcell.EventKey) []gui.InputEvent {
	key, ok := Key(ev)
	if !ok {
		return nil
	}
	typ := gui.InputTypeShort
	if ev.Modifiers()&tcell.ModShift != 0 ||
		(ev.Key() == tcell.KeyRune && ev.Rune() >= 'A' && ev.Rune() <= 'Z') {
		typ = gui.InputTypeLong
	}
	return []gui.InputEvent{
		{Key: key, Type: gui.InputTypePress},
		{Key: key, Type: typ},
		{Key: key, Type: gui.InputTypeRelease},
	}
}

// Pump reads events from src until it is finalized, sending translated key
// events to g. Ctrl-C calls interrupt, if non-nil.
func Pump(src EventSource, g *gui.Gui, interrupt func(), logger *logiface.Logger[logiface.Event]) {
	for {
		ev := src.PollEvent()
		if ev == nil {
			return
		}
		key, ok := ev.(*tcell.EventKey)
		if !ok {
			continue
		}
		if isInterrupt(key) {
			logger.Info().Log(`interrupt`)
			if interrupt != nil {
				interrupt()
			}
			continue
		}
		events := Events(key)
		if events == nil {
			logger.Debug().
				Str(`key`, key.Name()).
				Log(`unmapped key`)
			continue
		}
		for _, event := range events {
			if !g.SendInput(event) {
				logger.Debug().
					Stringer(`key`, event.Key).
					Stringer(`type`, event.Type).
					Log(`input not routed: no focused view port`)
			}
		}
	}
}

func isInterrupt(ev *tcell.EventKey) bool {
	return ev.Key() == tcell.KeyCtrlC ||
		(ev.Key() == tcell.KeyRune && ev.Rune() == 'c' && ev.Modifiers()&tcell.ModCtrl != 0)
}
