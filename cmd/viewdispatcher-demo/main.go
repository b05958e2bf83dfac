// Command viewdispatcher-demo runs a view dispatcher driven by the terminal.
//
// Arrow keys (or hjkl) move between two views, Enter toggles a tick counter,
// and Escape (or q) goes back. Backing out of the first view exits.
//
// Run with: go run ./cmd/viewdispatcher-demo -log demo.log -level debug
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/joeycumines/go-viewdispatcher"
	"github.com/joeycumines/go-viewdispatcher/gui"
	"github.com/joeycumines/go-viewdispatcher/internal/terminput"
	"github.com/joeycumines/go-viewdispatcher/native"
	"github.com/joeycumines/go-viewdispatcher/record"
	"github.com/joeycumines/logiface"
	"github.com/joeycumines/stumpy"
)

const (
	viewMain uint32 = iota
	viewDetail
)

const (
	eventRedraw uint32 = iota
	eventToggleTicks
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(args []string) error {
	flags := flag.NewFlagSet(`viewdispatcher-demo`, flag.ContinueOnError)
	logPath := flags.String(`log`, ``, `log file (JSON lines), logging is disabled if empty`)
	logLevel := flags.String(`level`, `info`, `log level: err, warning, info, debug`)
	tickPeriod := flags.Duration(`tick`, 250*time.Millisecond, `tick period`)
	if err := flags.Parse(args); err != nil {
		return err
	}

	logger, closeLog, err := newLogger(*logPath, *logLevel)
	if err != nil {
		return err
	}
	defer closeLog()

	screen, err := tcell.NewScreen()
	if err != nil {
		return fmt.Errorf("terminal: %w", err)
	}
	if err := screen.Init(); err != nil {
		return fmt.Errorf("terminal: %w", err)
	}
	defer screen.Fini()

	g, err := gui.Provide(record.Default(), gui.WithLogger(logger))
	if err != nil {
		return err
	}

	app := &demo{screen: screen, period: *tickPeriod}
	d, err := viewdispatcher.New(viewdispatcher.TypeFullscreen, app, viewdispatcher.WithLogger(logger))
	if err != nil {
		return err
	}
	defer func() {
		if err := d.Close(); err != nil {
			logger.Err().Err(err).Log(`close failed`)
		}
	}()

	d.AddView(viewMain, app.mainView(d))
	d.AddView(viewDetail, app.detailView(d))
	defer d.RemoveView(viewDetail)
	defer d.RemoveView(viewMain)
	d.SwitchToView(viewMain)
	d.SendCustomEvent(eventRedraw)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	go terminput.Pump(screen, g, stop, logger)

	if err := d.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

func newLogger(path, level string) (*logiface.Logger[logiface.Event], func(), error) {
	if path == `` {
		return nil, func() {}, nil
	}
	lvl, err := parseLevel(level)
	if err != nil {
		return nil, nil, err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, err
	}
	logger := stumpy.L.New(
		stumpy.L.WithStumpy(stumpy.WithWriter(f)),
		stumpy.L.WithLevel(lvl),
	).Logger()
	return logger, func() { _ = f.Close() }, nil
}

func parseLevel(s string) (logiface.Level, error) {
	for _, lvl := range [...]logiface.Level{
		logiface.LevelError,
		logiface.LevelWarning,
		logiface.LevelNotice,
		logiface.LevelInformational,
		logiface.LevelDebug,
	} {
		if strings.EqualFold(s, lvl.String()) {
			return lvl, nil
		}
	}
	return 0, fmt.Errorf("unknown log level %q", s)
}

// demo implements the navigation, custom event and tick callbacks. It runs
// only on the dispatcher's goroutine.
type demo struct {
	screen  tcell.Screen
	current uint32
	ticks   int
	period  time.Duration
	ticking bool
}

func (x *demo) OnNavigationEvent(*viewdispatcher.Dispatcher) bool {
	// back out of the main view, exiting
	return false
}

func (x *demo) OnCustomEvent(_ *viewdispatcher.Dispatcher, event uint32) bool {
	switch event {
	case eventRedraw:
	case eventToggleTicks:
		x.ticking = !x.ticking
	default:
		return false
	}
	x.draw()
	return true
}

func (x *demo) OnTickEvent(*viewdispatcher.Dispatcher) {
	if x.ticking {
		x.ticks++
		x.draw()
	}
}

func (x *demo) TickPeriod() time.Duration { return x.period }

func (x *demo) mainView(d *viewdispatcher.Dispatcher) *native.View {
	view := native.NewView()
	view.SetInputCallback(func(event gui.InputEvent) bool {
		if event.Type != gui.InputTypeShort {
			return false
		}
		switch event.Key {
		case gui.KeyRight, gui.KeyDown:
			x.current = viewDetail
			d.SwitchToView(viewDetail)
			d.SendCustomEvent(eventRedraw)
			return true
		case gui.KeyOk:
			d.SendCustomEvent(eventToggleTicks)
			return true
		}
		return false
	})
	return view
}

func (x *demo) detailView(d *viewdispatcher.Dispatcher) *native.View {
	view := native.NewView()
	view.SetInputCallback(func(event gui.InputEvent) bool {
		if event.Type == gui.InputTypeShort && (event.Key == gui.KeyLeft || event.Key == gui.KeyUp) {
			x.current = viewMain
			d.SwitchToView(viewMain)
			d.SendCustomEvent(eventRedraw)
			return true
		}
		return false
	})
	view.SetPreviousCallback(func() uint32 {
		x.current = viewMain
		d.SendCustomEvent(eventRedraw)
		return viewMain
	})
	return view
}

func (x *demo) draw() {
	lines := []string{
		`view dispatcher demo`,
		``,
	}
	switch x.current {
	case viewMain:
		lines = append(lines,
			`[main]  right: detail  enter: toggle ticks  esc: exit`,
			fmt.Sprintf(`ticks: %d (running: %t)`, x.ticks, x.ticking),
		)
	case viewDetail:
		lines = append(lines,
			`[detail]  left or esc: back`,
		)
	}
	x.screen.Clear()
	for y, line := range lines {
		for i, r := range line {
			x.screen.SetContent(i, y, r, nil, tcell.StyleDefault)
		}
	}
	x.screen.Show()
}
