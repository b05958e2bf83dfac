package viewdispatcher

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"
	"unsafe"

	"github.com/joeycumines/go-viewdispatcher/gui"
	"github.com/joeycumines/go-viewdispatcher/native"
	"github.com/joeycumines/go-viewdispatcher/record"
	"github.com/joeycumines/logiface"
)

var (
	// ErrAllocation indicates the native loop could not be allocated.
	ErrAllocation = errors.New("viewdispatcher: native loop allocation failed")

	// ErrGUIRecord indicates the GUI record was missing or of the wrong type.
	ErrGUIRecord = errors.New("viewdispatcher: gui record unavailable")

	// ErrNotOwner is returned by Close on a handle passed to a callback.
	ErrNotOwner = errors.New("viewdispatcher: handle does not own the native loop")

	// ErrClosed is the panic value for operations on a closed dispatcher,
	// and is returned by a repeated Close.
	ErrClosed = errors.New("viewdispatcher: dispatcher closed")

	// ErrInvalidType indicates an unknown [Type].
	ErrInvalidType = errors.New("viewdispatcher: invalid type")
)

// Type selects the GUI layer a dispatcher attaches to.
type Type uint8

const (
	TypeDesktop Type = iota
	TypeWindow
	TypeFullscreen
)

func (t Type) String() string {
	switch t {
	case TypeDesktop:
		return "Desktop"
	case TypeWindow:
		return "Window"
	case TypeFullscreen:
		return "Fullscreen"
	default:
		return fmt.Sprintf("Type(%d)", uint8(t))
	}
}

func (t Type) toNative() (native.Type, bool) {
	switch t {
	case TypeDesktop:
		return native.TypeDesktop, true
	case TypeWindow:
		return native.TypeWindow, true
	case TypeFullscreen:
		return native.TypeFullscreen, true
	default:
		return 0, false
	}
}

// Dispatcher routes the events of one native loop to a [Handler], invoking
// only the callbacks the handler implements.
//
// The value returned by [New] owns the native loop and must be released with
// [Dispatcher.Close]. Handlers receive a non-owning *Dispatcher sharing the
// same loop, which is valid only for the duration of the callback.
type Dispatcher struct {
	loop    native.Loop
	context *dispatchContext
	records *record.Registry
	logger  *logiface.Logger[logiface.Event]
	caps    Capability
	owner   bool
	closed  bool
}

// New allocates a native loop, attaches it to the GUI record as type t, and
// registers callbacks for the categories h implements.
//
// The returned dispatcher takes ownership of h.
func New(t Type, h Handler, opts ...Option) (*Dispatcher, error) {
	cfg, err := resolveDispatcherOptions(opts)
	if err != nil {
		return nil, err
	}

	nt, ok := t.toNative()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrInvalidType, t)
	}

	loop, err := cfg.alloc()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrAllocation, err)
	}
	if loop == nil {
		return nil, ErrAllocation
	}

	c := &dispatchContext{
		handler: h,
		view:    Dispatcher{loop: loop, logger: cfg.logger},
	}
	x := &Dispatcher{
		loop:    loop,
		context: c,
		records: cfg.records,
		logger:  cfg.logger,
		owner:   true,
	}

	loop.SetEventCallbackContext(unsafe.Pointer(c))
	loop.EnableQueue()

	g, err := openGUI(cfg.records)
	if err != nil {
		loop.Free()
		return nil, err
	}
	loop.AttachToGUI(g, nt)

	x.caps = Capabilities(h)
	c.view.caps = x.caps
	if x.caps.Has(CapabilityNavigation) {
		c.navigation = h.(NavigationEventHandler)
		loop.SetNavigationEventCallback(navigationTrampoline)
	}
	if x.caps.Has(CapabilityCustomEvent) {
		c.custom = h.(CustomEventHandler)
		loop.SetCustomEventCallback(customEventTrampoline)
	}
	if x.caps.Has(CapabilityTick) {
		var period time.Duration
		if p, ok := h.(TickPeriodHandler); ok {
			period = p.TickPeriod()
		}
		c.tick = h.(TickEventHandler)
		loop.SetTickEventCallback(tickTrampoline, period)
	}

	x.logger.Debug().
		Stringer(`type`, t).
		Stringer(`capabilities`, x.caps).
		Log(`view dispatcher created`)

	return x, nil
}

func openGUI(records *record.Registry) (*gui.Gui, error) {
	v, err := records.Open(gui.RecordName)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrGUIRecord, err)
	}
	g, ok := v.(*gui.Gui)
	if !ok || g == nil {
		_ = records.Close(gui.RecordName)
		return nil, fmt.Errorf("%w: record %q has type %T", ErrGUIRecord, gui.RecordName, v)
	}
	return g, nil
}

func (x *Dispatcher) native() native.Loop {
	if x.closed {
		panic(ErrClosed)
	}
	return x.loop
}

// Owner reports whether x owns its native loop, i.e. was returned by [New].
func (x *Dispatcher) Owner() bool { return x.owner }

// Capabilities returns the categories registered with the native loop.
func (x *Dispatcher) Capabilities() Capability { return x.caps }

// AddView registers view under id. A duplicate id panics.
func (x *Dispatcher) AddView(id uint32, view *native.View) {
	x.native().AddView(id, view)
}

// RemoveView unregisters id. An unregistered id panics.
func (x *Dispatcher) RemoveView(id uint32) {
	x.native().RemoveView(id)
}

// SwitchToView makes id the current view. An unregistered id panics.
func (x *Dispatcher) SwitchToView(id uint32) {
	x.native().SwitchToView(id)
}

// Run processes events until [Dispatcher.Stop] is called, or ctx is done,
// in which case ctx.Err() is returned. Run may be called again after it
// returns. Calling Run from a callback returns [native.ErrAlreadyRunning].
func (x *Dispatcher) Run(ctx context.Context) error {
	loop := x.native()

	x.logger.Debug().Log(`dispatcher run started`)

	var err error
	if r, ok := loop.(native.ContextRunner); ok {
		err = r.RunContext(ctx)
	} else {
		err = runUntilDone(ctx, loop)
	}

	switch {
	case err == nil:
	case errors.Is(err, native.ErrAlreadyRunning):
		return err
	case ctx.Err() != nil && errors.Is(err, ctx.Err()):
		x.logger.Debug().Err(err).Log(`dispatcher run cancelled`)
		return err
	default:
		x.logger.Err().Err(err).Log(`dispatcher run failed`)
		return err
	}

	x.logger.Debug().Log(`dispatcher run returned`)

	return ctx.Err()
}

// runUntilDone runs a loop that cannot observe ctx itself, stopping it once
// ctx is done. A cancellation racing the loop's own stop may leave a stop
// request pending for the next run.
func runUntilDone(ctx context.Context, loop native.Loop) error {
	stop := context.AfterFunc(ctx, loop.Stop)
	defer stop()
	return loop.Run()
}

// Stop requests that Run return. It may be called from any goroutine,
// including from a callback, and before Run, in which case the next Run
// returns immediately.
func (x *Dispatcher) Stop() {
	x.native().Stop()
}

// SendToFront moves the dispatcher's view port to the front of its layer.
func (x *Dispatcher) SendToFront() {
	x.native().SendToFront()
}

// SendToBack moves the dispatcher's view port to the back of its layer.
func (x *Dispatcher) SendToBack() {
	x.native().SendToBack()
}

// SendCustomEvent queues event for delivery to [CustomEventHandler] on a
// later iteration of Run. Without a registered handler the event is
// dropped.
func (x *Dispatcher) SendCustomEvent(event uint32) {
	x.native().SendCustomEvent(event)
}

// Close frees the native loop, closes the GUI record, and closes the handler
// if it implements io.Closer. It must not be called from a callback, and
// returns [ErrNotOwner] for the handles passed to them.
func (x *Dispatcher) Close() error {
	if !x.owner {
		return ErrNotOwner
	}
	if x.closed {
		return ErrClosed
	}
	x.closed = true

	c := x.context
	x.context = nil

	x.loop.Free()

	var errs []error
	if err := x.records.Close(gui.RecordName); err != nil {
		errs = append(errs, fmt.Errorf("viewdispatcher: close gui record: %w", err))
	}
	if closer, ok := c.handler.(io.Closer); ok {
		if err := closer.Close(); err != nil {
			errs = append(errs, fmt.Errorf("viewdispatcher: close handler: %w", err))
		}
	}

	err := errors.Join(errs...)
	if err != nil {
		x.logger.Warning().Err(err).Log(`view dispatcher closed with errors`)
	} else {
		x.logger.Debug().Log(`view dispatcher closed`)
	}
	return err
}
