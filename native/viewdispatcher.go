package native

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
	"unsafe"

	"github.com/joeycumines/go-catrate"
	"github.com/joeycumines/go-eventloop"
	"github.com/joeycumines/go-viewdispatcher/gui"
	"github.com/joeycumines/logiface"
)

type messageKind uint8

const (
	messageCustom messageKind = iota + 1
	messageInput
)

type message struct {
	input gui.InputEvent
	event uint32
	kind  messageKind
}

// ViewDispatcher is the [Loop] implementation. Each Run drives a fresh
// eventloop.Loop on the calling goroutine, dispatching one queued message
// per step, so that a stop requested by a callback takes effect before the
// next message.
//
// All state is guarded by one mutex, which is never held while calling
// back into user code.
type ViewDispatcher struct {
	logger   *logiface.Logger[logiface.Event]
	limiter  *catrate.Limiter
	viewPort *gui.ViewPort

	// set via the Set*Callback methods
	context    unsafe.Pointer
	navigation NavigationEventCallback
	custom     CustomEventCallback
	tick       TickEventCallback
	tickPeriod time.Duration

	gui       *gui.Gui
	views     map[uint32]*View
	current   *View
	loop      *eventloop.Loop
	cancel    context.CancelFunc
	queue     []message
	currentID uint32
	runs      uint64

	mu           sync.Mutex
	queueEnabled bool
	running      bool
	scheduled    bool
	stop         bool
	freed        bool
}

var (
	_ Loop          = (*ViewDispatcher)(nil)
	_ ContextRunner = (*ViewDispatcher)(nil)
)

// Alloc returns a new, unattached dispatcher. The queue is disabled until
// EnableQueue is called.
func Alloc(opts ...Option) (*ViewDispatcher, error) {
	cfg, err := resolveOptions(opts)
	if err != nil {
		return nil, err
	}
	limiter, err := newLimiter(cfg.dropRate)
	if err != nil {
		return nil, err
	}
	x := &ViewDispatcher{
		logger:    cfg.logger,
		limiter:   limiter,
		viewPort:  gui.NewViewPort(),
		views:     make(map[uint32]*View),
		currentID: ViewNone,
	}
	x.viewPort.SetInputCallback(x.enqueueInput)
	return x, nil
}

func newLimiter(rates map[time.Duration]int) (limiter *catrate.Limiter, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("native: invalid drop log rate: %v", r)
		}
	}()
	return catrate.NewLimiter(rates), nil
}

func (x *ViewDispatcher) SetEventCallbackContext(ctx unsafe.Pointer) {
	x.mu.Lock()
	defer x.mu.Unlock()
	x.checkLocked()
	x.context = ctx
}

func (x *ViewDispatcher) SetNavigationEventCallback(cb NavigationEventCallback) {
	x.mu.Lock()
	defer x.mu.Unlock()
	x.checkLocked()
	x.navigation = cb
}

func (x *ViewDispatcher) SetCustomEventCallback(cb CustomEventCallback) {
	x.mu.Lock()
	defer x.mu.Unlock()
	x.checkLocked()
	x.custom = cb
}

func (x *ViewDispatcher) SetTickEventCallback(cb TickEventCallback, period time.Duration) {
	x.mu.Lock()
	defer x.mu.Unlock()
	x.checkLocked()
	x.tick = cb
	x.tickPeriod = period
}

func (x *ViewDispatcher) EnableQueue() {
	x.mu.Lock()
	defer x.mu.Unlock()
	x.checkLocked()
	x.queueEnabled = true
}

func (x *ViewDispatcher) AttachToGUI(g *gui.Gui, t Type) {
	func() {
		x.mu.Lock()
		defer x.mu.Unlock()
		x.checkLocked()
		if x.gui != nil {
			panic(ErrAlreadyAttached)
		}
		x.gui = g
	}()
	g.AddViewPort(x.viewPort, t.Layer())
	x.logger.Debug().
		Stringer(`type`, t).
		Log(`attached to gui`)
}

func (x *ViewDispatcher) AddView(id uint32, view *View) {
	if view == nil {
		panic(errors.New("native: nil view"))
	}
	if id == ViewNone || id == ViewIgnore {
		panic(fmt.Errorf("%w: %#x", ErrReservedViewID, id))
	}
	x.mu.Lock()
	defer x.mu.Unlock()
	x.checkLocked()
	if _, ok := x.views[id]; ok {
		panic(fmt.Errorf("%w: %d", ErrViewExists, id))
	}
	x.views[id] = view
}

func (x *ViewDispatcher) RemoveView(id uint32) {
	x.mu.Lock()
	defer x.mu.Unlock()
	x.checkLocked()
	view, ok := x.views[id]
	if !ok {
		panic(fmt.Errorf("%w: %d", ErrViewNotRegistered, id))
	}
	if view == x.current {
		x.current, x.currentID = nil, ViewNone
		x.viewPort.SetEnabled(false)
	}
	delete(x.views, id)
}

func (x *ViewDispatcher) SwitchToView(id uint32) {
	x.mu.Lock()
	defer x.mu.Unlock()
	x.checkLocked()
	if id == ViewNone {
		x.current, x.currentID = nil, ViewNone
		x.viewPort.SetEnabled(false)
		return
	}
	view, ok := x.views[id]
	if !ok {
		panic(fmt.Errorf("%w: %d", ErrViewNotRegistered, id))
	}
	x.current, x.currentID = view, id
	x.viewPort.SetEnabled(true)
}

// HasView reports whether id is registered.
func (x *ViewDispatcher) HasView(id uint32) bool {
	x.mu.Lock()
	defer x.mu.Unlock()
	_, ok := x.views[id]
	return ok
}

// CurrentView returns the id of the current view, or [ViewNone].
func (x *ViewDispatcher) CurrentView() uint32 {
	x.mu.Lock()
	defer x.mu.Unlock()
	return x.currentID
}

// ViewPort returns the view port the dispatcher attaches to the GUI.
func (x *ViewDispatcher) ViewPort() *gui.ViewPort { return x.viewPort }

// Run dispatches events until Stop is observed.
func (x *ViewDispatcher) Run() error { return x.RunContext(context.Background()) }

// RunContext is Run, also returning ctx.Err() once ctx is done. Cancelling
// ctx ends the run without leaving a stop request for the next one.
func (x *ViewDispatcher) RunContext(parent context.Context) error {
	loop, ctx, cancel, err := x.startRun(parent)
	if err != nil {
		return err
	}

	defer func() {
		cancel()
		x.mu.Lock()
		x.running = false
		x.scheduled = false
		x.stop = false
		x.loop = nil
		x.cancel = nil
		x.mu.Unlock()
	}()

	x.mu.Lock()
	tick, period, run := x.tick, x.tickPeriod, x.runs
	x.mu.Unlock()
	if tick != nil && period > 0 {
		x.scheduleTick(loop, period)
	}

	x.logger.Debug().
		Uint64(`run`, run).
		Log(`view dispatcher running`)

	err = loop.Run(ctx)

	x.logger.Debug().
		Uint64(`run`, run).
		Log(`view dispatcher stopped`)

	if e := parent.Err(); e != nil {
		return e
	}
	if err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("native: event loop failed: %w", err)
	}
	return nil
}

func (x *ViewDispatcher) startRun(parent context.Context) (*eventloop.Loop, context.Context, context.CancelFunc, error) {
	x.mu.Lock()
	defer x.mu.Unlock()
	x.checkLocked()
	if x.running {
		return nil, nil, nil, ErrAlreadyRunning
	}
	loop, err := eventloop.New()
	if err != nil {
		return nil, nil, nil, fmt.Errorf("native: failed to create event loop: %w", err)
	}
	ctx, cancel := context.WithCancel(parent)
	x.running = true
	x.loop = loop
	x.cancel = cancel
	x.runs++
	if x.stop {
		// requested before Run
		cancel()
	}
	x.scheduleLocked()
	return loop, ctx, cancel, nil
}

// Stop requests that Run return, cancelling the active run, if any.
func (x *ViewDispatcher) Stop() {
	x.mu.Lock()
	x.stop = true
	cancel := x.cancel
	x.mu.Unlock()
	if cancel != nil {
		cancel()
	}
}

// SendToFront moves the view port to the front of its layer.
func (x *ViewDispatcher) SendToFront() {
	if g := x.attached(); g != nil {
		if err := g.SendViewPortToFront(x.viewPort); err != nil {
			x.logger.Debug().Err(err).Log(`send to front failed`)
		}
	}
}

// SendToBack moves the view port to the back of its layer.
func (x *ViewDispatcher) SendToBack() {
	if g := x.attached(); g != nil {
		if err := g.SendViewPortToBack(x.viewPort); err != nil {
			x.logger.Debug().Err(err).Log(`send to back failed`)
		}
	}
}

// SendCustomEvent queues event. It panics if the queue is not enabled.
func (x *ViewDispatcher) SendCustomEvent(event uint32) {
	x.enqueue(message{kind: messageCustom, event: event})
}

// Free detaches from the GUI and stops any active run. Using x afterwards
// panics with [ErrFreed].
func (x *ViewDispatcher) Free() {
	cancel, g, views := x.free()

	if cancel != nil {
		cancel()
	}
	if g != nil {
		if err := g.RemoveViewPort(x.viewPort); err != nil {
			x.logger.Debug().Err(err).Log(`remove view port failed`)
		}
	}
	if views != 0 {
		x.logger.Warning().
			Int(`views`, views).
			Log(`view dispatcher freed with views still registered`)
	}
}

func (x *ViewDispatcher) free() (context.CancelFunc, *gui.Gui, int) {
	x.mu.Lock()
	defer x.mu.Unlock()
	x.checkLocked()
	x.freed = true
	x.stop = true
	g := x.gui
	views := len(x.views)
	x.gui = nil
	x.views = nil
	x.current = nil
	x.currentID = ViewNone
	x.queue = nil
	return x.cancel, g, views
}

func (x *ViewDispatcher) attached() *gui.Gui {
	x.mu.Lock()
	defer x.mu.Unlock()
	x.checkLocked()
	return x.gui
}

// checkLocked panics if the dispatcher has been freed. x.mu must be held,
// with the unlock deferred.
func (x *ViewDispatcher) checkLocked() {
	if x.freed {
		panic(ErrFreed)
	}
}

// enqueueInput is the view port's input callback. The GUI calls it from
// other goroutines, which may race with Free, so input arriving once the
// dispatcher is freed or before its queue is enabled is dropped.
func (x *ViewDispatcher) enqueueInput(event gui.InputEvent) {
	x.mu.Lock()
	defer x.mu.Unlock()
	if x.freed || !x.queueEnabled {
		x.logger.Debug().
			Stringer(`key`, event.Key).
			Stringer(`type`, event.Type).
			Bool(`freed`, x.freed).
			Log(`input dropped: queue unavailable`)
		return
	}
	x.queue = append(x.queue, message{kind: messageInput, input: event})
	x.scheduleLocked()
}

func (x *ViewDispatcher) enqueue(msg message) {
	x.mu.Lock()
	defer x.mu.Unlock()
	x.checkLocked()
	if !x.queueEnabled {
		panic(ErrQueueDisabled)
	}
	x.queue = append(x.queue, msg)
	x.scheduleLocked()
}

// scheduleLocked submits a step if one is needed and none is pending.
// x.mu must be held.
func (x *ViewDispatcher) scheduleLocked() {
	if x.loop == nil || x.scheduled || x.stop || len(x.queue) == 0 {
		return
	}
	if err := x.loop.Submit(x.step); err != nil {
		x.logger.Err().
			Err(err).
			Log(`failed to schedule dispatch`)
		return
	}
	x.scheduled = true
}

// step dispatches the next queued message.
func (x *ViewDispatcher) step() {
	x.mu.Lock()
	x.scheduled = false
	if x.stop || x.freed || len(x.queue) == 0 {
		x.mu.Unlock()
		return
	}
	msg := x.queue[0]
	x.queue[0] = message{}
	x.queue = x.queue[1:]
	x.mu.Unlock()

	defer func() {
		x.mu.Lock()
		defer x.mu.Unlock()
		if !x.freed {
			x.scheduleLocked()
		}
	}()
	defer x.recoverCallback(`dispatch`)

	switch msg.kind {
	case messageCustom:
		x.dispatchCustom(msg.event)
	case messageInput:
		x.dispatchInput(msg.input)
	}
}

// recoverCallback logs and discards a panic raised while dispatching, so
// the remaining events are still delivered. It must be deferred directly.
func (x *ViewDispatcher) recoverCallback(op string) {
	r := recover()
	if r == nil {
		return
	}
	b := x.logger.Err().Str(`op`, op)
	if err, ok := r.(error); ok {
		b = b.Err(err)
	} else {
		b = b.Any(`panic`, r)
	}
	b.Log(`callback panicked`)
}

func (x *ViewDispatcher) dispatchCustom(event uint32) {
	x.mu.Lock()
	cb, ctx := x.custom, x.context
	x.mu.Unlock()
	if cb == nil {
		if _, ok := x.limiter.Allow(event); ok {
			x.logger.Debug().
				Uint64(`event`, uint64(event)).
				Log(`custom event dropped: no callback registered`)
		}
		return
	}
	cb(ctx, event)
}

func (x *ViewDispatcher) dispatchInput(event gui.InputEvent) {
	x.mu.Lock()
	view := x.current
	nav, ctx := x.navigation, x.context
	x.mu.Unlock()

	if view == nil {
		if _, ok := x.limiter.Allow(event.Key); ok {
			x.logger.Debug().
				Stringer(`key`, event.Key).
				Stringer(`type`, event.Type).
				Log(`input dropped: no current view`)
		}
		return
	}

	if view.handleInput(event) {
		return
	}

	if event.Key != gui.KeyBack || (event.Type != gui.InputTypeShort && event.Type != gui.InputTypeLong) {
		return
	}

	switch next := view.previousView(); next {
	case ViewIgnore:
	case ViewNone:
		if nav == nil || !nav(ctx) {
			x.Stop()
		}
	default:
		x.SwitchToView(next)
	}
}

func (x *ViewDispatcher) scheduleTick(loop *eventloop.Loop, period time.Duration) {
	var tick func()
	tick = func() {
		x.mu.Lock()
		cb, ctx := x.tick, x.context
		stop := x.stop || x.freed || x.loop != loop
		x.mu.Unlock()
		if stop || cb == nil {
			return
		}
		func() {
			defer x.recoverCallback(`tick`)
			cb(ctx)
		}()
		loop.ScheduleTimer(period, tick)
	}
	loop.ScheduleTimer(period, tick)
}
