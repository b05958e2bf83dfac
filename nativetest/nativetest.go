// Package nativetest provides a recording double for native.Loop.
//
// The double records every call, keeps its own view registry, flags
// precondition violations (instead of panicking, like the real loop), and
// runs injected events through whichever callbacks were registered. Its Run
// returns when Stop is observed between events, or with ErrIdle once the
// queue is exhausted, so tests never block.
package nativetest

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"
	"unsafe"

	"github.com/joeycumines/go-viewdispatcher/gui"
	"github.com/joeycumines/go-viewdispatcher/native"
)

// ErrIdle is returned by Run when the queue empties without a stop.
var ErrIdle = errors.New("nativetest: queue exhausted without stop")

// Kind is a callback category.
type Kind uint8

const (
	KindNavigation Kind = iota + 1
	KindCustom
	KindTick
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindNavigation:
		return "Navigation"
	case KindCustom:
		return "Custom"
	case KindTick:
		return "Tick"
	default:
		return "Unknown"
	}
}

type (
	// Call is one recorded method call.
	Call struct {
		Op   string
		Args []any
	}

	// Event is a queued event.
	Event struct {
		Kind    Kind
		Payload uint32
	}

	// Delivery records one callback invocation made by Run.
	Delivery struct {
		Event
		// Result is the callback's return value, always false for ticks.
		Result bool
	}

	// Loop is the recording double. The zero value is not usable, use New.
	Loop struct {
		context    unsafe.Pointer
		navigation native.NavigationEventCallback
		custom     native.CustomEventCallback
		tick       native.TickEventCallback
		gui        *gui.Gui
		views      map[uint32]*native.View
		calls      []Call
		queue      []Event
		deliveries []Delivery
		violations []error
		tickPeriod time.Duration
		dropped    int
		frees      int
		current    uint32
		typ        native.Type
		mu         sync.Mutex

		queueEnabled bool
		running      bool
		stopped      bool
	}
)

var (
	_ native.Loop          = (*Loop)(nil)
	_ native.ContextRunner = (*Loop)(nil)
)

// New returns an empty double.
func New() *Loop {
	return &Loop{
		views:   make(map[uint32]*native.View),
		current: native.ViewNone,
	}
}

// Allocator returns a function suitable for the root package's
// WithAllocator option, always yielding x.
func (x *Loop) Allocator() func() (native.Loop, error) {
	return func() (native.Loop, error) { return x, nil }
}

func (x *Loop) record(op string, args ...any) {
	x.calls = append(x.calls, Call{Op: op, Args: args})
	if x.frees != 0 && op != "Free" {
		x.violations = append(x.violations, fmt.Errorf("nativetest: %s after Free", op))
	}
}

func (x *Loop) violation(format string, args ...any) {
	x.violations = append(x.violations, fmt.Errorf(format, args...))
}

func (x *Loop) SetEventCallbackContext(ctx unsafe.Pointer) {
	x.mu.Lock()
	defer x.mu.Unlock()
	x.record("SetEventCallbackContext", ctx != nil)
	x.context = ctx
}

func (x *Loop) SetNavigationEventCallback(cb native.NavigationEventCallback) {
	x.mu.Lock()
	defer x.mu.Unlock()
	x.record("SetNavigationEventCallback")
	x.navigation = cb
}

func (x *Loop) SetCustomEventCallback(cb native.CustomEventCallback) {
	x.mu.Lock()
	defer x.mu.Unlock()
	x.record("SetCustomEventCallback")
	x.custom = cb
}

func (x *Loop) SetTickEventCallback(cb native.TickEventCallback, period time.Duration) {
	x.mu.Lock()
	defer x.mu.Unlock()
	x.record("SetTickEventCallback", period)
	x.tick = cb
	x.tickPeriod = period
}

func (x *Loop) EnableQueue() {
	x.mu.Lock()
	defer x.mu.Unlock()
	x.record("EnableQueue")
	x.queueEnabled = true
}

func (x *Loop) AttachToGUI(g *gui.Gui, t native.Type) {
	x.mu.Lock()
	defer x.mu.Unlock()
	x.record("AttachToGUI", t)
	if x.gui != nil {
		x.violation("nativetest: attached twice")
	}
	x.gui = g
	x.typ = t
}

func (x *Loop) AddView(id uint32, view *native.View) {
	x.mu.Lock()
	defer x.mu.Unlock()
	x.record("AddView", id)
	if _, ok := x.views[id]; ok {
		x.violation("nativetest: AddView: %w: %d", native.ErrViewExists, id)
		return
	}
	x.views[id] = view
}

func (x *Loop) RemoveView(id uint32) {
	x.mu.Lock()
	defer x.mu.Unlock()
	x.record("RemoveView", id)
	if _, ok := x.views[id]; !ok {
		x.violation("nativetest: RemoveView: %w: %d", native.ErrViewNotRegistered, id)
		return
	}
	if x.current == id {
		x.current = native.ViewNone
	}
	delete(x.views, id)
}

func (x *Loop) SwitchToView(id uint32) {
	x.mu.Lock()
	defer x.mu.Unlock()
	x.record("SwitchToView", id)
	if _, ok := x.views[id]; !ok && id != native.ViewNone {
		x.violation("nativetest: SwitchToView: %w: %d", native.ErrViewNotRegistered, id)
		return
	}
	x.current = id
}

// Run delivers queued events in order until Stop is observed between
// events. A stop requested before Run is consumed by it.
func (x *Loop) Run() error { return x.RunContext(context.Background()) }

// RunContext is Run, also returning ctx.Err() if ctx is done between
// events. Both are recorded as "Run".
func (x *Loop) RunContext(ctx context.Context) error {
	x.mu.Lock()
	x.record("Run")
	if x.running {
		x.mu.Unlock()
		return native.ErrAlreadyRunning
	}
	x.running = true
	x.mu.Unlock()

	defer func() {
		x.mu.Lock()
		x.running = false
		x.stopped = false
		x.mu.Unlock()
	}()

	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		x.mu.Lock()
		if x.stopped {
			x.mu.Unlock()
			return nil
		}
		if len(x.queue) == 0 {
			x.mu.Unlock()
			return ErrIdle
		}
		event := x.queue[0]
		x.queue = x.queue[1:]
		x.mu.Unlock()

		x.dispatch(event)
	}
}

func (x *Loop) dispatch(event Event) {
	x.mu.Lock()
	ctx := x.context
	nav, custom, tick := x.navigation, x.custom, x.tick
	x.mu.Unlock()

	var (
		delivered bool
		result    bool
	)
	switch event.Kind {
	case KindNavigation:
		if nav != nil {
			delivered, result = true, nav(ctx)
		}
		if !result {
			// unhandled navigation stops the loop
			x.Stop()
		}
	case KindCustom:
		if custom != nil {
			delivered, result = true, custom(ctx, event.Payload)
		}
	case KindTick:
		if tick != nil {
			delivered = true
			tick(ctx)
		}
	}

	x.mu.Lock()
	defer x.mu.Unlock()
	if delivered {
		x.deliveries = append(x.deliveries, Delivery{Event: event, Result: result})
	} else {
		x.dropped++
	}
}

func (x *Loop) Stop() {
	x.mu.Lock()
	defer x.mu.Unlock()
	x.record("Stop")
	x.stopped = true
}

func (x *Loop) SendToFront() {
	x.mu.Lock()
	defer x.mu.Unlock()
	x.record("SendToFront")
}

func (x *Loop) SendToBack() {
	x.mu.Lock()
	defer x.mu.Unlock()
	x.record("SendToBack")
}

func (x *Loop) SendCustomEvent(event uint32) {
	x.mu.Lock()
	defer x.mu.Unlock()
	x.record("SendCustomEvent", event)
	if !x.queueEnabled {
		x.violation("nativetest: SendCustomEvent: %w", native.ErrQueueDisabled)
		return
	}
	x.queue = append(x.queue, Event{Kind: KindCustom, Payload: event})
}

func (x *Loop) Free() {
	x.mu.Lock()
	defer x.mu.Unlock()
	x.record("Free")
	x.frees++
	if x.frees > 1 {
		x.violation("nativetest: %w (freed %d times)", native.ErrFreed, x.frees)
	}
}

// InjectNavigation queues a navigation event.
func (x *Loop) InjectNavigation() {
	x.mu.Lock()
	defer x.mu.Unlock()
	x.queue = append(x.queue, Event{Kind: KindNavigation})
}

// InjectTick queues a tick.
func (x *Loop) InjectTick() {
	x.mu.Lock()
	defer x.mu.Unlock()
	x.queue = append(x.queue, Event{Kind: KindTick})
}

// Calls returns a copy of the recorded calls.
func (x *Loop) Calls() []Call {
	x.mu.Lock()
	defer x.mu.Unlock()
	return slices.Clone(x.calls)
}

// Ops returns the names of the recorded calls, in order.
func (x *Loop) Ops() []string {
	x.mu.Lock()
	defer x.mu.Unlock()
	ops := make([]string, len(x.calls))
	for i, c := range x.calls {
		ops[i] = c.Op
	}
	return ops
}

// Count returns how many times op was called.
func (x *Loop) Count(op string) (n int) {
	x.mu.Lock()
	defer x.mu.Unlock()
	for _, c := range x.calls {
		if c.Op == op {
			n++
		}
	}
	return n
}

// Registered reports whether a callback is registered for kind.
func (x *Loop) Registered(kind Kind) bool {
	x.mu.Lock()
	defer x.mu.Unlock()
	switch kind {
	case KindNavigation:
		return x.navigation != nil
	case KindCustom:
		return x.custom != nil
	case KindTick:
		return x.tick != nil
	default:
		return false
	}
}

// Context returns the registered callback context.
func (x *Loop) Context() unsafe.Pointer {
	x.mu.Lock()
	defer x.mu.Unlock()
	return x.context
}

// NavigationEventCallback returns the registered callback, or nil.
func (x *Loop) NavigationEventCallback() native.NavigationEventCallback {
	x.mu.Lock()
	defer x.mu.Unlock()
	return x.navigation
}

// CustomEventCallback returns the registered callback, or nil.
func (x *Loop) CustomEventCallback() native.CustomEventCallback {
	x.mu.Lock()
	defer x.mu.Unlock()
	return x.custom
}

// TickEventCallback returns the registered callback, or nil, and its period.
func (x *Loop) TickEventCallback() (native.TickEventCallback, time.Duration) {
	x.mu.Lock()
	defer x.mu.Unlock()
	return x.tick, x.tickPeriod
}

// Attached returns the GUI and type passed to AttachToGUI.
func (x *Loop) Attached() (*gui.Gui, native.Type) {
	x.mu.Lock()
	defer x.mu.Unlock()
	return x.gui, x.typ
}

// HasView reports whether id is registered.
func (x *Loop) HasView(id uint32) bool {
	x.mu.Lock()
	defer x.mu.Unlock()
	_, ok := x.views[id]
	return ok
}

// View returns the handle registered under id, or nil.
func (x *Loop) View(id uint32) *native.View {
	x.mu.Lock()
	defer x.mu.Unlock()
	return x.views[id]
}

// CurrentView returns the current view id, or native.ViewNone.
func (x *Loop) CurrentView() uint32 {
	x.mu.Lock()
	defer x.mu.Unlock()
	return x.current
}

// Deliveries returns the callback invocations made by Run.
func (x *Loop) Deliveries() []Delivery {
	x.mu.Lock()
	defer x.mu.Unlock()
	return slices.Clone(x.deliveries)
}

// Dropped returns how many events had no registered callback.
func (x *Loop) Dropped() int {
	x.mu.Lock()
	defer x.mu.Unlock()
	return x.dropped
}

// Pending returns how many events are queued.
func (x *Loop) Pending() int {
	x.mu.Lock()
	defer x.mu.Unlock()
	return len(x.queue)
}

// Violations returns the precondition violations observed so far.
func (x *Loop) Violations() []error {
	x.mu.Lock()
	defer x.mu.Unlock()
	return slices.Clone(x.violations)
}

// Frees returns how many times Free was called.
func (x *Loop) Frees() int {
	x.mu.Lock()
	defer x.mu.Unlock()
	return x.frees
}
