package nativetest

import (
	"context"
	"errors"
	"testing"
	"time"
	"unsafe"

	"github.com/google/go-cmp/cmp"
	"github.com/joeycumines/go-viewdispatcher/native"
)

func TestLoop_runDeliversInOrder(t *testing.T) {
	x := New()
	var got []string
	ctx := unsafe.Pointer(&got)
	x.SetEventCallbackContext(ctx)
	x.EnableQueue()
	x.SetCustomEventCallback(func(c unsafe.Pointer, event uint32) bool {
		p := (*[]string)(c)
		*p = append(*p, "custom")
		return event%2 == 0
	})
	x.SetTickEventCallback(func(c unsafe.Pointer) {
		p := (*[]string)(c)
		*p = append(*p, "tick")
	}, time.Second)

	x.SendCustomEvent(1)
	x.InjectTick()
	x.SendCustomEvent(2)

	if err := x.Run(); !errors.Is(err, ErrIdle) {
		t.Fatalf("unexpected error: %v", err)
	}
	if diff := cmp.Diff([]string{"custom", "tick", "custom"}, got); diff != "" {
		t.Errorf("unexpected order (-want +got):\n%s", diff)
	}
	want := []Delivery{
		{Event: Event{Kind: KindCustom, Payload: 1}, Result: false},
		{Event: Event{Kind: KindTick}},
		{Event: Event{Kind: KindCustom, Payload: 2}, Result: true},
	}
	if diff := cmp.Diff(want, x.Deliveries()); diff != "" {
		t.Errorf("unexpected deliveries (-want +got):\n%s", diff)
	}
}

func TestLoop_unhandledNavigationStops(t *testing.T) {
	x := New()
	x.EnableQueue()
	x.InjectNavigation()
	x.SendCustomEvent(5)

	if err := x.Run(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n := x.Dropped(); n != 1 {
		t.Fatalf("expected 1 dropped, got %d", n)
	}
	if n := x.Pending(); n != 1 {
		t.Fatalf("expected 1 pending, got %d", n)
	}
	if err := x.Run(); !errors.Is(err, ErrIdle) {
		t.Fatalf("unexpected error: %v", err)
	}
	if n := x.Dropped(); n != 2 {
		t.Fatalf("expected 2 dropped, got %d", n)
	}
}

func TestLoop_violations(t *testing.T) {
	x := New()
	x.SendCustomEvent(1)
	x.AddView(1, native.NewView())
	x.AddView(1, native.NewView())
	x.SwitchToView(2)
	x.RemoveView(2)
	x.SwitchToView(native.ViewNone)
	x.Free()
	x.Free()
	x.Stop()

	var targets = []error{
		native.ErrQueueDisabled,
		native.ErrViewExists,
		native.ErrViewNotRegistered,
		native.ErrViewNotRegistered,
		native.ErrFreed,
		nil, // Stop after Free
	}
	v := x.Violations()
	if len(v) != len(targets) {
		t.Fatalf("expected %d violations, got %d: %v", len(targets), len(v), v)
	}
	for i, target := range targets {
		if target != nil && !errors.Is(v[i], target) {
			t.Errorf("violation %d: expected %v, got %v", i, target, v[i])
		}
	}
	if x.Frees() != 2 {
		t.Errorf("expected 2 frees, got %d", x.Frees())
	}
}

func TestLoop_nestedRun(t *testing.T) {
	x := New()
	x.EnableQueue()
	var nested error
	x.SetCustomEventCallback(func(unsafe.Pointer, uint32) bool {
		nested = x.Run()
		x.Stop()
		return true
	})
	x.SendCustomEvent(0)
	if err := x.Run(); err != nil {
		t.Fatal(err)
	}
	if !errors.Is(nested, native.ErrAlreadyRunning) {
		t.Fatalf("unexpected nested error: %v", nested)
	}
}

func TestLoop_runContext(t *testing.T) {
	x := New()
	x.EnableQueue()
	ctx, cancel := context.WithCancel(context.Background())
	x.SetCustomEventCallback(func(unsafe.Pointer, uint32) bool {
		cancel()
		return true
	})
	x.SendCustomEvent(1)
	x.SendCustomEvent(2)

	if err := x.RunContext(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("unexpected error: %v", err)
	}
	if n := x.Pending(); n != 1 {
		t.Fatalf("expected 1 pending, got %d", n)
	}
	if n := x.Count("Run"); n != 1 {
		t.Fatalf("expected 1 run, got %d", n)
	}
}

func TestKind_String(t *testing.T) {
	for k, want := range map[Kind]string{
		KindNavigation: "Navigation",
		KindCustom:     "Custom",
		KindTick:       "Tick",
		Kind(0):        "Unknown",
	} {
		if got := k.String(); got != want {
			t.Errorf("%d: expected %q, got %q", k, want, got)
		}
	}
}
