package terminput

import (
	"testing"

	"github.com/gdamore/tcell/v2"
	"github.com/google/go-cmp/cmp"
	"github.com/joeycumines/go-viewdispatcher/gui"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sliceSource []tcell.Event

func (x *sliceSource) PollEvent() tcell.Event {
	if len(*x) == 0 {
		return nil
	}
	ev := (*x)[0]
	*x = (*x)[1:]
	return ev
}

func TestKey(t *testing.T) {
	for _, tc := range [...]struct {
		ev   *tcell.EventKey
		want gui.Key
		ok   bool
	}{
		{tcell.NewEventKey(tcell.KeyUp, 0, tcell.ModNone), gui.KeyUp, true},
		{tcell.NewEventKey(tcell.KeyDown, 0, tcell.ModNone), gui.KeyDown, true},
		{tcell.NewEventKey(tcell.KeyLeft, 0, tcell.ModNone), gui.KeyLeft, true},
		{tcell.NewEventKey(tcell.KeyRight, 0, tcell.ModNone), gui.KeyRight, true},
		{tcell.NewEventKey(tcell.KeyEnter, 0, tcell.ModNone), gui.KeyOk, true},
		{tcell.NewEventKey(tcell.KeyEscape, 0, tcell.ModNone), gui.KeyBack, true},
		{tcell.NewEventKey(tcell.KeyRune, 'k', tcell.ModNone), gui.KeyUp, true},
		{tcell.NewEventKey(tcell.KeyRune, ' ', tcell.ModNone), gui.KeyOk, true},
		{tcell.NewEventKey(tcell.KeyRune, 'q', tcell.ModNone), gui.KeyBack, true},
		{tcell.NewEventKey(tcell.KeyRune, 'x', tcell.ModNone), 0, false},
		{tcell.NewEventKey(tcell.KeyTab, 0, tcell.ModNone), 0, false},
	} {
		key, ok := Key(tc.ev)
		assert.Equal(t, tc.ok, ok, tc.ev.Name())
		assert.Equal(t, tc.want, key, tc.ev.Name())
	}
}

func TestEvents(t *testing.T) {
	want := []gui.InputEvent{
		{Key: gui.KeyBack, Type: gui.InputTypePress},
		{Key: gui.KeyBack, Type: gui.InputTypeShort},
		{Key: gui.KeyBack, Type: gui.InputTypeRelease},
	}
	if diff := cmp.Diff(want, Events(tcell.NewEventKey(tcell.KeyEscape, 0, tcell.ModNone))); diff != "" {
		t.Errorf("unexpected events (-want +got):\n%s", diff)
	}

	want = []gui.InputEvent{
		{Key: gui.KeyLeft, Type: gui.InputTypePress},
		{Key: gui.KeyLeft, Type: gui.InputTypeLong},
		{Key: gui.KeyLeft, Type: gui.InputTypeRelease},
	}
	if diff := cmp.Diff(want, Events(tcell.NewEventKey(tcell.KeyLeft, 0, tcell.ModShift))); diff != "" {
		t.Errorf("unexpected events (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(want, Events(tcell.NewEventKey(tcell.KeyRune, 'H', tcell.ModNone))); diff != "" {
		t.Errorf("unexpected events (-want +got):\n%s", diff)
	}

	assert.Nil(t, Events(tcell.NewEventKey(tcell.KeyRune, 'z', tcell.ModNone)))
}

func TestPump(t *testing.T) {
	g, err := gui.New()
	require.NoError(t, err)

	var got []gui.InputEvent
	vp := gui.NewViewPort()
	vp.SetInputCallback(func(event gui.InputEvent) { got = append(got, event) })
	vp.SetEnabled(true)
	g.AddViewPort(vp, gui.LayerFullscreen)

	var interrupts int
	src := sliceSource{
		tcell.NewEventKey(tcell.KeyRune, 'z', tcell.ModNone),
		tcell.NewEventKey(tcell.KeyUp, 0, tcell.ModNone),
		tcell.NewEventResize(80, 24),
		tcell.NewEventKey(tcell.KeyCtrlC, 0, tcell.ModCtrl),
	}
	Pump(&src, g, func() { interrupts++ }, nil)

	want := []gui.InputEvent{
		{Key: gui.KeyUp, Type: gui.InputTypePress},
		{Key: gui.KeyUp, Type: gui.InputTypeShort},
		{Key: gui.KeyUp, Type: gui.InputTypeRelease},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("unexpected input (-want +got):\n%s", diff)
	}
	assert.Equal(t, 1, interrupts)
	assert.Empty(t, src)
}
