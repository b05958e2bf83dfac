package gui

import (
	"sync"
	"testing"

	"github.com/joeycumines/go-viewdispatcher/record"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestGui(t *testing.T) *Gui {
	t.Helper()
	g, err := New()
	require.NoError(t, err)
	return g
}

func recordingViewPort(name string, log *[]string) *ViewPort {
	vp := NewViewPort()
	vp.SetInputCallback(func(event InputEvent) {
		*log = append(*log, name+":"+event.Key.String()+":"+event.Type.String())
	})
	vp.SetEnabled(true)
	return vp
}

func TestGui_SendInput_routesToFrontOfHighestLayer(t *testing.T) {
	g := newTestGui(t)
	var log []string

	desktop := recordingViewPort("desktop", &log)
	window1 := recordingViewPort("window1", &log)
	window2 := recordingViewPort("window2", &log)

	g.AddViewPort(desktop, LayerDesktop)
	g.AddViewPort(window1, LayerWindow)
	g.AddViewPort(window2, LayerWindow)

	require.True(t, g.SendInput(InputEvent{Key: KeyOk, Type: InputTypeShort}))
	require.Same(t, window2, g.Focused())

	require.NoError(t, g.SendViewPortToBack(window2))
	require.True(t, g.SendInput(InputEvent{Key: KeyBack, Type: InputTypeLong}))

	window1.SetEnabled(false)
	window2.SetEnabled(false)
	require.True(t, g.SendInput(InputEvent{Key: KeyUp, Type: InputTypePress}))

	assert.Equal(t, []string{
		"window2:Ok:Short",
		"window1:Back:Long",
		"desktop:Up:Press",
	}, log)
}

func TestGui_SendInput_noFocus(t *testing.T) {
	g := newTestGui(t)
	vp := NewViewPort()
	vp.SetInputCallback(func(InputEvent) { t.Error("disabled view port received input") })
	g.AddViewPort(vp, LayerFullscreen)

	assert.Nil(t, g.Focused())
	assert.False(t, g.SendInput(InputEvent{Key: KeyBack, Type: InputTypeShort}))
}

func TestGui_frontBackOrdering(t *testing.T) {
	g := newTestGui(t)
	a, b, c := NewViewPort(), NewViewPort(), NewViewPort()
	g.AddViewPort(a, LayerWindow)
	g.AddViewPort(b, LayerWindow)
	g.AddViewPort(c, LayerWindow)

	require.NoError(t, g.SendViewPortToFront(a))
	assert.Equal(t, []*ViewPort{b, c, a}, g.ViewPorts(LayerWindow))

	require.NoError(t, g.SendViewPortToBack(c))
	assert.Equal(t, []*ViewPort{c, b, a}, g.ViewPorts(LayerWindow))

	require.NoError(t, g.RemoveViewPort(b))
	assert.Equal(t, []*ViewPort{c, a}, g.ViewPorts(LayerWindow))

	require.ErrorIs(t, g.RemoveViewPort(b), ErrUnknownViewPort)
	require.ErrorIs(t, g.SendViewPortToFront(b), ErrUnknownViewPort)
	require.ErrorIs(t, g.SendViewPortToBack(b), ErrUnknownViewPort)
	assert.Nil(t, g.ViewPorts(layerCount))
}

func TestGui_AddViewPort_twicePanics(t *testing.T) {
	g := newTestGui(t)
	vp := NewViewPort()
	g.AddViewPort(vp, LayerDesktop)
	assert.Panics(t, func() { g.AddViewPort(vp, LayerFullscreen) })
	assert.Panics(t, func() { g.AddViewPort(NewViewPort(), layerCount) })
}

func TestProvide(t *testing.T) {
	var r record.Registry

	g1, err := Provide(&r)
	require.NoError(t, err)
	g2, err := Provide(&r)
	require.NoError(t, err)
	assert.Same(t, g1, g2)
	assert.Equal(t, 0, r.Refs(RecordName))

	var wrong record.Registry
	require.NoError(t, wrong.Create(RecordName, "not a gui"))
	_, err = Provide(&wrong)
	require.Error(t, err)
}

func TestProvide_concurrent(t *testing.T) {
	var r record.Registry
	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		seen = make(map[*Gui]struct{})
	)
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			g, err := Provide(&r)
			if err != nil {
				t.Error(err)
				return
			}
			mu.Lock()
			seen[g] = struct{}{}
			mu.Unlock()
		}()
	}
	wg.Wait()
	if len(seen) != 1 {
		t.Fatalf("expected exactly one gui, got %d", len(seen))
	}
}

func TestStringers(t *testing.T) {
	assert.Equal(t, "Fullscreen", LayerFullscreen.String())
	assert.Equal(t, "Unknown", Layer(99).String())
	assert.Equal(t, "Back", KeyBack.String())
	assert.Equal(t, "Unknown", Key(99).String())
	assert.Equal(t, "Repeat", InputTypeRepeat.String())
	assert.Equal(t, "Unknown", InputType(99).String())
}
