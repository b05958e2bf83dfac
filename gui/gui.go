// Package gui models the GUI service that owns the screen: a stack of view
// ports per layer, and the routing of input to whichever one is on top.
//
// Nothing here draws. The package exists so that event loops can attach to
// a screen, be brought to the front or sent to the back, and receive input,
// the way they would against the real service.
package gui

import (
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/joeycumines/go-viewdispatcher/record"
	"github.com/joeycumines/logiface"
)

// RecordName is the name the GUI service is registered under, see
// [record.Registry].
const RecordName = "gui"

// ErrUnknownViewPort is returned for a view port that was never added.
var ErrUnknownViewPort = errors.New("gui: unknown view port")

// Layer orders view ports. Higher layers take input first.
type Layer uint8

const (
	LayerDesktop Layer = iota
	LayerWindow
	LayerFullscreen
	layerCount
)

// String returns the layer name.
func (l Layer) String() string {
	switch l {
	case LayerDesktop:
		return "Desktop"
	case LayerWindow:
		return "Window"
	case LayerFullscreen:
		return "Fullscreen"
	default:
		return "Unknown"
	}
}

// Gui is the screen owner. Methods are safe for concurrent use.
type Gui struct {
	logger *logiface.Logger[logiface.Event]
	// the last element of each layer is the front
	layers [layerCount][]*ViewPort
	mu     sync.Mutex
}

// New returns an empty GUI.
func New(opts ...Option) (*Gui, error) {
	cfg, err := resolveOptions(opts)
	if err != nil {
		return nil, err
	}
	return &Gui{logger: cfg.logger}, nil
}

// Provide returns the GUI registered in r under [RecordName], creating and
// registering a new one if there is none.
func Provide(r *record.Registry, opts ...Option) (*Gui, error) {
	for {
		if v, err := r.Open(RecordName); err == nil {
			_ = r.Close(RecordName)
			g, ok := v.(*Gui)
			if !ok {
				return nil, fmt.Errorf("gui: record %q holds %T", RecordName, v)
			}
			return g, nil
		}
		g, err := New(opts...)
		if err != nil {
			return nil, err
		}
		if err := r.Create(RecordName, g); err == nil {
			return g, nil
		} else if !errors.Is(err, record.ErrExists) {
			return nil, err
		}
		// lost a race with another provider
	}
}

// AddViewPort puts vp at the front of layer. Adding a view port twice
// panics.
func (x *Gui) AddViewPort(vp *ViewPort, layer Layer) {
	if layer >= layerCount {
		panic(fmt.Errorf("gui: invalid layer %d", layer))
	}
	x.mu.Lock()
	defer x.mu.Unlock()
	if l, _ := x.find(vp); l >= 0 {
		panic(fmt.Errorf("gui: view port already added to layer %s", Layer(l)))
	}
	x.layers[layer] = append(x.layers[layer], vp)
	x.logger.Debug().
		Stringer(`layer`, layer).
		Int(`count`, len(x.layers[layer])).
		Log(`view port added`)
}

// RemoveViewPort detaches vp.
func (x *Gui) RemoveViewPort(vp *ViewPort) error {
	x.mu.Lock()
	defer x.mu.Unlock()
	l, i := x.find(vp)
	if l < 0 {
		return ErrUnknownViewPort
	}
	x.layers[l] = slices.Delete(x.layers[l], i, i+1)
	x.logger.Debug().
		Stringer(`layer`, Layer(l)).
		Log(`view port removed`)
	return nil
}

// SendViewPortToFront moves vp to the front of its layer.
func (x *Gui) SendViewPortToFront(vp *ViewPort) error {
	x.mu.Lock()
	defer x.mu.Unlock()
	l, i := x.find(vp)
	if l < 0 {
		return ErrUnknownViewPort
	}
	s := slices.Delete(x.layers[l], i, i+1)
	x.layers[l] = append(s, vp)
	return nil
}

// SendViewPortToBack moves vp to the back of its layer.
func (x *Gui) SendViewPortToBack(vp *ViewPort) error {
	x.mu.Lock()
	defer x.mu.Unlock()
	l, i := x.find(vp)
	if l < 0 {
		return ErrUnknownViewPort
	}
	s := slices.Delete(x.layers[l], i, i+1)
	x.layers[l] = slices.Insert(s, 0, vp)
	return nil
}

// Focused returns the view port that would receive input, or nil.
func (x *Gui) Focused() *ViewPort {
	x.mu.Lock()
	defer x.mu.Unlock()
	vp, _ := x.focused()
	return vp
}

// SendInput routes event to the focused view port, reporting whether one
// accepted it.
func (x *Gui) SendInput(event InputEvent) bool {
	x.mu.Lock()
	_, fn := x.focused()
	x.mu.Unlock()
	if fn == nil {
		x.logger.Debug().
			Stringer(`key`, event.Key).
			Stringer(`type`, event.Type).
			Log(`input dropped: no focused view port`)
		return false
	}
	fn(event)
	return true
}

// ViewPorts returns a snapshot of layer, back to front.
func (x *Gui) ViewPorts(layer Layer) []*ViewPort {
	if layer >= layerCount {
		return nil
	}
	x.mu.Lock()
	defer x.mu.Unlock()
	return slices.Clone(x.layers[layer])
}

func (x *Gui) focused() (*ViewPort, func(InputEvent)) {
	for l := int(layerCount) - 1; l >= 0; l-- {
		for i := len(x.layers[l]) - 1; i >= 0; i-- {
			vp := x.layers[l][i]
			if fn := vp.inputCallback(); fn != nil {
				return vp, fn
			}
		}
	}
	return nil, nil
}

func (x *Gui) find(vp *ViewPort) (layer, index int) {
	for l := range x.layers {
		if i := slices.Index(x.layers[l], vp); i >= 0 {
			return l, i
		}
	}
	return -1, -1
}
