package gui

// Key identifies a hardware button.
type Key uint8

const (
	KeyUp Key = iota
	KeyDown
	KeyRight
	KeyLeft
	KeyOk
	KeyBack
)

// String returns the key name.
func (k Key) String() string {
	switch k {
	case KeyUp:
		return "Up"
	case KeyDown:
		return "Down"
	case KeyRight:
		return "Right"
	case KeyLeft:
		return "Left"
	case KeyOk:
		return "Ok"
	case KeyBack:
		return "Back"
	default:
		return "Unknown"
	}
}

// InputType is the phase of a button interaction.
type InputType uint8

const (
	// InputTypePress is sent when a button goes down.
	InputTypePress InputType = iota
	// InputTypeRelease is sent when a button goes up.
	InputTypeRelease
	// InputTypeShort is sent after a press and release within the long
	// press threshold.
	InputTypeShort
	// InputTypeLong is sent once, when a button is held past the threshold.
	InputTypeLong
	// InputTypeRepeat is sent periodically while a button stays held.
	InputTypeRepeat
)

// String returns the input type name.
func (t InputType) String() string {
	switch t {
	case InputTypePress:
		return "Press"
	case InputTypeRelease:
		return "Release"
	case InputTypeShort:
		return "Short"
	case InputTypeLong:
		return "Long"
	case InputTypeRepeat:
		return "Repeat"
	default:
		return "Unknown"
	}
}

// InputEvent is a single button event, as routed to view ports.
type InputEvent struct {
	Key  Key
	Type InputType
}
