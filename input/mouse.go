package input

import (
	"fmt"
	"image"

	"gioui.org/io/pointer"
)

// MouseEvent is a single entry of the mouse event queue.
type MouseEvent struct {
	Type    pointer.Type
	X, Y    int
	Buttons pointer.Buttons
	// Delta is the raw wheel delta of a Scroll event.
	Delta int
}

func (e MouseEvent) String() string {
	if e.Type == pointer.Scroll {
		return fmt.Sprintf("%s (%d,%d) delta %d", e.Type, e.X, e.Y, e.Delta)
	}
	return fmt.Sprintf("%s (%d,%d) %s", e.Type, e.X, e.Y, e.Buttons)
}

// Capture tells the window what to do with pointer capture after a move.
type Capture uint8

const (
	// CaptureKeep leaves the capture as it is.
	CaptureKeep Capture = iota
	// CaptureAcquire routes pointer input to the window.
	CaptureAcquire
	// CaptureRelease gives pointer input back to the system.
	CaptureRelease
)

func (c Capture) String() string {
	switch c {
	case CaptureAcquire:
		return "acquire"
	case CaptureRelease:
		return "release"
	default:
		return "keep"
	}
}

// Mouse holds the last validated pointer position, the button states and a
// bounded event queue.
type Mouse struct {
	x, y     int
	buttons  pointer.Buttons
	inWindow bool
	// Accumulator for sub-notch wheel deltas. Raw deltas are forwarded as is
	// and the carry is left untouched.
	wheelDeltaCarry int
	bounds          image.Point
	events          fifo[MouseEvent]
}

// NewMouse returns a mouse confined to a client area of the given size.
func NewMouse(width, height int) *Mouse {
	m := &Mouse{}
	m.SetBounds(width, height)
	return m
}

// SetBounds sets the largest valid coordinates.
func (m *Mouse) SetBounds(maxX, maxY int) {
	m.bounds = image.Pt(maxX, maxY)
}

// Bounds returns the largest valid coordinates.
func (m *Mouse) Bounds() image.Point { return m.bounds }

// Reset releases all buttons and drops the queued events.
func (m *Mouse) Reset() {
	m.buttons = 0
	m.inWindow = false
	m.wheelDeltaCarry = 0
	m.events.clear()
}

// Pos returns the last recorded position.
func (m *Mouse) Pos() image.Point { return image.Pt(m.x, m.y) }

// X returns the last recorded horizontal position.
func (m *Mouse) X() int { return m.x }

// Y returns the last recorded vertical position.
func (m *Mouse) Y() int { return m.y }

// InWindow reports whether the pointer is inside the client area.
func (m *Mouse) InWindow() bool { return m.inWindow }

// Buttons returns the buttons currently held.
func (m *Mouse) Buttons() pointer.Buttons { return m.buttons }

// LeftIsPressed reports the left button state.
func (m *Mouse) LeftIsPressed() bool { return m.buttons.Contain(pointer.ButtonPrimary) }

// RightIsPressed reports the right button state.
func (m *Mouse) RightIsPressed() bool { return m.buttons.Contain(pointer.ButtonSecondary) }

// WheelIsPressed reports the middle button state.
func (m *Mouse) WheelIsPressed() bool { return m.buttons.Contain(pointer.ButtonTertiary) }

// Read removes and returns the oldest event.
func (m *Mouse) Read() (MouseEvent, bool) { return m.events.pop() }

// Empty reports whether the event queue is empty.
func (m *Mouse) Empty() bool { return m.events.len() == 0 }

// Move validates a pointer position against the client bounds and updates
// the state accordingly. held are the buttons reported with the move.
func (m *Mouse) Move(x, y int, held pointer.Buttons) Capture {
	if x >= 0 && x <= m.bounds.X && y >= 0 && y <= m.bounds.Y {
		m.OnMouseMove(x, y)
		if !m.inWindow {
			m.OnMouseEnter()
			return CaptureAcquire
		}
		return CaptureKeep
	}
	if held&(pointer.ButtonPrimary|pointer.ButtonSecondary|pointer.ButtonTertiary) != 0 {
		// Dragging outside the window.
		m.OnMouseMove(x, y)
		return CaptureKeep
	}
	m.OnMouseLeave()
	return CaptureRelease
}

// OnMouseMove records a new position.
func (m *Mouse) OnMouseMove(x, y int) {
	m.x, m.y = x, y
	m.emit(pointer.Move)
}

// OnMouseEnter marks the pointer as inside the client area.
func (m *Mouse) OnMouseEnter() {
	m.inWindow = true
	m.emit(pointer.Enter)
}

// OnMouseLeave marks the pointer as outside the client area.
func (m *Mouse) OnMouseLeave() {
	m.inWindow = false
	m.emit(pointer.Leave)
}

func (m *Mouse) OnLeftPress()    { m.press(pointer.ButtonPrimary) }
func (m *Mouse) OnLeftRelease()  { m.release(pointer.ButtonPrimary) }
func (m *Mouse) OnRightPress()   { m.press(pointer.ButtonSecondary) }
func (m *Mouse) OnRightRelease() { m.release(pointer.ButtonSecondary) }
func (m *Mouse) OnWheelPress()   { m.press(pointer.ButtonTertiary) }
func (m *Mouse) OnWheelRelease() { m.release(pointer.ButtonTertiary) }

// OnWheelDelta forwards one wheel message with its raw signed delta.
func (m *Mouse) OnWheelDelta(x, y, delta int) {
	m.events.push(MouseEvent{Type: pointer.Scroll, X: x, Y: y, Buttons: m.buttons, Delta: delta})
}

func (m *Mouse) press(b pointer.Buttons) {
	m.buttons |= b
	m.emit(pointer.Press)
}

func (m *Mouse) release(b pointer.Buttons) {
	m.buttons &^= b
	m.emit(pointer.Release)
}

func (m *Mouse) emit(typ pointer.Type) {
	m.events.push(MouseEvent{Type: typ, X: m.x, Y: m.y, Buttons: m.buttons})
}
