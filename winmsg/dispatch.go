package winmsg

import (
	"gioui.org/io/pointer"

	"github.com/esimov/dxhost/input"
)

// Platform is the set of window operations triggered by message handling.
type Platform interface {
	SetCapture()
	ReleaseCapture()
	DestroyWindow()
	PostQuitMessage(code int)
	DefWindowProc(m Raw) uintptr
}

// Dispatcher applies decoded messages to the input state of one window.
type Dispatcher struct {
	Keyboard *input.Keyboard
	Mouse    *input.Mouse
	Platform Platform
}

// Handle processes a single message and returns the window procedure result.
// An error means the message carried data the input state cannot represent.
func (d *Dispatcher) Handle(m Raw) (uintptr, error) {
	switch msg := Decode(m).(type) {
	case FocusLost:
		// Keys released while unfocused never reach the window.
		d.Keyboard.Reset()
	case Close:
		d.Platform.DestroyWindow()
	case Destroy:
		d.Platform.PostQuitMessage(0)
	case Char:
		d.Keyboard.OnChar(msg.Code)
	case KeyDown:
		if msg.Repeat {
			d.Keyboard.EnableAutoRepeat()
		}
		if err := d.Keyboard.OnKeyPress(msg.Code); err != nil {
			return 0, err
		}
		if msg.Sys {
			// Let the system see Alt+F4 and friends.
			return d.Platform.DefWindowProc(m), nil
		}
	case KeyUp:
		d.Keyboard.DisableAutoRepeat()
		if err := d.Keyboard.OnKeyRelease(msg.Code); err != nil {
			return 0, err
		}
		if msg.Sys {
			return d.Platform.DefWindowProc(m), nil
		}
	case MouseMove:
		switch d.Mouse.Move(int(msg.X), int(msg.Y), msg.Buttons) {
		case input.CaptureAcquire:
			d.Platform.SetCapture()
		case input.CaptureRelease:
			d.Platform.ReleaseCapture()
		}
	case ButtonDown:
		switch msg.Button {
		case pointer.ButtonPrimary:
			d.Mouse.OnLeftPress()
		case pointer.ButtonSecondary:
			d.Mouse.OnRightPress()
		case pointer.ButtonTertiary:
			d.Mouse.OnWheelPress()
		}
	case ButtonUp:
		switch msg.Button {
		case pointer.ButtonPrimary:
			d.Mouse.OnLeftRelease()
		case pointer.ButtonSecondary:
			d.Mouse.OnRightRelease()
		case pointer.ButtonTertiary:
			d.Mouse.OnWheelRelease()
		}
	case Wheel:
		d.Mouse.OnWheelDelta(int(msg.X), int(msg.Y), int(msg.Delta))
	case Unhandled:
		return d.Platform.DefWindowProc(msg.Raw), nil
	}
	return 0, nil
}
