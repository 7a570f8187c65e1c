// Package winmsg decodes window messages into typed values, dispatches them
// to the input state and drains the message queue once per frame.
package winmsg

import (
	"fmt"

	"gioui.org/io/pointer"
)

// Message kinds handled by the dispatcher.
const (
	WM_DESTROY     = 0x0002
	WM_KILLFOCUS   = 0x0008
	WM_CLOSE       = 0x0010
	WM_QUIT        = 0x0012
	WM_KEYDOWN     = 0x0100
	WM_KEYUP       = 0x0101
	WM_CHAR        = 0x0102
	WM_SYSKEYDOWN  = 0x0104
	WM_SYSKEYUP    = 0x0105
	WM_MOUSEMOVE   = 0x0200
	WM_LBUTTONDOWN = 0x0201
	WM_LBUTTONUP   = 0x0202
	WM_RBUTTONDOWN = 0x0204
	WM_RBUTTONUP   = 0x0205
	WM_MBUTTONDOWN = 0x0207
	WM_MBUTTONUP   = 0x0208
	WM_MOUSEWHEEL  = 0x020A
)

// Button state flags carried in the wparam of mouse messages.
const (
	MK_LBUTTON = 0x0001
	MK_RBUTTON = 0x0002
	MK_MBUTTON = 0x0010
)

// Virtual key codes.
const (
	VK_RETURN = 0x0D
	VK_ESCAPE = 0x1B
	VK_F12    = 0x7B
)

// Raw is an undecoded window message.
type Raw struct {
	HWND   uintptr
	Kind   uint32
	WParam uintptr
	LParam uintptr
}

func (r Raw) String() string {
	return fmt.Sprintf("msg 0x%04x wparam 0x%x lparam 0x%x", r.Kind, r.WParam, r.LParam)
}

// Message is a decoded window message. The concrete types below are the
// only implementations.
type Message interface {
	isMessage()
}

type (
	// FocusLost is sent when the window loses keyboard focus.
	FocusLost struct{}
	// Close is a request to close the window.
	Close struct{}
	// Destroy is sent once the window is being destroyed.
	Destroy struct{}
	// Char carries a UTF-16 code unit of typed text.
	Char struct {
		Code uint32
	}
	// KeyDown is a virtual key press. Repeat is set for auto repeated
	// presses and Sys for system keys (Alt combinations, F10).
	KeyDown struct {
		Code   uint32
		Repeat bool
		Sys    bool
	}
	// KeyUp is a virtual key release.
	KeyUp struct {
		Code uint32
		Sys  bool
	}
	// MouseMove carries client coordinates and the buttons held.
	MouseMove struct {
		X, Y    int16
		Buttons pointer.Buttons
	}
	// ButtonDown is a mouse button press.
	ButtonDown struct {
		Button pointer.Buttons
	}
	// ButtonUp is a mouse button release.
	ButtonUp struct {
		Button pointer.Buttons
	}
	// Wheel is a vertical wheel rotation at screen coordinates.
	Wheel struct {
		X, Y  int16
		Delta int16
	}
	// Unhandled is any message left to the default window procedure.
	Unhandled struct {
		Raw Raw
	}
)

func (FocusLost) isMessage()  {}
func (Close) isMessage()      {}
func (Destroy) isMessage()    {}
func (Char) isMessage()       {}
func (KeyDown) isMessage()    {}
func (KeyUp) isMessage()      {}
func (MouseMove) isMessage()  {}
func (ButtonDown) isMessage() {}
func (ButtonUp) isMessage()   {}
func (Wheel) isMessage()      {}
func (Unhandled) isMessage()  {}

// Coords unpacks the signed x and y coordinates packed in the low and high
// words of a message parameter.
func Coords(lParam uintptr) (x, y int16) {
	return int16(uint16(lParam & 0xffff)), int16(uint16((lParam >> 16) & 0xffff))
}

// WheelDelta returns the signed wheel rotation stored in the high word of wParam.
func WheelDelta(wParam uintptr) int16 {
	return int16(uint16((wParam >> 16) & 0xffff))
}

// RepeatBit reports whether the key message is an auto repeated press,
// i.e. the key was already down before the message was sent.
func RepeatBit(lParam uintptr) bool {
	return (lParam>>30)&1 == 1
}

// ButtonsFromWParam converts the MK_ flags of a mouse message.
func ButtonsFromWParam(wParam uintptr) pointer.Buttons {
	var btns pointer.Buttons
	if wParam&MK_LBUTTON != 0 {
		btns |= pointer.ButtonPrimary
	}
	if wParam&MK_RBUTTON != 0 {
		btns |= pointer.ButtonSecondary
	}
	if wParam&MK_MBUTTON != 0 {
		btns |= pointer.ButtonTertiary
	}
	return btns
}

// Decode turns a raw message into its typed form. It has no side effects.
func Decode(m Raw) Message {
	switch m.Kind {
	case WM_KILLFOCUS:
		return FocusLost{}
	case WM_CLOSE:
		return Close{}
	case WM_DESTROY:
		return Destroy{}
	case WM_CHAR:
		return Char{Code: uint32(m.WParam)}
	case WM_KEYDOWN, WM_SYSKEYDOWN:
		return KeyDown{
			Code:   uint32(m.WParam),
			Repeat: RepeatBit(m.LParam),
			Sys:    m.Kind == WM_SYSKEYDOWN,
		}
	case WM_KEYUP, WM_SYSKEYUP:
		return KeyUp{Code: uint32(m.WParam), Sys: m.Kind == WM_SYSKEYUP}
	case WM_MOUSEMOVE:
		x, y := Coords(m.LParam)
		return MouseMove{X: x, Y: y, Buttons: ButtonsFromWParam(m.WParam)}
	case WM_LBUTTONDOWN:
		return ButtonDown{Button: pointer.ButtonPrimary}
	case WM_LBUTTONUP:
		return ButtonUp{Button: pointer.ButtonPrimary}
	case WM_RBUTTONDOWN:
		return ButtonDown{Button: pointer.ButtonSecondary}
	case WM_RBUTTONUP:
		return ButtonUp{Button: pointer.ButtonSecondary}
	case WM_MBUTTONDOWN:
		return ButtonDown{Button: pointer.ButtonTertiary}
	case WM_MBUTTONUP:
		return ButtonUp{Button: pointer.ButtonTertiary}
	case WM_MOUSEWHEEL:
		x, y := Coords(m.LParam)
		return Wheel{X: x, Y: y, Delta: WheelDelta(m.WParam)}
	}
	return Unhandled{Raw: m}
}
