//go:build windows

package dxhost

import (
	"errors"
	"sync"
	"unsafe"

	"golang.org/x/sys/windows"

	"github.com/esimov/dxhost/input"
	"github.com/esimov/dxhost/winmsg"
)

type wndClassEx struct {
	CbSize        uint32
	Style         uint32
	LpfnWndProc   uintptr
	CnClsExtra    int32
	CbWndExtra    int32
	HInstance     windows.Handle
	HIcon         windows.Handle
	HCursor       windows.Handle
	HbrBackground windows.Handle
	LpszMenuName  *uint16
	LpszClassName *uint16
	HIconSm       windows.Handle
}

type point struct {
	X, Y int32
}

type msg struct {
	Hwnd     windows.HWND
	Message  uint32
	WParam   uintptr
	LParam   uintptr
	Time     uint32
	Pt       point
	LPrivate uint32
}

type rect struct {
	Left, Top, Right, Bottom int32
}

const (
	_CS_OWNDC = 0x0020

	_WS_CAPTION     = 0x00C00000
	_WS_MINIMIZEBOX = 0x00020000
	_WS_SYSMENU     = 0x00080000

	_SW_SHOWDEFAULT = 10
	_PM_REMOVE      = 0x0001
	_IDC_ARROW      = 32512

	_MB_OK        = 0x00000000
	_MB_ICONERROR = 0x00000010

	_WM_NCDESTROY = 0x0082

	windowStyle = _WS_CAPTION | _WS_MINIMIZEBOX | _WS_SYSMENU
	windowX     = 200
	windowY     = 200
	className   = "dxhost window"
)

var (
	user32            = windows.NewLazySystemDLL("user32.dll")
	_AdjustWindowRect = user32.NewProc("AdjustWindowRect")
	_CreateWindowEx   = user32.NewProc("CreateWindowExW")
	_DefWindowProc    = user32.NewProc("DefWindowProcW")
	_DestroyWindow    = user32.NewProc("DestroyWindow")
	_DispatchMessage  = user32.NewProc("DispatchMessageW")
	_GetClientRect    = user32.NewProc("GetClientRect")
	_LoadCursor       = user32.NewProc("LoadCursorW")
	_MessageBox       = user32.NewProc("MessageBoxW")
	_PeekMessage      = user32.NewProc("PeekMessageW")
	_PostQuitMessage  = user32.NewProc("PostQuitMessage")
	_RegisterClassExW = user32.NewProc("RegisterClassExW")
	_ReleaseCapture   = user32.NewProc("ReleaseCapture")
	_SetCapture       = user32.NewProc("SetCapture")
	_ShowWindow       = user32.NewProc("ShowWindow")
	_TranslateMessage = user32.NewProc("TranslateMessage")
	_UnregisterClass  = user32.NewProc("UnregisterClassW")

	kernel32          = windows.NewLazySystemDLL("kernel32.dll")
	_GetModuleHandleW = kernel32.NewProc("GetModuleHandleW")
)

// winMap maps window handles to the windows created by NewWindow.
var winMap sync.Map

var errUnknown = errors.New("unknown error")

type nativeWindow struct {
	hwnd      windows.HWND
	instance  windows.Handle
	class     uint16
	width     int
	height    int
	destroyed bool

	kbd   *input.Keyboard
	mouse *input.Mouse
	disp  *winmsg.Dispatcher
	// First error raised by the window procedure while dispatching the
	// current message.
	err error
}

var (
	_ Window          = (*nativeWindow)(nil)
	_ winmsg.Platform = (*nativeWindow)(nil)
	_ winmsg.Source   = (*nativeWindow)(nil)
)

// callErr returns the error of a failed system call, which may report a
// zero errno.
func callErr(err error) error {
	if errno, ok := err.(windows.Errno); ok && errno == 0 {
		return errUnknown
	}
	return err
}

// NewWindow registers a window class and creates a fixed size window whose
// client area is cfg.Width by cfg.Height pixels. The window is created on
// the calling thread, which must keep running its message loop.
func NewWindow(cfg Config) (Window, error) {
	inst, _, err := _GetModuleHandleW.Call(0)
	if inst == 0 {
		return nil, newWindowError("GetModuleHandle", callErr(err))
	}
	cursor, _, err := _LoadCursor.Call(0, _IDC_ARROW)
	if cursor == 0 {
		return nil, newWindowError("LoadCursor", callErr(err))
	}
	name, err := windows.UTF16PtrFromString(className)
	if err != nil {
		return nil, newWindowError("RegisterClassEx", err)
	}
	wcls := wndClassEx{
		CbSize:        uint32(unsafe.Sizeof(wndClassEx{})),
		Style:         _CS_OWNDC,
		LpfnWndProc:   windows.NewCallback(windowProc),
		HInstance:     windows.Handle(inst),
		HCursor:       windows.Handle(cursor),
		LpszClassName: name,
	}
	cls, _, err := _RegisterClassExW.Call(uintptr(unsafe.Pointer(&wcls)))
	if cls == 0 {
		return nil, newWindowError("RegisterClassEx", callErr(err))
	}
	w := &nativeWindow{
		instance: windows.Handle(inst),
		class:    uint16(cls),
		width:    cfg.Width,
		height:   cfg.Height,
		kbd:      input.NewKeyboard(),
		mouse:    input.NewMouse(cfg.Width, cfg.Height),
	}
	w.disp = &winmsg.Dispatcher{Keyboard: w.kbd, Mouse: w.mouse, Platform: w}

	// Grow the outer rectangle so the client area has the requested size.
	r := rect{Right: int32(cfg.Width), Bottom: int32(cfg.Height)}
	if ok, _, err := _AdjustWindowRect.Call(uintptr(unsafe.Pointer(&r)), windowStyle, 0); ok == 0 {
		w.unregister()
		return nil, newWindowError("AdjustWindowRect", callErr(err))
	}
	title, err := windows.UTF16PtrFromString(cfg.Title)
	if err != nil {
		w.unregister()
		return nil, newWindowError("CreateWindowEx", err)
	}
	hwnd, _, err := _CreateWindowEx.Call(
		0,
		cls,
		uintptr(unsafe.Pointer(title)),
		windowStyle,
		windowX, windowY,
		uintptr(r.Right-r.Left), uintptr(r.Bottom-r.Top),
		0,
		0,
		inst,
		0)
	if hwnd == 0 {
		w.unregister()
		return nil, newWindowError("CreateWindowEx", callErr(err))
	}
	w.hwnd = windows.HWND(hwnd)
	winMap.Store(w.hwnd, w)
	return w, nil
}

func windowProc(hwnd windows.HWND, kind uint32, wParam, lParam uintptr) uintptr {
	win, exists := winMap.Load(hwnd)
	if !exists {
		r, _, _ := _DefWindowProc.Call(uintptr(hwnd), uintptr(kind), wParam, lParam)
		return r
	}
	w := win.(*nativeWindow)
	if kind == _WM_NCDESTROY {
		winMap.Delete(hwnd)
		w.destroyed = true
	}
	r, err := w.disp.Handle(winmsg.Raw{HWND: uintptr(hwnd), Kind: kind, WParam: wParam, LParam: lParam})
	if err != nil && w.err == nil {
		w.err = err
	}
	return r
}

func (w *nativeWindow) Handle() uintptr { return uintptr(w.hwnd) }

func (w *nativeWindow) ClientSize() (width, height int) {
	var r rect
	if ok, _, _ := _GetClientRect.Call(uintptr(w.hwnd), uintptr(unsafe.Pointer(&r))); ok == 0 {
		return w.width, w.height
	}
	return int(r.Right - r.Left), int(r.Bottom - r.Top)
}

func (w *nativeWindow) Keyboard() *input.Keyboard { return w.kbd }
func (w *nativeWindow) Mouse() *input.Mouse       { return w.mouse }
func (w *nativeWindow) Source() winmsg.Source     { return w }

func (w *nativeWindow) Show() {
	_ShowWindow.Call(uintptr(w.hwnd), _SW_SHOWDEFAULT)
}

// Peek reads the message queue of the calling thread, so quit messages
// posted without a window are seen too.
func (w *nativeWindow) Peek() (winmsg.Raw, bool) {
	var m msg
	r, _, _ := _PeekMessage.Call(uintptr(unsafe.Pointer(&m)), 0, 0, 0, _PM_REMOVE)
	if r == 0 {
		return winmsg.Raw{}, false
	}
	return winmsg.Raw{HWND: uintptr(m.Hwnd), Kind: m.Message, WParam: m.WParam, LParam: m.LParam}, true
}

func (w *nativeWindow) Dispatch(m winmsg.Raw) error {
	nm := msg{Hwnd: windows.HWND(m.HWND), Message: m.Kind, WParam: m.WParam, LParam: m.LParam}
	_TranslateMessage.Call(uintptr(unsafe.Pointer(&nm)))
	_DispatchMessage.Call(uintptr(unsafe.Pointer(&nm)))
	err := w.err
	w.err = nil
	return err
}

func (w *nativeWindow) SetCapture() {
	_SetCapture.Call(uintptr(w.hwnd))
}

func (w *nativeWindow) ReleaseCapture() {
	_ReleaseCapture.Call()
}

func (w *nativeWindow) DestroyWindow() {
	_DestroyWindow.Call(uintptr(w.hwnd))
}

func (w *nativeWindow) PostQuitMessage(code int) {
	_PostQuitMessage.Call(uintptr(code))
}

func (w *nativeWindow) DefWindowProc(m winmsg.Raw) uintptr {
	r, _, _ := _DefWindowProc.Call(m.HWND, uintptr(m.Kind), m.WParam, m.LParam)
	return r
}

func (w *nativeWindow) unregister() error {
	if ok, _, err := _UnregisterClass.Call(uintptr(w.class), uintptr(w.instance)); ok == 0 {
		return newWindowError("UnregisterClass", callErr(err))
	}
	return nil
}

// Close destroys the window if it is still alive and unregisters its class.
func (w *nativeWindow) Close() error {
	if !w.destroyed {
		if ok, _, err := _DestroyWindow.Call(uintptr(w.hwnd)); ok == 0 {
			return newWindowError("DestroyWindow", callErr(err))
		}
	}
	return w.unregister()
}

type messageBox struct{}

// NewDialog returns a Dialog backed by a modal message box.
func NewDialog() Dialog { return messageBox{} }

func (messageBox) Show(title, text string) {
	t, err := windows.UTF16PtrFromString(title)
	if err != nil {
		return
	}
	s, err := windows.UTF16PtrFromString(text)
	if err != nil {
		return
	}
	_MessageBox.Call(0, uintptr(unsafe.Pointer(s)), uintptr(unsafe.Pointer(t)), _MB_OK|_MB_ICONERROR)
}

