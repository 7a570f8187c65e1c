package dxhost

import (
	"errors"
	"fmt"
	"path/filepath"
	"runtime"

	"github.com/esimov/dxhost/input"
	"github.com/esimov/dxhost/winmsg"
)

// ErrUnsupported is returned by NewWindow on platforms without a native
// window implementation.
var ErrUnsupported = errors.New("native windows are only available on windows")

// Window is the native window an App renders into. It owns the input
// state its window procedure updates.
type Window interface {
	Handle() uintptr
	ClientSize() (width, height int)
	Keyboard() *input.Keyboard
	Mouse() *input.Mouse
	// Source is the message queue of the thread that created the window.
	Source() winmsg.Source
	Show()
	Close() error
}

// WindowError reports a failed window system call.
type WindowError struct {
	Op   string
	Err  error
	File string
	Line int
}

func newWindowError(op string, err error) *WindowError {
	e := &WindowError{Op: op, Err: err}
	if _, file, line, ok := runtime.Caller(1); ok {
		e.File, e.Line = file, line
	}
	return e
}

func (e *WindowError) Error() string {
	return fmt.Sprintf("window: %s: %v", e.Op, e.Err)
}

func (e *WindowError) Unwrap() error { return e.Err }

// Site returns the short file:line location of the failure.
func (e *WindowError) Site() string {
	if e.File == "" {
		return "unknown"
	}
	return fmt.Sprintf("%s:%d", filepath.Base(e.File), e.Line)
}
