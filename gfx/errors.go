package gfx

import (
	"errors"
	"fmt"
	"path/filepath"
	"runtime"
)

// Kind classifies fatal graphics errors.
type Kind uint8

const (
	KindDeviceCreation Kind = iota + 1
	KindResourceCreation
	KindPresent
	KindDeviceRemoved
)

// Sentinels matched by errors.Is against an *Error of the same kind.
var (
	ErrDeviceCreation   = errors.New("device creation failed")
	ErrResourceCreation = errors.New("resource creation failed")
	ErrPresent          = errors.New("present failed")
	ErrDeviceRemoved    = errors.New("device removed")

	// ErrDiagnosticUnavailable is logged, not returned, when the debug
	// layer cannot be reached.
	ErrDiagnosticUnavailable = errors.New("diagnostics unavailable")
	// ErrUnbound is returned by frame operations issued before BindToWindow.
	ErrUnbound = errors.New("graphics not bound to a window")
)

func (k Kind) sentinel() error {
	switch k {
	case KindDeviceCreation:
		return ErrDeviceCreation
	case KindResourceCreation:
		return ErrResourceCreation
	case KindPresent:
		return ErrPresent
	case KindDeviceRemoved:
		return ErrDeviceRemoved
	}
	return nil
}

func (k Kind) String() string {
	if err := k.sentinel(); err != nil {
		return err.Error()
	}
	return fmt.Sprintf("Kind(%d)", uint8(k))
}

// Error is a fatal graphics error. It records the backend code and the
// source location that raised it.
type Error struct {
	Kind Kind
	Op   string
	Code HRESULT
	File string
	Line int
	Err  error
}

// newError wraps err, taking the code from an ErrorCode in its chain and the
// call site from the caller skip frames above newError.
func newError(kind Kind, op string, err error, skip int) *Error {
	e := &Error{Kind: kind, Op: op, Err: err}
	var code ErrorCode
	if errors.As(err, &code) {
		e.Code = code.Code
	}
	if _, file, line, ok := runtime.Caller(skip + 1); ok {
		e.File, e.Line = file, line
	}
	return e
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s: %v", e.Kind, e.Op, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches the sentinel of the error kind.
func (e *Error) Is(target error) bool {
	return target != nil && target == e.Kind.sentinel()
}

// Site returns the short file:line location of the failure.
func (e *Error) Site() string {
	if e.File == "" {
		return "unknown"
	}
	return fmt.Sprintf("%s:%d", filepath.Base(e.File), e.Line)
}

// ExitCode is the process exit code for the error: the backend code, or
// 1 when there is none.
func (e *Error) ExitCode() int {
	if e.Code == S_OK {
		return 1
	}
	return int(uint32(e.Code))
}
