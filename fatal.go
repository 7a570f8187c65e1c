package dxhost

import (
	"errors"
	"fmt"
	"log"
	"syscall"

	"github.com/esimov/dxhost/diag"
	"github.com/esimov/dxhost/gfx"
	"github.com/esimov/dxhost/input"
	"github.com/esimov/dxhost/utils"
)

// FatalTitle is the caption of the fatal error dialog.
const FatalTitle = "Fatal error"

// Dialog shows a blocking message to the user.
type Dialog interface {
	Show(title, text string)
}

// DiagnosedError carries the diagnostic lines drained from a device that was
// released before the error reached a Reporter.
type DiagnosedError struct {
	Err         error
	Diagnostics []string
}

func (e *DiagnosedError) Error() string { return e.Err.Error() }
func (e *DiagnosedError) Unwrap() error { return e.Err }

// withDiagnostics attaches the pending lines of l to err. A nil log leaves
// err untouched.
func withDiagnostics(err error, l *diag.Log) error {
	if l == nil {
		return err
	}
	lines, derr := l.Strings()
	if derr != nil {
		lines = append(lines, derr.Error())
	}
	return &DiagnosedError{Err: err, Diagnostics: lines}
}

// Reporter turns a fatal error into user facing output and an exit code.
// It never exits the process itself.
type Reporter struct {
	Logger *log.Logger
	Dialog Dialog
	// Diagnostics, when set, is drained after the error is shown.
	Diagnostics *diag.Log
}

// Report logs err, shows it in the dialog, prints the diagnostics carried
// by err and those pending in r.Diagnostics, and returns the exit code for err. A nil error reports nothing and
// returns 0.
func (r *Reporter) Report(err error) int {
	if err == nil {
		return 0
	}
	logger := r.Logger
	if logger == nil {
		logger = log.Default()
	}
	text := Describe(err)
	logger.Println(utils.DecorateText(text, utils.ErrorMessage))
	if r.Dialog != nil {
		r.Dialog.Show(FatalTitle, text)
	}
	var de *DiagnosedError
	if errors.As(err, &de) {
		for _, l := range de.Diagnostics {
			logger.Println(utils.DecorateText(l, utils.StatusMessage))
		}
	}
	if r.Diagnostics != nil {
		lines, derr := r.Diagnostics.Strings()
		for _, l := range lines {
			logger.Println(utils.DecorateText(l, utils.StatusMessage))
		}
		if derr != nil {
			logger.Println(utils.DecorateText(derr.Error(), utils.ErrorMessage))
		}
	}
	return ExitCode(err)
}

// Describe formats err the way it is shown to the user. Graphics errors
// start with the source location that raised them.
func Describe(err error) string {
	var (
		gerr *gfx.Error
		werr *WindowError
	)
	switch {
	case errors.As(err, &gerr):
		s := fmt.Sprintf("Error in %s\n%v", gerr.Site(), err)
		if gerr.Code != gfx.S_OK {
			s += fmt.Sprintf("\n[Error code] %#x", uint32(gerr.Code))
		}
		return s
	case errors.As(err, &werr):
		return fmt.Sprintf("Error in %s\n%v", werr.Site(), err)
	case errors.Is(err, input.ErrInvalidKeyCode):
		return fmt.Sprintf("Input error\n%v", err)
	}
	return fmt.Sprintf("Error\n%v", err)
}

// ExitCode returns the process exit code for err: the platform code it
// carries, or 1.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	var gerr *gfx.Error
	if errors.As(err, &gerr) {
		return gerr.ExitCode()
	}
	var errno syscall.Errno
	if errors.As(err, &errno) && errno != 0 {
		return int(errno)
	}
	return 1
}
