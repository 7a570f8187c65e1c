//go:build !windows

package dxhost

// NewWindow is only implemented on windows.
func NewWindow(cfg Config) (Window, error) {
	return nil, ErrUnsupported
}

type messageBox struct{}

// NewDialog returns a Dialog that shows nothing. The Reporter has already
// logged the text it would display.
func NewDialog() Dialog { return messageBox{} }

func (messageBox) Show(title, text string) {}
