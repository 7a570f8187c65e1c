package winmsg

// Source is a non-blocking view of the thread message queue.
type Source interface {
	// Peek removes and returns the next pending message, if any.
	Peek() (Raw, bool)
	// Dispatch translates the message and delivers it to its window
	// procedure, returning the error raised while handling it.
	Dispatch(m Raw) error
}

// Pump drains a Source once per frame.
type Pump struct {
	src Source
}

// NewPump returns a pump reading from src.
func NewPump(src Source) *Pump {
	return &Pump{src: src}
}

// Drain handles every pending message in order. When a quit message is seen
// it returns its payload with quit set and leaves the remaining messages
// queued. Otherwise it returns once the queue is empty.
func (p *Pump) Drain() (code int, quit bool, err error) {
	for {
		m, ok := p.src.Peek()
		if !ok {
			return 0, false, nil
		}
		if m.Kind == WM_QUIT {
			return int(int32(m.WParam)), true, nil
		}
		if err := p.src.Dispatch(m); err != nil {
			return 0, false, err
		}
	}
}
