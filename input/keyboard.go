package input

import (
	"errors"
	"fmt"
	"unicode/utf16"
	"unicode/utf8"

	"gioui.org/io/key"
)

// NumKeys is the size of the virtual key code space.
const NumKeys = 256

// ErrInvalidKeyCode is matched by every error returned for a key code outside [0, NumKeys).
var ErrInvalidKeyCode = errors.New("invalid key code")

// KeyCodeError reports an out of range virtual key code.
type KeyCodeError struct {
	Code uint32
}

func (e *KeyCodeError) Error() string {
	return fmt.Sprintf("%v: %d is outside [0,%d]", ErrInvalidKeyCode, e.Code, NumKeys-1)
}

// Is makes the error comparable to ErrInvalidKeyCode.
func (e *KeyCodeError) Is(target error) bool {
	return target == ErrInvalidKeyCode
}

// KeyEvent is a single press or release of a virtual key.
type KeyEvent struct {
	State key.State
	Code  uint8
}

func (e KeyEvent) String() string {
	return fmt.Sprintf("%s 0x%02x", e.State, e.Code)
}

// Keyboard keeps the current state of every virtual key plus two bounded
// queues, one with key transitions and one with typed characters.
// It is written by the window procedure and read by the frame loop; both
// run on the window thread, so no locking is done.
type Keyboard struct {
	keyStates  [NumKeys]bool
	keyQueue   fifo[KeyEvent]
	charQueue  fifo[rune]
	autoRepeat bool
	// high surrogate waiting for its pair.
	surrogate rune
}

// NewKeyboard returns a keyboard in its reset state.
func NewKeyboard() *Keyboard {
	kbd := &Keyboard{}
	kbd.Reset()
	return kbd
}

// Reset releases every key and empties both queues.
func (k *Keyboard) Reset() {
	k.keyStates = [NumKeys]bool{}
	k.keyQueue.clear()
	k.charQueue.clear()
	k.surrogate = 0
}

func checkCode(code uint32) (uint8, error) {
	if code >= NumKeys {
		return 0, &KeyCodeError{Code: code}
	}
	return uint8(code), nil
}

// KeyIsPressedPop reports whether the key is down and then clears its state,
// so that one physical press is observed by exactly one caller.
func (k *Keyboard) KeyIsPressedPop(code uint32) (bool, error) {
	c, err := checkCode(code)
	if err != nil {
		return false, err
	}
	pressed := k.keyStates[c]
	k.keyStates[c] = false
	return pressed, nil
}

// KeyIsPressed reports whether the key is down without consuming it.
func (k *Keyboard) KeyIsPressed(code uint32) (bool, error) {
	c, err := checkCode(code)
	if err != nil {
		return false, err
	}
	return k.keyStates[c], nil
}

// ReadKey removes and returns the oldest key event.
func (k *Keyboard) ReadKey() (KeyEvent, bool) {
	return k.keyQueue.pop()
}

// KeyQueueEmpty reports whether there are no pending key events.
func (k *Keyboard) KeyQueueEmpty() bool { return k.keyQueue.len() == 0 }

// ReadChar removes and returns the oldest typed character.
func (k *Keyboard) ReadChar() (rune, bool) {
	return k.charQueue.pop()
}

// CharQueueEmpty reports whether there are no pending characters.
func (k *Keyboard) CharQueueEmpty() bool { return k.charQueue.len() == 0 }

// ClearKeyQueue drops all pending key events.
func (k *Keyboard) ClearKeyQueue() { k.keyQueue.clear() }

// ClearCharQueue drops all pending characters.
func (k *Keyboard) ClearCharQueue() { k.charQueue.clear() }

// ClearQueues drops all pending key events and characters.
func (k *Keyboard) ClearQueues() {
	k.ClearKeyQueue()
	k.ClearCharQueue()
}

// EnableAutoRepeat records that the system is generating repeated key downs.
func (k *Keyboard) EnableAutoRepeat() { k.autoRepeat = true }

// DisableAutoRepeat clears the auto repeat flag.
func (k *Keyboard) DisableAutoRepeat() { k.autoRepeat = false }

// AutoRepeatEnabled reports the auto repeat flag. It is informational only:
// repeated presses are always recorded.
func (k *Keyboard) AutoRepeatEnabled() bool { return k.autoRepeat }

// OnKeyPress marks the key as down and queues a press event.
func (k *Keyboard) OnKeyPress(code uint32) error {
	c, err := checkCode(code)
	if err != nil {
		return err
	}
	k.keyStates[c] = true
	k.keyQueue.push(KeyEvent{State: key.Press, Code: c})
	return nil
}

// OnKeyRelease marks the key as up and queues a release event.
func (k *Keyboard) OnKeyRelease(code uint32) error {
	c, err := checkCode(code)
	if err != nil {
		return err
	}
	k.keyStates[c] = false
	k.keyQueue.push(KeyEvent{State: key.Release, Code: c})
	return nil
}

// OnChar queues a character delivered as a UTF-16 code unit.
// Surrogate halves are joined; anything undecodable is queued as utf8.RuneError,
// including a high surrogate that is not followed by a low one.
func (k *Keyboard) OnChar(code uint32) {
	r := rune(code)
	high := utf16.IsSurrogate(r) && r < 0xDC00
	if k.surrogate != 0 && (high || !utf16.IsSurrogate(r)) {
		k.charQueue.push(utf8.RuneError)
		k.surrogate = 0
	}
	switch {
	case high:
		k.surrogate = r
		return
	case utf16.IsSurrogate(r):
		if k.surrogate == 0 {
			r = utf8.RuneError
		} else {
			r = utf16.DecodeRune(k.surrogate, r)
		}
	case !utf8.ValidRune(r):
		r = utf8.RuneError
	}
	k.surrogate = 0
	k.charQueue.push(r)
}
