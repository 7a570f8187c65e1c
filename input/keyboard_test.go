package input

import (
	"errors"
	"testing"
	"unicode/utf8"

	"gioui.org/io/key"
	"github.com/stretchr/testify/assert"
)

const vkReturn = 0x0d

func TestKeyboard_LastTransitionWins(t *testing.T) {
	assert := assert.New(t)
	kbd := NewKeyboard()

	seq := []bool{true, true, false, true, false, false, true}
	for _, press := range seq {
		if press {
			assert.NoError(kbd.OnKeyPress('A'))
		} else {
			assert.NoError(kbd.OnKeyRelease('A'))
		}
		pressed, err := kbd.KeyIsPressed('A')
		assert.NoError(err)
		assert.Equal(press, pressed)
	}
	pressed, _ := kbd.KeyIsPressed('B')
	assert.False(pressed)
}

func TestKeyboard_PopConsumesState(t *testing.T) {
	assert := assert.New(t)
	kbd := NewKeyboard()

	assert.NoError(kbd.OnKeyPress(vkReturn))
	pressed, err := kbd.KeyIsPressedPop(vkReturn)
	assert.NoError(err)
	assert.True(pressed)

	pressed, err = kbd.KeyIsPressed(vkReturn)
	assert.NoError(err)
	assert.False(pressed)

	pressed, _ = kbd.KeyIsPressedPop(vkReturn)
	assert.False(pressed)
}

func TestKeyboard_KeyQueueKeepsNewest(t *testing.T) {
	assert := assert.New(t)
	kbd := NewKeyboard()

	for code := uint32(0); code < 40; code++ {
		assert.NoError(kbd.OnKeyPress(code))
	}
	assert.Len(kbd.keyQueue.snapshot(), MaxQueueSize)

	for code := uint32(40 - MaxQueueSize); code < 40; code++ {
		ev, ok := kbd.ReadKey()
		assert.True(ok)
		assert.Equal(KeyEvent{State: key.Press, Code: uint8(code)}, ev)
	}
	_, ok := kbd.ReadKey()
	assert.False(ok)
	assert.True(kbd.KeyQueueEmpty())
}

func TestKeyboard_ReadCharIsFIFO(t *testing.T) {
	assert := assert.New(t)
	kbd := NewKeyboard()

	for _, r := range "abc" {
		kbd.OnChar(uint32(r))
	}
	for _, want := range "abc" {
		r, ok := kbd.ReadChar()
		assert.True(ok)
		assert.Equal(want, r)
	}
	_, ok := kbd.ReadChar()
	assert.False(ok)
}

func TestKeyboard_CharQueueKeepsFinalSixteen(t *testing.T) {
	assert := assert.New(t)
	kbd := NewKeyboard()

	input := []rune("abcdefghijklmnopqrst")
	assert.Len(input, 20)
	for _, r := range input {
		kbd.OnChar(uint32(r))
	}
	assert.Equal(input[4:], kbd.charQueue.snapshot())
}

func TestKeyboard_Surrogates(t *testing.T) {
	assert := assert.New(t)
	kbd := NewKeyboard()

	// U+1F600 as UTF-16.
	kbd.OnChar(0xD83D)
	assert.True(kbd.CharQueueEmpty())
	kbd.OnChar(0xDE00)
	r, ok := kbd.ReadChar()
	assert.True(ok)
	assert.Equal(rune(0x1F600), r)

	// Lone low surrogate.
	kbd.OnChar(0xDE00)
	r, _ = kbd.ReadChar()
	assert.Equal(utf8.RuneError, r)

	kbd.OnChar(0x110000)
	r, _ = kbd.ReadChar()
	assert.Equal(utf8.RuneError, r)
}

func TestKeyboard_UnpairedHighSurrogate(t *testing.T) {
	assert := assert.New(t)
	kbd := NewKeyboard()

	readAll := func() []rune {
		var rs []rune
		for {
			r, ok := kbd.ReadChar()
			if !ok {
				return rs
			}
			rs = append(rs, r)
		}
	}

	kbd.OnChar(0xD83D)
	kbd.OnChar('a')
	assert.Equal([]rune{utf8.RuneError, 'a'}, readAll())

	// A second high half replaces the first, which is reported.
	kbd.OnChar(0xD83D)
	kbd.OnChar(0xD83D)
	kbd.OnChar(0xDE00)
	assert.Equal([]rune{utf8.RuneError, 0x1F600}, readAll())
}

func TestKeyboard_InvalidKeyCode(t *testing.T) {
	assert := assert.New(t)
	kbd := NewKeyboard()

	err := kbd.OnKeyPress(NumKeys)
	assert.Error(err)
	assert.True(errors.Is(err, ErrInvalidKeyCode))

	var kerr *KeyCodeError
	assert.True(errors.As(err, &kerr))
	assert.Equal(uint32(NumKeys), kerr.Code)

	_, err = kbd.KeyIsPressed(1000)
	assert.ErrorIs(err, ErrInvalidKeyCode)
	_, err = kbd.KeyIsPressedPop(1 << 20)
	assert.ErrorIs(err, ErrInvalidKeyCode)
	assert.ErrorIs(kbd.OnKeyRelease(256), ErrInvalidKeyCode)

	assert.True(kbd.KeyQueueEmpty())
	assert.NoError(kbd.OnKeyPress(NumKeys - 1))
}

func TestKeyboard_AutoRepeatDoesNotSuppress(t *testing.T) {
	assert := assert.New(t)
	kbd := NewKeyboard()

	assert.NoError(kbd.OnKeyPress(vkReturn))
	kbd.EnableAutoRepeat()
	assert.NoError(kbd.OnKeyPress(vkReturn))

	assert.True(kbd.AutoRepeatEnabled())
	pressed, _ := kbd.KeyIsPressed(vkReturn)
	assert.True(pressed)
	assert.Len(kbd.keyQueue.snapshot(), 2)

	kbd.DisableAutoRepeat()
	assert.False(kbd.AutoRepeatEnabled())
}

func TestKeyboard_Reset(t *testing.T) {
	assert := assert.New(t)
	kbd := NewKeyboard()

	assert.NoError(kbd.OnKeyPress('W'))
	kbd.OnChar('w')
	kbd.OnChar(0xD83D)
	kbd.Reset()

	pressed, _ := kbd.KeyIsPressed('W')
	assert.False(pressed)
	assert.True(kbd.KeyQueueEmpty())
	assert.True(kbd.CharQueueEmpty())

	// The pending high surrogate is gone too.
	kbd.OnChar(0xDE00)
	r, _ := kbd.ReadChar()
	assert.Equal(utf8.RuneError, r)
}

func TestKeyboard_ClearQueues(t *testing.T) {
	assert := assert.New(t)
	kbd := NewKeyboard()

	assert.NoError(kbd.OnKeyPress('Q'))
	kbd.OnChar('q')
	kbd.ClearKeyQueue()
	assert.True(kbd.KeyQueueEmpty())
	assert.False(kbd.CharQueueEmpty())

	assert.NoError(kbd.OnKeyRelease('Q'))
	kbd.ClearQueues()
	assert.True(kbd.KeyQueueEmpty())
	assert.True(kbd.CharQueueEmpty())
}
