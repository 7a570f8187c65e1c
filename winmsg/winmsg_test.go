package winmsg

import (
	"errors"
	"testing"

	"gioui.org/io/pointer"
	"github.com/esimov/dxhost/input"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type platform struct {
	calls    []string
	quitCode int
	queue    *source
}

func (p *platform) SetCapture()     { p.calls = append(p.calls, "capture") }
func (p *platform) ReleaseCapture() { p.calls = append(p.calls, "release") }
func (p *platform) DestroyWindow() {
	p.calls = append(p.calls, "destroy")
	if p.queue != nil {
		p.queue.msgs = append(p.queue.msgs, Raw{Kind: WM_DESTROY})
	}
}
func (p *platform) PostQuitMessage(code int) {
	p.calls = append(p.calls, "quit")
	p.quitCode = code
	if p.queue != nil {
		p.queue.msgs = append(p.queue.msgs, Raw{Kind: WM_QUIT, WParam: uintptr(code)})
	}
}
func (p *platform) DefWindowProc(m Raw) uintptr {
	p.calls = append(p.calls, "default")
	return 42
}

// source feeds queued messages straight into a dispatcher.
type source struct {
	msgs []Raw
	d    *Dispatcher
}

func (s *source) Peek() (Raw, bool) {
	if len(s.msgs) == 0 {
		return Raw{}, false
	}
	m := s.msgs[0]
	s.msgs = s.msgs[1:]
	return m, true
}

func (s *source) Dispatch(m Raw) error {
	_, err := s.d.Handle(m)
	return err
}

func newDispatcher() (*Dispatcher, *platform) {
	p := &platform{}
	return &Dispatcher{
		Keyboard: input.NewKeyboard(),
		Mouse:    input.NewMouse(800, 600),
		Platform: p,
	}, p
}

func packCoords(x, y int16) uintptr {
	return uintptr(uint16(x)) | uintptr(uint16(y))<<16
}

func TestDecode_Coords(t *testing.T) {
	assert := assert.New(t)

	x, y := Coords(packCoords(-5, 300))
	assert.Equal(int16(-5), x)
	assert.Equal(int16(300), y)

	x, y = Coords(0xFFFF_8000)
	assert.Equal(int16(-32768), x)
	assert.Equal(int16(-1), y)
}

func TestDecode_WheelAndRepeat(t *testing.T) {
	assert := assert.New(t)

	assert.Equal(int16(120), WheelDelta(120<<16))
	assert.Equal(int16(-120), WheelDelta(uintptr(uint16(0xFF88))<<16|MK_LBUTTON))

	assert.True(RepeatBit(1 << 30))
	assert.False(RepeatBit(1<<31 | 1))
}

func TestDecode_Messages(t *testing.T) {
	assert := assert.New(t)

	assert.Equal(FocusLost{}, Decode(Raw{Kind: WM_KILLFOCUS}))
	assert.Equal(Close{}, Decode(Raw{Kind: WM_CLOSE}))
	assert.Equal(Destroy{}, Decode(Raw{Kind: WM_DESTROY}))
	assert.Equal(Char{Code: 'x'}, Decode(Raw{Kind: WM_CHAR, WParam: 'x'}))
	assert.Equal(KeyDown{Code: 13, Repeat: true}, Decode(Raw{Kind: WM_KEYDOWN, WParam: 13, LParam: 1 << 30}))
	assert.Equal(KeyDown{Code: 0x73, Sys: true}, Decode(Raw{Kind: WM_SYSKEYDOWN, WParam: 0x73}))
	assert.Equal(KeyUp{Code: 13}, Decode(Raw{Kind: WM_KEYUP, WParam: 13}))
	assert.Equal(
		MouseMove{X: 3, Y: -4, Buttons: pointer.ButtonPrimary | pointer.ButtonTertiary},
		Decode(Raw{Kind: WM_MOUSEMOVE, WParam: MK_LBUTTON | MK_MBUTTON, LParam: packCoords(3, -4)}),
	)
	assert.Equal(ButtonDown{Button: pointer.ButtonSecondary}, Decode(Raw{Kind: WM_RBUTTONDOWN}))
	assert.Equal(ButtonUp{Button: pointer.ButtonTertiary}, Decode(Raw{Kind: WM_MBUTTONUP}))
	assert.Equal(
		Wheel{X: 10, Y: 20, Delta: -240},
		Decode(Raw{Kind: WM_MOUSEWHEEL, WParam: uintptr(uint16(0xFF10)) << 16, LParam: packCoords(10, 20)}),
	)

	raw := Raw{Kind: 0x0005, WParam: 1, LParam: 2}
	assert.Equal(Unhandled{Raw: raw}, Decode(raw))
}

func TestDispatcher_AutoRepeat(t *testing.T) {
	assert := assert.New(t)
	d, _ := newDispatcher()

	_, err := d.Handle(Raw{Kind: WM_KEYDOWN, WParam: 13})
	assert.NoError(err)
	assert.False(d.Keyboard.AutoRepeatEnabled())

	_, err = d.Handle(Raw{Kind: WM_KEYDOWN, WParam: 13, LParam: 1 << 30})
	assert.NoError(err)
	assert.True(d.Keyboard.AutoRepeatEnabled())

	pressed, _ := d.Keyboard.KeyIsPressed(13)
	assert.True(pressed)

	_, err = d.Handle(Raw{Kind: WM_KEYUP, WParam: 13})
	assert.NoError(err)
	assert.False(d.Keyboard.AutoRepeatEnabled())
	pressed, _ = d.Keyboard.KeyIsPressed(13)
	assert.False(pressed)
}

func TestDispatcher_InvalidKeyCode(t *testing.T) {
	d, _ := newDispatcher()
	_, err := d.Handle(Raw{Kind: WM_KEYDOWN, WParam: 0x1FF})
	assert.ErrorIs(t, err, input.ErrInvalidKeyCode)
}

func TestDispatcher_SysKeysReachDefault(t *testing.T) {
	assert := assert.New(t)
	d, p := newDispatcher()

	res, err := d.Handle(Raw{Kind: WM_SYSKEYDOWN, WParam: 0x12})
	assert.NoError(err)
	assert.Equal(uintptr(42), res)
	pressed, _ := d.Keyboard.KeyIsPressed(0x12)
	assert.True(pressed)
	assert.Equal([]string{"default"}, p.calls)
}

func TestDispatcher_MouseCapture(t *testing.T) {
	assert := assert.New(t)
	d, p := newDispatcher()

	d.Handle(Raw{Kind: WM_MOUSEMOVE, LParam: packCoords(900, 10)})
	assert.False(d.Mouse.InWindow())
	assert.Equal([]string{"release"}, p.calls)

	d.Handle(Raw{Kind: WM_MOUSEMOVE, LParam: packCoords(400, 300)})
	assert.True(d.Mouse.InWindow())
	assert.Equal(400, d.Mouse.X())
	assert.Equal(300, d.Mouse.Y())
	assert.Equal([]string{"release", "capture"}, p.calls)

	d.Handle(Raw{Kind: WM_LBUTTONDOWN})
	d.Handle(Raw{Kind: WM_MOUSEMOVE, WParam: MK_LBUTTON, LParam: packCoords(-10, -10)})
	assert.True(d.Mouse.InWindow())
	assert.Equal(-10, d.Mouse.X())
	assert.Equal([]string{"release", "capture"}, p.calls)

	d.Handle(Raw{Kind: WM_LBUTTONUP})
	assert.False(d.Mouse.LeftIsPressed())
}

func TestDispatcher_WheelAndButtons(t *testing.T) {
	assert := assert.New(t)
	d, _ := newDispatcher()

	d.Handle(Raw{Kind: WM_MBUTTONDOWN})
	d.Handle(Raw{Kind: WM_RBUTTONDOWN})
	assert.True(d.Mouse.WheelIsPressed())
	assert.True(d.Mouse.RightIsPressed())

	d.Handle(Raw{Kind: WM_MOUSEWHEEL, WParam: 120 << 16, LParam: packCoords(7, 8)})
	var scroll input.MouseEvent
	for {
		ev, ok := d.Mouse.Read()
		if !ok {
			break
		}
		scroll = ev
	}
	assert.Equal(pointer.Scroll, scroll.Type)
	assert.Equal(120, scroll.Delta)
	assert.Equal(7, scroll.X)
}

func TestDispatcher_FocusLostResetsKeyboard(t *testing.T) {
	assert := assert.New(t)
	d, _ := newDispatcher()

	d.Handle(Raw{Kind: WM_KEYDOWN, WParam: 'A'})
	d.Handle(Raw{Kind: WM_CHAR, WParam: 'a'})
	d.Handle(Raw{Kind: WM_KILLFOCUS})

	pressed, _ := d.Keyboard.KeyIsPressed('A')
	assert.False(pressed)
	assert.True(d.Keyboard.CharQueueEmpty())
}

func TestDispatcher_UnhandledForwarded(t *testing.T) {
	d, p := newDispatcher()
	res, err := d.Handle(Raw{Kind: 0x0024})
	assert.NoError(t, err)
	assert.Equal(t, uintptr(42), res)
	assert.Equal(t, []string{"default"}, p.calls)
}

func TestPump_DrainUntilEmpty(t *testing.T) {
	assert := assert.New(t)
	d, _ := newDispatcher()
	src := &source{d: d, msgs: []Raw{
		{Kind: WM_CHAR, WParam: 'h'},
		{Kind: WM_CHAR, WParam: 'i'},
	}}
	pump := NewPump(src)

	code, quit, err := pump.Drain()
	assert.NoError(err)
	assert.False(quit)
	assert.Zero(code)
	assert.Empty(src.msgs)

	r, _ := d.Keyboard.ReadChar()
	assert.Equal('h', r)
}

func TestPump_QuitAbandonsRest(t *testing.T) {
	assert := assert.New(t)
	d, _ := newDispatcher()
	src := &source{d: d, msgs: []Raw{
		{Kind: WM_CHAR, WParam: 'a'},
		{Kind: WM_QUIT, WParam: 3},
		{Kind: WM_CHAR, WParam: 'b'},
	}}

	code, quit, err := NewPump(src).Drain()
	assert.NoError(err)
	assert.True(quit)
	assert.Equal(3, code)
	assert.Len(src.msgs, 1)

	r, _ := d.Keyboard.ReadChar()
	assert.Equal('a', r)
	assert.True(d.Keyboard.CharQueueEmpty())
}

func TestPump_CloseLeadsToQuit(t *testing.T) {
	assert := assert.New(t)
	d, p := newDispatcher()
	src := &source{d: d, msgs: []Raw{{Kind: WM_CLOSE}}}
	p.queue = src

	code, quit, err := NewPump(src).Drain()
	assert.NoError(err)
	assert.True(quit)
	assert.Zero(code)
	assert.Equal([]string{"destroy", "quit"}, p.calls)
}

func TestPump_DispatchError(t *testing.T) {
	d, _ := newDispatcher()
	src := &source{d: d, msgs: []Raw{{Kind: WM_KEYUP, WParam: 300}, {Kind: WM_CHAR, WParam: 'z'}}}

	_, quit, err := NewPump(src).Drain()
	require.Error(t, err)
	assert.False(t, quit)
	assert.True(t, errors.Is(err, input.ErrInvalidKeyCode))
	assert.Len(t, src.msgs, 1)
}
