package dxhost

import (
	"bytes"
	"log"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/esimov/dxhost/gfx"
	"github.com/esimov/dxhost/gfx/gfxtest"
	"github.com/esimov/dxhost/input"
	"github.com/esimov/dxhost/winmsg"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeSource hands out one batch of messages per frame. Once the last batch
// was rendered it quits with code 99.
type fakeSource struct {
	frames  [][]winmsg.Raw
	queue   []winmsg.Raw
	disp    *winmsg.Dispatcher
	drained bool
}

func (s *fakeSource) Peek() (winmsg.Raw, bool) {
	if len(s.queue) > 0 {
		m := s.queue[0]
		s.queue = s.queue[1:]
		return m, true
	}
	if len(s.frames) == 0 {
		// One more frame sees the effect of the last batch.
		if !s.drained {
			s.drained = true
			return winmsg.Raw{}, false
		}
		return winmsg.Raw{Kind: winmsg.WM_QUIT, WParam: 99}, true
	}
	s.queue, s.frames = s.frames[0], s.frames[1:]
	return winmsg.Raw{}, false
}

func (s *fakeSource) Dispatch(m winmsg.Raw) error {
	_, err := s.disp.Handle(m)
	return err
}

type fakeWindow struct {
	width, height int
	kbd           *input.Keyboard
	mouse         *input.Mouse
	src           *fakeSource
	calls         []string
}

func newFakeWindow(width, height int, frames ...[]winmsg.Raw) *fakeWindow {
	w := &fakeWindow{
		width:  width,
		height: height,
		kbd:    input.NewKeyboard(),
		mouse:  input.NewMouse(width, height),
	}
	w.src = &fakeSource{frames: frames}
	w.src.disp = &winmsg.Dispatcher{Keyboard: w.kbd, Mouse: w.mouse, Platform: w}
	return w
}

func (w *fakeWindow) Handle() uintptr                 { return 1 }
func (w *fakeWindow) ClientSize() (width, height int) { return w.width, w.height }
func (w *fakeWindow) Keyboard() *input.Keyboard       { return w.kbd }
func (w *fakeWindow) Mouse() *input.Mouse             { return w.mouse }
func (w *fakeWindow) Source() winmsg.Source           { return w.src }
func (w *fakeWindow) Show()                           { w.calls = append(w.calls, "show") }

func (w *fakeWindow) Close() error {
	w.calls = append(w.calls, "close")
	return nil
}

func (w *fakeWindow) SetCapture()     {}
func (w *fakeWindow) ReleaseCapture() {}

func (w *fakeWindow) DestroyWindow() {
	w.src.queue = append(w.src.queue, winmsg.Raw{Kind: winmsg.WM_DESTROY})
}

func (w *fakeWindow) PostQuitMessage(code int) {
	w.src.queue = append(w.src.queue, winmsg.Raw{Kind: winmsg.WM_QUIT, WParam: uintptr(code)})
}

func (w *fakeWindow) DefWindowProc(m winmsg.Raw) uintptr { return 0 }

func keyDown(code uintptr) winmsg.Raw { return winmsg.Raw{Kind: winmsg.WM_KEYDOWN, WParam: code} }
func char(r rune) winmsg.Raw          { return winmsg.Raw{Kind: winmsg.WM_CHAR, WParam: uintptr(r)} }

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.Debug = false
	return cfg
}

func newTestApp(t *testing.T, cfg Config, drv *gfxtest.Driver, win *fakeWindow) (*App, *bytes.Buffer) {
	t.Helper()
	var buf bytes.Buffer
	app, err := New(cfg, win, drv, log.New(&buf, "", 0))
	require.NoError(t, err)
	return app, &buf
}

func TestApp_RunReturnsQuitCode(t *testing.T) {
	assert := assert.New(t)
	drv := gfxtest.NewDriver()
	win := newFakeWindow(800, 600, []winmsg.Raw{{Kind: winmsg.WM_CLOSE}})
	app, _ := newTestApp(t, testConfig(), drv, win)

	code, err := app.Run()
	assert.NoError(err)
	assert.Equal(0, code)
	assert.Equal(1, drv.Presents)
	assert.Equal([]string{"show"}, win.calls)

	win = newFakeWindow(800, 600, nil, []winmsg.Raw{{Kind: winmsg.WM_QUIT, WParam: 3}, char('x')})
	app, _ = newTestApp(t, testConfig(), gfxtest.NewDriver(), win)
	code, err = app.Run()
	assert.NoError(err)
	assert.Equal(3, code)
	// Messages behind the quit message stay queued.
	assert.Equal([]winmsg.Raw{char('x')}, win.src.queue)
}

func TestApp_FrameOrder(t *testing.T) {
	assert := assert.New(t)
	drv := gfxtest.NewDriver()
	app, _ := newTestApp(t, testConfig(), drv, newFakeWindow(800, 600))

	require.NoError(t, app.RenderFrame())
	assert.Equal([]string{"DrawIndexed 36", "DrawIndexed 36"}, drv.CallsWith("DrawIndexed"))
	assert.True(strings.HasPrefix(drv.Calls[0], "ClearRenderTargetView"))
	assert.Equal("Present 1", drv.Calls[len(drv.Calls)-1])
}

func TestApp_EnterLogsText(t *testing.T) {
	assert := assert.New(t)
	win := newFakeWindow(800, 600,
		[]winmsg.Raw{char('h')},
		[]winmsg.Raw{char('i')},
		[]winmsg.Raw{keyDown(winmsg.VK_RETURN)},
	)
	app, buf := newTestApp(t, testConfig(), gfxtest.NewDriver(), win)

	code, err := app.Run()
	assert.NoError(err)
	assert.Equal(99, code)
	assert.Equal("\"hi\"\n", buf.String())
	assert.Empty(app.Text())
}

func TestApp_OneCharacterPerFrame(t *testing.T) {
	assert := assert.New(t)
	win := newFakeWindow(800, 600)
	app, _ := newTestApp(t, testConfig(), gfxtest.NewDriver(), win)

	win.kbd.OnChar('a')
	win.kbd.OnChar('b')
	require.NoError(t, app.RenderFrame())
	assert.Equal("a", app.Text())
	require.NoError(t, app.RenderFrame())
	assert.Equal("ab", app.Text())
	require.NoError(t, app.RenderFrame())
	assert.Equal("ab", app.Text())
}

func TestApp_Snapshot(t *testing.T) {
	assert := assert.New(t)
	drv := gfxtest.NewDriver()
	drv.Pixels = make([]byte, 2*2*4)
	cfg := testConfig()
	cfg.SnapshotDir = t.TempDir()
	cfg.SnapshotFormat = ".bmp"

	app, buf := newTestApp(t, cfg, drv, newFakeWindow(2, 2, []winmsg.Raw{keyDown(winmsg.VK_F12)}))
	now := time.Date(2024, 3, 1, 12, 30, 15, 0, time.UTC)
	app.now = func() time.Time { return now }

	_, err := app.Run()
	require.NoError(t, err)

	path := filepath.Join(cfg.SnapshotDir, "frame-20240301-123015.000.bmp")
	_, err = os.Stat(path)
	assert.NoError(err)
	assert.Contains(buf.String(), path)

	// The copy happens before the frame is presented.
	copyAt, presentAt := -1, -1
	for i, c := range drv.Calls {
		if strings.HasPrefix(c, "CopyResource") {
			copyAt = i
		}
		if c == "Present 1" && copyAt >= 0 && presentAt < 0 {
			presentAt = i
		}
	}
	assert.NotEqual(-1, copyAt)
	assert.Greater(presentAt, copyAt)
}

func TestApp_SnapshotFailureIsNotFatal(t *testing.T) {
	assert := assert.New(t)
	drv := gfxtest.NewDriver()
	drv.Fail["Map"] = 0x887A0005
	cfg := testConfig()
	cfg.SnapshotDir = t.TempDir()

	app, buf := newTestApp(t, cfg, drv, newFakeWindow(800, 600, []winmsg.Raw{keyDown(winmsg.VK_F12)}))
	code, err := app.Run()
	assert.NoError(err)
	assert.Equal(99, code)
	assert.Contains(buf.String(), "Unable to capture the frame")

	entries, err := os.ReadDir(cfg.SnapshotDir)
	require.NoError(t, err)
	assert.Empty(entries)
}

func TestApp_InvalidKeyCodeIsFatal(t *testing.T) {
	assert := assert.New(t)
	drv := gfxtest.NewDriver()
	app, _ := newTestApp(t, testConfig(), drv, newFakeWindow(800, 600, []winmsg.Raw{keyDown(300)}))

	_, err := app.Run()
	assert.ErrorIs(err, input.ErrInvalidKeyCode)
	assert.True(strings.HasPrefix(Describe(err), "Input error\n"))
	assert.Equal(1, ExitCode(err))
	assert.Equal(1, drv.Presents)
}

func TestApp_DeviceRemovedIsFatal(t *testing.T) {
	assert := assert.New(t)
	drv := gfxtest.NewDriver()
	drv.PresentResult = gfx.DXGI_ERROR_DEVICE_REMOVED
	drv.RemovedReason = gfx.DXGI_ERROR_DEVICE_HUNG
	app, _ := newTestApp(t, testConfig(), drv, newFakeWindow(800, 600))

	code, err := app.Run()
	assert.Zero(code)
	assert.ErrorIs(err, gfx.ErrDeviceRemoved)
	assert.Equal(0x887A0006, ExitCode(err))

	require.NoError(t, app.Close())
	assert.Empty(drv.Live())
}

func TestApp_NewReleasesOnBindFailure(t *testing.T) {
	assert := assert.New(t)
	drv := gfxtest.NewDriver()
	drv.Fail["DepthStencilView"] = 0x80070057

	app, err := New(testConfig(), newFakeWindow(800, 600), drv, log.New(&bytes.Buffer{}, "", 0))
	assert.Nil(app)
	assert.ErrorIs(err, gfx.ErrResourceCreation)
	assert.Empty(drv.Live())
}

func TestApp_NewKeepsDiagnosticsOfFailedBind(t *testing.T) {
	assert := assert.New(t)
	drv := gfxtest.NewDriver()
	drv.Queue.Add(11, 5, 1, "depth stencil view format mismatch")
	drv.Fail["DepthStencilView"] = 0x80070057
	cfg := testConfig()
	cfg.Debug = true

	app, err := New(cfg, newFakeWindow(800, 600), drv, log.New(&bytes.Buffer{}, "", 0))
	assert.Nil(app)
	assert.ErrorIs(err, gfx.ErrResourceCreation)
	assert.Empty(drv.Live())

	var de *DiagnosedError
	require.ErrorAs(t, err, &de)
	assert.Len(de.Diagnostics, 1)
	assert.Contains(de.Diagnostics[0], "depth stencil view format mismatch")

	var buf bytes.Buffer
	r := &Reporter{Logger: log.New(&buf, "", 0)}
	assert.Equal(0x80070057, r.Report(err))
	assert.Contains(buf.String(), "Error in graphics.go:")
	assert.Contains(buf.String(), "depth stencil view format mismatch")
}

func TestApp_MouseNDC(t *testing.T) {
	assert := assert.New(t)
	win := newFakeWindow(800, 600)
	app, _ := newTestApp(t, testConfig(), gfxtest.NewDriver(), win)

	win.mouse.Move(400, 300, 0)
	x, z := app.mouseNDC()
	assert.InDelta(0, x, 1e-6)
	assert.InDelta(0, z, 1e-6)

	win.mouse.Move(0, 0, 0)
	x, z = app.mouseNDC()
	assert.InDelta(-1, x, 1e-6)
	assert.InDelta(1, z, 1e-6)

	win.mouse.Move(800, 600, 0)
	x, z = app.mouseNDC()
	assert.InDelta(1, x, 1e-6)
	assert.InDelta(-1, z, 1e-6)
}

func TestApp_DebugDiagnostics(t *testing.T) {
	assert := assert.New(t)
	drv := gfxtest.NewDriver()
	drv.Queue.Add(7, 5, 1, "bad state")
	drv.Queue.Add(7, 5, 1, "bad state")
	cfg := testConfig()
	cfg.Debug = true

	app, buf := newTestApp(t, cfg, drv, newFakeWindow(800, 600, nil))
	clock := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	app.now = func() time.Time {
		clock = clock.Add(10 * time.Millisecond)
		return clock
	}
	_, err := app.Run()
	require.NoError(t, err)

	out := buf.String()
	assert.Equal(1, strings.Count(out, "bad state"))
	assert.Contains(out, "[SEVERITY] ERROR")
	assert.Contains(out, "frames: 2, fps lowest: 100, highest: 100, avg: 100")
	assert.Equal(2, app.Stats().Frames)
	assert.Equal(30*time.Millisecond, app.Stats().Elapsed)
}

func TestStats(t *testing.T) {
	assert := assert.New(t)
	var s Stats
	assert.Zero(s.Avg())

	s.add(10 * time.Millisecond)
	s.add(20 * time.Millisecond)
	s.add(0)
	assert.Equal(2, s.Frames)
	assert.InDelta(50, s.Low, 1e-9)
	assert.InDelta(100, s.High, 1e-9)
	assert.InDelta(75, s.Avg(), 1e-9)

	s.Elapsed = 1500 * time.Millisecond
	assert.Contains(s.String(), "frames: 2, fps lowest: 50, highest: 100, avg: 75")
}
