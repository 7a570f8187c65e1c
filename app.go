// Package dxhost hosts a Direct3D 11 renderer in a native window. The App
// drains the window messages once per frame, draws the scene from the
// keyboard and mouse state and presents it.
package dxhost

import (
	"fmt"
	"log"
	"path/filepath"
	"time"

	"github.com/esimov/dxhost/gfx"
	"github.com/esimov/dxhost/input"
	"github.com/esimov/dxhost/snapshot"
	"github.com/esimov/dxhost/utils"
	"github.com/esimov/dxhost/winmsg"
)

// FixedAngle is the rotation in radians of the cube drawn at the origin.
const FixedAngle = 70

// App runs the frame loop of one window.
type App struct {
	cfg    Config
	win    Window
	kbd    *input.Keyboard
	mouse  *input.Mouse
	pump   *winmsg.Pump
	gfx    *gfx.Graphics
	logger *log.Logger

	now   func() time.Time
	start time.Time
	last  time.Time
	text  []rune
	stats Stats
}

// New creates the graphics device and binds it to win. The returned App
// owns win and closes it on Close.
func New(cfg Config, win Window, driver gfx.Driver, logger *log.Logger) (*App, error) {
	if logger == nil {
		logger = log.Default()
	}
	g, err := gfx.New(driver, gfx.Options{
		Debug:     cfg.Debug,
		ShaderDir: cfg.ShaderDir,
		Logger:    logger,
	})
	if err != nil {
		return nil, err
	}
	w, h := win.ClientSize()
	if err := g.BindToWindow(win.Handle(), w, h); err != nil {
		err = withDiagnostics(err, g.Diagnostics())
		g.Release()
		return nil, err
	}
	return &App{
		cfg:    cfg,
		win:    win,
		kbd:    win.Keyboard(),
		mouse:  win.Mouse(),
		pump:   winmsg.NewPump(win.Source()),
		gfx:    g,
		logger: logger,
		now:    time.Now,
	}, nil
}

// Graphics returns the graphics device of the app.
func (a *App) Graphics() *gfx.Graphics { return a.gfx }

// Stats returns the frame statistics collected so far.
func (a *App) Stats() Stats { return a.stats }

// Run shows the window and renders frames until a quit message arrives.
// It returns the quit payload, or the first fatal error.
func (a *App) Run() (int, error) {
	a.win.Show()
	a.start = a.now()
	a.last = a.start
	for {
		code, quit, err := a.pump.Drain()
		if err != nil {
			return 0, err
		}
		if quit {
			a.finish()
			return code, nil
		}
		if err := a.RenderFrame(); err != nil {
			return 0, err
		}
	}
}

// RenderFrame draws and presents one frame.
func (a *App) RenderFrame() error {
	now := a.now()
	if a.start.IsZero() {
		a.start, a.last = now, now
	}
	if err := a.gfx.ClearBuffer(a.cfg.ClearColor); err != nil {
		return err
	}
	if err := a.gfx.Draw(FixedAngle, 0, 0); err != nil {
		return err
	}
	x, z := a.mouseNDC()
	if err := a.gfx.Draw(float32(now.Sub(a.start).Seconds()), x, z); err != nil {
		return err
	}

	if r, ok := a.kbd.ReadChar(); ok {
		a.text = append(a.text, r)
	}
	if enter, err := a.kbd.KeyIsPressedPop(winmsg.VK_RETURN); err != nil {
		return err
	} else if enter {
		a.logger.Printf("%q", string(a.text))
		a.text = a.text[:0]
	}
	// The back buffer is only readable before it is presented.
	if f12, err := a.kbd.KeyIsPressedPop(winmsg.VK_F12); err != nil {
		return err
	} else if f12 {
		a.snapshot(now)
	}

	if err := a.gfx.EndFrame(); err != nil {
		return err
	}
	if a.cfg.Debug {
		a.stats.add(now.Sub(a.last))
		a.last = now
		a.printDiagnostics()
	}
	return nil
}

// Text returns the characters typed since the last Enter.
func (a *App) Text() string { return string(a.text) }

// mouseNDC maps the mouse position to the [-1, 1] range of the client
// area, with z growing upwards.
func (a *App) mouseNDC() (x, z float32) {
	res := a.gfx.Resources()
	if res == nil || res.Width == 0 || res.Height == 0 {
		return 0, 0
	}
	pos := a.mouse.Pos()
	x = float32(pos.X)/(float32(res.Width)/2) - 1
	z = -(float32(pos.Y)/(float32(res.Height)/2) - 1)
	return x, z
}

func (a *App) snapshot(now time.Time) {
	img, err := a.gfx.Capture()
	if err != nil {
		a.logger.Printf(utils.DecorateText("Unable to capture the frame: %v", utils.ErrorMessage), err)
		return
	}
	path := filepath.Join(a.cfg.SnapshotDir, snapshot.Name(now, a.cfg.SnapshotFormat))
	if err := snapshot.Save(path, img, a.cfg.SnapshotScale); err != nil {
		a.logger.Printf(utils.DecorateText("Unable to save the snapshot: %v", utils.ErrorMessage), err)
		return
	}
	a.logger.Printf("The snapshot has been saved as: %s", utils.DecorateText(path, utils.SuccessMessage))
}

func (a *App) printDiagnostics() {
	d := a.gfx.Diagnostics()
	if d == nil {
		return
	}
	records, err := d.Messages()
	for _, r := range records {
		a.logger.Println(utils.DecorateText(r.String(), utils.StatusMessage))
	}
	if err != nil {
		a.logger.Println(utils.DecorateText(err.Error(), utils.ErrorMessage))
	}
	d.Mark()
}

func (a *App) finish() {
	if !a.cfg.Debug {
		return
	}
	a.stats.Elapsed = a.now().Sub(a.start)
	a.logger.Println(utils.DecorateText(a.stats.String(), utils.SuccessMessage))
}

// Close releases the graphics device and destroys the window.
func (a *App) Close() error {
	a.gfx.Release()
	return a.win.Close()
}

// Stats summarizes the frame rate of a run.
type Stats struct {
	Frames  int
	Low     float64
	High    float64
	total   float64
	Elapsed time.Duration
}

func (s *Stats) add(frame time.Duration) {
	if frame <= 0 {
		return
	}
	fps := 1 / frame.Seconds()
	if s.Frames == 0 || fps < s.Low {
		s.Low = fps
	}
	if fps > s.High {
		s.High = fps
	}
	s.total += fps
	s.Frames++
}

// Avg returns the mean frame rate.
func (s Stats) Avg() float64 {
	if s.Frames == 0 {
		return 0
	}
	return s.total / float64(s.Frames)
}

func (s Stats) String() string {
	return fmt.Sprintf("frames: %d, fps lowest: %.0f, highest: %.0f, avg: %.0f, running time: %s",
		s.Frames, s.Low, s.High, s.Avg(), utils.FormatTime(s.Elapsed))
}
