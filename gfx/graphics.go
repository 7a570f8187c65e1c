// Package gfx drives a Direct3D 11 style device: it owns the device, the
// window bound resources and the fixed scene, and classifies backend
// failures into fatal error kinds.
package gfx

import (
	"errors"
	"image"
	"log"

	"github.com/esimov/dxhost/diag"
	"github.com/esimov/dxhost/utils"
)

// SyncInterval is the number of vertical blanks every Present waits for.
const SyncInterval = 1

// Options configures a Graphics.
type Options struct {
	// Debug enables the backend debug layer and its message queue.
	Debug bool
	// ShaderDir holds VertexShader.hlsl and PixelShader.hlsl.
	ShaderDir string
	// Logger receives non fatal warnings. Defaults to the standard logger.
	Logger *log.Logger
}

// Graphics owns the device and the optional window bound Resources.
type Graphics struct {
	driver  Driver
	opts    Options
	factory Factory
	device  Device
	ctx     Context
	res     *Resources
	hwnd    uintptr
	queue   diag.Queue
	diag    *diag.Log
	scene   *scene
}

// New creates the factory, the hardware device and its immediate context.
// There is no software fallback. In debug mode the diagnostic log is
// attached when the backend provides one.
func New(driver Driver, opts Options) (*Graphics, error) {
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	factory, device, ctx, err := driver.CreateDevice(opts.Debug)
	if err != nil {
		return nil, newError(KindDeviceCreation, "create device", err, 0)
	}
	g := &Graphics{
		driver:  driver,
		opts:    opts,
		factory: factory,
		device:  device,
		ctx:     ctx,
	}
	if opts.Debug {
		q, err := driver.InfoQueue()
		if err != nil {
			opts.Logger.Printf(utils.DecorateText("%v: %v", utils.StatusMessage), ErrDiagnosticUnavailable, err)
		} else {
			g.queue = q
			g.diag = diag.NewLog(q)
		}
	}
	return g, nil
}

// Diagnostics returns the debug message log, or nil when diagnostics are off.
func (g *Graphics) Diagnostics() *diag.Log { return g.diag }

// Resources returns the installed window resources, or nil when unbound.
func (g *Graphics) Resources() *Resources { return g.res }

// BindToWindow creates the swap chain for hwnd and the views and states
// rendering into it. A zero width or height sizes the swap chain to the
// client area.
//
// Binding another window builds a complete new unit that replaces the
// previous one only if every step succeeds; on failure the objects created
// so far are released and the previous unit stays installed. Binding the
// bound window again resizes its swap chain in place, since a window takes
// a single flip model swap chain. The old views must go first, so a failed
// rebind of the same window leaves g unbound.
func (g *Graphics) BindToWindow(hwnd uintptr, width, height int) error {
	b := &builder{}
	var sc SwapChain
	if g.res != nil && g.hwnd == hwnd {
		old := g.res
		g.res = nil
		old.releaseViews()
		sc = old.SwapChain
		b.made = append(b.made, sc)
		b.do("resize swap chain buffers", func() error {
			return sc.ResizeBuffers(width, height)
		})
	} else {
		sc = create(b, "create swap chain", func() (SwapChain, error) {
			return g.factory.CreateSwapChain(g.device, hwnd, SwapChainDesc{
				Width:       width,
				Height:      height,
				Format:      FormatR8G8B8A8UNorm,
				BufferCount: 2,
			})
		})
	}
	b.do("query swap chain size", func() (err error) {
		width, height, err = sc.Size()
		return err
	})
	back := create(b, "get back buffer", func() (Texture, error) {
		return sc.BackBuffer()
	})
	target := create(b, "create render target view", func() (RenderTargetView, error) {
		return g.device.CreateRenderTargetView(back)
	})
	depth := create(b, "create depth buffer", func() (Texture, error) {
		return g.device.CreateTexture2D(TextureDesc{
			Width:  width,
			Height: height,
			Format: FormatD24UNormS8UInt,
			Usage:  UsageDepthStencil,
		})
	})
	depthView := create(b, "create depth stencil view", func() (DepthStencilView, error) {
		return g.device.CreateDepthStencilView(depth)
	})
	depthState := create(b, "create depth stencil state", func() (DepthStencilState, error) {
		return g.device.CreateDepthStencilState(DepthStencilDesc{
			DepthEnable: true,
			WriteAll:    true,
			Func:        ComparisonLess,
		})
	})
	if b.err != nil {
		b.rollback()
		return b.err
	}
	// The view keeps its own reference to the back buffer.
	back.Release()

	old := g.res
	g.res = &Resources{
		SwapChain:   sc,
		Target:      target,
		DepthBuffer: depth,
		DepthView:   depthView,
		DepthState:  depthState,
		Width:       width,
		Height:      height,
		Context:     g.ctx,
	}
	g.hwnd = hwnd
	if old != nil {
		old.Release()
	}
	return nil
}

// ClearBuffer clears the render target to rgba and the depth buffer to 1
// with a zero stencil.
func (g *Graphics) ClearBuffer(rgba [4]float32) error {
	if g.res == nil {
		return ErrUnbound
	}
	g.ctx.ClearRenderTargetView(g.res.Target, rgba)
	g.ctx.ClearDepthStencilView(g.res.DepthView, 1, 0)
	return nil
}

// EndFrame presents the back buffer, waiting for one vertical blank.
// A removed or reset device yields a KindDeviceRemoved error carrying the
// removal reason; any other failure is KindPresent.
func (g *Graphics) EndFrame() error {
	if g.res == nil {
		return ErrUnbound
	}
	hr := g.res.SwapChain.Present(SyncInterval)
	switch {
	case hr == DXGI_ERROR_DEVICE_REMOVED || hr == DXGI_ERROR_DEVICE_RESET:
		reason := g.device.RemovedReason()
		if reason == S_OK {
			reason = hr
		}
		return newError(KindDeviceRemoved, "present", ErrorCode{Name: "GetDeviceRemovedReason", Code: reason}, 0)
	case hr.Failed():
		return newError(KindPresent, "present", ErrorCode{Name: "IDXGISwapChain::Present", Code: hr}, 0)
	}
	return nil
}

// Capture copies the current back buffer into an image. It must be called
// before EndFrame since presenting discards the buffer contents.
func (g *Graphics) Capture() (*image.NRGBA, error) {
	if g.res == nil {
		return nil, ErrUnbound
	}
	w, h := g.res.Width, g.res.Height
	back, err := g.res.SwapChain.BackBuffer()
	if err != nil {
		return nil, newError(KindResourceCreation, "get back buffer", err, 0)
	}
	defer back.Release()
	staging, err := g.device.CreateTexture2D(TextureDesc{
		Width:  w,
		Height: h,
		Format: FormatR8G8B8A8UNorm,
		Usage:  UsageStaging,
	})
	if err != nil {
		return nil, newError(KindResourceCreation, "create staging texture", err, 0)
	}
	defer staging.Release()

	g.ctx.CopyResource(staging, back)
	pix, stride, err := g.ctx.ReadTexture(staging, h)
	if err != nil {
		return nil, newError(KindResourceCreation, "map staging texture", err, 0)
	}
	if stride < w*4 || len(pix) < stride*(h-1)+w*4 {
		return nil, errors.New("staging texture smaller than the swap chain")
	}
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		row := img.Pix[y*img.Stride : y*img.Stride+w*4]
		copy(row, pix[y*stride:y*stride+w*4])
		// The swap chain alpha is undefined for presentation.
		for x := 3; x < len(row); x += 4 {
			row[x] = 0xff
		}
	}
	return img, nil
}

// Release frees every object owned by g.
func (g *Graphics) Release() {
	if g.scene != nil {
		g.scene.release()
		g.scene = nil
	}
	if g.res != nil {
		g.res.Release()
		g.res = nil
		g.hwnd = 0
	}
	if r, ok := g.queue.(Releaser); ok {
		r.Release()
	}
	g.queue, g.diag = nil, nil
	g.ctx.Release()
	g.device.Release()
	g.factory.Release()
}
