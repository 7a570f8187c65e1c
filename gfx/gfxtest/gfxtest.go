// Package gfxtest provides an in-memory graphics backend for tests.
package gfxtest

import (
	"fmt"
	"sort"
	"strings"

	"github.com/esimov/dxhost/diag"
	"github.com/esimov/dxhost/gfx"
)

// Object is a fake backend object.
type Object struct {
	Name     string
	Desc     any
	Data     []byte
	released bool
	drv      *Driver
}

// Release marks the object as released. Releasing twice is a test failure
// and is recorded in Driver.DoubleReleased.
func (o *Object) Release() {
	if o.released {
		o.drv.DoubleReleased = append(o.drv.DoubleReleased, o.Name)
		return
	}
	o.released = true
}

// Released reports whether Release was called.
func (o *Object) Released() bool { return o.released }

// Queue is a fake diagnostic queue.
type Queue struct {
	Msgs []diag.Message
}

func (q *Queue) NumStoredMessages() uint64 { return uint64(len(q.Msgs)) }

func (q *Queue) Message(i uint64) (diag.Message, error) {
	if i >= uint64(len(q.Msgs)) {
		return diag.Message{}, fmt.Errorf("message %d out of range", i)
	}
	return q.Msgs[i], nil
}

// Add appends a message.
func (q *Queue) Add(id, category, severity int32, text string) {
	q.Msgs = append(q.Msgs, diag.Message{ID: id, Category: category, Severity: severity, Description: []byte(text + "\x00")})
}

// Driver is a fake gfx.Driver. Calls named in Fail return an ErrorCode with
// the mapped code instead of succeeding.
type Driver struct {
	Fail          map[string]gfx.HRESULT
	PresentResult gfx.HRESULT
	RemovedReason gfx.HRESULT
	// Size reported by swap chains created with a zero size.
	Width, Height int
	// Queue is returned by InfoQueue; nil makes diagnostics unavailable.
	Queue *Queue
	// Pixels is the content of the back buffer read through a staging texture,
	// tightly packed RGBA rows.
	Pixels []byte

	Objects        []*Object
	Calls          []string
	Presents       int
	DoubleReleased []string

	chains []*swapChain
}

// NewDriver returns a driver with a debug queue and an 800x600 client area.
func NewDriver() *Driver {
	return &Driver{
		Fail:   make(map[string]gfx.HRESULT),
		Width:  800,
		Height: 600,
		Queue:  &Queue{},
	}
}

func (d *Driver) fail(call string) error {
	if code, ok := d.Fail[call]; ok {
		return gfx.ErrorCode{Name: call, Code: code}
	}
	return nil
}

func (d *Driver) object(name string, desc any, data []byte) (*Object, error) {
	if err := d.fail(name); err != nil {
		return nil, err
	}
	o := &Object{Name: name, Desc: desc, Data: data, drv: d}
	d.Objects = append(d.Objects, o)
	return o, nil
}

// Live returns the sorted names of objects not yet released.
func (d *Driver) Live() []string {
	var names []string
	for _, o := range d.Objects {
		if !o.released {
			names = append(names, o.Name)
		}
	}
	sort.Strings(names)
	return names
}

// Created returns how many objects with the given name were created.
func (d *Driver) Created(name string) int {
	n := 0
	for _, o := range d.Objects {
		if o.Name == name {
			n++
		}
	}
	return n
}

// CallsWith returns the recorded context calls starting with prefix.
func (d *Driver) CallsWith(prefix string) []string {
	var calls []string
	for _, c := range d.Calls {
		if strings.HasPrefix(c, prefix) {
			calls = append(calls, c)
		}
	}
	return calls
}

func (d *Driver) CreateDevice(debug bool) (gfx.Factory, gfx.Device, gfx.Context, error) {
	if err := d.fail("CreateDevice"); err != nil {
		return nil, nil, nil, err
	}
	f, _ := d.object("Factory", debug, nil)
	dev, _ := d.object("Device", debug, nil)
	ctx, _ := d.object("Context", nil, nil)
	return &factory{f}, &device{dev}, &context{ctx}, nil
}

func (d *Driver) InfoQueue() (diag.Queue, error) {
	if d.Queue == nil {
		return nil, gfx.ErrorCode{Name: "DXGIGetDebugInterface1", Code: gfx.E_FAIL}
	}
	return d.Queue, nil
}

func (d *Driver) CompileShader(path, entry, target string) ([]byte, error) {
	if err := d.fail("CompileShader"); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return []byte(target + ":" + path), nil
}

type factory struct{ *Object }

// CreateSwapChain fails with E_ACCESSDENIED while hwnd has a live swap
// chain, as flip model swap chains do.
func (f *factory) CreateSwapChain(dev gfx.Device, hwnd uintptr, desc gfx.SwapChainDesc) (gfx.SwapChain, error) {
	for _, c := range f.drv.chains {
		if c.hwnd == hwnd && !c.released {
			return nil, gfx.ErrorCode{Name: "CreateSwapChainForHwnd", Code: gfx.E_ACCESSDENIED}
		}
	}
	o, err := f.drv.object("SwapChain", desc, nil)
	if err != nil {
		return nil, err
	}
	sc := &swapChain{Object: o, hwnd: hwnd}
	sc.w, sc.h = f.drv.size(desc.Width, desc.Height)
	f.drv.chains = append(f.drv.chains, sc)
	return sc, nil
}

func (d *Driver) size(w, h int) (int, int) {
	if w == 0 || h == 0 {
		return d.Width, d.Height
	}
	return w, h
}

type swapChain struct {
	*Object
	hwnd uintptr
	w, h int
}

// ResizeBuffers fails with DXGI_ERROR_INVALID_CALL while a render target
// view or back buffer is alive.
func (s *swapChain) ResizeBuffers(width, height int) error {
	if err := s.drv.fail("ResizeBuffers"); err != nil {
		return err
	}
	for _, o := range s.drv.Objects {
		if !o.released && (o.Name == "RenderTargetView" || o.Name == "BackBuffer") {
			return gfx.ErrorCode{Name: "IDXGISwapChain::ResizeBuffers", Code: gfx.DXGI_ERROR_INVALID_CALL}
		}
	}
	s.w, s.h = s.drv.size(width, height)
	s.drv.Calls = append(s.drv.Calls, fmt.Sprintf("ResizeBuffers %dx%d", s.w, s.h))
	return nil
}

func (s *swapChain) BackBuffer() (gfx.Texture, error) {
	return s.drv.object("BackBuffer", nil, nil)
}

func (s *swapChain) Size() (int, int, error) {
	if err := s.drv.fail("Size"); err != nil {
		return 0, 0, err
	}
	return s.w, s.h, nil
}

func (s *swapChain) Present(syncInterval int) gfx.HRESULT {
	s.drv.Presents++
	s.drv.Calls = append(s.drv.Calls, fmt.Sprintf("Present %d", syncInterval))
	return s.drv.PresentResult
}

type device struct{ *Object }

func (d *device) CreateRenderTargetView(tex gfx.Texture) (gfx.RenderTargetView, error) {
	return d.drv.object("RenderTargetView", tex, nil)
}

func (d *device) CreateTexture2D(desc gfx.TextureDesc) (gfx.Texture, error) {
	if desc.Usage == gfx.UsageStaging {
		return d.drv.object("StagingTexture", desc, nil)
	}
	return d.drv.object("DepthBuffer", desc, nil)
}

func (d *device) CreateDepthStencilView(tex gfx.Texture) (gfx.DepthStencilView, error) {
	return d.drv.object("DepthStencilView", tex, nil)
}

func (d *device) CreateDepthStencilState(desc gfx.DepthStencilDesc) (gfx.DepthStencilState, error) {
	return d.drv.object("DepthStencilState", desc, nil)
}

func (d *device) CreateBuffer(desc gfx.BufferDesc, data []byte) (gfx.Buffer, error) {
	return d.drv.object("Buffer", desc, data)
}

func (d *device) CreateVertexShader(code []byte) (gfx.VertexShader, error) {
	return d.drv.object("VertexShader", nil, code)
}

func (d *device) CreatePixelShader(code []byte) (gfx.PixelShader, error) {
	return d.drv.object("PixelShader", nil, code)
}

func (d *device) CreateInputLayout(elems []gfx.InputElement, vsCode []byte) (gfx.InputLayout, error) {
	return d.drv.object("InputLayout", elems, vsCode)
}

func (d *device) RemovedReason() gfx.HRESULT { return d.drv.RemovedReason }

type context struct{ *Object }

func (c *context) record(format string, args ...any) {
	c.drv.Calls = append(c.drv.Calls, fmt.Sprintf(format, args...))
}

func name(r gfx.Releaser) string {
	if o, ok := r.(*Object); ok {
		return o.Name
	}
	return fmt.Sprintf("%T", r)
}

func (c *context) ClearRenderTargetView(t gfx.RenderTargetView, rgba [4]float32) {
	c.record("ClearRenderTargetView %s %v", name(t), rgba)
}

func (c *context) ClearDepthStencilView(v gfx.DepthStencilView, depth float32, stencil uint8) {
	c.record("ClearDepthStencilView %s %v %d", name(v), depth, stencil)
}

func (c *context) OMSetRenderTargets(t gfx.RenderTargetView, d gfx.DepthStencilView) {
	c.record("OMSetRenderTargets %s %s", name(t), name(d))
}

func (c *context) OMSetDepthStencilState(s gfx.DepthStencilState, ref uint32) {
	c.record("OMSetDepthStencilState %s", name(s))
}

func (c *context) RSSetViewport(vp gfx.Viewport) {
	c.record("RSSetViewport %vx%v", vp.Width, vp.Height)
}

func (c *context) IASetVertexBuffer(b gfx.Buffer, stride uint32) {
	c.record("IASetVertexBuffer %d", stride)
}

func (c *context) IASetIndexBuffer(b gfx.Buffer, f gfx.Format) { c.record("IASetIndexBuffer %d", f) }
func (c *context) IASetInputLayout(l gfx.InputLayout) { c.record("IASetInputLayout") }
func (c *context) IASetPrimitiveTopology(t gfx.Topology) { c.record("IASetPrimitiveTopology %d", t) }
func (c *context) VSSetShader(s gfx.VertexShader) { c.record("VSSetShader") }
func (c *context) VSSetConstantBuffer(b gfx.Buffer) { c.record("VSSetConstantBuffer") }
func (c *context) PSSetShader(s gfx.PixelShader) { c.record("PSSetShader") }
func (c *context) PSSetConstantBuffer(b gfx.Buffer) { c.record("PSSetConstantBuffer") }

func (c *context) UpdateSubresource(b gfx.Buffer, data []byte) {
	if o, ok := b.(*Object); ok {
		o.Data = append(o.Data[:0], data...)
	}
	c.record("UpdateSubresource %d", len(data))
}

func (c *context) DrawIndexed(count uint32) { c.record("DrawIndexed %d", count) }

func (c *context) CopyResource(dst, src gfx.Texture) {
	c.record("CopyResource %s %s", name(dst), name(src))
}

func (c *context) ReadTexture(tex gfx.Texture, height int) ([]byte, int, error) {
	if err := c.drv.fail("Map"); err != nil {
		return nil, 0, err
	}
	if height == 0 {
		return nil, 0, nil
	}
	return c.drv.Pixels, len(c.drv.Pixels) / height, nil
}
