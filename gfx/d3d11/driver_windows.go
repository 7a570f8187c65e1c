package d3d11

import (
	"errors"
	"fmt"
	"unsafe"

	"github.com/esimov/dxhost/diag"
	"github.com/esimov/dxhost/gfx"
	"golang.org/x/sys/windows"
)

var errForeignObject = errors.New("d3d11: object not created by this driver")

var _ gfx.Driver = (*Driver)(nil)

// Driver is the Direct3D 11 backend.
type Driver struct {
	// ShaderFlags are passed to D3DCompileFromFile.
	ShaderFlags uint32
}

// NewDriver loads the system libraries the backend depends on.
func NewDriver() (*Driver, error) {
	for _, dll := range []*windows.LazyDLL{d3d11, dxgi, d3dcompiler} {
		if err := dll.Load(); err != nil {
			return nil, fmt.Errorf("d3d11: %w", err)
		}
	}
	return &Driver{ShaderFlags: D3DCOMPILE_DEBUG | D3DCOMPILE_SKIP_OPTIMIZATION}, nil
}

// As lets errors.As extract a gfx.ErrorCode from binding errors.
func (e ErrorCode) As(target any) bool {
	if t, ok := target.(*gfx.ErrorCode); ok {
		*t = gfx.ErrorCode{Name: e.Name, Code: gfx.HRESULT(e.Code)}
		return true
	}
	return false
}

func (d *Driver) CreateDevice(debug bool) (gfx.Factory, gfx.Device, gfx.Context, error) {
	var factoryFlags, deviceFlags uint32
	if debug {
		factoryFlags = DXGI_CREATE_FACTORY_DEBUG
		deviceFlags = CREATE_DEVICE_DEBUG
	}
	f, err := CreateDXGIFactory2(factoryFlags)
	if err != nil {
		return nil, nil, nil, err
	}
	dev, ctx, _, err := CreateDevice(DRIVER_TYPE_HARDWARE, deviceFlags)
	if err != nil {
		IUnknownRelease(unsafe.Pointer(f), f.Vtbl.Release)
		return nil, nil, nil, err
	}
	return &factory{f}, &device{dev}, &context{ctx}, nil
}

func (d *Driver) InfoQueue() (diag.Queue, error) {
	q, err := DXGIGetDebugInterface1()
	if err != nil {
		return nil, err
	}
	return &infoQueue{q}, nil
}

func (d *Driver) CompileShader(path, entry, target string) ([]byte, error) {
	return D3DCompileFromFile(path, entry, target, d.ShaderFlags)
}

// object wraps a COM pointer as a gfx.Releaser. Release is idempotent.
type object[T any] struct {
	p *T
}

func (o *object[T]) Release() {
	if o.p == nil {
		return
	}
	u := (*IUnknown)(unsafe.Pointer(o.p))
	IUnknownRelease(unsafe.Pointer(o.p), u.Vtbl.Release)
	o.p = nil
}

func wrap[T any](p *T, err error) (gfx.Releaser, error) {
	if err != nil {
		return nil, err
	}
	return &object[T]{p}, nil
}

// unwrap returns the COM pointer behind r, or nil for a nil releaser.
func unwrap[T any](r gfx.Releaser) (*T, error) {
	if r == nil {
		return nil, nil
	}
	o, ok := r.(*object[T])
	if !ok {
		return nil, fmt.Errorf("%w: %T", errForeignObject, r)
	}
	return o.p, nil
}

// ptr is unwrap for call sites that have no error path.
func ptr[T any](r gfx.Releaser) *T {
	p, _ := unwrap[T](r)
	return p
}

type factory struct {
	*IDXGIFactory2
}

func (f *factory) Release() {
	IUnknownRelease(unsafe.Pointer(f.IDXGIFactory2), f.Vtbl.Release)
}

func (f *factory) CreateSwapChain(dev gfx.Device, hwnd uintptr, desc gfx.SwapChainDesc) (gfx.SwapChain, error) {
	d, ok := dev.(*device)
	if !ok {
		return nil, fmt.Errorf("%w: %T", errForeignObject, dev)
	}
	sc, err := f.CreateSwapChainForHwnd(d.Device, windows.Handle(hwnd), &DXGI_SWAP_CHAIN_DESC1{
		Width:  uint32(desc.Width),
		Height: uint32(desc.Height),
		Format: uint32(desc.Format),
		SampleDesc: DXGI_SAMPLE_DESC{
			Count: 1,
		},
		BufferUsage: DXGI_USAGE_RENDER_TARGET_OUTPUT,
		BufferCount: uint32(desc.BufferCount),
		Scaling:     DXGI_SCALING_STRETCH,
		SwapEffect:  DXGI_SWAP_EFFECT_FLIP_DISCARD,
		AlphaMode:   DXGI_ALPHA_MODE_UNSPECIFIED,
	})
	if err != nil {
		return nil, err
	}
	return &swapChain{sc}, nil
}

type swapChain struct {
	*IDXGISwapChain1
}

func (s *swapChain) Release() {
	IUnknownRelease(unsafe.Pointer(s.IDXGISwapChain1), s.Vtbl.Release)
}

func (s *swapChain) BackBuffer() (gfx.Texture, error) {
	buf, err := s.GetBuffer(0, &IID_Texture2D)
	if err != nil {
		return nil, err
	}
	return &object[Texture2D]{(*Texture2D)(unsafe.Pointer(buf))}, nil
}

func (s *swapChain) Size() (int, int, error) {
	desc, err := s.GetDesc1()
	if err != nil {
		return 0, 0, err
	}
	return int(desc.Width), int(desc.Height), nil
}

func (s *swapChain) ResizeBuffers(width, height int) error {
	return s.IDXGISwapChain1.ResizeBuffers(0, uint32(width), uint32(height), 0, 0)
}

func (s *swapChain) Present(syncInterval int) gfx.HRESULT {
	return gfx.HRESULT(s.IDXGISwapChain1.Present(syncInterval, 0))
}

type device struct {
	*Device
}

func (d *device) Release() {
	IUnknownRelease(unsafe.Pointer(d.Device), d.Vtbl.Release)
}

func (d *device) CreateRenderTargetView(tex gfx.Texture) (gfx.RenderTargetView, error) {
	t, err := unwrap[Texture2D](tex)
	if err != nil {
		return nil, err
	}
	return wrap(d.Device.CreateRenderTargetView((*IUnknown)(t)))
}

func (d *device) CreateTexture2D(desc gfx.TextureDesc) (gfx.Texture, error) {
	td := &TEXTURE2D_DESC{
		Width:     uint32(desc.Width),
		Height:    uint32(desc.Height),
		MipLevels: 1,
		ArraySize: 1,
		Format:    uint32(desc.Format),
		SampleDesc: DXGI_SAMPLE_DESC{
			Count:   1,
			Quality: 0,
		},
	}
	switch desc.Usage {
	case gfx.UsageDepthStencil:
		td.Usage = USAGE_DEFAULT
		td.BindFlags = BIND_DEPTH_STENCIL
	case gfx.UsageStaging:
		td.Usage = USAGE_STAGING
		td.CPUAccessFlags = CPU_ACCESS_READ
	}
	return wrap(d.Device.CreateTexture2D(td))
}

func (d *device) CreateDepthStencilView(tex gfx.Texture) (gfx.DepthStencilView, error) {
	t, err := unwrap[Texture2D](tex)
	if err != nil {
		return nil, err
	}
	return wrap(d.CreateDepthStencilViewTEX2D((*IUnknown)(t), &DEPTH_STENCIL_VIEW_DESC_TEX2D{
		Format:        uint32(gfx.FormatD24UNormS8UInt),
		ViewDimension: DSV_DIMENSION_TEXTURE2D,
	}))
}

func (d *device) CreateDepthStencilState(desc gfx.DepthStencilDesc) (gfx.DepthStencilState, error) {
	dd := &DEPTH_STENCIL_DESC{
		DepthFunc: uint32(desc.Func),
	}
	if desc.DepthEnable {
		dd.DepthEnable = 1
	}
	if desc.WriteAll {
		dd.DepthWriteMask = DEPTH_WRITE_MASK_ALL
	}
	return wrap(d.Device.CreateDepthStencilState(dd))
}

func (d *device) CreateBuffer(desc gfx.BufferDesc, data []byte) (gfx.Buffer, error) {
	bd := &BUFFER_DESC{
		ByteWidth: uint32(desc.Size),
	}
	switch desc.Binding {
	case gfx.BindVertexBuffer:
		bd.Usage, bd.BindFlags = USAGE_IMMUTABLE, BIND_VERTEX_BUFFER
	case gfx.BindIndexBuffer:
		bd.Usage, bd.BindFlags = USAGE_IMMUTABLE, BIND_INDEX_BUFFER
	case gfx.BindConstantBuffer:
		// Updated every frame with UpdateSubresource.
		bd.Usage, bd.BindFlags = USAGE_DEFAULT, BIND_CONSTANT_BUFFER
	}
	return wrap(d.Device.CreateBuffer(bd, data))
}

func (d *device) CreateVertexShader(code []byte) (gfx.VertexShader, error) {
	if len(code) == 0 {
		return nil, errors.New("d3d11: empty vertex shader")
	}
	return wrap(d.Device.CreateVertexShader(code))
}

func (d *device) CreatePixelShader(code []byte) (gfx.PixelShader, error) {
	if len(code) == 0 {
		return nil, errors.New("d3d11: empty pixel shader")
	}
	return wrap(d.Device.CreatePixelShader(code))
}

func (d *device) CreateInputLayout(elems []gfx.InputElement, vsCode []byte) (gfx.InputLayout, error) {
	if len(vsCode) == 0 {
		return nil, errors.New("d3d11: input layout without vertex shader code")
	}
	descs := make([]INPUT_ELEMENT_DESC, len(elems))
	for i, e := range elems {
		name, err := windows.BytePtrFromString(e.Semantic)
		if err != nil {
			return nil, err
		}
		descs[i] = INPUT_ELEMENT_DESC{
			SemanticName:      name,
			Format:            uint32(e.Format),
			AlignedByteOffset: e.Offset,
			InputSlotClass:    INPUT_PER_VERTEX_DATA,
		}
	}
	return wrap(d.Device.CreateInputLayout(descs, vsCode))
}

func (d *device) RemovedReason() gfx.HRESULT {
	return gfx.HRESULT(d.GetDeviceRemovedReason())
}

type context struct {
	*DeviceContext
}

func (c *context) Release() {
	IUnknownRelease(unsafe.Pointer(c.DeviceContext), c.Vtbl.Release)
}

func (c *context) ClearRenderTargetView(target gfx.RenderTargetView, color [4]float32) {
	c.DeviceContext.ClearRenderTargetView(ptr[RenderTargetView](target), &color)
}

func (c *context) ClearDepthStencilView(view gfx.DepthStencilView, depth float32, stencil uint8) {
	c.DeviceContext.ClearDepthStencilView(ptr[DepthStencilView](view), CLEAR_DEPTH|CLEAR_STENCIL, depth, stencil)
}

func (c *context) OMSetRenderTargets(target gfx.RenderTargetView, depth gfx.DepthStencilView) {
	c.DeviceContext.OMSetRenderTargets(ptr[RenderTargetView](target), ptr[DepthStencilView](depth))
}

func (c *context) OMSetDepthStencilState(state gfx.DepthStencilState, ref uint32) {
	c.DeviceContext.OMSetDepthStencilState(ptr[DepthStencilState](state), ref)
}

func (c *context) RSSetViewport(vp gfx.Viewport) {
	c.RSSetViewports(&VIEWPORT{
		Width:    vp.Width,
		Height:   vp.Height,
		MinDepth: vp.MinDepth,
		MaxDepth: vp.MaxDepth,
	})
}

func (c *context) IASetVertexBuffer(buf gfx.Buffer, stride uint32) {
	c.IASetVertexBuffers(ptr[Buffer](buf), stride, 0)
}

func (c *context) IASetIndexBuffer(buf gfx.Buffer, format gfx.Format) {
	c.DeviceContext.IASetIndexBuffer(ptr[Buffer](buf), uint32(format), 0)
}

func (c *context) IASetInputLayout(layout gfx.InputLayout) {
	c.DeviceContext.IASetInputLayout(ptr[InputLayout](layout))
}

func (c *context) IASetPrimitiveTopology(mode gfx.Topology) {
	c.DeviceContext.IASetPrimitiveTopology(uint32(mode))
}

func (c *context) VSSetShader(s gfx.VertexShader) {
	c.DeviceContext.VSSetShader(ptr[VertexShader](s))
}

func (c *context) VSSetConstantBuffer(buf gfx.Buffer) {
	c.VSSetConstantBuffers(ptr[Buffer](buf))
}

func (c *context) PSSetShader(s gfx.PixelShader) {
	c.DeviceContext.PSSetShader(ptr[PixelShader](s))
}

func (c *context) PSSetConstantBuffer(buf gfx.Buffer) {
	c.PSSetConstantBuffers(ptr[Buffer](buf))
}

func (c *context) UpdateSubresource(buf gfx.Buffer, data []byte) {
	if len(data) == 0 {
		return
	}
	c.DeviceContext.UpdateSubresource((*IUnknown)(ptr[Buffer](buf)), data)
}

func (c *context) DrawIndexed(count uint32) {
	c.DeviceContext.DrawIndexed(count, 0, 0)
}

func (c *context) CopyResource(dst, src gfx.Texture) {
	c.DeviceContext.CopyResource((*IUnknown)(ptr[Texture2D](dst)), (*IUnknown)(ptr[Texture2D](src)))
}

func (c *context) ReadTexture(tex gfx.Texture, height int) ([]byte, int, error) {
	t, err := unwrap[Texture2D](tex)
	if err != nil {
		return nil, 0, err
	}
	res := (*IUnknown)(t)
	m, err := c.Map(res, 0, MAP_READ, 0)
	if err != nil {
		return nil, 0, err
	}
	defer c.Unmap(res, 0)
	stride := int(m.RowPitch)
	src := unsafe.Slice((*byte)(unsafe.Pointer(m.PData)), stride*height)
	return append([]byte(nil), src...), stride, nil
}

type infoQueue struct {
	*IDXGIInfoQueue
}

func (q *infoQueue) Release() {
	IUnknownRelease(unsafe.Pointer(q.IDXGIInfoQueue), q.Vtbl.Release)
}

func (q *infoQueue) NumStoredMessages() uint64 {
	return q.GetNumStoredMessages(&DXGI_DEBUG_ALL)
}

func (q *infoQueue) Message(index uint64) (diag.Message, error) {
	buf, err := q.GetMessage(&DXGI_DEBUG_ALL, index)
	if err != nil {
		return diag.Message{}, err
	}
	if uintptr(len(buf)) < unsafe.Sizeof(DXGI_INFO_QUEUE_MESSAGE{}) {
		return diag.Message{}, fmt.Errorf("d3d11: short info queue message (%d bytes)", len(buf))
	}
	m := (*DXGI_INFO_QUEUE_MESSAGE)(unsafe.Pointer(&buf[0]))
	msg := diag.Message{
		ID:       m.ID,
		Category: m.Category,
		Severity: m.Severity,
	}
	if m.Description != nil && m.DescriptionByteLength > 0 {
		msg.Description = append([]byte(nil), unsafe.Slice(m.Description, m.DescriptionByteLength)...)
	}
	return msg, nil
}
