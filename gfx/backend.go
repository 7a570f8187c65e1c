package gfx

import (
	"fmt"

	"github.com/esimov/dxhost/diag"
)

// HRESULT is a status code returned by the graphics backend.
type HRESULT uint32

// Status codes the core reacts to.
const (
	S_OK                       HRESULT = 0
	DXGI_STATUS_OCCLUDED       HRESULT = 0x087A0001
	DXGI_ERROR_DEVICE_HUNG     HRESULT = 0x887A0006
	DXGI_ERROR_DEVICE_REMOVED  HRESULT = 0x887A0005
	DXGI_ERROR_DEVICE_RESET    HRESULT = 0x887A0007
	DXGI_ERROR_DRIVER_INTERNAL HRESULT = 0x887A0020
	DXGI_ERROR_INVALID_CALL    HRESULT = 0x887A0001
	E_ACCESSDENIED             HRESULT = 0x80070005
	E_FAIL                     HRESULT = 0x80004005
)

// Failed reports whether the code denotes an error.
func (h HRESULT) Failed() bool { return int32(h) < 0 }

func (h HRESULT) String() string { return fmt.Sprintf("%#x", uint32(h)) }

// ErrorCode is the error returned by failing backend calls.
type ErrorCode struct {
	Name string
	Code HRESULT
}

func (e ErrorCode) Error() string {
	return fmt.Sprintf("%s: %#x", e.Name, uint32(e.Code))
}

// Releaser is implemented by every backend object.
type Releaser interface {
	Release()
}

// Opaque backend objects.
type (
	Texture           Releaser
	RenderTargetView  Releaser
	DepthStencilView  Releaser
	DepthStencilState Releaser
	Buffer            Releaser
	VertexShader      Releaser
	PixelShader       Releaser
	InputLayout       Releaser
)

// Format is a DXGI pixel or vertex format.
type Format uint32

const (
	FormatR32G32B32Float Format = 6
	FormatR8G8B8A8UNorm  Format = 28
	FormatD24UNormS8UInt Format = 45
	FormatR16UInt        Format = 57
)

// TextureUsage selects how a texture is created.
type TextureUsage uint8

const (
	// UsageDepthStencil is a GPU only depth buffer.
	UsageDepthStencil TextureUsage = iota
	// UsageStaging is a CPU readable copy target.
	UsageStaging
)

// BufferBinding selects the pipeline stage a buffer is bound to.
type BufferBinding uint8

const (
	BindVertexBuffer BufferBinding = iota
	BindIndexBuffer
	BindConstantBuffer
)

// ComparisonFunc is a depth test function.
type ComparisonFunc uint32

const (
	ComparisonNever ComparisonFunc = 1
	ComparisonLess  ComparisonFunc = 2
)

// Topology is a primitive topology.
type Topology uint32

const TopologyTriangleList Topology = 4

type SwapChainDesc struct {
	// Zero sizes let the platform use the client area of the window.
	Width, Height int
	Format        Format
	BufferCount   int
}

type TextureDesc struct {
	Width, Height int
	Format        Format
	Usage         TextureUsage
}

type BufferDesc struct {
	Binding BufferBinding
	Size    int
	Stride  int
}

type DepthStencilDesc struct {
	DepthEnable bool
	WriteAll    bool
	Func        ComparisonFunc
}

type InputElement struct {
	Semantic string
	Format   Format
	Offset   uint32
}

type Viewport struct {
	Width, Height      float32
	MinDepth, MaxDepth float32
}

// Driver creates the device and exposes the collaborators around it.
type Driver interface {
	// CreateDevice creates the factory, a hardware device and its
	// immediate context.
	CreateDevice(debug bool) (Factory, Device, Context, error)
	// InfoQueue returns the debug layer message queue.
	InfoQueue() (diag.Queue, error)
	// CompileShader compiles the source file at path.
	CompileShader(path, entry, target string) ([]byte, error)
}

// Factory creates swap chains. A window takes a single flip model swap
// chain: creating a second one for a window whose first is alive fails.
type Factory interface {
	Releaser
	CreateSwapChain(dev Device, hwnd uintptr, desc SwapChainDesc) (SwapChain, error)
}

// Device creates GPU objects.
type Device interface {
	Releaser
	CreateRenderTargetView(tex Texture) (RenderTargetView, error)
	CreateTexture2D(desc TextureDesc) (Texture, error)
	CreateDepthStencilView(tex Texture) (DepthStencilView, error)
	CreateDepthStencilState(desc DepthStencilDesc) (DepthStencilState, error)
	CreateBuffer(desc BufferDesc, data []byte) (Buffer, error)
	CreateVertexShader(code []byte) (VertexShader, error)
	CreatePixelShader(code []byte) (PixelShader, error)
	CreateInputLayout(elems []InputElement, vsCode []byte) (InputLayout, error)
	// RemovedReason returns why the device was removed, S_OK if it was not.
	RemovedReason() HRESULT
}

// SwapChain presents rendered frames to a window.
type SwapChain interface {
	Releaser
	BackBuffer() (Texture, error)
	Size() (width, height int, err error)
	// ResizeBuffers reallocates the buffers in place, keeping their count
	// and format. A zero size uses the client area. It fails while any view
	// of a buffer is alive.
	ResizeBuffers(width, height int) error
	Present(syncInterval int) HRESULT
}

// Context records rendering commands.
type Context interface {
	Releaser
	ClearRenderTargetView(target RenderTargetView, color [4]float32)
	ClearDepthStencilView(view DepthStencilView, depth float32, stencil uint8)
	OMSetRenderTargets(target RenderTargetView, depth DepthStencilView)
	OMSetDepthStencilState(state DepthStencilState, ref uint32)
	RSSetViewport(vp Viewport)
	IASetVertexBuffer(buf Buffer, stride uint32)
	IASetIndexBuffer(buf Buffer, format Format)
	IASetInputLayout(layout InputLayout)
	IASetPrimitiveTopology(mode Topology)
	VSSetShader(s VertexShader)
	VSSetConstantBuffer(buf Buffer)
	PSSetShader(s PixelShader)
	PSSetConstantBuffer(buf Buffer)
	UpdateSubresource(buf Buffer, data []byte)
	DrawIndexed(count uint32)
	CopyResource(dst, src Texture)
	// ReadTexture maps a staging texture and returns a copy of its rows.
	ReadTexture(tex Texture, height int) (pix []byte, stride int, err error)
}
