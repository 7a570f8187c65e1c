package d3d11

import (
	"fmt"
	"math"
	"syscall"
	"unsafe"

	"golang.org/x/sys/windows"
)

type _IUnknownVTbl struct {
	QueryInterface uintptr
	AddRef         uintptr
	Release        uintptr
}

type IUnknown struct {
	Vtbl *struct {
		_IUnknownVTbl
	}
}

type IDXGIFactory2 struct {
	Vtbl *struct {
		_IUnknownVTbl
		SetPrivateData                uintptr
		SetPrivateDataInterface       uintptr
		GetPrivateData                uintptr
		GetParent                     uintptr
		EnumAdapters                  uintptr
		MakeWindowAssociation         uintptr
		GetWindowAssociation          uintptr
		CreateSwapChain               uintptr
		CreateSoftwareAdapter         uintptr
		EnumAdapters1                 uintptr
		IsCurrent                     uintptr
		IsWindowedStereoEnabled       uintptr
		CreateSwapChainForHwnd        uintptr
		CreateSwapChainForCoreWindow  uintptr
		GetSharedResourceAdapterLuid  uintptr
		RegisterStereoStatusWindow    uintptr
		RegisterStereoStatusEvent     uintptr
		UnregisterStereoStatus        uintptr
		RegisterOcclusionStatusWindow uintptr
		RegisterOcclusionStatusEvent  uintptr
		UnregisterOcclusionStatus     uintptr
		CreateSwapChainForComposition uintptr
	}
}

type IDXGISwapChain1 struct {
	Vtbl *struct {
		_IUnknownVTbl
		SetPrivateData           uintptr
		SetPrivateDataInterface  uintptr
		GetPrivateData           uintptr
		GetParent                uintptr
		GetDevice                uintptr
		Present                  uintptr
		GetBuffer                uintptr
		SetFullscreenState       uintptr
		GetFullscreenState       uintptr
		GetDesc                  uintptr
		ResizeBuffers            uintptr
		ResizeTarget             uintptr
		GetContainingOutput      uintptr
		GetFrameStatistics       uintptr
		GetLastPresentCount      uintptr
		GetDesc1                 uintptr
		GetFullscreenDesc        uintptr
		GetHwnd                  uintptr
		GetCoreWindow            uintptr
		Present1                 uintptr
		IsTemporaryMonoSupported uintptr
		GetRestrictToOutput      uintptr
		SetBackgroundColor       uintptr
		GetBackgroundColor       uintptr
		SetRotation              uintptr
		GetRotation              uintptr
	}
}

type IDXGIInfoQueue struct {
	Vtbl *struct {
		_IUnknownVTbl
		SetMessageCountLimit                          uintptr
		ClearStoredMessages                           uintptr
		GetMessage                                    uintptr
		GetNumStoredMessagesAllowedByRetrievalFilters uintptr
		GetNumStoredMessages                          uintptr
	}
}

type Blob struct {
	Vtbl *struct {
		_IUnknownVTbl
		GetBufferPointer uintptr
		GetBufferSize    uintptr
	}
}

type Device struct {
	Vtbl *struct {
		_IUnknownVTbl
		CreateBuffer                         uintptr
		CreateTexture1D                      uintptr
		CreateTexture2D                      uintptr
		CreateTexture3D                      uintptr
		CreateShaderResourceView             uintptr
		CreateUnorderedAccessView            uintptr
		CreateRenderTargetView               uintptr
		CreateDepthStencilView               uintptr
		CreateInputLayout                    uintptr
		CreateVertexShader                   uintptr
		CreateGeometryShader                 uintptr
		CreateGeometryShaderWithStreamOutput uintptr
		CreatePixelShader                    uintptr
		CreateHullShader                     uintptr
		CreateDomainShader                   uintptr
		CreateComputeShader                  uintptr
		CreateClassLinkage                   uintptr
		CreateBlendState                     uintptr
		CreateDepthStencilState              uintptr
		CreateRasterizerState                uintptr
		CreateSamplerState                   uintptr
		CreateQuery                          uintptr
		CreatePredicate                      uintptr
		CreateCounter                        uintptr
		CreateDeferredContext                uintptr
		OpenSharedResource                   uintptr
		CheckFormatSupport                   uintptr
		CheckMultisampleQualityLevels        uintptr
		CheckCounterInfo                     uintptr
		CheckCounter                         uintptr
		CheckFeatureSupport                  uintptr
		GetPrivateData                       uintptr
		SetPrivateData                       uintptr
		SetPrivateDataInterface              uintptr
		GetFeatureLevel                      uintptr
		GetCreationFlags                     uintptr
		GetDeviceRemovedReason               uintptr
		GetImmediateContext                  uintptr
		SetExceptionMode                     uintptr
		GetExceptionMode                     uintptr
	}
}

// DeviceContext lists the ID3D11DeviceContext methods up to the last one
// used here; the vtable order must match d3d11.h.
type DeviceContext struct {
	Vtbl *struct {
		_IUnknownVTbl
		GetDevice                                 uintptr
		GetPrivateData                            uintptr
		SetPrivateData                            uintptr
		SetPrivateDataInterface                   uintptr
		VSSetConstantBuffers                      uintptr
		PSSetShaderResources                      uintptr
		PSSetShader                               uintptr
		PSSetSamplers                             uintptr
		VSSetShader                               uintptr
		DrawIndexed                               uintptr
		Draw                                      uintptr
		Map                                       uintptr
		Unmap                                     uintptr
		PSSetConstantBuffers                      uintptr
		IASetInputLayout                          uintptr
		IASetVertexBuffers                        uintptr
		IASetIndexBuffer                          uintptr
		DrawIndexedInstanced                      uintptr
		DrawInstanced                             uintptr
		GSSetConstantBuffers                      uintptr
		GSSetShader                               uintptr
		IASetPrimitiveTopology                    uintptr
		VSSetShaderResources                      uintptr
		VSSetSamplers                             uintptr
		Begin                                     uintptr
		End                                       uintptr
		GetData                                   uintptr
		SetPredication                            uintptr
		GSSetShaderResources                      uintptr
		GSSetSamplers                             uintptr
		OMSetRenderTargets                        uintptr
		OMSetRenderTargetsAndUnorderedAccessViews uintptr
		OMSetBlendState                           uintptr
		OMSetDepthStencilState                    uintptr
		SOSetTargets                              uintptr
		DrawAuto                                  uintptr
		DrawIndexedInstancedIndirect              uintptr
		DrawInstancedIndirect                     uintptr
		Dispatch                                  uintptr
		DispatchIndirect                          uintptr
		RSSetState                                uintptr
		RSSetViewports                            uintptr
		RSSetScissorRects                         uintptr
		CopySubresourceRegion                     uintptr
		CopyResource                              uintptr
		UpdateSubresource                         uintptr
		CopyStructureCount                        uintptr
		ClearRenderTargetView                     uintptr
		ClearUnorderedAccessViewUint              uintptr
		ClearUnorderedAccessViewFloat             uintptr
		ClearDepthStencilView                     uintptr
	}
}

// Objects only ever passed back to the device or released.
type (
	Texture2D         IUnknown
	RenderTargetView  IUnknown
	DepthStencilView  IUnknown
	DepthStencilState IUnknown
	Buffer            IUnknown
	VertexShader      IUnknown
	PixelShader       IUnknown
	InputLayout       IUnknown
)

type GUID struct {
	Data1   uint32
	Data2   uint16
	Data3   uint16
	Data4_0 uint8
	Data4_1 uint8
	Data4_2 uint8
	Data4_3 uint8
	Data4_4 uint8
	Data4_5 uint8
	Data4_6 uint8
	Data4_7 uint8
}

type DXGI_SAMPLE_DESC struct {
	Count   uint32
	Quality uint32
}

type DXGI_SWAP_CHAIN_DESC1 struct {
	Width       uint32
	Height      uint32
	Format      uint32
	Stereo      uint32
	SampleDesc  DXGI_SAMPLE_DESC
	BufferUsage uint32
	BufferCount uint32
	Scaling     uint32
	SwapEffect  uint32
	AlphaMode   uint32
	Flags       uint32
}

type DXGI_INFO_QUEUE_MESSAGE struct {
	Producer              GUID
	Category              int32
	Severity              int32
	ID                    int32
	Description           *byte
	DescriptionByteLength uintptr
}

type TEXTURE2D_DESC struct {
	Width          uint32
	Height         uint32
	MipLevels      uint32
	ArraySize      uint32
	Format         uint32
	SampleDesc     DXGI_SAMPLE_DESC
	Usage          uint32
	BindFlags      uint32
	CPUAccessFlags uint32
	MiscFlags      uint32
}

type BUFFER_DESC struct {
	ByteWidth           uint32
	Usage               uint32
	BindFlags           uint32
	CPUAccessFlags      uint32
	MiscFlags           uint32
	StructureByteStride uint32
}

type SUBRESOURCE_DATA struct {
	pSysMem          *byte
	SysMemPitch      uint32
	SysMemSlicePitch uint32
}

type DEPTH_STENCILOP_DESC struct {
	StencilFailOp      uint32
	StencilDepthFailOp uint32
	StencilPassOp      uint32
	StencilFunc        uint32
}

type DEPTH_STENCIL_DESC struct {
	DepthEnable      uint32
	DepthWriteMask   uint32
	DepthFunc        uint32
	StencilEnable    uint32
	StencilReadMask  uint8
	StencilWriteMask uint8
	FrontFace        DEPTH_STENCILOP_DESC
	BackFace         DEPTH_STENCILOP_DESC
}

type DEPTH_STENCIL_VIEW_DESC_TEX2D struct {
	Format        uint32
	ViewDimension uint32
	Flags         uint32
	MipSlice      uint32
}

type INPUT_ELEMENT_DESC struct {
	SemanticName         *byte
	SemanticIndex        uint32
	Format               uint32
	InputSlot            uint32
	AlignedByteOffset    uint32
	InputSlotClass       uint32
	InstanceDataStepRate uint32
}

type VIEWPORT struct {
	TopLeftX float32
	TopLeftY float32
	Width    float32
	Height   float32
	MinDepth float32
	MaxDepth float32
}

type MAPPED_SUBRESOURCE struct {
	PData      uintptr
	RowPitch   uint32
	DepthPitch uint32
}

// ErrorCode is the failing HRESULT of a named call.
type ErrorCode struct {
	Name string
	Code uint32
}

func (e ErrorCode) Error() string {
	return fmt.Sprintf("%s: %#x", e.Name, e.Code)
}

var (
	IID_Texture2D      = GUID{0x6f15aaf2, 0xd208, 0x4e89, 0x9a, 0xb4, 0x48, 0x95, 0x35, 0xd3, 0x4f, 0x9c}
	IID_IDXGIFactory2  = GUID{0x50c83a1c, 0xe072, 0x4c48, 0x87, 0xb0, 0x36, 0x30, 0xfa, 0x36, 0xa6, 0xd0}
	IID_IDXGIInfoQueue = GUID{0xd67441c7, 0x672a, 0x476f, 0x9e, 0x82, 0xcd, 0x55, 0xb4, 0x49, 0x49, 0xce}

	DXGI_DEBUG_ALL = GUID{0xe48ae283, 0xda80, 0x490b, 0x87, 0xe6, 0x43, 0xe9, 0xa9, 0xcf, 0xda, 0x8}
)

var (
	d3d11 = windows.NewLazySystemDLL("d3d11.dll")

	_D3D11CreateDevice = d3d11.NewProc("D3D11CreateDevice")

	dxgi = windows.NewLazySystemDLL("dxgi.dll")

	_CreateDXGIFactory2     = dxgi.NewProc("CreateDXGIFactory2")
	_DXGIGetDebugInterface1 = dxgi.NewProc("DXGIGetDebugInterface1")

	d3dcompiler = windows.NewLazySystemDLL("d3dcompiler_47.dll")

	_D3DCompileFromFile = d3dcompiler.NewProc("D3DCompileFromFile")
)

const (
	SDK_VERSION          = 7
	DRIVER_TYPE_HARDWARE = 1

	CREATE_DEVICE_DEBUG       = 0x2
	DXGI_CREATE_FACTORY_DEBUG = 0x1

	DXGI_USAGE_RENDER_TARGET_OUTPUT = 1 << (1 + 4)

	DXGI_SCALING_STRETCH          = 0
	DXGI_SWAP_EFFECT_FLIP_DISCARD = 4
	DXGI_ALPHA_MODE_UNSPECIFIED   = 0

	USAGE_DEFAULT   = 0
	USAGE_IMMUTABLE = 1
	USAGE_STAGING   = 3

	CPU_ACCESS_READ = 0x20000

	MAP_READ = 1

	BIND_VERTEX_BUFFER   = 0x1
	BIND_INDEX_BUFFER    = 0x2
	BIND_CONSTANT_BUFFER = 0x4
	BIND_DEPTH_STENCIL   = 0x40

	INPUT_PER_VERTEX_DATA = 0

	DSV_DIMENSION_TEXTURE2D = 3

	DEPTH_WRITE_MASK_ALL = 1

	CLEAR_DEPTH   = 0x1
	CLEAR_STENCIL = 0x2

	D3DCOMPILE_DEBUG             = 1 << 0
	D3DCOMPILE_SKIP_OPTIMIZATION = 1 << 2
	D3DCOMPILE_ENABLE_STRICTNESS = 1 << 11
)

// D3D_COMPILE_STANDARD_FILE_INCLUDE resolves #include relative to the file.
const D3D_COMPILE_STANDARD_FILE_INCLUDE = 1

func CreateDXGIFactory2(flags uint32) (*IDXGIFactory2, error) {
	var factory *IDXGIFactory2
	r, _, _ := _CreateDXGIFactory2.Call(
		uintptr(flags),
		uintptr(unsafe.Pointer(&IID_IDXGIFactory2)),
		uintptr(unsafe.Pointer(&factory)),
	)
	if r != 0 {
		return nil, ErrorCode{Name: "CreateDXGIFactory2", Code: uint32(r)}
	}
	return factory, nil
}

func CreateDevice(driverType uint32, flags uint32) (*Device, *DeviceContext, uint32, error) {
	var (
		dev     *Device
		ctx     *DeviceContext
		featLvl uint32
	)
	r, _, _ := _D3D11CreateDevice.Call(
		0,                                 // pAdapter
		uintptr(driverType),               // driverType
		0,                                 // Software
		uintptr(flags),                    // Flags
		0,                                 // pFeatureLevels
		0,                                 // FeatureLevels
		SDK_VERSION,                       // SDKVersion
		uintptr(unsafe.Pointer(&dev)),     // ppDevice
		uintptr(unsafe.Pointer(&featLvl)), // pFeatureLevel
		uintptr(unsafe.Pointer(&ctx)),     // ppImmediateContext
	)
	if r != 0 {
		return nil, nil, 0, ErrorCode{Name: "D3D11CreateDevice", Code: uint32(r)}
	}
	return dev, ctx, featLvl, nil
}

func DXGIGetDebugInterface1() (*IDXGIInfoQueue, error) {
	var q *IDXGIInfoQueue
	r, _, _ := _DXGIGetDebugInterface1.Call(
		0, // Flags
		uintptr(unsafe.Pointer(&IID_IDXGIInfoQueue)),
		uintptr(unsafe.Pointer(&q)),
	)
	if r != 0 {
		return nil, ErrorCode{Name: "DXGIGetDebugInterface1", Code: uint32(r)}
	}
	return q, nil
}

// D3DCompileFromFile compiles the HLSL file at path. On failure the
// compiler output is returned as the error text.
func D3DCompileFromFile(path, entry, target string, flags uint32) ([]byte, error) {
	wpath, err := windows.UTF16PtrFromString(path)
	if err != nil {
		return nil, err
	}
	bentry, err := windows.BytePtrFromString(entry)
	if err != nil {
		return nil, err
	}
	btarget, err := windows.BytePtrFromString(target)
	if err != nil {
		return nil, err
	}
	var code, errs *Blob
	r, _, _ := _D3DCompileFromFile.Call(
		uintptr(unsafe.Pointer(wpath)),
		0, // pDefines
		D3D_COMPILE_STANDARD_FILE_INCLUDE,
		uintptr(unsafe.Pointer(bentry)),
		uintptr(unsafe.Pointer(btarget)),
		uintptr(flags),
		0, // Flags2
		uintptr(unsafe.Pointer(&code)),
		uintptr(unsafe.Pointer(&errs)),
	)
	if errs != nil {
		defer IUnknownRelease(unsafe.Pointer(errs), errs.Vtbl.Release)
	}
	if r != 0 {
		ec := ErrorCode{Name: "D3DCompileFromFile", Code: uint32(r)}
		if errs != nil {
			return nil, fmt.Errorf("%s: %w: %s", path, ec, errs.Bytes())
		}
		return nil, fmt.Errorf("%s: %w", path, ec)
	}
	defer IUnknownRelease(unsafe.Pointer(code), code.Vtbl.Release)
	return append([]byte(nil), code.Bytes()...), nil
}

// Bytes returns a view of the blob memory, valid until the blob is released.
func (b *Blob) Bytes() []byte {
	ptr, _, _ := syscall.Syscall(b.Vtbl.GetBufferPointer, 1, uintptr(unsafe.Pointer(b)), 0, 0)
	size, _, _ := syscall.Syscall(b.Vtbl.GetBufferSize, 1, uintptr(unsafe.Pointer(b)), 0, 0)
	if ptr == 0 || size == 0 {
		return nil
	}
	return unsafe.Slice((*byte)(unsafe.Pointer(ptr)), size)
}

func (f *IDXGIFactory2) CreateSwapChainForHwnd(device *Device, hwnd windows.Handle, desc *DXGI_SWAP_CHAIN_DESC1) (*IDXGISwapChain1, error) {
	var swchain *IDXGISwapChain1
	r, _, _ := syscall.Syscall9(
		f.Vtbl.CreateSwapChainForHwnd,
		7,
		uintptr(unsafe.Pointer(f)),
		uintptr(unsafe.Pointer(device)),
		uintptr(hwnd),
		uintptr(unsafe.Pointer(desc)),
		0, // pFullscreenDesc
		0, // pRestrictToOutput
		uintptr(unsafe.Pointer(&swchain)),
		0, 0,
	)
	if r != 0 {
		return nil, ErrorCode{Name: "IDXGIFactory2CreateSwapChainForHwnd", Code: uint32(r)}
	}
	return swchain, nil
}

// Present returns the raw HRESULT; success codes such as
// DXGI_STATUS_OCCLUDED are not errors.
func (s *IDXGISwapChain1) Present(syncInterval int, flags uint32) uint32 {
	r, _, _ := syscall.Syscall(
		s.Vtbl.Present,
		3,
		uintptr(unsafe.Pointer(s)),
		uintptr(syncInterval),
		uintptr(flags),
	)
	return uint32(r)
}

func (s *IDXGISwapChain1) GetBuffer(index int, riid *GUID) (*IUnknown, error) {
	var buf *IUnknown
	r, _, _ := syscall.Syscall6(
		s.Vtbl.GetBuffer,
		4,
		uintptr(unsafe.Pointer(s)),
		uintptr(index),
		uintptr(unsafe.Pointer(riid)),
		uintptr(unsafe.Pointer(&buf)),
		0,
		0,
	)
	if r != 0 {
		return nil, ErrorCode{Name: "IDXGISwapChainGetBuffer", Code: uint32(r)}
	}
	return buf, nil
}

// ResizeBuffers keeps the buffer count and format when bufferCount and
// format are zero. Zero width and height take the client area.
func (s *IDXGISwapChain1) ResizeBuffers(bufferCount, width, height, format, flags uint32) error {
	r, _, _ := syscall.Syscall6(
		s.Vtbl.ResizeBuffers,
		6,
		uintptr(unsafe.Pointer(s)),
		uintptr(bufferCount),
		uintptr(width),
		uintptr(height),
		uintptr(format),
		uintptr(flags),
	)
	if r != 0 {
		return ErrorCode{Name: "IDXGISwapChainResizeBuffers", Code: uint32(r)}
	}
	return nil
}

func (s *IDXGISwapChain1) GetDesc1() (DXGI_SWAP_CHAIN_DESC1, error) {
	var desc DXGI_SWAP_CHAIN_DESC1
	r, _, _ := syscall.Syscall(
		s.Vtbl.GetDesc1,
		2,
		uintptr(unsafe.Pointer(s)),
		uintptr(unsafe.Pointer(&desc)),
		0,
	)
	if r != 0 {
		return DXGI_SWAP_CHAIN_DESC1{}, ErrorCode{Name: "IDXGISwapChain1GetDesc1", Code: uint32(r)}
	}
	return desc, nil
}

func (q *IDXGIInfoQueue) GetNumStoredMessages(producer *GUID) uint64 {
	n, _, _ := syscall.Syscall(
		q.Vtbl.GetNumStoredMessages,
		2,
		uintptr(unsafe.Pointer(q)),
		uintptr(unsafe.Pointer(producer)),
		0,
	)
	return uint64(n)
}

// GetMessage copies the message at index. The call is made twice, first
// for the size and then for the content.
func (q *IDXGIInfoQueue) GetMessage(producer *GUID, index uint64) ([]byte, error) {
	var size uintptr
	r, _, _ := syscall.Syscall6(
		q.Vtbl.GetMessage,
		4,
		uintptr(unsafe.Pointer(q)),
		uintptr(unsafe.Pointer(producer)),
		uintptr(index),
		0,
		uintptr(unsafe.Pointer(&size)),
		0,
	)
	if r != 0 {
		return nil, ErrorCode{Name: "IDXGIInfoQueueGetMessage", Code: uint32(r)}
	}
	// The description points into the same allocation, so keep the
	// buffer pointer aligned.
	words := make([]uint64, (size+7)/8)
	buf := unsafe.Pointer(&words[0])
	r, _, _ = syscall.Syscall6(
		q.Vtbl.GetMessage,
		4,
		uintptr(unsafe.Pointer(q)),
		uintptr(unsafe.Pointer(producer)),
		uintptr(index),
		uintptr(buf),
		uintptr(unsafe.Pointer(&size)),
		0,
	)
	if r != 0 {
		return nil, ErrorCode{Name: "IDXGIInfoQueueGetMessage", Code: uint32(r)}
	}
	return unsafe.Slice((*byte)(buf), size), nil
}

func (d *Device) CreateBuffer(desc *BUFFER_DESC, data []byte) (*Buffer, error) {
	var dataDesc *SUBRESOURCE_DATA
	if len(data) > 0 {
		dataDesc = &SUBRESOURCE_DATA{
			pSysMem: &data[0],
		}
	}
	var buf *Buffer
	r, _, _ := syscall.Syscall6(
		d.Vtbl.CreateBuffer,
		4,
		uintptr(unsafe.Pointer(d)),
		uintptr(unsafe.Pointer(desc)),
		uintptr(unsafe.Pointer(dataDesc)),
		uintptr(unsafe.Pointer(&buf)),
		0, 0,
	)
	if r != 0 {
		return nil, ErrorCode{Name: "DeviceCreateBuffer", Code: uint32(r)}
	}
	return buf, nil
}

func (d *Device) CreateTexture2D(desc *TEXTURE2D_DESC) (*Texture2D, error) {
	var tex *Texture2D
	r, _, _ := syscall.Syscall6(
		d.Vtbl.CreateTexture2D,
		4,
		uintptr(unsafe.Pointer(d)),
		uintptr(unsafe.Pointer(desc)),
		0, // pInitialData
		uintptr(unsafe.Pointer(&tex)),
		0, 0,
	)
	if r != 0 {
		return nil, ErrorCode{Name: "CreateTexture2D", Code: uint32(r)}
	}
	return tex, nil
}

func (d *Device) CreateRenderTargetView(res *IUnknown) (*RenderTargetView, error) {
	var target *RenderTargetView
	r, _, _ := syscall.Syscall6(
		d.Vtbl.CreateRenderTargetView,
		4,
		uintptr(unsafe.Pointer(d)),
		uintptr(unsafe.Pointer(res)),
		0, // pDesc
		uintptr(unsafe.Pointer(&target)),
		0, 0,
	)
	if r != 0 {
		return nil, ErrorCode{Name: "DeviceCreateRenderTargetView", Code: uint32(r)}
	}
	return target, nil
}

func (d *Device) CreateDepthStencilViewTEX2D(res *IUnknown, desc *DEPTH_STENCIL_VIEW_DESC_TEX2D) (*DepthStencilView, error) {
	var view *DepthStencilView
	r, _, _ := syscall.Syscall6(
		d.Vtbl.CreateDepthStencilView,
		4,
		uintptr(unsafe.Pointer(d)),
		uintptr(unsafe.Pointer(res)),
		uintptr(unsafe.Pointer(desc)),
		uintptr(unsafe.Pointer(&view)),
		0, 0,
	)
	if r != 0 {
		return nil, ErrorCode{Name: "DeviceCreateDepthStencilView", Code: uint32(r)}
	}
	return view, nil
}

func (d *Device) CreateDepthStencilState(desc *DEPTH_STENCIL_DESC) (*DepthStencilState, error) {
	var state *DepthStencilState
	r, _, _ := syscall.Syscall(
		d.Vtbl.CreateDepthStencilState,
		3,
		uintptr(unsafe.Pointer(d)),
		uintptr(unsafe.Pointer(desc)),
		uintptr(unsafe.Pointer(&state)),
	)
	if r != 0 {
		return nil, ErrorCode{Name: "DeviceCreateDepthStencilState", Code: uint32(r)}
	}
	return state, nil
}

func (d *Device) CreateVertexShader(bytecode []byte) (*VertexShader, error) {
	var shader *VertexShader
	r, _, _ := syscall.Syscall6(
		d.Vtbl.CreateVertexShader,
		5,
		uintptr(unsafe.Pointer(d)),
		uintptr(unsafe.Pointer(&bytecode[0])),
		uintptr(len(bytecode)),
		0, // pClassLinkage
		uintptr(unsafe.Pointer(&shader)),
		0,
	)
	if r != 0 {
		return nil, ErrorCode{Name: "DeviceCreateVertexShader", Code: uint32(r)}
	}
	return shader, nil
}

func (d *Device) CreatePixelShader(bytecode []byte) (*PixelShader, error) {
	var shader *PixelShader
	r, _, _ := syscall.Syscall6(
		d.Vtbl.CreatePixelShader,
		5,
		uintptr(unsafe.Pointer(d)),
		uintptr(unsafe.Pointer(&bytecode[0])),
		uintptr(len(bytecode)),
		0, // pClassLinkage
		uintptr(unsafe.Pointer(&shader)),
		0,
	)
	if r != 0 {
		return nil, ErrorCode{Name: "DeviceCreatePixelShader", Code: uint32(r)}
	}
	return shader, nil
}

func (d *Device) CreateInputLayout(descs []INPUT_ELEMENT_DESC, bytecode []byte) (*InputLayout, error) {
	var pdesc *INPUT_ELEMENT_DESC
	if len(descs) > 0 {
		pdesc = &descs[0]
	}
	var layout *InputLayout
	r, _, _ := syscall.Syscall6(
		d.Vtbl.CreateInputLayout,
		6,
		uintptr(unsafe.Pointer(d)),
		uintptr(unsafe.Pointer(pdesc)),
		uintptr(len(descs)),
		uintptr(unsafe.Pointer(&bytecode[0])),
		uintptr(len(bytecode)),
		uintptr(unsafe.Pointer(&layout)),
	)
	if r != 0 {
		return nil, ErrorCode{Name: "DeviceCreateInputLayout", Code: uint32(r)}
	}
	return layout, nil
}

func (d *Device) GetDeviceRemovedReason() uint32 {
	r, _, _ := syscall.Syscall(
		d.Vtbl.GetDeviceRemovedReason,
		1,
		uintptr(unsafe.Pointer(d)),
		0, 0,
	)
	return uint32(r)
}

func (c *DeviceContext) ClearRenderTargetView(target *RenderTargetView, color *[4]float32) {
	syscall.Syscall(
		c.Vtbl.ClearRenderTargetView,
		3,
		uintptr(unsafe.Pointer(c)),
		uintptr(unsafe.Pointer(target)),
		uintptr(unsafe.Pointer(color)),
	)
}

func (c *DeviceContext) ClearDepthStencilView(target *DepthStencilView, flags uint32, depth float32, stencil uint8) {
	syscall.Syscall6(
		c.Vtbl.ClearDepthStencilView,
		5,
		uintptr(unsafe.Pointer(c)),
		uintptr(unsafe.Pointer(target)),
		uintptr(flags),
		uintptr(math.Float32bits(depth)),
		uintptr(stencil),
		0,
	)
}

func (c *DeviceContext) OMSetRenderTargets(target *RenderTargetView, depthStencil *DepthStencilView) {
	syscall.Syscall6(
		c.Vtbl.OMSetRenderTargets,
		4,
		uintptr(unsafe.Pointer(c)),
		1, // NumViews
		uintptr(unsafe.Pointer(&target)),
		uintptr(unsafe.Pointer(depthStencil)),
		0, 0,
	)
}

func (c *DeviceContext) OMSetDepthStencilState(state *DepthStencilState, stencilRef uint32) {
	syscall.Syscall(
		c.Vtbl.OMSetDepthStencilState,
		3,
		uintptr(unsafe.Pointer(c)),
		uintptr(unsafe.Pointer(state)),
		uintptr(stencilRef),
	)
}

func (c *DeviceContext) RSSetViewports(viewport *VIEWPORT) {
	syscall.Syscall(
		c.Vtbl.RSSetViewports,
		3,
		uintptr(unsafe.Pointer(c)),
		1, // NumViewports
		uintptr(unsafe.Pointer(viewport)),
	)
}

func (c *DeviceContext) IASetVertexBuffers(buf *Buffer, stride, offset uint32) {
	syscall.Syscall6(
		c.Vtbl.IASetVertexBuffers,
		6,
		uintptr(unsafe.Pointer(c)),
		0, // StartSlot
		1, // NumBuffers,
		uintptr(unsafe.Pointer(&buf)),
		uintptr(unsafe.Pointer(&stride)),
		uintptr(unsafe.Pointer(&offset)),
	)
}

func (c *DeviceContext) IASetIndexBuffer(buf *Buffer, format, offset uint32) {
	syscall.Syscall6(
		c.Vtbl.IASetIndexBuffer,
		4,
		uintptr(unsafe.Pointer(c)),
		uintptr(unsafe.Pointer(buf)),
		uintptr(format),
		uintptr(offset),
		0, 0,
	)
}

func (c *DeviceContext) IASetInputLayout(layout *InputLayout) {
	syscall.Syscall(
		c.Vtbl.IASetInputLayout,
		2,
		uintptr(unsafe.Pointer(c)),
		uintptr(unsafe.Pointer(layout)),
		0,
	)
}

func (c *DeviceContext) IASetPrimitiveTopology(mode uint32) {
	syscall.Syscall(
		c.Vtbl.IASetPrimitiveTopology,
		2,
		uintptr(unsafe.Pointer(c)),
		uintptr(mode),
		0,
	)
}

func (c *DeviceContext) VSSetShader(s *VertexShader) {
	syscall.Syscall6(
		c.Vtbl.VSSetShader,
		4,
		uintptr(unsafe.Pointer(c)),
		uintptr(unsafe.Pointer(s)),
		0, // ppClassInstances
		0, // NumClassInstances
		0, 0,
	)
}

func (c *DeviceContext) VSSetConstantBuffers(b *Buffer) {
	syscall.Syscall6(
		c.Vtbl.VSSetConstantBuffers,
		4,
		uintptr(unsafe.Pointer(c)),
		0, // StartSlot
		1, // NumBuffers
		uintptr(unsafe.Pointer(&b)),
		0, 0,
	)
}

func (c *DeviceContext) PSSetShader(s *PixelShader) {
	syscall.Syscall6(
		c.Vtbl.PSSetShader,
		4,
		uintptr(unsafe.Pointer(c)),
		uintptr(unsafe.Pointer(s)),
		0, // ppClassInstances
		0, // NumClassInstances
		0, 0,
	)
}

func (c *DeviceContext) PSSetConstantBuffers(b *Buffer) {
	syscall.Syscall6(
		c.Vtbl.PSSetConstantBuffers,
		4,
		uintptr(unsafe.Pointer(c)),
		0, // StartSlot
		1, // NumBuffers
		uintptr(unsafe.Pointer(&b)),
		0, 0,
	)
}

func (c *DeviceContext) UpdateSubresource(res *IUnknown, data []byte) {
	syscall.Syscall9(
		c.Vtbl.UpdateSubresource,
		7,
		uintptr(unsafe.Pointer(c)),
		uintptr(unsafe.Pointer(res)),
		0, // DstSubresource
		0, // pDstBox
		uintptr(unsafe.Pointer(&data[0])),
		0, // SrcRowPitch
		0, // SrcDepthPitch
		0, 0,
	)
}

func (c *DeviceContext) DrawIndexed(count, start uint32, base int32) {
	syscall.Syscall6(
		c.Vtbl.DrawIndexed,
		4,
		uintptr(unsafe.Pointer(c)),
		uintptr(count),
		uintptr(start),
		uintptr(base),
		0, 0,
	)
}

func (c *DeviceContext) CopyResource(dst, src *IUnknown) {
	syscall.Syscall(
		c.Vtbl.CopyResource,
		3,
		uintptr(unsafe.Pointer(c)),
		uintptr(unsafe.Pointer(dst)),
		uintptr(unsafe.Pointer(src)),
	)
}

func (c *DeviceContext) Map(resource *IUnknown, subResource, mapType, mapFlags uint32) (MAPPED_SUBRESOURCE, error) {
	var resMap MAPPED_SUBRESOURCE
	r, _, _ := syscall.Syscall6(
		c.Vtbl.Map,
		6,
		uintptr(unsafe.Pointer(c)),
		uintptr(unsafe.Pointer(resource)),
		uintptr(subResource),
		uintptr(mapType),
		uintptr(mapFlags),
		uintptr(unsafe.Pointer(&resMap)),
	)
	if r != 0 {
		return resMap, ErrorCode{Name: "DeviceContextMap", Code: uint32(r)}
	}
	return resMap, nil
}

func (c *DeviceContext) Unmap(resource *IUnknown, subResource uint32) {
	syscall.Syscall(
		c.Vtbl.Unmap,
		3,
		uintptr(unsafe.Pointer(c)),
		uintptr(unsafe.Pointer(resource)),
		uintptr(subResource),
	)
}

func IUnknownRelease(obj unsafe.Pointer, releaseMethod uintptr) {
	syscall.Syscall(
		releaseMethod,
		1,
		uintptr(obj),
		0,
		0,
	)
}
