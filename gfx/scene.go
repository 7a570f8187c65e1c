package gfx

import (
	"encoding/binary"
	"math"
	"path/filepath"

	"github.com/go-gl/mathgl/mgl32"
)

// Shader sources looked up in Options.ShaderDir.
const (
	VertexShaderFile = "VertexShader.hlsl"
	PixelShaderFile  = "PixelShader.hlsl"
)

var cubeVertices = []float32{
	-1, -1, -1,
	1, -1, -1,
	-1, 1, -1,
	1, 1, -1,
	-1, -1, 1,
	1, -1, 1,
	-1, 1, 1,
	1, 1, 1,
}

var cubeIndices = []uint16{
	0, 2, 1, 2, 3, 1,
	1, 3, 5, 3, 7, 5,
	2, 6, 3, 3, 6, 7,
	4, 5, 7, 4, 7, 6,
	0, 4, 2, 2, 4, 6,
	0, 1, 4, 1, 5, 4,
}

// One color per face, indexed by primitive id / 2 in the pixel shader.
var faceColors = []float32{
	1, 0, 1, 1,
	1, 0, 0, 1,
	0, 1, 0, 1,
	0, 0, 1, 1,
	1, 1, 0, 1,
	0, 1, 1, 1,
}

// scene holds the device objects of the fixed geometry.
type scene struct {
	vertices  Buffer
	indices   Buffer
	transform Buffer
	colors    Buffer
	vs        VertexShader
	ps        PixelShader
	layout    InputLayout
}

func (s *scene) release() {
	for _, r := range []Releaser{s.layout, s.ps, s.vs, s.colors, s.transform, s.indices, s.vertices} {
		r.Release()
	}
}

// loadScene compiles the shaders and uploads the geometry.
func (g *Graphics) loadScene() (*scene, error) {
	var (
		b              = &builder{}
		vsCode, psCode []byte
	)
	b.do("compile vertex shader", func() (err error) {
		vsCode, err = g.driver.CompileShader(filepath.Join(g.opts.ShaderDir, VertexShaderFile), "main", "vs_5_0")
		return err
	})
	b.do("compile pixel shader", func() (err error) {
		psCode, err = g.driver.CompileShader(filepath.Join(g.opts.ShaderDir, PixelShaderFile), "main", "ps_5_0")
		return err
	})
	s := &scene{}
	s.vertices = create(b, "create vertex buffer", func() (Buffer, error) {
		data := float32Bytes(cubeVertices...)
		return g.device.CreateBuffer(BufferDesc{Binding: BindVertexBuffer, Size: len(data), Stride: 12}, data)
	})
	s.indices = create(b, "create index buffer", func() (Buffer, error) {
		data := uint16Bytes(cubeIndices...)
		return g.device.CreateBuffer(BufferDesc{Binding: BindIndexBuffer, Size: len(data), Stride: 2}, data)
	})
	s.transform = create(b, "create transform buffer", func() (Buffer, error) {
		ident := mgl32.Ident4()
		data := float32Bytes(ident[:]...)
		return g.device.CreateBuffer(BufferDesc{Binding: BindConstantBuffer, Size: len(data)}, data)
	})
	s.colors = create(b, "create face color buffer", func() (Buffer, error) {
		data := float32Bytes(faceColors...)
		return g.device.CreateBuffer(BufferDesc{Binding: BindConstantBuffer, Size: len(data)}, data)
	})
	s.vs = create(b, "create vertex shader", func() (VertexShader, error) {
		return g.device.CreateVertexShader(vsCode)
	})
	s.ps = create(b, "create pixel shader", func() (PixelShader, error) {
		return g.device.CreatePixelShader(psCode)
	})
	s.layout = create(b, "create input layout", func() (InputLayout, error) {
		return g.device.CreateInputLayout([]InputElement{
			{Semantic: "POSITION", Format: FormatR32G32B32Float},
		}, vsCode)
	})
	if b.err != nil {
		b.rollback()
		return nil, b.err
	}
	return s, nil
}

// Transform returns the clip space transform of a cube rotated by angle
// radians and moved to (x, 0, z+4) in view space.
func Transform(angle, x, z, aspect float32) mgl32.Mat4 {
	return perspectiveLH(1, aspect, 0.5, 10).
		Mul4(mgl32.Translate3D(x, 0, z+4)).
		Mul4(mgl32.HomogRotate3DX(angle)).
		Mul4(mgl32.HomogRotate3DZ(angle))
}

// perspectiveLH is a left handed projection for a view volume of size
// w x h at the near plane, mapping depth into [0, 1].
func perspectiveLH(w, h, near, far float32) mgl32.Mat4 {
	r := far / (far - near)
	return mgl32.Mat4{
		2 * near / w, 0, 0, 0,
		0, 2 * near / h, 0, 0,
		0, 0, r, 1,
		0, 0, -r * near, 0,
	}
}

// Draw renders the cube for the current frame. The shaders are compiled and
// the geometry uploaded on first use.
func (g *Graphics) Draw(angle, x, z float32) error {
	if g.res == nil {
		return ErrUnbound
	}
	if g.scene == nil {
		s, err := g.loadScene()
		if err != nil {
			return err
		}
		g.scene = s
	}
	var (
		s   = g.scene
		ctx = g.ctx
		w   = float32(g.res.Width)
		h   = float32(g.res.Height)
	)
	aspect := float32(3) / 4
	if w > 0 && h > 0 {
		aspect = h / w
	}
	m := Transform(angle, x, z, aspect)
	ctx.UpdateSubresource(s.transform, float32Bytes(m[:]...))

	ctx.IASetVertexBuffer(s.vertices, 12)
	ctx.IASetIndexBuffer(s.indices, FormatR16UInt)
	ctx.VSSetShader(s.vs)
	ctx.PSSetShader(s.ps)
	ctx.IASetInputLayout(s.layout)
	ctx.VSSetConstantBuffer(s.transform)
	ctx.PSSetConstantBuffer(s.colors)
	ctx.OMSetRenderTargets(g.res.Target, g.res.DepthView)
	ctx.OMSetDepthStencilState(g.res.DepthState, 1)
	ctx.RSSetViewport(Viewport{Width: w, Height: h, MinDepth: 0, MaxDepth: 1})
	ctx.IASetPrimitiveTopology(TopologyTriangleList)
	ctx.DrawIndexed(uint32(len(cubeIndices)))
	return nil
}

func float32Bytes(v ...float32) []byte {
	b := make([]byte, 4*len(v))
	for i, f := range v {
		binary.LittleEndian.PutUint32(b[4*i:], math.Float32bits(f))
	}
	return b
}

func uint16Bytes(v ...uint16) []byte {
	b := make([]byte, 2*len(v))
	for i, u := range v {
		binary.LittleEndian.PutUint16(b[2*i:], u)
	}
	return b
}
