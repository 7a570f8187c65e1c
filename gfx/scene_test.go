package gfx

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
)

func TestScene_TransformDepthRange(t *testing.T) {
	assert := assert.New(t)

	for _, z := range []float32{-3.4, -1, 0, 1, 5.9} {
		m := Transform(0, 0, z, 0.75)
		clip := m.Mul4x1(mgl32.Vec4{0, 0, 0, 1})
		assert.InDelta(z+4, clip.W(), 1e-5)
		depth := clip.Z() / clip.W()
		assert.True(depth >= 0 && depth <= 1, "depth %v out of range for z=%v", depth, z)
	}

	near := perspectiveLH(1, 0.75, 0.5, 10).Mul4x1(mgl32.Vec4{0, 0, 0.5, 1})
	assert.InDelta(0, near.Z()/near.W(), 1e-6)
	far := perspectiveLH(1, 0.75, 0.5, 10).Mul4x1(mgl32.Vec4{0, 0, 10, 1})
	assert.InDelta(1, far.Z()/far.W(), 1e-6)
}

func TestScene_Geometry(t *testing.T) {
	assert := assert.New(t)

	assert.Len(cubeIndices, 36)
	assert.Len(faceColors, 6*4)
	for _, i := range cubeIndices {
		assert.Less(int(i), len(cubeVertices)/3)
	}
	assert.Equal([]byte{0, 0, 0x80, 0x3f, 0, 0, 0, 0xc0}, float32Bytes(1, -2))
	assert.Equal([]byte{0x34, 0x12, 7, 0}, uint16Bytes(0x1234, 7))
}
