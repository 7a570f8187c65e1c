// Package d3d11 implements the gfx backend on top of Direct3D 11 and DXGI.
// The COM bindings follow the vtable layout of the Windows SDK headers and
// are only built on Windows; elsewhere NewDriver reports ErrUnsupported.
package d3d11
