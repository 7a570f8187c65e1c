//go:build !windows

package d3d11

import (
	"errors"

	"github.com/esimov/dxhost/diag"
	"github.com/esimov/dxhost/gfx"
)

// Driver is not available outside Windows.
type Driver struct{}

// ErrUnsupported is returned by NewDriver on platforms without Direct3D.
var ErrUnsupported = errors.New("d3d11: Direct3D 11 is only available on windows")

func NewDriver() (*Driver, error) {
	return nil, ErrUnsupported
}

var _ gfx.Driver = (*Driver)(nil)

func (*Driver) CreateDevice(bool) (gfx.Factory, gfx.Device, gfx.Context, error) {
	return nil, nil, nil, ErrUnsupported
}

func (*Driver) InfoQueue() (diag.Queue, error) { return nil, ErrUnsupported }

func (*Driver) CompileShader(string, string, string) ([]byte, error) {
	return nil, ErrUnsupported
}
