package gfx

// Resources is the set of window bound objects. It only exists fully
// populated: BindToWindow either installs a complete value or none.
type Resources struct {
	SwapChain   SwapChain
	Target      RenderTargetView
	DepthBuffer Texture
	DepthView   DepthStencilView
	DepthState  DepthStencilState
	Width       int
	Height      int

	// Context is the immediate context of the owning Graphics. It is shared
	// and not released with the rest of the unit.
	Context Context
}

// Release frees the objects of the unit in reverse creation order.
func (r *Resources) Release() {
	r.releaseViews()
	r.SwapChain.Release()
}

// releaseViews frees everything but the swap chain.
func (r *Resources) releaseViews() {
	r.DepthState.Release()
	r.DepthView.Release()
	r.DepthBuffer.Release()
	r.Target.Release()
}

// builder chains creation steps. After the first failure every later step
// is skipped and rollback frees whatever was created.
type builder struct {
	made []Releaser
	err  error
}

// create runs fn unless an earlier step failed. A failure is recorded with
// the call site of create.
func create[T Releaser](b *builder, op string, fn func() (T, error)) T {
	var zero T
	if b.err != nil {
		return zero
	}
	v, err := fn()
	if err != nil {
		b.err = newError(KindResourceCreation, op, err, 1)
		return zero
	}
	b.made = append(b.made, v)
	return v
}

// do runs a step producing no object.
func (b *builder) do(op string, fn func() error) {
	if b.err != nil {
		return
	}
	if err := fn(); err != nil {
		b.err = newError(KindResourceCreation, op, err, 1)
	}
}

func (b *builder) rollback() {
	for i := len(b.made) - 1; i >= 0; i-- {
		b.made[i].Release()
	}
	b.made = nil
}
