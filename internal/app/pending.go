package app

import "sync"

// pending hands values from dialog goroutines to the render thread. Only
// the latest value is kept.
type pending[T any] struct {
	mu    sync.Mutex
	value T
	set   bool
}

func (p *pending[T]) put(v T) {
	p.mu.Lock()
	p.value, p.set = v, true
	p.mu.Unlock()
}

func (p *pending[T]) take() (T, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	v, ok := p.value, p.set
	var zero T
	p.value, p.set = zero, false
	return v, ok
}
