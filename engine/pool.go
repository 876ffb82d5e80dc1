package engine

import (
	"errors"
	"fmt"
)

// ErrUnknownKind is reported through Config.Diag when Create declines a view
// kind. The pool then hands back a zero view and the slot stays empty.
var ErrUnknownKind = errors.New("engine: no view for kind")

// pool recycles views per kind. A view released for kind k is handed out
// again for the next request of kind k before Create is consulted, so steady
// scrolling through homogeneous data allocates nothing.
type pool[V any] struct {
	free map[int][]V
	// known remembers kinds Create has accepted, so a release for a kind
	// the pool never built is destroyed instead of cached.
	known map[int]bool

	create   func(kind int) (V, bool)
	destroy  func(v V)
	activate func(v V, active bool)
	diag     func(error)
}

func newPool[V any](cb Callbacks[V], diag func(error)) *pool[V] {
	return &pool[V]{
		free:     make(map[int][]V),
		known:    make(map[int]bool),
		create:   cb.Create,
		destroy:  cb.Destroy,
		activate: cb.Activate,
		diag:     diag,
	}
}

// Get returns an activated view for kind, recycling a free one when
// available. It reports false when the kind cannot be built.
func (p *pool[V]) Get(kind int) (V, bool) {
	if list := p.free[kind]; len(list) > 0 {
		v := list[len(list)-1]
		p.free[kind] = list[:len(list)-1]
		if p.activate != nil {
			p.activate(v, true)
		}
		return v, true
	}

	v, ok := p.create(kind)
	if !ok {
		p.diag(fmt.Errorf("%w: %d", ErrUnknownKind, kind))
		var zero V
		return zero, false
	}
	p.known[kind] = true
	if p.activate != nil {
		p.activate(v, true)
	}
	return v, true
}

// Put deactivates v and stores it on kind's free list. Views of kinds the
// pool never created are destroyed rather than cached.
func (p *pool[V]) Put(kind int, v V) {
	if p.activate != nil {
		p.activate(v, false)
	}
	if !p.known[kind] {
		if p.destroy != nil {
			p.destroy(v)
		}
		return
	}
	p.free[kind] = append(p.free[kind], v)
}

// Clear destroys every cached view and empties the free lists.
func (p *pool[V]) Clear() {
	for kind, list := range p.free {
		if p.destroy != nil {
			for _, v := range list {
				p.destroy(v)
			}
		}
		delete(p.free, kind)
	}
}

// FreeCount reports how many views are cached for kind.
func (p *pool[V]) FreeCount(kind int) int {
	return len(p.free[kind])
}
