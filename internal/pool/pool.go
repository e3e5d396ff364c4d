// Package pool provides typed object pools for scratch buffers that are
// reused across usage renders.
package pool

import (
	"bytes"
	"sync"
)

// Pool is a type-safe wrapper around sync.Pool.
type Pool[T any] struct {
	pool  sync.Pool
	reset func(*T) // called before an object is handed out again
}

// NewPool creates a pool that allocates new objects with factory.
func NewPool[T any](factory func() *T) *Pool[T] {
	return &Pool[T]{
		pool: sync.Pool{
			New: func() any {
				return factory()
			},
		},
	}
}

// NewPoolWithReset creates a pool with a reset function called before reuse
func NewPoolWithReset[T any](factory func() *T, reset func(*T)) *Pool[T] {
	p := NewPool(factory)
	p.reset = reset
	return p
}

// Get retrieves an object from the pool or creates a new one
func (p *Pool[T]) Get() *T {
	obj := p.pool.Get().(*T)
	if p.reset != nil {
		p.reset(obj)
	}
	return obj
}

// Put returns an object to the pool for reuse
func (p *Pool[T]) Put(obj *T) {
	if obj == nil {
		return
	}
	p.pool.Put(obj)
}

// BufferPool hands out empty bytes.Buffers. Buffers that grew beyond maxCap
// are dropped on Put instead of being kept alive by the pool.
type BufferPool struct {
	p      *Pool[bytes.Buffer]
	maxCap int
}

// NewBufferPool creates a buffer pool; maxCap <= 0 keeps every buffer.
func NewBufferPool(maxCap int) *BufferPool {
	return &BufferPool{
		p: NewPoolWithReset(
			func() *bytes.Buffer { return new(bytes.Buffer) },
			func(b *bytes.Buffer) { b.Reset() },
		),
		maxCap: maxCap,
	}
}

// Get returns an empty buffer.
func (bp *BufferPool) Get() *bytes.Buffer { return bp.p.Get() }

// Put returns b to the pool.
func (bp *BufferPool) Put(b *bytes.Buffer) {
	if b == nil || (bp.maxCap > 0 && b.Cap() > bp.maxCap) {
		return
	}
	bp.p.Put(b)
}
