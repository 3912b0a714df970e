package postprocess

import (
	"fmt"
	"sync"
)

// bufferPool recycles the scratch mask buffers used while reconstructing
// segment masks, keyed by buffer name
type bufferPool struct {
	mu    sync.Mutex
	pools map[string]*bufferEntry
}

// bufferEntry is one named pool and the capacity its buffers are made with
type bufferEntry struct {
	pool    sync.Pool
	maxSize int
}

// NewBufferPool returns an empty bufferPool
func NewBufferPool() *bufferPool {
	return &bufferPool{
		pools: make(map[string]*bufferEntry),
	}
}

// Create registers a pool under name producing buffers of maxSize bytes.
// Registering the same name again with the same size is a no-op, a
// different size is an error.
func (b *bufferPool) Create(name string, maxSize int) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if entry, exists := b.pools[name]; exists {
		if entry.maxSize == maxSize {
			return nil
		}
		return fmt.Errorf("buffer pool %q already exists with size %d", name, entry.maxSize)
	}

	entry := &bufferEntry{maxSize: maxSize}

	entry.pool.New = func() any {
		return make([]uint8, maxSize)
	}

	b.pools[name] = entry
	return nil
}

// entry returns the named pool, panicking on an unregistered name as that
// is a programming error
func (b *bufferPool) entry(name string) *bufferEntry {
	b.mu.Lock()
	entry, ok := b.pools[name]
	b.mu.Unlock()

	if !ok {
		panic(fmt.Sprintf("buffer pool %q not registered", name))
	}

	return entry
}

// Get returns a zeroed []uint8 of length size from the named pool.  Sizes
// larger than the pool capacity are allocated fresh.
func (b *bufferPool) Get(name string, size int) []uint8 {

	entry := b.entry(name)

	if size > entry.maxSize {
		return make([]uint8, size)
	}

	buf := entry.pool.Get().([]uint8)[:size]

	for i := range buf {
		buf[i] = 0
	}

	return buf
}

// Put returns a buffer obtained from Get back to its named pool.  Oversized
// buffers allocated by Get are left for the garbage collector.
func (b *bufferPool) Put(name string, buf []uint8) {

	entry := b.entry(name)

	if cap(buf) != entry.maxSize {
		return
	}

	entry.pool.Put(buf[:entry.maxSize])
}
