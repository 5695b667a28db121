package source

import (
	"fmt"
	"sync"
)

// Handle names a temporary URL that exposes a file's bytes to a host, such
// as a browser object URL.
type Handle string

// Registry creates and revokes handles. Every handle returned by Create is
// passed to Revoke exactly once by the Manager.
type Registry interface {
	Create(f File) (Handle, error)
	Revoke(h Handle)
}

// MemoryRegistry is an in-process Registry. It keeps the bytes of live
// handles so hosts without object URLs can still resolve them.
type MemoryRegistry struct {
	mu      sync.Mutex
	next    int
	live    map[Handle]File
	created int
	revoked int
}

// NewMemoryRegistry returns an empty registry.
func NewMemoryRegistry() *MemoryRegistry {
	return &MemoryRegistry{live: make(map[Handle]File)}
}

func (r *MemoryRegistry) Create(f File) (Handle, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.next++
	h := Handle(fmt.Sprintf("mem:%d/%s", r.next, f.Name))
	r.live[h] = f
	r.created++
	return h, nil
}

func (r *MemoryRegistry) Revoke(h Handle) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.live[h]; !ok {
		return
	}
	delete(r.live, h)
	r.revoked++
}

// Lookup returns the file behind a live handle.
func (r *MemoryRegistry) Lookup(h Handle) (File, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	f, ok := r.live[h]
	return f, ok
}

// Stats reports how many handles were created, revoked and are still live.
func (r *MemoryRegistry) Stats() (created, revoked, live int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.created, r.revoked, len(r.live)
}
