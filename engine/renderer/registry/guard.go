package registry

import (
	"fmt"
	"sync"

	"github.com/Kuowrk/fragma/common"
	"github.com/Kuowrk/fragma/engine/renderer/texture"
	"github.com/Kuowrk/fragma/engine/scene"
)

// Guard is the exclusive-access wrapper around a Registry.
// Any number of Read borrows may overlap; a Write borrow requires that no other borrow is live.
// Borrows never block: a conflicting borrow fails immediately with common.ErrBorrowConflict.
type Guard interface {
	// Read borrows the registry read-only for the duration of fn.
	//
	// Parameters:
	//   - fn: the function to run with the borrowed registry
	//
	// Returns:
	//   - error: common.ErrBorrowConflict if a writer is active, otherwise the error returned by fn
	Read(fn func(Reader) error) error

	// Write borrows the registry exclusively for the duration of fn.
	//
	// Parameters:
	//   - fn: the function to run with the borrowed registry
	//
	// Returns:
	//   - error: common.ErrBorrowConflict if any borrow is active, otherwise the error returned by fn
	Write(fn func(Registry) error) error

	// Resolver returns a scene.Resolver whose every call runs under a Read borrow.
	//
	// Returns:
	//   - scene.Resolver: the guarded resolver
	Resolver() scene.Resolver
}

type guard struct {
	mu  *sync.RWMutex
	reg Registry
}

var _ Guard = &guard{}

// NewGuard wraps reg in a Guard.
//
// Parameters:
//   - reg: the registry to guard
//
// Returns:
//   - Guard: the guard
func NewGuard(reg Registry) Guard {
	return &guard{
		mu:  &sync.RWMutex{},
		reg: reg,
	}
}

func (g *guard) Read(fn func(Reader) error) error {
	if !g.mu.TryRLock() {
		return fmt.Errorf("%w: registry is borrowed for writing", common.ErrBorrowConflict)
	}
	defer g.mu.RUnlock()
	return fn(g.reg)
}

func (g *guard) Write(fn func(Registry) error) error {
	if !g.mu.TryLock() {
		return fmt.Errorf("%w: registry is already borrowed", common.ErrBorrowConflict)
	}
	defer g.mu.Unlock()
	return fn(g.reg)
}

func (g *guard) Resolver() scene.Resolver {
	return guardedResolver{g: g}
}

// guardedResolver answers scene lookups under a Read borrow. A lookup that cannot borrow reports the name as absent.
type guardedResolver struct {
	g *guard
}

func (r guardedResolver) has(fn func(Reader) bool) bool {
	found := false
	_ = r.g.Read(func(reg Reader) error {
		found = fn(reg)
		return nil
	})
	return found
}

func (r guardedResolver) HasRenderMaterial(name string) bool {
	return r.has(func(reg Reader) bool { return reg.HasRenderMaterial(name) })
}

func (r guardedResolver) HasComputeMaterial(name string) bool {
	return r.has(func(reg Reader) bool { return reg.HasComputeMaterial(name) })
}

func (r guardedResolver) HasTexture(name string) bool {
	return r.has(func(reg Reader) bool { return reg.HasTexture(name) })
}

func (r guardedResolver) HasModel(name string) bool {
	return r.has(func(reg Reader) bool { return reg.HasModel(name) })
}

func (r guardedResolver) CreateStorageTexture(width, height uint32) (texture.Texture, error) {
	var out texture.Texture
	err := r.g.Read(func(reg Reader) error {
		var err error
		out, err = reg.CreateStorageTexture(width, height)
		return err
	})
	return out, err
}
