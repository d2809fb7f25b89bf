package registry_test

import (
	"testing"
	"time"

	"github.com/Kuowrk/fragma/common"
	"github.com/Kuowrk/fragma/engine/renderer/registry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGuardReadersOverlap(t *testing.T) {
	_, reg := newRegistry(t)
	g := registry.NewGuard(reg)

	err := g.Read(func(outer registry.Reader) error {
		return g.Read(func(inner registry.Reader) error {
			assert.True(t, inner.HasModel(registry.ModelQuad))
			return nil
		})
	})
	assert.NoError(t, err)
}

func TestGuardWriteConflictsWithRead(t *testing.T) {
	_, reg := newRegistry(t)
	g := registry.NewGuard(reg)

	var inner error
	require.NoError(t, g.Read(func(registry.Reader) error {
		inner = g.Write(func(registry.Registry) error {
			t.Fatal("writer ran during a read borrow")
			return nil
		})
		return nil
	}))
	assert.ErrorIs(t, inner, common.ErrBorrowConflict)

	assert.NoError(t, g.Write(func(r registry.Registry) error {
		return r.ResizeFullscreenQuad(640, 480)
	}))
}

func TestGuardReadConflictsWithWrite(t *testing.T) {
	_, reg := newRegistry(t)
	g := registry.NewGuard(reg)

	var readErr, writeErr error
	require.NoError(t, g.Write(func(registry.Registry) error {
		readErr = g.Read(func(registry.Reader) error { return nil })
		writeErr = g.Write(func(registry.Registry) error { return nil })
		return nil
	}))
	assert.ErrorIs(t, readErr, common.ErrBorrowConflict)
	assert.ErrorIs(t, writeErr, common.ErrBorrowConflict)

	assert.NoError(t, g.Read(func(registry.Reader) error { return nil }))
}

func TestGuardConflictFromOtherGoroutineDoesNotBlock(t *testing.T) {
	_, reg := newRegistry(t)
	g := registry.NewGuard(reg)

	held := make(chan struct{})
	finish := make(chan struct{})
	writerDone := make(chan error)
	go func() {
		writerDone <- g.Write(func(registry.Registry) error {
			close(held)
			<-finish
			return nil
		})
	}()
	<-held

	readDone := make(chan error)
	go func() {
		readDone <- g.Read(func(registry.Reader) error { return nil })
	}()
	select {
	case err := <-readDone:
		assert.ErrorIs(t, err, common.ErrBorrowConflict)
	case <-time.After(2 * time.Second):
		t.Fatal("read borrow blocked behind a writer")
	}

	close(finish)
	require.NoError(t, <-writerDone)
	assert.NoError(t, g.Read(func(registry.Reader) error { return nil }))
}

func TestGuardPropagatesError(t *testing.T) {
	_, reg := newRegistry(t)
	g := registry.NewGuard(reg)

	err := g.Read(func(r registry.Reader) error {
		_, err := r.Model("missing")
		return err
	})
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestGuardedResolver(t *testing.T) {
	_, reg := newRegistry(t)
	g := registry.NewGuard(reg)
	res := g.Resolver()

	assert.True(t, res.HasRenderMaterial(registry.MaterialBasic))
	assert.False(t, res.HasModel("missing"))

	require.NoError(t, g.Write(func(registry.Registry) error {
		assert.False(t, res.HasRenderMaterial(registry.MaterialBasic))
		_, err := res.CreateStorageTexture(4, 4)
		assert.ErrorIs(t, err, common.ErrBorrowConflict)
		return nil
	}))
}
