package ports

import (
	"context"
	"testing"

	"github.com/aretw0/accelerate/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// DriverFixture describes the step bodies a driver under contract test can run.
type DriverFixture struct {
	// ValidBody must execute without error on a fresh backend.
	ValidBody string
	// InvalidBody must be rejected by the backend.
	InvalidBody string
}

// RunDriverContract runs a suite of tests to verify that a Driver implementation
// adheres to the defined interface contract.
// newDriver must return an isolated, empty backend on every call.
func RunDriverContract(t *testing.T, newDriver func(t *testing.T) Driver, fixture DriverFixture) {
	ctx := context.Background()

	open := func(t *testing.T) Driver {
		d := newDriver(t)
		if init, ok := d.(Initializer); ok {
			require.NoError(t, init.Init(ctx), "Init should not return error")
			require.NoError(t, init.Init(ctx), "Init should be idempotent")
		}
		return d
	}

	t.Run("Status Before Any Write", func(t *testing.T) {
		d := open(t)
		_, ok, err := d.Status(ctx)
		require.NoError(t, err)
		assert.False(t, ok, "fresh backend should report no status")
	})

	t.Run("SetStatus and Status", func(t *testing.T) {
		d := open(t)
		require.NoError(t, d.SetStatus(ctx, 3))

		status, ok, err := d.Status(ctx)
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, 3, status)
	})

	t.Run("Latest Status Wins", func(t *testing.T) {
		d := open(t)
		require.NoError(t, d.SetStatus(ctx, 3))
		require.NoError(t, d.SetStatus(ctx, 1))
		require.NoError(t, d.SetStatus(ctx, 1), "SetStatus should be idempotent")

		status, _, err := d.Status(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, status)
	})

	t.Run("SetStatus Zero", func(t *testing.T) {
		d := open(t)
		require.NoError(t, d.SetStatus(ctx, 0))

		status, ok, err := d.Status(ctx)
		require.NoError(t, err)
		assert.True(t, ok, "an explicit zero is still a recorded status")
		assert.Equal(t, 0, status)
	})

	t.Run("Execute Valid Step", func(t *testing.T) {
		d := open(t)
		step := domain.Step{Index: 0, Name: "contract", Operation: domain.Forward, Body: fixture.ValidBody}
		assert.NoError(t, d.Execute(ctx, step))
	})

	t.Run("Execute Invalid Step", func(t *testing.T) {
		d := open(t)
		require.NoError(t, d.SetStatus(ctx, 2))

		step := domain.Step{Index: 2, Name: "contract", Operation: domain.Forward, Body: fixture.InvalidBody}
		assert.Error(t, d.Execute(ctx, step))

		status, _, err := d.Status(ctx)
		require.NoError(t, err)
		assert.Equal(t, 2, status, "a failed step must not move the status")
	})
}
