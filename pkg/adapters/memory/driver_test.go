package memory_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/aretw0/accelerate/pkg/adapters/memory"
	"github.com/aretw0/accelerate/pkg/domain"
	"github.com/aretw0/accelerate/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rejectInvalid(ctx context.Context, step domain.Step) error {
	if strings.HasPrefix(step.Body, "invalid") {
		return errors.New("rejected")
	}
	return nil
}

func TestMemoryDriver_Contract(t *testing.T) {
	ports.RunDriverContract(t, func(t *testing.T) ports.Driver {
		return memory.NewDriver(memory.WithExec(rejectInvalid))
	}, ports.DriverFixture{
		ValidBody:   "noop",
		InvalidBody: "invalid",
	})
}

func TestMemoryDriver_RecordsSteps(t *testing.T) {
	ctx := context.Background()
	d := memory.NewDriver(memory.WithExec(rejectInvalid))

	require.NoError(t, d.Execute(ctx, domain.Step{Index: 0, Body: "a"}))
	require.Error(t, d.Execute(ctx, domain.Step{Index: 1, Body: "invalid"}))
	require.NoError(t, d.Execute(ctx, domain.Step{Index: 2, Body: "b"}))

	steps := d.Steps()
	require.Len(t, steps, 2)
	assert.Equal(t, 0, steps[0].Index)
	assert.Equal(t, 2, steps[1].Index)
}

func TestMemoryDriver_WithStatus(t *testing.T) {
	d := memory.NewDriver(memory.WithStatus(4))

	status, ok, err := d.Status(context.Background())
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 4, status)
	assert.Empty(t, d.History())
}
