package cli

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSignalContext_Cancel(t *testing.T) {
	sc := NewSignalContext(context.Background())
	sc.Cancel()

	select {
	case <-sc.Done():
	case <-time.After(time.Second):
		t.Fatal("context not cancelled")
	}
	assert.Nil(t, sc.Signal())
}

func TestIsInterrupted(t *testing.T) {
	assert.True(t, isInterrupted(context.Canceled))
	assert.True(t, isInterrupted(fmt.Errorf("run: %w", context.Canceled)))
	assert.False(t, isInterrupted(errors.New("boom")))
	assert.False(t, isInterrupted(nil))
}

func TestIsReported(t *testing.T) {
	err := &ReportedError{Err: context.Canceled}
	assert.True(t, IsReported(fmt.Errorf("wrapped: %w", err)))
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, IsReported(errors.New("plain")))
}
