package syncer

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEvent_WaitReturnsWhenSet(t *testing.T) {
	e := NewEvent()
	assert.False(t, e.IsSet())

	done := make(chan error, 1)
	go func() {
		done <- e.Wait(context.Background())
	}()

	// Give the waiter time to block.
	time.Sleep(10 * time.Millisecond)
	e.Set()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("waiter was not released by Set")
	}
	assert.True(t, e.IsSet())
}

func TestEvent_WaitImmediateWhenAlreadySet(t *testing.T) {
	e := NewEvent()
	e.Set()
	require.NoError(t, e.Wait(context.Background()))
}

func TestEvent_ClearRearms(t *testing.T) {
	e := NewEvent()
	e.Set()
	e.Clear()
	assert.False(t, e.IsSet())

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	err := e.Wait(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestEvent_SetIsIdempotent(t *testing.T) {
	e := NewEvent()
	e.Set()
	e.Set()
	assert.True(t, e.IsSet())
}

func TestGate_WaitReadyRequiresBothSignals(t *testing.T) {
	g := NewGate()
	g.SyncComplete.Set()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.Error(t, g.WaitReady(ctx), "topology signal still unset")

	g.TopologyReady.Set()
	require.NoError(t, g.WaitReady(context.Background()))
}
