package application

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunServers(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	t.Run("Waits for every server to finish shutting down", func(t *testing.T) {
		// Given: a server that still has work to finish after cancellation
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		var finished atomic.Bool
		slow := server{name: "slow", start: func(ctx context.Context, _ string) error {
			<-ctx.Done()
			time.Sleep(100 * time.Millisecond)
			finished.Store(true)
			return nil
		}}
		quick := server{name: "quick", start: func(ctx context.Context, _ string) error {
			<-ctx.Done()
			return nil
		}}

		// When: the application is canceled
		time.AfterFunc(10*time.Millisecond, cancel)
		err := runServers(ctx, cancel, logger, []server{slow, quick})

		// Then: runServers returns only after the slow server is done
		require.NoError(t, err)
		assert.True(t, finished.Load())
	})

	t.Run("A failing server stops the others", func(t *testing.T) {
		// Given: one server that fails to start and one that runs until canceled
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		errBind := errors.New("address already in use")
		var stopped atomic.Bool
		failing := server{name: "failing", start: func(context.Context, string) error {
			return errBind
		}}
		running := server{name: "running", start: func(ctx context.Context, _ string) error {
			<-ctx.Done()
			stopped.Store(true)
			return nil
		}}

		// When: the servers are run
		err := runServers(ctx, cancel, logger, []server{failing, running})

		// Then: the failure is reported and the other server was shut down first
		require.ErrorIs(t, err, errBind)
		assert.Contains(t, err.Error(), "failing server error")
		assert.True(t, stopped.Load())
	})
}
