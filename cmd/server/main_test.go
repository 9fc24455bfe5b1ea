package main

import (
	"context"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// blockingSweeper holds its second sweep open until released
type blockingSweeper struct {
	calls    int32
	finished int32
	release  chan struct{}
}

func (s *blockingSweeper) SweepExpiry(context.Context) (int, error) {
	if atomic.AddInt32(&s.calls, 1) == 2 {
		<-s.release
		atomic.StoreInt32(&s.finished, 1)
	}
	return 0, nil
}

func TestExpirySweepWaitOutlastsRunningSweep(t *testing.T) {
	sweeper := &blockingSweeper{release: make(chan struct{})}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	ctx, cancel := context.WithCancel(context.Background())

	wait := startExpirySweep(ctx, sweeper, time.Millisecond, logger)
	assert.Eventually(t, func() bool { return atomic.LoadInt32(&sweeper.calls) >= 2 }, time.Second, time.Millisecond)

	cancel()
	var returned int32
	go func() {
		wait()
		atomic.StoreInt32(&returned, 1)
	}()

	assert.Never(t, func() bool { return atomic.LoadInt32(&returned) == 1 }, 50*time.Millisecond, 5*time.Millisecond,
		"wait must not return while a sweep is still running")

	close(sweeper.release)
	assert.Eventually(t, func() bool { return atomic.LoadInt32(&returned) == 1 }, time.Second, time.Millisecond)
	assert.Equal(t, int32(1), atomic.LoadInt32(&sweeper.finished))
}
