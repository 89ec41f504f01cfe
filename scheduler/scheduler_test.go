package scheduler

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

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestSchedulerRunsImmediately(t *testing.T) {
	var runs atomic.Int32
	ran := make(chan struct{})

	run := func(ctx context.Context) (Summary, error) {
		if runs.Add(1) == 1 {
			close(ran)
		}
		return Summary{Records: 3}, nil
	}

	s := New(time.Hour, run, nil, testLogger())
	s.Start()

	select {
	case <-ran:
	case <-time.After(5 * time.Second):
		t.Fatal("first run did not start")
	}
	s.Stop()

	assert.Equal(t, int32(1), runs.Load())
}

func TestSchedulerTicks(t *testing.T) {
	var runs atomic.Int32
	third := make(chan struct{})

	run := func(ctx context.Context) (Summary, error) {
		if runs.Add(1) == 3 {
			close(third)
		}
		return Summary{}, nil
	}

	s := New(10*time.Millisecond, run, nil, testLogger())
	s.Start()

	select {
	case <-third:
	case <-time.After(5 * time.Second):
		t.Fatal("scheduler did not tick")
	}
	s.Stop()

	assert.GreaterOrEqual(t, runs.Load(), int32(3))
}

func TestSchedulerKeepsGoingAfterFailure(t *testing.T) {
	var runs atomic.Int32
	second := make(chan struct{})

	run := func(ctx context.Context) (Summary, error) {
		n := runs.Add(1)
		if n == 2 {
			close(second)
		}
		if n == 1 {
			return Summary{}, errors.New("site unreachable")
		}
		return Summary{}, nil
	}

	s := New(10*time.Millisecond, run, nil, testLogger())
	s.Start()

	select {
	case <-second:
	case <-time.After(5 * time.Second):
		t.Fatal("scheduler stopped after a failed run")
	}
	s.Stop()
}

func TestSchedulerStopCancelsContext(t *testing.T) {
	started := make(chan struct{})
	var sawCancel atomic.Bool

	run := func(ctx context.Context) (Summary, error) {
		close(started)
		<-ctx.Done()
		sawCancel.Store(true)
		return Summary{}, ctx.Err()
	}

	s := New(time.Hour, run, nil, testLogger())
	s.Start()
	<-started

	done := make(chan struct{})
	go func() {
		s.Stop()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Stop did not return")
	}
	require.True(t, sawCancel.Load())
}
