package job_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/fort-major/msq-pay/pkg/job"
)

func TestService_RunsAndStops(t *testing.T) {
	t.Parallel()

	var runs, failing, panicking atomic.Int32

	s := job.NewService().
		RegisterJob("count", 10*time.Millisecond, func(context.Context) error {
			runs.Add(1)
			return nil
		}).
		RegisterJob("fail", 10*time.Millisecond, func(context.Context) error {
			failing.Add(1)
			return errors.New("boom")
		}).
		RegisterJob("panic", 10*time.Millisecond, func(context.Context) error {
			panicking.Add(1)
			panic("boom")
		}).
		TryRegisterJob(false, "disabled", time.Millisecond, func(context.Context) error {
			t.Error("disabled job must not run")
			return nil
		}).
		Start(context.Background())

	require.Eventually(t, func() bool {
		return runs.Load() >= 3 && failing.Load() >= 3 && panicking.Load() >= 3
	}, time.Second, 5*time.Millisecond)

	s.Stop()

	stopped := runs.Load()

	time.Sleep(30 * time.Millisecond)
	require.Equal(t, stopped, runs.Load())
}

func TestService_FirstRunIsImmediate(t *testing.T) {
	t.Parallel()

	done := make(chan struct{}, 1)

	s := job.NewService().
		RegisterJob("hourly", time.Hour, func(context.Context) error {
			done <- struct{}{}
			return nil
		}).
		Start(context.Background())
	t.Cleanup(s.Stop)

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("job did not run on start")
	}
}

func TestService_StopsOnParentCancel(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())

	s := job.NewService().
		RegisterJob("noop", time.Hour, func(context.Context) error { return nil }).
		Start(ctx)

	cancel()

	stopped := make(chan struct{})

	go func() {
		s.Stop()
		close(stopped)
	}()

	select {
	case <-stopped:
	case <-time.After(time.Second):
		t.Fatal("stop did not return")
	}
}
