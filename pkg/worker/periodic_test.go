package worker

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap/zaptest"
)

type countingWorker struct {
	runs atomic.Int32
	err  error
}

func (w *countingWorker) Name() string { return "counting" }

func (w *countingWorker) Run(ctx context.Context) error {
	w.runs.Add(1)
	return w.err
}

func TestPeriodicWorker_RunsImmediatelyAndOnTick(t *testing.T) {
	w := &countingWorker{}
	pw := NewPeriodicWorker(w, 10*time.Millisecond, zaptest.NewLogger(t))

	ctx, cancel := context.WithCancel(context.Background())
	pw.Start(ctx)

	assert.Eventually(t, func() bool { return w.runs.Load() >= 3 }, time.Second, 5*time.Millisecond)

	cancel()
	assert.True(t, pw.Wait(time.Second))
}

func TestPeriodicWorker_SurvivesErrors(t *testing.T) {
	w := &countingWorker{err: errors.New("boom")}
	pw := NewPeriodicWorker(w, 5*time.Millisecond, zaptest.NewLogger(t))

	ctx, cancel := context.WithCancel(context.Background())
	pw.Start(ctx)
	assert.Eventually(t, func() bool { return w.runs.Load() >= 2 }, time.Second, 5*time.Millisecond)
	cancel()
	pw.Wait(time.Second)
}

func TestGroup(t *testing.T) {
	enabled := &countingWorker{}
	disabled := &countingWorker{}

	g := NewGroup(context.Background(), zaptest.NewLogger(t))
	g.Add(enabled, time.Hour)
	g.Add(disabled, 0)
	g.Start()

	assert.Eventually(t, func() bool { return enabled.runs.Load() == 1 }, time.Second, 5*time.Millisecond)
	g.Stop(time.Second)

	assert.Equal(t, int32(0), disabled.runs.Load())
}
