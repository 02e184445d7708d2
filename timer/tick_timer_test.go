package timer

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTickTimerRuns(t *testing.T) {
	var ticks int32
	tt := NewTickTimer("test", 200, func() { atomic.AddInt32(&ticks, 1) }, nil)
	assert.Equal(t, 5*time.Millisecond, tt.Interval())
	tt.Run()
	require.Eventually(t, func() bool { return atomic.LoadInt32(&ticks) >= 5 }, 2*time.Second, time.Millisecond)
	tt.Destroy()

	stopped := atomic.LoadInt32(&ticks)
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, stopped, atomic.LoadInt32(&ticks))
	// a second destroy returns immediately
	tt.Destroy()
}

func TestTickTimerCrashHandler(t *testing.T) {
	crashed := make(chan struct{})
	tt := NewTickTimer("crash", 100, func() { panic("boom") }, func() { close(crashed) })
	tt.Run()
	select {
	case <-crashed:
	case <-time.After(2 * time.Second):
		t.Fatal("crash handler not called")
	}
	tt.Destroy()
}

func TestTickTimerRejectsBadConfig(t *testing.T) {
	assert.Panics(t, func() { NewTickTimer("x", 0, func() {}, nil) })
	assert.Panics(t, func() { NewTickTimer("x", 10, nil, nil) })
}
