package timer

import (
	"runtime/debug"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

var tickTimerLogger = log.With().Str("logger_name", "timer::tick_timer").Logger()

// TickTimer invokes a callback at a fixed rate on its own goroutine. A panic
// in the callback stops the loop and runs the crash handler.
type TickTimer struct {
	name     string
	interval time.Duration

	chEndLoop chan bool
	done      chan struct{}
	endOnce   sync.Once

	callback     func()
	crashHandler func()
}

func NewTickTimer(name string, hz int, callback func(), crashHandler func()) *TickTimer {
	if hz <= 0 {
		panic("tick rate must be positive")
	}
	if callback == nil {
		panic("tick callback is nil")
	}
	if crashHandler == nil {
		crashHandler = func() {}
	}
	return &TickTimer{
		name:         name,
		interval:     time.Second / time.Duration(hz),
		chEndLoop:    make(chan bool),
		done:         make(chan struct{}),
		callback:     callback,
		crashHandler: crashHandler,
	}
}

func (t *TickTimer) Interval() time.Duration {
	return t.interval
}

func (t *TickTimer) Run() {
	go t.loop()
}

// Destroy stops the loop and waits for a running callback to return.
func (t *TickTimer) Destroy() {
	t.endOnce.Do(func() {
		close(t.chEndLoop)
	})
	<-t.done
}

func (t *TickTimer) loop() {
	defer close(t.done)
	defer func() {
		err := recover()
		if err != nil {
			tickTimerLogger.Error().
				Str("timer", t.name).
				Msgf("Tick loop returning due to panic: %s\nStack Trace:\n%s", err, string(debug.Stack()))

			t.crashHandler()
		} else {
			tickTimerLogger.Info().Str("timer", t.name).Msg("Tick loop returning")
		}
	}()

	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()
	for {
		select {
		case <-t.chEndLoop:
			return
		case <-ticker.C:
			t.callback()
		}
	}
}
