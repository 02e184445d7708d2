package server

import (
	"context"
	"runtime/debug"
	"time"

	"github.com/rs/zerolog/log"
	"skat.com/server/crashtest"
	"skat.com/server/game"
)

var backgroundLogger = log.With().Str("logger_name", "server::background").Logger()

const (
	resultQueueSize = 64
	recordTimeout   = 5 * time.Second
)

type checkpointRequest struct {
	state game.SavedState
}

// checkpointWriter saves table checkpoints off the tick goroutine. Only the
// newest pending checkpoint is kept.
type checkpointWriter struct {
	table   string
	persist game.PersistGameState
	latest  chan checkpointRequest
}

func newCheckpointWriter(table string, persist game.PersistGameState) *checkpointWriter {
	if persist == nil {
		return nil
	}
	return &checkpointWriter{
		table:   table,
		persist: persist,
		latest:  make(chan checkpointRequest, 1),
	}
}

func (w *checkpointWriter) submit(st game.SavedState) {
	if w == nil {
		return
	}
	req := checkpointRequest{state: st}
	for {
		select {
		case w.latest <- req:
			return
		default:
		}
		select {
		case <-w.latest:
		default:
		}
	}
}

func (w *checkpointWriter) run(ctx context.Context) {
	defer recoverBackground("checkpoint writer")
	for {
		select {
		case <-ctx.Done():
			select {
			case req := <-w.latest:
				w.save(req)
			default:
			}
			return
		case req := <-w.latest:
			w.save(req)
		}
	}
}

func (w *checkpointWriter) save(req checkpointRequest) {
	if err := w.persist.Save(w.table, &req.state); err != nil {
		backgroundLogger.Error().Err(err).Str("table", w.table).Msg("Could not save checkpoint")
		return
	}
	crashtest.Hit(w.table, crashtest.CrashPoint_CHECKPOINT_SAVED)
}

// resultWriter records finished rounds off the tick goroutine.
type resultWriter struct {
	recorder game.ResultRecorder
	queue    chan game.RoundResult
}

func newResultWriter(recorder game.ResultRecorder) *resultWriter {
	if recorder == nil {
		return nil
	}
	return &resultWriter{
		recorder: recorder,
		queue:    make(chan game.RoundResult, resultQueueSize),
	}
}

func (w *resultWriter) submit(r game.RoundResult) {
	select {
	case w.queue <- r:
	default:
		backgroundLogger.Error().
			Str("table", r.Table).
			Int("round", r.RoundNum).
			Msg("Result queue is full. Dropping round result")
	}
}

func (w *resultWriter) run(ctx context.Context) {
	defer recoverBackground("result writer")
	for {
		select {
		case <-ctx.Done():
			for {
				select {
				case r := <-w.queue:
					w.record(context.Background(), r)
				default:
					return
				}
			}
		case r := <-w.queue:
			w.record(ctx, r)
		}
	}
}

func (w *resultWriter) record(ctx context.Context, r game.RoundResult) {
	ctx, cancel := context.WithTimeout(ctx, recordTimeout)
	defer cancel()
	if err := w.recorder.Record(ctx, r); err != nil {
		backgroundLogger.Error().Err(err).
			Str("table", r.Table).
			Int("round", r.RoundNum).
			Msg("Could not record round result")
	}
}

func (s *Server) startBackground(ctx context.Context) {
	if s.checkpoints != nil {
		s.background.Add(1)
		go func() {
			defer s.background.Done()
			s.checkpoints.run(ctx)
		}()
	}
	if s.results != nil {
		s.background.Add(1)
		go func() {
			defer s.background.Done()
			s.results.run(ctx)
		}()
	}
}

func recoverBackground(name string) {
	if err := recover(); err != nil {
		backgroundLogger.Error().Msgf("%s returning due to panic: %s\nStack Trace:\n%s", name, err, string(debug.Stack()))
	}
}
