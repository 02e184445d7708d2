// Package server runs the authoritative side of a table: the seat registry,
// the fixed-rate tick loop that applies player actions to the rules engine,
// and the per-connection goroutines that move packages.
package server

import (
	"context"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"skat.com/server/caching"
	"skat.com/server/game"
	"skat.com/server/protocol"
	"skat.com/server/timer"
)

var serverLogger = log.With().Str("logger_name", "server::server").Logger()

// recentActionsSize bounds the de-duplication cache of applied action ids.
const recentActionsSize = 1024

// Rules is the game logic driven by the server. Every call is made with the
// state lock held.
type Rules interface {
	Apply(a protocol.Action, pl protocol.Player, t game.Table) bool
	Tick(t game.Table)
	NotifyJoin(pl protocol.Player, t game.Table)
	NotifyDisconnect(pl protocol.Player, t game.Table)
	Snapshot(seat int) protocol.ClientState
}

// Checkpointer is implemented by rules that can be saved between ticks.
type Checkpointer interface {
	Checkpoint() (game.SavedState, bool)
}

// Observer receives every distributed event masked for a seatless viewer,
// and seat changes.
type Observer interface {
	ObserveEvent(e protocol.Event)
	ObserveSeat(pl protocol.Player, joined bool)
}

type Config struct {
	TableName        string
	TickRate         int
	ListenAddr       string
	AcceptRate       int
	HandshakeTimeout time.Duration
}

type Option func(*Server)

func WithObserver(o Observer) Option {
	return func(s *Server) { s.observer = o }
}

func WithPersistence(p game.PersistGameState) Option {
	return func(s *Server) { s.checkpoints = newCheckpointWriter(s.config.TableName, p) }
}

func WithResultRecorder(r game.ResultRecorder) Option {
	return func(s *Server) { s.results = newResultWriter(r) }
}

type Server struct {
	config   Config
	rules    Rules
	registry *Registry

	stateLock sync.Mutex
	locked    atomic.Bool
	recent    *caching.ActionCache

	observer    Observer
	checkpoints *checkpointWriter
	results     *resultWriter

	background sync.WaitGroup
}

func New(config Config, rules Rules, opts ...Option) (*Server, error) {
	if rules == nil {
		return nil, errors.New("rules are nil")
	}
	if config.TickRate <= 0 {
		return nil, errors.Errorf("invalid tick rate %d", config.TickRate)
	}
	if config.AcceptRate <= 0 {
		config.AcceptRate = 20
	}
	if config.HandshakeTimeout <= 0 {
		config.HandshakeTimeout = 10 * time.Second
	}
	recent, err := caching.NewActionCache(recentActionsSize)
	if err != nil {
		return nil, err
	}
	s := &Server{
		config:   config,
		rules:    rules,
		registry: NewRegistry(),
		recent:   recent,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

func (s *Server) Registry() *Registry {
	return s.registry
}

// Restore re-seats the players of a checkpoint as released seats so they can
// reconnect.
func (s *Server) Restore(players [protocol.MaxSeats]*protocol.Player) {
	for _, pl := range players {
		if pl != nil {
			s.registry.Retain(*pl)
		}
	}
}

// Run starts the tick loop and the background writers, and accepts clients
// on ListenAddr when it is set. It returns when ctx is done or the tick loop
// crashes.
func (s *Server) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	s.startBackground(ctx)
	defer s.background.Wait()

	var crashed atomic.Bool
	ticker := timer.NewTickTimer(s.config.TableName, s.config.TickRate, s.Tick, func() {
		crashed.Store(true)
		cancel()
	})
	ticker.Run()
	defer ticker.Destroy()

	serverLogger.Info().
		Str("table", s.config.TableName).
		Int("tick_rate", s.config.TickRate).
		Msg("Table is running")

	if s.config.ListenAddr != "" {
		ln, err := net.Listen("tcp", s.config.ListenAddr)
		if err != nil {
			return errors.Wrapf(err, "listening on %s", s.config.ListenAddr)
		}
		s.background.Add(1)
		go func() {
			defer s.background.Done()
			if err := s.Serve(ctx, ln); err != nil {
				serverLogger.Error().Err(err).Msg("Accept loop stopped")
				cancel()
			}
		}()
	}
	<-ctx.Done()
	if crashed.Load() {
		return errors.New("tick loop crashed")
	}
	return nil
}

// Snapshot returns the masked state for seat, taken under the state lock.
func (s *Server) Snapshot(seat int) protocol.ClientState {
	s.lockState()
	defer s.unlockState()
	return s.rules.Snapshot(seat)
}

func (s *Server) lockState() {
	s.stateLock.Lock()
	s.locked.Store(true)
}

func (s *Server) unlockState() {
	s.locked.Store(false)
	s.stateLock.Unlock()
}

func (s *Server) assertLocked(op string) {
	if !s.locked.Load() {
		panic(op + " called without the state lock")
	}
}
