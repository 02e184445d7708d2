package server

import (
	"context"
	"net"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"
	"skat.com/server/transport"
)

var listenerLogger = log.With().Str("logger_name", "server::listener").Logger()

// Serve accepts TCP clients on ln until ctx is done, at most AcceptRate new
// connections per second. Each connection is handled on its own goroutine.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	stop := context.AfterFunc(ctx, func() { ln.Close() })
	defer stop()
	defer ln.Close()

	limiter := rate.NewLimiter(rate.Limit(s.config.AcceptRate), s.config.AcceptRate)
	listenerLogger.Info().Str("addr", ln.Addr().String()).Msg("Accepting clients")
	for {
		if err := limiter.Wait(ctx); err != nil {
			return nil
		}
		conn, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			var netErr net.Error
			if errors.As(err, &netErr) && netErr.Timeout() {
				continue
			}
			return errors.Wrap(err, "accepting connection")
		}
		go s.HandleTransport(ctx, transport.NewTCP(conn))
	}
}
