// Package rest serves table diagnostics over HTTP, plus the websocket
// entrance for browser clients.
package rest

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
	"skat.com/server/crashtest"
	"skat.com/server/game"
	"skat.com/server/protocol"
	"skat.com/server/server"
	"skat.com/server/transport"
)

var restLogger = log.With().Str("logger_name", "skat::rest").Logger()

const defaultResultLimit = 20

// Table is what the endpoints read from the running server.
type Table interface {
	Snapshot(seat int) protocol.ClientState
	Registry() *server.Registry
	HandleTransport(ctx context.Context, tr transport.Transport)
}

type Config struct {
	TableName       string
	Table           Table
	Results         game.ResultRecorder
	EnableWebsocket bool
	// EnableCrashTest exposes the crash point endpoint used by recovery tests.
	EnableCrashTest bool
}

type seatStatus struct {
	Seat      int              `json:"seat"`
	Player    *protocol.Player `json:"player"`
	Connected bool             `json:"connected"`
}

type seatsResponse struct {
	Table     string       `json:"table"`
	Occupancy string       `json:"occupancy"`
	Mask      uint8        `json:"mask"`
	Seats     []seatStatus `json:"seats"`
}

type handlers struct {
	config Config
}

func NewRouter(config Config) *gin.Engine {
	h := &handlers{config: config}
	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/internal/alive", h.alive)
	r.GET("/seats", h.seats)
	r.GET("/players", h.players)
	r.GET("/state", h.state)
	r.GET("/results", h.results)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	if config.EnableWebsocket {
		r.GET("/ws", h.websocket)
	}
	if config.EnableCrashTest {
		r.POST("/internal/setup-crash", h.setupCrash)
	}
	return r
}

// RunRestServer serves router on port until ctx is done.
func RunRestServer(ctx context.Context, port int, router http.Handler) error {
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", port),
		Handler: router,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			restLogger.Error().Err(err).Msg("Rest server shutdown failed")
		}
	}()
	restLogger.Info().Int("port", port).Msg("Rest server listening")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return errors.Wrapf(err, "serving rest on port %d", port)
	}
	return nil
}

func (h *handlers) alive(c *gin.Context) {
	c.String(http.StatusOK, "ok")
}

func (h *handlers) seats(c *gin.Context) {
	registry := h.config.Table.Registry()
	mask := registry.Mask()
	players := registry.Players()
	resp := seatsResponse{
		Table:     h.config.TableName,
		Occupancy: mask.String(),
		Mask:      uint8(mask),
		Seats:     make([]seatStatus, 0, protocol.MaxSeats),
	}
	for seat := 0; seat < protocol.MaxSeats; seat++ {
		resp.Seats = append(resp.Seats, seatStatus{
			Seat:      seat,
			Player:    players[seat],
			Connected: mask.Has(seat),
		})
	}
	c.JSON(http.StatusOK, resp)
}

func (h *handlers) players(c *gin.Context) {
	c.JSON(http.StatusOK, h.config.Table.Registry().Players())
}

// state returns the snapshot for ?seat=N, or the observer view without it.
func (h *handlers) state(c *gin.Context) {
	seat := protocol.NoSeat
	if seatStr := c.Query("seat"); seatStr != "" {
		parsed, err := strconv.Atoi(seatStr)
		if err != nil || parsed < 0 || parsed >= protocol.MaxSeats {
			c.String(http.StatusBadRequest, "Invalid seat [%s] for state endpoint.", seatStr)
			return
		}
		seat = parsed
	}
	c.JSON(http.StatusOK, h.config.Table.Snapshot(seat))
}

func (h *handlers) results(c *gin.Context) {
	if h.config.Results == nil {
		c.JSON(http.StatusOK, []game.RoundResult{})
		return
	}
	limit := defaultResultLimit
	if limitStr := c.Query("limit"); limitStr != "" {
		parsed, err := strconv.Atoi(limitStr)
		if err != nil || parsed <= 0 {
			c.String(http.StatusBadRequest, "Invalid limit [%s] for results endpoint.", limitStr)
			return
		}
		limit = parsed
	}
	results, err := h.config.Results.Recent(c.Request.Context(), h.config.TableName, limit)
	if err != nil {
		restLogger.Error().Err(err).Msg("Could not load results")
		c.String(http.StatusInternalServerError, "Failed to load results.")
		return
	}
	if results == nil {
		results = []game.RoundResult{}
	}
	c.JSON(http.StatusOK, results)
}

func (h *handlers) websocket(c *gin.Context) {
	ws, err := transport.AcceptWebSocket(c.Writer, c.Request)
	if err != nil {
		restLogger.Info().Err(err).Msg("Websocket upgrade failed")
		return
	}
	h.config.Table.HandleTransport(c.Request.Context(), ws)
}

func (h *handlers) setupCrash(c *gin.Context) {
	type Payload struct {
		CrashPoint string `json:"crashPoint"`
	}
	var payload Payload
	if err := c.BindJSON(&payload); err != nil {
		restLogger.Error().Msgf("Unable to parse crash configuration. Error: %v", err)
		return
	}

	restLogger.Info().Msgf("Received request to crash table [%s] at [%s]", h.config.TableName, payload.CrashPoint)
	if err := crashtest.Set(h.config.TableName, crashtest.CrashPoint(payload.CrashPoint)); err != nil {
		c.String(http.StatusBadRequest, err.Error())
		return
	}
	c.String(http.StatusOK, "ok")
}
