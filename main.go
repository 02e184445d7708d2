package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"skat.com/server/encryption"
	"skat.com/server/game"
	"skat.com/server/logging"
	"skat.com/server/nats"
	"skat.com/server/rest"
	"skat.com/server/server"
	"skat.com/server/util"
)

var mainLogger = logging.GetZeroLogger("main::main", nil)

var timingFile *string
var listenPort *int
var restPort *int

func init() {
	timingFile = flag.String("config", "", "round timing config file (default from TIMING_FILE or timing.yaml)")
	listenPort = flag.Int("port", 0, "TCP port for game clients (default from LISTEN_PORT)")
	restPort = flag.Int("rest-port", 0, "port for the diagnostics endpoints (default from REST_PORT)")
}

func main() {
	err := run()
	if err != nil {
		mainLogger.Error().Msg(err.Error())
		os.Exit(1)
	}
}

func run() error {
	flag.Parse()

	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return errors.Wrap(err, "Error loading .env file")
	}

	logLevel := util.Env.GetZeroLogLogLevel()
	fmt.Printf("Setting log level to %s\n", logLevel)
	zerolog.SetGlobalLevel(logLevel)

	if *timingFile == "" {
		*timingFile = util.Env.GetTimingFile()
	}
	timing, err := game.ParseTiming(*timingFile)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return errors.Wrap(err, "Error while parsing timing config")
		}
		mainLogger.Warn().Msgf("Timing file %s not found. Using default timing.", *timingFile)
		timing = game.DefaultTiming()
	}
	if *listenPort == 0 {
		*listenPort = util.Env.GetListenPort()
	}
	if *restPort == 0 {
		*restPort = util.Env.GetRestPort()
	}

	tableName := util.Env.GetTableName()

	persist, err := newPersistence()
	if err != nil {
		return err
	}
	recorder, err := newResultRecorder()
	if err != nil {
		return err
	}

	skat := game.NewSkat(game.Config{
		TableName: tableName,
		Timing:    timing,
	})

	opts := []server.Option{
		server.WithPersistence(persist),
		server.WithResultRecorder(recorder),
	}
	if natsURL := util.Env.GetNatsURL(); natsURL != "" {
		nc, err := nats.Connect(natsURL, tableName)
		if err != nil {
			return errors.Wrap(err, "Error connecting to NATS")
		}
		defer nc.Close()
		opts = append(opts, server.WithObserver(nats.NewTableObserver(tableName, nc)))
		mainLogger.Info().Msgf("Publishing table feed to %s", natsURL)
	}

	srv, err := server.New(server.Config{
		TableName:        tableName,
		TickRate:         util.Env.GetTickRate(),
		ListenAddr:       fmt.Sprintf(":%d", *listenPort),
		AcceptRate:       util.Env.GetAcceptRate(),
		HandshakeTimeout: util.Env.GetHandshakeTimeout(),
	}, skat, opts...)
	if err != nil {
		return errors.Wrap(err, "Error creating server")
	}

	saved, err := persist.Load(tableName)
	switch {
	case err == nil:
		skat.Restore(*saved)
		srv.Restore(saved.Players)
		mainLogger.Info().
			Int("round", saved.Game.RoundNum).
			Msgf("Restored table %s from checkpoint", tableName)
	case errors.Is(err, game.ErrStateNotFound):
	default:
		return errors.Wrap(err, "Error loading table checkpoint")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	router := rest.NewRouter(rest.Config{
		TableName:       tableName,
		Table:           srv,
		Results:         recorder,
		EnableWebsocket: util.Env.ShouldEnableWebsocket(),
		EnableCrashTest: util.Env.ShouldEnableCrashTest(),
	})
	go func() {
		if err := rest.RunRestServer(ctx, *restPort, router); err != nil {
			mainLogger.Error().Err(err).Msg("REST server stopped")
		}
	}()

	mainLogger.Info().
		Int("port", *listenPort).
		Int("restPort", *restPort).
		Msgf("Serving table %s", tableName)
	return srv.Run(ctx)
}

func newPersistence() (game.PersistGameState, error) {
	switch util.Env.GetPersistMethod() {
	case "redis":
		addr := fmt.Sprintf("%s:%d", util.Env.GetRedisHost(), util.Env.GetRedisPort())
		mainLogger.Info().Msgf("Persisting table state to redis at %s", addr)
		tracker := game.NewRedisGameStateTracker(addr, util.Env.GetRedisPW(), util.Env.GetRedisDB())
		if key := util.Env.GetStateKey(); key != "" {
			sealer, err := encryption.NewSealerFromString(key)
			if err != nil {
				return nil, errors.Wrap(err, "Error reading the state key")
			}
			tracker.SealWith(sealer)
		}
		return tracker, nil
	default:
		return game.NewMemoryGameStateTracker(), nil
	}
}

func newResultRecorder() (game.ResultRecorder, error) {
	if util.Env.GetPostgresHost() == "" {
		return game.NewMemoryResultRecorder(), nil
	}
	recorder, err := game.NewPostgresResultRecorder(util.Env.GetPostgresConnStr())
	if err != nil {
		return nil, errors.Wrap(err, "Error connecting to the results database")
	}
	return recorder, nil
}
