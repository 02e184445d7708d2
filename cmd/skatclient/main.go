package main

import (
	"context"
	"flag"
	"fmt"
	"net"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"skat.com/server/client"
	"skat.com/server/console"
	"skat.com/server/logging"
	"skat.com/server/transport"
	"skat.com/server/util"
)

var (
	cmdArgs    arg
	mainLogger = logging.GetZeroLogger("skatclient::main", nil)
)

type arg struct {
	host         string
	port         int
	restPort     int
	resume       bool
	websocket    bool
	identityFile string
}

func init() {
	flag.StringVar(&cmdArgs.host, "h", "localhost", "server host")
	flag.IntVar(&cmdArgs.port, "p", 4242, "server TCP port")
	flag.IntVar(&cmdArgs.restPort, "rest-port", 8080, "server HTTP port, used with -w")
	flag.BoolVar(&cmdArgs.resume, "r", false, "resume the stored identity")
	flag.BoolVar(&cmdArgs.websocket, "w", false, "connect over websocket instead of TCP")
	flag.StringVar(&cmdArgs.identityFile, "id", ".skat-identity.json", "identity file")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: %s [flags] [name]\n", os.Args[0])
		flag.PrintDefaults()
	}
}

func main() {
	flag.Parse()
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		mainLogger.Error().Err(err).Msg("Error loading .env file")
		os.Exit(1)
	}
	logLevel := util.Env.GetZeroLogLogLevel()
	zerolog.SetGlobalLevel(logLevel)

	if err := run(); err != nil {
		mainLogger.Error().Msg(err.Error())
		os.Exit(1)
	}
}

func run() error {
	name := flag.Arg(0)
	if name == "" && !cmdArgs.resume {
		name = os.Getenv("USER")
	}
	identity, err := client.ResolveIdentity(cmdArgs.identityFile, name, cmdArgs.resume)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	con := console.New(os.Stdout)
	cl := client.New(client.Config{
		Identity: identity,
		Resume:   cmdArgs.resume,
		Dial:     dialer(),
		OnEvent:  con.HandleEvent,
		OnJoin:   con.HandleJoin,
		OnLeave:  con.HandleLeave,
		OnResync: con.HandleResync,
		OnDisconnect: func(ctx context.Context, c *client.Client, err error) {
			con.HandleDisconnect(ctx, c, err)
			stop()
		},
	})
	defer cl.Close()
	con.Attach(cl)

	ack, err := cl.Connect(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("Seated at seat %d as %s.\n", ack.Seat+1, identity.Name)

	// Scan blocks on stdin, so a lost connection must not wait for the next line.
	done := make(chan error, 1)
	go func() { done <- con.Run(ctx, os.Stdin) }()
	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return nil
	}
}

func dialer() client.DialFunc {
	if cmdArgs.websocket {
		url := fmt.Sprintf("ws://%s/ws", net.JoinHostPort(cmdArgs.host, strconv.Itoa(cmdArgs.restPort)))
		return func(ctx context.Context) (transport.Transport, error) {
			return transport.DialWebSocket(ctx, url)
		}
	}
	addr := net.JoinHostPort(cmdArgs.host, strconv.Itoa(cmdArgs.port))
	return func(ctx context.Context) (transport.Transport, error) {
		return transport.DialTCP(ctx, addr)
	}
}
