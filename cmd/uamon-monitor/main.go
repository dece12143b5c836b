// Command uamon-monitor is an interactive monitoring client.
//
// It drives the client facade against an in-process simulated server:
// create and manage subscriptions, monitor data changes and events,
// invoke methods synchronously or asynchronously, and poke the
// simulator to provoke notifications. A background pump keeps
// notifications flowing; it can be switched off to step the protocol
// manually. Protocol traffic can be captured to a .ulog file for
// inspection with uamon-log.
//
// Usage:
//
//	uamon-monitor [flags]
//
// Flags:
//
//	-log-level string     Minimum log level: debug, info, warn, error (default "info")
//	-log-file string      Protocol capture file (.ulog)
//	-call-timeout duration  Synchronous call timeout (default 10s)
//
// The simulated address space:
//
//	ns=1;i=100  temperature (int, initially 21)
//	ns=1;i=101  pressure (float, initially 1013.25)
//	ns=1;i=102  clock (changes every sample)
//	ns=1;i=300  alarms (string; event source for emit/monitor-event)
//	ns=1;i=200  device object with methods add (ns=1;i=201) and
//	            echo (ns=1;i=202)
package main

import (
	"context"
	"flag"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/uamon-protocol/uamon-go/cmd/uamon-monitor/interactive"
	"github.com/uamon-protocol/uamon-go/pkg/log"
	"github.com/uamon-protocol/uamon-go/pkg/service"
	"github.com/uamon-protocol/uamon-go/pkg/simstack"
	"github.com/uamon-protocol/uamon-go/pkg/ua"
)

const serverPumpSlice = 50 * time.Millisecond

type options struct {
	logLevel    string
	logFile     string
	callTimeout time.Duration
}

var opts options

func init() {
	flag.StringVar(&opts.logLevel, "log-level", "info", "Minimum log level: debug, info, warn, error")
	flag.StringVar(&opts.logFile, "log-file", "", "Protocol capture file (.ulog)")
	flag.DurationVar(&opts.callTimeout, "call-timeout", service.DefaultCallTimeout, "Synchronous call timeout")
}

func main() {
	flag.Parse()

	logger := setupLogging(opts.logLevel, os.Stderr)

	protoLogger, closeCapture, err := buildProtocolLogger(opts.logFile)
	if err != nil {
		logger.Error("failed to open protocol capture", "err", err)
		os.Exit(1)
	}
	defer closeCapture()

	sim, err := newPlayground(protoLogger)
	if err != nil {
		logger.Error("failed to build simulator", "err", err)
		os.Exit(1)
	}

	server, err := service.NewServer(service.ServerConfig{
		Driver:         simstack.NewServerEndpoint(sim),
		ConnectionID:   "monitor-server",
		ProtocolLogger: protoLogger,
	})
	if err != nil {
		logger.Error("failed to create server", "err", err)
		os.Exit(1)
	}
	if err := server.Start(); err != nil {
		logger.Error("failed to start server", "err", err)
		os.Exit(1)
	}

	client, err := service.NewClient(service.ClientConfig{
		Driver:         simstack.NewClientEndpoint(sim),
		ConnectionID:   "monitor-client",
		CallTimeout:    opts.callTimeout,
		ProtocolLogger: protoLogger,
	})
	if err != nil {
		logger.Error("failed to create client", "err", err)
		os.Exit(1)
	}
	if err := client.Start(); err != nil {
		logger.Error("failed to start client", "err", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// The server pump goroutine is the only user of the server facade.
	serverDone := make(chan struct{})
	go func() {
		defer close(serverDone)
		for {
			select {
			case <-ctx.Done():
				return
			default:
			}
			if err := server.RunIterate(serverPumpSlice); err != nil {
				return
			}
		}
	}()

	ic, err := interactive.New(client, sim)
	if err != nil {
		logger.Error("failed to create interactive monitor", "err", err)
		os.Exit(1)
	}
	// Route operational logs through readline so they do not clobber
	// the prompt.
	logger = setupLogging(opts.logLevel, ic.Stdout())

	go ic.Run(ctx, cancel)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		logger.Info("shutting down", "signal", sig.String())
	case <-ctx.Done():
		// Cancelled by the quit command.
	}

	cancel()
	ic.Shutdown()
	<-serverDone

	if err := client.Close(); err != nil {
		logger.Error("error closing client", "err", err)
	}
	if err := server.Close(); err != nil {
		logger.Error("error closing server", "err", err)
	}
}

// setupLogging installs a text slog handler at the requested level.
func setupLogging(level string, w io.Writer) *slog.Logger {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	logger := slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: lvl}))
	slog.SetDefault(logger)
	return logger
}

// buildProtocolLogger opens the .ulog capture when configured.
func buildProtocolLogger(path string) (log.Logger, func(), error) {
	if path == "" {
		return log.NoopLogger{}, func() {}, nil
	}
	fl, err := log.NewFileLogger(path)
	if err != nil {
		return nil, nil, err
	}
	return fl, func() { _ = fl.Close() }, nil
}

// newPlayground builds the simulated address space the client works
// against.
func newPlayground(logger log.Logger) (*simstack.Sim, error) {
	sim := simstack.New(simstack.DefaultLimits(), logger)

	if err := sim.AddVariable(ua.NewNodeID(1, 100), ua.NewVariant(int64(21))); err != nil {
		return nil, err
	}
	if err := sim.AddVariable(ua.NewNodeID(1, 101), ua.NewVariant(1013.25)); err != nil {
		return nil, err
	}
	if err := sim.AddClockVariable(ua.NewNodeID(1, 102)); err != nil {
		return nil, err
	}
	if err := sim.AddVariable(ua.NewNodeID(1, 300), ua.NewVariant("ok")); err != nil {
		return nil, err
	}

	object := ua.NewNodeID(1, 200)
	sim.RegisterMethod(object, ua.NewNodeID(1, 201),
		[]simstack.ArgKind{simstack.ArgInt, simstack.ArgInt},
		func(args []ua.Variant) ([]ua.Variant, error) {
			a, _ := args[0].Int()
			b, _ := args[1].Int()
			return []ua.Variant{ua.NewVariant(a + b)}, nil
		})
	sim.RegisterMethod(object, ua.NewNodeID(1, 202),
		[]simstack.ArgKind{simstack.ArgString},
		func(args []ua.Variant) ([]ua.Variant, error) {
			return args, nil
		})

	return sim, nil
}
