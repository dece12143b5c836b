// Command uamon-server runs a simulated telemetry server.
//
// The server hosts a configurable address space backed by the in-process
// simulator: static and clock-driven variables, builtin method handlers,
// and the revision limits applied to subscription requests. It can
// announce its endpoint over mDNS and capture protocol traffic to a
// .ulog file for later inspection with uamon-log.
//
// Usage:
//
//	uamon-server [flags]
//
// Flags:
//
//	-config string     Configuration file path (YAML)
//	-log-level string  Minimum log level: debug, info, warn, error (default "info")
//	-log-file string   Protocol capture file (.ulog)
//	-announce          Announce the endpoint over mDNS
//	-name string       mDNS instance name (default "uamon-server")
//	-port uint         Announced endpoint port (default 4840)
//
// Examples:
//
//	# Start with the builtin address space and debug logging
//	uamon-server -log-level debug
//
//	# Start from a config file, announce and capture traffic
//	uamon-server -config server.yaml -announce -name plant-a -log-file plant-a.ulog
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/uamon-protocol/uamon-go/pkg/discovery"
	"github.com/uamon-protocol/uamon-go/pkg/log"
	"github.com/uamon-protocol/uamon-go/pkg/service"
	"github.com/uamon-protocol/uamon-go/pkg/simstack"
)

// pumpInterval bounds one RunIterate call; it also bounds how long
// shutdown waits for the pump to notice cancellation.
const pumpInterval = 50 * time.Millisecond

type options struct {
	configFile string
	logLevel   string
	logFile    string
	announce   bool
	name       string
	port       uint
}

var opts options

func init() {
	flag.StringVar(&opts.configFile, "config", "", "Configuration file path (YAML)")
	flag.StringVar(&opts.logLevel, "log-level", "info", "Minimum log level: debug, info, warn, error")
	flag.StringVar(&opts.logFile, "log-file", "", "Protocol capture file (.ulog)")
	flag.BoolVar(&opts.announce, "announce", false, "Announce the endpoint over mDNS")
	flag.StringVar(&opts.name, "name", "", "mDNS instance name")
	flag.UintVar(&opts.port, "port", 0, "Announced endpoint port")
}

func main() {
	flag.Parse()

	logger := setupLogging(opts.logLevel)

	cfg, err := loadServerConfig()
	if err != nil {
		logger.Error("invalid configuration", "err", err)
		os.Exit(1)
	}
	applyFlagOverrides(cfg)

	protoLogger, closeCapture, err := buildProtocolLogger(cfg.LogFile, opts.logLevel == "debug", logger)
	if err != nil {
		logger.Error("failed to open protocol capture", "err", err)
		os.Exit(1)
	}
	defer closeCapture()

	sim, err := buildSim(cfg, protoLogger)
	if err != nil {
		logger.Error("failed to build address space", "err", err)
		os.Exit(1)
	}

	svc, err := service.NewServer(service.ServerConfig{
		Driver:         simstack.NewServerEndpoint(sim),
		ConnectionID:   cfg.ConnectionID,
		ProtocolLogger: protoLogger,
	})
	if err != nil {
		logger.Error("failed to create server", "err", err)
		os.Exit(1)
	}
	if err := svc.Start(); err != nil {
		logger.Error("failed to start server", "err", err)
		os.Exit(1)
	}
	logger.Info("server started",
		"connection_id", svc.ConnectionID(),
		"variables", len(cfg.Variables),
		"methods", len(cfg.Methods))

	announcer := startAnnouncement(cfg, logger)

	// The pump goroutine is the only user of the service until it
	// exits; Close runs after it is done.
	ctx, cancel := context.WithCancel(context.Background())
	pumpDone := make(chan struct{})
	go func() {
		defer close(pumpDone)
		runPump(ctx, svc, logger)
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	logger.Info("shutting down", "signal", sig.String())

	cancel()
	<-pumpDone

	if announcer != nil {
		announcer.StopAll()
	}
	if err := svc.Close(); err != nil {
		logger.Error("error closing server", "err", err)
	}
	logger.Info("goodbye")
}

// setupLogging installs a text slog handler at the requested level.
func setupLogging(level string) *slog.Logger {
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
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
	slog.SetDefault(logger)
	return logger
}

// loadServerConfig loads the config file when given, otherwise the
// builtin default address space.
func loadServerConfig() (*Config, error) {
	if opts.configFile == "" {
		return DefaultConfig(), nil
	}
	return LoadConfig(opts.configFile)
}

// applyFlagOverrides lets explicit flags win over the config file.
func applyFlagOverrides(cfg *Config) {
	if opts.logFile != "" {
		cfg.LogFile = opts.logFile
	}
	if opts.announce {
		cfg.Discovery.Announce = true
	}
	if opts.name != "" {
		cfg.Discovery.Name = opts.name
	}
	if opts.port != 0 {
		cfg.Discovery.Port = uint16(opts.port)
	}
	if cfg.Discovery.Announce && cfg.Discovery.Name == "" {
		cfg.Discovery.Name = "uamon-server"
	}
}

// buildProtocolLogger assembles the protocol event sink: a .ulog capture
// when a log file is configured, the slog adapter at debug level, both
// behind a multi logger when both apply.
func buildProtocolLogger(path string, debug bool, logger *slog.Logger) (log.Logger, func(), error) {
	var sinks []log.Logger
	closer := func() {}

	if path != "" {
		fl, err := log.NewFileLogger(path)
		if err != nil {
			return nil, nil, err
		}
		sinks = append(sinks, fl)
		closer = func() {
			if err := fl.Close(); err != nil {
				logger.Error("error closing protocol capture", "err", err)
			}
		}
	}
	if debug {
		sinks = append(sinks, log.NewSlogAdapter(logger))
	}

	switch len(sinks) {
	case 0:
		return log.NoopLogger{}, closer, nil
	case 1:
		return sinks[0], closer, nil
	default:
		return log.NewMultiLogger(sinks...), closer, nil
	}
}

// startAnnouncement registers the endpoint over mDNS when enabled.
// Announcement failure is logged but does not stop the server.
func startAnnouncement(cfg *Config, logger *slog.Logger) *discovery.MDNSAnnouncer {
	if !cfg.Discovery.Announce {
		return nil
	}

	announcer, err := discovery.NewMDNSAnnouncer(discovery.DefaultAnnouncerConfig())
	if err != nil {
		logger.Error("failed to create announcer", "err", err)
		return nil
	}

	port := cfg.Discovery.Port
	if port == 0 {
		port = discovery.DefaultPort
	}
	info := &discovery.AnnounceInfo{
		Name:         cfg.Discovery.Name,
		Port:         port,
		Path:         cfg.Discovery.Path,
		Capabilities: cfg.Discovery.Capabilities,
	}
	if err := announcer.Announce(info); err != nil {
		logger.Error("mdns announcement failed", "err", err)
		return announcer
	}
	logger.Info("endpoint announced", "name", cfg.Discovery.Name, "port", port)
	return announcer
}

// runPump drives the server sampling loop until the context is
// cancelled or the service stops.
func runPump(ctx context.Context, svc *service.Server, logger *slog.Logger) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}
		if err := svc.RunIterate(pumpInterval); err != nil {
			if ctx.Err() != nil {
				return
			}
			logger.Error("pump failed", "err", err)
			return
		}
	}
}
