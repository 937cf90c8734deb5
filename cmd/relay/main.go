// Command relay serves the shared session page and the presence/photo
// websocket relay.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"realtime-presence/internal/config"
	"realtime-presence/internal/feed"
	"realtime-presence/internal/logging"
	"realtime-presence/internal/relay"
	"realtime-presence/internal/server"
	"realtime-presence/internal/session"
)

type serveFlags struct {
	configPath string
	port       int
	staticDir  string
	logLevel   string
	logFormat  string
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		log.Error().Err(err).Msg("relay exited with error")
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	flags := &serveFlags{}

	serve := func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd, flags)
		if err != nil {
			return err
		}
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return run(ctx, cfg)
	}

	root := &cobra.Command{
		Use:           "relay",
		Short:         "Real-time presence and photo relay for a shared page session",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          serve,
	}
	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the landing page and the websocket relay",
		RunE:  serve,
	}

	bindServeFlags(root, flags)
	bindServeFlags(serveCmd, flags)

	root.AddCommand(serveCmd, newVersionCmd())
	return root
}

func bindServeFlags(cmd *cobra.Command, flags *serveFlags) {
	f := cmd.Flags()
	f.StringVarP(&flags.configPath, "config", "c", "", "path to a YAML config file")
	f.IntVarP(&flags.port, "port", "p", 0, "listen port (overrides PORT)")
	f.StringVar(&flags.staticDir, "static-dir", "", "directory served as static assets")
	f.StringVar(&flags.logLevel, "log-level", "", "log level (trace, debug, info, warn, error)")
	f.StringVar(&flags.logFormat, "log-format", "", "log format (console or json)")
}

// loadConfig layers explicitly set flags over file and environment values.
func loadConfig(cmd *cobra.Command, flags *serveFlags) (*config.Config, error) {
	cfg, err := config.Load(flags.configPath)
	if err != nil {
		return nil, err
	}

	f := cmd.Flags()
	if f.Changed("port") {
		cfg.Port = flags.port
	}
	if f.Changed("static-dir") {
		cfg.StaticDir = flags.staticDir
	}
	if f.Changed("log-level") {
		cfg.LogLevel = flags.logLevel
	}
	if f.Changed("log-format") {
		cfg.LogFormat = flags.logFormat
	}

	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "validate config")
	}
	return cfg, nil
}

func run(ctx context.Context, cfg *config.Config) error {
	logger, err := logging.Setup(cfg.LogLevel, cfg.LogFormat, os.Stderr)
	if err != nil {
		return err
	}

	hub := relay.NewHub(
		session.NewRegistry(),
		feed.New(),
		relay.WithLogger(logger.With().Str("component", "relay").Logger()),
		relay.WithSendBuffer(cfg.SendBuffer),
		relay.WithReadLimit(cfg.MaxMessageBytes),
		relay.WithWriteTimeout(cfg.WriteTimeout),
	)

	logger.Info().
		Int("port", cfg.Port).
		Str("static_dir", cfg.StaticDir).
		Str("version", Version).
		Msg("starting relay")

	return server.New(cfg, hub, logger).Run(ctx)
}
