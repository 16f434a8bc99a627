package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/roomsignal/internal/app"
	"github.com/vovakirdan/roomsignal/internal/auth"
	"github.com/vovakirdan/roomsignal/internal/config"
	"github.com/vovakirdan/roomsignal/internal/log"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

type rootFlags struct {
	configPath string
	addr       string
	logLevel   string
}

func newRootCmd() *cobra.Command {
	flags := &rootFlags{}

	root := &cobra.Command{
		Use:           "roomsignal",
		Short:         "WebRTC signaling and presence coordinator",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&flags.configPath, "config", "", "path to config file (default ./config.yaml)")
	root.PersistentFlags().StringVar(&flags.addr, "addr", "", "HTTP listen address")
	root.PersistentFlags().StringVar(&flags.logLevel, "log-level", "", "log level (debug, info, warn, error)")

	serve := newServeCmd(flags)
	root.AddCommand(serve, newTokenCmd(flags))
	root.RunE = serve.RunE

	return root
}

func loadConfig(flags *rootFlags) (*config.Config, error) {
	bootstrap := log.New(flags.logLevel, "console")
	cfg, path, err := config.Load(bootstrap, flags.configPath)
	if err != nil {
		return nil, err
	}
	cfg.UpdateFrom(config.Config{Addr: flags.addr, LogLevel: flags.logLevel})
	bootstrap.Debug().Str("config_path", path).Msg("config loaded")
	return &cfg, nil
}

func newServeCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the signaling server",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(flags)
			if err != nil {
				return err
			}
			logger := log.New(cfg.LogLevel, cfg.LogFormat)

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			application, err := app.New(cfg, logger)
			if err != nil {
				logger.Error().Err(err).Msg("failed to initialize application")
				return err
			}

			logger.Info().Str("addr", cfg.Addr).Msg("starting roomsignal server")
			if err := application.Run(ctx); err != nil {
				logger.Error().Err(err).Msg("server exited with error")
				return err
			}
			logger.Info().Msg("server stopped")
			return nil
		},
	}
}

func newTokenCmd(flags *rootFlags) *cobra.Command {
	var (
		name  string
		guest bool
		ttl   time.Duration
	)
	cmd := &cobra.Command{
		Use:   "token <participant-id>",
		Short: "Issue an identity token signed with the configured secret",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(flags)
			if err != nil {
				return err
			}
			jwtCfg := &auth.JWTConfig{
				Secret:   []byte(cfg.JWTSecret),
				Issuer:   cfg.JWTIssuer,
				Audience: cfg.JWTAudience,
				TTL:      ttl,
			}
			if !jwtCfg.Enabled() {
				return fmt.Errorf("jwt_secret is not configured")
			}
			token, err := auth.GenerateToken(jwtCfg, args[0], name, guest)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), token)
			return err
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "display name claim")
	cmd.Flags().BoolVar(&guest, "guest", false, "mark the identity as a guest")
	cmd.Flags().DurationVar(&ttl, "ttl", 24*time.Hour, "token lifetime")
	return cmd
}
