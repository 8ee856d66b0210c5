package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/linechat/internal/app"
	"github.com/vovakirdan/linechat/internal/config"
	"github.com/vovakirdan/linechat/internal/log"
)

func main() {
	var (
		configPath string
		logLevel   string
		overrides  config.Config
	)

	root := &cobra.Command{
		Use:           "linechat-server",
		Short:         "Line-protocol TCP chat server",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			bootLog := log.New(logLevel)
			cfg, path, err := config.Load(bootLog, configPath)
			if err != nil {
				return err
			}
			cfg.UpdateFrom(overrides)
			if logLevel != "" {
				cfg.LogLevel = logLevel
			}

			logger := log.New(cfg.LogLevel)
			logger.Info().Str("config", path).Msg("starting linechat server")

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			if err := app.New(cfg, logger).Run(ctx); err != nil {
				return err
			}
			logger.Info().Msg("server stopped")
			return nil
		},
	}

	root.Flags().StringVar(&configPath, "config", "", "path to config file")
	root.Flags().StringVar(&overrides.Addr, "addr", "", "TCP listen address")
	root.Flags().StringVar(&overrides.HTTPAddr, "http-addr", "", "HTTP listen address")
	root.Flags().IntVar(&overrides.HistorySize, "history-size", 0, "broadcast history replay size")
	root.Flags().IntVar(&overrides.MaxClients, "max-clients", 0, "maximum concurrent sessions")
	root.Flags().DurationVar(&overrides.ShutdownTimeout, "shutdown-timeout", 0, "graceful shutdown timeout")
	root.Flags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error)")

	if err := root.Execute(); err != nil {
		boot := log.New("error")
		boot.Error().Err(err).Msg("server exited with error")
		os.Exit(1)
	}
}
