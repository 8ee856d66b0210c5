package app

import (
	"context"
	"fmt"
	stdhttp "net/http"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/vovakirdan/linechat/internal/config"
	"github.com/vovakirdan/linechat/internal/core"
	transporthttp "github.com/vovakirdan/linechat/internal/transport/http"
	"github.com/vovakirdan/linechat/internal/transport/tcp"
)

// App wires the chat core to its transports.
type App struct {
	cfg  config.Config
	hub  *core.Hub
	tcp  *tcp.Server
	http *stdhttp.Server
	log  *zerolog.Logger
}

// New constructs the application with provided configuration.
func New(cfg config.Config, logger *zerolog.Logger) *App {
	hub := core.NewHub(core.Options{
		HistorySize: cfg.HistorySize,
		RateBurst:   cfg.RateBurst,
		RateRefill:  cfg.RateRefillPerSec,
		MaxClients:  cfg.MaxClients,
	}, logger)

	return &App{
		cfg:  cfg,
		hub:  hub,
		tcp:  tcp.NewServer(cfg.Addr, hub, cfg.ShutdownTimeout, logger),
		http: transporthttp.NewServer(hub, cfg, logger),
		log:  logger,
	}
}

// Run starts the router and both listeners, blocking until ctx cancellation
// or a fatal listener error.
func (a *App) Run(ctx context.Context) error {
	addr, err := a.tcp.Listen()
	if err != nil {
		return fmt.Errorf("listen tcp: %w", err)
	}
	a.log.Info().
		Str("addr", addr.String()).
		Str("http_addr", a.cfg.HTTPAddr).
		Msg("linechat server listening")

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		a.hub.Run(gctx)
		return nil
	})
	g.Go(func() error {
		return a.tcp.Serve(gctx)
	})
	g.Go(func() error {
		if err := a.http.ListenAndServe(); err != nil && err != stdhttp.ErrServerClosed {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
		defer cancel()

		a.log.Info().Msg("shutting down http server")
		if err := a.http.Shutdown(shutdownCtx); err != nil {
			a.log.Warn().Err(err).Msg("http shutdown incomplete")
		}
		return nil
	})

	return g.Wait()
}
