package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/orgball2608/wedding-gallery/internal/board"
	"github.com/orgball2608/wedding-gallery/internal/gallery"
	"github.com/orgball2608/wedding-gallery/internal/guests"
	"github.com/orgball2608/wedding-gallery/internal/live"
	"github.com/orgball2608/wedding-gallery/internal/ratelimit"
	"github.com/orgball2608/wedding-gallery/pkg/config"
	"github.com/orgball2608/wedding-gallery/pkg/logger"
	"go.uber.org/fx"
)

type Opts struct {
	fx.In

	LC      fx.Lifecycle
	Config  *config.Config
	Logger  logger.Logger
	Gallery *gallery.Store
	Board   *board.Board
	Guests  *guests.Registry
	Hub     *live.Hub
}

// New wires the HTTP server into the fx lifecycle.
func New(opts Opts) *http.Server {
	cfg := opts.Config
	log := opts.Logger.WithComponent("HTTPServer")

	limiter := ratelimit.NewInMemoryLimiter(cfg.RateLimit.Requests, cfg.RateLimit.Per, cfg.RateLimit.Burst)
	handler := NewHandler(opts.Gallery, opts.Board, opts.Guests, http.HandlerFunc(opts.Hub.ServeWS), opts.Logger)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           handler.Router(limiter, cfg.Gallery.OperatorToken, cfg.IsProduction()),
		ReadHeaderTimeout: 10 * time.Second,
	}

	opts.LC.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			ln, err := net.Listen("tcp", srv.Addr)
			if err != nil {
				return fmt.Errorf("failed to listen on %s: %w", srv.Addr, err)
			}
			log.Info("HTTP server listening", "addr", srv.Addr)

			go func() {
				if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
					log.Error("HTTP server stopped", "error", err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Info("Shutting down HTTP server")
			return srv.Shutdown(ctx)
		},
	})

	return srv
}

var Module = fx.Module("server",
	fx.Provide(New),
	fx.Invoke(func(*http.Server) {}),
)
