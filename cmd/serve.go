package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/brew-cli/internal/api"
	"github.com/sells-group/brew-cli/internal/fermentation"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the prediction and simulation HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		if servePort != 0 {
			cfg.Server.Port = servePort
		}
		if err := cfg.Validate("serve"); err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		cat, err := openCatalog(ctx, cfg.Catalog)
		if err != nil {
			return err
		}
		defer cat.Close() //nolint:errcheck

		sim := fermentation.New(nil,
			fermentation.WithSnapshotHours(cfg.Simulation.SnapshotHours),
			fermentation.WithReferenceMashTemp(cfg.Simulation.ReferenceMashTemp),
		)
		handler := api.NewServer(cat, sim,
			api.WithDefaultDays(cfg.Simulation.Days),
			api.WithMilestoneHours(cfg.Simulation.MilestoneHours),
			api.WithCORSOrigins(cfg.Server.CORSOrigins),
			api.WithRateLimit(cfg.Server.RateLimit, cfg.Server.RateBurst),
		).Handler()

		srv := &http.Server{
			Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
			Handler:           handler,
			ReadHeaderTimeout: 10 * time.Second,
		}
		return serve(ctx, srv, time.Duration(cfg.Server.ShutdownTimeout)*time.Second)
	},
}

// serve runs srv until ctx is cancelled, then shuts it down within timeout.
func serve(ctx context.Context, srv *http.Server, timeout time.Duration) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		zap.L().Info("starting server", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return eris.Wrap(err, "server listen")
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		zap.L().Info("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), timeout)
		defer cancel()
		return eris.Wrap(srv.Shutdown(shutdownCtx), "server shutdown")
	})

	return g.Wait()
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}
