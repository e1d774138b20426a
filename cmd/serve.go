package cmd

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/bobndungu/boxtasks-prod-sub004/internal/cache"
	"github.com/bobndungu/boxtasks-prod-sub004/internal/httpapi"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve reports over HTTP",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (default from config, :8090)")
}

func runServe(cmd *cobra.Command, args []string) error {
	e, err := loadEnv()
	if err != nil {
		exitRuntime(err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	gen, err := e.generator(ctx)
	if err != nil {
		exitRuntime(err)
	}
	api := &httpapi.API{Reports: gen, Logger: e.logger, Location: e.loc}

	if addr := e.cfg.Cache.RedisAddr; addr != "" {
		dialCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		c, err := cache.Dial(dialCtx, addr, e.cfg.Cache.TTL())
		cancel()
		if err != nil {
			e.logger.Warn("report cache unavailable, serving uncached", "addr", addr, "err", err)
		} else {
			defer c.Close()
			api.Cache = c
			e.logger.Info("report cache enabled", "addr", addr, "ttl", e.cfg.Cache.TTL())
		}
	}

	addr := serveAddr
	if addr == "" {
		addr = e.cfg.Server.Addr
	}
	srv := &http.Server{
		Addr:              addr,
		Handler:           api.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		e.logger.Info("server listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
		close(errc)
	}()

	select {
	case err := <-errc:
		if err != nil {
			exitRuntime(err)
		}
	case <-ctx.Done():
		e.logger.Info("shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		e.logger.Error("server shutdown error", "err", err)
		os.Exit(2)
	}
	return nil
}
