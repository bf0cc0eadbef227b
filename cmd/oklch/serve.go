package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jsvensson/oklchstudio/internal/config"
	"github.com/jsvensson/oklchstudio/internal/raster"
	"github.com/jsvensson/oklchstudio/internal/server"
	"github.com/jsvensson/oklchstudio/internal/store"
	"github.com/jsvensson/oklchstudio/internal/worker"
	"github.com/spf13/cobra"
)

func (a *app) serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve picker rasters and color conversions over HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return a.runServe(ctx)
		},
	}
	cmd.Flags().String("addr", "127.0.0.1:8080", "listen address (host:port)")
	cmd.Flags().String("cache-db", "", "SQLite raster cache (disabled when empty)")
	cmd.Flags().Int("memo-size", 64, "rasters kept in memory")
	cmd.Flags().Int("width", 256, "default plane width")
	cmd.Flags().Int("height", 256, "default plane height")

	bindFlag(cmd.Flags(), "addr", config.KeyServeAddr)
	bindFlag(cmd.Flags(), "cache-db", config.KeyServeCacheDB)
	bindFlag(cmd.Flags(), "memo-size", config.KeyServeMemo)
	bindFlag(cmd.Flags(), "width", config.KeyRasterWidth)
	bindFlag(cmd.Flags(), "height", config.KeyRasterHeight)
	return cmd
}

func (a *app) runServe(ctx context.Context) error {
	st, err := a.openStore()
	if err != nil {
		return err
	}
	if st != nil {
		defer st.Close()
	}

	memo := raster.NewMemo(a.cfg.Serve.MemoSize, storeOrNil(st))
	srv := server.New(memo, server.Config{
		Width:   a.cfg.Raster.Width,
		Height:  a.cfg.Raster.Height,
		MaxSize: config.MaxRasterSize,
	}).HTTPServer(a.cfg.Serve.Addr)

	errCh := make(chan error, 1)
	go func() {
		log.Noticef("listening on %s", a.cfg.Serve.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Notice("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down: %w", err)
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (a *app) warmCmd() *cobra.Command {
	var quiet bool

	cmd := &cobra.Command{
		Use:   "warm",
		Short: "Pre-render color planes into the raster cache",
		Long: `Renders one plane every warm.step degrees at raster.width x raster.height,
plus the default hue strip, and stores them in serve.cache_db.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if a.cfg.Serve.CacheDB == "" {
				return errors.New("warm needs a cache database; set --cache-db or serve.cache_db")
			}
			st, err := a.openStore()
			if err != nil {
				return err
			}
			defer st.Close()

			tasks := worker.PlaneTasks(a.cfg.Warm.Step, a.cfg.Raster.Width, a.cfg.Raster.Height)
			tasks = append(tasks, worker.Task{Key: raster.StripKey(360, 24)})

			bar := cmd.ErrOrStderr()
			if quiet {
				bar = io.Discard
			}
			progress := worker.NewProgress(bar, len(tasks))

			pool := worker.New(worker.Config{
				Workers:    a.cfg.Warm.Workers,
				Renderer:   worker.StoreRenderer{Store: st},
				OnProgress: progress.Callback(),
			})
			results := pool.Run(cmd.Context(), tasks)
			progress.Done()
			fmt.Fprintln(cmd.OutOrStdout(), progress.Summary())

			for _, r := range results {
				if r.Err != nil {
					return fmt.Errorf("warming %s: %w", r.Task.Key, r.Err)
				}
			}
			return nil
		},
	}
	cmd.Flags().String("cache-db", "", "SQLite raster cache")
	cmd.Flags().Int("workers", 4, "parallel renders")
	cmd.Flags().Float64("step", 15, "hue spacing in degrees")
	cmd.Flags().Int("width", 256, "plane width")
	cmd.Flags().Int("height", 256, "plane height")
	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "no progress bar")

	bindFlag(cmd.Flags(), "cache-db", config.KeyServeCacheDB)
	bindFlag(cmd.Flags(), "workers", config.KeyWarmWorkers)
	bindFlag(cmd.Flags(), "step", config.KeyWarmStep)
	bindFlag(cmd.Flags(), "width", config.KeyRasterWidth)
	bindFlag(cmd.Flags(), "height", config.KeyRasterHeight)
	return cmd
}

// openStore opens the configured raster cache, or returns nil when none is set.
func (a *app) openStore() (*store.Store, error) {
	if a.cfg.Serve.CacheDB == "" {
		return nil, nil
	}
	st, err := store.Open(a.cfg.Serve.CacheDB)
	if err != nil {
		return nil, fmt.Errorf("opening cache: %w", err)
	}
	return st, nil
}

// storeOrNil keeps a nil *store.Store from becoming a non-nil raster.Store.
func storeOrNil(st *store.Store) raster.Store {
	if st == nil {
		return nil
	}
	return st
}
