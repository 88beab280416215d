// Package server exposes the inspection bridge over HTTP: store
// enumeration, SQL execution, typed storage entries, and a change feed.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/storescope/storescope/internal/notifier"
	"github.com/storescope/storescope/pkg/database"
	"github.com/storescope/storescope/pkg/domstorage"
	"golang.org/x/sync/errgroup"
)

// Server is the inspection API server.
type Server struct {
	executor *database.Executor
	storage  *domstorage.Store
	dataDir  string
	port     int
	watch    bool
	logger   *slog.Logger
	notifier *notifier.Notifier
}

// Config holds configuration for the inspection server.
type Config struct {
	Executor *database.Executor
	Storage  *domstorage.Store
	DataDir  string
	Port     int
	Watch    bool
	Logger   *slog.Logger
}

// New creates a new inspection server instance.
func New(cfg Config) *Server {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		executor: cfg.Executor,
		storage:  cfg.Storage,
		dataDir:  cfg.DataDir,
		port:     cfg.Port,
		watch:    cfg.Watch,
		logger:   logger,
		notifier: notifier.New(),
	}
}

// Notifier returns the server's notifier for change events.
func (s *Server) Notifier() *notifier.Notifier {
	return s.notifier
}

// Serve starts the inspection server and blocks until the context is
// cancelled.
func (s *Server) Serve(ctx context.Context) error {
	addr := fmt.Sprintf(":%d", s.port)
	s.logger.Info("starting inspection server", "addr", fmt.Sprintf("http://localhost:%d", s.port))

	eg, egctx := errgroup.WithContext(ctx)

	r := chi.NewMux()
	r.Use(
		middleware.Logger,
		middleware.Recoverer,
		middleware.Compress(5),
	)
	s.routes(r)

	srv := &http.Server{
		Addr:    addr,
		Handler: r,
		BaseContext: func(_ net.Listener) context.Context {
			return egctx
		},
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Watch the data directory for stores appearing or disappearing
	if s.watch {
		eg.Go(func() error {
			return s.watchStores(egctx)
		})
	}

	eg.Go(func() error {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	// Graceful shutdown
	eg.Go(func() error {
		<-egctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		s.logger.Debug("shutting down inspection server...")
		return srv.Shutdown(shutdownCtx)
	})

	return eg.Wait()
}

// watchStores watches the data directory and tells subscribers to re-query
// the store list when files come or go.
func (s *Server) watchStores(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer func() { _ = watcher.Close() }()

	if err := watcher.Add(s.dataDir); err != nil {
		s.logger.Error("failed to watch data directory", "dir", s.dataDir, "error", err)
		// Don't fail - continue without watching
		<-ctx.Done()
		return nil
	}

	// Debounce timer
	var debounceTimer *time.Timer

	for {
		select {
		case <-ctx.Done():
			return nil

		case event := <-watcher.Events:
			if event.Op&(fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}

			// Debounce
			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			debounceTimer = time.AfterFunc(100*time.Millisecond, func() {
				s.logger.Debug("store listing changed", "file", event.Name)
				s.notifier.Broadcast(notifier.Event{Action: notifier.ActionStoresChanged})
			})

		case err := <-watcher.Errors:
			s.logger.Error("watcher error", "error", err)
		}
	}
}
