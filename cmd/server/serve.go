package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/gyaneshwarpardhi/rxndiagram/internal/api"
	"github.com/gyaneshwarpardhi/rxndiagram/internal/codec"
	"github.com/gyaneshwarpardhi/rxndiagram/internal/command"
	"github.com/gyaneshwarpardhi/rxndiagram/internal/config"
	"github.com/gyaneshwarpardhi/rxndiagram/internal/logging"
	"github.com/gyaneshwarpardhi/rxndiagram/internal/session"
	"github.com/gyaneshwarpardhi/rxndiagram/internal/store/sqlite"
)

func newServeCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the document HTTP API (default)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, opts)
		},
	}
}

func runServe(cmd *cobra.Command, opts *rootOptions) error {
	loader, log, err := loadConfig(opts)
	if err != nil {
		return err
	}
	cfg := loader.Config()
	log.Info("config loaded",
		logging.String("path", loader.Path()),
		logging.String("addr", cfg.Server.Addr),
		logging.String("version", Version))

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// ── Store ────────────────────────────────────────────────────────────────
	var store api.Store
	if cfg.Store.Path != "" {
		s, err := sqlite.New(cfg.Store.Path)
		if err != nil {
			return fmt.Errorf("open store: %w", err)
		}
		defer s.Close()
		store = s
		log.Info("store opened", logging.String("path", cfg.Store.Path))
	}

	// ── Documents ────────────────────────────────────────────────────────────
	workerCtx, cancelWorkers := context.WithCancel(context.Background())
	defer cancelWorkers()
	docs := session.NewManager(workerCtx, command.NewBuiltinRegistry(), cfg.Editor, log.Named("session"))
	defer docs.Shutdown()
	if err := seedDocuments(docs, cfg.Documents); err != nil {
		return err
	}

	// ── Hot-reload watcher ───────────────────────────────────────────────────
	loader.OnChange(func(newCfg *config.Config) {
		if opts.logLevel == "" {
			log.SetLevel(newCfg.Log.Level)
		}
		docs.SetHistoryLimit(ctx, newCfg.Editor.HistoryLimit)
		log.Info("config hot-reloaded",
			logging.String("log_level", newCfg.Log.Level),
			logging.Int("history_limit", newCfg.Editor.HistoryLimit))
	})
	stopWatch, err := loader.Watch()
	if err != nil {
		log.Warn("config watcher unavailable (hot-reload disabled)", logging.Err(err))
	} else {
		defer stopWatch()
	}

	// ── HTTP server ──────────────────────────────────────────────────────────
	srv := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      api.New(docs, store, log),
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeoutMs) * time.Millisecond,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeoutMs) * time.Millisecond,
		IdleTimeout:  60 * time.Second,
	}
	errC := make(chan error, 1)
	go func() {
		log.Info("server starting", logging.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errC <- err
		}
		close(errC)
	}()

	select {
	case err := <-errC:
		return fmt.Errorf("server: %w", err)
	case <-ctx.Done():
	}

	// ── Graceful shutdown ────────────────────────────────────────────────────
	log.Info("shutting down")
	shutCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Server.ShutdownTimeoutMs)*time.Millisecond)
	defer cancel()
	if err := srv.Shutdown(shutCtx); err != nil {
		log.Warn("http shutdown incomplete", logging.Err(err))
	}
	log.Info("goodbye")
	return nil
}

// seedDocuments opens the documents listed in the config.
func seedDocuments(docs *session.Manager, refs []config.DocumentRef) error {
	for _, ref := range refs {
		snap, err := codec.ReadFile(ref.Path)
		if err != nil {
			return fmt.Errorf("seed document %s: %w", ref.ID, err)
		}
		if ref.ID != "" {
			snap.ID = ref.ID
		}
		if _, err := docs.Open(snap); err != nil {
			return fmt.Errorf("seed document %s: %w", ref.Path, err)
		}
	}
	return nil
}
