// Package daemon wires storage, the lifecycle controller, and the HTTP API
// into the long-running local process.
package daemon

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"

	"github.com/fatoora-app/fatoora/internal/api"
	"github.com/fatoora-app/fatoora/internal/app/lifecycle"
	"github.com/fatoora-app/fatoora/internal/infra/importer"
	"github.com/fatoora-app/fatoora/internal/infra/observability"
	"github.com/fatoora-app/fatoora/internal/infra/render"
	"github.com/fatoora-app/fatoora/internal/infra/sqlite"
	"github.com/fatoora-app/fatoora/internal/logger"
	"github.com/fatoora-app/fatoora/internal/store"
)

// Daemon is the assembled application.
type Daemon struct {
	cfg    Config
	db     *sqlite.DB
	store  *store.Store
	ctrl   *lifecycle.Controller
	server *api.Server
	log    zerolog.Logger

	autosave time.Duration
}

// New opens storage and wires the application from cfg.
func New(cfg Config) (*Daemon, error) {
	if err := os.MkdirAll(filepath.Dir(cfg.Storage.Path), 0o755); err != nil {
		return nil, fmt.Errorf("create state directory: %w", err)
	}
	db, err := sqlite.Open(cfg.Storage.Path)
	if err != nil {
		return nil, err
	}

	st := store.New(sqlite.NewPersister(db))
	if err := st.Load(); err != nil {
		db.Close()
		return nil, fmt.Errorf("load state: %w", err)
	}

	// The saved folder preference wins over the configured default, and is
	// re-read on every export so a change applies without a restart.
	exportDir := func() string {
		if saved, err := st.Persister().ExportFolder(); err == nil && saved != "" {
			return saved
		}
		return cfg.Storage.ExportDir
	}

	metrics := observability.New(nil)
	ctrl := lifecycle.New(st, lifecycle.Options{
		Renderer:  render.NewPDFRenderer(),
		Artifacts: render.NewResolvedDirStore(exportDir),
		FileName: func(client, invoiceNo string) string {
			return render.FileName(client, invoiceNo, time.Now())
		},
		Metrics:  metrics,
		VATRate:  cfg.Invoice.VATRate,
		Currency: cfg.Invoice.Currency,
		DueDays:  cfg.Invoice.DueDays,
	})

	// The counter is authoritative only while running; on boot it is
	// re-derived from the stored invoices of the current month.
	ctrl.Allocator().Recover()
	metrics.SetCounter(st.Counter())

	server := api.NewServer(ctrl, st)
	server.SetImporter(importer.NewExcel())
	if cfg.API.Metrics {
		server.EnableMetrics()
	}

	var autosave time.Duration
	if cfg.Invoice.AutosaveInterval != "" {
		autosave, err = time.ParseDuration(cfg.Invoice.AutosaveInterval)
		if err != nil {
			db.Close()
			return nil, fmt.Errorf("parse autosave_interval: %w", err)
		}
	}

	return &Daemon{
		cfg:      cfg,
		db:       db,
		store:    st,
		ctrl:     ctrl,
		server:   server,
		log:      logger.WithComponent("daemon"),
		autosave: autosave,
	}, nil
}

// Controller exposes the lifecycle controller (used by the CLI).
func (d *Daemon) Controller() *lifecycle.Controller { return d.ctrl }

// Store exposes the record store (used by the CLI).
func (d *Daemon) Store() *store.Store { return d.store }

// Close releases storage.
func (d *Daemon) Close() error { return d.db.Close() }

// Run serves the API until ctx is cancelled, running the autosave ticker
// alongside. Shutdown drains in-flight requests.
func (d *Daemon) Run(ctx context.Context) error {
	addr := fmt.Sprintf("%s:%d", d.cfg.API.Host, d.cfg.API.Port)
	httpServer := &http.Server{
		Addr:    addr,
		Handler: d.server.Handler(),
	}

	if d.autosave > 0 {
		go d.autosaveLoop(ctx)
	}

	errCh := make(chan error, 1)
	go func() {
		d.log.Info().Str("addr", addr).Msg("api listening")
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	d.log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return nil
}

func (d *Daemon) autosaveLoop(ctx context.Context) {
	ticker := time.NewTicker(d.autosave)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			saved, err := d.ctrl.AutoSave()
			if err != nil {
				d.log.Error().Err(err).Msg("autosave failed")
				continue
			}
			if saved {
				d.log.Debug().Msg("autosave")
			}
		}
	}
}
