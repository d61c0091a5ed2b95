// Package api provides the local HTTP server for Fatoora. The daemon binds
// loopback only; the API is the editor's backend, not a public surface.
package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/fatoora-app/fatoora/internal/app/lifecycle"
	"github.com/fatoora-app/fatoora/internal/domain"
	"github.com/fatoora-app/fatoora/internal/logger"
	"github.com/fatoora-app/fatoora/internal/store"
)

// Version is the daemon version reported by /api/version.
const Version = "0.1.0"

// Server is the Fatoora HTTP API server.
type Server struct {
	ctrl           *lifecycle.Controller
	store          *store.Store
	importer       domain.ClientImporter
	metricsEnabled bool
	log            zerolog.Logger
}

// NewServer creates a new API server.
func NewServer(ctrl *lifecycle.Controller, st *store.Store) *Server {
	return &Server{
		ctrl:  ctrl,
		store: st,
		log:   logger.WithComponent("api"),
	}
}

// EnableMetrics enables the /metrics Prometheus endpoint.
func (s *Server) EnableMetrics() { s.metricsEnabled = true }

// SetImporter sets the spreadsheet client importer.
func (s *Server) SetImporter(imp domain.ClientImporter) { s.importer = imp }

// Handler returns the chi router with all routes mounted.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(time.Minute))
	r.Use(corsMiddleware)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api", func(r chi.Router) {
		r.Get("/status", func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, map[string]string{"status": "Fatoora is running"})
		})
		r.Get("/version", func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, map[string]string{"version": Version})
		})

		// Invoice authoring
		r.Route("/invoices", func(r chi.Router) {
			r.Get("/", s.handleListInvoices)
			r.Post("/new", s.handleStartNew)
			r.Get("/candidate", s.handleGetCandidate)
			r.Put("/candidate", s.handleSetCandidate)
			r.Post("/candidate/cancel", s.handleCancel)
			r.Post("/draft", s.handleCommitDraft)
			r.Post("/final", s.handleCommitFinal)
			r.Get("/{id}", s.handleGetInvoice)
			r.Post("/{id}/edit", s.handleLoadForEdit)
			r.Post("/{id}/resume", s.handleResumeDraft)
		})
		r.Get("/number/next", s.handleNextNumber)
		r.Post("/number/adopt", s.handleAdoptNumber)

		// Client management
		r.Route("/clients", func(r chi.Router) {
			r.Get("/", s.handleListClients)
			r.Post("/import", s.handleImportClients)
			r.Put("/{id}", s.handleRenameClient)
			r.Delete("/", s.handleDeleteClients)
		})

		// Settings
		r.Get("/company", s.handleGetCompany)
		r.Put("/company", s.handleSetCompany)
		r.Get("/export-folder", s.handleGetExportFolder)
		r.Put("/export-folder", s.handleSetExportFolder)
	})

	if s.metricsEnabled {
		r.Handle("/metrics", promhttp.Handler())
	}

	return r
}

// ─── Response Helpers ───────────────────────────────────────────────────────

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]interface{}{
		"error": map[string]interface{}{
			"message": msg,
			"type":    "error",
		},
	})
}

// writeDuplicate writes the 409 payload for a guard refusal: the reason is
// machine-readable so the editor can offer "view conflicting invoice".
func writeDuplicate(w http.ResponseWriter, dup *lifecycle.DuplicateError) {
	body := map[string]interface{}{
		"error": map[string]interface{}{
			"message": dup.Message,
			"type":    "duplicate",
			"reason":  string(dup.Reason),
		},
	}
	if dup.Conflicting != nil {
		body["conflicting"] = dup.Conflicting
	}
	writeJSON(w, http.StatusConflict, body)
}

// corsMiddleware adds CORS headers for the local editor frontend.
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}
