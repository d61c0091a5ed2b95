package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/fatoora-app/fatoora/internal/domain"
)

// ─── Client Handlers ────────────────────────────────────────────────────────

func (s *Server) handleListClients(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{"clients": s.store.Clients()})
}

// handleImportClients accepts an .xlsx upload, either as a multipart "file"
// part or as the raw request body.
func (s *Server) handleImportClients(w http.ResponseWriter, r *http.Request) {
	if s.importer == nil {
		writeError(w, http.StatusNotImplemented, "no importer configured")
		return
	}

	var src io.Reader = r.Body
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/") {
		file, _, err := r.FormFile("file")
		if err != nil {
			writeError(w, http.StatusBadRequest, "multipart request without a file part")
			return
		}
		defer file.Close()
		src = file
	}

	rows, err := s.importer.ImportClients(src)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	now := time.Now().Format(time.RFC3339)
	batch := make([]domain.Client, 0, len(rows))
	for _, row := range rows {
		batch = append(batch, domain.Client{
			ID:        uuid.NewString(),
			Name:      row.Name,
			Phone:     row.Phone,
			Address:   row.Address,
			CreatedAt: now,
		})
	}
	added, err := s.store.AddClients(batch)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.log.Info().Int("rows", len(rows)).Int("added", added).Msg("client import")
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"imported": len(rows),
		"added":    added,
		"skipped":  len(rows) - added,
	})
}

func (s *Server) handleRenameClient(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	id := chi.URLParam(r, "id")
	if err := s.store.RenameClient(id, req.Name); err != nil {
		switch {
		case errors.Is(err, domain.ErrClientNotFound):
			writeError(w, http.StatusNotFound, err.Error())
		case errors.Is(err, domain.ErrClientExists):
			writeError(w, http.StatusConflict, err.Error())
		default:
			writeError(w, http.StatusInternalServerError, err.Error())
		}
		return
	}
	client, _ := s.store.Client(id)
	writeJSON(w, http.StatusOK, client)
}

// handleDeleteClients removes the listed clients. Historical invoices keep
// their name snapshots; the response names clients that still have exported
// invoices so the editor can warn.
func (s *Server) handleDeleteClients(w http.ResponseWriter, r *http.Request) {
	var req struct {
		IDs []string `json:"ids"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || len(req.IDs) == 0 {
		writeError(w, http.StatusBadRequest, "ids is required")
		return
	}

	var withInvoices []string
	for _, id := range req.IDs {
		if client, ok := s.store.Client(id); ok && s.store.HasFinalInvoices(client.Name) {
			withInvoices = append(withInvoices, client.Name)
		}
	}

	removed, err := s.store.DeleteClients(req.IDs...)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"removed":      len(removed),
		"withInvoices": withInvoices,
	})
}

// ─── Settings Handlers ──────────────────────────────────────────────────────

func (s *Server) handleGetCompany(w http.ResponseWriter, r *http.Request) {
	company, err := s.store.Persister().LoadCompany()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if company == nil {
		writeJSON(w, http.StatusOK, domain.Company{})
		return
	}
	writeJSON(w, http.StatusOK, company)
}

func (s *Server) handleSetCompany(w http.ResponseWriter, r *http.Request) {
	var company domain.Company
	if err := json.NewDecoder(r.Body).Decode(&company); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(company.Name) == "" {
		writeError(w, http.StatusUnprocessableEntity, domain.ErrCompanyNameRequired.Error())
		return
	}
	if err := s.store.Persister().SaveCompany(company); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, company)
}

func (s *Server) handleGetExportFolder(w http.ResponseWriter, r *http.Request) {
	folder, err := s.store.Persister().ExportFolder()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"folder": folder})
}

func (s *Server) handleSetExportFolder(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Folder string `json:"folder"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Folder == "" {
		writeError(w, http.StatusBadRequest, "folder is required")
		return
	}
	if err := s.store.Persister().SetExportFolder(req.Folder); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"folder": req.Folder})
}
