package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/fatoora-app/fatoora/internal/app/lifecycle"
	"github.com/fatoora-app/fatoora/internal/domain"
)

// ─── Invoice Handlers ───────────────────────────────────────────────────────

func (s *Server) handleListInvoices(w http.ResponseWriter, r *http.Request) {
	var list []domain.Invoice
	switch r.URL.Query().Get("status") {
	case "final":
		list = s.store.FinalInvoices()
	case "":
		list = s.store.Invoices()
	default:
		writeError(w, http.StatusBadRequest, "status must be empty or \"final\"")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"invoices": list})
}

func (s *Server) handleGetInvoice(w http.ResponseWriter, r *http.Request) {
	inv, ok := s.store.Invoice(chi.URLParam(r, "id"))
	if !ok {
		writeError(w, http.StatusNotFound, domain.ErrInvoiceNotFound.Error())
		return
	}
	writeJSON(w, http.StatusOK, inv)
}

func (s *Server) handleStartNew(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.ctrl.StartNew())
}

func (s *Server) handleGetCandidate(w http.ResponseWriter, r *http.Request) {
	inv, ok := s.ctrl.Candidate()
	if !ok {
		writeError(w, http.StatusNotFound, domain.ErrNoCandidate.Error())
		return
	}
	writeJSON(w, http.StatusOK, inv)
}

func (s *Server) handleSetCandidate(w http.ResponseWriter, r *http.Request) {
	var in lifecycle.Input
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	inv, err := s.ctrl.SetCandidate(in)
	if err != nil {
		if errors.Is(err, domain.ErrNoCandidate) {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, inv)
}

func (s *Server) handleCancel(w http.ResponseWriter, r *http.Request) {
	s.ctrl.Cancel()
	writeJSON(w, http.StatusOK, map[string]string{"status": "cancelled"})
}

func (s *Server) handleCommitDraft(w http.ResponseWriter, r *http.Request) {
	inv, err := s.ctrl.CommitDraft()
	if err != nil {
		s.writeCommitError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, inv)
}

func (s *Server) handleCommitFinal(w http.ResponseWriter, r *http.Request) {
	inv, err := s.ctrl.CommitFinal()
	if err != nil {
		if errors.Is(err, domain.ErrCancelled) {
			// The editor keeps the form; nothing was written.
			writeJSON(w, http.StatusOK, map[string]string{"status": "cancelled"})
			return
		}
		s.writeCommitError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, inv)
}

func (s *Server) handleLoadForEdit(w http.ResponseWriter, r *http.Request) {
	inv, err := s.ctrl.LoadForEdit(chi.URLParam(r, "id"))
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvoiceNotFound):
			writeError(w, http.StatusNotFound, err.Error())
		case errors.Is(err, domain.ErrNotFinal):
			writeError(w, http.StatusConflict, err.Error())
		default:
			writeError(w, http.StatusInternalServerError, err.Error())
		}
		return
	}
	writeJSON(w, http.StatusOK, inv)
}

func (s *Server) handleResumeDraft(w http.ResponseWriter, r *http.Request) {
	inv, err := s.ctrl.ResumeDraft(chi.URLParam(r, "id"))
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvoiceNotFound):
			writeError(w, http.StatusNotFound, err.Error())
		case errors.Is(err, domain.ErrNotDraft):
			writeError(w, http.StatusConflict, err.Error())
		default:
			writeError(w, http.StatusInternalServerError, err.Error())
		}
		return
	}
	writeJSON(w, http.StatusOK, inv)
}

// handleNextNumber previews the next number for the current month without
// claiming it.
func (s *Server) handleNextNumber(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"invoiceNo": s.ctrl.Allocator().Format(),
	})
}

func (s *Server) handleAdoptNumber(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Value string `json:"value"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	adopted := s.ctrl.AdoptManualNumber(req.Value)
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"value":   req.Value,
		"adopted": adopted,
	})
}

// writeCommitError maps commit failures: guard refusals get 409 with the
// reason, validation failures 422, everything else 500.
func (s *Server) writeCommitError(w http.ResponseWriter, err error) {
	var dup *lifecycle.DuplicateError
	switch {
	case errors.As(err, &dup):
		writeDuplicate(w, dup)
	case errors.Is(err, domain.ErrNoCandidate):
		writeError(w, http.StatusNotFound, err.Error())
	case isValidation(err):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	default:
		s.log.Error().Err(err).Msg("commit failed")
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

func isValidation(err error) bool {
	for _, sentinel := range []error{
		domain.ErrCompanyNameRequired,
		domain.ErrClientRequired,
		domain.ErrTRNRequired,
		domain.ErrTRNNotNumeric,
		domain.ErrTRNLength,
		domain.ErrNoBillableItem,
	} {
		if errors.Is(err, sentinel) {
			return true
		}
	}
	return false
}
