package main

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/polyglotdex/polyglotdex/internal/store"
	"github.com/polyglotdex/polyglotdex/pkg/apierr"
	"github.com/polyglotdex/polyglotdex/pkg/models"
)

type handlers struct {
	store  *store.Store
	logger *slog.Logger
}

func (h *handlers) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *handlers) writeError(w http.ResponseWriter, apiErr *apierr.Error) {
	if apiErr.Status() >= http.StatusInternalServerError {
		h.logger.Error("request failed", slog.String("code", string(apiErr.Code())), slog.Any("error", apiErr))
	}
	writeJSON(w, apiErr.Status(), apiErr.Response())
}

// resolveProject is the shared lookup every route under /projects/{name}
// performs first.
func (h *handlers) resolveProject(w http.ResponseWriter, r *http.Request) (models.Project, bool) {
	name := chi.URLParam(r, "name")
	project, found, err := h.store.GetProjectByName(r.Context(), name)
	if err != nil {
		h.writeError(w, apierr.InternalError(err))
		return models.Project{}, false
	}
	if !found {
		h.writeError(w, apierr.ProjectNotFound())
		return models.Project{}, false
	}
	return project, true
}

func (h *handlers) getProject(w http.ResponseWriter, r *http.Request) {
	project, ok := h.resolveProject(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, project)
}

func (h *handlers) listSymbols(w http.ResponseWriter, r *http.Request) {
	project, ok := h.resolveProject(w, r)
	if !ok {
		return
	}
	symbols, err := h.store.ListSymbolsByProject(r.Context(), project.ID)
	if err != nil {
		h.writeError(w, apierr.InternalError(err))
		return
	}
	writeJSON(w, http.StatusOK, symbols)
}

func (h *handlers) getSymbol(w http.ResponseWriter, r *http.Request) {
	project, ok := h.resolveProject(w, r)
	if !ok {
		return
	}
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		h.writeError(w, apierr.InvalidID("symbol"))
		return
	}
	symbol, found, err := h.store.GetSymbolByID(r.Context(), project.ID, id)
	if err != nil {
		h.writeError(w, apierr.InternalError(err))
		return
	}
	if !found {
		h.writeError(w, apierr.SymbolNotFound())
		return
	}
	writeJSON(w, http.StatusOK, symbol)
}

func (h *handlers) listRelationships(w http.ResponseWriter, r *http.Request) {
	project, ok := h.resolveProject(w, r)
	if !ok {
		return
	}
	rels, err := h.store.ListRelationshipsByProject(r.Context(), project.ID)
	if err != nil {
		h.writeError(w, apierr.InternalError(err))
		return
	}
	writeJSON(w, http.StatusOK, rels)
}

func (h *handlers) getStats(w http.ResponseWriter, r *http.Request) {
	project, ok := h.resolveProject(w, r)
	if !ok {
		return
	}
	stats, err := h.store.ProjectStats(r.Context(), project.ID)
	if err != nil {
		h.writeError(w, apierr.AnalyticsFailed(err))
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
