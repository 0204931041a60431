package http

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/kompas/kompas/internal/domain"
	"github.com/kompas/kompas/internal/usecase"
	apperror "github.com/kompas/kompas/pkg/error"
)

// ObjectiveAdminUseCase defines the behavior the handler depends on
type ObjectiveAdminUseCase interface {
	CreateObjective(ctx context.Context, req usecase.CreateObjectiveRequest) (*domain.Objective, error)
	GetObjective(ctx context.Context, level domain.Level, id string) (*domain.Objective, error)
	ListObjectives(ctx context.Context, level domain.Level, filter domain.ObjectiveFilter) ([]*domain.Objective, error)
	UpdateObjective(ctx context.Context, level domain.Level, id string, req usecase.UpdateObjectiveRequest) (*domain.Objective, error)
	DeactivateObjective(ctx context.Context, level domain.Level, id string) error
	GetProgress(ctx context.Context, level domain.Level, id string, limit int) ([]*domain.ProgressEntry, error)
}

// levelSlugs maps URL path segments onto scope levels
var levelSlugs = map[string]domain.Level{
	"global":        domain.LevelGlobal,
	"business-unit": domain.LevelBusinessUnit,
	"division":      domain.LevelDivision,
	"individual":    domain.LevelIndividual,
}

// ObjectiveHandler handles HTTP requests for objective administration
type ObjectiveHandler struct {
	objectiveUseCase ObjectiveAdminUseCase
	auth             *AuthMiddleware
}

// NewObjectiveHandler creates a new objective handler
func NewObjectiveHandler(objectiveUseCase ObjectiveAdminUseCase, auth *AuthMiddleware) *ObjectiveHandler {
	return &ObjectiveHandler{
		objectiveUseCase: objectiveUseCase,
		auth:             auth,
	}
}

// RegisterRoutes registers objective routes
func (h *ObjectiveHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/api/v1/objectives/{level}", h.auth.RequireAuth(h.CreateObjective)).Methods("POST")
	router.HandleFunc("/api/v1/objectives/{level}", h.auth.RequireAuth(h.ListObjectives)).Methods("GET")
	router.HandleFunc("/api/v1/objectives/{level}/{id}", h.auth.RequireAuth(h.GetObjective)).Methods("GET")
	router.HandleFunc("/api/v1/objectives/{level}/{id}", h.auth.RequireAuth(h.UpdateObjective)).Methods("PATCH")
	router.HandleFunc("/api/v1/objectives/{level}/{id}", h.auth.RequireAuth(h.DeactivateObjective)).Methods("DELETE")
	router.HandleFunc("/api/v1/objectives/{level}/{id}/progress", h.auth.RequireAuth(h.GetProgress)).Methods("GET")
}

func levelFromRequest(r *http.Request) (domain.Level, bool) {
	level, ok := levelSlugs[mux.Vars(r)["level"]]
	return level, ok
}

// CreateObjective handles objective creation at one scope level
func (h *ObjectiveHandler) CreateObjective(w http.ResponseWriter, r *http.Request) {
	level, ok := levelFromRequest(r)
	if !ok {
		writeErrorResponse(w, http.StatusBadRequest, "invalid_level", "Unknown objective level")
		return
	}

	var req usecase.CreateObjectiveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErrorResponse(w, http.StatusBadRequest, "invalid_request", "Invalid request body")
		return
	}
	req.Level = level

	objective, err := h.objectiveUseCase.CreateObjective(r.Context(), req)
	if err != nil {
		appErr := apperror.MapError(err)
		writeErrorResponse(w, appErr.Status, appErr.Code, err.Error())
		return
	}

	writeSuccessResponse(w, http.StatusCreated, "Objective created successfully", objective)
}

// GetObjective handles retrieving one objective
func (h *ObjectiveHandler) GetObjective(w http.ResponseWriter, r *http.Request) {
	level, ok := levelFromRequest(r)
	if !ok {
		writeErrorResponse(w, http.StatusBadRequest, "invalid_level", "Unknown objective level")
		return
	}
	id := mux.Vars(r)["id"]

	objective, err := h.objectiveUseCase.GetObjective(r.Context(), level, id)
	if err != nil {
		appErr := apperror.MapError(err)
		writeErrorResponse(w, appErr.Status, appErr.Code, appErr.Message)
		return
	}

	writeSuccessResponse(w, http.StatusOK, "Objective retrieved successfully", objective)
}

// ListObjectives handles listing objectives at one level
func (h *ObjectiveHandler) ListObjectives(w http.ResponseWriter, r *http.Request) {
	level, ok := levelFromRequest(r)
	if !ok {
		writeErrorResponse(w, http.StatusBadRequest, "invalid_level", "Unknown objective level")
		return
	}

	filter := domain.ObjectiveFilter{}

	if typeID := r.URL.Query().Get("objective_type_id"); typeID != "" {
		filter.ObjectiveTypeID = &typeID
	}
	if fiscalYearID := r.URL.Query().Get("fiscal_year_id"); fiscalYearID != "" {
		filter.FiscalYearID = &fiscalYearID
	}
	if scopeID := r.URL.Query().Get("scope_id"); scopeID != "" {
		filter.ScopeID = &scopeID
	}
	if active := r.URL.Query().Get("active"); active == "true" {
		filter.ActiveOnly = true
	}
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if limit, err := strconv.Atoi(limitStr); err == nil && limit > 0 {
			filter.Limit = limit
		}
	}
	if offsetStr := r.URL.Query().Get("offset"); offsetStr != "" {
		if offset, err := strconv.Atoi(offsetStr); err == nil && offset > 0 {
			filter.Offset = offset
		}
	}

	objectives, err := h.objectiveUseCase.ListObjectives(r.Context(), level, filter)
	if err != nil {
		writeErrorResponse(w, http.StatusInternalServerError, "internal_error", "Failed to list objectives")
		return
	}

	writeSuccessResponse(w, http.StatusOK, "Objectives retrieved successfully", objectives)
}

// UpdateObjective handles updates to the administered columns of an objective
func (h *ObjectiveHandler) UpdateObjective(w http.ResponseWriter, r *http.Request) {
	level, ok := levelFromRequest(r)
	if !ok {
		writeErrorResponse(w, http.StatusBadRequest, "invalid_level", "Unknown objective level")
		return
	}
	id := mux.Vars(r)["id"]

	var req usecase.UpdateObjectiveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErrorResponse(w, http.StatusBadRequest, "invalid_request", "Invalid request body")
		return
	}

	objective, err := h.objectiveUseCase.UpdateObjective(r.Context(), level, id, req)
	if err != nil {
		appErr := apperror.MapError(err)
		writeErrorResponse(w, appErr.Status, appErr.Code, appErr.Message)
		return
	}

	writeSuccessResponse(w, http.StatusOK, "Objective updated successfully", objective)
}

// DeactivateObjective handles soft-deleting an objective
func (h *ObjectiveHandler) DeactivateObjective(w http.ResponseWriter, r *http.Request) {
	level, ok := levelFromRequest(r)
	if !ok {
		writeErrorResponse(w, http.StatusBadRequest, "invalid_level", "Unknown objective level")
		return
	}
	id := mux.Vars(r)["id"]

	if err := h.objectiveUseCase.DeactivateObjective(r.Context(), level, id); err != nil {
		appErr := apperror.MapError(err)
		writeErrorResponse(w, appErr.Status, appErr.Code, appErr.Message)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// GetProgress handles retrieving the progress history of an objective
func (h *ObjectiveHandler) GetProgress(w http.ResponseWriter, r *http.Request) {
	level, ok := levelFromRequest(r)
	if !ok {
		writeErrorResponse(w, http.StatusBadRequest, "invalid_level", "Unknown objective level")
		return
	}
	id := mux.Vars(r)["id"]

	limit := 0
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil && l > 0 {
			limit = l
		}
	}

	entries, err := h.objectiveUseCase.GetProgress(r.Context(), level, id, limit)
	if err != nil {
		appErr := apperror.MapError(err)
		writeErrorResponse(w, appErr.Status, appErr.Code, appErr.Message)
		return
	}

	writeSuccessResponse(w, http.StatusOK, "Progress retrieved successfully", entries)
}
