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

// ObjectiveTypeUseCase defines the behavior the handler depends on
type ObjectiveTypeUseCase interface {
	CreateObjectiveType(ctx context.Context, req usecase.CreateObjectiveTypeRequest) (*domain.ObjectiveType, error)
	GetObjectiveType(ctx context.Context, id string) (*domain.ObjectiveType, error)
	ListObjectiveTypes(ctx context.Context, filter domain.ObjectiveTypeFilter) ([]*domain.ObjectiveType, error)
	UpdateObjectiveType(ctx context.Context, id string, req usecase.UpdateObjectiveTypeRequest) (*domain.ObjectiveType, error)
	DeactivateObjectiveType(ctx context.Context, id string) error
}

// ObjectiveTypeHandler handles HTTP requests for objective-type administration
type ObjectiveTypeHandler struct {
	typeUseCase ObjectiveTypeUseCase
	auth        *AuthMiddleware
}

// NewObjectiveTypeHandler creates a new objective-type handler
func NewObjectiveTypeHandler(typeUseCase ObjectiveTypeUseCase, auth *AuthMiddleware) *ObjectiveTypeHandler {
	return &ObjectiveTypeHandler{
		typeUseCase: typeUseCase,
		auth:        auth,
	}
}

// RegisterRoutes registers objective-type routes
func (h *ObjectiveTypeHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/api/v1/objective-types", h.auth.RequireAuth(h.CreateObjectiveType)).Methods("POST")
	router.HandleFunc("/api/v1/objective-types", h.auth.RequireAuth(h.ListObjectiveTypes)).Methods("GET")
	router.HandleFunc("/api/v1/objective-types/{id}", h.auth.RequireAuth(h.GetObjectiveType)).Methods("GET")
	router.HandleFunc("/api/v1/objective-types/{id}", h.auth.RequireAuth(h.UpdateObjectiveType)).Methods("PATCH")
	router.HandleFunc("/api/v1/objective-types/{id}", h.auth.RequireAuth(h.DeactivateObjectiveType)).Methods("DELETE")
}

// CreateObjectiveType handles objective-type creation
func (h *ObjectiveTypeHandler) CreateObjectiveType(w http.ResponseWriter, r *http.Request) {
	var req usecase.CreateObjectiveTypeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErrorResponse(w, http.StatusBadRequest, "invalid_request", "Invalid request body")
		return
	}

	objectiveType, err := h.typeUseCase.CreateObjectiveType(r.Context(), req)
	if err != nil {
		appErr := apperror.MapError(err)
		writeErrorResponse(w, appErr.Status, appErr.Code, err.Error())
		return
	}

	writeSuccessResponse(w, http.StatusCreated, "Objective type created successfully", objectiveType)
}

// GetObjectiveType handles retrieving one objective type
func (h *ObjectiveTypeHandler) GetObjectiveType(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	id := vars["id"]

	if id == "" {
		writeErrorResponse(w, http.StatusBadRequest, "objective_type_id", "Objective type ID is required")
		return
	}

	objectiveType, err := h.typeUseCase.GetObjectiveType(r.Context(), id)
	if err != nil {
		appErr := apperror.MapError(err)
		writeErrorResponse(w, appErr.Status, appErr.Code, appErr.Message)
		return
	}

	writeSuccessResponse(w, http.StatusOK, "Objective type retrieved successfully", objectiveType)
}

// ListObjectiveTypes handles listing objective types
func (h *ObjectiveTypeHandler) ListObjectiveTypes(w http.ResponseWriter, r *http.Request) {
	filter := domain.ObjectiveTypeFilter{}

	if entityType := r.URL.Query().Get("entity_type"); entityType != "" {
		et := domain.EntityType(entityType)
		filter.EntityType = &et
	}
	if category := r.URL.Query().Get("category"); category != "" {
		filter.Category = &category
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

	objectiveTypes, err := h.typeUseCase.ListObjectiveTypes(r.Context(), filter)
	if err != nil {
		writeErrorResponse(w, http.StatusInternalServerError, "internal_error", "Failed to list objective types")
		return
	}

	writeSuccessResponse(w, http.StatusOK, "Objective types retrieved successfully", objectiveTypes)
}

// UpdateObjectiveType handles partial updates to an objective type
func (h *ObjectiveTypeHandler) UpdateObjectiveType(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	id := vars["id"]

	if id == "" {
		writeErrorResponse(w, http.StatusBadRequest, "objective_type_id", "Objective type ID is required")
		return
	}

	var req usecase.UpdateObjectiveTypeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErrorResponse(w, http.StatusBadRequest, "invalid_request", "Invalid request body")
		return
	}

	objectiveType, err := h.typeUseCase.UpdateObjectiveType(r.Context(), id, req)
	if err != nil {
		appErr := apperror.MapError(err)
		writeErrorResponse(w, appErr.Status, appErr.Code, err.Error())
		return
	}

	writeSuccessResponse(w, http.StatusOK, "Objective type updated successfully", objectiveType)
}

// DeactivateObjectiveType handles soft-deleting an objective type
func (h *ObjectiveTypeHandler) DeactivateObjectiveType(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	id := vars["id"]

	if id == "" {
		writeErrorResponse(w, http.StatusBadRequest, "objective_type_id", "Objective type ID is required")
		return
	}

	if err := h.typeUseCase.DeactivateObjectiveType(r.Context(), id); err != nil {
		appErr := apperror.MapError(err)
		writeErrorResponse(w, appErr.Status, appErr.Code, appErr.Message)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
