package http

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/kompas/kompas/internal/domain"
)

// RegistryHandler exposes the static entity-operation configuration,
// feeding the admin interface's dropdowns
type RegistryHandler struct {
	registry *domain.Registry
	auth     *AuthMiddleware
}

// NewRegistryHandler creates a new registry handler
func NewRegistryHandler(registry *domain.Registry, auth *AuthMiddleware) *RegistryHandler {
	return &RegistryHandler{
		registry: registry,
		auth:     auth,
	}
}

// RegisterRoutes registers registry routes
func (h *RegistryHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/api/v1/registry/entities", h.auth.RequireAuth(h.ListEntities)).Methods("GET")
	router.HandleFunc("/api/v1/registry/entities/{type}/operations", h.auth.RequireAuth(h.ListOperations)).Methods("GET")
	router.HandleFunc("/api/v1/registry/entities/{type}/value-fields", h.auth.RequireAuth(h.ListValueFields)).Methods("GET")
}

// ListEntities handles listing the declared entity types
func (h *RegistryHandler) ListEntities(w http.ResponseWriter, r *http.Request) {
	writeSuccessResponse(w, http.StatusOK, "Entities retrieved successfully", h.registry.Entities())
}

// ListOperations handles listing the operations of one entity type
func (h *RegistryHandler) ListOperations(w http.ResponseWriter, r *http.Request) {
	entityType := domain.EntityType(mux.Vars(r)["type"])

	operations := h.registry.OperationsFor(entityType)
	if operations == nil {
		writeErrorResponse(w, http.StatusNotFound, "unknown_entity", "Unknown entity type")
		return
	}

	writeSuccessResponse(w, http.StatusOK, "Operations retrieved successfully", operations)
}

// ListValueFields handles listing the unit-compatible value fields of one
// entity type
func (h *RegistryHandler) ListValueFields(w http.ResponseWriter, r *http.Request) {
	entityType := domain.EntityType(mux.Vars(r)["type"])

	unit := domain.Unit(r.URL.Query().Get("unit"))
	if unit == "" {
		writeErrorResponse(w, http.StatusBadRequest, "unit", "Unit query parameter is required")
		return
	}

	if _, ok := h.registry.ContextFieldsFor(entityType); !ok {
		writeErrorResponse(w, http.StatusNotFound, "unknown_entity", "Unknown entity type")
		return
	}

	fields := h.registry.ValueFieldsFor(entityType, unit)
	writeSuccessResponse(w, http.StatusOK, "Value fields retrieved successfully", fields)
}
