package http

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/kompas/kompas/internal/domain"
)

// EventTrackerUseCase defines the behavior the handler depends on.
// Using an interface here makes the handler easily testable with mocks.
type EventTrackerUseCase interface {
	TrackEvent(ctx context.Context, event domain.BusinessEvent) (domain.TrackResult, error)
}

// TrackEventRequest is the payload entity modules send after committing
// their own mutation
type TrackEventRequest struct {
	EntityType   string                 `json:"entity_type"`
	Operation    string                 `json:"operation"`
	Record       map[string]interface{} `json:"record"`
	FiscalYearID string                 `json:"fiscal_year_id"`
}

// EventHandler handles business-event intake
type EventHandler struct {
	trackerUseCase EventTrackerUseCase
}

// NewEventHandler creates a new event handler
func NewEventHandler(trackerUseCase EventTrackerUseCase) *EventHandler {
	return &EventHandler{trackerUseCase: trackerUseCase}
}

// RegisterRoutes registers event routes
func (h *EventHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/api/v1/events", h.TrackEvent).Methods("POST")
}

// TrackEvent handles one committed business event. Failures past the
// configuration lookup degrade to skips inside the tracker, so callers
// treating this as fire-and-forget still get their counters.
func (h *EventHandler) TrackEvent(w http.ResponseWriter, r *http.Request) {
	var req TrackEventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErrorResponse(w, http.StatusBadRequest, "invalid_request", "Invalid request body")
		return
	}

	if req.EntityType == "" {
		writeErrorResponse(w, http.StatusBadRequest, "entity_type", "Entity type is required")
		return
	}
	if req.Operation == "" {
		writeErrorResponse(w, http.StatusBadRequest, "operation", "Operation is required")
		return
	}
	if req.FiscalYearID == "" {
		writeErrorResponse(w, http.StatusBadRequest, "fiscal_year_id", "Fiscal year is required")
		return
	}
	if req.Record == nil {
		req.Record = map[string]interface{}{}
	}

	event := domain.BusinessEvent{
		EntityType:   domain.EntityType(req.EntityType),
		Operation:    domain.Operation(req.Operation),
		Record:       req.Record,
		FiscalYearID: req.FiscalYearID,
	}

	result, err := h.trackerUseCase.TrackEvent(r.Context(), event)
	if err != nil {
		writeErrorResponse(w, http.StatusInternalServerError, "tracking_failed", "Failed to track event")
		return
	}

	writeSuccessResponse(w, http.StatusOK, "Event tracked", result)
}
