package usecase

import (
	"context"
	"fmt"

	"github.com/kompas/kompas/internal/domain"
	"github.com/kompas/kompas/internal/ports"
)

// CreateObjectiveRequest represents the request to create an objective at
// one scope level
type CreateObjectiveRequest struct {
	Level           domain.Level `json:"level" validate:"required"`
	ObjectiveTypeID string       `json:"objective_type_id" validate:"required"`
	FiscalYearID    string       `json:"fiscal_year_id" validate:"required"`
	Title           string       `json:"title" validate:"required"`
	TargetValue     float64      `json:"target_value"`
	ScopeID         *string      `json:"scope_id,omitempty"`
}

// UpdateObjectiveRequest represents the administered columns of an
// objective. CurrentValue is deliberately absent: it belongs to the tracker.
type UpdateObjectiveRequest struct {
	Title       *string  `json:"title,omitempty"`
	TargetValue *float64 `json:"target_value,omitempty"`
	IsActive    *bool    `json:"is_active,omitempty"`
}

// ObjectiveUseCase handles administration of the four objective aggregates
// and exposes their progress history
type ObjectiveUseCase struct {
	typeRepo      ports.ObjectiveTypeRepository
	objectiveRepo ports.ObjectiveRepository
	progressRepo  ports.ProgressRepository
}

// NewObjectiveUseCase creates a new objective use case
func NewObjectiveUseCase(
	typeRepo ports.ObjectiveTypeRepository,
	objectiveRepo ports.ObjectiveRepository,
	progressRepo ports.ProgressRepository,
) *ObjectiveUseCase {
	return &ObjectiveUseCase{
		typeRepo:      typeRepo,
		objectiveRepo: objectiveRepo,
		progressRepo:  progressRepo,
	}
}

// CreateObjective creates an objective after checking the scope key matches
// the level and the referenced objective type exists
func (uc *ObjectiveUseCase) CreateObjective(ctx context.Context, req CreateObjectiveRequest) (*domain.Objective, error) {
	if !req.Level.Valid() {
		return nil, domain.ErrInvalidLevel
	}
	if req.Level.RequiresScope() && (req.ScopeID == nil || *req.ScopeID == "") {
		return nil, domain.ErrMissingScope
	}
	if !req.Level.RequiresScope() && req.ScopeID != nil {
		return nil, domain.ErrScopeNotAllowed
	}
	if req.Title == "" {
		return nil, fmt.Errorf("validation failed: title is required")
	}
	if req.FiscalYearID == "" {
		return nil, fmt.Errorf("validation failed: fiscal year is required")
	}

	if _, err := uc.typeRepo.FindByID(ctx, req.ObjectiveTypeID); err != nil {
		return nil, err
	}

	objective := domain.NewObjective(req.Level, req.ObjectiveTypeID, req.FiscalYearID, req.Title, req.TargetValue, req.ScopeID)
	if err := uc.objectiveRepo.Create(ctx, objective); err != nil {
		return nil, fmt.Errorf("failed to create objective: %w", err)
	}

	return objective, nil
}

// GetObjective retrieves an objective by level and ID
func (uc *ObjectiveUseCase) GetObjective(ctx context.Context, level domain.Level, id string) (*domain.Objective, error) {
	if !level.Valid() {
		return nil, domain.ErrInvalidLevel
	}
	if id == "" {
		return nil, fmt.Errorf("objective ID is required")
	}
	return uc.objectiveRepo.FindByID(ctx, level, id)
}

// ListObjectives retrieves objectives at one level
func (uc *ObjectiveUseCase) ListObjectives(ctx context.Context, level domain.Level, filter domain.ObjectiveFilter) ([]*domain.Objective, error) {
	if !level.Valid() {
		return nil, domain.ErrInvalidLevel
	}
	if filter.Limit <= 0 {
		filter.Limit = 50
	}
	if filter.Limit > 200 {
		filter.Limit = 200
	}
	return uc.objectiveRepo.List(ctx, level, filter)
}

// UpdateObjective updates the administered columns of an objective
func (uc *ObjectiveUseCase) UpdateObjective(ctx context.Context, level domain.Level, id string, req UpdateObjectiveRequest) (*domain.Objective, error) {
	objective, err := uc.GetObjective(ctx, level, id)
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		objective.Title = *req.Title
	}
	if req.TargetValue != nil {
		objective.TargetValue = *req.TargetValue
	}
	if req.IsActive != nil {
		objective.IsActive = *req.IsActive
	}

	if err := uc.objectiveRepo.Update(ctx, objective); err != nil {
		return nil, fmt.Errorf("failed to update objective: %w", err)
	}

	return objective, nil
}

// DeactivateObjective soft-deletes an objective
func (uc *ObjectiveUseCase) DeactivateObjective(ctx context.Context, level domain.Level, id string) error {
	if !level.Valid() {
		return domain.ErrInvalidLevel
	}
	if id == "" {
		return fmt.Errorf("objective ID is required")
	}
	return uc.objectiveRepo.Deactivate(ctx, level, id)
}

// GetProgress retrieves the most recent progress entries for an objective
func (uc *ObjectiveUseCase) GetProgress(ctx context.Context, level domain.Level, id string, limit int) ([]*domain.ProgressEntry, error) {
	if !level.Valid() {
		return nil, domain.ErrInvalidLevel
	}
	if _, err := uc.objectiveRepo.FindByID(ctx, level, id); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = 50
	}
	if limit > 500 {
		limit = 500
	}
	return uc.progressRepo.ListByObjective(ctx, level, id, limit)
}
