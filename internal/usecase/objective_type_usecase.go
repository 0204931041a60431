package usecase

import (
	"context"
	"fmt"

	"github.com/kompas/kompas/internal/domain"
	"github.com/kompas/kompas/internal/ports"
)

// CreateObjectiveTypeRequest represents the request to create an objective type
type CreateObjectiveTypeRequest struct {
	Code       string            `json:"code" validate:"required"`
	Label      string            `json:"label" validate:"required"`
	Category   string            `json:"category"`
	Unit       domain.Unit       `json:"unit" validate:"required"`
	EntityType domain.EntityType `json:"entity_type" validate:"required"`
	Operation  domain.Operation  `json:"operation" validate:"required"`
	ValueField string            `json:"value_field" validate:"required"`
}

// UpdateObjectiveTypeRequest represents a partial update of an objective type
type UpdateObjectiveTypeRequest struct {
	Label      *string            `json:"label,omitempty"`
	Category   *string            `json:"category,omitempty"`
	Unit       *domain.Unit       `json:"unit,omitempty"`
	EntityType *domain.EntityType `json:"entity_type,omitempty"`
	Operation  *domain.Operation  `json:"operation,omitempty"`
	ValueField *string            `json:"value_field,omitempty"`
	IsActive   *bool              `json:"is_active,omitempty"`
}

// ObjectiveTypeUseCase handles objective-type administration. Every create
// and update passes through the registry's validation gate before touching
// storage, so the tracker only ever reads serviceable configuration.
type ObjectiveTypeUseCase struct {
	registry *domain.Registry
	typeRepo ports.ObjectiveTypeRepository
}

// NewObjectiveTypeUseCase creates a new objective-type use case
func NewObjectiveTypeUseCase(registry *domain.Registry, typeRepo ports.ObjectiveTypeRepository) *ObjectiveTypeUseCase {
	return &ObjectiveTypeUseCase{
		registry: registry,
		typeRepo: typeRepo,
	}
}

// CreateObjectiveType validates and persists a new objective type
func (uc *ObjectiveTypeUseCase) CreateObjectiveType(ctx context.Context, req CreateObjectiveTypeRequest) (*domain.ObjectiveType, error) {
	if req.Code == "" {
		return nil, fmt.Errorf("validation failed: code is required")
	}
	if req.Label == "" {
		return nil, fmt.Errorf("validation failed: label is required")
	}

	if err := uc.registry.Validate(req.EntityType, req.Operation, req.Unit, req.ValueField); err != nil {
		return nil, err
	}

	objectiveType := domain.NewObjectiveType(req.Code, req.Label, req.Category, req.Unit, req.EntityType, req.Operation, req.ValueField)
	if err := uc.typeRepo.Create(ctx, objectiveType); err != nil {
		return nil, fmt.Errorf("failed to create objective type: %w", err)
	}

	return objectiveType, nil
}

// GetObjectiveType retrieves an objective type by ID
func (uc *ObjectiveTypeUseCase) GetObjectiveType(ctx context.Context, id string) (*domain.ObjectiveType, error) {
	if id == "" {
		return nil, fmt.Errorf("objective type ID is required")
	}
	return uc.typeRepo.FindByID(ctx, id)
}

// ListObjectiveTypes retrieves objective types based on filter criteria
func (uc *ObjectiveTypeUseCase) ListObjectiveTypes(ctx context.Context, filter domain.ObjectiveTypeFilter) ([]*domain.ObjectiveType, error) {
	if filter.Limit <= 0 {
		filter.Limit = 50
	}
	if filter.Limit > 200 {
		filter.Limit = 200
	}
	return uc.typeRepo.List(ctx, filter)
}

// UpdateObjectiveType applies a partial update, re-validating the resulting
// entity/operation/unit/value-field combination before persisting
func (uc *ObjectiveTypeUseCase) UpdateObjectiveType(ctx context.Context, id string, req UpdateObjectiveTypeRequest) (*domain.ObjectiveType, error) {
	objectiveType, err := uc.typeRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Label != nil {
		objectiveType.Label = *req.Label
	}
	if req.Category != nil {
		objectiveType.Category = *req.Category
	}
	if req.Unit != nil {
		objectiveType.Unit = *req.Unit
		objectiveType.IsFinancial = *req.Unit == domain.UnitCurrency
	}
	if req.EntityType != nil {
		objectiveType.EntityType = *req.EntityType
	}
	if req.Operation != nil {
		objectiveType.Operation = *req.Operation
	}
	if req.ValueField != nil {
		objectiveType.ValueField = *req.ValueField
	}
	if req.IsActive != nil {
		objectiveType.IsActive = *req.IsActive
	}

	if err := uc.registry.Validate(objectiveType.EntityType, objectiveType.Operation, objectiveType.Unit, objectiveType.ValueField); err != nil {
		return nil, err
	}

	if err := uc.typeRepo.Update(ctx, objectiveType); err != nil {
		return nil, fmt.Errorf("failed to update objective type: %w", err)
	}

	return objectiveType, nil
}

// DeactivateObjectiveType soft-deletes an objective type. Existing
// objectives keep their accumulated values; the tracker simply stops
// matching events against the type.
func (uc *ObjectiveTypeUseCase) DeactivateObjectiveType(ctx context.Context, id string) error {
	if id == "" {
		return fmt.Errorf("objective type ID is required")
	}
	return uc.typeRepo.Deactivate(ctx, id)
}
