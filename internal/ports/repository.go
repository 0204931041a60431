package ports

import (
	"context"

	"github.com/kompas/kompas/internal/domain"
)

// ObjectiveTypeRepository defines the interface for objective-type persistence
type ObjectiveTypeRepository interface {
	// Create saves a new objective type
	Create(ctx context.Context, objectiveType *domain.ObjectiveType) error

	// FindByID retrieves an objective type by its ID
	FindByID(ctx context.Context, id string) (*domain.ObjectiveType, error)

	// Update updates an existing objective type
	Update(ctx context.Context, objectiveType *domain.ObjectiveType) error

	// Deactivate soft-deletes an objective type by flipping is_active
	Deactivate(ctx context.Context, id string) error

	// List retrieves objective types based on filter criteria
	List(ctx context.Context, filter domain.ObjectiveTypeFilter) ([]*domain.ObjectiveType, error)

	// FindActiveByEntityAndOperation retrieves the active objective types
	// matching one business event. Called exactly once per tracked event.
	FindActiveByEntityAndOperation(ctx context.Context, entityType domain.EntityType, operation domain.Operation) ([]*domain.ObjectiveType, error)
}

// ObjectiveRepository defines the interface for objective persistence across
// the four scope levels
type ObjectiveRepository interface {
	// Create saves a new objective at its level
	Create(ctx context.Context, objective *domain.Objective) error

	// FindByID retrieves an objective by level and ID
	FindByID(ctx context.Context, level domain.Level, id string) (*domain.Objective, error)

	// Update updates the administered columns of an objective (title,
	// target value, active flag). CurrentValue is never written here.
	Update(ctx context.Context, objective *domain.Objective) error

	// Deactivate soft-deletes an objective
	Deactivate(ctx context.Context, level domain.Level, id string) error

	// List retrieves objectives at one level based on filter criteria
	List(ctx context.Context, level domain.Level, filter domain.ObjectiveFilter) ([]*domain.Objective, error)

	// FindActiveForTracking retrieves the active objectives at one level for
	// an objective type and fiscal year, optionally matched on a scope key.
	FindActiveForTracking(ctx context.Context, level domain.Level, objectiveTypeID, fiscalYearID string, scopeID *string) ([]*domain.Objective, error)

	// IncrementCurrentValue atomically adds delta to an objective's current
	// value and returns the resulting value. Implementations must issue a
	// single increment-and-return statement so concurrent increments against
	// the same row never lose an update.
	IncrementCurrentValue(ctx context.Context, level domain.Level, id string, delta float64) (float64, error)

	// InTx runs fn against a repository bound to a single transaction,
	// committing on nil and rolling back on error.
	InTx(ctx context.Context, fn func(ObjectiveRepository) error) error
}

// ProgressRepository defines the interface for the append-only progress log
type ProgressRepository interface {
	// Create appends one progress entry
	Create(ctx context.Context, entry *domain.ProgressEntry) error

	// ListByObjective retrieves the most recent entries for one objective
	ListByObjective(ctx context.Context, level domain.Level, objectiveID string, limit int) ([]*domain.ProgressEntry, error)
}
