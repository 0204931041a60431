package persistence

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/lib/pq"

	"github.com/kompas/kompas/internal/domain"
	"github.com/kompas/kompas/internal/ports"
)

// PostgresObjectiveTypeRepository implements ObjectiveTypeRepository using PostgreSQL
type PostgresObjectiveTypeRepository struct {
	db *sql.DB
}

// NewPostgresObjectiveTypeRepository creates a new PostgreSQL objective-type repository
func NewPostgresObjectiveTypeRepository(db *sql.DB) ports.ObjectiveTypeRepository {
	return &PostgresObjectiveTypeRepository{db: db}
}

const objectiveTypeColumns = "id, code, label, category, unit, is_financial, entity_type, operation, value_field, is_active, created_at, updated_at"

// Create saves a new objective type
func (r *PostgresObjectiveTypeRepository) Create(ctx context.Context, objectiveType *domain.ObjectiveType) error {
	query := `
		INSERT INTO objective_types (id, code, label, category, unit, is_financial, entity_type, operation, value_field, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`

	_, err := r.db.ExecContext(ctx, query,
		objectiveType.ID,
		objectiveType.Code,
		objectiveType.Label,
		objectiveType.Category,
		string(objectiveType.Unit),
		objectiveType.IsFinancial,
		string(objectiveType.EntityType),
		string(objectiveType.Operation),
		objectiveType.ValueField,
		objectiveType.IsActive,
		objectiveType.CreatedAt,
		objectiveType.UpdatedAt,
	)

	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			return domain.ErrDuplicateCode
		}
		return fmt.Errorf("failed to create objective type: %w", err)
	}

	return nil
}

// FindByID retrieves an objective type by its ID
func (r *PostgresObjectiveTypeRepository) FindByID(ctx context.Context, id string) (*domain.ObjectiveType, error) {
	query := fmt.Sprintf("SELECT %s FROM objective_types WHERE id = $1", objectiveTypeColumns)

	objectiveType, err := scanObjectiveType(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, domain.ErrObjectiveTypeNotFound
		}
		return nil, fmt.Errorf("failed to find objective type: %w", err)
	}

	return objectiveType, nil
}

// Update updates an existing objective type
func (r *PostgresObjectiveTypeRepository) Update(ctx context.Context, objectiveType *domain.ObjectiveType) error {
	query := `
		UPDATE objective_types
		SET label = $2, category = $3, unit = $4, is_financial = $5, entity_type = $6,
			operation = $7, value_field = $8, is_active = $9, updated_at = $10
		WHERE id = $1
	`

	result, err := r.db.ExecContext(ctx, query,
		objectiveType.ID,
		objectiveType.Label,
		objectiveType.Category,
		string(objectiveType.Unit),
		objectiveType.IsFinancial,
		string(objectiveType.EntityType),
		string(objectiveType.Operation),
		objectiveType.ValueField,
		objectiveType.IsActive,
		time.Now(),
	)
	if err != nil {
		return fmt.Errorf("failed to update objective type: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return domain.ErrObjectiveTypeNotFound
	}

	return nil
}

// Deactivate soft-deletes an objective type
func (r *PostgresObjectiveTypeRepository) Deactivate(ctx context.Context, id string) error {
	query := `UPDATE objective_types SET is_active = FALSE, updated_at = $1 WHERE id = $2`

	result, err := r.db.ExecContext(ctx, query, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to deactivate objective type: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return domain.ErrObjectiveTypeNotFound
	}

	return nil
}

// List retrieves objective types based on filter criteria
func (r *PostgresObjectiveTypeRepository) List(ctx context.Context, filter domain.ObjectiveTypeFilter) ([]*domain.ObjectiveType, error) {
	query := fmt.Sprintf("SELECT %s FROM objective_types WHERE 1=1", objectiveTypeColumns)

	var conditions []string
	var args []interface{}
	argIndex := 1

	if filter.EntityType != nil {
		conditions = append(conditions, fmt.Sprintf("entity_type = $%d", argIndex))
		args = append(args, string(*filter.EntityType))
		argIndex++
	}

	if filter.Category != nil {
		conditions = append(conditions, fmt.Sprintf("category = $%d", argIndex))
		args = append(args, *filter.Category)
		argIndex++
	}

	if filter.ActiveOnly {
		conditions = append(conditions, "is_active = TRUE")
	}

	if len(conditions) > 0 {
		query += " AND " + strings.Join(conditions, " AND ")
	}

	query += " ORDER BY code ASC"

	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", argIndex)
		args = append(args, filter.Limit)
		argIndex++
	}

	if filter.Offset > 0 {
		query += fmt.Sprintf(" OFFSET $%d", argIndex)
		args = append(args, filter.Offset)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query objective types: %w", err)
	}
	defer rows.Close()

	return collectObjectiveTypes(rows)
}

// FindActiveByEntityAndOperation retrieves the active objective types
// matching one business event
func (r *PostgresObjectiveTypeRepository) FindActiveByEntityAndOperation(ctx context.Context, entityType domain.EntityType, operation domain.Operation) ([]*domain.ObjectiveType, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM objective_types
		WHERE entity_type = $1 AND operation = $2 AND is_active = TRUE
		ORDER BY code ASC
	`, objectiveTypeColumns)

	rows, err := r.db.QueryContext(ctx, query, string(entityType), string(operation))
	if err != nil {
		return nil, fmt.Errorf("failed to query active objective types: %w", err)
	}
	defer rows.Close()

	return collectObjectiveTypes(rows)
}

// Helpers

func scanObjectiveType(row rowScanner) (*domain.ObjectiveType, error) {
	var objectiveType domain.ObjectiveType

	err := row.Scan(
		&objectiveType.ID,
		&objectiveType.Code,
		&objectiveType.Label,
		&objectiveType.Category,
		&objectiveType.Unit,
		&objectiveType.IsFinancial,
		&objectiveType.EntityType,
		&objectiveType.Operation,
		&objectiveType.ValueField,
		&objectiveType.IsActive,
		&objectiveType.CreatedAt,
		&objectiveType.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	return &objectiveType, nil
}

func collectObjectiveTypes(rows *sql.Rows) ([]*domain.ObjectiveType, error) {
	var objectiveTypes []*domain.ObjectiveType
	for rows.Next() {
		objectiveType, err := scanObjectiveType(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan objective type: %w", err)
		}
		objectiveTypes = append(objectiveTypes, objectiveType)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating objective types: %w", err)
	}
	return objectiveTypes, nil
}
