package persistence

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/kompas/kompas/internal/domain"
	"github.com/kompas/kompas/internal/ports"
)

// objectiveTable maps a scope level onto its table and scope column. Table
// names only ever come from this fixed map, never from caller input.
type objectiveTable struct {
	name        string
	scopeColumn string
}

var objectiveTables = map[domain.Level]objectiveTable{
	domain.LevelGlobal:       {name: "global_objectives"},
	domain.LevelBusinessUnit: {name: "business_unit_objectives", scopeColumn: "business_unit_id"},
	domain.LevelDivision:     {name: "division_objectives", scopeColumn: "division_id"},
	domain.LevelIndividual:   {name: "individual_objectives", scopeColumn: "collaborator_id"},
}

// querier is satisfied by both *sql.DB and *sql.Tx
type querier interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

// PostgresObjectiveRepository implements ObjectiveRepository over the four
// per-scope objective tables
type PostgresObjectiveRepository struct {
	db *sql.DB
	q  querier
}

// NewPostgresObjectiveRepository creates a new PostgreSQL objective repository
func NewPostgresObjectiveRepository(db *sql.DB) ports.ObjectiveRepository {
	return &PostgresObjectiveRepository{db: db, q: db}
}

func tableFor(level domain.Level) (objectiveTable, error) {
	t, ok := objectiveTables[level]
	if !ok {
		return objectiveTable{}, domain.ErrInvalidLevel
	}
	return t, nil
}

// Create saves a new objective at its level
func (r *PostgresObjectiveRepository) Create(ctx context.Context, objective *domain.Objective) error {
	t, err := tableFor(objective.Level)
	if err != nil {
		return err
	}

	columns := "id, objective_type_id, fiscal_year_id, title, target_value, current_value, is_active, created_at, updated_at"
	placeholders := "$1, $2, $3, $4, $5, $6, $7, $8, $9"
	args := []interface{}{
		objective.ID,
		objective.ObjectiveTypeID,
		objective.FiscalYearID,
		objective.Title,
		objective.TargetValue,
		objective.CurrentValue,
		objective.IsActive,
		objective.CreatedAt,
		objective.UpdatedAt,
	}
	if t.scopeColumn != "" {
		columns += ", " + t.scopeColumn
		placeholders += ", $10"
		args = append(args, objective.ScopeID)
	}

	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)", t.name, columns, placeholders)
	if _, err := r.q.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to create %s objective: %w", strings.ToLower(string(objective.Level)), err)
	}

	return nil
}

// FindByID retrieves an objective by level and ID
func (r *PostgresObjectiveRepository) FindByID(ctx context.Context, level domain.Level, id string) (*domain.Objective, error) {
	t, err := tableFor(level)
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf(`
		SELECT id, objective_type_id, fiscal_year_id, title, target_value, current_value, is_active, %s, created_at, updated_at
		FROM %s
		WHERE id = $1
	`, scopeSelect(t), t.name)

	objective, err := scanObjective(r.q.QueryRowContext(ctx, query, id), level)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, domain.ErrObjectiveNotFound
		}
		return nil, fmt.Errorf("failed to find objective: %w", err)
	}

	return objective, nil
}

// Update updates the administered columns of an objective. The running
// current value is deliberately excluded; only IncrementCurrentValue may
// touch it.
func (r *PostgresObjectiveRepository) Update(ctx context.Context, objective *domain.Objective) error {
	t, err := tableFor(objective.Level)
	if err != nil {
		return err
	}

	query := fmt.Sprintf(`
		UPDATE %s
		SET title = $2, target_value = $3, is_active = $4, updated_at = $5
		WHERE id = $1
	`, t.name)

	result, err := r.q.ExecContext(ctx, query,
		objective.ID,
		objective.Title,
		objective.TargetValue,
		objective.IsActive,
		time.Now(),
	)
	if err != nil {
		return fmt.Errorf("failed to update objective: %w", err)
	}

	return requireRow(result)
}

// Deactivate soft-deletes an objective
func (r *PostgresObjectiveRepository) Deactivate(ctx context.Context, level domain.Level, id string) error {
	t, err := tableFor(level)
	if err != nil {
		return err
	}

	query := fmt.Sprintf("UPDATE %s SET is_active = FALSE, updated_at = $1 WHERE id = $2", t.name)
	result, err := r.q.ExecContext(ctx, query, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to deactivate objective: %w", err)
	}

	return requireRow(result)
}

// List retrieves objectives at one level based on filter criteria
func (r *PostgresObjectiveRepository) List(ctx context.Context, level domain.Level, filter domain.ObjectiveFilter) ([]*domain.Objective, error) {
	t, err := tableFor(level)
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf(`
		SELECT id, objective_type_id, fiscal_year_id, title, target_value, current_value, is_active, %s, created_at, updated_at
		FROM %s
		WHERE 1=1
	`, scopeSelect(t), t.name)

	var conditions []string
	var args []interface{}
	argIndex := 1

	if filter.ObjectiveTypeID != nil {
		conditions = append(conditions, fmt.Sprintf("objective_type_id = $%d", argIndex))
		args = append(args, *filter.ObjectiveTypeID)
		argIndex++
	}

	if filter.FiscalYearID != nil {
		conditions = append(conditions, fmt.Sprintf("fiscal_year_id = $%d", argIndex))
		args = append(args, *filter.FiscalYearID)
		argIndex++
	}

	if filter.ScopeID != nil && t.scopeColumn != "" {
		conditions = append(conditions, fmt.Sprintf("%s = $%d", t.scopeColumn, argIndex))
		args = append(args, *filter.ScopeID)
		argIndex++
	}

	if filter.ActiveOnly {
		conditions = append(conditions, "is_active = TRUE")
	}

	if len(conditions) > 0 {
		query += " AND " + strings.Join(conditions, " AND ")
	}

	query += " ORDER BY created_at DESC"

	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", argIndex)
		args = append(args, filter.Limit)
		argIndex++
	}

	if filter.Offset > 0 {
		query += fmt.Sprintf(" OFFSET $%d", argIndex)
		args = append(args, filter.Offset)
	}

	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query objectives: %w", err)
	}
	defer rows.Close()

	return collectObjectives(rows, level)
}

// FindActiveForTracking retrieves the active objectives the tracker should
// increment for one objective type, fiscal year and scope key
func (r *PostgresObjectiveRepository) FindActiveForTracking(ctx context.Context, level domain.Level, objectiveTypeID, fiscalYearID string, scopeID *string) ([]*domain.Objective, error) {
	t, err := tableFor(level)
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf(`
		SELECT id, objective_type_id, fiscal_year_id, title, target_value, current_value, is_active, %s, created_at, updated_at
		FROM %s
		WHERE objective_type_id = $1 AND fiscal_year_id = $2 AND is_active = TRUE
	`, scopeSelect(t), t.name)

	args := []interface{}{objectiveTypeID, fiscalYearID}
	if t.scopeColumn != "" {
		if scopeID == nil {
			return nil, nil
		}
		query += fmt.Sprintf(" AND %s = $3", t.scopeColumn)
		args = append(args, *scopeID)
	}

	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query objectives for tracking: %w", err)
	}
	defer rows.Close()

	return collectObjectives(rows, level)
}

// IncrementCurrentValue adds delta to the running value in a single
// statement and returns the resulting value. Concurrent increments against
// the same row serialize inside the database; the application never reads
// the value back before writing.
func (r *PostgresObjectiveRepository) IncrementCurrentValue(ctx context.Context, level domain.Level, id string, delta float64) (float64, error) {
	t, err := tableFor(level)
	if err != nil {
		return 0, err
	}

	query := fmt.Sprintf(`
		UPDATE %s
		SET current_value = current_value + $1, updated_at = $2
		WHERE id = $3 AND is_active = TRUE
		RETURNING current_value
	`, t.name)

	var newValue float64
	err = r.q.QueryRowContext(ctx, query, delta, time.Now(), id).Scan(&newValue)
	if err != nil {
		if err == sql.ErrNoRows {
			return 0, domain.ErrObjectiveNotFound
		}
		return 0, fmt.Errorf("failed to increment objective: %w", err)
	}

	return newValue, nil
}

// InTx runs fn against a repository bound to one transaction
func (r *PostgresObjectiveRepository) InTx(ctx context.Context, fn func(ports.ObjectiveRepository) error) error {
	if _, alreadyTx := r.q.(*sql.Tx); alreadyTx {
		return fn(r)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	if err := fn(&PostgresObjectiveRepository{db: r.db, q: tx}); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("rollback failed: %v (after: %w)", rbErr, err)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// Helpers

// scopeSelect yields a selectable scope expression; global objectives have
// no scope column so NULL keeps the scan shape uniform.
func scopeSelect(t objectiveTable) string {
	if t.scopeColumn == "" {
		return "NULL"
	}
	return t.scopeColumn
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanObjective(row rowScanner, level domain.Level) (*domain.Objective, error) {
	var objective domain.Objective
	var scopeID sql.NullString

	err := row.Scan(
		&objective.ID,
		&objective.ObjectiveTypeID,
		&objective.FiscalYearID,
		&objective.Title,
		&objective.TargetValue,
		&objective.CurrentValue,
		&objective.IsActive,
		&scopeID,
		&objective.CreatedAt,
		&objective.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	objective.Level = level
	if scopeID.Valid {
		objective.ScopeID = &scopeID.String
	}

	return &objective, nil
}

func collectObjectives(rows *sql.Rows, level domain.Level) ([]*domain.Objective, error) {
	var objectives []*domain.Objective
	for rows.Next() {
		objective, err := scanObjective(rows, level)
		if err != nil {
			return nil, fmt.Errorf("failed to scan objective: %w", err)
		}
		objectives = append(objectives, objective)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating objectives: %w", err)
	}
	return objectives, nil
}

func requireRow(result sql.Result) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return domain.ErrObjectiveNotFound
	}
	return nil
}
