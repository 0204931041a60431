package persistence

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/kompas/kompas/internal/domain"
	"github.com/kompas/kompas/internal/ports"
)

// PostgresProgressRepository implements the append-only progress log using
// PostgreSQL. Entries are inserted once and never updated or deleted here;
// retention is an external concern.
type PostgresProgressRepository struct {
	db *sql.DB
}

// NewPostgresProgressRepository creates a new PostgreSQL progress repository
func NewPostgresProgressRepository(db *sql.DB) ports.ProgressRepository {
	return &PostgresProgressRepository{db: db}
}

// Create appends one progress entry
func (r *PostgresProgressRepository) Create(ctx context.Context, entry *domain.ProgressEntry) error {
	query := `
		INSERT INTO objective_progress (id, objective_level, objective_id, previous_value, new_value, change_value, source_entity_id, updated_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := r.db.ExecContext(ctx, query,
		entry.ID,
		string(entry.Level),
		entry.ObjectiveID,
		entry.PreviousValue,
		entry.NewValue,
		entry.ChangeValue,
		entry.SourceEntityID,
		entry.UpdatedBy,
		entry.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create progress entry: %w", err)
	}

	return nil
}

// ListByObjective retrieves the most recent entries for one objective
func (r *PostgresProgressRepository) ListByObjective(ctx context.Context, level domain.Level, objectiveID string, limit int) ([]*domain.ProgressEntry, error) {
	query := `
		SELECT id, objective_level, objective_id, previous_value, new_value, change_value, source_entity_id, updated_by, created_at
		FROM objective_progress
		WHERE objective_level = $1 AND objective_id = $2
		ORDER BY created_at DESC
		LIMIT $3
	`

	rows, err := r.db.QueryContext(ctx, query, string(level), objectiveID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query progress entries: %w", err)
	}
	defer rows.Close()

	var entries []*domain.ProgressEntry
	for rows.Next() {
		var entry domain.ProgressEntry
		var updatedBy sql.NullString

		err := rows.Scan(
			&entry.ID,
			&entry.Level,
			&entry.ObjectiveID,
			&entry.PreviousValue,
			&entry.NewValue,
			&entry.ChangeValue,
			&entry.SourceEntityID,
			&updatedBy,
			&entry.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan progress entry: %w", err)
		}

		if updatedBy.Valid {
			entry.UpdatedBy = &updatedBy.String
		}

		entries = append(entries, &entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating progress entries: %w", err)
	}

	return entries, nil
}
