package domain

import (
	"time"

	"github.com/google/uuid"
)

// Unit represents the measurement unit of an objective type
type Unit string

const (
	UnitCurrency   Unit = "CURRENCY"
	UnitCount      Unit = "COUNT"
	UnitPercentage Unit = "PERCENTAGE"
	UnitDuration   Unit = "DURATION"
)

// Level represents the organizational scope an objective is tracked at
type Level string

const (
	LevelGlobal       Level = "GLOBAL"
	LevelBusinessUnit Level = "BUSINESS_UNIT"
	LevelDivision     Level = "DIVISION"
	LevelIndividual   Level = "INDIVIDUAL"
)

// Levels lists every scope, broadest first
func Levels() []Level {
	return []Level{LevelGlobal, LevelBusinessUnit, LevelDivision, LevelIndividual}
}

// ObjectiveType binds a human-facing metric to one entity type, one
// operation, one value field and one unit. The tracker only ever reads
// active entries; validity against the registry is enforced at write time.
type ObjectiveType struct {
	ID          string     `json:"id"`
	Code        string     `json:"code"`
	Label       string     `json:"label"`
	Category    string     `json:"category"`
	Unit        Unit       `json:"unit"`
	IsFinancial bool       `json:"is_financial"`
	EntityType  EntityType `json:"entity_type"`
	Operation   Operation  `json:"operation"`
	ValueField  string     `json:"value_field"`
	IsActive    bool       `json:"is_active"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// NewObjectiveType creates an active objective type
func NewObjectiveType(code, label, category string, unit Unit, entityType EntityType, operation Operation, valueField string) *ObjectiveType {
	now := time.Now()
	return &ObjectiveType{
		ID:          uuid.NewString(),
		Code:        code,
		Label:       label,
		Category:    category,
		Unit:        unit,
		IsFinancial: unit == UnitCurrency,
		EntityType:  entityType,
		Operation:   operation,
		ValueField:  valueField,
		IsActive:    true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// Objective is a target/current-value pair for one objective type within one
// fiscal year at one scope. ScopeID is nil at the global level and holds the
// business-unit, division or collaborator identifier otherwise. CurrentValue
// is only ever mutated through atomic increments issued by the tracker.
type Objective struct {
	ID              string    `json:"id"`
	ObjectiveTypeID string    `json:"objective_type_id"`
	FiscalYearID    string    `json:"fiscal_year_id"`
	Title           string    `json:"title"`
	TargetValue     float64   `json:"target_value"`
	CurrentValue    float64   `json:"current_value"`
	IsActive        bool      `json:"is_active"`
	Level           Level     `json:"level"`
	ScopeID         *string   `json:"scope_id,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// NewObjective creates an active objective at the given scope
func NewObjective(level Level, objectiveTypeID, fiscalYearID, title string, targetValue float64, scopeID *string) *Objective {
	now := time.Now()
	return &Objective{
		ID:              uuid.NewString(),
		ObjectiveTypeID: objectiveTypeID,
		FiscalYearID:    fiscalYearID,
		Title:           title,
		TargetValue:     targetValue,
		CurrentValue:    0,
		IsActive:        true,
		Level:           level,
		ScopeID:         scopeID,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
}

// RequiresScope reports whether the level carries a scope key
func (l Level) RequiresScope() bool {
	return l != LevelGlobal
}

// Valid reports whether the level is one of the four known scopes
func (l Level) Valid() bool {
	switch l {
	case LevelGlobal, LevelBusinessUnit, LevelDivision, LevelIndividual:
		return true
	}
	return false
}

// ProgressEntry is one append-only audit record of an increment applied to an
// objective. Entries are never mutated or deleted by the engine.
type ProgressEntry struct {
	ID             string    `json:"id"`
	Level          Level     `json:"level"`
	ObjectiveID    string    `json:"objective_id"`
	PreviousValue  float64   `json:"previous_value"`
	NewValue       float64   `json:"new_value"`
	ChangeValue    float64   `json:"change_value"`
	SourceEntityID string    `json:"source_entity_id"`
	UpdatedBy      *string   `json:"updated_by,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

// NewProgressEntry builds an audit entry from the outcome of one increment
func NewProgressEntry(level Level, objectiveID string, newValue, changeValue float64, sourceEntityID string, updatedBy *string) *ProgressEntry {
	return &ProgressEntry{
		ID:             uuid.NewString(),
		Level:          level,
		ObjectiveID:    objectiveID,
		PreviousValue:  newValue - changeValue,
		NewValue:       newValue,
		ChangeValue:    changeValue,
		SourceEntityID: sourceEntityID,
		UpdatedBy:      updatedBy,
		CreatedAt:      time.Now(),
	}
}

// ObjectiveTypeFilter represents filters for listing objective types
type ObjectiveTypeFilter struct {
	EntityType *EntityType `json:"entity_type,omitempty"`
	Category   *string     `json:"category,omitempty"`
	ActiveOnly bool        `json:"active_only"`
	Limit      int         `json:"limit"`
	Offset     int         `json:"offset"`
}

// ObjectiveFilter represents filters for listing objectives at one level
type ObjectiveFilter struct {
	ObjectiveTypeID *string `json:"objective_type_id,omitempty"`
	FiscalYearID    *string `json:"fiscal_year_id,omitempty"`
	ScopeID         *string `json:"scope_id,omitempty"`
	ActiveOnly      bool    `json:"active_only"`
	Limit           int     `json:"limit"`
	Offset          int     `json:"offset"`
}

// TrackResult reports the fan-out outcome of one tracked business event
type TrackResult struct {
	Updated int `json:"updated"`
	Skipped int `json:"skipped"`
}

// Add merges the counters from a sibling result
func (r *TrackResult) Add(other TrackResult) {
	r.Updated += other.Updated
	r.Skipped += other.Skipped
}

// Custom errors
var (
	ErrObjectiveTypeNotFound = NewDomainError("objective type not found")
	ErrObjectiveNotFound     = NewDomainError("objective not found")
	ErrDuplicateCode         = NewDomainError("objective type code already exists")
	ErrInvalidLevel          = NewDomainError("invalid objective level")
	ErrMissingScope          = NewDomainError("scope identifier is required for this level")
	ErrScopeNotAllowed       = NewDomainError("global objectives carry no scope identifier")
)

// DomainError represents a domain-specific error
type DomainError struct {
	Message string
}

func (e *DomainError) Error() string {
	return e.Message
}

func NewDomainError(message string) *DomainError {
	return &DomainError{Message: message}
}
