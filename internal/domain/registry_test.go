package domain

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRegistryValidate(t *testing.T) {
	registry := NewRegistry()

	tests := []struct {
		name       string
		entityType EntityType
		operation  Operation
		unit       Unit
		valueField string
		wantErr    error
	}{
		{
			name:       "valid currency objective on opportunity won",
			entityType: EntityOpportunity,
			operation:  OperationWon,
			unit:       UnitCurrency,
			valueField: "amount",
		},
		{
			name:       "valid count objective on campaign launched",
			entityType: EntityCampaign,
			operation:  OperationLaunched,
			unit:       UnitCount,
			valueField: "count",
		},
		{
			name:       "valid duration objective on mission completed",
			entityType: EntityMission,
			operation:  OperationCompleted,
			unit:       UnitDuration,
			valueField: "billed_days",
		},
		{
			name:       "unknown entity type",
			entityType: EntityType("SPACESHIP"),
			operation:  OperationCreated,
			unit:       UnitCount,
			valueField: "count",
			wantErr:    ErrUnknownEntity,
		},
		{
			name:       "operation not declared for entity",
			entityType: EntityCustomer,
			operation:  OperationWon,
			unit:       UnitCount,
			valueField: "count",
			wantErr:    ErrUnknownOperation,
		},
		{
			name:       "value field not declared for entity",
			entityType: EntityInvoice,
			operation:  OperationPaid,
			unit:       UnitCurrency,
			valueField: "amount",
			wantErr:    ErrUnknownValueField,
		},
		{
			name:       "currency unit over a count field",
			entityType: EntityOpportunity,
			operation:  OperationWon,
			unit:       UnitCurrency,
			valueField: "count",
			wantErr:    ErrIncompatibleValueField,
		},
		{
			name:       "count unit over an amount field",
			entityType: EntityOpportunity,
			operation:  OperationWon,
			unit:       UnitCount,
			valueField: "amount",
			wantErr:    ErrIncompatibleValueField,
		},
		{
			name:       "unknown unit",
			entityType: EntityOpportunity,
			operation:  OperationWon,
			unit:       Unit("LIGHTYEARS"),
			valueField: "amount",
			wantErr:    ErrUnknownUnit,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := registry.Validate(tt.entityType, tt.operation, tt.unit, tt.valueField)
			if tt.wantErr == nil {
				assert.NoError(t, err)
			} else {
				assert.True(t, errors.Is(err, tt.wantErr), "expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestRegistryValueFieldsForFiltersByUnit(t *testing.T) {
	registry := NewRegistry()

	currencyFields := registry.ValueFieldsFor(EntityOpportunity, UnitCurrency)
	codes := make([]string, 0, len(currencyFields))
	for _, f := range currencyFields {
		codes = append(codes, f.Code)
	}
	assert.ElementsMatch(t, []string{"amount", "weighted_amount"}, codes)

	countFields := registry.ValueFieldsFor(EntityOpportunity, UnitCount)
	assert.Len(t, countFields, 1)
	assert.Equal(t, "count", countFields[0].Code)
	assert.True(t, countFields[0].CountMode)

	assert.Nil(t, registry.ValueFieldsFor(EntityType("SPACESHIP"), UnitCount))
	assert.Nil(t, registry.ValueFieldsFor(EntityOpportunity, Unit("LIGHTYEARS")))
}

func TestRegistryEntitiesAndOperations(t *testing.T) {
	registry := NewRegistry()

	entities := registry.Entities()
	assert.Len(t, entities, 7)
	assert.Equal(t, EntityOpportunity, entities[0].Code)

	ops := registry.OperationsFor(EntityEmployee)
	opCodes := make([]Operation, 0, len(ops))
	for _, op := range ops {
		opCodes = append(opCodes, op.Code)
	}
	assert.Contains(t, opCodes, OperationCreated)
	assert.Contains(t, opCodes, OperationHired)
	assert.Contains(t, opCodes, OperationDeparted)
	assert.NotContains(t, opCodes, OperationWon)

	assert.Nil(t, registry.OperationsFor(EntityType("SPACESHIP")))
}

func TestRegistryResolveContext(t *testing.T) {
	registry := NewRegistry()

	ectx := registry.ResolveContext(EntityOpportunity, map[string]interface{}{
		"created_by":       "u1",
		"assigned_to":      "u2",
		"business_unit_id": "bu1",
		"division_id":      "",
	})
	assert.Equal(t, "u1", *ectx.Creator)
	assert.Equal(t, "u2", *ectx.Assignee)
	assert.Equal(t, "bu1", *ectx.BusinessUnit)
	assert.Nil(t, ectx.Division, "empty string resolves to nil")

	// invoices declare no assignee field
	ectx = registry.ResolveContext(EntityInvoice, map[string]interface{}{
		"created_by":  "u1",
		"assigned_to": "u2",
	})
	assert.Equal(t, "u1", *ectx.Creator)
	assert.Nil(t, ectx.Assignee)

	ectx = registry.ResolveContext(EntityType("SPACESHIP"), map[string]interface{}{"created_by": "u1"})
	assert.Equal(t, EventContext{}, ectx)
}

func TestRegistryResolveContextCoercesNumericIdentifiers(t *testing.T) {
	registry := NewRegistry()

	// systems keying scopes on numeric IDs must still resolve
	ectx := registry.ResolveContext(EntityOpportunity, map[string]interface{}{
		"created_by":       float64(17),
		"assigned_to":      json.Number("42"),
		"business_unit_id": int64(3),
		"division_id":      true,
	})
	assert.Equal(t, "17", *ectx.Creator)
	assert.Equal(t, "42", *ectx.Assignee)
	assert.Equal(t, "3", *ectx.BusinessUnit)
	assert.Nil(t, ectx.Division, "non-coercible values resolve to nil")
}

func TestEventContextIndividuals(t *testing.T) {
	u1, u2 := "u1", "u2"

	tests := []struct {
		name string
		ectx EventContext
		want []string
	}{
		{name: "assignee and creator distinct", ectx: EventContext{Creator: &u1, Assignee: &u2}, want: []string{"u2", "u1"}},
		{name: "assignee equals creator", ectx: EventContext{Creator: &u1, Assignee: &u1}, want: []string{"u1"}},
		{name: "creator only", ectx: EventContext{Creator: &u1}, want: []string{"u1"}},
		{name: "assignee only", ectx: EventContext{Assignee: &u2}, want: []string{"u2"}},
		{name: "neither", ectx: EventContext{}, want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.ectx.Individuals())
		})
	}
}

func TestNewProgressEntryComputesPreviousValue(t *testing.T) {
	updatedBy := "u1"
	entry := NewProgressEntry(LevelGlobal, "obj-1", 25000, 5000, "opp-1", &updatedBy)

	assert.Equal(t, float64(20000), entry.PreviousValue)
	assert.Equal(t, float64(25000), entry.NewValue)
	assert.Equal(t, float64(5000), entry.ChangeValue)
	assert.Equal(t, "opp-1", entry.SourceEntityID)
	assert.NotEmpty(t, entry.ID)
}

func TestNewObjectiveTypeFlagsFinancial(t *testing.T) {
	financial := NewObjectiveType("OPP_WON_AMOUNT", "Won amount", "Sales", UnitCurrency, EntityOpportunity, OperationWon, "amount")
	assert.True(t, financial.IsFinancial)
	assert.True(t, financial.IsActive)

	headcount := NewObjectiveType("EMP_HIRED", "Hires", "HR", UnitCount, EntityEmployee, OperationHired, "count")
	assert.False(t, headcount.IsFinancial)
}

func TestLevelScopeRules(t *testing.T) {
	assert.False(t, LevelGlobal.RequiresScope())
	assert.True(t, LevelBusinessUnit.RequiresScope())
	assert.True(t, LevelDivision.RequiresScope())
	assert.True(t, LevelIndividual.RequiresScope())

	assert.True(t, LevelIndividual.Valid())
	assert.False(t, Level("COSMIC").Valid())
}
