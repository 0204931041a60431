package domain

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// EntityType identifies a business-entity family the platform tracks
type EntityType string

const (
	EntityOpportunity EntityType = "OPPORTUNITY"
	EntityCampaign    EntityType = "CAMPAIGN"
	EntityCustomer    EntityType = "CUSTOMER"
	EntityMission     EntityType = "MISSION"
	EntityInvoice     EntityType = "INVOICE"
	EntityEmployee    EntityType = "EMPLOYEE"
	EntityContract    EntityType = "CONTRACT"
)

// Operation identifies a lifecycle transition of a business entity.
// Operations are pure tags matched by the tracker; they carry no logic.
type Operation string

const (
	OperationCreated   Operation = "CREATED"
	OperationUpdated   Operation = "UPDATED"
	OperationDeleted   Operation = "DELETED"
	OperationWon       Operation = "WON"
	OperationLost      Operation = "LOST"
	OperationLaunched  Operation = "LAUNCHED"
	OperationClosed    Operation = "CLOSED"
	OperationStarted   Operation = "STARTED"
	OperationCompleted Operation = "COMPLETED"
	OperationPaid      Operation = "PAID"
	OperationSigned    Operation = "SIGNED"
	OperationHired     Operation = "HIRED"
	OperationDeparted  Operation = "DEPARTED"
)

// FieldKind classifies what a value field measures, which in turn decides
// which units it is compatible with
type FieldKind string

const (
	KindAmount   FieldKind = "AMOUNT"
	KindCount    FieldKind = "COUNT"
	KindPercent  FieldKind = "PERCENT"
	KindDuration FieldKind = "DURATION"
)

// unitKinds is the static unit -> field-kind compatibility table
var unitKinds = map[Unit][]FieldKind{
	UnitCurrency:   {KindAmount},
	UnitCount:      {KindCount},
	UnitPercentage: {KindPercent},
	UnitDuration:   {KindDuration},
}

// EntityInfo is a code/label pair describing an entity type
type EntityInfo struct {
	Code  EntityType `json:"code"`
	Label string     `json:"label"`
}

// OperationInfo is a code/label pair describing an operation
type OperationInfo struct {
	Code  Operation `json:"code"`
	Label string    `json:"label"`
}

// ValueField is a named extractor declared on an entity type. CountMode
// fields ignore the record and contribute exactly 1 per event; other fields
// walk Path, a dot-separated path into the entity record.
type ValueField struct {
	Code      string    `json:"code"`
	Label     string    `json:"label"`
	Kind      FieldKind `json:"kind"`
	CountMode bool      `json:"count_mode"`
	Path      string    `json:"path,omitempty"`
}

// ContextFields names the record fields holding the scope identifiers for an
// entity type. An empty name means the entity carries no such field.
type ContextFields struct {
	Creator      string `json:"creator"`
	Assignee     string `json:"assignee"`
	BusinessUnit string `json:"business_unit"`
	Division     string `json:"division"`
}

// EntityDescriptor is the full static declaration for one entity type
type EntityDescriptor struct {
	Type        EntityType
	Label       string
	Operations  []OperationInfo
	ValueFields []ValueField
	Context     ContextFields
}

// Registry is the compiled entity-operation configuration. It is immutable
// after construction and safe for concurrent use.
type Registry struct {
	descriptors map[EntityType]EntityDescriptor
	order       []EntityType
}

// Custom errors
var (
	ErrUnknownEntity          = NewDomainError("unknown entity type")
	ErrUnknownOperation       = NewDomainError("operation not declared for entity type")
	ErrUnknownValueField      = NewDomainError("value field not declared for entity type")
	ErrIncompatibleValueField = NewDomainError("value field is not compatible with unit")
	ErrUnknownUnit            = NewDomainError("unknown unit")
)

var crudOperations = []OperationInfo{
	{Code: OperationCreated, Label: "Created"},
	{Code: OperationUpdated, Label: "Updated"},
	{Code: OperationDeleted, Label: "Deleted"},
}

func withCRUD(extra ...OperationInfo) []OperationInfo {
	ops := make([]OperationInfo, 0, len(crudOperations)+len(extra))
	ops = append(ops, crudOperations...)
	ops = append(ops, extra...)
	return ops
}

func countField(label string) ValueField {
	return ValueField{Code: "count", Label: label, Kind: KindCount, CountMode: true}
}

// NewRegistry builds the platform's entity-operation configuration
func NewRegistry() *Registry {
	descriptors := []EntityDescriptor{
		{
			Type:  EntityOpportunity,
			Label: "Opportunity",
			Operations: withCRUD(
				OperationInfo{Code: OperationWon, Label: "Won"},
				OperationInfo{Code: OperationLost, Label: "Lost"},
			),
			ValueFields: []ValueField{
				{Code: "amount", Label: "Amount", Kind: KindAmount, Path: "amount"},
				{Code: "weighted_amount", Label: "Weighted amount", Kind: KindAmount, Path: "weighted_amount"},
				{Code: "probability", Label: "Probability", Kind: KindPercent, Path: "probability"},
				countField("Number of opportunities"),
			},
			Context: ContextFields{
				Creator:      "created_by",
				Assignee:     "assigned_to",
				BusinessUnit: "business_unit_id",
				Division:     "division_id",
			},
		},
		{
			Type:  EntityCampaign,
			Label: "Prospecting campaign",
			Operations: withCRUD(
				OperationInfo{Code: OperationLaunched, Label: "Launched"},
				OperationInfo{Code: OperationClosed, Label: "Closed"},
			),
			ValueFields: []ValueField{
				{Code: "budget", Label: "Budget", Kind: KindAmount, Path: "budget"},
				{Code: "prospect_count", Label: "Prospects reached", Kind: KindCount, Path: "stats.prospect_count"},
				countField("Number of campaigns"),
			},
			Context: ContextFields{
				Creator:      "created_by",
				Assignee:     "manager_id",
				BusinessUnit: "business_unit_id",
				Division:     "division_id",
			},
		},
		{
			Type:       EntityCustomer,
			Label:      "Customer",
			Operations: withCRUD(),
			ValueFields: []ValueField{
				{Code: "annual_revenue", Label: "Annual revenue", Kind: KindAmount, Path: "annual_revenue"},
				countField("Number of customers"),
			},
			Context: ContextFields{
				Creator:      "created_by",
				Assignee:     "account_manager_id",
				BusinessUnit: "business_unit_id",
				Division:     "division_id",
			},
		},
		{
			Type:  EntityMission,
			Label: "Mission",
			Operations: withCRUD(
				OperationInfo{Code: OperationStarted, Label: "Started"},
				OperationInfo{Code: OperationCompleted, Label: "Completed"},
			),
			ValueFields: []ValueField{
				{Code: "budget", Label: "Budget", Kind: KindAmount, Path: "budget"},
				{Code: "billed_days", Label: "Billed days", Kind: KindDuration, Path: "billed_days"},
				countField("Number of missions"),
			},
			Context: ContextFields{
				Creator:      "created_by",
				Assignee:     "lead_consultant_id",
				BusinessUnit: "business_unit_id",
				Division:     "division_id",
			},
		},
		{
			Type:  EntityInvoice,
			Label: "Invoice",
			Operations: withCRUD(
				OperationInfo{Code: OperationPaid, Label: "Paid"},
			),
			ValueFields: []ValueField{
				{Code: "total_excl_tax", Label: "Total excl. tax", Kind: KindAmount, Path: "total_excl_tax"},
				{Code: "total_incl_tax", Label: "Total incl. tax", Kind: KindAmount, Path: "total_incl_tax"},
				countField("Number of invoices"),
			},
			Context: ContextFields{
				Creator:      "created_by",
				BusinessUnit: "business_unit_id",
				Division:     "division_id",
			},
		},
		{
			Type:  EntityEmployee,
			Label: "Employee",
			Operations: withCRUD(
				OperationInfo{Code: OperationHired, Label: "Hired"},
				OperationInfo{Code: OperationDeparted, Label: "Departed"},
			),
			ValueFields: []ValueField{
				countField("Headcount"),
			},
			Context: ContextFields{
				Creator:      "created_by",
				BusinessUnit: "business_unit_id",
				Division:     "division_id",
			},
		},
		{
			Type:  EntityContract,
			Label: "Contract",
			Operations: withCRUD(
				OperationInfo{Code: OperationSigned, Label: "Signed"},
			),
			ValueFields: []ValueField{
				{Code: "annual_value", Label: "Annual value", Kind: KindAmount, Path: "annual_value"},
				{Code: "duration_months", Label: "Duration in months", Kind: KindDuration, Path: "duration_months"},
				countField("Number of contracts"),
			},
			Context: ContextFields{
				Creator:      "created_by",
				Assignee:     "owner_id",
				BusinessUnit: "business_unit_id",
				Division:     "division_id",
			},
		},
	}

	r := &Registry{descriptors: make(map[EntityType]EntityDescriptor, len(descriptors))}
	for _, d := range descriptors {
		r.descriptors[d.Type] = d
		r.order = append(r.order, d.Type)
	}
	return r
}

// Entities lists the declared entity types in registration order
func (r *Registry) Entities() []EntityInfo {
	out := make([]EntityInfo, 0, len(r.order))
	for _, t := range r.order {
		out = append(out, EntityInfo{Code: t, Label: r.descriptors[t].Label})
	}
	return out
}

// OperationsFor lists the operations declared for an entity type; the list
// is empty when the entity is unknown
func (r *Registry) OperationsFor(entityType EntityType) []OperationInfo {
	d, ok := r.descriptors[entityType]
	if !ok {
		return nil
	}
	ops := make([]OperationInfo, len(d.Operations))
	copy(ops, d.Operations)
	return ops
}

// ValueFieldsFor lists the value fields of an entity type compatible with
// the given unit
func (r *Registry) ValueFieldsFor(entityType EntityType, unit Unit) []ValueField {
	d, ok := r.descriptors[entityType]
	if !ok {
		return nil
	}
	kinds, ok := unitKinds[unit]
	if !ok {
		return nil
	}
	var out []ValueField
	for _, f := range d.ValueFields {
		for _, k := range kinds {
			if f.Kind == k {
				out = append(out, f)
				break
			}
		}
	}
	return out
}

// ValueField resolves one declared value field by code
func (r *Registry) ValueField(entityType EntityType, code string) (ValueField, bool) {
	d, ok := r.descriptors[entityType]
	if !ok {
		return ValueField{}, false
	}
	for _, f := range d.ValueFields {
		if f.Code == code {
			return f, true
		}
	}
	return ValueField{}, false
}

// ContextFieldsFor returns the context-field names of an entity type
func (r *Registry) ContextFieldsFor(entityType EntityType) (ContextFields, bool) {
	d, ok := r.descriptors[entityType]
	return d.Context, ok
}

// ResolveContext extracts the scope identifiers from an event record using
// the entity's declared context-field names. Absent or empty fields resolve
// to nil.
func (r *Registry) ResolveContext(entityType EntityType, record map[string]interface{}) EventContext {
	fields, ok := r.ContextFieldsFor(entityType)
	if !ok {
		return EventContext{}
	}
	return EventContext{
		Creator:      stringFieldValue(record, fields.Creator),
		Assignee:     stringFieldValue(record, fields.Assignee),
		BusinessUnit: stringFieldValue(record, fields.BusinessUnit),
		Division:     stringFieldValue(record, fields.Division),
	}
}

// stringFieldValue reads a scope identifier off the record. Identifiers
// normally arrive as strings, but systems keying on numeric IDs serialize
// them as JSON numbers; those are coerced rather than silently dropping the
// whole scope.
func stringFieldValue(record map[string]interface{}, field string) *string {
	if field == "" {
		return nil
	}

	var v string
	switch raw := record[field].(type) {
	case string:
		v = raw
	case json.Number:
		v = raw.String()
	case float64:
		v = strconv.FormatFloat(raw, 'f', -1, 64)
	case int:
		v = strconv.Itoa(raw)
	case int64:
		v = strconv.FormatInt(raw, 10)
	default:
		return nil
	}
	if v == "" {
		return nil
	}
	return &v
}

// Validate is the single configuration gate used before persisting an
// objective type. It fails when the entity is unknown, the operation is not
// declared for the entity, or the value field is outside the unit-compatible
// subset. Configuration admitted here is guaranteed serviceable by the
// tracker.
func (r *Registry) Validate(entityType EntityType, operation Operation, unit Unit, valueField string) error {
	d, ok := r.descriptors[entityType]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownEntity, entityType)
	}

	if _, ok := unitKinds[unit]; !ok {
		return fmt.Errorf("%w: %s", ErrUnknownUnit, unit)
	}

	opDeclared := false
	for _, op := range d.Operations {
		if op.Code == operation {
			opDeclared = true
			break
		}
	}
	if !opDeclared {
		return fmt.Errorf("%w: %s on %s", ErrUnknownOperation, operation, entityType)
	}

	field, ok := r.ValueField(entityType, valueField)
	if !ok {
		return fmt.Errorf("%w: %s on %s", ErrUnknownValueField, valueField, entityType)
	}

	for _, k := range unitKinds[unit] {
		if field.Kind == k {
			return nil
		}
	}
	return fmt.Errorf("%w: %s is %s, unit %s expects %v", ErrIncompatibleValueField, valueField, field.Kind, unit, unitKinds[unit])
}
