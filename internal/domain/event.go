package domain

// BusinessEvent is the ephemeral notification an entity module sends after
// durably committing its own mutation. Record is the committed entity state
// as an opaque key/value map; it must contain the context fields and the
// value field of any objective type expected to react.
type BusinessEvent struct {
	EntityType   EntityType             `json:"entity_type"`
	Operation    Operation              `json:"operation"`
	Record       map[string]interface{} `json:"record"`
	FiscalYearID string                 `json:"fiscal_year_id"`
}

// SourceID returns the identifier of the entity that produced the event, or
// an empty string when the record carries none.
func (e BusinessEvent) SourceID() string {
	if id, ok := e.Record["id"].(string); ok {
		return id
	}
	return ""
}

// EventContext holds the scope identifiers resolved from an event record.
// Any of them may be nil when the field is absent or empty on the record.
type EventContext struct {
	Creator      *string
	Assignee     *string
	BusinessUnit *string
	Division     *string
}

// Individuals returns the deduplicated set of collaborators an individual
// objective may belong to: the assignee and the creator, nils removed. When
// both identify the same collaborator a single entry is returned.
func (c EventContext) Individuals() []string {
	var out []string
	if c.Assignee != nil {
		out = append(out, *c.Assignee)
	}
	if c.Creator != nil && (c.Assignee == nil || *c.Creator != *c.Assignee) {
		out = append(out, *c.Creator)
	}
	return out
}
