// Package audit records what happened to customer profiles.
package audit

import (
	"time"

	"github.com/google/uuid"
)

// EventCategory drives retention and routing downstream.
type EventCategory string

const (
	// CategoryCompliance covers changes to fiscal identity data.
	CategoryCompliance EventCategory = "compliance"
	// CategorySecurity covers rejected attempts to change locked data.
	CategorySecurity EventCategory = "security"
	// CategoryOperations covers degraded but non-fatal paths.
	CategoryOperations EventCategory = "operations"
)

type Action string

const (
	ActionProfileCreated     Action = "profile_created"
	ActionProfileUpdated     Action = "profile_updated"
	ActionUpdateRejected     Action = "profile_update_rejected"
	ActionCleanupFailed      Action = "metafield_cleanup_failed"
	ActionTaxpayerEnrichment Action = "taxpayer_enriched"
)

var actionCategories = map[Action]EventCategory{
	ActionProfileCreated:     CategoryCompliance,
	ActionProfileUpdated:     CategoryCompliance,
	ActionTaxpayerEnrichment: CategoryCompliance,
	ActionUpdateRejected:     CategorySecurity,
	ActionCleanupFailed:      CategoryOperations,
}

// Category returns the category for a; unknown actions are operational.
func (a Action) Category() EventCategory {
	if c, ok := actionCategories[a]; ok {
		return c
	}
	return CategoryOperations
}

// Event never carries field values, only keys, so identity numbers and
// names stay out of the audit trail.
type Event struct {
	ID        string        `json:"id"`
	Category  EventCategory `json:"category"`
	Action    Action        `json:"action"`
	Timestamp time.Time     `json:"timestamp"`
	OwnerID   string        `json:"owner_id"`
	RequestID string        `json:"request_id,omitempty"`
	// Classification is the profile classification after the action.
	Classification string   `json:"classification,omitempty"`
	SetKeys        []string `json:"set_keys,omitempty"`
	DeletedKeys    []string `json:"deleted_keys,omitempty"`
	Reason         string   `json:"reason,omitempty"`
}

// prepare fills the id, category and timestamp when unset.
func (e Event) prepare(now time.Time) Event {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.Category == "" {
		e.Category = e.Action.Category()
	}
	if e.Timestamp.IsZero() {
		e.Timestamp = now
	}
	return e
}
