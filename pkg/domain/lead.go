package domain

import (
	"time"

	"github.com/google/uuid"
)

// LeadID uniquely identifies a captured lead.
type LeadID uuid.UUID

// MarshalText implements encoding.TextMarshaler.
func (id LeadID) MarshalText() ([]byte, error) { return uuid.UUID(id).MarshalText() }

// UnmarshalText implements encoding.TextUnmarshaler.
func (id *LeadID) UnmarshalText(b []byte) error { return (*uuid.UUID)(id).UnmarshalText(b) }

// LeadSource tells where an email address was captured.
type LeadSource string

const (
	LeadSourceFreeAudit   LeadSource = "free_audit"
	LeadSourceFormAbandon LeadSource = "form_abandon"
	LeadSourceNewsletter  LeadSource = "newsletter"
)

// Valid reports whether s is a known source.
func (s LeadSource) Valid() bool {
	switch s {
	case LeadSourceFreeAudit, LeadSourceFormAbandon, LeadSourceNewsletter:
		return true
	}

	return false
}

// Lead is an email captured before (or without) a purchase.
// A lead is unique by its email and source.
type Lead struct {
	ID     LeadID     `json:"id"`
	Email  string     `json:"email"`
	Name   string     `json:"name,omitempty"`
	Source LeadSource `json:"source"`
	// Step is the last intake step reached for form-abandon leads.
	Step string `json:"step,omitempty"`
	// Converted is set once the same email completes an order.
	Converted bool `json:"converted"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
