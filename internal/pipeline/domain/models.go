// Package domain provides core business rules for the pipeline bounded context.
package domain

import (
	"time"

	"github.com/google/uuid"
)

// Inquiry is an inbound lead record, created by an external intake
// channel. The workflow engine never mutates an inquiry after creation.
type Inquiry struct {
	ID             uuid.UUID `json:"id"`
	AgencyID       uuid.UUID `json:"agencyId"`
	FirstName      string    `json:"firstName"`
	LastName       string    `json:"lastName"`
	Email          string    `json:"email"`
	Phone          string    `json:"phone"`
	Source         string    `json:"source"`
	PolicyInterest string    `json:"policyInterest"`
	Purpose        string    `json:"purpose"`
	Details        string    `json:"details"`
	Consent        bool      `json:"consent"`
	CreatedAt      time.Time `json:"createdAt"`
}

// PurposeQuoteRequest marks an inquiry that explicitly asks for a quote.
// Such inquiries classify as hot regardless of age.
const PurposeQuoteRequest = "quote_request"

// Prospect is the contact record materialized when an inquiry is
// promoted into the pipeline. Created exactly once per promotion.
type Prospect struct {
	ID        uuid.UUID `json:"id"`
	AgencyID  uuid.UUID `json:"agencyId"`
	InquiryID uuid.UUID `json:"inquiryId"`
	FirstName string    `json:"firstName"`
	LastName  string    `json:"lastName"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
	CreatedAt time.Time `json:"createdAt"`
}

// Opportunity is the pipeline unit. Its InquiryID is unique across all
// opportunities of a tenant: an inquiry produces at most one opportunity.
type Opportunity struct {
	ID             uuid.UUID  `json:"id"`
	AgencyID       uuid.UUID  `json:"agencyId"`
	AgentID        uuid.UUID  `json:"agentId"`
	Title          string     `json:"title"`
	Value          float64    `json:"value"`
	ProspectID     uuid.UUID  `json:"prospectId"`
	InquiryID      uuid.UUID  `json:"inquiryId"`
	Stage          Stage      `json:"stage"`
	NextFollowUpAt *time.Time `json:"nextFollowUpAt,omitempty"`
	CreatedAt      time.Time  `json:"createdAt"`
	UpdatedAt      time.Time  `json:"updatedAt"`
}

// Interaction is an append-only communication record. Never mutated
// after creation.
type Interaction struct {
	ID         uuid.UUID `json:"id"`
	AgencyID   uuid.UUID `json:"agencyId"`
	AgentID    uuid.UUID `json:"agentId"`
	Type       string    `json:"type"`
	Direction  string    `json:"direction"`
	Content    string    `json:"content"`
	OccurredAt time.Time `json:"occurredAt"`
	CreatedAt  time.Time `json:"createdAt"`
}

// ConversionKindWon is the only conversion kind the stage machine writes.
const ConversionKindWon = "won"

// Conversion is an immutable ledger entry recording a won deal.
// AttributionID links back to the originating inquiry.
type Conversion struct {
	ID            uuid.UUID `json:"id"`
	AgencyID      uuid.UUID `json:"agencyId"`
	Date          time.Time `json:"date"`
	Kind          string    `json:"kind"`
	Value         float64   `json:"value"`
	AttributionID uuid.UUID `json:"attributionId"`
}
