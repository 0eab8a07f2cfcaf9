// Package transport defines request and response shapes for the pipeline API.
package transport

import (
	"time"

	"agency_workspace_backend/internal/pipeline/domain"

	"github.com/google/uuid"
)

// CreateInquiryRequest registers an inbound lead from the intake channel.
// The resulting inquiry is read-only to the workflow engine.
type CreateInquiryRequest struct {
	FirstName      string `json:"firstName" validate:"required,min=1,max=100"`
	LastName       string `json:"lastName" validate:"required,min=1,max=100"`
	Email          string `json:"email,omitempty" validate:"omitempty,email"`
	Phone          string `json:"phone,omitempty" validate:"omitempty,min=5,max=20"`
	Source         string `json:"source" validate:"required,min=1,max=50"`
	PolicyInterest string `json:"policyInterest" validate:"required,min=1,max=50"`
	Purpose        string `json:"purpose,omitempty" validate:"omitempty,max=50"`
	Details        string `json:"details,omitempty" validate:"omitempty,max=2000"`
	Consent        bool   `json:"consent"`
}

// PromoteRequest promotes an inquiry into the pipeline.
type PromoteRequest struct {
	InquiryID uuid.UUID `json:"inquiryId" validate:"required"`
}

// TransitionRequest moves an opportunity to a new stage.
type TransitionRequest struct {
	Stage domain.Stage `json:"stage" validate:"required,oneof=new contacted proposal won lost"`
}

// MoveRequest is the drag-and-drop path; only open stages are accepted.
type MoveRequest struct {
	To domain.Stage `json:"to" validate:"required,oneof=new contacted proposal"`
}

// CloseRequest marks an opportunity won or lost, bypassing the board policy.
type CloseRequest struct {
	Outcome domain.Stage `json:"outcome" validate:"required,oneof=won lost"`
}

// UpdateOpportunityRequest edits deal details outside the stage lifecycle.
type UpdateOpportunityRequest struct {
	Title *string  `json:"title,omitempty" validate:"omitempty,min=1,max=200"`
	Value *float64 `json:"value,omitempty" validate:"omitempty,gte=0"`
}

// FollowUpRequest schedules the next follow-up for an opportunity.
type FollowUpRequest struct {
	At time.Time `json:"at" validate:"required"`
}

// AddInteractionRequest appends a communication record.
type AddInteractionRequest struct {
	Type       string     `json:"type" validate:"required,oneof=call email meeting note"`
	Direction  string     `json:"direction" validate:"required,oneof=inbound outbound"`
	Content    string     `json:"content" validate:"required,min=1,max=5000"`
	OccurredAt *time.Time `json:"occurredAt,omitempty"`
}

// ChangeResponse wraps a mutation result. Changed is false for the
// degrade-to-nothing cases: missing tenant scope or a referential miss.
type ChangeResponse struct {
	Changed     bool                `json:"changed"`
	Opportunity *domain.Opportunity `json:"opportunity,omitempty"`
}

// IntegrityResponse reports uniqueness-invariant violations.
type IntegrityResponse struct {
	DuplicateInquiryIDs []uuid.UUID `json:"duplicateInquiryIds"`
}
