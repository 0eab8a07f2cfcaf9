// Package events provides domain event definitions for decoupled,
// event-driven communication between modules.
// Infrastructure (Bus, Handler) is in platform/events.
package events

import (
	platformevents "agency_workspace_backend/platform/events"
	"agency_workspace_backend/platform/logger"

	"github.com/google/uuid"
)

// Re-export platform types for convenience
type (
	Event       = platformevents.Event
	Bus         = platformevents.Bus
	Handler     = platformevents.Handler
	HandlerFunc = platformevents.HandlerFunc
	BaseEvent   = platformevents.BaseEvent
	InMemoryBus = platformevents.InMemoryBus
)

// Re-export platform functions
var NewBaseEvent = platformevents.NewBaseEvent

// NewInMemoryBus creates a new in-memory event bus.
func NewInMemoryBus(log *logger.Logger) *InMemoryBus {
	return platformevents.NewInMemoryBus(log)
}

// =============================================================================
// Pipeline Domain Events
// =============================================================================

// OpportunityPromoted is published when an inquiry is promoted into the pipeline.
type OpportunityPromoted struct {
	BaseEvent
	AgencyID      uuid.UUID `json:"agencyId"`
	AgentID       uuid.UUID `json:"agentId"`
	OpportunityID uuid.UUID `json:"opportunityId"`
	InquiryID     uuid.UUID `json:"inquiryId"`
	ProspectID    uuid.UUID `json:"prospectId"`
}

func (e OpportunityPromoted) EventName() string { return "pipeline.opportunity.promoted" }

// OpportunityStageChanged is published on every successful stage transition.
type OpportunityStageChanged struct {
	BaseEvent
	AgencyID      uuid.UUID `json:"agencyId"`
	OpportunityID uuid.UUID `json:"opportunityId"`
	FromStage     string    `json:"fromStage"`
	ToStage       string    `json:"toStage"`
}

func (e OpportunityStageChanged) EventName() string { return "pipeline.opportunity.stage_changed" }

// OpportunityWon is published when an opportunity reaches the won stage.
// The conversion ledger entry is already persisted when this fires.
type OpportunityWon struct {
	BaseEvent
	AgencyID      uuid.UUID `json:"agencyId"`
	OpportunityID uuid.UUID `json:"opportunityId"`
	InquiryID     uuid.UUID `json:"inquiryId"`
	Value         float64   `json:"value"`
}

func (e OpportunityWon) EventName() string { return "pipeline.opportunity.won" }

// FollowUpDue is published by the scheduler worker when an opportunity's
// follow-up date arrives.
type FollowUpDue struct {
	BaseEvent
	AgencyID      uuid.UUID `json:"agencyId"`
	AgentID       uuid.UUID `json:"agentId"`
	OpportunityID uuid.UUID `json:"opportunityId"`
	Title         string    `json:"title"`
}

func (e FollowUpDue) EventName() string { return "pipeline.opportunity.follow_up_due" }

// =============================================================================
// Insights Domain Events
// =============================================================================

// FindingsIngested is published when an analysis result is materialized
// into findings.
type FindingsIngested struct {
	BaseEvent
	AgencyID   uuid.UUID `json:"agencyId"`
	CustomerID uuid.UUID `json:"customerId"`
	AnalysisID string    `json:"analysisId"`
	Count      int       `json:"count"`
}

func (e FindingsIngested) EventName() string { return "insights.findings.ingested" }

// FindingReviewed is published when a reviewer verifies or rejects a finding.
type FindingReviewed struct {
	BaseEvent
	AgencyID  uuid.UUID `json:"agencyId"`
	FindingID uuid.UUID `json:"findingId"`
	Status    string    `json:"status"`
}

func (e FindingReviewed) EventName() string { return "insights.finding.reviewed" }
