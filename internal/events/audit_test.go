package events

import (
	"context"
	"testing"

	"agency_workspace_backend/platform/logger"

	"github.com/google/uuid"
)

func TestAuditFieldsExtractTenantAndSubject(t *testing.T) {
	agency := uuid.New()
	opp := uuid.New()
	finding := uuid.New()

	tests := []struct {
		name       string
		event      Event
		wantEntity string
	}{
		{"stage changed", OpportunityStageChanged{AgencyID: agency, OpportunityID: opp, FromStage: "new", ToStage: "contacted"}, opp.String()},
		{"won", OpportunityWon{AgencyID: agency, OpportunityID: opp, Value: 500}, opp.String()},
		{"findings ingested", FindingsIngested{AgencyID: agency, AnalysisID: "analysis-1", Count: 4}, "analysis-1"},
		{"finding reviewed", FindingReviewed{AgencyID: agency, FindingID: finding, Status: "verified"}, finding.String()},
	}

	for _, tc := range tests {
		gotAgency, gotEntity, _ := auditFields(tc.event)
		if gotAgency != agency.String() {
			t.Errorf("%s: agency = %q, want %q", tc.name, gotAgency, agency)
		}
		if gotEntity != tc.wantEntity {
			t.Errorf("%s: entity = %q, want %q", tc.name, gotEntity, tc.wantEntity)
		}
	}
}

func TestRegisterAuditLogHandlesEveryWorkflowEvent(t *testing.T) {
	bus := NewInMemoryBus(logger.New("development"))
	RegisterAuditLog(bus, logger.New("development"))

	agency := uuid.New()
	published := []Event{
		OpportunityPromoted{BaseEvent: NewBaseEvent(), AgencyID: agency, OpportunityID: uuid.New(), InquiryID: uuid.New()},
		OpportunityStageChanged{BaseEvent: NewBaseEvent(), AgencyID: agency, OpportunityID: uuid.New(), FromStage: "proposal", ToStage: "won"},
		OpportunityWon{BaseEvent: NewBaseEvent(), AgencyID: agency, OpportunityID: uuid.New(), Value: 500},
		FollowUpDue{BaseEvent: NewBaseEvent(), AgencyID: agency, OpportunityID: uuid.New()},
		FindingsIngested{BaseEvent: NewBaseEvent(), AgencyID: agency, AnalysisID: "analysis-1", Count: 2},
		FindingReviewed{BaseEvent: NewBaseEvent(), AgencyID: agency, FindingID: uuid.New(), Status: "rejected"},
	}

	for _, event := range published {
		if err := bus.PublishSync(context.Background(), event); err != nil {
			t.Fatalf("audit handler failed for %s: %v", event.EventName(), err)
		}
	}
}
