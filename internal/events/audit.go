package events

import (
	"context"
	"log/slog"

	"agency_workspace_backend/platform/logger"
)

// RegisterAuditLog subscribes a handler that records every workflow
// event through the structured log, so the audit trail survives even
// when no other subscriber is attached.
func RegisterAuditLog(bus Bus, log *logger.Logger) {
	record := HandlerFunc(func(_ context.Context, event Event) error {
		agencyID, entityID, attrs := auditFields(event)
		log.WorkflowEvent(event.EventName(), agencyID, entityID, attrs...)
		return nil
	})

	for _, name := range []string{
		"pipeline.opportunity.promoted",
		"pipeline.opportunity.stage_changed",
		"pipeline.opportunity.won",
		"pipeline.opportunity.follow_up_due",
		"insights.findings.ingested",
		"insights.finding.reviewed",
	} {
		bus.Subscribe(name, record)
	}
}

// auditFields extracts the tenant and subject of an event plus any
// event-specific attributes worth keeping in the trail.
func auditFields(event Event) (agencyID, entityID string, attrs []slog.Attr) {
	switch e := event.(type) {
	case OpportunityPromoted:
		return e.AgencyID.String(), e.OpportunityID.String(),
			[]slog.Attr{slog.String("inquiry_id", e.InquiryID.String())}
	case OpportunityStageChanged:
		return e.AgencyID.String(), e.OpportunityID.String(),
			[]slog.Attr{slog.String("from", e.FromStage), slog.String("to", e.ToStage)}
	case OpportunityWon:
		return e.AgencyID.String(), e.OpportunityID.String(),
			[]slog.Attr{slog.Float64("value", e.Value)}
	case FollowUpDue:
		return e.AgencyID.String(), e.OpportunityID.String(),
			[]slog.Attr{slog.String("title", e.Title)}
	case FindingsIngested:
		return e.AgencyID.String(), e.AnalysisID,
			[]slog.Attr{slog.Int("count", e.Count)}
	case FindingReviewed:
		return e.AgencyID.String(), e.FindingID.String(),
			[]slog.Attr{slog.String("status", e.Status)}
	}
	return "", "", nil
}
