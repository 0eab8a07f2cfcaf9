package domain

import (
	"testing"

	insights "agency_workspace_backend/internal/insights/domain"
	pipeline "agency_workspace_backend/internal/pipeline/domain"

	"github.com/google/uuid"
)

func opp(stage pipeline.Stage, value float64) pipeline.Opportunity {
	return pipeline.Opportunity{ID: uuid.New(), InquiryID: uuid.New(), Stage: stage, Value: value}
}

func TestBuildOverviewConversionRateZeroWhenEmpty(t *testing.T) {
	overview := BuildOverview(nil, nil, nil)
	if overview.ConversionRate != 0 {
		t.Errorf("conversion rate on empty pipeline = %v, want 0", overview.ConversionRate)
	}
	if overview.NewLeadsCount != 0 || overview.WonCount != 0 || overview.WonValue != 0 {
		t.Errorf("empty pipeline must derive zero counts, got %+v", overview)
	}
}

func TestBuildOverviewProposalsSentCountsProposalAndBeyond(t *testing.T) {
	opps := []pipeline.Opportunity{
		opp(pipeline.StageNew, 100),
		opp(pipeline.StageContacted, 100),
		opp(pipeline.StageProposal, 100),
		opp(pipeline.StageWon, 250),
		opp(pipeline.StageLost, 100),
	}

	overview := BuildOverview(nil, opps, nil)
	// proposal, won and lost all reached proposal; new and contacted did not.
	if overview.ProposalsSent != 3 {
		t.Errorf("proposalsSent = %d, want 3", overview.ProposalsSent)
	}
	if overview.WonCount != 1 || overview.WonValue != 250 {
		t.Errorf("won = %d/%v, want 1/250", overview.WonCount, overview.WonValue)
	}
	if overview.ConversionRate != 20 {
		t.Errorf("conversionRate = %v, want 20", overview.ConversionRate)
	}
}

func TestBuildOverviewCountsUnassignedLeadsAndVerifiedFindings(t *testing.T) {
	inq1 := pipeline.Inquiry{ID: uuid.New()}
	inq2 := pipeline.Inquiry{ID: uuid.New()}
	promoted := pipeline.Opportunity{ID: uuid.New(), InquiryID: inq1.ID, Stage: pipeline.StageNew}

	findings := []insights.Finding{
		{Type: insights.TypeUpsell, Status: insights.StatusVerified},
		{Type: insights.TypeGap, Status: insights.StatusVerified},
	}

	overview := BuildOverview([]pipeline.Inquiry{inq1, inq2}, []pipeline.Opportunity{promoted}, findings)
	if overview.NewLeadsCount != 1 {
		t.Errorf("newLeadsCount = %d, want 1", overview.NewLeadsCount)
	}
	if overview.Verified.Upsell != 1 || overview.Verified.CrossSell != 0 {
		t.Errorf("verified counts = %+v, want {1 0}", overview.Verified)
	}
}

func TestBuildFunnelConversionIsHundredWhenPrecedingIsZero(t *testing.T) {
	stages := BuildFunnel(nil, nil)
	if len(stages) != 3 {
		t.Fatalf("expected 3 stages, got %d", len(stages))
	}
	for _, stage := range stages {
		if stage.Conversion != 100 {
			t.Errorf("stage %q conversion = %v, want 100 on empty preceding", stage.Name, stage.Conversion)
		}
	}
}

func TestBuildFunnelStageConversions(t *testing.T) {
	inquiries := make([]pipeline.Inquiry, 4)
	for i := range inquiries {
		inquiries[i] = pipeline.Inquiry{ID: uuid.New()}
	}
	opps := []pipeline.Opportunity{
		opp(pipeline.StageProposal, 0),
		opp(pipeline.StageWon, 500),
		opp(pipeline.StageNew, 0),
	}

	stages := BuildFunnel(inquiries, opps)
	if stages[0].Name != "leads" || stages[0].Value != 4 || stages[0].Conversion != 100 {
		t.Errorf("leads stage = %+v", stages[0])
	}
	if stages[1].Name != "quotesIssued" || stages[1].Value != 2 || stages[1].Conversion != 50 {
		t.Errorf("quotesIssued stage = %+v", stages[1])
	}
	if stages[2].Name != "policiesBound" || stages[2].Value != 1 || stages[2].Conversion != 50 {
		t.Errorf("policiesBound stage = %+v", stages[2])
	}
}
