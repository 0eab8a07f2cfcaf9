// Package domain holds the KPI and funnel derivations: pure functions
// over already-loaded collections, no I/O and no persisted state.
package domain

import (
	insights "agency_workspace_backend/internal/insights/domain"
	pipeline "agency_workspace_backend/internal/pipeline/domain"
)

// Overview is the KPI dashboard block for one tenant.
type Overview struct {
	NewLeadsCount  int                                `json:"newLeadsCount"`
	ProposalsSent  int                                `json:"proposalsSent"`
	WonCount       int                                `json:"wonCount"`
	WonValue       float64                            `json:"wonValue"`
	ConversionRate float64                            `json:"conversionRate"`
	Verified       insights.VerifiedOpportunityCounts `json:"verifiedOpportunities"`
}

// FunnelStage is one step of the leads to bound-policies progression.
// Conversion is the percentage relative to the immediately preceding
// stage; the first stage always reads 100.
type FunnelStage struct {
	Name       string  `json:"name"`
	Value      int     `json:"value"`
	Conversion float64 `json:"conversion"`
}

// BuildOverview derives the KPI block from the tenant's collections.
func BuildOverview(inquiries []pipeline.Inquiry, opportunities []pipeline.Opportunity, findings []insights.Finding) Overview {
	overview := Overview{
		NewLeadsCount: len(pipeline.Unassigned(inquiries, opportunities)),
		Verified:      insights.CountVerifiedOpportunities(findings),
	}

	for _, opp := range opportunities {
		if opp.Stage.ReachedProposal() {
			overview.ProposalsSent++
		}
		if opp.Stage == pipeline.StageWon {
			overview.WonCount++
			overview.WonValue += opp.Value
		}
	}

	// Defined as 0 when there are no opportunities, not NaN.
	if len(opportunities) > 0 {
		overview.ConversionRate = float64(overview.WonCount) / float64(len(opportunities)) * 100
	}
	return overview
}

// BuildFunnel derives the leads -> quotesIssued -> policiesBound stages.
// Each stage converts relative to the preceding one; a preceding value
// of 0 yields 100 instead of dividing by zero.
func BuildFunnel(inquiries []pipeline.Inquiry, opportunities []pipeline.Opportunity) []FunnelStage {
	quotesIssued := 0
	policiesBound := 0
	for _, opp := range opportunities {
		if opp.Stage.ReachedProposal() {
			quotesIssued++
		}
		if opp.Stage == pipeline.StageWon {
			policiesBound++
		}
	}

	stages := []FunnelStage{
		{Name: "leads", Value: len(inquiries), Conversion: 100},
		{Name: "quotesIssued", Value: quotesIssued},
		{Name: "policiesBound", Value: policiesBound},
	}
	for i := 1; i < len(stages); i++ {
		stages[i].Conversion = stageConversion(stages[i].Value, stages[i-1].Value)
	}
	return stages
}

func stageConversion(value, preceding int) float64 {
	if preceding == 0 {
		return 100
	}
	return float64(value) / float64(preceding) * 100
}
