// Package transport defines request and response shapes for the insights API.
package transport

import (
	"agency_workspace_backend/internal/insights/domain"

	"github.com/google/uuid"
)

// AnalysisItem is one surfaced insight inside an analysis result. The
// analysis producer is an external collaborator; cost arrives as a
// currency-like string and is parsed on ingest.
type AnalysisItem struct {
	Name           string `json:"name" validate:"required,min=1,max=200"`
	Recommendation string `json:"recommendation" validate:"required,min=1,max=2000"`
	Benefit        string `json:"benefit,omitempty" validate:"omitempty,max=2000"`
	Priority       string `json:"priority,omitempty" validate:"omitempty,max=20"`
	EstimatedCost  string `json:"estimatedCost,omitempty" validate:"omitempty,max=100"`
	SalesScript    string `json:"salesScript,omitempty" validate:"omitempty,max=5000"`
}

// AnalysisResult is the three-list payload produced by one account analysis.
type AnalysisResult struct {
	Gaps                   []AnalysisItem `json:"gaps" validate:"dive"`
	UpsellOpportunities    []AnalysisItem `json:"upsellOpportunities" validate:"dive"`
	CrossSellOpportunities []AnalysisItem `json:"crossSellOpportunities" validate:"dive"`
}

// IngestAnalysisRequest materializes an analysis result into findings.
type IngestAnalysisRequest struct {
	CustomerID uuid.UUID      `json:"customerId" validate:"required"`
	AnalysisID string         `json:"analysisId" validate:"required,min=1,max=100"`
	Results    AnalysisResult `json:"results" validate:"required"`
}

// SetStatusRequest records a reviewer decision.
type SetStatusRequest struct {
	Status domain.FindingStatus `json:"status" validate:"required,oneof=verified rejected"`
}

// EditContentRequest corrects finding content without touching its status.
type EditContentRequest struct {
	Title       *string `json:"title,omitempty" validate:"omitempty,min=1,max=200"`
	Description *string `json:"description,omitempty" validate:"omitempty,min=1,max=2000"`
	Benefit     *string `json:"benefit,omitempty" validate:"omitempty,max=2000"`
}

// ChangeResponse wraps a finding mutation result.
type ChangeResponse struct {
	Changed bool            `json:"changed"`
	Finding *domain.Finding `json:"finding,omitempty"`
}

// IngestResponse reports how many findings one analysis produced.
type IngestResponse struct {
	Created  int              `json:"created"`
	Findings []domain.Finding `json:"findings"`
}
