// Package service exposes the KPI and funnel aggregations over the
// pipeline and insights collections.
package service

import (
	"context"

	"agency_workspace_backend/internal/funnel/domain"
	insights "agency_workspace_backend/internal/insights/domain"
	pipeline "agency_workspace_backend/internal/pipeline/domain"
	"agency_workspace_backend/internal/tenant"

	"github.com/google/uuid"
)

// PipelineReader is the read surface the aggregator needs from the
// pipeline context. The pipeline repository satisfies it.
type PipelineReader interface {
	Inquiries(ctx context.Context, agencyID uuid.UUID) []pipeline.Inquiry
	Opportunities(ctx context.Context, agencyID uuid.UUID) []pipeline.Opportunity
}

// FindingsReader is the read surface the aggregator needs from the
// insights context. The insights repository satisfies it.
type FindingsReader interface {
	Findings(ctx context.Context, agencyID uuid.UUID) []insights.Finding
}

// Service loads the tenant's collections and derives the metrics. It
// holds no state of its own.
type Service struct {
	pipeline PipelineReader
	findings FindingsReader
}

// New creates a new funnel service.
func New(pipeline PipelineReader, findings FindingsReader) *Service {
	return &Service{pipeline: pipeline, findings: findings}
}

// Overview derives the KPI block for the tenant.
func (s *Service) Overview(ctx context.Context, scope tenant.Scope) domain.Overview {
	if !scope.Valid() {
		return domain.BuildOverview(nil, nil, nil)
	}
	return domain.BuildOverview(
		s.pipeline.Inquiries(ctx, scope.AgencyID),
		s.pipeline.Opportunities(ctx, scope.AgencyID),
		s.findings.Findings(ctx, scope.AgencyID),
	)
}

// Funnel derives the leads to bound-policies progression for the tenant.
func (s *Service) Funnel(ctx context.Context, scope tenant.Scope) []domain.FunnelStage {
	if !scope.Valid() {
		return domain.BuildFunnel(nil, nil)
	}
	return domain.BuildFunnel(
		s.pipeline.Inquiries(ctx, scope.AgencyID),
		s.pipeline.Opportunities(ctx, scope.AgencyID),
	)
}
