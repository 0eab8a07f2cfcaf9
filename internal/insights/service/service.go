// Package service implements the insight review workflow: ingesting
// analysis results into findings and tracking reviewer decisions.
package service

import (
	"context"
	"time"

	"agency_workspace_backend/internal/events"
	"agency_workspace_backend/internal/insights/domain"
	"agency_workspace_backend/internal/insights/transport"
	"agency_workspace_backend/internal/tenant"
	"agency_workspace_backend/platform/apperr"

	"github.com/google/uuid"
)

// Repository defines the data access interface needed by the review workflow.
type Repository interface {
	Findings(ctx context.Context, agencyID uuid.UUID) []domain.Finding
	AppendFindings(ctx context.Context, agencyID uuid.UUID, batch []domain.Finding) error
	ReplaceFindings(ctx context.Context, agencyID uuid.UUID, next []domain.Finding) error
}

// Service handles insight review operations. The same degrade-to-nothing
// convention as the pipeline applies: missing tenant scope or a
// referential miss yields (nil, nil).
type Service struct {
	repo Repository
	bus  events.Bus
	now  func() time.Time
}

// New creates a new insights service.
func New(repo Repository, bus events.Bus) *Service {
	return &Service{repo: repo, bus: bus, now: time.Now}
}

// Findings returns the tenant's findings collection.
func (s *Service) Findings(ctx context.Context, scope tenant.Scope) []domain.Finding {
	if !scope.Valid() {
		return []domain.Finding{}
	}
	return s.repo.Findings(ctx, scope.AgencyID)
}

// IngestAnalysis materializes one analysis result into findings, all
// starting at pending review, appended in a single batch.
func (s *Service) IngestAnalysis(ctx context.Context, scope tenant.Scope, req transport.IngestAnalysisRequest) ([]domain.Finding, error) {
	if !scope.Valid() {
		return nil, nil
	}

	now := s.now()
	batch := make([]domain.Finding, 0,
		len(req.Results.Gaps)+len(req.Results.UpsellOpportunities)+len(req.Results.CrossSellOpportunities))

	appendItems := func(items []transport.AnalysisItem, findingType domain.FindingType) {
		for _, item := range items {
			batch = append(batch, domain.Finding{
				ID:             uuid.New(),
				AgencyID:       scope.AgencyID,
				CustomerID:     req.CustomerID,
				AnalysisID:     req.AnalysisID,
				Type:           findingType,
				Status:         domain.StatusPendingReview,
				Title:          item.Name,
				Description:    item.Recommendation,
				Benefit:        item.Benefit,
				Priority:       item.Priority,
				ImpactText:     item.EstimatedCost,
				EstimatedValue: domain.ParseEstimatedValue(item.EstimatedCost),
				SalesScript:    item.SalesScript,
				CreatedAt:      now,
				UpdatedAt:      now,
			})
		}
	}

	appendItems(req.Results.Gaps, domain.TypeGap)
	appendItems(req.Results.UpsellOpportunities, domain.TypeUpsell)
	appendItems(req.Results.CrossSellOpportunities, domain.TypeCrossSell)

	if len(batch) == 0 {
		return []domain.Finding{}, nil
	}
	if err := s.repo.AppendFindings(ctx, scope.AgencyID, batch); err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "failed to persist findings", err)
	}

	if s.bus != nil {
		s.bus.Publish(ctx, events.FindingsIngested{
			BaseEvent:  events.NewBaseEvent(),
			AgencyID:   scope.AgencyID,
			CustomerID: req.CustomerID,
			AnalysisID: req.AnalysisID,
			Count:      len(batch),
		})
	}
	return batch, nil
}

// SetStatus records a reviewer decision. It is a pure field replacement
// and idempotent: setting the same status twice leaves one finding in
// that status with the other fields untouched.
func (s *Service) SetStatus(ctx context.Context, scope tenant.Scope, findingID uuid.UUID, status domain.FindingStatus) (*domain.Finding, error) {
	if !status.IsReviewOutcome() {
		return nil, nil
	}

	return s.patch(ctx, scope, findingID, func(f *domain.Finding) bool {
		if f.Status == status {
			return false
		}
		f.Status = status
		return true
	}, func(f domain.Finding) {
		if s.bus != nil {
			s.bus.Publish(ctx, events.FindingReviewed{
				BaseEvent: events.NewBaseEvent(),
				AgencyID:  scope.AgencyID,
				FindingID: f.ID,
				Status:    string(f.Status),
			})
		}
	})
}

// EditContent corrects finding content. The review status is untouched.
func (s *Service) EditContent(ctx context.Context, scope tenant.Scope, findingID uuid.UUID, req transport.EditContentRequest) (*domain.Finding, error) {
	return s.patch(ctx, scope, findingID, func(f *domain.Finding) bool {
		if req.Title != nil {
			f.Title = *req.Title
		}
		if req.Description != nil {
			f.Description = *req.Description
		}
		if req.Benefit != nil {
			f.Benefit = *req.Benefit
		}
		return true
	}, nil)
}

// CountVerifiedOpportunities tallies verified upsell and cross-sell
// findings. Gap findings are informational and excluded.
func (s *Service) CountVerifiedOpportunities(ctx context.Context, scope tenant.Scope) domain.VerifiedOpportunityCounts {
	if !scope.Valid() {
		return domain.VerifiedOpportunityCounts{}
	}
	return domain.CountVerifiedOpportunities(s.repo.Findings(ctx, scope.AgencyID))
}

// patch applies an in-place mutation to one finding. The apply func
// returns false to signal an idempotent repeat, which skips the write
// and returns the finding as-is.
func (s *Service) patch(ctx context.Context, scope tenant.Scope, findingID uuid.UUID, apply func(*domain.Finding) bool, after func(domain.Finding)) (*domain.Finding, error) {
	if !scope.Valid() {
		return nil, nil
	}

	current := s.repo.Findings(ctx, scope.AgencyID)
	idx := -1
	for i, f := range current {
		if f.ID == findingID {
			idx = i
			break
		}
	}
	if idx == -1 {
		return nil, nil
	}

	next := make([]domain.Finding, len(current))
	copy(next, current)
	if !apply(&next[idx]) {
		unchanged := current[idx]
		return &unchanged, nil
	}
	next[idx].UpdatedAt = s.now()

	if err := s.repo.ReplaceFindings(ctx, scope.AgencyID, next); err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "failed to persist finding update", err)
	}
	updated := next[idx]
	if after != nil {
		after(updated)
	}
	return &updated, nil
}
