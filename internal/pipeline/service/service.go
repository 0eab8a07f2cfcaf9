// Package service implements the opportunity stage machine, the lead
// intake filter, and the conversion ledger writes for the pipeline
// bounded context.
package service

import (
	"context"
	"fmt"
	"time"

	"agency_workspace_backend/internal/events"
	"agency_workspace_backend/internal/pipeline/domain"
	"agency_workspace_backend/internal/pipeline/transport"
	"agency_workspace_backend/internal/scheduler"
	"agency_workspace_backend/internal/tenant"
	"agency_workspace_backend/platform/apperr"
	"agency_workspace_backend/platform/config"
	"agency_workspace_backend/platform/phone"

	"github.com/google/uuid"
)

// Repository defines the data access interface needed by the pipeline service.
// This is a consumer-driven interface - only what the stage machine needs.
type Repository interface {
	Inquiries(ctx context.Context, agencyID uuid.UUID) []domain.Inquiry
	AppendInquiry(ctx context.Context, agencyID uuid.UUID, inq domain.Inquiry) error
	Prospects(ctx context.Context, agencyID uuid.UUID) []domain.Prospect
	AppendProspect(ctx context.Context, agencyID uuid.UUID, p domain.Prospect) error
	Opportunities(ctx context.Context, agencyID uuid.UUID) []domain.Opportunity
	ReplaceOpportunities(ctx context.Context, agencyID uuid.UUID, next []domain.Opportunity) error
	AppendOpportunity(ctx context.Context, agencyID uuid.UUID, opp domain.Opportunity) error
	Interactions(ctx context.Context, agencyID uuid.UUID) []domain.Interaction
	AppendInteraction(ctx context.Context, agencyID uuid.UUID, in domain.Interaction) error
	Conversions(ctx context.Context, agencyID uuid.UUID) []domain.Conversion
	AppendConversion(ctx context.Context, agencyID uuid.UUID, c domain.Conversion) error
}

// ReminderScheduler schedules follow-up reminders. A nil scheduler
// disables reminders without affecting the rest of the workflow.
type ReminderScheduler interface {
	ScheduleFollowUpReminder(ctx context.Context, payload scheduler.FollowUpReminderPayload, runAt time.Time) error
}

// Inquiry feed views.
const (
	ViewUnassigned = "unassigned"
	ViewHot        = "hot"
	ViewReferral   = "referral"
)

// Service handles pipeline workflow operations. Mutations that find no
// tenant scope or no matching entity return (nil, nil): "nothing
// happened," never a workflow-halting error.
type Service struct {
	repo      Repository
	bus       events.Bus
	reminders ReminderScheduler
	intake    config.IntakeConfig
	now       func() time.Time
}

// New creates a new pipeline service.
func New(repo Repository, bus events.Bus, reminders ReminderScheduler, intake config.IntakeConfig) *Service {
	return &Service{
		repo:      repo,
		bus:       bus,
		reminders: reminders,
		intake:    intake,
		now:       time.Now,
	}
}

// CreateInquiry registers an inbound lead on behalf of the intake channel.
// The workflow engine itself never mutates the inquiry afterwards.
func (s *Service) CreateInquiry(ctx context.Context, scope tenant.Scope, req transport.CreateInquiryRequest) (*domain.Inquiry, error) {
	if !scope.Valid() {
		return nil, nil
	}

	inq := domain.Inquiry{
		ID:             uuid.New(),
		AgencyID:       scope.AgencyID,
		FirstName:      req.FirstName,
		LastName:       req.LastName,
		Email:          req.Email,
		Phone:          phone.NormalizeE164(req.Phone),
		Source:         req.Source,
		PolicyInterest: req.PolicyInterest,
		Purpose:        req.Purpose,
		Details:        req.Details,
		Consent:        req.Consent,
		CreatedAt:      s.now(),
	}
	if err := s.repo.AppendInquiry(ctx, scope.AgencyID, inq); err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "failed to persist inquiry", err)
	}
	return &inq, nil
}

// InquiryFeed returns the requested intake view. The hot and referral
// classifications apply on top of the unassigned set and never mutate it.
func (s *Service) InquiryFeed(ctx context.Context, scope tenant.Scope, view string) []domain.Inquiry {
	if !scope.Valid() {
		return []domain.Inquiry{}
	}

	unassigned := domain.Unassigned(
		s.repo.Inquiries(ctx, scope.AgencyID),
		s.repo.Opportunities(ctx, scope.AgencyID),
	)

	switch view {
	case ViewHot:
		return domain.FilterHot(unassigned, s.now(), s.intake.GetHotInquiryWindow())
	case ViewReferral:
		return domain.FilterReferral(unassigned, s.intake.GetReferralSourceTag())
	default:
		return unassigned
	}
}

// Opportunities returns the tenant's pipeline board.
func (s *Service) Opportunities(ctx context.Context, scope tenant.Scope) []domain.Opportunity {
	if !scope.Valid() {
		return []domain.Opportunity{}
	}
	return s.repo.Opportunities(ctx, scope.AgencyID)
}

// Promote materializes a prospect from the inquiry's contact block and
// opens an opportunity at the new stage with value 0. It requires both
// tenant and agent context and no-ops silently without them. Calling it
// twice for the same inquiry violates the uniqueness invariant; the
// engine does not self-heal that, but Integrity detects it.
func (s *Service) Promote(ctx context.Context, scope tenant.Scope, inquiryID uuid.UUID) (*domain.Opportunity, error) {
	if !scope.HasAgent() {
		return nil, nil
	}

	var inquiry *domain.Inquiry
	for _, inq := range s.repo.Inquiries(ctx, scope.AgencyID) {
		if inq.ID == inquiryID {
			found := inq
			inquiry = &found
			break
		}
	}
	if inquiry == nil {
		return nil, nil
	}

	now := s.now()
	prospect := domain.Prospect{
		ID:        uuid.New(),
		AgencyID:  scope.AgencyID,
		InquiryID: inquiry.ID,
		FirstName: inquiry.FirstName,
		LastName:  inquiry.LastName,
		Email:     inquiry.Email,
		Phone:     phone.NormalizeE164(inquiry.Phone),
		CreatedAt: now,
	}
	if err := s.repo.AppendProspect(ctx, scope.AgencyID, prospect); err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "failed to persist prospect", err)
	}

	opp := domain.Opportunity{
		ID:         uuid.New(),
		AgencyID:   scope.AgencyID,
		AgentID:    scope.AgentID,
		Title:      fmt.Sprintf("%s %s (%s)", inquiry.FirstName, inquiry.LastName, inquiry.PolicyInterest),
		Value:      0,
		ProspectID: prospect.ID,
		InquiryID:  inquiry.ID,
		Stage:      domain.StageNew,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.repo.AppendOpportunity(ctx, scope.AgencyID, opp); err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "failed to persist opportunity", err)
	}

	if s.bus != nil {
		s.bus.Publish(ctx, events.OpportunityPromoted{
			BaseEvent:     events.NewBaseEvent(),
			AgencyID:      scope.AgencyID,
			AgentID:       scope.AgentID,
			OpportunityID: opp.ID,
			InquiryID:     inquiry.ID,
			ProspectID:    prospect.ID,
		})
	}
	return &opp, nil
}

// Transition replaces the opportunity's stage and stamps UpdatedAt. A
// transition to won additionally appends a conversion ledger entry; the
// stage write is rolled back if the ledger append fails, so from the
// caller's perspective both happen or neither does. Unknown ids and
// rejected moves (leaving a terminal stage) report "no change."
func (s *Service) Transition(ctx context.Context, scope tenant.Scope, opportunityID uuid.UUID, to domain.Stage) (*domain.Opportunity, error) {
	if !scope.Valid() || !domain.IsKnownStage(to) {
		return nil, nil
	}

	current := s.repo.Opportunities(ctx, scope.AgencyID)
	idx := -1
	for i, opp := range current {
		if opp.ID == opportunityID {
			idx = i
			break
		}
	}
	if idx == -1 {
		return nil, nil
	}

	from := current[idx].Stage
	if !domain.CanTransition(from, to) {
		return nil, nil
	}
	if from.Terminal() && from == to {
		// Re-entrant terminal transition is a no-op.
		return nil, nil
	}

	next := make([]domain.Opportunity, len(current))
	copy(next, current)
	next[idx].Stage = to
	next[idx].UpdatedAt = s.now()

	if err := s.repo.ReplaceOpportunities(ctx, scope.AgencyID, next); err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "failed to persist stage transition", err)
	}
	updated := next[idx]

	if to == domain.StageWon {
		conversion := domain.Conversion{
			ID:            uuid.New(),
			AgencyID:      scope.AgencyID,
			Date:          updated.UpdatedAt,
			Kind:          domain.ConversionKindWon,
			Value:         updated.Value,
			AttributionID: updated.InquiryID,
		}
		if err := s.repo.AppendConversion(ctx, scope.AgencyID, conversion); err != nil {
			// Keep the stage and the ledger consistent: undo the stage write.
			if rbErr := s.repo.ReplaceOpportunities(ctx, scope.AgencyID, current); rbErr != nil {
				return nil, apperr.Wrap(apperr.KindInternal,
					fmt.Sprintf("failed to append conversion and stage rollback failed: %v", rbErr), err)
			}
			return nil, apperr.Wrap(apperr.KindInternal, "failed to append conversion", err)
		}
		if s.bus != nil {
			s.bus.Publish(ctx, events.OpportunityWon{
				BaseEvent:     events.NewBaseEvent(),
				AgencyID:      scope.AgencyID,
				OpportunityID: updated.ID,
				InquiryID:     updated.InquiryID,
				Value:         updated.Value,
			})
		}
	}

	if s.bus != nil {
		s.bus.Publish(ctx, events.OpportunityStageChanged{
			BaseEvent:     events.NewBaseEvent(),
			AgencyID:      scope.AgencyID,
			OpportunityID: updated.ID,
			FromStage:     string(from),
			ToStage:       string(to),
		})
	}
	return &updated, nil
}

// Move is the drag-and-drop path. The board policy is stricter than the
// stage machine: terminal cards cannot be picked up and terminal columns
// accept no drops, so closing a deal goes through Close instead.
func (s *Service) Move(ctx context.Context, scope tenant.Scope, opportunityID uuid.UUID, to domain.Stage) (*domain.Opportunity, error) {
	if !scope.Valid() || !domain.CanDropInto(to) {
		return nil, nil
	}

	for _, opp := range s.repo.Opportunities(ctx, scope.AgencyID) {
		if opp.ID == opportunityID {
			if !domain.CanPickUp(opp.Stage) {
				return nil, nil
			}
			return s.Transition(ctx, scope, opportunityID, to)
		}
	}
	return nil, nil
}

// Close marks an opportunity won or lost. It bypasses the board policy
// and goes straight through the stage machine.
func (s *Service) Close(ctx context.Context, scope tenant.Scope, opportunityID uuid.UUID, outcome domain.Stage) (*domain.Opportunity, error) {
	if !outcome.Terminal() {
		return nil, nil
	}
	return s.Transition(ctx, scope, opportunityID, outcome)
}

// UpdateDetails edits deal fields outside the stage lifecycle and bumps
// UpdatedAt. Terminal opportunities stay editable; only their stage is
// frozen.
func (s *Service) UpdateDetails(ctx context.Context, scope tenant.Scope, opportunityID uuid.UUID, req transport.UpdateOpportunityRequest) (*domain.Opportunity, error) {
	return s.patch(ctx, scope, opportunityID, func(opp *domain.Opportunity) {
		if req.Title != nil {
			opp.Title = *req.Title
		}
		if req.Value != nil {
			opp.Value = *req.Value
		}
	})
}

// SetFollowUp schedules the next follow-up for an opportunity and, when
// a scheduler is configured, enqueues the reminder.
func (s *Service) SetFollowUp(ctx context.Context, scope tenant.Scope, opportunityID uuid.UUID, at time.Time) (*domain.Opportunity, error) {
	updated, err := s.patch(ctx, scope, opportunityID, func(opp *domain.Opportunity) {
		opp.NextFollowUpAt = &at
	})
	if err != nil || updated == nil {
		return updated, err
	}

	if s.reminders != nil {
		payload := scheduler.FollowUpReminderPayload{
			OpportunityID: updated.ID.String(),
			AgencyID:      updated.AgencyID.String(),
			AgentID:       updated.AgentID.String(),
			Title:         updated.Title,
		}
		if err := s.reminders.ScheduleFollowUpReminder(ctx, payload, at); err != nil {
			// The follow-up date is already persisted; a reminder failure
			// must not undo it.
			return updated, nil
		}
	}
	return updated, nil
}

// AddInteraction appends a communication record to the tenant's log.
func (s *Service) AddInteraction(ctx context.Context, scope tenant.Scope, req transport.AddInteractionRequest) (*domain.Interaction, error) {
	if !scope.HasAgent() {
		return nil, nil
	}

	now := s.now()
	occurred := now
	if req.OccurredAt != nil {
		occurred = *req.OccurredAt
	}

	in := domain.Interaction{
		ID:         uuid.New(),
		AgencyID:   scope.AgencyID,
		AgentID:    scope.AgentID,
		Type:       req.Type,
		Direction:  req.Direction,
		Content:    req.Content,
		OccurredAt: occurred,
		CreatedAt:  now,
	}
	if err := s.repo.AppendInteraction(ctx, scope.AgencyID, in); err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "failed to persist interaction", err)
	}
	return &in, nil
}

// Interactions returns the tenant's interaction log.
func (s *Service) Interactions(ctx context.Context, scope tenant.Scope) []domain.Interaction {
	if !scope.Valid() {
		return []domain.Interaction{}
	}
	return s.repo.Interactions(ctx, scope.AgencyID)
}

// Conversions returns the tenant's conversion ledger.
func (s *Service) Conversions(ctx context.Context, scope tenant.Scope) []domain.Conversion {
	if !scope.Valid() {
		return []domain.Conversion{}
	}
	return s.repo.Conversions(ctx, scope.AgencyID)
}

// Integrity reports inquiries promoted into more than one opportunity.
// The engine does not auto-correct the violation.
func (s *Service) Integrity(ctx context.Context, scope tenant.Scope) []uuid.UUID {
	if !scope.Valid() {
		return nil
	}
	return domain.DuplicatePromotions(s.repo.Opportunities(ctx, scope.AgencyID))
}

func (s *Service) patch(ctx context.Context, scope tenant.Scope, opportunityID uuid.UUID, apply func(*domain.Opportunity)) (*domain.Opportunity, error) {
	if !scope.Valid() {
		return nil, nil
	}

	current := s.repo.Opportunities(ctx, scope.AgencyID)
	idx := -1
	for i, opp := range current {
		if opp.ID == opportunityID {
			idx = i
			break
		}
	}
	if idx == -1 {
		return nil, nil
	}

	next := make([]domain.Opportunity, len(current))
	copy(next, current)
	apply(&next[idx])
	next[idx].UpdatedAt = s.now()

	if err := s.repo.ReplaceOpportunities(ctx, scope.AgencyID, next); err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "failed to persist opportunity update", err)
	}
	updated := next[idx]
	return &updated, nil
}
