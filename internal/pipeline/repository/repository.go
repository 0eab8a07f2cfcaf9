// Package repository provides tenant-partitioned collection access for the
// pipeline bounded context, backed by the local-first store.
package repository

import (
	"context"

	"agency_workspace_backend/internal/pipeline/domain"
	"agency_workspace_backend/internal/store"

	"github.com/google/uuid"
)

// Collection names under the tenant's workspace key space.
const (
	colInquiries     = "inquiries"
	colProspects     = "prospects"
	colOpportunities = "opportunities"
	colInteractions  = "interactions"
	colConversions   = "conversions"
)

// Repository owns the pipeline collections of every tenant. Each accessor
// takes the tenant id first; a zero id reads empty and writes nothing.
type Repository struct {
	inquiries     *store.Collection[domain.Inquiry]
	prospects     *store.Collection[domain.Prospect]
	opportunities *store.Collection[domain.Opportunity]
	interactions  *store.Collection[domain.Interaction]
	conversions   *store.Collection[domain.Conversion]
}

// New creates the repository over the given store.
func New(st *store.Store) *Repository {
	return &Repository{
		inquiries:     store.NewCollection[domain.Inquiry](st, colInquiries),
		prospects:     store.NewCollection[domain.Prospect](st, colProspects),
		opportunities: store.NewCollection[domain.Opportunity](st, colOpportunities),
		interactions:  store.NewCollection[domain.Interaction](st, colInteractions),
		conversions:   store.NewCollection[domain.Conversion](st, colConversions),
	}
}

// Inquiries returns the tenant's inquiry collection. The workflow engine
// treats inquiries as read-only; AppendInquiry exists for the intake
// channel endpoint only.
func (r *Repository) Inquiries(ctx context.Context, agencyID uuid.UUID) []domain.Inquiry {
	return r.inquiries.Load(ctx, agencyID)
}

// AppendInquiry registers an inbound inquiry from the intake channel.
func (r *Repository) AppendInquiry(ctx context.Context, agencyID uuid.UUID, inq domain.Inquiry) error {
	next := append(r.inquiries.Load(ctx, agencyID), inq)
	return r.inquiries.Replace(ctx, agencyID, next)
}

// Prospects returns the tenant's prospect collection.
func (r *Repository) Prospects(ctx context.Context, agencyID uuid.UUID) []domain.Prospect {
	return r.prospects.Load(ctx, agencyID)
}

// AppendProspect adds a newly materialized prospect.
func (r *Repository) AppendProspect(ctx context.Context, agencyID uuid.UUID, p domain.Prospect) error {
	next := append(r.prospects.Load(ctx, agencyID), p)
	return r.prospects.Replace(ctx, agencyID, next)
}

// Opportunities returns the tenant's opportunity collection.
func (r *Repository) Opportunities(ctx context.Context, agencyID uuid.UUID) []domain.Opportunity {
	return r.opportunities.Load(ctx, agencyID)
}

// ReplaceOpportunities persists the full next opportunity collection.
func (r *Repository) ReplaceOpportunities(ctx context.Context, agencyID uuid.UUID, next []domain.Opportunity) error {
	return r.opportunities.Replace(ctx, agencyID, next)
}

// AppendOpportunity adds a newly promoted opportunity.
func (r *Repository) AppendOpportunity(ctx context.Context, agencyID uuid.UUID, opp domain.Opportunity) error {
	next := append(r.opportunities.Load(ctx, agencyID), opp)
	return r.opportunities.Replace(ctx, agencyID, next)
}

// Interactions returns the tenant's interaction log.
func (r *Repository) Interactions(ctx context.Context, agencyID uuid.UUID) []domain.Interaction {
	return r.interactions.Load(ctx, agencyID)
}

// AppendInteraction adds a communication record. Interactions are never
// mutated after creation.
func (r *Repository) AppendInteraction(ctx context.Context, agencyID uuid.UUID, in domain.Interaction) error {
	next := append(r.interactions.Load(ctx, agencyID), in)
	return r.interactions.Replace(ctx, agencyID, next)
}

// Conversions returns the tenant's conversion ledger in insertion order.
func (r *Repository) Conversions(ctx context.Context, agencyID uuid.UUID) []domain.Conversion {
	return r.conversions.Load(ctx, agencyID)
}

// AppendConversion adds a ledger entry. The ledger has no update or
// delete operations.
func (r *Repository) AppendConversion(ctx context.Context, agencyID uuid.UUID, c domain.Conversion) error {
	next := append(r.conversions.Load(ctx, agencyID), c)
	return r.conversions.Replace(ctx, agencyID, next)
}
