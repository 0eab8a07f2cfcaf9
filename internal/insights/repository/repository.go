// Package repository provides tenant-partitioned findings storage for the
// insights bounded context, backed by the local-first store.
package repository

import (
	"context"

	"agency_workspace_backend/internal/insights/domain"
	"agency_workspace_backend/internal/store"

	"github.com/google/uuid"
)

const colFindings = "findings"

// Repository owns the findings collection of every tenant.
type Repository struct {
	findings *store.Collection[domain.Finding]
}

// New creates the repository over the given store.
func New(st *store.Store) *Repository {
	return &Repository{
		findings: store.NewCollection[domain.Finding](st, colFindings),
	}
}

// Findings returns the tenant's findings collection.
func (r *Repository) Findings(ctx context.Context, agencyID uuid.UUID) []domain.Finding {
	return r.findings.Load(ctx, agencyID)
}

// AppendFindings adds a batch of new findings in one write, so one
// analysis materializes atomically or not at all.
func (r *Repository) AppendFindings(ctx context.Context, agencyID uuid.UUID, batch []domain.Finding) error {
	next := append(r.findings.Load(ctx, agencyID), batch...)
	return r.findings.Replace(ctx, agencyID, next)
}

// ReplaceFindings persists the full next findings collection.
func (r *Repository) ReplaceFindings(ctx context.Context, agencyID uuid.UUID, next []domain.Finding) error {
	return r.findings.Replace(ctx, agencyID, next)
}
