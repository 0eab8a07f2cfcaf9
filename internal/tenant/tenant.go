// Package tenant defines the tenant partition: the scope every workflow
// operation runs under. The scope is derived from the authenticated
// session and passed explicitly into services; no component reaches into
// ambient state to recover it.
package tenant

import (
	"agency_workspace_backend/platform/httpkit"

	"github.com/google/uuid"
)

// Scope identifies the agency (tenant) and acting agent for one operation.
// An invalid scope must cause operations to no-op with empty results, not
// fail; it is expected during session bootstrap.
type Scope struct {
	AgencyID uuid.UUID
	AgentID  uuid.UUID
}

// Valid reports whether the scope carries a tenant. Operations that also
// mutate on behalf of an agent additionally require a non-zero AgentID.
func (s Scope) Valid() bool {
	return s.AgencyID != uuid.Nil
}

// HasAgent reports whether the scope carries both tenant and agent.
func (s Scope) HasAgent() bool {
	return s.Valid() && s.AgentID != uuid.Nil
}

// FromIdentity derives the scope from an authenticated session identity.
func FromIdentity(id httpkit.Identity) Scope {
	if id == nil || !id.IsAuthenticated() {
		return Scope{}
	}
	return Scope{
		AgencyID: id.AgencyID(),
		AgentID:  id.AgentID(),
	}
}
