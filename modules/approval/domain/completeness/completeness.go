// Package completeness computes whether an event plan has collected every
// sign-off it needs for final approval. It is the single source of truth:
// both the finalize guard and the release gate consume this computation and
// neither recomputes any subset of it on its own.
package completeness

import (
	"github.com/campus-hq/venue-portal/modules/approval/domain/letter"
	"github.com/campus-hq/venue-portal/modules/approval/domain/plan"
)

// Snapshot is the derived, read-time completeness state of one plan.
type Snapshot struct {
	// Authorities holds one entry per required role, true once that role's
	// active letter is an approval.
	Authorities map[letter.Role]bool
	// ServiceProviderEngaged is true when the plan was forwarded to the
	// service-provider track or a service-provider letter exists.
	ServiceProviderEngaged bool
	// ServiceProviderSatisfied is true when the service-provider track does
	// not block final approval: either the track was never engaged, or its
	// active letter is an approval.
	ServiceProviderSatisfied bool
	ReadyForApproval         bool
}

// Compute derives the snapshot from the active ledger letters plus the
// plan's own status. A service-provider letter always takes priority over
// the status fallback; the status is consulted only when no letter exists.
func Compute(status plan.Status, letters []*letter.Letter) Snapshot {
	s := Snapshot{
		Authorities: make(map[letter.Role]bool, len(letter.RequiredRoles())),
	}
	for _, role := range letter.RequiredRoles() {
		s.Authorities[role] = false
	}

	var providerLetter *letter.Letter
	for _, l := range letters {
		if l.Superseded {
			continue
		}
		if l.Role == letter.RoleServiceProvider {
			providerLetter = l
			continue
		}
		if _, required := s.Authorities[l.Role]; required {
			s.Authorities[l.Role] = l.Kind == letter.KindApproval
		}
	}

	switch {
	case providerLetter != nil:
		s.ServiceProviderEngaged = true
		s.ServiceProviderSatisfied = providerLetter.Kind == letter.KindApproval
	case status == plan.StatusForwarded:
		// Forwarded but not yet decided: the barrier stays down.
		s.ServiceProviderEngaged = true
		s.ServiceProviderSatisfied = false
	case status.IsTerminal():
		s.ServiceProviderSatisfied = status == plan.StatusApproved
	default:
		// The track was never engaged for this plan; it does not block.
		s.ServiceProviderSatisfied = true
	}

	authoritiesComplete := true
	for _, approved := range s.Authorities {
		if !approved {
			authoritiesComplete = false
			break
		}
	}
	s.ReadyForApproval = authoritiesComplete && s.ServiceProviderSatisfied

	return s
}

// MissingRoles lists every role still blocking final approval, in the stable
// RequiredRoles order, with service-provider last.
func (s Snapshot) MissingRoles() []letter.Role {
	var missing []letter.Role
	for _, role := range letter.RequiredRoles() {
		if !s.Authorities[role] {
			missing = append(missing, role)
		}
	}
	if !s.ServiceProviderSatisfied {
		missing = append(missing, letter.RoleServiceProvider)
	}
	return missing
}
