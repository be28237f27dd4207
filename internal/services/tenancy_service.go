package services

import (
	"errors"
	"fmt"
	"log"

	"github.com/scrollcampus/portal-api/internal/models"
	"github.com/scrollcampus/portal-api/internal/repository"
)

var (
	// ErrResolutionFailed means a membership store read failed; no context,
	// stale or otherwise, is produced.
	ErrResolutionFailed = errors.New("tenant resolution failed")
	// ErrNotAMember means the switch target is not among the caller's active
	// memberships. Nothing is mutated.
	ErrNotAMember = errors.New("not a member of the target institution")
	// ErrPersistFailed means the preference write failed after membership
	// validation passed. The caller stays in their prior tenant.
	ErrPersistFailed = errors.New("failed to persist tenant preference")
	// ErrSessionEnded means the session closed while the operation was in
	// flight; its result was discarded.
	ErrSessionEnded = errors.New("session ended")
)

// ActiveContext is the resolved tenant scope for one session: which
// institution the session acts in, the user's role there, and the full
// membership list it was derived from. It is always replaced as a whole;
// nothing mutates its fields after construction.
type ActiveContext struct {
	ActiveInstitution *models.Institution
	ActiveRole        models.Role // "" for the null context
	Memberships       []models.Membership
}

// IsNull reports whether the user has no active memberships. The null
// context is a valid terminal state, not an error.
func (c *ActiveContext) IsNull() bool {
	return c == nil || c.ActiveInstitution == nil
}

// HasAtLeast reports whether the session's active role grants the
// privileges of required. The null context fails every check.
func (c *ActiveContext) HasAtLeast(required models.Role) bool {
	if c.IsNull() {
		return false
	}
	return c.ActiveRole.AtLeast(required)
}

// TenancyService resolves which institution a session operates under and
// arbitrates switches between them.
type TenancyService struct {
	store    repository.MembershipStore
	notifier Notifier
}

// NewTenancyService creates a new TenancyService.
func NewTenancyService(store repository.MembershipStore, notifier Notifier) *TenancyService {
	return &TenancyService{
		store:    store,
		notifier: notifier,
	}
}

// Resolve computes the active context for a user: honor the stored
// preference when it names an institution the user is still a member of,
// otherwise fall back to the earliest-created membership and repair the
// stored preference to match.
func (s *TenancyService) Resolve(userID string) (*ActiveContext, error) {
	memberships, err := s.store.ListActiveMemberships(userID)
	if err != nil {
		return nil, fmt.Errorf("%w: listing memberships: %v", ErrResolutionFailed, err)
	}

	if len(memberships) == 0 {
		return &ActiveContext{}, nil
	}

	institutions, err := s.store.GetInstitutions(institutionIDs(memberships))
	if err != nil {
		return nil, fmt.Errorf("%w: fetching institutions: %v", ErrResolutionFailed, err)
	}
	byID := make(map[string]models.Institution, len(institutions))
	for _, inst := range institutions {
		byID[inst.ID] = inst
	}
	for i := range memberships {
		if inst, ok := byID[memberships[i].InstitutionID]; ok {
			memberships[i].Institution = inst
		}
	}

	preference, err := s.store.GetPreference(userID)
	if err != nil {
		return nil, fmt.Errorf("%w: fetching preference: %v", ErrResolutionFailed, err)
	}

	selected := -1
	if preference != "" {
		for i := range memberships {
			if memberships[i].InstitutionID == preference {
				selected = i
				break
			}
		}
	}
	if selected < 0 {
		// Missing or stale preference: fall back to the earliest-created
		// membership and persist the correction. The repair write is best
		// effort; a later resolution retries it.
		selected = 0
		if err := s.store.SetPreference(userID, memberships[0].InstitutionID); err != nil {
			log.Printf("tenancy: preference repair failed for user %s: %v", userID, err)
		}
	}

	target := memberships[selected]
	institution := target.Institution
	return &ActiveContext{
		ActiveInstitution: &institution,
		ActiveRole:        target.Role,
		Memberships:       memberships,
	}, nil
}

// SwitchTo validates the target against the current context's membership
// list, persists the new preference, and returns the replacement context.
// On any error the caller's visible state is unchanged.
func (s *TenancyService) SwitchTo(userID, institutionID string, current *ActiveContext) (*ActiveContext, error) {
	if current == nil {
		return nil, ErrNotAMember
	}

	var target *models.Membership
	for i := range current.Memberships {
		if current.Memberships[i].InstitutionID == institutionID {
			target = &current.Memberships[i]
			break
		}
	}
	if target == nil {
		return nil, ErrNotAMember
	}

	if err := s.store.SetPreference(userID, institutionID); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistFailed, err)
	}

	institution := target.Institution
	next := &ActiveContext{
		ActiveInstitution: &institution,
		ActiveRole:        target.Role,
		Memberships:       current.Memberships,
	}

	if s.notifier != nil {
		s.notifier.TenantSwitched(userID, institution.Name, target.Role)
	}

	return next, nil
}

// ResolveSession runs Resolve and commits the result into the session
// state, returning whichever context the session holds afterwards. If a
// switch completed while the resolution was in flight, the switch's result
// wins and is returned instead of the stale resolution.
func (s *TenancyService) ResolveSession(userID string, state *SessionState) (*ActiveContext, error) {
	token := state.BeginResolve()

	resolved, err := s.Resolve(userID)
	if err != nil {
		return nil, err
	}

	if !state.CommitResolve(token, resolved) {
		if current := state.Current(); current != nil {
			return current, nil
		}
		return nil, ErrSessionEnded
	}
	return resolved, nil
}

func institutionIDs(memberships []models.Membership) []string {
	seen := make(map[string]struct{}, len(memberships))
	ids := make([]string, 0, len(memberships))
	for _, m := range memberships {
		if _, ok := seen[m.InstitutionID]; ok {
			continue
		}
		seen[m.InstitutionID] = struct{}{}
		ids = append(ids, m.InstitutionID)
	}
	return ids
}
