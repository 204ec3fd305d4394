package roster

import (
	"context"
	"fmt"
	"time"

	"fms/internal/models"
)

// Member is one platform member currently holding a role, as reported by the
// external role-lookup collaborator.
type Member struct {
	UserID      string    `json:"userId"`
	DisplayName string    `json:"displayName"`
	JoinedAt    time.Time `json:"joinedAt"`
}

// LookupInterface is the external role-lookup collaborator. Implementations
// may block on network I/O; callers pass a context and must not hold locks
// across the call. extraExcludeRoleIDs are applied on top of the globally
// configured exclusions.
type LookupInterface interface {
	MembersWithRole(ctx context.Context, roleID string, extraExcludeRoleIDs ...string) ([]Member, error)
}

// Builder unions the two membership sources into the candidate list every
// ranking computation runs over: users who have ever submitted a report, and
// users currently holding the rank's role. Role holders without submission
// history get a nil daily ref (zero activity for all dates); submitters keep
// their stored daily data even after losing the role.
type Builder struct {
	lookup LookupInterface
}

func NewBuilder(lookup LookupInterface) *Builder {
	return &Builder{lookup: lookup}
}

// Members exposes the raw lookup for callers that need role membership
// without the submitter union (demotion tenure checks).
func (b *Builder) Members(ctx context.Context, roleID string, extraExcludeRoleIDs ...string) ([]Member, error) {
	return b.lookup.MembersWithRole(ctx, roleID, extraExcludeRoleIDs...)
}

// Build returns the roster for one rank: seed (submitters, from the document
// store) unioned with current role holders. A submitter's placeholder nick is
// backfilled from the role holder's display name.
func (b *Builder) Build(ctx context.Context, roleID string, seed []models.RosterEntry) ([]models.RosterEntry, error) {
	members, err := b.lookup.MembersWithRole(ctx, roleID)
	if err != nil {
		return nil, fmt.Errorf("role lookup for %s: %w", roleID, err)
	}

	byID := make(map[string]int, len(seed))
	entries := make([]models.RosterEntry, len(seed))
	copy(entries, seed)
	for i := range entries {
		byID[entries[i].UserID] = i
	}

	for _, m := range members {
		if i, ok := byID[m.UserID]; ok {
			if m.DisplayName != "" {
				entries[i].Nick = m.DisplayName
			}
			continue
		}
		byID[m.UserID] = len(entries)
		entries = append(entries, models.RosterEntry{
			UserID: m.UserID,
			Nick:   m.DisplayName,
		})
	}
	return entries, nil
}

// Nicks extracts the display-name mapping from a roster, for refreshing
// stored nicks after a fresh lookup.
func Nicks(entries []models.RosterEntry) map[string]string {
	nicks := make(map[string]string, len(entries))
	for _, e := range entries {
		if e.Nick != "" {
			nicks[e.UserID] = e.Nick
		}
	}
	return nicks
}
