package roster

import (
	"context"
	"errors"
	"testing"

	"fms/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeLookup struct {
	members map[string][]Member
	err     error
}

func (f *fakeLookup) MembersWithRole(_ context.Context, roleID string, _ ...string) ([]Member, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.members[roleID], nil
}

func seedEntry(userID, nick string) models.RosterEntry {
	return models.RosterEntry{
		UserID: userID,
		Nick:   nick,
		Daily: map[string]*models.DailyCounts{
			"2025-06-10": {Admin: 5},
		},
	}
}

func TestBuild_UnionOfSubmittersAndRoleHolders(t *testing.T) {
	b := NewBuilder(&fakeLookup{members: map[string][]Member{
		"role-1": {
			{UserID: "u1", DisplayName: "Kim"},
			{UserID: "u3", DisplayName: "Park"},
		},
	}})

	seed := []models.RosterEntry{
		seedEntry("u1", "Kim"),
		seedEntry("u2", "Lee"), // submitter who since lost the role
	}

	entries, err := b.Build(context.Background(), "role-1", seed)
	require.NoError(t, err)
	require.Len(t, entries, 3)

	ids := map[string]models.RosterEntry{}
	for _, e := range entries {
		ids[e.UserID] = e
	}
	assert.Contains(t, ids, "u1")
	assert.Contains(t, ids, "u2")
	assert.Contains(t, ids, "u3")

	// Role holder without submissions: nil daily ref
	assert.Nil(t, ids["u3"].Daily)
	// Submitter keeps daily data even without the role
	assert.NotNil(t, ids["u2"].Daily)
}

func TestBuild_SeedOrderPreserved(t *testing.T) {
	b := NewBuilder(&fakeLookup{members: map[string][]Member{
		"role-1": {{UserID: "u9", DisplayName: "New"}},
	}})

	seed := []models.RosterEntry{seedEntry("u1", "Kim"), seedEntry("u2", "Lee")}

	entries, err := b.Build(context.Background(), "role-1", seed)
	require.NoError(t, err)
	assert.Equal(t, "u1", entries[0].UserID)
	assert.Equal(t, "u2", entries[1].UserID)
	assert.Equal(t, "u9", entries[2].UserID)
}

func TestBuild_NickBackfilledFromRoleHolder(t *testing.T) {
	b := NewBuilder(&fakeLookup{members: map[string][]Member{
		"role-1": {{UserID: "u1", DisplayName: "Fresh Nick"}},
	}})

	seed := []models.RosterEntry{seedEntry("u1", "stale")}

	entries, err := b.Build(context.Background(), "role-1", seed)
	require.NoError(t, err)
	assert.Equal(t, "Fresh Nick", entries[0].Nick)
}

func TestBuild_EmptyDisplayNameDoesNotErase(t *testing.T) {
	b := NewBuilder(&fakeLookup{members: map[string][]Member{
		"role-1": {{UserID: "u1", DisplayName: ""}},
	}})

	seed := []models.RosterEntry{seedEntry("u1", "Kim")}

	entries, err := b.Build(context.Background(), "role-1", seed)
	require.NoError(t, err)
	assert.Equal(t, "Kim", entries[0].Nick)
}

func TestBuild_DuplicateRoleHoldersCollapsed(t *testing.T) {
	b := NewBuilder(&fakeLookup{members: map[string][]Member{
		"role-1": {
			{UserID: "u1", DisplayName: "Kim"},
			{UserID: "u1", DisplayName: "Kim"},
		},
	}})

	entries, err := b.Build(context.Background(), "role-1", nil)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestBuild_LookupFailurePropagates(t *testing.T) {
	lookupErr := errors.New("gateway down")
	b := NewBuilder(&fakeLookup{err: lookupErr})

	_, err := b.Build(context.Background(), "role-1", nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, lookupErr))
}

func TestBuild_EmptySeedAndNoHolders(t *testing.T) {
	b := NewBuilder(&fakeLookup{})
	entries, err := b.Build(context.Background(), "role-1", nil)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestNicks(t *testing.T) {
	entries := []models.RosterEntry{
		{UserID: "u1", Nick: "Kim"},
		{UserID: "u2", Nick: ""},
	}
	nicks := Nicks(entries)
	assert.Equal(t, map[string]string{"u1": "Kim"}, nicks)
}
