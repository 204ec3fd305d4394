package scoring

import (
	"testing"

	"fms/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testWeekStart = "2025-06-08" // a Sunday

func weekEntry(userID, nick string, daily map[string]*models.DailyCounts) models.RosterEntry {
	return models.RosterEntry{UserID: userID, Nick: nick, Daily: daily}
}

func TestAggregateWeek_SumsDailyTotals(t *testing.T) {
	// Sole eligible member each day: percentile 1, adminPoints 70.
	roster := []models.RosterEntry{
		weekEntry("u1", "A", map[string]*models.DailyCounts{
			"2025-06-08": {Admin: 5, Extra: 2},
			"2025-06-10": {Admin: 4, Extra: 0},
		}),
	}

	snap := AggregateWeek(majorCfg(), testWeekStart, roster)
	require.Len(t, snap.List, 1)
	// (70+2) + (70+0)
	assert.Equal(t, float64(142), snap.List[0].WeeklyTotal)
}

func TestAggregateWeek_WindowBounds(t *testing.T) {
	snapDates := map[string]*models.DailyCounts{
		"2025-06-07": {Admin: 10, Extra: 0}, // Saturday before: out of window
		"2025-06-08": {Admin: 10, Extra: 0}, // week start
		"2025-06-14": {Admin: 10, Extra: 0}, // week end
		"2025-06-15": {Admin: 10, Extra: 0}, // next Sunday: out of window
	}
	roster := []models.RosterEntry{weekEntry("u1", "A", snapDates)}

	snap := AggregateWeek(majorCfg(), testWeekStart, roster)
	assert.Equal(t, "2025-06-08", snap.WeekStart)
	assert.Equal(t, "2025-06-14", snap.WeekEnd)
	// Two in-window days at 70 each
	assert.Equal(t, float64(140), snap.List[0].WeeklyTotal)
}

func TestAggregateWeek_ZeroScorersPresentAndLast(t *testing.T) {
	roster := []models.RosterEntry{
		weekEntry("idle", "Idle", nil),
		weekEntry("u1", "A", map[string]*models.DailyCounts{
			"2025-06-09": {Admin: 6, Extra: 0},
		}),
	}

	snap := AggregateWeek(majorCfg(), testWeekStart, roster)
	require.Len(t, snap.List, 2)
	assert.Equal(t, "u1", snap.List[0].UserID)
	assert.Equal(t, "idle", snap.List[1].UserID)
	assert.Equal(t, float64(0), snap.List[1].WeeklyTotal)
}

func TestAggregateWeek_SortedDescending(t *testing.T) {
	roster := []models.RosterEntry{
		weekEntry("low", "L", map[string]*models.DailyCounts{
			"2025-06-09": {Admin: 4, Extra: 0},
		}),
		weekEntry("high", "H", map[string]*models.DailyCounts{
			"2025-06-09": {Admin: 9, Extra: 5},
			"2025-06-10": {Admin: 9, Extra: 5},
		}),
	}

	snap := AggregateWeek(majorCfg(), testWeekStart, roster)
	for i := 1; i < len(snap.List); i++ {
		assert.GreaterOrEqual(t, snap.List[i-1].WeeklyTotal, snap.List[i].WeeklyTotal)
	}
	assert.Equal(t, "high", snap.List[0].UserID)
}

func TestAggregateWeek_TiesKeepRosterOrder(t *testing.T) {
	daily := map[string]*models.DailyCounts{
		"2025-06-09": {Admin: 5, Extra: 0},
	}
	roster := []models.RosterEntry{
		weekEntry("u1", "A", daily),
		weekEntry("u2", "B", daily),
	}

	snap := AggregateWeek(majorCfg(), testWeekStart, roster)
	require.Len(t, snap.List, 2)
	assert.Equal(t, snap.List[0].WeeklyTotal, snap.List[1].WeeklyTotal)
	assert.Equal(t, "u1", snap.List[0].UserID)
}

func TestAggregateWeek_DuplicateRosterEntriesCollapsed(t *testing.T) {
	daily := map[string]*models.DailyCounts{
		"2025-06-09": {Admin: 5, Extra: 0},
	}
	roster := []models.RosterEntry{
		weekEntry("u1", "A", daily),
		weekEntry("u1", "A", daily),
	}

	snap := AggregateWeek(majorCfg(), testWeekStart, roster)
	assert.Len(t, snap.List, 1)
}

func TestAggregateWeek_EmptyRoster(t *testing.T) {
	snap := AggregateWeek(majorCfg(), testWeekStart, nil)
	assert.Empty(t, snap.List)
	assert.Equal(t, testWeekStart, snap.WeekStart)
	assert.Equal(t, "2025-06-14", snap.WeekEnd)
}
