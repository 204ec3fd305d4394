package scoring

import (
	"fmt"
	"testing"

	"fms/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testDate = "2025-06-10"

func entry(userID, nick string, admin, extra float64) models.RosterEntry {
	return models.RosterEntry{
		UserID: userID,
		Nick:   nick,
		Daily: map[string]*models.DailyCounts{
			testDate: {Admin: admin, Extra: extra},
		},
	}
}

func majorCfg() RankConfig {
	rs := testRankSet()
	cfg, _ := rs.ByName(RankMajor)
	return cfg
}

func TestDayScores_TieGroupSharesTopPercentile(t *testing.T) {
	roster := []models.RosterEntry{
		entry("u1", "A", 10, 5),
		entry("u2", "B", 10, 0),
		entry("u3", "C", 4, 0),
	}

	rows, _ := DayScores(majorCfg(), testDate, roster)
	require.Len(t, rows, 3)

	// Tie group (10, 10): start=0, percentile 1, top tier
	require.NotNil(t, rows[0].Percentile)
	assert.Equal(t, 1, *rows[0].Percentile)
	assert.Equal(t, float64(70), rows[0].AdminPoints)
	require.NotNil(t, rows[1].Percentile)
	assert.Equal(t, 1, *rows[1].Percentile)
	assert.Equal(t, float64(70), rows[1].AdminPoints)

	// Third place: start=2, floor(2/3*100)+1 = 67
	require.NotNil(t, rows[2].Percentile)
	assert.Equal(t, 67, *rows[2].Percentile)
	assert.Equal(t, float64(30), rows[2].AdminPoints)

	assert.Equal(t, float64(75), rows[0].Total)
	assert.Equal(t, float64(70), rows[1].Total)
	assert.Equal(t, float64(30), rows[2].Total)
}

func TestDayScores_SingleEligibleGetsPercentileOne(t *testing.T) {
	roster := []models.RosterEntry{entry("u1", "A", 3, 0)}

	rows, _ := DayScores(majorCfg(), testDate, roster)
	require.NotNil(t, rows[0].Percentile)
	assert.Equal(t, 1, *rows[0].Percentile)
	assert.Equal(t, float64(70), rows[0].AdminPoints)
}

func TestDayScores_BelowMinimumScoresZero(t *testing.T) {
	roster := []models.RosterEntry{
		entry("u1", "A", 2, 10), // below minimum 3; extra must not leak through
		entry("u2", "B", 5, 0),
	}

	rows, _ := DayScores(majorCfg(), testDate, roster)

	assert.False(t, rows[0].MeetsMin)
	assert.Nil(t, rows[0].Percentile)
	assert.Equal(t, float64(0), rows[0].AdminPoints)
	assert.Equal(t, float64(0), rows[0].ExtraPoints)
	assert.Equal(t, float64(0), rows[0].Total)

	assert.True(t, rows[1].MeetsMin)
	require.NotNil(t, rows[1].Percentile)
	assert.Equal(t, 1, *rows[1].Percentile)
}

func TestDayScores_ExactMinimumIsEligible(t *testing.T) {
	roster := []models.RosterEntry{entry("u1", "A", 3, 0)}
	rows, _ := DayScores(majorCfg(), testDate, roster)
	assert.True(t, rows[0].MeetsMin)
}

func TestDayScores_ExtraCappedAt30(t *testing.T) {
	roster := []models.RosterEntry{entry("u1", "A", 5, 45)}
	rows, _ := DayScores(majorCfg(), testDate, roster)
	assert.Equal(t, float64(30), rows[0].ExtraPoints)
	assert.Equal(t, float64(100), rows[0].Total)
}

func TestDayScores_TotalCappedAt100(t *testing.T) {
	roster := []models.RosterEntry{entry("u1", "A", 5, 30)}
	rows, _ := DayScores(majorCfg(), testDate, roster)
	// 70 + 30 hits the cap exactly
	assert.Equal(t, float64(100), rows[0].Total)
}

func TestDayScores_ZeroActivityRoleHolderPresent(t *testing.T) {
	// Role-holder with no submission history has a nil daily map; they still
	// appear in display with total 0 rather than being absent.
	roster := []models.RosterEntry{
		entry("u1", "A", 10, 0),
		{UserID: "u9", Nick: "Idle", Daily: nil},
	}

	rows, display := DayScores(majorCfg(), testDate, roster)
	require.Len(t, rows, 2)
	require.Len(t, display, 2)

	assert.Equal(t, "u9", display[1].UserID)
	assert.Equal(t, float64(0), display[1].Total)
	assert.False(t, display[1].MeetsMin)
	assert.Nil(t, display[1].Percentile)
}

func TestDayScores_RowsPreserveRosterOrder(t *testing.T) {
	roster := []models.RosterEntry{
		entry("u1", "A", 3, 0),
		entry("u2", "B", 9, 0),
		entry("u3", "C", 6, 0),
	}

	rows, _ := DayScores(majorCfg(), testDate, roster)
	assert.Equal(t, "u1", rows[0].UserID)
	assert.Equal(t, "u2", rows[1].UserID)
	assert.Equal(t, "u3", rows[2].UserID)
}

func TestDayScores_DisplaySortedByTotalDescending(t *testing.T) {
	roster := []models.RosterEntry{
		entry("u1", "A", 3, 0),
		entry("u2", "B", 9, 5),
		entry("u3", "C", 6, 0),
	}

	_, display := DayScores(majorCfg(), testDate, roster)
	for i := 1; i < len(display); i++ {
		assert.GreaterOrEqual(t, display[i-1].Total, display[i].Total)
	}
	assert.Equal(t, "u2", display[0].UserID)
}

func TestDayScores_DisplayTiesKeepRosterOrder(t *testing.T) {
	roster := []models.RosterEntry{
		entry("u1", "A", 5, 0),
		entry("u2", "B", 5, 0),
	}

	_, display := DayScores(majorCfg(), testDate, roster)
	// Equal totals: stable sort keeps roster order
	assert.Equal(t, "u1", display[0].UserID)
	assert.Equal(t, "u2", display[1].UserID)
}

func TestDayScores_NegativeStoredCountsClamped(t *testing.T) {
	roster := []models.RosterEntry{
		{
			UserID: "u1",
			Nick:   "A",
			Daily: map[string]*models.DailyCounts{
				testDate: {Admin: -4, Extra: -2},
			},
		},
	}

	rows, _ := DayScores(majorCfg(), testDate, roster)
	assert.Equal(t, float64(0), rows[0].AdminUnits)
	assert.Equal(t, float64(0), rows[0].ExtraRaw)
	assert.False(t, rows[0].MeetsMin)
}

func TestDayScores_OtherDateIgnored(t *testing.T) {
	roster := []models.RosterEntry{
		{
			UserID: "u1",
			Nick:   "A",
			Daily: map[string]*models.DailyCounts{
				"2025-06-09": {Admin: 50, Extra: 10},
			},
		},
	}

	rows, _ := DayScores(majorCfg(), testDate, roster)
	assert.Equal(t, float64(0), rows[0].AdminUnits)
}

func TestDayScores_EmptyRoster(t *testing.T) {
	rows, display := DayScores(majorCfg(), testDate, nil)
	assert.Empty(t, rows)
	assert.Empty(t, display)
}

func TestTopPercent_Monotonic(t *testing.T) {
	n := 50
	prev := 0
	for start := 0; start < n; start++ {
		pct := topPercent(start, n)
		assert.GreaterOrEqual(t, pct, 1)
		assert.LessOrEqual(t, pct, 100)
		assert.GreaterOrEqual(t, pct, prev)
		prev = pct
	}
}

func TestTopPercent_TopGroupAlwaysOne(t *testing.T) {
	for _, n := range []int{1, 2, 3, 10, 100, 1000} {
		assert.Equal(t, 1, topPercent(0, n), "n=%d", n)
	}
}

func TestAdminPointsByPercentile_TierBoundaries(t *testing.T) {
	tests := []struct {
		pct      int
		expected float64
	}{
		{1, 70}, {10, 70},
		{11, 50}, {34, 50},
		{35, 40}, {66, 40},
		{67, 30}, {90, 30},
		{91, 20}, {100, 20},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, adminPointsByPercentile(tt.pct), "pct=%d", tt.pct)
	}
}

func TestSnapshotRows_PreservesDisplayOrder(t *testing.T) {
	roster := []models.RosterEntry{
		entry("u1", "A", 3, 0),
		entry("u2", "B", 9, 5),
	}

	_, display := DayScores(majorCfg(), testDate, roster)
	snap := SnapshotRows(display)

	require.Len(t, snap, 2)
	assert.Equal(t, "u2", snap[0].UserID)
	assert.Equal(t, display[0].Total, snap[0].Total)
	assert.Equal(t, display[0].Percentile, snap[0].Percentile)
	assert.Equal(t, display[0].MeetsMin, snap[0].MeetsMin)
}

func BenchmarkDayScores(b *testing.B) {
	cfg := majorCfg()
	roster := make([]models.RosterEntry, 500)
	for i := range roster {
		roster[i] = entry(fmt.Sprintf("u%d", i), "nick", float64(i%20), float64(i%7))
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		DayScores(cfg, testDate, roster)
	}
}
