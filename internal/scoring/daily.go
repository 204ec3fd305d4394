package scoring

import (
	"sort"

	"fms/internal/models"
)

// Caps applied after percentile tiering.
const (
	extraCap = 30
	totalCap = 100
)

// Row is one scored roster entry for a single report date.
type Row struct {
	UserID      string  `json:"userId"`
	Nick        string  `json:"nick"`
	AdminUnits  float64 `json:"adminUnits"`
	ExtraRaw    float64 `json:"extraRaw"`
	MeetsMin    bool    `json:"meetsMin"`
	AdminPoints float64 `json:"adminPoints"`
	ExtraPoints float64 `json:"extraPoints"`
	Total       float64 `json:"total"`
	Percentile  *int    `json:"percentile"`
}

// DayScores scores every roster entry for one report date.
//
// Entries at or above the rank's minimum admin units are percentile-ranked
// among themselves by admin units; the rest score zero across the board with
// a nil percentile. The canonical percentile formula is the tie-aware
// floor(start/n*100)+1, where start is the first index of the entry's tie
// group in the eligible ordering. The top tie group therefore always lands
// at percentile 1, for any eligible count.
//
// rows preserves roster order; display is rows re-sorted descending by total
// with the stable sort breaking ties in roster order.
func DayScores(cfg RankConfig, date string, roster []models.RosterEntry) (rows, display []Row) {
	rows = make([]Row, len(roster))
	for i, rm := range roster {
		var admin, extra float64
		if rm.Daily != nil {
			if d, ok := rm.Daily[date]; ok {
				admin = d.Admin
				extra = d.Extra
			}
		}
		if admin < 0 {
			admin = 0
		}
		if extra < 0 {
			extra = 0
		}
		rows[i] = Row{
			UserID:     rm.UserID,
			Nick:       rm.Nick,
			AdminUnits: admin,
			ExtraRaw:   extra,
			MeetsMin:   admin >= cfg.MinimumUnits,
		}
	}

	eligible := make([]*Row, 0, len(rows))
	for i := range rows {
		if rows[i].MeetsMin {
			eligible = append(eligible, &rows[i])
		}
	}
	sort.SliceStable(eligible, func(i, j int) bool {
		return eligible[i].AdminUnits > eligible[j].AdminUnits
	})

	n := len(eligible)
	for i := 0; i < n; i++ {
		start := i
		for start > 0 && eligible[start-1].AdminUnits == eligible[i].AdminUnits {
			start--
		}
		pct := topPercent(start, n)
		cur := eligible[i]
		cur.Percentile = &pct
		cur.AdminPoints = adminPointsByPercentile(pct)
		cur.ExtraPoints = cur.ExtraRaw
		if cur.ExtraPoints > extraCap {
			cur.ExtraPoints = extraCap
		}
		cur.Total = cur.AdminPoints + cur.ExtraPoints
		if cur.Total > totalCap {
			cur.Total = totalCap
		}
	}

	display = make([]Row, len(rows))
	copy(display, rows)
	sort.SliceStable(display, func(i, j int) bool {
		return display[i].Total > display[j].Total
	})
	return rows, display
}

// SnapshotRows converts the display ordering into immutable history rows.
func SnapshotRows(display []Row) []models.DailySnapshotRow {
	out := make([]models.DailySnapshotRow, len(display))
	for i, r := range display {
		out[i] = models.DailySnapshotRow{
			UserID:      r.UserID,
			Nick:        r.Nick,
			Total:       r.Total,
			AdminPoints: r.AdminPoints,
			ExtraPoints: r.ExtraPoints,
			Percentile:  r.Percentile,
			MeetsMin:    r.MeetsMin,
		}
	}
	return out
}

// topPercent maps the first index of a tie group to a 1-indexed percentile.
func topPercent(start, n int) int {
	if n <= 0 {
		return 1
	}
	pct := start*100/n + 1
	if pct < 1 {
		pct = 1
	}
	return pct
}

// adminPointsByPercentile is the fixed reward tier table.
func adminPointsByPercentile(pct int) float64 {
	switch {
	case pct <= 10:
		return 70
	case pct <= 34:
		return 50
	case pct <= 66:
		return 40
	case pct <= 90:
		return 30
	default:
		return 20
	}
}
