package scoring

import (
	"sort"

	"fms/internal/models"
	"fms/internal/timewindow"
)

// AggregateWeek sums daily totals across the 7 report dates of the week
// starting at weekStart. Every roster member starts at zero, so members with
// no activity still appear in the list, sorted last. Each date is scored
// exactly once per aggregation regardless of how many members reference it.
func AggregateWeek(cfg RankConfig, weekStart string, roster []models.RosterEntry) *models.WeeklySnapshot {
	totals := make(map[string]*models.WeeklyRow, len(roster))
	order := make([]string, 0, len(roster))
	for _, rm := range roster {
		if _, ok := totals[rm.UserID]; ok {
			continue
		}
		totals[rm.UserID] = &models.WeeklyRow{UserID: rm.UserID, Nick: rm.Nick}
		order = append(order, rm.UserID)
	}

	for _, date := range timewindow.WeekDates(weekStart) {
		rows, _ := DayScores(cfg, date, roster)
		for _, r := range rows {
			totals[r.UserID].WeeklyTotal += r.Total
		}
	}

	list := make([]models.WeeklyRow, 0, len(order))
	for _, id := range order {
		list = append(list, *totals[id])
	}
	sort.SliceStable(list, func(i, j int) bool {
		return list[i].WeeklyTotal > list[j].WeeklyTotal
	})

	return &models.WeeklySnapshot{
		WeekStart: weekStart,
		WeekEnd:   timewindow.AddDays(weekStart, 6),
		List:      list,
	}
}
