package models

// DailyCounts holds the raw score-model outputs accumulated for one user on
// one report date. Repeated same-day submissions add onto both fields.
type DailyCounts struct {
	Admin float64 `json:"admin"`
	Extra float64 `json:"extra"`
}

// UserRecord is created on a user's first report submission and never removed;
// clear operations delete individual daily entries only.
type UserRecord struct {
	Nick       string                  `json:"nick"`
	TotalAdmin float64                 `json:"totalAdmin"`
	TotalExtra float64                 `json:"totalExtra"`
	Daily      map[string]*DailyCounts `json:"daily"`
}

// DailySnapshotRow is one ranked line of a frozen daily leaderboard.
// Percentile is nil for users below the minimum-activity gate.
type DailySnapshotRow struct {
	UserID      string  `json:"userId"`
	Nick        string  `json:"nick"`
	Total       float64 `json:"total"`
	AdminPoints float64 `json:"adminPoints"`
	ExtraPoints float64 `json:"extraPoints"`
	Percentile  *int    `json:"percentile"`
	MeetsMin    bool    `json:"meetsMin"`
}

// WeeklyRow is one line of a weekly leaderboard, descending by WeeklyTotal.
type WeeklyRow struct {
	UserID      string  `json:"userId"`
	Nick        string  `json:"nick"`
	WeeklyTotal float64 `json:"weeklyTotal"`
}

type WeeklySnapshot struct {
	WeekStart string      `json:"weekStart"`
	WeekEnd   string      `json:"weekEnd"`
	List      []WeeklyRow `json:"list"`
}

type History struct {
	Daily  map[string][]DailySnapshotRow `json:"daily"`
	Weekly map[string]*WeeklySnapshot    `json:"weekly"`
}

// RankGroup is the persisted state of one rank. WeekStart and LastWeekStart
// only ever move forward, in 7-day steps.
type RankGroup struct {
	WeekStart     string                 `json:"weekStart"`
	LastWeekStart string                 `json:"lastWeekStart"`
	Users         map[string]*UserRecord `json:"users"`
	History       History                `json:"history"`
}

// Document is the full persisted state, keyed by rank name.
type Document map[string]*RankGroup

// RosterEntry is the runtime-only candidate row handed to the scorers.
// Daily is a copy of the user's daily map, or nil for a role holder who has
// never submitted (zero activity for every date).
type RosterEntry struct {
	UserID string
	Nick   string
	Daily  map[string]*DailyCounts
}

// RankSummary aggregates raw counters for one rank, used by the summary view.
type RankSummary struct {
	Rank       string  `json:"rank"`
	UserCount  int     `json:"userCount"`
	TotalAdmin float64 `json:"totalAdmin"`
	TotalExtra float64 `json:"totalExtra"`
	TodayAdmin float64 `json:"todayAdmin"`
	TodayExtra float64 `json:"todayExtra"`
}

// Normalize fills in any nil maps so the rest of the code never needs to
// nil-check structure that a hand-edited or older document may omit.
func (g *RankGroup) Normalize() {
	if g.Users == nil {
		g.Users = make(map[string]*UserRecord)
	}
	for _, u := range g.Users {
		if u.Daily == nil {
			u.Daily = make(map[string]*DailyCounts)
		}
	}
	if g.History.Daily == nil {
		g.History.Daily = make(map[string][]DailySnapshotRow)
	}
	if g.History.Weekly == nil {
		g.History.Weekly = make(map[string]*WeeklySnapshot)
	}
}

// NewRankGroup returns an empty, normalized group.
func NewRankGroup() *RankGroup {
	g := &RankGroup{}
	g.Normalize()
	return g
}
