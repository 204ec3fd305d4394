package models

import (
	"fmt"
	"sort"
	"sync"
)

// DocumentStore owns the in-memory document. Every mutation goes through a
// named method so the totals invariant (TotalAdmin == sum of daily admin,
// same for extra) can be restored at a single chokepoint after deletions.
type DocumentStore struct {
	mu  sync.RWMutex
	doc Document
}

// NewStore creates a store with an empty group per rank name.
func NewStore(rankNames []string) *DocumentStore {
	doc := make(Document, len(rankNames))
	for _, name := range rankNames {
		doc[name] = NewRankGroup()
	}
	return &DocumentStore{doc: doc}
}

// Put replaces the whole document, normalizing missing substructure and
// making sure every configured rank still has a group.
func (s *DocumentStore) Put(doc Document) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if doc == nil {
		doc = make(Document)
	}
	for name := range s.doc {
		if doc[name] == nil {
			doc[name] = NewRankGroup()
		}
	}
	for _, g := range doc {
		g.Normalize()
	}
	s.doc = doc
}

// Export returns a deep copy of the document for persistence.
func (s *DocumentStore) Export() Document {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(Document, len(s.doc))
	for name, g := range s.doc {
		cp := &RankGroup{
			WeekStart:     g.WeekStart,
			LastWeekStart: g.LastWeekStart,
			Users:         make(map[string]*UserRecord, len(g.Users)),
			History: History{
				Daily:  make(map[string][]DailySnapshotRow, len(g.History.Daily)),
				Weekly: make(map[string]*WeeklySnapshot, len(g.History.Weekly)),
			},
		}
		for id, u := range g.Users {
			uc := &UserRecord{
				Nick:       u.Nick,
				TotalAdmin: u.TotalAdmin,
				TotalExtra: u.TotalExtra,
				Daily:      make(map[string]*DailyCounts, len(u.Daily)),
			}
			for d, c := range u.Daily {
				dc := *c
				uc.Daily[d] = &dc
			}
			cp.Users[id] = uc
		}
		for d, rows := range g.History.Daily {
			cp.History.Daily[d] = append([]DailySnapshotRow(nil), rows...)
		}
		for w, snap := range g.History.Weekly {
			sc := &WeeklySnapshot{
				WeekStart: snap.WeekStart,
				WeekEnd:   snap.WeekEnd,
				List:      append([]WeeklyRow(nil), snap.List...),
			}
			cp.History.Weekly[w] = sc
		}
		out[name] = cp
	}
	return out
}

func (s *DocumentStore) group(rank string) (*RankGroup, error) {
	g, ok := s.doc[rank]
	if !ok {
		return nil, fmt.Errorf("unknown rank %q", rank)
	}
	return g, nil
}

// SubmitReport accumulates one report's score-model outputs into the user's
// daily entry and running totals. The accumulation and the totals update are
// a single critical section, so readers never observe a partial update.
func (s *DocumentStore) SubmitReport(rank, userID, nick, date string, admin, extra float64) (*DailyCounts, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	g, err := s.group(rank)
	if err != nil {
		return nil, err
	}
	u, ok := g.Users[userID]
	if !ok {
		u = &UserRecord{Nick: nick, Daily: make(map[string]*DailyCounts)}
		g.Users[userID] = u
	}
	if nick != "" {
		u.Nick = nick
	}
	dc, ok := u.Daily[date]
	if !ok {
		dc = &DailyCounts{}
		u.Daily[date] = dc
	}
	dc.Admin += admin
	dc.Extra += extra
	u.TotalAdmin += admin
	u.TotalExtra += extra

	day := *dc
	return &day, nil
}

// ResetToday deletes date's entry for one user (userID set) or every user
// (all set), then recomputes totals. Deleting an absent entry is a no-op, so
// the operation is idempotent. Returns the number of entries removed.
func (s *DocumentStore) ResetToday(rank, date, userID string, all bool) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	g, err := s.group(rank)
	if err != nil {
		return 0, err
	}
	cleared := 0
	if all {
		for _, u := range g.Users {
			if _, ok := u.Daily[date]; ok {
				delete(u.Daily, date)
				cleared++
			}
		}
	} else if u, ok := g.Users[userID]; ok {
		if _, ok := u.Daily[date]; ok {
			delete(u.Daily, date)
			cleared++
		}
	}
	if cleared > 0 {
		recomputeTotals(g)
	}
	return cleared, nil
}

// ClearWindow deletes every daily entry with rangeStart <= date < rangeEnd
// across all users of the rank, then recomputes totals.
func (s *DocumentStore) ClearWindow(rank, rangeStart, rangeEnd string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	g, err := s.group(rank)
	if err != nil {
		return 0, err
	}
	cleared := 0
	for _, u := range g.Users {
		for date := range u.Daily {
			if date >= rangeStart && date < rangeEnd {
				delete(u.Daily, date)
				cleared++
			}
		}
	}
	recomputeTotals(g)
	return cleared, nil
}

// RecomputeTotals restores the totals invariant for every rank. Exposed for
// load-time self-healing; the mutation methods already call it as needed.
func (s *DocumentStore) RecomputeTotals() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, g := range s.doc {
		recomputeTotals(g)
	}
}

func recomputeTotals(g *RankGroup) {
	for _, u := range g.Users {
		var a, e float64
		for _, d := range u.Daily {
			a += d.Admin
			e += d.Extra
		}
		u.TotalAdmin = a
		u.TotalExtra = e
	}
}

// ApplyDailySnapshot freezes a computed daily leaderboard into history.
// History is append-only: a date that is already frozen keeps its first
// snapshot, even if the underlying raw data has changed since.
func (s *DocumentStore) ApplyDailySnapshot(rank, date string, rows []DailySnapshotRow) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	g, err := s.group(rank)
	if err != nil {
		return err
	}
	if _, ok := g.History.Daily[date]; ok {
		return nil
	}
	g.History.Daily[date] = rows
	return nil
}

// DailySnapshot returns the frozen leaderboard for date, if one exists.
func (s *DocumentStore) DailySnapshot(rank, date string) ([]DailySnapshotRow, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	g, err := s.group(rank)
	if err != nil {
		return nil, false
	}
	rows, ok := g.History.Daily[date]
	if !ok {
		return nil, false
	}
	return append([]DailySnapshotRow(nil), rows...), true
}

// ApplyWeeklySnapshot freezes a weekly leaderboard into history. Like the
// daily history, a week that is already frozen keeps its first snapshot.
func (s *DocumentStore) ApplyWeeklySnapshot(rank string, snap *WeeklySnapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	g, err := s.group(rank)
	if err != nil {
		return err
	}
	if _, ok := g.History.Weekly[snap.WeekStart]; ok {
		return nil
	}
	g.History.Weekly[snap.WeekStart] = snap
	return nil
}

func (s *DocumentStore) WeeklySnapshotFor(rank, weekStart string) (*WeeklySnapshot, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	g, err := s.group(rank)
	if err != nil {
		return nil, false
	}
	snap, ok := g.History.Weekly[weekStart]
	if !ok {
		return nil, false
	}
	cp := &WeeklySnapshot{
		WeekStart: snap.WeekStart,
		WeekEnd:   snap.WeekEnd,
		List:      append([]WeeklyRow(nil), snap.List...),
	}
	return cp, true
}

// AdvanceWeek moves the active week forward. Week starts never move backward;
// a stale or repeated advance is ignored.
func (s *DocumentStore) AdvanceWeek(rank, weekStart, lastWeekStart string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	g, err := s.group(rank)
	if err != nil {
		return err
	}
	if g.WeekStart != "" && weekStart <= g.WeekStart {
		return nil
	}
	g.WeekStart = weekStart
	g.LastWeekStart = lastWeekStart
	return nil
}

// InitWeekStart sets the active week on first startup only.
func (s *DocumentStore) InitWeekStart(rank, weekStart string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	g, err := s.group(rank)
	if err != nil {
		return err
	}
	if g.WeekStart == "" {
		g.WeekStart = weekStart
	}
	return nil
}

// WeekStart returns the active week start for the rank ("" if never set).
func (s *DocumentStore) WeekStart(rank string) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if g, err := s.group(rank); err == nil {
		return g.WeekStart
	}
	return ""
}

func (s *DocumentStore) LastWeekStart(rank string) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if g, err := s.group(rank); err == nil {
		return g.LastWeekStart
	}
	return ""
}

// SetLastWeekStart records the week key served by the memoized last-week
// snapshot so later queries skip recomputation.
func (s *DocumentStore) SetLastWeekStart(rank, weekStart string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	g, err := s.group(rank)
	if err != nil {
		return err
	}
	g.LastWeekStart = weekStart
	return nil
}

// PruneDaily removes raw daily entries and daily history strictly older than
// cutoff, for every rank. Totals are recomputed afterwards.
func (s *DocumentStore) PruneDaily(cutoff string) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	pruned := 0
	for _, g := range s.doc {
		for _, u := range g.Users {
			for date := range u.Daily {
				if date < cutoff {
					delete(u.Daily, date)
					pruned++
				}
			}
		}
		for date := range g.History.Daily {
			if date < cutoff {
				delete(g.History.Daily, date)
				pruned++
			}
		}
		recomputeTotals(g)
	}
	return pruned
}

// PruneWeekly removes weekly history whose week start is older than cutoff.
func (s *DocumentStore) PruneWeekly(cutoff string) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	pruned := 0
	for _, g := range s.doc {
		for weekStart := range g.History.Weekly {
			if weekStart < cutoff {
				delete(g.History.Weekly, weekStart)
				pruned++
			}
		}
	}
	return pruned
}

// SubmitterEntries builds roster entries for every user who has ever
// submitted a report for the rank, sorted by user id for determinism.
// Daily maps are copied so scoring never races a concurrent mutation.
func (s *DocumentStore) SubmitterEntries(rank string) []RosterEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	g, err := s.group(rank)
	if err != nil {
		return nil
	}
	ids := make([]string, 0, len(g.Users))
	for id := range g.Users {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	entries := make([]RosterEntry, 0, len(ids))
	for _, id := range ids {
		u := g.Users[id]
		daily := make(map[string]*DailyCounts, len(u.Daily))
		for d, c := range u.Daily {
			dc := *c
			daily[d] = &dc
		}
		entries = append(entries, RosterEntry{UserID: id, Nick: u.Nick, Daily: daily})
	}
	return entries
}

// RefreshNicks updates stored display names from a fresh roster fetch.
func (s *DocumentStore) RefreshNicks(rank string, nicks map[string]string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	g, err := s.group(rank)
	if err != nil {
		return
	}
	for id, nick := range nicks {
		if u, ok := g.Users[id]; ok && nick != "" {
			u.Nick = nick
		}
	}
}

// UserCount returns the number of users who have ever submitted for the rank.
func (s *DocumentStore) UserCount(rank string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if g, err := s.group(rank); err == nil {
		return len(g.Users)
	}
	return 0
}

// Summary aggregates raw counters for one rank as of the given report date.
func (s *DocumentStore) Summary(rank, date string) (RankSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	g, err := s.group(rank)
	if err != nil {
		return RankSummary{}, err
	}
	sum := RankSummary{Rank: rank, UserCount: len(g.Users)}
	for _, u := range g.Users {
		sum.TotalAdmin += u.TotalAdmin
		sum.TotalExtra += u.TotalExtra
		if d, ok := u.Daily[date]; ok {
			sum.TodayAdmin += d.Admin
			sum.TodayExtra += d.Extra
		}
	}
	return sum, nil
}
