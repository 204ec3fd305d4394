package services

import (
	"context"
	"fmt"
	"sort"
	"time"

	"fms/internal/models"
	"fms/internal/providers"
	"fms/internal/roster"
	"fms/internal/scoring"
	"fms/internal/structures"
	"fms/internal/timewindow"
)

// ReportReceipt confirms an accepted report submission.
type ReportReceipt struct {
	Rank       string  `json:"rank"`
	UserID     string  `json:"userId"`
	Nick       string  `json:"nick"`
	Date       string  `json:"date"`
	AdminUnits float64 `json:"adminUnits"`
	ExtraRaw   float64 `json:"extraRaw"`
	DayAdmin   float64 `json:"dayAdmin"`
	DayExtra   float64 `json:"dayExtra"`
}

// DailyScoreboard is a live or memoized daily leaderboard.
type DailyScoreboard struct {
	Rank string                    `json:"rank"`
	Date string                    `json:"date"`
	Rows []models.DailySnapshotRow `json:"rows"`
}

// WeeklyScoreboard wraps a weekly snapshot with its rank.
type WeeklyScoreboard struct {
	Rank string `json:"rank"`
	*models.WeeklySnapshot
}

// ResetResult reports the outcome of a today-reset.
type ResetResult struct {
	Rank    string `json:"rank"`
	Date    string `json:"date"`
	Cleared int    `json:"cleared"`
}

// ClearResult reports the outcome of the manual week reset: the cleared
// pre-week window and per-rank deleted entry counts.
type ClearResult struct {
	Today         string         `json:"today"`
	ThisWeekStart string         `json:"thisWeekStart"`
	RangeStart    string         `json:"rangeStart"`
	RangeEnd      string         `json:"rangeEnd"`
	Cleared       map[string]int `json:"cleared"`
}

// DemotionCandidate is a serving member below the weekly threshold.
type DemotionCandidate struct {
	UserID      string  `json:"userId"`
	Nick        string  `json:"nick"`
	Rank        string  `json:"rank"`
	WeeklyTotal float64 `json:"weeklyTotal"`
}

// DemotionReport lists candidates ascending by weekly total.
type DemotionReport struct {
	WeekStart  string              `json:"weekStart"`
	WeekEnd    string              `json:"weekEnd"`
	Threshold  float64             `json:"threshold"`
	Candidates []DemotionCandidate `json:"candidates"`
}

// SummaryReport carries the raw per-rank counters for the supervisor view.
type SummaryReport struct {
	Date  string               `json:"date"`
	Ranks []models.RankSummary `json:"ranks"`
}

type FulfillmentServiceInterface interface {
	SubmitReport(rank, userID, nick string, counts map[string]int) (*ReportReceipt, error)
	TodayScores(ctx context.Context, rank string) (*DailyScoreboard, error)
	WeekScores(ctx context.Context, rank string) (*WeeklyScoreboard, error)
	YesterdayScores(ctx context.Context, rank string) (*DailyScoreboard, error)
	LastWeekScores(ctx context.Context, rank string) (*WeeklyScoreboard, error)
	Summary() (*SummaryReport, error)
	DemotionCandidates(ctx context.Context) (*DemotionReport, error)
	ResetToday(rank, userID string, all bool, date string) (*ResetResult, error)
	ClearPrevWeek() (*ClearResult, error)
	DailyAutoReset() error
	WeeklyAutoReset(ctx context.Context) error
	InitWeekIfEmpty()
	RankNames() []string
	ReportDate() string
	WeekStartDate() string
}

// FulfillmentService orchestrates the scoring engine over the document store.
// All mutation funnels through the store's named methods; this layer adds the
// temporal windowing, roster construction, and snapshot memoization.
type FulfillmentService struct {
	conf    *structures.Config
	logger  providers.Logger
	store   *models.DocumentStore
	calc    *timewindow.Calculator
	builder *roster.Builder
	ranks   *scoring.RankSet
	now     func() time.Time
}

func NewFulfillmentService(conf *structures.Config, logger providers.Logger, store *models.DocumentStore, calc *timewindow.Calculator, builder *roster.Builder, ranks *scoring.RankSet) FulfillmentServiceInterface {
	return &FulfillmentService{
		conf:    conf,
		logger:  logger,
		store:   store,
		calc:    calc,
		builder: builder,
		ranks:   ranks,
		now:     time.Now,
	}
}

// SetNow overrides the clock. Test hook only.
func (s *FulfillmentService) SetNow(now func() time.Time) {
	s.now = now
}

func (s *FulfillmentService) RankNames() []string {
	return s.ranks.Names()
}

// ReportDate is the current logical day, rolling over at the reset hour.
func (s *FulfillmentService) ReportDate() string {
	return s.calc.ReportDate(s.now())
}

// WeekStartDate is the Sunday that opens the current report date's week.
func (s *FulfillmentService) WeekStartDate() string {
	return s.calc.WeekStart(s.calc.ReportDate(s.now()))
}

// SubmitReport runs the score model over the raw counts and accumulates the
// result into today's daily entry for the user.
func (s *FulfillmentService) SubmitReport(rank, userID, nick string, counts map[string]int) (*ReportReceipt, error) {
	cfg, err := s.ranks.ByName(rank)
	if err != nil {
		return nil, err
	}
	if userID == "" {
		return nil, fmt.Errorf("userId is required")
	}

	admin := scoring.PrimaryUnits(cfg, counts)
	extra := scoring.ExtraPoints(cfg, counts)
	date := s.calc.ReportDate(s.now())

	day, err := s.store.SubmitReport(rank, userID, nick, date, admin, extra)
	if err != nil {
		return nil, err
	}

	s.logger.Infof(providers.TypeApp, "Report accepted: rank=%s user=%s date=%s admin=%.1f extra=%.1f", rank, userID, date, admin, extra)
	return &ReportReceipt{
		Rank:       rank,
		UserID:     userID,
		Nick:       nick,
		Date:       date,
		AdminUnits: admin,
		ExtraRaw:   extra,
		DayAdmin:   day.Admin,
		DayExtra:   day.Extra,
	}, nil
}

// buildRoster unions submitters with current role holders and refreshes the
// stored nicks from the fresh lookup.
func (s *FulfillmentService) buildRoster(ctx context.Context, cfg scoring.RankConfig) ([]models.RosterEntry, error) {
	entries, err := s.builder.Build(ctx, cfg.RoleID, s.store.SubmitterEntries(cfg.Name))
	if err != nil {
		return nil, err
	}
	s.store.RefreshNicks(cfg.Name, roster.Nicks(entries))
	return entries, nil
}

func (s *FulfillmentService) TodayScores(ctx context.Context, rank string) (*DailyScoreboard, error) {
	cfg, err := s.ranks.ByName(rank)
	if err != nil {
		return nil, err
	}
	date := s.calc.ReportDate(s.now())
	entries, err := s.buildRoster(ctx, cfg)
	if err != nil {
		return nil, err
	}
	_, display := scoring.DayScores(cfg, date, entries)
	return &DailyScoreboard{Rank: rank, Date: date, Rows: scoring.SnapshotRows(display)}, nil
}

func (s *FulfillmentService) WeekScores(ctx context.Context, rank string) (*WeeklyScoreboard, error) {
	cfg, err := s.ranks.ByName(rank)
	if err != nil {
		return nil, err
	}
	weekStart := s.store.WeekStart(rank)
	if weekStart == "" {
		weekStart = s.calc.WeekStart(s.calc.ReportDate(s.now()))
	}
	entries, err := s.buildRoster(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return &WeeklyScoreboard{Rank: rank, WeeklySnapshot: scoring.AggregateWeek(cfg, weekStart, entries)}, nil
}

// YesterdayScores serves the frozen snapshot when one exists and otherwise
// computes, freezes, and returns it (memoized into history).
func (s *FulfillmentService) YesterdayScores(ctx context.Context, rank string) (*DailyScoreboard, error) {
	cfg, err := s.ranks.ByName(rank)
	if err != nil {
		return nil, err
	}
	date := s.calc.Yesterday(s.now())
	if rows, ok := s.store.DailySnapshot(rank, date); ok {
		return &DailyScoreboard{Rank: rank, Date: date, Rows: rows}, nil
	}

	entries, err := s.buildRoster(ctx, cfg)
	if err != nil {
		return nil, err
	}
	_, display := scoring.DayScores(cfg, date, entries)
	rows := scoring.SnapshotRows(display)
	if err := s.store.ApplyDailySnapshot(rank, date, rows); err != nil {
		return nil, err
	}
	return &DailyScoreboard{Rank: rank, Date: date, Rows: rows}, nil
}

// LastWeekScores serves the frozen weekly snapshot, computing and freezing it
// on first demand when the weekly job has not produced one yet.
func (s *FulfillmentService) LastWeekScores(ctx context.Context, rank string) (*WeeklyScoreboard, error) {
	cfg, err := s.ranks.ByName(rank)
	if err != nil {
		return nil, err
	}
	key := s.store.LastWeekStart(rank)
	if key == "" {
		weekStart := s.store.WeekStart(rank)
		if weekStart == "" {
			weekStart = s.calc.WeekStart(s.calc.ReportDate(s.now()))
		}
		key = timewindow.AddDays(weekStart, -7)
	}
	if snap, ok := s.store.WeeklySnapshotFor(rank, key); ok {
		return &WeeklyScoreboard{Rank: rank, WeeklySnapshot: snap}, nil
	}

	entries, err := s.buildRoster(ctx, cfg)
	if err != nil {
		return nil, err
	}
	snap := scoring.AggregateWeek(cfg, key, entries)
	if err := s.store.ApplyWeeklySnapshot(rank, snap); err != nil {
		return nil, err
	}
	if err := s.store.SetLastWeekStart(rank, key); err != nil {
		return nil, err
	}
	return &WeeklyScoreboard{Rank: rank, WeeklySnapshot: snap}, nil
}

func (s *FulfillmentService) Summary() (*SummaryReport, error) {
	date := s.calc.ReportDate(s.now())
	report := &SummaryReport{Date: date}
	for _, cfg := range s.ranks.All() {
		sum, err := s.store.Summary(cfg.Name, date)
		if err != nil {
			return nil, err
		}
		report.Ranks = append(report.Ranks, sum)
	}
	return report, nil
}

func (s *FulfillmentService) ResetToday(rank, userID string, all bool, date string) (*ResetResult, error) {
	if _, err := s.ranks.ByName(rank); err != nil {
		return nil, err
	}
	if !all && userID == "" {
		return nil, fmt.Errorf("either userId or all must be given")
	}
	if date == "" {
		date = s.calc.ReportDate(s.now())
	}
	cleared, err := s.store.ResetToday(rank, date, userID, all)
	if err != nil {
		return nil, err
	}
	s.logger.Infof(providers.TypeApp, "Reset rank=%s date=%s all=%t cleared=%d", rank, date, all, cleared)
	return &ResetResult{Rank: rank, Date: date, Cleared: cleared}, nil
}

// ClearPrevWeek is the manual start-fresh operation: it deletes raw daily
// data for the 7 report days immediately preceding the current week, leaving
// the in-progress week untouched, and advances the active week start.
func (s *FulfillmentService) ClearPrevWeek() (*ClearResult, error) {
	today := s.calc.ReportDate(s.now())
	thisWeekStart := s.calc.WeekStart(today)
	rangeStart := timewindow.AddDays(thisWeekStart, -7)

	res := &ClearResult{
		Today:         today,
		ThisWeekStart: thisWeekStart,
		RangeStart:    rangeStart,
		RangeEnd:      thisWeekStart,
		Cleared:       make(map[string]int),
	}
	for _, cfg := range s.ranks.All() {
		cleared, err := s.store.ClearWindow(cfg.Name, rangeStart, thisWeekStart)
		if err != nil {
			return nil, err
		}
		if err := s.store.AdvanceWeek(cfg.Name, thisWeekStart, rangeStart); err != nil {
			return nil, err
		}
		res.Cleared[cfg.Name] = cleared
	}
	s.pruneRetention(today)
	s.logger.Infof(providers.TypeApp, "Manual week reset: cleared %s..%s (exclusive)", rangeStart, thisWeekStart)
	return res, nil
}

// DailyAutoReset freezes yesterday's leaderboard per rank from submitted data
// only, then prunes raw and history entries past the retention window.
func (s *FulfillmentService) DailyAutoReset() error {
	yesterday := s.calc.Yesterday(s.now())
	for _, cfg := range s.ranks.All() {
		if _, ok := s.store.DailySnapshot(cfg.Name, yesterday); ok {
			s.logger.Debugf(providers.TypeJob, "Daily snapshot already frozen: rank=%s date=%s", cfg.Name, yesterday)
			continue
		}
		entries := s.store.SubmitterEntries(cfg.Name)
		_, display := scoring.DayScores(cfg, yesterday, entries)
		if err := s.store.ApplyDailySnapshot(cfg.Name, yesterday, scoring.SnapshotRows(display)); err != nil {
			s.logger.Errorf(providers.TypeJob, "Daily snapshot failed for rank %s: %s", cfg.Name, err)
			continue
		}
		s.logger.Infof(providers.TypeJob, "Daily snapshot stored: rank=%s date=%s rows=%d", cfg.Name, yesterday, len(display))
	}
	s.pruneRetention(s.calc.ReportDate(s.now()))
	return nil
}

// WeeklyAutoReset freezes last week's leaderboard per rank over the full
// roster, advances the active week, clears the completed week's raw data,
// and prunes history. A role-lookup failure for one rank is logged and does
// not prevent the other rank's snapshot. A rank whose week is already frozen
// keeps its snapshot; the re-run only completes the advance and clear.
func (s *FulfillmentService) WeeklyAutoReset(ctx context.Context) error {
	today := s.calc.ReportDate(s.now())
	thisWeekStart := s.calc.WeekStart(today)
	lastWeekStart := timewindow.AddDays(thisWeekStart, -7)

	var firstErr error
	for _, cfg := range s.ranks.All() {
		if _, ok := s.store.WeeklySnapshotFor(cfg.Name, lastWeekStart); ok {
			s.logger.Debugf(providers.TypeJob, "Weekly snapshot already frozen: rank=%s weekStart=%s", cfg.Name, lastWeekStart)
			_ = s.store.AdvanceWeek(cfg.Name, thisWeekStart, lastWeekStart)
			_, _ = s.store.ClearWindow(cfg.Name, lastWeekStart, thisWeekStart)
			continue
		}
		entries, err := s.buildRoster(ctx, cfg)
		if err != nil {
			s.logger.Errorf(providers.TypeLookup, "Weekly snapshot skipped for rank %s: %s", cfg.Name, err)
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		snap := scoring.AggregateWeek(cfg, lastWeekStart, entries)
		if err := s.store.ApplyWeeklySnapshot(cfg.Name, snap); err != nil {
			s.logger.Errorf(providers.TypeJob, "Weekly snapshot store failed for rank %s: %s", cfg.Name, err)
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		if err := s.store.AdvanceWeek(cfg.Name, thisWeekStart, lastWeekStart); err != nil {
			s.logger.Errorf(providers.TypeJob, "Week advance failed for rank %s: %s", cfg.Name, err)
			continue
		}
		cleared, _ := s.store.ClearWindow(cfg.Name, lastWeekStart, thisWeekStart)
		s.logger.Infof(providers.TypeJob, "Weekly reset: rank=%s weekStart=%s cleared=%d", cfg.Name, thisWeekStart, cleared)
	}
	s.pruneRetention(today)
	return firstErr
}

func (s *FulfillmentService) pruneRetention(today string) {
	dailyCutoff := timewindow.AddDays(today, -s.conf.Retention.KeepDays)
	weeklyCutoff := timewindow.AddDays(today, -s.conf.Retention.KeepWeeks*7)
	prunedDaily := s.store.PruneDaily(dailyCutoff)
	prunedWeekly := s.store.PruneWeekly(weeklyCutoff)
	if prunedDaily > 0 || prunedWeekly > 0 {
		s.logger.Infof(providers.TypeJob, "Pruned %d daily and %d weekly records", prunedDaily, prunedWeekly)
	}
}

// InitWeekIfEmpty anchors the active week on first startup.
func (s *FulfillmentService) InitWeekIfEmpty() {
	thisWeekStart := s.calc.WeekStart(s.calc.ReportDate(s.now()))
	for _, cfg := range s.ranks.All() {
		_ = s.store.InitWeekStart(cfg.Name, thisWeekStart)
	}
}

// DemotionCandidates lists currently serving members whose running weekly
// total is below the threshold, excluding recent joiners and exempt roles.
// Members holding both ranks are evaluated under lt_colonel only.
func (s *FulfillmentService) DemotionCandidates(ctx context.Context) (*DemotionReport, error) {
	now := s.now()
	today := s.calc.ReportDate(now)
	thisWeekStart := s.calc.WeekStart(today)
	extra := s.conf.RoleLookup.DemotionExcludedRoleIDs

	majCfg, err := s.ranks.ByName(scoring.RankMajor)
	if err != nil {
		return nil, err
	}
	ltCfg, err := s.ranks.ByName(scoring.RankLtColonel)
	if err != nil {
		return nil, err
	}

	majMembers, err := s.builder.Members(ctx, majCfg.RoleID, extra...)
	if err != nil {
		return nil, fmt.Errorf("demotion roster for %s: %w", majCfg.Name, err)
	}
	ltMembers, err := s.builder.Members(ctx, ltCfg.RoleID, extra...)
	if err != nil {
		return nil, fmt.Errorf("demotion roster for %s: %w", ltCfg.Name, err)
	}

	ltSet := make(map[string]bool, len(ltMembers))
	for _, m := range ltMembers {
		ltSet[m.UserID] = true
	}

	var onlyMaj, ltAll []roster.Member
	for _, m := range majMembers {
		if s.meetsTenure(now, m) && !ltSet[m.UserID] {
			onlyMaj = append(onlyMaj, m)
		}
	}
	for _, m := range ltMembers {
		if s.meetsTenure(now, m) {
			ltAll = append(ltAll, m)
		}
	}

	report := &DemotionReport{
		WeekStart: thisWeekStart,
		WeekEnd:   timewindow.AddDays(thisWeekStart, 6),
		Threshold: s.conf.Demotion.Threshold,
	}
	report.Candidates = append(report.Candidates, s.weeklyBelowThreshold(majCfg, thisWeekStart, onlyMaj)...)
	report.Candidates = append(report.Candidates, s.weeklyBelowThreshold(ltCfg, thisWeekStart, ltAll)...)

	sort.SliceStable(report.Candidates, func(i, j int) bool {
		return report.Candidates[i].WeeklyTotal < report.Candidates[j].WeeklyTotal
	})
	return report, nil
}

func (s *FulfillmentService) meetsTenure(now time.Time, m roster.Member) bool {
	if m.JoinedAt.IsZero() {
		return true
	}
	return now.Sub(m.JoinedAt) >= s.conf.Demotion.MinTenure
}

// weeklyBelowThreshold scores the given members over the rank's active week
// and keeps those below the demotion threshold.
func (s *FulfillmentService) weeklyBelowThreshold(cfg scoring.RankConfig, fallbackWeekStart string, members []roster.Member) []DemotionCandidate {
	if len(members) == 0 {
		return nil
	}
	weekStart := s.store.WeekStart(cfg.Name)
	if weekStart == "" {
		weekStart = fallbackWeekStart
	}

	seed := make(map[string]models.RosterEntry)
	for _, e := range s.store.SubmitterEntries(cfg.Name) {
		seed[e.UserID] = e
	}
	entries := make([]models.RosterEntry, 0, len(members))
	for _, m := range members {
		entry := models.RosterEntry{UserID: m.UserID, Nick: m.DisplayName}
		if se, ok := seed[m.UserID]; ok {
			entry.Daily = se.Daily
		}
		entries = append(entries, entry)
	}

	snap := scoring.AggregateWeek(cfg, weekStart, entries)
	var out []DemotionCandidate
	for _, row := range snap.List {
		if row.WeeklyTotal < s.conf.Demotion.Threshold {
			out = append(out, DemotionCandidate{
				UserID:      row.UserID,
				Nick:        row.Nick,
				Rank:        cfg.Name,
				WeeklyTotal: row.WeeklyTotal,
			})
		}
	}
	return out
}
