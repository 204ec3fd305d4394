package controllers

import (
	"errors"
	"net/http"

	json "github.com/goccy/go-json"
	"github.com/spf13/cast"

	"fms/internal/providers"
	"fms/internal/scoring"
	"fms/internal/services"
)

const maxRequestBodySize = 1 << 20 // 1 MB

type ApiController struct {
	logger  providers.Logger
	service services.FulfillmentServiceInterface
	cache   providers.CacheProviderInterface
	metrics providers.MetricsProviderInterface
}

func NewApiController(logger providers.Logger, service services.FulfillmentServiceInterface, cache providers.CacheProviderInterface, metrics providers.MetricsProviderInterface) *ApiController {
	return &ApiController{
		logger:  logger,
		service: service,
		cache:   cache,
		metrics: metrics,
	}
}

func getRank(r *http.Request) string {
	return r.URL.Query().Get("rank")
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	gson, err := json.Marshal(v)
	if err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(gson)
}

// writeQueryError distinguishes a caller mistake from a roster-lookup outage:
// the latter is temporary and must not surface as an empty leaderboard.
func writeQueryError(w http.ResponseWriter, err error) {
	if errors.Is(err, scoring.ErrUnknownRank) {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}
	http.Error(w, "Service Unavailable", http.StatusServiceUnavailable)
}

func (ac *ApiController) serveFromCacheOrCompute(w http.ResponseWriter, cacheKey string, compute func() (any, error)) {
	if data, ok := ac.cache.Get(cacheKey); ok {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(data)
		return
	}

	result, err := compute()
	if err != nil {
		writeQueryError(w, err)
		return
	}

	gson, err := json.Marshal(result)
	if err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	ac.cache.Set(cacheKey, gson)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(gson)
}

// dayKey scopes a cached view to (view, rank, report date) so entries from
// before the reset-hour rollover can never be served for the new day.
func (ac *ApiController) dayKey(view, rank string) string {
	return view + ":" + rank + ":" + ac.service.ReportDate()
}

// weekKey additionally pins the active week start for week-scoped views.
func (ac *ApiController) weekKey(view, rank string) string {
	return view + ":" + rank + ":" + ac.service.WeekStartDate() + ":" + ac.service.ReportDate()
}

// invalidateRank drops every cached view a mutation for the rank can change.
func (ac *ApiController) invalidateRank(rank string) {
	keys := []string{
		ac.dayKey("today", rank),
		ac.dayKey("yesterday", rank),
		ac.weekKey("week", rank),
		ac.weekKey("lastweek", rank),
		"summary:" + ac.service.ReportDate(),
		"demotion:" + ac.service.ReportDate(),
	}
	for _, key := range keys {
		ac.cache.Del(key)
	}
}

type reportPayload struct {
	Rank   string         `json:"rank"`
	UserID string         `json:"userId"`
	Nick   string         `json:"nick"`
	Counts map[string]int `json:"counts"`
}

func (ac *ApiController) ReceiveReport(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
	var payload reportPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	receipt, err := ac.service.SubmitReport(payload.Rank, payload.UserID, payload.Nick, payload.Counts)
	if err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}
	ac.metrics.IncReportsTotal(payload.Rank)
	ac.invalidateRank(payload.Rank)

	writeJSON(w, http.StatusCreated, receipt)
}

func (ac *ApiController) GetTodayScores(w http.ResponseWriter, r *http.Request) {
	rank := getRank(r)
	ac.serveFromCacheOrCompute(w, ac.dayKey("today", rank), func() (any, error) {
		return ac.service.TodayScores(r.Context(), rank)
	})
}

func (ac *ApiController) GetWeekScores(w http.ResponseWriter, r *http.Request) {
	rank := getRank(r)
	ac.serveFromCacheOrCompute(w, ac.weekKey("week", rank), func() (any, error) {
		return ac.service.WeekScores(r.Context(), rank)
	})
}

func (ac *ApiController) GetYesterdayScores(w http.ResponseWriter, r *http.Request) {
	rank := getRank(r)
	ac.serveFromCacheOrCompute(w, ac.dayKey("yesterday", rank), func() (any, error) {
		return ac.service.YesterdayScores(r.Context(), rank)
	})
}

func (ac *ApiController) GetLastWeekScores(w http.ResponseWriter, r *http.Request) {
	rank := getRank(r)
	ac.serveFromCacheOrCompute(w, ac.weekKey("lastweek", rank), func() (any, error) {
		return ac.service.LastWeekScores(r.Context(), rank)
	})
}

func (ac *ApiController) GetSummary(w http.ResponseWriter, r *http.Request) {
	ac.serveFromCacheOrCompute(w, "summary:"+ac.service.ReportDate(), func() (any, error) {
		return ac.service.Summary()
	})
}

func (ac *ApiController) GetDemotionCandidates(w http.ResponseWriter, r *http.Request) {
	ac.serveFromCacheOrCompute(w, "demotion:"+ac.service.ReportDate(), func() (any, error) {
		return ac.service.DemotionCandidates(r.Context())
	})
}

type resetPayload struct {
	Rank   string `json:"rank"`
	UserID string `json:"userId"`
	All    any    `json:"all"`
	Date   string `json:"date"`
}

func (ac *ApiController) ResetToday(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
	var payload resetPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	res, err := ac.service.ResetToday(payload.Rank, payload.UserID, cast.ToBool(payload.All), payload.Date)
	if err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}
	ac.invalidateRank(payload.Rank)

	writeJSON(w, http.StatusOK, res)
}

func (ac *ApiController) ResetWeek(w http.ResponseWriter, r *http.Request) {
	res, err := ac.service.ClearPrevWeek()
	if err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	for _, rank := range ac.service.RankNames() {
		ac.invalidateRank(rank)
	}

	writeJSON(w, http.StatusOK, res)
}
