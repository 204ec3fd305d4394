package internal

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"fms/internal/controllers"
	"fms/internal/providers"
	"fms/internal/services"
	"fms/internal/structures"
	"fms/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- minimal mocks for routes test ---

type routeTestMockService struct{}

func (m *routeTestMockService) SubmitReport(_, _, _ string, _ map[string]int) (*services.ReportReceipt, error) {
	return &services.ReportReceipt{}, nil
}
func (m *routeTestMockService) TodayScores(_ context.Context, _ string) (*services.DailyScoreboard, error) {
	return nil, nil
}
func (m *routeTestMockService) WeekScores(_ context.Context, _ string) (*services.WeeklyScoreboard, error) {
	return nil, nil
}
func (m *routeTestMockService) YesterdayScores(_ context.Context, _ string) (*services.DailyScoreboard, error) {
	return nil, nil
}
func (m *routeTestMockService) LastWeekScores(_ context.Context, _ string) (*services.WeeklyScoreboard, error) {
	return nil, nil
}
func (m *routeTestMockService) Summary() (*services.SummaryReport, error) { return nil, nil }
func (m *routeTestMockService) DemotionCandidates(_ context.Context) (*services.DemotionReport, error) {
	return nil, nil
}
func (m *routeTestMockService) ResetToday(_, _ string, _ bool, _ string) (*services.ResetResult, error) {
	return &services.ResetResult{}, nil
}
func (m *routeTestMockService) ClearPrevWeek() (*services.ClearResult, error) {
	return &services.ClearResult{}, nil
}
func (m *routeTestMockService) DailyAutoReset() error                   { return nil }
func (m *routeTestMockService) WeeklyAutoReset(_ context.Context) error { return nil }
func (m *routeTestMockService) InitWeekIfEmpty()                        {}
func (m *routeTestMockService) RankNames() []string                     { return []string{"major", "lt_colonel"} }
func (m *routeTestMockService) ReportDate() string                      { return "2025-06-10" }
func (m *routeTestMockService) WeekStartDate() string                   { return "2025-06-08" }

func routesTestController() *controllers.ApiController {
	var metrics providers.MetricsProviderInterface = &testutil.MockMetrics{}
	return controllers.NewApiController(&testutil.MockLogger{}, &routeTestMockService{}, testutil.NewMockCache(), metrics)
}

func TestInitRoutes_RegistersAllRoutes(t *testing.T) {
	router := InitRoutes(routesTestController(), &structures.Config{})
	routes := router.GetRoutes()

	require.Len(t, routes, 9)

	urls := make([]string, len(routes))
	for i, r := range routes {
		urls[i] = r.Url
	}

	assert.Contains(t, urls, "/report")
	assert.Contains(t, urls, "/scores/today")
	assert.Contains(t, urls, "/scores/week")
	assert.Contains(t, urls, "/scores/yesterday")
	assert.Contains(t, urls, "/scores/lastweek")
	assert.Contains(t, urls, "/summary")
	assert.Contains(t, urls, "/demotion")
	assert.Contains(t, urls, "/reset/today")
	assert.Contains(t, urls, "/reset/week")
}

func TestInitRoutes_MethodEnforcement(t *testing.T) {
	router := InitRoutes(routesTestController(), &structures.Config{})
	routes := router.GetRoutes()

	mux := http.NewServeMux()
	for _, r := range routes {
		mux.Handle(r.Url, r.Handler)
	}

	// GET /scores/today with POST should fail
	req := httptest.NewRequest(http.MethodPost, "/scores/today", nil)
	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusMethodNotAllowed, rr.Code)

	// POST /report with GET should fail
	req = httptest.NewRequest(http.MethodGet, "/report", nil)
	rr = httptest.NewRecorder()
	mux.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusMethodNotAllowed, rr.Code)
}
