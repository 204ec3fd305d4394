package internal

import (
	"net/http"

	"fms/internal/controllers"
	"fms/internal/providers"
	"fms/internal/structures"
)

func InitRoutes(apiController *controllers.ApiController, conf *structures.Config) providers.RouterProviderInterface {
	routers := providers.NewRouterProvider()

	routers.Post("/report", http.HandlerFunc(apiController.ReceiveReport))
	routers.Get("/scores/today", http.HandlerFunc(apiController.GetTodayScores))
	routers.Get("/scores/week", http.HandlerFunc(apiController.GetWeekScores))
	routers.Get("/scores/yesterday", http.HandlerFunc(apiController.GetYesterdayScores))
	routers.Get("/scores/lastweek", http.HandlerFunc(apiController.GetLastWeekScores))
	routers.Get("/summary", http.HandlerFunc(apiController.GetSummary))
	routers.Get("/demotion", http.HandlerFunc(apiController.GetDemotionCandidates))
	routers.Post("/reset/today", http.HandlerFunc(apiController.ResetToday))
	routers.Post("/reset/week", http.HandlerFunc(apiController.ResetWeek))
	return routers
}
