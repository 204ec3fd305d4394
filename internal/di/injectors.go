//go:build wireinject
// +build wireinject

package di

import (
	wire "github.com/google/wire"

	"fms/internal"
	"fms/internal/controllers"
	"fms/internal/providers"
	"fms/internal/roster"
	"fms/internal/scoring"
	"fms/internal/services"
	"fms/internal/snapshot"
	"fms/internal/structures"
	"fms/internal/timewindow"
)

func InitApp(cfg *structures.CliFlags) (*internal.App, error) {

	wire.Build(
		providers.NewConfigProvider,
		providers.NewLogProvider,
		providers.NewMetricsProvider,
		providers.NewInstrumentedCacheProvider,
		providers.NewRoleLookupProvider,

		timewindow.NewCalculator,
		scoring.NewRankSet,
		roster.NewBuilder,
		services.NewDocumentStore,
		services.NewFulfillmentService,

		snapshot.NewZstdCompressor,
		snapshot.NewFileManager,
		snapshot.NewScheduler,

		controllers.NewApiController,
		controllers.NewHealthController,
		internal.InitRoutes,
		internal.NewApp,
	)

	return nil, nil
}
