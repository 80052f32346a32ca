//go:build wireinject
// +build wireinject

package di

import (
	"github.com/google/wire"

	"github.com/pbtrad/balancing-market/pkg/config"
	"github.com/pbtrad/balancing-market/pkg/server"
)

// InitializeApp builds the application graph from config.
func InitializeApp(cfg *config.Config) (*server.App, func(), error) {
	wire.Build(
		ProvideLogger,
		ProvideMetrics,
		ProvideStorage,
		ProvidePublisher,
		ProvideIngestion,
		ProvideForecast,
		ProvideEvaluation,
		ProvideTraining,
		ProvideRouter,
		ProvideHTTPServer,
		ProvideConsumer,
		ProvideApp,
	)
	return nil, nil, nil
}
