//go:build wireinject
// +build wireinject

package di

import (
	"MarketMind/pkg/config"
	"MarketMind/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	wire.Build(
		// Ambient
		ProvideLogger,
		ProvideLocation,
		ProvideMetrics,

		// Infrastructure clients
		ProvideClickHouseClient,
		ProvideKafkaProducer,
		ProvideKafkaConsumer,

		// Repositories
		ProvideSnapshotStore,
		ProvideAssessmentPublisher,
		ProvideBrokerStream,
		ProvideQuoteBook,
		ProvideNewsSource,

		// Domain services
		ProvideSharedCache,
		ProvideSessionEvaluator,
		ProvideTrendClassifier,
		ProvideStrategyScorer,
		ProvideResultCache,

		// Use cases
		ProvideAggregator,
		ProvideHistoryStore,
		ProvideSymbols,
		ProvideEngine,
		ProvideScheduler,
		ProvideQuoteCollector,
		ProvideOutcomesHandler,

		// HTTP and application server
		ProvideHTTPHandler,
		ProvideApp,
	)
	return &server.App{}, nil
}
