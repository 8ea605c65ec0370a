package di

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"time"

	"MarketMind/internal/domain/repository"
	domsvc "MarketMind/internal/domain/service"
	"MarketMind/internal/handler/api"
	mid "MarketMind/internal/middleware"
	internalrepo "MarketMind/internal/repository"
	"MarketMind/internal/service/broker"
	icache "MarketMind/internal/service/cache"
	"MarketMind/internal/services/advisor"
	"MarketMind/internal/services/intelligence"
	"MarketMind/internal/services/news"
	"MarketMind/internal/usecase"
	pkgcache "MarketMind/pkg/cache"
	pkgch "MarketMind/pkg/clickhouse"
	"MarketMind/pkg/config"
	xhttp "MarketMind/pkg/http"
	pkgkafka "MarketMind/pkg/kafka"
	applogger "MarketMind/pkg/logger"
	"MarketMind/pkg/metrics"
	"MarketMind/pkg/server"
)

// ProvideLogger creates the application logger.
func ProvideLogger(cfg *config.Config) (*applogger.Logger, error) {
	format := "json"
	if cfg.Environment == "development" {
		format = "console"
	}
	return applogger.New(&applogger.Config{Level: "info", Format: format, Output: "stdout"})
}

// ProvideLocation resolves the exchange timezone.
func ProvideLocation(cfg *config.Config) (*time.Location, error) {
	tz := cfg.Market.Timezone
	if tz == "" {
		tz = "Asia/Kolkata"
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return nil, fmt.Errorf("timezone %q: %w", tz, err)
	}
	return loc, nil
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics() repository.Metrics {
	return metrics.New()
}

// ProvideClickHouseClient creates a ClickHouse client, or nil when durable
// history is disabled.
func ProvideClickHouseClient(cfg *config.Config) (*pkgch.Client, error) {
	if !cfg.ClickHouse.Enabled {
		return nil, nil
	}
	client, err := pkgch.NewClient(
		pkgch.WithHost(cfg.ClickHouse.Host),
		pkgch.WithPort(cfg.ClickHouse.Port),
		pkgch.WithDatabase(cfg.ClickHouse.Database),
		pkgch.WithCredentials(cfg.ClickHouse.User, cfg.ClickHouse.Password),
		pkgch.WithMaxConnections(10, 5),
		pkgch.WithHTTP(cfg.ClickHouse.UseHTTP),
		pkgch.WithAsyncInsert(cfg.ClickHouse.AsyncInsert, cfg.ClickHouse.WaitForAsync),
		pkgch.WithTimeouts(cfg.ClickHouse.DialTimeout, cfg.ClickHouse.ReadTimeout, cfg.ClickHouse.WriteTimeout),
		pkgch.WithMaxExecutionTime(cfg.ClickHouse.MaxExecutionTime),
	)
	if err != nil {
		return nil, fmt.Errorf("clickhouse client: %w", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := client.InitSchema(ctx, []string{
		"CREATE DATABASE IF NOT EXISTS " + cfg.ClickHouse.Database,
	}); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("clickhouse schema: %w", err)
	}
	return client, nil
}

// ProvideSnapshotStore creates the durable daily snapshot sink.
func ProvideSnapshotStore(chClient *pkgch.Client, cfg *config.Config, l *applogger.Logger) (repository.SnapshotStore, error) {
	if chClient == nil {
		return nil, nil
	}
	table := cfg.ClickHouse.SnapshotTable
	if table == "" {
		table = cfg.ClickHouse.Database + ".daily_snapshots"
	}
	store := internalrepo.NewCHSnapshotStore(chClient.DB(), table)
	if chs, ok := store.(interface{ SetLogger(*applogger.Logger) }); ok {
		chs.SetLogger(l)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := store.Init(ctx); err != nil {
		return nil, err
	}
	return store, nil
}

// ProvideKafkaProducer creates a Kafka producer, or nil when disabled.
func ProvideKafkaProducer(cfg *config.Config) (*pkgkafka.Producer, error) {
	if !cfg.Kafka.Enabled {
		return nil, nil
	}
	producer, err := pkgkafka.NewProducer(
		pkgkafka.WithBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithCompression(cfg.Kafka.Compression),
		pkgkafka.WithRequiredAcks(cfg.Kafka.RequiredAcks),
		pkgkafka.WithBatchSize(cfg.Kafka.Producer.BatchSize),
		pkgkafka.WithBatchBytes(cfg.Kafka.Producer.BatchBytes),
		pkgkafka.WithBatchTimeout(cfg.Kafka.Producer.Linger),
		pkgkafka.WithTimeouts(cfg.Kafka.Producer.WriteTimeout, cfg.Kafka.Producer.ReadTimeout),
		pkgkafka.WithMaxAttempts(cfg.Kafka.Producer.MaxAttempts),
		pkgkafka.WithAsync(cfg.Kafka.Producer.Async),
		pkgkafka.WithHashByKey(true),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka producer: %w", err)
	}
	return producer, nil
}

// ProvideAssessmentPublisher creates the Kafka assessment publisher.
func ProvideAssessmentPublisher(producer *pkgkafka.Producer, cfg *config.Config) repository.Publisher {
	if producer == nil {
		return nil
	}
	return internalrepo.NewKafkaPublisher(producer, cfg.Kafka.AssessmentsTopic)
}

// ProvideKafkaConsumer creates the outcomes consumer, or nil when disabled.
func ProvideKafkaConsumer(cfg *config.Config, l *applogger.Logger) (*pkgkafka.Consumer, error) {
	if !cfg.Kafka.Enabled || cfg.Kafka.OutcomesTopic == "" {
		return nil, nil
	}
	consumer, err := pkgkafka.NewConsumer(
		pkgkafka.WithConsumerBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithConsumerLogger(l),
		pkgkafka.WithConsumerGroupID(cfg.Kafka.Consumer.GroupID),
		pkgkafka.WithConsumerWorkers(cfg.Kafka.Consumer.Workers),
		pkgkafka.WithConsumerBufferSize(cfg.Kafka.Consumer.BufferSize),
		pkgkafka.WithConsumerRetry(cfg.Kafka.Consumer.RetryMax, cfg.Kafka.Consumer.BackoffMin, cfg.Kafka.Consumer.BackoffMax),
		pkgkafka.WithConsumerDLQ(cfg.Kafka.Consumer.DLQTopic),
		pkgkafka.WithConsumerFetch(cfg.Kafka.Consumer.MinBytes, cfg.Kafka.Consumer.MaxBytes),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka consumer: %w", err)
	}
	return consumer, nil
}

// ProvideOutcomesHandler registers the handler for the outcomes topic.
func ProvideOutcomesHandler(history *usecase.HistoryStore, m repository.Metrics, cfg *config.Config) *usecase.KafkaOutcomesHandler {
	return usecase.NewKafkaOutcomesHandler(cfg.Kafka.OutcomesTopic, history, m)
}

// ProvideBrokerStream creates the broker WebSocket stream, or nil when no
// live feed is configured.
func ProvideBrokerStream(cfg *config.Config) repository.QuoteStream {
	if cfg.Broker.WebSocketURL == "" {
		return nil
	}
	return broker.NewStream(
		cfg.Broker.AccessToken,
		cfg.Broker.WebSocketURL,
		cfg.Symbols(),
		cfg.Broker.ReconnectDelay,
		cfg.Broker.PingInterval,
	)
}

// ProvideQuoteBook creates the latest-quote book fed by the stream.
func ProvideQuoteBook(stream repository.QuoteStream, cfg *config.Config) *broker.LatestBook {
	maxAge := cfg.Broker.QuoteMaxAge
	if maxAge <= 0 {
		maxAge = 90 * time.Second
	}
	return broker.NewLatestBook(stream, maxAge)
}

// ProvideQuoteCollector wires the stream into the book through the
// validation pipeline. Nil when there is no stream.
func ProvideQuoteCollector(stream repository.QuoteStream, book *broker.LatestBook, m repository.Metrics, cfg *config.Config) *usecase.QuoteCollector {
	if stream == nil {
		return nil
	}
	opts := []mid.PipelineOption{}
	if cfg.Broker.MaxQuotesPerSec > 0 {
		opts = append(opts, mid.WithMaxRPS(cfg.Broker.MaxQuotesPerSec))
	}
	pipe := mid.NewQuotePipeline(book, m, opts...)
	return usecase.NewQuoteCollector(stream, book, m, pipe)
}

// ProvideSharedCache creates the general cache tier: layered memory/Redis
// when Redis is configured, in-process memory otherwise.
func ProvideSharedCache(cfg *config.Config) (pkgcache.Service, error) {
	if !cfg.Cache.Redis.Enabled {
		return pkgcache.NewMemoryCache(), nil
	}
	host, port := splitHostPort(cfg.Cache.Redis.Addr)
	rc, err := pkgcache.NewRedisCache(
		pkgcache.WithRedisHost(host),
		pkgcache.WithRedisPort(port),
		pkgcache.WithRedisPassword(cfg.Cache.Redis.Password),
		pkgcache.WithRedisDB(cfg.Cache.Redis.DB),
	)
	if err != nil {
		return nil, fmt.Errorf("redis cache: %w", err)
	}
	return pkgcache.NewLayeredCache(rc), nil
}

func splitHostPort(addr string) (string, int) {
	host, portStr, err := net.SplitHostPort(addr)
	if err != nil {
		return addr, 6379
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		port = 6379
	}
	return host, port
}

// ProvideNewsSource creates the RSS headline fetcher.
func ProvideNewsSource(cfg *config.Config, shared pkgcache.Service) repository.NewsSource {
	if len(cfg.News.Feeds) == 0 {
		return nil
	}
	feeds := make([]news.Feed, 0, len(cfg.News.Feeds))
	for _, f := range cfg.News.Feeds {
		feeds = append(feeds, news.Feed{Name: f.Name, URL: f.URL})
	}
	fetcher := news.NewFetcher(feeds, cfg.News.Timeout)
	fetcher.SetCache(shared, 5*time.Minute)
	return fetcher
}

// ProvideAggregator creates the fan-out source aggregator.
func ProvideAggregator(book *broker.LatestBook, src repository.NewsSource, m repository.Metrics, cfg *config.Config) *usecase.MarketAggregator {
	foreign := make([]string, 0, len(cfg.Market.ForeignCues))
	for _, f := range cfg.Market.ForeignCues {
		foreign = append(foreign, f.Symbol)
	}
	return usecase.NewMarketAggregator(book, src, m, foreign)
}

// ProvideSessionEvaluator creates the session and calendar evaluator.
func ProvideSessionEvaluator(loc *time.Location) domsvc.SessionEvaluator {
	return intelligence.NewContextEvaluator(loc)
}

// ProvideTrendClassifier creates the trend classifier.
func ProvideTrendClassifier() domsvc.TrendClassifier {
	return intelligence.NewClassifier()
}

// ProvideStrategyScorer creates the strategy scorer.
func ProvideStrategyScorer() domsvc.StrategyScorer {
	return intelligence.NewScorer()
}

// ProvideResultCache creates the assessment cache over the shared tier.
func ProvideResultCache(cfg *config.Config, shared pkgcache.Service) *icache.ResultCache {
	return icache.NewResultCache(cfg.Cache.TTL, shared)
}

// ProvideHistoryStore creates the bounded pattern window over the sink.
func ProvideHistoryStore(sink repository.SnapshotStore, l *applogger.Logger) *usecase.HistoryStore {
	return usecase.NewHistoryStore(sink, l)
}

// ProvideSymbols maps configured instruments into engine symbols.
func ProvideSymbols(cfg *config.Config) usecase.Symbols {
	return usecase.Symbols{
		Spot: cfg.Market.SpotSymbol,
		Bank: cfg.Market.BankSymbol,
		VIX:  cfg.Market.VIXSymbol,
	}
}

// ProvideEngine creates the assessment engine with the optional advisor.
func ProvideEngine(
	book *broker.LatestBook,
	agg *usecase.MarketAggregator,
	evaluator domsvc.SessionEvaluator,
	classifier domsvc.TrendClassifier,
	scorer domsvc.StrategyScorer,
	history *usecase.HistoryStore,
	publisher repository.Publisher,
	m repository.Metrics,
	cache *icache.ResultCache,
	l *applogger.Logger,
	symbols usecase.Symbols,
	cfg *config.Config,
) *usecase.IntelligenceEngine {
	engine := usecase.NewIntelligenceEngine(book, agg, evaluator, classifier, scorer, history, publisher, m, cache, l, symbols)
	engine.SetAdvisor(advisor.NewHTTPAdvisor(cfg))
	return engine
}

// ProvideScheduler creates the adaptive assessment loop.
func ProvideScheduler(engine *usecase.IntelligenceEngine, evaluator domsvc.SessionEvaluator, m repository.Metrics, l *applogger.Logger, loc *time.Location) *usecase.Scheduler {
	return usecase.NewScheduler(engine, evaluator, m, l, loc)
}

// ProvideHTTPHandler creates the Echo route handler.
func ProvideHTTPHandler(l *applogger.Logger, engine *usecase.IntelligenceEngine, sched *usecase.Scheduler, evaluator domsvc.SessionEvaluator) xhttp.Handler {
	return api.NewIntelligenceEchoHandler(l, engine, sched, evaluator)
}

// kafkaLogPublisher adapts the Kafka producer to the log collector sink.
type kafkaLogPublisher struct {
	p *pkgkafka.Producer
}

func (k kafkaLogPublisher) PublishMessage(ctx context.Context, topic string, payload interface{}) error {
	return k.p.Publish(ctx, topic, nil, payload)
}

// ProvideApp creates the application server.
func ProvideApp(
	cfg *config.Config,
	l *applogger.Logger,
	engine *usecase.IntelligenceEngine,
	sched *usecase.Scheduler,
	collector *usecase.QuoteCollector,
	consumer *pkgkafka.Consumer,
	kh *usecase.KafkaOutcomesHandler,
	chClient *pkgch.Client,
	producer *pkgkafka.Producer,
	publisher repository.Publisher,
	handler xhttp.Handler,
) *server.App {
	if consumer != nil {
		consumer.WithConsumerHook(pkgkafka.NoopHook{})
	}
	// Aggregate repeated error logs into Kafka when a broker is around.
	if producer != nil {
		l.AddCollector(&applogger.CollectionConfig{
			TimeInterval:   30 * time.Second,
			CountThreshold: 100,
			Topic:          "marketmind.logs",
			Publisher:      kafkaLogPublisher{p: producer},
		})
	}
	var mh pkgkafka.MessageHandler
	if consumer != nil && kh != nil {
		mh = kh
	}
	app := server.New(cfg, l, engine, sched, collector, consumer, mh, chClient, publisher)
	app.SetHTTPHandler(handler)
	return app
}
