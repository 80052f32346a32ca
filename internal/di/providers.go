// Package di wires the application graph.
package di

import (
	"context"
	"fmt"
	"time"

	"github.com/pbtrad/balancing-market/internal/connector"
	"github.com/pbtrad/balancing-market/internal/domain/models"
	domrepo "github.com/pbtrad/balancing-market/internal/domain/repository"
	"github.com/pbtrad/balancing-market/internal/handler/api"
	"github.com/pbtrad/balancing-market/internal/repository"
	"github.com/pbtrad/balancing-market/internal/service/launcher"
	"github.com/pbtrad/balancing-market/internal/service/predictor"
	"github.com/pbtrad/balancing-market/internal/usecase"
	pkgch "github.com/pbtrad/balancing-market/pkg/clickhouse"
	"github.com/pbtrad/balancing-market/pkg/config"
	pkghttp "github.com/pbtrad/balancing-market/pkg/http"
	pkgkafka "github.com/pbtrad/balancing-market/pkg/kafka"
	applogger "github.com/pbtrad/balancing-market/pkg/logger"
	"github.com/pbtrad/balancing-market/pkg/metrics"
	"github.com/pbtrad/balancing-market/pkg/server"
	"github.com/pbtrad/balancing-market/pkg/util"
)

// Storage bundles the persistence collaborators so memory and clickhouse
// backends can be swapped behind one provider.
type Storage struct {
	Series domrepo.SeriesStore
	Evals  domrepo.EvaluationStore
	Blobs  domrepo.BlobStore
}

// ProvideLogger builds the process logger from config.
func ProvideLogger(cfg *config.Config) (*applogger.Logger, error) {
	return applogger.New(&applogger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
	})
}

// ProvideMetrics builds the Prometheus recorder.
func ProvideMetrics() *metrics.Recorder {
	return metrics.New()
}

// ProvideStorage builds the configured storage backend. The cleanup closes
// the underlying connections.
func ProvideStorage(cfg *config.Config, lg *applogger.Logger) (*Storage, func(), error) {
	if cfg.Store.Type == "memory" {
		return &Storage{
			Series: repository.NewMemorySeriesStore(),
			Evals:  repository.NewMemoryEvaluationStore(),
			Blobs:  repository.NewMemoryBlobStore(),
		}, func() {}, nil
	}

	ch, err := pkgch.NewClient(
		pkgch.WithHost(cfg.ClickHouse.Host),
		pkgch.WithPort(cfg.ClickHouse.Port),
		pkgch.WithDatabase(cfg.ClickHouse.Database),
		pkgch.WithCredentials(cfg.ClickHouse.User, cfg.ClickHouse.Password),
		pkgch.WithTimeouts(cfg.ClickHouse.DialTimeout, cfg.ClickHouse.ReadTimeout, cfg.ClickHouse.WriteTimeout),
		pkgch.WithMaxExecutionTime(cfg.ClickHouse.MaxExecutionTime),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("clickhouse: %w", err)
	}

	initCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := ch.InitSchema(initCtx, repository.SchemaStatements(cfg.ClickHouse.Database)); err != nil {
		ch.Close()
		return nil, nil, fmt.Errorf("clickhouse schema: %w", err)
	}

	blobs, err := repository.NewRedisBlobStore(repository.RedisBlobStoreConfig{
		Host:     cfg.Redis.Host,
		Port:     cfg.Redis.Port,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
		Prefix:   cfg.Redis.Prefix,
	})
	if err != nil {
		ch.Close()
		return nil, nil, err
	}

	series := repository.NewCHSeriesStore(ch, cfg.ClickHouse.Database)
	series.SetLogger(lg)

	cleanup := func() {
		blobs.Close()
		ch.Close()
	}
	return &Storage{
		Series: series,
		Evals:  repository.NewCHEvaluationStore(ch, cfg.ClickHouse.Database),
		Blobs:  blobs,
	}, cleanup, nil
}

// ProvideConnectors builds one connector per configured source.
func ProvideConnectors(cfg *config.Config) ([]domrepo.Connector, error) {
	return connector.Build(cfg.Ingest.Sources, cfg.Ingest.FetchTimeout)
}

// ProvidePublisher builds the actuals publisher, nil when the stream is
// disabled.
func ProvidePublisher(cfg *config.Config) (domrepo.Publisher, func(), error) {
	if !cfg.Kafka.Enabled {
		return nil, func() {}, nil
	}

	producer, err := pkgkafka.NewProducer(
		pkgkafka.WithBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithRequiredAcks(cfg.Kafka.RequiredAcks),
		pkgkafka.WithCompression(cfg.Kafka.Compression),
		pkgkafka.WithHashByKey(true),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("kafka producer: %w", err)
	}

	pub := repository.NewKafkaPublisher(producer, cfg.Kafka.ActualsTopic)
	return pub, func() { pub.Close() }, nil
}

// ProvideIngestion builds the ingestion coordinator.
func ProvideIngestion(
	cfg *config.Config,
	storage *Storage,
	publisher domrepo.Publisher,
	rec *metrics.Recorder,
	lg *applogger.Logger,
) (*usecase.Ingestion, error) {
	connectors, err := ProvideConnectors(cfg)
	if err != nil {
		return nil, err
	}
	return usecase.NewIngestion(connectors, storage.Series, storage.Blobs, publisher, rec, lg), nil
}

// ProvideForecast builds the forecast engine. Without a model URL the
// heuristic serves as the primary predictor.
func ProvideForecast(cfg *config.Config, storage *Storage, rec *metrics.Recorder, lg *applogger.Logger) *usecase.Forecast {
	var primary domrepo.Predictor
	if cfg.Forecast.ModelURL != "" {
		primary = predictor.NewHTTPPredictor(cfg.Forecast.ModelURL, cfg.Forecast.ModelName, cfg.Forecast.Timeout)
	} else {
		primary = predictor.NewHeuristic()
	}

	var fallback domrepo.Predictor
	if cfg.Forecast.Fallback && cfg.Forecast.ModelURL != "" {
		fallback = predictor.NewHeuristic()
	}
	return usecase.NewForecast(primary, fallback, storage.Series, rec, lg)
}

// ProvideEvaluation builds the evaluator.
func ProvideEvaluation(cfg *config.Config, storage *Storage, rec *metrics.Recorder, lg *applogger.Logger) *usecase.Evaluation {
	return usecase.NewEvaluation(storage.Series, storage.Evals, cfg.Forecast.ModelName, rec, lg)
}

// ProvideTraining builds the training runner.
func ProvideTraining(cfg *config.Config, storage *Storage, lg *applogger.Logger) *usecase.Training {
	l := launcher.NewHTTPLauncher(cfg.Training.LauncherURL, 30*time.Second)
	return usecase.NewTraining(l, storage.Blobs, cfg.Training.PollInterval, lg)
}

// ProvideRouter builds the API route registrar.
func ProvideRouter(
	ingestion *usecase.Ingestion,
	forecast *usecase.Forecast,
	evaluator *usecase.Evaluation,
	training *usecase.Training,
	storage *Storage,
	lg *applogger.Logger,
) *api.Router {
	return api.NewRouter(
		api.NewForecastHandler(ingestion, forecast, evaluator, training, lg),
		api.NewHealthHandler(storage.Series),
	)
}

// ProvideHTTPServer builds the HTTP server.
func ProvideHTTPServer(cfg *config.Config, router *api.Router) *pkghttp.Server {
	return pkghttp.NewServer(router,
		pkghttp.WithPort(cfg.Server.Port),
		pkghttp.WithServerTimeouts(cfg.Server.ReadTimeout, cfg.Server.WriteTimeout, cfg.Server.ShutdownTimeout),
	)
}

// ProvideConsumer builds the actuals stream consumer, nil when disabled.
func ProvideConsumer(cfg *config.Config, evaluator *usecase.Evaluation, lg *applogger.Logger) (*pkgkafka.Consumer, error) {
	if !cfg.Kafka.Enabled {
		return nil, nil
	}

	consumer, err := pkgkafka.NewConsumer(
		pkgkafka.WithConsumerBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithConsumerGroupID(cfg.Kafka.Consumer.GroupID),
		pkgkafka.WithConsumerWorkers(cfg.Kafka.Consumer.Workers),
		pkgkafka.WithConsumerRetry(cfg.Kafka.Consumer.RetryMax, cfg.Kafka.Consumer.BackoffMin, cfg.Kafka.Consumer.BackoffMax),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka consumer: %w", err)
	}

	consumer.RegisterHandler(usecase.NewActualsHandler(cfg.Kafka.ActualsTopic, evaluator, lg))
	return consumer, nil
}

// ProvideApp assembles the runnable application.
func ProvideApp(
	cfg *config.Config,
	httpServer *pkghttp.Server,
	consumer *pkgkafka.Consumer,
	ingestion *usecase.Ingestion,
	lg *applogger.Logger,
) *server.App {
	opts := []server.AppOption{
		server.WithShutdownTimeout(cfg.Server.ShutdownTimeout),
	}
	if consumer != nil {
		opts = append(opts, server.WithConsumer(consumer))
	}
	if cfg.Ingest.Interval > 0 {
		opts = append(opts, server.WithIngestSchedule(func(ctx context.Context) error {
			from, to := util.DayWindow(time.Now())
			_, err := ingestion.Run(ctx, models.TimeWindow{From: from, To: to})
			return err
		}, cfg.Ingest.Interval, cfg.Ingest.RunTimeout))
	}
	return server.NewApp(httpServer, lg, opts...)
}
