package watcher

import (
	"context"
	"fmt"
	"time"

	"spikewatch/config"
	"spikewatch/internal/analyzer"
	"spikewatch/internal/baseline"
	"spikewatch/internal/correlator"
	"spikewatch/internal/measurement"
	"spikewatch/internal/pipeline"
	"spikewatch/internal/stream"
	"spikewatch/pkg/storage/postgres"
	"spikewatch/pkg/upbit"

	redis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Watcher owns the full pipeline: four ingestion handlers feeding detection
// through a shared rate limiter, the correlator, and the storage clients.
type Watcher struct {
	tickers    *stream.Handler[measurement.Ticker]
	candles    *stream.Handler[measurement.Candle]
	orderbooks *stream.Handler[measurement.Orderbook]
	trades     *stream.Handler[measurement.Trade]

	correlator *correlator.Correlator
	pg         *postgres.PostgresClient
	redis      *redis.Client
	logger     *zap.Logger
}

// Start wires and launches the spike-watch pipeline for Upbit market data.
func Start(cfg *config.Config, logger *zap.Logger) (*Watcher, error) {
	pg, err := postgres.InitializeAndMigrate(cfg.Postgres, cfg.Log.Environment, true)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to DB: %w", err)
	}

	cache, redisClient := newCache(cfg.Redis, logger)
	oracle := analyzer.NewOracle(cfg.AI.Endpoint, cfg.AI.Model, logger)

	alerts := correlator.AlertFunc(func(a measurement.Alert) {
		logger.Warn("confirmed spike alert",
			zap.String("code", a.Code),
			zap.String("direction", string(a.Direction)),
			zap.Time("confirmed_at", a.ConfirmedAt))
	})

	corr := correlator.New(cache, alerts, logger)
	corr.Start()

	codes := loadCodes(cfg, logger)
	if len(codes) == 0 {
		corr.Stop()
		return nil, fmt.Errorf("no instrument codes to monitor")
	}
	logger.Info("monitoring instruments", zap.Int("count", len(codes)))

	// One bucket shared by all four handlers keeps the total connection
	// rate under the feed's limit.
	limiter := pipeline.NewRateLimiter(4, 3*time.Second)

	w := &Watcher{correlator: corr, pg: pg, redis: redisClient, logger: logger}

	w.tickers = stream.NewHandler(
		measurement.StreamTicker,
		cfg.Upbit.SocketURL, cfg.Upbit.Ticket, codes,
		upbit.DecodeTicker,
		pipeline.NewWriter[measurement.Ticker](measurement.StreamTicker, pg.Tickers(),
			analyzer.NewTickerAnalyzer(oracle, cache, logger), corr, logger),
		limiter, logger,
	)
	w.candles = stream.NewHandler(
		measurement.StreamCandle,
		cfg.Upbit.SocketURL, cfg.Upbit.Ticket, codes,
		upbit.DecodeCandle,
		pipeline.NewWriter[measurement.Candle](measurement.StreamCandle, pg.Candles(),
			analyzer.NewCandleAnalyzer(oracle, cache, logger), corr, logger),
		limiter, logger,
	)
	w.orderbooks = stream.NewHandler(
		measurement.StreamOrderbook,
		cfg.Upbit.SocketURL, cfg.Upbit.Ticket, codes,
		upbit.DecodeOrderbook,
		pipeline.NewWriter[measurement.Orderbook](measurement.StreamOrderbook, pg.Orderbooks(),
			analyzer.NewOrderbookAnalyzer(oracle, cache, logger), corr, logger),
		limiter, logger,
	)
	w.trades = stream.NewHandler(
		measurement.StreamTrade,
		cfg.Upbit.SocketURL, cfg.Upbit.Ticket, codes,
		upbit.DecodeTrade,
		pipeline.NewWriter[measurement.Trade](measurement.StreamTrade, pg.Trades(),
			analyzer.NewTradeAnalyzer(oracle, cache, logger), corr, logger),
		limiter, logger,
	)

	w.tickers.Start()
	w.candles.Start()
	w.orderbooks.Start()
	w.trades.Start()

	return w, nil
}

// Close tears the pipeline down: handlers first (each closes its channel,
// flushes, then closes its sockets), then the sweep task and the DB.
func (w *Watcher) Close() {
	w.tickers.Close()
	w.candles.Close()
	w.orderbooks.Close()
	w.trades.Close()

	w.correlator.Stop()

	if w.redis != nil {
		if err := w.redis.Close(); err != nil {
			w.logger.Warn("redis close failed", zap.Error(err))
		}
	}

	if err := w.pg.Close(); err != nil {
		w.logger.Warn("postgres close failed", zap.Error(err))
	}
}

// newCache returns a Redis-backed cache when an address is configured and an
// in-process cache otherwise. The returned client is nil for the in-process
// case; the caller owns closing it.
func newCache(cfg config.RedisConfig, logger *zap.Logger) (baseline.Cache, *redis.Client) {
	if cfg.Addr == "" {
		logger.Warn("no redis address configured, baselines held in process memory")
		return baseline.NewMemory(), nil
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	return baseline.NewRedis(client), client
}

// loadCodes returns the configured watch list, or discovers all KRW markets
// from the REST API when the list is empty.
func loadCodes(cfg *config.Config, logger *zap.Logger) []string {
	if len(cfg.Upbit.Codes) > 0 {
		return cfg.Upbit.Codes
	}

	restClient := upbit.NewRESTClient(cfg.Upbit.RESTBaseURL, cfg.Upbit.RESTTimeout)
	ctx, cancel := context.WithTimeout(context.Background(), cfg.Upbit.RESTTimeout)
	defer cancel()

	codes, err := restClient.GetKRWMarkets(ctx)
	if err != nil {
		logger.Error("failed to load market list", zap.Error(err))
		return nil
	}
	return codes
}
