package main

import (
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jonathan/career-path/internal/config"
	"github.com/jonathan/career-path/internal/db"
	"github.com/jonathan/career-path/internal/events"
	"github.com/jonathan/career-path/internal/learning"
	"github.com/jonathan/career-path/internal/logger"
	"github.com/jonathan/career-path/internal/prediction"
	"github.com/jonathan/career-path/internal/resume"
	"github.com/jonathan/career-path/internal/server"
	"github.com/jonathan/career-path/internal/server/ratelimit"
)

var (
	servePort       int
	serveConfigFile string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the REST API server",
	Long:  `Start an HTTP server that exposes the prediction, learning and account endpoints.`,
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "Port to listen on (overrides PORT)")
	serveCmd.Flags().StringVar(&serveConfigFile, "config", "", "Path to a config.yaml")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(config.Options{ConfigFile: serveConfigFile})
	if err != nil {
		return err
	}
	if servePort != 0 {
		cfg.Port = servePort
	}
	if cfg.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL environment variable is required")
	}

	log := logger.New(cfg.LogLevel, cfg.LogFormat)
	defer func() { _ = log.Sync() }()

	ctx := cmd.Context()

	store, err := db.Open(ctx, cfg.DatabaseURL, cfg.MaxOpenConns, cfg.MaxIdleConns)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer func() { _ = store.Close() }()
	if err := store.Migrate(ctx); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}

	objects, err := openObjectStore(ctx, cfg)
	if err != nil {
		return err
	}

	predictor := prediction.NewPredictor(loadBundle(ctx, cfg, objects, log), cfg.Model.TopK)

	clients, err := newLLMClients(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer func() {
		for _, c := range clients {
			_ = c.Close()
		}
	}()

	searchSvc, err := newSearchService(ctx, cfg, log)
	if err != nil {
		return err
	}

	roadmaps, info, err := loadCatalogs(cfg)
	if err != nil {
		return err
	}

	limiter, err := newRateLimiter(cfg, log)
	if err != nil {
		return err
	}

	srv, err := server.New(server.Options{
		Port:            cfg.Port,
		ShutdownTimeout: cfg.ShutdownTimeout,
		CORSOrigins:     cfg.CORSOrigins,
		Predictor:       predictor,
		Learning: learning.NewService(learning.Options{
			Providers:  clients,
			Timeout:    cfg.LLM.Timeout,
			Search:     searchSvc,
			Roadmaps:   roadmaps,
			CareerInfo: info,
			Logger:     log,
		}),
		Search:      searchSvc,
		Intake:      resume.NewIntake(objects, cfg.ResumeBucket, cfg.ResumeMaxBytes, log),
		DB:          store,
		JWT:         server.NewJWTService(cfg.JWT),
		Password:    cfg.Password,
		RateLimiter: limiter,
		Publisher:   newPublisher(cfg, log),
		Logger:      log,
	})
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	return srv.Start(ctx)
}

// newRateLimiter shares budgets through Redis when REDIS_URL is set.
func newRateLimiter(cfg *config.Config, log *zap.Logger) (*ratelimit.Limiter, error) {
	rlCfg := ratelimit.LoadConfig(cfg.Viper)
	if cfg.RedisURL == "" {
		return ratelimit.NewLimiter(rlCfg), nil
	}
	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_URL: %w", err)
	}
	log.Info("rate limiting via redis", zap.String("addr", opts.Addr))
	return ratelimit.NewRedisLimiter(rlCfg, redis.NewClient(opts), log), nil
}

// newPublisher dials the event broker. Events are best effort, so a broker
// that is down at startup only disables publishing.
func newPublisher(cfg *config.Config, log *zap.Logger) events.Publisher {
	if cfg.AMQPURL == "" {
		return events.Noop{}
	}
	pub, err := events.DialAMQP(cfg.AMQPURL, cfg.AMQPExchange, log)
	if err != nil {
		log.Warn("event broker unavailable, events disabled", zap.Error(err))
		return events.Noop{}
	}
	return pub
}
