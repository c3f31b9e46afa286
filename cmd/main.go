package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"fincoach/internal/adapters/ai"
	"fincoach/internal/adapters/config"
	"fincoach/internal/adapters/embeddings"
	"fincoach/internal/adapters/errors/noop"
	"fincoach/internal/adapters/errors/sentry"
	"fincoach/internal/adapters/postgres"
	redisadapter "fincoach/internal/adapters/redis"
	"fincoach/internal/agents"
	"fincoach/internal/api"
	"fincoach/internal/api/health"
	"fincoach/internal/conversation"
	"fincoach/internal/guardrails"
	"fincoach/internal/marketdata"
	"fincoach/internal/metrics"
	"fincoach/internal/orchestration"
	"fincoach/internal/portfolio"
	"fincoach/internal/rag"
	pgrepo "fincoach/internal/repository/postgres"
	redisrepo "fincoach/internal/repository/redis"
	"fincoach/pkg/errors"
	"fincoach/pkg/logger"
)

const version = "1.0.0"

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	// Initialize logger
	if err := logger.Init(cfg.App.LogLevel, cfg.App.Env); err != nil {
		panic("failed to init logger: " + err.Error())
	}
	defer logger.Sync()

	log := logger.Get()
	log.Infof("Starting %s in %s mode", cfg.App.Name, cfg.App.Env)

	// Initialize error tracker
	errorTracker := initErrorTracker(cfg, log)
	logger.SetErrorTracker(errorTracker)

	metrics.Register()

	// Initialize database connections
	pgClient, err := postgres.NewClient(cfg.Postgres)
	if err != nil {
		log.Fatalf("Failed to connect to PostgreSQL: %v", err)
	}
	defer pgClient.Close()

	redisClient, err := redisadapter.NewClient(cfg.Redis)
	if err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}
	defer redisClient.Close()

	log.Info("Databases initialized")

	workflow := initWorkflow(cfg, pgClient, redisClient, log)

	sessions := redisrepo.NewSessionStore(redisClient, cfg.Conversation.SessionTTL)
	chatHandler := api.NewChatHandler(workflow, sessions)
	healthHandler := health.New(log, pgClient.DB(), redisClient.Client(), cfg.App.Name, version)

	server := api.NewServer(api.ServerConfig{
		Addr:           cfg.HTTP.Addr(),
		ServiceName:    cfg.App.Name,
		Version:        version,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		RequestTimeout: cfg.Guardrails.WorkflowTimeout + 10*time.Second,
	}, chatHandler, healthHandler, log)

	log.Info("System initialized successfully")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		if err := server.Start(); err != nil {
			log.Errorf("HTTP server error: %v", err)
			cancel()
		}
	}()

	waitForShutdown(ctx, cancel, server, cfg.HTTP.ShutdownTimeout, errorTracker, log)
}

// initErrorTracker initializes error tracking (Sentry or no-op)
func initErrorTracker(cfg *config.Config, log *logger.Logger) errors.Tracker {
	if !cfg.ErrorTracking.Enabled || cfg.ErrorTracking.SentryDSN == "" {
		log.Info("Error tracking disabled")
		return noop.New()
	}

	tracker, err := sentry.New(cfg.ErrorTracking.SentryDSN, cfg.ErrorTracking.Environment)
	if err != nil {
		log.Warnf("Failed to initialize Sentry: %v", err)
		return noop.New()
	}

	log.Info("Error tracking initialized (Sentry)")
	return tracker
}

// initWorkflow wires guardrails, retrieval, agents and orchestration
func initWorkflow(cfg *config.Config, pg *postgres.Client, rdb *redisadapter.Client, log *logger.Logger) *orchestration.Workflow {
	log.Info("Initializing workflow...")

	llm, err := ai.NewOpenAIClient(
		cfg.AI.OpenAIKey,
		cfg.AI.Model,
		cfg.AI.Temperature,
		cfg.AI.MaxTokens,
		0, 0,
	)
	if err != nil {
		log.Fatalf("Failed to create AI client: %v", err)
	}

	embedder, err := embeddings.NewOpenAIProvider(cfg.AI.OpenAIKey, cfg.AI.EmbeddingModel, 0)
	if err != nil {
		log.Fatalf("Failed to create embeddings provider: %v", err)
	}

	articles := pgrepo.NewArticleRepository(pg.DB())
	retriever := rag.NewRetriever(embedder, articles, cfg.RAG.TopK, cfg.RAG.MinRelevance)

	quotes := marketdata.NewCachedProvider(
		marketdata.NewStaticProvider(),
		rdb,
		cfg.MarketData.QuoteTTL,
	)

	inputValidator := guardrails.NewInputValidator(cfg.Guardrails)
	financial := guardrails.NewFinancialValidator(inputValidator)

	registry := agents.NewRegistry()
	registry.Register(agents.NewFinanceQA(retriever, llm))
	registry.Register(agents.NewTaxEducation(retriever, llm))
	registry.Register(agents.NewPortfolioAnalysis(quotes, portfolio.NewCalculator(), financial))
	registry.Register(agents.NewMarketAnalysis(quotes))
	registry.Register(agents.NewGoalPlanning(financial))
	registry.Register(agents.NewNewsSynthesizer(quotes))

	keywordClassifier := orchestration.NewClassifier()
	var classifier orchestration.IntentDetector = keywordClassifier
	if cfg.AI.LLMRouting {
		classifier = orchestration.NewLLMClassifier(llm, keywordClassifier)
		log.Info("LLM intent routing enabled")
	}

	pii := guardrails.NewPIIDetector()

	workflow := orchestration.NewWorkflow(orchestration.WorkflowDeps{
		Validator:       inputValidator,
		PII:             pii,
		RateLimiter:     redisrepo.NewRateLimiter(rdb.Client(), guardrails.LimitsFromConfig(cfg.Guardrails)),
		Audit:           guardrails.NewAuditLogger(),
		Conversation:    conversation.NewManager(cfg.Conversation),
		Classifier:      classifier,
		Router:          orchestration.NewRouter(),
		Executor:        orchestration.NewExecutor(registry, cfg.Guardrails.AgentTimeout, cfg.Guardrails.MaxParallelAgents),
		Synthesizer:     orchestration.NewSynthesizer(pii, guardrails.NewDisclaimerManager()),
		WorkflowTimeout: cfg.Guardrails.WorkflowTimeout,
	})

	log.Info("Workflow initialized")
	return workflow
}

// waitForShutdown waits for shutdown signal and performs graceful shutdown
func waitForShutdown(
	ctx context.Context,
	cancel context.CancelFunc,
	server *api.Server,
	shutdownTimeout time.Duration,
	errorTracker errors.Tracker,
	log *logger.Logger,
) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-quit:
	case <-ctx.Done():
	}
	log.Info("Shutting down...")

	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Warnf("HTTP shutdown error: %v", err)
	}

	// Flush error tracker
	if errorTracker != nil {
		if err := errorTracker.Flush(shutdownCtx); err != nil {
			log.Warnf("Failed to flush error tracker: %v", err)
		}
	}

	log.Info("Shutdown complete")
}
