package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/harshilparmar0279-eng/ScamSlayer/internal/config"
	"github.com/harshilparmar0279-eng/ScamSlayer/internal/gemini"
	"github.com/harshilparmar0279-eng/ScamSlayer/internal/handler"
	"github.com/harshilparmar0279-eng/ScamSlayer/internal/llm"
	"github.com/harshilparmar0279-eng/ScamSlayer/internal/media"
	"github.com/harshilparmar0279-eng/ScamSlayer/internal/metrics"
	"github.com/harshilparmar0279-eng/ScamSlayer/internal/middleware"
	"github.com/harshilparmar0279-eng/ScamSlayer/internal/qr"
	"github.com/harshilparmar0279-eng/ScamSlayer/internal/repository"
	"github.com/harshilparmar0279-eng/ScamSlayer/internal/retention"
	"github.com/harshilparmar0279-eng/ScamSlayer/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"
)

func main() {
	configPath := flag.String("config", "configs/config.yml", "path to the YAML config file")
	issueFor := flag.String("issue-token", "", "print a signed token for this user id and exit")
	tokenTTL := flag.Duration("token-ttl", 24*time.Hour, "lifetime of a token printed by -issue-token")
	flag.Parse()

	// Load configuration
	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	if *issueFor != "" {
		if err := printToken(os.Stdout, *issueFor, cfg.Auth.JWTSecret, *tokenTTL); err != nil {
			fmt.Fprintf(os.Stderr, "failed to issue token: %v\n", err)
			os.Exit(1)
		}
		return
	}

	logger, err := newLogger(cfg.Log.Production)
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	logger.Info("Starting Suraksha AI...", zap.String("config", *configPath))

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// Metrics
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(registry)

	// Model client
	if cfg.Gemini.APIKey == "" {
		logger.Fatal("Gemini API key not configured. Set gemini.api_key in the config file or GEMINI_API_KEY")
	}
	geminiClient, err := gemini.NewClient(ctx, gemini.Config{
		APIKey:      cfg.Gemini.APIKey,
		ModelName:   cfg.Gemini.ModelName,
		Temperature: cfg.Gemini.Temperature,
	}, logger)
	if err != nil {
		logger.Fatal("Failed to initialize Gemini client", zap.Error(err))
	}
	provider := llm.NewRateLimitedProvider(geminiClient, cfg.Gemini.RequestsPerMinute, logger)
	defer provider.Close()

	// Persisted history
	dsn := cfg.Database.URL
	if cfg.Database.Type == repository.DialectSQLite {
		dsn = cfg.Database.Path
		if dir := filepath.Dir(dsn); dir != "." {
			if err := os.MkdirAll(dir, 0755); err != nil {
				logger.Fatal("Failed to create data directory", zap.String("dir", dir), zap.Error(err))
			}
		}
	}
	db, err := repository.Open(cfg.Database.Type, dsn, logger)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	if err := repository.Migrate(db, cfg.Database.Type, logger); err != nil {
		logger.Fatal("Failed to run migrations", zap.Error(err))
	}
	historyRepo := repository.NewHistoryRepository(db, logger)

	// Session history
	var (
		sessions repository.SessionStore
		sweeper  retention.Sweeper
	)
	switch cfg.Session.Store {
	case "redis":
		redisStore, err := repository.NewRedisSessionStore(ctx, cfg.Session.RedisURL, cfg.Session.TTL, logger)
		if err != nil {
			logger.Fatal("Failed to initialize redis session store", zap.Error(err))
		}
		defer redisStore.Close()
		sessions = redisStore
	default:
		memoryStore := repository.NewMemorySessionStore(cfg.Session.TTL)
		sessions = memoryStore
		sweeper = memoryStore
	}

	// Media tooling
	media.ConfigureFFmpeg(cfg.Media.FFmpegPath, cfg.Media.FFprobePath)
	sampler := media.NewKeyframeSampler(cfg.Media.VideoFrames, logger)

	// Services
	history := service.NewHistoryService(sessions, historyRepo, m, logger)
	analyzer := service.NewAnalyzer(provider, cfg.Gemini.Timeout, m, logger)
	pipeline := service.NewPipeline(qr.NewDecoder(logger), sampler, analyzer, history, m, logger)
	chat := service.NewChatService(provider, history, cfg.Gemini.Timeout, m, logger)

	// Retention
	janitor := retention.NewJanitor(historyRepo, sweeper, cfg.History.RetentionDays, cfg.History.JanitorSchedule, m, logger)
	if err := janitor.Start(); err != nil {
		logger.Fatal("Failed to start retention janitor", zap.Error(err))
	}
	defer janitor.Stop()

	// HTTP
	apiHandler := handler.NewHandler(pipeline, history, chat, handler.Options{
		MaxUploadBytes: cfg.MaxUploadBytes(),
		AccountLimit:   cfg.History.AccountLimit,
		Gatherer:       registry,
	}, logger)

	if cfg.Log.Production {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(
		gin.Recovery(),
		middleware.RequestLogger(logger),
		middleware.Metrics(m),
		middleware.CORS(cfg.Server.CORSOrigins),
		middleware.Session(cfg.Session.TTL),
		middleware.OptionalAuth([]byte(cfg.Auth.JWTSecret), logger),
	)
	apiHandler.RegisterRoutes(router)

	if cfg.Auth.JWTSecret == "" {
		logger.Warn("auth.jwt_secret is empty; all requests are anonymous and nothing is persisted")
	}

	serverAddr := fmt.Sprintf(":%s", cfg.Server.Port)
	srv := &http.Server{
		Addr:    serverAddr,
		Handler: router,
		// video uploads and model calls can take a while
		ReadTimeout:  2 * time.Minute,
		WriteTimeout: cfg.Gemini.Timeout + 2*time.Minute,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	modelName := "unknown"
	if name, ok := provider.GetModelInfo()["model"].(string); ok {
		modelName = name
	}
	logger.Info("Suraksha AI is running",
		zap.String("address", serverAddr),
		zap.String("model", modelName),
		zap.String("database", cfg.Database.Type),
		zap.String("session_store", cfg.Session.Store))

	<-ctx.Done()

	logger.Info("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exited")
}

func newLogger(production bool) (*zap.Logger, error) {
	if production {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}

// printToken signs a token with the configured secret, for local testing of
// account features
func printToken(w io.Writer, userID, secret string, ttl time.Duration) error {
	if secret == "" {
		return errors.New("auth.jwt_secret is empty")
	}
	token, err := middleware.IssueToken(userID, []byte(secret), ttl)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, token)
	return err
}
