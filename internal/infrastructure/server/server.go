package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/klauspost/compress/gzhttp"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	api "github.com/GriffinCanCode/sitecraft/internal/api/http"
	"github.com/GriffinCanCode/sitecraft/internal/api/middleware"
	"github.com/GriffinCanCode/sitecraft/internal/domain/blueprint"
	"github.com/GriffinCanCode/sitecraft/internal/domain/generation"
	"github.com/GriffinCanCode/sitecraft/internal/domain/render"
	"github.com/GriffinCanCode/sitecraft/internal/domain/site"
	"github.com/GriffinCanCode/sitecraft/internal/domain/site/memory"
	"github.com/GriffinCanCode/sitecraft/internal/domain/site/redisstore"
	"github.com/GriffinCanCode/sitecraft/internal/domain/site/sqlstore"
	"github.com/GriffinCanCode/sitecraft/internal/infrastructure/config"
	"github.com/GriffinCanCode/sitecraft/internal/infrastructure/httpclient"
	"github.com/GriffinCanCode/sitecraft/internal/infrastructure/logging"
	"github.com/GriffinCanCode/sitecraft/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/sitecraft/internal/infrastructure/seeding"
	"github.com/GriffinCanCode/sitecraft/internal/infrastructure/tracing"
	"github.com/GriffinCanCode/sitecraft/internal/providers/auth"
	"github.com/GriffinCanCode/sitecraft/internal/providers/gemini"
	"github.com/GriffinCanCode/sitecraft/internal/providers/remote"
	"github.com/GriffinCanCode/sitecraft/internal/shared/inflight"
	"github.com/GriffinCanCode/sitecraft/internal/shared/utils"
)

// sessionPurgeInterval is how often expired sessions are dropped
const sessionPurgeInterval = 10 * time.Minute

// Server wraps the HTTP server and dependencies
type Server struct {
	httpServer *http.Server
	router     *gin.Engine
	store      *site.Manager
	auth       *auth.Provider
	tracer     *tracing.Tracer
	logger     *logging.Logger
	config     *config.Config
	metrics    *monitoring.Metrics

	done     chan struct{}
	wg       sync.WaitGroup
	shutdown sync.Once
}

// NewServer creates a new server instance
func NewServer(ctx context.Context, cfg *config.Config) (*Server, error) {
	logger, err := logging.New(logging.Config{
		Level:       cfg.Logging.Level,
		Development: cfg.Logging.Development,
		Fields:      []zap.Field{zap.String("service", "sitecraft")},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}
	return newServer(ctx, cfg, logger)
}

func newServer(ctx context.Context, cfg *config.Config, logger *logging.Logger) (*Server, error) {
	logger.Info("Initializing sitecraft server",
		zap.String("addr", cfg.Addr()),
		zap.String("store", cfg.Store.Backend),
		zap.String("generation", cfg.Generation.Backend),
	)

	// Initialize metrics first (needed by other components)
	metrics := monitoring.NewMetrics()
	tracer := tracing.New("sitecraft", logger.Logger)

	limits := blueprint.DefaultParseOptions()
	limits.MaxDepth = cfg.Limits.MaxDepth
	limits.MaxBytes = cfg.Limits.MaxBytes

	repo, err := openRepository(ctx, cfg.Store)
	if err != nil {
		tracer.Close()
		return nil, err
	}
	logger.Info("Blueprint store ready", zap.String("backend", cfg.Store.Backend))

	store := site.NewManager(repo, logger.Component("site"), site.Config{
		ParseOptions: limits,
		Recorder:     metrics,
	})

	backend, err := newBackend(ctx, cfg.Generation)
	if errors.Is(err, gemini.ErrMissingAPIKey) {
		logger.Warn("GEMINI_API_KEY is not set, generation disabled")
		backend, err = generation.Disabled{}, nil
	}
	if err != nil {
		_ = store.Close()
		tracer.Close()
		return nil, err
	}
	generator := generation.NewService(backend, logger.Component("generation"), generation.Config{
		Timeout:      cfg.Generation.Timeout,
		ParseOptions: limits,
		Recorder:     metrics,
	})

	authProvider := auth.NewProvider(logger.Component("auth"))
	if cfg.Seed.DemoUser {
		seedDemoUser(ctx, cfg.Seed, authProvider, store, limits, logger)
	}

	if !cfg.Logging.Development {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()

	// Add middleware
	router.Use(gin.Recovery())
	router.Use(tracing.HTTPMiddleware(tracer))
	router.Use(monitoring.Middleware(metrics))
	router.Use(middleware.CORS(middleware.DefaultCORSConfig(cfg.Server.CORSOrigins...)))
	if cfg.RateLimit.Enabled {
		logger.Info("Rate limiting enabled",
			zap.Int("rps", cfg.RateLimit.RequestsPerSecond),
			zap.Int("burst", cfg.RateLimit.Burst),
		)
		rl := middleware.DefaultRateLimitConfig()
		rl.RequestsPerSecond = cfg.RateLimit.RequestsPerSecond
		rl.Burst = cfg.RateLimit.Burst
		router.Use(middleware.RateLimit(rl))
	}
	router.Use(middleware.MaxBody(utils.MaxJSONSize))

	handlers := api.NewHandlers(api.Deps{
		Store:     store,
		Generator: generator,
		Renderer:  render.New(logger.Component("render"), render.Options{MaxDepth: cfg.Limits.RenderMaxDepth, Recorder: metrics}),
		Auth:      authProvider,
		Guard:     inflight.New(),
		Metrics:   metrics,
		Logger:    logger.Logger,
		Limits:    limits,
		StoreName: cfg.Store.Backend,
	})
	api.RegisterRoutes(router, handlers, middleware.Auth(authProvider))
	router.GET("/metrics", gin.WrapH(metrics.Handler()))

	var handler http.Handler = router
	if cfg.Server.Gzip {
		handler = gzhttp.GzipHandler(router)
	}

	s := &Server{
		httpServer: &http.Server{
			Addr:              cfg.Addr(),
			Handler:           handler,
			ReadHeaderTimeout: 10 * time.Second,
			// generation calls may take up to the configured timeout
			WriteTimeout: cfg.Generation.Timeout + 15*time.Second,
			IdleTimeout:  120 * time.Second,
		},
		router:  router,
		store:   store,
		auth:    authProvider,
		tracer:  tracer,
		logger:  logger,
		config:  cfg,
		metrics: metrics,
		done:    make(chan struct{}),
	}

	s.wg.Add(1)
	go s.purgeSessions()

	logger.Info("Server initialized successfully")
	return s, nil
}

// openRepository builds the configured blueprint repository
func openRepository(ctx context.Context, cfg config.StoreConfig) (site.Repository, error) {
	switch cfg.Backend {
	case config.StoreMemory:
		return memory.New(), nil

	case config.StoreSQLite:
		return sqlstore.Open(sqlstore.Config{Driver: sqlstore.DriverSQLite, DSN: cfg.SQLitePath, LogLevel: cfg.SQLLogLevel})

	case config.StorePostgres:
		return sqlstore.Open(sqlstore.Config{Driver: sqlstore.DriverPostgres, DSN: cfg.PostgresURL, LogLevel: cfg.SQLLogLevel})

	case config.StoreRedis:
		repo, err := redisstore.New(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		}, cfg.RedisNamespace)
		if err != nil {
			return nil, err
		}
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := repo.Ping(pingCtx); err != nil {
			_ = repo.Close()
			return nil, fmt.Errorf("failed to connect to redis at %s: %w", cfg.RedisAddr, err)
		}
		return repo, nil

	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.Backend)
	}
}

// newBackend builds the configured generation backend
func newBackend(ctx context.Context, cfg config.GenerationConfig) (generation.Backend, error) {
	switch cfg.Backend {
	case config.GenerationDisabled:
		return generation.Disabled{}, nil

	case config.GenerationGemini:
		return gemini.New(ctx, gemini.Config{APIKey: cfg.GeminiAPIKey, Model: cfg.GeminiModel})

	case config.GenerationRemote:
		httpCfg := httpclient.DefaultConfig("generation-remote")
		httpCfg.Timeout = cfg.Timeout
		httpCfg.MaxRetries = cfg.MaxRetries
		httpCfg.RateLimit = cfg.RateLimit
		return remote.New(remote.Config{URL: cfg.URL, APIKey: cfg.APIKey, HTTP: httpCfg})

	default:
		return nil, fmt.Errorf("unknown generation backend %q", cfg.Backend)
	}
}

// seedDemoUser creates the demo account and gives it the starter blueprints.
// Failures are logged; the server still starts.
func seedDemoUser(ctx context.Context, cfg config.SeedConfig, provider *auth.Provider, store *site.Manager, limits blueprint.ParseOptions, logger *logging.Logger) {
	user, err := provider.EnsureUser(cfg.DemoName, cfg.DemoEmail, cfg.DemoPassword)
	if err != nil {
		logger.Warn("Failed to create demo user", zap.Error(err))
		return
	}

	seeder := seeding.NewSeeder(store, cfg.Dir, limits, logger.Logger)
	if _, err := seeder.Seed(ctx, user.ID); err != nil {
		logger.Warn("Failed to seed starter blueprints", zap.Error(err))
	}
}

func (s *Server) purgeSessions() {
	defer s.wg.Done()

	ticker := time.NewTicker(sessionPurgeInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if n := s.auth.PurgeExpired(); n > 0 {
				s.logger.Debug("Purged expired sessions", zap.Int("count", n))
			}
		case <-s.done:
			return
		}
	}
}

// Handler returns the root HTTP handler
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Run starts the HTTP server and blocks until it stops
func (s *Server) Run() error {
	s.logger.Info("Starting HTTP server", zap.String("addr", s.httpServer.Addr))
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("http server failed: %w", err)
	}
	return nil
}

// Shutdown stops accepting requests, waits for in-flight ones until ctx is
// done, then releases every resource. It is safe to call more than once.
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	s.shutdown.Do(func() {
		s.logger.Info("Shutting down server...")

		if e := s.httpServer.Shutdown(ctx); e != nil {
			s.logger.Error("HTTP shutdown incomplete", zap.Error(e))
			err = errors.Join(err, e)
		}

		close(s.done)
		s.wg.Wait()
		s.tracer.Close()

		if e := s.store.Close(); e != nil {
			s.logger.Error("Failed to close blueprint store", zap.Error(e))
			err = errors.Join(err, fmt.Errorf("failed to close store: %w", e))
		}

		s.logger.Info("Server stopped")
		_ = s.logger.Close()
	})
	return err
}

// Close shuts the server down without waiting for in-flight requests
func (s *Server) Close() error {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	return s.Shutdown(ctx)
}
