package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/klauspost/compress/gzhttp"
	"go.uber.org/zap"

	api "github.com/GriffinCanCode/ShareView/backend/internal/api/http"
	"github.com/GriffinCanCode/ShareView/backend/internal/api/middleware"
	"github.com/GriffinCanCode/ShareView/backend/internal/domain/share"
	"github.com/GriffinCanCode/ShareView/backend/internal/infrastructure/config"
	"github.com/GriffinCanCode/ShareView/backend/internal/infrastructure/logging"
	"github.com/GriffinCanCode/ShareView/backend/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/ShareView/backend/internal/infrastructure/tracing"
	"github.com/GriffinCanCode/ShareView/backend/internal/providers/metadata"
	shareProvider "github.com/GriffinCanCode/ShareView/backend/internal/providers/share"
	"github.com/GriffinCanCode/ShareView/backend/internal/service"
)

const (
	readHeaderTimeout = 10 * time.Second
	readTimeout       = 30 * time.Second
	writeTimeout      = 5 * time.Minute
	idleTimeout       = 2 * time.Minute
)

// Server wraps the HTTP server and dependencies
type Server struct {
	router   *gin.Engine
	http     *http.Server
	share    *share.Service
	registry *service.Registry
	tracer   *tracing.Tracer
	metrics  *monitoring.Metrics
	logger   *logging.Logger
	config   *config.Config
}

// NewServer creates a new server instance
func NewServer(cfg *config.Config, logger *logging.Logger) (*Server, error) {
	if logger == nil {
		logger = logging.NewDefault()
	}

	logger.Info("Initializing ShareView server",
		zap.String("addr", cfg.Server.Addr()),
		zap.String("root", cfg.Share.Root),
		zap.String("snapshot_folder", cfg.Share.SnapshotFolder),
	)

	opts := []share.Option{share.WithLogger(logger.Named("share"))}
	if cfg.Metadata.Enabled {
		opts = append(opts, share.WithMetadataExtractor(metadata.New(logger.Named("metadata"))))
	}
	svc, err := share.NewService(cfg.ShareConfig(), opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to open share: %w", err)
	}

	metrics := monitoring.NewMetrics()
	tracer := tracing.New("shareview", logger.Logger)

	registry := service.NewRegistry(logger.Named("registry"))
	if err := registry.Register(shareProvider.NewProvider(svc, logger.Named("provider"))); err != nil {
		tracer.Close()
		return nil, fmt.Errorf("failed to register share provider: %w", err)
	}

	if !cfg.Logging.Development {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(tracing.HTTPMiddleware(tracer))
	router.Use(monitoring.Middleware(metrics))

	corsCfg := middleware.DefaultCORSConfig()
	corsCfg.AllowOrigins = cfg.Server.AllowedOrigins
	router.Use(middleware.CORS(corsCfg))

	if cfg.RateLimit.Enabled {
		logger.Info("Rate limiting enabled",
			zap.Int("rps", cfg.RateLimit.RequestsPerSecond),
			zap.Int("burst", cfg.RateLimit.Burst),
		)
		router.Use(middleware.RateLimit(middleware.RateLimitConfig{
			RequestsPerSecond: cfg.RateLimit.RequestsPerSecond,
			Burst:             cfg.RateLimit.Burst,
		}))
	}

	handlers := api.NewHandlers(svc, registry, metrics, logger.Named("http"))
	handlers.Register(router)

	logger.Info("Server initialized successfully",
		zap.Bool("snapshots", svc.Config().SnapshotsEnabled()),
		zap.Bool("metadata", svc.MetadataEnabled()),
	)

	return &Server{
		router: router,
		http: &http.Server{
			Addr:              cfg.Server.Addr(),
			Handler:           gzhttp.GzipHandler(router),
			ReadHeaderTimeout: readHeaderTimeout,
			ReadTimeout:       readTimeout,
			WriteTimeout:      writeTimeout,
			IdleTimeout:       idleTimeout,
		},
		share:    svc,
		registry: registry,
		tracer:   tracer,
		metrics:  metrics,
		logger:   logger,
		config:   cfg,
	}, nil
}

// Handler returns the root handler, compression included.
func (s *Server) Handler() http.Handler {
	return s.http.Handler
}

// Run starts the HTTP server and blocks until it stops. A server stopped by Shutdown
// returns nil.
func (s *Server) Run() error {
	listener, err := net.Listen("tcp", s.http.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.http.Addr, err)
	}
	return s.Serve(listener)
}

// Serve accepts connections on listener.
func (s *Server) Serve(listener net.Listener) error {
	s.logger.Info("Starting HTTP server", zap.String("addr", listener.Addr().String()))
	if err := s.http.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown gracefully stops the server, then drains the tracer and flushes the logger.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down server...")

	err := s.http.Shutdown(ctx)
	if err != nil {
		s.logger.Error("Graceful shutdown failed", zap.Error(err))
	}

	s.tracer.Close()
	_ = s.logger.Sync()

	return err
}
