package http

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/metric"

	auditHTTP "github.com/HusseinTALL/GARBAKING-POS-sub002/internal/audit/http"
	"github.com/HusseinTALL/GARBAKING-POS-sub002/internal/config"
	"github.com/HusseinTALL/GARBAKING-POS-sub002/internal/metrics"
	tokenHTTP "github.com/HusseinTALL/GARBAKING-POS-sub002/internal/paymenttoken/http"
)

// RouterConfig carries the handlers and middleware assembled by the DI container.
// Nil middleware entries are skipped, so disabled features cost nothing.
type RouterConfig struct {
	TokenHandler         *tokenHTTP.TokenHandler
	SecurityEventHandler *auditHTTP.SecurityEventHandler

	// DeviceAuth authenticates the calling device; required for all /v1 routes.
	DeviceAuth gin.HandlerFunc

	// ManagerOnly restricts the security-event feed to manager roles.
	ManagerOnly gin.HandlerFunc

	// DeviceRateLimit and IPRateLimit throttle scan and confirm requests.
	DeviceRateLimit gin.HandlerFunc
	IPRateLimit     gin.HandlerFunc

	// MeterProvider enables HTTP metrics when non-nil.
	MeterProvider metric.MeterProvider
}

// NewRouter assembles the gin engine with all protocol routes.
//
// Scan and confirm carry the rate limiters; issuance and the security-event
// feed do not, since the cashier issuing tokens is not the guessing vector.
func NewRouter(cfg *config.Config, logger *slog.Logger, rc RouterConfig) *gin.Engine {
	gin.SetMode(cfg.GetGinMode())

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestid.New())
	router.Use(CustomLoggerMiddleware(logger))

	if corsMiddleware := createCORSMiddleware(cfg.CORSEnabled, cfg.CORSAllowOrigins, logger); corsMiddleware != nil {
		router.Use(corsMiddleware)
	}

	if rc.MeterProvider != nil {
		router.Use(metrics.HTTPMetricsMiddleware(rc.MeterProvider, cfg.MetricsNamespace))
	}

	router.GET("/health", HealthHandler)
	router.GET("/ready", ReadinessHandler)

	v1 := router.Group("/v1")
	v1.Use(rc.DeviceAuth)

	v1.POST("/orders/:order_id/payment-token", rc.TokenHandler.IssueHandler)
	v1.POST("/orders/:order_id/payment-token/regenerate", rc.TokenHandler.RegenerateHandler)

	scanConfirm := throttled(rc.IPRateLimit, rc.DeviceRateLimit)
	v1.POST("/payment-tokens/scan", append(scanConfirm, rc.TokenHandler.ScanHandler)...)
	v1.POST("/orders/:order_id/confirm-payment", append(scanConfirm, rc.TokenHandler.ConfirmHandler)...)

	securityEvents := []gin.HandlerFunc{}
	if rc.ManagerOnly != nil {
		securityEvents = append(securityEvents, rc.ManagerOnly)
	}
	v1.GET("/security-events", append(securityEvents, rc.SecurityEventHandler.ListHandler)...)

	return router
}

// throttled collects the non-nil rate limiters in evaluation order.
func throttled(limiters ...gin.HandlerFunc) []gin.HandlerFunc {
	chain := make([]gin.HandlerFunc, 0, len(limiters))
	for _, limiter := range limiters {
		if limiter != nil {
			chain = append(chain, limiter)
		}
	}
	return chain
}

// Server represents the protocol HTTP server.
type Server struct {
	server *http.Server
	logger *slog.Logger
}

// NewServer creates a new HTTP server serving the given handler.
func NewServer(
	host string,
	port int,
	handler http.Handler,
	logger *slog.Logger,
) *Server {
	return &Server{
		logger: logger,
		server: &http.Server{
			Addr:         fmt.Sprintf("%s:%d", host, port),
			Handler:      handler,
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
	}
}

// GetHandler returns the http.Handler for testing purposes.
func (s *Server) GetHandler() http.Handler {
	return s.server.Handler
}

// Start starts the HTTP server.
func (s *Server) Start(ctx context.Context) error {
	s.logger.Info("starting http server", slog.String("addr", s.server.Addr))

	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

// Shutdown gracefully shuts down the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down http server")
	return s.server.Shutdown(ctx)
}
