// Package app provides the dependency injection container for assembling application components.
package app

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"sync"

	auditHTTP "github.com/HusseinTALL/GARBAKING-POS-sub002/internal/audit/http"
	auditService "github.com/HusseinTALL/GARBAKING-POS-sub002/internal/audit/service"
	auditUseCase "github.com/HusseinTALL/GARBAKING-POS-sub002/internal/audit/usecase"
	"github.com/HusseinTALL/GARBAKING-POS-sub002/internal/config"
	"github.com/HusseinTALL/GARBAKING-POS-sub002/internal/database"
	deviceService "github.com/HusseinTALL/GARBAKING-POS-sub002/internal/device/service"
	deviceUseCase "github.com/HusseinTALL/GARBAKING-POS-sub002/internal/device/usecase"
	"github.com/HusseinTALL/GARBAKING-POS-sub002/internal/http"
	"github.com/HusseinTALL/GARBAKING-POS-sub002/internal/metrics"
	outboxUseCase "github.com/HusseinTALL/GARBAKING-POS-sub002/internal/outbox/usecase"
	tokenHTTP "github.com/HusseinTALL/GARBAKING-POS-sub002/internal/paymenttoken/http"
	tokenService "github.com/HusseinTALL/GARBAKING-POS-sub002/internal/paymenttoken/service"
	tokenUseCase "github.com/HusseinTALL/GARBAKING-POS-sub002/internal/paymenttoken/usecase"
)

// Container holds all application dependencies and provides methods to access them.
// It follows the lazy initialization pattern - components are created on first access.
type Container struct {
	// Configuration
	config *config.Config

	// Infrastructure
	logger          *slog.Logger
	db              *sql.DB
	signingKey      []byte
	metricsProvider *metrics.Provider
	businessMetrics metrics.BusinessMetrics

	// Managers
	txManager database.TxManager

	// Services
	tokenSigner   tokenService.TokenSigner
	generator     tokenService.Generator
	entrySigner   auditService.EntrySigner
	secretService deviceService.SecretService

	// Repositories
	tokenRepo  tokenUseCase.TokenRepository
	orderRepo  tokenUseCase.OrderRepository
	outboxRepo outboxUseCase.EventRepository
	entryRepo  auditUseCase.EntryRepository
	deviceRepo deviceUseCase.DeviceRepository

	// Use Cases
	issuerUseCase    tokenUseCase.IssuerUseCase
	scannerUseCase   tokenUseCase.ScannerUseCase
	confirmerUseCase tokenUseCase.ConfirmerUseCase
	recorderUseCase  auditUseCase.RecorderUseCase
	deviceUseCase    deviceUseCase.DeviceUseCase
	notifierUseCase  outboxUseCase.NotifierUseCase

	// Handlers, Servers and Workers
	tokenHandler         *tokenHTTP.TokenHandler
	securityEventHandler *auditHTTP.SecurityEventHandler
	httpServer           *http.Server
	metricsServer        *http.MetricsServer

	// Initialization flags and mutex for thread-safety
	mu                       sync.Mutex
	loggerInit               sync.Once
	dbInit                   sync.Once
	txManagerInit            sync.Once
	signingKeyInit           sync.Once
	metricsProviderInit      sync.Once
	businessMetricsInit      sync.Once
	tokenSignerInit          sync.Once
	generatorInit            sync.Once
	entrySignerInit          sync.Once
	secretServiceInit        sync.Once
	tokenRepoInit            sync.Once
	orderRepoInit            sync.Once
	outboxRepoInit           sync.Once
	entryRepoInit            sync.Once
	deviceRepoInit           sync.Once
	issuerUseCaseInit        sync.Once
	scannerUseCaseInit       sync.Once
	confirmerUseCaseInit     sync.Once
	recorderUseCaseInit      sync.Once
	deviceUseCaseInit        sync.Once
	notifierUseCaseInit      sync.Once
	tokenHandlerInit         sync.Once
	securityEventHandlerInit sync.Once
	httpServerInit           sync.Once
	metricsServerInit        sync.Once
	initErrors               map[string]error
}

// NewContainer creates a new dependency injection container with the provided configuration.
func NewContainer(cfg *config.Config) *Container {
	return &Container{
		config:     cfg,
		initErrors: make(map[string]error),
	}
}

// Config returns the application configuration.
func (c *Container) Config() *config.Config {
	return c.config
}

// Logger returns the configured logger instance.
// It creates a new logger on first access based on the log level in configuration.
func (c *Container) Logger() *slog.Logger {
	c.loggerInit.Do(func() {
		c.logger = c.initLogger()
	})
	return c.logger
}

// DB returns the database connection.
// It creates and configures the database connection on first access.
func (c *Container) DB() (*sql.DB, error) {
	var err error
	c.dbInit.Do(func() {
		c.db, err = c.initDB()
		if err != nil {
			c.initErrors["db"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["db"]; exists {
		return nil, storedErr
	}
	return c.db, nil
}

// TxManager returns the transaction manager.
func (c *Container) TxManager() (database.TxManager, error) {
	var err error
	c.txManagerInit.Do(func() {
		c.txManager, err = c.initTxManager()
		if err != nil {
			c.initErrors["txManager"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["txManager"]; exists {
		return nil, storedErr
	}
	return c.txManager, nil
}

// SigningKey returns the token signing key, loading it from the environment or
// unwrapping it through the configured KMS on first access.
func (c *Container) SigningKey() ([]byte, error) {
	var err error
	c.signingKeyInit.Do(func() {
		loader := tokenService.NewSigningKeyLoader(c.config)
		c.signingKey, err = loader.Load(context.Background())
		if err != nil {
			c.initErrors["signingKey"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["signingKey"]; exists {
		return nil, storedErr
	}
	return c.signingKey, nil
}

// MetricsProvider returns the metrics provider, or nil when metrics are disabled.
func (c *Container) MetricsProvider() (*metrics.Provider, error) {
	var err error
	c.metricsProviderInit.Do(func() {
		if !c.config.MetricsEnabled {
			return
		}
		c.metricsProvider, err = metrics.NewProvider(c.config.MetricsNamespace)
		if err != nil {
			c.initErrors["metricsProvider"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["metricsProvider"]; exists {
		return nil, storedErr
	}
	return c.metricsProvider, nil
}

// BusinessMetrics returns the business metrics recorder. Falls back to a
// no-op implementation when metrics are disabled.
func (c *Container) BusinessMetrics() (metrics.BusinessMetrics, error) {
	var err error
	c.businessMetricsInit.Do(func() {
		provider, providerErr := c.MetricsProvider()
		if providerErr != nil {
			err = providerErr
			c.initErrors["businessMetrics"] = providerErr
			return
		}
		if provider == nil {
			c.businessMetrics = metrics.NewNoOpBusinessMetrics()
			return
		}
		c.businessMetrics, err = metrics.NewBusinessMetrics(provider.MeterProvider(), c.config.MetricsNamespace)
		if err != nil {
			c.initErrors["businessMetrics"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["businessMetrics"]; exists {
		return nil, storedErr
	}
	return c.businessMetrics, nil
}

// Shutdown performs cleanup of all initialized resources.
// It should be called when the application is shutting down.
func (c *Container) Shutdown(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	var shutdownErrors []error

	if c.httpServer != nil {
		if err := c.httpServer.Shutdown(ctx); err != nil {
			shutdownErrors = append(shutdownErrors, fmt.Errorf("http server shutdown: %w", err))
		}
	}

	if c.metricsServer != nil {
		if err := c.metricsServer.Shutdown(ctx); err != nil {
			shutdownErrors = append(shutdownErrors, fmt.Errorf("metrics server shutdown: %w", err))
		}
	}

	if c.metricsProvider != nil {
		if err := c.metricsProvider.Shutdown(ctx); err != nil {
			shutdownErrors = append(shutdownErrors, fmt.Errorf("metrics provider shutdown: %w", err))
		}
	}

	if c.db != nil {
		if err := c.db.Close(); err != nil {
			shutdownErrors = append(shutdownErrors, fmt.Errorf("database close: %w", err))
		}
	}

	if len(shutdownErrors) > 0 {
		return fmt.Errorf("shutdown errors: %v", shutdownErrors)
	}

	return nil
}

// initLogger creates and configures a structured logger based on the log level.
func (c *Container) initLogger() *slog.Logger {
	var logLevel slog.Level
	switch c.config.LogLevel {
	case "debug":
		logLevel = slog.LevelDebug
	case "info":
		logLevel = slog.LevelInfo
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	})

	return slog.New(handler)
}

// initDB creates and configures the database connection.
func (c *Container) initDB() (*sql.DB, error) {
	db, err := database.Connect(database.Config{
		Driver:             c.config.DBDriver,
		ConnectionString:   c.config.DBConnectionString,
		MaxOpenConnections: c.config.DBMaxOpenConnections,
		MaxIdleConnections: c.config.DBMaxIdleConnections,
		ConnMaxLifetime:    c.config.DBConnMaxLifetime,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return db, nil
}

// initTxManager creates the transaction manager using the database connection.
func (c *Container) initTxManager() (database.TxManager, error) {
	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for tx manager: %w", err)
	}
	return database.NewTxManager(db), nil
}
