package app

import (
	"fmt"

	deviceHTTP "github.com/HusseinTALL/GARBAKING-POS-sub002/internal/device/http"
	"github.com/HusseinTALL/GARBAKING-POS-sub002/internal/http"
	tokenHTTP "github.com/HusseinTALL/GARBAKING-POS-sub002/internal/paymenttoken/http"
)

// HTTPServer returns the configured HTTP server with all routes wired.
func (c *Container) HTTPServer() (*http.Server, error) {
	var err error
	c.httpServerInit.Do(func() {
		c.httpServer, err = c.initHTTPServer()
		if err != nil {
			c.initErrors["httpServer"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["httpServer"]; exists {
		return nil, storedErr
	}
	return c.httpServer, nil
}

// MetricsServer returns the metrics server, or nil when metrics are disabled.
func (c *Container) MetricsServer() (*http.MetricsServer, error) {
	var err error
	c.metricsServerInit.Do(func() {
		if !c.config.MetricsEnabled {
			return
		}

		provider, providerErr := c.MetricsProvider()
		if providerErr != nil {
			err = providerErr
			c.initErrors["metricsServer"] = err
			return
		}
		c.metricsServer = http.NewMetricsServer(c.config.ServerHost, c.config.MetricsPort, c.Logger(), provider)
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["metricsServer"]; exists {
		return nil, storedErr
	}
	return c.metricsServer, nil
}

// initHTTPServer assembles the router configuration and creates the HTTP server.
func (c *Container) initHTTPServer() (*http.Server, error) {
	logger := c.Logger()

	tokenHandler, err := c.TokenHandler()
	if err != nil {
		return nil, fmt.Errorf("failed to get token handler for http server: %w", err)
	}

	securityEventHandler, err := c.SecurityEventHandler()
	if err != nil {
		return nil, fmt.Errorf("failed to get security event handler for http server: %w", err)
	}

	devices, err := c.DeviceUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get device use case for http server: %w", err)
	}

	recorder, err := c.RecorderUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get audit recorder use case for http server: %w", err)
	}

	rc := http.RouterConfig{
		TokenHandler:         tokenHandler,
		SecurityEventHandler: securityEventHandler,
		DeviceAuth:           deviceHTTP.AuthenticationMiddleware(devices, recorder, logger),
		ManagerOnly:          deviceHTTP.RequireRoleMiddleware(recorder, logger, "manager"),
	}

	if c.config.RateLimitEnabled {
		rc.DeviceRateLimit = tokenHTTP.DeviceRateLimitMiddleware(
			c.config.RateLimitRequestsPerSec,
			c.config.RateLimitBurst,
			logger,
		)
	}
	if c.config.RateLimitIPEnabled {
		rc.IPRateLimit = tokenHTTP.IPRateLimitMiddleware(
			c.config.RateLimitIPRequestsPerSec,
			c.config.RateLimitIPBurst,
			logger,
		)
	}

	provider, err := c.MetricsProvider()
	if err != nil {
		return nil, fmt.Errorf("failed to get metrics provider for http server: %w", err)
	}
	if provider != nil {
		rc.MeterProvider = provider.MeterProvider()
	}

	router := http.NewRouter(c.config, logger, rc)
	return http.NewServer(c.config.ServerHost, c.config.ServerPort, router, logger), nil
}
