package app

import (
	"fmt"

	orderRepository "github.com/HusseinTALL/GARBAKING-POS-sub002/internal/order/repository"
	tokenHTTP "github.com/HusseinTALL/GARBAKING-POS-sub002/internal/paymenttoken/http"
	tokenRepository "github.com/HusseinTALL/GARBAKING-POS-sub002/internal/paymenttoken/repository"
	tokenService "github.com/HusseinTALL/GARBAKING-POS-sub002/internal/paymenttoken/service"
	tokenUseCase "github.com/HusseinTALL/GARBAKING-POS-sub002/internal/paymenttoken/usecase"
)

// TokenSigner returns the signer used for payment token creation and verification.
func (c *Container) TokenSigner() (tokenService.TokenSigner, error) {
	var err error
	c.tokenSignerInit.Do(func() {
		var key []byte
		key, err = c.SigningKey()
		if err != nil {
			c.initErrors["tokenSigner"] = err
			return
		}
		c.tokenSigner, err = tokenService.NewJWTSigner(key)
		if err != nil {
			c.initErrors["tokenSigner"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["tokenSigner"]; exists {
		return nil, storedErr
	}
	return c.tokenSigner, nil
}

// Generator returns the nonce and short-code generator.
func (c *Container) Generator() tokenService.Generator {
	c.generatorInit.Do(func() {
		c.generator = tokenService.NewGenerator()
	})
	return c.generator
}

// TokenRepository returns the payment token repository based on database driver.
func (c *Container) TokenRepository() (tokenUseCase.TokenRepository, error) {
	var err error
	c.tokenRepoInit.Do(func() {
		c.tokenRepo, err = c.initTokenRepository()
		if err != nil {
			c.initErrors["tokenRepo"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["tokenRepo"]; exists {
		return nil, storedErr
	}
	return c.tokenRepo, nil
}

// OrderRepository returns the order repository based on database driver.
func (c *Container) OrderRepository() (tokenUseCase.OrderRepository, error) {
	var err error
	c.orderRepoInit.Do(func() {
		c.orderRepo, err = c.initOrderRepository()
		if err != nil {
			c.initErrors["orderRepo"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["orderRepo"]; exists {
		return nil, storedErr
	}
	return c.orderRepo, nil
}

// IssuerUseCase returns the token issuer use case, instrumented with metrics.
func (c *Container) IssuerUseCase() (tokenUseCase.IssuerUseCase, error) {
	var err error
	c.issuerUseCaseInit.Do(func() {
		c.issuerUseCase, err = c.initIssuerUseCase()
		if err != nil {
			c.initErrors["issuerUseCase"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["issuerUseCase"]; exists {
		return nil, storedErr
	}
	return c.issuerUseCase, nil
}

// ScannerUseCase returns the scanner use case, instrumented with metrics.
func (c *Container) ScannerUseCase() (tokenUseCase.ScannerUseCase, error) {
	var err error
	c.scannerUseCaseInit.Do(func() {
		c.scannerUseCase, err = c.initScannerUseCase()
		if err != nil {
			c.initErrors["scannerUseCase"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["scannerUseCase"]; exists {
		return nil, storedErr
	}
	return c.scannerUseCase, nil
}

// ConfirmerUseCase returns the payment confirmer use case, instrumented with metrics.
func (c *Container) ConfirmerUseCase() (tokenUseCase.ConfirmerUseCase, error) {
	var err error
	c.confirmerUseCaseInit.Do(func() {
		c.confirmerUseCase, err = c.initConfirmerUseCase()
		if err != nil {
			c.initErrors["confirmerUseCase"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["confirmerUseCase"]; exists {
		return nil, storedErr
	}
	return c.confirmerUseCase, nil
}

// TokenHandler returns the HTTP handler for the protocol endpoints.
func (c *Container) TokenHandler() (*tokenHTTP.TokenHandler, error) {
	var err error
	c.tokenHandlerInit.Do(func() {
		c.tokenHandler, err = c.initTokenHandler()
		if err != nil {
			c.initErrors["tokenHandler"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["tokenHandler"]; exists {
		return nil, storedErr
	}
	return c.tokenHandler, nil
}

// initTokenRepository creates the payment token repository instance.
func (c *Container) initTokenRepository() (tokenUseCase.TokenRepository, error) {
	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for token repository: %w", err)
	}

	switch c.config.DBDriver {
	case "mysql":
		return tokenRepository.NewMySQLTokenRepository(db), nil
	case "postgres":
		return tokenRepository.NewPostgreSQLTokenRepository(db), nil
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", c.config.DBDriver)
	}
}

// initOrderRepository creates the order repository instance.
func (c *Container) initOrderRepository() (tokenUseCase.OrderRepository, error) {
	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for order repository: %w", err)
	}

	switch c.config.DBDriver {
	case "mysql":
		return orderRepository.NewMySQLOrderRepository(db), nil
	case "postgres":
		return orderRepository.NewPostgreSQLOrderRepository(db), nil
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", c.config.DBDriver)
	}
}

// initIssuerUseCase creates the issuer use case with all its dependencies.
func (c *Container) initIssuerUseCase() (tokenUseCase.IssuerUseCase, error) {
	txManager, err := c.TxManager()
	if err != nil {
		return nil, fmt.Errorf("failed to get tx manager for issuer use case: %w", err)
	}

	tokenRepo, err := c.TokenRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get token repository for issuer use case: %w", err)
	}

	orderRepo, err := c.OrderRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get order repository for issuer use case: %w", err)
	}

	signer, err := c.TokenSigner()
	if err != nil {
		return nil, fmt.Errorf("failed to get token signer for issuer use case: %w", err)
	}

	recorder, err := c.RecorderUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get audit recorder for issuer use case: %w", err)
	}

	businessMetrics, err := c.BusinessMetrics()
	if err != nil {
		return nil, fmt.Errorf("failed to get business metrics for issuer use case: %w", err)
	}

	useCase := tokenUseCase.NewIssuerUseCase(
		c.config, txManager, tokenRepo, orderRepo, signer, c.Generator(), recorder,
	)

	return tokenUseCase.NewIssuerUseCaseWithMetrics(useCase, businessMetrics), nil
}

// initScannerUseCase creates the scanner use case with all its dependencies.
func (c *Container) initScannerUseCase() (tokenUseCase.ScannerUseCase, error) {
	tokenRepo, err := c.TokenRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get token repository for scanner use case: %w", err)
	}

	orderRepo, err := c.OrderRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get order repository for scanner use case: %w", err)
	}

	signer, err := c.TokenSigner()
	if err != nil {
		return nil, fmt.Errorf("failed to get token signer for scanner use case: %w", err)
	}

	recorder, err := c.RecorderUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get audit recorder for scanner use case: %w", err)
	}

	businessMetrics, err := c.BusinessMetrics()
	if err != nil {
		return nil, fmt.Errorf("failed to get business metrics for scanner use case: %w", err)
	}

	useCase := tokenUseCase.NewScannerUseCase(tokenRepo, orderRepo, signer, recorder)

	return tokenUseCase.NewScannerUseCaseWithMetrics(useCase, businessMetrics), nil
}

// initConfirmerUseCase creates the confirmer use case with all its dependencies.
func (c *Container) initConfirmerUseCase() (tokenUseCase.ConfirmerUseCase, error) {
	txManager, err := c.TxManager()
	if err != nil {
		return nil, fmt.Errorf("failed to get tx manager for confirmer use case: %w", err)
	}

	tokenRepo, err := c.TokenRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get token repository for confirmer use case: %w", err)
	}

	orderRepo, err := c.OrderRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get order repository for confirmer use case: %w", err)
	}

	outboxRepo, err := c.OutboxRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get outbox repository for confirmer use case: %w", err)
	}

	recorder, err := c.RecorderUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get audit recorder for confirmer use case: %w", err)
	}

	businessMetrics, err := c.BusinessMetrics()
	if err != nil {
		return nil, fmt.Errorf("failed to get business metrics for confirmer use case: %w", err)
	}

	useCase := tokenUseCase.NewConfirmerUseCase(
		c.config, txManager, tokenRepo, orderRepo, outboxRepo, recorder,
	)

	return tokenUseCase.NewConfirmerUseCaseWithMetrics(useCase, businessMetrics), nil
}

// initTokenHandler creates the HTTP handler with all protocol use cases.
func (c *Container) initTokenHandler() (*tokenHTTP.TokenHandler, error) {
	issuer, err := c.IssuerUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get issuer use case for token handler: %w", err)
	}

	scanner, err := c.ScannerUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get scanner use case for token handler: %w", err)
	}

	confirmer, err := c.ConfirmerUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get confirmer use case for token handler: %w", err)
	}

	return tokenHTTP.NewTokenHandler(issuer, scanner, confirmer, c.Logger()), nil
}
