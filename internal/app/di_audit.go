package app

import (
	"fmt"

	auditHTTP "github.com/HusseinTALL/GARBAKING-POS-sub002/internal/audit/http"
	auditRepository "github.com/HusseinTALL/GARBAKING-POS-sub002/internal/audit/repository"
	auditService "github.com/HusseinTALL/GARBAKING-POS-sub002/internal/audit/service"
	auditUseCase "github.com/HusseinTALL/GARBAKING-POS-sub002/internal/audit/usecase"
)

// EntrySigner returns the HMAC signer for audit entries. Its key is derived
// from the token signing key, so a single secret protects both surfaces.
func (c *Container) EntrySigner() (auditService.EntrySigner, error) {
	var err error
	c.entrySignerInit.Do(func() {
		var key []byte
		key, err = c.SigningKey()
		if err != nil {
			c.initErrors["entrySigner"] = err
			return
		}
		c.entrySigner, err = auditService.NewEntrySigner(key)
		if err != nil {
			c.initErrors["entrySigner"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["entrySigner"]; exists {
		return nil, storedErr
	}
	return c.entrySigner, nil
}

// EntryRepository returns the audit entry repository based on database driver.
func (c *Container) EntryRepository() (auditUseCase.EntryRepository, error) {
	var err error
	c.entryRepoInit.Do(func() {
		c.entryRepo, err = c.initEntryRepository()
		if err != nil {
			c.initErrors["entryRepo"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["entryRepo"]; exists {
		return nil, storedErr
	}
	return c.entryRepo, nil
}

// RecorderUseCase returns the audit recorder use case.
func (c *Container) RecorderUseCase() (auditUseCase.RecorderUseCase, error) {
	var err error
	c.recorderUseCaseInit.Do(func() {
		c.recorderUseCase, err = c.initRecorderUseCase()
		if err != nil {
			c.initErrors["recorderUseCase"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["recorderUseCase"]; exists {
		return nil, storedErr
	}
	return c.recorderUseCase, nil
}

// SecurityEventHandler returns the HTTP handler for the security-event feed.
func (c *Container) SecurityEventHandler() (*auditHTTP.SecurityEventHandler, error) {
	var err error
	c.securityEventHandlerInit.Do(func() {
		var recorder auditUseCase.RecorderUseCase
		recorder, err = c.RecorderUseCase()
		if err != nil {
			c.initErrors["securityEventHandler"] = err
			return
		}
		c.securityEventHandler = auditHTTP.NewSecurityEventHandler(
			recorder, c.config.SecurityEventWindow, c.Logger(),
		)
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["securityEventHandler"]; exists {
		return nil, storedErr
	}
	return c.securityEventHandler, nil
}

// initEntryRepository creates the audit entry repository instance.
func (c *Container) initEntryRepository() (auditUseCase.EntryRepository, error) {
	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for audit entry repository: %w", err)
	}

	switch c.config.DBDriver {
	case "mysql":
		return auditRepository.NewMySQLEntryRepository(db), nil
	case "postgres":
		return auditRepository.NewPostgreSQLEntryRepository(db), nil
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", c.config.DBDriver)
	}
}

// initRecorderUseCase creates the audit recorder use case with all its dependencies.
func (c *Container) initRecorderUseCase() (auditUseCase.RecorderUseCase, error) {
	entryRepo, err := c.EntryRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get entry repository for recorder use case: %w", err)
	}

	signer, err := c.EntrySigner()
	if err != nil {
		return nil, fmt.Errorf("failed to get entry signer for recorder use case: %w", err)
	}

	return auditUseCase.NewRecorderUseCase(entryRepo, signer, c.Logger()), nil
}
