package app

import (
	"fmt"

	outboxRepository "github.com/HusseinTALL/GARBAKING-POS-sub002/internal/outbox/repository"
	outboxUseCase "github.com/HusseinTALL/GARBAKING-POS-sub002/internal/outbox/usecase"
)

// OutboxRepository returns the outbox event repository based on database driver.
func (c *Container) OutboxRepository() (outboxUseCase.EventRepository, error) {
	var err error
	c.outboxRepoInit.Do(func() {
		c.outboxRepo, err = c.initOutboxRepository()
		if err != nil {
			c.initErrors["outboxRepo"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["outboxRepo"]; exists {
		return nil, storedErr
	}
	return c.outboxRepo, nil
}

// NotifierUseCase returns the outbox notifier that delivers payment events.
func (c *Container) NotifierUseCase() (outboxUseCase.NotifierUseCase, error) {
	var err error
	c.notifierUseCaseInit.Do(func() {
		c.notifierUseCase, err = c.initNotifierUseCase()
		if err != nil {
			c.initErrors["notifierUseCase"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["notifierUseCase"]; exists {
		return nil, storedErr
	}
	return c.notifierUseCase, nil
}

// initOutboxRepository creates the outbox event repository instance.
func (c *Container) initOutboxRepository() (outboxUseCase.EventRepository, error) {
	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for outbox repository: %w", err)
	}

	switch c.config.DBDriver {
	case "mysql":
		return outboxRepository.NewMySQLEventRepository(db), nil
	case "postgres":
		return outboxRepository.NewPostgreSQLEventRepository(db), nil
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", c.config.DBDriver)
	}
}

// initNotifierUseCase creates the outbox notifier instance.
func (c *Container) initNotifierUseCase() (outboxUseCase.NotifierUseCase, error) {
	eventRepo, err := c.OutboxRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get outbox repository for notifier: %w", err)
	}

	txManager, err := c.TxManager()
	if err != nil {
		return nil, fmt.Errorf("failed to get transaction manager for notifier: %w", err)
	}

	cfg := outboxUseCase.Config{
		Interval:   c.config.NotifierInterval,
		BatchSize:  c.config.NotifierBatchSize,
		MaxRetries: c.config.NotifierMaxRetries,
	}
	processor := outboxUseCase.NewLoggingEventProcessor(c.Logger())

	return outboxUseCase.NewNotifier(cfg, txManager, eventRepo, processor, c.Logger()), nil
}
