package app

import (
	"fmt"

	deviceRepository "github.com/HusseinTALL/GARBAKING-POS-sub002/internal/device/repository"
	deviceService "github.com/HusseinTALL/GARBAKING-POS-sub002/internal/device/service"
	deviceUseCase "github.com/HusseinTALL/GARBAKING-POS-sub002/internal/device/usecase"
)

// SecretService returns the secret service for device registration and authentication.
func (c *Container) SecretService() deviceService.SecretService {
	c.secretServiceInit.Do(func() {
		c.secretService = deviceService.NewSecretService()
	})
	return c.secretService
}

// DeviceRepository returns the device repository based on database driver.
func (c *Container) DeviceRepository() (deviceUseCase.DeviceRepository, error) {
	var err error
	c.deviceRepoInit.Do(func() {
		c.deviceRepo, err = c.initDeviceRepository()
		if err != nil {
			c.initErrors["deviceRepo"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["deviceRepo"]; exists {
		return nil, storedErr
	}
	return c.deviceRepo, nil
}

// DeviceUseCase returns the device registry use case.
func (c *Container) DeviceUseCase() (deviceUseCase.DeviceUseCase, error) {
	var err error
	c.deviceUseCaseInit.Do(func() {
		var repo deviceUseCase.DeviceRepository
		repo, err = c.DeviceRepository()
		if err != nil {
			c.initErrors["deviceUseCase"] = err
			return
		}
		c.deviceUseCase = deviceUseCase.NewDeviceUseCase(repo, c.SecretService())
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["deviceUseCase"]; exists {
		return nil, storedErr
	}
	return c.deviceUseCase, nil
}

// initDeviceRepository creates the device repository instance.
func (c *Container) initDeviceRepository() (deviceUseCase.DeviceRepository, error) {
	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for device repository: %w", err)
	}

	switch c.config.DBDriver {
	case "mysql":
		return deviceRepository.NewMySQLDeviceRepository(db), nil
	case "postgres":
		return deviceRepository.NewPostgreSQLDeviceRepository(db), nil
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", c.config.DBDriver)
	}
}
