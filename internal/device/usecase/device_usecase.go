// Package usecase implements business logic for the staff device registry.
package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	deviceDomain "github.com/HusseinTALL/GARBAKING-POS-sub002/internal/device/domain"
	deviceService "github.com/HusseinTALL/GARBAKING-POS-sub002/internal/device/service"
)

// DeviceRepository defines persistence operations for registered devices.
// Implementations must support transaction-aware operations via context propagation.
type DeviceRepository interface {
	// Create stores a new device in the repository.
	Create(ctx context.Context, device *deviceDomain.Device) error

	// Get retrieves a device by ID. Returns ErrDeviceNotFound if not found.
	Get(ctx context.Context, deviceID uuid.UUID) (*deviceDomain.Device, error)

	// SetActive flips the device's active flag.
	SetActive(ctx context.Context, deviceID uuid.UUID, active bool) error
}

// DeviceUseCase defines business logic operations for the device registry.
type DeviceUseCase interface {
	// Create registers a device and returns its ID and plain secret. The plain
	// secret is only returned once; the hashed form is stored.
	Create(ctx context.Context, input *deviceDomain.CreateDeviceInput) (*deviceDomain.CreateDeviceOutput, error)

	// Authenticate verifies a device's secret and returns the device.
	//
	// Returns ErrInvalidCredentials for both unknown devices and wrong secrets
	// to prevent device enumeration, and ErrDeviceInactive for devices that
	// were deactivated.
	Authenticate(ctx context.Context, deviceID uuid.UUID, plainSecret string) (*deviceDomain.Device, error)

	// Deactivate prevents the device from authenticating. The record stays for
	// audit purposes.
	Deactivate(ctx context.Context, deviceID uuid.UUID) error
}

// deviceUseCase implements DeviceUseCase.
type deviceUseCase struct {
	deviceRepo    DeviceRepository
	secretService deviceService.SecretService
}

// NewDeviceUseCase creates a DeviceUseCase with the provided dependencies.
func NewDeviceUseCase(
	deviceRepo DeviceRepository,
	secretService deviceService.SecretService,
) DeviceUseCase {
	return &deviceUseCase{
		deviceRepo:    deviceRepo,
		secretService: secretService,
	}
}

// Create registers a new device with a generated secret.
func (d *deviceUseCase) Create(
	ctx context.Context,
	input *deviceDomain.CreateDeviceInput,
) (*deviceDomain.CreateDeviceOutput, error) {
	plainSecret, hashedSecret, err := d.secretService.GenerateSecret()
	if err != nil {
		return nil, err
	}

	device := &deviceDomain.Device{
		ID:         uuid.Must(uuid.NewV7()),
		Name:       input.Name,
		DeviceType: input.DeviceType,
		TerminalID: input.TerminalID,
		Secret:     hashedSecret,
		IsActive:   true,
		CreatedAt:  time.Now().UTC(),
	}

	if err := d.deviceRepo.Create(ctx, device); err != nil {
		return nil, err
	}

	return &deviceDomain.CreateDeviceOutput{
		ID:          device.ID,
		PlainSecret: plainSecret,
	}, nil
}

// Authenticate verifies the device secret and active flag.
func (d *deviceUseCase) Authenticate(
	ctx context.Context,
	deviceID uuid.UUID,
	plainSecret string,
) (*deviceDomain.Device, error) {
	device, err := d.deviceRepo.Get(ctx, deviceID)
	if err != nil {
		if errors.Is(err, deviceDomain.ErrDeviceNotFound) {
			return nil, deviceDomain.ErrInvalidCredentials
		}
		return nil, err
	}

	if !d.secretService.CompareSecret(plainSecret, device.Secret) {
		return nil, deviceDomain.ErrInvalidCredentials
	}

	if !device.IsActive {
		return nil, deviceDomain.ErrDeviceInactive
	}

	return device, nil
}

// Deactivate soft-disables a device.
func (d *deviceUseCase) Deactivate(ctx context.Context, deviceID uuid.UUID) error {
	return d.deviceRepo.SetActive(ctx, deviceID, false)
}
