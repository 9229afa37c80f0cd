package commands

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	deviceUseCase "github.com/HusseinTALL/GARBAKING-POS-sub002/internal/device/usecase"
)

// RunDeactivateDevice deactivates a device so it can no longer authenticate.
// The device record is kept for audit purposes.
//
// Requirements: Database must be migrated and accessible.
func RunDeactivateDevice(
	ctx context.Context,
	devices deviceUseCase.DeviceUseCase,
	logger *slog.Logger,
	deviceID string,
	io IOTuple,
) error {
	id, err := uuid.Parse(deviceID)
	if err != nil {
		return fmt.Errorf("invalid device id: %s", deviceID)
	}

	logger.Info("deactivating device", slog.String("device_id", id.String()))

	if err := devices.Deactivate(ctx, id); err != nil {
		return fmt.Errorf("failed to deactivate device: %w", err)
	}

	fmt.Fprintf(io.Writer, "Device %s deactivated successfully\n", id)

	logger.Info("device deactivated successfully", slog.String("device_id", id.String()))
	return nil
}
