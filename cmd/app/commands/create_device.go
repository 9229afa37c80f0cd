package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	deviceDomain "github.com/HusseinTALL/GARBAKING-POS-sub002/internal/device/domain"
	deviceUseCase "github.com/HusseinTALL/GARBAKING-POS-sub002/internal/device/usecase"
)

// RunCreateDevice registers a new scanning device and prints its ID and plain
// secret. The plain secret is shown only once; provision it on the device
// immediately. Outputs in either text or JSON format.
//
// Requirements: Database must be migrated and accessible.
func RunCreateDevice(
	ctx context.Context,
	devices deviceUseCase.DeviceUseCase,
	logger *slog.Logger,
	name string,
	deviceType string,
	terminalID string,
	format string,
	io IOTuple,
) error {
	deviceType = strings.ToLower(strings.TrimSpace(deviceType))
	if !slices.Contains(deviceDomain.KnownDeviceTypes, deviceType) {
		return fmt.Errorf(
			"invalid device type: %s (valid options: %s)",
			deviceType,
			strings.Join(deviceDomain.KnownDeviceTypes, ", "),
		)
	}

	logger.Info("creating new device",
		slog.String("name", name),
		slog.String("device_type", deviceType),
	)

	input := &deviceDomain.CreateDeviceInput{
		Name:       name,
		DeviceType: deviceType,
		TerminalID: terminalID,
	}

	output, err := devices.Create(ctx, input)
	if err != nil {
		return fmt.Errorf("failed to create device: %w", err)
	}

	// Output result based on format
	if format == "json" {
		if err := outputCreateDeviceJSON(output, io); err != nil {
			return err
		}
	} else {
		outputCreateDeviceText(output, io)
	}

	logger.Info("device created successfully",
		slog.String("device_id", output.ID.String()),
		slog.String("name", name),
	)

	return nil
}

// outputCreateDeviceText outputs the result in human-readable text format.
func outputCreateDeviceText(output *deviceDomain.CreateDeviceOutput, io IOTuple) {
	fmt.Fprintf(io.Writer, "Device created successfully!\n\n")
	fmt.Fprintf(io.Writer, "Device ID: %s\n", output.ID)
	fmt.Fprintf(io.Writer, "Device Secret: %s\n\n", output.PlainSecret)
	fmt.Fprintf(io.Writer, "IMPORTANT: Store the secret securely. It will not be shown again.\n")
}

// outputCreateDeviceJSON outputs the result in JSON format for machine consumption.
func outputCreateDeviceJSON(output *deviceDomain.CreateDeviceOutput, io IOTuple) error {
	result := map[string]interface{}{
		"device_id":     output.ID.String(),
		"device_secret": output.PlainSecret,
	}

	jsonBytes, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	fmt.Fprintln(io.Writer, string(jsonBytes))
	return nil
}
