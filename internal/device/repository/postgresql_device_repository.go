// Package repository provides data persistence implementations for registered devices.
package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"

	"github.com/HusseinTALL/GARBAKING-POS-sub002/internal/database"
	deviceDomain "github.com/HusseinTALL/GARBAKING-POS-sub002/internal/device/domain"
	apperrors "github.com/HusseinTALL/GARBAKING-POS-sub002/internal/errors"
)

// PostgreSQLDeviceRepository handles device persistence for PostgreSQL.
type PostgreSQLDeviceRepository struct {
	db *sql.DB
}

// NewPostgreSQLDeviceRepository creates a new PostgreSQLDeviceRepository
func NewPostgreSQLDeviceRepository(db *sql.DB) *PostgreSQLDeviceRepository {
	return &PostgreSQLDeviceRepository{
		db: db,
	}
}

// Create stores a new device
func (p *PostgreSQLDeviceRepository) Create(ctx context.Context, device *deviceDomain.Device) error {
	querier := database.GetTx(ctx, p.db)

	query := `INSERT INTO devices (id, name, device_type, terminal_id, secret, is_active, created_at)
			  VALUES ($1, $2, $3, $4, $5, $6, NOW())`

	_, err := querier.ExecContext(ctx, query,
		device.ID, device.Name, device.DeviceType, device.TerminalID, device.Secret, device.IsActive)
	if err != nil {
		return apperrors.Wrap(err, "failed to create device")
	}

	return nil
}

// Get retrieves a device by ID. Returns ErrDeviceNotFound if not found.
func (p *PostgreSQLDeviceRepository) Get(ctx context.Context, deviceID uuid.UUID) (*deviceDomain.Device, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT id, name, device_type, terminal_id, secret, is_active, created_at
			  FROM devices WHERE id = $1`

	var device deviceDomain.Device

	err := querier.QueryRowContext(ctx, query, deviceID).Scan(
		&device.ID,
		&device.Name,
		&device.DeviceType,
		&device.TerminalID,
		&device.Secret,
		&device.IsActive,
		&device.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, deviceDomain.ErrDeviceNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get device")
	}

	return &device, nil
}

// SetActive flips the device's active flag. Returns ErrDeviceNotFound if the device doesn't exist.
func (p *PostgreSQLDeviceRepository) SetActive(ctx context.Context, deviceID uuid.UUID, active bool) error {
	querier := database.GetTx(ctx, p.db)

	query := `UPDATE devices SET is_active = $1 WHERE id = $2`

	result, err := querier.ExecContext(ctx, query, active, deviceID)
	if err != nil {
		return apperrors.Wrap(err, "failed to update device")
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return apperrors.Wrap(err, "failed to read affected rows")
	}
	if affected == 0 {
		return deviceDomain.ErrDeviceNotFound
	}

	return nil
}
