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

// MySQLDeviceRepository handles device persistence for MySQL.
// UUIDs are stored as CHAR(36) strings.
type MySQLDeviceRepository struct {
	db *sql.DB
}

// NewMySQLDeviceRepository creates a new MySQLDeviceRepository
func NewMySQLDeviceRepository(db *sql.DB) *MySQLDeviceRepository {
	return &MySQLDeviceRepository{
		db: db,
	}
}

// Create stores a new device
func (m *MySQLDeviceRepository) Create(ctx context.Context, device *deviceDomain.Device) error {
	querier := database.GetTx(ctx, m.db)

	query := `INSERT INTO devices (id, name, device_type, terminal_id, secret, is_active, created_at)
			  VALUES (?, ?, ?, ?, ?, ?, NOW())`

	_, err := querier.ExecContext(ctx, query,
		device.ID.String(), device.Name, device.DeviceType, device.TerminalID, device.Secret, device.IsActive)
	if err != nil {
		return apperrors.Wrap(err, "failed to create device")
	}

	return nil
}

// Get retrieves a device by ID. Returns ErrDeviceNotFound if not found.
func (m *MySQLDeviceRepository) Get(ctx context.Context, deviceID uuid.UUID) (*deviceDomain.Device, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT id, name, device_type, terminal_id, secret, is_active, created_at
			  FROM devices WHERE id = ?`

	var device deviceDomain.Device
	var id string

	err := querier.QueryRowContext(ctx, query, deviceID.String()).Scan(
		&id,
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

	device.ID, err = uuid.Parse(id)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to parse device id")
	}

	return &device, nil
}

// SetActive flips the device's active flag. Returns ErrDeviceNotFound if the device doesn't exist.
func (m *MySQLDeviceRepository) SetActive(ctx context.Context, deviceID uuid.UUID, active bool) error {
	querier := database.GetTx(ctx, m.db)

	query := `UPDATE devices SET is_active = ? WHERE id = ?`

	result, err := querier.ExecContext(ctx, query, active, deviceID.String())
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
