package repository

import (
	"database/sql"

	"github.com/google/uuid"
)

// uuidPtrString converts an optional UUID to its MySQL CHAR(36) form.
func uuidPtrString(id *uuid.UUID) *string {
	if id == nil {
		return nil
	}
	s := id.String()
	return &s
}

func parseUUID(s string) (uuid.UUID, error) {
	return uuid.Parse(s)
}

func parseNullUUID(ns sql.NullString) (*uuid.UUID, error) {
	if !ns.Valid {
		return nil, nil
	}
	id, err := uuid.Parse(ns.String)
	if err != nil {
		return nil, err
	}
	return &id, nil
}
