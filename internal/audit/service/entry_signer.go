// Package service provides audit-entry integrity signing.
package service

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/google/uuid"
	"golang.org/x/crypto/hkdf"

	auditDomain "github.com/HusseinTALL/GARBAKING-POS-sub002/internal/audit/domain"
)

// EntrySigner signs audit entries so post-hoc tampering with the trail is
// detectable. Verification recomputes the HMAC over the canonical entry.
type EntrySigner interface {
	Sign(entry *auditDomain.Entry) ([]byte, error)
	Verify(entry *auditDomain.Entry) (bool, error)
}

type entrySigner struct {
	key []byte
}

// NewEntrySigner creates an HMAC-SHA256 entry signer. The signing key is
// derived from the token signing key via HKDF-SHA256 so the audit-integrity
// usage is separated from token signing.
func NewEntrySigner(tokenSigningKey []byte) (EntrySigner, error) {
	info := []byte("audit-entry-signing-v1")
	kdf := hkdf.New(sha256.New, tokenSigningKey, nil, info)

	key := make([]byte, 32)
	if _, err := io.ReadFull(kdf, key); err != nil {
		return nil, fmt.Errorf("failed to derive audit signing key: %w", err)
	}

	return &entrySigner{key: key}, nil
}

// Sign generates the HMAC-SHA256 signature for the entry.
func (s *entrySigner) Sign(entry *auditDomain.Entry) ([]byte, error) {
	canonical, err := canonicalize(entry)
	if err != nil {
		return nil, err
	}

	mac := hmac.New(sha256.New, s.key)
	mac.Write(canonical)
	return mac.Sum(nil), nil
}

// Verify recomputes the signature and compares it in constant time.
func (s *entrySigner) Verify(entry *auditDomain.Entry) (bool, error) {
	expected, err := s.Sign(entry)
	if err != nil {
		return false, err
	}
	return hmac.Equal(expected, entry.Signature), nil
}

// canonicalize converts an entry to an unambiguous byte representation.
// Variable-length fields are length-prefixed; nil optionals encode as empty.
func canonicalize(entry *auditDomain.Entry) ([]byte, error) {
	buf := make([]byte, 0, 512)

	buf = append(buf, entry.ID[:]...)
	buf = appendOptionalUUID(buf, entry.OrderID)
	buf = appendOptionalUUID(buf, entry.TokenID)
	buf = appendLengthPrefixed(buf, optionalString(entry.ShortCode))
	buf = appendLengthPrefixed(buf, []byte(entry.Action))
	buf = appendLengthPrefixed(buf, []byte(entry.Status))
	buf = appendLengthPrefixed(buf, optionalString(entry.ErrorMessage))
	buf = appendOptionalUUID(buf, entry.DeviceID)
	buf = appendLengthPrefixed(buf, optionalString(entry.DeviceType))
	buf = appendLengthPrefixed(buf, optionalString(entry.TerminalID))
	buf = appendLengthPrefixed(buf, optionalString(entry.UserID))
	buf = appendLengthPrefixed(buf, optionalString(entry.UserRole))
	buf = appendLengthPrefixed(buf, optionalString(entry.IPAddress))
	buf = appendLengthPrefixed(buf, optionalString(entry.PaymentMethod))
	buf = appendLengthPrefixed(buf, optionalString(entry.TransactionID))

	if entry.PaymentAmount != nil {
		amount := make([]byte, 8)
		binary.BigEndian.PutUint64(amount, uint64(*entry.PaymentAmount*100))
		buf = appendLengthPrefixed(buf, amount)
	} else {
		buf = appendLengthPrefixed(buf, nil)
	}

	ms := make([]byte, 8)
	binary.BigEndian.PutUint64(ms, uint64(entry.ProcessingTimeMs))
	buf = append(buf, ms...)

	ts := make([]byte, 8)
	binary.BigEndian.PutUint64(ts, uint64(entry.ScanTimestamp.UnixNano()))
	buf = append(buf, ts...)

	return buf, nil
}

func optionalString(s *string) []byte {
	if s == nil {
		return nil
	}
	return []byte(*s)
}

func appendOptionalUUID(buf []byte, id *uuid.UUID) []byte {
	if id == nil {
		return appendLengthPrefixed(buf, nil)
	}
	return appendLengthPrefixed(buf, id[:])
}

// appendLengthPrefixed adds a 4-byte big-endian length prefix followed by data.
func appendLengthPrefixed(buf []byte, data []byte) []byte {
	length := make([]byte, 4)
	binary.BigEndian.PutUint32(length, uint32(len(data)))
	buf = append(buf, length...)
	buf = append(buf, data...)
	return buf
}
