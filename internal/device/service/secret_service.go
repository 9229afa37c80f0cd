// Package service provides secret generation and hashing for the device registry.
// Device secrets are random 256-bit values stored as Argon2id hashes.
package service

import (
	"crypto/rand"
	"encoding/base64"

	"github.com/allisson/go-pwdhash"

	apperrors "github.com/HusseinTALL/GARBAKING-POS-sub002/internal/errors"
)

// SecretService generates, hashes, and verifies device secrets.
type SecretService interface {
	// GenerateSecret creates a random secret and returns both the plain and
	// hashed forms. The plain form is shown once at registration.
	GenerateSecret() (plainSecret string, hashedSecret string, err error)

	// HashSecret hashes a plain secret for storage.
	HashSecret(plainSecret string) (hashedSecret string, err error)

	// CompareSecret verifies a plain secret against its stored hash.
	CompareSecret(plainSecret string, hashedSecret string) bool
}

// secretService implements SecretService using Argon2id hashing.
type secretService struct {
	hasher *pwdhash.PasswordHasher
}

// NewSecretService creates a SecretService using Argon2id with the Moderate policy.
func NewSecretService() SecretService {
	hasher, err := pwdhash.New(
		pwdhash.WithPolicy(pwdhash.PolicyModerate),
	)
	if err != nil {
		// This should never happen with valid policy
		panic(err)
	}

	return &secretService{
		hasher: hasher,
	}
}

// GenerateSecret creates a new cryptographically secure 32-byte random secret.
func (s *secretService) GenerateSecret() (string, string, error) {
	randomBytes := make([]byte, 32)
	if _, err := rand.Read(randomBytes); err != nil {
		return "", "", apperrors.Wrap(err, "failed to generate random secret")
	}

	plainSecret := base64.URLEncoding.EncodeToString(randomBytes)

	hashedSecret, err := s.HashSecret(plainSecret)
	if err != nil {
		return "", "", err
	}

	return plainSecret, hashedSecret, nil
}

// HashSecret hashes a plain text secret using Argon2id.
func (s *secretService) HashSecret(plainSecret string) (string, error) {
	hashedSecret, err := s.hasher.Hash([]byte(plainSecret))
	if err != nil {
		return "", apperrors.Wrap(err, "failed to hash secret")
	}
	return hashedSecret, nil
}

// CompareSecret performs a constant-time comparison between a plain secret and its hash.
func (s *secretService) CompareSecret(plainSecret string, hashedSecret string) bool {
	ok, err := s.hasher.Verify([]byte(plainSecret), hashedSecret)
	if err != nil {
		return false
	}
	return ok
}
