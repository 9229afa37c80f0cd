package service

import (
	"context"
	"encoding/base64"

	"gocloud.dev/secrets"

	"github.com/HusseinTALL/GARBAKING-POS-sub002/internal/config"
	apperrors "github.com/HusseinTALL/GARBAKING-POS-sub002/internal/errors"

	// Register KMS provider drivers for signing-key unwrap
	_ "gocloud.dev/secrets/awskms"
	_ "gocloud.dev/secrets/azurekeyvault"
	_ "gocloud.dev/secrets/gcpkms"
	_ "gocloud.dev/secrets/hashivault"
	_ "gocloud.dev/secrets/localsecrets"
)

// signingKeyLoader implements SigningKeyLoader from application configuration.
// The key is never embedded in source: it comes either base64-encoded from the
// environment, or wrapped by a KMS and unwrapped at startup.
type signingKeyLoader struct {
	cfg *config.Config
}

// NewSigningKeyLoader creates a SigningKeyLoader for the given configuration.
func NewSigningKeyLoader(cfg *config.Config) SigningKeyLoader {
	return &signingKeyLoader{cfg: cfg}
}

// Load resolves the signing key. When TokenSigningKeyURI is set, the wrapped
// key ciphertext is decrypted through the KMS keeper; otherwise the key is
// decoded directly from TokenSigningKey.
func (l *signingKeyLoader) Load(ctx context.Context) ([]byte, error) {
	if l.cfg.TokenSigningKeyURI != "" {
		return l.unwrapFromKMS(ctx)
	}

	if l.cfg.TokenSigningKey == "" {
		return nil, apperrors.New("TOKEN_SIGNING_KEY or TOKEN_SIGNING_KEY_URI must be set")
	}

	key, err := base64.StdEncoding.DecodeString(l.cfg.TokenSigningKey)
	if err != nil {
		return nil, apperrors.Wrap(err, "TOKEN_SIGNING_KEY must be base64-encoded")
	}
	return key, nil
}

// unwrapFromKMS opens the configured keeper and decrypts the wrapped key.
func (l *signingKeyLoader) unwrapFromKMS(ctx context.Context) ([]byte, error) {
	if l.cfg.TokenSigningKeyWrapped == "" {
		return nil, apperrors.New("TOKEN_SIGNING_KEY_WRAPPED must be set when TOKEN_SIGNING_KEY_URI is used")
	}

	ciphertext, err := base64.StdEncoding.DecodeString(l.cfg.TokenSigningKeyWrapped)
	if err != nil {
		return nil, apperrors.Wrap(err, "TOKEN_SIGNING_KEY_WRAPPED must be base64-encoded")
	}

	keeper, err := secrets.OpenKeeper(ctx, l.cfg.TokenSigningKeyURI)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to open KMS keeper")
	}
	defer keeper.Close() //nolint:errcheck

	key, err := keeper.Decrypt(ctx, ciphertext)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to unwrap token signing key")
	}
	return key, nil
}
