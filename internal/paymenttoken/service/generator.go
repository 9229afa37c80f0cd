package service

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"math/big"
)

// shortCodeChars is the manual-entry charset. Ambiguous characters
// (0/O, 1/I/L) are excluded so staff can read codes back reliably.
const shortCodeChars = "ABCDEFGHJKMNPQRSTUVWXYZ23456789"

// Length bounds for short codes: long enough to resist guessing within a
// token's lifetime, short enough to key in at a register.
const (
	MinShortCodeLength = 6
	MaxShortCodeLength = 8
)

type generator struct{}

// NewGenerator creates a Generator producing cryptographically secure nonces
// and short codes.
func NewGenerator() Generator {
	return &generator{}
}

// Nonce creates a 128-bit random value, base64 URL-encoded.
func (g *generator) Nonce() (string, error) {
	randomBytes := make([]byte, 16)
	if _, err := rand.Read(randomBytes); err != nil {
		return "", fmt.Errorf("failed to generate nonce: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(randomBytes), nil
}

// ShortCode creates a random code of the specified length from the
// unambiguous charset. Returns an error if length is outside 6-8.
func (g *generator) ShortCode(length int) (string, error) {
	if length < MinShortCodeLength || length > MaxShortCodeLength {
		return "", errors.New("short code length must be between 6 and 8")
	}

	code := make([]byte, length)
	charsLen := big.NewInt(int64(len(shortCodeChars)))

	for i := 0; i < length; i++ {
		n, err := rand.Int(rand.Reader, charsLen)
		if err != nil {
			return "", fmt.Errorf("failed to generate random character: %w", err)
		}
		code[i] = shortCodeChars[n.Int64()]
	}

	return string(code), nil
}

// ValidShortCode checks that a presented code uses only the short-code charset.
func ValidShortCode(code string) bool {
	if len(code) < MinShortCodeLength || len(code) > MaxShortCodeLength {
		return false
	}
	for _, c := range code {
		if !isShortCodeChar(byte(c)) {
			return false
		}
	}
	return true
}

func isShortCodeChar(c byte) bool {
	for i := 0; i < len(shortCodeChars); i++ {
		if shortCodeChars[i] == c {
			return true
		}
	}
	return false
}
