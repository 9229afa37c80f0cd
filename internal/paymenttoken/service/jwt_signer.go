package service

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	apperrors "github.com/HusseinTALL/GARBAKING-POS-sub002/internal/errors"
	tokenDomain "github.com/HusseinTALL/GARBAKING-POS-sub002/internal/paymenttoken/domain"
)

const tokenIssuer = "garbaking-pos"

// jwtSigner implements TokenSigner using HMAC-SHA256 signed JWTs.
type jwtSigner struct {
	key []byte
}

// tokenClaims is the wire shape of the signed payload. The token ID travels
// as the registered "jti" claim, the order ID and nonce as private claims.
type tokenClaims struct {
	OrderID string `json:"oid"`
	Nonce   string `json:"nonce"`
	jwt.RegisteredClaims
}

// NewJWTSigner creates a TokenSigner backed by the shared signing key.
// The same key must be injected at the issuing and scanning boundaries.
func NewJWTSigner(key []byte) (TokenSigner, error) {
	if len(key) < 32 {
		return nil, apperrors.New("token signing key must be at least 32 bytes")
	}
	return &jwtSigner{key: key}, nil
}

// Sign builds an HS256 JWT with the token ID, order ID, nonce, and expiry claims.
func (s *jwtSigner) Sign(claims *tokenDomain.Claims, issuedAt, expiresAt time.Time) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, &tokenClaims{
		OrderID: claims.OrderID.String(),
		Nonce:   claims.Nonce,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        claims.TokenID.String(),
			Issuer:    tokenIssuer,
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	})

	signed, err := token.SignedString(s.key)
	if err != nil {
		return "", apperrors.Wrap(err, "failed to sign payment token")
	}
	return signed, nil
}

// Verify parses and validates a presented token. Only HS256 is accepted.
func (s *jwtSigner) Verify(signedToken string) (*tokenDomain.Claims, error) {
	var claims tokenClaims

	_, err := jwt.ParseWithClaims(
		signedToken,
		&claims,
		func(*jwt.Token) (any, error) { return s.key, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(tokenIssuer),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, tokenDomain.ErrTokenExpired
		}
		return nil, tokenDomain.ErrTokenInvalid
	}

	tokenID, err := uuid.Parse(claims.ID)
	if err != nil {
		return nil, tokenDomain.ErrTokenInvalid
	}
	orderID, err := uuid.Parse(claims.OrderID)
	if err != nil {
		return nil, tokenDomain.ErrTokenInvalid
	}
	if claims.Nonce == "" {
		return nil, tokenDomain.ErrTokenInvalid
	}

	return &tokenDomain.Claims{
		TokenID: tokenID,
		OrderID: orderID,
		Nonce:   claims.Nonce,
	}, nil
}

// HashToken hashes a signed token using SHA-256.
// Returns the hash as a hexadecimal string.
func (s *jwtSigner) HashToken(signedToken string) string {
	hash := sha256.Sum256([]byte(signedToken))
	return hex.EncodeToString(hash[:])
}
