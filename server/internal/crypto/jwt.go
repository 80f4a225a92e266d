package crypto

import (
	"crypto/ed25519"
	"crypto/sha256"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Issuer is stamped into every token minted by the server.
const Issuer = "opsx-server"

// ErrEmptySubject is returned when minting a token without a user id.
var ErrEmptySubject = errors.New("token subject is required")

// TokenClaims is the JWT payload. The stakeholder/user id travels in the
// registered `sub` claim.
type TokenClaims struct {
	Name string `json:"name,omitempty"`
	Role string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

// JWTManager creates and verifies EdDSA-signed tokens.
type JWTManager struct {
	privateKey ed25519.PrivateKey
	publicKey  ed25519.PublicKey
	now        func() time.Time
}

// NewJWTManager derives the signing key from the master secret so every
// server sharing the secret accepts the same tokens.
func NewJWTManager(masterSecret string) (*JWTManager, error) {
	if masterSecret == "" {
		return nil, errors.New("master secret is required")
	}
	seed := sha256.Sum256([]byte(masterSecret))
	privateKey := ed25519.NewKeyFromSeed(seed[:])
	publicKey := privateKey.Public().(ed25519.PublicKey)

	return &JWTManager{
		privateKey: privateKey,
		publicKey:  publicKey,
		now:        time.Now,
	}, nil
}

// TokenOptions carries the optional claims of CreateToken.
type TokenOptions struct {
	Name string
	Role string
	// TTL sets an expiry. Zero mints a non-expiring token.
	TTL time.Duration
}

// CreateToken mints a token for userID.
func (m *JWTManager) CreateToken(userID string, opts TokenOptions) (string, error) {
	if userID == "" {
		return "", ErrEmptySubject
	}
	now := m.now()
	claims := TokenClaims{
		Name: opts.Name,
		Role: opts.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    Issuer,
		},
	}
	if opts.TTL > 0 {
		claims.ExpiresAt = jwt.NewNumericDate(now.Add(opts.TTL))
	}

	token := jwt.NewWithClaims(jwt.SigningMethodEdDSA, claims)
	return token.SignedString(m.privateKey)
}

// VerifyToken verifies and parses a JWT token.
func (m *JWTManager) VerifyToken(tokenString string) (*TokenClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &TokenClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodEd25519); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return m.publicKey, nil
	}, jwt.WithIssuer(Issuer), jwt.WithTimeFunc(m.now))
	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}

	claims, ok := token.Claims.(*TokenClaims)
	if !ok || !token.Valid || claims.Subject == "" {
		return nil, fmt.Errorf("invalid token")
	}
	return claims, nil
}
