// internal/auth/session.go
package auth

import (
	"crypto/ed25519"
	"fmt"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Player identities are ephemeral: a token minted at create/join is the
// only way to reclaim a seat on reconnect, so keys live for the process
// lifetime only.
var (
	privateKey ed25519.PrivateKey
	publicKey  ed25519.PublicKey

	// tokenTTL of zero means tokens never expire.
	tokenTTL time.Duration
)

// Init generates a fresh ed25519 key pair at runtime and reads the token
// lifetime from TOKEN_EXPIRE_TIME (a Go duration, or "never").
func Init() error {
	var err error
	publicKey, privateKey, err = ed25519.GenerateKey(nil)
	if err != nil {
		return fmt.Errorf("generate ed25519 key pair: %w", err)
	}

	raw := os.Getenv("TOKEN_EXPIRE_TIME")
	if raw == "" || raw == "never" || raw == "0" {
		tokenTTL = 0
		return nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("parse TOKEN_EXPIRE_TIME: %w", err)
	}
	tokenTTL = d
	return nil
}

// CreatePlayerToken mints a signed JWT whose subject is the player id.
func CreatePlayerToken(playerID uuid.UUID) (string, error) {
	claims := jwt.MapClaims{"sub": playerID.String()}
	if tokenTTL > 0 {
		claims["exp"] = time.Now().Add(tokenTTL).Unix()
	}
	token := jwt.NewWithClaims(jwt.SigningMethodEdDSA, claims)
	return token.SignedString(privateKey)
}

// ParsePlayerToken verifies a JWT and returns the player id it carries.
func ParsePlayerToken(tokenString string) (uuid.UUID, error) {
	t, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodEd25519); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return publicKey, nil
	})
	if err != nil {
		return uuid.Nil, fmt.Errorf("jwt parse error: %w", err)
	}
	if !t.Valid {
		return uuid.Nil, fmt.Errorf("invalid token")
	}
	sub, err := t.Claims.GetSubject()
	if err != nil {
		return uuid.Nil, fmt.Errorf("missing sub in jwt: %w", err)
	}
	playerID, err := uuid.Parse(sub)
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid player id in jwt: %w", err)
	}
	return playerID, nil
}
