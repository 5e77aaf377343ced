package auth

import (
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/golang-jwt/jwt/v5"
)

const (
	DefaultTokenTTL = 24 * time.Hour
	Issuer          = "anana-auth"
)

// GenerateToken signs a token authenticating wallet.
func GenerateToken(wallet common.Address, secret string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub": wallet.Hex(),
		"exp": now.Add(ttl).Unix(),
		"iat": now.Unix(),
		"iss": Issuer,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}
