package auth

import (
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenConfig is built once at process start from the environment and passed
// in explicitly; nothing in here reads ambient state.
type TokenConfig struct {
	Secret   string
	Lifetime time.Duration
	Issuer   string
}

type Claims struct {
	AccountID int64 `json:"account_id"`
	jwt.RegisteredClaims
}

var (
	ErrMissingToken = errors.New("missing token")
	ErrInvalidToken = errors.New("invalid token")
)

type TokenManager struct {
	secret   []byte
	lifetime time.Duration
	issuer   string
}

func NewTokenManager(cfg TokenConfig) *TokenManager {
	return &TokenManager{
		secret:   []byte(cfg.Secret),
		lifetime: cfg.Lifetime,
		issuer:   cfg.Issuer,
	}
}

// Generate issues a signed access token for the user and returns it together
// with its expiry instant, which the token endpoints echo to the caller.
func (m *TokenManager) Generate(username string, accountID int64) (string, time.Time, error) {
	if username == "" || accountID == 0 {
		return "", time.Time{}, ErrInvalidToken
	}

	now := time.Now()
	expiresAt := now.Add(m.lifetime)
	claims := &Claims{
		AccountID: accountID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   username,
			Issuer:    m.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}

// Validate verifies signature and expiry and requires both the subject
// username and the account id claim to be present.
func (m *TokenManager) Validate(tokenString string) (*Claims, error) {
	if strings.TrimSpace(tokenString) == "" {
		return nil, ErrMissingToken
	}

	parsed, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return m.secret, nil
	})
	if err != nil {
		return nil, ErrInvalidToken
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, ErrInvalidToken
	}
	if claims.Subject == "" || claims.AccountID == 0 {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
