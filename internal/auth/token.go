package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// ErrInvalidToken возвращается при любой ошибке разбора, подписи или
// истечения срока токена. Вызывающий код трактует все подварианты
// одинаково — как неаутентифицированный запрос.
var ErrInvalidToken = errors.New("invalid token")

// TokenManager выпускает и проверяет подписанные сессионные токены (JWT HS256).
type TokenManager struct {
	secret     []byte
	defaultTTL time.Duration
}

// NewTokenManager создаёт менеджер токенов с указанным секретом и TTL по умолчанию.
func NewTokenManager(secret string, defaultTTL time.Duration) (*TokenManager, error) {
	if secret == "" {
		return nil, fmt.Errorf("token secret must not be empty")
	}
	return &TokenManager{
		secret:     []byte(secret),
		defaultTTL: defaultTTL,
	}, nil
}

// Issue выпускает токен для указанного субъекта. При ttl <= 0 используется
// TTL по умолчанию.
func (m *TokenManager) Issue(subjectID uuid.UUID, ttl time.Duration) (string, error) {
	if ttl <= 0 {
		ttl = m.defaultTTL
	}

	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   subjectID.String(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Resolve проверяет подпись и срок токена и возвращает идентификатор субъекта.
func (m *TokenManager) Resolve(tokenString string) (uuid.UUID, error) {
	token, err := jwt.ParseWithClaims(tokenString, &jwt.RegisteredClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return m.secret, nil
	})
	if err != nil || !token.Valid {
		return uuid.Nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*jwt.RegisteredClaims)
	if !ok || claims.Subject == "" {
		return uuid.Nil, ErrInvalidToken
	}

	id, err := uuid.Parse(claims.Subject)
	if err != nil {
		return uuid.Nil, ErrInvalidToken
	}
	return id, nil
}
