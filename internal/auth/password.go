// Package auth отвечает за хеширование паролей и выпуск сессионных токенов.
package auth

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// HashPassword хеширует пароль с солью (bcrypt). Пустой пароль — ошибка.
func HashPassword(plain string) ([]byte, error) {
	if plain == "" {
		return nil, fmt.Errorf("password must not be empty")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	return hash, nil
}

// VerifyPassword сравнивает пароль с хешем. Несовпадение — не ошибка,
// а false.
func VerifyPassword(plain string, hash []byte) bool {
	return bcrypt.CompareHashAndPassword(hash, []byte(plain)) == nil
}
