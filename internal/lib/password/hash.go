// Package password хеширует и проверяет пароли пользователей через bcrypt.
package password

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// ErrMismatch возвращается, если пароль не соответствует хешу.
var ErrMismatch = errors.New("password does not match")

// GetHash возвращает bcrypt-хеш пароля для хранения в таблице users.
func GetHash(password string) (string, error) {
	const op = "password.GetHash"
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return string(hashed), nil
}

// CompareHash проверяет пароль по хешу. Несовпадение возвращается как ErrMismatch,
// повреждённый хеш как обычная ошибка.
func CompareHash(hash, password string) error {
	const op = "password.CompareHash"
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return fmt.Errorf("%s: %w", op, ErrMismatch)
	}
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
