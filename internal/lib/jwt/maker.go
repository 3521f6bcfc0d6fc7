// Package jwt выпускает и проверяет токены доступа клиентов.
package jwt

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ErrInvalidToken возвращается, если подпись верна, но содержимое токена не разобрать.
var ErrInvalidToken = errors.New("invalid token")

// Maker описывает выпуск и разбор токенов доступа.
type Maker interface {
	GenerateToken(username, role string, userUID uuid.UUID) (string, error)
	ParseToken(tokenStr string) (*CustomClaims, error)
}

// MakerImpl подписывает токены алгоритмом HS256 общим секретом.
type MakerImpl struct {
	secretKey []byte
	tokenTTL  time.Duration
	now       func() time.Time
}

// NewJWTMaker создаёт MakerImpl с секретом secretKey и временем жизни токена ttl.
func NewJWTMaker(secretKey string, ttl time.Duration) *MakerImpl {
	return &MakerImpl{
		secretKey: []byte(secretKey),
		tokenTTL:  ttl,
		now:       time.Now,
	}
}

func (j *MakerImpl) String() string {
	return fmt.Sprintf("jwt.MakerImpl{ttl: %s}", j.tokenTTL)
}
