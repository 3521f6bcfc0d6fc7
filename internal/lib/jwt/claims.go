package jwt

import (
	"fmt"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// CustomClaims хранит данные клиента внутри токена. UID пользователя
// кладётся в стандартное поле sub.
type CustomClaims struct {
	Username string `json:"username"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}

// UserUID возвращает UID пользователя из поля sub.
func (c *CustomClaims) UserUID() (uuid.UUID, error) {
	uid, err := uuid.Parse(c.Subject)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: subject: %w", ErrInvalidToken, err)
	}
	return uid, nil
}

// GenerateToken выпускает токен для пользователя.
func (j *MakerImpl) GenerateToken(username, role string, userUID uuid.UUID) (string, error) {
	const op = "jwt.GenerateToken"
	issued := j.now()
	claims := CustomClaims{
		Username: username,
		Role:     role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userUID.String(),
			IssuedAt:  jwt.NewNumericDate(issued),
			ExpiresAt: jwt.NewNumericDate(issued.Add(j.tokenTTL)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(j.secretKey)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return signed, nil
}

// ParseToken проверяет подпись и срок действия токена и возвращает его claims.
// Токены, подписанные не HMAC, отклоняются.
func (j *MakerImpl) ParseToken(tokenStr string) (*CustomClaims, error) {
	const op = "jwt.ParseToken"
	token, err := jwt.ParseWithClaims(tokenStr, &CustomClaims{}, func(_ *jwt.Token) (any, error) {
		return j.secretKey, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	claims, ok := token.Claims.(*CustomClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidToken)
	}
	if _, err := claims.UserUID(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return claims, nil
}
