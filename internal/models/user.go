// Package models содержит доменную модель пользователя системы,
// включающую данные учётной записи, хэш пароля и роль.
package models

import "github.com/google/uuid"

// Роли пользователей.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// User представляет зарегистрированного пользователя системы.
type User struct {
	UUID         uuid.UUID     // Уникальный идентификатор пользователя
	Email        string        // Электронная почта
	Username     string        // Имя пользователя (уникальное)
	PasswordHash string        // Хэш пароля пользователя
	Role         string        // Роль пользователя, admin или user
	Subscription *Subscription // Подписка, nil если пользователь ещё не оплачивал
}
