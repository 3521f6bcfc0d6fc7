// Package storage реализует хранилище данных на основе PostgreSQL:
// пользователей, их подписки, журнал изменений подписок и каталог курсов.
// Строки из базы переводятся в типизированные модели прямо на границе хранилища,
// некорректные значения отклоняются ошибкой ErrInvalidRecord.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	// Регистрация драйвера pgx для использования с database/sql.
	_ "github.com/jackc/pgx/v5/stdlib"
)

var (
	// ErrUserNotFound — пользователь с таким идентификатором или именем не найден.
	ErrUserNotFound = errors.New("user not found")
	// ErrUserExists — пользователь с таким именем или почтой уже зарегистрирован.
	ErrUserExists = errors.New("user already exists")
	// ErrInvalidRecord — строка из базы содержит недопустимые значения.
	ErrInvalidRecord = errors.New("invalid record")
)

// Storage инкапсулирует соединение с базой данных PostgreSQL.
type Storage struct {
	DB *sql.DB
}

// New создаёт подключение к PostgreSQL и проверяет его доступность.
func New(storageConnectionString string) (*Storage, error) {
	const op = "storage.New"

	db, err := sql.Open("pgx", storageConnectionString)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err = db.PingContext(context.Background()); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &Storage{
		DB: db,
	}, nil
}

// CheckDatabaseReady проверяет, что миграции применены и нужные таблицы существуют.
func CheckDatabaseReady(ctx context.Context, storage *Storage) error {
	var exists bool
	err := storage.DB.QueryRowContext(ctx, `SELECT EXISTS (
        SELECT FROM information_schema.tables
        WHERE table_name = 'courses'
    )`).Scan(&exists)
	if err != nil {
		return fmt.Errorf("storage.CheckDatabaseReady: %w", err)
	}
	if !exists {
		return errors.New("storage.CheckDatabaseReady: required table courses missing")
	}
	return nil
}

// Ping проверяет доступность базы данных.
func (s *Storage) Ping(ctx context.Context) error {
	return s.DB.PingContext(ctx)
}

// Close закрывает пул соединений.
func (s *Storage) Close() error {
	return s.DB.Close()
}
