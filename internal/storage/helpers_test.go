package storage

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/docker/go-connections/nat"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/magabrotheeeer/coaching-courses/internal/migrations"
	"github.com/magabrotheeeer/coaching-courses/internal/models"
)

const postgresPort = nat.Port("5432/tcp")

// TestDataFactory содержит методы для создания тестовых данных
type TestDataFactory struct {
	storage *Storage
}

// NewTestDataFactory создает новую фабрику тестовых данных
func NewTestDataFactory(storage *Storage) *TestDataFactory {
	return &TestDataFactory{storage: storage}
}

// CreateUser создает тестового пользователя без подписки
func (f *TestDataFactory) CreateUser(t *testing.T, username string) uuid.UUID {
	var uid uuid.UUID
	err := f.storage.DB.QueryRow(`INSERT INTO users (username, email, password_hash, role)
		VALUES ($1, $2, 'hashedpassword', 'user') RETURNING uid`,
		username, username+"@example.com").Scan(&uid)
	require.NoError(t, err)
	return uid
}

// SetRawSubscription записывает колонки подписки как есть, в обход проверок модели
func (f *TestDataFactory) SetRawSubscription(t *testing.T, uid uuid.UUID, tier, period, status string, start time.Time) {
	_, err := f.storage.DB.Exec(`UPDATE users
		SET package_type = $1, billing_period = $2, subscription_status = $3, subscription_start = $4
		WHERE uid = $5`, tier, period, status, start, uid)
	require.NoError(t, err)
}

// CreateCourse создает тестовый курс
func (f *TestDataFactory) CreateCourse(t *testing.T, title string, position int, published bool) int64 {
	var id int64
	err := f.storage.DB.QueryRow(`INSERT INTO courses (title, position, published)
		VALUES ($1, $2, $3) RETURNING id`, title, position, published).Scan(&id)
	require.NoError(t, err)
	return id
}

func testSubscription(uid uuid.UUID, tier models.Tier, status models.SubscriptionStatus) models.Subscription {
	return models.Subscription{
		UserUID:       uid,
		Tier:          tier,
		BillingPeriod: models.BillingMonthly,
		Status:        status,
		StartedAt:     time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

// setupTestDatabase создает тестовую БД в контейнере PostgreSQL и применяет миграции
func setupTestDatabase(t *testing.T) *Storage {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "postgres:15-alpine",
		ExposedPorts: []string{string(postgresPort)},
		Env: map[string]string{
			"POSTGRES_DB":       "testdb",
			"POSTGRES_USER":     "testuser",
			"POSTGRES_PASSWORD": "testpass",
		},
		WaitingFor: wait.ForAll(
			wait.ForListeningPort(postgresPort),
			wait.ForLog("database system is ready to accept connections").WithOccurrence(2),
		).WithDeadline(3 * time.Minute),
	}

	postgresContainer, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err, "failed to start container")
	t.Cleanup(func() {
		if err := postgresContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %s", err)
		}
	})

	host, err := postgresContainer.Host(ctx)
	require.NoError(t, err)
	port, err := postgresContainer.MappedPort(ctx, postgresPort)
	require.NoError(t, err, "failed to get port")

	connStr := fmt.Sprintf("postgres://testuser:testpass@%s:%s/testdb?sslmode=disable", host, port.Port())

	var storage *Storage
	for range 10 {
		storage, err = New(connStr)
		if err == nil {
			break
		}
		time.Sleep(time.Second)
	}
	require.NoError(t, err, "failed to create storage after retries")
	t.Cleanup(func() { _ = storage.Close() })

	migrationsPath, err := filepath.Abs("../../migrations")
	require.NoError(t, err)
	require.NoError(t, migrations.Run(storage.DB, migrationsPath))

	// каталог из сидов мешает проверкам порядка
	_, err = storage.DB.Exec(`DELETE FROM courses`)
	require.NoError(t, err)

	return storage
}
