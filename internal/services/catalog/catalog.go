// Package services содержит чтение каталога курсов с кешированием в Redis.
package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/magabrotheeeer/coaching-courses/internal/lib/sl"
	"github.com/magabrotheeeer/coaching-courses/internal/models"
)

const publishedCoursesKey = "courses:published"

// CourseRepository определяет чтение каталога из хранилища.
type CourseRepository interface {
	ListPublishedCourses(ctx context.Context) ([]models.Course, error)
}

// Cache описывает методы для кэширования данных.
type Cache interface {
	// Get пытается получить значение из кеша по ключу.
	Get(ctx context.Context, key string, result any) (bool, error)
	// Set сохраняет значение в кеш с временем жизни.
	Set(ctx context.Context, key string, value any, expiration time.Duration) error
}

// CatalogService отдаёт опубликованные курсы. Список кешируется на ttl,
// ошибки кеша не мешают чтению из базы.
type CatalogService struct {
	repo  CourseRepository
	cache Cache
	ttl   time.Duration
	log   *slog.Logger
}

// NewCatalogService создает новый экземпляр CatalogService.
func NewCatalogService(repo CourseRepository, cache Cache, ttl time.Duration, log *slog.Logger) *CatalogService {
	return &CatalogService{
		repo:  repo,
		cache: cache,
		ttl:   ttl,
		log:   log,
	}
}

// PublishedCourses возвращает опубликованные курсы в порядке позиции.
func (s *CatalogService) PublishedCourses(ctx context.Context) ([]models.Course, error) {
	var courses []models.Course
	found, err := s.cache.Get(ctx, publishedCoursesKey, &courses)
	if err != nil {
		s.log.Warn("failed to read catalog from cache", slog.String("key", publishedCoursesKey), sl.Err(err))
	}
	if found && err == nil {
		return courses, nil
	}

	courses, err = s.repo.ListPublishedCourses(ctx)
	if err != nil {
		return nil, err
	}

	if err := s.cache.Set(ctx, publishedCoursesKey, courses, s.ttl); err != nil {
		s.log.Warn("failed to cache catalog", slog.String("key", publishedCoursesKey), sl.Err(err))
	}
	return courses, nil
}
