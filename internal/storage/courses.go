package storage

import (
	"context"
	"fmt"

	"github.com/magabrotheeeer/coaching-courses/internal/models"
)

// ListPublishedCourses возвращает опубликованные курсы, упорядоченные по позиции.
func (s *Storage) ListPublishedCourses(ctx context.Context) ([]models.Course, error) {
	const op = "storage.ListPublishedCourses"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, title, position, published
			  FROM courses
			  WHERE published = true
			  ORDER BY position`
	rows, err := s.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	result := make([]models.Course, 0)
	for rows.Next() {
		var c models.Course
		if err := rows.Scan(&c.ID, &c.Title, &c.Position, &c.Published); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		if c.Position < 0 {
			return nil, fmt.Errorf("%s: %w: course %d has negative position", op, ErrInvalidRecord, c.ID)
		}
		result = append(result, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}
