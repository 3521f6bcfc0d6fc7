package services

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/coaching-courses/internal/models"
)

type RepoMock struct{ mock.Mock }

func (m *RepoMock) ListPublishedCourses(ctx context.Context) ([]models.Course, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Course), args.Error(1)
}

type CacheMock struct{ mock.Mock }

func (m *CacheMock) Get(ctx context.Context, key string, result any) (bool, error) {
	args := m.Called(ctx, key, result)
	return args.Bool(0), args.Error(1)
}

func (m *CacheMock) Set(ctx context.Context, key string, value any, expiration time.Duration) error {
	return m.Called(ctx, key, value, expiration).Error(0)
}

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
}

func TestCatalogService_PublishedCourses(t *testing.T) {
	courses := []models.Course{
		{ID: 1, Title: "Foundations", Position: 10, Published: true},
		{ID: 2, Title: "Signals", Position: 20, Published: true},
	}

	tests := []struct {
		name       string
		setupMocks func(r *RepoMock, c *CacheMock)
		want       []models.Course
		wantErr    bool
	}{
		{
			name: "cache hit",
			setupMocks: func(_ *RepoMock, c *CacheMock) {
				c.On("Get", mock.Anything, publishedCoursesKey, mock.Anything).
					Run(func(args mock.Arguments) {
						out := args.Get(2).(*[]models.Course)
						*out = courses
					}).Return(true, nil).Once()
			},
			want: courses,
		},
		{
			name: "cache miss reads repository and fills cache",
			setupMocks: func(r *RepoMock, c *CacheMock) {
				c.On("Get", mock.Anything, publishedCoursesKey, mock.Anything).Return(false, nil).Once()
				r.On("ListPublishedCourses", mock.Anything).Return(courses, nil).Once()
				c.On("Set", mock.Anything, publishedCoursesKey, courses, time.Minute).Return(nil).Once()
			},
			want: courses,
		},
		{
			name: "cache errors fall back to repository",
			setupMocks: func(r *RepoMock, c *CacheMock) {
				c.On("Get", mock.Anything, publishedCoursesKey, mock.Anything).Return(false, errors.New("redis down")).Once()
				r.On("ListPublishedCourses", mock.Anything).Return(courses, nil).Once()
				c.On("Set", mock.Anything, publishedCoursesKey, courses, time.Minute).Return(errors.New("redis down")).Once()
			},
			want: courses,
		},
		{
			name: "repository error",
			setupMocks: func(r *RepoMock, c *CacheMock) {
				c.On("Get", mock.Anything, publishedCoursesKey, mock.Anything).Return(false, nil).Once()
				r.On("ListPublishedCourses", mock.Anything).Return(nil, errors.New("db down")).Once()
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(RepoMock)
			cache := new(CacheMock)
			tt.setupMocks(repo, cache)

			svc := NewCatalogService(repo, cache, time.Minute, newNoopLogger())
			got, err := svc.PublishedCourses(context.Background())

			if tt.wantErr {
				require.Error(t, err)
				assert.Nil(t, got)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.want, got)
			}
			repo.AssertExpectations(t)
			cache.AssertExpectations(t)
		})
	}
}
