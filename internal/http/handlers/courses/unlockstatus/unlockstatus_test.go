package unlockstatus

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/coaching-courses/internal/http/middlewarectx"
	"github.com/magabrotheeeer/coaching-courses/internal/models"
	"github.com/magabrotheeeer/coaching-courses/internal/storage"
)

type MockService struct {
	mock.Mock
}

func (m *MockService) Status(ctx context.Context, userUID uuid.UUID) (*models.UnlockReport, error) {
	args := m.Called(ctx, userUID)
	if res := args.Get(0); res != nil {
		return res.(*models.UnlockReport), args.Error(1)
	}
	return nil, args.Error(1)
}

type ObserverMock struct {
	mock.Mock
}

func (m *ObserverMock) ObserveUnlockStatus(outcome string) {
	m.Called(outcome)
}

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
}

func TestUnlockStatusHandler(t *testing.T) {
	uid := uuid.New()
	next := time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC)
	report := &models.UnlockReport{
		Courses: []models.CourseUnlock{
			{CourseID: 1, Title: "Confidence", Position: 10, Locked: false},
			{CourseID: 2, Title: "First date", Position: 20, Locked: true, UnlockDate: &next},
		},
		Summary: models.UnlockSummary{UnlockedCount: 1, TotalCount: 2, NextUnlockDate: &next},
	}

	tests := []struct {
		name           string
		ctxUID         any
		setupMock      func(*MockService)
		wantStatus     int
		wantOutcome    string
		wantBodySubstr string
	}{
		{
			name:   "success",
			ctxUID: uid,
			setupMock: func(m *MockService) {
				m.On("Status", mock.Anything, uid).Return(report, nil).Once()
			},
			wantStatus:     http.StatusOK,
			wantOutcome:    OutcomeOK,
			wantBodySubstr: `"unlockDate":"2026-01-15T00:00:00Z"`,
		},
		{
			name:           "no uid in context",
			setupMock:      func(_ *MockService) {},
			wantStatus:     http.StatusUnauthorized,
			wantOutcome:    OutcomeUnauthorized,
			wantBodySubstr: `{"status":"Error","error":"unauthorized"}`,
		},
		{
			name:   "user not found",
			ctxUID: uid,
			setupMock: func(m *MockService) {
				m.On("Status", mock.Anything, uid).
					Return(nil, fmt.Errorf("services.unlock.Status: %w", storage.ErrUserNotFound)).Once()
			},
			wantStatus:     http.StatusNotFound,
			wantOutcome:    OutcomeNotFound,
			wantBodySubstr: `{"status":"Error","error":"user not found"}`,
		},
		{
			name:   "storage failure hides details",
			ctxUID: uid,
			setupMock: func(m *MockService) {
				m.On("Status", mock.Anything, uid).Return(nil, errors.New("pq: connection refused")).Once()
			},
			wantStatus:     http.StatusInternalServerError,
			wantOutcome:    OutcomeError,
			wantBodySubstr: `{"status":"Error","error":"internal server error"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockService)
			obs := new(ObserverMock)
			tt.setupMock(svc)
			obs.On("ObserveUnlockStatus", tt.wantOutcome).Once()

			req := httptest.NewRequest(http.MethodGet, "/api/v1/courses/unlock-status", nil)
			if tt.ctxUID != nil {
				req = req.WithContext(context.WithValue(req.Context(), middlewarectx.UserUID, tt.ctxUID))
			}
			w := httptest.NewRecorder()

			New(newNoopLogger(), svc, obs).ServeHTTP(w, req)

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Contains(t, w.Body.String(), tt.wantBodySubstr)
			assert.NotContains(t, w.Body.String(), "connection refused")
			svc.AssertExpectations(t)
			obs.AssertExpectations(t)
		})
	}
}

func TestUnlockStatusHandler_BodyShape(t *testing.T) {
	uid := uuid.New()
	svc := new(MockService)
	svc.On("Status", mock.Anything, uid).Return(&models.UnlockReport{
		Courses: []models.CourseUnlock{{CourseID: 7, Title: "Texting", Position: 30}},
		Summary: models.UnlockSummary{UnlockedCount: 1, TotalCount: 1},
	}, nil).Once()

	req := httptest.NewRequest(http.MethodGet, "/api/courses/unlock-status", nil)
	req = req.WithContext(context.WithValue(req.Context(), middlewarectx.UserUID, uid))
	w := httptest.NewRecorder()

	New(newNoopLogger(), svc, nil).ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))

	courses := body["courses"].([]any)
	require.Len(t, courses, 1)
	course := courses[0].(map[string]any)
	assert.Equal(t, float64(7), course["courseId"])
	assert.Equal(t, false, course["locked"])
	assert.Contains(t, course, "unlockDate")
	assert.Nil(t, course["unlockDate"])

	summary := body["summary"].(map[string]any)
	assert.Equal(t, float64(1), summary["unlockedCount"])
	assert.Equal(t, float64(1), summary["totalCount"])
	assert.Nil(t, summary["nextUnlockDate"])
}
