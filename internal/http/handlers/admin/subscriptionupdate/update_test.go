package subscriptionupdate

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/magabrotheeeer/coaching-courses/internal/models"
	"github.com/magabrotheeeer/coaching-courses/internal/storage"
)

type MockService struct {
	mock.Mock
}

func (m *MockService) Change(ctx context.Context, userUID uuid.UUID, tier models.Tier, period models.BillingPeriod) (*models.Subscription, models.EventKind, error) {
	args := m.Called(ctx, userUID, tier, period)
	sub, _ := args.Get(0).(*models.Subscription)
	return sub, args.Get(1).(models.EventKind), args.Error(2)
}

func TestUpdateHandler(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	uid := uuid.New()

	tests := []struct {
		name         string
		uid          string
		body         string
		setupMock    func(*MockService)
		expectedCode int
		expectedBody string
	}{
		{
			name: "upgrade",
			uid:  uid.String(),
			body: `{"tier":"pro","billing_period":"monthly"}`,
			setupMock: func(m *MockService) {
				m.On("Change", mock.Anything, uid, models.TierPro, models.BillingMonthly).
					Return(&models.Subscription{UserUID: uid, Tier: models.TierPro, Status: models.StatusActive}, models.EventUpgraded, nil).Once()
			},
			expectedCode: http.StatusOK,
			expectedBody: `"event":"upgraded"`,
		},
		{
			name:         "bad uid",
			uid:          "42",
			body:         `{"tier":"pro","billing_period":"monthly"}`,
			setupMock:    func(_ *MockService) {},
			expectedCode: http.StatusBadRequest,
			expectedBody: `"error":"invalid user uid"`,
		},
		{
			name:         "unknown tier",
			uid:          uid.String(),
			body:         `{"tier":"gold","billing_period":"monthly"}`,
			setupMock:    func(_ *MockService) {},
			expectedCode: http.StatusUnprocessableEntity,
			expectedBody: `field Tier must be one of`,
		},
		{
			name:         "broken body",
			uid:          uid.String(),
			body:         `tier=pro`,
			setupMock:    func(_ *MockService) {},
			expectedCode: http.StatusBadRequest,
			expectedBody: `"error":"invalid request body"`,
		},
		{
			name: "unknown user",
			uid:  uid.String(),
			body: `{"tier":"core","billing_period":"yearly"}`,
			setupMock: func(m *MockService) {
				m.On("Change", mock.Anything, uid, models.TierCore, models.BillingYearly).
					Return(nil, models.EventKind(""), storage.ErrUserNotFound).Once()
			},
			expectedCode: http.StatusNotFound,
			expectedBody: `"error":"user not found"`,
		},
		{
			name: "storage failure",
			uid:  uid.String(),
			body: `{"tier":"core","billing_period":"yearly"}`,
			setupMock: func(m *MockService) {
				m.On("Change", mock.Anything, uid, models.TierCore, models.BillingYearly).
					Return(nil, models.EventKind(""), errors.New("tx aborted")).Once()
			},
			expectedCode: http.StatusInternalServerError,
			expectedBody: `"error":"could not change subscription"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockService)
			tt.setupMock(svc)

			req := httptest.NewRequest(http.MethodPut, "/api/v1/admin/users/"+tt.uid+"/subscription", bytes.NewBufferString(tt.body))
			rctx := chi.NewRouteContext()
			rctx.URLParams.Add("uid", tt.uid)
			req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
			w := httptest.NewRecorder()

			New(logger, svc).ServeHTTP(w, req)

			assert.Equal(t, tt.expectedCode, w.Code)
			assert.Contains(t, w.Body.String(), tt.expectedBody)
			svc.AssertExpectations(t)
		})
	}
}
