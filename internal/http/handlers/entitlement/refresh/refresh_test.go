package refresh

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/magabrotheeeer/pawlog/internal/http/middlewarectx"
	"github.com/magabrotheeeer/pawlog/internal/models"
	"github.com/magabrotheeeer/pawlog/internal/services/entitlement"
)

type MockService struct{ mock.Mock }

func (m *MockService) Refresh(ctx context.Context, userID, trigger string) (entitlement.State, error) {
	args := m.Called(ctx, userID, trigger)
	return args.Get(0).(entitlement.State), args.Error(1)
}

func TestRefreshHandler(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	premium := entitlement.State{PlanType: models.PlanPremium, IsPremium: true}

	tests := []struct {
		name           string
		body           string
		setupMock      func(*MockService)
		expectedStatus int
		expectedBody   []string
	}{
		{
			name: "empty body means foreground",
			body: "",
			setupMock: func(m *MockService) {
				m.On("Refresh", mock.Anything, "u1", entitlement.TriggerForeground).Return(premium, nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   []string{`"refreshed":true`, `"plan_type":"premium"`},
		},
		{
			name: "manual trigger",
			body: `{"trigger":"manual"}`,
			setupMock: func(m *MockService) {
				m.On("Refresh", mock.Anything, "u1", entitlement.TriggerManual).Return(premium, nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   []string{`"refreshed":true`},
		},
		{
			name: "failure keeps previous state",
			body: `{"trigger":"foreground"}`,
			setupMock: func(m *MockService) {
				m.On("Refresh", mock.Anything, "u1", entitlement.TriggerForeground).Return(premium, errors.New("timeout"))
			},
			expectedStatus: http.StatusOK,
			expectedBody:   []string{`"refreshed":false`, `"is_premium":true`},
		},
		{
			name:           "unknown trigger",
			body:           `{"trigger":"push"}`,
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusUnprocessableEntity,
			expectedBody:   []string{"field Trigger must be one of"},
		},
		{
			name:           "malformed json",
			body:           `{"trigger":`,
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   []string{"invalid request body"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockService)
			tt.setupMock(svc)

			req := httptest.NewRequest(http.MethodPost, "/api/v1/entitlement/refresh", strings.NewReader(tt.body))
			req = req.WithContext(middlewarectx.WithUserID(req.Context(), "u1"))
			w := httptest.NewRecorder()

			New(logger, svc).ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			for _, want := range tt.expectedBody {
				assert.Contains(t, w.Body.String(), want)
			}
			svc.AssertExpectations(t)
		})
	}
}
