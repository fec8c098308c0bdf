package get

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/magabrotheeeer/pawlog/internal/http/middlewarectx"
	"github.com/magabrotheeeer/pawlog/internal/services/onboarding"
)

type MockService struct{ mock.Mock }

func (m *MockService) Check(ctx context.Context, userID string) onboarding.Status {
	args := m.Called(ctx, userID)
	return args.Get(0).(onboarding.Status)
}

func TestGetHandler(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	t.Run("first visit", func(t *testing.T) {
		svc := new(MockService)
		svc.On("Check", mock.Anything, "u1").Return(onboarding.StatusUnseen)

		req := httptest.NewRequest(http.MethodGet, "/api/v1/onboarding", nil)
		req = req.WithContext(middlewarectx.WithUserID(req.Context(), "u1"))
		w := httptest.NewRecorder()
		New(logger, svc).ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"status":"unseen"`)
		svc.AssertExpectations(t)
	})

	t.Run("already seen", func(t *testing.T) {
		svc := new(MockService)
		svc.On("Check", mock.Anything, "u1").Return(onboarding.StatusSeen)

		req := httptest.NewRequest(http.MethodGet, "/api/v1/onboarding", nil)
		req = req.WithContext(middlewarectx.WithUserID(req.Context(), "u1"))
		w := httptest.NewRecorder()
		New(logger, svc).ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"status":"seen"`)
	})

	t.Run("no identity", func(t *testing.T) {
		svc := new(MockService)
		w := httptest.NewRecorder()
		New(logger, svc).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/onboarding", nil))

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		svc.AssertNotCalled(t, "Check", mock.Anything, mock.Anything)
	})
}
