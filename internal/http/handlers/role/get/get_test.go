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
	"github.com/magabrotheeeer/pawlog/internal/models"
)

type MockResolver struct{ mock.Mock }

func (m *MockResolver) Resolve(ctx context.Context, userID string) models.Role {
	args := m.Called(ctx, userID)
	return args.Get(0).(models.Role)
}

func TestGetHandler(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	tests := []struct {
		name         string
		role         models.Role
		expectedBody string
	}{
		{name: "vet", role: models.RoleVet, expectedBody: `"role":"vet"`},
		{name: "tutor", role: models.RoleTutor, expectedBody: `"role":"tutor"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := new(MockResolver)
			res.On("Resolve", mock.Anything, "u1").Return(tt.role)

			req := httptest.NewRequest(http.MethodGet, "/api/v1/role", nil)
			req = req.WithContext(middlewarectx.WithUserID(req.Context(), "u1"))
			w := httptest.NewRecorder()
			New(logger, res).ServeHTTP(w, req)

			assert.Equal(t, http.StatusOK, w.Code)
			assert.Contains(t, w.Body.String(), tt.expectedBody)
			res.AssertExpectations(t)
		})
	}

	t.Run("no identity", func(t *testing.T) {
		res := new(MockResolver)
		w := httptest.NewRecorder()
		New(logger, res).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/role", nil))

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		res.AssertNotCalled(t, "Resolve", mock.Anything, mock.Anything)
	})
}
