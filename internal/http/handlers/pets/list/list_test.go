package list

import (
	"context"
	"errors"
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

type MockService struct{ mock.Mock }

func (m *MockService) List(ctx context.Context, ownerID string) ([]*models.Pet, error) {
	args := m.Called(ctx, ownerID)
	if pets := args.Get(0); pets != nil {
		return pets.([]*models.Pet), args.Error(1)
	}
	return nil, args.Error(1)
}

func TestListHandler(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	tests := []struct {
		name           string
		userID         string
		setupMock      func(*MockService)
		expectedStatus int
		expectedBody   string
	}{
		{
			name:   "owner pets",
			userID: "u1",
			setupMock: func(m *MockService) {
				m.On("List", mock.Anything, "u1").
					Return([]*models.Pet{{ID: "p1", OwnerID: "u1", Name: "Бим"}}, nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `"name":"Бим"`,
		},
		{
			name:   "no pets renders empty array",
			userID: "u1",
			setupMock: func(m *MockService) {
				m.On("List", mock.Anything, "u1").Return(nil, nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `"data":[]`,
		},
		{
			name:   "storage failure",
			userID: "u1",
			setupMock: func(m *MockService) {
				m.On("List", mock.Anything, "u1").Return(nil, errors.New("db down"))
			},
			expectedStatus: http.StatusInternalServerError,
			expectedBody:   "could not list pets",
		},
		{
			name:           "no identity",
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusUnauthorized,
			expectedBody:   "unauthorized",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockService)
			tt.setupMock(svc)

			req := httptest.NewRequest(http.MethodGet, "/api/v1/pets", nil)
			if tt.userID != "" {
				req = req.WithContext(middlewarectx.WithUserID(req.Context(), tt.userID))
			}
			w := httptest.NewRecorder()
			New(logger, svc).ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.Contains(t, w.Body.String(), tt.expectedBody)
			svc.AssertExpectations(t)
		})
	}
}
