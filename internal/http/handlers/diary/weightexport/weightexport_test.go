package weightexport

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/magabrotheeeer/pawlog/internal/http/middlewarectx"
	"github.com/magabrotheeeer/pawlog/internal/models"
)

type MockService struct{ mock.Mock }

func (m *MockService) Weights(ctx context.Context, ownerID, petID string, from, to time.Time) ([]models.WeightEntry, error) {
	args := m.Called(ctx, ownerID, petID, from, to)
	if e := args.Get(0); e != nil {
		return e.([]models.WeightEntry), args.Error(1)
	}
	return nil, args.Error(1)
}

func TestWeightExportHandler(t *testing.T) {
	svc := new(MockService)
	measured := time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC)
	svc.On("Weights", mock.Anything, "u1", "p1", mock.Anything, mock.Anything).
		Return([]models.WeightEntry{{MeasuredAt: measured, WeightKg: 12.4}}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/pets/p1/weights/export", nil)
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("id", "p1")
	ctx := context.WithValue(req.Context(), chi.RouteCtxKey, rctx)
	req = req.WithContext(middlewarectx.WithUserID(ctx, "u1"))
	w := httptest.NewRecorder()

	New(slog.New(slog.NewTextHandler(io.Discard, nil)), svc).ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/csv; charset=utf-8", w.Header().Get("Content-Type"))
	assert.Equal(t, "measured_at,weight_kg\n2025-06-01T08:00:00Z,12.4\n", w.Body.String())
}
