package remove

import (
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

	"github.com/magabrotheeeer/learning-platform/internal/services/packages"
)

type MockService struct {
	mock.Mock
}

func (m *MockService) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestRemoveHandler(t *testing.T) {
	id := uuid.MustParse("22222222-2222-2222-2222-222222222222")

	tests := []struct {
		name           string
		urlID          string
		setupMock      func(*MockService)
		expectedStatus int
		expectedBody   string
	}{
		{
			name:  "deleted",
			urlID: id.String(),
			setupMock: func(m *MockService) {
				m.On("Delete", mock.Anything, id).Return(nil).Once()
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `{"status":"OK","data":{"deleted_id":"` + id.String() + `"}}`,
		},
		{
			name:           "bad id",
			urlID:          "abc",
			setupMock:      func(*MockService) {},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `{"status":"Error","error":"invalid package id"}`,
		},
		{
			name:  "not found",
			urlID: id.String(),
			setupMock: func(m *MockService) {
				m.On("Delete", mock.Anything, id).Return(packages.ErrPackageNotFound).Once()
			},
			expectedStatus: http.StatusNotFound,
			expectedBody:   `{"status":"Error","error":"package not found"}`,
		},
		{
			name:  "referenced",
			urlID: id.String(),
			setupMock: func(m *MockService) {
				m.On("Delete", mock.Anything, id).Return(packages.ErrPackageInUse).Once()
			},
			expectedStatus: http.StatusConflict,
			expectedBody:   `{"status":"Error","error":"package has entitlements, deactivate it instead"}`,
		},
		{
			name:  "store failure",
			urlID: id.String(),
			setupMock: func(m *MockService) {
				m.On("Delete", mock.Anything, id).Return(errors.New("boom")).Once()
			},
			expectedStatus: http.StatusInternalServerError,
			expectedBody:   `{"status":"Error","error":"failed to delete package"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockService)
			tt.setupMock(svc)

			req := httptest.NewRequest(http.MethodDelete, "/api/v1/admin/packages/"+tt.urlID, nil)
			rctx := chi.NewRouteContext()
			rctx.URLParams.Add("id", tt.urlID)
			req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))

			rr := httptest.NewRecorder()
			New(newNoopLogger(), svc).ServeHTTP(rr, req)

			assert.Equal(t, tt.expectedStatus, rr.Code)
			assert.JSONEq(t, tt.expectedBody, rr.Body.String())
			svc.AssertExpectations(t)
		})
	}
}
