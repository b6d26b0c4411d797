package create

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/magabrotheeeer/learning-platform/internal/models"
	"github.com/magabrotheeeer/learning-platform/internal/services/packages"
)

type MockService struct {
	mock.Mock
}

func (m *MockService) Create(ctx context.Context, in models.PackageInput) (*models.Package, error) {
	args := m.Called(ctx, in)
	if p := args.Get(0); p != nil {
		return p.(*models.Package), args.Error(1)
	}
	return nil, args.Error(1)
}

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestCreateHandler(t *testing.T) {
	id := uuid.MustParse("22222222-2222-2222-2222-222222222222")
	trial := func(in models.PackageInput) bool {
		return in.Name == "Trial" && in.DurationMonths != nil && *in.DurationMonths == 0 &&
			in.Price != nil && in.Price.IsZero()
	}

	tests := []struct {
		name           string
		body           string
		setupMock      func(*MockService)
		expectedStatus int
		expectedBody   string
	}{
		{
			name: "trial package",
			body: `{"name":"Trial","price":"0","duration_months":0,"features":["All subjects"]}`,
			setupMock: func(m *MockService) {
				m.On("Create", mock.Anything, mock.MatchedBy(trial)).Return(&models.Package{
					ID: id, Name: "Trial", Price: decimal.Zero, Features: []string{"All subjects"}, IsActive: true,
				}, nil).Once()
			},
			expectedStatus: http.StatusCreated,
		},
		{
			name:           "invalid json",
			body:           `{"name":`,
			setupMock:      func(*MockService) {},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `{"status":"Error","error":"invalid request body"}`,
		},
		{
			name:           "missing name and duration",
			body:           `{"price":"10"}`,
			setupMock:      func(*MockService) {},
			expectedStatus: http.StatusUnprocessableEntity,
			expectedBody:   `{"status":"Error","error":"field Name is a required field, field DurationMonths is a required field"}`,
		},
		{
			name:           "negative duration",
			body:           `{"name":"Bad","price":"10","duration_months":-1}`,
			setupMock:      func(*MockService) {},
			expectedStatus: http.StatusUnprocessableEntity,
			expectedBody:   `{"status":"Error","error":"field DurationMonths must be at least 0"}`,
		},
		{
			name: "negative price",
			body: `{"name":"Bad","price":"-1","duration_months":1}`,
			setupMock: func(m *MockService) {
				m.On("Create", mock.Anything, mock.Anything).Return(nil, packages.ErrInvalidPrice).Once()
			},
			expectedStatus: http.StatusUnprocessableEntity,
			expectedBody:   `{"status":"Error","error":"price must not be negative"}`,
		},
		{
			name: "store failure",
			body: `{"name":"Monthly","price":"10","duration_months":1}`,
			setupMock: func(m *MockService) {
				m.On("Create", mock.Anything, mock.Anything).Return(nil, errors.New("db down")).Once()
			},
			expectedStatus: http.StatusInternalServerError,
			expectedBody:   `{"status":"Error","error":"could not create package"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockService)
			tt.setupMock(svc)

			rr := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/api/v1/admin/packages", strings.NewReader(tt.body))
			New(newNoopLogger(), svc).ServeHTTP(rr, req)

			assert.Equal(t, tt.expectedStatus, rr.Code)
			if tt.expectedBody != "" {
				assert.JSONEq(t, tt.expectedBody, rr.Body.String())
			} else {
				assert.Contains(t, rr.Body.String(), id.String())
			}
			svc.AssertExpectations(t)
		})
	}
}
