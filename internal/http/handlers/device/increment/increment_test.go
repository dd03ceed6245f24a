package increment

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/magabrotheeeer/phytocheck/internal/models"
)

// MockService реализует интерфейс increment.Service
type MockService struct {
	mock.Mock
}

func (m *MockService) IncrementSearch(ctx context.Context, req models.DeviceRequest) models.IncrementResult {
	return m.Called(ctx, req).Get(0).(models.IncrementResult)
}

func TestIncrementHandler(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))

	tests := []struct {
		name           string
		body           string
		setupMock      func(*MockService)
		expectedStatus int
		expectedBody   string
	}{
		{
			name: "поиск разрешён",
			body: `{"device_id":"dev-1"}`,
			setupMock: func(m *MockService) {
				m.On("IncrementSearch", mock.Anything, models.DeviceRequest{DeviceID: "dev-1"}).
					Return(models.IncrementResult{Allowed: true, SearchCount: 3})
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `{"status":"OK","data":{"allowed":true,"search_count":3}}`,
		},
		{
			name: "квота исчерпана",
			body: `{"device_id":"dev-1"}`,
			setupMock: func(m *MockService) {
				m.On("IncrementSearch", mock.Anything, models.DeviceRequest{DeviceID: "dev-1"}).
					Return(models.IncrementResult{Allowed: false, SearchCount: 15})
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `{"status":"OK","data":{"allowed":false,"search_count":15}}`,
		},
		{
			name: "premium",
			body: `{"device_id":"dev-1","is_premium":true}`,
			setupMock: func(m *MockService) {
				m.On("IncrementSearch", mock.Anything, models.DeviceRequest{DeviceID: "dev-1", IsPremium: true}).
					Return(models.IncrementResult{Allowed: true, SearchCount: -1})
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `{"status":"OK","data":{"allowed":true,"search_count":-1}}`,
		},
		{
			name:           "слишком длинный идентификатор",
			body:           `{"device_id":"` + strings.Repeat("x", 256) + `"}`,
			setupMock:      func(*MockService) {},
			expectedStatus: http.StatusUnprocessableEntity,
			expectedBody:   `{"status":"Error","error":"field DeviceID must be at most 255 characters"}`,
		},
		{
			name:           "некорректный JSON",
			body:           `[]`,
			setupMock:      func(*MockService) {},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `{"status":"Error","error":"invalid request body"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockService)
			tt.setupMock(mockService)

			req := httptest.NewRequest(http.MethodPost, "/api/v1/device/increment-search", strings.NewReader(tt.body))
			w := httptest.NewRecorder()
			New(logger, mockService).ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.JSONEq(t, tt.expectedBody, w.Body.String())
			mockService.AssertExpectations(t)
		})
	}
}
