package handlers_test

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"taskAssistant/internal/handlers"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestHealthHandler_HealthCheck(t *testing.T) {
	tests := []struct {
		name           string
		setupMock      func(*MockHealthChecker)
		expectedStatus int
	}{
		{
			name: "success - healthy",
			setupMock: func(m *MockHealthChecker) {
				m.On("HealthCheck", mock.Anything).Return(nil)
			},
			expectedStatus: http.StatusOK,
		},
		{
			name: "error - unhealthy",
			setupMock: func(m *MockHealthChecker) {
				m.On("HealthCheck", mock.Anything).Return(errors.New("database unavailable"))
			},
			expectedStatus: http.StatusServiceUnavailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			checker := new(MockHealthChecker)
			tt.setupMock(checker)

			handler := handlers.NewHealthHandler(checker, "dev-1")

			req := httptest.NewRequest(http.MethodGet, "/health", nil)
			w := httptest.NewRecorder()

			handler.HealthCheck(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.Contains(t, w.Body.String(), "task-assistant")
			assert.Contains(t, w.Body.String(), "dev-1")

			checker.AssertExpectations(t)
		})
	}
}
