package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"taskAssistant/internal/auth"
	"taskAssistant/internal/handlers"
	"taskAssistant/internal/models/user"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func testTokens() *auth.Tokens {
	now := time.Now()
	return &auth.Tokens{
		UserID:                uuid.New(),
		SessionID:             uuid.New(),
		AccessToken:           "access",
		AccessTokenExpiresAt:  now.Add(15 * time.Minute),
		RefreshToken:          "refresh",
		RefreshTokenExpiresAt: now.Add(24 * time.Hour),
	}
}

func cookieNames(w *httptest.ResponseRecorder) map[string]*http.Cookie {
	result := make(map[string]*http.Cookie)
	for _, c := range w.Result().Cookies() {
		result[c.Name] = c
	}
	return result
}

func TestAuthHandler_SignUp(t *testing.T) {
	tests := []struct {
		name           string
		setupMock      func(*MockAuthService)
		expectedStatus int
		expectedError  string
	}{
		{
			name: "success",
			setupMock: func(m *MockAuthService) {
				m.On("SignUp", mock.Anything, "ann@example.com", "secret123", "Ann").Return(testTokens(), nil)
			},
			expectedStatus: http.StatusCreated,
		},
		{
			name: "error - email taken",
			setupMock: func(m *MockAuthService) {
				m.On("SignUp", mock.Anything, "ann@example.com", "secret123", "Ann").Return(nil, auth.ErrEmailTaken)
			},
			expectedStatus: http.StatusConflict,
			expectedError:  "EMAIL_TAKEN",
		},
		{
			name: "error - weak password",
			setupMock: func(m *MockAuthService) {
				m.On("SignUp", mock.Anything, "ann@example.com", "secret123", "Ann").Return(nil, auth.ErrWeakPassword)
			},
			expectedStatus: http.StatusBadRequest,
			expectedError:  "VALIDATION_ERROR",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockAuthService)
			tt.setupMock(mockService)

			handler := handlers.NewAuthHandler(mockService, false)

			body := `{"email": "ann@example.com", "password": "secret123", "name": "Ann"}`
			req := httptest.NewRequest(http.MethodPost, "/auth/signup", bytes.NewBufferString(body))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()

			handler.SignUp(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			var response map[string]any
			require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
			if tt.expectedError != "" {
				assert.Equal(t, tt.expectedError, response["error"])
			} else {
				tokens := response["tokens"].(map[string]any)
				assert.Equal(t, "access", tokens["access_token"])
				assert.Equal(t, "Bearer", tokens["token_type"])

				cookies := cookieNames(w)
				require.Contains(t, cookies, auth.AccessTokenCookie)
				assert.True(t, cookies[auth.AccessTokenCookie].HttpOnly)
				assert.Equal(t, "refresh", cookies[auth.RefreshTokenCookie].Value)
			}
			mockService.AssertExpectations(t)
		})
	}
}

func TestAuthHandler_SignIn(t *testing.T) {
	mockService := new(MockAuthService)
	mockService.On("SignIn", mock.Anything, "ann@example.com", "wrong").Return(nil, auth.ErrInvalidCredentials)

	handler := handlers.NewAuthHandler(mockService, false)

	req := httptest.NewRequest(http.MethodPost, "/auth/signin", bytes.NewBufferString(`{"email": "ann@example.com", "password": "wrong"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	handler.SignIn(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Empty(t, cookieNames(w))
	mockService.AssertExpectations(t)
}

func TestAuthHandler_Refresh(t *testing.T) {
	t.Run("from body", func(t *testing.T) {
		mockService := new(MockAuthService)
		mockService.On("Refresh", mock.Anything, "old").Return(testTokens(), nil)

		handler := handlers.NewAuthHandler(mockService, false)
		req := httptest.NewRequest(http.MethodPost, "/auth/refresh", bytes.NewBufferString(`{"refresh_token": "old"}`))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()

		handler.Refresh(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		mockService.AssertExpectations(t)
	})

	t.Run("from cookie", func(t *testing.T) {
		mockService := new(MockAuthService)
		mockService.On("Refresh", mock.Anything, "cookie-token").Return(testTokens(), nil)

		handler := handlers.NewAuthHandler(mockService, false)
		req := httptest.NewRequest(http.MethodPost, "/auth/refresh", nil)
		req.AddCookie(&http.Cookie{Name: auth.RefreshTokenCookie, Value: "cookie-token"})
		w := httptest.NewRecorder()

		handler.Refresh(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		mockService.AssertExpectations(t)
	})

	t.Run("expired session clears cookies", func(t *testing.T) {
		mockService := new(MockAuthService)
		mockService.On("Refresh", mock.Anything, "stale").Return(nil, auth.ErrSessionExpired)

		handler := handlers.NewAuthHandler(mockService, false)
		req := httptest.NewRequest(http.MethodPost, "/auth/refresh", nil)
		req.AddCookie(&http.Cookie{Name: auth.RefreshTokenCookie, Value: "stale"})
		w := httptest.NewRecorder()

		handler.Refresh(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		cookies := cookieNames(w)
		require.Contains(t, cookies, auth.AccessTokenCookie)
		assert.Empty(t, cookies[auth.AccessTokenCookie].Value)
		mockService.AssertExpectations(t)
	})
}

func TestAuthHandler_SignOut(t *testing.T) {
	identity := auth.Identity{UserID: uuid.New(), SessionID: uuid.New()}

	t.Run("signed in", func(t *testing.T) {
		mockService := new(MockAuthService)
		mockService.On("SignOut", mock.Anything, identity.SessionID).Return(nil)

		handler := handlers.NewAuthHandler(mockService, false)
		req := httptest.NewRequest(http.MethodPost, "/auth/signout", nil)
		req = req.WithContext(auth.WithIdentity(req.Context(), identity))
		w := httptest.NewRecorder()

		handler.SignOut(w, req)

		assert.Equal(t, http.StatusNoContent, w.Code)
		assert.Contains(t, cookieNames(w), auth.RefreshTokenCookie)
		mockService.AssertExpectations(t)
	})

	t.Run("anonymous", func(t *testing.T) {
		mockService := new(MockAuthService)

		handler := handlers.NewAuthHandler(mockService, false)
		w := httptest.NewRecorder()

		handler.SignOut(w, httptest.NewRequest(http.MethodPost, "/auth/signout", nil))

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		mockService.AssertNotCalled(t, "SignOut", mock.Anything, mock.Anything)
	})
}

func TestAuthHandler_Session(t *testing.T) {
	identity := auth.Identity{UserID: uuid.New(), SessionID: uuid.New()}
	ctx := auth.WithIdentity(context.Background(), identity)

	mockService := new(MockAuthService)
	mockService.On("CurrentUser", mock.Anything).
		Return(&user.User{ID: identity.UserID, Email: "ann@example.com", Name: "Ann"}, nil)

	handler := handlers.NewAuthHandler(mockService, false)
	w := httptest.NewRecorder()

	handler.Session(w, httptest.NewRequest(http.MethodGet, "/auth/session", nil).WithContext(ctx))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "ann@example.com")
	assert.NotContains(t, w.Body.String(), "password")
	mockService.AssertExpectations(t)
}
