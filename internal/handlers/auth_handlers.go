package handlers

import (
	"net/http"

	"taskAssistant/internal/auth"
	"taskAssistant/internal/handlers/dto"
	"taskAssistant/internal/logger"
	"taskAssistant/internal/service"

	"go.uber.org/zap"
)

type AuthHandler struct {
	AuthService   AuthService
	SecureCookies bool
}

func NewAuthHandler(authService AuthService, secureCookies bool) *AuthHandler {
	return &AuthHandler{
		AuthService:   authService,
		SecureCookies: secureCookies,
	}
}

func (h *AuthHandler) SignUp(w http.ResponseWriter, r *http.Request) {
	var request dto.SignUpRequest
	if !decodeJSON(w, r, &request) {
		return
	}

	tokens, err := h.AuthService.SignUp(r.Context(), request.Email, request.Password, request.Name)
	if err != nil {
		handleAuthError(w, r, err, "sign_up")
		return
	}

	auth.SetCookies(w, tokens, h.SecureCookies)
	responseWithJSON(w, http.StatusCreated, toPayload("tokens", dto.FromTokens(tokens)))
}

func (h *AuthHandler) SignIn(w http.ResponseWriter, r *http.Request) {
	var request dto.SignInRequest
	if !decodeJSON(w, r, &request) {
		return
	}

	tokens, err := h.AuthService.SignIn(r.Context(), request.Email, request.Password)
	if err != nil {
		handleAuthError(w, r, err, "sign_in")
		return
	}

	auth.SetCookies(w, tokens, h.SecureCookies)
	responseWithJSON(w, http.StatusOK, toPayload("tokens", dto.FromTokens(tokens)))
}

// Refresh takes the refresh token from the body, falling back to the cookie.
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	var request dto.RefreshRequest
	if r.ContentLength != 0 && checkContentType(r, "application/json") {
		if !decodeJSON(w, r, &request) {
			return
		}
	}
	if request.RefreshToken == "" {
		if c, err := r.Cookie(auth.RefreshTokenCookie); err == nil {
			request.RefreshToken = c.Value
		}
	}

	tokens, err := h.AuthService.Refresh(r.Context(), request.RefreshToken)
	if err != nil {
		auth.ClearCookies(w, h.SecureCookies)
		handleAuthError(w, r, err, "refresh")
		return
	}

	auth.SetCookies(w, tokens, h.SecureCookies)
	responseWithJSON(w, http.StatusOK, toPayload("tokens", dto.FromTokens(tokens)))
}

func (h *AuthHandler) SignOut(w http.ResponseWriter, r *http.Request) {
	id, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		handleBusinessError(w, service.NewNotAuthenticated())
		return
	}

	if err := h.AuthService.SignOut(r.Context(), id.SessionID); err != nil {
		handleServiceError(w, r, err, "sign_out")
		return
	}

	auth.ClearCookies(w, h.SecureCookies)
	logger.Info("HTTP_OUT: Signed out", zap.String("user_id", id.UserID.String()))
	w.WriteHeader(http.StatusNoContent)
}

func (h *AuthHandler) Session(w http.ResponseWriter, r *http.Request) {
	if _, ok := auth.IdentityFromContext(r.Context()); !ok {
		handleBusinessError(w, service.NewNotAuthenticated())
		return
	}

	u, err := h.AuthService.CurrentUser(r.Context())
	if err != nil {
		handleAuthError(w, r, err, "session")
		return
	}

	responseWithJSON(w, http.StatusOK, toPayload("user", dto.FromUser(u)))
}
