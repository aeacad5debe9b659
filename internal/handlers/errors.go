package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"taskAssistant/internal/auth"
	"taskAssistant/internal/logger"
	"taskAssistant/internal/service"

	"go.uber.org/zap"
)

const (
	codeBadRequest  = "BAD_REQUEST"
	codeEmailTaken  = "EMAIL_TAKEN"
	codeInternal    = "INTERNAL_ERROR"
	codeUnsupported = "UNSUPPORTED_MEDIA_TYPE"
	codeUnavailable = "UNAVAILABLE"
)

func handleBusinessError(w http.ResponseWriter, err error) bool {
	businessErr, ok := service.AsBusinessError(err)
	if !ok {
		return false
	}
	statusCode := mapBusinessErrorToHTTP(businessErr.Code)

	logger.Warn("HTTP: Business error",
		zap.String("error_code", businessErr.Code),
		zap.Int("http_status", statusCode))

	if statusCode == http.StatusTooManyRequests {
		if seconds, ok := businessErr.Details["retry_after"].(int); ok {
			w.Header().Set("Retry-After", strconv.Itoa(seconds))
		}
	}

	responseWithJSON(w, statusCode,
		toPayload("error", businessErr.Code),
		toPayload("message", businessErr.Message),
		toPayload("details", businessErr.Details),
	)
	return true
}

func mapBusinessErrorToHTTP(code string) int {
	switch code {
	case service.CodeNotAuthenticated:
		return http.StatusUnauthorized
	case service.CodeRateLimited:
		return http.StatusTooManyRequests
	case service.CodeValidation:
		return http.StatusBadRequest
	case service.CodeNotFound:
		return http.StatusNotFound
	case service.CodeNotAuthorized:
		return http.StatusForbidden
	default:
		return http.StatusBadRequest
	}
}

// handleServiceError writes the response for any error a service returned.
func handleServiceError(w http.ResponseWriter, r *http.Request, err error, operation string) {
	if handleBusinessError(w, err) {
		return
	}
	logger.Error("HTTP: Service error", err,
		zap.String("operation", operation),
		zap.String("client_ip", r.RemoteAddr))
	responseWithError(w, http.StatusInternalServerError, codeInternal, "internal server error")
}

func handleAuthError(w http.ResponseWriter, r *http.Request, err error, operation string) {
	switch {
	case errors.Is(err, auth.ErrInvalidEmail),
		errors.Is(err, auth.ErrWeakPassword),
		errors.Is(err, auth.ErrNameTooLong):
		responseWithError(w, http.StatusBadRequest, service.CodeValidation, err.Error())
	case errors.Is(err, auth.ErrEmailTaken):
		responseWithError(w, http.StatusConflict, codeEmailTaken, err.Error())
	case errors.Is(err, auth.ErrInvalidCredentials),
		errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrSessionExpired):
		responseWithError(w, http.StatusUnauthorized, service.CodeNotAuthenticated, err.Error())
	default:
		handleServiceError(w, r, err, operation)
	}
}
