package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strconv"

	"taskAssistant/internal/logger"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const maxBodyBytes = 1 << 20

func checkContentType(r *http.Request, target string) bool {
	contentType := r.Header.Get("Content-Type")
	if contentType == "" {
		return false
	}

	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}

	return mediaType == target
}

// decodeJSON writes the error response itself and reports whether dst was filled.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	if !checkContentType(r, "application/json") {
		logger.Warn("HTTP: Wrong content type",
			zap.String("expected", "application/json"),
			zap.String("received", r.Header.Get("Content-Type")),
			zap.String("client_ip", r.RemoteAddr))
		responseWithError(w, http.StatusUnsupportedMediaType, codeUnsupported, "Content-Type must be application/json")
		return false
	}

	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		logger.Warn("HTTP: Failed to read JSON",
			zap.Error(err),
			zap.String("client_ip", r.RemoteAddr))
		msg := "invalid request body"
		if !errors.Is(err, io.EOF) {
			msg += ": " + err.Error()
		}
		responseWithError(w, http.StatusBadRequest, codeBadRequest, msg)
		return false
	}
	return true
}

func parseID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	idParam := chi.URLParam(r, "id")
	id, err := uuid.Parse(idParam)
	if err != nil || id == uuid.Nil {
		logger.Warn("HTTP: Invalid id",
			zap.String("id", idParam),
			zap.String("client_ip", r.RemoteAddr))
		responseWithError(w, http.StatusBadRequest, codeBadRequest, "invalid id")
		return uuid.Nil, false
	}
	return id, true
}

// queryInt returns 0 when the parameter is absent.
func queryInt(w http.ResponseWriter, r *http.Request, name string) (int, bool) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		logger.Warn("HTTP: Invalid query parameter",
			zap.String("query", name),
			zap.String("value", raw),
			zap.String("client_ip", r.RemoteAddr))
		responseWithError(w, http.StatusBadRequest, codeBadRequest, fmt.Sprintf("invalid value for %s", name))
		return 0, false
	}
	return n, true
}

func pagination(w http.ResponseWriter, r *http.Request) (page, limit int, ok bool) {
	if page, ok = queryInt(w, r, "page"); !ok {
		return 0, 0, false
	}
	if limit, ok = queryInt(w, r, "limit"); !ok {
		return 0, 0, false
	}
	return page, limit, true
}
