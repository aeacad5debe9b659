package middleware

import (
	"context"
	"net/http"

	"taskAssistant/internal/auth"
	"taskAssistant/internal/logger"

	"go.uber.org/zap"
)

type Authenticator interface {
	Authenticate(ctx context.Context, accessToken string) (auth.Identity, error)
}

// Authenticate attaches the caller's identity when a valid token is present.
// Requests without one continue anonymously; the service layer rejects them.
func Authenticate(authenticator Authenticator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := auth.TokenFromRequest(r)
			if token == "" {
				next.ServeHTTP(w, r)
				return
			}

			identity, err := authenticator.Authenticate(r.Context(), token)
			if err != nil {
				logger.Debug("HTTP: Token rejected",
					zap.String("request_id", GetRequestID(r.Context())),
					zap.Error(err))
				next.ServeHTTP(w, r)
				return
			}

			setRequestUser(r.Context(), identity.UserID)
			next.ServeHTTP(w, r.WithContext(auth.WithIdentity(r.Context(), identity)))
		})
	}
}
