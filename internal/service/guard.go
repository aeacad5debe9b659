package service

import (
	"context"
	"errors"
	"fmt"

	"taskAssistant/internal/auth"
	"taskAssistant/internal/constants"
	"taskAssistant/internal/logger"
	"taskAssistant/internal/ratelimit"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

func currentUser(ctx context.Context) (uuid.UUID, error) {
	id, ok := auth.IdentityFromContext(ctx)
	if !ok || id.UserID == uuid.Nil {
		return uuid.Nil, NewNotAuthenticated()
	}
	return id.UserID, nil
}

func checkLimit(limiter RateLimiter, rule string, userID uuid.UUID) error {
	err := limiter.Limit(rule, userID.String())
	if err == nil {
		return nil
	}

	var exceeded *ratelimit.ExceededError
	if errors.As(err, &exceeded) {
		logger.Warn("Service: Rate limit exceeded",
			zap.String("rule", rule),
			zap.String("user_id", userID.String()),
			zap.Duration("retry_after", exceeded.RetryAfter))
		busErr := NewRateLimited(rule, exceeded.RetryAfter)
		busErr.Err = err
		return busErr
	}
	return fmt.Errorf("rate limit %s: %w", rule, err)
}

// NormalizePage clamps paging input to 1..MaxPage and 1..MaxPageSize.
func NormalizePage(page, limit int) (int, int) {
	if page < 1 {
		page = constants.DefaultPage
	}
	if page > constants.MaxPage {
		page = constants.MaxPage
	}
	if limit <= 0 {
		limit = constants.DefaultPageSize
	}
	if limit > constants.MaxPageSize {
		limit = constants.MaxPageSize
	}
	return page, limit
}

func pageArgs(page, limit int) (int, int) {
	return NormalizePage(page, limit)
}
