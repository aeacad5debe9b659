// Package auth signs users up and in, issues JWT access tokens backed by
// refresh sessions, and resolves tokens back into an Identity.
package auth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"
	"unicode/utf8"

	"taskAssistant/internal/logger"
	"taskAssistant/internal/models/user"
	repo "taskAssistant/internal/repository"

	"github.com/alexedwards/argon2id"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	ErrInvalidEmail       = errors.New("invalid email address")
	ErrWeakPassword       = errors.New("password must be at least 8 characters")
	ErrNameTooLong        = errors.New("name must be at most 100 characters")
	ErrEmailTaken         = errors.New("email is already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInvalidToken       = errors.New("invalid token")
	ErrSessionExpired     = errors.New("session expired")
)

const (
	minPasswordLength = 8
	maxNameLength     = 100
)

type Store interface {
	CreateUser(context.Context, *user.User) error
	GetUserByID(context.Context, uuid.UUID) (*user.User, error)
	GetUserByEmail(context.Context, string) (*user.User, error)
	CreateSession(context.Context, *user.Session) error
	GetSession(context.Context, uuid.UUID) (*user.Session, error)
	GetSessionByRefreshToken(context.Context, string) (*user.Session, error)
	UpdateSession(context.Context, *user.Session) error
	DeleteSession(context.Context, uuid.UUID) error
	DeleteExpiredSessions(context.Context, time.Time) (int64, error)
}

type Config struct {
	Secret          []byte
	Issuer          string
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration
	// HashParams defaults to argon2id.DefaultParams.
	HashParams *argon2id.Params
}

type Tokens struct {
	UserID                uuid.UUID
	SessionID             uuid.UUID
	AccessToken           string
	AccessTokenExpiresAt  time.Time
	RefreshToken          string
	RefreshTokenExpiresAt time.Time
}

type claims struct {
	SessionID string `json:"sid"`
	jwt.RegisteredClaims
}

type Service struct {
	store Store
	cfg   Config
	now   func() time.Time
}

func NewService(store Store, cfg Config) *Service {
	if cfg.HashParams == nil {
		cfg.HashParams = argon2id.DefaultParams
	}
	if cfg.AccessTokenTTL <= 0 {
		cfg.AccessTokenTTL = 15 * time.Minute
	}
	if cfg.RefreshTokenTTL <= 0 {
		cfg.RefreshTokenTTL = 30 * 24 * time.Hour
	}
	return &Service{store: store, cfg: cfg, now: time.Now}
}

// SetClock replaces the time source; tests only.
func (s *Service) SetClock(now func() time.Time) {
	s.now = now
}

func (s *Service) SignUp(ctx context.Context, email, password, name string) (*Tokens, error) {
	email, err := normalizeEmail(email)
	if err != nil {
		return nil, err
	}
	if utf8.RuneCountInString(password) < minPasswordLength {
		return nil, ErrWeakPassword
	}
	name = strings.TrimSpace(name)
	if utf8.RuneCountInString(name) > maxNameLength {
		return nil, ErrNameTooLong
	}

	hash, err := argon2id.CreateHash(password, s.cfg.HashParams)
	if err != nil {
		return nil, fmt.Errorf("hashing password: %w", err)
	}

	u := &user.User{
		ID:           uuid.New(),
		Email:        email,
		Name:         name,
		PasswordHash: hash,
		CreatedAt:    s.now(),
	}
	if err := s.store.CreateUser(ctx, u); err != nil {
		if errors.Is(err, repo.ErrAlreadyExists) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("creating user: %w", err)
	}

	logger.Info("Auth: User signed up", zap.String("user_id", u.ID.String()))
	return s.startSession(ctx, u.ID)
}

func (s *Service) SignIn(ctx context.Context, email, password string) (*Tokens, error) {
	email, err := normalizeEmail(email)
	if err != nil {
		return nil, ErrInvalidCredentials
	}

	u, err := s.store.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("loading user: %w", err)
	}

	match, err := argon2id.ComparePasswordAndHash(password, u.PasswordHash)
	if err != nil {
		return nil, fmt.Errorf("comparing password: %w", err)
	}
	if !match {
		logger.Warn("Auth: Password mismatch", zap.String("user_id", u.ID.String()))
		return nil, ErrInvalidCredentials
	}

	logger.Info("Auth: User signed in", zap.String("user_id", u.ID.String()))
	return s.startSession(ctx, u.ID)
}

// Refresh rotates the refresh token of a live session and issues a new access token.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (*Tokens, error) {
	if refreshToken == "" {
		return nil, ErrInvalidToken
	}
	session, err := s.store.GetSessionByRefreshToken(ctx, refreshToken)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, fmt.Errorf("loading session: %w", err)
	}

	now := s.now()
	if session.Expired(now) {
		if err := s.store.DeleteSession(ctx, session.ID); err != nil && !errors.Is(err, repo.ErrNotFound) {
			logger.Warn("Auth: Failed to drop expired session", zap.Error(err))
		}
		return nil, ErrSessionExpired
	}

	token, err := generateRefreshToken()
	if err != nil {
		return nil, err
	}
	session.RefreshToken = token
	session.ExpiresAt = now.Add(s.cfg.RefreshTokenTTL)
	session.UpdatedAt = now
	if err := s.store.UpdateSession(ctx, session); err != nil {
		return nil, fmt.Errorf("rotating session: %w", err)
	}

	return s.issue(session)
}

func (s *Service) SignOut(ctx context.Context, sessionID uuid.UUID) error {
	err := s.store.DeleteSession(ctx, sessionID)
	if err != nil && !errors.Is(err, repo.ErrNotFound) {
		return fmt.Errorf("deleting session: %w", err)
	}
	logger.Info("Auth: Session closed", zap.String("session_id", sessionID.String()))
	return nil
}

// Authenticate verifies an access token and checks that its session is still live.
func (s *Service) Authenticate(ctx context.Context, accessToken string) (Identity, error) {
	c, err := s.parse(accessToken)
	if err != nil {
		return Identity{}, err
	}

	userID, err := uuid.Parse(c.Subject)
	if err != nil {
		return Identity{}, ErrInvalidToken
	}
	sessionID, err := uuid.Parse(c.SessionID)
	if err != nil {
		return Identity{}, ErrInvalidToken
	}

	session, err := s.store.GetSession(ctx, sessionID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return Identity{}, ErrInvalidToken
		}
		return Identity{}, fmt.Errorf("loading session: %w", err)
	}
	if session.UserID != userID {
		return Identity{}, ErrInvalidToken
	}
	if session.Expired(s.now()) {
		return Identity{}, ErrSessionExpired
	}

	return Identity{UserID: userID, SessionID: sessionID}, nil
}

func (s *Service) CurrentUser(ctx context.Context) (*user.User, error) {
	id, ok := IdentityFromContext(ctx)
	if !ok {
		return nil, ErrInvalidToken
	}
	u, err := s.store.GetUserByID(ctx, id.UserID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, fmt.Errorf("loading user: %w", err)
	}
	return u, nil
}

// PurgeExpiredSessions is called by the background sweeper.
func (s *Service) PurgeExpiredSessions(ctx context.Context) (int64, error) {
	return s.store.DeleteExpiredSessions(ctx, s.now())
}

func (s *Service) startSession(ctx context.Context, userID uuid.UUID) (*Tokens, error) {
	token, err := generateRefreshToken()
	if err != nil {
		return nil, err
	}

	now := s.now()
	session := &user.Session{
		ID:           uuid.New(),
		UserID:       userID,
		RefreshToken: token,
		ExpiresAt:    now.Add(s.cfg.RefreshTokenTTL),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.store.CreateSession(ctx, session); err != nil {
		return nil, fmt.Errorf("creating session: %w", err)
	}
	return s.issue(session)
}

func (s *Service) issue(session *user.Session) (*Tokens, error) {
	now := s.now()
	expiresAt := now.Add(s.cfg.AccessTokenTTL)
	if expiresAt.After(session.ExpiresAt) {
		expiresAt = session.ExpiresAt
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		SessionID: session.ID.String(),
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.cfg.Issuer,
			Subject:   session.UserID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	})
	signed, err := token.SignedString(s.cfg.Secret)
	if err != nil {
		return nil, fmt.Errorf("signing access token: %w", err)
	}

	return &Tokens{
		UserID:                session.UserID,
		SessionID:             session.ID,
		AccessToken:           signed,
		AccessTokenExpiresAt:  expiresAt,
		RefreshToken:          session.RefreshToken,
		RefreshTokenExpiresAt: session.ExpiresAt,
	}, nil
}

func (s *Service) parse(accessToken string) (*claims, error) {
	if accessToken == "" {
		return nil, ErrInvalidToken
	}
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now),
		jwt.WithExpirationRequired(),
	}
	if s.cfg.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(s.cfg.Issuer))
	}

	c := &claims{}
	_, err := jwt.ParseWithClaims(accessToken, c, func(*jwt.Token) (any, error) {
		return s.cfg.Secret, nil
	}, opts...)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrSessionExpired
		}
		return nil, ErrInvalidToken
	}
	return c, nil
}

func normalizeEmail(email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return "", ErrInvalidEmail
	}
	return email, nil
}

func generateRefreshToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generating refresh token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
