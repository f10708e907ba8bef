package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/noah-isme/dorm-admin-api/internal/models"
	appErrors "github.com/noah-isme/dorm-admin-api/pkg/errors"
)

type accountRepository interface {
	FindByUsername(ctx context.Context, username string) (*models.User, error)
	FindByID(ctx context.Context, id int64) (*models.User, error)
	List(ctx context.Context) ([]models.AccountSummary, error)
	Create(ctx context.Context, user *models.User) error
	UpdateCredentials(ctx context.Context, user *models.User) error
}

type sessionRepository interface {
	Create(ctx context.Context, session *models.Session) error
	FindByID(ctx context.Context, id string) (*models.Session, error)
	Revoke(ctx context.Context, id string, revokedAt time.Time) error
	DeleteExpired(ctx context.Context, cutoff time.Time) (int64, error)
}

var (
	placeholderOnce sync.Once
	placeholderHash []byte
)

// unknownAccountHash is compared against when a username does not exist so
// that failed logins take the same time either way.
func unknownAccountHash() []byte {
	placeholderOnce.Do(func() {
		placeholderHash, _ = bcrypt.GenerateFromPassword([]byte("unknown-account"), bcrypt.DefaultCost)
	})
	return placeholderHash
}

// SessionConfig defines how session tokens are issued.
type SessionConfig struct {
	Secret string
	TTL    time.Duration
	Issuer string
}

// SessionService implements login, logout and account introspection.
type SessionService struct {
	accounts  accountRepository
	sessions  sessionRepository
	validator *validator.Validate
	metrics   *MetricsService
	logger    *zap.Logger
	config    SessionConfig
	now       func() time.Time
	compare   func(hash, password []byte) error
}

// NewSessionService constructs a SessionService instance.
func NewSessionService(accounts accountRepository, sessions sessionRepository, validate *validator.Validate, metrics *MetricsService, logger *zap.Logger, config SessionConfig) *SessionService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if config.TTL <= 0 {
		config.TTL = 14 * 24 * time.Hour
	}
	return &SessionService{
		accounts:  accounts,
		sessions:  sessions,
		validator: validate,
		metrics:   metrics,
		logger:    logger,
		config:    config,
		now:       func() time.Time { return time.Now().UTC() },
		compare:   bcrypt.CompareHashAndPassword,
	}
}

// Login verifies credentials and opens a session.
func (s *SessionService) Login(ctx context.Context, req models.LoginRequest) (*models.LoginResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid login payload")
	}

	principal, err := s.Authenticate(ctx, req.Username, req.Password)
	if err != nil {
		s.metrics.RecordLogin("failure")
		return nil, err
	}

	now := s.now()
	session := &models.Session{
		ID:        uuid.NewString(),
		UserID:    principal.ID,
		ExpiresAt: now.Add(s.config.TTL),
		IPAddress: req.IP,
		UserAgent: req.UserAgent,
		CreatedAt: now,
	}
	if err := s.sessions.Create(ctx, session); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to open session")
	}

	token, err := s.signToken(principal, session, now)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to sign session token")
	}

	s.metrics.RecordLogin("success")
	s.logger.Info("user logged in", zap.Int64("user_id", principal.ID), zap.String("ip", req.IP))
	return &models.LoginResponse{Success: true, Token: token, ExpiresAt: session.ExpiresAt}, nil
}

// Authenticate checks a username and password pair.
func (s *SessionService) Authenticate(ctx context.Context, username, password string) (*models.Principal, error) {
	user, err := s.accounts.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			_ = s.compare(unknownAccountHash(), []byte(password))
			return nil, appErrors.ErrInvalidCredentials
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch user")
	}
	if err := s.compare([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, appErrors.ErrInvalidCredentials
	}
	return principalOf(user, ""), nil
}

// ValidateSession resolves a session token to its principal. The account is
// reloaded so privilege changes apply to open sessions.
func (s *SessionService) ValidateSession(ctx context.Context, token string) (*models.Principal, error) {
	claims, err := s.parseToken(token)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrUnauthorized.Code, appErrors.ErrUnauthorized.Status, "invalid session token")
	}

	session, err := s.sessions.FindByID(ctx, claims.ID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrUnauthorized, "session not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load session")
	}
	if !session.Active(s.now()) {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "session expired")
	}

	user, err := s.accounts.FindByID(ctx, session.UserID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrUnauthorized, "account no longer exists")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load user")
	}
	return principalOf(user, session.ID), nil
}

// Logout ends the session carried by token. Unusable tokens are ignored.
func (s *SessionService) Logout(ctx context.Context, token string) {
	if strings.TrimSpace(token) == "" {
		return
	}
	claims, err := s.parseToken(token)
	if err != nil {
		s.logger.Debug("logout with unusable token", zap.Error(err))
		return
	}
	if err := s.sessions.Revoke(ctx, claims.ID, s.now()); err != nil {
		s.logger.Warn("failed to revoke session", zap.String("session_id", claims.ID), zap.Error(err))
		return
	}
	s.logger.Info("user logged out", zap.Int64("user_id", claims.UserID))
}

// WhoAmI describes the caller. A nil principal is an anonymous caller.
func (s *SessionService) WhoAmI(principal *models.Principal) models.SessionInfo {
	if principal == nil {
		return models.SessionInfo{IsAuthenticated: false}
	}
	id := principal.ID
	superuser := principal.IsSuperuser
	return models.SessionInfo{
		IsAuthenticated: true,
		Username:        principal.Username,
		UserID:          &id,
		IsSuperuser:     &superuser,
	}
}

// ListAccounts returns every account. Only privileged callers may list.
func (s *SessionService) ListAccounts(ctx context.Context, principal *models.Principal) ([]models.AccountSummary, error) {
	if principal == nil {
		return nil, appErrors.ErrUnauthorized
	}
	if !principal.IsSuperuser {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "only privileged accounts may list accounts")
	}
	accounts, err := s.accounts.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list accounts")
	}
	return accounts, nil
}

// EnsureAccount creates the account or, when it exists, resets its password
// and privilege flag. It reports whether a new account was created.
func (s *SessionService) EnsureAccount(ctx context.Context, username, password string, superuser bool) (*models.User, bool, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, false, appErrors.Clone(appErrors.ErrValidation, "username and password are required")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, false, fmt.Errorf("hash password: %w", err)
	}

	existing, err := s.accounts.FindByUsername(ctx, username)
	switch {
	case err == nil:
		existing.PasswordHash = string(hash)
		existing.IsSuperuser = superuser
		if err := s.accounts.UpdateCredentials(ctx, existing); err != nil {
			return nil, false, err
		}
		return existing, false, nil
	case errors.Is(err, sql.ErrNoRows):
		user := &models.User{Username: username, PasswordHash: string(hash), IsSuperuser: superuser}
		if err := s.accounts.Create(ctx, user); err != nil {
			return nil, false, err
		}
		return user, true, nil
	default:
		return nil, false, err
	}
}

// PurgeExpired deletes sessions that can no longer authenticate.
func (s *SessionService) PurgeExpired(ctx context.Context) (int64, error) {
	return s.sessions.DeleteExpired(ctx, s.now())
}

// TTL is the lifetime of new sessions.
func (s *SessionService) TTL() time.Duration {
	return s.config.TTL
}

func (s *SessionService) signToken(principal *models.Principal, session *models.Session, issuedAt time.Time) (string, error) {
	claims := &models.SessionClaims{
		UserID:      principal.ID,
		Username:    principal.Username,
		IsSuperuser: principal.IsSuperuser,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        session.ID,
			Issuer:    s.config.Issuer,
			Subject:   fmt.Sprintf("%d", principal.ID),
			ExpiresAt: jwt.NewNumericDate(session.ExpiresAt),
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			NotBefore: jwt.NewNumericDate(issuedAt),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.config.Secret))
}

func (s *SessionService) parseToken(token string) (*models.SessionClaims, error) {
	parsed, err := jwt.ParseWithClaims(token, &models.SessionClaims{}, func(t *jwt.Token) (interface{}, error) {
		if t.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(s.config.Secret), nil
	}, jwt.WithTimeFunc(s.now))
	if err != nil {
		return nil, err
	}
	claims, ok := parsed.Claims.(*models.SessionClaims)
	if !ok || !parsed.Valid || claims.ID == "" {
		return nil, errors.New("invalid session claims")
	}
	return claims, nil
}

func principalOf(user *models.User, sessionID string) *models.Principal {
	return &models.Principal{ID: user.ID, Username: user.Username, IsSuperuser: user.IsSuperuser, SessionID: sessionID}
}
