package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/layer-3/sentinel/core"
	"github.com/layer-3/sentinel/ports"
	"go.uber.org/zap"
)

const (
	// DefaultAccessTTL is the lifetime of an access token
	DefaultAccessTTL = 15 * time.Minute

	minPasswordLength = 6
)

var validate = validator.New()

// LoginResult is returned by a successful login
type LoginResult struct {
	core.TokenPair
	Principal core.Principal
}

// AuthService handles authentication business logic
type AuthService struct {
	users       ports.UserRepository
	hasher      ports.PasswordHasher
	tokenizer   ports.Tokenizer
	refresh     *RefreshTokens
	revocations *Revocations
	eventPub    ports.EventPublisher
	metrics     ports.Metrics
	logger      *zap.Logger

	accessTTL time.Duration

	// Verified against when the email is unknown
	dummyHash string
	dummyOnce sync.Once
}

// Option configures an AuthService
type Option func(*AuthService)

// WithAccessTTL overrides DefaultAccessTTL
func WithAccessTTL(d time.Duration) Option {
	return func(s *AuthService) {
		if d > 0 {
			s.accessTTL = d
		}
	}
}

// WithMetrics records issued tokens and validation outcomes
func WithMetrics(m ports.Metrics) Option {
	return func(s *AuthService) { s.metrics = m }
}

// WithLogger sets the logger; the default discards output
func WithLogger(l *zap.Logger) Option {
	return func(s *AuthService) { s.logger = l }
}

// NewAuthService creates a new authentication service
func NewAuthService(
	users ports.UserRepository,
	hasher ports.PasswordHasher,
	tokenizer ports.Tokenizer,
	refresh *RefreshTokens,
	revocations *Revocations,
	eventPub ports.EventPublisher,
	opts ...Option,
) *AuthService {
	s := &AuthService{
		users:       users,
		hasher:      hasher,
		tokenizer:   tokenizer,
		refresh:     refresh,
		revocations: revocations,
		eventPub:    eventPub,
		metrics:     ports.NopMetrics{},
		logger:      zap.NewNop(),
		accessTTL:   DefaultAccessTTL,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// AccessTTL returns the lifetime of issued access tokens
func (s *AuthService) AccessTTL() time.Duration { return s.accessTTL }

// Register creates an active user with a hashed password
func (s *AuthService) Register(ctx context.Context, email, password string, role core.Role) (*core.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if err := validate.Var(email, "required,email"); err != nil {
		return nil, fmt.Errorf("%w: email should be valid", core.ErrInvalidInput)
	}
	if err := validate.Var(password, fmt.Sprintf("min=%d", minPasswordLength)); err != nil {
		return nil, fmt.Errorf("%w: password must be at least %d characters", core.ErrInvalidInput, minPasswordLength)
	}
	if !role.Valid() {
		return nil, fmt.Errorf("%w: %q", core.ErrInvalidRole, role)
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &core.User{
		ID:           uuid.New(),
		Email:        email,
		PasswordHash: hash,
		Role:         role,
		Active:       true,
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, core.ErrEmailTaken) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.logger.Info("user registered", zap.String("user_id", user.ID.String()), zap.String("role", role.String()))
	return user, nil
}

// Login checks credentials and issues an access and refresh token
func (s *AuthService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	user, err := s.users.ByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		if errors.Is(err, core.ErrUserNotFound) {
			s.verifyDummy(password)
			return nil, core.ErrAuthenticationFailure
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}

	ok, err := s.hasher.Verify(password, user.PasswordHash)
	if err != nil {
		return nil, fmt.Errorf("failed to verify password: %w", err)
	}
	if !ok || !user.Active {
		s.logger.Info("login rejected", zap.String("user_id", user.ID.String()), zap.Bool("active", user.Active))
		return nil, core.ErrAuthenticationFailure
	}

	principal := user.Principal()
	accessToken, _, err := s.tokenizer.Issue(principal, s.accessTTL)
	if err != nil {
		return nil, fmt.Errorf("failed to create access token: %w", err)
	}

	rt, err := s.refresh.Create(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	s.metrics.TokensIssued("access")
	s.metrics.TokensIssued("refresh")

	return &LoginResult{
		TokenPair: core.TokenPair{
			AccessToken:  accessToken,
			RefreshToken: rt.Token,
			ExpiresIn:    s.accessTTL,
		},
		Principal: principal,
	}, nil
}

func (s *AuthService) verifyDummy(password string) {
	s.dummyOnce.Do(func() {
		hash, err := s.hasher.Hash(uuid.NewString())
		if err != nil {
			s.logger.Warn("failed to prepare dummy password hash", zap.Error(err))
			return
		}
		s.dummyHash = hash
	})
	if s.dummyHash != "" {
		_, _ = s.hasher.Verify(password, s.dummyHash)
	}
}

// Validate returns the principal behind a trusted access token. Every
// verification failure is reported as core.ErrUnauthorized wrapping the
// specific kind; store failures are returned as they are.
func (s *AuthService) Validate(ctx context.Context, accessToken string) (*core.Principal, error) {
	claims, err := s.authenticate(ctx, accessToken)
	if err != nil {
		return nil, err
	}
	return &claims.Principal, nil
}

func (s *AuthService) authenticate(ctx context.Context, accessToken string) (*core.Claims, error) {
	claims, err := s.tokenizer.Parse(accessToken)
	if err != nil {
		if !core.IsTokenError(err) {
			return nil, fmt.Errorf("failed to parse access token: %w", err)
		}
		s.logger.Info("access token rejected", zap.String("reason", core.TokenErrorKind(err)), zap.Error(err))
		return nil, fmt.Errorf("%w: %w", core.ErrUnauthorized, err)
	}

	blacklisted, err := s.revocations.IsBlacklisted(ctx, accessToken)
	if err != nil {
		return nil, fmt.Errorf("failed to check token blacklist: %w", err)
	}
	if blacklisted {
		s.logger.Info("access token rejected",
			zap.String("reason", core.TokenErrorKind(core.ErrBlacklistedToken)),
			zap.String("user_id", claims.Principal.UserID.String()))
		return nil, fmt.Errorf("%w: %w", core.ErrUnauthorized, core.ErrBlacklistedToken)
	}

	return claims, nil
}

// Refresh consumes a refresh token and returns a new access and refresh
// token. The consumed token cannot be used again.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*core.TokenPair, error) {
	rt, err := s.refresh.FindByToken(ctx, refreshToken)
	if err != nil {
		if errors.Is(err, core.ErrRefreshTokenNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to look up refresh token: %w", err)
	}

	rt, err = s.refresh.VerifyExpiration(ctx, rt)
	if err != nil {
		return nil, err
	}

	user, err := s.users.ByID(ctx, rt.UserID)
	switch {
	case errors.Is(err, core.ErrUserNotFound), err == nil && !user.Active:
		if err := s.refresh.DeleteByUserID(ctx, rt.UserID); err != nil {
			s.logger.Warn("failed to drop refresh token of missing user", zap.Error(err))
		}
		return nil, fmt.Errorf("%w: user no longer exists", core.ErrRefreshTokenNotFound)
	case err != nil:
		return nil, fmt.Errorf("failed to load user: %w", err)
	}

	accessToken, _, err := s.tokenizer.Issue(user.Principal(), s.accessTTL)
	if err != nil {
		return nil, fmt.Errorf("failed to create access token: %w", err)
	}

	// Replaces the record verified above
	next, err := s.refresh.Create(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	s.metrics.TokensIssued("access")
	s.metrics.TokensIssued("refresh")

	return &core.TokenPair{
		AccessToken:  accessToken,
		RefreshToken: next.Token,
		ExpiresIn:    s.accessTTL,
	}, nil
}

// Logout revokes the access token and drops the user's refresh token.
// A token that is already invalid or missing yields core.ErrAlreadyLoggedOut.
func (s *AuthService) Logout(ctx context.Context, accessToken string) error {
	claims, err := s.authenticate(ctx, accessToken)
	if err != nil {
		if errors.Is(err, core.ErrUnauthorized) {
			return fmt.Errorf("%w: %w", core.ErrAlreadyLoggedOut, err)
		}
		return err
	}

	userID := claims.Principal.UserID
	if err := s.revocations.Blacklist(ctx, accessToken, userID); err != nil {
		return err
	}

	if err := s.refresh.DeleteByUserID(ctx, userID); err != nil {
		return fmt.Errorf("failed to delete refresh token: %w", err)
	}

	// The token is already revoked in the store, which is the critical part
	if err := s.eventPub.PublishLogout(ctx, userID.String(), claims.ID); err != nil {
		s.logger.Warn("failed to publish logout event", zap.String("user_id", userID.String()), zap.Error(err))
	}

	s.logger.Info("user logged out", zap.String("user_id", userID.String()))
	return nil
}

// User returns the account behind a principal
func (s *AuthService) User(ctx context.Context, userID uuid.UUID) (*core.User, error) {
	return s.users.ByID(ctx, userID)
}
