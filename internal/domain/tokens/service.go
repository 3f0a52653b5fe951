package tokens

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gatherly/server/internal/auth"
	"github.com/rs/zerolog"
)

var (
	// ErrInvalidToken covers malformed, expired, or wrongly-typed refresh
	// tokens: a client-input error.
	ErrInvalidToken = errors.New("token is invalid or expired")

	// ErrBlacklisted covers refresh tokens that were revoked via logout:
	// a revoked-credential condition, distinct from bad input.
	ErrBlacklisted = errors.New("token is blacklisted")
)

type BlacklistParams struct {
	JTI           string
	UserID        string
	ExpiresAt     time.Time
	BlacklistedAt time.Time
}

// Repository is the revocation set. Insert must fail with ErrBlacklisted
// when the jti is already present so a double logout is reported as
// already-invalid.
type Repository interface {
	Insert(ctx context.Context, params BlacklistParams) error
	IsBlacklisted(ctx context.Context, jti string) (bool, error)
}

// Service issues access/refresh pairs and manages refresh revocation.
type Service struct {
	manager *auth.TokenManager
	repo    Repository
	logger  zerolog.Logger
}

func NewService(manager *auth.TokenManager, repo Repository, logger zerolog.Logger) *Service {
	return &Service{
		manager: manager,
		repo:    repo,
		logger:  logger.With().Str("component", "tokens").Logger(),
	}
}

// IssuePair mints a fresh access/refresh pair for the user.
func (s *Service) IssuePair(userID string) (auth.Pair, error) {
	return s.manager.GeneratePair(userID)
}

// Refresh validates a refresh token and mints a new access token. A
// blacklisted refresh token is permanently unusable.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (string, error) {
	claims, err := s.manager.ValidateRefresh(refreshToken)
	if err != nil {
		return "", ErrInvalidToken
	}

	blacklisted, err := s.repo.IsBlacklisted(ctx, claims.ID)
	if err != nil {
		return "", fmt.Errorf("check blacklist: %w", err)
	}
	if blacklisted {
		return "", ErrBlacklisted
	}

	return s.manager.GenerateAccess(claims.Subject)
}

// Blacklist revokes a refresh token by inserting its jti into the
// revocation set. Revoking an already-revoked token fails with
// ErrBlacklisted.
func (s *Service) Blacklist(ctx context.Context, refreshToken string) error {
	claims, err := s.manager.ValidateRefresh(refreshToken)
	if err != nil {
		return ErrInvalidToken
	}

	params := BlacklistParams{
		JTI:           claims.ID,
		UserID:        claims.Subject,
		BlacklistedAt: time.Now(),
	}
	if claims.ExpiresAt != nil {
		params.ExpiresAt = claims.ExpiresAt.Time
	}

	if err := s.repo.Insert(ctx, params); err != nil {
		return err
	}

	s.logger.Info().Str("user_id", claims.Subject).Msg("refresh token blacklisted")
	return nil
}
