// Package services contains the server's business logic: the admin
// authentication gate and the image upload, listing, deletion and export
// operations.
package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/photogallery/internal/apperrors"
	"github.com/dmitrijs2005/photogallery/internal/common"
	"github.com/dmitrijs2005/photogallery/internal/cryptox"
	"github.com/dmitrijs2005/photogallery/internal/dbx"
	"github.com/dmitrijs2005/photogallery/internal/logging"
	"github.com/dmitrijs2005/photogallery/internal/server/models"
	"github.com/dmitrijs2005/photogallery/internal/server/repositories/repomanager"
)

// AuthService is the single-admin authentication gate. The credential pair
// comes from configuration; issued tokens live in the sessions table until
// they expire or are revoked.
type AuthService struct {
	db          dbx.DBTX
	repomanager repomanager.RepositoryManager
	email       string
	password    *cryptox.Verifier
	ttl         time.Duration
	now         func() time.Time
	logger      logging.Logger
}

// NewAuthService hashes password at construction; the plaintext is not kept.
func NewAuthService(db dbx.DBTX, m repomanager.RepositoryManager, email, password string, ttl time.Duration, logger logging.Logger) (*AuthService, error) {
	secret := []byte(password)
	defer common.WipeByteArray(secret)

	v, err := cryptox.NewVerifier(secret)
	if err != nil {
		return nil, fmt.Errorf("admin verifier: %w", err)
	}
	return &AuthService{
		db:          db,
		repomanager: m,
		email:       email,
		password:    v,
		ttl:         ttl,
		now:         time.Now,
		logger:      logger,
	}, nil
}

// Authenticate checks the credentials and issues a new session token.
// Wrong credentials yield an unauthorized AppError.
func (s *AuthService) Authenticate(ctx context.Context, email, password string) (*models.AdminSession, error) {
	secret := []byte(password)
	defer common.WipeByteArray(secret)

	// evaluate both so timing does not reveal which one failed
	emailOK := cryptox.EqualConstantTime(email, s.email)
	passwordOK := s.password.Verify(secret)
	if !emailOK || !passwordOK {
		s.logger.Warn(ctx, "admin login rejected", "email", email)
		return nil, apperrors.NewUnauthorizedError("invalid credentials", common.ErrorUnauthorized)
	}

	token, err := common.MakeRandHexString(common.SessionTokenBytes)
	if err != nil {
		return nil, apperrors.NewInternalError("token generation failed", err)
	}

	now := s.now()
	session := models.AdminSession{ID: token, CreatedAt: now, ExpiresAt: now.Add(s.ttl)}
	if err := s.repomanager.Sessions(s.db).Create(ctx, session); err != nil {
		return nil, apperrors.NewPersistenceError("failed to store session", err)
	}

	s.logger.Info(ctx, "admin session issued", "expires_at", session.ExpiresAt)
	return &session, nil
}

// IsValid reports whether token names a live session. An expired session
// is deleted on the spot.
func (s *AuthService) IsValid(ctx context.Context, token string) bool {
	if token == "" {
		return false
	}
	repo := s.repomanager.Sessions(s.db)

	session, err := repo.Find(ctx, token)
	if err != nil {
		if !errors.Is(err, common.ErrorNotFound) {
			s.logger.Error(ctx, "session lookup failed", "error", err)
		}
		return false
	}

	if session.Expired(s.now()) {
		if err := repo.Delete(ctx, token); err != nil {
			s.logger.Warn(ctx, "expired session cleanup failed", "error", err)
		}
		return false
	}
	return true
}

// Revoke deletes the session. Unknown tokens are ignored.
func (s *AuthService) Revoke(ctx context.Context, token string) error {
	if err := s.repomanager.Sessions(s.db).Delete(ctx, token); err != nil {
		return apperrors.NewPersistenceError("failed to revoke session", err)
	}
	return nil
}

// PurgeExpired removes every expired session.
func (s *AuthService) PurgeExpired(ctx context.Context) (int64, error) {
	n, err := s.repomanager.Sessions(s.db).DeleteExpired(ctx, s.now())
	if err != nil {
		return 0, apperrors.NewPersistenceError("failed to purge sessions", err)
	}
	return n, nil
}

// RunJanitor calls PurgeExpired every interval until ctx is done.
func (s *AuthService) RunJanitor(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := s.PurgeExpired(ctx)
			if err != nil {
				s.logger.Warn(ctx, "session janitor failed", "error", err)
				continue
			}
			if n > 0 {
				s.logger.Info(ctx, "expired sessions purged", "count", n)
			}
		}
	}
}
