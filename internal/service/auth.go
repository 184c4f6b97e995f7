package service

import (
	"context"
	"errors"
	"fmt"

	"worksphere-portal/internal/apperr"
	"worksphere-portal/internal/client"
	"worksphere-portal/internal/dto"
	"worksphere-portal/internal/model"

	"github.com/rs/zerolog"
)

// AuthSession is the writable side of the session-context object. Only
// the auth flows need it; everything else reads.
type AuthSession interface {
	client.CredentialSession
	Save(ctx context.Context, creds model.Credentials) error
}

// AuthService plumbs the identity collaborator. It owns no auth
// semantics: the backend decides, the shell stores what comes back.
type AuthService interface {
	Signup(ctx context.Context, sess AuthSession, req *dto.SignupRequest) error
	Login(ctx context.Context, sess AuthSession, email, password string) error
	Refresh(ctx context.Context, sess AuthSession) error
	Logout(ctx context.Context, sess AuthSession) error
	ForgotPassword(ctx context.Context, sess AuthSession, email string) error
	ResetPassword(ctx context.Context, sess AuthSession, token, newPassword string) error
}

type authServiceImpl struct {
	portalClient client.PortalClient
	log          zerolog.Logger
}

func NewAuthService(portalClient client.PortalClient, log zerolog.Logger) AuthService {
	return &authServiceImpl{
		portalClient: portalClient,
		log:          log,
	}
}

func (s *authServiceImpl) Signup(ctx context.Context, sess AuthSession, req *dto.SignupRequest) error {
	if err := s.portalClient.Signup(ctx, sess, req); err != nil {
		return fmt.Errorf("signup: %w", err)
	}
	return nil
}

func (s *authServiceImpl) Login(ctx context.Context, sess AuthSession, email, password string) error {
	result, err := s.portalClient.Login(ctx, sess, email, password)
	if err != nil {
		return fmt.Errorf("login: %w", err)
	}

	err = sess.Save(ctx, model.Credentials{
		AccessToken:  result.AccessToken,
		RefreshToken: result.RefreshToken,
		UserEmail:    email,
	})
	if err != nil {
		return fmt.Errorf("store credentials: %w", err)
	}

	s.log.Info().Str("email", email).Msg("user logged in")
	return nil
}

// Refresh exchanges the stored refresh token for a new credential pair.
// The slot is replaced as a whole; a failed exchange leaves it alone so
// the user can still log out cleanly.
func (s *authServiceImpl) Refresh(ctx context.Context, sess AuthSession) error {
	current := sess.Credentials()
	if current.RefreshToken == "" {
		return fmt.Errorf("refresh: %w", apperr.ErrUnauthorized)
	}

	result, err := s.portalClient.RefreshToken(ctx, sess, current.RefreshToken)
	if err != nil {
		return fmt.Errorf("refresh: %w", err)
	}

	err = sess.Save(ctx, model.Credentials{
		AccessToken:  result.AccessToken,
		RefreshToken: result.RefreshToken,
		UserEmail:    current.UserEmail,
	})
	if err != nil {
		return fmt.Errorf("store refreshed credentials: %w", err)
	}

	return nil
}

func (s *authServiceImpl) Logout(ctx context.Context, sess AuthSession) error {
	// best effort against the backend; the local session goes away
	// either way
	if err := s.portalClient.Logout(ctx, sess); err != nil && !errors.Is(err, apperr.ErrUnauthorized) {
		s.log.Warn().Err(err).Msg("backend logout failed")
	}

	if err := sess.Clear(ctx); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}

func (s *authServiceImpl) ForgotPassword(ctx context.Context, sess AuthSession, email string) error {
	if err := s.portalClient.ForgotPassword(ctx, sess, email); err != nil {
		return fmt.Errorf("forgot password: %w", err)
	}
	return nil
}

func (s *authServiceImpl) ResetPassword(ctx context.Context, sess AuthSession, token, newPassword string) error {
	if err := s.portalClient.ResetPassword(ctx, sess, token, newPassword); err != nil {
		return fmt.Errorf("reset password: %w", err)
	}
	return nil
}
