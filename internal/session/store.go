package session

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"worksphere-portal/internal/model"
	"worksphere-portal/internal/repository"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

// Store wraps the two credential surfaces: signed cookies on the
// browser side and the sqlite mirror the request layer reads. All
// writes and clears go through here so the two copies cannot drift.
type Store struct {
	codec        *CookieCodec
	repo         repository.CredentialRepository
	accessTTL    time.Duration
	refreshTTL   time.Duration
	cookieSecure bool
	log          zerolog.Logger
}

func NewStore(codec *CookieCodec, repo repository.CredentialRepository, accessTTL, refreshTTL time.Duration, cookieSecure bool, log zerolog.Logger) *Store {
	return &Store{
		codec:        codec,
		repo:         repo,
		accessTTL:    accessTTL,
		refreshTTL:   refreshTTL,
		cookieSecure: cookieSecure,
		log:          log,
	}
}

// Session is the per-request session-context object. It is passed
// explicitly to the gateway and the orchestrator instead of living in
// ambient global state, so last-writer-wins and clear-all-at-once are
// enforceable at one place.
type Session struct {
	store *Store
	c     echo.Context

	id    string
	creds model.Credentials
}

// Load reads both surfaces and binds a session to the request. A
// missing or unverifiable cookie yields an anonymous session, never an
// error. On a cookie/mirror mismatch the cookie wins and the mirror is
// rewritten.
func (s *Store) Load(c echo.Context) *Session {
	sess := &Session{store: s, c: c}

	accessCookie, err := c.Cookie(AccessCookieName)
	if err != nil {
		return sess
	}
	sid, accessToken, err := s.codec.Parse(accessCookie.Value, useAccess)
	if err != nil {
		s.log.Debug().Err(err).Msg("discarding unverifiable access cookie")
		return sess
	}

	sess.id = sid
	sess.creds.AccessToken = accessToken

	if refreshCookie, err := c.Cookie(RefreshCookieName); err == nil {
		if _, refreshToken, err := s.codec.Parse(refreshCookie.Value, useRefresh); err == nil {
			sess.creds.RefreshToken = refreshToken
		}
	}
	if emailCookie, err := c.Cookie(EmailCookieName); err == nil {
		sess.creds.UserEmail = emailCookie.Value
	}

	s.reconcileMirror(c.Request().Context(), sess)
	return sess
}

func (s *Store) reconcileMirror(ctx context.Context, sess *Session) {
	rec, err := s.repo.FindBySessionID(ctx, sess.id)
	if err != nil {
		s.log.Warn().Err(err).Msg("read credential mirror")
		return
	}
	if rec != nil &&
		rec.AccessToken == sess.creds.AccessToken &&
		rec.RefreshToken == sess.creds.RefreshToken &&
		rec.UserEmail == sess.creds.UserEmail {
		return
	}

	// stale or missing mirror row, rewrite from the cookie copy
	err = s.repo.Upsert(ctx, &model.CredentialMirror{
		SessionID:    sess.id,
		AccessToken:  sess.creds.AccessToken,
		RefreshToken: sess.creds.RefreshToken,
		UserEmail:    sess.creds.UserEmail,
	})
	if err != nil {
		s.log.Warn().Err(err).Msg("rewrite credential mirror")
	}
}

func (sess *Session) ID() string {
	return sess.id
}

func (sess *Session) Credentials() model.Credentials {
	return sess.creds
}

func (sess *Session) Authenticated() bool {
	return sess.creds.AccessToken != ""
}

func (sess *Session) UserEmail() string {
	return sess.creds.UserEmail
}

// Save writes new credentials to both surfaces. It replaces the whole
// credential slot, never individual fields.
func (sess *Session) Save(ctx context.Context, creds model.Credentials) error {
	if sess.id == "" {
		sess.id = uuid.NewString()
	}
	sess.creds = creds

	access, err := sess.store.codec.Sign(sess.id, creds.AccessToken, useAccess, sess.store.accessTTL)
	if err != nil {
		return err
	}
	refresh, err := sess.store.codec.Sign(sess.id, creds.RefreshToken, useRefresh, sess.store.refreshTTL)
	if err != nil {
		return err
	}

	sess.setCookie(AccessCookieName, access, sess.store.accessTTL)
	sess.setCookie(RefreshCookieName, refresh, sess.store.refreshTTL)
	sess.setCookie(EmailCookieName, creds.UserEmail, sess.store.refreshTTL)

	err = sess.store.repo.Upsert(ctx, &model.CredentialMirror{
		SessionID:    sess.id,
		AccessToken:  creds.AccessToken,
		RefreshToken: creds.RefreshToken,
		UserEmail:    creds.UserEmail,
	})
	if err != nil {
		return fmt.Errorf("write credential mirror: %w", err)
	}

	return nil
}

// Clear empties both surfaces together. Called at logout and on any
// 401 from the backend.
func (sess *Session) Clear(ctx context.Context) error {
	sess.creds = model.Credentials{}

	sess.expireCookie(AccessCookieName)
	sess.expireCookie(RefreshCookieName)
	sess.expireCookie(EmailCookieName)

	if sess.id == "" {
		return nil
	}
	if err := sess.store.repo.Delete(ctx, sess.id); err != nil {
		return fmt.Errorf("clear credential mirror: %w", err)
	}
	sess.id = ""
	return nil
}

func (sess *Session) setCookie(name, value string, ttl time.Duration) {
	sess.c.SetCookie(&http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		Expires:  time.Now().Add(ttl),
		HttpOnly: name != EmailCookieName,
		Secure:   sess.store.cookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
}

func (sess *Session) expireCookie(name string) {
	sess.c.SetCookie(&http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: name != EmailCookieName,
		Secure:   sess.store.cookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
}
