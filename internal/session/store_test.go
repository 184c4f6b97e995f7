package session_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"worksphere-portal/internal/client"
	"worksphere-portal/internal/model"
	"worksphere-portal/internal/repository"
	"worksphere-portal/internal/session"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

const cookieSecret = "test-cookie-secret"

var testCreds = model.Credentials{
	AccessToken:  "access-1",
	RefreshToken: "refresh-1",
	UserEmail:    "john.doe@example.com",
}

func newStoreFixture(t *testing.T) (*session.Store, repository.CredentialRepository) {
	t.Helper()

	db, err := client.InitSqliteClient(fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name()))
	require.NoError(t, err)

	repo := repository.NewCredentialRepository(db)
	store := session.NewStore(
		session.NewCookieCodec(cookieSecret),
		repo,
		time.Hour,
		30*24*time.Hour,
		false,
		zerolog.Nop(),
	)
	return store, repo
}

func newEchoContext(cookies []*http.Cookie) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	for _, ck := range cookies {
		req.AddCookie(ck)
	}
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func TestCookieCodec_RoundTrip(t *testing.T) {
	codec := session.NewCookieCodec(cookieSecret)

	signed, err := codec.Sign("sid-1", "token-1", "access", time.Hour)
	require.NoError(t, err)

	sid, token, err := codec.Parse(signed, "access")
	require.NoError(t, err)
	require.Equal(t, "sid-1", sid)
	require.Equal(t, "token-1", token)

	// a refresh cookie cannot impersonate an access cookie
	_, _, err = codec.Parse(signed, "refresh")
	require.Error(t, err)

	// wrong key fails verification
	other := session.NewCookieCodec("other-secret")
	_, _, err = other.Parse(signed, "access")
	require.Error(t, err)
}

func TestSaveThenLoad_RoundTripsBothSurfaces(t *testing.T) {
	store, repo := newStoreFixture(t)
	ctx := context.Background()

	c1, rec1 := newEchoContext(nil)
	sess := store.Load(c1)
	require.False(t, sess.Authenticated())

	require.NoError(t, sess.Save(ctx, testCreds))
	require.NotEmpty(t, sess.ID())

	// cookie surface
	c2, _ := newEchoContext(rec1.Result().Cookies())
	sess2 := store.Load(c2)
	require.True(t, sess2.Authenticated())
	require.Equal(t, testCreds, sess2.Credentials())
	require.Equal(t, sess.ID(), sess2.ID())

	// mirror surface
	rec, err := repo.FindBySessionID(ctx, sess.ID())
	require.NoError(t, err)
	require.NotNil(t, rec)
	require.Equal(t, testCreds.AccessToken, rec.AccessToken)
	require.Equal(t, testCreds.RefreshToken, rec.RefreshToken)
	require.Equal(t, testCreds.UserEmail, rec.UserEmail)
}

func TestClear_EmptiesBothSurfacesTogether(t *testing.T) {
	store, repo := newStoreFixture(t)
	ctx := context.Background()

	c1, rec1 := newEchoContext(nil)
	sess := store.Load(c1)
	require.NoError(t, sess.Save(ctx, testCreds))
	sid := sess.ID()

	c2, rec2 := newEchoContext(rec1.Result().Cookies())
	sess2 := store.Load(c2)
	require.NoError(t, sess2.Clear(ctx))

	require.True(t, sess2.Credentials().Empty())

	// every cookie expired in the response, not just some
	expired := map[string]bool{}
	for _, ck := range rec2.Result().Cookies() {
		if ck.MaxAge < 0 {
			expired[ck.Name] = true
		}
	}
	require.True(t, expired[session.AccessCookieName])
	require.True(t, expired[session.RefreshCookieName])
	require.True(t, expired[session.EmailCookieName])

	// mirror row gone
	rec, err := repo.FindBySessionID(ctx, sid)
	require.NoError(t, err)
	require.Nil(t, rec)
}

func TestLoad_StaleMirrorRewrittenFromCookies(t *testing.T) {
	store, repo := newStoreFixture(t)
	ctx := context.Background()

	c1, rec1 := newEchoContext(nil)
	sess := store.Load(c1)
	require.NoError(t, sess.Save(ctx, testCreds))

	// mirror drifts behind the cookie copy
	require.NoError(t, repo.Upsert(ctx, &model.CredentialMirror{
		SessionID:   sess.ID(),
		AccessToken: "stale-token",
		UserEmail:   "stale@example.com",
	}))

	c2, _ := newEchoContext(rec1.Result().Cookies())
	sess2 := store.Load(c2)
	require.Equal(t, testCreds, sess2.Credentials())

	rec, err := repo.FindBySessionID(ctx, sess.ID())
	require.NoError(t, err)
	require.NotNil(t, rec)
	require.Equal(t, testCreds.AccessToken, rec.AccessToken)
	require.Equal(t, testCreds.UserEmail, rec.UserEmail)
}

func TestLoad_TamperedCookieYieldsAnonymousSession(t *testing.T) {
	store, _ := newStoreFixture(t)
	ctx := context.Background()

	c1, rec1 := newEchoContext(nil)
	sess := store.Load(c1)
	require.NoError(t, sess.Save(ctx, testCreds))

	cookies := rec1.Result().Cookies()
	for _, ck := range cookies {
		if ck.Name == session.AccessCookieName {
			ck.Value += "tampered"
		}
	}

	c2, _ := newEchoContext(cookies)
	sess2 := store.Load(c2)
	require.False(t, sess2.Authenticated())
}
