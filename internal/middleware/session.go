package middleware

import (
	"net/http"

	"worksphere-portal/internal/session"

	"github.com/labstack/echo/v4"
)

const sessionContextKey = "portal_session"

// LoadSession binds the session-context object to every request. The
// session may be anonymous; RequireAuth decides who gets past.
func LoadSession(store *session.Store) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			c.Set(sessionContextKey, store.Load(c))
			return next(c)
		}
	}
}

// RequireAuth forces unauthenticated requests to the login entry point.
func RequireAuth() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if !SessionFrom(c).Authenticated() {
				return c.Redirect(http.StatusFound, "/login")
			}
			return next(c)
		}
	}
}

func SessionFrom(c echo.Context) *session.Session {
	return c.Get(sessionContextKey).(*session.Session)
}
