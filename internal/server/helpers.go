package server

import (
	"strings"
	"time"

	"inkwell/internal/middleware"
	"inkwell/internal/models"
	"inkwell/internal/session"

	"github.com/gofiber/fiber/v2"
)

const (
	maxPaginationLimit = 100
	bearerPrefix       = "Bearer "
)

// Pagination holds parsed limit/offset query parameters. A zero Limit means
// the caller did not ask for a page.
type Pagination struct {
	Limit  int
	Offset int
}

// parsePagination reads limit and offset. Negative values are passed through
// so the service can reject them.
func parsePagination(c *fiber.Ctx) Pagination {
	limit := c.QueryInt("limit", 0)
	if limit > maxPaginationLimit {
		limit = maxPaginationLimit
	}
	return Pagination{
		Limit:  limit,
		Offset: c.QueryInt("offset", 0),
	}
}

// parseID extracts a route parameter as a positive uint.
func parseID(c *fiber.Ctx, param string) (uint, error) {
	id, err := c.ParamsInt(param)
	if err != nil || id <= 0 {
		return 0, models.NewValidationError("Invalid " + strings.ToUpper(param))
	}
	return uint(id), nil
}

// sessionFrom returns the caller's session. A bearer token wins over the cookie.
func (s *Server) sessionFrom(c *fiber.Ctx) session.Session {
	if header := c.Get(fiber.HeaderAuthorization); strings.HasPrefix(header, bearerPrefix) {
		if token := strings.TrimSpace(header[len(bearerPrefix):]); token != "" {
			return session.Session{Token: token}
		}
	}
	return session.Session{Token: c.Cookies(s.config.SessionCookieName)}
}

// SessionContext records the caller's user id in locals when the session
// token verifies. It must run before middleware.ContextMiddleware.
func (s *Server) SessionContext() fiber.Handler {
	return func(c *fiber.Ctx) error {
		sess := s.sessionFrom(c)
		if sess.Anonymous() {
			return c.Next()
		}

		claims, err := s.sessions.Parse(c.UserContext(), sess)
		if err != nil {
			return c.Next()
		}
		userID, err := claims.UserID()
		if err != nil {
			return c.Next()
		}

		c.Locals("userID", userID)
		return c.Next()
	}
}

// setSessionCookie stores the session token in an http-only cookie.
func (s *Server) setSessionCookie(c *fiber.Ctx, sess session.Session) {
	c.Cookie(&fiber.Cookie{
		Name:     s.config.SessionCookieName,
		Value:    sess.Token,
		Path:     "/",
		Expires:  sess.ExpiresAt,
		HTTPOnly: true,
		Secure:   s.config.IsProduction(),
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}

func (s *Server) clearSessionCookie(c *fiber.Ctx) {
	c.Cookie(&fiber.Cookie{
		Name:     s.config.SessionCookieName,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		HTTPOnly: true,
		Secure:   s.config.IsProduction(),
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}

// respondError renders err with the status its code maps to. Internal errors
// are logged here because the response body hides them.
func respondError(c *fiber.Ctx, err error) error {
	status := models.HTTPStatus(err)
	if status >= fiber.StatusInternalServerError {
		middleware.Logger.ErrorContext(c.UserContext(), "request failed",
			"path", c.Path(), "error", err)
	}
	return models.RespondWithError(c, status, err)
}

// firstNonEmpty returns the first value that is not blank.
func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
