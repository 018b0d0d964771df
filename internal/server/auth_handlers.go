package server

import (
	"inkwell/internal/models"
	"inkwell/internal/service"
	"inkwell/internal/session"

	"github.com/gofiber/fiber/v2"
)

// registerRequest also accepts the legacy form field "name" for the username.
type registerRequest struct {
	Username string `json:"username" form:"username"`
	Name     string `json:"name" form:"name"`
	Email    string `json:"email" form:"email"`
	Password string `json:"password" form:"password"`
}

type loginRequest struct {
	Username string `json:"username" form:"username"`
	Name     string `json:"name" form:"name"`
	Password string `json:"password" form:"password"`
}

type sessionResponse struct {
	Token     string       `json:"token"`
	ExpiresAt int64        `json:"expires_at"`
	User      *models.User `json:"user"`
}

func newSessionResponse(sess session.Session, user *models.User) sessionResponse {
	return sessionResponse{
		Token:     sess.Token,
		ExpiresAt: sess.ExpiresAt.Unix(),
		User:      user,
	}
}

// Register handles POST /api/auth/register
// @Summary Register
// @Description Create an account and start a session
// @Tags auth
// @Accept json,x-www-form-urlencoded
// @Produce json
// @Param request body object{username=string,email=string,password=string} true "Registration"
// @Success 201 {object} sessionResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Router /auth/register [post]
func (s *Server) Register(c *fiber.Ctx) error {
	var req registerRequest
	if err := c.BodyParser(&req); err != nil {
		return respondError(c, models.NewValidationError("Invalid request body"))
	}

	user, err := s.identity.Register(c.UserContext(), service.RegisterInput{
		Username: firstNonEmpty(req.Username, req.Name),
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		return respondError(c, err)
	}

	sess, err := s.identity.IssueSession(user)
	if err != nil {
		return respondError(c, err)
	}
	s.setSessionCookie(c, sess)

	return c.Status(fiber.StatusCreated).JSON(newSessionResponse(sess, user))
}

// Login handles POST /api/auth/login
// @Summary Login
// @Description Authenticate with username and password
// @Tags auth
// @Accept json,x-www-form-urlencoded
// @Produce json
// @Param request body object{username=string,password=string} true "Credentials"
// @Success 200 {object} sessionResponse
// @Failure 401 {object} models.ErrorResponse
// @Router /auth/login [post]
func (s *Server) Login(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return respondError(c, models.NewValidationError("Invalid request body"))
	}

	user, err := s.identity.Authenticate(c.UserContext(), firstNonEmpty(req.Username, req.Name), req.Password)
	if err != nil {
		return respondError(c, err)
	}

	sess, err := s.identity.IssueSession(user)
	if err != nil {
		return respondError(c, err)
	}
	s.setSessionCookie(c, sess)

	return c.JSON(newSessionResponse(sess, user))
}

// Logout handles POST /api/auth/logout
// @Summary Logout
// @Tags auth
// @Produce json
// @Success 200 {object} object{message=string}
// @Failure 401 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /auth/logout [post]
func (s *Server) Logout(c *fiber.Ctx) error {
	sess := s.sessionFrom(c)
	if _, err := s.identity.RequireIdentity(c.UserContext(), sess); err != nil {
		// Drop a stale cookie even though there is no session to end.
		s.clearSessionCookie(c)
		return respondError(c, err)
	}

	if err := s.identity.EndSession(c.UserContext(), sess); err != nil {
		return respondError(c, err)
	}
	s.clearSessionCookie(c)

	return c.JSON(fiber.Map{"message": "Logged out"})
}

// Me handles GET /api/auth/me
// @Summary Current user
// @Tags auth
// @Produce json
// @Success 200 {object} models.User
// @Failure 401 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /auth/me [get]
func (s *Server) Me(c *fiber.Ctx) error {
	user, err := s.identity.RequireIdentity(c.UserContext(), s.sessionFrom(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(user)
}
