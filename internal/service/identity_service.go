// Package service implements the application's use cases on top of the repositories.
package service

import (
	"context"
	"strings"

	"inkwell/internal/auth"
	"inkwell/internal/featureflags"
	"inkwell/internal/middleware"
	"inkwell/internal/models"
	"inkwell/internal/observability"
	"inkwell/internal/repository"
	"inkwell/internal/session"
	"inkwell/internal/validation"

	"go.opentelemetry.io/otel/attribute"
)

// Authenticator resolves the user behind a session.
type Authenticator interface {
	CurrentIdentity(ctx context.Context, s session.Session) (*models.User, error)
	RequireIdentity(ctx context.Context, s session.Session) (*models.User, error)
}

// IdentityService registers users, checks credentials and manages sessions.
type IdentityService struct {
	users    repository.UserRepository
	sessions *session.Manager
	hasher   *auth.Hasher
	flags    *featureflags.Manager
}

// RegisterInput is a new account request.
type RegisterInput struct {
	Username string `json:"username" validate:"required,max=64"`
	Email    string `json:"email" validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,max=128"`
}

// NewIdentityService creates an IdentityService.
func NewIdentityService(
	users repository.UserRepository,
	sessions *session.Manager,
	hasher *auth.Hasher,
	flags *featureflags.Manager,
) *IdentityService {
	return &IdentityService{
		users:    users,
		sessions: sessions,
		hasher:   hasher,
		flags:    flags,
	}
}

// Register creates a user with a freshly hashed password.
func (s *IdentityService) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	span, ctx := observability.NewSpan(ctx, "IdentityService.Register")
	defer span.End()

	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.TrimSpace(in.Email)
	if err := validation.Struct(in); err != nil {
		return nil, err
	}
	if !s.flags.EnabledDefault(featureflags.OpenRegistration, 0, true) {
		return nil, models.NewValidationError("registration is closed")
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		span.SetError(err)
		return nil, models.NewInternalError(err)
	}

	user := &models.User{
		Username:     in.Username,
		Email:        in.Email,
		PasswordHash: hash,
	}
	if err := s.users.Create(ctx, user); err != nil {
		span.SetError(err)
		return nil, err
	}

	span.AddAttributes(attribute.Int64("user.id", int64(user.ID)))
	middleware.Logger.InfoContext(ctx, "user registered", "user_id", user.ID)
	return user, nil
}

// Authenticate returns the user whose name and password match. Unknown users
// and wrong passwords produce the same error.
func (s *IdentityService) Authenticate(ctx context.Context, username, password string) (*models.User, error) {
	span, ctx := observability.NewSpan(ctx, "IdentityService.Authenticate")
	defer span.End()

	user, err := s.users.GetByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		span.SetError(err)
		return nil, err
	}
	if user == nil {
		s.hasher.VerifyMissing(password)
		observability.AuthAttempts.WithLabelValues("failure").Inc()
		return nil, models.NewInvalidCredentialsError()
	}

	allowLegacy := s.flags.EnabledDefault(featureflags.LegacyPasswordHashes, user.ID, true)
	ok, needsRehash, err := s.hasher.Verify(user.PasswordHash, password, allowLegacy)
	if err != nil {
		middleware.Logger.WarnContext(ctx, "stored password hash could not be verified",
			"user_id", user.ID, "error", err)
	}
	if !ok {
		observability.AuthAttempts.WithLabelValues("failure").Inc()
		return nil, models.NewInvalidCredentialsError()
	}

	if needsRehash {
		s.upgradeHash(ctx, user, password)
	}

	observability.AuthAttempts.WithLabelValues("success").Inc()
	return user, nil
}

// upgradeHash replaces a legacy hash with bcrypt. Failure leaves the legacy
// hash in place and the login still succeeds.
func (s *IdentityService) upgradeHash(ctx context.Context, user *models.User, password string) {
	hash, err := s.hasher.Hash(password)
	if err == nil {
		err = s.users.UpdatePasswordHash(ctx, user.ID, hash)
	}
	if err != nil {
		middleware.Logger.WarnContext(ctx, "legacy password rehash failed", "user_id", user.ID, "error", err)
		return
	}
	user.PasswordHash = hash
	middleware.Logger.InfoContext(ctx, "legacy password hash upgraded", "user_id", user.ID)
}

// IssueSession signs a session for an authenticated user.
func (s *IdentityService) IssueSession(user *models.User) (session.Session, error) {
	sess, err := s.sessions.Issue(user)
	if err != nil {
		return session.Session{}, models.NewInternalError(err)
	}
	return sess, nil
}

// CurrentIdentity returns the signed-in user, or nil for anonymous callers.
// Invalid, expired and revoked tokens are treated as anonymous, as is a token
// whose user no longer exists. The user row is reloaded on every call.
func (s *IdentityService) CurrentIdentity(ctx context.Context, sess session.Session) (*models.User, error) {
	claims, err := s.sessions.Parse(ctx, sess)
	if err != nil {
		return nil, nil
	}
	userID, err := claims.UserID()
	if err != nil {
		return nil, nil
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if models.HasCode(err, models.CodeNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return user, nil
}

// RequireIdentity is CurrentIdentity for operations that need a signed-in user.
func (s *IdentityService) RequireIdentity(ctx context.Context, sess session.Session) (*models.User, error) {
	user, err := s.CurrentIdentity(ctx, sess)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, models.NewAuthenticationRequiredError()
	}
	return user, nil
}

// EndSession revokes the session token. Ending an anonymous or already
// invalid session is a no-op, and a revocation store outage is logged only
// since the client drops the token either way.
func (s *IdentityService) EndSession(ctx context.Context, sess session.Session) error {
	if err := s.sessions.Revoke(ctx, sess); err != nil {
		middleware.Logger.WarnContext(ctx, "session revocation failed", "error", err)
	}
	return nil
}
