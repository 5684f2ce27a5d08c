package identity

import (
	"context"
	"errors"
	"strings"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/google/uuid"
)

// MaxLoginAttempts is the maximum number of attempts a user gets
// in a period
var MaxLoginAttempts = 5

// CoolDownPeriod is the period in which we enforce a cool down
var CoolDownPeriod = "24h"

// dummyPasswordHash is verified against when a login names an unknown
// identifier, so the unknown-user and wrong-password paths cost the same.
// It is a fake hash that will never match any password.
const dummyPasswordHash = "$2a$14$u1QyFdKeXHzDpLkW9mT3uOh9yPZr0TmEuVb5cXaGqLw2sNfRjD1eK"

// Hooks are the outbound callbacks the authenticator invokes. All are
// optional. OnPasswordResetRequested receives the record snapshot with the
// plaintext token; delivery is the host's responsibility and a hook failure
// never rolls back the token persistence that already happened.
type Hooks struct {
	OnLogin                  func(ctx context.Context, user *PublicIdentity)
	OnLogout                 func(ctx context.Context)
	OnPasswordResetRequested func(ctx context.Context, req PasswordResetRequest)
}

// PasswordResetRequest is the payload handed to the reset notification hook.
type PasswordResetRequest struct {
	User      *User
	Token     string
	ExpiresAt time.Time
}

// LocalAuthenticator is the identity state machine: it drives how an
// anonymous request becomes an authenticated session and how credentials
// are validated and mutated. It holds no mutable shared state and is safe
// for concurrent use; same-identifier write races resolve at the store.
type LocalAuthenticator struct {
	store               CredentialStore
	logger              Logger
	hooks               Hooks
	resetTokenTTL       time.Duration
	opTimeout           time.Duration
	maxLoginAttempts    int
	coolDownPeriod      string
	autoLoginAfterReset bool
}

// NewLocalAuthenticator returns a new LocalAuthenticator
func NewLocalAuthenticator(store CredentialStore) *LocalAuthenticator {
	return &LocalAuthenticator{
		store:               store,
		logger:              defLogger{},
		resetTokenTTL:       DefaultResetTokenTTL,
		opTimeout:           time.Second * 10,
		maxLoginAttempts:    MaxLoginAttempts,
		coolDownPeriod:      CoolDownPeriod,
		autoLoginAfterReset: true,
	}
}

func (s *LocalAuthenticator) WithLogger(logger Logger) *LocalAuthenticator {
	if logger != nil {
		s.logger = logger
	}
	return s
}

// WithHooks configures the outbound callbacks.
func (s *LocalAuthenticator) WithHooks(hooks Hooks) *LocalAuthenticator {
	s.hooks = hooks
	return s
}

// WithResetTokenTTL overrides the reset token lifetime.
func (s *LocalAuthenticator) WithResetTokenTTL(ttl time.Duration) *LocalAuthenticator {
	if ttl > 0 {
		s.resetTokenTTL = ttl
	}
	return s
}

// WithAutoLoginAfterReset controls whether a completed password reset
// leaves the caller authenticated.
func (s *LocalAuthenticator) WithAutoLoginAfterReset(autoLogin bool) *LocalAuthenticator {
	s.autoLoginAfterReset = autoLogin
	return s
}

// WithMaxLoginAttempts overrides the attempt ceiling per cool down window.
func (s *LocalAuthenticator) WithMaxLoginAttempts(max int) *LocalAuthenticator {
	if max > 0 {
		s.maxLoginAttempts = max
	}
	return s
}

// WithCoolDownPeriod overrides the login attempt window, as a duration string.
func (s *LocalAuthenticator) WithCoolDownPeriod(pattern string) *LocalAuthenticator {
	if pattern != "" {
		s.coolDownPeriod = pattern
	}
	return s
}

// Register creates a credential record for the email and password,
// binds the session, and returns the sanitized identity view.
func (s *LocalAuthenticator) Register(ctx context.Context, sess UserSession, email, password string) (*PublicIdentity, error) {
	ctx, cancel := context.WithTimeout(ctx, s.opTimeout)
	defer cancel()

	if err := ValidateEmail(email); err != nil {
		return nil, err
	}
	if err := ValidatePassword(password); err != nil {
		return nil, err
	}

	hash, err := HashPassword(password)
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to hash password")
	}

	created, err := s.store.Insert(ctx, &User{
		Email:        NormalizeEmail(email),
		PasswordHash: hash,
	})
	if err != nil {
		if IsConflict(err) {
			return nil, err
		}
		return nil, transientError(err, "failed to create user")
	}

	if err := s.bindSession(ctx, sess, created.ID.String()); err != nil {
		return nil, err
	}

	return created.Public(), nil
}

// Login verifies the identifier and password and binds the session.
// Unknown identifiers and wrong passwords fail with the same
// ErrInvalidCredentials, produced by a single code path.
func (s *LocalAuthenticator) Login(ctx context.Context, sess UserSession, identifier, password string) (*PublicIdentity, error) {
	ctx, cancel := context.WithTimeout(ctx, s.opTimeout)
	defer cancel()

	if strings.TrimSpace(identifier) == "" {
		return nil, validationError("username", "username is required")
	}
	if password == "" {
		return nil, validationError("password", "password is required")
	}

	user, err := s.store.GetByIdentifier(ctx, identifier)
	if err != nil {
		if goerrors.IsNotFound(err) {
			// Burn a verification against a fake hash so unknown users
			// cost the same as wrong passwords.
			_ = ComparePasswordAndHash(password, dummyPasswordHash)
			return nil, ErrInvalidCredentials
		}
		return nil, transientError(err, "failed to retrieve user during login")
	}

	if user.LoginAttemptAt != nil {
		expired, terr := IsOutsideThresholdPeriod(*user.LoginAttemptAt, s.coolDownPeriod)
		if terr == nil && expired {
			// Restart the count on the record too, so a failure tracked
			// below persists 1, not the stale count plus one.
			user.LoginAttempts = 0
			user.LoginAttemptAt = nil
		}
	}

	if user.LoginAttempts > s.maxLoginAttempts {
		return nil, ErrTooManyLoginAttempts
	}

	if err := ComparePasswordAndHash(password, user.PasswordHash); err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			if terr := s.store.TrackAttemptedLogin(ctx, user); terr != nil {
				s.logger.Error("failed to track login attempt", "error", terr)
			}
			return nil, ErrInvalidCredentials
		}
		return nil, transientError(err, "failed to verify password")
	}

	if err := s.store.TrackSuccessfulLogin(ctx, user); err != nil {
		s.logger.Error("failed to track successful login", "error", err)
	}

	if err := s.bindSession(ctx, sess, user.ID.String()); err != nil {
		return nil, err
	}

	view := user.Public()
	s.invokeOnLogin(ctx, view)

	return view, nil
}

// Logout clears the session binding. Logging out an anonymous session is
// a no-op success.
func (s *LocalAuthenticator) Logout(ctx context.Context, sess UserSession) error {
	ctx, cancel := context.WithTimeout(ctx, s.opTimeout)
	defer cancel()

	if sess == nil {
		return nil
	}

	if _, ok := sess.GetUser(ctx); !ok {
		return nil
	}

	if err := sess.ClearUser(ctx); err != nil {
		return transientError(err, "failed to clear session")
	}

	s.invokeOnLogout(ctx)

	return nil
}

// RequestPasswordReset issues a single-use reset token for the account the
// identifier names, overwriting any previously issued token, and invokes
// the notification hook with the record snapshot and plaintext token.
// Unknown identifiers report success without invoking the hook.
func (s *LocalAuthenticator) RequestPasswordReset(ctx context.Context, identifier string) error {
	ctx, cancel := context.WithTimeout(ctx, s.opTimeout)
	defer cancel()

	if strings.TrimSpace(identifier) == "" {
		return validationError("username", "username is required")
	}

	user, err := s.store.GetByIdentifier(ctx, identifier)
	if err != nil {
		if goerrors.IsNotFound(err) {
			return nil
		}
		return transientError(err, "failed to retrieve user for password reset")
	}

	token, expiresAt, err := GenerateResetToken(s.resetTokenTTL)
	if err != nil {
		return err
	}

	if err := s.store.SetResetToken(ctx, user.ID, token, expiresAt); err != nil {
		// The token was never persisted; the caller may retry. We never
		// retry here, a second issuance would invalidate a token already
		// in flight to the user.
		return transientError(err, "failed to persist reset token")
	}

	snapshot := *user
	snapshot.ResetToken = token
	snapshot.ResetTokenExpiresAt = &expiresAt

	s.invokeOnPasswordResetRequested(ctx, PasswordResetRequest{
		User:      &snapshot,
		Token:     token,
		ExpiresAt: expiresAt,
	})

	return nil
}

// CompletePasswordReset redeems a reset token for a new password. The token
// is consumed by the same conditional write that stores the hash, so a
// token can only ever be redeemed once. Depending on policy the caller ends
// up authenticated or stays anonymous.
func (s *LocalAuthenticator) CompletePasswordReset(ctx context.Context, sess UserSession, token, newPassword string) (*PublicIdentity, error) {
	ctx, cancel := context.WithTimeout(ctx, s.opTimeout)
	defer cancel()

	if token == "" {
		return nil, ErrResetTokenInvalid
	}

	user, err := s.store.GetByResetToken(ctx, token)
	if err != nil {
		if goerrors.IsNotFound(err) {
			return nil, ErrResetTokenInvalid
		}
		return nil, transientError(err, "failed to retrieve user by reset token")
	}

	if !user.HasActiveResetToken(time.Now()) {
		return nil, ErrResetTokenInvalid
	}

	if err := ValidatePassword(newPassword); err != nil {
		return nil, err
	}

	hash, err := HashPassword(newPassword)
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to hash password")
	}

	if err := s.store.ConsumeResetToken(ctx, user.ID, token, hash); err != nil {
		if goerrors.IsNotFound(err) {
			// The token was consumed or replaced since the lookup.
			return nil, ErrResetTokenInvalid
		}
		return nil, transientError(err, "failed to consume reset token")
	}

	if s.autoLoginAfterReset {
		if err := s.bindSession(ctx, sess, user.ID.String()); err != nil {
			return nil, err
		}
	}

	return user.Public(), nil
}

// SetUsername changes the username of the authenticated user.
func (s *LocalAuthenticator) SetUsername(ctx context.Context, sess UserSession, username string) (*PublicIdentity, error) {
	ctx, cancel := context.WithTimeout(ctx, s.opTimeout)
	defer cancel()

	id, err := s.requireUser(ctx, sess)
	if err != nil {
		return nil, err
	}

	if err := ValidateUsername(username); err != nil {
		return nil, err
	}

	updated, err := s.store.UpdateUsername(ctx, id, username)
	if err != nil {
		return nil, s.mapUpdateError(err, "failed to update username")
	}

	return updated.Public(), nil
}

// SetEmail changes the email of the authenticated user.
func (s *LocalAuthenticator) SetEmail(ctx context.Context, sess UserSession, email string) (*PublicIdentity, error) {
	ctx, cancel := context.WithTimeout(ctx, s.opTimeout)
	defer cancel()

	id, err := s.requireUser(ctx, sess)
	if err != nil {
		return nil, err
	}

	if err := ValidateEmail(email); err != nil {
		return nil, err
	}

	updated, err := s.store.UpdateEmail(ctx, id, email)
	if err != nil {
		return nil, s.mapUpdateError(err, "failed to update email")
	}

	return updated.Public(), nil
}

// Status reports the identity bound to the session, nil when anonymous.
func (s *LocalAuthenticator) Status(ctx context.Context, sess UserSession) (*PublicIdentity, error) {
	ctx, cancel := context.WithTimeout(ctx, s.opTimeout)
	defer cancel()

	if sess == nil {
		return nil, nil
	}

	raw, ok := sess.GetUser(ctx)
	if !ok {
		return nil, nil
	}

	id, err := uuid.Parse(raw)
	if err != nil {
		return nil, nil
	}

	user, err := s.store.GetByID(ctx, id)
	if err != nil {
		if goerrors.IsNotFound(err) {
			return nil, nil
		}
		return nil, transientError(err, "failed to retrieve user for status")
	}

	return user.Public(), nil
}

func (s *LocalAuthenticator) requireUser(ctx context.Context, sess UserSession) (uuid.UUID, error) {
	if sess == nil {
		return uuid.Nil, ErrLoginRequired
	}

	raw, ok := sess.GetUser(ctx)
	if !ok {
		return uuid.Nil, ErrLoginRequired
	}

	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, ErrLoginRequired
	}

	return id, nil
}

func (s *LocalAuthenticator) mapUpdateError(err error, msg string) error {
	if IsConflict(err) || IsValidation(err) {
		return err
	}
	if goerrors.IsNotFound(err) {
		// The bound record vanished under the session.
		return ErrLoginRequired
	}
	return transientError(err, msg)
}

func (s *LocalAuthenticator) bindSession(ctx context.Context, sess UserSession, userID string) error {
	if sess == nil {
		return nil
	}
	if err := sess.SetUser(ctx, userID); err != nil {
		return transientError(err, "failed to bind session")
	}
	return nil
}

func (s *LocalAuthenticator) invokeOnLogin(ctx context.Context, user *PublicIdentity) {
	if s.hooks.OnLogin == nil {
		return
	}
	defer s.recoverHook("OnLogin")
	s.hooks.OnLogin(ctx, user)
}

func (s *LocalAuthenticator) invokeOnLogout(ctx context.Context) {
	if s.hooks.OnLogout == nil {
		return
	}
	defer s.recoverHook("OnLogout")
	s.hooks.OnLogout(ctx)
}

func (s *LocalAuthenticator) invokeOnPasswordResetRequested(ctx context.Context, req PasswordResetRequest) {
	if s.hooks.OnPasswordResetRequested == nil {
		return
	}
	defer s.recoverHook("OnPasswordResetRequested")
	s.hooks.OnPasswordResetRequested(ctx, req)
}

func (s *LocalAuthenticator) recoverHook(name string) {
	if r := recover(); r != nil {
		s.logger.Error("hook panicked", "hook", name, "panic", r)
	}
}
