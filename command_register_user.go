package identity

import (
	"context"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/hashid/pkg/hashid"
)

type RegisterUserMessage struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	UseHashid bool
}

func (e RegisterUserMessage) Type() string { return "user.register" }

// RegisterUserHandler processes registration messages for hosts that
// dispatch work through a command bus.
type RegisterUserHandler struct {
	auth *LocalAuthenticator
	repo RepositoryManager
}

func NewRegisterUserHandler(auth *LocalAuthenticator, repo RepositoryManager) *RegisterUserHandler {
	return &RegisterUserHandler{auth: auth, repo: repo}
}

func (h *RegisterUserHandler) Execute(ctx context.Context, event RegisterUserMessage) error {
	select {
	case <-ctx.Done():
		return goerrors.Wrap(
			ctx.Err(),
			goerrors.CategoryOperation,
			"context cancelled during user registration",
		)
	default:
		return h.execute(ctx, event)
	}
}

func (h *RegisterUserHandler) execute(ctx context.Context, event RegisterUserMessage) error {
	if event.UseHashid {
		return h.registerWithHashid(ctx, event)
	}

	_, err := h.auth.Register(ctx, nil, event.Email, event.Password)
	return err
}

// registerWithHashid derives the record id deterministically from the
// email, for hosts that need stable ids across environments.
func (h *RegisterUserHandler) registerWithHashid(ctx context.Context, event RegisterUserMessage) error {
	if err := ValidateEmail(event.Email); err != nil {
		return err
	}
	if err := ValidatePassword(event.Password); err != nil {
		return err
	}

	hash, err := HashPassword(event.Password)
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to hash password")
	}

	user := &User{
		Email:        NormalizeEmail(event.Email),
		PasswordHash: hash,
	}
	if id, err := hashid.NewUUID(user.Email); err == nil {
		user.ID = id
	}

	if _, err := h.repo.Users().Insert(ctx, user); err != nil {
		if IsConflict(err) {
			return err
		}
		return transientError(err, "could not create user")
	}

	return nil
}
