package identity

import (
	"context"

	goerrors "github.com/goliatone/go-errors"
)

type InitializePasswordResetMessage struct {
	Identifier string `json:"identifier" doc:"Email or username of the account."`
	OnResponse func(resp *InitializePasswordResetResponse)
}

func (p InitializePasswordResetMessage) Type() string { return "user.password_reset" }

type InitializePasswordResetResponse struct {
	Success bool
}

// InitializePasswordResetHandler starts the reset flow for hosts that
// dispatch work through a command bus.
type InitializePasswordResetHandler struct {
	auth *LocalAuthenticator
}

func NewInitializePasswordResetHandler(auth *LocalAuthenticator) *InitializePasswordResetHandler {
	return &InitializePasswordResetHandler{auth: auth}
}

func (h *InitializePasswordResetHandler) Execute(ctx context.Context, event InitializePasswordResetMessage) error {
	select {
	case <-ctx.Done():
		return goerrors.Wrap(
			ctx.Err(),
			goerrors.CategoryOperation,
			"context cancelled during password reset initialization",
		)
	default:
		return h.execute(ctx, event)
	}
}

func (h *InitializePasswordResetHandler) execute(ctx context.Context, event InitializePasswordResetMessage) error {
	if err := h.auth.RequestPasswordReset(ctx, event.Identifier); err != nil {
		return err
	}

	if event.OnResponse != nil {
		event.OnResponse(&InitializePasswordResetResponse{Success: true})
	}

	return nil
}
