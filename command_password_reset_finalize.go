package identity

import (
	"context"

	goerrors "github.com/goliatone/go-errors"
)

type FinalizePasswordResetMessage struct {
	Token    string `json:"token" doc:"Reset password token"`
	Password string `json:"password" doc:"New password"`
}

func (p FinalizePasswordResetMessage) Type() string { return "user.password_reset_finalize" }

// FinalizePasswordResetHandler redeems reset tokens for hosts that
// dispatch work through a command bus.
type FinalizePasswordResetHandler struct {
	auth *LocalAuthenticator
}

func NewFinalizePasswordResetHandler(auth *LocalAuthenticator) *FinalizePasswordResetHandler {
	return &FinalizePasswordResetHandler{auth: auth}
}

func (h *FinalizePasswordResetHandler) Execute(ctx context.Context, event FinalizePasswordResetMessage) error {
	select {
	case <-ctx.Done():
		return goerrors.Wrap(
			ctx.Err(),
			goerrors.CategoryOperation,
			"context cancelled during password reset finalization",
		)
	default:
		return h.execute(ctx, event)
	}
}

func (h *FinalizePasswordResetHandler) execute(ctx context.Context, event FinalizePasswordResetMessage) error {
	_, err := h.auth.CompletePasswordReset(ctx, nil, event.Token, event.Password)
	return err
}
