package identity

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	goerrors "github.com/goliatone/go-errors"
)

// DefaultSessionCookie is the cookie carrying the session token.
const DefaultSessionCookie = "identity_session"

// HTTPController mounts the local-credential routes on a fiber app:
//
//	POST {path}/register        {email, password}
//	POST {path}/login           {username, password}
//	POST {path}/logout
//	POST {path}/forgot-password {username}
//	POST {path}/reset-password  {token, password}
//	POST {path}/set-username    {username}
//	POST {path}/set-email       {email}
//	GET  /status
//
// The login identifier field is called username but accepts an email too.
// Sessions ride in an HTTP-only cookie holding a signed token.
type HTTPController struct {
	Auth       *LocalAuthenticator
	Tokens     *TokenService
	Logger     Logger
	CookieName string
	Path       string
}

type HTTPControllerOption func(*HTTPController) *HTTPController

// NewHTTPController creates a controller with routes under /local.
func NewHTTPController(auth *LocalAuthenticator, tokens *TokenService, opts ...HTTPControllerOption) *HTTPController {
	c := &HTTPController{
		Auth:       auth,
		Tokens:     tokens,
		Logger:     defLogger{},
		CookieName: DefaultSessionCookie,
		Path:       "/local",
	}

	for _, opt := range opts {
		if opt != nil {
			c = opt(c)
		}
	}

	return c
}

// WithHTTPLogger overrides the controller logger.
func WithHTTPLogger(logger Logger) HTTPControllerOption {
	return func(c *HTTPController) *HTTPController {
		if logger != nil {
			c.Logger = logger
		}
		return c
	}
}

// WithHTTPPath overrides the mount prefix for the /local routes.
func WithHTTPPath(path string) HTTPControllerOption {
	return func(c *HTTPController) *HTTPController {
		if path != "" {
			c.Path = path
		}
		return c
	}
}

// WithCookieName overrides the session cookie name.
func WithCookieName(name string) HTTPControllerOption {
	return func(c *HTTPController) *HTTPController {
		if name != "" {
			c.CookieName = name
		}
		return c
	}
}

// RegisterRoutes mounts the controller on the given router.
func (h *HTTPController) RegisterRoutes(app fiber.Router) {
	app.Post(h.Path+"/register", h.Register)
	app.Post(h.Path+"/login", h.Login)
	app.Post(h.Path+"/logout", h.Logout)
	app.Post(h.Path+"/forgot-password", h.ForgotPassword)
	app.Post(h.Path+"/reset-password", h.ResetPassword)
	app.Post(h.Path+"/set-username", h.SetUsername)
	app.Post(h.Path+"/set-email", h.SetEmail)
	app.Get("/status", h.Status)
}

type registerPayload struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *HTTPController) Register(c *fiber.Ctx) error {
	payload := registerPayload{}
	if err := c.BodyParser(&payload); err != nil {
		return h.renderError(c, validationError("body", "invalid request body"))
	}

	user, err := h.Auth.Register(c.UserContext(), h.session(c), payload.Email, payload.Password)
	if err != nil {
		return h.renderError(c, err)
	}

	return c.JSON(fiber.Map{
		"message": "Registered successfully",
		"user":    user,
	})
}

type loginPayload struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (h *HTTPController) Login(c *fiber.Ctx) error {
	payload := loginPayload{}
	if err := c.BodyParser(&payload); err != nil {
		return h.renderError(c, validationError("body", "invalid request body"))
	}

	user, err := h.Auth.Login(c.UserContext(), h.session(c), payload.Username, payload.Password)
	if err != nil {
		return h.renderError(c, err)
	}

	return c.JSON(fiber.Map{
		"message": "Logged in successfully",
		"user":    user,
	})
}

func (h *HTTPController) Logout(c *fiber.Ctx) error {
	if err := h.Auth.Logout(c.UserContext(), h.session(c)); err != nil {
		return h.renderError(c, err)
	}

	return c.JSON(fiber.Map{
		"message": "Logged out successfully",
	})
}

type forgotPasswordPayload struct {
	Username string `json:"username"`
}

func (h *HTTPController) ForgotPassword(c *fiber.Ctx) error {
	payload := forgotPasswordPayload{}
	if err := c.BodyParser(&payload); err != nil {
		return h.renderError(c, validationError("body", "invalid request body"))
	}

	if err := h.Auth.RequestPasswordReset(c.UserContext(), payload.Username); err != nil {
		return h.renderError(c, err)
	}

	return c.JSON(fiber.Map{
		"message": "Password reset requested",
	})
}

type resetPasswordPayload struct {
	Token    string `json:"token"`
	Password string `json:"password"`
}

func (h *HTTPController) ResetPassword(c *fiber.Ctx) error {
	payload := resetPasswordPayload{}
	if err := c.BodyParser(&payload); err != nil {
		return h.renderError(c, validationError("body", "invalid request body"))
	}

	user, err := h.Auth.CompletePasswordReset(c.UserContext(), h.session(c), payload.Token, payload.Password)
	if err != nil {
		return h.renderError(c, err)
	}

	return c.JSON(fiber.Map{
		"message": "Password changed successfully",
		"user":    user,
	})
}

type setUsernamePayload struct {
	Username string `json:"username"`
}

func (h *HTTPController) SetUsername(c *fiber.Ctx) error {
	payload := setUsernamePayload{}
	if err := c.BodyParser(&payload); err != nil {
		return h.renderError(c, validationError("body", "invalid request body"))
	}

	user, err := h.Auth.SetUsername(c.UserContext(), h.session(c), payload.Username)
	if err != nil {
		return h.renderError(c, err)
	}

	return c.JSON(fiber.Map{
		"message": "Username updated",
		"user":    user,
	})
}

type setEmailPayload struct {
	Email string `json:"email"`
}

func (h *HTTPController) SetEmail(c *fiber.Ctx) error {
	payload := setEmailPayload{}
	if err := c.BodyParser(&payload); err != nil {
		return h.renderError(c, validationError("body", "invalid request body"))
	}

	user, err := h.Auth.SetEmail(c.UserContext(), h.session(c), payload.Email)
	if err != nil {
		return h.renderError(c, err)
	}

	return c.JSON(fiber.Map{
		"message": "Email updated",
		"user":    user,
	})
}

func (h *HTTPController) Status(c *fiber.Ctx) error {
	user, err := h.Auth.Status(c.UserContext(), h.session(c))
	if err != nil {
		return h.renderError(c, err)
	}

	if user == nil {
		return c.JSON(fiber.Map{"user": nil})
	}
	return c.JSON(fiber.Map{"user": user})
}

// RequireAuthenticated rejects anonymous requests and stashes the caller's
// identity in the request context for downstream handlers.
func (h *HTTPController) RequireAuthenticated() fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, err := h.Auth.Status(c.UserContext(), h.session(c))
		if err != nil {
			return h.renderError(c, err)
		}
		if user == nil {
			return h.renderError(c, ErrLoginRequired)
		}

		c.SetUserContext(WithIdentity(c.UserContext(), user))
		c.Locals("identity", user)

		return c.Next()
	}
}

func (h *HTTPController) session(c *fiber.Ctx) UserSession {
	return &cookieSession{
		ctx:    c,
		tokens: h.Tokens,
		name:   h.CookieName,
	}
}

func (h *HTTPController) renderError(c *fiber.Ctx, err error) error {
	status := httpStatusFor(err)
	if status >= fiber.StatusInternalServerError {
		h.Logger.Error("request failed", "error", err)
	}

	body := fiber.Map{
		"status":  "error",
		"message": err.Error(),
	}
	if field := errorField(err); field != "" {
		body["field"] = field
	}

	return c.Status(status).JSON(body)
}

func httpStatusFor(err error) int {
	switch {
	case IsValidation(err) || hasCategory(err, goerrors.CategoryBadInput):
		return fiber.StatusBadRequest
	case IsAuth(err):
		return fiber.StatusUnauthorized
	case IsConflict(err):
		return fiber.StatusConflict
	case hasCategory(err, goerrors.CategoryRateLimit):
		return fiber.StatusTooManyRequests
	case IsTransient(err):
		return fiber.StatusServiceUnavailable
	default:
		return fiber.StatusInternalServerError
	}
}

func errorField(err error) string {
	var richErr *goerrors.Error
	if !goerrors.As(err, &richErr) {
		return ""
	}
	if field, ok := richErr.Metadata["field"].(string); ok {
		return field
	}
	return ""
}

// cookieSession is a UserSession riding in an HTTP-only cookie, the bound
// user id carried in a signed token.
type cookieSession struct {
	ctx    *fiber.Ctx
	tokens *TokenService
	name   string
}

func (s *cookieSession) GetUser(ctx context.Context) (string, bool) {
	raw := s.ctx.Cookies(s.name)
	if raw == "" {
		return "", false
	}

	userID, err := s.tokens.UserFromToken(raw)
	if err != nil {
		return "", false
	}
	return userID, true
}

func (s *cookieSession) SetUser(ctx context.Context, userID string) error {
	token, err := s.tokens.Mint(userID)
	if err != nil {
		return err
	}

	s.ctx.Cookie(&fiber.Cookie{
		Name:     s.name,
		Value:    token,
		Expires:  time.Now().Add(s.tokens.Expiration()),
		HTTPOnly: true,
		SameSite: "Lax",
	})
	return nil
}

func (s *cookieSession) ClearUser(ctx context.Context) error {
	s.ctx.Cookie(&fiber.Cookie{
		Name:     s.name,
		Value:    "",
		Expires:  time.Now().Add(-time.Hour),
		HTTPOnly: true,
		SameSite: "Lax",
	})
	return nil
}

var _ UserSession = (*cookieSession)(nil)
