package handler

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/cascadeforum/portal/internal/api/middleware"
	"github.com/cascadeforum/portal/internal/core/domain"
	"github.com/cascadeforum/portal/internal/core/ports"
	"github.com/cascadeforum/portal/internal/core/service"
)

type authService interface {
	Login(ctx context.Context, sess *service.Session, email, password string) (*domain.Identity, error)
	Register(ctx context.Context, in ports.SignupInput) (*domain.Identity, error)
	Refresh(ctx context.Context, sess *service.Session) (*domain.Identity, error)
}

type AuthHandler struct {
	auth     authService
	sessions *middleware.Sessions
}

func NewAuthHandler(auth authService, sessions *middleware.Sessions) *AuthHandler {
	return &AuthHandler{auth: auth, sessions: sessions}
}

type loginRequest struct {
	Email    string `json:"email"    form:"email"    validate:"required,email"`
	Password string `json:"password" form:"password" validate:"required"`
}

type registerRequest struct {
	Email    string `json:"email"     form:"email"     validate:"required,email"`
	Password string `json:"password"  form:"password"  validate:"required,min=8"`
	FullName string `json:"full_name" form:"full_name" validate:"required"`
}

type authResponse struct {
	User     *domain.Identity `json:"user"`
	Redirect string           `json:"redirect"`
}

type loginPageResponse struct {
	Action   string   `json:"action"`
	Method   string   `json:"method"`
	Fields   []string `json:"fields"`
	Register string   `json:"register"`
}

// LoginPage handles GET /login, the target of every auth redirect. Callers
// with a session go straight to their landing route.
//
// @Summary      Login form
// @Tags         auth
// @Produce      json
// @Success      200  {object}  loginPageResponse
// @Success      303
// @Router       /login [get]
func (h *AuthHandler) LoginPage(c echo.Context) error {
	if sess := middleware.FromContext(c); sess != nil {
		if identity, ok := sess.CurrentIdentity(c.Request().Context()); ok {
			return c.Redirect(http.StatusSeeOther, identity.Role.Landing())
		}
	}
	return c.JSON(http.StatusOK, loginPageResponse{
		Action:   "/login",
		Method:   http.MethodPost,
		Fields:   []string{"email", "password"},
		Register: "/register",
	})
}

// Login authenticates against the backend and starts a session.
//
// @Summary      Log in
// @Tags         auth
// @Accept       json,x-www-form-urlencoded
// @Produce      json
// @Param        body  body      loginRequest  true  "Credentials"
// @Success      200   {object}  authResponse
// @Failure      401   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	fresh := h.sessions.New()
	identity, err := h.auth.Login(c.Request().Context(), fresh, req.Email, req.Password)
	if err != nil {
		return backendFailure(err, "Login failed")
	}
	h.sessions.Issue(c, fresh)

	return c.JSON(http.StatusOK, authResponse{User: identity, Redirect: identity.Role.Landing()})
}

// Register creates a client account. The caller logs in afterwards.
//
// @Summary      Sign up
// @Tags         auth
// @Accept       json,x-www-form-urlencoded
// @Produce      json
// @Param        body  body      registerRequest  true  "New account"
// @Success      201   {object}  authResponse
// @Failure      400   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /register [post]
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	user, err := h.auth.Register(c.Request().Context(), ports.SignupInput{
		Email:    req.Email,
		Password: req.Password,
		FullName: req.FullName,
	})
	if err != nil {
		return backendFailure(err, "Registration failed")
	}
	return c.JSON(http.StatusCreated, authResponse{User: user, Redirect: "/login"})
}

// Logout clears the session and sends the caller to the login page.
//
// @Summary      Log out
// @Tags         auth
// @Success      303
// @Router       /logout [post]
func (h *AuthHandler) Logout(c echo.Context) error {
	h.sessions.End(c, "logout")
	return c.Redirect(http.StatusSeeOther, "/login")
}

// Me returns the cached identity.
//
// @Summary      Current user
// @Tags         auth
// @Produce      json
// @Success      200  {object}  domain.Identity
// @Router       /me [get]
func (h *AuthHandler) Me(c echo.Context) error {
	sess, err := ctxSession(c)
	if err != nil {
		return err
	}
	identity, ok := sess.CurrentIdentity(c.Request().Context())
	if !ok {
		return c.Redirect(http.StatusSeeOther, "/login")
	}
	return c.JSON(http.StatusOK, identity)
}

// Refresh re-reads the identity from the backend.
//
// @Summary      Refresh current user
// @Tags         auth
// @Produce      json
// @Success      200  {object}  domain.Identity
// @Router       /me/refresh [post]
func (h *AuthHandler) Refresh(c echo.Context) error {
	sess, err := ctxSession(c)
	if err != nil {
		return err
	}
	identity, err := h.auth.Refresh(c.Request().Context(), sess)
	if err != nil {
		return backendFailure(err, "Could not load profile")
	}
	return c.JSON(http.StatusOK, identity)
}
