package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/campusbuzz/event-registration/internal/auth"
	"github.com/campusbuzz/event-registration/internal/middleware"
	"github.com/campusbuzz/event-registration/internal/model"
	"github.com/campusbuzz/event-registration/internal/repository"
	"github.com/campusbuzz/event-registration/internal/service"
)

// AuthUserStore is what the auth endpoints need from the user
// repository. *repository.UserRepo satisfies it.
type AuthUserStore interface {
	Create(ctx context.Context, name, email, passwordHash string, role model.Role) (model.User, error)
	GetByEmail(ctx context.Context, email string) (model.User, error)
	GetByID(ctx context.Context, id uint64) (model.User, error)
}

// AuthHandler bundles dependencies for the auth endpoints.
type AuthHandler struct {
	Users      AuthUserStore
	Tokens     *auth.TokenService
	Reset      *service.ResetService
	BcryptCost int
}

func NewAuthHandler(users AuthUserStore, tokens *auth.TokenService, reset *service.ResetService, bcryptCost int) *AuthHandler {
	return &AuthHandler{Users: users, Tokens: tokens, Reset: reset, BcryptCost: bcryptCost}
}

// ----- DTOs -----

type signupReq struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"` // optional; defaults to student
}
type loginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}
type resetReq struct {
	Password string `json:"password"`
}
type forgotReq struct {
	Email string `json:"email"`
}

type userPart struct {
	ID    uint64 `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}
type authResp struct {
	Token string   `json:"token"`
	User  userPart `json:"user"`
}

func sessionResponse(c echo.Context, status int, tokens *auth.TokenService, u model.User) error {
	token, err := tokens.Issue(u)
	if err != nil {
		c.Logger().Errorf("issue session token: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not issue session"})
	}
	return c.JSON(status, authResp{
		Token: token,
		User:  userPart{ID: u.ID, Name: u.Name, Email: u.Email, Role: u.Role.String()},
	})
}

// Signup creates a user and issues a session immediately.
func (h *AuthHandler) Signup(c echo.Context) error {
	var req signupReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Name == "" || req.Email == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name, email and password required"})
	}
	role, err := model.ParseRole(req.Role)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown role"})
	}

	hash, err := auth.HashPassword(req.Password, h.BcryptCost)
	if err != nil {
		c.Logger().Errorf("hash password: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create user failed"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u, err := h.Users.Create(ctx, req.Name, req.Email, hash, role)
	if err != nil {
		if errors.Is(err, repository.ErrEmailExists) {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "user already exists"})
		}
		c.Logger().Errorf("create user: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create user failed"})
	}
	return sessionResponse(c, http.StatusCreated, h.Tokens, u)
}

// Login verifies credentials and issues a session. Unknown email and
// wrong password produce the same 401.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Email == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "email and password required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u, err := h.Users.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
		}
		c.Logger().Errorf("load user: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "login failed"})
	}
	if !auth.VerifyPassword(u.PasswordHash, req.Password) {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
	}
	return sessionResponse(c, http.StatusOK, h.Tokens, u)
}

// ForgotPassword starts the reset flow. The response body is identical
// whether or not the email belongs to an account, so the endpoint
// cannot be used to enumerate registered addresses. Only a mail
// delivery failure breaks the generic shape.
func (h *AuthHandler) ForgotPassword(c echo.Context) error {
	var req forgotReq
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.Email) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "email required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	if err := h.Reset.Issue(ctx, req.Email); err != nil {
		if errors.Is(err, service.ErrDeliveryFailed) {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "email could not be sent"})
		}
		c.Logger().Errorf("issue reset token: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "request failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"message": "If the email is registered, a password reset link has been sent.",
	})
}

// ResetPassword consumes the token from the URL and installs the new
// password, then logs the user straight in with a fresh session.
func (h *AuthHandler) ResetPassword(c echo.Context) error {
	token := c.Param("token")
	var req resetReq
	if err := c.Bind(&req); err != nil || req.Password == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "password required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u, err := h.Reset.Consume(ctx, token, req.Password)
	if err != nil {
		if errors.Is(err, repository.ErrResetTokenInvalid) {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid or expired reset token"})
		}
		c.Logger().Errorf("consume reset token: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "reset failed"})
	}
	return sessionResponse(c, http.StatusOK, h.Tokens, u)
}

// Me returns the authenticated principal's account.
func (h *AuthHandler) Me(c echo.Context) error {
	p, ok := middleware.GetPrincipal(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u, err := h.Users.GetByID(ctx, p.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
		}
		c.Logger().Errorf("load user: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load user failed"})
	}
	return c.JSON(http.StatusOK, userPart{ID: u.ID, Name: u.Name, Email: u.Email, Role: u.Role.String()})
}
