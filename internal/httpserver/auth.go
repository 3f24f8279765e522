package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/storefront/internal/service"
	"github.com/Skotchmaster/storefront/internal/transport"
	"github.com/Skotchmaster/storefront/pkg/logging"
	"github.com/Skotchmaster/storefront/pkg/tokens"
)

type AuthHTTP struct {
	Svc *service.AuthService
}

func setAuthCookies(c echo.Context, res *service.LoginResult) {
	c.SetCookie(tokens.CreateCookie(tokens.AccessCookie, res.AccessToken, "/", res.AccessExp))
	c.SetCookie(tokens.CreateCookie(tokens.RefreshCookie, res.RefreshToken, "/", res.RefreshExp))
}

func clearAuthCookies(c echo.Context) {
	c.SetCookie(tokens.DeleteCookie(tokens.AccessCookie, "/"))
	c.SetCookie(tokens.DeleteCookie(tokens.RefreshCookie, "/"))
}

func (h *AuthHTTP) SignUp(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth.signup")

	var req transport.SignUpRequest
	if err := bind(c, &req); err != nil {
		return fail(l, "signup_error", err)
	}

	res, err := h.Svc.SignUp(ctx, service.SignUpInput{Name: req.Name, Email: req.Email, Password: req.Password})
	if err != nil {
		return fail(l, "signup_error", err)
	}
	setAuthCookies(c, res)

	l.Info("signup_success", "user_id", res.User.ID)
	return c.JSON(http.StatusCreated, echo.Map{
		"message": "success",
		"token":   res.AccessToken,
		"user":    res.User,
	})
}

func (h *AuthHTTP) SignIn(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth.signin")

	var req transport.SignInRequest
	if err := bind(c, &req); err != nil {
		return fail(l, "signin_error", err)
	}

	res, err := h.Svc.SignIn(ctx, req.Email, req.Password)
	if err != nil {
		return fail(l, "signin_error", err)
	}
	setAuthCookies(c, res)

	l.Info("signin_success", "user_id", res.User.ID)
	return c.JSON(http.StatusOK, echo.Map{
		"message": "success",
		"token":   res.AccessToken,
		"role":    res.User.Role,
	})
}

func (h *AuthHTTP) Refresh(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth.refresh")

	ck, err := c.Cookie(tokens.RefreshCookie)
	if err != nil || ck.Value == "" {
		return fail(l, "refresh_error", echo.NewHTTPError(http.StatusUnauthorized, "refresh token missing"))
	}
	res, err := h.Svc.Refresh(ctx, ck.Value)
	if err != nil {
		clearAuthCookies(c)
		return fail(l, "refresh_error", err)
	}
	setAuthCookies(c, res)

	l.Info("refresh_success")
	return c.JSON(http.StatusOK, echo.Map{
		"message": "success",
		"token":   res.AccessToken,
	})
}

func (h *AuthHTTP) LogOut(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth.logout")

	if ck, err := c.Cookie(tokens.RefreshCookie); err == nil && ck.Value != "" {
		if err := h.Svc.LogOut(ctx, ck.Value); err != nil {
			clearAuthCookies(c)
			return fail(l, "logout_error", err)
		}
	}
	clearAuthCookies(c)

	l.Info("logout_success")
	return c.JSON(http.StatusOK, echo.Map{"message": "logged out"})
}

func (h *AuthHTTP) ChangePassword(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth.change_password")

	userID, err := currentUser(c)
	if err != nil {
		return fail(l, "change_password_error", err)
	}
	var req transport.ChangePasswordRequest
	if err := bind(c, &req); err != nil {
		return fail(l, "change_password_error", err)
	}

	res, err := h.Svc.ChangePassword(ctx, userID, req.CurrentPassword, req.Password)
	if err != nil {
		return fail(l, "change_password_error", err)
	}
	setAuthCookies(c, res)

	l.Info("change_password_success")
	return c.JSON(http.StatusOK, echo.Map{
		"message": "success",
		"token":   res.AccessToken,
	})
}
