package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/storefront/pkg/tokens"
)

const (
	RoleAdmin = "admin"
	RoleUser  = "user"

	userIDKey = "user_id"
	roleKey   = "role"
)

var ErrNoIdentity = errors.New("unauthorized")

// SubjectChecker decides whether a verified token still belongs to a usable account.
type SubjectChecker func(ctx context.Context, claims *tokens.AccessClaims) error

type RefreshResult struct {
	AccessToken  string
	RefreshToken string
	AccessExp    time.Time
	RefreshExp   time.Time
}

type Refresher interface {
	Refresh(ctx context.Context, refreshToken string) (*RefreshResult, error)
}

type AutoRefreshMiddleware struct {
	JWTSecret []byte
	Check     SubjectChecker
	Refresher Refresher
}

func NewAutoRefreshMiddleware(secret []byte, check SubjectChecker, refresher Refresher) *AutoRefreshMiddleware {
	return &AutoRefreshMiddleware{
		JWTSecret: secret,
		Check:     check,
		Refresher: refresher,
	}
}

type ValidatorFunc func(claims *tokens.AccessClaims) error

func (m *AutoRefreshMiddleware) RequireAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return m.requireAuthWithValidator(next, nil)
}

func (m *AutoRefreshMiddleware) RequireAdmin(next echo.HandlerFunc) echo.HandlerFunc {
	return m.RequireRole(RoleAdmin)(next)
}

func (m *AutoRefreshMiddleware) RequireRole(roles ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return m.requireAuthWithValidator(next, func(claims *tokens.AccessClaims) error {
			for _, r := range roles {
				if claims.Role == r {
					return nil
				}
			}
			return echo.NewHTTPError(http.StatusForbidden, "you are not allowed to access this route")
		})
	}
}

func (m *AutoRefreshMiddleware) requireAuthWithValidator(next echo.HandlerFunc, validator ValidatorFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		raw, fromCookie := bearerOrCookie(c)
		if raw == "" {
			return echo.NewHTTPError(http.StatusUnauthorized, "missing access token")
		}

		claims, err := tokens.AccessClaimsFromToken(raw, m.JWTSecret)
		if err != nil {
			if !fromCookie || !errors.Is(err, jwt.ErrTokenExpired) || m.Refresher == nil {
				if fromCookie {
					clearAuthCookies(c)
				}
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid access token")
			}
			claims, err = m.refresh(c)
			if err != nil {
				return err
			}
		}

		if m.Check != nil {
			if err := m.Check(c.Request().Context(), claims); err != nil {
				return err
			}
		}
		if validator != nil {
			if err := validator(claims); err != nil {
				return err
			}
		}

		setUserContext(c, claims)
		return next(c)
	}
}

func (m *AutoRefreshMiddleware) refresh(c echo.Context) (*tokens.AccessClaims, error) {
	refreshCookie, err := c.Cookie(tokens.RefreshCookie)
	if err != nil || refreshCookie.Value == "" {
		clearAuthCookies(c)
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "refresh token missing")
	}

	res, err := m.Refresher.Refresh(c.Request().Context(), refreshCookie.Value)
	if err != nil {
		clearAuthCookies(c)
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "refresh failed").SetInternal(err)
	}

	c.SetCookie(tokens.CreateCookie(tokens.AccessCookie, res.AccessToken, "/", res.AccessExp))
	c.SetCookie(tokens.CreateCookie(tokens.RefreshCookie, res.RefreshToken, "/", res.RefreshExp))

	claims, err := tokens.AccessClaimsFromToken(res.AccessToken, m.JWTSecret)
	if err != nil {
		clearAuthCookies(c)
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "new access token invalid")
	}
	return claims, nil
}

func bearerOrCookie(c echo.Context) (string, bool) {
	if h := c.Request().Header.Get(echo.HeaderAuthorization); h != "" {
		if after, ok := strings.CutPrefix(h, "Bearer "); ok {
			return strings.TrimSpace(after), false
		}
	}
	if ck, err := c.Cookie(tokens.AccessCookie); err == nil && ck.Value != "" {
		return ck.Value, true
	}
	return "", false
}

func clearAuthCookies(c echo.Context) {
	c.SetCookie(tokens.DeleteCookie(tokens.AccessCookie, "/"))
	c.SetCookie(tokens.DeleteCookie(tokens.RefreshCookie, "/"))
}

func setUserContext(c echo.Context, claims *tokens.AccessClaims) {
	c.Set(userIDKey, claims.Subject)
	c.Set(roleKey, claims.Role)
}

func UserID(c echo.Context) (uuid.UUID, error) {
	s, ok := c.Get(userIDKey).(string)
	if !ok || s == "" {
		return uuid.Nil, ErrNoIdentity
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, ErrNoIdentity
	}
	return id, nil
}

func Role(c echo.Context) string {
	r, _ := c.Get(roleKey).(string)
	return r
}

func IsAdmin(c echo.Context) bool {
	return Role(c) == RoleAdmin
}

// RefresherFunc lets a plain function serve as a Refresher.
type RefresherFunc func(ctx context.Context, refreshToken string) (*RefreshResult, error)

func (f RefresherFunc) Refresh(ctx context.Context, refreshToken string) (*RefreshResult, error) {
	return f(ctx, refreshToken)
}
