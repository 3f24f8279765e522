package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/repo"
	"github.com/Skotchmaster/storefront/pkg/hash"
	"github.com/Skotchmaster/storefront/pkg/logging"
	middleware "github.com/Skotchmaster/storefront/pkg/middleware/auth"
	"github.com/Skotchmaster/storefront/pkg/tokens"
)

type AuthService struct {
	Repo          *repo.GormRepo
	AccessSecret  []byte
	RefreshSecret []byte
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
	Now           func() time.Time
}

type LoginResult struct {
	User         *models.User
	AccessToken  string
	RefreshToken string
	AccessExp    time.Time
	RefreshExp   time.Time
}

type SignUpInput struct {
	Name     string
	Email    string
	Password string
}

func (s *AuthService) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

func (s *AuthService) SignUp(ctx context.Context, in SignUpInput) (*LoginResult, error) {
	l := logging.FromContext(ctx).With("svc", "auth.signup")

	email := normalizeEmail(in.Email)
	if _, err := s.Repo.GetUserByEmail(ctx, email); err == nil {
		return nil, fmt.Errorf("%w: email already in use", ErrConflict)
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, storeErr(err, "user")
	}

	pwHash, err := hash.HashPassword(in.Password)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}
	user := &models.User{
		Name:         strings.TrimSpace(in.Name),
		Email:        email,
		PasswordHash: pwHash,
		Role:         models.RoleUser,
		IsActive:     true,
	}
	if err := s.Repo.CreateUser(ctx, user); err != nil {
		return nil, storeErr(err, "user")
	}

	l.Info("signup_success", "user_id", user.ID)
	return s.issue(ctx, user)
}

func (s *AuthService) SignIn(ctx context.Context, email, password string) (*LoginResult, error) {
	user, err := s.Repo.GetUserByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: incorrect email or password", ErrUnauthorized)
		}
		return nil, storeErr(err, "user")
	}
	if !hash.CheckPassword(user.PasswordHash, password) {
		return nil, fmt.Errorf("%w: incorrect email or password", ErrUnauthorized)
	}
	if user.Blocked || !user.IsActive {
		return nil, fmt.Errorf("%w: account is disabled", ErrForbidden)
	}
	return s.issue(ctx, user)
}

// Refresh rotates a refresh token: the old one is revoked and a new pair is issued.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*LoginResult, error) {
	claims, err := tokens.RefreshClaimsFromToken(refreshToken, s.RefreshSecret)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid refresh token", ErrUnauthorized)
	}
	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid refresh token", ErrUnauthorized)
	}
	user, err := s.Repo.GetUser(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: user no longer exists", ErrUnauthorized)
		}
		return nil, storeErr(err, "user")
	}

	now := s.now()
	res, next, err := s.tokens(user, now)
	if err != nil {
		return nil, err
	}
	if err := s.Repo.RotateRefreshToken(ctx, claims.ID, next, now); err != nil {
		if errors.Is(err, repo.ErrStale) {
			return nil, fmt.Errorf("%w: refresh token expired or revoked", ErrUnauthorized)
		}
		return nil, storeErr(err, "refresh token")
	}
	return res, nil
}

// RefreshPair adapts Refresh to the auth middleware.
func (s *AuthService) RefreshPair(ctx context.Context, refreshToken string) (*middleware.RefreshResult, error) {
	res, err := s.Refresh(ctx, refreshToken)
	if err != nil {
		return nil, err
	}
	return &middleware.RefreshResult{
		AccessToken:  res.AccessToken,
		RefreshToken: res.RefreshToken,
		AccessExp:    res.AccessExp,
		RefreshExp:   res.RefreshExp,
	}, nil
}

func (s *AuthService) LogOut(ctx context.Context, refreshToken string) error {
	return storeErr(s.Repo.RevokeRefreshToken(ctx, refreshToken), "refresh token")
}

func (s *AuthService) ChangePassword(ctx context.Context, userID uuid.UUID, current, next string) (*LoginResult, error) {
	user, err := s.Repo.GetUser(ctx, userID)
	if err != nil {
		return nil, storeErr(err, "user")
	}
	if !hash.CheckPassword(user.PasswordHash, current) {
		return nil, fmt.Errorf("%w: current password is incorrect", ErrUnauthorized)
	}
	pwHash, err := hash.HashPassword(next)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	// iat has second precision, so the stamp does too
	at := s.now().Truncate(time.Second)
	if err := s.Repo.ChangePassword(ctx, userID, pwHash, at); err != nil {
		return nil, storeErr(err, "user")
	}
	user.PasswordChangedAt = &at
	return s.issue(ctx, user)
}

// CheckSubject rejects tokens of deleted or blocked users and tokens issued before the last password change.
func (s *AuthService) CheckSubject(ctx context.Context, claims *tokens.AccessClaims) error {
	id, err := uuid.Parse(claims.Subject)
	if err != nil {
		return fmt.Errorf("%w: invalid token subject", ErrUnauthorized)
	}
	user, err := s.Repo.GetUser(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: user not found", ErrNotFound)
		}
		return storeErr(err, "user")
	}
	if user.Blocked || !user.IsActive {
		return fmt.Errorf("%w: account is disabled", ErrUnauthorized)
	}
	if user.PasswordChangedAt != nil && claims.IssuedAt != nil &&
		user.PasswordChangedAt.Truncate(time.Second).After(claims.IssuedAt.Time) {
		return fmt.Errorf("%w: password changed, sign in again", ErrUnauthorized)
	}
	claims.Role = user.Role
	return nil
}

func (s *AuthService) issue(ctx context.Context, user *models.User) (*LoginResult, error) {
	res, rt, err := s.tokens(user, s.now())
	if err != nil {
		return nil, err
	}
	if err := s.Repo.AddRefreshToken(ctx, rt); err != nil {
		return nil, storeErr(err, "refresh token")
	}
	return res, nil
}

func (s *AuthService) tokens(user *models.User, now time.Time) (*LoginResult, *models.RefreshToken, error) {
	accessExp := now.Add(s.AccessTTL)
	access, err := tokens.NewAccessToken(s.AccessSecret, user.ID.String(), user.Role, now, accessExp)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: sign access token: %v", ErrUpstream, err)
	}
	refreshExp := now.Add(s.RefreshTTL)
	refresh, jti, err := tokens.NewRefreshToken(s.RefreshSecret, user.ID.String(), now, refreshExp)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: sign refresh token: %v", ErrUpstream, err)
	}

	rt := &models.RefreshToken{
		Token:     tokens.Sha256Hex(refresh),
		UserID:    user.ID,
		JTI:       jti,
		ExpiresAt: refreshExp.Unix(),
	}
	return &LoginResult{
		User:         user,
		AccessToken:  access,
		RefreshToken: refresh,
		AccessExp:    accessExp,
		RefreshExp:   refreshExp,
	}, rt, nil
}

func normalizeEmail(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
