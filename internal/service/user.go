package service

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/query"
	"github.com/Skotchmaster/storefront/internal/repo"
	"github.com/Skotchmaster/storefront/internal/transport"
	"github.com/Skotchmaster/storefront/pkg/hash"
)

var userQuery = query.Options{
	Columns: []string{
		"id", "name", "email", "role", "is_active", "verified", "blocked", "created_at", "updated_at",
	},
	SearchColumns: []string{"name", "email"},
}

// UserService is the admin view over accounts.
type UserService struct {
	Repo *repo.GormRepo
}

func (s *UserService) List(ctx context.Context, params url.Values) (query.Page[models.User], error) {
	q := query.New(params, userQuery).All()
	items, total, err := s.Repo.ListUsers(ctx, q)
	if err != nil {
		return query.Page[models.User]{}, storeErr(err, "users")
	}
	return query.NewPage(q, items, total), nil
}

func (s *UserService) Get(ctx context.Context, id uuid.UUID) (*models.User, error) {
	u, err := s.Repo.GetUser(ctx, id)
	return u, storeErr(err, "user")
}

func (s *UserService) Create(ctx context.Context, req transport.CreateUserRequest) (*models.User, error) {
	email := normalizeEmail(req.Email)
	if _, err := s.Repo.GetUserByEmail(ctx, email); err == nil {
		return nil, fmt.Errorf("%w: email already in use", ErrConflict)
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, storeErr(err, "user")
	}

	pwHash, err := hash.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}
	role := req.Role
	if role == "" {
		role = models.RoleUser
	}
	u := &models.User{
		Name:         strings.TrimSpace(req.Name),
		Email:        email,
		PasswordHash: pwHash,
		Role:         role,
		IsActive:     true,
	}
	if err := s.Repo.CreateUser(ctx, u); err != nil {
		return nil, storeErr(err, "user")
	}
	return u, nil
}

func (s *UserService) Update(ctx context.Context, id uuid.UUID, req transport.PatchUserRequest) (*models.User, error) {
	fields := map[string]any{}
	if req.Name != nil {
		fields["name"] = strings.TrimSpace(*req.Name)
	}
	if req.Email != nil {
		fields["email"] = normalizeEmail(*req.Email)
	}
	if req.Role != nil {
		fields["role"] = *req.Role
	}
	if req.IsActive != nil {
		fields["is_active"] = *req.IsActive
	}
	if req.Blocked != nil {
		fields["blocked"] = *req.Blocked
	}
	if req.Verified != nil {
		fields["verified"] = *req.Verified
	}
	if len(fields) == 0 {
		return s.Get(ctx, id)
	}
	u, err := s.Repo.UpdateUser(ctx, id, fields)
	return u, storeErr(err, "user")
}

func (s *UserService) Delete(ctx context.Context, id uuid.UUID) error {
	return storeErr(s.Repo.DeleteUser(ctx, id), "user")
}
