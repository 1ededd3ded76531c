package services

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/tbourn/go-pickset-backend/internal/domain"
	"github.com/tbourn/go-pickset-backend/internal/repo"
)

// AccountService bootstraps projects and users for the CLI and tests.
// Authentication lives outside this service.
type AccountService struct {
	DB *gorm.DB
}

// EnsureProject returns the project named name, creating it if needed.
func (s *AccountService) EnsureProject(ctx context.Context, name string) (*domain.Project, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrInvalidArgument
	}
	p, err := repo.GetProjectByName(ctx, s.DB, name)
	if err == nil {
		return p, nil
	}
	if !isNotFound(err) {
		return nil, err
	}
	p, err = repo.CreateProject(ctx, s.DB, name)
	if errors.Is(err, repo.ErrDuplicate) {
		// Lost a race with another creator.
		return repo.GetProjectByName(ctx, s.DB, name)
	}
	return p, err
}

// EnsureUser returns the user named username, creating it with role if
// needed. An existing user keeps its stored role.
func (s *AccountService) EnsureUser(ctx context.Context, username, role string) (*domain.User, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, ErrInvalidArgument
	}
	switch role {
	case domain.RoleAdmin, domain.RoleAnnotator, domain.RoleObserver:
	default:
		return nil, ErrInvalidRole
	}
	u, err := repo.GetUserByName(ctx, s.DB, username)
	if err == nil {
		return u, nil
	}
	if !isNotFound(err) {
		return nil, err
	}
	u, err = repo.CreateUser(ctx, s.DB, username, role)
	if errors.Is(err, repo.ErrDuplicate) {
		return repo.GetUserByName(ctx, s.DB, username)
	}
	return u, err
}

// GetUser returns a user by ID.
func (s *AccountService) GetUser(ctx context.Context, id string) (*domain.User, error) {
	u, err := repo.GetUser(ctx, s.DB, id)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return u, nil
}
