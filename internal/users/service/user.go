package service

import (
	"context"
	"errors"
	"sync"

	userserrors "github.com/Lala-Rental/lala-rental-backend/internal/users/errors"
	"github.com/Lala-Rental/lala-rental-backend/internal/users/repository"
	"github.com/Lala-Rental/lala-rental-backend/internal/users/validator"
	"github.com/Lala-Rental/lala-rental-backend/pkg/auth"
	"github.com/Lala-Rental/lala-rental-backend/pkg/config"
	apperrors "github.com/Lala-Rental/lala-rental-backend/pkg/errors"
	"github.com/Lala-Rental/lala-rental-backend/pkg/model"
	"github.com/Lala-Rental/lala-rental-backend/pkg/sanitizer"
)

const forbiddenMessage = "You don't have right to this resources"

type UserService interface {
	// Upsert registers user on first sign-in or refreshes its profile.
	Upsert(ctx context.Context, user *model.User) (*model.User, bool, error)
	Lookup(ctx context.Context, id string) (*model.User, error)
	GetByID(ctx context.Context, actor *auth.Actor, id string) (*model.User, error)
	List(ctx context.Context, actor *auth.Actor, limit int, offset int64) ([]*model.User, int64, error)
	UpdateRole(ctx context.Context, actor *auth.Actor, id string, update *model.RoleUpdate) (*model.User, error)
	Delete(ctx context.Context, actor *auth.Actor, id string) error
}

type userService struct {
	repo      repository.UserRepository
	validator *validator.UserValidator
	cfg       *config.Config
}

func NewUserService(repo repository.UserRepository, validator *validator.UserValidator, cfg *config.Config) UserService {
	return &userService{
		repo:      repo,
		validator: validator,
		cfg:       cfg,
	}
}

func (s *userService) Upsert(ctx context.Context, user *model.User) (*model.User, bool, error) {
	user.Email = sanitizer.NormalizeEmail(user.Email)
	user.Name = sanitizer.NormalizeName(user.Name)
	if user.Role == "" {
		user.Role = model.RoleRenter
	}
	if err := s.validator.Validate(user); err != nil {
		return nil, false, apperrors.Validation("User validation failed", map[string]any{"errors": err})
	}

	stored, created, err := s.repo.UpsertByEmail(ctx, user)
	if err != nil {
		s.cfg.Log.Error("Failed to upsert user", "email", user.Email, "error", err)
		return nil, false, apperrors.Internal("Failed to save user", err)
	}

	if created {
		s.cfg.Log.Info("User registered", "id", stored.ID, "role", stored.Role)
	}
	return stored, created, nil
}

func (s *userService) Lookup(ctx context.Context, id string) (*model.User, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("User ID cannot be empty")
	}
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, s.translate(err, "Failed to retrieve user")
	}
	return user, nil
}

func (s *userService) GetByID(ctx context.Context, actor *auth.Actor, id string) (*model.User, error) {
	if actor == nil {
		return nil, apperrors.Unauthorized("Authentication required")
	}
	if !actor.IsAdmin() && actor.ID != id {
		return nil, apperrors.Forbidden(forbiddenMessage)
	}
	return s.Lookup(ctx, id)
}

func (s *userService) List(ctx context.Context, actor *auth.Actor, limit int, offset int64) ([]*model.User, int64, error) {
	if !actor.IsAdmin() {
		return nil, 0, apperrors.Forbidden(forbiddenMessage)
	}

	var count int64
	var users []*model.User
	var errCount, errFind error
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		count, errCount = s.repo.Count(ctx)
		if errCount != nil {
			s.cfg.Log.Error("Failed to count users", "error", errCount)
			errCount = apperrors.Internal("Failed to count users", errCount)
		}
	}()

	go func() {
		defer wg.Done()
		users, errFind = s.repo.FindAll(ctx, limit, offset)
		if errFind != nil {
			s.cfg.Log.Error("Failed to list users", "error", errFind)
			errFind = apperrors.Internal("Failed to retrieve users", errFind)
		}
	}()

	wg.Wait()
	if errCount != nil {
		return nil, 0, errCount
	}
	if errFind != nil {
		return nil, 0, errFind
	}
	return users, count, nil
}

func (s *userService) UpdateRole(ctx context.Context, actor *auth.Actor, id string, update *model.RoleUpdate) (*model.User, error) {
	if !actor.IsAdmin() {
		return nil, apperrors.Forbidden(forbiddenMessage)
	}
	if err := s.validator.ValidateRoleUpdate(update); err != nil {
		return nil, apperrors.Validation("Invalid role", map[string]any{"errors": err})
	}
	role, _ := model.ParseRole(update.Role)
	if actor.ID == id && role != model.RoleAdmin {
		return nil, apperrors.InvalidInput("Admins cannot demote themselves")
	}

	user, err := s.repo.UpdateRole(ctx, id, role)
	if err != nil {
		return nil, s.translate(err, "Failed to update user role")
	}

	s.cfg.Log.Info("User role updated", "id", id, "role", role, "actor_id", actor.ID)
	return user, nil
}

func (s *userService) Delete(ctx context.Context, actor *auth.Actor, id string) error {
	if !actor.IsAdmin() {
		return apperrors.Forbidden(forbiddenMessage)
	}
	if actor.ID == id {
		return apperrors.InvalidInput("Admins cannot delete their own account")
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return s.translate(err, "Failed to delete user")
	}

	s.cfg.Log.Info("User deleted", "id", id, "actor_id", actor.ID)
	return nil
}

func (s *userService) translate(err error, fallback string) error {
	switch {
	case errors.Is(err, userserrors.ErrNotFound):
		return apperrors.NotFound("User not found")
	case errors.Is(err, userserrors.ErrInvalidID):
		return apperrors.InvalidInput("Invalid user ID format")
	default:
		s.cfg.Log.Error(fallback, "error", err)
		return apperrors.Internal(fallback, err)
	}
}
