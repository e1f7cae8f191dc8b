package users

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/rationsetu/rationsetu-backend/pkg/enums"
	pkgerrors "github.com/rationsetu/rationsetu-backend/pkg/errors"
)

// Service defines the directory operations exposed to controllers.
type Service interface {
	ListUsers(ctx context.Context) ([]*UserDTO, error)
	ListVillageAdmins(ctx context.Context) ([]*UserDTO, error)
	ListVillageUsers(ctx context.Context, village string) ([]*UserDTO, error)
	MakeVillageAdmin(ctx context.Context, userID uuid.UUID) (*UserDTO, error)
}

type service struct {
	repo *Repository
}

// NewService constructs a users service bound to the given repository.
func NewService(repo *Repository) (Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "users repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) ListUsers(ctx context.Context) ([]*UserDTO, error) {
	rows, err := s.repo.ListByRole(ctx, enums.UserRoleUser)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list users")
	}
	return FromModels(rows), nil
}

func (s *service) ListVillageAdmins(ctx context.Context) ([]*UserDTO, error) {
	rows, err := s.repo.ListByRole(ctx, enums.UserRoleVillageAdmin)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list village admins")
	}
	return FromModels(rows), nil
}

func (s *service) ListVillageUsers(ctx context.Context, village string) ([]*UserDTO, error) {
	if village == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "village is required")
	}
	rows, err := s.repo.ListByVillage(ctx, village, enums.UserRoleUser)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list village users")
	}
	return FromModels(rows), nil
}

// MakeVillageAdmin promotes a regular user to village admin.
func (s *service) MakeVillageAdmin(ctx context.Context, userID uuid.UUID) (*UserDTO, error) {
	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup user")
	}
	if user.Role != enums.UserRoleUser {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "only regular users can be promoted")
	}
	if err := s.repo.UpdateRole(ctx, user.ID, enums.UserRoleVillageAdmin); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update role")
	}
	user.Role = enums.UserRoleVillageAdmin
	return FromModel(user), nil
}
