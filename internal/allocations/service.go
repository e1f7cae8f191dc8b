package allocations

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/multierr"
	"gorm.io/gorm"

	"github.com/rationsetu/rationsetu-backend/internal/stocks"
	"github.com/rationsetu/rationsetu-backend/internal/users"
	"github.com/rationsetu/rationsetu-backend/pkg/db"
	"github.com/rationsetu/rationsetu-backend/pkg/enums"
	pkgerrors "github.com/rationsetu/rationsetu-backend/pkg/errors"
)

// Actor identifies who is performing a transfer.
type Actor struct {
	ID      uuid.UUID
	Village string
}

// Service defines the stock transfer operations exposed to controllers.
type Service interface {
	AllocateToVillageAdmin(ctx context.Context, actorID uuid.UUID, req AllocateStockRequest) (*AllocationDTO, error)
	AllocateToUser(ctx context.Context, actor Actor, req AllocateToUserRequest) (*AllocationDTO, error)
	AllocateToUserBulk(ctx context.Context, actor Actor, req BulkAllocateRequest) ([]*AllocationDTO, error)
	ListForHolder(ctx context.Context, holderID uuid.UUID) ([]*AllocationDTO, error)
	ListVillageAdminAllocations(ctx context.Context) ([]*AllocationDTO, error)
}

type service struct {
	db *db.Client
}

// NewService constructs an allocations service over the database client.
// Transfers run inside transactions, so the service owns the client rather
// than a single repository.
func NewService(client *db.Client) (Service, error) {
	if client == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "database client required")
	}
	return &service{db: client}, nil
}

// AllocateToVillageAdmin debits the central stock and credits the village
// admin's balance in one transaction. A shortfall leaves both sides untouched.
func (s *service) AllocateToVillageAdmin(ctx context.Context, actorID uuid.UUID, req AllocateStockRequest) (*AllocationDTO, error) {
	if req.Quantity <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive")
	}

	var result *AllocationDTO
	err := s.db.WithTx(ctx, func(tx *gorm.DB) error {
		userRepo := users.NewRepository(tx)
		stockRepo := stocks.NewRepository(tx)
		allocationRepo := NewRepository(tx)

		holder, err := userRepo.FindByID(ctx, req.VillageAdminID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "village admin not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup village admin")
		}
		if holder.Role != enums.UserRoleVillageAdmin {
			return pkgerrors.New(pkgerrors.CodeNotFound, "village admin not found")
		}

		if _, err := stockRepo.FindByID(ctx, req.StockID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "stock not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup stock")
		}

		touched, err := stockRepo.DecrementQuantity(ctx, req.StockID, req.Quantity)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "debit stock")
		}
		if touched == 0 {
			return pkgerrors.New(pkgerrors.CodeConflict, "insufficient stock")
		}

		if err := allocationRepo.Grant(ctx, holder.ID, req.StockID, req.Quantity, actorID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "credit allocation")
		}

		allocation, err := allocationRepo.FindForHolder(ctx, holder.ID, req.StockID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "reload allocation")
		}
		result = FromModel(allocation)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// AllocateToUser debits the village admin's own balance and credits the
// user's, inside one transaction. The recipient must live in the actor's
// village.
func (s *service) AllocateToUser(ctx context.Context, actor Actor, req AllocateToUserRequest) (*AllocationDTO, error) {
	if req.Quantity <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive")
	}

	var result *AllocationDTO
	err := s.db.WithTx(ctx, func(tx *gorm.DB) error {
		allocation, err := s.transferToUser(ctx, tx, actor, req)
		if err != nil {
			return err
		}
		result = allocation
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// AllocateToUserBulk processes every line in a single transaction. Each line
// is checked against the balance as it stands after the lines before it, so
// two lines drawing on the same stock cannot jointly overdraw. Any failing
// line rolls back the whole batch, and all line failures are reported.
func (s *service) AllocateToUserBulk(ctx context.Context, actor Actor, req BulkAllocateRequest) ([]*AllocationDTO, error) {
	if len(req.Lines) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "at least one line is required")
	}
	for i, line := range req.Lines {
		if line.Quantity <= 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("line %d: quantity must be positive", i))
		}
	}

	var results []*AllocationDTO
	err := s.db.WithTx(ctx, func(tx *gorm.DB) error {
		var lineErrs error
		granted := make([]*AllocationDTO, 0, len(req.Lines))
		for i, line := range req.Lines {
			allocation, err := s.transferToUser(ctx, tx, actor, line)
			if err != nil {
				lineErrs = multierr.Append(lineErrs, fmt.Errorf("line %d: %w", i, err))
				continue
			}
			granted = append(granted, allocation)
		}
		if lineErrs != nil {
			return pkgerrors.Wrap(pkgerrors.CodeConflict, lineErrs, "bulk allocation failed").
				WithDetails(multierrMessages(lineErrs))
		}
		results = granted
		return nil
	})
	if err != nil {
		return nil, err
	}
	return results, nil
}

func (s *service) transferToUser(ctx context.Context, tx *gorm.DB, actor Actor, req AllocateToUserRequest) (*AllocationDTO, error) {
	userRepo := users.NewRepository(tx)
	allocationRepo := NewRepository(tx)

	recipient, err := userRepo.FindByID(ctx, req.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup user")
	}
	if recipient.Role != enums.UserRoleUser {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
	}
	if recipient.Village != actor.Village {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "recipient is outside your village")
	}

	touched, err := allocationRepo.DecrementQuantity(ctx, actor.ID, req.StockID, req.Quantity)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "debit allocation")
	}
	if touched == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "insufficient allocated stock")
	}

	if err := allocationRepo.Grant(ctx, recipient.ID, req.StockID, req.Quantity, actor.ID); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "credit allocation")
	}

	allocation, err := allocationRepo.FindForHolder(ctx, recipient.ID, req.StockID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "reload allocation")
	}
	return FromModel(allocation), nil
}

func (s *service) ListForHolder(ctx context.Context, holderID uuid.UUID) ([]*AllocationDTO, error) {
	rows, err := NewRepository(s.db.DB()).ListForHolder(ctx, holderID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list allocations")
	}
	return FromModels(rows), nil
}

func (s *service) ListVillageAdminAllocations(ctx context.Context) ([]*AllocationDTO, error) {
	rows, err := NewRepository(s.db.DB()).ListByHolderRole(ctx, enums.UserRoleVillageAdmin)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list village admin allocations")
	}
	return FromModels(rows), nil
}

func multierrMessages(err error) []string {
	parts := multierr.Errors(err)
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		out = append(out, part.Error())
	}
	return out
}
