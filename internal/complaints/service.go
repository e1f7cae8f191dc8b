package complaints

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/rationsetu/rationsetu-backend/pkg/db/models"
	"github.com/rationsetu/rationsetu-backend/pkg/enums"
	pkgerrors "github.com/rationsetu/rationsetu-backend/pkg/errors"
)

// Service defines the complaint operations exposed to controllers.
type Service interface {
	Create(ctx context.Context, userID uuid.UUID, village string, req CreateComplaintRequest) (*ComplaintDTO, error)
	ListMine(ctx context.Context, userID uuid.UUID) ([]*ComplaintDTO, error)
	ListAll(ctx context.Context, status *enums.ComplaintStatus) ([]*ComplaintDTO, error)
	Resolve(ctx context.Context, adminID, complaintID uuid.UUID, req ResolveComplaintRequest) (*ComplaintDTO, error)
}

type service struct {
	repo *Repository
	now  func() time.Time
}

// NewService constructs a complaints service bound to the given repository.
func NewService(repo *Repository) (Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "complaints repository required")
	}
	return &service{repo: repo, now: time.Now}, nil
}

func (s *service) Create(ctx context.Context, userID uuid.UUID, village string, req CreateComplaintRequest) (*ComplaintDTO, error) {
	subject := strings.TrimSpace(req.Subject)
	description := strings.TrimSpace(req.Description)
	if subject == "" || description == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "subject and description are required")
	}

	complaint := &models.Complaint{
		UserID:      userID,
		Village:     village,
		Subject:     subject,
		Description: description,
		Status:      enums.ComplaintStatusPending,
	}
	if err := s.repo.Create(ctx, complaint); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create complaint")
	}
	return FromModel(complaint), nil
}

func (s *service) ListMine(ctx context.Context, userID uuid.UUID) ([]*ComplaintDTO, error) {
	rows, err := s.repo.ListForUser(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list complaints")
	}
	return FromModels(rows), nil
}

func (s *service) ListAll(ctx context.Context, status *enums.ComplaintStatus) ([]*ComplaintDTO, error) {
	if status != nil && !status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid complaint status")
	}
	rows, err := s.repo.ListAll(ctx, status)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list complaints")
	}
	return FromModels(rows), nil
}

// Resolve closes a pending complaint with the admin's response. A complaint
// resolves exactly once.
func (s *service) Resolve(ctx context.Context, adminID, complaintID uuid.UUID, req ResolveComplaintRequest) (*ComplaintDTO, error) {
	if req.Status != enums.ComplaintStatusResolved {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "status must be resolved")
	}
	response := strings.TrimSpace(req.Response)
	if response == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "response is required")
	}

	complaint, err := s.repo.FindByID(ctx, complaintID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "complaint not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup complaint")
	}
	if complaint.Status == enums.ComplaintStatusResolved {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "complaint already resolved")
	}

	now := s.now().UTC()
	complaint.Status = enums.ComplaintStatusResolved
	complaint.Response = &response
	complaint.ResolvedBy = &adminID
	complaint.ResolvedAt = &now
	if err := s.repo.Save(ctx, complaint); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "save complaint")
	}
	return FromModel(complaint), nil
}
