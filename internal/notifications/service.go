package notifications

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"cloud.google.com/go/pubsub/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/rationsetu/rationsetu-backend/pkg/db/models"
	pkgerrors "github.com/rationsetu/rationsetu-backend/pkg/errors"
	"github.com/rationsetu/rationsetu-backend/pkg/logger"
	"github.com/rationsetu/rationsetu-backend/pkg/pagination"
)

// Service defines the broadcast notification operations.
type Service interface {
	Create(ctx context.Context, createdBy uuid.UUID, req CreateNotificationRequest) (*NotificationDTO, error)
	Get(ctx context.Context, id uuid.UUID) (*NotificationDTO, error)
	List(ctx context.Context, params ListParams) (*ListResult, error)
	Update(ctx context.Context, id uuid.UUID, req UpdateNotificationRequest) (*NotificationDTO, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// Publisher is the slice of the pubsub publisher the service needs.
type Publisher interface {
	Publish(ctx context.Context, msg *pubsub.Message) *pubsub.PublishResult
}

// CreateNotificationRequest is the payload for a new broadcast.
type CreateNotificationRequest struct {
	Title   string `json:"title" validate:"required,max=200"`
	Message string `json:"message" validate:"required,max=2000"`
}

// UpdateNotificationRequest rewrites an existing broadcast.
type UpdateNotificationRequest struct {
	Title   string `json:"title" validate:"required,max=200"`
	Message string `json:"message" validate:"required,max=2000"`
}

// ListParams configures pagination for notifications.
type ListParams struct {
	Limit  int
	Cursor string
}

// ListResult wraps returned notifications and the cursor for the next page.
type ListResult struct {
	Items  []*NotificationDTO `json:"items"`
	Cursor string             `json:"cursor"`
}

// ServiceParams bundles the dependencies for the notifications service.
type ServiceParams struct {
	Repo      Repository
	Publisher Publisher
	Logger    *logger.Logger
}

type service struct {
	repo      Repository
	publisher Publisher
	logg      *logger.Logger
}

// NewService wires notifications dependencies. The publisher is optional;
// without one, broadcasts are stored but not fanned out.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "notifications repository required")
	}
	return &service{
		repo:      params.Repo,
		publisher: params.Publisher,
		logg:      params.Logger,
	}, nil
}

func (s *service) Create(ctx context.Context, createdBy uuid.UUID, req CreateNotificationRequest) (*NotificationDTO, error) {
	title := strings.TrimSpace(req.Title)
	message := strings.TrimSpace(req.Message)
	if title == "" || message == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "title and message are required")
	}

	notification := &models.Notification{
		Title:     title,
		Message:   message,
		CreatedBy: createdBy,
	}
	if err := s.repo.Create(ctx, notification); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create notification")
	}

	s.fanOut(ctx, notification)
	return FromModel(notification), nil
}

// fanOut pushes the broadcast to the notification topic. Delivery failures
// are logged, never surfaced; the row is already stored.
func (s *service) fanOut(ctx context.Context, notification *models.Notification) {
	if s.publisher == nil {
		return
	}

	payload, err := json.Marshal(FromModel(notification))
	if err != nil {
		if s.logg != nil {
			s.logg.Error(ctx, "notification payload marshal failed", err)
		}
		return
	}

	result := s.publisher.Publish(ctx, &pubsub.Message{
		Data:       payload,
		Attributes: map[string]string{"notification_id": notification.ID.String()},
	})
	if _, err := result.Get(ctx); err != nil && s.logg != nil {
		ctx = s.logg.WithField(ctx, "notification_id", notification.ID.String())
		s.logg.Error(ctx, "notification publish failed", err)
	}
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*NotificationDTO, error) {
	notification, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "notification not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load notification")
	}
	return FromModel(notification), nil
}

func (s *service) List(ctx context.Context, params ListParams) (*ListResult, error) {
	query := listNotificationsParams{Limit: params.Limit}
	if params.Cursor != "" {
		cursor, err := pagination.ParseCursor(params.Cursor)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
		}
		query.Cursor = cursor
	}

	rows, next, err := s.repo.List(ctx, query)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list notifications")
	}

	cursor := ""
	if next != nil {
		cursor = pagination.EncodeCursor(*next)
	}
	return &ListResult{Items: FromModels(rows), Cursor: cursor}, nil
}

func (s *service) Update(ctx context.Context, id uuid.UUID, req UpdateNotificationRequest) (*NotificationDTO, error) {
	title := strings.TrimSpace(req.Title)
	message := strings.TrimSpace(req.Message)
	if title == "" || message == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "title and message are required")
	}

	notification, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "notification not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load notification")
	}

	notification.Title = title
	notification.Message = message
	if err := s.repo.Update(ctx, notification); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update notification")
	}
	return FromModel(notification), nil
}

func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete notification")
	}
	if deleted == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "notification not found")
	}
	return nil
}
