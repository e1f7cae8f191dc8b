package notifications

import (
	"time"

	"github.com/google/uuid"

	"github.com/rationsetu/rationsetu-backend/pkg/db/models"
)

// NotificationDTO is the transport shape for a broadcast notification.
type NotificationDTO struct {
	ID        uuid.UUID `json:"id"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	CreatedBy uuid.UUID `json:"created_by"`
	CreatedAt time.Time `json:"created_at"`
}

func FromModel(n *models.Notification) *NotificationDTO {
	if n == nil {
		return nil
	}

	return &NotificationDTO{
		ID:        n.ID,
		Title:     n.Title,
		Message:   n.Message,
		CreatedBy: n.CreatedBy,
		CreatedAt: n.CreatedAt,
	}
}

func FromModels(notificationModels []models.Notification) []*NotificationDTO {
	out := make([]*NotificationDTO, 0, len(notificationModels))
	for i := range notificationModels {
		out = append(out, FromModel(&notificationModels[i]))
	}
	return out
}
