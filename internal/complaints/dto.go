package complaints

import (
	"time"

	"github.com/google/uuid"

	"github.com/rationsetu/rationsetu-backend/pkg/db/models"
	"github.com/rationsetu/rationsetu-backend/pkg/enums"
)

// CreateComplaintRequest is the payload for filing a complaint.
type CreateComplaintRequest struct {
	Subject     string `json:"subject" validate:"required,max=200"`
	Description string `json:"description" validate:"required,max=2000"`
}

// ResolveComplaintRequest closes a complaint with an admin response.
type ResolveComplaintRequest struct {
	Status   enums.ComplaintStatus `json:"status" validate:"required"`
	Response string                `json:"response" validate:"required,max=2000"`
}

// ComplaintDTO is the transport shape for a complaint.
type ComplaintDTO struct {
	ID          uuid.UUID             `json:"id"`
	UserID      uuid.UUID             `json:"user_id"`
	UserName    string                `json:"user_name,omitempty"`
	Village     string                `json:"village"`
	Subject     string                `json:"subject"`
	Description string                `json:"description"`
	Status      enums.ComplaintStatus `json:"status"`
	Response    *string               `json:"response,omitempty"`
	ResolvedBy  *uuid.UUID            `json:"resolved_by,omitempty"`
	ResolvedAt  *time.Time            `json:"resolved_at,omitempty"`
	CreatedAt   time.Time             `json:"created_at"`
}

func FromModel(c *models.Complaint) *ComplaintDTO {
	if c == nil {
		return nil
	}

	dto := &ComplaintDTO{
		ID:          c.ID,
		UserID:      c.UserID,
		Village:     c.Village,
		Subject:     c.Subject,
		Description: c.Description,
		Status:      c.Status,
		Response:    c.Response,
		ResolvedBy:  c.ResolvedBy,
		ResolvedAt:  c.ResolvedAt,
		CreatedAt:   c.CreatedAt,
	}
	if c.User != nil {
		dto.UserName = c.User.Name
	}
	return dto
}

func FromModels(complaintModels []models.Complaint) []*ComplaintDTO {
	out := make([]*ComplaintDTO, 0, len(complaintModels))
	for i := range complaintModels {
		out = append(out, FromModel(&complaintModels[i]))
	}
	return out
}
