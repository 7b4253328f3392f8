package validator

import (
	"time"

	"github.com/skillswap/swap-service/internal/models"
)

// UserCreateRequest provisions a local profile for an externally
// authenticated identity.
type UserCreateRequest struct {
	ExternalID    string              `json:"external_id" validate:"required,max=255"`
	Name          string              `json:"name" validate:"required,min=1,max=100"`
	Email         string              `json:"email" validate:"required,email"`
	Location      string              `json:"location" validate:"omitempty,max=200"`
	Availability  models.Availability `json:"availability" validate:"omitempty,availability"`
	SkillsOffered []uint              `json:"skills_offered" validate:"omitempty,dive,min=1"`
	SkillsWanted  []uint              `json:"skills_wanted" validate:"omitempty,dive,min=1"`
}

// UserUpdateRequest carries partial profile changes; nil means unchanged.
type UserUpdateRequest struct {
	Name          *string              `json:"name" validate:"omitempty,min=1,max=100"`
	Location      *string              `json:"location" validate:"omitempty,max=200"`
	Availability  *models.Availability `json:"availability" validate:"omitempty,availability"`
	IsPublic      *bool                `json:"is_public"`
	SkillsOffered []uint               `json:"skills_offered" validate:"omitempty,dive,min=1"`
	SkillsWanted  []uint               `json:"skills_wanted" validate:"omitempty,dive,min=1"`
}

type UserRoleUpdateRequest struct {
	Role models.UserRole `json:"role" validate:"required,user_role"`
}

type SkillCreateRequest struct {
	Name        string `json:"name" validate:"required,skill_name"`
	Description string `json:"description" validate:"omitempty,max=1000"`
	IsGlobal    *bool  `json:"is_global"`
}

type SkillUpdateRequest struct {
	Name        *string `json:"name" validate:"omitempty,skill_name"`
	Description *string `json:"description" validate:"omitempty,max=1000"`
	IsGlobal    *bool   `json:"is_global"`
}

type SwapCreateRequest struct {
	ReceiverID       uint   `json:"receiver_id" validate:"required"`
	SkillOfferedID   uint   `json:"skill_offered_id" validate:"required"`
	SkillRequestedID uint   `json:"skill_requested_id" validate:"required"`
	Message          string `json:"message" validate:"omitempty,max=500"`
}

type FeedbackCreateRequest struct {
	RevieweeID uint   `json:"reviewee_id" validate:"required"`
	Rating     int    `json:"rating" validate:"required,rating_range"`
	Comment    string `json:"comment" validate:"omitempty,max=500"`
}

type FeedbackUpdateRequest struct {
	Rating  *int    `json:"rating" validate:"omitempty,rating_range"`
	Comment *string `json:"comment" validate:"omitempty,max=500"`
}

type NotificationCreateRequest struct {
	Title    string                      `json:"title" validate:"required,min=1,max=200"`
	Message  string                      `json:"message" validate:"required,min=1,max=2000"`
	Type     models.NotificationType     `json:"type" validate:"required,notification_type"`
	Priority models.NotificationPriority `json:"priority" validate:"omitempty,notification_priority"`

	// RecipientID is nil for platform-wide broadcasts.
	RecipientID *uint      `json:"recipient_id"`
	ExpiresAt   *time.Time `json:"expires_at" validate:"omitempty,future_date"`
}

// NotificationUpdateRequest carries partial admin edits; nil means unchanged.
type NotificationUpdateRequest struct {
	Title     *string                      `json:"title" validate:"omitempty,min=1,max=200"`
	Message   *string                      `json:"message" validate:"omitempty,min=1,max=2000"`
	Priority  *models.NotificationPriority `json:"priority" validate:"omitempty,notification_priority"`
	IsActive  *bool                        `json:"is_active"`
	ExpiresAt *time.Time                   `json:"expires_at" validate:"omitempty,future_date"`
}

type ReportGenerateRequest struct {
	Type     models.ReportType `json:"type" validate:"required,report_type"`
	DateFrom *time.Time        `json:"date_from"`
	DateTo   *time.Time        `json:"date_to"`
}
