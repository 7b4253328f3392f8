package models

import (
	"time"
)

type NotificationType string

const (
	NotificationDowntimeAlert    NotificationType = "downtime_alerts"
	NotificationFeatureUpdate    NotificationType = "feature_updates"
	NotificationSwapRequest      NotificationType = "swap_request"
	NotificationSwapAccepted     NotificationType = "swap_accepted"
	NotificationSwapRejected     NotificationType = "swap_rejected"
	NotificationSwapCompleted    NotificationType = "swap_completed"
	NotificationSwapCancelled    NotificationType = "swap_cancelled"
	NotificationFeedbackReceived NotificationType = "feedback_received"
	NotificationSystem           NotificationType = "system"
)

// PlatformNotificationTypes are the only types admins may broadcast without a
// recipient.
var PlatformNotificationTypes = []NotificationType{
	NotificationDowntimeAlert,
	NotificationFeatureUpdate,
	NotificationSystem,
}

type NotificationPriority string

const (
	PriorityLow    NotificationPriority = "low"
	PriorityMedium NotificationPriority = "medium"
	PriorityHigh   NotificationPriority = "high"
	PriorityUrgent NotificationPriority = "urgent"
)

type Notification struct {
	ID uint `json:"id" gorm:"primaryKey"`

	Title    string               `json:"title" gorm:"not null;size:200"`
	Message  string               `json:"message" gorm:"not null;type:text"`
	Type     NotificationType     `json:"type" gorm:"not null;size:40;index"`
	Priority NotificationPriority `json:"priority" gorm:"size:20;default:medium"`

	// RecipientID is nil for platform-wide notifications.
	RecipientID *uint `json:"recipient_id,omitempty" gorm:"index"`
	CreatedBy   uint  `json:"created_by" gorm:"not null"`

	// IsActive doubles as the unread flag for per-user notifications.
	IsActive  bool       `json:"is_active" gorm:"default:true;index"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`

	CreatedAt time.Time `json:"created_at" gorm:"index"`
	UpdatedAt time.Time `json:"updated_at"`

	Recipient *User `json:"recipient,omitempty" gorm:"foreignKey:RecipientID"`
	Creator   *User `json:"creator,omitempty" gorm:"foreignKey:CreatedBy"`
}

func (Notification) TableName() string {
	return "notifications"
}
