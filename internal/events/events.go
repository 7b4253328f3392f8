package events

import (
	"time"

	"github.com/google/uuid"
)

// Event is the envelope published for every domain event.
type Event struct {
	ID        string      `json:"id"`
	Type      string      `json:"type"`
	Source    string      `json:"source"`
	Version   string      `json:"version"`
	Timestamp time.Time   `json:"timestamp"`
	Data      interface{} `json:"data"`
}

const (
	eventSource  = "swap-service"
	eventVersion = "1.0"
)

// Topic names; one topic per aggregate keeps consumer routing simple.
const (
	TopicSwapEvents         = "swap.events"
	TopicFeedbackEvents     = "feedback.events"
	TopicNotificationEvents = "notification.events"
)

// Event types
const (
	EventSwapRequested = "swap.requested"
	EventSwapAccepted  = "swap.accepted"
	EventSwapRejected  = "swap.rejected"
	EventSwapCompleted = "swap.completed"
	EventSwapCancelled = "swap.cancelled"

	EventFeedbackReceived = "feedback.received"
	EventRatingUpdated    = "feedback.rating_updated"

	EventPlatformBroadcast = "system.broadcast"
)

// NewEvent builds an envelope with identity and timing filled in.
func NewEvent(eventType string, data interface{}) *Event {
	return &Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		Source:    eventSource,
		Version:   eventVersion,
		Timestamp: time.Now().UTC(),
		Data:      data,
	}
}

// SwapEvent is the payload for swap lifecycle events.
type SwapEvent struct {
	SwapRequestID    uint   `json:"swap_request_id"`
	RequesterID      uint   `json:"requester_id"`
	ReceiverID       uint   `json:"receiver_id"`
	SkillOfferedID   uint   `json:"skill_offered_id"`
	SkillRequestedID uint   `json:"skill_requested_id"`
	Status           string `json:"status"`
	ActorID          uint   `json:"actor_id"`
}

// FeedbackEvent is the payload for feedback submissions.
type FeedbackEvent struct {
	FeedbackID    uint    `json:"feedback_id"`
	ReviewerID    uint    `json:"reviewer_id"`
	RevieweeID    uint    `json:"reviewee_id"`
	Rating        int     `json:"rating"`
	RatingAverage float64 `json:"rating_average"`
	RatingCount   int     `json:"rating_count"`
}

// BroadcastEvent is the payload for platform-wide notifications.
type BroadcastEvent struct {
	NotificationID uint   `json:"notification_id"`
	Type           string `json:"type"`
	Title          string `json:"title"`
	Priority       string `json:"priority"`
}
