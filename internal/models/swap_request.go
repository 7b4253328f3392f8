package models

import (
	"time"
)

type SwapStatus string

const (
	SwapStatusPending   SwapStatus = "Pending"
	SwapStatusAccepted  SwapStatus = "Accepted"
	SwapStatusRejected  SwapStatus = "Rejected"
	SwapStatusCompleted SwapStatus = "Completed"
	SwapStatusCancelled SwapStatus = "Cancelled"
)

// IsTerminal reports whether no further transitions are allowed.
func (s SwapStatus) IsTerminal() bool {
	return s == SwapStatusRejected || s == SwapStatusCompleted || s == SwapStatusCancelled
}

// SwapRequest is a peer-to-peer exchange offer: the requester teaches
// skillOffered in return for being taught skillRequested.
type SwapRequest struct {
	ID uint `json:"id" gorm:"primaryKey"`

	RequesterID uint `json:"requester_id" gorm:"not null;index:idx_swap_requester_status"`
	ReceiverID  uint `json:"receiver_id" gorm:"not null;index:idx_swap_receiver_status"`

	SkillOfferedID   uint `json:"skill_offered_id" gorm:"not null"`
	SkillRequestedID uint `json:"skill_requested_id" gorm:"not null"`

	Message string     `json:"message" gorm:"size:500"`
	Status  SwapStatus `json:"status" gorm:"size:20;default:Pending;index:idx_swap_requester_status;index:idx_swap_receiver_status"`

	AcceptedAt  *time.Time `json:"accepted_at,omitempty"`
	RejectedAt  *time.Time `json:"rejected_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`

	CreatedAt time.Time `json:"created_at" gorm:"index"`
	UpdatedAt time.Time `json:"updated_at"`

	Requester      *User  `json:"requester,omitempty" gorm:"foreignKey:RequesterID"`
	Receiver       *User  `json:"receiver,omitempty" gorm:"foreignKey:ReceiverID"`
	SkillOffered   *Skill `json:"skill_offered,omitempty" gorm:"foreignKey:SkillOfferedID"`
	SkillRequested *Skill `json:"skill_requested,omitempty" gorm:"foreignKey:SkillRequestedID"`
}

func (SwapRequest) TableName() string {
	return "swap_requests"
}

// Involves reports whether the user is a party to this request.
func (r *SwapRequest) Involves(userID uint) bool {
	return r.RequesterID == userID || r.ReceiverID == userID
}

// OtherParty returns the counterpart of the given participant.
func (r *SwapRequest) OtherParty(userID uint) uint {
	if r.RequesterID == userID {
		return r.ReceiverID
	}
	return r.RequesterID
}
