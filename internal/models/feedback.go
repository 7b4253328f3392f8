package models

import (
	"time"
)

// Feedback is a post-swap rating from reviewer to reviewee. The composite
// unique index on (reviewer_id, reviewee_id) is the store-level guard against
// duplicate feedback; application checks alone are read-then-write and can
// race.
type Feedback struct {
	ID uint `json:"id" gorm:"primaryKey"`

	ReviewerID uint `json:"reviewer_id" gorm:"not null;uniqueIndex:idx_feedback_pair"`
	RevieweeID uint `json:"reviewee_id" gorm:"not null;uniqueIndex:idx_feedback_pair;index"`

	Rating  int    `json:"rating" gorm:"not null"`
	Comment string `json:"comment" gorm:"size:500"`

	CreatedAt time.Time `json:"created_at" gorm:"index"`
	UpdatedAt time.Time `json:"updated_at"`

	Reviewer *User `json:"reviewer,omitempty" gorm:"foreignKey:ReviewerID"`
	Reviewee *User `json:"reviewee,omitempty" gorm:"foreignKey:RevieweeID"`
}

func (Feedback) TableName() string {
	return "feedback"
}
