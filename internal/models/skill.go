package models

import (
	"time"
)

type Skill struct {
	ID uint `json:"id" gorm:"primaryKey"`

	// Name uniqueness is case-insensitive; enforced by the repository against
	// LOWER(name) since the column index alone is case-sensitive.
	Name        string `json:"name" gorm:"not null;size:100;index"`
	Description string `json:"description" gorm:"type:text"`

	// IsGlobal marks admin-curated skills; user-submitted skills stay
	// non-global until an admin approves them.
	IsGlobal  bool `json:"is_global" gorm:"default:false;index"`
	CreatedBy uint `json:"created_by" gorm:"not null;index"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Creator *User `json:"creator,omitempty" gorm:"foreignKey:CreatedBy"`
}

func (Skill) TableName() string {
	return "skills"
}

// SkillSummary is the projection embedded in populated responses.
type SkillSummary struct {
	ID          uint   `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

func (s *Skill) Summary() SkillSummary {
	return SkillSummary{ID: s.ID, Name: s.Name, Description: s.Description}
}
