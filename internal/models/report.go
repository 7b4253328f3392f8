package models

import (
	"time"

	"gorm.io/datatypes"
)

type ReportType string

const (
	ReportUserActivity    ReportType = "user_activity"
	ReportSwapStats       ReportType = "swap_stats"
	ReportFeedbackSummary ReportType = "feedback_summary"
	ReportSkillPopularity ReportType = "skill_popularity"
)

// Report is a persisted admin analytics snapshot. The payload shape varies by
// type, so it is stored as a JSON document.
type Report struct {
	ID uint `json:"id" gorm:"primaryKey"`

	Type        ReportType     `json:"type" gorm:"not null;size:40;index"`
	Data        datatypes.JSON `json:"data" gorm:"not null"`
	GeneratedBy uint           `json:"generated_by" gorm:"not null"`

	DateFrom *time.Time `json:"date_from,omitempty"`
	DateTo   *time.Time `json:"date_to,omitempty"`

	CreatedAt time.Time `json:"created_at" gorm:"index"`

	Generator *User `json:"generator,omitempty" gorm:"foreignKey:GeneratedBy"`
}

func (Report) TableName() string {
	return "reports"
}
