package models

import (
	"time"
)

type UserRole string

const (
	RoleUser  UserRole = "user"
	RoleAdmin UserRole = "admin"
)

type Availability string

const (
	AvailabilityWeekends Availability = "Weekends"
	AvailabilityEvenings Availability = "Evenings"
)

type User struct {
	ID uint `json:"id" gorm:"primaryKey"`

	// ExternalID is the subject issued by the identity provider. The service
	// never authenticates users itself; it resolves this per request.
	ExternalID string `json:"external_id" gorm:"uniqueIndex;not null;size:255"`

	Name         string       `json:"name" gorm:"not null;size:100"`
	Email        string       `json:"email" gorm:"uniqueIndex;not null;size:255"`
	Location     string       `json:"location" gorm:"size:200"`
	Availability Availability `json:"availability" gorm:"size:20;default:Weekends"`
	Role         UserRole     `json:"role" gorm:"size:20;default:user;index"`

	// Profile picture handle returned by the external blob store.
	ProfilePictureURI      string `json:"profile_picture_uri" gorm:"size:500"`
	ProfilePicturePublicID string `json:"-" gorm:"size:255"`

	SkillsOffered []Skill `json:"skills_offered" gorm:"many2many:user_offered_skills"`
	SkillsWanted  []Skill `json:"skills_wanted" gorm:"many2many:user_wanted_skills"`

	// Denormalized rollup of Feedback rows where this user is reviewee.
	// Recomputed from source rows on every feedback write.
	RatingAverage float64 `json:"rating_average" gorm:"default:0"`
	RatingCount   int     `json:"rating_count" gorm:"default:0"`

	IsPublic bool `json:"is_public" gorm:"default:true;index"`
	IsBanned bool `json:"is_banned" gorm:"default:false;index"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (User) TableName() string {
	return "users"
}

// IsAdmin reports whether the user holds the admin role.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// UserSummary is the projection embedded in populated responses.
type UserSummary struct {
	ID                uint    `json:"id"`
	Name              string  `json:"name"`
	Email             string  `json:"email"`
	ProfilePictureURI string  `json:"profile_picture_uri,omitempty"`
	RatingAverage     float64 `json:"rating_average"`
	RatingCount       int     `json:"rating_count"`
}

// Summary builds the embedded projection for populated responses.
func (u *User) Summary() UserSummary {
	return UserSummary{
		ID:                u.ID,
		Name:              u.Name,
		Email:             u.Email,
		ProfilePictureURI: u.ProfilePictureURI,
		RatingAverage:     u.RatingAverage,
		RatingCount:       u.RatingCount,
	}
}
