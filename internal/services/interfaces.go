package services

import (
	"context"
	"io"

	"github.com/skillswap/swap-service/internal/models"
	"github.com/skillswap/swap-service/internal/repositories"
	"github.com/skillswap/swap-service/internal/validator"
)

// ===== REQUEST/RESPONSE DTOs =====

// Use business validator types
type CreateUserRequest = validator.UserCreateRequest
type UpdateUserRequest = validator.UserUpdateRequest
type CreateSkillRequest = validator.SkillCreateRequest
type UpdateSkillRequest = validator.SkillUpdateRequest
type CreateSwapRequest = validator.SwapCreateRequest
type CreateFeedbackRequest = validator.FeedbackCreateRequest
type UpdateFeedbackRequest = validator.FeedbackUpdateRequest
type CreateNotificationRequest = validator.NotificationCreateRequest
type UpdateNotificationRequest = validator.NotificationUpdateRequest
type GenerateReportRequest = validator.ReportGenerateRequest

type UserResponse struct {
	*models.User
	CanEdit   bool `json:"can_edit"`
	CanDelete bool `json:"can_delete"`
}

type UserListResponse struct {
	Users      []*UserResponse `json:"users"`
	Total      int64           `json:"total"`
	Page       int             `json:"page"`
	Size       int             `json:"size"`
	TotalPages int             `json:"total_pages"`
}

type SkillResponse struct {
	*models.Skill
	CanEdit   bool `json:"can_edit"`
	CanDelete bool `json:"can_delete"`
	// UsageCount is how many users list the skill as offered or wanted.
	UsageCount int64 `json:"usage_count,omitempty"`
}

type SkillListResponse struct {
	Skills     []*SkillResponse `json:"skills"`
	Total      int64            `json:"total"`
	Page       int              `json:"page"`
	Size       int              `json:"size"`
	TotalPages int              `json:"total_pages"`
}

type SwapResponse struct {
	*models.SwapRequest
	CanAccept   bool `json:"can_accept"`
	CanReject   bool `json:"can_reject"`
	CanCancel   bool `json:"can_cancel"`
	CanComplete bool `json:"can_complete"`
	CanDelete   bool `json:"can_delete"`
}

type SwapListResponse struct {
	Swaps      []*SwapResponse `json:"swaps"`
	Total      int64           `json:"total"`
	Page       int             `json:"page"`
	Size       int             `json:"size"`
	TotalPages int             `json:"total_pages"`
}

type FeedbackResponse struct {
	*models.Feedback
	CanEdit   bool `json:"can_edit"`
	CanDelete bool `json:"can_delete"`
}

type FeedbackListResponse struct {
	Feedback   []*FeedbackResponse `json:"feedback"`
	Total      int64               `json:"total"`
	Page       int                 `json:"page"`
	Size       int                 `json:"size"`
	TotalPages int                 `json:"total_pages"`
}

type NotificationListResponse struct {
	Notifications []*models.Notification `json:"notifications"`
	UnreadCount   int64                  `json:"unread_count"`
	Total         int64                  `json:"total"`
	Page          int                    `json:"page"`
	Size          int                    `json:"size"`
	TotalPages    int                    `json:"total_pages"`
}

type ReportListResponse struct {
	Reports    []*models.Report `json:"reports"`
	Total      int64            `json:"total"`
	Page       int              `json:"page"`
	Size       int              `json:"size"`
	TotalPages int              `json:"total_pages"`
}

// PlatformStats is the admin dashboard aggregate.
type PlatformStats struct {
	Users         *repositories.UserActivityStats `json:"users"`
	Swaps         *repositories.SwapRequestStats  `json:"swaps"`
	Feedback      *repositories.FeedbackStats     `json:"feedback"`
	Notifications *repositories.NotificationStats `json:"notifications"`
	TopSkills     []repositories.SkillUsage       `json:"top_skills"`
}

// ===== SERVICE INTERFACES =====

type UserService interface {
	// Core CRUD operations
	Create(ctx context.Context, req *CreateUserRequest) (*UserResponse, error)
	GetByID(ctx context.Context, id uint, actor *models.User) (*UserResponse, error)
	GetByExternalID(ctx context.Context, externalID string) (*models.User, error)
	Update(ctx context.Context, id uint, req *UpdateUserRequest, actor *models.User) (*UserResponse, error)
	Delete(ctx context.Context, id uint, actor *models.User) error

	// List and search operations
	List(ctx context.Context, filters repositories.UserFilters, actor *models.User) (*UserListResponse, error)
	SearchBySkill(ctx context.Context, skillNames []string, skillType string, filters repositories.UserFilters) (*UserListResponse, error)

	// Profile management
	UpdateProfilePicture(ctx context.Context, id uint, actor *models.User, fileName string, data io.Reader) (*UserResponse, error)
	SetBanned(ctx context.Context, id uint, banned bool, actor *models.User) error
	ChangeRole(ctx context.Context, id uint, role models.UserRole, actor *models.User) error
}

type SkillService interface {
	// Core CRUD operations
	Create(ctx context.Context, req *CreateSkillRequest, actor *models.User) (*SkillResponse, error)
	GetByID(ctx context.Context, id uint) (*SkillResponse, error)
	Update(ctx context.Context, id uint, req *UpdateSkillRequest, actor *models.User) (*SkillResponse, error)
	Delete(ctx context.Context, id uint, actor *models.User) error

	// List and search operations
	List(ctx context.Context, filters repositories.SkillFilters) (*SkillListResponse, error)
	Search(ctx context.Context, query string, limit int) ([]*SkillResponse, error)

	// Moderation
	GetPending(ctx context.Context, filters repositories.SkillFilters, actor *models.User) (*SkillListResponse, error)
	Approve(ctx context.Context, id uint, actor *models.User) (*SkillResponse, error)
	Reject(ctx context.Context, id uint, actor *models.User) error
}

type SwapService interface {
	// Core operations
	Create(ctx context.Context, req *CreateSwapRequest, actor *models.User) (*SwapResponse, error)
	GetByID(ctx context.Context, id uint, actor *models.User) (*SwapResponse, error)
	Delete(ctx context.Context, id uint, actor *models.User) error

	// Lifecycle transitions
	Accept(ctx context.Context, id uint, actor *models.User) (*SwapResponse, error)
	Reject(ctx context.Context, id uint, actor *models.User) (*SwapResponse, error)
	Cancel(ctx context.Context, id uint, actor *models.User) (*SwapResponse, error)
	Complete(ctx context.Context, id uint, actor *models.User) (*SwapResponse, error)

	// List operations
	ListForUser(ctx context.Context, actor *models.User, filters repositories.SwapRequestFilters) (*SwapListResponse, error)
	GetPublic(ctx context.Context, filters repositories.SwapRequestFilters) (*SwapListResponse, error)
	List(ctx context.Context, filters repositories.SwapRequestFilters, actor *models.User) (*SwapListResponse, error)
}

type FeedbackService interface {
	// Core operations
	Create(ctx context.Context, req *CreateFeedbackRequest, actor *models.User) (*FeedbackResponse, error)
	GetByID(ctx context.Context, id uint) (*FeedbackResponse, error)
	Update(ctx context.Context, id uint, req *UpdateFeedbackRequest, actor *models.User) (*FeedbackResponse, error)
	Delete(ctx context.Context, id uint, actor *models.User) error

	// List operations
	List(ctx context.Context, filters repositories.FeedbackFilters, actor *models.User) (*FeedbackListResponse, error)
	GetForUser(ctx context.Context, userID uint, filters repositories.FeedbackFilters) (*FeedbackListResponse, error)
	SummaryForUser(ctx context.Context, userID uint) (*repositories.FeedbackSummary, error)
}

type NotificationService interface {
	// Core operations
	Create(ctx context.Context, req *CreateNotificationRequest, actor *models.User) (*models.Notification, error)
	GetForUser(ctx context.Context, actor *models.User, filters repositories.NotificationFilters) (*NotificationListResponse, error)
	MarkRead(ctx context.Context, id uint, actor *models.User) (*models.Notification, error)
	MarkAllRead(ctx context.Context, actor *models.User) (int64, error)
	Delete(ctx context.Context, id uint, actor *models.User) error
	UnreadCount(ctx context.Context, actor *models.User) (int64, error)

	// Admin operations
	List(ctx context.Context, filters repositories.NotificationFilters, actor *models.User) (*NotificationListResponse, error)
	Update(ctx context.Context, id uint, req *UpdateNotificationRequest, actor *models.User) (*models.Notification, error)
	BulkDelete(ctx context.Context, ids []uint, actor *models.User) (int64, error)
	DeactivateExpired(ctx context.Context) (int64, error)
	Stats(ctx context.Context, actor *models.User) (*repositories.NotificationStats, error)
}

type ReportService interface {
	// Report generation and retrieval
	Generate(ctx context.Context, req *GenerateReportRequest, actor *models.User) (*models.Report, error)
	GetByID(ctx context.Context, id uint, actor *models.User) (*models.Report, error)
	List(ctx context.Context, filters repositories.ReportFilters, actor *models.User) (*ReportListResponse, error)

	// Live dashboard aggregates
	PlatformStats(ctx context.Context, actor *models.User) (*PlatformStats, error)

	// Spreadsheet exports
	ExportUsers(ctx context.Context, actor *models.User) ([]byte, error)
	ExportSwaps(ctx context.Context, actor *models.User) ([]byte, error)
}

// ===== SERVICE MANAGER =====

type ServiceManager interface {
	// Core service getters
	User() UserService
	Skill() SkillService
	Swap() SwapService
	Feedback() FeedbackService
	Notification() NotificationService
	Report() ReportService

	// Health and lifecycle
	Initialize(ctx context.Context) error
	HealthCheck(ctx context.Context) error
	Shutdown(ctx context.Context) error
}
