package repositories

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/skillswap/swap-service/internal/models"
)

// ===== FILTERS =====

type UserFilters struct {
	Query    *string
	Role     *models.UserRole
	IsBanned *bool
	IsPublic *bool

	Limit     int
	Offset    int
	SortBy    string
	SortOrder string
}

type SkillFilters struct {
	Query     *string
	IsGlobal  *bool
	CreatedBy *uint

	Limit     int
	Offset    int
	SortBy    string
	SortOrder string
}

type SwapRequestFilters struct {
	Status *models.SwapStatus
	Search *string

	// Direction scopes per-user listings: "sent", "received" or "" for both.
	UserID    *uint
	Direction string

	// SkillID matches either side of the exchange (public listing filter).
	SkillID *uint

	Limit     int
	Offset    int
	SortBy    string
	SortOrder string
}

type FeedbackFilters struct {
	Rating     *int
	Search     *string
	RevieweeID *uint

	Limit     int
	Offset    int
	SortBy    string
	SortOrder string
}

type NotificationFilters struct {
	Type     *models.NotificationType
	Priority *models.NotificationPriority
	IsActive *bool
	Search   *string

	Limit     int
	Offset    int
	SortBy    string
	SortOrder string
}

type ReportFilters struct {
	Type *models.ReportType

	Limit  int
	Offset int
}

// ===== STATS PROJECTIONS =====

type SwapRequestStats struct {
	Total          int64 `json:"total"`
	Pending        int64 `json:"pending"`
	Accepted       int64 `json:"accepted"`
	Completed      int64 `json:"completed"`
	Rejected       int64 `json:"rejected"`
	Cancelled      int64 `json:"cancelled"`
	RecentActivity int64 `json:"recent_activity"`
}

type FeedbackStats struct {
	Total              int64         `json:"total"`
	AverageRating      float64       `json:"average_rating"`
	RatingDistribution map[int]int64 `json:"rating_distribution"`
	RecentFeedback     int64         `json:"recent_feedback"`
}

type FeedbackSummary struct {
	TotalFeedback      int64         `json:"total_feedback"`
	AverageRating      float64       `json:"average_rating"`
	RatingDistribution map[int]int64 `json:"rating_distribution"`
}

type NotificationStats struct {
	Total      int64                                 `json:"total"`
	Active     int64                                 `json:"active"`
	Inactive   int64                                 `json:"inactive"`
	ByType     map[models.NotificationType]int64     `json:"by_type"`
	ByPriority map[models.NotificationPriority]int64 `json:"by_priority"`
	Recent     int64                                 `json:"recent"`
}

type UserActivityStats struct {
	Total         int64 `json:"total"`
	Public        int64 `json:"public"`
	Banned        int64 `json:"banned"`
	Admins        int64 `json:"admins"`
	NewLast30Days int64 `json:"new_last_30_days"`
}

type SkillUsage struct {
	SkillID      uint   `json:"skill_id"`
	Name         string `json:"name"`
	OfferedCount int64  `json:"offered_count"`
	WantedCount  int64  `json:"wanted_count"`
}

// ===== REPOSITORY INTERFACES =====

type UserRepository interface {
	Create(ctx context.Context, tx *gorm.DB, user *models.User) error
	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.User, error)
	GetByExternalID(ctx context.Context, tx *gorm.DB, externalID string) (*models.User, error)
	GetByEmail(ctx context.Context, tx *gorm.DB, email string) (*models.User, error)
	Update(ctx context.Context, tx *gorm.DB, user *models.User) error
	Delete(ctx context.Context, tx *gorm.DB, id uint) error

	List(ctx context.Context, tx *gorm.DB, filters UserFilters) ([]*models.User, int64, error)
	SearchBySkill(ctx context.Context, tx *gorm.DB, skillIDs []uint, skillType string, filters UserFilters) ([]*models.User, int64, error)

	SetOfferedSkills(ctx context.Context, tx *gorm.DB, userID uint, skillIDs []uint) error
	SetWantedSkills(ctx context.Context, tx *gorm.DB, userID uint, skillIDs []uint) error
	CountUsingSkill(ctx context.Context, tx *gorm.DB, skillID uint) (int64, error)

	UpdateRating(ctx context.Context, tx *gorm.DB, userID uint, average float64, count int) error
	ActivityStats(ctx context.Context, tx *gorm.DB) (*UserActivityStats, error)
}

type SkillRepository interface {
	Create(ctx context.Context, tx *gorm.DB, skill *models.Skill) error
	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Skill, error)
	GetByIDs(ctx context.Context, tx *gorm.DB, ids []uint) ([]*models.Skill, error)
	Update(ctx context.Context, tx *gorm.DB, skill *models.Skill) error
	Delete(ctx context.Context, tx *gorm.DB, id uint) error

	List(ctx context.Context, tx *gorm.DB, filters SkillFilters) ([]*models.Skill, int64, error)
	Search(ctx context.Context, tx *gorm.DB, query string, limit int) ([]*models.Skill, error)
	SearchByName(ctx context.Context, tx *gorm.DB, name string) ([]*models.Skill, error)
	ExistsByName(ctx context.Context, tx *gorm.DB, name string, excludeID uint) (bool, error)
	GetPending(ctx context.Context, tx *gorm.DB, filters SkillFilters) ([]*models.Skill, int64, error)
	Popularity(ctx context.Context, tx *gorm.DB, limit int) ([]SkillUsage, error)
}

type SwapRequestRepository interface {
	Create(ctx context.Context, tx *gorm.DB, request *models.SwapRequest) error
	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.SwapRequest, error)
	Update(ctx context.Context, tx *gorm.DB, request *models.SwapRequest) error
	Delete(ctx context.Context, tx *gorm.DB, id uint) error

	List(ctx context.Context, tx *gorm.DB, filters SwapRequestFilters) ([]*models.SwapRequest, int64, error)
	GetPublic(ctx context.Context, tx *gorm.DB, filters SwapRequestFilters) ([]*models.SwapRequest, int64, error)

	// FindPendingBetween looks up a Pending request for the same pair and
	// skill combination in either direction.
	FindPendingBetween(ctx context.Context, tx *gorm.DB, userA, userB, skillOffered, skillRequested uint) (*models.SwapRequest, error)
	HasCompletedBetween(ctx context.Context, tx *gorm.DB, userA, userB uint) (bool, error)
	CountActiveForUser(ctx context.Context, tx *gorm.DB, userID uint) (int64, error)
	DeleteAllForUser(ctx context.Context, tx *gorm.DB, userID uint) error

	Stats(ctx context.Context, tx *gorm.DB, since time.Time) (*SwapRequestStats, error)
}

type FeedbackRepository interface {
	Create(ctx context.Context, tx *gorm.DB, feedback *models.Feedback) error
	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Feedback, error)
	Update(ctx context.Context, tx *gorm.DB, feedback *models.Feedback) error
	Delete(ctx context.Context, tx *gorm.DB, id uint) error

	List(ctx context.Context, tx *gorm.DB, filters FeedbackFilters) ([]*models.Feedback, int64, error)
	ExistsForPair(ctx context.Context, tx *gorm.DB, reviewerID, revieweeID uint) (bool, error)

	// RatingsForReviewee returns every rating given to the user; the rating
	// rollup is recomputed from this full set, never incrementally.
	RatingsForReviewee(ctx context.Context, tx *gorm.DB, revieweeID uint) ([]int, error)
	DeleteAllForUser(ctx context.Context, tx *gorm.DB, userID uint) error

	Stats(ctx context.Context, tx *gorm.DB, since time.Time) (*FeedbackStats, error)
	SummaryForUser(ctx context.Context, tx *gorm.DB, revieweeID uint) (*FeedbackSummary, error)
}

type NotificationRepository interface {
	Create(ctx context.Context, tx *gorm.DB, notification *models.Notification) error
	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Notification, error)
	Update(ctx context.Context, tx *gorm.DB, notification *models.Notification) error
	Delete(ctx context.Context, tx *gorm.DB, id uint) error

	GetByRecipient(ctx context.Context, tx *gorm.DB, recipientID uint, filters NotificationFilters) ([]*models.Notification, int64, error)
	List(ctx context.Context, tx *gorm.DB, filters NotificationFilters) ([]*models.Notification, int64, error)
	CountUnread(ctx context.Context, tx *gorm.DB, recipientID uint) (int64, error)

	BulkDelete(ctx context.Context, tx *gorm.DB, ids []uint) (int64, error)
	DeactivateExpired(ctx context.Context, tx *gorm.DB, now time.Time) (int64, error)
	Stats(ctx context.Context, tx *gorm.DB, since time.Time) (*NotificationStats, error)
}

type ReportRepository interface {
	Create(ctx context.Context, tx *gorm.DB, report *models.Report) error
	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Report, error)
	List(ctx context.Context, tx *gorm.DB, filters ReportFilters) ([]*models.Report, int64, error)
}

// ===== AGGREGATE =====

type Repository interface {
	User() UserRepository
	Skill() SkillRepository
	SwapRequest() SwapRequestRepository
	Feedback() FeedbackRepository
	Notification() NotificationRepository
	Report() ReportRepository

	WithTransaction(ctx context.Context, fn func(Repository) error) error
	Ping(ctx context.Context) error
	Close() error
}

type RepositoryManager interface {
	Initialize() error
	GetRepository() Repository
	HealthCheck(ctx context.Context) error
	Shutdown(ctx context.Context) error
}
