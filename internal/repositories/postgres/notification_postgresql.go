package postgres

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/skillswap/swap-service/internal/models"
	"github.com/skillswap/swap-service/internal/repositories"
)

type notificationRepository struct {
	db *gorm.DB
}

func NewNotificationRepository(db *gorm.DB) repositories.NotificationRepository {
	return &notificationRepository{db: db}
}

func (r *notificationRepository) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

// ===== BASIC CRUD OPERATIONS =====

func (r *notificationRepository) Create(ctx context.Context, tx *gorm.DB, notification *models.Notification) error {
	db := r.getDB(tx)
	if err := db.WithContext(ctx).Create(notification).Error; err != nil {
		return handleDBError(err, "create notification")
	}
	return nil
}

func (r *notificationRepository) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Notification, error) {
	db := r.getDB(tx)
	var notification models.Notification

	if err := db.WithContext(ctx).First(&notification, id).Error; err != nil {
		return nil, handleDBError(err, "get notification by id")
	}

	return &notification, nil
}

func (r *notificationRepository) Update(ctx context.Context, tx *gorm.DB, notification *models.Notification) error {
	db := r.getDB(tx)
	if err := db.WithContext(ctx).Save(notification).Error; err != nil {
		return handleDBError(err, "update notification")
	}
	return nil
}

func (r *notificationRepository) Delete(ctx context.Context, tx *gorm.DB, id uint) error {
	db := r.getDB(tx)
	if err := db.WithContext(ctx).Delete(&models.Notification{}, id).Error; err != nil {
		return handleDBError(err, "delete notification")
	}
	return nil
}

// ===== QUERY OPERATIONS =====

// GetByRecipient returns notifications addressed to the user plus
// platform-wide ones (nil recipient) that have not expired.
func (r *notificationRepository) GetByRecipient(ctx context.Context, tx *gorm.DB, recipientID uint, filters repositories.NotificationFilters) ([]*models.Notification, int64, error) {
	db := r.getDB(tx)
	var notifications []*models.Notification
	var total int64

	query := db.WithContext(ctx).
		Model(&models.Notification{}).
		Where("recipient_id = ? OR recipient_id IS NULL", recipientID).
		Where("expires_at IS NULL OR expires_at > ?", time.Now())
	query = r.applyNotificationFilters(query, filters)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, handleDBError(err, "count notifications for recipient")
	}

	query = applyPaginationAndSorting(query, filters.Limit, filters.Offset, filters.SortBy, filters.SortOrder)

	if err := query.Find(&notifications).Error; err != nil {
		return nil, 0, handleDBError(err, "list notifications for recipient")
	}

	return notifications, total, nil
}

func (r *notificationRepository) List(ctx context.Context, tx *gorm.DB, filters repositories.NotificationFilters) ([]*models.Notification, int64, error) {
	db := r.getDB(tx)
	var notifications []*models.Notification
	var total int64

	query := db.WithContext(ctx).Model(&models.Notification{})
	query = r.applyNotificationFilters(query, filters)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, handleDBError(err, "count notifications")
	}

	query = applyPaginationAndSorting(query, filters.Limit, filters.Offset, filters.SortBy, filters.SortOrder)

	if err := query.Preload("Recipient").Find(&notifications).Error; err != nil {
		return nil, 0, handleDBError(err, "list notifications")
	}

	return notifications, total, nil
}

func (r *notificationRepository) CountUnread(ctx context.Context, tx *gorm.DB, recipientID uint) (int64, error) {
	db := r.getDB(tx)
	var count int64

	err := db.WithContext(ctx).
		Model(&models.Notification{}).
		Where("recipient_id = ? OR recipient_id IS NULL", recipientID).
		Where("is_active = ?", true).
		Where("expires_at IS NULL OR expires_at > ?", time.Now()).
		Count(&count).Error
	if err != nil {
		return 0, handleDBError(err, "count unread notifications")
	}

	return count, nil
}

// ===== BULK OPERATIONS =====

func (r *notificationRepository) BulkDelete(ctx context.Context, tx *gorm.DB, ids []uint) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}

	db := r.getDB(tx)
	result := db.WithContext(ctx).
		Where("id IN ?", ids).
		Delete(&models.Notification{})
	if result.Error != nil {
		return 0, handleDBError(result.Error, "bulk delete notifications")
	}

	return result.RowsAffected, nil
}

func (r *notificationRepository) DeactivateExpired(ctx context.Context, tx *gorm.DB, now time.Time) (int64, error) {
	db := r.getDB(tx)
	result := db.WithContext(ctx).
		Model(&models.Notification{}).
		Where("is_active = ?", true).
		Where("expires_at IS NOT NULL AND expires_at <= ?", now).
		Update("is_active", false)
	if result.Error != nil {
		return 0, handleDBError(result.Error, "deactivate expired notifications")
	}

	return result.RowsAffected, nil
}

// ===== STATISTICS =====

func (r *notificationRepository) Stats(ctx context.Context, tx *gorm.DB, since time.Time) (*repositories.NotificationStats, error) {
	db := r.getDB(tx)
	stats := &repositories.NotificationStats{
		ByType:     make(map[models.NotificationType]int64),
		ByPriority: make(map[models.NotificationPriority]int64),
	}

	model := func() *gorm.DB {
		return db.WithContext(ctx).Model(&models.Notification{})
	}

	if err := model().Count(&stats.Total).Error; err != nil {
		return nil, handleDBError(err, "notification stats")
	}
	if err := model().Where("is_active = ?", true).Count(&stats.Active).Error; err != nil {
		return nil, handleDBError(err, "notification stats")
	}
	stats.Inactive = stats.Total - stats.Active
	if err := model().Where("created_at >= ?", since).Count(&stats.Recent).Error; err != nil {
		return nil, handleDBError(err, "notification stats")
	}

	var typeRows []struct {
		Type  models.NotificationType
		Count int64
	}
	if err := model().
		Select("type, COUNT(*) AS count").
		Group("type").
		Scan(&typeRows).Error; err != nil {
		return nil, handleDBError(err, "notification stats")
	}
	for _, row := range typeRows {
		stats.ByType[row.Type] = row.Count
	}

	var priorityRows []struct {
		Priority models.NotificationPriority
		Count    int64
	}
	if err := model().
		Select("priority, COUNT(*) AS count").
		Group("priority").
		Scan(&priorityRows).Error; err != nil {
		return nil, handleDBError(err, "notification stats")
	}
	for _, row := range priorityRows {
		stats.ByPriority[row.Priority] = row.Count
	}

	return stats, nil
}

// ===== FILTER HELPERS =====

func (r *notificationRepository) applyNotificationFilters(query *gorm.DB, filters repositories.NotificationFilters) *gorm.DB {
	if filters.Type != nil {
		query = query.Where("type = ?", *filters.Type)
	}
	if filters.Priority != nil {
		query = query.Where("priority = ?", *filters.Priority)
	}
	if filters.IsActive != nil {
		query = query.Where("is_active = ?", *filters.IsActive)
	}
	if filters.Search != nil {
		pattern := "%" + *filters.Search + "%"
		query = query.Where("title ILIKE ? OR message ILIKE ?", pattern, pattern)
	}
	return query
}
