package postgres

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/skillswap/swap-service/internal/models"
	"github.com/skillswap/swap-service/internal/repositories"
)

type swapRequestRepository struct {
	db *gorm.DB
}

func NewSwapRequestRepository(db *gorm.DB) repositories.SwapRequestRepository {
	return &swapRequestRepository{db: db}
}

func (r *swapRequestRepository) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

func (r *swapRequestRepository) preloadAll(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Requester").
		Preload("Receiver").
		Preload("SkillOffered").
		Preload("SkillRequested")
}

// ===== BASIC CRUD OPERATIONS =====

func (r *swapRequestRepository) Create(ctx context.Context, tx *gorm.DB, request *models.SwapRequest) error {
	db := r.getDB(tx)
	if err := db.WithContext(ctx).Create(request).Error; err != nil {
		return handleDBError(err, "create swap request")
	}
	return nil
}

func (r *swapRequestRepository) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.SwapRequest, error) {
	db := r.getDB(tx)
	var request models.SwapRequest

	if err := r.preloadAll(db.WithContext(ctx)).
		First(&request, id).Error; err != nil {
		return nil, handleDBError(err, "get swap request by id")
	}

	return &request, nil
}

func (r *swapRequestRepository) Update(ctx context.Context, tx *gorm.DB, request *models.SwapRequest) error {
	db := r.getDB(tx)
	if err := db.WithContext(ctx).
		Omit("Requester", "Receiver", "SkillOffered", "SkillRequested").
		Save(request).Error; err != nil {
		return handleDBError(err, "update swap request")
	}
	return nil
}

func (r *swapRequestRepository) Delete(ctx context.Context, tx *gorm.DB, id uint) error {
	db := r.getDB(tx)
	if err := db.WithContext(ctx).Delete(&models.SwapRequest{}, id).Error; err != nil {
		return handleDBError(err, "delete swap request")
	}
	return nil
}

// ===== QUERY OPERATIONS =====

func (r *swapRequestRepository) List(ctx context.Context, tx *gorm.DB, filters repositories.SwapRequestFilters) ([]*models.SwapRequest, int64, error) {
	db := r.getDB(tx)
	var requests []*models.SwapRequest
	var total int64

	query := db.WithContext(ctx).Model(&models.SwapRequest{})
	query = r.applySwapFilters(query, filters)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, handleDBError(err, "count swap requests")
	}

	query = applyPaginationAndSorting(query, filters.Limit, filters.Offset, filters.SortBy, filters.SortOrder)

	if err := r.preloadAll(query).Find(&requests).Error; err != nil {
		return nil, 0, handleDBError(err, "list swap requests")
	}

	return requests, total, nil
}

// GetPublic lists requests whose requester profile is public and not banned.
func (r *swapRequestRepository) GetPublic(ctx context.Context, tx *gorm.DB, filters repositories.SwapRequestFilters) ([]*models.SwapRequest, int64, error) {
	db := r.getDB(tx)
	var requests []*models.SwapRequest
	var total int64

	query := db.WithContext(ctx).
		Model(&models.SwapRequest{}).
		Joins("JOIN users requesters ON requesters.id = swap_requests.requester_id").
		Where("requesters.is_public = ? AND requesters.is_banned = ?", true, false)
	query = r.applySwapFilters(query, filters)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, handleDBError(err, "count public swap requests")
	}

	// Qualified ordering avoids column ambiguity with the joined users table.
	query = query.Order("swap_requests.created_at DESC")
	if filters.Limit > 0 {
		query = query.Limit(filters.Limit)
	}
	if filters.Offset > 0 {
		query = query.Offset(filters.Offset)
	}

	if err := r.preloadAll(query).Find(&requests).Error; err != nil {
		return nil, 0, handleDBError(err, "list public swap requests")
	}

	return requests, total, nil
}

func (r *swapRequestRepository) FindPendingBetween(ctx context.Context, tx *gorm.DB, userA, userB, skillOffered, skillRequested uint) (*models.SwapRequest, error) {
	db := r.getDB(tx)
	var request models.SwapRequest

	// The mirrored clause catches the counterparty having already opened
	// the same exchange from the other side.
	err := db.WithContext(ctx).
		Where("status = ?", models.SwapStatusPending).
		Where(
			db.Where("requester_id = ? AND receiver_id = ? AND skill_offered_id = ? AND skill_requested_id = ?",
				userA, userB, skillOffered, skillRequested).
				Or("requester_id = ? AND receiver_id = ? AND skill_offered_id = ? AND skill_requested_id = ?",
					userB, userA, skillRequested, skillOffered),
		).
		First(&request).Error
	if err != nil {
		return nil, handleDBError(err, "find pending swap between users")
	}

	return &request, nil
}

func (r *swapRequestRepository) HasCompletedBetween(ctx context.Context, tx *gorm.DB, userA, userB uint) (bool, error) {
	db := r.getDB(tx)
	var count int64

	err := db.WithContext(ctx).
		Model(&models.SwapRequest{}).
		Where("status = ?", models.SwapStatusCompleted).
		Where(
			db.Where("requester_id = ? AND receiver_id = ?", userA, userB).
				Or("requester_id = ? AND receiver_id = ?", userB, userA),
		).
		Count(&count).Error
	if err != nil {
		return false, handleDBError(err, "check completed swap between users")
	}

	return count > 0, nil
}

func (r *swapRequestRepository) CountActiveForUser(ctx context.Context, tx *gorm.DB, userID uint) (int64, error) {
	db := r.getDB(tx)
	var count int64

	err := db.WithContext(ctx).
		Model(&models.SwapRequest{}).
		Where("requester_id = ? OR receiver_id = ?", userID, userID).
		Where("status IN ?", []models.SwapStatus{models.SwapStatusPending, models.SwapStatusAccepted}).
		Count(&count).Error
	if err != nil {
		return 0, handleDBError(err, "count active swaps for user")
	}

	return count, nil
}

func (r *swapRequestRepository) DeleteAllForUser(ctx context.Context, tx *gorm.DB, userID uint) error {
	db := r.getDB(tx)
	err := db.WithContext(ctx).
		Where("requester_id = ? OR receiver_id = ?", userID, userID).
		Delete(&models.SwapRequest{}).Error
	if err != nil {
		return handleDBError(err, "delete swaps for user")
	}
	return nil
}

// ===== STATISTICS =====

func (r *swapRequestRepository) Stats(ctx context.Context, tx *gorm.DB, since time.Time) (*repositories.SwapRequestStats, error) {
	db := r.getDB(tx)
	stats := &repositories.SwapRequestStats{}

	base := func() *gorm.DB {
		return db.WithContext(ctx).Model(&models.SwapRequest{})
	}

	counts := []struct {
		dest  *int64
		scope func(*gorm.DB) *gorm.DB
	}{
		{&stats.Total, func(q *gorm.DB) *gorm.DB { return q }},
		{&stats.Pending, func(q *gorm.DB) *gorm.DB { return q.Where("status = ?", models.SwapStatusPending) }},
		{&stats.Accepted, func(q *gorm.DB) *gorm.DB { return q.Where("status = ?", models.SwapStatusAccepted) }},
		{&stats.Completed, func(q *gorm.DB) *gorm.DB { return q.Where("status = ?", models.SwapStatusCompleted) }},
		{&stats.Rejected, func(q *gorm.DB) *gorm.DB { return q.Where("status = ?", models.SwapStatusRejected) }},
		{&stats.Cancelled, func(q *gorm.DB) *gorm.DB { return q.Where("status = ?", models.SwapStatusCancelled) }},
		{&stats.RecentActivity, func(q *gorm.DB) *gorm.DB { return q.Where("created_at >= ?", since) }},
	}

	for _, c := range counts {
		if err := c.scope(base()).Count(c.dest).Error; err != nil {
			return nil, handleDBError(err, "swap request stats")
		}
	}

	return stats, nil
}

// ===== FILTER HELPERS =====

func (r *swapRequestRepository) applySwapFilters(query *gorm.DB, filters repositories.SwapRequestFilters) *gorm.DB {
	if filters.Status != nil {
		query = query.Where("swap_requests.status = ?", *filters.Status)
	}
	if filters.UserID != nil {
		switch filters.Direction {
		case "sent":
			query = query.Where("swap_requests.requester_id = ?", *filters.UserID)
		case "received":
			query = query.Where("swap_requests.receiver_id = ?", *filters.UserID)
		default:
			query = query.Where("swap_requests.requester_id = ? OR swap_requests.receiver_id = ?",
				*filters.UserID, *filters.UserID)
		}
	}
	if filters.SkillID != nil {
		query = query.Where("swap_requests.skill_offered_id = ? OR swap_requests.skill_requested_id = ?",
			*filters.SkillID, *filters.SkillID)
	}
	if filters.Search != nil {
		query = query.Where("swap_requests.message ILIKE ?", "%"+*filters.Search+"%")
	}
	return query
}
