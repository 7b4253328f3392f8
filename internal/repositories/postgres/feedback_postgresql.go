package postgres

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/skillswap/swap-service/internal/models"
	"github.com/skillswap/swap-service/internal/repositories"
)

type feedbackRepository struct {
	db *gorm.DB
}

func NewFeedbackRepository(db *gorm.DB) repositories.FeedbackRepository {
	return &feedbackRepository{db: db}
}

func (r *feedbackRepository) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

// ===== BASIC CRUD OPERATIONS =====

func (r *feedbackRepository) Create(ctx context.Context, tx *gorm.DB, feedback *models.Feedback) error {
	db := r.getDB(tx)
	if err := db.WithContext(ctx).Create(feedback).Error; err != nil {
		return handleDBError(err, "create feedback")
	}
	return nil
}

func (r *feedbackRepository) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Feedback, error) {
	db := r.getDB(tx)
	var feedback models.Feedback

	if err := db.WithContext(ctx).
		Preload("Reviewer").
		Preload("Reviewee").
		First(&feedback, id).Error; err != nil {
		return nil, handleDBError(err, "get feedback by id")
	}

	return &feedback, nil
}

func (r *feedbackRepository) Update(ctx context.Context, tx *gorm.DB, feedback *models.Feedback) error {
	db := r.getDB(tx)
	if err := db.WithContext(ctx).
		Omit("Reviewer", "Reviewee").
		Save(feedback).Error; err != nil {
		return handleDBError(err, "update feedback")
	}
	return nil
}

func (r *feedbackRepository) Delete(ctx context.Context, tx *gorm.DB, id uint) error {
	db := r.getDB(tx)
	if err := db.WithContext(ctx).Delete(&models.Feedback{}, id).Error; err != nil {
		return handleDBError(err, "delete feedback")
	}
	return nil
}

// ===== QUERY OPERATIONS =====

func (r *feedbackRepository) List(ctx context.Context, tx *gorm.DB, filters repositories.FeedbackFilters) ([]*models.Feedback, int64, error) {
	db := r.getDB(tx)
	var feedbacks []*models.Feedback
	var total int64

	query := db.WithContext(ctx).Model(&models.Feedback{})
	if filters.Rating != nil {
		query = query.Where("rating = ?", *filters.Rating)
	}
	if filters.RevieweeID != nil {
		query = query.Where("reviewee_id = ?", *filters.RevieweeID)
	}
	if filters.Search != nil {
		query = query.Where("comment ILIKE ?", "%"+*filters.Search+"%")
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, handleDBError(err, "count feedback")
	}

	query = applyPaginationAndSorting(query, filters.Limit, filters.Offset, filters.SortBy, filters.SortOrder)

	if err := query.
		Preload("Reviewer").
		Preload("Reviewee").
		Find(&feedbacks).Error; err != nil {
		return nil, 0, handleDBError(err, "list feedback")
	}

	return feedbacks, total, nil
}

func (r *feedbackRepository) ExistsForPair(ctx context.Context, tx *gorm.DB, reviewerID, revieweeID uint) (bool, error) {
	db := r.getDB(tx)
	var count int64

	err := db.WithContext(ctx).
		Model(&models.Feedback{}).
		Where("reviewer_id = ? AND reviewee_id = ?", reviewerID, revieweeID).
		Count(&count).Error
	if err != nil {
		return false, handleDBError(err, "check feedback pair")
	}

	return count > 0, nil
}

func (r *feedbackRepository) RatingsForReviewee(ctx context.Context, tx *gorm.DB, revieweeID uint) ([]int, error) {
	db := r.getDB(tx)
	var ratings []int

	err := db.WithContext(ctx).
		Model(&models.Feedback{}).
		Where("reviewee_id = ?", revieweeID).
		Pluck("rating", &ratings).Error
	if err != nil {
		return nil, handleDBError(err, "ratings for reviewee")
	}

	return ratings, nil
}

func (r *feedbackRepository) DeleteAllForUser(ctx context.Context, tx *gorm.DB, userID uint) error {
	db := r.getDB(tx)
	err := db.WithContext(ctx).
		Where("reviewer_id = ? OR reviewee_id = ?", userID, userID).
		Delete(&models.Feedback{}).Error
	if err != nil {
		return handleDBError(err, "delete feedback for user")
	}
	return nil
}

// ===== STATISTICS =====

func (r *feedbackRepository) Stats(ctx context.Context, tx *gorm.DB, since time.Time) (*repositories.FeedbackStats, error) {
	db := r.getDB(tx)
	stats := &repositories.FeedbackStats{
		RatingDistribution: make(map[int]int64),
	}

	model := func() *gorm.DB {
		return db.WithContext(ctx).Model(&models.Feedback{})
	}

	if err := model().Count(&stats.Total).Error; err != nil {
		return nil, handleDBError(err, "feedback stats")
	}
	if err := model().Where("created_at >= ?", since).Count(&stats.RecentFeedback).Error; err != nil {
		return nil, handleDBError(err, "feedback stats")
	}

	if stats.Total > 0 {
		var avg *float64
		if err := model().Select("AVG(rating)").Scan(&avg).Error; err != nil {
			return nil, handleDBError(err, "feedback stats")
		}
		if avg != nil {
			stats.AverageRating = *avg
		}
	}

	var rows []struct {
		Rating int
		Count  int64
	}
	if err := model().
		Select("rating, COUNT(*) AS count").
		Group("rating").
		Scan(&rows).Error; err != nil {
		return nil, handleDBError(err, "feedback stats")
	}
	for _, row := range rows {
		stats.RatingDistribution[row.Rating] = row.Count
	}

	return stats, nil
}

func (r *feedbackRepository) SummaryForUser(ctx context.Context, tx *gorm.DB, revieweeID uint) (*repositories.FeedbackSummary, error) {
	db := r.getDB(tx)
	summary := &repositories.FeedbackSummary{
		RatingDistribution: make(map[int]int64),
	}

	scoped := func() *gorm.DB {
		return db.WithContext(ctx).
			Model(&models.Feedback{}).
			Where("reviewee_id = ?", revieweeID)
	}

	if err := scoped().Count(&summary.TotalFeedback).Error; err != nil {
		return nil, handleDBError(err, "feedback summary")
	}

	if summary.TotalFeedback > 0 {
		var avg *float64
		if err := scoped().Select("AVG(rating)").Scan(&avg).Error; err != nil {
			return nil, handleDBError(err, "feedback summary")
		}
		if avg != nil {
			summary.AverageRating = *avg
		}

		var rows []struct {
			Rating int
			Count  int64
		}
		if err := scoped().
			Select("rating, COUNT(*) AS count").
			Group("rating").
			Scan(&rows).Error; err != nil {
			return nil, handleDBError(err, "feedback summary")
		}
		for _, row := range rows {
			summary.RatingDistribution[row.Rating] = row.Count
		}
	}

	return summary, nil
}
