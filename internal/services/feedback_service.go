package services

import (
	"context"
	"fmt"
	"log/slog"

	"gorm.io/gorm"

	"github.com/skillswap/swap-service/internal/events"
	"github.com/skillswap/swap-service/internal/models"
	"github.com/skillswap/swap-service/internal/repositories"
	"github.com/skillswap/swap-service/internal/validator"
)

type feedbackService struct {
	repo      repositories.Repository
	db        *gorm.DB
	logger    *slog.Logger
	validator *validator.Validator
	publisher events.EventPublisher
}

func NewFeedbackService(repo repositories.Repository, db *gorm.DB, logger *slog.Logger, validator *validator.Validator, publisher events.EventPublisher) FeedbackService {
	return &feedbackService{
		repo:      repo,
		db:        db,
		logger:    logger,
		validator: validator,
		publisher: publisher,
	}
}

// ===== CORE OPERATIONS =====

func (s *feedbackService) Create(ctx context.Context, req *CreateFeedbackRequest, actor *models.User) (*FeedbackResponse, error) {
	s.logger.Info("Creating feedback",
		"reviewer_id", actor.ID, "reviewee_id", req.RevieweeID, "rating", req.Rating)

	if err := s.validator.Validate(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	if req.RevieweeID == actor.ID {
		return nil, NewConflictError("feedback", "cannot leave feedback for yourself")
	}

	if _, err := s.repo.User().GetByID(ctx, nil, req.RevieweeID); err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get reviewee: %w", err)
	}

	// Feedback is earned: the pair must share a completed swap, in either
	// direction.
	completed, err := s.repo.SwapRequest().HasCompletedBetween(ctx, nil, actor.ID, req.RevieweeID)
	if err != nil {
		return nil, fmt.Errorf("failed to check completed swaps: %w", err)
	}
	if !completed {
		return nil, NewConflictError("feedback", "no completed swap with this user")
	}

	exists, err := s.repo.Feedback().ExistsForPair(ctx, nil, actor.ID, req.RevieweeID)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing feedback: %w", err)
	}
	if exists {
		return nil, NewConflictError("feedback", "feedback for this user already submitted")
	}

	feedback := &models.Feedback{
		ReviewerID: actor.ID,
		RevieweeID: req.RevieweeID,
		Rating:     req.Rating,
		Comment:    req.Comment,
	}

	var average float64
	var count int
	err = s.repo.WithTransaction(ctx, func(txRepo repositories.Repository) error {
		if err := txRepo.Feedback().Create(ctx, nil, feedback); err != nil {
			if repositories.IsDuplicateError(err) {
				return NewConflictError("feedback", "feedback for this user already submitted")
			}
			return fmt.Errorf("failed to create feedback: %w", err)
		}

		average, count, err = s.recomputeRating(ctx, txRepo, req.RevieweeID)
		if err != nil {
			return err
		}

		notification := &models.Notification{
			Title:       "New feedback received",
			Message:     fmt.Sprintf("%s rated your swap %d stars", actor.Name, req.Rating),
			Type:        models.NotificationFeedbackReceived,
			Priority:    models.PriorityLow,
			RecipientID: &req.RevieweeID,
			CreatedBy:   actor.ID,
			IsActive:    true,
		}
		if err := txRepo.Notification().Create(ctx, nil, notification); err != nil {
			return fmt.Errorf("failed to create notification: %w", err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publishFeedbackEvent(feedback, average, count)
	s.logger.Info("Feedback created successfully",
		"feedback_id", feedback.ID, "reviewee_rating", average)

	return s.buildFeedbackResponse(feedback, actor), nil
}

func (s *feedbackService) GetByID(ctx context.Context, id uint) (*FeedbackResponse, error) {
	feedback, err := s.repo.Feedback().GetByID(ctx, nil, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrFeedbackNotFound
		}
		return nil, fmt.Errorf("failed to get feedback: %w", err)
	}

	return s.buildFeedbackResponse(feedback, nil), nil
}

func (s *feedbackService) Update(ctx context.Context, id uint, req *UpdateFeedbackRequest, actor *models.User) (*FeedbackResponse, error) {
	s.logger.Info("Updating feedback", "feedback_id", id, "actor_id", actor.ID)

	if err := s.validator.Validate(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	feedback, err := s.repo.Feedback().GetByID(ctx, nil, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrFeedbackNotFound
		}
		return nil, fmt.Errorf("failed to get feedback: %w", err)
	}

	if feedback.ReviewerID != actor.ID {
		return nil, NewPermissionError(actor.ID, id, "feedback", "update", "only the reviewer may edit")
	}

	ratingChanged := req.Rating != nil && *req.Rating != feedback.Rating
	if req.Rating != nil {
		feedback.Rating = *req.Rating
	}
	if req.Comment != nil {
		feedback.Comment = *req.Comment
	}

	var average float64
	var count int
	err = s.repo.WithTransaction(ctx, func(txRepo repositories.Repository) error {
		if err := txRepo.Feedback().Update(ctx, nil, feedback); err != nil {
			return fmt.Errorf("failed to update feedback: %w", err)
		}
		if ratingChanged {
			average, count, err = s.recomputeRating(ctx, txRepo, feedback.RevieweeID)
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if ratingChanged {
		s.publishFeedbackEvent(feedback, average, count)
	}
	s.logger.Info("Feedback updated successfully", "feedback_id", id)

	return s.buildFeedbackResponse(feedback, actor), nil
}

func (s *feedbackService) Delete(ctx context.Context, id uint, actor *models.User) error {
	s.logger.Info("Deleting feedback", "feedback_id", id, "actor_id", actor.ID)

	feedback, err := s.repo.Feedback().GetByID(ctx, nil, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrFeedbackNotFound
		}
		return fmt.Errorf("failed to get feedback: %w", err)
	}

	if feedback.ReviewerID != actor.ID && !actor.IsAdmin() {
		return NewPermissionError(actor.ID, id, "feedback", "delete", "not reviewer or admin")
	}

	err = s.repo.WithTransaction(ctx, func(txRepo repositories.Repository) error {
		if err := txRepo.Feedback().Delete(ctx, nil, id); err != nil {
			return fmt.Errorf("failed to delete feedback: %w", err)
		}
		_, _, err := s.recomputeRating(ctx, txRepo, feedback.RevieweeID)
		return err
	})
	if err != nil {
		return err
	}

	s.logger.Info("Feedback deleted successfully", "feedback_id", id)
	return nil
}

// ===== LIST OPERATIONS =====

func (s *feedbackService) List(ctx context.Context, filters repositories.FeedbackFilters, actor *models.User) (*FeedbackListResponse, error) {
	if actor == nil || !actor.IsAdmin() {
		return nil, NewPermissionError(actorID(actor), 0, "feedback", "list", "admin role required")
	}

	feedback, total, err := s.repo.Feedback().List(ctx, nil, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list feedback: %w", err)
	}

	return s.buildFeedbackListResponse(feedback, total, filters.Limit, filters.Offset, actor), nil
}

func (s *feedbackService) GetForUser(ctx context.Context, userID uint, filters repositories.FeedbackFilters) (*FeedbackListResponse, error) {
	filters.RevieweeID = &userID

	feedback, total, err := s.repo.Feedback().List(ctx, nil, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list feedback for user: %w", err)
	}

	return s.buildFeedbackListResponse(feedback, total, filters.Limit, filters.Offset, nil), nil
}

func (s *feedbackService) SummaryForUser(ctx context.Context, userID uint) (*repositories.FeedbackSummary, error) {
	summary, err := s.repo.Feedback().SummaryForUser(ctx, nil, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get feedback summary: %w", err)
	}
	return summary, nil
}

// ===== HELPERS =====

// recomputeRating rebuilds the reviewee's denormalized rollup from all their
// feedback rows. Full recomputation keeps the rollup correct across edits and
// deletes where incremental updates would drift.
func (s *feedbackService) recomputeRating(ctx context.Context, repo repositories.Repository, revieweeID uint) (float64, int, error) {
	ratings, err := repo.Feedback().RatingsForReviewee(ctx, nil, revieweeID)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to load ratings: %w", err)
	}

	average, count := ComputeRating(ratings)
	if err := repo.User().UpdateRating(ctx, nil, revieweeID, average, count); err != nil {
		return 0, 0, fmt.Errorf("failed to update rating rollup: %w", err)
	}

	return average, count, nil
}

func (s *feedbackService) publishFeedbackEvent(feedback *models.Feedback, average float64, count int) {
	event := events.NewEvent(events.EventFeedbackReceived, &events.FeedbackEvent{
		FeedbackID:    feedback.ID,
		ReviewerID:    feedback.ReviewerID,
		RevieweeID:    feedback.RevieweeID,
		Rating:        feedback.Rating,
		RatingAverage: average,
		RatingCount:   count,
	})

	if err := s.publisher.Publish(events.TopicFeedbackEvents, event); err != nil {
		s.logger.Error("Failed to publish feedback event",
			"feedback_id", feedback.ID, "error", err)
	}
}

func (s *feedbackService) buildFeedbackResponse(feedback *models.Feedback, actor *models.User) *FeedbackResponse {
	resp := &FeedbackResponse{Feedback: feedback}
	if actor != nil {
		resp.CanEdit = feedback.ReviewerID == actor.ID
		resp.CanDelete = feedback.ReviewerID == actor.ID || actor.IsAdmin()
	}
	return resp
}

func (s *feedbackService) buildFeedbackListResponse(feedback []*models.Feedback, total int64, limit, offset int, actor *models.User) *FeedbackListResponse {
	responses := make([]*FeedbackResponse, 0, len(feedback))
	for _, f := range feedback {
		responses = append(responses, s.buildFeedbackResponse(f, actor))
	}

	return &FeedbackListResponse{
		Feedback:   responses,
		Total:      total,
		Page:       pageFrom(limit, offset),
		Size:       limit,
		TotalPages: totalPagesFrom(total, limit),
	}
}
