package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"gorm.io/gorm"

	"github.com/skillswap/swap-service/internal/events"
	"github.com/skillswap/swap-service/internal/models"
	"github.com/skillswap/swap-service/internal/repositories"
	"github.com/skillswap/swap-service/internal/validator"
)

type notificationService struct {
	repo      repositories.Repository
	db        *gorm.DB
	logger    *slog.Logger
	validator *validator.Validator
	publisher events.EventPublisher
}

func NewNotificationService(repo repositories.Repository, db *gorm.DB, logger *slog.Logger, validator *validator.Validator, publisher events.EventPublisher) NotificationService {
	return &notificationService{
		repo:      repo,
		db:        db,
		logger:    logger,
		validator: validator,
		publisher: publisher,
	}
}

// ===== CORE OPERATIONS =====

func (s *notificationService) Create(ctx context.Context, req *CreateNotificationRequest, actor *models.User) (*models.Notification, error) {
	s.logger.Info("Creating notification",
		"type", req.Type, "actor_id", actorID(actor), "platform_wide", req.RecipientID == nil)

	if errs := s.validator.Business().ValidateNotificationCreate(req); len(errs) > 0 {
		return nil, fmt.Errorf("validation failed: %w", errs)
	}

	// Manual notification creation is an admin surface; user-facing
	// notifications are produced by the swap and feedback flows.
	if actor == nil || !actor.IsAdmin() {
		return nil, NewPermissionError(actorID(actor), 0, "notification", "create", "admin role required")
	}

	if req.RecipientID != nil {
		if _, err := s.repo.User().GetByID(ctx, nil, *req.RecipientID); err != nil {
			if repositories.IsNotFoundError(err) {
				return nil, ErrUserNotFound
			}
			return nil, fmt.Errorf("failed to get recipient: %w", err)
		}
	}

	notification := &models.Notification{
		Title:       req.Title,
		Message:     req.Message,
		Type:        req.Type,
		Priority:    req.Priority,
		RecipientID: req.RecipientID,
		CreatedBy:   actor.ID,
		IsActive:    true,
		ExpiresAt:   req.ExpiresAt,
	}
	if notification.Priority == "" {
		notification.Priority = models.PriorityMedium
	}

	if err := s.repo.Notification().Create(ctx, nil, notification); err != nil {
		return nil, fmt.Errorf("failed to create notification: %w", err)
	}

	if notification.RecipientID == nil {
		event := events.NewEvent(events.EventPlatformBroadcast, &events.BroadcastEvent{
			NotificationID: notification.ID,
			Type:           string(notification.Type),
			Title:          notification.Title,
			Priority:       string(notification.Priority),
		})
		if err := s.publisher.Publish(events.TopicNotificationEvents, event); err != nil {
			s.logger.Error("Failed to publish broadcast event",
				"notification_id", notification.ID, "error", err)
		}
	}

	s.logger.Info("Notification created successfully", "notification_id", notification.ID)
	return notification, nil
}

func (s *notificationService) GetForUser(ctx context.Context, actor *models.User, filters repositories.NotificationFilters) (*NotificationListResponse, error) {
	notifications, total, err := s.repo.Notification().GetByRecipient(ctx, nil, actor.ID, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}

	unread, err := s.repo.Notification().CountUnread(ctx, nil, actor.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to count unread notifications: %w", err)
	}

	return &NotificationListResponse{
		Notifications: notifications,
		UnreadCount:   unread,
		Total:         total,
		Page:          pageFrom(filters.Limit, filters.Offset),
		Size:          filters.Limit,
		TotalPages:    totalPagesFrom(total, filters.Limit),
	}, nil
}

func (s *notificationService) MarkRead(ctx context.Context, id uint, actor *models.User) (*models.Notification, error) {
	notification, err := s.getOwned(ctx, id, actor, "mark read")
	if err != nil {
		return nil, err
	}

	if notification.IsActive {
		notification.IsActive = false
		if err := s.repo.Notification().Update(ctx, nil, notification); err != nil {
			return nil, fmt.Errorf("failed to update notification: %w", err)
		}
	}

	return notification, nil
}

func (s *notificationService) MarkAllRead(ctx context.Context, actor *models.User) (int64, error) {
	active := true
	filters := repositories.NotificationFilters{IsActive: &active}

	notifications, _, err := s.repo.Notification().GetByRecipient(ctx, nil, actor.ID, filters)
	if err != nil {
		return 0, fmt.Errorf("failed to list notifications: %w", err)
	}

	var marked int64
	err = s.repo.WithTransaction(ctx, func(txRepo repositories.Repository) error {
		for _, notification := range notifications {
			// Platform-wide rows are shared; read state only applies to
			// the user's own notifications.
			if notification.RecipientID == nil {
				continue
			}
			notification.IsActive = false
			if err := txRepo.Notification().Update(ctx, nil, notification); err != nil {
				return fmt.Errorf("failed to update notification: %w", err)
			}
			marked++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	s.logger.Info("Notifications marked read", "user_id", actor.ID, "count", marked)
	return marked, nil
}

func (s *notificationService) Delete(ctx context.Context, id uint, actor *models.User) error {
	notification, err := s.repo.Notification().GetByID(ctx, nil, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrNotificationNotFound
		}
		return fmt.Errorf("failed to get notification: %w", err)
	}

	owned := notification.RecipientID != nil && *notification.RecipientID == actor.ID
	if !owned && !actor.IsAdmin() {
		return NewPermissionError(actor.ID, id, "notification", "delete", "not recipient or admin")
	}

	if err := s.repo.Notification().Delete(ctx, nil, id); err != nil {
		return fmt.Errorf("failed to delete notification: %w", err)
	}

	return nil
}

func (s *notificationService) UnreadCount(ctx context.Context, actor *models.User) (int64, error) {
	count, err := s.repo.Notification().CountUnread(ctx, nil, actor.ID)
	if err != nil {
		return 0, fmt.Errorf("failed to count unread notifications: %w", err)
	}
	return count, nil
}

// ===== ADMIN OPERATIONS =====

func (s *notificationService) List(ctx context.Context, filters repositories.NotificationFilters, actor *models.User) (*NotificationListResponse, error) {
	if actor == nil || !actor.IsAdmin() {
		return nil, NewPermissionError(actorID(actor), 0, "notification", "list", "admin role required")
	}

	notifications, total, err := s.repo.Notification().List(ctx, nil, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}

	return &NotificationListResponse{
		Notifications: notifications,
		Total:         total,
		Page:          pageFrom(filters.Limit, filters.Offset),
		Size:          filters.Limit,
		TotalPages:    totalPagesFrom(total, filters.Limit),
	}, nil
}

func (s *notificationService) Update(ctx context.Context, id uint, req *UpdateNotificationRequest, actor *models.User) (*models.Notification, error) {
	if actor == nil || !actor.IsAdmin() {
		return nil, NewPermissionError(actorID(actor), id, "notification", "update", "admin role required")
	}

	if errs := s.validator.Business().Validate(req); len(errs) > 0 {
		return nil, fmt.Errorf("validation failed: %w", errs)
	}

	notification, err := s.repo.Notification().GetByID(ctx, nil, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrNotificationNotFound
		}
		return nil, fmt.Errorf("failed to get notification: %w", err)
	}

	if req.Title != nil {
		notification.Title = *req.Title
	}
	if req.Message != nil {
		notification.Message = *req.Message
	}
	if req.Priority != nil {
		notification.Priority = *req.Priority
	}
	if req.IsActive != nil {
		notification.IsActive = *req.IsActive
	}
	if req.ExpiresAt != nil {
		notification.ExpiresAt = req.ExpiresAt
	}

	if err := s.repo.Notification().Update(ctx, nil, notification); err != nil {
		return nil, fmt.Errorf("failed to update notification: %w", err)
	}

	s.logger.Info("Notification updated", "notification_id", id, "actor_id", actor.ID)
	return notification, nil
}

func (s *notificationService) BulkDelete(ctx context.Context, ids []uint, actor *models.User) (int64, error) {
	if actor == nil || !actor.IsAdmin() {
		return 0, NewPermissionError(actorID(actor), 0, "notification", "delete", "admin role required")
	}

	deleted, err := s.repo.Notification().BulkDelete(ctx, nil, ids)
	if err != nil {
		return 0, fmt.Errorf("failed to bulk delete notifications: %w", err)
	}

	s.logger.Info("Notifications bulk deleted", "count", deleted, "actor_id", actor.ID)
	return deleted, nil
}

// DeactivateExpired is run periodically by the maintenance loop.
func (s *notificationService) DeactivateExpired(ctx context.Context) (int64, error) {
	deactivated, err := s.repo.Notification().DeactivateExpired(ctx, nil, time.Now())
	if err != nil {
		return 0, fmt.Errorf("failed to deactivate expired notifications: %w", err)
	}

	if deactivated > 0 {
		s.logger.Info("Expired notifications deactivated", "count", deactivated)
	}
	return deactivated, nil
}

func (s *notificationService) Stats(ctx context.Context, actor *models.User) (*repositories.NotificationStats, error) {
	if actor == nil || !actor.IsAdmin() {
		return nil, NewPermissionError(actorID(actor), 0, "notification", "stats", "admin role required")
	}

	stats, err := s.repo.Notification().Stats(ctx, nil, time.Now().AddDate(0, 0, -30))
	if err != nil {
		return nil, fmt.Errorf("failed to get notification stats: %w", err)
	}
	return stats, nil
}

// ===== HELPERS =====

func (s *notificationService) getOwned(ctx context.Context, id uint, actor *models.User, action string) (*models.Notification, error) {
	notification, err := s.repo.Notification().GetByID(ctx, nil, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrNotificationNotFound
		}
		return nil, fmt.Errorf("failed to get notification: %w", err)
	}

	if notification.RecipientID == nil || *notification.RecipientID != actor.ID {
		return nil, NewPermissionError(actor.ID, id, "notification", action, "not the recipient")
	}

	return notification, nil
}
