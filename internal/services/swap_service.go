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

type swapService struct {
	repo      repositories.Repository
	db        *gorm.DB
	logger    *slog.Logger
	validator *validator.Validator
	publisher events.EventPublisher
}

func NewSwapService(repo repositories.Repository, db *gorm.DB, logger *slog.Logger, validator *validator.Validator, publisher events.EventPublisher) SwapService {
	return &swapService{
		repo:      repo,
		db:        db,
		logger:    logger,
		validator: validator,
		publisher: publisher,
	}
}

// ===== CORE OPERATIONS =====

func (s *swapService) Create(ctx context.Context, req *CreateSwapRequest, actor *models.User) (*SwapResponse, error) {
	s.logger.Info("Creating swap request",
		"requester_id", actor.ID,
		"receiver_id", req.ReceiverID,
		"skill_offered_id", req.SkillOfferedID,
		"skill_requested_id", req.SkillRequestedID)

	if errs := s.validator.Business().ValidateSwapCreate(req, actor.ID); len(errs) > 0 {
		return nil, fmt.Errorf("validation failed: %w", errs)
	}

	receiver, err := s.repo.User().GetByID(ctx, nil, req.ReceiverID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get receiver: %w", err)
	}
	if receiver.IsBanned {
		return nil, NewConflictError("swap request", "receiver account is suspended")
	}
	if !receiver.IsPublic {
		return nil, NewConflictError("swap request", "receiver profile is private")
	}

	requester, err := s.repo.User().GetByID(ctx, nil, actor.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to get requester: %w", err)
	}

	// A viable exchange needs all four skill-profile conditions: the
	// requester teaches what they offer and wants what they ask for, and
	// the receiver mirrors both.
	if !hasSkill(requester.SkillsOffered, req.SkillOfferedID) {
		return nil, NewConflictError("swap request", "you do not offer the skill you are proposing to teach")
	}
	if !hasSkill(requester.SkillsWanted, req.SkillRequestedID) {
		return nil, NewConflictError("swap request", "the requested skill is not on your wanted list")
	}
	if !hasSkill(receiver.SkillsOffered, req.SkillRequestedID) {
		return nil, NewConflictError("swap request", "receiver does not offer the requested skill")
	}
	if !hasSkill(receiver.SkillsWanted, req.SkillOfferedID) {
		return nil, NewConflictError("swap request", "receiver does not want the offered skill")
	}

	// Same pair, same skills, still pending: in either direction this is a
	// duplicate of an open negotiation.
	if existing, err := s.repo.SwapRequest().FindPendingBetween(ctx, nil, actor.ID, req.ReceiverID, req.SkillOfferedID, req.SkillRequestedID); err == nil && existing != nil {
		return nil, NewConflictError("swap request", "a pending request for this exchange already exists")
	} else if err != nil && !repositories.IsNotFoundError(err) {
		return nil, fmt.Errorf("failed to check pending swaps: %w", err)
	}

	swap := &models.SwapRequest{
		RequesterID:      actor.ID,
		ReceiverID:       req.ReceiverID,
		SkillOfferedID:   req.SkillOfferedID,
		SkillRequestedID: req.SkillRequestedID,
		Message:          req.Message,
		Status:           models.SwapStatusPending,
	}

	err = s.repo.WithTransaction(ctx, func(txRepo repositories.Repository) error {
		if err := txRepo.SwapRequest().Create(ctx, nil, swap); err != nil {
			return fmt.Errorf("failed to create swap request: %w", err)
		}
		return s.createStatusNotification(ctx, txRepo, swap, models.NotificationSwapRequest, req.ReceiverID,
			"New swap request",
			fmt.Sprintf("%s proposed a skill swap with you", requester.Name))
	})
	if err != nil {
		return nil, err
	}

	s.publishSwapEvent(events.EventSwapRequested, swap, actor.ID)
	s.logger.Info("Swap request created successfully", "swap_request_id", swap.ID)

	return s.getResponse(ctx, swap.ID, actor)
}

func (s *swapService) GetByID(ctx context.Context, id uint, actor *models.User) (*SwapResponse, error) {
	swap, err := s.repo.SwapRequest().GetByID(ctx, nil, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrSwapRequestNotFound
		}
		return nil, fmt.Errorf("failed to get swap request: %w", err)
	}

	if !swap.Involves(actor.ID) && !actor.IsAdmin() {
		return nil, NewPermissionError(actor.ID, id, "swap request", "read", "not a participant")
	}

	return s.buildSwapResponse(swap, actor), nil
}

// Delete removes a pending request entirely. Only the requester may retract,
// and only before the receiver has acted; no notification is sent.
func (s *swapService) Delete(ctx context.Context, id uint, actor *models.User) error {
	s.logger.Info("Deleting swap request", "swap_request_id", id, "actor_id", actor.ID)

	swap, err := s.repo.SwapRequest().GetByID(ctx, nil, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrSwapRequestNotFound
		}
		return fmt.Errorf("failed to get swap request: %w", err)
	}

	if swap.RequesterID != actor.ID {
		return NewPermissionError(actor.ID, id, "swap request", "delete", "only the requester may delete")
	}
	if swap.Status != models.SwapStatusPending {
		return NewConflictError("swap request", fmt.Sprintf("cannot delete a %s request", swap.Status))
	}

	if err := s.repo.SwapRequest().Delete(ctx, nil, id); err != nil {
		return fmt.Errorf("failed to delete swap request: %w", err)
	}

	s.logger.Info("Swap request deleted", "swap_request_id", id)
	return nil
}

// ===== LIFECYCLE TRANSITIONS =====

func (s *swapService) Accept(ctx context.Context, id uint, actor *models.User) (*SwapResponse, error) {
	return s.transition(ctx, id, actor, transitionSpec{
		name:       "accept",
		from:       models.SwapStatusPending,
		to:         models.SwapStatusAccepted,
		allowed:    func(swap *models.SwapRequest) bool { return swap.ReceiverID == actor.ID },
		denied:     "only the receiver may accept",
		stamp:      func(swap *models.SwapRequest, now time.Time) { swap.AcceptedAt = &now },
		notifyType: models.NotificationSwapAccepted,
		eventType:  events.EventSwapAccepted,
		title:      "Swap request accepted",
		message:    "Your swap request was accepted",
	})
}

func (s *swapService) Reject(ctx context.Context, id uint, actor *models.User) (*SwapResponse, error) {
	return s.transition(ctx, id, actor, transitionSpec{
		name:       "reject",
		from:       models.SwapStatusPending,
		to:         models.SwapStatusRejected,
		allowed:    func(swap *models.SwapRequest) bool { return swap.ReceiverID == actor.ID },
		denied:     "only the receiver may reject",
		stamp:      func(swap *models.SwapRequest, now time.Time) { swap.RejectedAt = &now },
		notifyType: models.NotificationSwapRejected,
		eventType:  events.EventSwapRejected,
		title:      "Swap request rejected",
		message:    "Your swap request was rejected",
	})
}

func (s *swapService) Cancel(ctx context.Context, id uint, actor *models.User) (*SwapResponse, error) {
	return s.transition(ctx, id, actor, transitionSpec{
		name:       "cancel",
		from:       models.SwapStatusPending,
		to:         models.SwapStatusCancelled,
		allowed:    func(swap *models.SwapRequest) bool { return swap.RequesterID == actor.ID },
		denied:     "only the requester may cancel",
		stamp:      func(swap *models.SwapRequest, now time.Time) {},
		notifyType: models.NotificationSwapCancelled,
		eventType:  events.EventSwapCancelled,
		title:      "Swap request cancelled",
		message:    "A swap request sent to you was cancelled",
	})
}

func (s *swapService) Complete(ctx context.Context, id uint, actor *models.User) (*SwapResponse, error) {
	return s.transition(ctx, id, actor, transitionSpec{
		name:       "complete",
		from:       models.SwapStatusAccepted,
		to:         models.SwapStatusCompleted,
		allowed:    func(swap *models.SwapRequest) bool { return swap.Involves(actor.ID) },
		denied:     "not a participant",
		stamp:      func(swap *models.SwapRequest, now time.Time) { swap.CompletedAt = &now },
		notifyType: models.NotificationSwapCompleted,
		eventType:  events.EventSwapCompleted,
		title:      "Swap completed",
		message:    "Your skill swap was marked as completed",
	})
}

type transitionSpec struct {
	name       string
	from       models.SwapStatus
	to         models.SwapStatus
	allowed    func(*models.SwapRequest) bool
	denied     string
	stamp      func(*models.SwapRequest, time.Time)
	notifyType models.NotificationType
	eventType  string
	title      string
	message    string
}

func (s *swapService) transition(ctx context.Context, id uint, actor *models.User, spec transitionSpec) (*SwapResponse, error) {
	s.logger.Info("Swap transition requested",
		"swap_request_id", id, "transition", spec.name, "actor_id", actor.ID)

	swap, err := s.repo.SwapRequest().GetByID(ctx, nil, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrSwapRequestNotFound
		}
		return nil, fmt.Errorf("failed to get swap request: %w", err)
	}

	if !spec.allowed(swap) {
		return nil, NewPermissionError(actor.ID, id, "swap request", spec.name, spec.denied)
	}
	if swap.Status != spec.from {
		return nil, NewConflictError("swap request",
			fmt.Sprintf("cannot %s a %s request", spec.name, swap.Status))
	}

	now := time.Now()
	swap.Status = spec.to
	spec.stamp(swap, now)

	err = s.repo.WithTransaction(ctx, func(txRepo repositories.Repository) error {
		if err := txRepo.SwapRequest().Update(ctx, nil, swap); err != nil {
			return fmt.Errorf("failed to update swap request: %w", err)
		}
		return s.createStatusNotification(ctx, txRepo, swap, spec.notifyType,
			swap.OtherParty(actor.ID), spec.title, spec.message)
	})
	if err != nil {
		return nil, err
	}

	s.publishSwapEvent(spec.eventType, swap, actor.ID)
	s.logger.Info("Swap transition applied",
		"swap_request_id", id, "status", swap.Status)

	return s.getResponse(ctx, id, actor)
}

// ===== LIST OPERATIONS =====

func (s *swapService) ListForUser(ctx context.Context, actor *models.User, filters repositories.SwapRequestFilters) (*SwapListResponse, error) {
	filters.UserID = &actor.ID

	swaps, total, err := s.repo.SwapRequest().List(ctx, nil, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list swap requests: %w", err)
	}

	return s.buildSwapListResponse(swaps, total, filters.Limit, filters.Offset, actor), nil
}

func (s *swapService) GetPublic(ctx context.Context, filters repositories.SwapRequestFilters) (*SwapListResponse, error) {
	// The public board only shows open requests.
	pending := models.SwapStatusPending
	filters.Status = &pending

	swaps, total, err := s.repo.SwapRequest().GetPublic(ctx, nil, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list public swap requests: %w", err)
	}

	return s.buildSwapListResponse(swaps, total, filters.Limit, filters.Offset, nil), nil
}

func (s *swapService) List(ctx context.Context, filters repositories.SwapRequestFilters, actor *models.User) (*SwapListResponse, error) {
	if actor == nil || !actor.IsAdmin() {
		return nil, NewPermissionError(actorID(actor), 0, "swap request", "list", "admin role required")
	}

	swaps, total, err := s.repo.SwapRequest().List(ctx, nil, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list swap requests: %w", err)
	}

	return s.buildSwapListResponse(swaps, total, filters.Limit, filters.Offset, actor), nil
}

// ===== HELPERS =====

func hasSkill(skills []models.Skill, skillID uint) bool {
	for _, skill := range skills {
		if skill.ID == skillID {
			return true
		}
	}
	return false
}

func (s *swapService) createStatusNotification(ctx context.Context, repo repositories.Repository, swap *models.SwapRequest, nType models.NotificationType, recipientID uint, title, message string) error {
	notification := &models.Notification{
		Title:       title,
		Message:     message,
		Type:        nType,
		Priority:    models.PriorityMedium,
		RecipientID: &recipientID,
		CreatedBy:   swap.OtherParty(recipientID),
		IsActive:    true,
	}
	if err := repo.Notification().Create(ctx, nil, notification); err != nil {
		return fmt.Errorf("failed to create notification: %w", err)
	}
	return nil
}

func (s *swapService) publishSwapEvent(eventType string, swap *models.SwapRequest, actorID uint) {
	event := events.NewEvent(eventType, &events.SwapEvent{
		SwapRequestID:    swap.ID,
		RequesterID:      swap.RequesterID,
		ReceiverID:       swap.ReceiverID,
		SkillOfferedID:   swap.SkillOfferedID,
		SkillRequestedID: swap.SkillRequestedID,
		Status:           string(swap.Status),
		ActorID:          actorID,
	})

	if err := s.publisher.Publish(events.TopicSwapEvents, event); err != nil {
		// Event delivery is best-effort; the state change already committed.
		s.logger.Error("Failed to publish swap event",
			"event_type", eventType, "swap_request_id", swap.ID, "error", err)
	}
}

func (s *swapService) getResponse(ctx context.Context, id uint, actor *models.User) (*SwapResponse, error) {
	swap, err := s.repo.SwapRequest().GetByID(ctx, nil, id)
	if err != nil {
		return nil, fmt.Errorf("failed to reload swap request: %w", err)
	}
	return s.buildSwapResponse(swap, actor), nil
}

func (s *swapService) buildSwapResponse(swap *models.SwapRequest, actor *models.User) *SwapResponse {
	resp := &SwapResponse{SwapRequest: swap}
	if actor == nil {
		return resp
	}

	isRequester := swap.RequesterID == actor.ID
	isReceiver := swap.ReceiverID == actor.ID

	resp.CanAccept = isReceiver && swap.Status == models.SwapStatusPending
	resp.CanReject = isReceiver && swap.Status == models.SwapStatusPending
	resp.CanCancel = isRequester && swap.Status == models.SwapStatusPending
	resp.CanComplete = (isRequester || isReceiver) && swap.Status == models.SwapStatusAccepted
	resp.CanDelete = isRequester && swap.Status == models.SwapStatusPending
	return resp
}

func (s *swapService) buildSwapListResponse(swaps []*models.SwapRequest, total int64, limit, offset int, actor *models.User) *SwapListResponse {
	responses := make([]*SwapResponse, 0, len(swaps))
	for _, swap := range swaps {
		responses = append(responses, s.buildSwapResponse(swap, actor))
	}

	return &SwapListResponse{
		Swaps:      responses,
		Total:      total,
		Page:       pageFrom(limit, offset),
		Size:       limit,
		TotalPages: totalPagesFrom(total, limit),
	}
}
