package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"gorm.io/gorm"

	"github.com/skillswap/swap-service/internal/models"
	"github.com/skillswap/swap-service/internal/repositories"
	"github.com/skillswap/swap-service/internal/storage"
	"github.com/skillswap/swap-service/internal/validator"
)

type userService struct {
	repo      repositories.Repository
	db        *gorm.DB
	logger    *slog.Logger
	validator *validator.Validator
	images    storage.ImageStore
}

func NewUserService(repo repositories.Repository, db *gorm.DB, logger *slog.Logger, validator *validator.Validator, images storage.ImageStore) UserService {
	return &userService{
		repo:      repo,
		db:        db,
		logger:    logger,
		validator: validator,
		images:    images,
	}
}

// ===== CORE CRUD OPERATIONS =====

func (s *userService) Create(ctx context.Context, req *CreateUserRequest) (*UserResponse, error) {
	s.logger.Info("Creating user", "external_id", req.ExternalID, "email", req.Email)

	// Validate request
	if err := s.validator.Validate(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	if existing, err := s.repo.User().GetByExternalID(ctx, nil, req.ExternalID); err == nil && existing != nil {
		return nil, NewConflictError("user", "profile already exists for this identity")
	}

	user := &models.User{
		ExternalID:   req.ExternalID,
		Name:         req.Name,
		Email:        req.Email,
		Location:     req.Location,
		Availability: req.Availability,
		Role:         models.RoleUser,
		IsPublic:     true,
	}
	if user.Availability == "" {
		user.Availability = models.AvailabilityWeekends
	}

	err := s.repo.WithTransaction(ctx, func(txRepo repositories.Repository) error {
		if err := txRepo.User().Create(ctx, nil, user); err != nil {
			if repositories.IsDuplicateError(err) {
				return NewConflictError("user", "email or identity already registered")
			}
			return fmt.Errorf("failed to create user: %w", err)
		}

		if len(req.SkillsOffered) > 0 {
			if err := s.assignSkills(ctx, txRepo, user.ID, req.SkillsOffered, "offered"); err != nil {
				return err
			}
		}
		if len(req.SkillsWanted) > 0 {
			if err := s.assignSkills(ctx, txRepo, user.ID, req.SkillsWanted, "wanted"); err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	created, err := s.repo.User().GetByID(ctx, nil, user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to reload user: %w", err)
	}

	s.logger.Info("User created successfully", "user_id", created.ID)

	return s.buildUserResponse(created, created), nil
}

func (s *userService) GetByID(ctx context.Context, id uint, actor *models.User) (*UserResponse, error) {
	user, err := s.repo.User().GetByID(ctx, nil, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	// Private profiles are visible to their owner and admins only.
	if !user.IsPublic && !s.canManage(user.ID, actor) {
		return nil, ErrUserNotFound
	}

	return s.buildUserResponse(user, actor), nil
}

func (s *userService) GetByExternalID(ctx context.Context, externalID string) (*models.User, error) {
	user, err := s.repo.User().GetByExternalID(ctx, nil, externalID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user by external id: %w", err)
	}
	return user, nil
}

func (s *userService) Update(ctx context.Context, id uint, req *UpdateUserRequest, actor *models.User) (*UserResponse, error) {
	s.logger.Info("Updating user", "user_id", id, "actor_id", actorID(actor))

	if err := s.validator.Validate(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	if !s.canManage(id, actor) {
		return nil, NewPermissionError(actorID(actor), id, "user", "update", "not profile owner or admin")
	}

	user, err := s.repo.User().GetByID(ctx, nil, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	if req.Name != nil {
		user.Name = *req.Name
	}
	if req.Location != nil {
		user.Location = *req.Location
	}
	if req.Availability != nil {
		user.Availability = *req.Availability
	}
	if req.IsPublic != nil {
		user.IsPublic = *req.IsPublic
	}

	err = s.repo.WithTransaction(ctx, func(txRepo repositories.Repository) error {
		if err := txRepo.User().Update(ctx, nil, user); err != nil {
			return fmt.Errorf("failed to update user: %w", err)
		}

		if req.SkillsOffered != nil {
			if err := s.assignSkills(ctx, txRepo, user.ID, req.SkillsOffered, "offered"); err != nil {
				return err
			}
		}
		if req.SkillsWanted != nil {
			if err := s.assignSkills(ctx, txRepo, user.ID, req.SkillsWanted, "wanted"); err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	updated, err := s.repo.User().GetByID(ctx, nil, id)
	if err != nil {
		return nil, fmt.Errorf("failed to reload user: %w", err)
	}

	s.logger.Info("User updated successfully", "user_id", id)

	return s.buildUserResponse(updated, actor), nil
}

func (s *userService) Delete(ctx context.Context, id uint, actor *models.User) error {
	s.logger.Info("Deleting user", "user_id", id, "actor_id", actorID(actor))

	if !s.canManage(id, actor) {
		return NewPermissionError(actorID(actor), id, "user", "delete", "not profile owner or admin")
	}

	if _, err := s.repo.User().GetByID(ctx, nil, id); err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrUserNotFound
		}
		return fmt.Errorf("failed to get user: %w", err)
	}

	// An account with open exchanges cannot disappear under its
	// counterparties; swaps must be resolved first.
	active, err := s.repo.SwapRequest().CountActiveForUser(ctx, nil, id)
	if err != nil {
		return fmt.Errorf("failed to count active swaps: %w", err)
	}
	if active > 0 {
		return NewConflictError("user", fmt.Sprintf("cannot delete account with %d active swap requests", active))
	}

	err = s.repo.WithTransaction(ctx, func(txRepo repositories.Repository) error {
		if err := txRepo.Feedback().DeleteAllForUser(ctx, nil, id); err != nil {
			return fmt.Errorf("failed to delete feedback: %w", err)
		}
		if err := txRepo.SwapRequest().DeleteAllForUser(ctx, nil, id); err != nil {
			return fmt.Errorf("failed to delete swap requests: %w", err)
		}
		if err := txRepo.User().Delete(ctx, nil, id); err != nil {
			return fmt.Errorf("failed to delete user: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.logger.Info("User deleted successfully", "user_id", id)
	return nil
}

// ===== LIST AND SEARCH OPERATIONS =====

func (s *userService) List(ctx context.Context, filters repositories.UserFilters, actor *models.User) (*UserListResponse, error) {
	// Non-admin listings only surface public, non-banned profiles.
	if actor == nil || !actor.IsAdmin() {
		public := true
		notBanned := false
		filters.IsPublic = &public
		filters.IsBanned = &notBanned
	}

	users, total, err := s.repo.User().List(ctx, nil, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}

	return s.buildUserListResponse(users, total, filters.Limit, filters.Offset, actor), nil
}

func (s *userService) SearchBySkill(ctx context.Context, skillNames []string, skillType string, filters repositories.UserFilters) (*UserListResponse, error) {
	var skillIDs []uint
	for _, name := range skillNames {
		skills, err := s.repo.Skill().SearchByName(ctx, nil, name)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve skill name: %w", err)
		}
		for _, skill := range skills {
			skillIDs = append(skillIDs, skill.ID)
		}
	}

	if len(skillIDs) == 0 {
		return &UserListResponse{Users: []*UserResponse{}, Page: pageFrom(filters.Limit, filters.Offset), Size: filters.Limit}, nil
	}

	users, total, err := s.repo.User().SearchBySkill(ctx, nil, skillIDs, skillType, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to search users by skill: %w", err)
	}

	return s.buildUserListResponse(users, total, filters.Limit, filters.Offset, nil), nil
}

// ===== PROFILE MANAGEMENT =====

func (s *userService) UpdateProfilePicture(ctx context.Context, id uint, actor *models.User, fileName string, data io.Reader) (*UserResponse, error) {
	if !s.canManage(id, actor) {
		return nil, NewPermissionError(actorID(actor), id, "user", "update", "not profile owner or admin")
	}

	user, err := s.repo.User().GetByID(ctx, nil, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	uri, publicID, err := s.images.Save(ctx, fileName, data)
	if err != nil {
		return nil, fmt.Errorf("failed to store profile picture: %w", err)
	}

	oldPublicID := user.ProfilePicturePublicID
	user.ProfilePictureURI = uri
	user.ProfilePicturePublicID = publicID

	if err := s.repo.User().Update(ctx, nil, user); err != nil {
		// Roll back the orphaned upload.
		_ = s.images.Delete(ctx, publicID)
		return nil, fmt.Errorf("failed to update user: %w", err)
	}

	if oldPublicID != "" {
		if err := s.images.Delete(ctx, oldPublicID); err != nil {
			s.logger.Warn("Failed to delete previous profile picture",
				"user_id", id, "public_id", oldPublicID, "error", err)
		}
	}

	s.logger.Info("Profile picture updated", "user_id", id)

	return s.buildUserResponse(user, actor), nil
}

func (s *userService) SetBanned(ctx context.Context, id uint, banned bool, actor *models.User) error {
	if actor == nil || !actor.IsAdmin() {
		return NewPermissionError(actorID(actor), id, "user", "ban", "admin role required")
	}
	if actor.ID == id {
		return NewConflictError("user", "admins cannot ban themselves")
	}

	user, err := s.repo.User().GetByID(ctx, nil, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrUserNotFound
		}
		return fmt.Errorf("failed to get user: %w", err)
	}

	user.IsBanned = banned
	if err := s.repo.User().Update(ctx, nil, user); err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}

	s.logger.Info("User ban state changed", "user_id", id, "banned", banned, "actor_id", actor.ID)
	return nil
}

func (s *userService) ChangeRole(ctx context.Context, id uint, role models.UserRole, actor *models.User) error {
	if actor == nil || !actor.IsAdmin() {
		return NewPermissionError(actorID(actor), id, "user", "change role", "admin role required")
	}
	if actor.ID == id {
		return NewConflictError("user", "admins cannot change their own role")
	}

	if err := s.validator.Validate(&validator.UserRoleUpdateRequest{Role: role}); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	user, err := s.repo.User().GetByID(ctx, nil, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrUserNotFound
		}
		return fmt.Errorf("failed to get user: %w", err)
	}

	user.Role = role
	if err := s.repo.User().Update(ctx, nil, user); err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}

	s.logger.Info("User role changed", "user_id", id, "role", role, "actor_id", actor.ID)
	return nil
}

// ===== HELPERS =====

// assignSkills validates that every referenced skill exists before replacing
// the association set.
func (s *userService) assignSkills(ctx context.Context, repo repositories.Repository, userID uint, skillIDs []uint, skillType string) error {
	skills, err := repo.Skill().GetByIDs(ctx, nil, skillIDs)
	if err != nil {
		return fmt.Errorf("failed to load skills: %w", err)
	}
	if len(skills) != len(uniqueIDs(skillIDs)) {
		return NewConflictError("user", "one or more skills do not exist")
	}

	if skillType == "offered" {
		return repo.User().SetOfferedSkills(ctx, nil, userID, skillIDs)
	}
	return repo.User().SetWantedSkills(ctx, nil, userID, skillIDs)
}

func (s *userService) canManage(targetID uint, actor *models.User) bool {
	if actor == nil {
		return false
	}
	return actor.ID == targetID || actor.IsAdmin()
}

func (s *userService) buildUserResponse(user *models.User, actor *models.User) *UserResponse {
	manage := s.canManage(user.ID, actor)
	return &UserResponse{
		User:      user,
		CanEdit:   manage,
		CanDelete: manage,
	}
}

func (s *userService) buildUserListResponse(users []*models.User, total int64, limit, offset int, actor *models.User) *UserListResponse {
	responses := make([]*UserResponse, 0, len(users))
	for _, user := range users {
		responses = append(responses, s.buildUserResponse(user, actor))
	}

	return &UserListResponse{
		Users:      responses,
		Total:      total,
		Page:       pageFrom(limit, offset),
		Size:       limit,
		TotalPages: totalPagesFrom(total, limit),
	}
}

func actorID(actor *models.User) uint {
	if actor == nil {
		return 0
	}
	return actor.ID
}

func pageFrom(limit, offset int) int {
	if limit <= 0 {
		return 1
	}
	return offset/limit + 1
}

// totalPagesFrom is ceil(total/limit).
func totalPagesFrom(total int64, limit int) int {
	if limit <= 0 {
		return 1
	}
	return int((total + int64(limit) - 1) / int64(limit))
}

func uniqueIDs(ids []uint) []uint {
	seen := make(map[uint]struct{}, len(ids))
	out := make([]uint, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
