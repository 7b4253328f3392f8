package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"gorm.io/gorm"

	"github.com/skillswap/swap-service/internal/models"
	"github.com/skillswap/swap-service/internal/repositories"
	"github.com/skillswap/swap-service/internal/validator"
)

type skillService struct {
	repo      repositories.Repository
	db        *gorm.DB
	logger    *slog.Logger
	validator *validator.Validator
}

func NewSkillService(repo repositories.Repository, db *gorm.DB, logger *slog.Logger, validator *validator.Validator) SkillService {
	return &skillService{
		repo:      repo,
		db:        db,
		logger:    logger,
		validator: validator,
	}
}

// ===== CORE CRUD OPERATIONS =====

func (s *skillService) Create(ctx context.Context, req *CreateSkillRequest, actor *models.User) (*SkillResponse, error) {
	s.logger.Info("Creating skill", "name", req.Name, "actor_id", actorID(actor))

	if err := s.validator.Validate(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	name := strings.TrimSpace(req.Name)

	// Name uniqueness is case-insensitive: "guitar" and "Guitar" are the
	// same catalog entry.
	exists, err := s.repo.Skill().ExistsByName(ctx, nil, name, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to check skill name uniqueness: %w", err)
	}
	if exists {
		return nil, NewConflictError("skill", fmt.Sprintf("skill %q already exists", name))
	}

	skill := &models.Skill{
		Name:        name,
		Description: req.Description,
		CreatedBy:   actor.ID,
	}
	// Only admins can seed curated skills directly.
	if req.IsGlobal != nil && *req.IsGlobal && actor.IsAdmin() {
		skill.IsGlobal = true
	}

	if err := s.repo.Skill().Create(ctx, nil, skill); err != nil {
		return nil, fmt.Errorf("failed to create skill: %w", err)
	}

	s.logger.Info("Skill created successfully", "skill_id", skill.ID)

	return s.buildSkillResponse(ctx, skill, actor), nil
}

func (s *skillService) GetByID(ctx context.Context, id uint) (*SkillResponse, error) {
	skill, err := s.repo.Skill().GetByID(ctx, nil, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrSkillNotFound
		}
		return nil, fmt.Errorf("failed to get skill: %w", err)
	}

	return s.buildSkillResponse(ctx, skill, nil), nil
}

func (s *skillService) Update(ctx context.Context, id uint, req *UpdateSkillRequest, actor *models.User) (*SkillResponse, error) {
	s.logger.Info("Updating skill", "skill_id", id, "actor_id", actorID(actor))

	if err := s.validator.Validate(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	skill, err := s.repo.Skill().GetByID(ctx, nil, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrSkillNotFound
		}
		return nil, fmt.Errorf("failed to get skill: %w", err)
	}

	if !s.canManage(skill, actor) {
		return nil, NewPermissionError(actorID(actor), id, "skill", "update", "not creator or admin")
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if !strings.EqualFold(name, skill.Name) {
			exists, err := s.repo.Skill().ExistsByName(ctx, nil, name, skill.ID)
			if err != nil {
				return nil, fmt.Errorf("failed to check skill name uniqueness: %w", err)
			}
			if exists {
				return nil, NewConflictError("skill", fmt.Sprintf("skill %q already exists", name))
			}
		}
		skill.Name = name
	}
	if req.Description != nil {
		skill.Description = *req.Description
	}
	if req.IsGlobal != nil && actor.IsAdmin() {
		skill.IsGlobal = *req.IsGlobal
	}

	if err := s.repo.Skill().Update(ctx, nil, skill); err != nil {
		return nil, fmt.Errorf("failed to update skill: %w", err)
	}

	s.logger.Info("Skill updated successfully", "skill_id", id)

	return s.buildSkillResponse(ctx, skill, actor), nil
}

func (s *skillService) Delete(ctx context.Context, id uint, actor *models.User) error {
	s.logger.Info("Deleting skill", "skill_id", id, "actor_id", actorID(actor))

	skill, err := s.repo.Skill().GetByID(ctx, nil, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrSkillNotFound
		}
		return fmt.Errorf("failed to get skill: %w", err)
	}

	if !s.canManage(skill, actor) {
		return NewPermissionError(actorID(actor), id, "skill", "delete", "not creator or admin")
	}

	// A skill referenced by any profile stays in the catalog.
	usage, err := s.repo.User().CountUsingSkill(ctx, nil, id)
	if err != nil {
		return fmt.Errorf("failed to count skill usage: %w", err)
	}
	if usage > 0 {
		return NewConflictError("skill", fmt.Sprintf("skill is listed on %d profiles", usage))
	}

	if err := s.repo.Skill().Delete(ctx, nil, id); err != nil {
		return fmt.Errorf("failed to delete skill: %w", err)
	}

	s.logger.Info("Skill deleted successfully", "skill_id", id)
	return nil
}

// ===== LIST AND SEARCH OPERATIONS =====

func (s *skillService) List(ctx context.Context, filters repositories.SkillFilters) (*SkillListResponse, error) {
	skills, total, err := s.repo.Skill().List(ctx, nil, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list skills: %w", err)
	}

	return s.buildSkillListResponse(ctx, skills, total, filters.Limit, filters.Offset, nil), nil
}

func (s *skillService) Search(ctx context.Context, query string, limit int) ([]*SkillResponse, error) {
	skills, err := s.repo.Skill().Search(ctx, nil, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to search skills: %w", err)
	}

	responses := make([]*SkillResponse, 0, len(skills))
	for _, skill := range skills {
		responses = append(responses, &SkillResponse{Skill: skill})
	}
	return responses, nil
}

// ===== MODERATION =====

func (s *skillService) GetPending(ctx context.Context, filters repositories.SkillFilters, actor *models.User) (*SkillListResponse, error) {
	if actor == nil || !actor.IsAdmin() {
		return nil, NewPermissionError(actorID(actor), 0, "skill", "moderate", "admin role required")
	}

	skills, total, err := s.repo.Skill().GetPending(ctx, nil, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list pending skills: %w", err)
	}

	return s.buildSkillListResponse(ctx, skills, total, filters.Limit, filters.Offset, actor), nil
}

func (s *skillService) Approve(ctx context.Context, id uint, actor *models.User) (*SkillResponse, error) {
	if actor == nil || !actor.IsAdmin() {
		return nil, NewPermissionError(actorID(actor), id, "skill", "approve", "admin role required")
	}

	skill, err := s.repo.Skill().GetByID(ctx, nil, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrSkillNotFound
		}
		return nil, fmt.Errorf("failed to get skill: %w", err)
	}

	if skill.IsGlobal {
		return nil, NewConflictError("skill", "skill is already approved")
	}

	skill.IsGlobal = true
	if err := s.repo.Skill().Update(ctx, nil, skill); err != nil {
		return nil, fmt.Errorf("failed to approve skill: %w", err)
	}

	s.logger.Info("Skill approved", "skill_id", id, "actor_id", actor.ID)

	return s.buildSkillResponse(ctx, skill, actor), nil
}

// Reject removes a pending skill from the catalog. Approved skills have to be
// demoted through Update first, and the usage guard from Delete applies.
func (s *skillService) Reject(ctx context.Context, id uint, actor *models.User) error {
	if actor == nil || !actor.IsAdmin() {
		return NewPermissionError(actorID(actor), id, "skill", "reject", "admin role required")
	}

	skill, err := s.repo.Skill().GetByID(ctx, nil, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrSkillNotFound
		}
		return fmt.Errorf("failed to get skill: %w", err)
	}

	if skill.IsGlobal {
		return NewConflictError("skill", "cannot reject an approved skill")
	}

	usage, err := s.repo.User().CountUsingSkill(ctx, nil, id)
	if err != nil {
		return fmt.Errorf("failed to count skill usage: %w", err)
	}
	if usage > 0 {
		return NewConflictError("skill", fmt.Sprintf("skill is listed on %d profiles", usage))
	}

	if err := s.repo.Skill().Delete(ctx, nil, id); err != nil {
		return fmt.Errorf("failed to reject skill: %w", err)
	}

	s.logger.Info("Skill rejected", "skill_id", id, "actor_id", actor.ID)
	return nil
}

// ===== HELPERS =====

func (s *skillService) canManage(skill *models.Skill, actor *models.User) bool {
	if actor == nil {
		return false
	}
	return actor.IsAdmin() || skill.CreatedBy == actor.ID
}

func (s *skillService) buildSkillResponse(ctx context.Context, skill *models.Skill, actor *models.User) *SkillResponse {
	usage, err := s.repo.User().CountUsingSkill(ctx, nil, skill.ID)
	if err != nil {
		s.logger.Warn("Failed to count skill usage", "skill_id", skill.ID, "error", err)
	}

	manage := s.canManage(skill, actor)
	return &SkillResponse{
		Skill:      skill,
		CanEdit:    manage,
		CanDelete:  manage,
		UsageCount: usage,
	}
}

func (s *skillService) buildSkillListResponse(ctx context.Context, skills []*models.Skill, total int64, limit, offset int, actor *models.User) *SkillListResponse {
	responses := make([]*SkillResponse, 0, len(skills))
	for _, skill := range skills {
		manage := s.canManage(skill, actor)
		responses = append(responses, &SkillResponse{
			Skill:     skill,
			CanEdit:   manage,
			CanDelete: manage,
		})
	}

	return &SkillListResponse{
		Skills:     responses,
		Total:      total,
		Page:       pageFrom(limit, offset),
		Size:       limit,
		TotalPages: totalPagesFrom(total, limit),
	}
}
