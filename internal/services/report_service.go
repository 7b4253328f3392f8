package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"

	"github.com/skillswap/swap-service/internal/models"
	"github.com/skillswap/swap-service/internal/repositories"
	"github.com/skillswap/swap-service/internal/validator"
)

type reportService struct {
	repo      repositories.Repository
	db        *gorm.DB
	logger    *slog.Logger
	validator *validator.Validator
}

func NewReportService(repo repositories.Repository, db *gorm.DB, logger *slog.Logger, validator *validator.Validator) ReportService {
	return &reportService{
		repo:      repo,
		db:        db,
		logger:    logger,
		validator: validator,
	}
}

// ===== REPORT GENERATION =====

func (s *reportService) Generate(ctx context.Context, req *GenerateReportRequest, actor *models.User) (*models.Report, error) {
	s.logger.Info("Generating report", "type", req.Type, "actor_id", actorID(actor))

	if err := s.validator.Validate(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}
	if actor == nil || !actor.IsAdmin() {
		return nil, NewPermissionError(actorID(actor), 0, "report", "generate", "admin role required")
	}

	since := time.Now().AddDate(0, 0, -30)
	if req.DateFrom != nil {
		since = *req.DateFrom
	}

	var payload interface{}
	var err error
	switch req.Type {
	case models.ReportUserActivity:
		payload, err = s.repo.User().ActivityStats(ctx, nil)
	case models.ReportSwapStats:
		payload, err = s.repo.SwapRequest().Stats(ctx, nil, since)
	case models.ReportFeedbackSummary:
		payload, err = s.repo.Feedback().Stats(ctx, nil, since)
	case models.ReportSkillPopularity:
		payload, err = s.repo.Skill().Popularity(ctx, nil, 20)
	default:
		return nil, NewConflictError("report", fmt.Sprintf("unknown report type %q", req.Type))
	}
	if err != nil {
		return nil, fmt.Errorf("failed to compute report data: %w", err)
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to encode report data: %w", err)
	}

	report := &models.Report{
		Type:        req.Type,
		Data:        data,
		GeneratedBy: actor.ID,
		DateFrom:    req.DateFrom,
		DateTo:      req.DateTo,
	}

	if err := s.repo.Report().Create(ctx, nil, report); err != nil {
		return nil, fmt.Errorf("failed to store report: %w", err)
	}

	s.logger.Info("Report generated successfully", "report_id", report.ID, "type", report.Type)
	return report, nil
}

func (s *reportService) GetByID(ctx context.Context, id uint, actor *models.User) (*models.Report, error) {
	if actor == nil || !actor.IsAdmin() {
		return nil, NewPermissionError(actorID(actor), id, "report", "read", "admin role required")
	}

	report, err := s.repo.Report().GetByID(ctx, nil, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrReportNotFound
		}
		return nil, fmt.Errorf("failed to get report: %w", err)
	}
	return report, nil
}

func (s *reportService) List(ctx context.Context, filters repositories.ReportFilters, actor *models.User) (*ReportListResponse, error) {
	if actor == nil || !actor.IsAdmin() {
		return nil, NewPermissionError(actorID(actor), 0, "report", "list", "admin role required")
	}

	reports, total, err := s.repo.Report().List(ctx, nil, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list reports: %w", err)
	}

	return &ReportListResponse{
		Reports:    reports,
		Total:      total,
		Page:       pageFrom(filters.Limit, filters.Offset),
		Size:       filters.Limit,
		TotalPages: totalPagesFrom(total, filters.Limit),
	}, nil
}

// ===== LIVE DASHBOARD =====

func (s *reportService) PlatformStats(ctx context.Context, actor *models.User) (*PlatformStats, error) {
	if actor == nil || !actor.IsAdmin() {
		return nil, NewPermissionError(actorID(actor), 0, "report", "stats", "admin role required")
	}

	since := time.Now().AddDate(0, 0, -30)

	users, err := s.repo.User().ActivityStats(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to get user stats: %w", err)
	}
	swaps, err := s.repo.SwapRequest().Stats(ctx, nil, since)
	if err != nil {
		return nil, fmt.Errorf("failed to get swap stats: %w", err)
	}
	feedback, err := s.repo.Feedback().Stats(ctx, nil, since)
	if err != nil {
		return nil, fmt.Errorf("failed to get feedback stats: %w", err)
	}
	notifications, err := s.repo.Notification().Stats(ctx, nil, since)
	if err != nil {
		return nil, fmt.Errorf("failed to get notification stats: %w", err)
	}
	topSkills, err := s.repo.Skill().Popularity(ctx, nil, 10)
	if err != nil {
		return nil, fmt.Errorf("failed to get skill popularity: %w", err)
	}

	return &PlatformStats{
		Users:         users,
		Swaps:         swaps,
		Feedback:      feedback,
		Notifications: notifications,
		TopSkills:     topSkills,
	}, nil
}

// ===== SPREADSHEET EXPORTS =====

func (s *reportService) ExportUsers(ctx context.Context, actor *models.User) ([]byte, error) {
	if actor == nil || !actor.IsAdmin() {
		return nil, NewPermissionError(actorID(actor), 0, "report", "export", "admin role required")
	}

	users, _, err := s.repo.User().List(ctx, nil, repositories.UserFilters{
		SortBy:    "created_at",
		SortOrder: "asc",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load users: %w", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Users"
	f.SetSheetName("Sheet1", sheet)

	headers := []string{"ID", "Name", "Email", "Location", "Availability", "Role", "Rating", "Rating Count", "Public", "Banned", "Joined"}
	for i, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheet, cell, header)
	}

	for row, user := range users {
		values := []interface{}{
			user.ID,
			user.Name,
			user.Email,
			user.Location,
			string(user.Availability),
			string(user.Role),
			user.RatingAverage,
			user.RatingCount,
			user.IsPublic,
			user.IsBanned,
			user.CreatedAt.Format(time.RFC3339),
		}
		for col, value := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row+2)
			f.SetCellValue(sheet, cell, value)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to build export: %w", err)
	}

	s.logger.Info("Users exported", "count", len(users), "actor_id", actor.ID)
	return buf.Bytes(), nil
}

func (s *reportService) ExportSwaps(ctx context.Context, actor *models.User) ([]byte, error) {
	if actor == nil || !actor.IsAdmin() {
		return nil, NewPermissionError(actorID(actor), 0, "report", "export", "admin role required")
	}

	swaps, _, err := s.repo.SwapRequest().List(ctx, nil, repositories.SwapRequestFilters{
		SortBy:    "created_at",
		SortOrder: "asc",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load swap requests: %w", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Swap Requests"
	f.SetSheetName("Sheet1", sheet)

	headers := []string{"ID", "Requester", "Receiver", "Skill Offered", "Skill Requested", "Status", "Created", "Completed"}
	for i, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheet, cell, header)
	}

	for row, swap := range swaps {
		completed := ""
		if swap.CompletedAt != nil {
			completed = swap.CompletedAt.Format(time.RFC3339)
		}
		values := []interface{}{
			swap.ID,
			userName(swap.Requester, swap.RequesterID),
			userName(swap.Receiver, swap.ReceiverID),
			skillName(swap.SkillOffered, swap.SkillOfferedID),
			skillName(swap.SkillRequested, swap.SkillRequestedID),
			string(swap.Status),
			swap.CreatedAt.Format(time.RFC3339),
			completed,
		}
		for col, value := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row+2)
			f.SetCellValue(sheet, cell, value)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to build export: %w", err)
	}

	s.logger.Info("Swap requests exported", "count", len(swaps), "actor_id", actor.ID)
	return buf.Bytes(), nil
}

func userName(user *models.User, id uint) string {
	if user != nil {
		return user.Name
	}
	return fmt.Sprintf("user %d", id)
}

func skillName(skill *models.Skill, id uint) string {
	if skill != nil {
		return skill.Name
	}
	return fmt.Sprintf("skill %d", id)
}
