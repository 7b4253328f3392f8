package services

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/skillswap/swap-service/internal/models"
	"github.com/skillswap/swap-service/internal/repositories"
	"github.com/skillswap/swap-service/internal/validator"
)

type reportTestEnv struct {
	repo    *fakeRepository
	service ReportService

	user  *models.User
	admin *models.User
}

func newReportTestEnv(t *testing.T) *reportTestEnv {
	t.Helper()

	repo := newFakeRepository()
	env := &reportTestEnv{
		repo:    repo,
		service: NewReportService(repo, nil, testLogger(), validator.New()),
	}

	env.user = seedUser(t, repo, "ext-user", "User", "user@example.com")
	env.admin = seedUser(t, repo, "ext-admin", "Admin", "admin@example.com")
	env.admin.Role = models.RoleAdmin

	return env
}

func TestReportService_Generate(t *testing.T) {
	ctx := context.Background()

	t.Run("stores a user activity snapshot", func(t *testing.T) {
		env := newReportTestEnv(t)

		report, err := env.service.Generate(ctx, &GenerateReportRequest{
			Type: models.ReportUserActivity,
		}, env.admin)
		if err != nil {
			t.Fatalf("Failed to generate report: %v", err)
		}

		if report.Type != models.ReportUserActivity {
			t.Errorf("Expected type %s, got %s", models.ReportUserActivity, report.Type)
		}
		if report.GeneratedBy != env.admin.ID {
			t.Errorf("Expected generator %d, got %d", env.admin.ID, report.GeneratedBy)
		}

		var stats repositories.UserActivityStats
		if err := json.Unmarshal(report.Data, &stats); err != nil {
			t.Fatalf("Report payload should be valid JSON: %v", err)
		}
		if stats.Total != 2 {
			t.Errorf("Expected 2 users in snapshot, got %d", stats.Total)
		}

		fetched, err := env.service.GetByID(ctx, report.ID, env.admin)
		if err != nil {
			t.Fatalf("Failed to fetch report: %v", err)
		}
		if fetched.ID != report.ID {
			t.Errorf("Expected report %d, got %d", report.ID, fetched.ID)
		}
	})

	t.Run("rejects unknown report type", func(t *testing.T) {
		env := newReportTestEnv(t)

		_, err := env.service.Generate(ctx, &GenerateReportRequest{
			Type: models.ReportType("sales_funnel"),
		}, env.admin)
		if err == nil {
			t.Fatal("Expected validation error for unknown type")
		}
	})

	t.Run("requires admin", func(t *testing.T) {
		env := newReportTestEnv(t)

		if _, err := env.service.Generate(ctx, &GenerateReportRequest{Type: models.ReportSwapStats}, env.user); !IsPermissionError(err) {
			t.Fatalf("Expected permission error, got %v", err)
		}
		if _, err := env.service.GetByID(ctx, 1, env.user); !IsPermissionError(err) {
			t.Fatalf("Expected permission error, got %v", err)
		}
		if _, err := env.service.List(ctx, repositories.ReportFilters{Limit: 10}, env.user); !IsPermissionError(err) {
			t.Fatalf("Expected permission error, got %v", err)
		}
		if _, err := env.service.PlatformStats(ctx, env.user); !IsPermissionError(err) {
			t.Fatalf("Expected permission error, got %v", err)
		}
	})

	t.Run("missing report yields not found", func(t *testing.T) {
		env := newReportTestEnv(t)

		if _, err := env.service.GetByID(ctx, 9999, env.admin); err != ErrReportNotFound {
			t.Fatalf("Expected ErrReportNotFound, got %v", err)
		}
	})
}

func TestReportService_PlatformStats(t *testing.T) {
	ctx := context.Background()
	env := newReportTestEnv(t)

	stats, err := env.service.PlatformStats(ctx, env.admin)
	if err != nil {
		t.Fatalf("Failed to get platform stats: %v", err)
	}

	if stats.Users == nil || stats.Swaps == nil || stats.Feedback == nil || stats.Notifications == nil {
		t.Fatal("Expected every stats section to be populated")
	}
	if stats.Users.Total != 2 {
		t.Errorf("Expected 2 users, got %d", stats.Users.Total)
	}
}

func TestReportService_ExportUsers(t *testing.T) {
	ctx := context.Background()
	env := newReportTestEnv(t)

	t.Run("requires admin", func(t *testing.T) {
		if _, err := env.service.ExportUsers(ctx, env.user); !IsPermissionError(err) {
			t.Fatalf("Expected permission error, got %v", err)
		}
	})

	t.Run("produces a readable workbook", func(t *testing.T) {
		data, err := env.service.ExportUsers(ctx, env.admin)
		if err != nil {
			t.Fatalf("Failed to export users: %v", err)
		}

		f, err := excelize.OpenReader(bytes.NewReader(data))
		if err != nil {
			t.Fatalf("Export should be a valid workbook: %v", err)
		}
		defer f.Close()

		rows, err := f.GetRows("Users")
		if err != nil {
			t.Fatalf("Failed to read Users sheet: %v", err)
		}
		// Header plus one row per user.
		if len(rows) != 3 {
			t.Fatalf("Expected 3 rows, got %d", len(rows))
		}
		if rows[0][0] != "ID" || rows[0][1] != "Name" {
			t.Errorf("Unexpected header row: %v", rows[0])
		}
		if rows[1][1] != "User" {
			t.Errorf("Expected first data row for User, got %v", rows[1])
		}
	})
}

func TestReportService_ExportSwaps(t *testing.T) {
	ctx := context.Background()
	env := newReportTestEnv(t)

	swap := &models.SwapRequest{
		RequesterID:      env.user.ID,
		ReceiverID:       env.admin.ID,
		SkillOfferedID:   1,
		SkillRequestedID: 2,
		Status:           models.SwapStatusPending,
	}
	if err := env.repo.swaps.Create(ctx, nil, swap); err != nil {
		t.Fatalf("Failed to seed swap: %v", err)
	}

	data, err := env.service.ExportSwaps(ctx, env.admin)
	if err != nil {
		t.Fatalf("Failed to export swaps: %v", err)
	}

	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("Export should be a valid workbook: %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows("Swap Requests")
	if err != nil {
		t.Fatalf("Failed to read sheet: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("Expected header and one data row, got %d rows", len(rows))
	}
	if rows[1][5] != string(models.SwapStatusPending) {
		t.Errorf("Expected status %s, got %v", models.SwapStatusPending, rows[1])
	}
}
