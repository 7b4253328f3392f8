package services

import (
	"context"
	"testing"

	"github.com/skillswap/swap-service/internal/models"
	"github.com/skillswap/swap-service/internal/repositories"
	"github.com/skillswap/swap-service/internal/validator"
)

type skillTestEnv struct {
	repo    *fakeRepository
	service SkillService

	user  *models.User
	admin *models.User
}

func newSkillTestEnv(t *testing.T) *skillTestEnv {
	t.Helper()

	repo := newFakeRepository()
	env := &skillTestEnv{
		repo:    repo,
		service: NewSkillService(repo, nil, testLogger(), validator.New()),
	}

	env.user = seedUser(t, repo, "ext-user", "User", "user@example.com")
	env.admin = seedUser(t, repo, "ext-admin", "Admin", "admin@example.com")
	env.admin.Role = models.RoleAdmin

	return env
}

func TestSkillService_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("user submission stays pending", func(t *testing.T) {
		env := newSkillTestEnv(t)

		global := true
		skill, err := env.service.Create(ctx, &CreateSkillRequest{
			Name:     "Guitar",
			IsGlobal: &global,
		}, env.user)
		if err != nil {
			t.Fatalf("Failed to create skill: %v", err)
		}

		// Non-admins cannot seed curated entries.
		if skill.IsGlobal {
			t.Error("User-created skill should not be global")
		}
		if skill.CreatedBy != env.user.ID {
			t.Errorf("Expected CreatedBy %d, got %d", env.user.ID, skill.CreatedBy)
		}
	})

	t.Run("admin submission may be global", func(t *testing.T) {
		env := newSkillTestEnv(t)

		global := true
		skill, err := env.service.Create(ctx, &CreateSkillRequest{
			Name:     "Spanish",
			IsGlobal: &global,
		}, env.admin)
		if err != nil {
			t.Fatalf("Failed to create skill: %v", err)
		}
		if !skill.IsGlobal {
			t.Error("Admin-created skill should be global when requested")
		}
	})

	t.Run("name uniqueness is case-insensitive", func(t *testing.T) {
		env := newSkillTestEnv(t)

		if _, err := env.service.Create(ctx, &CreateSkillRequest{Name: "Guitar"}, env.user); err != nil {
			t.Fatalf("Failed to create skill: %v", err)
		}
		if _, err := env.service.Create(ctx, &CreateSkillRequest{Name: "  guitar "}, env.user); !IsConflictError(err) {
			t.Fatalf("Expected conflict error for case-insensitive duplicate, got %v", err)
		}
	})

	t.Run("name too short fails validation", func(t *testing.T) {
		env := newSkillTestEnv(t)

		if _, err := env.service.Create(ctx, &CreateSkillRequest{Name: "x"}, env.user); err == nil {
			t.Fatal("Expected validation error for one-character name")
		}
	})
}

func TestSkillService_Update(t *testing.T) {
	ctx := context.Background()

	t.Run("creator may rename, rename collision rejected", func(t *testing.T) {
		env := newSkillTestEnv(t)

		guitar, err := env.service.Create(ctx, &CreateSkillRequest{Name: "Guitar"}, env.user)
		if err != nil {
			t.Fatalf("Failed to create skill: %v", err)
		}
		if _, err := env.service.Create(ctx, &CreateSkillRequest{Name: "Piano"}, env.user); err != nil {
			t.Fatalf("Failed to create skill: %v", err)
		}

		name := "Piano"
		if _, err := env.service.Update(ctx, guitar.ID, &UpdateSkillRequest{Name: &name}, env.user); !IsConflictError(err) {
			t.Fatalf("Expected conflict error, got %v", err)
		}

		// Case-only rename of the same entry is fine.
		name = "GUITAR"
		updated, err := env.service.Update(ctx, guitar.ID, &UpdateSkillRequest{Name: &name}, env.user)
		if err != nil {
			t.Fatalf("Case-only rename should succeed: %v", err)
		}
		if updated.Name != "GUITAR" {
			t.Errorf("Expected name GUITAR, got %s", updated.Name)
		}
	})

	t.Run("non-creator may not edit", func(t *testing.T) {
		env := newSkillTestEnv(t)
		other := seedUser(t, env.repo, "ext-other", "Other", "other@example.com")

		skill, err := env.service.Create(ctx, &CreateSkillRequest{Name: "Guitar"}, env.user)
		if err != nil {
			t.Fatalf("Failed to create skill: %v", err)
		}

		name := "Banjo"
		if _, err := env.service.Update(ctx, skill.ID, &UpdateSkillRequest{Name: &name}, other); !IsPermissionError(err) {
			t.Fatalf("Expected permission error, got %v", err)
		}
	})
}

func TestSkillService_Delete(t *testing.T) {
	ctx := context.Background()

	t.Run("skill in use cannot be deleted", func(t *testing.T) {
		env := newSkillTestEnv(t)

		skill, err := env.service.Create(ctx, &CreateSkillRequest{Name: "Guitar"}, env.user)
		if err != nil {
			t.Fatalf("Failed to create skill: %v", err)
		}

		env.repo.users.SetOfferedSkills(ctx, nil, env.user.ID, []uint{skill.ID})

		if err := env.service.Delete(ctx, skill.ID, env.admin); !IsConflictError(err) {
			t.Fatalf("Expected conflict error, got %v", err)
		}

		env.repo.users.SetOfferedSkills(ctx, nil, env.user.ID, nil)

		if err := env.service.Delete(ctx, skill.ID, env.admin); err != nil {
			t.Fatalf("Unreferenced skill should delete: %v", err)
		}
	})
}

func TestSkillService_Moderation(t *testing.T) {
	ctx := context.Background()

	t.Run("approve promotes pending skill", func(t *testing.T) {
		env := newSkillTestEnv(t)

		skill, err := env.service.Create(ctx, &CreateSkillRequest{Name: "Guitar"}, env.user)
		if err != nil {
			t.Fatalf("Failed to create skill: %v", err)
		}

		pending, err := env.service.GetPending(ctx, repositories.SkillFilters{Limit: 10}, env.admin)
		if err != nil {
			t.Fatalf("Failed to list pending: %v", err)
		}
		if pending.Total != 1 {
			t.Fatalf("Expected 1 pending skill, got %d", pending.Total)
		}

		approved, err := env.service.Approve(ctx, skill.ID, env.admin)
		if err != nil {
			t.Fatalf("Failed to approve: %v", err)
		}
		if !approved.IsGlobal {
			t.Error("Approved skill should be global")
		}

		if _, err := env.service.Approve(ctx, skill.ID, env.admin); !IsConflictError(err) {
			t.Fatalf("Expected conflict error on double approve, got %v", err)
		}
	})

	t.Run("reject removes pending skill", func(t *testing.T) {
		env := newSkillTestEnv(t)

		skill, err := env.service.Create(ctx, &CreateSkillRequest{Name: "Guitar"}, env.user)
		if err != nil {
			t.Fatalf("Failed to create skill: %v", err)
		}

		if err := env.service.Reject(ctx, skill.ID, env.admin); err != nil {
			t.Fatalf("Failed to reject: %v", err)
		}
		if _, err := env.service.GetByID(ctx, skill.ID); err != ErrSkillNotFound {
			t.Fatalf("Expected ErrSkillNotFound after reject, got %v", err)
		}
	})

	t.Run("reject refuses approved skill", func(t *testing.T) {
		env := newSkillTestEnv(t)

		skill, err := env.service.Create(ctx, &CreateSkillRequest{Name: "Guitar"}, env.user)
		if err != nil {
			t.Fatalf("Failed to create skill: %v", err)
		}
		if _, err := env.service.Approve(ctx, skill.ID, env.admin); err != nil {
			t.Fatalf("Failed to approve: %v", err)
		}

		if err := env.service.Reject(ctx, skill.ID, env.admin); !IsConflictError(err) {
			t.Fatalf("Expected conflict error, got %v", err)
		}
	})

	t.Run("reject refuses skill in use", func(t *testing.T) {
		env := newSkillTestEnv(t)

		skill, err := env.service.Create(ctx, &CreateSkillRequest{Name: "Guitar"}, env.user)
		if err != nil {
			t.Fatalf("Failed to create skill: %v", err)
		}
		env.repo.users.SetOfferedSkills(ctx, nil, env.user.ID, []uint{skill.ID})

		if err := env.service.Reject(ctx, skill.ID, env.admin); !IsConflictError(err) {
			t.Fatalf("Expected conflict error, got %v", err)
		}
	})

	t.Run("moderation requires admin", func(t *testing.T) {
		env := newSkillTestEnv(t)

		if _, err := env.service.GetPending(ctx, repositories.SkillFilters{Limit: 10}, env.user); !IsPermissionError(err) {
			t.Fatalf("Expected permission error, got %v", err)
		}
		if _, err := env.service.Approve(ctx, 1, env.user); !IsPermissionError(err) {
			t.Fatalf("Expected permission error, got %v", err)
		}
		if err := env.service.Reject(ctx, 1, env.user); !IsPermissionError(err) {
			t.Fatalf("Expected permission error, got %v", err)
		}
	})
}
