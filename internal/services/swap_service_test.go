package services

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/skillswap/swap-service/internal/events"
	"github.com/skillswap/swap-service/internal/models"
	"github.com/skillswap/swap-service/internal/validator"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type swapTestEnv struct {
	repo      *fakeRepository
	publisher *events.MockEventPublisher
	service   SwapService

	guitar  *models.Skill
	spanish *models.Skill
	alice   *models.User
	bob     *models.User
}

// newSwapTestEnv seeds two users whose skill profiles mirror each other:
// Alice teaches guitar and wants Spanish, Bob teaches Spanish and wants
// guitar.
func newSwapTestEnv(t *testing.T) *swapTestEnv {
	t.Helper()

	repo := newFakeRepository()
	logger := testLogger()
	publisher := events.NewMockEventPublisher(logger)
	v := validator.New()

	env := &swapTestEnv{
		repo:      repo,
		publisher: publisher,
		service:   NewSwapService(repo, nil, logger, v, publisher),
	}

	ctx := context.Background()

	env.guitar = &models.Skill{Name: "Guitar", IsGlobal: true}
	env.spanish = &models.Skill{Name: "Spanish", IsGlobal: true}
	if err := repo.Skill().Create(ctx, nil, env.guitar); err != nil {
		t.Fatalf("Failed to seed skill: %v", err)
	}
	if err := repo.Skill().Create(ctx, nil, env.spanish); err != nil {
		t.Fatalf("Failed to seed skill: %v", err)
	}

	env.alice = seedUser(t, repo, "ext-alice", "Alice", "alice@example.com")
	env.bob = seedUser(t, repo, "ext-bob", "Bob", "bob@example.com")

	repo.users.SetOfferedSkills(ctx, nil, env.alice.ID, []uint{env.guitar.ID})
	repo.users.SetWantedSkills(ctx, nil, env.alice.ID, []uint{env.spanish.ID})
	repo.users.SetOfferedSkills(ctx, nil, env.bob.ID, []uint{env.spanish.ID})
	repo.users.SetWantedSkills(ctx, nil, env.bob.ID, []uint{env.guitar.ID})

	return env
}

func seedUser(t *testing.T, repo *fakeRepository, externalID, name, email string) *models.User {
	t.Helper()

	user := &models.User{
		ExternalID:   externalID,
		Name:         name,
		Email:        email,
		Role:         models.RoleUser,
		Availability: models.AvailabilityWeekends,
		IsPublic:     true,
	}
	if err := repo.User().Create(context.Background(), nil, user); err != nil {
		t.Fatalf("Failed to seed user %s: %v", name, err)
	}
	return user
}

func (env *swapTestEnv) createSwap(t *testing.T) *SwapResponse {
	t.Helper()

	swap, err := env.service.Create(context.Background(), &CreateSwapRequest{
		ReceiverID:       env.bob.ID,
		SkillOfferedID:   env.guitar.ID,
		SkillRequestedID: env.spanish.ID,
		Message:          "Up for a trade?",
	}, env.alice)
	if err != nil {
		t.Fatalf("Failed to create swap request: %v", err)
	}
	return swap
}

func TestSwapService_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("creates pending request with notification and event", func(t *testing.T) {
		env := newSwapTestEnv(t)

		swap := env.createSwap(t)

		if swap.Status != models.SwapStatusPending {
			t.Errorf("Expected status %s, got %s", models.SwapStatusPending, swap.Status)
		}
		if !swap.CanCancel || swap.CanAccept {
			t.Errorf("Requester flags wrong: CanCancel=%v CanAccept=%v", swap.CanCancel, swap.CanAccept)
		}

		notifications, _, err := env.repo.Notification().GetByRecipient(ctx, nil, env.bob.ID, notificationFiltersAll())
		if err != nil {
			t.Fatalf("Failed to list notifications: %v", err)
		}
		if len(notifications) != 1 {
			t.Fatalf("Expected 1 notification for receiver, got %d", len(notifications))
		}
		if notifications[0].Type != models.NotificationSwapRequest {
			t.Errorf("Expected notification type %s, got %s", models.NotificationSwapRequest, notifications[0].Type)
		}

		published := env.publisher.GetPublishedEvents()
		if len(published) != 1 {
			t.Fatalf("Expected 1 published event, got %d", len(published))
		}
		if published[0].Type != events.EventSwapRequested {
			t.Errorf("Expected event type %s, got %s", events.EventSwapRequested, published[0].Type)
		}
	})

	t.Run("rejects self swap", func(t *testing.T) {
		env := newSwapTestEnv(t)

		_, err := env.service.Create(ctx, &CreateSwapRequest{
			ReceiverID:       env.alice.ID,
			SkillOfferedID:   env.guitar.ID,
			SkillRequestedID: env.spanish.ID,
		}, env.alice)
		if err == nil {
			t.Fatal("Expected error for self swap")
		}
	})

	t.Run("rejects when requester does not offer the skill", func(t *testing.T) {
		env := newSwapTestEnv(t)

		// Alice claims to teach Spanish, which is not in her offered list.
		_, err := env.service.Create(ctx, &CreateSwapRequest{
			ReceiverID:       env.bob.ID,
			SkillOfferedID:   env.spanish.ID,
			SkillRequestedID: env.guitar.ID,
		}, env.alice)
		if !IsConflictError(err) {
			t.Fatalf("Expected conflict error, got %v", err)
		}
	})

	t.Run("rejects when receiver does not want the offered skill", func(t *testing.T) {
		env := newSwapTestEnv(t)

		piano := &models.Skill{Name: "Piano", IsGlobal: true}
		env.repo.Skill().Create(ctx, nil, piano)
		env.repo.users.SetOfferedSkills(ctx, nil, env.alice.ID, []uint{piano.ID})
		env.repo.users.SetWantedSkills(ctx, nil, env.alice.ID, []uint{env.spanish.ID})

		_, err := env.service.Create(ctx, &CreateSwapRequest{
			ReceiverID:       env.bob.ID,
			SkillOfferedID:   piano.ID,
			SkillRequestedID: env.spanish.ID,
		}, env.alice)
		if !IsConflictError(err) {
			t.Fatalf("Expected conflict error, got %v", err)
		}
	})

	t.Run("rejects duplicate pending request in either direction", func(t *testing.T) {
		env := newSwapTestEnv(t)
		env.createSwap(t)

		// Same exchange again.
		_, err := env.service.Create(ctx, &CreateSwapRequest{
			ReceiverID:       env.bob.ID,
			SkillOfferedID:   env.guitar.ID,
			SkillRequestedID: env.spanish.ID,
		}, env.alice)
		if !IsConflictError(err) {
			t.Fatalf("Expected conflict error for duplicate, got %v", err)
		}

		// Mirrored from Bob's side.
		_, err = env.service.Create(ctx, &CreateSwapRequest{
			ReceiverID:       env.alice.ID,
			SkillOfferedID:   env.spanish.ID,
			SkillRequestedID: env.guitar.ID,
		}, env.bob)
		if !IsConflictError(err) {
			t.Fatalf("Expected conflict error for mirrored duplicate, got %v", err)
		}
	})

	t.Run("rejects banned receiver", func(t *testing.T) {
		env := newSwapTestEnv(t)
		env.bob.IsBanned = true

		_, err := env.service.Create(ctx, &CreateSwapRequest{
			ReceiverID:       env.bob.ID,
			SkillOfferedID:   env.guitar.ID,
			SkillRequestedID: env.spanish.ID,
		}, env.alice)
		if !IsConflictError(err) {
			t.Fatalf("Expected conflict error, got %v", err)
		}
	})

	t.Run("rejects private receiver", func(t *testing.T) {
		env := newSwapTestEnv(t)
		env.bob.IsPublic = false

		_, err := env.service.Create(ctx, &CreateSwapRequest{
			ReceiverID:       env.bob.ID,
			SkillOfferedID:   env.guitar.ID,
			SkillRequestedID: env.spanish.ID,
		}, env.alice)
		if !IsConflictError(err) {
			t.Fatalf("Expected conflict error, got %v", err)
		}
	})
}

func TestSwapService_Lifecycle(t *testing.T) {
	ctx := context.Background()

	t.Run("accept then complete", func(t *testing.T) {
		env := newSwapTestEnv(t)
		swap := env.createSwap(t)
		env.publisher.ClearEvents()

		accepted, err := env.service.Accept(ctx, swap.ID, env.bob)
		if err != nil {
			t.Fatalf("Failed to accept: %v", err)
		}
		if accepted.Status != models.SwapStatusAccepted {
			t.Errorf("Expected status %s, got %s", models.SwapStatusAccepted, accepted.Status)
		}
		if accepted.AcceptedAt == nil {
			t.Error("Expected AcceptedAt to be set")
		}
		if !accepted.CanComplete {
			t.Error("Receiver should be able to complete an accepted swap")
		}

		completed, err := env.service.Complete(ctx, swap.ID, env.alice)
		if err != nil {
			t.Fatalf("Failed to complete: %v", err)
		}
		if completed.Status != models.SwapStatusCompleted {
			t.Errorf("Expected status %s, got %s", models.SwapStatusCompleted, completed.Status)
		}
		if completed.CompletedAt == nil {
			t.Error("Expected CompletedAt to be set")
		}

		published := env.publisher.GetPublishedEvents()
		if len(published) != 2 {
			t.Fatalf("Expected 2 events (accept, complete), got %d", len(published))
		}
		if published[0].Type != events.EventSwapAccepted || published[1].Type != events.EventSwapCompleted {
			t.Errorf("Unexpected event sequence: %s, %s", published[0].Type, published[1].Type)
		}
	})

	t.Run("only receiver may accept", func(t *testing.T) {
		env := newSwapTestEnv(t)
		swap := env.createSwap(t)

		_, err := env.service.Accept(ctx, swap.ID, env.alice)
		if !IsPermissionError(err) {
			t.Fatalf("Expected permission error, got %v", err)
		}
	})

	t.Run("only requester may cancel", func(t *testing.T) {
		env := newSwapTestEnv(t)
		swap := env.createSwap(t)

		_, err := env.service.Cancel(ctx, swap.ID, env.bob)
		if !IsPermissionError(err) {
			t.Fatalf("Expected permission error, got %v", err)
		}

		cancelled, err := env.service.Cancel(ctx, swap.ID, env.alice)
		if err != nil {
			t.Fatalf("Failed to cancel: %v", err)
		}
		if cancelled.Status != models.SwapStatusCancelled {
			t.Errorf("Expected status %s, got %s", models.SwapStatusCancelled, cancelled.Status)
		}
	})

	t.Run("cannot accept twice", func(t *testing.T) {
		env := newSwapTestEnv(t)
		swap := env.createSwap(t)

		if _, err := env.service.Accept(ctx, swap.ID, env.bob); err != nil {
			t.Fatalf("Failed to accept: %v", err)
		}
		if _, err := env.service.Accept(ctx, swap.ID, env.bob); !IsConflictError(err) {
			t.Fatalf("Expected conflict error on second accept, got %v", err)
		}
	})

	t.Run("cannot complete a pending request", func(t *testing.T) {
		env := newSwapTestEnv(t)
		swap := env.createSwap(t)

		if _, err := env.service.Complete(ctx, swap.ID, env.bob); !IsConflictError(err) {
			t.Fatalf("Expected conflict error, got %v", err)
		}
	})

	t.Run("reject finalizes a pending request", func(t *testing.T) {
		env := newSwapTestEnv(t)
		swap := env.createSwap(t)

		rejected, err := env.service.Reject(ctx, swap.ID, env.bob)
		if err != nil {
			t.Fatalf("Failed to reject: %v", err)
		}
		if rejected.Status != models.SwapStatusRejected {
			t.Errorf("Expected status %s, got %s", models.SwapStatusRejected, rejected.Status)
		}
		if rejected.RejectedAt == nil {
			t.Error("Expected RejectedAt to be set")
		}

		// Terminal: no further transitions.
		if _, err := env.service.Cancel(ctx, swap.ID, env.alice); !IsConflictError(err) {
			t.Fatalf("Expected conflict error cancelling a rejected request, got %v", err)
		}
	})
}

func TestSwapService_Delete(t *testing.T) {
	ctx := context.Background()

	t.Run("requester deletes pending request", func(t *testing.T) {
		env := newSwapTestEnv(t)
		swap := env.createSwap(t)

		if err := env.service.Delete(ctx, swap.ID, env.alice); err != nil {
			t.Fatalf("Failed to delete: %v", err)
		}

		if _, err := env.service.GetByID(ctx, swap.ID, env.alice); err != ErrSwapRequestNotFound {
			t.Fatalf("Expected ErrSwapRequestNotFound, got %v", err)
		}
	})

	t.Run("receiver may not delete", func(t *testing.T) {
		env := newSwapTestEnv(t)
		swap := env.createSwap(t)

		if err := env.service.Delete(ctx, swap.ID, env.bob); !IsPermissionError(err) {
			t.Fatalf("Expected permission error, got %v", err)
		}
	})

	t.Run("accepted request cannot be deleted", func(t *testing.T) {
		env := newSwapTestEnv(t)
		swap := env.createSwap(t)

		if _, err := env.service.Accept(ctx, swap.ID, env.bob); err != nil {
			t.Fatalf("Failed to accept: %v", err)
		}
		if err := env.service.Delete(ctx, swap.ID, env.alice); !IsConflictError(err) {
			t.Fatalf("Expected conflict error, got %v", err)
		}
	})
}

func TestSwapService_Visibility(t *testing.T) {
	ctx := context.Background()

	t.Run("third party cannot read", func(t *testing.T) {
		env := newSwapTestEnv(t)
		swap := env.createSwap(t)
		carol := seedUser(t, env.repo, "ext-carol", "Carol", "carol@example.com")

		if _, err := env.service.GetByID(ctx, swap.ID, carol); !IsPermissionError(err) {
			t.Fatalf("Expected permission error, got %v", err)
		}
	})

	t.Run("admin list requires admin role", func(t *testing.T) {
		env := newSwapTestEnv(t)
		env.createSwap(t)

		if _, err := env.service.List(ctx, swapFiltersAll(), env.alice); !IsPermissionError(err) {
			t.Fatalf("Expected permission error, got %v", err)
		}

		admin := seedUser(t, env.repo, "ext-admin", "Admin", "admin@example.com")
		admin.Role = models.RoleAdmin

		list, err := env.service.List(ctx, swapFiltersAll(), admin)
		if err != nil {
			t.Fatalf("Failed to list as admin: %v", err)
		}
		if list.Total != 1 {
			t.Errorf("Expected 1 swap, got %d", list.Total)
		}
	})

	t.Run("list for user scopes by direction", func(t *testing.T) {
		env := newSwapTestEnv(t)
		env.createSwap(t)

		filters := swapFiltersAll()
		filters.Direction = "received"
		received, err := env.service.ListForUser(ctx, env.bob, filters)
		if err != nil {
			t.Fatalf("Failed to list received: %v", err)
		}
		if received.Total != 1 {
			t.Errorf("Expected 1 received swap for Bob, got %d", received.Total)
		}

		sent, err := env.service.ListForUser(ctx, env.bob, swapRequestFiltersSent())
		if err != nil {
			t.Fatalf("Failed to list sent: %v", err)
		}
		if sent.Total != 0 {
			t.Errorf("Expected 0 sent swaps for Bob, got %d", sent.Total)
		}
	})
}
