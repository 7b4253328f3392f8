package services

import (
	"context"
	"testing"

	"github.com/skillswap/swap-service/internal/events"
	"github.com/skillswap/swap-service/internal/models"
	"github.com/skillswap/swap-service/internal/validator"
)

type feedbackTestEnv struct {
	repo      *fakeRepository
	publisher *events.MockEventPublisher
	service   FeedbackService

	alice *models.User
	bob   *models.User
}

// newFeedbackTestEnv seeds two users with a completed swap between them, so
// feedback is permitted in both directions.
func newFeedbackTestEnv(t *testing.T) *feedbackTestEnv {
	t.Helper()

	repo := newFakeRepository()
	logger := testLogger()
	publisher := events.NewMockEventPublisher(logger)

	env := &feedbackTestEnv{
		repo:      repo,
		publisher: publisher,
		service:   NewFeedbackService(repo, nil, logger, validator.New(), publisher),
	}

	env.alice = seedUser(t, repo, "ext-alice", "Alice", "alice@example.com")
	env.bob = seedUser(t, repo, "ext-bob", "Bob", "bob@example.com")

	swap := &models.SwapRequest{
		RequesterID:      env.alice.ID,
		ReceiverID:       env.bob.ID,
		SkillOfferedID:   1,
		SkillRequestedID: 2,
		Status:           models.SwapStatusCompleted,
	}
	if err := repo.SwapRequest().Create(context.Background(), nil, swap); err != nil {
		t.Fatalf("Failed to seed completed swap: %v", err)
	}

	return env
}

func TestFeedbackService_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("creates feedback and updates rating rollup", func(t *testing.T) {
		env := newFeedbackTestEnv(t)

		feedback, err := env.service.Create(ctx, &CreateFeedbackRequest{
			RevieweeID: env.bob.ID,
			Rating:     4,
			Comment:    "Great teacher",
		}, env.alice)
		if err != nil {
			t.Fatalf("Failed to create feedback: %v", err)
		}
		if feedback.Rating != 4 {
			t.Errorf("Expected rating 4, got %d", feedback.Rating)
		}

		bob, _ := env.repo.User().GetByID(ctx, nil, env.bob.ID)
		if bob.RatingAverage != 4.0 || bob.RatingCount != 1 {
			t.Errorf("Expected rollup 4.0/1, got %.1f/%d", bob.RatingAverage, bob.RatingCount)
		}

		notifications, _, _ := env.repo.Notification().GetByRecipient(ctx, nil, env.bob.ID, notificationFiltersAll())
		if len(notifications) != 1 || notifications[0].Type != models.NotificationFeedbackReceived {
			t.Fatalf("Expected one feedback notification, got %d", len(notifications))
		}

		published := env.publisher.GetPublishedEvents()
		if len(published) != 1 || published[0].Type != events.EventFeedbackReceived {
			t.Fatalf("Expected one %s event, got %d", events.EventFeedbackReceived, len(published))
		}
	})

	t.Run("rejects self feedback", func(t *testing.T) {
		env := newFeedbackTestEnv(t)

		_, err := env.service.Create(ctx, &CreateFeedbackRequest{
			RevieweeID: env.alice.ID,
			Rating:     5,
		}, env.alice)
		if !IsConflictError(err) {
			t.Fatalf("Expected conflict error, got %v", err)
		}
	})

	t.Run("requires a completed swap", func(t *testing.T) {
		env := newFeedbackTestEnv(t)
		carol := seedUser(t, env.repo, "ext-carol", "Carol", "carol@example.com")

		_, err := env.service.Create(ctx, &CreateFeedbackRequest{
			RevieweeID: carol.ID,
			Rating:     5,
		}, env.alice)
		if !IsConflictError(err) {
			t.Fatalf("Expected conflict error, got %v", err)
		}
	})

	t.Run("rejects duplicate feedback for the same pair", func(t *testing.T) {
		env := newFeedbackTestEnv(t)

		if _, err := env.service.Create(ctx, &CreateFeedbackRequest{RevieweeID: env.bob.ID, Rating: 4}, env.alice); err != nil {
			t.Fatalf("Failed to create feedback: %v", err)
		}
		if _, err := env.service.Create(ctx, &CreateFeedbackRequest{RevieweeID: env.bob.ID, Rating: 2}, env.alice); !IsConflictError(err) {
			t.Fatalf("Expected conflict error, got %v", err)
		}

		// Opposite direction is a distinct pair and stays allowed.
		if _, err := env.service.Create(ctx, &CreateFeedbackRequest{RevieweeID: env.alice.ID, Rating: 5}, env.bob); err != nil {
			t.Fatalf("Reverse-direction feedback should succeed: %v", err)
		}
	})

	t.Run("out of range rating fails validation", func(t *testing.T) {
		env := newFeedbackTestEnv(t)

		if _, err := env.service.Create(ctx, &CreateFeedbackRequest{RevieweeID: env.bob.ID, Rating: 6}, env.alice); err == nil {
			t.Fatal("Expected validation error for rating 6")
		}
		if _, err := env.service.Create(ctx, &CreateFeedbackRequest{RevieweeID: env.bob.ID, Rating: 0}, env.alice); err == nil {
			t.Fatal("Expected validation error for rating 0")
		}
	})
}

func TestFeedbackService_RatingRollup(t *testing.T) {
	ctx := context.Background()

	t.Run("average rounds to one decimal over multiple reviewers", func(t *testing.T) {
		env := newFeedbackTestEnv(t)
		carol := seedUser(t, env.repo, "ext-carol", "Carol", "carol@example.com")

		swap := &models.SwapRequest{
			RequesterID: carol.ID,
			ReceiverID:  env.bob.ID,
			Status:      models.SwapStatusCompleted,
		}
		if err := env.repo.SwapRequest().Create(ctx, nil, swap); err != nil {
			t.Fatalf("Failed to seed swap: %v", err)
		}

		if _, err := env.service.Create(ctx, &CreateFeedbackRequest{RevieweeID: env.bob.ID, Rating: 4}, env.alice); err != nil {
			t.Fatalf("Failed to create feedback: %v", err)
		}
		if _, err := env.service.Create(ctx, &CreateFeedbackRequest{RevieweeID: env.bob.ID, Rating: 5}, carol); err != nil {
			t.Fatalf("Failed to create feedback: %v", err)
		}

		// (4+5)/2 = 4.5
		bob, _ := env.repo.User().GetByID(ctx, nil, env.bob.ID)
		if bob.RatingAverage != 4.5 || bob.RatingCount != 2 {
			t.Errorf("Expected rollup 4.5/2, got %.1f/%d", bob.RatingAverage, bob.RatingCount)
		}
	})

	t.Run("update recomputes when rating changes", func(t *testing.T) {
		env := newFeedbackTestEnv(t)

		feedback, err := env.service.Create(ctx, &CreateFeedbackRequest{RevieweeID: env.bob.ID, Rating: 2}, env.alice)
		if err != nil {
			t.Fatalf("Failed to create feedback: %v", err)
		}

		newRating := 5
		if _, err := env.service.Update(ctx, feedback.ID, &UpdateFeedbackRequest{Rating: &newRating}, env.alice); err != nil {
			t.Fatalf("Failed to update feedback: %v", err)
		}

		bob, _ := env.repo.User().GetByID(ctx, nil, env.bob.ID)
		if bob.RatingAverage != 5.0 {
			t.Errorf("Expected rollup 5.0 after update, got %.1f", bob.RatingAverage)
		}
	})

	t.Run("delete recomputes down to zero", func(t *testing.T) {
		env := newFeedbackTestEnv(t)

		feedback, err := env.service.Create(ctx, &CreateFeedbackRequest{RevieweeID: env.bob.ID, Rating: 3}, env.alice)
		if err != nil {
			t.Fatalf("Failed to create feedback: %v", err)
		}

		if err := env.service.Delete(ctx, feedback.ID, env.alice); err != nil {
			t.Fatalf("Failed to delete feedback: %v", err)
		}

		bob, _ := env.repo.User().GetByID(ctx, nil, env.bob.ID)
		if bob.RatingAverage != 0 || bob.RatingCount != 0 {
			t.Errorf("Expected empty rollup, got %.1f/%d", bob.RatingAverage, bob.RatingCount)
		}
	})

	t.Run("only the reviewer may edit", func(t *testing.T) {
		env := newFeedbackTestEnv(t)

		feedback, err := env.service.Create(ctx, &CreateFeedbackRequest{RevieweeID: env.bob.ID, Rating: 3}, env.alice)
		if err != nil {
			t.Fatalf("Failed to create feedback: %v", err)
		}

		newRating := 1
		if _, err := env.service.Update(ctx, feedback.ID, &UpdateFeedbackRequest{Rating: &newRating}, env.bob); !IsPermissionError(err) {
			t.Fatalf("Expected permission error, got %v", err)
		}

		// Admins may delete but not edit.
		admin := seedUser(t, env.repo, "ext-admin", "Admin", "admin@example.com")
		admin.Role = models.RoleAdmin
		if err := env.service.Delete(ctx, feedback.ID, admin); err != nil {
			t.Fatalf("Admin delete should succeed: %v", err)
		}
	})
}

func TestFeedbackService_SummaryForUser(t *testing.T) {
	ctx := context.Background()
	env := newFeedbackTestEnv(t)

	if _, err := env.service.Create(ctx, &CreateFeedbackRequest{RevieweeID: env.bob.ID, Rating: 4}, env.alice); err != nil {
		t.Fatalf("Failed to create feedback: %v", err)
	}

	summary, err := env.service.SummaryForUser(ctx, env.bob.ID)
	if err != nil {
		t.Fatalf("Failed to get summary: %v", err)
	}
	if summary.TotalFeedback != 1 || summary.AverageRating != 4.0 {
		t.Errorf("Unexpected summary: %+v", summary)
	}
	if summary.RatingDistribution[4] != 1 {
		t.Errorf("Expected one 4-star rating in distribution, got %d", summary.RatingDistribution[4])
	}
}
