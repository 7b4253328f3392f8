package cache

import (
	"context"
	"fmt"
	"log/slog"
)

// SafeInvalidatePattern safely invalidates cache pattern with logging
func SafeInvalidatePattern(ctx context.Context, helper *CacheHelper, pattern string) {
	if err := helper.InvalidatePattern(ctx, pattern); err != nil {
		slog.ErrorContext(ctx, "Failed to invalidate cache pattern",
			"error", err,
			"pattern", pattern)
	}
}

// SafeDelete safely deletes cache keys with logging
func SafeDelete(ctx context.Context, helper *CacheHelper, keys ...string) {
	if err := helper.Delete(ctx, keys...); err != nil {
		slog.ErrorContext(ctx, "Failed to delete cache keys",
			"error", err,
			"keys", keys)
	}
}

// InvalidateUserCache invalidates all caches touched by a user mutation
func InvalidateUserCache(ctx context.Context, cm *CacheManager, userID uint, externalID string) {
	SafeDelete(ctx, cm.User,
		fmt.Sprintf("id:%d", userID),
		fmt.Sprintf("ext:%s", externalID))
	SafeInvalidatePattern(ctx, cm.User, "search:*")
	SafeInvalidatePattern(ctx, cm.Stats, "users:*")
}

// InvalidateSkillCache invalidates the skill catalog caches
func InvalidateSkillCache(ctx context.Context, cm *CacheManager, skillID uint) {
	SafeDelete(ctx, cm.Skill, fmt.Sprintf("id:%d", skillID))
	SafeInvalidatePattern(ctx, cm.Skill, "list:*")
	SafeInvalidatePattern(ctx, cm.Stats, "skills:*")
}
