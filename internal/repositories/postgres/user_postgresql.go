package postgres

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/skillswap/swap-service/internal/cache"
	"github.com/skillswap/swap-service/internal/models"
	"github.com/skillswap/swap-service/internal/repositories"
)

type userRepository struct {
	db *gorm.DB
	cm *cache.CacheManager
}

func NewUserRepository(db *gorm.DB, cm *cache.CacheManager) repositories.UserRepository {
	return &userRepository{db: db, cm: cm}
}

func (r *userRepository) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

// ===== BASIC CRUD OPERATIONS =====

func (r *userRepository) Create(ctx context.Context, tx *gorm.DB, user *models.User) error {
	db := r.getDB(tx)
	if err := db.WithContext(ctx).Create(user).Error; err != nil {
		return handleDBError(err, "create user")
	}
	return nil
}

func (r *userRepository) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.User, error) {
	db := r.getDB(tx)
	var user models.User

	if err := db.WithContext(ctx).
		Preload("SkillsOffered").
		Preload("SkillsWanted").
		First(&user, id).Error; err != nil {
		return nil, handleDBError(err, "get user by id")
	}

	return &user, nil
}

// GetByExternalID is on the hot path of every authenticated request, so the
// lookup goes through the cache. Transactional reads bypass it.
func (r *userRepository) GetByExternalID(ctx context.Context, tx *gorm.DB, externalID string) (*models.User, error) {
	if tx == nil && r.cm != nil {
		var user models.User
		err := r.cm.User.CacheOrExecute(ctx, "ext:"+externalID, &user, cache.UserCacheConfig.TTL, func() (interface{}, error) {
			return r.fetchByExternalID(ctx, nil, externalID)
		})
		if err != nil {
			return nil, err
		}
		return &user, nil
	}

	return r.fetchByExternalID(ctx, tx, externalID)
}

func (r *userRepository) fetchByExternalID(ctx context.Context, tx *gorm.DB, externalID string) (*models.User, error) {
	db := r.getDB(tx)
	var user models.User

	if err := db.WithContext(ctx).
		Where("external_id = ?", externalID).
		First(&user).Error; err != nil {
		return nil, handleDBError(err, "get user by external id")
	}

	return &user, nil
}

func (r *userRepository) GetByEmail(ctx context.Context, tx *gorm.DB, email string) (*models.User, error) {
	db := r.getDB(tx)
	var user models.User

	if err := db.WithContext(ctx).
		Where("email = ?", email).
		First(&user).Error; err != nil {
		return nil, handleDBError(err, "get user by email")
	}

	return &user, nil
}

func (r *userRepository) Update(ctx context.Context, tx *gorm.DB, user *models.User) error {
	db := r.getDB(tx)
	if err := db.WithContext(ctx).
		Omit("SkillsOffered", "SkillsWanted").
		Save(user).Error; err != nil {
		return handleDBError(err, "update user")
	}

	if r.cm != nil {
		cache.InvalidateUserCache(ctx, r.cm, user.ID, user.ExternalID)
	}
	return nil
}

func (r *userRepository) Delete(ctx context.Context, tx *gorm.DB, id uint) error {
	db := r.getDB(tx)

	// Clear join rows first; the store enforces no foreign keys for them.
	user := models.User{ID: id}
	if err := db.WithContext(ctx).Model(&user).Association("SkillsOffered").Clear(); err != nil {
		return handleDBError(err, "clear offered skills")
	}
	if err := db.WithContext(ctx).Model(&user).Association("SkillsWanted").Clear(); err != nil {
		return handleDBError(err, "clear wanted skills")
	}

	if err := db.WithContext(ctx).Delete(&models.User{}, id).Error; err != nil {
		return handleDBError(err, "delete user")
	}

	if r.cm != nil {
		// The external-id key cannot be reconstructed from the id alone.
		_ = r.cm.InvalidateUser(ctx, id)
	}
	return nil
}

// ===== QUERY OPERATIONS =====

func (r *userRepository) List(ctx context.Context, tx *gorm.DB, filters repositories.UserFilters) ([]*models.User, int64, error) {
	db := r.getDB(tx)
	var users []*models.User
	var total int64

	query := db.WithContext(ctx).Model(&models.User{})
	query = r.applyUserFilters(query, filters)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, handleDBError(err, "count users")
	}

	query = applyPaginationAndSorting(query, filters.Limit, filters.Offset, filters.SortBy, filters.SortOrder)

	if err := query.
		Preload("SkillsOffered").
		Preload("SkillsWanted").
		Find(&users).Error; err != nil {
		return nil, 0, handleDBError(err, "list users")
	}

	return users, total, nil
}

func (r *userRepository) SearchBySkill(ctx context.Context, tx *gorm.DB, skillIDs []uint, skillType string, filters repositories.UserFilters) ([]*models.User, int64, error) {
	db := r.getDB(tx)
	var users []*models.User
	var total int64

	offered := db.Table("user_offered_skills").Select("user_id").Where("skill_id IN ?", skillIDs)
	wanted := db.Table("user_wanted_skills").Select("user_id").Where("skill_id IN ?", skillIDs)

	query := db.WithContext(ctx).Model(&models.User{}).
		Where("is_public = ? AND is_banned = ?", true, false)

	switch skillType {
	case "offered":
		query = query.Where("users.id IN (?)", offered)
	case "wanted":
		query = query.Where("users.id IN (?)", wanted)
	default:
		query = query.Where("users.id IN (?) OR users.id IN (?)", offered, wanted)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, handleDBError(err, "count users by skill")
	}

	query = query.Order("rating_average DESC, created_at DESC")
	if filters.Limit > 0 {
		query = query.Limit(filters.Limit)
	}
	if filters.Offset > 0 {
		query = query.Offset(filters.Offset)
	}

	if err := query.
		Preload("SkillsOffered").
		Preload("SkillsWanted").
		Find(&users).Error; err != nil {
		return nil, 0, handleDBError(err, "search users by skill")
	}

	return users, total, nil
}

// ===== SKILL SET MANAGEMENT =====

func (r *userRepository) SetOfferedSkills(ctx context.Context, tx *gorm.DB, userID uint, skillIDs []uint) error {
	return r.replaceSkills(ctx, tx, userID, "SkillsOffered", skillIDs)
}

func (r *userRepository) SetWantedSkills(ctx context.Context, tx *gorm.DB, userID uint, skillIDs []uint) error {
	return r.replaceSkills(ctx, tx, userID, "SkillsWanted", skillIDs)
}

func (r *userRepository) replaceSkills(ctx context.Context, tx *gorm.DB, userID uint, association string, skillIDs []uint) error {
	db := r.getDB(tx)

	skills := make([]models.Skill, len(skillIDs))
	for i, id := range skillIDs {
		skills[i] = models.Skill{ID: id}
	}

	user := models.User{ID: userID}
	if err := db.WithContext(ctx).Model(&user).Association(association).Replace(skills); err != nil {
		return handleDBError(err, "replace "+association)
	}
	return nil
}

func (r *userRepository) CountUsingSkill(ctx context.Context, tx *gorm.DB, skillID uint) (int64, error) {
	db := r.getDB(tx)
	var offered, wanted int64

	if err := db.WithContext(ctx).
		Table("user_offered_skills").
		Where("skill_id = ?", skillID).
		Count(&offered).Error; err != nil {
		return 0, handleDBError(err, "count offered skill usage")
	}

	if err := db.WithContext(ctx).
		Table("user_wanted_skills").
		Where("skill_id = ?", skillID).
		Count(&wanted).Error; err != nil {
		return 0, handleDBError(err, "count wanted skill usage")
	}

	return offered + wanted, nil
}

// ===== RATING ROLLUP =====

func (r *userRepository) UpdateRating(ctx context.Context, tx *gorm.DB, userID uint, average float64, count int) error {
	db := r.getDB(tx)
	if err := db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ?", userID).
		Updates(map[string]interface{}{
			"rating_average": average,
			"rating_count":   count,
		}).Error; err != nil {
		return handleDBError(err, "update user rating")
	}

	if r.cm != nil {
		_ = r.cm.InvalidateUser(ctx, userID)
	}
	return nil
}

// ===== STATISTICS =====

func (r *userRepository) ActivityStats(ctx context.Context, tx *gorm.DB) (*repositories.UserActivityStats, error) {
	db := r.getDB(tx).WithContext(ctx)
	stats := &repositories.UserActivityStats{}

	counts := []struct {
		dest  *int64
		scope func(*gorm.DB) *gorm.DB
	}{
		{&stats.Total, func(q *gorm.DB) *gorm.DB { return q }},
		{&stats.Public, func(q *gorm.DB) *gorm.DB { return q.Where("is_public = ?", true) }},
		{&stats.Banned, func(q *gorm.DB) *gorm.DB { return q.Where("is_banned = ?", true) }},
		{&stats.Admins, func(q *gorm.DB) *gorm.DB { return q.Where("role = ?", models.RoleAdmin) }},
		{&stats.NewLast30Days, func(q *gorm.DB) *gorm.DB {
			return q.Where("created_at >= ?", time.Now().AddDate(0, 0, -30))
		}},
	}

	for _, c := range counts {
		if err := c.scope(db.Model(&models.User{})).Count(c.dest).Error; err != nil {
			return nil, handleDBError(err, "user activity stats")
		}
	}

	return stats, nil
}

// ===== FILTER HELPERS =====

func (r *userRepository) applyUserFilters(query *gorm.DB, filters repositories.UserFilters) *gorm.DB {
	if filters.Query != nil {
		pattern := "%" + *filters.Query + "%"
		query = query.Where("name ILIKE ? OR email ILIKE ?", pattern, pattern)
	}
	if filters.Role != nil {
		query = query.Where("role = ?", *filters.Role)
	}
	if filters.IsBanned != nil {
		query = query.Where("is_banned = ?", *filters.IsBanned)
	}
	if filters.IsPublic != nil {
		query = query.Where("is_public = ?", *filters.IsPublic)
	}
	return query
}
