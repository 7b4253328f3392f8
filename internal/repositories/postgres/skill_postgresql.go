package postgres

import (
	"context"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/skillswap/swap-service/internal/cache"
	"github.com/skillswap/swap-service/internal/models"
	"github.com/skillswap/swap-service/internal/repositories"
)

type skillRepository struct {
	db *gorm.DB
	cm *cache.CacheManager
}

func NewSkillRepository(db *gorm.DB, cm *cache.CacheManager) repositories.SkillRepository {
	return &skillRepository{db: db, cm: cm}
}

func (r *skillRepository) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

// ===== BASIC CRUD OPERATIONS =====

func (r *skillRepository) Create(ctx context.Context, tx *gorm.DB, skill *models.Skill) error {
	db := r.getDB(tx)
	if err := db.WithContext(ctx).Create(skill).Error; err != nil {
		return handleDBError(err, "create skill")
	}
	return nil
}

// GetByID serves from the catalog cache outside transactions; the catalog is
// near-static so a short TTL is enough.
func (r *skillRepository) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Skill, error) {
	if tx == nil && r.cm != nil {
		var skill models.Skill
		err := r.cm.Skill.CacheOrExecute(ctx, fmt.Sprintf("id:%d", id), &skill, cache.SkillCacheConfig.TTL, func() (interface{}, error) {
			return r.fetchByID(ctx, nil, id)
		})
		if err != nil {
			return nil, err
		}
		return &skill, nil
	}

	return r.fetchByID(ctx, tx, id)
}

func (r *skillRepository) fetchByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Skill, error) {
	db := r.getDB(tx)
	var skill models.Skill

	if err := db.WithContext(ctx).
		Preload("Creator").
		First(&skill, id).Error; err != nil {
		return nil, handleDBError(err, "get skill by id")
	}

	return &skill, nil
}

func (r *skillRepository) GetByIDs(ctx context.Context, tx *gorm.DB, ids []uint) ([]*models.Skill, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	db := r.getDB(tx)
	var skills []*models.Skill

	if err := db.WithContext(ctx).
		Where("id IN ?", ids).
		Find(&skills).Error; err != nil {
		return nil, handleDBError(err, "get skills by ids")
	}

	return skills, nil
}

func (r *skillRepository) Update(ctx context.Context, tx *gorm.DB, skill *models.Skill) error {
	db := r.getDB(tx)
	if err := db.WithContext(ctx).Save(skill).Error; err != nil {
		return handleDBError(err, "update skill")
	}

	if r.cm != nil {
		cache.InvalidateSkillCache(ctx, r.cm, skill.ID)
	}
	return nil
}

func (r *skillRepository) Delete(ctx context.Context, tx *gorm.DB, id uint) error {
	db := r.getDB(tx)
	if err := db.WithContext(ctx).Delete(&models.Skill{}, id).Error; err != nil {
		return handleDBError(err, "delete skill")
	}

	if r.cm != nil {
		cache.InvalidateSkillCache(ctx, r.cm, id)
	}
	return nil
}

// ===== QUERY OPERATIONS =====

func (r *skillRepository) List(ctx context.Context, tx *gorm.DB, filters repositories.SkillFilters) ([]*models.Skill, int64, error) {
	db := r.getDB(tx)
	var skills []*models.Skill
	var total int64

	query := db.WithContext(ctx).Model(&models.Skill{})
	query = r.applySkillFilters(query, filters)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, handleDBError(err, "count skills")
	}

	sortBy := filters.SortBy
	if sortBy == "" {
		sortBy = "name"
		if filters.SortOrder == "" {
			filters.SortOrder = "asc"
		}
	}
	query = applyPaginationAndSorting(query, filters.Limit, filters.Offset, sortBy, filters.SortOrder)

	if err := query.Preload("Creator").Find(&skills).Error; err != nil {
		return nil, 0, handleDBError(err, "list skills")
	}

	return skills, total, nil
}

func (r *skillRepository) Search(ctx context.Context, tx *gorm.DB, query string, limit int) ([]*models.Skill, error) {
	db := r.getDB(tx)
	var skills []*models.Skill

	pattern := "%" + query + "%"
	q := db.WithContext(ctx).
		Where("name ILIKE ? OR description ILIKE ?", pattern, pattern).
		Order("name ASC")
	if limit > 0 {
		q = q.Limit(limit)
	}

	if err := q.Preload("Creator").Find(&skills).Error; err != nil {
		return nil, handleDBError(err, "search skills")
	}

	return skills, nil
}

func (r *skillRepository) SearchByName(ctx context.Context, tx *gorm.DB, name string) ([]*models.Skill, error) {
	db := r.getDB(tx)
	var skills []*models.Skill

	if err := db.WithContext(ctx).
		Where("name ILIKE ?", "%"+name+"%").
		Find(&skills).Error; err != nil {
		return nil, handleDBError(err, "search skills by name")
	}

	return skills, nil
}

func (r *skillRepository) ExistsByName(ctx context.Context, tx *gorm.DB, name string, excludeID uint) (bool, error) {
	db := r.getDB(tx)
	var count int64

	query := db.WithContext(ctx).
		Model(&models.Skill{}).
		Where("LOWER(name) = ?", strings.ToLower(name))
	if excludeID != 0 {
		query = query.Where("id <> ?", excludeID)
	}

	if err := query.Count(&count).Error; err != nil {
		return false, handleDBError(err, "check skill name")
	}

	return count > 0, nil
}

func (r *skillRepository) GetPending(ctx context.Context, tx *gorm.DB, filters repositories.SkillFilters) ([]*models.Skill, int64, error) {
	isGlobal := false
	filters.IsGlobal = &isGlobal
	return r.List(ctx, tx, filters)
}

// ===== STATISTICS =====

func (r *skillRepository) Popularity(ctx context.Context, tx *gorm.DB, limit int) ([]repositories.SkillUsage, error) {
	db := r.getDB(tx)
	var usages []repositories.SkillUsage

	query := db.WithContext(ctx).
		Table("skills s").
		Select(`s.id AS skill_id, s.name,
			(SELECT COUNT(*) FROM user_offered_skills uos WHERE uos.skill_id = s.id) AS offered_count,
			(SELECT COUNT(*) FROM user_wanted_skills uws WHERE uws.skill_id = s.id) AS wanted_count`).
		Order("offered_count DESC, wanted_count DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}

	if err := query.Scan(&usages).Error; err != nil {
		return nil, handleDBError(err, "skill popularity")
	}

	return usages, nil
}

// ===== FILTER HELPERS =====

func (r *skillRepository) applySkillFilters(query *gorm.DB, filters repositories.SkillFilters) *gorm.DB {
	if filters.Query != nil {
		pattern := "%" + *filters.Query + "%"
		query = query.Where("name ILIKE ? OR description ILIKE ?", pattern, pattern)
	}
	if filters.IsGlobal != nil {
		query = query.Where("is_global = ?", *filters.IsGlobal)
	}
	if filters.CreatedBy != nil {
		query = query.Where("created_by = ?", *filters.CreatedBy)
	}
	return query
}
