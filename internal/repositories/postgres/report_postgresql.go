package postgres

import (
	"context"

	"gorm.io/gorm"

	"github.com/skillswap/swap-service/internal/models"
	"github.com/skillswap/swap-service/internal/repositories"
)

type reportRepository struct {
	db *gorm.DB
}

func NewReportRepository(db *gorm.DB) repositories.ReportRepository {
	return &reportRepository{db: db}
}

func (r *reportRepository) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

func (r *reportRepository) Create(ctx context.Context, tx *gorm.DB, report *models.Report) error {
	db := r.getDB(tx)
	if err := db.WithContext(ctx).Create(report).Error; err != nil {
		return handleDBError(err, "create report")
	}
	return nil
}

func (r *reportRepository) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Report, error) {
	db := r.getDB(tx)
	var report models.Report

	if err := db.WithContext(ctx).
		Preload("Generator").
		First(&report, id).Error; err != nil {
		return nil, handleDBError(err, "get report by id")
	}

	return &report, nil
}

func (r *reportRepository) List(ctx context.Context, tx *gorm.DB, filters repositories.ReportFilters) ([]*models.Report, int64, error) {
	db := r.getDB(tx)
	var reports []*models.Report
	var total int64

	query := db.WithContext(ctx).Model(&models.Report{})
	if filters.Type != nil {
		query = query.Where("type = ?", *filters.Type)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, handleDBError(err, "count reports")
	}

	query = query.Order("created_at DESC")
	if filters.Limit > 0 {
		query = query.Limit(filters.Limit)
	}
	if filters.Offset > 0 {
		query = query.Offset(filters.Offset)
	}

	if err := query.Preload("Generator").Find(&reports).Error; err != nil {
		return nil, 0, handleDBError(err, "list reports")
	}

	return reports, total, nil
}
