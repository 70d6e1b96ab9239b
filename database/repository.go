package database

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"autodamage/models"
)

var ErrNotFound = errors.New("analysis not found")

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) Create(ctx context.Context, analysis *models.Analysis) error {
	if err := r.db.WithContext(ctx).Create(analysis).Error; err != nil {
		return fmt.Errorf("create analysis: %w", err)
	}
	return nil
}

// List returns analyses newest first along with the total count.
func (r *Repository) List(ctx context.Context, limit, offset int) ([]models.Analysis, int64, error) {
	var analyses []models.Analysis

	db := r.db.WithContext(ctx)
	if err := db.Order("created_at DESC").Limit(limit).Offset(offset).Find(&analyses).Error; err != nil {
		return nil, 0, fmt.Errorf("list analyses: %w", err)
	}

	var total int64
	if err := db.Model(&models.Analysis{}).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count analyses: %w", err)
	}

	return analyses, total, nil
}

func (r *Repository) Get(ctx context.Context, id string) (*models.Analysis, error) {
	var analysis models.Analysis

	err := r.db.WithContext(ctx).First(&analysis, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get analysis %s: %w", id, err)
	}

	return &analysis, nil
}

func (r *Repository) Delete(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).Delete(&models.Analysis{}, "id = ?", id)
	if result.Error != nil {
		return fmt.Errorf("delete analysis %s: %w", id, result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *Repository) Statistics(ctx context.Context) (*models.Statistics, error) {
	db := r.db.WithContext(ctx).Model(&models.Analysis{})

	var totals struct {
		Count           int64
		TotalDamages    int64
		AverageSeverity *float64
	}
	err := db.Select("COUNT(*) AS count, COALESCE(SUM(total_damages), 0) AS total_damages, AVG(average_severity) AS average_severity").
		Scan(&totals).Error
	if err != nil {
		return nil, fmt.Errorf("aggregate analyses: %w", err)
	}

	var rows []struct {
		RiskLevel models.RiskLevel
		Count     int64
	}
	err = r.db.WithContext(ctx).Model(&models.Analysis{}).
		Select("risk_level, COUNT(*) AS count").
		Group("risk_level").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("group by risk level: %w", err)
	}

	stats := &models.Statistics{
		TotalAnalyses: totals.Count,
		TotalDamages:  totals.TotalDamages,
		ByRiskLevel: map[models.RiskLevel]int64{
			models.RiskLow:    0,
			models.RiskMedium: 0,
			models.RiskHigh:   0,
		},
	}
	if totals.AverageSeverity != nil {
		stats.AverageSeverity = models.Round(*totals.AverageSeverity, 1)
	}
	for _, row := range rows {
		stats.ByRiskLevel[row.RiskLevel] = row.Count
	}

	return stats, nil
}
