package repository

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"enverge/internal/infrastructure/persistence/models"
	"enverge/internal/shared/logger"
)

type TariffRepository struct {
	db     *gorm.DB
	logger logger.Interface
}

func NewTariffRepository(gormDB *gorm.DB, logger logger.Interface) *TariffRepository {
	return &TariffRepository{db: gormDB, logger: logger}
}

func (r *TariffRepository) Create(ctx context.Context, tariff *models.TariffModel) error {
	if err := r.db.WithContext(ctx).Create(tariff).Error; err != nil {
		r.logger.Errorw("failed to create tariff", "error", err)
		return fmt.Errorf("failed to create tariff: %w", err)
	}
	return nil
}

func (r *TariffRepository) Update(ctx context.Context, tariff *models.TariffModel, now time.Time) error {
	tariff.ChangedTime = now
	result := r.db.WithContext(ctx).
		Model(&models.TariffModel{}).
		Where("id = ?", tariff.ID).
		Updates(map[string]interface{}{
			"name":          tariff.Name,
			"dnsp_code":     tariff.DnspCode,
			"currency_code": tariff.CurrencyCode,
			"fsa_id":        tariff.FsaID,
			"changed_time":  now,
		})
	if result.Error != nil {
		return fmt.Errorf("failed to update tariff: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *TariffRepository) GetByID(ctx context.Context, id uint64) (*models.TariffModel, error) {
	var tariff models.TariffModel
	if err := r.db.WithContext(ctx).First(&tariff, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get tariff: %w", err)
	}
	return &tariff, nil
}

// List pages tariffs newest first (id DESC), the TariffProfileList order,
// optionally bounded to one function set assignment.
func (r *TariffRepository) List(ctx context.Context, fsaID *uint64, changedAfter time.Time, start, limit int) ([]models.TariffModel, error) {
	query := r.db.WithContext(ctx).
		Model(&models.TariffModel{}).
		Where("changed_time >= ?", changedAfter)
	if fsaID != nil {
		query = query.Where("fsa_id = ?", *fsaID)
	}

	var tariffs []models.TariffModel
	err := query.
		Order("id DESC").
		Limit(limit).Offset(start).
		Find(&tariffs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list tariffs: %w", err)
	}
	return tariffs, nil
}

func (r *TariffRepository) Count(ctx context.Context, fsaID *uint64, changedAfter time.Time) (int64, error) {
	query := r.db.WithContext(ctx).
		Model(&models.TariffModel{}).
		Where("changed_time >= ?", changedAfter)
	if fsaID != nil {
		query = query.Where("fsa_id = ?", *fsaID)
	}

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count tariffs: %w", err)
	}
	return count, nil
}

// FsaIDs returns the distinct function set assignment ids currently in
// use across tariffs and site control groups, which together define the
// FunctionSetAssignmentsList.
func (r *TariffRepository) FsaIDs(ctx context.Context) ([]uint64, error) {
	var ids []uint64
	err := r.db.WithContext(ctx).Raw(
		"SELECT fsa_id FROM tariffs UNION SELECT fsa_id FROM site_control_groups ORDER BY fsa_id ASC",
	).Scan(&ids).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list fsa ids: %w", err)
	}
	return ids, nil
}
