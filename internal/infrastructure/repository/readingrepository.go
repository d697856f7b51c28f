package repository

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"enverge/internal/infrastructure/persistence/models"
	"enverge/internal/shared/db"
	"enverge/internal/shared/logger"
)

type ReadingRepository struct {
	db     *gorm.DB
	tm     *db.TransactionManager
	logger logger.Interface
}

func NewReadingRepository(gormDB *gorm.DB, logger logger.Interface) *ReadingRepository {
	return &ReadingRepository{
		db:     gormDB,
		tm:     db.NewTransactionManager(gormDB),
		logger: logger,
	}
}

// FindOrCreateReadingType deduplicates reading types on the full semantic
// column set within a site. A MirrorMeterReading POST whose ReadingType
// matches an existing row reuses that row's id.
func (r *ReadingRepository) FindOrCreateReadingType(ctx context.Context, srt *models.SiteReadingTypeModel, now time.Time) (*models.SiteReadingTypeModel, error) {
	var existing models.SiteReadingTypeModel
	err := r.db.WithContext(ctx).
		Where(`aggregator_id = ? AND site_id = ? AND uom = ? AND data_qualifier = ?
			AND flow_direction = ? AND accumulation_behaviour = ? AND kind = ?
			AND phase = ? AND power_of_ten_multiplier = ? AND default_interval_seconds = ?
			AND role_flags = ?`,
			srt.AggregatorID, srt.SiteID, srt.Uom, srt.DataQualifier,
			srt.FlowDirection, srt.AccumulationBehavior, srt.Kind,
			srt.Phase, srt.PowerOfTenMultiplier, srt.DefaultIntervalSecs,
			srt.RoleFlags).
		First(&existing).Error
	if err == nil {
		return &existing, nil
	}
	if err != gorm.ErrRecordNotFound {
		return nil, fmt.Errorf("failed to find reading type: %w", err)
	}

	srt.CreatedTime = now
	srt.ChangedTime = now
	if err := r.db.WithContext(ctx).Create(srt).Error; err != nil {
		return nil, fmt.Errorf("failed to create reading type: %w", err)
	}
	return srt, nil
}

func (r *ReadingRepository) GetReadingType(ctx context.Context, srtID, aggregatorID uint64) (*models.SiteReadingTypeModel, error) {
	var srt models.SiteReadingTypeModel
	err := r.db.WithContext(ctx).
		Where("id = ? AND aggregator_id = ?", srtID, aggregatorID).
		First(&srt).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get reading type: %w", err)
	}
	return &srt, nil
}

// ListReadingTypes pages a partition's reading types in
// MirrorUsagePointList order (id DESC), optionally bounded to one site.
func (r *ReadingRepository) ListReadingTypes(ctx context.Context, aggregatorID uint64, siteID *uint64, changedAfter time.Time, start, limit int) ([]models.SiteReadingTypeModel, error) {
	query := r.db.WithContext(ctx).
		Where("aggregator_id = ? AND changed_time >= ?", aggregatorID, changedAfter)
	if siteID != nil {
		query = query.Where("site_id = ?", *siteID)
	}

	var srts []models.SiteReadingTypeModel
	err := query.
		Order("id DESC").
		Limit(limit).Offset(start).
		Find(&srts).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list reading types: %w", err)
	}
	return srts, nil
}

func (r *ReadingRepository) CountReadingTypes(ctx context.Context, aggregatorID uint64, siteID *uint64, changedAfter time.Time) (int64, error) {
	query := r.db.WithContext(ctx).
		Model(&models.SiteReadingTypeModel{}).
		Where("aggregator_id = ? AND changed_time >= ?", aggregatorID, changedAfter)
	if siteID != nil {
		query = query.Where("site_id = ?", *siteID)
	}

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count reading types: %w", err)
	}
	return count, nil
}

// DeleteReadingType removes a reading type and archives its readings.
func (r *ReadingRepository) DeleteReadingType(ctx context.Context, srtID, aggregatorID uint64, now time.Time) (bool, error) {
	existing, err := r.GetReadingType(ctx, srtID, aggregatorID)
	if err != nil {
		return false, err
	}
	if existing == nil {
		return false, nil
	}

	err = r.tm.RunInTransaction(ctx, func(txCtx context.Context) error {
		tx := r.tm.GetTx(txCtx)
		err := deleteIntoArchive(tx, &models.SiteReadingModel{}, &models.ArchiveSiteReadingModel{}, now,
			"site_reading_type_id = ?", srtID)
		if err != nil {
			return err
		}
		if err := tx.Delete(&models.SiteReadingTypeModel{}, srtID).Error; err != nil {
			return fmt.Errorf("failed to delete reading type: %w", err)
		}
		return nil
	})
	if err != nil {
		return false, err
	}
	return true, nil
}

// UpsertReadings bulk stores readings, replacing rows that collide on
// (site_reading_type_id, time_period_start) and archiving their
// pre-images. Every row lands with the same changed_time.
func (r *ReadingRepository) UpsertReadings(ctx context.Context, readings []models.SiteReadingModel, now time.Time) error {
	if len(readings) == 0 {
		return nil
	}
	return r.tm.RunInTransaction(ctx, func(txCtx context.Context) error {
		tx := r.tm.GetTx(txCtx)

		for i := range readings {
			reading := &readings[i]

			var existing models.SiteReadingModel
			err := tx.Where("site_reading_type_id = ? AND time_period_start = ?",
				reading.SiteReadingTypeID, reading.TimePeriodStart).
				First(&existing).Error
			if err == gorm.ErrRecordNotFound {
				reading.CreatedTime = now
				reading.ChangedTime = now
				if err := tx.Create(reading).Error; err != nil {
					return fmt.Errorf("failed to create reading: %w", err)
				}
				continue
			}
			if err != nil {
				return fmt.Errorf("failed to find reading for upsert: %w", err)
			}

			err = copyIntoArchive(tx, &models.SiteReadingModel{}, &models.ArchiveSiteReadingModel{}, "id = ?", existing.ID)
			if err != nil {
				return err
			}
			reading.ID = existing.ID
			reading.CreatedTime = existing.CreatedTime
			reading.ChangedTime = now
			if err := tx.Save(reading).Error; err != nil {
				return fmt.Errorf("failed to update reading: %w", err)
			}
		}
		return nil
	})
}

// ListReadings pages the readings under one reading type, newest period
// first.
func (r *ReadingRepository) ListReadings(ctx context.Context, srtID uint64, changedAfter time.Time, start, limit int) ([]models.SiteReadingModel, error) {
	var readings []models.SiteReadingModel
	err := r.db.WithContext(ctx).
		Where("site_reading_type_id = ? AND changed_time >= ?", srtID, changedAfter).
		Order("time_period_start DESC, id DESC").
		Limit(limit).Offset(start).
		Find(&readings).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list readings: %w", err)
	}
	return readings, nil
}

func (r *ReadingRepository) CountReadings(ctx context.Context, srtID uint64, changedAfter time.Time) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.SiteReadingModel{}).
		Where("site_reading_type_id = ? AND changed_time >= ?", srtID, changedAfter).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count readings: %w", err)
	}
	return count, nil
}

// ChangedReading annotates a reading with its reading type and owner for
// notification mapping and condition evaluation.
type ChangedReading struct {
	models.SiteReadingModel
	SiteID       uint64 `gorm:"column:srt_site_id"`
	AggregatorID uint64 `gorm:"column:srt_aggregator_id"`
}

// SelectReadingsChangedAt fetches readings stored at the exact trigger
// instant, joined to their reading type for scoping.
func (r *ReadingRepository) SelectReadingsChangedAt(ctx context.Context, ts time.Time) ([]ChangedReading, error) {
	var rows []ChangedReading
	err := r.db.WithContext(ctx).
		Model(&models.SiteReadingModel{}).
		Select("site_readings.*, site_reading_types.site_id AS srt_site_id, site_reading_types.aggregator_id AS srt_aggregator_id").
		Joins("JOIN site_reading_types ON site_reading_types.id = site_readings.site_reading_type_id").
		Where("site_readings.changed_time = ?", ts).
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to select changed readings: %w", err)
	}
	return rows, nil
}
