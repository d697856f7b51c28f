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

type RateRepository struct {
	db     *gorm.DB
	tm     *db.TransactionManager
	logger logger.Interface
}

func NewRateRepository(gormDB *gorm.DB, logger logger.Interface) *RateRepository {
	return &RateRepository{
		db:     gormDB,
		tm:     db.NewTransactionManager(gormDB),
		logger: logger,
	}
}

// UpsertRates bulk inserts generated rates, replacing rows that collide on
// (tariff_id, site_id, start_time) and archiving their pre-images. All
// rows land with the same changed_time so the notification trigger fires
// once for the whole batch.
//
// Callers must have populated LocalStartDay and LocalMinuteOfDay from the
// owning site's timezone before calling.
func (r *RateRepository) UpsertRates(ctx context.Context, rates []models.TariffGeneratedRateModel, now time.Time) error {
	if len(rates) == 0 {
		return nil
	}
	return r.tm.RunInTransaction(ctx, func(txCtx context.Context) error {
		tx := r.tm.GetTx(txCtx)

		for i := range rates {
			rate := &rates[i]

			var existing models.TariffGeneratedRateModel
			err := tx.Where("tariff_id = ? AND site_id = ? AND start_time = ?",
				rate.TariffID, rate.SiteID, rate.StartTime).
				First(&existing).Error
			if err == gorm.ErrRecordNotFound {
				rate.CreatedTime = now
				rate.ChangedTime = now
				if err := tx.Create(rate).Error; err != nil {
					return fmt.Errorf("failed to create rate: %w", err)
				}
				continue
			}
			if err != nil {
				return fmt.Errorf("failed to find rate for upsert: %w", err)
			}

			err = copyIntoArchive(tx, &models.TariffGeneratedRateModel{}, &models.ArchiveTariffGeneratedRateModel{}, "id = ?", existing.ID)
			if err != nil {
				return err
			}
			rate.ID = existing.ID
			rate.CreatedTime = existing.CreatedTime
			rate.ChangedTime = now
			if err := tx.Save(rate).Error; err != nil {
				return fmt.Errorf("failed to update rate: %w", err)
			}
		}
		return nil
	})
}

// DailyRateStat is one day bucket of the RateComponent virtualisation:
// the local calendar day plus how many rate intervals it holds.
type DailyRateStat struct {
	LocalStartDay string `gorm:"column:local_start_day"`
	RateCount     int64  `gorm:"column:rate_count"`
}

// SelectRateDailyStats pages the distinct local rate days for one
// (tariff, site), oldest day first. The mapper fans each day out into
// four RateComponents, one per pricing reading type.
func (r *RateRepository) SelectRateDailyStats(ctx context.Context, tariffID, siteID uint64, changedAfter time.Time, start, limit int) ([]DailyRateStat, error) {
	var stats []DailyRateStat
	err := r.db.WithContext(ctx).
		Model(&models.TariffGeneratedRateModel{}).
		Select("local_start_day, COUNT(*) AS rate_count").
		Where("tariff_id = ? AND site_id = ? AND changed_time >= ?", tariffID, siteID, changedAfter).
		Group("local_start_day").
		Order("local_start_day ASC").
		Limit(limit).Offset(start).
		Scan(&stats).Error
	if err != nil {
		return nil, fmt.Errorf("failed to select rate daily stats: %w", err)
	}
	return stats, nil
}

// CountRateDays counts the distinct local rate days for one (tariff, site).
// The RateComponentList all_ attribute is this count times four.
func (r *RateRepository) CountRateDays(ctx context.Context, tariffID, siteID uint64, changedAfter time.Time) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.TariffGeneratedRateModel{}).
		Where("tariff_id = ? AND site_id = ? AND changed_time >= ?", tariffID, siteID, changedAfter).
		Distinct("local_start_day").
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count rate days: %w", err)
	}
	return count, nil
}

// SelectRatesForDay pages the rate intervals of one local day in
// TimeTariffIntervalList order.
func (r *RateRepository) SelectRatesForDay(ctx context.Context, tariffID, siteID uint64, day string, changedAfter time.Time, start, limit int) ([]models.TariffGeneratedRateModel, error) {
	var rates []models.TariffGeneratedRateModel
	err := r.db.WithContext(ctx).
		Where("tariff_id = ? AND site_id = ? AND local_start_day = ? AND changed_time >= ?",
			tariffID, siteID, day, changedAfter).
		Order("start_time ASC, changed_time DESC, id DESC").
		Limit(limit).Offset(start).
		Find(&rates).Error
	if err != nil {
		return nil, fmt.Errorf("failed to select rates for day: %w", err)
	}
	return rates, nil
}

func (r *RateRepository) CountRatesForDay(ctx context.Context, tariffID, siteID uint64, day string, changedAfter time.Time) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.TariffGeneratedRateModel{}).
		Where("tariff_id = ? AND site_id = ? AND local_start_day = ? AND changed_time >= ?",
			tariffID, siteID, day, changedAfter).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count rates for day: %w", err)
	}
	return count, nil
}

// SelectRateForDayTime resolves a single rate interval by its exact local
// day and minute of day. No containing-interval fallback.
func (r *RateRepository) SelectRateForDayTime(ctx context.Context, tariffID, siteID uint64, day string, minuteOfDay int32) (*models.TariffGeneratedRateModel, error) {
	var rate models.TariffGeneratedRateModel
	err := r.db.WithContext(ctx).
		Where("tariff_id = ? AND site_id = ? AND local_start_day = ? AND local_minute_of_day = ?",
			tariffID, siteID, day, minuteOfDay).
		First(&rate).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to select rate for day time: %w", err)
	}
	return &rate, nil
}

// ChangedRate annotates a rate with its owning site's partition and
// timezone for notification mapping.
type ChangedRate struct {
	models.TariffGeneratedRateModel
	AggregatorID uint64 `gorm:"column:agg_id"`
	TimezoneID   string `gorm:"column:tz_id"`
}

// SelectRatesChangedAt fetches rates changed at the exact trigger instant.
func (r *RateRepository) SelectRatesChangedAt(ctx context.Context, ts time.Time) ([]ChangedRate, error) {
	var rows []ChangedRate
	err := r.db.WithContext(ctx).
		Model(&models.TariffGeneratedRateModel{}).
		Select("tariff_generated_rates.*, sites.aggregator_id AS agg_id, sites.timezone_id AS tz_id").
		Joins("JOIN sites ON sites.id = tariff_generated_rates.site_id").
		Where("tariff_generated_rates.changed_time = ?", ts).
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to select changed rates: %w", err)
	}
	return rows, nil
}

// DeletedRate is an archived rate annotated with its site's partition.
type DeletedRate struct {
	models.ArchiveTariffGeneratedRateModel
	AggregatorID uint64 `gorm:"column:agg_id"`
	TimezoneID   string `gorm:"column:tz_id"`
}

// SelectRatesDeletedAt fetches archived rates deleted at the exact
// instant. The site join goes through the live table; rates deleted by a
// site cascade are not notified because the site deletion itself is.
func (r *RateRepository) SelectRatesDeletedAt(ctx context.Context, ts time.Time) ([]DeletedRate, error) {
	var rows []DeletedRate
	err := r.db.WithContext(ctx).
		Model(&models.ArchiveTariffGeneratedRateModel{}).
		Select("archive_tariff_generated_rates.*, sites.aggregator_id AS agg_id, sites.timezone_id AS tz_id").
		Joins("JOIN sites ON sites.id = archive_tariff_generated_rates.site_id").
		Where("archive_tariff_generated_rates.deleted_time = ?", ts).
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to select deleted rates: %w", err)
	}
	return rows, nil
}

// DeleteRatesWithStartTimeInRange removes every rate for a tariff whose
// start_time falls in [from, to), archiving the pre-images.
func (r *RateRepository) DeleteRatesWithStartTimeInRange(ctx context.Context, tariffID uint64, from, to, now time.Time) error {
	return r.tm.RunInTransaction(ctx, func(txCtx context.Context) error {
		tx := r.tm.GetTx(txCtx)
		return deleteIntoArchive(tx,
			&models.TariffGeneratedRateModel{}, &models.ArchiveTariffGeneratedRateModel{}, now,
			"tariff_id = ? AND start_time >= ? AND start_time < ?", tariffID, from, to)
	})
}

// SelectArchivedRates pages the rate archive by archive period.
func (r *RateRepository) SelectArchivedRates(ctx context.Context, periodStart, periodEnd time.Time, deletedOnly bool) ([]models.ArchiveTariffGeneratedRateModel, error) {
	return selectArchived[models.ArchiveTariffGeneratedRateModel](ctx, r.db, periodStart, periodEnd, deletedOnly)
}
