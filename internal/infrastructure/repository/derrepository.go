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

type DERRepository struct {
	db     *gorm.DB
	tm     *db.TransactionManager
	logger logger.Interface
}

func NewDERRepository(gormDB *gorm.DB, logger logger.Interface) *DERRepository {
	return &DERRepository{
		db:     gormDB,
		tm:     db.NewTransactionManager(gormDB),
		logger: logger,
	}
}

// GetOrCreateSiteDER returns a site's DER record, creating the singleton
// row on first access. One DER per site.
func (r *DERRepository) GetOrCreateSiteDER(ctx context.Context, siteID uint64, now time.Time) (*models.SiteDERModel, error) {
	var der models.SiteDERModel
	err := r.db.WithContext(ctx).Where("site_id = ?", siteID).First(&der).Error
	if err == nil {
		return &der, nil
	}
	if err != gorm.ErrRecordNotFound {
		return nil, fmt.Errorf("failed to get site der: %w", err)
	}

	der = models.SiteDERModel{
		SiteDERFields: models.SiteDERFields{
			SiteID:      siteID,
			CreatedTime: now,
			ChangedTime: now,
		},
	}
	if err := r.db.WithContext(ctx).Create(&der).Error; err != nil {
		return nil, fmt.Errorf("failed to create site der: %w", err)
	}
	return &der, nil
}

// GetSiteDER returns a site's DER record without creating it.
func (r *DERRepository) GetSiteDER(ctx context.Context, siteID uint64) (*models.SiteDERModel, error) {
	var der models.SiteDERModel
	err := r.db.WithContext(ctx).Where("site_id = ?", siteID).First(&der).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get site der: %w", err)
	}
	return &der, nil
}

// touchSiteDER stamps the parent record so DERList polling sees the child
// record change.
func touchSiteDER(tx *gorm.DB, siteDERID uint64, now time.Time) error {
	result := tx.Model(&models.SiteDERModel{}).
		Where("id = ?", siteDERID).
		Update("changed_time", now)
	if result.Error != nil {
		return fmt.Errorf("failed to touch site der: %w", result.Error)
	}
	return nil
}

// UpsertRating replaces a DER's capability record, archiving the prior
// row. At most one live row per DER.
func (r *DERRepository) UpsertRating(ctx context.Context, rating *models.SiteDERRatingModel, now time.Time) error {
	return r.tm.RunInTransaction(ctx, func(txCtx context.Context) error {
		tx := r.tm.GetTx(txCtx)

		var existing models.SiteDERRatingModel
		err := tx.Where("site_der_id = ?", rating.SiteDERID).First(&existing).Error
		if err == nil {
			err = copyIntoArchive(tx, &models.SiteDERRatingModel{}, &models.ArchiveSiteDERRatingModel{}, "id = ?", existing.ID)
			if err != nil {
				return err
			}
			rating.ID = existing.ID
			rating.CreatedTime = existing.CreatedTime
		} else if err == gorm.ErrRecordNotFound {
			rating.CreatedTime = now
		} else {
			return fmt.Errorf("failed to find der rating: %w", err)
		}

		rating.ChangedTime = now
		if err := tx.Save(rating).Error; err != nil {
			return fmt.Errorf("failed to save der rating: %w", err)
		}
		return touchSiteDER(tx, rating.SiteDERID, now)
	})
}

// GetRating returns the live capability record, nil when never posted.
func (r *DERRepository) GetRating(ctx context.Context, siteDERID uint64) (*models.SiteDERRatingModel, error) {
	var rating models.SiteDERRatingModel
	err := r.db.WithContext(ctx).Where("site_der_id = ?", siteDERID).First(&rating).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get der rating: %w", err)
	}
	return &rating, nil
}

// UpsertSetting replaces a DER's settings record, archiving the prior row.
func (r *DERRepository) UpsertSetting(ctx context.Context, setting *models.SiteDERSettingModel, now time.Time) error {
	return r.tm.RunInTransaction(ctx, func(txCtx context.Context) error {
		tx := r.tm.GetTx(txCtx)

		var existing models.SiteDERSettingModel
		err := tx.Where("site_der_id = ?", setting.SiteDERID).First(&existing).Error
		if err == nil {
			err = copyIntoArchive(tx, &models.SiteDERSettingModel{}, &models.ArchiveSiteDERSettingModel{}, "id = ?", existing.ID)
			if err != nil {
				return err
			}
			setting.ID = existing.ID
			setting.CreatedTime = existing.CreatedTime
		} else if err == gorm.ErrRecordNotFound {
			setting.CreatedTime = now
		} else {
			return fmt.Errorf("failed to find der setting: %w", err)
		}

		setting.ChangedTime = now
		if err := tx.Save(setting).Error; err != nil {
			return fmt.Errorf("failed to save der setting: %w", err)
		}
		return touchSiteDER(tx, setting.SiteDERID, now)
	})
}

func (r *DERRepository) GetSetting(ctx context.Context, siteDERID uint64) (*models.SiteDERSettingModel, error) {
	var setting models.SiteDERSettingModel
	err := r.db.WithContext(ctx).Where("site_der_id = ?", siteDERID).First(&setting).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get der setting: %w", err)
	}
	return &setting, nil
}

// UpsertAvailability replaces a DER's availability record, archiving the
// prior row.
func (r *DERRepository) UpsertAvailability(ctx context.Context, avail *models.SiteDERAvailabilityModel, now time.Time) error {
	return r.tm.RunInTransaction(ctx, func(txCtx context.Context) error {
		tx := r.tm.GetTx(txCtx)

		var existing models.SiteDERAvailabilityModel
		err := tx.Where("site_der_id = ?", avail.SiteDERID).First(&existing).Error
		if err == nil {
			err = copyIntoArchive(tx, &models.SiteDERAvailabilityModel{}, &models.ArchiveSiteDERAvailabilityModel{}, "id = ?", existing.ID)
			if err != nil {
				return err
			}
			avail.ID = existing.ID
			avail.CreatedTime = existing.CreatedTime
		} else if err == gorm.ErrRecordNotFound {
			avail.CreatedTime = now
		} else {
			return fmt.Errorf("failed to find der availability: %w", err)
		}

		avail.ChangedTime = now
		if err := tx.Save(avail).Error; err != nil {
			return fmt.Errorf("failed to save der availability: %w", err)
		}
		return touchSiteDER(tx, avail.SiteDERID, now)
	})
}

func (r *DERRepository) GetAvailability(ctx context.Context, siteDERID uint64) (*models.SiteDERAvailabilityModel, error) {
	var avail models.SiteDERAvailabilityModel
	err := r.db.WithContext(ctx).Where("site_der_id = ?", siteDERID).First(&avail).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get der availability: %w", err)
	}
	return &avail, nil
}

// UpsertStatus replaces a DER's status record, archiving the prior row.
func (r *DERRepository) UpsertStatus(ctx context.Context, status *models.SiteDERStatusModel, now time.Time) error {
	return r.tm.RunInTransaction(ctx, func(txCtx context.Context) error {
		tx := r.tm.GetTx(txCtx)

		var existing models.SiteDERStatusModel
		err := tx.Where("site_der_id = ?", status.SiteDERID).First(&existing).Error
		if err == nil {
			err = copyIntoArchive(tx, &models.SiteDERStatusModel{}, &models.ArchiveSiteDERStatusModel{}, "id = ?", existing.ID)
			if err != nil {
				return err
			}
			status.ID = existing.ID
			status.CreatedTime = existing.CreatedTime
		} else if err == gorm.ErrRecordNotFound {
			status.CreatedTime = now
		} else {
			return fmt.Errorf("failed to find der status: %w", err)
		}

		status.ChangedTime = now
		if err := tx.Save(status).Error; err != nil {
			return fmt.Errorf("failed to save der status: %w", err)
		}
		return touchSiteDER(tx, status.SiteDERID, now)
	})
}

func (r *DERRepository) GetStatus(ctx context.Context, siteDERID uint64) (*models.SiteDERStatusModel, error) {
	var status models.SiteDERStatusModel
	err := r.db.WithContext(ctx).Where("site_der_id = ?", siteDERID).First(&status).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get der status: %w", err)
	}
	return &status, nil
}

// ChangedDerRating annotates a capability record with its owner for
// notification batching.
type ChangedDerRating struct {
	models.SiteDERRatingModel
	SiteID       uint64 `gorm:"column:der_site_id"`
	AggregatorID uint64 `gorm:"column:der_aggregator_id"`
}

type ChangedDerSetting struct {
	models.SiteDERSettingModel
	SiteID       uint64 `gorm:"column:der_site_id"`
	AggregatorID uint64 `gorm:"column:der_aggregator_id"`
}

type ChangedDerAvailability struct {
	models.SiteDERAvailabilityModel
	SiteID       uint64 `gorm:"column:der_site_id"`
	AggregatorID uint64 `gorm:"column:der_aggregator_id"`
}

type ChangedDerStatus struct {
	models.SiteDERStatusModel
	SiteID       uint64 `gorm:"column:der_site_id"`
	AggregatorID uint64 `gorm:"column:der_aggregator_id"`
}

func derChangedAt[T any](r *DERRepository, ctx context.Context, table string, ts time.Time, out *[]T) error {
	err := r.db.WithContext(ctx).
		Table(table).
		Select(table+".*, site_ders.site_id AS der_site_id, sites.aggregator_id AS der_aggregator_id").
		Joins("JOIN site_ders ON site_ders.id = "+table+".site_der_id").
		Joins("JOIN sites ON sites.id = site_ders.site_id").
		Where(table+".changed_time = ?", ts).
		Scan(out).Error
	if err != nil {
		return fmt.Errorf("failed to select changed rows from %s: %w", table, err)
	}
	return nil
}

// SelectRatingsChangedAt fetches capability records stored at the exact
// trigger instant, annotated with their owning site.
func (r *DERRepository) SelectRatingsChangedAt(ctx context.Context, ts time.Time) ([]ChangedDerRating, error) {
	var rows []ChangedDerRating
	if err := derChangedAt(r, ctx, "site_der_ratings", ts, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *DERRepository) SelectSettingsChangedAt(ctx context.Context, ts time.Time) ([]ChangedDerSetting, error) {
	var rows []ChangedDerSetting
	if err := derChangedAt(r, ctx, "site_der_settings", ts, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *DERRepository) SelectAvailabilitiesChangedAt(ctx context.Context, ts time.Time) ([]ChangedDerAvailability, error) {
	var rows []ChangedDerAvailability
	if err := derChangedAt(r, ctx, "site_der_availabilities", ts, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *DERRepository) SelectStatusesChangedAt(ctx context.Context, ts time.Time) ([]ChangedDerStatus, error) {
	var rows []ChangedDerStatus
	if err := derChangedAt(r, ctx, "site_der_statuses", ts, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}
