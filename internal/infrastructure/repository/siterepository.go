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

type SiteRepository struct {
	db     *gorm.DB
	tm     *db.TransactionManager
	logger logger.Interface
}

func NewSiteRepository(gormDB *gorm.DB, logger logger.Interface) *SiteRepository {
	return &SiteRepository{
		db:     gormDB,
		tm:     db.NewTransactionManager(gormDB),
		logger: logger,
	}
}

// GetByID fetches one site bounded to an aggregator partition.
func (r *SiteRepository) GetByID(ctx context.Context, siteID, aggregatorID uint64) (*models.SiteModel, error) {
	var site models.SiteModel
	err := r.db.WithContext(ctx).
		Where("id = ? AND aggregator_id = ?", siteID, aggregatorID).
		First(&site).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get site: %w", err)
	}
	return &site, nil
}

// GetByLfdi resolves a device certificate site within the null aggregator
// partition.
func (r *SiteRepository) GetByLfdi(ctx context.Context, lfdi string, aggregatorID uint64) (*models.SiteModel, error) {
	var site models.SiteModel
	err := r.db.WithContext(ctx).
		Where("lfdi = ? AND aggregator_id = ?", lfdi, aggregatorID).
		First(&site).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get site by lfdi: %w", err)
	}
	return &site, nil
}

// GetBySfdi resolves the upsert key used by aggregator EndDevice POSTs.
func (r *SiteRepository) GetBySfdi(ctx context.Context, sfdi, aggregatorID uint64) (*models.SiteModel, error) {
	var site models.SiteModel
	err := r.db.WithContext(ctx).
		Where("sfdi = ? AND aggregator_id = ?", sfdi, aggregatorID).
		First(&site).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get site by sfdi: %w", err)
	}
	return &site, nil
}

// List pages sites in an aggregator partition in 2030.5 EndDeviceList
// order (changed_time DESC, id DESC), optionally bounded to one site for
// device certificate scopes.
func (r *SiteRepository) List(ctx context.Context, aggregatorID uint64, siteID *uint64, changedAfter time.Time, start, limit int) ([]models.SiteModel, error) {
	query := r.db.WithContext(ctx).
		Where("aggregator_id = ? AND changed_time >= ?", aggregatorID, changedAfter)
	if siteID != nil {
		query = query.Where("id = ?", *siteID)
	}

	var sites []models.SiteModel
	err := query.
		Order("changed_time DESC, id DESC").
		Limit(limit).Offset(start).
		Find(&sites).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list sites: %w", err)
	}
	return sites, nil
}

func (r *SiteRepository) Count(ctx context.Context, aggregatorID uint64, siteID *uint64, changedAfter time.Time) (int64, error) {
	query := r.db.WithContext(ctx).
		Model(&models.SiteModel{}).
		Where("aggregator_id = ? AND changed_time >= ?", aggregatorID, changedAfter)
	if siteID != nil {
		query = query.Where("id = ?", *siteID)
	}

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count sites: %w", err)
	}
	return count, nil
}

// Upsert creates a site or, when (aggregator_id, sfdi) already exists,
// archives the pre-image and replaces the mutable columns.
func (r *SiteRepository) Upsert(ctx context.Context, site *models.SiteModel, now time.Time) error {
	return r.tm.RunInTransaction(ctx, func(txCtx context.Context) error {
		tx := r.tm.GetTx(txCtx)

		var existing models.SiteModel
		err := tx.Where("aggregator_id = ? AND sfdi = ?", site.AggregatorID, site.Sfdi).First(&existing).Error
		if err == gorm.ErrRecordNotFound {
			site.CreatedTime = now
			site.ChangedTime = now
			if err := tx.Create(site).Error; err != nil {
				return fmt.Errorf("failed to create site: %w", err)
			}
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to find site for upsert: %w", err)
		}

		if err := copyIntoArchive(tx, &models.SiteModel{}, &models.ArchiveSiteModel{}, "id = ?", existing.ID); err != nil {
			return err
		}

		site.ID = existing.ID
		site.CreatedTime = existing.CreatedTime
		site.RegistrationPin = existing.RegistrationPin
		site.ChangedTime = now
		if err := tx.Save(site).Error; err != nil {
			return fmt.Errorf("failed to update site: %w", err)
		}
		return nil
	})
}

// Delete removes a site and cascades through every child table, copying
// all pre-images into their archives with the deletion instant.
func (r *SiteRepository) Delete(ctx context.Context, siteID, aggregatorID uint64, now time.Time) (bool, error) {
	existing, err := r.GetByID(ctx, siteID, aggregatorID)
	if err != nil {
		return false, err
	}
	if existing == nil {
		return false, nil
	}

	err = r.tm.RunInTransaction(ctx, func(txCtx context.Context) error {
		tx := r.tm.GetTx(txCtx)

		// Child tables first, leaves inward: readings, DER records, envelopes,
		// defaults, subscriptions, then the site row itself.
		err := deleteIntoArchive(tx, &models.SiteReadingModel{}, &models.ArchiveSiteReadingModel{}, now,
			"site_reading_type_id IN (SELECT id FROM site_reading_types WHERE site_id = ?)", siteID)
		if err != nil {
			return err
		}
		if err := tx.Where("site_id = ?", siteID).Delete(&models.SiteReadingTypeModel{}).Error; err != nil {
			return fmt.Errorf("failed to delete site reading types: %w", err)
		}

		derWhere := "site_der_id IN (SELECT id FROM site_ders WHERE site_id = ?)"
		if err := deleteIntoArchive(tx, &models.SiteDERRatingModel{}, &models.ArchiveSiteDERRatingModel{}, now, derWhere, siteID); err != nil {
			return err
		}
		if err := deleteIntoArchive(tx, &models.SiteDERSettingModel{}, &models.ArchiveSiteDERSettingModel{}, now, derWhere, siteID); err != nil {
			return err
		}
		if err := deleteIntoArchive(tx, &models.SiteDERAvailabilityModel{}, &models.ArchiveSiteDERAvailabilityModel{}, now, derWhere, siteID); err != nil {
			return err
		}
		if err := deleteIntoArchive(tx, &models.SiteDERStatusModel{}, &models.ArchiveSiteDERStatusModel{}, now, derWhere, siteID); err != nil {
			return err
		}
		if err := deleteIntoArchive(tx, &models.SiteDERModel{}, &models.ArchiveSiteDERModel{}, now, "site_id = ?", siteID); err != nil {
			return err
		}

		if err := deleteIntoArchive(tx, &models.DynamicOperatingEnvelopeModel{}, &models.ArchiveDoeModel{}, now, "site_id = ?", siteID); err != nil {
			return err
		}
		if err := deleteIntoArchive(tx, &models.TariffGeneratedRateModel{}, &models.ArchiveTariffGeneratedRateModel{}, now, "site_id = ?", siteID); err != nil {
			return err
		}
		if err := deleteIntoArchive(tx, &models.DefaultSiteControlModel{}, &models.ArchiveDefaultSiteControlModel{}, now, "site_id = ?", siteID); err != nil {
			return err
		}
		if err := tx.Exec("DELETE FROM subscription_conditions WHERE subscription_id IN (SELECT id FROM subscriptions WHERE scoped_site_id = ?)", siteID).Error; err != nil {
			return fmt.Errorf("failed to delete subscription conditions: %w", err)
		}
		if err := deleteIntoArchive(tx, &models.SubscriptionModel{}, &models.ArchiveSubscriptionModel{}, now, "scoped_site_id = ?", siteID); err != nil {
			return err
		}

		return deleteIntoArchive(tx, &models.SiteModel{}, &models.ArchiveSiteModel{}, now, "id = ?", siteID)
	})
	if err != nil {
		return false, err
	}
	return true, nil
}

// GetDefaultSiteControl returns the per-site fallback control values.
func (r *SiteRepository) GetDefaultSiteControl(ctx context.Context, siteID uint64) (*models.DefaultSiteControlModel, error) {
	var def models.DefaultSiteControlModel
	err := r.db.WithContext(ctx).
		Where("site_id = ?", siteID).
		First(&def).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get default site control: %w", err)
	}
	return &def, nil
}

// UpsertDefaultSiteControl replaces a site's fallback control values,
// archiving the pre-image.
func (r *SiteRepository) UpsertDefaultSiteControl(ctx context.Context, def *models.DefaultSiteControlModel, now time.Time) error {
	return r.tm.RunInTransaction(ctx, func(txCtx context.Context) error {
		tx := r.tm.GetTx(txCtx)

		var existing models.DefaultSiteControlModel
		err := tx.Where("site_id = ?", def.SiteID).First(&existing).Error
		if err == gorm.ErrRecordNotFound {
			def.CreatedTime = now
			def.ChangedTime = now
			if err := tx.Create(def).Error; err != nil {
				return fmt.Errorf("failed to create default site control: %w", err)
			}
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to find default site control: %w", err)
		}

		if err := copyIntoArchive(tx, &models.DefaultSiteControlModel{}, &models.ArchiveDefaultSiteControlModel{}, "id = ?", existing.ID); err != nil {
			return err
		}
		def.ID = existing.ID
		def.CreatedTime = existing.CreatedTime
		def.ChangedTime = now
		if err := tx.Save(def).Error; err != nil {
			return fmt.Errorf("failed to update default site control: %w", err)
		}
		return nil
	})
}

// SelectSitesChangedAt fetches sites changed at the exact trigger instant.
func (r *SiteRepository) SelectSitesChangedAt(ctx context.Context, ts time.Time) ([]models.SiteModel, error) {
	var sites []models.SiteModel
	if err := r.db.WithContext(ctx).Where("changed_time = ?", ts).Find(&sites).Error; err != nil {
		return nil, fmt.Errorf("failed to select changed sites: %w", err)
	}
	return sites, nil
}

// SelectSitesDeletedAt fetches archived sites deleted at the exact instant.
func (r *SiteRepository) SelectSitesDeletedAt(ctx context.Context, ts time.Time) ([]models.ArchiveSiteModel, error) {
	var sites []models.ArchiveSiteModel
	if err := r.db.WithContext(ctx).Where("deleted_time = ?", ts).Find(&sites).Error; err != nil {
		return nil, fmt.Errorf("failed to select deleted sites: %w", err)
	}
	return sites, nil
}

// SelectDefaultSiteControlsChangedAt feeds the batcher for the
// DefaultDERControl resource.
func (r *SiteRepository) SelectDefaultSiteControlsChangedAt(ctx context.Context, ts time.Time) ([]ChangedDefaultSiteControl, error) {
	var rows []ChangedDefaultSiteControl
	err := r.db.WithContext(ctx).
		Model(&models.DefaultSiteControlModel{}).
		Select("default_site_controls.*, sites.aggregator_id AS aggregator_id").
		Joins("JOIN sites ON sites.id = default_site_controls.site_id").
		Where("default_site_controls.changed_time = ?", ts).
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to select changed default site controls: %w", err)
	}
	return rows, nil
}

// ChangedDefaultSiteControl annotates a default control with its owner.
type ChangedDefaultSiteControl struct {
	models.DefaultSiteControlModel
	AggregatorID uint64 `gorm:"column:aggregator_id"`
}

// GetByIDUnscoped fetches a site with no partition bound. Only the admin
// surface may call this.
func (r *SiteRepository) GetByIDUnscoped(ctx context.Context, siteID uint64) (*models.SiteModel, error) {
	var site models.SiteModel
	if err := r.db.WithContext(ctx).First(&site, siteID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get site: %w", err)
	}
	return &site, nil
}

// SelectArchivedSites pages the site archive by archive period.
func (r *SiteRepository) SelectArchivedSites(ctx context.Context, periodStart, periodEnd time.Time, deletedOnly bool) ([]models.ArchiveSiteModel, error) {
	return selectArchived[models.ArchiveSiteModel](ctx, r.db, periodStart, periodEnd, deletedOnly)
}
