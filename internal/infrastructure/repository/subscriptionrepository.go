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

type SubscriptionRepository struct {
	db     *gorm.DB
	tm     *db.TransactionManager
	logger logger.Interface
}

func NewSubscriptionRepository(gormDB *gorm.DB, logger logger.Interface) *SubscriptionRepository {
	return &SubscriptionRepository{
		db:     gormDB,
		tm:     db.NewTransactionManager(gormDB),
		logger: logger,
	}
}

// Create persists a subscription with its optional condition.
func (r *SubscriptionRepository) Create(ctx context.Context, sub *models.SubscriptionModel, now time.Time) error {
	sub.CreatedTime = now
	sub.ChangedTime = now
	if err := r.db.WithContext(ctx).Create(sub).Error; err != nil {
		r.logger.Errorw("failed to create subscription", "error", err)
		return fmt.Errorf("failed to create subscription: %w", err)
	}
	return nil
}

// GetByID fetches one subscription with its condition, bounded to an
// aggregator and to the site the request scope is limited to.
func (r *SubscriptionRepository) GetByID(ctx context.Context, subID, aggregatorID uint64, siteID *uint64) (*models.SubscriptionModel, error) {
	query := r.db.WithContext(ctx).
		Preload("Conditions").
		Where("id = ? AND aggregator_id = ?", subID, aggregatorID)
	if siteID != nil {
		query = query.Where("scoped_site_id = ?", *siteID)
	}

	var sub models.SubscriptionModel
	if err := query.First(&sub).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get subscription: %w", err)
	}
	return &sub, nil
}

// ListForSite pages the subscriptions scoped to one site.
func (r *SubscriptionRepository) ListForSite(ctx context.Context, aggregatorID, siteID uint64, changedAfter time.Time, start, limit int) ([]models.SubscriptionModel, error) {
	var subs []models.SubscriptionModel
	err := r.db.WithContext(ctx).
		Preload("Conditions").
		Where("aggregator_id = ? AND scoped_site_id = ? AND changed_time >= ?", aggregatorID, siteID, changedAfter).
		Order("id ASC").
		Limit(limit).Offset(start).
		Find(&subs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list subscriptions: %w", err)
	}
	return subs, nil
}

func (r *SubscriptionRepository) CountForSite(ctx context.Context, aggregatorID, siteID uint64, changedAfter time.Time) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.SubscriptionModel{}).
		Where("aggregator_id = ? AND scoped_site_id = ? AND changed_time >= ?", aggregatorID, siteID, changedAfter).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count subscriptions: %w", err)
	}
	return count, nil
}

// Delete removes a subscription and its condition, archiving the
// pre-image. Returns false when the scope does not own such a
// subscription.
func (r *SubscriptionRepository) Delete(ctx context.Context, subID, aggregatorID uint64, siteID *uint64, now time.Time) (bool, error) {
	existing, err := r.GetByID(ctx, subID, aggregatorID, siteID)
	if err != nil {
		return false, err
	}
	if existing == nil {
		return false, nil
	}

	err = r.tm.RunInTransaction(ctx, func(txCtx context.Context) error {
		tx := r.tm.GetTx(txCtx)
		if err := tx.Where("subscription_id = ?", subID).Delete(&models.SubscriptionConditionModel{}).Error; err != nil {
			return fmt.Errorf("failed to delete subscription conditions: %w", err)
		}
		return deleteIntoArchive(tx, &models.SubscriptionModel{}, &models.ArchiveSubscriptionModel{}, now, "id = ?", subID)
	})
	if err != nil {
		return false, err
	}
	return true, nil
}

// ActiveByResourceType loads every subscription watching one resource
// family across all aggregators, conditions attached. Every batcher run
// starts here so subscriptions whose filter matches nothing still get
// their empty notification.
func (r *SubscriptionRepository) ActiveByResourceType(ctx context.Context, resourceType int32) ([]models.SubscriptionModel, error) {
	var subs []models.SubscriptionModel
	err := r.db.WithContext(ctx).
		Preload("Conditions").
		Where("resource_type = ?", resourceType).
		Order("id ASC").
		Find(&subs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load resource subscriptions: %w", err)
	}
	return subs, nil
}

// ListAggregatorWide pages the subscriptions with no scoped site. These
// are the subscriptions surfaced under the virtual end device.
func (r *SubscriptionRepository) ListAggregatorWide(ctx context.Context, aggregatorID uint64, changedAfter time.Time, start, limit int) ([]models.SubscriptionModel, error) {
	var subs []models.SubscriptionModel
	err := r.db.WithContext(ctx).
		Preload("Conditions").
		Where("aggregator_id = ? AND scoped_site_id IS NULL AND changed_time >= ?", aggregatorID, changedAfter).
		Order("id ASC").
		Limit(limit).Offset(start).
		Find(&subs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list aggregator wide subscriptions: %w", err)
	}
	return subs, nil
}

func (r *SubscriptionRepository) CountAggregatorWide(ctx context.Context, aggregatorID uint64, changedAfter time.Time) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.SubscriptionModel{}).
		Where("aggregator_id = ? AND scoped_site_id IS NULL AND changed_time >= ?", aggregatorID, changedAfter).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count aggregator wide subscriptions: %w", err)
	}
	return count, nil
}
