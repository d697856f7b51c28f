package repository

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"enverge/internal/infrastructure/persistence/models"
	"enverge/internal/shared/logger"
)

type ResponseRepository struct {
	db     *gorm.DB
	logger logger.Interface
}

func NewResponseRepository(gormDB *gorm.DB, logger logger.Interface) *ResponseRepository {
	return &ResponseRepository{db: gormDB, logger: logger}
}

// CreateSiteControlResponse records a client acknowledgement for a
// DERControl. The referenced envelope may already be archived; the id is
// stored as received.
func (r *ResponseRepository) CreateSiteControlResponse(ctx context.Context, resp *models.SiteControlResponseModel) error {
	if err := r.db.WithContext(ctx).Create(resp).Error; err != nil {
		r.logger.Errorw("failed to create site control response", "error", err)
		return fmt.Errorf("failed to create site control response: %w", err)
	}
	return nil
}

// CreateRateResponse records a client acknowledgement for a
// TimeTariffInterval.
func (r *ResponseRepository) CreateRateResponse(ctx context.Context, resp *models.TariffGeneratedRateResponseModel) error {
	if err := r.db.WithContext(ctx).Create(resp).Error; err != nil {
		r.logger.Errorw("failed to create rate response", "error", err)
		return fmt.Errorf("failed to create rate response: %w", err)
	}
	return nil
}

// ListSiteControlResponses pages a site's control acknowledgements,
// newest first.
func (r *ResponseRepository) ListSiteControlResponses(ctx context.Context, siteID uint64, after time.Time, start, limit int) ([]models.SiteControlResponseModel, error) {
	var responses []models.SiteControlResponseModel
	err := r.db.WithContext(ctx).
		Where("site_id = ? AND created_time >= ?", siteID, after).
		Order("created_time DESC, id DESC").
		Limit(limit).Offset(start).
		Find(&responses).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list site control responses: %w", err)
	}
	return responses, nil
}

func (r *ResponseRepository) CountSiteControlResponses(ctx context.Context, siteID uint64, after time.Time) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.SiteControlResponseModel{}).
		Where("site_id = ? AND created_time >= ?", siteID, after).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count site control responses: %w", err)
	}
	return count, nil
}

// ListRateResponses pages a site's rate acknowledgements, newest first.
func (r *ResponseRepository) ListRateResponses(ctx context.Context, siteID uint64, after time.Time, start, limit int) ([]models.TariffGeneratedRateResponseModel, error) {
	var responses []models.TariffGeneratedRateResponseModel
	err := r.db.WithContext(ctx).
		Where("site_id = ? AND created_time >= ?", siteID, after).
		Order("created_time DESC, id DESC").
		Limit(limit).Offset(start).
		Find(&responses).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list rate responses: %w", err)
	}
	return responses, nil
}

func (r *ResponseRepository) CountRateResponses(ctx context.Context, siteID uint64, after time.Time) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.TariffGeneratedRateResponseModel{}).
		Where("site_id = ? AND created_time >= ?", siteID, after).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count rate responses: %w", err)
	}
	return count, nil
}

// CreateCalculationLog tags a bulk upsert run.
func (r *ResponseRepository) CreateCalculationLog(ctx context.Context, log *models.CalculationLogModel) error {
	if err := r.db.WithContext(ctx).Create(log).Error; err != nil {
		return fmt.Errorf("failed to create calculation log: %w", err)
	}
	return nil
}

// GetCalculationLogByExternalID returns the most recent run tagged with
// the external id, nil when absent.
func (r *ResponseRepository) GetCalculationLogByExternalID(ctx context.Context, externalID string) (*models.CalculationLogModel, error) {
	var log models.CalculationLogModel
	err := r.db.WithContext(ctx).
		Where("external_id = ?", externalID).
		Order("id DESC").
		First(&log).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get calculation log: %w", err)
	}
	return &log, nil
}
