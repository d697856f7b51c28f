package repository

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"enverge/internal/infrastructure/persistence/models"
	"enverge/internal/shared/logger"
)

// runtimeConfigRowID pins the singleton runtime configuration row.
const runtimeConfigRowID = 1

type RuntimeConfigRepository struct {
	db     *gorm.DB
	logger logger.Interface
}

func NewRuntimeConfigRepository(gormDB *gorm.DB, logger logger.Interface) *RuntimeConfigRepository {
	return &RuntimeConfigRepository{db: gormDB, logger: logger}
}

// Get returns the runtime configuration, falling back to the model's
// defaults when the row has never been written.
func (r *RuntimeConfigRepository) Get(ctx context.Context) (*models.RuntimeServerConfigModel, error) {
	var cfg models.RuntimeServerConfigModel
	err := r.db.WithContext(ctx).First(&cfg, runtimeConfigRowID).Error
	if err == gorm.ErrRecordNotFound {
		return defaultRuntimeConfig(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get runtime config: %w", err)
	}
	return &cfg, nil
}

// Update writes the singleton row, creating it on first use, and stamps
// changed_time so poll rate changes flow into notifications.
func (r *RuntimeConfigRepository) Update(ctx context.Context, cfg *models.RuntimeServerConfigModel, now time.Time) error {
	cfg.ID = runtimeConfigRowID
	cfg.ChangedTime = now

	var existing models.RuntimeServerConfigModel
	err := r.db.WithContext(ctx).First(&existing, runtimeConfigRowID).Error
	if err == gorm.ErrRecordNotFound {
		cfg.CreatedTime = now
		if err := r.db.WithContext(ctx).Create(cfg).Error; err != nil {
			return fmt.Errorf("failed to create runtime config: %w", err)
		}
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to find runtime config: %w", err)
	}

	cfg.CreatedTime = existing.CreatedTime
	if err := r.db.WithContext(ctx).Save(cfg).Error; err != nil {
		return fmt.Errorf("failed to update runtime config: %w", err)
	}
	return nil
}

func defaultRuntimeConfig() *models.RuntimeServerConfigModel {
	return &models.RuntimeServerConfigModel{
		ID:                       runtimeConfigRowID,
		DcapPollRateSeconds:      300,
		EdevlPollRateSeconds:     300,
		FsalPollRateSeconds:      300,
		DerplPollRateSeconds:     60,
		DerlPollRateSeconds:      60,
		MupPostRateSeconds:       60,
		SiteControlPow10Encoding: 0,
		DisableEdevRegistration:  false,
	}
}
