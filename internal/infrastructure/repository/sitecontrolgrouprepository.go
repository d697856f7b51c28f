package repository

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"enverge/internal/infrastructure/persistence/models"
	"enverge/internal/shared/logger"
)

type SiteControlGroupRepository struct {
	db     *gorm.DB
	logger logger.Interface
}

func NewSiteControlGroupRepository(gormDB *gorm.DB, logger logger.Interface) *SiteControlGroupRepository {
	return &SiteControlGroupRepository{db: gormDB, logger: logger}
}

func (r *SiteControlGroupRepository) Create(ctx context.Context, group *models.SiteControlGroupModel) error {
	if err := r.db.WithContext(ctx).Create(group).Error; err != nil {
		r.logger.Errorw("failed to create site control group", "error", err)
		return fmt.Errorf("failed to create site control group: %w", err)
	}
	return nil
}

func (r *SiteControlGroupRepository) GetByID(ctx context.Context, id uint64) (*models.SiteControlGroupModel, error) {
	var group models.SiteControlGroupModel
	if err := r.db.WithContext(ctx).First(&group, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get site control group: %w", err)
	}
	return &group, nil
}

// List enumerates groups in DERProgram order: primacy ASC, id DESC.
// Optionally filtered to groups under one function set assignment.
func (r *SiteControlGroupRepository) List(ctx context.Context, fsaID *uint64, changedAfter time.Time, start, limit int) ([]models.SiteControlGroupModel, error) {
	query := r.db.WithContext(ctx).
		Model(&models.SiteControlGroupModel{}).
		Where("changed_time >= ?", changedAfter)
	if fsaID != nil {
		query = query.Where("fsa_id = ?", *fsaID)
	}

	var groups []models.SiteControlGroupModel
	err := query.
		Order("primacy ASC, id DESC").
		Limit(limit).Offset(start).
		Find(&groups).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list site control groups: %w", err)
	}
	return groups, nil
}

func (r *SiteControlGroupRepository) Count(ctx context.Context, fsaID *uint64, changedAfter time.Time) (int64, error) {
	query := r.db.WithContext(ctx).
		Model(&models.SiteControlGroupModel{}).
		Where("changed_time >= ?", changedAfter)
	if fsaID != nil {
		query = query.Where("fsa_id = ?", *fsaID)
	}

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count site control groups: %w", err)
	}
	return count, nil
}

// PrimacyByGroupID loads the primacy of every group for supersession
// comparisons.
func (r *SiteControlGroupRepository) PrimacyByGroupID(ctx context.Context) (map[uint64]int32, error) {
	var groups []models.SiteControlGroupModel
	if err := r.db.WithContext(ctx).Select("id", "primacy").Find(&groups).Error; err != nil {
		return nil, fmt.Errorf("failed to load group primacies: %w", err)
	}
	primacies := make(map[uint64]int32, len(groups))
	for _, g := range groups {
		primacies[g.ID] = g.Primacy
	}
	return primacies, nil
}

// GetDefault returns the group level DefaultDERControl values, nil when
// none are configured.
func (r *SiteControlGroupRepository) GetDefault(ctx context.Context, groupID uint64) (*models.SiteControlGroupDefaultModel, error) {
	var def models.SiteControlGroupDefaultModel
	err := r.db.WithContext(ctx).
		Where("site_control_group_id = ?", groupID).
		First(&def).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get group default control: %w", err)
	}
	return &def, nil
}

// UpsertDefault replaces the group level default control values.
func (r *SiteControlGroupRepository) UpsertDefault(ctx context.Context, def *models.SiteControlGroupDefaultModel, now time.Time) error {
	existing, err := r.GetDefault(ctx, def.SiteControlGroupID)
	if err != nil {
		return err
	}
	def.ChangedTime = now
	if existing == nil {
		def.CreatedTime = now
		if err := r.db.WithContext(ctx).Create(def).Error; err != nil {
			return fmt.Errorf("failed to create group default control: %w", err)
		}
		return nil
	}
	def.ID = existing.ID
	def.CreatedTime = existing.CreatedTime
	if err := r.db.WithContext(ctx).Save(def).Error; err != nil {
		return fmt.Errorf("failed to update group default control: %w", err)
	}
	return nil
}

// UpdatePrimacy changes a group's priority, stamping changed_time so the
// change notification pipeline can pick it up.
func (r *SiteControlGroupRepository) UpdatePrimacy(ctx context.Context, groupID uint64, primacy int32, now time.Time) error {
	result := r.db.WithContext(ctx).
		Model(&models.SiteControlGroupModel{}).
		Where("id = ?", groupID).
		Updates(map[string]interface{}{"primacy": primacy, "changed_time": now})
	if result.Error != nil {
		return fmt.Errorf("failed to update group primacy: %w", result.Error)
	}
	return nil
}

// SelectGroupsChangedAt fetches groups changed at the exact instant for
// the notification batcher.
func (r *SiteControlGroupRepository) SelectGroupsChangedAt(ctx context.Context, ts time.Time) ([]models.SiteControlGroupModel, error) {
	var groups []models.SiteControlGroupModel
	err := r.db.WithContext(ctx).
		Where("changed_time = ?", ts).
		Find(&groups).Error
	if err != nil {
		return nil, fmt.Errorf("failed to select changed groups: %w", err)
	}
	return groups, nil
}
