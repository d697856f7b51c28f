package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/gorm"

	"enverge/internal/infrastructure/persistence/models"
	"enverge/internal/shared/logger"
)

type AggregatorRepository struct {
	db     *gorm.DB
	logger logger.Interface
}

func NewAggregatorRepository(gormDB *gorm.DB, logger logger.Interface) *AggregatorRepository {
	return &AggregatorRepository{db: gormDB, logger: logger}
}

// CertificateAssignment is the resolved identity of a presented client
// certificate: the certificate row and, when one exists, the aggregator
// the certificate is assigned to.
type CertificateAssignment struct {
	CertificateID uint64
	AggregatorID  *uint64
}

// ResolveCertificate maps a normalized lfdi to its registered, unexpired
// certificate and aggregator assignment. A nil result means the
// certificate is unknown or expired; a nil AggregatorID means a device
// certificate.
func (r *AggregatorRepository) ResolveCertificate(ctx context.Context, lfdi string, now time.Time) (*CertificateAssignment, error) {
	var cert models.CertificateModel
	err := r.db.WithContext(ctx).
		Where("lfdi = ? AND expiry > ?", lfdi, now).
		First(&cert).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to resolve certificate: %w", err)
	}

	resolved := &CertificateAssignment{CertificateID: cert.ID}

	var assignment models.AggregatorCertificateAssignmentModel
	err = r.db.WithContext(ctx).
		Where("certificate_id = ?", cert.ID).
		First(&assignment).Error
	if err == gorm.ErrRecordNotFound {
		return resolved, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to resolve certificate assignment: %w", err)
	}
	resolved.AggregatorID = &assignment.AggregatorID
	return resolved, nil
}

func (r *AggregatorRepository) GetByID(ctx context.Context, id uint64) (*models.AggregatorModel, error) {
	var agg models.AggregatorModel
	if err := r.db.WithContext(ctx).First(&agg, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get aggregator: %w", err)
	}
	return &agg, nil
}

// List enumerates real aggregators. The null aggregator partition id 0
// never has a row so it is naturally excluded.
func (r *AggregatorRepository) List(ctx context.Context, start, limit int) ([]models.AggregatorModel, error) {
	var aggs []models.AggregatorModel
	err := r.db.WithContext(ctx).
		Order("id ASC").
		Limit(limit).Offset(start).
		Find(&aggs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list aggregators: %w", err)
	}
	return aggs, nil
}

func (r *AggregatorRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.AggregatorModel{}).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count aggregators: %w", err)
	}
	return count, nil
}

func (r *AggregatorRepository) Create(ctx context.Context, agg *models.AggregatorModel) error {
	if err := r.db.WithContext(ctx).Create(agg).Error; err != nil {
		r.logger.Errorw("failed to create aggregator", "error", err)
		return fmt.Errorf("failed to create aggregator: %w", err)
	}
	return nil
}

func (r *AggregatorRepository) CreateCertificate(ctx context.Context, cert *models.CertificateModel) error {
	if err := r.db.WithContext(ctx).Create(cert).Error; err != nil {
		return fmt.Errorf("failed to create certificate: %w", err)
	}
	return nil
}

func (r *AggregatorRepository) AssignCertificate(ctx context.Context, aggregatorID, certificateID uint64) error {
	assignment := models.AggregatorCertificateAssignmentModel{
		AggregatorID:  aggregatorID,
		CertificateID: certificateID,
	}
	if err := r.db.WithContext(ctx).Create(&assignment).Error; err != nil {
		return fmt.Errorf("failed to assign certificate: %w", err)
	}
	return nil
}

// Domains decodes the aggregator's FQDN allowlist used to validate
// subscription notificationURI hosts.
func (r *AggregatorRepository) Domains(ctx context.Context, aggregatorID uint64) ([]string, error) {
	agg, err := r.GetByID(ctx, aggregatorID)
	if err != nil {
		return nil, err
	}
	if agg == nil || len(agg.Domains) == 0 {
		return nil, nil
	}
	var domains []string
	if err := json.Unmarshal(agg.Domains, &domains); err != nil {
		return nil, fmt.Errorf("failed to decode aggregator domains: %w", err)
	}
	return domains, nil
}

// SetDomains replaces the FQDN allowlist.
func (r *AggregatorRepository) SetDomains(ctx context.Context, aggregatorID uint64, domains []string, now time.Time) error {
	encoded, err := json.Marshal(domains)
	if err != nil {
		return fmt.Errorf("failed to encode aggregator domains: %w", err)
	}
	result := r.db.WithContext(ctx).
		Model(&models.AggregatorModel{}).
		Where("id = ?", aggregatorID).
		Updates(map[string]interface{}{"domains": encoded, "changed_time": now})
	if result.Error != nil {
		return fmt.Errorf("failed to update aggregator domains: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
