package models

import (
	"time"

	"gorm.io/datatypes"
)

// AggregatorModel is the GORM model for the aggregators table. Aggregator 0
// is reserved for device certificate sites and is never listed.
type AggregatorModel struct {
	ID          uint64         `gorm:"primaryKey;autoIncrement"`
	Name        string         `gorm:"column:name;type:varchar(100);not null"`
	Domains     datatypes.JSON `gorm:"column:domains"`
	CreatedTime time.Time      `gorm:"column:created_time;autoCreateTime"`
	ChangedTime time.Time      `gorm:"column:changed_time;not null;index"`
}

// TableName returns the table name for GORM
func (AggregatorModel) TableName() string {
	return "aggregators"
}

// CertificateModel is the GORM model for registered client certificates.
type CertificateModel struct {
	ID      uint64    `gorm:"primaryKey;autoIncrement"`
	Lfdi    string    `gorm:"column:lfdi;type:char(42);not null;uniqueIndex"`
	Sfdi    uint64    `gorm:"column:sfdi;not null"`
	Created time.Time `gorm:"column:created;autoCreateTime"`
	Expiry  time.Time `gorm:"column:expiry;not null;index"`
}

func (CertificateModel) TableName() string {
	return "certificates"
}

// AggregatorCertificateAssignmentModel joins certificates to aggregators.
type AggregatorCertificateAssignmentModel struct {
	ID            uint64 `gorm:"primaryKey;autoIncrement"`
	AggregatorID  uint64 `gorm:"column:aggregator_id;not null;index:idx_agg_cert,unique"`
	CertificateID uint64 `gorm:"column:certificate_id;not null;index:idx_agg_cert,unique"`
}

func (AggregatorCertificateAssignmentModel) TableName() string {
	return "aggregator_certificate_assignments"
}
