package models

import "time"

// ResponseSetType partitions delivery acknowledgements by subject family.
const (
	ResponseSetSiteControl         = "site-control"
	ResponseSetTariffGeneratedRate = "tariff-generated-rate"
)

// SiteControlResponseModel records a client acknowledgement for a DERControl.
// The envelope id is snapshotted; the envelope itself may since have been
// archived.
type SiteControlResponseModel struct {
	ID                         uint64    `gorm:"primaryKey;autoIncrement"`
	SiteID                     uint64    `gorm:"column:site_id;not null;index"`
	DynamicOperatingEnvelopeID uint64    `gorm:"column:dynamic_operating_envelope_id;not null;index"`
	Status                     int32     `gorm:"column:status;not null"`
	CreatedTime                time.Time `gorm:"column:created_time;not null;index"`
}

func (SiteControlResponseModel) TableName() string {
	return "site_control_responses"
}

// TariffGeneratedRateResponseModel records a client acknowledgement for a
// TimeTariffInterval, keyed by rate and pricing reading type.
type TariffGeneratedRateResponseModel struct {
	ID                    uint64    `gorm:"primaryKey;autoIncrement"`
	SiteID                uint64    `gorm:"column:site_id;not null;index"`
	TariffGeneratedRateID uint64    `gorm:"column:tariff_generated_rate_id;not null;index"`
	PricingReadingType    int32     `gorm:"column:pricing_reading_type;not null"`
	Status                int32     `gorm:"column:status;not null"`
	CreatedTime           time.Time `gorm:"column:created_time;not null;index"`
}

func (TariffGeneratedRateResponseModel) TableName() string {
	return "tariff_generated_rate_responses"
}

// CalculationLogModel tags bulk-upserted envelopes and rates with the
// calculation run that produced them.
type CalculationLogModel struct {
	ID                 uint64    `gorm:"primaryKey;autoIncrement"`
	ExternalID         string    `gorm:"column:external_id;type:varchar(64);not null;index"`
	Description        string    `gorm:"column:description;type:varchar(1024)"`
	CalculationStart   time.Time `gorm:"column:calculation_range_start;not null"`
	CalculationSeconds int32     `gorm:"column:calculation_range_seconds;not null"`
	IntervalSeconds    int32     `gorm:"column:interval_seconds;not null"`
	CreatedTime        time.Time `gorm:"column:created_time;autoCreateTime"`
}

func (CalculationLogModel) TableName() string {
	return "calculation_logs"
}
