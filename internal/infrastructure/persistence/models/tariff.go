package models

import "time"

// TariffModel is the GORM model for tariffs.
type TariffModel struct {
	ID           uint64    `gorm:"primaryKey;autoIncrement"`
	Name         string    `gorm:"column:name;type:varchar(64);not null"`
	DnspCode     string    `gorm:"column:dnsp_code;type:varchar(20);not null"`
	CurrencyCode int32     `gorm:"column:currency_code;not null"`
	FsaID        uint64    `gorm:"column:fsa_id;not null;default:1;index"`
	CreatedTime  time.Time `gorm:"column:created_time;autoCreateTime"`
	ChangedTime  time.Time `gorm:"column:changed_time;not null;index"`
}

func (TariffModel) TableName() string {
	return "tariffs"
}

// TariffGeneratedRateFields is the archivable column set of a generated
// rate. Prices are integers scaled by 10^-4; a human $1 stores as 10000.
//
// LocalStartDay and LocalMinuteOfDay are derived from start_time in the
// owning site's timezone at write time so day bucketing and exact
// day/time lookups stay portable SQL.
type TariffGeneratedRateFields struct {
	TariffID         uint64  `gorm:"column:tariff_id;not null;index:,composite:rate_window,priority:1"`
	SiteID           uint64  `gorm:"column:site_id;not null;index:,composite:rate_window,priority:2"`
	CalculationLogID *uint64 `gorm:"column:calculation_log_id"`

	StartTime        time.Time `gorm:"column:start_time;not null;index:,composite:rate_window,priority:3"`
	DurationSeconds  int32     `gorm:"column:duration_seconds;not null"`
	LocalStartDay    string    `gorm:"column:local_start_day;type:char(10);not null;index"`
	LocalMinuteOfDay int32     `gorm:"column:local_minute_of_day;not null"`

	ImportActivePrice   int64 `gorm:"column:import_active_price;not null"`
	ExportActivePrice   int64 `gorm:"column:export_active_price;not null"`
	ImportReactivePrice int64 `gorm:"column:import_reactive_price;not null"`
	ExportReactivePrice int64 `gorm:"column:export_reactive_price;not null"`

	CreatedTime time.Time `gorm:"column:created_time;not null"`
	ChangedTime time.Time `gorm:"column:changed_time;not null;index"`
}

// TariffGeneratedRateModel is the GORM model for tariff_generated_rates.
// Unique on (tariff_id, site_id, start_time), declared in SQL.
type TariffGeneratedRateModel struct {
	ID uint64 `gorm:"primaryKey;autoIncrement"`
	TariffGeneratedRateFields
}

func (TariffGeneratedRateModel) TableName() string {
	return "tariff_generated_rates"
}

type ArchiveTariffGeneratedRateModel struct {
	ArchiveID   uint64     `gorm:"primaryKey;autoIncrement;column:archive_id"`
	ArchiveTime time.Time  `gorm:"column:archive_time;not null"`
	DeletedTime *time.Time `gorm:"column:deleted_time;index"`
	ID          uint64     `gorm:"column:id;not null;index"`
	TariffGeneratedRateFields
}

func (ArchiveTariffGeneratedRateModel) TableName() string {
	return "archive_tariff_generated_rates"
}
