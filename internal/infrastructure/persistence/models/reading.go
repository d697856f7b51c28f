package models

import "time"

// SiteReadingTypeModel is the GORM model for site_reading_types: the
// 2030.5 ReadingType plus ownership and role flags. Rows are deduplicated
// on the full semantic column set, declared unique in SQL.
type SiteReadingTypeModel struct {
	ID           uint64 `gorm:"primaryKey;autoIncrement"`
	AggregatorID uint64 `gorm:"column:aggregator_id;not null;index"`
	SiteID       uint64 `gorm:"column:site_id;not null;index"`

	Mrid                 string `gorm:"column:mrid;type:char(32);not null"`
	Uom                  int32  `gorm:"column:uom;not null"`
	DataQualifier        int32  `gorm:"column:data_qualifier;not null"`
	FlowDirection        int32  `gorm:"column:flow_direction;not null"`
	AccumulationBehavior int32  `gorm:"column:accumulation_behaviour;not null"`
	Kind                 int32  `gorm:"column:kind;not null"`
	Phase                int32  `gorm:"column:phase;not null"`
	PowerOfTenMultiplier int32  `gorm:"column:power_of_ten_multiplier;not null"`
	DefaultIntervalSecs  int32  `gorm:"column:default_interval_seconds;not null"`
	RoleFlags            int32  `gorm:"column:role_flags;not null;default:0"`

	CreatedTime time.Time `gorm:"column:created_time;not null"`
	ChangedTime time.Time `gorm:"column:changed_time;not null;index"`
}

func (SiteReadingTypeModel) TableName() string {
	return "site_reading_types"
}

// SiteReadingFields is the archivable column set of a stored reading.
type SiteReadingFields struct {
	SiteReadingTypeID uint64 `gorm:"column:site_reading_type_id;not null;index:,composite:reading_period,priority:1"`

	TimePeriodStart   time.Time `gorm:"column:time_period_start;not null;index:,composite:reading_period,priority:2"`
	TimePeriodSeconds int32     `gorm:"column:time_period_seconds;not null"`
	Value             int64     `gorm:"column:value;not null"`
	QualityFlags      int32     `gorm:"column:quality_flags;not null;default:0"`
	LocalID           *int64    `gorm:"column:local_id"`

	CreatedTime time.Time `gorm:"column:created_time;not null"`
	ChangedTime time.Time `gorm:"column:changed_time;not null;index"`
}

// SiteReadingModel is the GORM model for site_readings. Unique on
// (site_reading_type_id, time_period_start), declared in SQL.
type SiteReadingModel struct {
	ID uint64 `gorm:"primaryKey;autoIncrement"`
	SiteReadingFields
}

func (SiteReadingModel) TableName() string {
	return "site_readings"
}

type ArchiveSiteReadingModel struct {
	ArchiveID   uint64     `gorm:"primaryKey;autoIncrement;column:archive_id"`
	ArchiveTime time.Time  `gorm:"column:archive_time;not null"`
	DeletedTime *time.Time `gorm:"column:deleted_time;index"`
	ID          uint64     `gorm:"column:id;not null;index"`
	SiteReadingFields
}

func (ArchiveSiteReadingModel) TableName() string {
	return "archive_site_readings"
}
