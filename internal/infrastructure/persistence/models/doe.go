package models

import "time"

// SiteControlGroupModel is the GORM model for site_control_groups. Lower
// primacy wins when envelopes overlap.
type SiteControlGroupModel struct {
	ID          uint64    `gorm:"primaryKey;autoIncrement"`
	Description string    `gorm:"column:description;type:varchar(32);not null"`
	Primacy     int32     `gorm:"column:primacy;not null;index"`
	FsaID       uint64    `gorm:"column:fsa_id;not null;default:1;index"`
	CreatedTime time.Time `gorm:"column:created_time;autoCreateTime"`
	ChangedTime time.Time `gorm:"column:changed_time;not null;index"`
}

func (SiteControlGroupModel) TableName() string {
	return "site_control_groups"
}

// DoeFields is the archivable column set of a dynamic operating envelope.
// EndTime is materialised by the writer; every insert asserts
// end_time = start_time + duration_seconds so the windowed indexes hold.
type DoeFields struct {
	SiteControlGroupID uint64  `gorm:"column:site_control_group_id;not null;index:,composite:doe_window,priority:1"`
	SiteID             uint64  `gorm:"column:site_id;not null;index:,composite:doe_window,priority:2"`
	CalculationLogID   *uint64 `gorm:"column:calculation_log_id"`

	StartTime       time.Time `gorm:"column:start_time;not null;index:,composite:doe_window,priority:3"`
	DurationSeconds int32     `gorm:"column:duration_seconds;not null"`
	EndTime         time.Time `gorm:"column:end_time;not null;index"`

	RandomizeStartSeconds      *int16 `gorm:"column:randomize_start_seconds"`
	ImportLimitActiveWatts     *int64 `gorm:"column:import_limit_active_watts"`
	ExportLimitWatts           *int64 `gorm:"column:export_limit_watts"`
	GenerationLimitActiveWatts *int64 `gorm:"column:generation_limit_active_watts"`
	LoadLimitActiveWatts       *int64 `gorm:"column:load_limit_active_watts"`
	SetEnergized               *bool  `gorm:"column:set_energized"`
	SetConnected               *bool  `gorm:"column:set_connected"`
	SetPointPercentage         *int64 `gorm:"column:set_point_percentage"`
	RampTimeSeconds            *int64 `gorm:"column:ramp_time_seconds"`

	Superseded  bool      `gorm:"column:superseded;not null;default:false"`
	CreatedTime time.Time `gorm:"column:created_time;not null"`
	ChangedTime time.Time `gorm:"column:changed_time;not null;index"`
}

// DynamicOperatingEnvelopeModel is the GORM model for
// dynamic_operating_envelopes. Unique on
// (site_control_group_id, start_time, site_id), declared in SQL.
type DynamicOperatingEnvelopeModel struct {
	ID uint64 `gorm:"primaryKey;autoIncrement"`
	DoeFields
}

func (DynamicOperatingEnvelopeModel) TableName() string {
	return "dynamic_operating_envelopes"
}

// ArchiveDoeModel is the append-only shadow of envelopes. Rows with a
// deleted_time are cancellations; rows without are pre-images of updates.
type ArchiveDoeModel struct {
	ArchiveID   uint64     `gorm:"primaryKey;autoIncrement;column:archive_id"`
	ArchiveTime time.Time  `gorm:"column:archive_time;not null"`
	DeletedTime *time.Time `gorm:"column:deleted_time;index"`
	ID          uint64     `gorm:"column:id;not null;index"`
	DoeFields
}

func (ArchiveDoeModel) TableName() string {
	return "archive_dynamic_operating_envelopes"
}

// DefaultSiteControlFields is the per-site fallback control set.
type DefaultSiteControlFields struct {
	SiteID                     uint64    `gorm:"column:site_id;not null;index"`
	ImportLimitActiveWatts     *int64    `gorm:"column:import_limit_active_watts"`
	ExportLimitActiveWatts     *int64    `gorm:"column:export_limit_active_watts"`
	GenerationLimitActiveWatts *int64    `gorm:"column:generation_limit_active_watts"`
	LoadLimitActiveWatts       *int64    `gorm:"column:load_limit_active_watts"`
	RampRatePercentPerSecond   *int64    `gorm:"column:ramp_rate_percent_per_second"`
	CreatedTime                time.Time `gorm:"column:created_time;not null"`
	ChangedTime                time.Time `gorm:"column:changed_time;not null;index"`
}

// DefaultSiteControlModel is the GORM model for default_site_controls.
type DefaultSiteControlModel struct {
	ID uint64 `gorm:"primaryKey;autoIncrement"`
	DefaultSiteControlFields
}

func (DefaultSiteControlModel) TableName() string {
	return "default_site_controls"
}

type ArchiveDefaultSiteControlModel struct {
	ArchiveID   uint64     `gorm:"primaryKey;autoIncrement;column:archive_id"`
	ArchiveTime time.Time  `gorm:"column:archive_time;not null"`
	DeletedTime *time.Time `gorm:"column:deleted_time;index"`
	ID          uint64     `gorm:"column:id;not null;index"`
	DefaultSiteControlFields
}

func (ArchiveDefaultSiteControlModel) TableName() string {
	return "archive_default_site_controls"
}

// SiteControlGroupDefaultModel mirrors DefaultSiteControl at the group
// level: the DefaultDERControl advertised for a whole control group.
type SiteControlGroupDefaultModel struct {
	ID                         uint64    `gorm:"primaryKey;autoIncrement"`
	SiteControlGroupID         uint64    `gorm:"column:site_control_group_id;not null;index"`
	ImportLimitActiveWatts     *int64    `gorm:"column:import_limit_active_watts"`
	ExportLimitActiveWatts     *int64    `gorm:"column:export_limit_active_watts"`
	GenerationLimitActiveWatts *int64    `gorm:"column:generation_limit_active_watts"`
	LoadLimitActiveWatts       *int64    `gorm:"column:load_limit_active_watts"`
	RampRatePercentPerSecond   *int64    `gorm:"column:ramp_rate_percent_per_second"`
	CreatedTime                time.Time `gorm:"column:created_time;not null"`
	ChangedTime                time.Time `gorm:"column:changed_time;not null;index"`
}

func (SiteControlGroupDefaultModel) TableName() string {
	return "site_control_group_defaults"
}
