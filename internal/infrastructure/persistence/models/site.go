package models

import "time"

// SiteFields is the archivable column set shared by the live sites table
// and its append-only shadow. Unique constraints live only in the SQL
// migrations so the shadow table never inherits them.
type SiteFields struct {
	AggregatorID    uint64    `gorm:"column:aggregator_id;not null;index"`
	Sfdi            uint64    `gorm:"column:sfdi;not null;index"`
	Lfdi            string    `gorm:"column:lfdi;type:char(42);not null;index"`
	DeviceCategory  int64     `gorm:"column:device_category;not null;default:0"`
	TimezoneID      string    `gorm:"column:timezone_id;type:varchar(64);not null"`
	Nmi             *string   `gorm:"column:nmi;type:varchar(11)"`
	RegistrationPin uint32    `gorm:"column:registration_pin;not null"`
	PostRate        *int32    `gorm:"column:post_rate_seconds"`
	CreatedTime     time.Time `gorm:"column:created_time;not null"`
	ChangedTime     time.Time `gorm:"column:changed_time;not null;index"`
}

// SiteModel is the GORM model for the sites table. Unique on
// (aggregator_id, sfdi); lfdi is unique across all partitions.
type SiteModel struct {
	ID uint64 `gorm:"primaryKey;autoIncrement"`
	SiteFields
}

func (SiteModel) TableName() string {
	return "sites"
}

// ArchiveSiteModel is the append-only shadow of sites. No foreign keys,
// no unique constraints.
type ArchiveSiteModel struct {
	ArchiveID   uint64     `gorm:"primaryKey;autoIncrement;column:archive_id"`
	ArchiveTime time.Time  `gorm:"column:archive_time;not null"`
	DeletedTime *time.Time `gorm:"column:deleted_time;index"`
	ID          uint64     `gorm:"column:id;not null;index"`
	SiteFields
}

func (ArchiveSiteModel) TableName() string {
	return "archive_sites"
}
