package models

import "time"

// RuntimeServerConfigModel holds the single runtime configuration row.
// Absence of the row is equivalent to all defaults.
type RuntimeServerConfigModel struct {
	ID uint64 `gorm:"primaryKey"`

	DcapPollRateSeconds  int32 `gorm:"column:dcap_pollrate_seconds;not null;default:300"`
	EdevlPollRateSeconds int32 `gorm:"column:edevl_pollrate_seconds;not null;default:300"`
	FsalPollRateSeconds  int32 `gorm:"column:fsal_pollrate_seconds;not null;default:300"`
	DerplPollRateSeconds int32 `gorm:"column:derpl_pollrate_seconds;not null;default:60"`
	DerlPollRateSeconds  int32 `gorm:"column:derl_pollrate_seconds;not null;default:60"`
	MupPostRateSeconds   int32 `gorm:"column:mup_postrate_seconds;not null;default:60"`

	// SiteControlPow10Encoding scales outbound DERControl watt values.
	SiteControlPow10Encoding int32 `gorm:"column:site_control_pow10_encoding;not null;default:0"`

	// DisableEdevRegistration hides registration resources from clients.
	DisableEdevRegistration bool `gorm:"column:disable_edev_registration;not null;default:false"`

	CreatedTime time.Time `gorm:"column:created_time;autoCreateTime"`
	ChangedTime time.Time `gorm:"column:changed_time;not null"`
}

func (RuntimeServerConfigModel) TableName() string {
	return "runtime_server_configs"
}
