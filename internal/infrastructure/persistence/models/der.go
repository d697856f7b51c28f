package models

import "time"

// SiteDERFields is the archivable column set of the DER record itself.
type SiteDERFields struct {
	SiteID      uint64    `gorm:"column:site_id;not null;index"`
	CreatedTime time.Time `gorm:"column:created_time;not null"`
	ChangedTime time.Time `gorm:"column:changed_time;not null;index"`
}

// SiteDERModel is the GORM model for site_ders. One DER per site.
type SiteDERModel struct {
	ID uint64 `gorm:"primaryKey;autoIncrement"`
	SiteDERFields
}

func (SiteDERModel) TableName() string {
	return "site_ders"
}

type ArchiveSiteDERModel struct {
	ArchiveID   uint64     `gorm:"primaryKey;autoIncrement;column:archive_id"`
	ArchiveTime time.Time  `gorm:"column:archive_time;not null"`
	DeletedTime *time.Time `gorm:"column:deleted_time;index"`
	ID          uint64     `gorm:"column:id;not null;index"`
	SiteDERFields
}

func (ArchiveSiteDERModel) TableName() string {
	return "archive_site_ders"
}

// SiteDERRatingFields is the DERCapability record: nameplate ratings
// published by the client. Power values are stored as (value, multiplier)
// pairs exactly as received.
type SiteDERRatingFields struct {
	SiteDERID              uint64    `gorm:"column:site_der_id;not null;index"`
	ModesSupported         *int64    `gorm:"column:modes_supported"`
	DerType                int32     `gorm:"column:der_type;not null;default:0"`
	MaxWValue              int32     `gorm:"column:max_w_value;not null"`
	MaxWMultiplier         int32     `gorm:"column:max_w_multiplier;not null"`
	MaxVaValue             *int32    `gorm:"column:max_va_value"`
	MaxVaMultiplier        *int32    `gorm:"column:max_va_multiplier"`
	MaxVarValue            *int32    `gorm:"column:max_var_value"`
	MaxVarMultiplier       *int32    `gorm:"column:max_var_multiplier"`
	MaxVarNegValue         *int32    `gorm:"column:max_var_neg_value"`
	MaxVarNegMultiplier    *int32    `gorm:"column:max_var_neg_multiplier"`
	MaxChargeRateWValue    *int32    `gorm:"column:max_charge_rate_w_value"`
	MaxChargeRateWMult     *int32    `gorm:"column:max_charge_rate_w_multiplier"`
	MaxDischargeRateWValue *int32    `gorm:"column:max_discharge_rate_w_value"`
	MaxDischargeRateWMult  *int32    `gorm:"column:max_discharge_rate_w_multiplier"`
	MaxWhValue             *int32    `gorm:"column:max_wh_value"`
	MaxWhMultiplier        *int32    `gorm:"column:max_wh_multiplier"`
	VNomValue              *int32    `gorm:"column:v_nom_value"`
	VNomMultiplier         *int32    `gorm:"column:v_nom_multiplier"`
	AbnormalCategory       *int32    `gorm:"column:abnormal_category"`
	NormalCategory         *int32    `gorm:"column:normal_category"`
	CreatedTime            time.Time `gorm:"column:created_time;not null"`
	ChangedTime            time.Time `gorm:"column:changed_time;not null;index"`
}

// SiteDERRatingModel is the GORM model for site_der_ratings. At most one
// row per DER; an upsert replaces and archives the prior row.
type SiteDERRatingModel struct {
	ID uint64 `gorm:"primaryKey;autoIncrement"`
	SiteDERRatingFields
}

func (SiteDERRatingModel) TableName() string {
	return "site_der_ratings"
}

type ArchiveSiteDERRatingModel struct {
	ArchiveID   uint64     `gorm:"primaryKey;autoIncrement;column:archive_id"`
	ArchiveTime time.Time  `gorm:"column:archive_time;not null"`
	DeletedTime *time.Time `gorm:"column:deleted_time;index"`
	ID          uint64     `gorm:"column:id;not null;index"`
	SiteDERRatingFields
}

func (ArchiveSiteDERRatingModel) TableName() string {
	return "archive_site_der_ratings"
}

// SiteDERSettingFields is the DERSettings record: configured operating
// values, a subset of the rating shape.
type SiteDERSettingFields struct {
	SiteDERID           uint64    `gorm:"column:site_der_id;not null;index"`
	ModesEnabled        *int64    `gorm:"column:modes_enabled"`
	EsDelay             *int64    `gorm:"column:es_delay"`
	EsHighFreq          *int32    `gorm:"column:es_high_freq"`
	EsHighVolt          *int32    `gorm:"column:es_high_volt"`
	EsLowFreq           *int32    `gorm:"column:es_low_freq"`
	EsLowVolt           *int32    `gorm:"column:es_low_volt"`
	EsRampTms           *int64    `gorm:"column:es_ramp_tms"`
	EsRandomDelay       *int64    `gorm:"column:es_random_delay"`
	GradW               int32     `gorm:"column:grad_w;not null"`
	MaxWValue           int32     `gorm:"column:max_w_value;not null"`
	MaxWMultiplier      int32     `gorm:"column:max_w_multiplier;not null"`
	MaxVaValue          *int32    `gorm:"column:max_va_value"`
	MaxVaMultiplier     *int32    `gorm:"column:max_va_multiplier"`
	MaxVarValue         *int32    `gorm:"column:max_var_value"`
	MaxVarMultiplier    *int32    `gorm:"column:max_var_multiplier"`
	MaxVarNegValue      *int32    `gorm:"column:max_var_neg_value"`
	MaxVarNegMultiplier *int32    `gorm:"column:max_var_neg_multiplier"`
	MaxChargeRateWValue *int32    `gorm:"column:max_charge_rate_w_value"`
	MaxChargeRateWMult  *int32    `gorm:"column:max_charge_rate_w_multiplier"`
	VRefValue           *int32    `gorm:"column:v_ref_value"`
	VRefMultiplier      *int32    `gorm:"column:v_ref_multiplier"`
	VRefOfsValue        *int32    `gorm:"column:v_ref_ofs_value"`
	VRefOfsMultiplier   *int32    `gorm:"column:v_ref_ofs_multiplier"`
	CreatedTime         time.Time `gorm:"column:created_time;not null"`
	ChangedTime         time.Time `gorm:"column:changed_time;not null;index"`
}

// SiteDERSettingModel is the GORM model for site_der_settings.
type SiteDERSettingModel struct {
	ID uint64 `gorm:"primaryKey;autoIncrement"`
	SiteDERSettingFields
}

func (SiteDERSettingModel) TableName() string {
	return "site_der_settings"
}

type ArchiveSiteDERSettingModel struct {
	ArchiveID   uint64     `gorm:"primaryKey;autoIncrement;column:archive_id"`
	ArchiveTime time.Time  `gorm:"column:archive_time;not null"`
	DeletedTime *time.Time `gorm:"column:deleted_time;index"`
	ID          uint64     `gorm:"column:id;not null;index"`
	SiteDERSettingFields
}

func (ArchiveSiteDERSettingModel) TableName() string {
	return "archive_site_der_settings"
}

// SiteDERAvailabilityFields is the DERAvailability record.
type SiteDERAvailabilityFields struct {
	SiteDERID              uint64    `gorm:"column:site_der_id;not null;index"`
	AvailabilityDuration   *int64    `gorm:"column:availability_duration"`
	MaxChargeDuration      *int64    `gorm:"column:max_charge_duration"`
	ReservedChargePercent  *int64    `gorm:"column:reserved_charge_percent"`
	ReservedDeliverPercent *int64    `gorm:"column:reserved_deliver_percent"`
	EstimatedVarAvailValue *int32    `gorm:"column:estimated_var_avail_value"`
	EstimatedVarAvailMult  *int32    `gorm:"column:estimated_var_avail_multiplier"`
	EstimatedWAvailValue   *int32    `gorm:"column:estimated_w_avail_value"`
	EstimatedWAvailMult    *int32    `gorm:"column:estimated_w_avail_multiplier"`
	CreatedTime            time.Time `gorm:"column:created_time;not null"`
	ChangedTime            time.Time `gorm:"column:changed_time;not null;index"`
}

// SiteDERAvailabilityModel is the GORM model for site_der_availabilities.
type SiteDERAvailabilityModel struct {
	ID uint64 `gorm:"primaryKey;autoIncrement"`
	SiteDERAvailabilityFields
}

func (SiteDERAvailabilityModel) TableName() string {
	return "site_der_availabilities"
}

type ArchiveSiteDERAvailabilityModel struct {
	ArchiveID   uint64     `gorm:"primaryKey;autoIncrement;column:archive_id"`
	ArchiveTime time.Time  `gorm:"column:archive_time;not null"`
	DeletedTime *time.Time `gorm:"column:deleted_time;index"`
	ID          uint64     `gorm:"column:id;not null;index"`
	SiteDERAvailabilityFields
}

func (ArchiveSiteDERAvailabilityModel) TableName() string {
	return "archive_site_der_availabilities"
}

// SiteDERStatusFields is the DERStatus record. Each status element keeps
// the time the client observed it.
type SiteDERStatusFields struct {
	SiteDERID                  uint64     `gorm:"column:site_der_id;not null;index"`
	AlarmStatus                *int32     `gorm:"column:alarm_status"`
	GeneratorConnectStatus     *int32     `gorm:"column:generator_connect_status"`
	GeneratorConnectStatusTime *time.Time `gorm:"column:generator_connect_status_time"`
	InverterStatus             *int32     `gorm:"column:inverter_status"`
	InverterStatusTime         *time.Time `gorm:"column:inverter_status_time"`
	LocalControlModeStatus     *int32     `gorm:"column:local_control_mode_status"`
	LocalControlModeStatusTime *time.Time `gorm:"column:local_control_mode_status_time"`
	ManufacturerStatus         *string    `gorm:"column:manufacturer_status;type:varchar(6)"`
	ManufacturerStatusTime     *time.Time `gorm:"column:manufacturer_status_time"`
	OperationalModeStatus      *int32     `gorm:"column:operational_mode_status"`
	OperationalModeStatusTime  *time.Time `gorm:"column:operational_mode_status_time"`
	StateOfChargeStatus        *int32     `gorm:"column:state_of_charge_status"`
	StateOfChargeStatusTime    *time.Time `gorm:"column:state_of_charge_status_time"`
	StorageModeStatus          *int32     `gorm:"column:storage_mode_status"`
	StorageModeStatusTime      *time.Time `gorm:"column:storage_mode_status_time"`
	CreatedTime                time.Time  `gorm:"column:created_time;not null"`
	ChangedTime                time.Time  `gorm:"column:changed_time;not null;index"`
}

// SiteDERStatusModel is the GORM model for site_der_statuses.
type SiteDERStatusModel struct {
	ID uint64 `gorm:"primaryKey;autoIncrement"`
	SiteDERStatusFields
}

func (SiteDERStatusModel) TableName() string {
	return "site_der_statuses"
}

type ArchiveSiteDERStatusModel struct {
	ArchiveID   uint64     `gorm:"primaryKey;autoIncrement;column:archive_id"`
	ArchiveTime time.Time  `gorm:"column:archive_time;not null"`
	DeletedTime *time.Time `gorm:"column:deleted_time;index"`
	ID          uint64     `gorm:"column:id;not null;index"`
	SiteDERStatusFields
}

func (ArchiveSiteDERStatusModel) TableName() string {
	return "archive_site_der_statuses"
}
