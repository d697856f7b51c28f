// Package admin defines the JSON request and response shapes of the
// operator surface. Unlike the device surface these are unscoped and
// use plain ids and RFC 3339 times.
package admin

import "time"

// AggregatorRequest creates or updates an aggregator.
type AggregatorRequest struct {
	Name    string   `json:"name" binding:"required,max=100"`
	Domains []string `json:"domains" binding:"dive,hostname_rfc1123"`
}

// AggregatorResponse is the operator view of an aggregator.
type AggregatorResponse struct {
	ID          uint64    `json:"id"`
	Name        string    `json:"name"`
	Domains     []string  `json:"domains"`
	ChangedTime time.Time `json:"changed_time"`
}

// CertificateRequest registers a client certificate by lfdi.
type CertificateRequest struct {
	Lfdi         string    `json:"lfdi" binding:"required,lfdi"`
	Expiry       time.Time `json:"expiry" binding:"required"`
	AggregatorID *uint64   `json:"aggregator_id"`
}

// CertificateResponse echoes a registered certificate.
type CertificateResponse struct {
	ID           uint64    `json:"id"`
	Lfdi         string    `json:"lfdi"`
	Sfdi         uint64    `json:"sfdi"`
	Expiry       time.Time `json:"expiry"`
	AggregatorID *uint64   `json:"aggregator_id,omitempty"`
}

// SiteRequest creates or updates a site from the operator side.
type SiteRequest struct {
	AggregatorID   uint64  `json:"aggregator_id"`
	Sfdi           uint64  `json:"sfdi"`
	Lfdi           string  `json:"lfdi" binding:"required,lfdi"`
	DeviceCategory int64   `json:"device_category"`
	TimezoneID     string  `json:"timezone_id" binding:"required,timezone"`
	Nmi            *string `json:"nmi" binding:"omitempty,nmi"`
	PostRate       *int32  `json:"post_rate_seconds" binding:"omitempty,min=1"`
}

// SiteResponse is the operator view of a site.
type SiteResponse struct {
	ID             uint64    `json:"id"`
	AggregatorID   uint64    `json:"aggregator_id"`
	Sfdi           uint64    `json:"sfdi"`
	Lfdi           string    `json:"lfdi"`
	DeviceCategory int64     `json:"device_category"`
	TimezoneID     string    `json:"timezone_id"`
	Nmi            *string   `json:"nmi,omitempty"`
	PostRate       *int32    `json:"post_rate_seconds,omitempty"`
	ChangedTime    time.Time `json:"changed_time"`
}

// SiteControlGroupRequest creates a control group.
type SiteControlGroupRequest struct {
	Description string `json:"description" binding:"required,max=32"`
	Primacy     int32  `json:"primacy"`
	FsaID       uint64 `json:"fsa_id" binding:"omitempty,min=1"`
}

// SiteControlGroupResponse is the operator view of a group.
type SiteControlGroupResponse struct {
	ID          uint64    `json:"id"`
	Description string    `json:"description"`
	Primacy     int32     `json:"primacy"`
	FsaID       uint64    `json:"fsa_id"`
	ChangedTime time.Time `json:"changed_time"`
}

// PrimacyRequest changes a group's priority.
type PrimacyRequest struct {
	Primacy int32 `json:"primacy"`
}

// SiteControlRequest is one envelope in a bulk upsert.
type SiteControlRequest struct {
	SiteID          uint64    `json:"site_id" binding:"required"`
	StartTime       time.Time `json:"start_time" binding:"required"`
	DurationSeconds int32     `json:"duration_seconds" binding:"required,min=1"`

	RandomizeStartSeconds      *int16 `json:"randomize_start_seconds"`
	ImportLimitActiveWatts     *int64 `json:"import_limit_watts"`
	ExportLimitWatts           *int64 `json:"export_limit_watts"`
	GenerationLimitActiveWatts *int64 `json:"generation_limit_watts"`
	LoadLimitActiveWatts       *int64 `json:"load_limit_watts"`
	SetEnergized               *bool  `json:"set_energized"`
	SetConnected               *bool  `json:"set_connected"`
	SetPointPercentage         *int64 `json:"set_point_percentage"`
	RampTimeSeconds            *int64 `json:"ramp_time_seconds"`

	CalculationLogID *uint64 `json:"calculation_log_id"`
}

// SiteControlUpsertRequest is the bulk envelope write. Supersede selects
// the primacy-aware path; cancel-then-insert otherwise.
type SiteControlUpsertRequest struct {
	Controls  []SiteControlRequest `json:"controls" binding:"required,min=1,dive"`
	Supersede bool                 `json:"supersede"`
}

// SiteControlRangeDeleteRequest removes controls by start window.
type SiteControlRangeDeleteRequest struct {
	FromTime time.Time `json:"from_time" binding:"required"`
	ToTime   time.Time `json:"to_time" binding:"required,gtfield=FromTime"`
}

// DefaultSiteControlRequest sets a site's fallback control values.
type DefaultSiteControlRequest struct {
	ImportLimitActiveWatts     *int64 `json:"import_limit_watts"`
	ExportLimitWatts           *int64 `json:"export_limit_watts"`
	GenerationLimitActiveWatts *int64 `json:"generation_limit_watts"`
	LoadLimitActiveWatts       *int64 `json:"load_limit_watts"`
	RampRatePercentPerSecond   *int64 `json:"ramp_rate_percent_per_second"`
}

// TariffRequest creates or updates a tariff.
type TariffRequest struct {
	Name         string `json:"name" binding:"required,max=64"`
	DnspCode     string `json:"dnsp_code" binding:"required,max=20"`
	CurrencyCode int32  `json:"currency_code" binding:"required"`
	FsaID        uint64 `json:"fsa_id" binding:"omitempty,min=1"`
}

// TariffResponse is the operator view of a tariff.
type TariffResponse struct {
	ID           uint64    `json:"id"`
	Name         string    `json:"name"`
	DnspCode     string    `json:"dnsp_code"`
	CurrencyCode int32     `json:"currency_code"`
	FsaID        uint64    `json:"fsa_id"`
	ChangedTime  time.Time `json:"changed_time"`
}

// RateRequest is one generated rate in a bulk upsert. Prices are decimal
// strings with at most four fractional digits.
type RateRequest struct {
	SiteID          uint64    `json:"site_id" binding:"required"`
	StartTime       time.Time `json:"start_time" binding:"required"`
	DurationSeconds int32     `json:"duration_seconds" binding:"required,min=1"`

	ImportActivePrice   string `json:"import_active_price" binding:"required"`
	ExportActivePrice   string `json:"export_active_price" binding:"required"`
	ImportReactivePrice string `json:"import_reactive_price" binding:"required"`
	ExportReactivePrice string `json:"export_reactive_price" binding:"required"`

	CalculationLogID *uint64 `json:"calculation_log_id"`
}

// RateUpsertRequest bulk writes generated rates under one tariff.
type RateUpsertRequest struct {
	Rates []RateRequest `json:"rates" binding:"required,min=1,dive"`
}

// CalculationLogRequest tags a calculation run.
type CalculationLogRequest struct {
	ExternalID         string    `json:"external_id" binding:"required,max=64"`
	Description        string    `json:"description" binding:"max=1024"`
	CalculationStart   time.Time `json:"calculation_range_start" binding:"required"`
	CalculationSeconds int32     `json:"calculation_range_seconds" binding:"required,min=1"`
	IntervalSeconds    int32     `json:"interval_seconds" binding:"required,min=1"`
}

// CalculationLogResponse echoes a stored calculation run.
type CalculationLogResponse struct {
	ID                 uint64    `json:"id"`
	ExternalID         string    `json:"external_id"`
	Description        string    `json:"description,omitempty"`
	CalculationStart   time.Time `json:"calculation_range_start"`
	CalculationSeconds int32     `json:"calculation_range_seconds"`
	IntervalSeconds    int32     `json:"interval_seconds"`
	CreatedTime        time.Time `json:"created_time"`
}

// RuntimeConfigRequest updates the singleton runtime configuration.
// Nil fields keep their current values.
type RuntimeConfigRequest struct {
	DcapPollRateSeconds  *int32 `json:"dcap_pollrate_seconds" binding:"omitempty,min=1"`
	EdevlPollRateSeconds *int32 `json:"edevl_pollrate_seconds" binding:"omitempty,min=1"`
	FsalPollRateSeconds  *int32 `json:"fsal_pollrate_seconds" binding:"omitempty,min=1"`
	DerplPollRateSeconds *int32 `json:"derpl_pollrate_seconds" binding:"omitempty,min=1"`
	DerlPollRateSeconds  *int32 `json:"derl_pollrate_seconds" binding:"omitempty,min=1"`
	MupPostRateSeconds   *int32 `json:"mup_postrate_seconds" binding:"omitempty,min=1"`

	SiteControlPow10Encoding *int32 `json:"site_control_pow10_encoding" binding:"omitempty,min=-3,max=3"`
	DisableEdevRegistration  *bool  `json:"disable_edev_registration"`
}

// RuntimeConfigResponse is the operator view of the runtime config.
type RuntimeConfigResponse struct {
	DcapPollRateSeconds  int32 `json:"dcap_pollrate_seconds"`
	EdevlPollRateSeconds int32 `json:"edevl_pollrate_seconds"`
	FsalPollRateSeconds  int32 `json:"fsal_pollrate_seconds"`
	DerplPollRateSeconds int32 `json:"derpl_pollrate_seconds"`
	DerlPollRateSeconds  int32 `json:"derl_pollrate_seconds"`
	MupPostRateSeconds   int32 `json:"mup_postrate_seconds"`

	SiteControlPow10Encoding int32 `json:"site_control_pow10_encoding"`
	DisableEdevRegistration  bool  `json:"disable_edev_registration"`
}

// ListResponse wraps paged admin collections.
type ListResponse[T any] struct {
	Total int64 `json:"total"`
	Items []T   `json:"items"`
}

// ArchiveQuery selects archived rows by period and reason.
type ArchiveQuery struct {
	PeriodStart time.Time `form:"period_start" binding:"required"`
	PeriodEnd   time.Time `form:"period_end" binding:"required,gtfield=PeriodStart"`
	DeletedOnly bool      `form:"deleted_only"`
}
