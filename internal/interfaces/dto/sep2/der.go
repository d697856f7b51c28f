package sep2

import "encoding/xml"

// DER is the per-site DER resource linking its four records.
type DER struct {
	XMLName             xml.Name `xml:"DER"`
	Xmlns               string   `xml:"xmlns,attr,omitempty"`
	Href                string   `xml:"href,attr"`
	DERAvailabilityLink *Link    `xml:"DERAvailabilityLink,omitempty"`
	DERCapabilityLink   *Link    `xml:"DERCapabilityLink,omitempty"`
	DERSettingsLink     *Link    `xml:"DERSettingsLink,omitempty"`
	DERStatusLink       *Link    `xml:"DERStatusLink,omitempty"`
}

// DERList pages a site's DERs. The schema allows many; this server
// maintains exactly one per site.
type DERList struct {
	XMLName  xml.Name `xml:"DERList"`
	Xmlns    string   `xml:"xmlns,attr"`
	Href     string   `xml:"href,attr"`
	All      int32    `xml:"all,attr"`
	Results  int32    `xml:"results,attr"`
	PollRate *int32   `xml:"pollRate,attr,omitempty"`
	DERs     []DER    `xml:"DER"`
}

// DERCapability is the nameplate rating record posted by clients.
type DERCapability struct {
	XMLName              xml.Name       `xml:"DERCapability"`
	Xmlns                string         `xml:"xmlns,attr,omitempty"`
	Href                 string         `xml:"href,attr,omitempty"`
	ModesSupported       string         `xml:"modesSupported,omitempty"`
	RtgAbnormalCategory  *int32         `xml:"rtgAbnormalCategory,omitempty"`
	RtgMaxChargeRateW    *ActivePower   `xml:"rtgMaxChargeRateW,omitempty"`
	RtgMaxDischargeRateW *ActivePower   `xml:"rtgMaxDischargeRateW,omitempty"`
	RtgMaxVA             *ApparentPower `xml:"rtgMaxVA,omitempty"`
	RtgMaxVar            *ReactivePower `xml:"rtgMaxVar,omitempty"`
	RtgMaxVarNeg         *ReactivePower `xml:"rtgMaxVarNeg,omitempty"`
	RtgMaxW              ActivePower    `xml:"rtgMaxW"`
	RtgMaxWh             *WattHour      `xml:"rtgMaxWh,omitempty"`
	RtgNormalCategory    *int32         `xml:"rtgNormalCategory,omitempty"`
	RtgVNom              *VoltageRMS    `xml:"rtgVNom,omitempty"`
	Type                 int32          `xml:"type"`
}

// DERSettings is the configured operating values record.
type DERSettings struct {
	XMLName           xml.Name       `xml:"DERSettings"`
	Xmlns             string         `xml:"xmlns,attr,omitempty"`
	Href              string         `xml:"href,attr,omitempty"`
	ModesEnabled      string         `xml:"modesEnabled,omitempty"`
	SetESDelay        *int64         `xml:"setESDelay,omitempty"`
	SetESHighFreq     *int32         `xml:"setESHighFreq,omitempty"`
	SetESHighVolt     *int32         `xml:"setESHighVolt,omitempty"`
	SetESLowFreq      *int32         `xml:"setESLowFreq,omitempty"`
	SetESLowVolt      *int32         `xml:"setESLowVolt,omitempty"`
	SetESRampTms      *int64         `xml:"setESRampTms,omitempty"`
	SetESRandomDelay  *int64         `xml:"setESRandomDelay,omitempty"`
	SetGradW          int32          `xml:"setGradW"`
	SetMaxChargeRateW *ActivePower   `xml:"setMaxChargeRateW,omitempty"`
	SetMaxVA          *ApparentPower `xml:"setMaxVA,omitempty"`
	SetMaxVar         *ReactivePower `xml:"setMaxVar,omitempty"`
	SetMaxVarNeg      *ReactivePower `xml:"setMaxVarNeg,omitempty"`
	SetMaxW           ActivePower    `xml:"setMaxW"`
	SetVRef           *VoltageRMS    `xml:"setVRef,omitempty"`
	SetVRefOfs        *VoltageRMS    `xml:"setVRefOfs,omitempty"`
	UpdatedTime       TimeType       `xml:"updatedTime"`
}

// DERAvailability is the availability forecast record.
type DERAvailability struct {
	XMLName              xml.Name       `xml:"DERAvailability"`
	Xmlns                string         `xml:"xmlns,attr,omitempty"`
	Href                 string         `xml:"href,attr,omitempty"`
	AvailabilityDuration *int64         `xml:"availabilityDuration,omitempty"`
	MaxChargeDuration    *int64         `xml:"maxChargeDuration,omitempty"`
	ReadingTime          TimeType       `xml:"readingTime"`
	ReserveChargePercent *int64         `xml:"reserveChargePercent,omitempty"`
	ReservePercent       *int64         `xml:"reservePercent,omitempty"`
	StatVarAvail         *ReactivePower `xml:"statVarAvail,omitempty"`
	StatWAvail           *ActivePower   `xml:"statWAvail,omitempty"`
}

// ConnectStatusType carries a status value with its observation time.
type ConnectStatusType struct {
	DateTime TimeType `xml:"dateTime"`
	Value    string   `xml:"value"`
}

// StatusValue carries a numeric status with its observation time.
type StatusValue struct {
	DateTime TimeType `xml:"dateTime"`
	Value    int32    `xml:"value"`
}

// ManufacturerStatusValue carries the free-form manufacturer status.
type ManufacturerStatusValue struct {
	DateTime TimeType `xml:"dateTime"`
	Value    string   `xml:"value"`
}

// DERStatus is the operational status record.
type DERStatus struct {
	XMLName                xml.Name                 `xml:"DERStatus"`
	Xmlns                  string                   `xml:"xmlns,attr,omitempty"`
	Href                   string                   `xml:"href,attr,omitempty"`
	AlarmStatus            string                   `xml:"alarmStatus,omitempty"`
	GenConnectStatus       *ConnectStatusType       `xml:"genConnectStatus,omitempty"`
	InverterStatus         *StatusValue             `xml:"inverterStatus,omitempty"`
	LocalControlModeStatus *StatusValue             `xml:"localControlModeStatus,omitempty"`
	ManufacturerStatus     *ManufacturerStatusValue `xml:"manufacturerStatus,omitempty"`
	OperationalModeStatus  *StatusValue             `xml:"operationalModeStatus,omitempty"`
	ReadingTime            TimeType                 `xml:"readingTime"`
	StateOfChargeStatus    *StatusValue             `xml:"stateOfChargeStatus,omitempty"`
	StorageModeStatus      *StatusValue             `xml:"storageModeStatus,omitempty"`
}
