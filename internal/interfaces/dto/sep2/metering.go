package sep2

import "encoding/xml"

// ReadingType describes the unit, direction and accumulation semantics
// of a reading stream.
type ReadingType struct {
	XMLName               xml.Name `xml:"ReadingType"`
	Xmlns                 string   `xml:"xmlns,attr,omitempty"`
	Href                  string   `xml:"href,attr,omitempty"`
	AccumulationBehaviour *int32   `xml:"accumulationBehaviour,omitempty"`
	DataQualifier         *int32   `xml:"dataQualifier,omitempty"`
	FlowDirection         *int32   `xml:"flowDirection,omitempty"`
	IntervalLength        *int32   `xml:"intervalLength,omitempty"`
	Kind                  *int32   `xml:"kind,omitempty"`
	Phase                 *int32   `xml:"phase,omitempty"`
	PowerOfTenMultiplier  *int32   `xml:"powerOfTenMultiplier,omitempty"`
	Uom                   *int32   `xml:"uom,omitempty"`
}

// MirrorMeterReading is the client-posted reading stream descriptor,
// optionally carrying a batch of readings.
type MirrorMeterReading struct {
	XMLName           xml.Name           `xml:"MirrorMeterReading"`
	Xmlns             string             `xml:"xmlns,attr,omitempty"`
	Href              string             `xml:"href,attr,omitempty"`
	MRID              string             `xml:"mRID"`
	Description       string             `xml:"description,omitempty"`
	LastUpdateTime    *TimeType          `xml:"lastUpdateTime,omitempty"`
	MirrorReadingSets []MirrorReadingSet `xml:"MirrorReadingSet"`
	Reading           *SingleReading     `xml:"Reading,omitempty"`
	ReadingType       *ReadingType       `xml:"ReadingType,omitempty"`
}

// MirrorReadingSet groups readings posted in one batch.
type MirrorReadingSet struct {
	MRID        string           `xml:"mRID"`
	Description string           `xml:"description,omitempty"`
	TimePeriod  DateTimeInterval `xml:"timePeriod"`
	Readings    []SingleReading  `xml:"Reading"`
}

// SingleReading is one reading value in a mirror post or a reading list.
type SingleReading struct {
	Href         string            `xml:"href,attr,omitempty"`
	LocalID      *string           `xml:"localID,omitempty"`
	QualityFlags string            `xml:"qualityFlags,omitempty"`
	TimePeriod   *DateTimeInterval `xml:"timePeriod,omitempty"`
	Value        int64             `xml:"value"`
}

// Reading is the server-side reading resource.
type Reading struct {
	XMLName      xml.Name          `xml:"Reading"`
	Xmlns        string            `xml:"xmlns,attr,omitempty"`
	Href         string            `xml:"href,attr,omitempty"`
	LocalID      *string           `xml:"localID,omitempty"`
	QualityFlags string            `xml:"qualityFlags,omitempty"`
	TimePeriod   *DateTimeInterval `xml:"timePeriod,omitempty"`
	Value        int64             `xml:"value"`
}

// ReadingList pages stored readings.
type ReadingList struct {
	XMLName      xml.Name  `xml:"ReadingList"`
	Xmlns        string    `xml:"xmlns,attr"`
	Href         string    `xml:"href,attr"`
	All          int32     `xml:"all,attr"`
	Results      int32     `xml:"results,attr"`
	Subscribable *int32    `xml:"subscribable,attr,omitempty"`
	Readings     []Reading `xml:"Reading"`
}

// MirrorUsagePoint is the metering mirror for one site reading stream.
type MirrorUsagePoint struct {
	XMLName             xml.Name             `xml:"MirrorUsagePoint"`
	Xmlns               string               `xml:"xmlns,attr,omitempty"`
	Href                string               `xml:"href,attr,omitempty"`
	PostRate            *int32               `xml:"postRate,attr,omitempty"`
	MRID                string               `xml:"mRID"`
	Description         string               `xml:"description,omitempty"`
	DeviceLFDI          string               `xml:"deviceLFDI"`
	RoleFlags           string               `xml:"roleFlags"`
	ServiceCategoryKind int32                `xml:"serviceCategoryKind"`
	Status              int32                `xml:"status"`
	MirrorMeterReadings []MirrorMeterReading `xml:"MirrorMeterReading"`
}

// MirrorUsagePointList pages mirror usage points newest first.
type MirrorUsagePointList struct {
	XMLName           xml.Name           `xml:"MirrorUsagePointList"`
	Xmlns             string             `xml:"xmlns,attr"`
	Href              string             `xml:"href,attr"`
	All               int32              `xml:"all,attr"`
	Results           int32              `xml:"results,attr"`
	PollRate          *int32             `xml:"pollRate,attr,omitempty"`
	MirrorUsagePoints []MirrorUsagePoint `xml:"MirrorUsagePoint"`
}
