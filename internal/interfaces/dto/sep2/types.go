// Package sep2 defines the IEEE 2030.5 XML wire types served on the
// device-facing surface, including the CSIP-AUS extension elements.
// Field order inside each struct follows the schema sequence order, which
// encoding/xml preserves on output.
package sep2

import "encoding/xml"

// Namespace constants stamped onto root elements.
const (
	NamespaceSep2    = "urn:ieee:std:2030.5:ns"
	NamespaceCsipAus = "https://csipaus.org/ns"
)

// TimeType is seconds since the UNIX epoch, the 2030.5 time encoding.
type TimeType int64

// Resource carries the href attribute every addressable resource has.
type Resource struct {
	Href string `xml:"href,attr,omitempty"`
}

// IdentifiedObject extends Resource with the mrid and description
// elements of identified 2030.5 objects.
type IdentifiedObject struct {
	Resource
	MRID        string `xml:"mRID,omitempty"`
	Description string `xml:"description,omitempty"`
	Version     *int32 `xml:"version,omitempty"`
}

// SubscribableResource marks resources a client may subscribe to.
// subscribable=1 means subscriptions at this resource are supported.
type SubscribableResource struct {
	Resource
	Subscribable *int32 `xml:"subscribable,attr,omitempty"`
}

// Link is an href-only pointer element.
type Link struct {
	Href string `xml:"href,attr"`
}

// ListLink points at a list resource and advertises its size.
type ListLink struct {
	Href string `xml:"href,attr"`
	All  *int32 `xml:"all,attr,omitempty"`
}

// List carries the standard list attributes: all is the total matching
// the query, results the count in this page.
type List struct {
	Resource
	All     int32 `xml:"all,attr"`
	Results int32 `xml:"results,attr"`
}

// SubscribableList is a List on a subscribable resource.
type SubscribableList struct {
	List
	Subscribable *int32 `xml:"subscribable,attr,omitempty"`
}

// DateTimeInterval is a start plus duration window.
type DateTimeInterval struct {
	Duration int32    `xml:"duration"`
	Start    TimeType `xml:"start"`
}

// ActivePower is a signed watt quantity with a power-of-ten multiplier.
type ActivePower struct {
	Multiplier int32 `xml:"multiplier"`
	Value      int64 `xml:"value"`
}

// ReactivePower is a signed var quantity.
type ReactivePower struct {
	Multiplier int32 `xml:"multiplier"`
	Value      int64 `xml:"value"`
}

// ApparentPower is a signed VA quantity.
type ApparentPower struct {
	Multiplier int32 `xml:"multiplier"`
	Value      int64 `xml:"value"`
}

// VoltageRMS is an RMS voltage quantity.
type VoltageRMS struct {
	Multiplier int32 `xml:"multiplier"`
	Value      int64 `xml:"value"`
}

// WattHour is an energy quantity.
type WattHour struct {
	Multiplier int32 `xml:"multiplier"`
	Value      int64 `xml:"value"`
}

// SignedPercent is hundredths of a percent, -10000 to 10000.
type SignedPercent int16

// DeviceCapability is the discovery root served at /dcap.
type DeviceCapability struct {
	XMLName                  xml.Name  `xml:"DeviceCapability"`
	Xmlns                    string    `xml:"xmlns,attr"`
	Href                     string    `xml:"href,attr"`
	PollRate                 *int32    `xml:"pollRate,attr,omitempty"`
	TimeLink                 *Link     `xml:"TimeLink,omitempty"`
	EndDeviceListLink        *ListLink `xml:"EndDeviceListLink,omitempty"`
	MirrorUsagePointListLink *ListLink `xml:"MirrorUsagePointListLink,omitempty"`
}

// Time is the server clock resource at /tm.
type Time struct {
	XMLName      xml.Name `xml:"Time"`
	Xmlns        string   `xml:"xmlns,attr"`
	Href         string   `xml:"href,attr"`
	CurrentTime  TimeType `xml:"currentTime"`
	DstEndTime   TimeType `xml:"dstEndTime"`
	DstOffset    int32    `xml:"dstOffset"`
	DstStartTime TimeType `xml:"dstStartTime"`
	Quality      int32    `xml:"quality"`
	TzOffset     int32    `xml:"tzOffset"`
}

// ErrorResponse is the 2030.5 Error element returned on failures. The
// message element is a deployment extension carrying the human readable
// cause; standard clients ignore unknown elements.
type ErrorResponse struct {
	XMLName          xml.Name `xml:"Error"`
	Xmlns            string   `xml:"xmlns,attr"`
	MaxRetryDuration *int32   `xml:"maxRetryDuration,omitempty"`
	ReasonCode       int32    `xml:"reasonCode"`
	Message          string   `xml:"message,omitempty"`
}
