package sep2

import "encoding/xml"

// EndDevice is the 2030.5 projection of a Site.
type EndDevice struct {
	XMLName                        xml.Name  `xml:"EndDevice"`
	Xmlns                          string    `xml:"xmlns,attr,omitempty"`
	Href                           string    `xml:"href,attr,omitempty"`
	Subscribable                   *int32    `xml:"subscribable,attr,omitempty"`
	DeviceCategory                 string    `xml:"deviceCategory,omitempty"`
	LFDI                           string    `xml:"lFDI,omitempty"`
	SFDI                           uint64    `xml:"sFDI"`
	ChangedTime                    TimeType  `xml:"changedTime"`
	Enabled                        *int32    `xml:"enabled,omitempty"`
	PostRate                       *int32    `xml:"postRate,omitempty"`
	ConnectionPointLink            *Link     `xml:"ConnectionPointLink,omitempty"`
	DERListLink                    *ListLink `xml:"DERListLink,omitempty"`
	DERProgramListLink             *ListLink `xml:"DERProgramListLink,omitempty"`
	FunctionSetAssignmentsListLink *ListLink `xml:"FunctionSetAssignmentsListLink,omitempty"`
	RegistrationLink               *Link     `xml:"RegistrationLink,omitempty"`
	SubscriptionListLink           *ListLink `xml:"SubscriptionListLink,omitempty"`
	TariffProfileListLink          *ListLink `xml:"TariffProfileListLink,omitempty"`
}

// EndDeviceList pages the sites visible to a scope.
type EndDeviceList struct {
	XMLName      xml.Name    `xml:"EndDeviceList"`
	Xmlns        string      `xml:"xmlns,attr"`
	Href         string      `xml:"href,attr"`
	All          int32       `xml:"all,attr"`
	Results      int32       `xml:"results,attr"`
	Subscribable *int32      `xml:"subscribable,attr,omitempty"`
	PollRate     *int32      `xml:"pollRate,attr,omitempty"`
	EndDevices   []EndDevice `xml:"EndDevice"`
}

// Registration exposes the out-of-band registration PIN.
type Registration struct {
	XMLName            xml.Name `xml:"Registration"`
	Xmlns              string   `xml:"xmlns,attr"`
	Href               string   `xml:"href,attr"`
	DateTimeRegistered TimeType `xml:"dateTimeRegistered"`
	PIN                uint32   `xml:"pIN"`
}

// ConnectionPoint is the CSIP-AUS extension carrying the NMI.
type ConnectionPoint struct {
	XMLName           xml.Name `xml:"csipaus:ConnectionPoint"`
	XmlnsCsipAus      string   `xml:"xmlns:csipaus,attr"`
	Href              string   `xml:"href,attr,omitempty"`
	ConnectionPointID string   `xml:"csipaus:connectionPointId,omitempty"`
}

// FunctionSetAssignments groups the program and tariff lists a site is
// assigned to.
type FunctionSetAssignments struct {
	XMLName               xml.Name  `xml:"FunctionSetAssignments"`
	Xmlns                 string    `xml:"xmlns,attr,omitempty"`
	Href                  string    `xml:"href,attr"`
	MRID                  string    `xml:"mRID,omitempty"`
	Description           string    `xml:"description,omitempty"`
	DERProgramListLink    *ListLink `xml:"DERProgramListLink,omitempty"`
	TariffProfileListLink *ListLink `xml:"TariffProfileListLink,omitempty"`
	TimeLink              *Link     `xml:"TimeLink,omitempty"`
}

// FunctionSetAssignmentsList pages a site's assignments.
type FunctionSetAssignmentsList struct {
	XMLName                xml.Name                 `xml:"FunctionSetAssignmentsList"`
	Xmlns                  string                   `xml:"xmlns,attr"`
	Href                   string                   `xml:"href,attr"`
	All                    int32                    `xml:"all,attr"`
	Results                int32                    `xml:"results,attr"`
	Subscribable           *int32                   `xml:"subscribable,attr,omitempty"`
	PollRate               *int32                   `xml:"pollRate,attr,omitempty"`
	FunctionSetAssignments []FunctionSetAssignments `xml:"FunctionSetAssignments"`
}
