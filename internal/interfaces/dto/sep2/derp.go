package sep2

import "encoding/xml"

// EventStatus carries the lifecycle state of a control event.
// currentStatus 0 = scheduled, 1 = active, 4 = superseded; cancelled
// controls surface 2 (cancelled).
type EventStatus struct {
	CurrentStatus             int32     `xml:"currentStatus"`
	DateTime                  TimeType  `xml:"dateTime"`
	PotentiallySuperseded     bool      `xml:"potentiallySuperseded"`
	PotentiallySupersededTime *TimeType `xml:"potentiallySupersededTime,omitempty"`
	Reason                    string    `xml:"reason,omitempty"`
}

// DERControlBase holds the control setpoints, including the CSIP-AUS
// envelope limit extensions.
type DERControlBase struct {
	OpModConnect  *bool          `xml:"opModConnect,omitempty"`
	OpModEnergize *bool          `xml:"opModEnergize,omitempty"`
	OpModFixedW   *SignedPercent `xml:"opModFixedW,omitempty"`
	RampTms       *int64         `xml:"rampTms,omitempty"`
	OpModImpLimW  *ActivePower   `xml:"csipaus:opModImpLimW,omitempty"`
	OpModExpLimW  *ActivePower   `xml:"csipaus:opModExpLimW,omitempty"`
	OpModGenLimW  *ActivePower   `xml:"csipaus:opModGenLimW,omitempty"`
	OpModLoadLimW *ActivePower   `xml:"csipaus:opModLoadLimW,omitempty"`
}

// DERControl is one dynamic operating envelope projected as a 2030.5
// control event.
type DERControl struct {
	XMLName          xml.Name         `xml:"DERControl"`
	Xmlns            string           `xml:"xmlns,attr,omitempty"`
	XmlnsCsipAus     string           `xml:"xmlns:csipaus,attr,omitempty"`
	Href             string           `xml:"href,attr,omitempty"`
	ReplyTo          string           `xml:"replyTo,attr,omitempty"`
	ResponseRequired string           `xml:"responseRequired,attr,omitempty"`
	MRID             string           `xml:"mRID"`
	Description      string           `xml:"description,omitempty"`
	CreationTime     TimeType         `xml:"creationTime"`
	EventStatus      EventStatus      `xml:"EventStatus"`
	Interval         DateTimeInterval `xml:"interval"`
	RandomizeStart   *int16           `xml:"randomizeStart,omitempty"`
	DERControlBase   DERControlBase   `xml:"DERControlBase"`
}

// DERControlList pages a program's controls in event order.
type DERControlList struct {
	XMLName      xml.Name     `xml:"DERControlList"`
	Xmlns        string       `xml:"xmlns,attr"`
	XmlnsCsipAus string       `xml:"xmlns:csipaus,attr,omitempty"`
	Href         string       `xml:"href,attr"`
	All          int32        `xml:"all,attr"`
	Results      int32        `xml:"results,attr"`
	Subscribable *int32       `xml:"subscribable,attr,omitempty"`
	PollRate     *int32       `xml:"pollRate,attr,omitempty"`
	DERControls  []DERControl `xml:"DERControl"`
}

// DefaultDERControl is the fallback control applied outside any event.
type DefaultDERControl struct {
	XMLName        xml.Name       `xml:"DefaultDERControl"`
	Xmlns          string         `xml:"xmlns,attr,omitempty"`
	XmlnsCsipAus   string         `xml:"xmlns:csipaus,attr,omitempty"`
	Href           string         `xml:"href,attr,omitempty"`
	MRID           string         `xml:"mRID"`
	Description    string         `xml:"description,omitempty"`
	DERControlBase DERControlBase `xml:"DERControlBase"`
	SetGradW       *int32         `xml:"setGradW,omitempty"`
}

// DERProgram is the projection of a SiteControlGroup for one site.
type DERProgram struct {
	XMLName                  xml.Name  `xml:"DERProgram"`
	Xmlns                    string    `xml:"xmlns,attr,omitempty"`
	Href                     string    `xml:"href,attr,omitempty"`
	Subscribable             *int32    `xml:"subscribable,attr,omitempty"`
	MRID                     string    `xml:"mRID"`
	Description              string    `xml:"description,omitempty"`
	ActiveDERControlListLink *ListLink `xml:"ActiveDERControlListLink,omitempty"`
	DefaultDERControlLink    *Link     `xml:"DefaultDERControlLink,omitempty"`
	DERControlListLink       *ListLink `xml:"DERControlListLink,omitempty"`
	Primacy                  int32     `xml:"primacy"`
}

// DERProgramList pages the programs visible at one site.
type DERProgramList struct {
	XMLName      xml.Name     `xml:"DERProgramList"`
	Xmlns        string       `xml:"xmlns,attr"`
	Href         string       `xml:"href,attr"`
	All          int32        `xml:"all,attr"`
	Results      int32        `xml:"results,attr"`
	Subscribable *int32       `xml:"subscribable,attr,omitempty"`
	PollRate     *int32       `xml:"pollRate,attr,omitempty"`
	DERPrograms  []DERProgram `xml:"DERProgram"`
}
