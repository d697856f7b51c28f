package sep2

import "encoding/xml"

// Response is a client acknowledgement of a control or pricing event.
type Response struct {
	XMLName         xml.Name  `xml:"Response"`
	Xmlns           string    `xml:"xmlns,attr,omitempty"`
	Href            string    `xml:"href,attr,omitempty"`
	CreatedDateTime *TimeType `xml:"createdDateTime,omitempty"`
	EndDeviceLFDI   string    `xml:"endDeviceLFDI"`
	Status          *int32    `xml:"status,omitempty"`
	Subject         string    `xml:"subject"`
}

// ResponseList pages stored acknowledgements newest first.
type ResponseList struct {
	XMLName   xml.Name   `xml:"ResponseList"`
	Xmlns     string     `xml:"xmlns,attr"`
	Href      string     `xml:"href,attr"`
	All       int32      `xml:"all,attr"`
	Results   int32      `xml:"results,attr"`
	Responses []Response `xml:"Response"`
}

// ResponseSet groups the acknowledgements for one subject family.
type ResponseSet struct {
	XMLName          xml.Name  `xml:"ResponseSet"`
	Xmlns            string    `xml:"xmlns,attr,omitempty"`
	Href             string    `xml:"href,attr,omitempty"`
	MRID             string    `xml:"mRID"`
	Description      string    `xml:"description,omitempty"`
	ResponseListLink *ListLink `xml:"ResponseListLink,omitempty"`
}

// ResponseSetList enumerates the fixed response sets.
type ResponseSetList struct {
	XMLName      xml.Name      `xml:"ResponseSetList"`
	Xmlns        string        `xml:"xmlns,attr"`
	Href         string        `xml:"href,attr"`
	All          int32         `xml:"all,attr"`
	Results      int32         `xml:"results,attr"`
	ResponseSets []ResponseSet `xml:"ResponseSet"`
}
