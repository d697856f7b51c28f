package sep2

import "encoding/xml"

// TariffProfile is the root of the pricing tree for one tariff at one
// site.
type TariffProfile struct {
	XMLName                   xml.Name  `xml:"TariffProfile"`
	Xmlns                     string    `xml:"xmlns,attr,omitempty"`
	Href                      string    `xml:"href,attr,omitempty"`
	MRID                      string    `xml:"mRID"`
	Description               string    `xml:"description,omitempty"`
	Currency                  int32     `xml:"currency"`
	PricePowerOfTenMultiplier int32     `xml:"pricePowerOfTenMultiplier"`
	PrimacyType               *int32    `xml:"primacyType,omitempty"`
	RateCode                  string    `xml:"rateCode,omitempty"`
	ServiceCategoryKind       int32     `xml:"serviceCategoryKind"`
	RateComponentListLink     *ListLink `xml:"RateComponentListLink,omitempty"`
}

// TariffProfileList pages tariffs newest first.
type TariffProfileList struct {
	XMLName        xml.Name        `xml:"TariffProfileList"`
	Xmlns          string          `xml:"xmlns,attr"`
	Href           string          `xml:"href,attr"`
	All            int32           `xml:"all,attr"`
	Results        int32           `xml:"results,attr"`
	PollRate       *int32          `xml:"pollRate,attr,omitempty"`
	TariffProfiles []TariffProfile `xml:"TariffProfile"`
}

// RateComponent is one (day, pricing reading type) slice of a tariff.
// Fully virtual; never stored.
type RateComponent struct {
	XMLName                    xml.Name  `xml:"RateComponent"`
	Xmlns                      string    `xml:"xmlns,attr,omitempty"`
	Href                       string    `xml:"href,attr,omitempty"`
	MRID                       string    `xml:"mRID"`
	Description                string    `xml:"description,omitempty"`
	ReadingTypeLink            *Link     `xml:"ReadingTypeLink,omitempty"`
	RoleFlags                  string    `xml:"roleFlags"`
	TimeTariffIntervalListLink *ListLink `xml:"TimeTariffIntervalListLink,omitempty"`
}

// RateComponentList pages the (day x pricing type) fanout.
type RateComponentList struct {
	XMLName        xml.Name        `xml:"RateComponentList"`
	Xmlns          string          `xml:"xmlns,attr"`
	Href           string          `xml:"href,attr"`
	All            int32           `xml:"all,attr"`
	Results        int32           `xml:"results,attr"`
	Subscribable   *int32          `xml:"subscribable,attr,omitempty"`
	RateComponents []RateComponent `xml:"RateComponent"`
}

// TimeTariffInterval is one rate interval for one pricing reading type.
type TimeTariffInterval struct {
	XMLName                           xml.Name         `xml:"TimeTariffInterval"`
	Xmlns                             string           `xml:"xmlns,attr,omitempty"`
	Href                              string           `xml:"href,attr,omitempty"`
	ReplyTo                           string           `xml:"replyTo,attr,omitempty"`
	ResponseRequired                  string           `xml:"responseRequired,attr,omitempty"`
	MRID                              string           `xml:"mRID"`
	Description                       string           `xml:"description,omitempty"`
	CreationTime                      TimeType         `xml:"creationTime"`
	EventStatus                       EventStatus      `xml:"EventStatus"`
	Interval                          DateTimeInterval `xml:"interval"`
	TouTier                           int32            `xml:"touTier"`
	ConsumptionTariffIntervalListLink *ListLink        `xml:"ConsumptionTariffIntervalListLink,omitempty"`
}

// TimeTariffIntervalList pages one day's intervals for one pricing type.
type TimeTariffIntervalList struct {
	XMLName             xml.Name             `xml:"TimeTariffIntervalList"`
	Xmlns               string               `xml:"xmlns,attr"`
	Href                string               `xml:"href,attr"`
	All                 int32                `xml:"all,attr"`
	Results             int32                `xml:"results,attr"`
	TimeTariffIntervals []TimeTariffInterval `xml:"TimeTariffInterval"`
}

// ConsumptionTariffInterval carries the integer price. The price is
// embedded in its own href, so the single element list needs no lookup.
type ConsumptionTariffInterval struct {
	XMLName          xml.Name `xml:"ConsumptionTariffInterval"`
	Xmlns            string   `xml:"xmlns,attr,omitempty"`
	Href             string   `xml:"href,attr,omitempty"`
	ConsumptionBlock int32    `xml:"consumptionBlock"`
	Price            int64    `xml:"price"`
	StartValue       int64    `xml:"startValue"`
}

// ConsumptionTariffIntervalList is always a single element list.
type ConsumptionTariffIntervalList struct {
	XMLName                    xml.Name                    `xml:"ConsumptionTariffIntervalList"`
	Xmlns                      string                      `xml:"xmlns,attr"`
	Href                       string                      `xml:"href,attr"`
	All                        int32                       `xml:"all,attr"`
	Results                    int32                       `xml:"results,attr"`
	ConsumptionTariffIntervals []ConsumptionTariffInterval `xml:"ConsumptionTariffInterval"`
}
