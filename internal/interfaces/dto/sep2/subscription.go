package sep2

import "encoding/xml"

// SubscriptionCondition is the optional threshold window on a
// subscription. Attribute 0 is Reading value.
type SubscriptionCondition struct {
	AttributeIdentifier int32 `xml:"attributeIdentifier"`
	LowerThreshold      int64 `xml:"lowerThreshold"`
	UpperThreshold      int64 `xml:"upperThreshold"`
}

// Subscription is the client-managed watch on a resource.
type Subscription struct {
	XMLName            xml.Name               `xml:"Subscription"`
	Xmlns              string                 `xml:"xmlns,attr,omitempty"`
	Href               string                 `xml:"href,attr,omitempty"`
	SubscribedResource string                 `xml:"subscribedResource"`
	Condition          *SubscriptionCondition `xml:"Condition,omitempty"`
	Encoding           int32                  `xml:"encoding"`
	Level              string                 `xml:"level"`
	Limit              int32                  `xml:"limit"`
	NotificationURI    string                 `xml:"notificationURI"`
}

// SubscriptionList pages a site's subscriptions.
type SubscriptionList struct {
	XMLName       xml.Name       `xml:"SubscriptionList"`
	Xmlns         string         `xml:"xmlns,attr"`
	Href          string         `xml:"href,attr"`
	All           int32          `xml:"all,attr"`
	Results       int32          `xml:"results,attr"`
	Subscriptions []Subscription `xml:"Subscription"`
}

// Notification is the outbound payload POSTed to a subscriber. The
// Resource payload is pre-serialised list or entity XML; status 0 is
// default, 4 is deleted.
type Notification struct {
	XMLName            xml.Name              `xml:"Notification"`
	Xmlns              string                `xml:"xmlns,attr"`
	XmlnsCsipAus       string                `xml:"xmlns:csipaus,attr,omitempty"`
	SubscribedResource string                `xml:"subscribedResource"`
	NewResourceURI     string                `xml:"newResourceURI,omitempty"`
	Resource           *NotificationResource `xml:"Resource,omitempty"`
	Status             int32                 `xml:"status"`
	SubscriptionURI    string                `xml:"subscriptionURI"`
}

// NotificationResource wraps the polymorphic payload. The xsi:type
// attribute names the concrete 2030.5 type; Inner carries its already
// encoded child elements and attributes.
type NotificationResource struct {
	XsiType  string `xml:"xsi:type,attr,omitempty"`
	XmlnsXsi string `xml:"xmlns:xsi,attr,omitempty"`
	Href     string `xml:"href,attr,omitempty"`
	All      *int32 `xml:"all,attr,omitempty"`
	Results  *int32 `xml:"results,attr,omitempty"`
	PollRate *int32 `xml:"pollRate,attr,omitempty"`
	Inner    []byte `xml:",innerxml"`
}

// NotificationStatusDeleted marks a deletion notification.
const (
	NotificationStatusDefault int32 = 0
	NotificationStatusDeleted int32 = 4
)
