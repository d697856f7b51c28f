package constants

const (
	// Environment constants
	EnvDevelopment = "development"
	EnvTest        = "test"
	EnvProduction  = "production"

	// NullAggregatorID is the reserved aggregator partition for sites
	// provisioned from device certificates.
	NullAggregatorID uint64 = 0

	// VirtualEndDeviceSiteID is the sentinel site id of the aggregator-wide
	// virtual end device.
	VirtualEndDeviceSiteID uint64 = 0

	// PriceDecimalPlaces is the number of decimal places carried by stored
	// prices. A human $1 is the integer 10000 at this scale.
	PriceDecimalPlaces = 4

	// MaxNotificationPageSize caps a subscription's requested entity limit.
	MaxNotificationPageSize = 100

	// LegacySiteControlGroupID is the group addressed by the historical
	// "doe" path segment from before multi-group support.
	LegacySiteControlGroupID uint64 = 1

	// Default sep2 list paging
	DefaultListStart = 0
	DefaultListLimit = 1

	// MaxSfdiAttempts bounds retries when generating a unique SFDI for a
	// new site before giving up.
	MaxSfdiAttempts = 20

	// MaxRegistrationPin is the exclusive upper bound for registration PINs.
	MaxRegistrationPin = 100000

	// HTTP headers
	HeaderContentType = "Content-Type"
	HeaderLocation    = "Location"

	// Content types
	ContentTypeSep2XML = "application/sep+xml"
	ContentTypeJSON    = "application/json"

	// Context keys
	ContextKeyRequestID = "request_id"
	ContextKeyClaims    = "certificate_claims"

	// EnvStaticRegistrationPin overrides PIN generation when set (test hook).
	EnvStaticRegistrationPin = "STATIC_REGISTRATION_PIN"
)
