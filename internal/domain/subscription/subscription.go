// Package subscription holds the pure subscription rules: the resource
// taxonomy, the strict subscribedResource href grammar, FQDN allowlist
// validation, condition matching and notification paging.
package subscription

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"enverge/internal/shared/constants"
	apperrors "enverge/internal/shared/errors"
)

// ResourceType identifies the entity family a subscription watches.
// Values are persisted; never renumber.
type ResourceType int32

const (
	ResourceSite ResourceType = iota + 1
	ResourceDynamicOperatingEnvelope
	ResourceTariffGeneratedRate
	ResourceReading
	ResourceSiteDERAvailability
	ResourceSiteDERRating
	ResourceSiteDERSetting
	ResourceSiteDERStatus
	ResourceDefaultSiteControl
	ResourceFunctionSetAssignments
	ResourceSiteControlGroup
)

func (t ResourceType) String() string {
	switch t {
	case ResourceSite:
		return "site"
	case ResourceDynamicOperatingEnvelope:
		return "dynamic-operating-envelope"
	case ResourceTariffGeneratedRate:
		return "tariff-generated-rate"
	case ResourceReading:
		return "reading"
	case ResourceSiteDERAvailability:
		return "site-der-availability"
	case ResourceSiteDERRating:
		return "site-der-rating"
	case ResourceSiteDERSetting:
		return "site-der-setting"
	case ResourceSiteDERStatus:
		return "site-der-status"
	case ResourceDefaultSiteControl:
		return "default-site-control"
	case ResourceFunctionSetAssignments:
		return "function-set-assignments"
	case ResourceSiteControlGroup:
		return "site-control-group"
	default:
		return fmt.Sprintf("resource(%d)", int32(t))
	}
}

// nonListResources are 2030.5 non-list resources. Each changed entity
// becomes its own singleton notification instead of a paged list.
var nonListResources = map[ResourceType]bool{
	ResourceSiteDERAvailability: true,
	ResourceSiteDERRating:       true,
	ResourceSiteDERSetting:      true,
	ResourceSiteDERStatus:       true,
	ResourceDefaultSiteControl:  true,
}

// IsNonListResource reports whether entities of the type are notified
// one at a time.
func IsNonListResource(t ResourceType) bool {
	return nonListResources[t]
}

// ConditionAttribute selects which entity attribute a condition tests.
type ConditionAttribute int32

const ConditionReadingValue ConditionAttribute = 0

// Condition is a threshold window attached to a subscription. Entities
// inside [Lower, Upper] are suppressed; only out-of-range values notify.
type Condition struct {
	Attribute ConditionAttribute
	Lower     *int64
	Upper     *int64
}

// Subscription is the domain view of a stored subscription.
type Subscription struct {
	ID              uint64
	AggregatorID    uint64
	Resource        ResourceType
	ResourceID      *uint64
	ScopedSiteID    *uint64
	NotificationURI string
	EntityLimit     int32
	Condition       *Condition
}

// ParsedResource is the outcome of parsing a subscribedResource href.
type ParsedResource struct {
	Resource     ResourceType
	ScopedSiteID *uint64
	ResourceID   *uint64
}

// ParseSubscribedResource resolves an href into a subscription target
// using the strict template table. hrefPrefix is stripped first.
// Anything else is an invalid mapping.
//
// Recognised shapes:
//
//	/edev
//	/edev/{site}
//	/edev/{site}/derp/doe/derc
//	/edev/{site}/tp/{tariff}/rc
//	/upt/{site}/mr/{srt}/rs/all/r
func ParseSubscribedResource(hrefPrefix, href string) (*ParsedResource, error) {
	path := strings.TrimSuffix(strings.TrimPrefix(href, hrefPrefix), "/")
	parts := strings.Split(strings.TrimPrefix(path, "/"), "/")

	fail := func() (*ParsedResource, error) {
		return nil, apperrors.NewInvalidMappingError(fmt.Sprintf("unrecognised subscribedResource %q", href))
	}
	parseID := func(s string) (uint64, bool) {
		id, err := strconv.ParseUint(s, 10, 64)
		return id, err == nil
	}

	switch {
	case len(parts) == 1 && parts[0] == "edev":
		return &ParsedResource{Resource: ResourceSite}, nil

	case len(parts) == 2 && parts[0] == "edev":
		siteID, ok := parseID(parts[1])
		if !ok {
			return fail()
		}
		return &ParsedResource{Resource: ResourceSite, ScopedSiteID: &siteID}, nil

	case len(parts) == 5 && parts[0] == "edev" && parts[2] == "derp" && parts[3] == "doe" && parts[4] == "derc":
		siteID, ok := parseID(parts[1])
		if !ok {
			return fail()
		}
		return &ParsedResource{Resource: ResourceDynamicOperatingEnvelope, ScopedSiteID: &siteID}, nil

	case len(parts) == 5 && parts[0] == "edev" && parts[2] == "tp" && parts[4] == "rc":
		siteID, ok1 := parseID(parts[1])
		tariffID, ok2 := parseID(parts[3])
		if !ok1 || !ok2 {
			return fail()
		}
		return &ParsedResource{Resource: ResourceTariffGeneratedRate, ScopedSiteID: &siteID, ResourceID: &tariffID}, nil

	case len(parts) == 7 && parts[0] == "upt" && parts[2] == "mr" && parts[4] == "rs" && parts[5] == "all" && parts[6] == "r":
		siteID, ok1 := parseID(parts[1])
		srtID, ok2 := parseID(parts[3])
		if !ok1 || !ok2 {
			return fail()
		}
		return &ParsedResource{Resource: ResourceReading, ScopedSiteID: &siteID, ResourceID: &srtID}, nil
	}
	return fail()
}

// ValidateNotificationHost rejects a notificationURI whose host is not
// in the owning aggregator's FQDN allowlist.
func ValidateNotificationHost(notificationURI string, domains []string) error {
	parsed, err := url.Parse(notificationURI)
	if err != nil {
		return apperrors.NewInvalidMappingError(fmt.Sprintf("invalid notificationURI %q", notificationURI))
	}
	host := parsed.Hostname()
	if host == "" {
		return apperrors.NewInvalidMappingError(fmt.Sprintf("notificationURI %q has no host", notificationURI))
	}
	for _, d := range domains {
		if strings.EqualFold(host, d) {
			return nil
		}
	}
	return apperrors.NewInvalidMappingError(
		fmt.Sprintf("notificationURI host %q is not in the aggregator domain allowlist", host))
}

// Candidate is one changed or deleted entity offered to the matcher.
// FilterID carries the resource-specific filter key (tariff id for
// rates, reading type id for readings, site id otherwise). ReadingValue
// is set only for readings.
type Candidate struct {
	Entity       any
	SiteID       uint64
	FilterID     uint64
	ReadingValue *int64
}

// EntitiesServiced filters candidates down to those the subscription
// covers for the given resource family.
func EntitiesServiced(sub Subscription, resource ResourceType, candidates []Candidate) []Candidate {
	if sub.Resource != resource {
		return nil
	}
	matched := make([]Candidate, 0, len(candidates))
	for _, c := range candidates {
		if sub.ResourceID != nil && c.FilterID != *sub.ResourceID {
			continue
		}
		if sub.ScopedSiteID != nil && c.SiteID != *sub.ScopedSiteID {
			continue
		}
		if resource == ResourceReading && !passesCondition(sub.Condition, c.ReadingValue) {
			continue
		}
		matched = append(matched, c)
	}
	return matched
}

// passesCondition keeps only readings outside the threshold window.
// A reading inside [lower, upper] is routine and suppressed.
func passesCondition(cond *Condition, value *int64) bool {
	if cond == nil || cond.Attribute != ConditionReadingValue {
		return true
	}
	if value == nil {
		return false
	}
	aboveLower := cond.Lower == nil || *value >= *cond.Lower
	belowUpper := cond.Upper == nil || *value <= *cond.Upper
	return !(aboveLower && belowUpper)
}

// ClampPageSize bounds a subscription's entity_limit to a usable page
// size.
func ClampPageSize(entityLimit int32) int {
	if entityLimit < 1 {
		return 1
	}
	if entityLimit > constants.MaxNotificationPageSize {
		return constants.MaxNotificationPageSize
	}
	return int(entityLimit)
}

// Pages splits matched candidates into notification pages. Non-list
// resources always page one entity at a time.
func Pages(resource ResourceType, candidates []Candidate, entityLimit int32) [][]Candidate {
	if len(candidates) == 0 {
		return nil
	}
	pageSize := ClampPageSize(entityLimit)
	if IsNonListResource(resource) {
		pageSize = 1
	}
	pages := make([][]Candidate, 0, (len(candidates)+pageSize-1)/pageSize)
	for start := 0; start < len(candidates); start += pageSize {
		end := start + pageSize
		if end > len(candidates) {
			end = len(candidates)
		}
		pages = append(pages, candidates[start:end])
	}
	return pages
}
