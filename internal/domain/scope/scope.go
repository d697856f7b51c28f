// Package scope translates authenticated certificate claims into typed
// request scopes. Every repository query is bounded by one of these
// scopes; constructing a scope is the only way a handler can reach data.
package scope

import (
	"fmt"

	"enverge/internal/shared/constants"
	"enverge/internal/shared/errors"
)

// CertificateSource identifies how the presented certificate is registered.
type CertificateSource int

const (
	SourceAggregatorCertificate CertificateSource = iota
	SourceDeviceCertificate
)

// Claims are the authenticated facts established by certificate lookup,
// before any narrowing. The (AggregatorID, SiteID) pair is constrained:
// an aggregator certificate carries (A, nil); a device certificate carries
// (nil, S) once its site is registered or (nil, nil) before first
// registration. (A, S) is a programming error and never produced.
type Claims struct {
	Source       CertificateSource
	Lfdi         string
	Sfdi         uint64
	IanaPEN      uint32
	HrefPrefix   string
	AggregatorID *uint64
	SiteID       *uint64
}

// BaseScope carries the deployment identity every derived scope needs for
// hermetic href and MRID generation.
type BaseScope struct {
	Lfdi       string
	Sfdi       uint64
	IanaPEN    uint32
	HrefPrefix string
}

func baseOf(c Claims) BaseScope {
	return BaseScope{
		Lfdi:       c.Lfdi,
		Sfdi:       c.Sfdi,
		IanaPEN:    c.IanaPEN,
		HrefPrefix: c.HrefPrefix,
	}
}

// UnregisteredScope accepts any authenticated claim. It is the widest
// scope, guarding the resources an unregistered device certificate may
// touch: EndDevice registration and the MirrorUsagePoint list.
type UnregisteredScope struct {
	BaseScope
	AggregatorID uint64
}

// NewUnregisteredScope derives the widest scope; it cannot fail.
func NewUnregisteredScope(c Claims) UnregisteredScope {
	aggID := constants.NullAggregatorID
	if c.AggregatorID != nil {
		aggID = *c.AggregatorID
	}
	return UnregisteredScope{BaseScope: baseOf(c), AggregatorID: aggID}
}

// DeviceOrAggregatorScope resolves a request for a specific site id into
// either a concrete site or the aggregator wide virtual end device.
type DeviceOrAggregatorScope struct {
	BaseScope
	AggregatorID uint64

	// DisplaySiteID is the site id the response hrefs are built for. The
	// virtual end device keeps the sentinel value.
	DisplaySiteID uint64

	// SiteID is nil for the virtual end device, bounding queries to the
	// whole aggregator partition rather than one site.
	SiteID *uint64
}

// IsVirtual reports whether the scope addresses the aggregator wide
// virtual end device rather than a concrete site.
func (s DeviceOrAggregatorScope) IsVirtual() bool {
	return s.SiteID == nil
}

// NewDeviceOrAggregatorScope narrows claims to the requested site id.
// Aggregator certificates may request any site under their partition or
// the virtual end device (site id 0). Device certificates may only
// request their own registered site.
func NewDeviceOrAggregatorScope(c Claims, requestedSiteID uint64) (DeviceOrAggregatorScope, error) {
	s := DeviceOrAggregatorScope{BaseScope: baseOf(c), DisplaySiteID: requestedSiteID}

	switch {
	case c.AggregatorID != nil:
		s.AggregatorID = *c.AggregatorID
		if requestedSiteID != constants.VirtualEndDeviceSiteID {
			siteID := requestedSiteID
			s.SiteID = &siteID
		}
		return s, nil

	case c.SiteID != nil:
		if requestedSiteID != *c.SiteID {
			return DeviceOrAggregatorScope{}, errors.NewForbiddenError(
				fmt.Sprintf("certificate is scoped to EndDevice %d", *c.SiteID))
		}
		s.AggregatorID = constants.NullAggregatorID
		siteID := *c.SiteID
		s.SiteID = &siteID
		return s, nil

	default:
		return DeviceOrAggregatorScope{}, errors.NewForbiddenError(
			"device certificate has no registered EndDevice")
	}
}

// AggregatorScope is DeviceOrAggregatorScope restricted to aggregator
// certificates: the null aggregator partition is rejected.
type AggregatorScope struct {
	BaseScope
	AggregatorID  uint64
	DisplaySiteID uint64
	SiteID        *uint64
}

func (s AggregatorScope) IsVirtual() bool {
	return s.SiteID == nil
}

// NewAggregatorScope narrows claims to an aggregator certificate scope.
func NewAggregatorScope(c Claims, requestedSiteID uint64) (AggregatorScope, error) {
	inner, err := NewDeviceOrAggregatorScope(c, requestedSiteID)
	if err != nil {
		return AggregatorScope{}, err
	}
	if inner.AggregatorID == constants.NullAggregatorID {
		return AggregatorScope{}, errors.NewForbiddenError(
			"resource requires an aggregator certificate")
	}
	return AggregatorScope{
		BaseScope:     inner.BaseScope,
		AggregatorID:  inner.AggregatorID,
		DisplaySiteID: inner.DisplaySiteID,
		SiteID:        inner.SiteID,
	}, nil
}

// SiteScope requires a concrete, matching site; the virtual end device is
// forbidden.
type SiteScope struct {
	BaseScope
	AggregatorID uint64
	SiteID       uint64
}

// NewSiteScope narrows claims to a single concrete site.
func NewSiteScope(c Claims, requestedSiteID uint64) (SiteScope, error) {
	if requestedSiteID == constants.VirtualEndDeviceSiteID {
		return SiteScope{}, errors.NewForbiddenError(
			"resource is not available on the aggregator EndDevice")
	}
	inner, err := NewDeviceOrAggregatorScope(c, requestedSiteID)
	if err != nil {
		return SiteScope{}, err
	}
	return SiteScope{
		BaseScope:    inner.BaseScope,
		AggregatorID: inner.AggregatorID,
		SiteID:       *inner.SiteID,
	}, nil
}

// MUPListScope guards the MirrorUsagePoint list: both registered and
// unregistered device certificates are admitted.
type MUPListScope struct {
	BaseScope
	AggregatorID uint64
	SiteID       *uint64
}

// NewMUPListScope derives the MirrorUsagePoint list scope; it cannot fail.
func NewMUPListScope(c Claims) MUPListScope {
	s := MUPListScope{BaseScope: baseOf(c), AggregatorID: constants.NullAggregatorID}
	if c.AggregatorID != nil {
		s.AggregatorID = *c.AggregatorID
	}
	if c.SiteID != nil {
		siteID := *c.SiteID
		s.SiteID = &siteID
	}
	return s
}

// MUPScope guards a single MirrorUsagePoint resource.
type MUPScope struct {
	BaseScope
	AggregatorID uint64
	SiteID       *uint64
}

// NewMUPScope derives the single MirrorUsagePoint scope; it cannot fail.
func NewMUPScope(c Claims) MUPScope {
	inner := NewMUPListScope(c)
	return MUPScope{BaseScope: inner.BaseScope, AggregatorID: inner.AggregatorID, SiteID: inner.SiteID}
}
