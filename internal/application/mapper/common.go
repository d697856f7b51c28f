// Package mapper translates between storage models and the 2030.5 wire
// types. Mapping is pure: no mapper touches the database, so everything
// an href or MRID needs arrives in the Ctx.
package mapper

import (
	"fmt"
	"time"

	"enverge/internal/domain/ident"
	"enverge/internal/interfaces/dto/sep2"
)

// RuntimeOptions is the serialise-time slice of the runtime server
// configuration. Injected at mapping time, never at subscription time.
type RuntimeOptions struct {
	SiteControlPow10 int32

	DcapPollRate  int32
	EdevlPollRate int32
	FsalPollRate  int32
	DerplPollRate int32
	DerlPollRate  int32
	MupPostRate   int32

	DisableRegistration bool
}

// Ctx carries the deployment identity and runtime options a mapping run
// needs.
type Ctx struct {
	Hrefs ident.HrefBuilder
	PEN   uint32
	Now   time.Time
	Opts  RuntimeOptions
}

// epoch converts a stored UTC instant to the 2030.5 TimeType.
func epoch(t time.Time) sep2.TimeType {
	return sep2.TimeType(t.Unix())
}

func epochPtr(t *time.Time) *sep2.TimeType {
	if t == nil {
		return nil
	}
	e := epoch(*t)
	return &e
}

// scaleWatts renders a stored watt quantity at the configured power of
// ten. pow10 2 turns 12345 W into value 123, multiplier 2.
func scaleWatts(watts int64, pow10 int32) *sep2.ActivePower {
	value := watts
	switch {
	case pow10 > 0:
		for i := int32(0); i < pow10; i++ {
			value /= 10
		}
	case pow10 < 0:
		for i := pow10; i < 0; i++ {
			value *= 10
		}
	}
	return &sep2.ActivePower{Multiplier: pow10, Value: value}
}

func scaleWattsPtr(watts *int64, pow10 int32) *sep2.ActivePower {
	if watts == nil {
		return nil
	}
	return scaleWatts(*watts, pow10)
}

// hexField renders bit-field values the way 2030.5 hexBinary types are
// written.
func hexField(v int64) string {
	return fmt.Sprintf("%02x", v)
}

func i32ptr(v int32) *int32 { return &v }

// link and listLink build optional pointer elements without clutter at
// the call sites.
func link(href string) *sep2.Link {
	return &sep2.Link{Href: href}
}

func listLink(href string, all int32) *sep2.ListLink {
	return &sep2.ListLink{Href: href, All: &all}
}

func listLinkNoCount(href string) *sep2.ListLink {
	return &sep2.ListLink{Href: href}
}

// powerOrNil converts an optional stored (value, multiplier) pair.
func activePower(value *int32, multiplier *int32) *sep2.ActivePower {
	if value == nil || multiplier == nil {
		return nil
	}
	return &sep2.ActivePower{Multiplier: *multiplier, Value: int64(*value)}
}

func reactivePower(value *int32, multiplier *int32) *sep2.ReactivePower {
	if value == nil || multiplier == nil {
		return nil
	}
	return &sep2.ReactivePower{Multiplier: *multiplier, Value: int64(*value)}
}

func apparentPower(value *int32, multiplier *int32) *sep2.ApparentPower {
	if value == nil || multiplier == nil {
		return nil
	}
	return &sep2.ApparentPower{Multiplier: *multiplier, Value: int64(*value)}
}

func voltageRMS(value *int32, multiplier *int32) *sep2.VoltageRMS {
	if value == nil || multiplier == nil {
		return nil
	}
	return &sep2.VoltageRMS{Multiplier: *multiplier, Value: int64(*value)}
}

func wattHour(value *int32, multiplier *int32) *sep2.WattHour {
	if value == nil || multiplier == nil {
		return nil
	}
	return &sep2.WattHour{Multiplier: *multiplier, Value: int64(*value)}
}
