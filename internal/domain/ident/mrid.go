// Package ident derives the stable identifiers of the 2030.5 resource
// model: 128 bit MRIDs, certificate derived LFDI/SFDI values, and
// resource hrefs.
package ident

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"enverge/internal/shared/errors"
)

// MridType occupies the top nibble of every MRID and identifies the
// resource family the remaining id bits belong to.
type MridType uint8

const (
	MridTypeDefaultDoe MridType = iota
	MridTypeDerProgram
	MridTypeDynamicOperatingEnvelope
	MridTypeFunctionSetAssignment
	MridTypeMirrorUsagePoint
	MridTypeMirrorMeterReading
	MridTypeTariff
	MridTypeRateComponent
	MridTypeTimeTariffInterval
	MridTypeResponseSet
)

const (
	mridHexLen = 32

	// The resource id field spans bits 123..32: 28 high bits and 64 low bits.
	idHiWidth = 28
	idHiMask  = (uint64(1) << idHiWidth) - 1

	// defaultDoeID is the fixed id payload of the DefaultDERControl MRID.
	defaultDoeID = 0xdefa017

	// derProgramIDPrefix tags the high 12 bits of a DERProgram id.
	derProgramIDPrefix = 0xd0e
)

// epoch2000 anchors the minutes field of RateComponent MRIDs.
var epoch2000 = time.Date(2000, time.January, 1, 0, 0, 0, 0, time.UTC)

// Mrid is a 128 bit identifier held as two 64 bit halves.
type Mrid struct {
	Hi uint64
	Lo uint64
}

// String renders the MRID as exactly 32 lowercase hex characters.
func (m Mrid) String() string {
	return fmt.Sprintf("%016x%016x", m.Hi, m.Lo)
}

// EncodeMrid packs an MRID from its three fields. The resource id is
// supplied split: idHi carries bits 91..64 (28 bits) and idLo bits 63..0.
// Width violations are rejected.
func EncodeMrid(mridType MridType, idHi uint64, idLo uint64, ianaPEN uint32) (Mrid, error) {
	if mridType > MridTypeResponseSet {
		return Mrid{}, errors.NewBadRequestError(fmt.Sprintf("mrid type %d exceeds 4 bit field", mridType))
	}
	if idHi > idHiMask {
		return Mrid{}, errors.NewBadRequestError(fmt.Sprintf("resource id high bits %#x exceed 28 bit field", idHi))
	}
	return Mrid{
		Hi: uint64(mridType)<<60 | idHi<<32 | idLo>>32,
		Lo: (idLo&0xffffffff)<<32 | uint64(ianaPEN),
	}, nil
}

// ParseMrid parses a 32 hex character MRID. Input case is ignored.
func ParseMrid(s string) (Mrid, error) {
	if len(s) != mridHexLen {
		return Mrid{}, errors.NewBadRequestError(fmt.Sprintf("mrid %q is not %d hex characters", s, mridHexLen))
	}
	s = strings.ToLower(s)
	hi, err := strconv.ParseUint(s[:16], 16, 64)
	if err != nil {
		return Mrid{}, errors.NewBadRequestError(fmt.Sprintf("mrid %q is not hexadecimal", s))
	}
	lo, err := strconv.ParseUint(s[16:], 16, 64)
	if err != nil {
		return Mrid{}, errors.NewBadRequestError(fmt.Sprintf("mrid %q is not hexadecimal", s))
	}
	return Mrid{Hi: hi, Lo: lo}, nil
}

// Type extracts the MridType nibble.
func (m Mrid) Type() MridType {
	return MridType(m.Hi >> 60)
}

// IanaPEN extracts the low 32 bits.
func (m Mrid) IanaPEN() uint32 {
	return uint32(m.Lo & 0xffffffff)
}

// IDHi returns bits 91..64 of the resource id field.
func (m Mrid) IDHi() uint64 {
	return (m.Hi >> 32) & idHiMask
}

// IDLo returns bits 63..0 of the resource id field.
func (m Mrid) IDLo() uint64 {
	return m.Hi<<32 | m.Lo>>32
}

// ValidatePEN rejects MRIDs minted by a different deployment. Every inbound
// MRID passes through this before its id bits are trusted.
func (m Mrid) ValidatePEN(ianaPEN uint32) error {
	if m.IanaPEN() != ianaPEN {
		return errors.NewBadRequestError(
			fmt.Sprintf("mrid pen %d does not match deployment pen %d", m.IanaPEN(), ianaPEN))
	}
	return nil
}

// DoeMrid encodes a DynamicOperatingEnvelope MRID with the envelope id in
// the low 64 bits.
func DoeMrid(doeID uint64, ianaPEN uint32) Mrid {
	m, _ := EncodeMrid(MridTypeDynamicOperatingEnvelope, 0, doeID, ianaPEN)
	return m
}

// DecodeDoeMrid returns the envelope id carried by a DOE MRID.
func DecodeDoeMrid(m Mrid) uint64 {
	return m.IDLo()
}

// DerProgramMrid encodes a DERProgram MRID: the high 12 id bits carry a
// fixed 0xd0e tag and the low 32 bits the site id.
func DerProgramMrid(siteID uint64, ianaPEN uint32) Mrid {
	m, _ := EncodeMrid(MridTypeDerProgram, derProgramIDPrefix<<16, siteID&0xffffffff, ianaPEN)
	return m
}

// FsaMrid encodes a FunctionSetAssignment MRID as (site_id << 32) | fsa_id.
func FsaMrid(siteID uint64, fsaID uint64, ianaPEN uint32) Mrid {
	m, _ := EncodeMrid(MridTypeFunctionSetAssignment, 0, siteID<<32|fsaID&0xffffffff, ianaPEN)
	return m
}

// MupMrid encodes a MirrorUsagePoint MRID from the site reading type id.
func MupMrid(siteReadingTypeID uint64, ianaPEN uint32) Mrid {
	m, _ := EncodeMrid(MridTypeMirrorUsagePoint, 0, siteReadingTypeID&0xffffffff, ianaPEN)
	return m
}

// MmrMrid encodes a MirrorMeterReading MRID from the site reading type id.
func MmrMrid(siteReadingTypeID uint64, ianaPEN uint32) Mrid {
	m, _ := EncodeMrid(MridTypeMirrorMeterReading, 0, siteReadingTypeID&0xffffffff, ianaPEN)
	return m
}

// TariffMrid encodes a TariffProfile MRID from the tariff id.
func TariffMrid(tariffID uint64, ianaPEN uint32) Mrid {
	m, _ := EncodeMrid(MridTypeTariff, 0, tariffID&0xffffffff, ianaPEN)
	return m
}

// RateComponentMrid encodes the fully virtual RateComponent identity:
// tariff(32) << 60 | site(32) << 28 | (prt-1)(2) << 26 | minutes(26),
// where minutes counts from 2000-01-01T00:00Z. prt must be 1..4.
func RateComponentMrid(tariffID uint64, siteID uint64, prt int, day time.Time, ianaPEN uint32) (Mrid, error) {
	if prt < 1 || prt > 4 {
		return Mrid{}, errors.NewBadRequestError(fmt.Sprintf("pricing reading type %d out of range 1..4", prt))
	}
	minutes := uint64(day.UTC().Sub(epoch2000) / time.Minute)
	if minutes >= 1<<26 {
		return Mrid{}, errors.NewBadRequestError("rate component day exceeds 26 bit minute field")
	}
	tariffID &= 0xffffffff
	siteID &= 0xffffffff
	// tariff occupies id bits 91..60: 28 bits land in idHi, 4 in idLo.
	idHi := tariffID >> 4
	idLo := (tariffID&0xf)<<60 | siteID<<28 | uint64(prt-1)<<26 | minutes
	return EncodeMrid(MridTypeRateComponent, idHi, idLo, ianaPEN)
}

// TimeTariffIntervalMrid encodes (prt-1)(2) << 90 | tariff_generated_rate_id(64).
func TimeTariffIntervalMrid(rateID uint64, prt int, ianaPEN uint32) (Mrid, error) {
	if prt < 1 || prt > 4 {
		return Mrid{}, errors.NewBadRequestError(fmt.Sprintf("pricing reading type %d out of range 1..4", prt))
	}
	return EncodeMrid(MridTypeTimeTariffInterval, uint64(prt-1)<<26, rateID, ianaPEN)
}

// ResponseSetMrid encodes a ResponseSet MRID from the response set type.
func ResponseSetMrid(responseSetType uint32, ianaPEN uint32) Mrid {
	m, _ := EncodeMrid(MridTypeResponseSet, 0, uint64(responseSetType), ianaPEN)
	return m
}

// DefaultDoeMrid encodes the fixed DefaultDERControl MRID.
func DefaultDoeMrid(ianaPEN uint32) Mrid {
	m, _ := EncodeMrid(MridTypeDefaultDoe, 0, defaultDoeID, ianaPEN)
	return m
}
