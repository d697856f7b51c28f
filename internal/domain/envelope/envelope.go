// Package envelope holds the pure rules of the dynamic operating
// envelope engine: primacy based supersession, window overlap, and the
// merged live/archive record shape list queries return.
package envelope

import "time"

// Origin tags whether a record was read from the live table or its
// append-only shadow. Mapping treats both identically except for the
// event status emitted on the resulting DERControl.
type Origin int

const (
	OriginLive Origin = iota
	OriginArchive
)

// DoeRecord is the common shape of a live envelope and an archived one.
// For archived records ChangedTime carries the deletion instant, which is
// also the value 2030.5 list ordering uses.
type DoeRecord struct {
	Origin             Origin
	ID                 uint64
	SiteControlGroupID uint64
	SiteID             uint64

	StartTime       time.Time
	EndTime         time.Time
	DurationSeconds int32

	RandomizeStartSeconds      *int16
	ImportLimitActiveWatts     *int64
	ExportLimitWatts           *int64
	GenerationLimitActiveWatts *int64
	LoadLimitActiveWatts       *int64
	SetEnergized               *bool
	SetConnected               *bool
	SetPointPercentage         *int64
	RampTimeSeconds            *int64

	Superseded  bool
	CreatedTime time.Time
	ChangedTime time.Time
	DeletedTime *time.Time
}

// IsDeleted reports whether the record is an archived cancellation.
func (r DoeRecord) IsDeleted() bool {
	return r.Origin == OriginArchive && r.DeletedTime != nil
}

// Supersedes reports whether a new envelope in a group with primacy
// newPrimacy replaces an overlapping one in a group with oldPrimacy.
// Lower primacy is more authoritative; equal primacy also supersedes so
// later submissions win within a priority tier.
func Supersedes(oldPrimacy, newPrimacy int32) bool {
	return oldPrimacy >= newPrimacy
}

// PrimacyOf resolves a group's primacy for supersession comparisons.
// Missing groups resolve to primacy 0, the highest priority. Group 1 has
// an implicit primacy of 0 unless an entry overrides it.
func PrimacyOf(primacyByGroup map[uint64]int32, groupID uint64) int32 {
	if p, ok := primacyByGroup[groupID]; ok {
		return p
	}
	return 0
}

// Overlaps reports whether two half open windows [aStart, aEnd) and
// [bStart, bEnd) intersect.
func Overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	return aStart.Before(bEnd) && bStart.Before(aEnd)
}
