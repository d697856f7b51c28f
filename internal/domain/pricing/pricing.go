// Package pricing holds the pure arithmetic behind the virtualised
// 2030.5 tariff tree: the four pricing reading types fanned out from
// each stored rate, price scaling, and rate component pagination.
package pricing

import (
	"fmt"

	"enverge/internal/shared/constants"
	"enverge/internal/shared/errors"
)

// ReadingType enumerates the four prices carried by every generated rate.
// Values are 1 based so they can be embedded in MRIDs as (prt-1).
type ReadingType int

const (
	ImportActivePowerKwh ReadingType = iota + 1
	ExportActivePowerKwh
	ImportReactivePowerKvarh
	ExportReactivePowerKvarh
)

// ReadingTypeCount is the fanout factor of the virtual RateComponent tree.
const ReadingTypeCount = 4

// AllReadingTypes in fanout order.
var AllReadingTypes = []ReadingType{
	ImportActivePowerKwh,
	ExportActivePowerKwh,
	ImportReactivePowerKvarh,
	ExportReactivePowerKvarh,
}

// ParseReadingType validates a 1..4 path parameter.
func ParseReadingType(v int) (ReadingType, error) {
	if v < 1 || v > ReadingTypeCount {
		return 0, errors.NewBadRequestError(fmt.Sprintf("pricing reading type %d out of range 1..4", v))
	}
	return ReadingType(v), nil
}

// Prices is the four decimal price columns of one generated rate, already
// scaled to integers at PriceDecimalPlaces.
type Prices struct {
	ImportActive   int64
	ExportActive   int64
	ImportReactive int64
	ExportReactive int64
}

// Extract selects the price column matching the reading type.
func (p Prices) Extract(prt ReadingType) int64 {
	switch prt {
	case ImportActivePowerKwh:
		return p.ImportActive
	case ExportActivePowerKwh:
		return p.ExportActive
	case ImportReactivePowerKvarh:
		return p.ImportReactive
	default:
		return p.ExportReactive
	}
}

// PricePowerOfTenMultiplier is emitted on every TariffProfile so clients
// can reconstruct decimal prices from the scaled integers.
const PricePowerOfTenMultiplier = -constants.PriceDecimalPlaces

// Window converts client facing RateComponent paging (start, limit over
// the day times reading type product) into daily bucket paging plus the
// head and tail elements to trim from the flattened fanout.
type Window struct {
	DbStart  int
	DbLimit  int
	HeadSkip int
	TailSkip int
}

// PageWindow computes the backing store window for a RateComponent page.
func PageWindow(start, limit int) Window {
	if start < 0 {
		start = 0
	}
	if limit < 0 {
		limit = 0
	}
	headSkip := start % ReadingTypeCount
	dbLimit := (headSkip + limit + ReadingTypeCount - 1) / ReadingTypeCount
	tailSkip := (ReadingTypeCount - (headSkip+limit)%ReadingTypeCount) % ReadingTypeCount
	return Window{
		DbStart:  start / ReadingTypeCount,
		DbLimit:  dbLimit,
		HeadSkip: headSkip,
		TailSkip: tailSkip,
	}
}
