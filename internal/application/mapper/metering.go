package mapper

import (
	"strconv"
	"time"

	"enverge/internal/domain/ident"
	"enverge/internal/infrastructure/persistence/models"
	"enverge/internal/interfaces/dto/sep2"
	apperrors "enverge/internal/shared/errors"
)

// ToMirrorUsagePoint projects a site reading type as a MirrorUsagePoint.
func ToMirrorUsagePoint(ctx Ctx, srt *models.SiteReadingTypeModel, siteLfdi string, postRate *int32) sep2.MirrorUsagePoint {
	return sep2.MirrorUsagePoint{
		Xmlns:               sep2.NamespaceSep2,
		Href:                ctx.Hrefs.MirrorUsagePoint(srt.ID),
		PostRate:            postRate,
		MRID:                ident.MupMrid(srt.ID, ctx.PEN).String(),
		DeviceLFDI:          siteLfdi,
		RoleFlags:           hexField(int64(srt.RoleFlags)),
		ServiceCategoryKind: 0,
		Status:              0,
		MirrorMeterReadings: []sep2.MirrorMeterReading{
			{
				MRID:        ident.MmrMrid(srt.ID, ctx.PEN).String(),
				ReadingType: toReadingType(ctx, srt),
			},
		},
	}
}

// ToMirrorUsagePointList assembles the paged mirror list.
func ToMirrorUsagePointList(ctx Ctx, mups []sep2.MirrorUsagePoint, total int64) sep2.MirrorUsagePointList {
	items := make([]sep2.MirrorUsagePoint, len(mups))
	for i, m := range mups {
		m.Xmlns = ""
		items[i] = m
	}
	return sep2.MirrorUsagePointList{
		Xmlns:             sep2.NamespaceSep2,
		Href:              ctx.Hrefs.MirrorUsagePointList(),
		All:               int32(total),
		Results:           int32(len(items)),
		PollRate:          i32ptr(ctx.Opts.MupPostRate),
		MirrorUsagePoints: items,
	}
}

func toReadingType(ctx Ctx, srt *models.SiteReadingTypeModel) *sep2.ReadingType {
	return &sep2.ReadingType{
		Href:                  ctx.Hrefs.MeterReading(srt.SiteID, srt.ID) + "/rt",
		AccumulationBehaviour: i32ptr(srt.AccumulationBehavior),
		DataQualifier:         i32ptr(srt.DataQualifier),
		FlowDirection:         i32ptr(srt.FlowDirection),
		IntervalLength:        i32ptr(srt.DefaultIntervalSecs),
		Kind:                  i32ptr(srt.Kind),
		Phase:                 i32ptr(srt.Phase),
		PowerOfTenMultiplier:  i32ptr(srt.PowerOfTenMultiplier),
		Uom:                   i32ptr(srt.Uom),
	}
}

// FromMirrorUsagePoint translates a posted mirror into a reading type
// model. The embedded ReadingType is required; its semantic columns
// drive deduplication.
func FromMirrorUsagePoint(dto *sep2.MirrorUsagePoint, aggregatorID, siteID uint64) (*models.SiteReadingTypeModel, error) {
	if len(dto.MirrorMeterReadings) == 0 || dto.MirrorMeterReadings[0].ReadingType == nil {
		return nil, apperrors.NewInvalidMappingError("MirrorUsagePoint requires a MirrorMeterReading with a ReadingType")
	}
	rt := dto.MirrorMeterReadings[0].ReadingType
	if rt.Uom == nil {
		return nil, apperrors.NewInvalidMappingError("ReadingType requires uom")
	}
	roleFlags, err := parseHexFlags(dto.RoleFlags)
	if err != nil {
		return nil, err
	}

	srt := &models.SiteReadingTypeModel{
		AggregatorID: aggregatorID,
		SiteID:       siteID,
		Uom:          *rt.Uom,
	}
	if roleFlags != nil {
		srt.RoleFlags = int32(*roleFlags)
	}
	if rt.DataQualifier != nil {
		srt.DataQualifier = *rt.DataQualifier
	}
	if rt.FlowDirection != nil {
		srt.FlowDirection = *rt.FlowDirection
	}
	if rt.AccumulationBehaviour != nil {
		srt.AccumulationBehavior = *rt.AccumulationBehaviour
	}
	if rt.Kind != nil {
		srt.Kind = *rt.Kind
	}
	if rt.Phase != nil {
		srt.Phase = *rt.Phase
	}
	if rt.PowerOfTenMultiplier != nil {
		srt.PowerOfTenMultiplier = *rt.PowerOfTenMultiplier
	}
	if rt.IntervalLength != nil {
		srt.DefaultIntervalSecs = *rt.IntervalLength
	}
	return srt, nil
}

// FromMirrorMeterReading extracts the posted readings of a batch.
func FromMirrorMeterReading(dto *sep2.MirrorMeterReading, srtID uint64) ([]models.SiteReadingModel, error) {
	collect := func(r sep2.SingleReading) (models.SiteReadingModel, error) {
		if r.TimePeriod == nil {
			return models.SiteReadingModel{}, apperrors.NewInvalidMappingError("Reading requires a timePeriod")
		}
		quality := int64(0)
		if r.QualityFlags != "" {
			q, err := parseHexFlags(r.QualityFlags)
			if err != nil {
				return models.SiteReadingModel{}, err
			}
			quality = *q
		}
		reading := models.SiteReadingModel{
			SiteReadingFields: models.SiteReadingFields{
				SiteReadingTypeID: srtID,
				TimePeriodStart:   time.Unix(int64(r.TimePeriod.Start), 0).UTC(),
				TimePeriodSeconds: r.TimePeriod.Duration,
				Value:             r.Value,
				QualityFlags:      int32(quality),
			},
		}
		if r.LocalID != nil {
			localID, err := strconv.ParseInt(*r.LocalID, 16, 64)
			if err != nil {
				return models.SiteReadingModel{}, apperrors.NewInvalidMappingError("localID " + *r.LocalID + " is not hexadecimal")
			}
			reading.LocalID = &localID
		}
		return reading, nil
	}

	var readings []models.SiteReadingModel
	if dto.Reading != nil {
		r, err := collect(*dto.Reading)
		if err != nil {
			return nil, err
		}
		readings = append(readings, r)
	}
	for _, set := range dto.MirrorReadingSets {
		for _, raw := range set.Readings {
			r, err := collect(raw)
			if err != nil {
				return nil, err
			}
			readings = append(readings, r)
		}
	}
	if len(readings) == 0 {
		return nil, apperrors.NewInvalidMappingError("MirrorMeterReading carries no readings")
	}
	return readings, nil
}

// ToReading projects one stored reading.
func ToReading(reading *models.SiteReadingModel) sep2.Reading {
	r := sep2.Reading{
		Xmlns:        sep2.NamespaceSep2,
		QualityFlags: hexField(int64(reading.QualityFlags)),
		TimePeriod: &sep2.DateTimeInterval{
			Duration: reading.TimePeriodSeconds,
			Start:    epoch(reading.TimePeriodStart),
		},
		Value: reading.Value,
	}
	if reading.LocalID != nil {
		localID := strconv.FormatInt(*reading.LocalID, 16)
		r.LocalID = &localID
	}
	return r
}

// ToReadingList assembles the paged reading list for one reading type.
func ToReadingList(ctx Ctx, siteID, srtID uint64, readings []models.SiteReadingModel, total int64) sep2.ReadingList {
	items := make([]sep2.Reading, len(readings))
	for i := range readings {
		r := ToReading(&readings[i])
		r.Xmlns = ""
		items[i] = r
	}
	return sep2.ReadingList{
		Xmlns:        sep2.NamespaceSep2,
		Href:         ctx.Hrefs.ReadingList(siteID, srtID),
		All:          int32(total),
		Results:      int32(len(items)),
		Subscribable: i32ptr(1),
		Readings:     items,
	}
}
