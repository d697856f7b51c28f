package mapper

import (
	"time"

	"enverge/internal/domain/ident"
	"enverge/internal/domain/pricing"
	"enverge/internal/infrastructure/persistence/models"
	"enverge/internal/infrastructure/repository"
	"enverge/internal/interfaces/dto/sep2"
	apperrors "enverge/internal/shared/errors"
)

// localDayFormat matches the persisted local_start_day column.
const localDayFormat = "2006-01-02"

// ParseLocalDay reads a stored local day string back into a date.
func ParseLocalDay(day string) (time.Time, error) {
	t, err := time.Parse(localDayFormat, day)
	if err != nil {
		return time.Time{}, apperrors.NewBadRequestError("rate day " + day + " is not YYYY-MM-DD")
	}
	return t, nil
}

// minuteOfDayTime renders a local minute of day for HH:MM hrefs.
func minuteOfDayTime(minute int32) time.Time {
	return time.Date(2000, 1, 1, int(minute)/60, int(minute)%60, 0, 0, time.UTC)
}

// ToTariffProfile projects a tariff for one site. rateDayCount feeds the
// advertised RateComponentList size (days times the four pricing types).
func ToTariffProfile(ctx Ctx, siteID uint64, tariff *models.TariffModel, rateDayCount int64) sep2.TariffProfile {
	return sep2.TariffProfile{
		Xmlns:                     sep2.NamespaceSep2,
		Href:                      ctx.Hrefs.TariffProfile(siteID, tariff.ID),
		MRID:                      ident.TariffMrid(tariff.ID, ctx.PEN).String(),
		Description:               tariff.Name,
		Currency:                  tariff.CurrencyCode,
		PricePowerOfTenMultiplier: pricing.PricePowerOfTenMultiplier,
		RateCode:                  tariff.DnspCode,
		ServiceCategoryKind:       0,
		RateComponentListLink: listLink(
			ctx.Hrefs.RateComponentList(siteID, tariff.ID),
			int32(rateDayCount)*pricing.ReadingTypeCount),
	}
}

// ToTariffProfileUnscoped projects a tariff outside any site context.
// Without a site there is no rate tree, so no RateComponent list link.
func ToTariffProfileUnscoped(ctx Ctx, tariff *models.TariffModel) sep2.TariffProfile {
	return sep2.TariffProfile{
		Xmlns:                     sep2.NamespaceSep2,
		Href:                      ctx.Hrefs.TariffProfileUnscoped(tariff.ID),
		MRID:                      ident.TariffMrid(tariff.ID, ctx.PEN).String(),
		Description:               tariff.Name,
		Currency:                  tariff.CurrencyCode,
		PricePowerOfTenMultiplier: pricing.PricePowerOfTenMultiplier,
		RateCode:                  tariff.DnspCode,
		ServiceCategoryKind:       0,
	}
}

// ToTariffProfileListUnscoped assembles the unscoped tariff list.
func ToTariffProfileListUnscoped(ctx Ctx, profiles []sep2.TariffProfile, total int64) sep2.TariffProfileList {
	items := make([]sep2.TariffProfile, len(profiles))
	for i, p := range profiles {
		p.Xmlns = ""
		items[i] = p
	}
	return sep2.TariffProfileList{
		Xmlns:          sep2.NamespaceSep2,
		Href:           ctx.Hrefs.TariffProfileList(),
		All:            int32(total),
		Results:        int32(len(items)),
		PollRate:       i32ptr(ctx.Opts.DcapPollRate),
		TariffProfiles: items,
	}
}

// ToTariffProfileList assembles the paged tariff list for one site.
func ToTariffProfileList(ctx Ctx, siteID uint64, profiles []sep2.TariffProfile, total int64) sep2.TariffProfileList {
	items := make([]sep2.TariffProfile, len(profiles))
	for i, p := range profiles {
		p.Xmlns = ""
		items[i] = p
	}
	return sep2.TariffProfileList{
		Xmlns:          sep2.NamespaceSep2,
		Href:           ctx.Hrefs.SiteTariffProfileList(siteID),
		All:            int32(total),
		Results:        int32(len(items)),
		PollRate:       i32ptr(ctx.Opts.DcapPollRate),
		TariffProfiles: items,
	}
}

// ToRateComponent projects one fully virtual (day, pricing type) slice.
func ToRateComponent(ctx Ctx, siteID, tariffID uint64, day time.Time, prt pricing.ReadingType, intervalCount int64) (sep2.RateComponent, error) {
	mrid, err := ident.RateComponentMrid(tariffID, siteID, int(prt), day, ctx.PEN)
	if err != nil {
		return sep2.RateComponent{}, err
	}
	return sep2.RateComponent{
		Xmlns:           sep2.NamespaceSep2,
		Href:            ctx.Hrefs.RateComponent(siteID, tariffID, day, int(prt)),
		MRID:            mrid.String(),
		RoleFlags:       "00",
		ReadingTypeLink: link(ctx.Hrefs.RateComponent(siteID, tariffID, day, int(prt)) + "/rt"),
		TimeTariffIntervalListLink: listLink(
			ctx.Hrefs.TimeTariffIntervalList(siteID, tariffID, day, int(prt)),
			int32(intervalCount)),
	}, nil
}

// ToRateComponentList flattens paged day buckets into the (day x pricing
// type) product and trims the window edges. totalDays feeds all_ as
// days times four.
func ToRateComponentList(ctx Ctx, siteID, tariffID uint64, stats []repository.DailyRateStat, window pricing.Window, totalDays int64) (sep2.RateComponentList, error) {
	flattened := make([]sep2.RateComponent, 0, len(stats)*pricing.ReadingTypeCount)
	for _, stat := range stats {
		day, err := ParseLocalDay(stat.LocalStartDay)
		if err != nil {
			return sep2.RateComponentList{}, err
		}
		for _, prt := range pricing.AllReadingTypes {
			rc, err := ToRateComponent(ctx, siteID, tariffID, day, prt, stat.RateCount)
			if err != nil {
				return sep2.RateComponentList{}, err
			}
			rc.Xmlns = ""
			flattened = append(flattened, rc)
		}
	}

	lo := window.HeadSkip
	hi := len(flattened) - window.TailSkip
	if lo > len(flattened) {
		lo = len(flattened)
	}
	if hi < lo {
		hi = lo
	}
	page := flattened[lo:hi]

	return sep2.RateComponentList{
		Xmlns:          sep2.NamespaceSep2,
		Href:           ctx.Hrefs.RateComponentList(siteID, tariffID),
		All:            int32(totalDays) * pricing.ReadingTypeCount,
		Results:        int32(len(page)),
		Subscribable:   i32ptr(1),
		RateComponents: page,
	}, nil
}

// ToTimeTariffInterval projects one stored rate for one pricing type.
func ToTimeTariffInterval(ctx Ctx, siteID uint64, rate *models.TariffGeneratedRateModel, prt pricing.ReadingType) (sep2.TimeTariffInterval, error) {
	day, err := ParseLocalDay(rate.LocalStartDay)
	if err != nil {
		return sep2.TimeTariffInterval{}, err
	}
	mrid, err := ident.TimeTariffIntervalMrid(rate.ID, int(prt), ctx.PEN)
	if err != nil {
		return sep2.TimeTariffInterval{}, err
	}
	timeOfDay := minuteOfDayTime(rate.LocalMinuteOfDay)
	price := pricing.Prices{
		ImportActive:   rate.ImportActivePrice,
		ExportActive:   rate.ExportActivePrice,
		ImportReactive: rate.ImportReactivePrice,
		ExportReactive: rate.ExportReactivePrice,
	}.Extract(prt)

	status := sep2.EventStatus{
		CurrentStatus: eventStatusScheduled,
		DateTime:      epoch(rate.ChangedTime),
	}
	end := rate.StartTime.Add(time.Duration(rate.DurationSeconds) * time.Second)
	if !rate.StartTime.After(ctx.Now) && end.After(ctx.Now) {
		status.CurrentStatus = eventStatusActive
	}

	return sep2.TimeTariffInterval{
		Xmlns:            sep2.NamespaceSep2,
		Href:             ctx.Hrefs.TimeTariffInterval(siteID, rate.TariffID, day, int(prt), timeOfDay),
		ReplyTo:          ctx.Hrefs.ResponseList(siteID, models.ResponseSetTariffGeneratedRate),
		ResponseRequired: "03",
		MRID:             mrid.String(),
		CreationTime:     epoch(rate.CreatedTime),
		EventStatus:      status,
		Interval: sep2.DateTimeInterval{
			Duration: rate.DurationSeconds,
			Start:    epoch(rate.StartTime),
		},
		TouTier: 0,
		ConsumptionTariffIntervalListLink: listLink(
			ctx.Hrefs.ConsumptionTariffIntervalList(siteID, rate.TariffID, day, int(prt), timeOfDay, price), 1),
	}, nil
}

// ToTimeTariffIntervalList assembles one day's intervals for one pricing
// type.
func ToTimeTariffIntervalList(ctx Ctx, siteID, tariffID uint64, day time.Time, prt pricing.ReadingType, intervals []sep2.TimeTariffInterval, total int64) sep2.TimeTariffIntervalList {
	items := make([]sep2.TimeTariffInterval, len(intervals))
	for i, tti := range intervals {
		tti.Xmlns = ""
		items[i] = tti
	}
	return sep2.TimeTariffIntervalList{
		Xmlns:               sep2.NamespaceSep2,
		Href:                ctx.Hrefs.TimeTariffIntervalList(siteID, tariffID, day, int(prt)),
		All:                 int32(total),
		Results:             int32(len(items)),
		TimeTariffIntervals: items,
	}
}

// ToConsumptionTariffIntervalList builds the single element price list.
// The price is already embedded in the href, so this needs no lookup.
func ToConsumptionTariffIntervalList(ctx Ctx, siteID, tariffID uint64, day time.Time, prt pricing.ReadingType, timeOfDay time.Time, price int64) sep2.ConsumptionTariffIntervalList {
	interval := sep2.ConsumptionTariffInterval{
		Href:  ctx.Hrefs.ConsumptionTariffInterval(siteID, tariffID, day, int(prt), timeOfDay, price),
		Price: price,
	}
	return sep2.ConsumptionTariffIntervalList{
		Xmlns:                      sep2.NamespaceSep2,
		Href:                       ctx.Hrefs.ConsumptionTariffIntervalList(siteID, tariffID, day, int(prt), timeOfDay, price),
		All:                        1,
		Results:                    1,
		ConsumptionTariffIntervals: []sep2.ConsumptionTariffInterval{interval},
	}
}
