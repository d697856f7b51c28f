package manager

import (
	"context"
	"time"

	"enverge/internal/application/mapper"
	"enverge/internal/domain/pricing"
	"enverge/internal/domain/scope"
	"enverge/internal/infrastructure/persistence/models"
	"enverge/internal/infrastructure/repository"
	"enverge/internal/interfaces/dto/sep2"
	apperrors "enverge/internal/shared/errors"
	"enverge/internal/shared/logger"
)

// timeOfDayFormat matches the HH:MM path segment of interval hrefs.
const timeOfDayFormat = "15:04"

// PricingManager serves the pricing tree: tariff profiles, the virtual
// RateComponent layer, and the stored rates under it.
type PricingManager struct {
	sites   *repository.SiteRepository
	tariffs *repository.TariffRepository
	rates   *repository.RateRepository
	config  *ConfigManager
	logger  logger.Interface
}

func NewPricingManager(sites *repository.SiteRepository, tariffs *repository.TariffRepository, rates *repository.RateRepository, config *ConfigManager, log logger.Interface) *PricingManager {
	return &PricingManager{
		sites:   sites,
		tariffs: tariffs,
		rates:   rates,
		config:  config,
		logger:  log,
	}
}

// ListTariffs pages the tariffs outside any site context. Any
// registered certificate may browse this list.
func (m *PricingManager) ListTariffs(ctx context.Context, claims scope.Claims, q ListQuery) (sep2.TariffProfileList, error) {
	mctx, err := m.config.MapCtx(ctx, time.Now().UTC())
	if err != nil {
		return sep2.TariffProfileList{}, err
	}
	total, err := m.tariffs.Count(ctx, nil, q.ChangedAfter)
	if err != nil {
		return sep2.TariffProfileList{}, err
	}
	tariffs, err := m.tariffs.List(ctx, nil, q.ChangedAfter, q.Start, q.Limit)
	if err != nil {
		return sep2.TariffProfileList{}, err
	}

	profiles := make([]sep2.TariffProfile, 0, len(tariffs))
	for i := range tariffs {
		profiles = append(profiles, mapper.ToTariffProfileUnscoped(mctx, &tariffs[i]))
	}
	return mapper.ToTariffProfileListUnscoped(mctx, profiles, total), nil
}

// GetTariff serves one tariff outside any site context.
func (m *PricingManager) GetTariff(ctx context.Context, claims scope.Claims, tariffID uint64) (sep2.TariffProfile, error) {
	mctx, err := m.config.MapCtx(ctx, time.Now().UTC())
	if err != nil {
		return sep2.TariffProfile{}, err
	}
	tariff, err := m.requireTariff(ctx, tariffID)
	if err != nil {
		return sep2.TariffProfile{}, err
	}
	return mapper.ToTariffProfileUnscoped(mctx, tariff), nil
}

// ListSiteTariffs pages the tariffs scoped to one site, each advertising
// the size of its RateComponent tree there. The virtual end device sees
// the tariffs with empty rate trees.
func (m *PricingManager) ListSiteTariffs(ctx context.Context, claims scope.Claims, siteID uint64, q ListQuery) (sep2.TariffProfileList, error) {
	s, err := scope.NewDeviceOrAggregatorScope(claims, siteID)
	if err != nil {
		return sep2.TariffProfileList{}, err
	}
	mctx, err := m.config.MapCtx(ctx, time.Now().UTC())
	if err != nil {
		return sep2.TariffProfileList{}, err
	}
	total, err := m.tariffs.Count(ctx, nil, q.ChangedAfter)
	if err != nil {
		return sep2.TariffProfileList{}, err
	}
	tariffs, err := m.tariffs.List(ctx, nil, q.ChangedAfter, q.Start, q.Limit)
	if err != nil {
		return sep2.TariffProfileList{}, err
	}

	profiles := make([]sep2.TariffProfile, 0, len(tariffs))
	for i := range tariffs {
		var rateDayCount int64
		if !s.IsVirtual() {
			rateDayCount, err = m.rates.CountRateDays(ctx, tariffs[i].ID, *s.SiteID, time.Time{})
			if err != nil {
				return sep2.TariffProfileList{}, err
			}
		}
		profiles = append(profiles, mapper.ToTariffProfile(mctx, s.DisplaySiteID, &tariffs[i], rateDayCount))
	}
	return mapper.ToTariffProfileList(mctx, s.DisplaySiteID, profiles, total), nil
}

// GetSiteTariff serves one tariff scoped to one site.
func (m *PricingManager) GetSiteTariff(ctx context.Context, claims scope.Claims, siteID, tariffID uint64) (sep2.TariffProfile, error) {
	s, err := scope.NewDeviceOrAggregatorScope(claims, siteID)
	if err != nil {
		return sep2.TariffProfile{}, err
	}
	mctx, err := m.config.MapCtx(ctx, time.Now().UTC())
	if err != nil {
		return sep2.TariffProfile{}, err
	}
	tariff, err := m.requireTariff(ctx, tariffID)
	if err != nil {
		return sep2.TariffProfile{}, err
	}

	var rateDayCount int64
	if !s.IsVirtual() {
		rateDayCount, err = m.rates.CountRateDays(ctx, tariffID, *s.SiteID, time.Time{})
		if err != nil {
			return sep2.TariffProfile{}, err
		}
	}
	return mapper.ToTariffProfile(mctx, s.DisplaySiteID, tariff, rateDayCount), nil
}

// ListRateComponents pages the virtual (day, pricing type) product. The
// page is cut in flattened units, so the day query fetches the covering
// day window and the mapper trims the edges.
func (m *PricingManager) ListRateComponents(ctx context.Context, claims scope.Claims, siteID, tariffID uint64, q ListQuery) (sep2.RateComponentList, error) {
	s, err := scope.NewSiteScope(claims, siteID)
	if err != nil {
		return sep2.RateComponentList{}, err
	}
	mctx, err := m.config.MapCtx(ctx, time.Now().UTC())
	if err != nil {
		return sep2.RateComponentList{}, err
	}
	if _, err := m.requireTariff(ctx, tariffID); err != nil {
		return sep2.RateComponentList{}, err
	}

	window := pricing.PageWindow(q.Start, q.Limit)
	totalDays, err := m.rates.CountRateDays(ctx, tariffID, s.SiteID, q.ChangedAfter)
	if err != nil {
		return sep2.RateComponentList{}, err
	}
	stats, err := m.rates.SelectRateDailyStats(ctx, tariffID, s.SiteID, q.ChangedAfter, window.DbStart, window.DbLimit)
	if err != nil {
		return sep2.RateComponentList{}, err
	}
	// A short fetch means the data ran out before the window did, so
	// there is no trailing overhang to trim.
	if len(stats) < window.DbLimit {
		window.TailSkip = 0
	}
	return mapper.ToRateComponentList(mctx, s.SiteID, tariffID, stats, window, totalDays)
}

// GetRateComponent serves one virtual (day, pricing type) slice, 404
// when no rate exists for that local day.
func (m *PricingManager) GetRateComponent(ctx context.Context, claims scope.Claims, siteID, tariffID uint64, day string, prt int) (sep2.RateComponent, error) {
	s, mctx, date, readingType, err := m.resolveSlice(ctx, claims, siteID, tariffID, day, prt)
	if err != nil {
		return sep2.RateComponent{}, err
	}
	intervalCount, err := m.rates.CountRatesForDay(ctx, tariffID, s.SiteID, day, time.Time{})
	if err != nil {
		return sep2.RateComponent{}, err
	}
	if intervalCount == 0 {
		return sep2.RateComponent{}, apperrors.NewNotFoundError("RateComponent not found")
	}
	return mapper.ToRateComponent(mctx, s.SiteID, tariffID, date, readingType, intervalCount)
}

// ListTimeTariffIntervals pages one day's stored rates for one pricing
// type.
func (m *PricingManager) ListTimeTariffIntervals(ctx context.Context, claims scope.Claims, siteID, tariffID uint64, day string, prt int, q ListQuery) (sep2.TimeTariffIntervalList, error) {
	s, mctx, date, readingType, err := m.resolveSlice(ctx, claims, siteID, tariffID, day, prt)
	if err != nil {
		return sep2.TimeTariffIntervalList{}, err
	}
	total, err := m.rates.CountRatesForDay(ctx, tariffID, s.SiteID, day, q.ChangedAfter)
	if err != nil {
		return sep2.TimeTariffIntervalList{}, err
	}
	rates, err := m.rates.SelectRatesForDay(ctx, tariffID, s.SiteID, day, q.ChangedAfter, q.Start, q.Limit)
	if err != nil {
		return sep2.TimeTariffIntervalList{}, err
	}

	intervals := make([]sep2.TimeTariffInterval, 0, len(rates))
	for i := range rates {
		tti, err := mapper.ToTimeTariffInterval(mctx, s.SiteID, &rates[i], readingType)
		if err != nil {
			return sep2.TimeTariffIntervalList{}, err
		}
		intervals = append(intervals, tti)
	}
	return mapper.ToTimeTariffIntervalList(mctx, s.SiteID, tariffID, date, readingType, intervals, total), nil
}

// GetTimeTariffInterval serves the rate starting at one local HH:MM.
func (m *PricingManager) GetTimeTariffInterval(ctx context.Context, claims scope.Claims, siteID, tariffID uint64, day string, prt int, timeOfDay string) (sep2.TimeTariffInterval, error) {
	s, mctx, _, readingType, err := m.resolveSlice(ctx, claims, siteID, tariffID, day, prt)
	if err != nil {
		return sep2.TimeTariffInterval{}, err
	}
	rate, err := m.rateAtTime(ctx, tariffID, s.SiteID, day, timeOfDay)
	if err != nil {
		return sep2.TimeTariffInterval{}, err
	}
	return mapper.ToTimeTariffInterval(mctx, s.SiteID, rate, readingType)
}

// ListConsumptionTariffIntervals serves the single element price list
// under one interval. The price is part of the path, and must match the
// stored rate for the addressed pricing type.
func (m *PricingManager) ListConsumptionTariffIntervals(ctx context.Context, claims scope.Claims, siteID, tariffID uint64, day string, prt int, timeOfDay string, price int64) (sep2.ConsumptionTariffIntervalList, error) {
	s, mctx, date, readingType, err := m.resolveSlice(ctx, claims, siteID, tariffID, day, prt)
	if err != nil {
		return sep2.ConsumptionTariffIntervalList{}, err
	}
	tod, err := m.requireRatePrice(ctx, tariffID, s.SiteID, day, timeOfDay, readingType, price)
	if err != nil {
		return sep2.ConsumptionTariffIntervalList{}, err
	}
	return mapper.ToConsumptionTariffIntervalList(mctx, s.SiteID, tariffID, date, readingType, tod, price), nil
}

// GetConsumptionTariffInterval serves the single price element itself.
func (m *PricingManager) GetConsumptionTariffInterval(ctx context.Context, claims scope.Claims, siteID, tariffID uint64, day string, prt int, timeOfDay string, price int64) (sep2.ConsumptionTariffInterval, error) {
	s, mctx, date, readingType, err := m.resolveSlice(ctx, claims, siteID, tariffID, day, prt)
	if err != nil {
		return sep2.ConsumptionTariffInterval{}, err
	}
	tod, err := m.requireRatePrice(ctx, tariffID, s.SiteID, day, timeOfDay, readingType, price)
	if err != nil {
		return sep2.ConsumptionTariffInterval{}, err
	}
	list := mapper.ToConsumptionTariffIntervalList(mctx, s.SiteID, tariffID, date, readingType, tod, price)
	interval := list.ConsumptionTariffIntervals[0]
	interval.Xmlns = sep2.NamespaceSep2
	return interval, nil
}

// resolveSlice narrows to a concrete site and validates the tariff, day
// and pricing type path segments.
func (m *PricingManager) resolveSlice(ctx context.Context, claims scope.Claims, siteID, tariffID uint64, day string, prt int) (scope.SiteScope, mapper.Ctx, time.Time, pricing.ReadingType, error) {
	s, err := scope.NewSiteScope(claims, siteID)
	if err != nil {
		return scope.SiteScope{}, mapper.Ctx{}, time.Time{}, 0, err
	}
	mctx, err := m.config.MapCtx(ctx, time.Now().UTC())
	if err != nil {
		return scope.SiteScope{}, mapper.Ctx{}, time.Time{}, 0, err
	}
	if _, err := m.requireTariff(ctx, tariffID); err != nil {
		return scope.SiteScope{}, mapper.Ctx{}, time.Time{}, 0, err
	}
	date, err := mapper.ParseLocalDay(day)
	if err != nil {
		return scope.SiteScope{}, mapper.Ctx{}, time.Time{}, 0, err
	}
	readingType, err := pricing.ParseReadingType(prt)
	if err != nil {
		return scope.SiteScope{}, mapper.Ctx{}, time.Time{}, 0, err
	}
	return s, mctx, date, readingType, nil
}

// rateAtTime fetches the rate starting at one local HH:MM, 404 when the
// segment does not parse or no rate starts then.
func (m *PricingManager) rateAtTime(ctx context.Context, tariffID, siteID uint64, day, timeOfDay string) (*models.TariffGeneratedRateModel, error) {
	tod, err := time.Parse(timeOfDayFormat, timeOfDay)
	if err != nil {
		return nil, apperrors.NewBadRequestError("interval time " + timeOfDay + " is not HH:MM")
	}
	minuteOfDay := int32(tod.Hour()*60 + tod.Minute())
	rate, err := m.rates.SelectRateForDayTime(ctx, tariffID, siteID, day, minuteOfDay)
	if err != nil {
		return nil, err
	}
	if rate == nil {
		return nil, apperrors.NewNotFoundError("TimeTariffInterval not found")
	}
	return rate, nil
}

// requireRatePrice checks the addressed price matches the stored rate
// for the pricing type, returning the parsed time of day.
func (m *PricingManager) requireRatePrice(ctx context.Context, tariffID, siteID uint64, day, timeOfDay string, prt pricing.ReadingType, price int64) (time.Time, error) {
	rate, err := m.rateAtTime(ctx, tariffID, siteID, day, timeOfDay)
	if err != nil {
		return time.Time{}, err
	}
	stored := pricing.Prices{
		ImportActive:   rate.ImportActivePrice,
		ExportActive:   rate.ExportActivePrice,
		ImportReactive: rate.ImportReactivePrice,
		ExportReactive: rate.ExportReactivePrice,
	}.Extract(prt)
	if stored != price {
		return time.Time{}, apperrors.NewNotFoundError("ConsumptionTariffInterval not found")
	}
	tod, _ := time.Parse(timeOfDayFormat, timeOfDay)
	return tod, nil
}

func (m *PricingManager) requireTariff(ctx context.Context, tariffID uint64) (*models.TariffModel, error) {
	tariff, err := m.tariffs.GetByID(ctx, tariffID)
	if err != nil {
		return nil, err
	}
	if tariff == nil {
		return nil, apperrors.NewNotFoundError("TariffProfile not found")
	}
	return tariff, nil
}
