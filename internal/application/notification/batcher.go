// Package notification turns committed entity changes into outbound
// 2030.5 Notification documents. The batcher resolves a change check
// against the stored subscriptions and enqueues one transmit task per
// notification page; delivery is the worker's problem.
package notification

import (
	"bytes"
	"context"
	"encoding/xml"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"enverge/internal/application/mapper"
	"enverge/internal/domain/envelope"
	"enverge/internal/domain/ident"
	"enverge/internal/domain/pricing"
	"enverge/internal/domain/subscription"
	"enverge/internal/infrastructure/persistence/models"
	"enverge/internal/infrastructure/repository"
	"enverge/internal/infrastructure/tasks"
	"enverge/internal/interfaces/dto/sep2"
	"enverge/internal/shared/constants"
	apperrors "enverge/internal/shared/errors"
	"enverge/internal/shared/logger"
)

const xsiNamespace = "http://www.w3.org/2001/XMLSchema-instance"

// TransmitQueue is where assembled notifications go. Satisfied by
// tasks.Broker.
type TransmitQueue interface {
	EnqueueTransmit(ctx context.Context, task tasks.TransmitTask) error
}

// Batcher matches changed entities against subscriptions and assembles
// notification pages. One CheckChangedOrDeleted call handles one
// resource family at one trigger instant.
type Batcher struct {
	sites    *repository.SiteRepository
	does     *repository.DoeRepository
	rates    *repository.RateRepository
	readings *repository.ReadingRepository
	ders     *repository.DERRepository
	subs     *repository.SubscriptionRepository
	runtime  *repository.RuntimeConfigRepository
	queue    TransmitQueue
	hrefs    ident.HrefBuilder
	pen      uint32
	logger   logger.Interface
}

func NewBatcher(
	sites *repository.SiteRepository,
	does *repository.DoeRepository,
	rates *repository.RateRepository,
	readings *repository.ReadingRepository,
	ders *repository.DERRepository,
	subs *repository.SubscriptionRepository,
	runtime *repository.RuntimeConfigRepository,
	queue TransmitQueue,
	hrefs ident.HrefBuilder,
	pen uint32,
	log logger.Interface,
) *Batcher {
	return &Batcher{
		sites:    sites,
		does:     does,
		rates:    rates,
		readings: readings,
		ders:     ders,
		subs:     subs,
		runtime:  runtime,
		queue:    queue,
		hrefs:    hrefs,
		pen:      pen,
		logger:   log,
	}
}

// batch groups the candidates of one aggregator.
type batch struct {
	changed []subscription.Candidate
	deleted []subscription.Candidate
}

var emptyBatch = &batch{}

// CheckChangedOrDeleted fans the entities changed or deleted at the
// exact trigger instant out to their subscribers. Every subscription of
// the family is visited: one whose filtered entity list comes up empty
// still receives a single empty poll rate notification, so subscribers
// learn about configuration changes without any entity changing.
func (b *Batcher) CheckChangedOrDeleted(ctx context.Context, resource subscription.ResourceType, ts time.Time) error {
	mctx, err := b.mapCtx(ctx, ts)
	if err != nil {
		return err
	}

	batches, err := b.fetchBatches(ctx, resource, ts)
	if err != nil {
		return err
	}

	subs, err := b.subs.ActiveByResourceType(ctx, int32(resource))
	if err != nil {
		return err
	}
	sort.Slice(subs, func(i, j int) bool {
		if subs[i].AggregatorID != subs[j].AggregatorID {
			return subs[i].AggregatorID < subs[j].AggregatorID
		}
		return subs[i].ID < subs[j].ID
	})

	for i := range subs {
		sub := &subs[i]
		bat := batches[sub.AggregatorID]
		if bat == nil {
			bat = emptyBatch
		}
		b.processSubscription(ctx, mctx, resource, sub, bat)
	}
	return nil
}

func (b *Batcher) mapCtx(ctx context.Context, ts time.Time) (mapper.Ctx, error) {
	cfg, err := b.runtime.Get(ctx)
	if err != nil {
		return mapper.Ctx{}, err
	}
	return mapper.Ctx{
		Hrefs: b.hrefs,
		PEN:   b.pen,
		Now:   ts,
		Opts: mapper.RuntimeOptions{
			SiteControlPow10:    cfg.SiteControlPow10Encoding,
			DcapPollRate:        cfg.DcapPollRateSeconds,
			EdevlPollRate:       cfg.EdevlPollRateSeconds,
			FsalPollRate:        cfg.FsalPollRateSeconds,
			DerplPollRate:       cfg.DerplPollRateSeconds,
			DerlPollRate:        cfg.DerlPollRateSeconds,
			MupPostRate:         cfg.MupPostRateSeconds,
			DisableRegistration: cfg.DisableEdevRegistration,
		},
	}, nil
}

// processSubscription emits every notification one subscription earns
// from one aggregator batch. Failures are logged and dropped; one bad
// subscription never blocks the rest of the run.
func (b *Batcher) processSubscription(ctx context.Context, mctx mapper.Ctx, resource subscription.ResourceType, sub *models.SubscriptionModel, bat *batch) {
	domainSub := domainSubscription(sub)
	if domainSub.Resource != resource {
		return
	}

	if subscription.IsNonListResource(resource) {
		matched := subscription.EntitiesServiced(domainSub, resource, bat.changed)
		for _, c := range matched {
			payload, href, err := b.renderSingleton(mctx, c)
			if err != nil {
				b.logger.Errorw("failed to render notification entity",
					"subscription_id", sub.ID, "resource", resource.String(), "error", err)
				continue
			}
			b.dispatch(ctx, sub, href, sep2.NotificationStatusDefault, payload)
		}
		return
	}

	subscribed, err := mapper.SubscribedResourceHref(mctx, sub)
	if err != nil {
		b.logger.Errorw("subscription has no notifiable href",
			"subscription_id", sub.ID, "error", err)
		return
	}

	matchedChanged := subscription.EntitiesServiced(domainSub, resource, bat.changed)
	matchedDeleted := subscription.EntitiesServiced(domainSub, resource, bat.deleted)
	if len(matchedChanged)+len(matchedDeleted) == 0 {
		b.dispatch(ctx, sub, subscribed, sep2.NotificationStatusDefault,
			b.emptyListPayload(mctx, resource, subscribed))
		return
	}

	if resource == subscription.ResourceTariffGeneratedRate {
		b.emitRatePages(ctx, mctx, sub, matchedChanged, matchedDeleted)
		return
	}

	emit := func(matched []subscription.Candidate, status int32) {
		for _, page := range subscription.Pages(resource, matched, sub.EntityLimit) {
			payload, err := b.renderListPage(mctx, resource, subscribed, page, 0)
			if err != nil {
				b.logger.Errorw("failed to render notification page",
					"subscription_id", sub.ID, "resource", resource.String(), "error", err)
				continue
			}
			b.dispatch(ctx, sub, subscribed, status, payload)
		}
	}
	emit(matchedChanged, sep2.NotificationStatusDefault)
	emit(matchedDeleted, sep2.NotificationStatusDeleted)
}

// emitRatePages fans matched rates out per (local day, pricing reading
// type). Each notification references the day and reading type specific
// TimeTariffInterval list, never mixing days in one page; the
// RateComponent list href appears only on the Subscription resource
// itself.
func (b *Batcher) emitRatePages(ctx context.Context, mctx mapper.Ctx, sub *models.SubscriptionModel, matchedChanged, matchedDeleted []subscription.Candidate) {
	if sub.ScopedSiteID == nil || sub.ResourceID == nil {
		b.logger.Errorw("rate subscription has no scoped site or tariff", "subscription_id", sub.ID)
		return
	}
	siteID, tariffID := *sub.ScopedSiteID, *sub.ResourceID

	emit := func(matched []subscription.Candidate, status int32) {
		for _, localDay := range rateDays(matched) {
			day, err := mapper.ParseLocalDay(localDay)
			if err != nil {
				b.logger.Errorw("rate has unparseable local day",
					"subscription_id", sub.ID, "local_day", localDay, "error", err)
				continue
			}
			dayCandidates := ratesForDay(matched, localDay)
			for _, prt := range pricing.AllReadingTypes {
				href := b.hrefs.TimeTariffIntervalList(siteID, tariffID, day, int(prt))
				for _, page := range subscription.Pages(subscription.ResourceTariffGeneratedRate, dayCandidates, sub.EntityLimit) {
					payload, err := b.renderListPage(mctx, subscription.ResourceTariffGeneratedRate, href, page, prt)
					if err != nil {
						b.logger.Errorw("failed to render rate notification page",
							"subscription_id", sub.ID, "local_day", localDay, "error", err)
						continue
					}
					b.dispatch(ctx, sub, href, status, payload)
				}
			}
		}
	}
	emit(matchedChanged, sep2.NotificationStatusDefault)
	emit(matchedDeleted, sep2.NotificationStatusDeleted)
}

// rateDays collects the distinct local days of matched rate candidates
// in ascending order.
func rateDays(matched []subscription.Candidate) []string {
	seen := make(map[string]bool)
	days := make([]string, 0, 1)
	for _, c := range matched {
		rate, ok := c.Entity.(*models.TariffGeneratedRateModel)
		if !ok {
			continue
		}
		if !seen[rate.LocalStartDay] {
			seen[rate.LocalStartDay] = true
			days = append(days, rate.LocalStartDay)
		}
	}
	sort.Strings(days)
	return days
}

func ratesForDay(matched []subscription.Candidate, localDay string) []subscription.Candidate {
	out := make([]subscription.Candidate, 0, len(matched))
	for _, c := range matched {
		if rate, ok := c.Entity.(*models.TariffGeneratedRateModel); ok && rate.LocalStartDay == localDay {
			out = append(out, c)
		}
	}
	return out
}

// dispatch wraps a payload in the Notification envelope and enqueues
// its transmit task.
func (b *Batcher) dispatch(ctx context.Context, sub *models.SubscriptionModel, subscribed string, status int32, payload *sep2.NotificationResource) {
	displaySiteID := constants.VirtualEndDeviceSiteID
	if sub.ScopedSiteID != nil {
		displaySiteID = *sub.ScopedSiteID
	}
	subURI := b.hrefs.Subscription(displaySiteID, sub.ID)

	notif := mapper.ToNotification(subscribed, subURI, status, payload)
	encoded, err := xml.Marshal(notif)
	if err != nil {
		b.logger.Errorw("failed to marshal notification", "subscription_id", sub.ID, "error", err)
		return
	}

	task := tasks.TransmitTask{
		RemoteURI:        sub.NotificationURI,
		XML:              append([]byte(xml.Header), encoded...),
		NotificationID:   uuid.NewString(),
		SubscriptionHref: subURI,
		SubscriptionID:   sub.ID,
	}
	if err := b.queue.EnqueueTransmit(ctx, task); err != nil {
		b.logger.Errorw("failed to enqueue notification",
			"subscription_id", sub.ID, "remote_uri", sub.NotificationURI, "error", err)
	}
}

// emptyListPayload is the list metadata notification a subscription
// receives when its filtered entity list is empty: zero results plus the
// family poll rate.
func (b *Batcher) emptyListPayload(mctx mapper.Ctx, resource subscription.ResourceType, href string) *sep2.NotificationResource {
	zero := int32(0)
	return &sep2.NotificationResource{
		XsiType:  listXsiType(resource),
		XmlnsXsi: xsiNamespace,
		Href:     href,
		All:      &zero,
		Results:  &zero,
		PollRate: familyPollRate(mctx.Opts, resource),
	}
}

func listXsiType(resource subscription.ResourceType) string {
	switch resource {
	case subscription.ResourceSite:
		return "EndDeviceList"
	case subscription.ResourceDynamicOperatingEnvelope:
		return "DERControlList"
	case subscription.ResourceTariffGeneratedRate:
		return "TimeTariffIntervalList"
	case subscription.ResourceReading:
		return "ReadingList"
	default:
		return ""
	}
}

func familyPollRate(opts mapper.RuntimeOptions, resource subscription.ResourceType) *int32 {
	var rate int32
	switch resource {
	case subscription.ResourceSite:
		rate = opts.EdevlPollRate
	case subscription.ResourceDynamicOperatingEnvelope:
		rate = opts.DerlPollRate
	case subscription.ResourceReading:
		rate = opts.MupPostRate
	default:
		return nil
	}
	return &rate
}

// renderListPage assembles one notification page as pre-serialised
// child elements. prt is only meaningful for rate pages, which fan out
// once per pricing reading type.
func (b *Batcher) renderListPage(mctx mapper.Ctx, resource subscription.ResourceType, href string, page []subscription.Candidate, prt pricing.ReadingType) (*sep2.NotificationResource, error) {
	var buf bytes.Buffer
	appendItem := func(item any) error {
		encoded, err := xml.Marshal(item)
		if err != nil {
			return err
		}
		buf.Write(encoded)
		return nil
	}

	for _, c := range page {
		switch entity := c.Entity.(type) {
		case *models.SiteModel:
			dto := mapper.ToEndDevice(mctx, entity)
			dto.Xmlns = ""
			if err := appendItem(dto); err != nil {
				return nil, err
			}
		case envelope.DoeRecord:
			dto := mapper.ToDerControl(mctx, c.SiteID, entity)
			dto.Xmlns = ""
			dto.XmlnsCsipAus = ""
			if err := appendItem(dto); err != nil {
				return nil, err
			}
		case *models.TariffGeneratedRateModel:
			dto, err := mapper.ToTimeTariffInterval(mctx, c.SiteID, entity, prt)
			if err != nil {
				return nil, err
			}
			dto.Xmlns = ""
			if err := appendItem(dto); err != nil {
				return nil, err
			}
		case *models.SiteReadingModel:
			dto := mapper.ToReading(entity)
			dto.Xmlns = ""
			if err := appendItem(dto); err != nil {
				return nil, err
			}
		}
	}

	count := int32(len(page))
	return &sep2.NotificationResource{
		XsiType:  listXsiType(resource),
		XmlnsXsi: xsiNamespace,
		Href:     href,
		All:      &count,
		Results:  &count,
		Inner:    buf.Bytes(),
	}, nil
}

// renderSingleton assembles a non-list payload. The outer element of
// the marshalled entity is stripped; its attributes are carried on the
// Resource wrapper instead.
func (b *Batcher) renderSingleton(mctx mapper.Ctx, c subscription.Candidate) (*sep2.NotificationResource, string, error) {
	var (
		dto     any
		xsiType string
		href    string
	)
	switch entity := c.Entity.(type) {
	case repository.ChangedDerRating:
		d := mapper.ToDerCapability(mctx, entity.SiteID, entity.SiteDERID, &entity.SiteDERRatingModel)
		d.Xmlns = ""
		dto, xsiType, href = d, "DERCapability", d.Href
	case repository.ChangedDerSetting:
		d := mapper.ToDerSettings(mctx, entity.SiteID, entity.SiteDERID, &entity.SiteDERSettingModel)
		d.Xmlns = ""
		dto, xsiType, href = d, "DERSettings", d.Href
	case repository.ChangedDerAvailability:
		d := mapper.ToDerAvailability(mctx, entity.SiteID, entity.SiteDERID, &entity.SiteDERAvailabilityModel)
		d.Xmlns = ""
		dto, xsiType, href = d, "DERAvailability", d.Href
	case repository.ChangedDerStatus:
		d := mapper.ToDerStatus(mctx, entity.SiteID, entity.SiteDERID, &entity.SiteDERStatusModel)
		d.Xmlns = ""
		dto, xsiType, href = d, "DERStatus", d.Href
	case repository.ChangedDefaultSiteControl:
		d := mapper.ToDefaultDerControl(mctx, entity.SiteID, constants.LegacySiteControlGroupID, mapper.DefaultControlValues{
			ImportLimitActiveWatts:     entity.ImportLimitActiveWatts,
			ExportLimitWatts:           entity.ExportLimitActiveWatts,
			GenerationLimitActiveWatts: entity.GenerationLimitActiveWatts,
			LoadLimitActiveWatts:       entity.LoadLimitActiveWatts,
			RampRatePercentPerSecond:   entity.RampRatePercentPerSecond,
		})
		d.Xmlns = ""
		d.XmlnsCsipAus = ""
		dto, xsiType, href = d, "DefaultDERControl", d.Href
	default:
		return nil, "", apperrors.NewNotificationError(
			fmt.Sprintf("no singleton renderer for entity %T", c.Entity))
	}

	encoded, err := xml.Marshal(dto)
	if err != nil {
		return nil, "", err
	}
	return &sep2.NotificationResource{
		XsiType:  xsiType,
		XmlnsXsi: xsiNamespace,
		Href:     href,
		Inner:    innerXML(encoded),
	}, href, nil
}

// innerXML strips the outer element of a marshalled document so the
// children nest inside the Resource wrapper.
func innerXML(encoded []byte) []byte {
	open := bytes.IndexByte(encoded, '>')
	last := bytes.LastIndexByte(encoded, '<')
	if open < 0 || last <= open {
		return nil
	}
	return encoded[open+1 : last]
}

func domainSubscription(m *models.SubscriptionModel) subscription.Subscription {
	s := subscription.Subscription{
		ID:              m.ID,
		AggregatorID:    m.AggregatorID,
		Resource:        subscription.ResourceType(m.ResourceType),
		ResourceID:      m.ResourceID,
		ScopedSiteID:    m.ScopedSiteID,
		NotificationURI: m.NotificationURI,
		EntityLimit:     m.EntityLimit,
	}
	if len(m.Conditions) > 0 {
		cond := m.Conditions[0]
		s.Condition = &subscription.Condition{
			Attribute: subscription.ConditionAttribute(cond.Attribute),
			Lower:     cond.LowerThreshold,
			Upper:     cond.UpperThreshold,
		}
	}
	return s
}

// fetchBatches loads the entities of the family changed or deleted at
// the exact trigger instant, grouped by owning aggregator.
func (b *Batcher) fetchBatches(ctx context.Context, resource subscription.ResourceType, ts time.Time) (map[uint64]*batch, error) {
	batches := make(map[uint64]*batch)
	add := func(aggID uint64, deleted bool, c subscription.Candidate) {
		bat, ok := batches[aggID]
		if !ok {
			bat = &batch{}
			batches[aggID] = bat
		}
		if deleted {
			bat.deleted = append(bat.deleted, c)
		} else {
			bat.changed = append(bat.changed, c)
		}
	}

	switch resource {
	case subscription.ResourceSite:
		changed, err := b.sites.SelectSitesChangedAt(ctx, ts)
		if err != nil {
			return nil, err
		}
		for i := range changed {
			site := &changed[i]
			add(site.AggregatorID, false, subscription.Candidate{Entity: site, SiteID: site.ID, FilterID: site.ID})
		}
		deleted, err := b.sites.SelectSitesDeletedAt(ctx, ts)
		if err != nil {
			return nil, err
		}
		for i := range deleted {
			site := &models.SiteModel{ID: deleted[i].ID, SiteFields: deleted[i].SiteFields}
			add(site.AggregatorID, true, subscription.Candidate{Entity: site, SiteID: site.ID, FilterID: site.ID})
		}

	case subscription.ResourceDynamicOperatingEnvelope:
		changed, err := b.does.SelectDoesChangedAt(ctx, ts)
		if err != nil {
			return nil, err
		}
		for _, row := range changed {
			add(row.AggregatorID, false, subscription.Candidate{Entity: row.Record(), SiteID: row.SiteID, FilterID: row.SiteID})
		}
		deleted, err := b.does.SelectDoesDeletedAt(ctx, ts)
		if err != nil {
			return nil, err
		}
		for _, row := range deleted {
			add(row.AggregatorID, true, subscription.Candidate{Entity: row.Record(), SiteID: row.SiteID, FilterID: row.SiteID})
		}

	case subscription.ResourceTariffGeneratedRate:
		changed, err := b.rates.SelectRatesChangedAt(ctx, ts)
		if err != nil {
			return nil, err
		}
		for i := range changed {
			row := &changed[i]
			add(row.AggregatorID, false, subscription.Candidate{
				Entity: &row.TariffGeneratedRateModel, SiteID: row.SiteID, FilterID: row.TariffID,
			})
		}
		deleted, err := b.rates.SelectRatesDeletedAt(ctx, ts)
		if err != nil {
			return nil, err
		}
		for i := range deleted {
			row := &deleted[i]
			rate := &models.TariffGeneratedRateModel{ID: row.ID, TariffGeneratedRateFields: row.TariffGeneratedRateFields}
			add(row.AggregatorID, true, subscription.Candidate{Entity: rate, SiteID: rate.SiteID, FilterID: rate.TariffID})
		}

	case subscription.ResourceReading:
		changed, err := b.readings.SelectReadingsChangedAt(ctx, ts)
		if err != nil {
			return nil, err
		}
		for i := range changed {
			row := &changed[i]
			value := row.Value
			add(row.AggregatorID, false, subscription.Candidate{
				Entity: &row.SiteReadingModel, SiteID: row.SiteID, FilterID: row.SiteReadingTypeID, ReadingValue: &value,
			})
		}

	case subscription.ResourceSiteDERRating:
		changed, err := b.ders.SelectRatingsChangedAt(ctx, ts)
		if err != nil {
			return nil, err
		}
		for _, row := range changed {
			add(row.AggregatorID, false, subscription.Candidate{Entity: row, SiteID: row.SiteID, FilterID: row.SiteID})
		}

	case subscription.ResourceSiteDERSetting:
		changed, err := b.ders.SelectSettingsChangedAt(ctx, ts)
		if err != nil {
			return nil, err
		}
		for _, row := range changed {
			add(row.AggregatorID, false, subscription.Candidate{Entity: row, SiteID: row.SiteID, FilterID: row.SiteID})
		}

	case subscription.ResourceSiteDERAvailability:
		changed, err := b.ders.SelectAvailabilitiesChangedAt(ctx, ts)
		if err != nil {
			return nil, err
		}
		for _, row := range changed {
			add(row.AggregatorID, false, subscription.Candidate{Entity: row, SiteID: row.SiteID, FilterID: row.SiteID})
		}

	case subscription.ResourceSiteDERStatus:
		changed, err := b.ders.SelectStatusesChangedAt(ctx, ts)
		if err != nil {
			return nil, err
		}
		for _, row := range changed {
			add(row.AggregatorID, false, subscription.Candidate{Entity: row, SiteID: row.SiteID, FilterID: row.SiteID})
		}

	case subscription.ResourceDefaultSiteControl:
		changed, err := b.sites.SelectDefaultSiteControlsChangedAt(ctx, ts)
		if err != nil {
			return nil, err
		}
		for _, row := range changed {
			add(row.AggregatorID, false, subscription.Candidate{Entity: row, SiteID: row.SiteID, FilterID: row.SiteID})
		}
	}

	return batches, nil
}
