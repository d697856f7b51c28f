package mapper

import (
	"fmt"

	"enverge/internal/domain/subscription"
	"enverge/internal/infrastructure/persistence/models"
	"enverge/internal/interfaces/dto/sep2"
	apperrors "enverge/internal/shared/errors"
)

// SubscribedResourceHref rebuilds the canonical href of a stored
// subscription target. Rate subscriptions deliberately point at the
// RateComponent list; their notifications name the day and reading type
// specific TimeTariffInterval lists instead. Clients rely on this shape.
func SubscribedResourceHref(ctx Ctx, sub *models.SubscriptionModel) (string, error) {
	switch subscription.ResourceType(sub.ResourceType) {
	case subscription.ResourceSite:
		if sub.ScopedSiteID == nil {
			return ctx.Hrefs.EndDeviceList(), nil
		}
		return ctx.Hrefs.EndDevice(*sub.ScopedSiteID), nil

	case subscription.ResourceDynamicOperatingEnvelope:
		if sub.ScopedSiteID == nil {
			return "", apperrors.NewNotificationError("envelope subscription has no scoped site")
		}
		return ctx.Hrefs.DoeDerControlList(*sub.ScopedSiteID), nil

	case subscription.ResourceTariffGeneratedRate:
		if sub.ScopedSiteID == nil || sub.ResourceID == nil {
			return "", apperrors.NewNotificationError("rate subscription has no scoped site or tariff")
		}
		return ctx.Hrefs.RateComponentList(*sub.ScopedSiteID, *sub.ResourceID), nil

	case subscription.ResourceReading:
		if sub.ScopedSiteID == nil || sub.ResourceID == nil {
			return "", apperrors.NewNotificationError("reading subscription has no scoped site or reading type")
		}
		return ctx.Hrefs.ReadingList(*sub.ScopedSiteID, *sub.ResourceID), nil

	default:
		return "", apperrors.NewNotificationError(
			fmt.Sprintf("resource type %d has no subscribable href", sub.ResourceType))
	}
}

// ToSubscription projects a stored subscription. The site in the href is
// the scope's display site, which may differ from the scoped site for
// aggregator wide subscriptions.
func ToSubscription(ctx Ctx, displaySiteID uint64, sub *models.SubscriptionModel) (sep2.Subscription, error) {
	resource, err := SubscribedResourceHref(ctx, sub)
	if err != nil {
		return sep2.Subscription{}, err
	}
	dto := sep2.Subscription{
		Xmlns:              sep2.NamespaceSep2,
		Href:               ctx.Hrefs.Subscription(displaySiteID, sub.ID),
		SubscribedResource: resource,
		Encoding:           0,
		Level:              "+S1",
		Limit:              sub.EntityLimit,
		NotificationURI:    sub.NotificationURI,
	}
	if len(sub.Conditions) > 0 {
		cond := sub.Conditions[0]
		dto.Condition = &sep2.SubscriptionCondition{
			AttributeIdentifier: cond.Attribute,
		}
		if cond.LowerThreshold != nil {
			dto.Condition.LowerThreshold = *cond.LowerThreshold
		}
		if cond.UpperThreshold != nil {
			dto.Condition.UpperThreshold = *cond.UpperThreshold
		}
	}
	return dto, nil
}

// ToSubscriptionList assembles a site's paged subscription list.
func ToSubscriptionList(ctx Ctx, displaySiteID uint64, subs []sep2.Subscription, total int64) sep2.SubscriptionList {
	items := make([]sep2.Subscription, len(subs))
	for i, s := range subs {
		s.Xmlns = ""
		items[i] = s
	}
	return sep2.SubscriptionList{
		Xmlns:         sep2.NamespaceSep2,
		Href:          ctx.Hrefs.SubscriptionList(displaySiteID),
		All:           int32(total),
		Results:       int32(len(items)),
		Subscriptions: items,
	}
}

// FromSubscription translates a posted subscription. The href grammar is
// strict and the notification host must be in the aggregator allowlist.
func FromSubscription(ctx Ctx, dto *sep2.Subscription, aggregatorID uint64, domains []string) (*models.SubscriptionModel, error) {
	parsed, err := subscription.ParseSubscribedResource(ctx.Hrefs.Prefix, dto.SubscribedResource)
	if err != nil {
		return nil, err
	}
	if err := subscription.ValidateNotificationHost(dto.NotificationURI, domains); err != nil {
		return nil, err
	}

	sub := &models.SubscriptionModel{
		SubscriptionFields: models.SubscriptionFields{
			AggregatorID:    aggregatorID,
			ResourceType:    int32(parsed.Resource),
			ResourceID:      parsed.ResourceID,
			ScopedSiteID:    parsed.ScopedSiteID,
			NotificationURI: dto.NotificationURI,
			EntityLimit:     dto.Limit,
		},
	}
	if dto.Condition != nil {
		lower := dto.Condition.LowerThreshold
		upper := dto.Condition.UpperThreshold
		sub.Conditions = []models.SubscriptionConditionModel{
			{
				Attribute:      dto.Condition.AttributeIdentifier,
				LowerThreshold: &lower,
				UpperThreshold: &upper,
			},
		}
	}
	return sub, nil
}

// ToNotification wraps a pre-serialised resource payload. subscribed and
// subURI are built by the batcher from its synthetic scope; inner is the
// payload's child XML with list attributes lifted into the wrapper.
func ToNotification(subscribed, subURI string, status int32, resource *sep2.NotificationResource) sep2.Notification {
	return sep2.Notification{
		Xmlns:              sep2.NamespaceSep2,
		XmlnsCsipAus:       sep2.NamespaceCsipAus,
		SubscribedResource: subscribed,
		Resource:           resource,
		Status:             status,
		SubscriptionURI:    subURI,
	}
}
