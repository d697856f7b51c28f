package manager

import (
	"context"
	"time"

	"enverge/internal/application/mapper"
	"enverge/internal/domain/ident"
	"enverge/internal/domain/scope"
	"enverge/internal/infrastructure/persistence/models"
	"enverge/internal/infrastructure/repository"
	"enverge/internal/interfaces/dto/sep2"
	apperrors "enverge/internal/shared/errors"
	"enverge/internal/shared/logger"
)

// SubscriptionManager serves the per-site subscription surface.
// Subscriptions are an aggregator-only feature; the virtual end device
// carries the aggregator wide ones.
type SubscriptionManager struct {
	subs        *repository.SubscriptionRepository
	aggregators *repository.AggregatorRepository
	config      *ConfigManager
	hrefs       ident.HrefBuilder
	logger      logger.Interface
}

func NewSubscriptionManager(subs *repository.SubscriptionRepository, aggregators *repository.AggregatorRepository, config *ConfigManager, hrefs ident.HrefBuilder, log logger.Interface) *SubscriptionManager {
	return &SubscriptionManager{
		subs:        subs,
		aggregators: aggregators,
		config:      config,
		hrefs:       hrefs,
		logger:      log,
	}
}

// List pages a site's subscriptions. Under the virtual end device the
// list holds the aggregator wide subscriptions instead.
func (m *SubscriptionManager) List(ctx context.Context, claims scope.Claims, siteID uint64, q ListQuery) (sep2.SubscriptionList, error) {
	s, err := scope.NewAggregatorScope(claims, siteID)
	if err != nil {
		return sep2.SubscriptionList{}, err
	}
	mctx, err := m.config.MapCtx(ctx, time.Now().UTC())
	if err != nil {
		return sep2.SubscriptionList{}, err
	}

	var (
		total int64
		rows  []models.SubscriptionModel
	)
	if s.IsVirtual() {
		total, err = m.subs.CountAggregatorWide(ctx, s.AggregatorID, q.ChangedAfter)
		if err == nil {
			rows, err = m.subs.ListAggregatorWide(ctx, s.AggregatorID, q.ChangedAfter, q.Start, q.Limit)
		}
	} else {
		total, err = m.subs.CountForSite(ctx, s.AggregatorID, *s.SiteID, q.ChangedAfter)
		if err == nil {
			rows, err = m.subs.ListForSite(ctx, s.AggregatorID, *s.SiteID, q.ChangedAfter, q.Start, q.Limit)
		}
	}
	if err != nil {
		return sep2.SubscriptionList{}, err
	}

	subs := make([]sep2.Subscription, 0, len(rows))
	for i := range rows {
		dto, err := mapper.ToSubscription(mctx, s.DisplaySiteID, &rows[i])
		if err != nil {
			return sep2.SubscriptionList{}, err
		}
		subs = append(subs, dto)
	}
	return mapper.ToSubscriptionList(mctx, s.DisplaySiteID, subs, total), nil
}

// Get serves one subscription.
func (m *SubscriptionManager) Get(ctx context.Context, claims scope.Claims, siteID, subID uint64) (sep2.Subscription, error) {
	s, err := scope.NewAggregatorScope(claims, siteID)
	if err != nil {
		return sep2.Subscription{}, err
	}
	mctx, err := m.config.MapCtx(ctx, time.Now().UTC())
	if err != nil {
		return sep2.Subscription{}, err
	}
	sub, err := m.subs.GetByID(ctx, subID, s.AggregatorID, s.SiteID)
	if err != nil {
		return sep2.Subscription{}, err
	}
	if sub == nil {
		return sep2.Subscription{}, apperrors.NewNotFoundError("Subscription not found")
	}
	return mapper.ToSubscription(mctx, s.DisplaySiteID, sub)
}

// Create stores a posted subscription. The subscribedResource href must
// match one of the canonical templates and resolve inside the requested
// site; the notification host must be on the aggregator's allowlist.
func (m *SubscriptionManager) Create(ctx context.Context, claims scope.Claims, siteID uint64, dto *sep2.Subscription) (string, error) {
	s, err := scope.NewAggregatorScope(claims, siteID)
	if err != nil {
		return "", err
	}
	mctx, err := m.config.MapCtx(ctx, time.Now().UTC())
	if err != nil {
		return "", err
	}
	domains, err := m.aggregators.Domains(ctx, s.AggregatorID)
	if err != nil {
		return "", err
	}

	sub, err := mapper.FromSubscription(mctx, dto, s.AggregatorID, domains)
	if err != nil {
		return "", err
	}
	if !scopedSiteMatches(sub.ScopedSiteID, s.SiteID) {
		return "", apperrors.NewBadRequestError(
			"subscribedResource is outside the EndDevice the subscription is posted to")
	}
	if err := m.subs.Create(ctx, sub, time.Now().UTC()); err != nil {
		return "", err
	}
	return m.hrefs.Subscription(s.DisplaySiteID, sub.ID), nil
}

// Delete removes a subscription.
func (m *SubscriptionManager) Delete(ctx context.Context, claims scope.Claims, siteID, subID uint64) error {
	s, err := scope.NewAggregatorScope(claims, siteID)
	if err != nil {
		return err
	}
	deleted, err := m.subs.Delete(ctx, subID, s.AggregatorID, s.SiteID, time.Now().UTC())
	if err != nil {
		return err
	}
	if !deleted {
		return apperrors.NewNotFoundError("Subscription not found")
	}
	return nil
}

// scopedSiteMatches checks the parsed target site against the list the
// subscription was posted under: aggregator wide targets belong to the
// virtual end device, site scoped targets to their own site's list.
func scopedSiteMatches(target, requested *uint64) bool {
	if target == nil || requested == nil {
		return target == nil && requested == nil
	}
	return *target == *requested
}
