package manager

import (
	"context"
	"time"

	"enverge/internal/application/mapper"
	"enverge/internal/domain/scope"
	"enverge/internal/domain/subscription"
	"enverge/internal/infrastructure/persistence/models"
	"enverge/internal/infrastructure/repository"
	"enverge/internal/interfaces/dto/sep2"
	apperrors "enverge/internal/shared/errors"
	"enverge/internal/shared/logger"
)

// DERManager serves the DER tree: the one-per-site DER record and its
// capability, settings, availability and status children.
type DERManager struct {
	sites    *repository.SiteRepository
	ders     *repository.DERRepository
	config   *ConfigManager
	notifier ChangeNotifier
	logger   logger.Interface
}

func NewDERManager(sites *repository.SiteRepository, ders *repository.DERRepository, config *ConfigManager, notifier ChangeNotifier, log logger.Interface) *DERManager {
	return &DERManager{
		sites:    sites,
		ders:     ders,
		config:   config,
		notifier: notifier,
		logger:   log,
	}
}

// List pages a site's DERs. The singleton DER row is created on first
// access so clients can PUT child records without a separate create.
// The virtual end device has no DERs.
func (m *DERManager) List(ctx context.Context, claims scope.Claims, siteID uint64, q ListQuery) (sep2.DERList, error) {
	s, err := scope.NewDeviceOrAggregatorScope(claims, siteID)
	if err != nil {
		return sep2.DERList{}, err
	}
	mctx, err := m.config.MapCtx(ctx, time.Now().UTC())
	if err != nil {
		return sep2.DERList{}, err
	}
	if s.IsVirtual() {
		return mapper.ToDerList(mctx, s.DisplaySiteID, nil), nil
	}

	if err := m.requireSite(ctx, s.AggregatorID, *s.SiteID); err != nil {
		return sep2.DERList{}, err
	}
	der, err := m.ders.GetOrCreateSiteDER(ctx, *s.SiteID, time.Now().UTC())
	if err != nil {
		return sep2.DERList{}, err
	}

	ders := []models.SiteDERModel{*der}
	if q.Start > 0 || q.Limit < 1 || der.ChangedTime.Before(q.ChangedAfter) {
		ders = nil
	}
	return mapper.ToDerList(mctx, *s.SiteID, ders), nil
}

// Get serves one DER resource.
func (m *DERManager) Get(ctx context.Context, claims scope.Claims, siteID, derID uint64) (sep2.DER, error) {
	s, mctx, der, err := m.resolve(ctx, claims, siteID, derID)
	if err != nil {
		return sep2.DER{}, err
	}
	return mapper.ToDer(mctx, s.SiteID, der.ID), nil
}

// GetCapability serves the DERCapability child, 404 until first PUT.
func (m *DERManager) GetCapability(ctx context.Context, claims scope.Claims, siteID, derID uint64) (sep2.DERCapability, error) {
	s, mctx, der, err := m.resolve(ctx, claims, siteID, derID)
	if err != nil {
		return sep2.DERCapability{}, err
	}
	rating, err := m.ders.GetRating(ctx, der.ID)
	if err != nil {
		return sep2.DERCapability{}, err
	}
	if rating == nil {
		return sep2.DERCapability{}, apperrors.NewNotFoundError("DERCapability not found")
	}
	return mapper.ToDerCapability(mctx, s.SiteID, der.ID, rating), nil
}

// PutCapability replaces the DERCapability child.
func (m *DERManager) PutCapability(ctx context.Context, claims scope.Claims, siteID, derID uint64, dto *sep2.DERCapability) error {
	_, _, der, err := m.resolve(ctx, claims, siteID, derID)
	if err != nil {
		return err
	}
	rating, err := mapper.FromDerCapability(dto, der.ID)
	if err != nil {
		return err
	}
	now := time.Now().UTC()
	if err := m.ders.UpsertRating(ctx, rating, now); err != nil {
		return err
	}
	fireCheck(m.notifier, m.logger, subscription.ResourceSiteDERRating, now)
	return nil
}

// GetSettings serves the DERSettings child, 404 until first PUT.
func (m *DERManager) GetSettings(ctx context.Context, claims scope.Claims, siteID, derID uint64) (sep2.DERSettings, error) {
	s, mctx, der, err := m.resolve(ctx, claims, siteID, derID)
	if err != nil {
		return sep2.DERSettings{}, err
	}
	setting, err := m.ders.GetSetting(ctx, der.ID)
	if err != nil {
		return sep2.DERSettings{}, err
	}
	if setting == nil {
		return sep2.DERSettings{}, apperrors.NewNotFoundError("DERSettings not found")
	}
	return mapper.ToDerSettings(mctx, s.SiteID, der.ID, setting), nil
}

// PutSettings replaces the DERSettings child.
func (m *DERManager) PutSettings(ctx context.Context, claims scope.Claims, siteID, derID uint64, dto *sep2.DERSettings) error {
	_, _, der, err := m.resolve(ctx, claims, siteID, derID)
	if err != nil {
		return err
	}
	setting, err := mapper.FromDerSettings(dto, der.ID)
	if err != nil {
		return err
	}
	now := time.Now().UTC()
	if err := m.ders.UpsertSetting(ctx, setting, now); err != nil {
		return err
	}
	fireCheck(m.notifier, m.logger, subscription.ResourceSiteDERSetting, now)
	return nil
}

// GetAvailability serves the DERAvailability child, 404 until first PUT.
func (m *DERManager) GetAvailability(ctx context.Context, claims scope.Claims, siteID, derID uint64) (sep2.DERAvailability, error) {
	s, mctx, der, err := m.resolve(ctx, claims, siteID, derID)
	if err != nil {
		return sep2.DERAvailability{}, err
	}
	avail, err := m.ders.GetAvailability(ctx, der.ID)
	if err != nil {
		return sep2.DERAvailability{}, err
	}
	if avail == nil {
		return sep2.DERAvailability{}, apperrors.NewNotFoundError("DERAvailability not found")
	}
	return mapper.ToDerAvailability(mctx, s.SiteID, der.ID, avail), nil
}

// PutAvailability replaces the DERAvailability child.
func (m *DERManager) PutAvailability(ctx context.Context, claims scope.Claims, siteID, derID uint64, dto *sep2.DERAvailability) error {
	_, _, der, err := m.resolve(ctx, claims, siteID, derID)
	if err != nil {
		return err
	}
	avail, err := mapper.FromDerAvailability(dto, der.ID)
	if err != nil {
		return err
	}
	now := time.Now().UTC()
	if err := m.ders.UpsertAvailability(ctx, avail, now); err != nil {
		return err
	}
	fireCheck(m.notifier, m.logger, subscription.ResourceSiteDERAvailability, now)
	return nil
}

// GetStatus serves the DERStatus child, 404 until first PUT.
func (m *DERManager) GetStatus(ctx context.Context, claims scope.Claims, siteID, derID uint64) (sep2.DERStatus, error) {
	s, mctx, der, err := m.resolve(ctx, claims, siteID, derID)
	if err != nil {
		return sep2.DERStatus{}, err
	}
	status, err := m.ders.GetStatus(ctx, der.ID)
	if err != nil {
		return sep2.DERStatus{}, err
	}
	if status == nil {
		return sep2.DERStatus{}, apperrors.NewNotFoundError("DERStatus not found")
	}
	return mapper.ToDerStatus(mctx, s.SiteID, der.ID, status), nil
}

// PutStatus replaces the DERStatus child.
func (m *DERManager) PutStatus(ctx context.Context, claims scope.Claims, siteID, derID uint64, dto *sep2.DERStatus) error {
	_, _, der, err := m.resolve(ctx, claims, siteID, derID)
	if err != nil {
		return err
	}
	status, err := mapper.FromDerStatus(dto, der.ID)
	if err != nil {
		return err
	}
	now := time.Now().UTC()
	if err := m.ders.UpsertStatus(ctx, status, now); err != nil {
		return err
	}
	fireCheck(m.notifier, m.logger, subscription.ResourceSiteDERStatus, now)
	return nil
}

// resolve narrows to a concrete site and checks the der id addresses
// its singleton DER row.
func (m *DERManager) resolve(ctx context.Context, claims scope.Claims, siteID, derID uint64) (scope.SiteScope, mapper.Ctx, *models.SiteDERModel, error) {
	s, err := scope.NewSiteScope(claims, siteID)
	if err != nil {
		return scope.SiteScope{}, mapper.Ctx{}, nil, err
	}
	mctx, err := m.config.MapCtx(ctx, time.Now().UTC())
	if err != nil {
		return scope.SiteScope{}, mapper.Ctx{}, nil, err
	}
	if err := m.requireSite(ctx, s.AggregatorID, s.SiteID); err != nil {
		return scope.SiteScope{}, mapper.Ctx{}, nil, err
	}
	der, err := m.ders.GetSiteDER(ctx, s.SiteID)
	if err != nil {
		return scope.SiteScope{}, mapper.Ctx{}, nil, err
	}
	if der == nil || der.ID != derID {
		return scope.SiteScope{}, mapper.Ctx{}, nil, apperrors.NewNotFoundError("DER not found")
	}
	return s, mctx, der, nil
}

func (m *DERManager) requireSite(ctx context.Context, aggregatorID, siteID uint64) error {
	site, err := m.sites.GetByID(ctx, siteID, aggregatorID)
	if err != nil {
		return err
	}
	if site == nil {
		return apperrors.NewNotFoundError("EndDevice not found")
	}
	return nil
}
