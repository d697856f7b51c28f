package manager

import (
	"context"
	"time"

	"enverge/internal/application/mapper"
	"enverge/internal/domain/ident"
	"enverge/internal/domain/scope"
	"enverge/internal/domain/subscription"
	"enverge/internal/infrastructure/persistence/models"
	"enverge/internal/infrastructure/repository"
	"enverge/internal/interfaces/dto/sep2"
	apperrors "enverge/internal/shared/errors"
	"enverge/internal/shared/logger"
)

// MUPManager serves the MirrorUsagePoint surface. Mirrors are
// deduplicated reading type rows; posted reading batches land under the
// mirror they were posted to.
type MUPManager struct {
	sites    *repository.SiteRepository
	readings *repository.ReadingRepository
	config   *ConfigManager
	hrefs    ident.HrefBuilder
	notifier ChangeNotifier
	logger   logger.Interface
}

func NewMUPManager(sites *repository.SiteRepository, readings *repository.ReadingRepository, config *ConfigManager, hrefs ident.HrefBuilder, notifier ChangeNotifier, log logger.Interface) *MUPManager {
	return &MUPManager{
		sites:    sites,
		readings: readings,
		config:   config,
		hrefs:    hrefs,
		notifier: notifier,
		logger:   log,
	}
}

// List pages the mirrors of the caller's partition, newest first. Device
// certificates see only their own site's mirrors.
func (m *MUPManager) List(ctx context.Context, claims scope.Claims, q ListQuery) (sep2.MirrorUsagePointList, error) {
	s := scope.NewMUPListScope(claims)
	mctx, err := m.config.MapCtx(ctx, time.Now().UTC())
	if err != nil {
		return sep2.MirrorUsagePointList{}, err
	}

	total, err := m.readings.CountReadingTypes(ctx, s.AggregatorID, s.SiteID, q.ChangedAfter)
	if err != nil {
		return sep2.MirrorUsagePointList{}, err
	}
	srts, err := m.readings.ListReadingTypes(ctx, s.AggregatorID, s.SiteID, q.ChangedAfter, q.Start, q.Limit)
	if err != nil {
		return sep2.MirrorUsagePointList{}, err
	}

	postRate := mctx.Opts.MupPostRate
	lfdis := make(map[uint64]string)
	mups := make([]sep2.MirrorUsagePoint, 0, len(srts))
	for i := range srts {
		lfdi, ok := lfdis[srts[i].SiteID]
		if !ok {
			site, err := m.sites.GetByID(ctx, srts[i].SiteID, s.AggregatorID)
			if err != nil {
				return sep2.MirrorUsagePointList{}, err
			}
			if site == nil {
				continue
			}
			lfdi = site.Lfdi
			lfdis[srts[i].SiteID] = lfdi
		}
		mups = append(mups, mapper.ToMirrorUsagePoint(mctx, &srts[i], lfdi, &postRate))
	}
	return mapper.ToMirrorUsagePointList(mctx, mups, total), nil
}

// Create registers a mirror for the site addressed by deviceLFDI,
// reusing an existing reading type row when the semantics match. The
// returned href carries the (possibly pre-existing) mirror's location.
func (m *MUPManager) Create(ctx context.Context, claims scope.Claims, dto *sep2.MirrorUsagePoint) (string, error) {
	s := scope.NewMUPListScope(claims)
	site, err := m.resolveDevice(ctx, s.AggregatorID, s.SiteID, dto.DeviceLFDI)
	if err != nil {
		return "", err
	}

	srt, err := mapper.FromMirrorUsagePoint(dto, s.AggregatorID, site.ID)
	if err != nil {
		return "", err
	}
	stored, err := m.readings.FindOrCreateReadingType(ctx, srt, time.Now().UTC())
	if err != nil {
		return "", err
	}
	return m.hrefs.MirrorUsagePoint(stored.ID), nil
}

// Get serves one mirror.
func (m *MUPManager) Get(ctx context.Context, claims scope.Claims, mupID uint64) (sep2.MirrorUsagePoint, error) {
	s := scope.NewMUPScope(claims)
	mctx, err := m.config.MapCtx(ctx, time.Now().UTC())
	if err != nil {
		return sep2.MirrorUsagePoint{}, err
	}
	srt, err := m.requireMirror(ctx, s, mupID)
	if err != nil {
		return sep2.MirrorUsagePoint{}, err
	}
	site, err := m.sites.GetByID(ctx, srt.SiteID, s.AggregatorID)
	if err != nil {
		return sep2.MirrorUsagePoint{}, err
	}
	if site == nil {
		return sep2.MirrorUsagePoint{}, apperrors.NewNotFoundError("MirrorUsagePoint not found")
	}
	postRate := mctx.Opts.MupPostRate
	return mapper.ToMirrorUsagePoint(mctx, srt, site.Lfdi, &postRate), nil
}

// Replace handles PUT on a mirror. Reading type rows are immutable by
// semantic identity, so a changed descriptor lands on a fresh row and
// the response href points wherever the descriptor resolved.
func (m *MUPManager) Replace(ctx context.Context, claims scope.Claims, mupID uint64, dto *sep2.MirrorUsagePoint) (string, error) {
	s := scope.NewMUPScope(claims)
	existing, err := m.requireMirror(ctx, s, mupID)
	if err != nil {
		return "", err
	}
	site, err := m.resolveDevice(ctx, s.AggregatorID, s.SiteID, dto.DeviceLFDI)
	if err != nil {
		return "", err
	}
	if site.ID != existing.SiteID {
		return "", apperrors.NewBadRequestError("deviceLFDI does not match the mirror's site")
	}

	srt, err := mapper.FromMirrorUsagePoint(dto, s.AggregatorID, site.ID)
	if err != nil {
		return "", err
	}
	stored, err := m.readings.FindOrCreateReadingType(ctx, srt, time.Now().UTC())
	if err != nil {
		return "", err
	}
	return m.hrefs.MirrorUsagePoint(stored.ID), nil
}

// Delete removes a mirror and archives its readings.
func (m *MUPManager) Delete(ctx context.Context, claims scope.Claims, mupID uint64) error {
	s := scope.NewMUPScope(claims)
	if _, err := m.requireMirror(ctx, s, mupID); err != nil {
		return err
	}
	deleted, err := m.readings.DeleteReadingType(ctx, mupID, s.AggregatorID, time.Now().UTC())
	if err != nil {
		return err
	}
	if !deleted {
		return apperrors.NewNotFoundError("MirrorUsagePoint not found")
	}
	return nil
}

// PostReadings stores a posted reading batch under a mirror.
func (m *MUPManager) PostReadings(ctx context.Context, claims scope.Claims, mupID uint64, dto *sep2.MirrorMeterReading) error {
	s := scope.NewMUPScope(claims)
	srt, err := m.requireMirror(ctx, s, mupID)
	if err != nil {
		return err
	}
	readings, err := mapper.FromMirrorMeterReading(dto, srt.ID)
	if err != nil {
		return err
	}
	now := time.Now().UTC()
	if err := m.readings.UpsertReadings(ctx, readings, now); err != nil {
		return err
	}
	fireCheck(m.notifier, m.logger, subscription.ResourceReading, now)
	return nil
}

// resolveDevice finds the partition site a posted deviceLFDI addresses.
// A device certificate may only mirror its own site.
func (m *MUPManager) resolveDevice(ctx context.Context, aggregatorID uint64, scopedSiteID *uint64, deviceLfdi string) (*models.SiteModel, error) {
	lfdi, err := ident.NormalizeLfdi(deviceLfdi)
	if err != nil {
		return nil, err
	}
	site, err := m.sites.GetByLfdi(ctx, lfdi, aggregatorID)
	if err != nil {
		return nil, err
	}
	if site == nil {
		return nil, apperrors.NewNotFoundError("no EndDevice registered for deviceLFDI " + lfdi)
	}
	if scopedSiteID != nil && *scopedSiteID != site.ID {
		return nil, apperrors.NewForbiddenError("deviceLFDI belongs to another EndDevice")
	}
	return site, nil
}

// requireMirror fetches a mirror within the caller's scope.
func (m *MUPManager) requireMirror(ctx context.Context, s scope.MUPScope, mupID uint64) (*models.SiteReadingTypeModel, error) {
	srt, err := m.readings.GetReadingType(ctx, mupID, s.AggregatorID)
	if err != nil {
		return nil, err
	}
	if srt == nil {
		return nil, apperrors.NewNotFoundError("MirrorUsagePoint not found")
	}
	if s.SiteID != nil && *s.SiteID != srt.SiteID {
		return nil, apperrors.NewNotFoundError("MirrorUsagePoint not found")
	}
	return srt, nil
}
