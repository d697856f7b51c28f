package manager

import (
	"context"
	"time"

	"enverge/internal/application/mapper"
	"enverge/internal/domain/ident"
	"enverge/internal/domain/subscription"
	"enverge/internal/infrastructure/persistence/models"
	"enverge/internal/infrastructure/repository"
	"enverge/internal/interfaces/dto/admin"
	"enverge/internal/shared/logger"
)

// ConfigManager owns the singleton runtime configuration and hands the
// other managers their mapping context.
type ConfigManager struct {
	runtime  *repository.RuntimeConfigRepository
	hrefs    ident.HrefBuilder
	pen      uint32
	notifier ChangeNotifier
	logger   logger.Interface
}

func NewConfigManager(runtime *repository.RuntimeConfigRepository, hrefs ident.HrefBuilder, pen uint32, notifier ChangeNotifier, log logger.Interface) *ConfigManager {
	return &ConfigManager{
		runtime:  runtime,
		hrefs:    hrefs,
		pen:      pen,
		notifier: notifier,
		logger:   log,
	}
}

func (m *ConfigManager) Current(ctx context.Context) (*models.RuntimeServerConfigModel, error) {
	return m.runtime.Get(ctx)
}

// MapCtx assembles the mapper context for one request at one instant.
func (m *ConfigManager) MapCtx(ctx context.Context, now time.Time) (mapper.Ctx, error) {
	cfg, err := m.runtime.Get(ctx)
	if err != nil {
		return mapper.Ctx{}, err
	}
	return mapper.Ctx{
		Hrefs: m.hrefs,
		PEN:   m.pen,
		Now:   now,
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

// Update applies the non-nil fields of the request and fires change
// checks for every family whose serialised form is affected, so
// subscribers learn new poll rates without any entity changing.
func (m *ConfigManager) Update(ctx context.Context, req *admin.RuntimeConfigRequest, now time.Time) (*models.RuntimeServerConfigModel, error) {
	cfg, err := m.runtime.Get(ctx)
	if err != nil {
		return nil, err
	}

	var touched []subscription.ResourceType
	apply := func(dst *int32, src *int32, resources ...subscription.ResourceType) {
		if src == nil || *src == *dst {
			return
		}
		*dst = *src
		touched = append(touched, resources...)
	}

	apply(&cfg.DcapPollRateSeconds, req.DcapPollRateSeconds)
	apply(&cfg.EdevlPollRateSeconds, req.EdevlPollRateSeconds, subscription.ResourceSite)
	apply(&cfg.FsalPollRateSeconds, req.FsalPollRateSeconds, subscription.ResourceFunctionSetAssignments)
	apply(&cfg.DerplPollRateSeconds, req.DerplPollRateSeconds, subscription.ResourceDynamicOperatingEnvelope)
	apply(&cfg.DerlPollRateSeconds, req.DerlPollRateSeconds, subscription.ResourceDynamicOperatingEnvelope)
	apply(&cfg.MupPostRateSeconds, req.MupPostRateSeconds, subscription.ResourceReading)
	apply(&cfg.SiteControlPow10Encoding, req.SiteControlPow10Encoding,
		subscription.ResourceDynamicOperatingEnvelope, subscription.ResourceDefaultSiteControl)
	if req.DisableEdevRegistration != nil {
		cfg.DisableEdevRegistration = *req.DisableEdevRegistration
	}

	if err := m.runtime.Update(ctx, cfg, now); err != nil {
		return nil, err
	}

	seen := make(map[subscription.ResourceType]bool)
	for _, resource := range touched {
		if seen[resource] {
			continue
		}
		seen[resource] = true
		fireCheck(m.notifier, m.logger, resource, now)
	}
	return cfg, nil
}
