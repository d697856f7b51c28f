package manager

import (
	"context"
	"crypto/rand"
	"math/big"
	"os"
	"strconv"
	"strings"
	"time"

	"enverge/internal/application/mapper"
	"enverge/internal/domain/ident"
	"enverge/internal/domain/scope"
	"enverge/internal/domain/subscription"
	"enverge/internal/infrastructure/persistence/models"
	"enverge/internal/infrastructure/repository"
	"enverge/internal/interfaces/dto/sep2"
	"enverge/internal/shared/constants"
	apperrors "enverge/internal/shared/errors"
	"enverge/internal/shared/logger"
)

// EndDeviceManager serves the discovery root and the EndDevice tree:
// the device list, registration, connection points and function set
// assignments.
type EndDeviceManager struct {
	sites           *repository.SiteRepository
	tariffs         *repository.TariffRepository
	config          *ConfigManager
	notifier        ChangeNotifier
	defaultTimezone string
	logger          logger.Interface
}

func NewEndDeviceManager(sites *repository.SiteRepository, tariffs *repository.TariffRepository, config *ConfigManager, notifier ChangeNotifier, defaultTimezone string, log logger.Interface) *EndDeviceManager {
	return &EndDeviceManager{
		sites:           sites,
		tariffs:         tariffs,
		config:          config,
		notifier:        notifier,
		defaultTimezone: defaultTimezone,
		logger:          log,
	}
}

// DeviceCapability serves the unauthenticated-shape discovery root.
func (m *EndDeviceManager) DeviceCapability(ctx context.Context, claims scope.Claims) (sep2.DeviceCapability, error) {
	mctx, err := m.config.MapCtx(ctx, time.Now().UTC())
	if err != nil {
		return sep2.DeviceCapability{}, err
	}
	return mapper.ToDeviceCapability(mctx), nil
}

// CurrentTime serves the server clock.
func (m *EndDeviceManager) CurrentTime(ctx context.Context, claims scope.Claims) (sep2.Time, error) {
	mctx, err := m.config.MapCtx(ctx, time.Now().UTC())
	if err != nil {
		return sep2.Time{}, err
	}
	return mapper.ToTime(mctx), nil
}

// List pages the EndDevices a certificate can see. Aggregator
// certificates get the virtual end device ahead of their sites; device
// certificates only ever see their own registered site.
func (m *EndDeviceManager) List(ctx context.Context, claims scope.Claims, q ListQuery) (sep2.EndDeviceList, error) {
	mctx, err := m.config.MapCtx(ctx, time.Now().UTC())
	if err != nil {
		return sep2.EndDeviceList{}, err
	}

	if claims.AggregatorID == nil {
		return m.listForDevice(ctx, mctx, claims, q)
	}

	aggID := *claims.AggregatorID
	siteCount, err := m.sites.Count(ctx, aggID, nil, q.ChangedAfter)
	if err != nil {
		return sep2.EndDeviceList{}, err
	}

	// The virtual end device heads the list, so every later page is
	// shifted one site back.
	devices := make([]sep2.EndDevice, 0, q.Limit)
	start, limit := q.Start, q.Limit
	if start == 0 {
		if limit > 0 {
			devices = append(devices, mapper.ToVirtualEndDevice(mctx, claims.Lfdi, claims.Sfdi))
			limit--
		}
	} else {
		start--
	}

	if limit > 0 {
		sites, err := m.sites.List(ctx, aggID, nil, q.ChangedAfter, start, limit)
		if err != nil {
			return sep2.EndDeviceList{}, err
		}
		for i := range sites {
			devices = append(devices, mapper.ToEndDevice(mctx, &sites[i]))
		}
	}
	return mapper.ToEndDeviceList(mctx, devices, siteCount+1), nil
}

func (m *EndDeviceManager) listForDevice(ctx context.Context, mctx mapper.Ctx, claims scope.Claims, q ListQuery) (sep2.EndDeviceList, error) {
	if claims.SiteID == nil {
		return mapper.ToEndDeviceList(mctx, nil, 0), nil
	}
	total, err := m.sites.Count(ctx, constants.NullAggregatorID, claims.SiteID, q.ChangedAfter)
	if err != nil {
		return sep2.EndDeviceList{}, err
	}
	sites, err := m.sites.List(ctx, constants.NullAggregatorID, claims.SiteID, q.ChangedAfter, q.Start, q.Limit)
	if err != nil {
		return sep2.EndDeviceList{}, err
	}
	devices := make([]sep2.EndDevice, 0, len(sites))
	for i := range sites {
		devices = append(devices, mapper.ToEndDevice(mctx, &sites[i]))
	}
	return mapper.ToEndDeviceList(mctx, devices, total), nil
}

// Get serves one EndDevice, including the virtual one at site id 0.
func (m *EndDeviceManager) Get(ctx context.Context, claims scope.Claims, siteID uint64) (sep2.EndDevice, error) {
	s, err := scope.NewDeviceOrAggregatorScope(claims, siteID)
	if err != nil {
		return sep2.EndDevice{}, err
	}
	mctx, err := m.config.MapCtx(ctx, time.Now().UTC())
	if err != nil {
		return sep2.EndDevice{}, err
	}
	if s.IsVirtual() {
		return mapper.ToVirtualEndDevice(mctx, s.Lfdi, s.Sfdi), nil
	}
	site, err := m.sites.GetByID(ctx, *s.SiteID, s.AggregatorID)
	if err != nil {
		return sep2.EndDevice{}, err
	}
	if site == nil {
		return sep2.EndDevice{}, apperrors.NewNotFoundError("EndDevice not found")
	}
	return mapper.ToEndDevice(mctx, site), nil
}

// Register handles POST /edev. Aggregator certificates register sites
// by lFDI under their partition; device certificates self-register
// under the null partition using their certificate identity.
func (m *EndDeviceManager) Register(ctx context.Context, claims scope.Claims, dto *sep2.EndDevice) (*models.SiteModel, error) {
	cfg, err := m.config.Current(ctx)
	if err != nil {
		return nil, err
	}
	if cfg.DisableEdevRegistration {
		return nil, apperrors.NewForbiddenError("EndDevice registration is disabled")
	}

	now := time.Now().UTC()
	site := models.SiteModel{
		SiteFields: models.SiteFields{
			TimezoneID: m.defaultTimezone,
			PostRate:   dto.PostRate,
		},
	}
	if dto.DeviceCategory != "" {
		category, err := strconv.ParseInt(strings.TrimPrefix(dto.DeviceCategory, "0x"), 16, 64)
		if err != nil {
			return nil, apperrors.NewBadRequestError("deviceCategory is not hexadecimal", err.Error())
		}
		site.DeviceCategory = category
	}

	// Registration admits certificates with no site yet, so the widest
	// scope applies; its partition is the null aggregator for device
	// certificates.
	s := scope.NewUnregisteredScope(claims)
	site.AggregatorID = s.AggregatorID
	if claims.Source == scope.SourceDeviceCertificate {
		site.Lfdi = s.Lfdi
		site.Sfdi = s.Sfdi
	} else {
		if dto.LFDI == "" {
			return nil, apperrors.NewBadRequestError("lFDI is required")
		}
		lfdi, err := ident.NormalizeLfdi(dto.LFDI)
		if err != nil {
			return nil, err
		}
		site.Lfdi = lfdi
		site.Sfdi = dto.SFDI
		if site.Sfdi == 0 {
			sfdi, err := ident.SfdiFromLfdi(lfdi)
			if err != nil {
				return nil, err
			}
			site.Sfdi = sfdi
		}
	}

	pin, err := generateRegistrationPin()
	if err != nil {
		return nil, err
	}
	site.RegistrationPin = pin

	if err := m.sites.Upsert(ctx, &site, now); err != nil {
		return nil, err
	}
	fireCheck(m.notifier, m.logger, subscription.ResourceSite, now)
	return &site, nil
}

// Delete removes an EndDevice and everything under it.
func (m *EndDeviceManager) Delete(ctx context.Context, claims scope.Claims, siteID uint64) error {
	s, err := scope.NewSiteScope(claims, siteID)
	if err != nil {
		return err
	}
	now := time.Now().UTC()
	deleted, err := m.sites.Delete(ctx, s.SiteID, s.AggregatorID, now)
	if err != nil {
		return err
	}
	if !deleted {
		return apperrors.NewNotFoundError("EndDevice not found")
	}
	fireCheck(m.notifier, m.logger, subscription.ResourceSite, now)
	return nil
}

// Registration serves the out-of-band PIN resource.
func (m *EndDeviceManager) Registration(ctx context.Context, claims scope.Claims, siteID uint64) (sep2.Registration, error) {
	site, mctx, err := m.concreteSite(ctx, claims, siteID)
	if err != nil {
		return sep2.Registration{}, err
	}
	return mapper.ToRegistration(mctx, site), nil
}

// GetConnectionPoint serves the CSIP-AUS NMI resource.
func (m *EndDeviceManager) GetConnectionPoint(ctx context.Context, claims scope.Claims, siteID uint64) (sep2.ConnectionPoint, error) {
	site, mctx, err := m.concreteSite(ctx, claims, siteID)
	if err != nil {
		return sep2.ConnectionPoint{}, err
	}
	return mapper.ToConnectionPoint(mctx, site), nil
}

// PutConnectionPoint updates a site's NMI.
func (m *EndDeviceManager) PutConnectionPoint(ctx context.Context, claims scope.Claims, siteID uint64, dto *sep2.ConnectionPoint) error {
	site, _, err := m.concreteSite(ctx, claims, siteID)
	if err != nil {
		return err
	}
	now := time.Now().UTC()
	if dto.ConnectionPointID == "" {
		site.Nmi = nil
	} else {
		nmi := dto.ConnectionPointID
		site.Nmi = &nmi
	}
	if err := m.sites.Upsert(ctx, site, now); err != nil {
		return err
	}
	fireCheck(m.notifier, m.logger, subscription.ResourceSite, now)
	return nil
}

// ListFsa pages the function set assignments of a site. Assignments are
// deployment wide fsa ids referenced by tariffs and control groups.
func (m *EndDeviceManager) ListFsa(ctx context.Context, claims scope.Claims, siteID uint64, q ListQuery) (sep2.FunctionSetAssignmentsList, error) {
	s, err := scope.NewDeviceOrAggregatorScope(claims, siteID)
	if err != nil {
		return sep2.FunctionSetAssignmentsList{}, err
	}
	mctx, err := m.config.MapCtx(ctx, time.Now().UTC())
	if err != nil {
		return sep2.FunctionSetAssignmentsList{}, err
	}
	fsaIDs, err := m.tariffs.FsaIDs(ctx)
	if err != nil {
		return sep2.FunctionSetAssignmentsList{}, err
	}

	total := int64(len(fsaIDs))
	page := pageSlice(fsaIDs, q.Start, q.Limit)
	return mapper.ToFunctionSetAssignmentsList(mctx, s.DisplaySiteID, page, total), nil
}

// GetFsa serves one assignment, 404 when the id is not in use anywhere.
func (m *EndDeviceManager) GetFsa(ctx context.Context, claims scope.Claims, siteID, fsaID uint64) (sep2.FunctionSetAssignments, error) {
	s, err := scope.NewDeviceOrAggregatorScope(claims, siteID)
	if err != nil {
		return sep2.FunctionSetAssignments{}, err
	}
	mctx, err := m.config.MapCtx(ctx, time.Now().UTC())
	if err != nil {
		return sep2.FunctionSetAssignments{}, err
	}
	fsaIDs, err := m.tariffs.FsaIDs(ctx)
	if err != nil {
		return sep2.FunctionSetAssignments{}, err
	}
	for _, id := range fsaIDs {
		if id == fsaID {
			return mapper.ToFunctionSetAssignments(mctx, s.DisplaySiteID, fsaID), nil
		}
	}
	return sep2.FunctionSetAssignments{}, apperrors.NewNotFoundError("FunctionSetAssignments not found")
}

func (m *EndDeviceManager) concreteSite(ctx context.Context, claims scope.Claims, siteID uint64) (*models.SiteModel, mapper.Ctx, error) {
	s, err := scope.NewSiteScope(claims, siteID)
	if err != nil {
		return nil, mapper.Ctx{}, err
	}
	mctx, err := m.config.MapCtx(ctx, time.Now().UTC())
	if err != nil {
		return nil, mapper.Ctx{}, err
	}
	site, err := m.sites.GetByID(ctx, s.SiteID, s.AggregatorID)
	if err != nil {
		return nil, mapper.Ctx{}, err
	}
	if site == nil {
		return nil, mapper.Ctx{}, apperrors.NewNotFoundError("EndDevice not found")
	}
	return site, mctx, nil
}

// generateRegistrationPin draws a random PIN, honouring the static
// override used by conformance test rigs.
func generateRegistrationPin() (uint32, error) {
	if raw := os.Getenv(constants.EnvStaticRegistrationPin); raw != "" {
		pin, err := strconv.ParseUint(raw, 10, 32)
		if err != nil {
			return 0, apperrors.NewInternalError("static registration pin is not numeric", err.Error())
		}
		return uint32(pin), nil
	}
	n, err := rand.Int(rand.Reader, big.NewInt(constants.MaxRegistrationPin))
	if err != nil {
		return 0, apperrors.NewInternalError("failed to generate registration pin", err.Error())
	}
	return uint32(n.Int64()), nil
}

// pageSlice applies start/limit paging to an in-memory id list.
func pageSlice(ids []uint64, start, limit int) []uint64 {
	if start >= len(ids) {
		return nil
	}
	end := start + limit
	if end > len(ids) {
		end = len(ids)
	}
	return ids[start:end]
}
