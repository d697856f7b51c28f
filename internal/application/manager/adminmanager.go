package manager

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"enverge/internal/domain/ident"
	"enverge/internal/domain/subscription"
	"enverge/internal/infrastructure/persistence/models"
	"enverge/internal/infrastructure/repository"
	"enverge/internal/interfaces/dto/admin"
	"enverge/internal/shared/constants"
	apperrors "enverge/internal/shared/errors"
	"enverge/internal/shared/logger"
)

// AdminManager implements the unscoped operator surface: partitions,
// certificates, sites, control groups, bulk envelope and rate writes,
// and archive retrieval.
type AdminManager struct {
	aggregators *repository.AggregatorRepository
	sites       *repository.SiteRepository
	groups      *repository.SiteControlGroupRepository
	does        *repository.DoeRepository
	tariffs     *repository.TariffRepository
	rates       *repository.RateRepository
	responses   *repository.ResponseRepository
	notifier    ChangeNotifier
	logger      logger.Interface
}

func NewAdminManager(
	aggregators *repository.AggregatorRepository,
	sites *repository.SiteRepository,
	groups *repository.SiteControlGroupRepository,
	does *repository.DoeRepository,
	tariffs *repository.TariffRepository,
	rates *repository.RateRepository,
	responses *repository.ResponseRepository,
	notifier ChangeNotifier,
	log logger.Interface,
) *AdminManager {
	return &AdminManager{
		aggregators: aggregators,
		sites:       sites,
		groups:      groups,
		does:        does,
		tariffs:     tariffs,
		rates:       rates,
		responses:   responses,
		notifier:    notifier,
		logger:      log,
	}
}

// CreateAggregator registers a partition with its FQDN allowlist.
func (m *AdminManager) CreateAggregator(ctx context.Context, req *admin.AggregatorRequest) (*admin.AggregatorResponse, error) {
	agg := &models.AggregatorModel{
		Name:        req.Name,
		ChangedTime: time.Now().UTC(),
	}
	if len(req.Domains) > 0 {
		encoded, err := json.Marshal(req.Domains)
		if err != nil {
			return nil, apperrors.NewInternalError("failed to encode aggregator domains", err.Error())
		}
		agg.Domains = encoded
	}
	if err := m.aggregators.Create(ctx, agg); err != nil {
		return nil, err
	}
	return aggregatorResponse(agg, req.Domains), nil
}

// UpdateAggregatorDomains replaces a partition's allowlist.
func (m *AdminManager) UpdateAggregatorDomains(ctx context.Context, aggregatorID uint64, req *admin.AggregatorRequest) (*admin.AggregatorResponse, error) {
	if err := m.aggregators.SetDomains(ctx, aggregatorID, req.Domains, time.Now().UTC()); err != nil {
		return nil, err
	}
	agg, err := m.aggregators.GetByID(ctx, aggregatorID)
	if err != nil {
		return nil, err
	}
	if agg == nil {
		return nil, apperrors.NewNotFoundError("aggregator not found")
	}
	return aggregatorResponse(agg, req.Domains), nil
}

// ListAggregators pages real partitions; the device partition 0 has no
// row and never appears.
func (m *AdminManager) ListAggregators(ctx context.Context, start, limit int) (admin.ListResponse[admin.AggregatorResponse], error) {
	var out admin.ListResponse[admin.AggregatorResponse]
	total, err := m.aggregators.Count(ctx)
	if err != nil {
		return out, err
	}
	aggs, err := m.aggregators.List(ctx, start, limit)
	if err != nil {
		return out, err
	}
	out.Total = total
	out.Items = make([]admin.AggregatorResponse, 0, len(aggs))
	for i := range aggs {
		domains, err := m.aggregators.Domains(ctx, aggs[i].ID)
		if err != nil {
			return out, err
		}
		out.Items = append(out.Items, *aggregatorResponse(&aggs[i], domains))
	}
	return out, nil
}

// GetAggregator fetches one partition.
func (m *AdminManager) GetAggregator(ctx context.Context, aggregatorID uint64) (*admin.AggregatorResponse, error) {
	agg, err := m.aggregators.GetByID(ctx, aggregatorID)
	if err != nil {
		return nil, err
	}
	if agg == nil {
		return nil, apperrors.NewNotFoundError("aggregator not found")
	}
	domains, err := m.aggregators.Domains(ctx, aggregatorID)
	if err != nil {
		return nil, err
	}
	return aggregatorResponse(agg, domains), nil
}

// RegisterCertificate stores a client certificate by lfdi, optionally
// assigning it to a partition. The sfdi is derived, never supplied.
func (m *AdminManager) RegisterCertificate(ctx context.Context, req *admin.CertificateRequest) (*admin.CertificateResponse, error) {
	lfdi, err := ident.NormalizeLfdi(req.Lfdi)
	if err != nil {
		return nil, err
	}
	sfdi, err := ident.SfdiFromLfdi(lfdi)
	if err != nil {
		return nil, err
	}

	cert := &models.CertificateModel{
		Lfdi:   lfdi,
		Sfdi:   sfdi,
		Expiry: req.Expiry.UTC(),
	}
	if err := m.aggregators.CreateCertificate(ctx, cert); err != nil {
		return nil, err
	}
	if req.AggregatorID != nil {
		if err := m.aggregators.AssignCertificate(ctx, *req.AggregatorID, cert.ID); err != nil {
			return nil, err
		}
	}
	return &admin.CertificateResponse{
		ID:           cert.ID,
		Lfdi:         cert.Lfdi,
		Sfdi:         cert.Sfdi,
		Expiry:       cert.Expiry,
		AggregatorID: req.AggregatorID,
	}, nil
}

// ListSites pages one partition's sites.
func (m *AdminManager) ListSites(ctx context.Context, aggregatorID uint64, start, limit int) (admin.ListResponse[admin.SiteResponse], error) {
	var out admin.ListResponse[admin.SiteResponse]
	total, err := m.sites.Count(ctx, aggregatorID, nil, time.Time{})
	if err != nil {
		return out, err
	}
	sites, err := m.sites.List(ctx, aggregatorID, nil, time.Time{}, start, limit)
	if err != nil {
		return out, err
	}
	out.Total = total
	out.Items = make([]admin.SiteResponse, 0, len(sites))
	for i := range sites {
		out.Items = append(out.Items, siteResponse(&sites[i]))
	}
	return out, nil
}

// UpsertSite creates or replaces a site keyed on (aggregator, sfdi).
func (m *AdminManager) UpsertSite(ctx context.Context, req *admin.SiteRequest) (*admin.SiteResponse, error) {
	lfdi, err := ident.NormalizeLfdi(req.Lfdi)
	if err != nil {
		return nil, err
	}
	sfdi := req.Sfdi
	if sfdi == 0 {
		if sfdi, err = ident.SfdiFromLfdi(lfdi); err != nil {
			return nil, err
		}
	}
	if _, err := time.LoadLocation(req.TimezoneID); err != nil {
		return nil, apperrors.NewBadRequestError("unknown timezone " + req.TimezoneID)
	}
	pin, err := generateRegistrationPin()
	if err != nil {
		return nil, err
	}

	site := &models.SiteModel{
		SiteFields: models.SiteFields{
			AggregatorID:    req.AggregatorID,
			Sfdi:            sfdi,
			Lfdi:            lfdi,
			DeviceCategory:  req.DeviceCategory,
			TimezoneID:      req.TimezoneID,
			Nmi:             req.Nmi,
			RegistrationPin: pin,
			PostRate:        req.PostRate,
		},
	}
	now := time.Now().UTC()
	if err := m.sites.Upsert(ctx, site, now); err != nil {
		return nil, err
	}
	fireCheck(m.notifier, m.logger, subscription.ResourceSite, now)
	resp := siteResponse(site)
	return &resp, nil
}

// DeleteSite removes a site and everything under it.
func (m *AdminManager) DeleteSite(ctx context.Context, siteID, aggregatorID uint64) error {
	now := time.Now().UTC()
	deleted, err := m.sites.Delete(ctx, siteID, aggregatorID, now)
	if err != nil {
		return err
	}
	if !deleted {
		return apperrors.NewNotFoundError("site not found")
	}
	fireCheck(m.notifier, m.logger, subscription.ResourceSite, now)
	return nil
}

// SetDefaultSiteControl replaces a site's fallback control values.
func (m *AdminManager) SetDefaultSiteControl(ctx context.Context, siteID uint64, req *admin.DefaultSiteControlRequest) error {
	site, err := m.sites.GetByIDUnscoped(ctx, siteID)
	if err != nil {
		return err
	}
	if site == nil {
		return apperrors.NewNotFoundError("site not found")
	}

	now := time.Now().UTC()
	def := &models.DefaultSiteControlModel{
		DefaultSiteControlFields: models.DefaultSiteControlFields{
			SiteID:                     siteID,
			ImportLimitActiveWatts:     req.ImportLimitActiveWatts,
			ExportLimitActiveWatts:     req.ExportLimitWatts,
			GenerationLimitActiveWatts: req.GenerationLimitActiveWatts,
			LoadLimitActiveWatts:       req.LoadLimitActiveWatts,
			RampRatePercentPerSecond:   req.RampRatePercentPerSecond,
		},
	}
	if err := m.sites.UpsertDefaultSiteControl(ctx, def, now); err != nil {
		return err
	}
	fireCheck(m.notifier, m.logger, subscription.ResourceDefaultSiteControl, now)
	return nil
}

// CreateGroup registers a control group.
func (m *AdminManager) CreateGroup(ctx context.Context, req *admin.SiteControlGroupRequest) (*admin.SiteControlGroupResponse, error) {
	group := &models.SiteControlGroupModel{
		Description: req.Description,
		Primacy:     req.Primacy,
		FsaID:       req.FsaID,
		ChangedTime: time.Now().UTC(),
	}
	if group.FsaID == 0 {
		group.FsaID = 1
	}
	if err := m.groups.Create(ctx, group); err != nil {
		return nil, err
	}
	resp := groupResponse(group)
	return &resp, nil
}

// ListGroups pages control groups in primacy order.
func (m *AdminManager) ListGroups(ctx context.Context, start, limit int) (admin.ListResponse[admin.SiteControlGroupResponse], error) {
	var out admin.ListResponse[admin.SiteControlGroupResponse]
	total, err := m.groups.Count(ctx, nil, time.Time{})
	if err != nil {
		return out, err
	}
	groups, err := m.groups.List(ctx, nil, time.Time{}, start, limit)
	if err != nil {
		return out, err
	}
	out.Total = total
	out.Items = make([]admin.SiteControlGroupResponse, 0, len(groups))
	for i := range groups {
		out.Items = append(out.Items, groupResponse(&groups[i]))
	}
	return out, nil
}

// UpdateGroupPrimacy changes a group's priority and notifies watchers of
// the group family.
func (m *AdminManager) UpdateGroupPrimacy(ctx context.Context, groupID uint64, req *admin.PrimacyRequest) error {
	now := time.Now().UTC()
	if err := m.groups.UpdatePrimacy(ctx, groupID, req.Primacy, now); err != nil {
		return err
	}
	fireCheck(m.notifier, m.logger, subscription.ResourceSiteControlGroup, now)
	return nil
}

// SetGroupDefault replaces a group's fallback control values.
func (m *AdminManager) SetGroupDefault(ctx context.Context, groupID uint64, req *admin.DefaultSiteControlRequest) error {
	if err := m.requireGroup(ctx, groupID); err != nil {
		return err
	}
	now := time.Now().UTC()
	def := &models.SiteControlGroupDefaultModel{
		SiteControlGroupID:         groupID,
		ImportLimitActiveWatts:     req.ImportLimitActiveWatts,
		ExportLimitActiveWatts:     req.ExportLimitWatts,
		GenerationLimitActiveWatts: req.GenerationLimitActiveWatts,
		LoadLimitActiveWatts:       req.LoadLimitActiveWatts,
		RampRatePercentPerSecond:   req.RampRatePercentPerSecond,
	}
	if err := m.groups.UpsertDefault(ctx, def, now); err != nil {
		return err
	}
	fireCheck(m.notifier, m.logger, subscription.ResourceDefaultSiteControl, now)
	return nil
}

// UpsertControls bulk writes envelopes under one group. Supersede selects
// the primacy-aware path; otherwise same-key envelopes are cancelled and
// replaced.
func (m *AdminManager) UpsertControls(ctx context.Context, groupID uint64, req *admin.SiteControlUpsertRequest) error {
	if err := m.requireGroup(ctx, groupID); err != nil {
		return err
	}

	now := time.Now().UTC()
	does := make([]*models.DynamicOperatingEnvelopeModel, 0, len(req.Controls))
	for i := range req.Controls {
		c := &req.Controls[i]
		site, err := m.sites.GetByIDUnscoped(ctx, c.SiteID)
		if err != nil {
			return err
		}
		if site == nil {
			return apperrors.NewBadRequestError(fmt.Sprintf("control references unknown site %d", c.SiteID))
		}
		start := c.StartTime.UTC()
		does = append(does, &models.DynamicOperatingEnvelopeModel{
			DoeFields: models.DoeFields{
				SiteControlGroupID:         groupID,
				SiteID:                     c.SiteID,
				CalculationLogID:           c.CalculationLogID,
				StartTime:                  start,
				DurationSeconds:            c.DurationSeconds,
				EndTime:                    start.Add(time.Duration(c.DurationSeconds) * time.Second),
				RandomizeStartSeconds:      c.RandomizeStartSeconds,
				ImportLimitActiveWatts:     c.ImportLimitActiveWatts,
				ExportLimitWatts:           c.ExportLimitWatts,
				GenerationLimitActiveWatts: c.GenerationLimitActiveWatts,
				LoadLimitActiveWatts:       c.LoadLimitActiveWatts,
				SetEnergized:               c.SetEnergized,
				SetConnected:               c.SetConnected,
				SetPointPercentage:         c.SetPointPercentage,
				RampTimeSeconds:            c.RampTimeSeconds,
			},
		})
	}

	if req.Supersede {
		primacyByGroup, err := m.groups.PrimacyByGroupID(ctx)
		if err != nil {
			return err
		}
		if err := m.does.SupersedeThenInsertDoes(ctx, does, primacyByGroup, now); err != nil {
			return err
		}
	} else if err := m.does.CancelThenInsertDoes(ctx, does, now); err != nil {
		return err
	}
	fireCheck(m.notifier, m.logger, subscription.ResourceDynamicOperatingEnvelope, now)
	return nil
}

// DeleteControlsInRange cancels every control of a group whose start
// falls inside the window.
func (m *AdminManager) DeleteControlsInRange(ctx context.Context, groupID uint64, req *admin.SiteControlRangeDeleteRequest) error {
	if err := m.requireGroup(ctx, groupID); err != nil {
		return err
	}
	now := time.Now().UTC()
	if err := m.does.DeleteDoesWithStartTimeInRange(ctx, groupID, nil, req.FromTime.UTC(), req.ToTime.UTC(), now); err != nil {
		return err
	}
	fireCheck(m.notifier, m.logger, subscription.ResourceDynamicOperatingEnvelope, now)
	return nil
}

// CreateTariff registers a tariff.
func (m *AdminManager) CreateTariff(ctx context.Context, req *admin.TariffRequest) (*admin.TariffResponse, error) {
	tariff := &models.TariffModel{
		Name:         req.Name,
		DnspCode:     req.DnspCode,
		CurrencyCode: req.CurrencyCode,
		FsaID:        req.FsaID,
		ChangedTime:  time.Now().UTC(),
	}
	if tariff.FsaID == 0 {
		tariff.FsaID = 1
	}
	if err := m.tariffs.Create(ctx, tariff); err != nil {
		return nil, err
	}
	resp := tariffResponse(tariff)
	return &resp, nil
}

// UpdateTariff replaces a tariff's descriptive fields.
func (m *AdminManager) UpdateTariff(ctx context.Context, tariffID uint64, req *admin.TariffRequest) (*admin.TariffResponse, error) {
	tariff, err := m.tariffs.GetByID(ctx, tariffID)
	if err != nil {
		return nil, err
	}
	if tariff == nil {
		return nil, apperrors.NewNotFoundError("tariff not found")
	}
	tariff.Name = req.Name
	tariff.DnspCode = req.DnspCode
	tariff.CurrencyCode = req.CurrencyCode
	if req.FsaID != 0 {
		tariff.FsaID = req.FsaID
	}
	if err := m.tariffs.Update(ctx, tariff, time.Now().UTC()); err != nil {
		return nil, err
	}
	resp := tariffResponse(tariff)
	return &resp, nil
}

// ListTariffs pages tariffs newest first.
func (m *AdminManager) ListTariffs(ctx context.Context, start, limit int) (admin.ListResponse[admin.TariffResponse], error) {
	var out admin.ListResponse[admin.TariffResponse]
	total, err := m.tariffs.Count(ctx, nil, time.Time{})
	if err != nil {
		return out, err
	}
	tariffs, err := m.tariffs.List(ctx, nil, time.Time{}, start, limit)
	if err != nil {
		return out, err
	}
	out.Total = total
	out.Items = make([]admin.TariffResponse, 0, len(tariffs))
	for i := range tariffs {
		out.Items = append(out.Items, tariffResponse(&tariffs[i]))
	}
	return out, nil
}

// UpsertRates bulk writes generated rates under one tariff. The local
// day and minute are derived here from the owning site's timezone so
// the pricing tree pages on portable SQL.
func (m *AdminManager) UpsertRates(ctx context.Context, tariffID uint64, req *admin.RateUpsertRequest) error {
	tariff, err := m.tariffs.GetByID(ctx, tariffID)
	if err != nil {
		return err
	}
	if tariff == nil {
		return apperrors.NewNotFoundError("tariff not found")
	}

	now := time.Now().UTC()
	zones := make(map[uint64]*time.Location)
	rates := make([]models.TariffGeneratedRateModel, 0, len(req.Rates))
	for i := range req.Rates {
		r := &req.Rates[i]
		loc, ok := zones[r.SiteID]
		if !ok {
			site, err := m.sites.GetByIDUnscoped(ctx, r.SiteID)
			if err != nil {
				return err
			}
			if site == nil {
				return apperrors.NewBadRequestError(fmt.Sprintf("rate references unknown site %d", r.SiteID))
			}
			if loc, err = time.LoadLocation(site.TimezoneID); err != nil {
				return apperrors.NewInternalError("unknown site timezone " + site.TimezoneID)
			}
			zones[r.SiteID] = loc
		}

		importActive, err := parsePrice(r.ImportActivePrice)
		if err != nil {
			return err
		}
		exportActive, err := parsePrice(r.ExportActivePrice)
		if err != nil {
			return err
		}
		importReactive, err := parsePrice(r.ImportReactivePrice)
		if err != nil {
			return err
		}
		exportReactive, err := parsePrice(r.ExportReactivePrice)
		if err != nil {
			return err
		}

		local := r.StartTime.In(loc)
		rates = append(rates, models.TariffGeneratedRateModel{
			TariffGeneratedRateFields: models.TariffGeneratedRateFields{
				TariffID:            tariffID,
				SiteID:              r.SiteID,
				CalculationLogID:    r.CalculationLogID,
				StartTime:           r.StartTime.UTC(),
				DurationSeconds:     r.DurationSeconds,
				LocalStartDay:       local.Format("2006-01-02"),
				LocalMinuteOfDay:    int32(local.Hour()*60 + local.Minute()),
				ImportActivePrice:   importActive,
				ExportActivePrice:   exportActive,
				ImportReactivePrice: importReactive,
				ExportReactivePrice: exportReactive,
			},
		})
	}

	if err := m.rates.UpsertRates(ctx, rates, now); err != nil {
		return err
	}
	fireCheck(m.notifier, m.logger, subscription.ResourceTariffGeneratedRate, now)
	return nil
}

// DeleteRatesInRange removes a tariff's rates by start window.
func (m *AdminManager) DeleteRatesInRange(ctx context.Context, tariffID uint64, req *admin.SiteControlRangeDeleteRequest) error {
	tariff, err := m.tariffs.GetByID(ctx, tariffID)
	if err != nil {
		return err
	}
	if tariff == nil {
		return apperrors.NewNotFoundError("tariff not found")
	}
	now := time.Now().UTC()
	if err := m.rates.DeleteRatesWithStartTimeInRange(ctx, tariffID, req.FromTime.UTC(), req.ToTime.UTC(), now); err != nil {
		return err
	}
	fireCheck(m.notifier, m.logger, subscription.ResourceTariffGeneratedRate, now)
	return nil
}

// CreateCalculationLog tags a calculation run.
func (m *AdminManager) CreateCalculationLog(ctx context.Context, req *admin.CalculationLogRequest) (*admin.CalculationLogResponse, error) {
	log := &models.CalculationLogModel{
		ExternalID:         req.ExternalID,
		Description:        req.Description,
		CalculationStart:   req.CalculationStart.UTC(),
		CalculationSeconds: req.CalculationSeconds,
		IntervalSeconds:    req.IntervalSeconds,
	}
	if err := m.responses.CreateCalculationLog(ctx, log); err != nil {
		return nil, err
	}
	resp := calculationLogResponse(log)
	return &resp, nil
}

// GetCalculationLog fetches the latest run with the external id.
func (m *AdminManager) GetCalculationLog(ctx context.Context, externalID string) (*admin.CalculationLogResponse, error) {
	log, err := m.responses.GetCalculationLogByExternalID(ctx, externalID)
	if err != nil {
		return nil, err
	}
	if log == nil {
		return nil, apperrors.NewNotFoundError("calculation log not found")
	}
	resp := calculationLogResponse(log)
	return &resp, nil
}

// ArchivedControls retrieves envelope archive rows by period.
func (m *AdminManager) ArchivedControls(ctx context.Context, q *admin.ArchiveQuery) ([]models.ArchiveDoeModel, error) {
	return m.does.SelectArchivedDoes(ctx, q.PeriodStart.UTC(), q.PeriodEnd.UTC(), q.DeletedOnly)
}

// ArchivedRates retrieves rate archive rows by period.
func (m *AdminManager) ArchivedRates(ctx context.Context, q *admin.ArchiveQuery) ([]models.ArchiveTariffGeneratedRateModel, error) {
	return m.rates.SelectArchivedRates(ctx, q.PeriodStart.UTC(), q.PeriodEnd.UTC(), q.DeletedOnly)
}

// ArchivedSites retrieves site archive rows by period.
func (m *AdminManager) ArchivedSites(ctx context.Context, q *admin.ArchiveQuery) ([]models.ArchiveSiteModel, error) {
	return m.sites.SelectArchivedSites(ctx, q.PeriodStart.UTC(), q.PeriodEnd.UTC(), q.DeletedOnly)
}

func (m *AdminManager) requireGroup(ctx context.Context, groupID uint64) error {
	group, err := m.groups.GetByID(ctx, groupID)
	if err != nil {
		return err
	}
	if group == nil {
		return apperrors.NewNotFoundError("site control group not found")
	}
	return nil
}

// parsePrice reads a decimal price string into the scaled integer
// representation, rejecting more fractional digits than the scale holds.
func parsePrice(s string) (int64, error) {
	s = strings.TrimSpace(s)
	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}

	whole, frac := s, ""
	if dot := strings.IndexByte(s, '.'); dot >= 0 {
		whole, frac = s[:dot], s[dot+1:]
	}
	if whole == "" {
		whole = "0"
	}
	if len(frac) > constants.PriceDecimalPlaces {
		return 0, apperrors.NewBadRequestError(
			fmt.Sprintf("price %q exceeds %d decimal places", s, constants.PriceDecimalPlaces))
	}
	frac += strings.Repeat("0", constants.PriceDecimalPlaces-len(frac))

	value, err := strconv.ParseInt(whole+frac, 10, 64)
	if err != nil {
		return 0, apperrors.NewBadRequestError(fmt.Sprintf("price %q is not decimal", s))
	}
	if neg {
		value = -value
	}
	return value, nil
}

func aggregatorResponse(agg *models.AggregatorModel, domains []string) *admin.AggregatorResponse {
	return &admin.AggregatorResponse{
		ID:          agg.ID,
		Name:        agg.Name,
		Domains:     domains,
		ChangedTime: agg.ChangedTime,
	}
}

func siteResponse(site *models.SiteModel) admin.SiteResponse {
	return admin.SiteResponse{
		ID:             site.ID,
		AggregatorID:   site.AggregatorID,
		Sfdi:           site.Sfdi,
		Lfdi:           site.Lfdi,
		DeviceCategory: site.DeviceCategory,
		TimezoneID:     site.TimezoneID,
		Nmi:            site.Nmi,
		PostRate:       site.PostRate,
		ChangedTime:    site.ChangedTime,
	}
}

func groupResponse(group *models.SiteControlGroupModel) admin.SiteControlGroupResponse {
	return admin.SiteControlGroupResponse{
		ID:          group.ID,
		Description: group.Description,
		Primacy:     group.Primacy,
		FsaID:       group.FsaID,
		ChangedTime: group.ChangedTime,
	}
}

func tariffResponse(tariff *models.TariffModel) admin.TariffResponse {
	return admin.TariffResponse{
		ID:           tariff.ID,
		Name:         tariff.Name,
		DnspCode:     tariff.DnspCode,
		CurrencyCode: tariff.CurrencyCode,
		FsaID:        tariff.FsaID,
		ChangedTime:  tariff.ChangedTime,
	}
}

func calculationLogResponse(log *models.CalculationLogModel) admin.CalculationLogResponse {
	return admin.CalculationLogResponse{
		ID:                 log.ID,
		ExternalID:         log.ExternalID,
		Description:        log.Description,
		CalculationStart:   log.CalculationStart,
		CalculationSeconds: log.CalculationSeconds,
		IntervalSeconds:    log.IntervalSeconds,
		CreatedTime:        log.CreatedTime,
	}
}
