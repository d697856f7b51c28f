package manager

import (
	"context"
	"strconv"
	"time"

	"enverge/internal/application/mapper"
	"enverge/internal/domain/scope"
	"enverge/internal/infrastructure/repository"
	"enverge/internal/interfaces/dto/sep2"
	"enverge/internal/shared/constants"
	apperrors "enverge/internal/shared/errors"
	"enverge/internal/shared/logger"
)

// DerProgramManager serves the DERProgram tree: control groups as
// programs, envelopes as controls, and the merged default control.
type DerProgramManager struct {
	sites  *repository.SiteRepository
	groups *repository.SiteControlGroupRepository
	does   *repository.DoeRepository
	config *ConfigManager
	logger logger.Interface
}

func NewDerProgramManager(sites *repository.SiteRepository, groups *repository.SiteControlGroupRepository, does *repository.DoeRepository, config *ConfigManager, log logger.Interface) *DerProgramManager {
	return &DerProgramManager{
		sites:  sites,
		groups: groups,
		does:   does,
		config: config,
		logger: log,
	}
}

// ParseGroupID resolves a derp path segment. The literal "doe" is the
// pre multi-group alias for the first control group.
func ParseGroupID(segment string) (uint64, error) {
	if segment == "doe" {
		return constants.LegacySiteControlGroupID, nil
	}
	id, err := strconv.ParseUint(segment, 10, 64)
	if err != nil {
		return 0, apperrors.NewNotFoundError("DERProgram not found")
	}
	return id, nil
}

// ListPrograms pages the control groups visible to a site, ordered by
// primacy.
func (m *DerProgramManager) ListPrograms(ctx context.Context, claims scope.Claims, siteID uint64, q ListQuery) (sep2.DERProgramList, error) {
	s, err := scope.NewDeviceOrAggregatorScope(claims, siteID)
	if err != nil {
		return sep2.DERProgramList{}, err
	}
	mctx, err := m.config.MapCtx(ctx, time.Now().UTC())
	if err != nil {
		return sep2.DERProgramList{}, err
	}

	total, err := m.groups.Count(ctx, nil, q.ChangedAfter)
	if err != nil {
		return sep2.DERProgramList{}, err
	}
	groups, err := m.groups.List(ctx, nil, q.ChangedAfter, q.Start, q.Limit)
	if err != nil {
		return sep2.DERProgramList{}, err
	}

	programs := make([]sep2.DERProgram, 0, len(groups))
	for i := range groups {
		hasDefault, err := m.hasDefault(ctx, s.SiteID, groups[i].ID)
		if err != nil {
			return sep2.DERProgramList{}, err
		}
		programs = append(programs, mapper.ToDerProgram(mctx, s.DisplaySiteID, &groups[i], hasDefault))
	}
	return mapper.ToDerProgramList(mctx, s.DisplaySiteID, programs, total), nil
}

// GetProgram serves one control group as a DERProgram.
func (m *DerProgramManager) GetProgram(ctx context.Context, claims scope.Claims, siteID, groupID uint64) (sep2.DERProgram, error) {
	s, err := scope.NewDeviceOrAggregatorScope(claims, siteID)
	if err != nil {
		return sep2.DERProgram{}, err
	}
	mctx, err := m.config.MapCtx(ctx, time.Now().UTC())
	if err != nil {
		return sep2.DERProgram{}, err
	}
	group, err := m.groups.GetByID(ctx, groupID)
	if err != nil {
		return sep2.DERProgram{}, err
	}
	if group == nil {
		return sep2.DERProgram{}, apperrors.NewNotFoundError("DERProgram not found")
	}
	hasDefault, err := m.hasDefault(ctx, s.SiteID, groupID)
	if err != nil {
		return sep2.DERProgram{}, err
	}
	return mapper.ToDerProgram(mctx, s.DisplaySiteID, group, hasDefault), nil
}

// ListControls pages every control of a program for one site, newest
// change first within a start time, cancelled and superseded included.
// The virtual end device has no controls.
func (m *DerProgramManager) ListControls(ctx context.Context, claims scope.Claims, siteID, groupID uint64, q ListQuery) (sep2.DERControlList, error) {
	s, err := scope.NewDeviceOrAggregatorScope(claims, siteID)
	if err != nil {
		return sep2.DERControlList{}, err
	}
	mctx, err := m.config.MapCtx(ctx, time.Now().UTC())
	if err != nil {
		return sep2.DERControlList{}, err
	}
	if err := m.requireGroup(ctx, groupID); err != nil {
		return sep2.DERControlList{}, err
	}
	if s.IsVirtual() {
		return mapper.ToDerControlList(mctx, s.DisplaySiteID, groupID, nil, 0), nil
	}

	now := time.Now().UTC()
	total, err := m.does.CountActiveDoesIncludeDeleted(ctx, groupID, *s.SiteID, now, q.ChangedAfter)
	if err != nil {
		return sep2.DERControlList{}, err
	}
	records, err := m.does.SelectActiveDoesIncludeDeleted(ctx, groupID, *s.SiteID, now, q.ChangedAfter, q.Start, q.Limit)
	if err != nil {
		return sep2.DERControlList{}, err
	}
	return mapper.ToDerControlList(mctx, *s.SiteID, groupID, records, total), nil
}

// ListActiveControls pages the controls whose window covers the current
// instant. The aggregator virtual device sees the whole partition.
func (m *DerProgramManager) ListActiveControls(ctx context.Context, claims scope.Claims, siteID, groupID uint64, q ListQuery) (sep2.DERControlList, error) {
	s, err := scope.NewDeviceOrAggregatorScope(claims, siteID)
	if err != nil {
		return sep2.DERControlList{}, err
	}
	mctx, err := m.config.MapCtx(ctx, time.Now().UTC())
	if err != nil {
		return sep2.DERControlList{}, err
	}
	if err := m.requireGroup(ctx, groupID); err != nil {
		return sep2.DERControlList{}, err
	}

	now := time.Now().UTC()
	total, err := m.does.CountDoesAtTimestamp(ctx, groupID, s.AggregatorID, s.SiteID, now, q.ChangedAfter)
	if err != nil {
		return sep2.DERControlList{}, err
	}
	records, err := m.does.SelectDoesAtTimestamp(ctx, groupID, s.AggregatorID, s.SiteID, now, q.ChangedAfter, q.Start, q.Limit)
	if err != nil {
		return sep2.DERControlList{}, err
	}
	return mapper.ToDerControlList(mctx, s.DisplaySiteID, groupID, records, total), nil
}

// GetControl serves one control by id.
func (m *DerProgramManager) GetControl(ctx context.Context, claims scope.Claims, siteID, groupID, doeID uint64) (sep2.DERControl, error) {
	s, err := scope.NewSiteScope(claims, siteID)
	if err != nil {
		return sep2.DERControl{}, err
	}
	mctx, err := m.config.MapCtx(ctx, time.Now().UTC())
	if err != nil {
		return sep2.DERControl{}, err
	}
	record, err := m.does.SelectDoeByID(ctx, doeID, s.AggregatorID, s.SiteID)
	if err != nil {
		return sep2.DERControl{}, err
	}
	if record == nil || record.SiteControlGroupID != groupID {
		return sep2.DERControl{}, apperrors.NewNotFoundError("DERControl not found")
	}
	return mapper.ToDerControl(mctx, s.SiteID, *record), nil
}

// GetDefaultControl merges the site fallback over the group fallback,
// site values winning field by field. 404 when neither exists.
func (m *DerProgramManager) GetDefaultControl(ctx context.Context, claims scope.Claims, siteID, groupID uint64) (sep2.DefaultDERControl, error) {
	s, err := scope.NewSiteScope(claims, siteID)
	if err != nil {
		return sep2.DefaultDERControl{}, err
	}
	mctx, err := m.config.MapCtx(ctx, time.Now().UTC())
	if err != nil {
		return sep2.DefaultDERControl{}, err
	}
	if err := m.requireGroup(ctx, groupID); err != nil {
		return sep2.DefaultDERControl{}, err
	}

	siteDef, err := m.sites.GetDefaultSiteControl(ctx, s.SiteID)
	if err != nil {
		return sep2.DefaultDERControl{}, err
	}
	groupDef, err := m.groups.GetDefault(ctx, groupID)
	if err != nil {
		return sep2.DefaultDERControl{}, err
	}
	if siteDef == nil && groupDef == nil {
		return sep2.DefaultDERControl{}, apperrors.NewNotFoundError("DefaultDERControl not found")
	}

	values := mapper.DefaultControlValues{}
	if groupDef != nil {
		values.ImportLimitActiveWatts = groupDef.ImportLimitActiveWatts
		values.ExportLimitWatts = groupDef.ExportLimitActiveWatts
		values.GenerationLimitActiveWatts = groupDef.GenerationLimitActiveWatts
		values.LoadLimitActiveWatts = groupDef.LoadLimitActiveWatts
		values.RampRatePercentPerSecond = groupDef.RampRatePercentPerSecond
	}
	if siteDef != nil {
		overrideValue(&values.ImportLimitActiveWatts, siteDef.ImportLimitActiveWatts)
		overrideValue(&values.ExportLimitWatts, siteDef.ExportLimitActiveWatts)
		overrideValue(&values.GenerationLimitActiveWatts, siteDef.GenerationLimitActiveWatts)
		overrideValue(&values.LoadLimitActiveWatts, siteDef.LoadLimitActiveWatts)
		overrideValue(&values.RampRatePercentPerSecond, siteDef.RampRatePercentPerSecond)
	}
	return mapper.ToDefaultDerControl(mctx, s.SiteID, groupID, values), nil
}

func overrideValue(dst **int64, src *int64) {
	if src != nil {
		*dst = src
	}
}

func (m *DerProgramManager) hasDefault(ctx context.Context, siteID *uint64, groupID uint64) (bool, error) {
	groupDef, err := m.groups.GetDefault(ctx, groupID)
	if err != nil {
		return false, err
	}
	if groupDef != nil {
		return true, nil
	}
	if siteID == nil {
		return false, nil
	}
	siteDef, err := m.sites.GetDefaultSiteControl(ctx, *siteID)
	if err != nil {
		return false, err
	}
	return siteDef != nil, nil
}

func (m *DerProgramManager) requireGroup(ctx context.Context, groupID uint64) error {
	group, err := m.groups.GetByID(ctx, groupID)
	if err != nil {
		return err
	}
	if group == nil {
		return apperrors.NewNotFoundError("DERProgram not found")
	}
	return nil
}
