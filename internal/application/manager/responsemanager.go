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

// ResponseManager serves the two fixed response sets of each site and
// stores posted acknowledgements against the resource family the
// subject MRID identifies.
type ResponseManager struct {
	sites     *repository.SiteRepository
	responses *repository.ResponseRepository
	config    *ConfigManager
	logger    logger.Interface
}

func NewResponseManager(sites *repository.SiteRepository, responses *repository.ResponseRepository, config *ConfigManager, log logger.Interface) *ResponseManager {
	return &ResponseManager{
		sites:     sites,
		responses: responses,
		config:    config,
		logger:    log,
	}
}

// ParseResponseSetType validates a rsps path segment.
func ParseResponseSetType(segment string) (string, error) {
	switch segment {
	case models.ResponseSetSiteControl, models.ResponseSetTariffGeneratedRate:
		return segment, nil
	default:
		return "", apperrors.NewNotFoundError("ResponseSet not found")
	}
}

// ListSets enumerates the two fixed response sets.
func (m *ResponseManager) ListSets(ctx context.Context, claims scope.Claims, siteID uint64) (sep2.ResponseSetList, error) {
	s, err := scope.NewSiteScope(claims, siteID)
	if err != nil {
		return sep2.ResponseSetList{}, err
	}
	mctx, err := m.config.MapCtx(ctx, time.Now().UTC())
	if err != nil {
		return sep2.ResponseSetList{}, err
	}
	return mapper.ToResponseSetList(mctx, s.SiteID), nil
}

// GetSet serves one response set.
func (m *ResponseManager) GetSet(ctx context.Context, claims scope.Claims, siteID uint64, setType string) (sep2.ResponseSet, error) {
	s, err := scope.NewSiteScope(claims, siteID)
	if err != nil {
		return sep2.ResponseSet{}, err
	}
	mctx, err := m.config.MapCtx(ctx, time.Now().UTC())
	if err != nil {
		return sep2.ResponseSet{}, err
	}
	return mapper.ToResponseSet(mctx, s.SiteID, setType), nil
}

// ListResponses pages one set's stored acknowledgements, newest first.
func (m *ResponseManager) ListResponses(ctx context.Context, claims scope.Claims, siteID uint64, setType string, q ListQuery) (sep2.ResponseList, error) {
	s, err := scope.NewSiteScope(claims, siteID)
	if err != nil {
		return sep2.ResponseList{}, err
	}
	mctx, err := m.config.MapCtx(ctx, time.Now().UTC())
	if err != nil {
		return sep2.ResponseList{}, err
	}
	site, err := m.sites.GetByID(ctx, s.SiteID, s.AggregatorID)
	if err != nil {
		return sep2.ResponseList{}, err
	}
	if site == nil {
		return sep2.ResponseList{}, apperrors.NewNotFoundError("EndDevice not found")
	}

	var (
		total     int64
		responses []sep2.Response
	)
	switch setType {
	case models.ResponseSetSiteControl:
		total, err = m.responses.CountSiteControlResponses(ctx, s.SiteID, q.ChangedAfter)
		if err != nil {
			return sep2.ResponseList{}, err
		}
		rows, err := m.responses.ListSiteControlResponses(ctx, s.SiteID, q.ChangedAfter, q.Start, q.Limit)
		if err != nil {
			return sep2.ResponseList{}, err
		}
		for i := range rows {
			responses = append(responses, mapper.ToSiteControlResponse(mctx, site.Lfdi, &rows[i]))
		}

	case models.ResponseSetTariffGeneratedRate:
		total, err = m.responses.CountRateResponses(ctx, s.SiteID, q.ChangedAfter)
		if err != nil {
			return sep2.ResponseList{}, err
		}
		rows, err := m.responses.ListRateResponses(ctx, s.SiteID, q.ChangedAfter, q.Start, q.Limit)
		if err != nil {
			return sep2.ResponseList{}, err
		}
		for i := range rows {
			resp, err := mapper.ToRateResponse(mctx, site.Lfdi, &rows[i])
			if err != nil {
				return sep2.ResponseList{}, err
			}
			responses = append(responses, resp)
		}

	default:
		return sep2.ResponseList{}, apperrors.NewNotFoundError("ResponseSet not found")
	}

	return mapper.ToResponseList(mctx, s.SiteID, setType, responses, total), nil
}

// CreateResponse stores a posted acknowledgement. The subject MRID must
// carry this deployment's PEN and a resource family matching the set it
// was posted to. The referenced resource may already be archived, so
// only the id bits are resolved, not the row.
func (m *ResponseManager) CreateResponse(ctx context.Context, claims scope.Claims, siteID uint64, setType string, dto *sep2.Response) error {
	s, err := scope.NewSiteScope(claims, siteID)
	if err != nil {
		return err
	}
	mctx, err := m.config.MapCtx(ctx, time.Now().UTC())
	if err != nil {
		return err
	}
	mrid, status, err := mapper.FromResponse(dto)
	if err != nil {
		return err
	}
	if err := mrid.ValidatePEN(mctx.PEN); err != nil {
		return err
	}

	now := time.Now().UTC()
	switch setType {
	case models.ResponseSetSiteControl:
		if mrid.Type() != ident.MridTypeDynamicOperatingEnvelope {
			return apperrors.NewBadRequestError("subject mrid is not a DERControl")
		}
		return m.responses.CreateSiteControlResponse(ctx, &models.SiteControlResponseModel{
			SiteID:                     s.SiteID,
			DynamicOperatingEnvelopeID: ident.DecodeDoeMrid(mrid),
			Status:                     status,
			CreatedTime:                now,
		})

	case models.ResponseSetTariffGeneratedRate:
		if mrid.Type() != ident.MridTypeTimeTariffInterval {
			return apperrors.NewBadRequestError("subject mrid is not a TimeTariffInterval")
		}
		return m.responses.CreateRateResponse(ctx, &models.TariffGeneratedRateResponseModel{
			SiteID:                s.SiteID,
			TariffGeneratedRateID: mrid.IDLo(),
			PricingReadingType:    int32(mrid.IDHi()>>26) + 1,
			Status:                status,
			CreatedTime:           now,
		})

	default:
		return apperrors.NewNotFoundError("ResponseSet not found")
	}
}
