package mapper

import (
	"enverge/internal/domain/ident"
	"enverge/internal/infrastructure/persistence/models"
	"enverge/internal/interfaces/dto/sep2"
)

// responseSetMridType distinguishes the two fixed response sets.
const (
	responseSetTypeSiteControl uint32 = 1
	responseSetTypeRate        uint32 = 2
)

// ToResponseSet projects one of the two fixed response sets.
func ToResponseSet(ctx Ctx, siteID uint64, setType string) sep2.ResponseSet {
	mridType := responseSetTypeSiteControl
	if setType == models.ResponseSetTariffGeneratedRate {
		mridType = responseSetTypeRate
	}
	return sep2.ResponseSet{
		Xmlns:            sep2.NamespaceSep2,
		Href:             ctx.Hrefs.ResponseSet(siteID, setType),
		MRID:             ident.ResponseSetMrid(mridType, ctx.PEN).String(),
		ResponseListLink: listLinkNoCount(ctx.Hrefs.ResponseList(siteID, setType)),
	}
}

// ToResponseSetList enumerates both response sets for a site.
func ToResponseSetList(ctx Ctx, siteID uint64) sep2.ResponseSetList {
	sets := []sep2.ResponseSet{
		ToResponseSet(ctx, siteID, models.ResponseSetSiteControl),
		ToResponseSet(ctx, siteID, models.ResponseSetTariffGeneratedRate),
	}
	for i := range sets {
		sets[i].Xmlns = ""
	}
	return sep2.ResponseSetList{
		Xmlns:        sep2.NamespaceSep2,
		Href:         ctx.Hrefs.ResponseSetList(siteID),
		All:          int32(len(sets)),
		Results:      int32(len(sets)),
		ResponseSets: sets,
	}
}

// ToSiteControlResponse projects a stored control acknowledgement.
func ToSiteControlResponse(ctx Ctx, lfdi string, resp *models.SiteControlResponseModel) sep2.Response {
	created := epoch(resp.CreatedTime)
	return sep2.Response{
		Xmlns:           sep2.NamespaceSep2,
		CreatedDateTime: &created,
		EndDeviceLFDI:   lfdi,
		Status:          i32ptr(resp.Status),
		Subject:         ident.DoeMrid(resp.DynamicOperatingEnvelopeID, ctx.PEN).String(),
	}
}

// ToRateResponse projects a stored rate acknowledgement.
func ToRateResponse(ctx Ctx, lfdi string, resp *models.TariffGeneratedRateResponseModel) (sep2.Response, error) {
	mrid, err := ident.TimeTariffIntervalMrid(resp.TariffGeneratedRateID, int(resp.PricingReadingType), ctx.PEN)
	if err != nil {
		return sep2.Response{}, err
	}
	created := epoch(resp.CreatedTime)
	return sep2.Response{
		Xmlns:           sep2.NamespaceSep2,
		CreatedDateTime: &created,
		EndDeviceLFDI:   lfdi,
		Status:          i32ptr(resp.Status),
		Subject:         mrid.String(),
	}, nil
}

// ToResponseList assembles a paged acknowledgement list.
func ToResponseList(ctx Ctx, siteID uint64, setType string, responses []sep2.Response, total int64) sep2.ResponseList {
	items := make([]sep2.Response, len(responses))
	for i, r := range responses {
		r.Xmlns = ""
		items[i] = r
	}
	return sep2.ResponseList{
		Xmlns:     sep2.NamespaceSep2,
		Href:      ctx.Hrefs.ResponseList(siteID, setType),
		All:       int32(total),
		Results:   int32(len(items)),
		Responses: items,
	}
}

// FromResponse reads a posted acknowledgement, returning the decoded
// subject MRID for the manager to resolve against the right family.
func FromResponse(dto *sep2.Response) (ident.Mrid, int32, error) {
	mrid, err := ident.ParseMrid(dto.Subject)
	if err != nil {
		return ident.Mrid{}, 0, err
	}
	status := int32(0)
	if dto.Status != nil {
		status = *dto.Status
	}
	return mrid, status, nil
}
