package mapper

import (
	"enverge/internal/domain/envelope"
	"enverge/internal/domain/ident"
	"enverge/internal/infrastructure/persistence/models"
	"enverge/internal/interfaces/dto/sep2"
)

// 2030.5 EventStatus currentStatus values.
const (
	eventStatusScheduled  int32 = 0
	eventStatusActive     int32 = 1
	eventStatusCancelled  int32 = 2
	eventStatusSuperseded int32 = 4
)

// doeEventStatus derives the event lifecycle state of an envelope.
// Archived records surface as cancelled; superseded wins over schedule
// state.
func doeEventStatus(ctx Ctx, rec envelope.DoeRecord) sep2.EventStatus {
	status := sep2.EventStatus{
		DateTime:              epoch(rec.ChangedTime),
		PotentiallySuperseded: rec.Superseded,
	}
	switch {
	case rec.IsDeleted():
		status.CurrentStatus = eventStatusCancelled
	case rec.Superseded:
		status.CurrentStatus = eventStatusSuperseded
		changed := epoch(rec.ChangedTime)
		status.PotentiallySupersededTime = &changed
	case !rec.StartTime.After(ctx.Now) && rec.EndTime.After(ctx.Now):
		status.CurrentStatus = eventStatusActive
	default:
		status.CurrentStatus = eventStatusScheduled
	}
	return status
}

// ToDerControl projects one envelope record as a DERControl event.
// Watt limits are scaled by the runtime pow10 encoding.
func ToDerControl(ctx Ctx, siteID uint64, rec envelope.DoeRecord) sep2.DERControl {
	pow10 := ctx.Opts.SiteControlPow10
	ctl := sep2.DERControl{
		Xmlns:            sep2.NamespaceSep2,
		XmlnsCsipAus:     sep2.NamespaceCsipAus,
		Href:             ctx.Hrefs.DerControl(siteID, rec.SiteControlGroupID, rec.ID),
		ReplyTo:          ctx.Hrefs.ResponseList(siteID, models.ResponseSetSiteControl),
		ResponseRequired: "03",
		MRID:             ident.DoeMrid(rec.ID, ctx.PEN).String(),
		CreationTime:     epoch(rec.CreatedTime),
		EventStatus:      doeEventStatus(ctx, rec),
		Interval: sep2.DateTimeInterval{
			Duration: rec.DurationSeconds,
			Start:    epoch(rec.StartTime),
		},
		RandomizeStart: rec.RandomizeStartSeconds,
		DERControlBase: sep2.DERControlBase{
			OpModConnect:  rec.SetConnected,
			OpModEnergize: rec.SetEnergized,
			RampTms:       rec.RampTimeSeconds,
			OpModImpLimW:  scaleWattsPtr(rec.ImportLimitActiveWatts, pow10),
			OpModExpLimW:  scaleWattsPtr(rec.ExportLimitWatts, pow10),
			OpModGenLimW:  scaleWattsPtr(rec.GenerationLimitActiveWatts, pow10),
			OpModLoadLimW: scaleWattsPtr(rec.LoadLimitActiveWatts, pow10),
		},
	}
	if rec.SetPointPercentage != nil {
		pct := sep2.SignedPercent(*rec.SetPointPercentage)
		ctl.DERControlBase.OpModFixedW = &pct
	}
	return ctl
}

// ToDerControlList assembles a paged DERControlList for one program.
func ToDerControlList(ctx Ctx, siteID, groupID uint64, records []envelope.DoeRecord, total int64) sep2.DERControlList {
	items := make([]sep2.DERControl, len(records))
	for i, rec := range records {
		ctl := ToDerControl(ctx, siteID, rec)
		ctl.Xmlns = ""
		ctl.XmlnsCsipAus = ""
		items[i] = ctl
	}
	return sep2.DERControlList{
		Xmlns:        sep2.NamespaceSep2,
		XmlnsCsipAus: sep2.NamespaceCsipAus,
		Href:         ctx.Hrefs.DerControlList(siteID, groupID),
		All:          int32(total),
		Results:      int32(len(items)),
		Subscribable: i32ptr(1),
		PollRate:     i32ptr(ctx.Opts.DerlPollRate),
		DERControls:  items,
	}
}

// ToDerProgram projects a control group for one site.
func ToDerProgram(ctx Ctx, siteID uint64, group *models.SiteControlGroupModel, hasDefault bool) sep2.DERProgram {
	prog := sep2.DERProgram{
		Xmlns:        sep2.NamespaceSep2,
		Href:         ctx.Hrefs.DerProgram(siteID, group.ID),
		Subscribable: i32ptr(1),
		MRID:         ident.DerProgramMrid(siteID, ctx.PEN).String(),
		Description:  group.Description,
		Primacy:      group.Primacy,

		ActiveDERControlListLink: listLinkNoCount(ctx.Hrefs.ActiveDerControlList(siteID, group.ID)),
		DERControlListLink:       listLinkNoCount(ctx.Hrefs.DerControlList(siteID, group.ID)),
	}
	if hasDefault {
		prog.DefaultDERControlLink = link(ctx.Hrefs.DefaultDerControl(siteID, group.ID))
	}
	return prog
}

// ToDerProgramList assembles a site's paged program list.
func ToDerProgramList(ctx Ctx, siteID uint64, programs []sep2.DERProgram, total int64) sep2.DERProgramList {
	items := make([]sep2.DERProgram, len(programs))
	for i, p := range programs {
		p.Xmlns = ""
		items[i] = p
	}
	return sep2.DERProgramList{
		Xmlns:        sep2.NamespaceSep2,
		Href:         ctx.Hrefs.DerProgramList(siteID),
		All:          int32(total),
		Results:      int32(len(items)),
		Subscribable: i32ptr(1),
		PollRate:     i32ptr(ctx.Opts.DerplPollRate),
		DERPrograms:  items,
	}
}

// DefaultControlValues merges the site default with the group fallback.
// Site values win field by field.
type DefaultControlValues struct {
	ImportLimitActiveWatts     *int64
	ExportLimitWatts           *int64
	GenerationLimitActiveWatts *int64
	LoadLimitActiveWatts       *int64
	RampRatePercentPerSecond   *int64
}

// ToDefaultDerControl projects the merged fallback control values.
func ToDefaultDerControl(ctx Ctx, siteID, groupID uint64, values DefaultControlValues) sep2.DefaultDERControl {
	pow10 := ctx.Opts.SiteControlPow10
	return sep2.DefaultDERControl{
		Xmlns:        sep2.NamespaceSep2,
		XmlnsCsipAus: sep2.NamespaceCsipAus,
		Href:         ctx.Hrefs.DefaultDerControl(siteID, groupID),
		MRID:         ident.DefaultDoeMrid(ctx.PEN).String(),
		DERControlBase: sep2.DERControlBase{
			OpModImpLimW:  scaleWattsPtr(values.ImportLimitActiveWatts, pow10),
			OpModExpLimW:  scaleWattsPtr(values.ExportLimitWatts, pow10),
			OpModGenLimW:  scaleWattsPtr(values.GenerationLimitActiveWatts, pow10),
			OpModLoadLimW: scaleWattsPtr(values.LoadLimitActiveWatts, pow10),
		},
		SetGradW: gradW(values.RampRatePercentPerSecond),
	}
}

func gradW(ramp *int64) *int32 {
	if ramp == nil {
		return nil
	}
	v := int32(*ramp)
	return &v
}
