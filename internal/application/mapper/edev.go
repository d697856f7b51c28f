package mapper

import (
	"enverge/internal/domain/ident"
	"enverge/internal/infrastructure/persistence/models"
	"enverge/internal/interfaces/dto/sep2"
	"enverge/internal/shared/constants"
)

// ToEndDevice projects a site as a 2030.5 EndDevice.
func ToEndDevice(ctx Ctx, site *models.SiteModel) sep2.EndDevice {
	edev := sep2.EndDevice{
		Xmlns:          sep2.NamespaceSep2,
		Href:           ctx.Hrefs.EndDevice(site.ID),
		Subscribable:   i32ptr(1),
		DeviceCategory: hexField(site.DeviceCategory),
		LFDI:           site.Lfdi,
		SFDI:           site.Sfdi,
		ChangedTime:    epoch(site.ChangedTime),
		Enabled:        i32ptr(1),
		PostRate:       site.PostRate,

		ConnectionPointLink:            link(ctx.Hrefs.ConnectionPoint(site.ID)),
		DERListLink:                    listLinkNoCount(ctx.Hrefs.DerList(site.ID)),
		DERProgramListLink:             listLinkNoCount(ctx.Hrefs.DerProgramList(site.ID)),
		FunctionSetAssignmentsListLink: listLinkNoCount(ctx.Hrefs.FunctionSetAssignmentsList(site.ID)),
		SubscriptionListLink:           listLinkNoCount(ctx.Hrefs.SubscriptionList(site.ID)),
		TariffProfileListLink:          listLinkNoCount(ctx.Hrefs.SiteTariffProfileList(site.ID)),
	}
	if !ctx.Opts.DisableRegistration {
		edev.RegistrationLink = link(ctx.Hrefs.Registration(site.ID))
	}
	return edev
}

// ToVirtualEndDevice projects the aggregator wide virtual EndDevice.
// It carries the certificate identity instead of a site's, and no
// registration or connection point.
func ToVirtualEndDevice(ctx Ctx, lfdi string, sfdi uint64) sep2.EndDevice {
	siteID := uint64(constants.VirtualEndDeviceSiteID)
	return sep2.EndDevice{
		Xmlns:        sep2.NamespaceSep2,
		Href:         ctx.Hrefs.EndDevice(siteID),
		Subscribable: i32ptr(1),
		LFDI:         lfdi,
		SFDI:         sfdi,
		ChangedTime:  epoch(ctx.Now),
		Enabled:      i32ptr(1),

		DERProgramListLink:             listLinkNoCount(ctx.Hrefs.DerProgramList(siteID)),
		FunctionSetAssignmentsListLink: listLinkNoCount(ctx.Hrefs.FunctionSetAssignmentsList(siteID)),
		SubscriptionListLink:           listLinkNoCount(ctx.Hrefs.SubscriptionList(siteID)),
		TariffProfileListLink:          listLinkNoCount(ctx.Hrefs.SiteTariffProfileList(siteID)),
	}
}

// ToEndDeviceList assembles the paged EndDeviceList. The caller has
// already decided whether the virtual device heads the page.
func ToEndDeviceList(ctx Ctx, devices []sep2.EndDevice, total int64) sep2.EndDeviceList {
	items := make([]sep2.EndDevice, len(devices))
	for i, d := range devices {
		d.Xmlns = ""
		items[i] = d
	}
	return sep2.EndDeviceList{
		Xmlns:        sep2.NamespaceSep2,
		Href:         ctx.Hrefs.EndDeviceList(),
		All:          int32(total),
		Results:      int32(len(items)),
		Subscribable: i32ptr(1),
		PollRate:     i32ptr(ctx.Opts.EdevlPollRate),
		EndDevices:   items,
	}
}

// ToRegistration exposes the site's registration PIN.
func ToRegistration(ctx Ctx, site *models.SiteModel) sep2.Registration {
	return sep2.Registration{
		Xmlns:              sep2.NamespaceSep2,
		Href:               ctx.Hrefs.Registration(site.ID),
		DateTimeRegistered: epoch(site.CreatedTime),
		PIN:                site.RegistrationPin,
	}
}

// ToConnectionPoint exposes the CSIP-AUS connection point id (NMI).
func ToConnectionPoint(ctx Ctx, site *models.SiteModel) sep2.ConnectionPoint {
	cp := sep2.ConnectionPoint{
		XmlnsCsipAus: sep2.NamespaceCsipAus,
		Href:         ctx.Hrefs.ConnectionPoint(site.ID),
	}
	if site.Nmi != nil {
		cp.ConnectionPointID = *site.Nmi
	}
	return cp
}

// ToFunctionSetAssignments projects one fsa id for one site.
func ToFunctionSetAssignments(ctx Ctx, siteID, fsaID uint64) sep2.FunctionSetAssignments {
	return sep2.FunctionSetAssignments{
		Xmlns: sep2.NamespaceSep2,
		Href:  ctx.Hrefs.FunctionSetAssignments(siteID, fsaID),
		MRID:  ident.FsaMrid(siteID, fsaID, ctx.PEN).String(),

		DERProgramListLink:    listLinkNoCount(ctx.Hrefs.DerProgramList(siteID)),
		TariffProfileListLink: listLinkNoCount(ctx.Hrefs.SiteTariffProfileList(siteID)),
		TimeLink:              link(ctx.Hrefs.Time()),
	}
}

// ToFunctionSetAssignmentsList assembles the paged assignments list.
func ToFunctionSetAssignmentsList(ctx Ctx, siteID uint64, fsaIDs []uint64, total int64) sep2.FunctionSetAssignmentsList {
	items := make([]sep2.FunctionSetAssignments, len(fsaIDs))
	for i, fsaID := range fsaIDs {
		fsa := ToFunctionSetAssignments(ctx, siteID, fsaID)
		fsa.Xmlns = ""
		items[i] = fsa
	}
	return sep2.FunctionSetAssignmentsList{
		Xmlns:                  sep2.NamespaceSep2,
		Href:                   ctx.Hrefs.FunctionSetAssignmentsList(siteID),
		All:                    int32(total),
		Results:                int32(len(items)),
		Subscribable:           i32ptr(1),
		PollRate:               i32ptr(ctx.Opts.FsalPollRate),
		FunctionSetAssignments: items,
	}
}

// ToDeviceCapability builds the discovery root.
func ToDeviceCapability(ctx Ctx) sep2.DeviceCapability {
	return sep2.DeviceCapability{
		Xmlns:                    sep2.NamespaceSep2,
		Href:                     ctx.Hrefs.DeviceCapability(),
		PollRate:                 i32ptr(ctx.Opts.DcapPollRate),
		TimeLink:                 link(ctx.Hrefs.Time()),
		EndDeviceListLink:        listLinkNoCount(ctx.Hrefs.EndDeviceList()),
		MirrorUsagePointListLink: listLinkNoCount(ctx.Hrefs.MirrorUsagePointList()),
	}
}

// ToTime builds the clock resource. The server runs in UTC; dst fields
// are flat.
func ToTime(ctx Ctx) sep2.Time {
	return sep2.Time{
		Xmlns:       sep2.NamespaceSep2,
		Href:        ctx.Hrefs.Time(),
		CurrentTime: epoch(ctx.Now),
		Quality:     4,
	}
}
