package mapper

import (
	"strconv"
	"time"

	"enverge/internal/infrastructure/persistence/models"
	"enverge/internal/interfaces/dto/sep2"
	apperrors "enverge/internal/shared/errors"
)

// ToDer projects a site's DER record with links to its four sub-records.
func ToDer(ctx Ctx, siteID, derID uint64) sep2.DER {
	return sep2.DER{
		Xmlns: sep2.NamespaceSep2,
		Href:  ctx.Hrefs.Der(siteID, derID),

		DERAvailabilityLink: link(ctx.Hrefs.DerAvailability(siteID, derID)),
		DERCapabilityLink:   link(ctx.Hrefs.DerCapability(siteID, derID)),
		DERSettingsLink:     link(ctx.Hrefs.DerSettings(siteID, derID)),
		DERStatusLink:       link(ctx.Hrefs.DerStatus(siteID, derID)),
	}
}

// ToDerList assembles the single-element DER list of a site.
func ToDerList(ctx Ctx, siteID uint64, ders []models.SiteDERModel) sep2.DERList {
	items := make([]sep2.DER, len(ders))
	for i, d := range ders {
		der := ToDer(ctx, siteID, d.ID)
		der.Xmlns = ""
		items[i] = der
	}
	return sep2.DERList{
		Xmlns:    sep2.NamespaceSep2,
		Href:     ctx.Hrefs.DerList(siteID),
		All:      int32(len(ders)),
		Results:  int32(len(items)),
		PollRate: i32ptr(ctx.Opts.DerlPollRate),
		DERs:     items,
	}
}

// parseHexFlags reads a hexBinary bit field element.
func parseHexFlags(s string) (*int64, error) {
	if s == "" {
		return nil, nil
	}
	v, err := strconv.ParseInt(s, 16, 64)
	if err != nil {
		return nil, apperrors.NewInvalidMappingError("bit field " + s + " is not hexadecimal")
	}
	return &v, nil
}

func hexFlags(v *int64) string {
	if v == nil {
		return ""
	}
	return hexField(*v)
}

// ToDerCapability projects the stored rating record.
func ToDerCapability(ctx Ctx, siteID, derID uint64, m *models.SiteDERRatingModel) sep2.DERCapability {
	return sep2.DERCapability{
		Xmlns:                sep2.NamespaceSep2,
		Href:                 ctx.Hrefs.DerCapability(siteID, derID),
		ModesSupported:       hexFlags(m.ModesSupported),
		RtgAbnormalCategory:  m.AbnormalCategory,
		RtgMaxChargeRateW:    activePower(m.MaxChargeRateWValue, m.MaxChargeRateWMult),
		RtgMaxDischargeRateW: activePower(m.MaxDischargeRateWValue, m.MaxDischargeRateWMult),
		RtgMaxVA:             apparentPower(m.MaxVaValue, m.MaxVaMultiplier),
		RtgMaxVar:            reactivePower(m.MaxVarValue, m.MaxVarMultiplier),
		RtgMaxVarNeg:         reactivePower(m.MaxVarNegValue, m.MaxVarNegMultiplier),
		RtgMaxW:              sep2.ActivePower{Multiplier: m.MaxWMultiplier, Value: int64(m.MaxWValue)},
		RtgMaxWh:             wattHour(m.MaxWhValue, m.MaxWhMultiplier),
		RtgNormalCategory:    m.NormalCategory,
		RtgVNom:              voltageRMS(m.VNomValue, m.VNomMultiplier),
		Type:                 m.DerType,
	}
}

// FromDerCapability translates a posted rating into the storage model.
func FromDerCapability(dto *sep2.DERCapability, siteDERID uint64) (*models.SiteDERRatingModel, error) {
	modes, err := parseHexFlags(dto.ModesSupported)
	if err != nil {
		return nil, err
	}
	m := &models.SiteDERRatingModel{
		SiteDERRatingFields: models.SiteDERRatingFields{
			SiteDERID:        siteDERID,
			ModesSupported:   modes,
			DerType:          dto.Type,
			MaxWValue:        int32(dto.RtgMaxW.Value),
			MaxWMultiplier:   dto.RtgMaxW.Multiplier,
			AbnormalCategory: dto.RtgAbnormalCategory,
			NormalCategory:   dto.RtgNormalCategory,
		},
	}
	if p := dto.RtgMaxVA; p != nil {
		m.MaxVaValue, m.MaxVaMultiplier = splitPower(p.Value, p.Multiplier)
	}
	if p := dto.RtgMaxVar; p != nil {
		m.MaxVarValue, m.MaxVarMultiplier = splitPower(p.Value, p.Multiplier)
	}
	if p := dto.RtgMaxVarNeg; p != nil {
		m.MaxVarNegValue, m.MaxVarNegMultiplier = splitPower(p.Value, p.Multiplier)
	}
	if p := dto.RtgMaxChargeRateW; p != nil {
		m.MaxChargeRateWValue, m.MaxChargeRateWMult = splitPower(p.Value, p.Multiplier)
	}
	if p := dto.RtgMaxDischargeRateW; p != nil {
		m.MaxDischargeRateWValue, m.MaxDischargeRateWMult = splitPower(p.Value, p.Multiplier)
	}
	if p := dto.RtgMaxWh; p != nil {
		m.MaxWhValue, m.MaxWhMultiplier = splitPower(p.Value, p.Multiplier)
	}
	if p := dto.RtgVNom; p != nil {
		m.VNomValue, m.VNomMultiplier = splitPower(p.Value, p.Multiplier)
	}
	return m, nil
}

func splitPower(value int64, multiplier int32) (*int32, *int32) {
	v := int32(value)
	mult := multiplier
	return &v, &mult
}

// ToDerSettings projects the stored settings record.
func ToDerSettings(ctx Ctx, siteID, derID uint64, m *models.SiteDERSettingModel) sep2.DERSettings {
	return sep2.DERSettings{
		Xmlns:             sep2.NamespaceSep2,
		Href:              ctx.Hrefs.DerSettings(siteID, derID),
		ModesEnabled:      hexFlags(m.ModesEnabled),
		SetESDelay:        m.EsDelay,
		SetESHighFreq:     m.EsHighFreq,
		SetESHighVolt:     m.EsHighVolt,
		SetESLowFreq:      m.EsLowFreq,
		SetESLowVolt:      m.EsLowVolt,
		SetESRampTms:      m.EsRampTms,
		SetESRandomDelay:  m.EsRandomDelay,
		SetGradW:          m.GradW,
		SetMaxChargeRateW: activePower(m.MaxChargeRateWValue, m.MaxChargeRateWMult),
		SetMaxVA:          apparentPower(m.MaxVaValue, m.MaxVaMultiplier),
		SetMaxVar:         reactivePower(m.MaxVarValue, m.MaxVarMultiplier),
		SetMaxVarNeg:      reactivePower(m.MaxVarNegValue, m.MaxVarNegMultiplier),
		SetMaxW:           sep2.ActivePower{Multiplier: m.MaxWMultiplier, Value: int64(m.MaxWValue)},
		SetVRef:           voltageRMS(m.VRefValue, m.VRefMultiplier),
		SetVRefOfs:        voltageRMS(m.VRefOfsValue, m.VRefOfsMultiplier),
		UpdatedTime:       epoch(m.ChangedTime),
	}
}

// FromDerSettings translates posted settings into the storage model.
func FromDerSettings(dto *sep2.DERSettings, siteDERID uint64) (*models.SiteDERSettingModel, error) {
	modes, err := parseHexFlags(dto.ModesEnabled)
	if err != nil {
		return nil, err
	}
	m := &models.SiteDERSettingModel{
		SiteDERSettingFields: models.SiteDERSettingFields{
			SiteDERID:      siteDERID,
			ModesEnabled:   modes,
			EsDelay:        dto.SetESDelay,
			EsHighFreq:     dto.SetESHighFreq,
			EsHighVolt:     dto.SetESHighVolt,
			EsLowFreq:      dto.SetESLowFreq,
			EsLowVolt:      dto.SetESLowVolt,
			EsRampTms:      dto.SetESRampTms,
			EsRandomDelay:  dto.SetESRandomDelay,
			GradW:          dto.SetGradW,
			MaxWValue:      int32(dto.SetMaxW.Value),
			MaxWMultiplier: dto.SetMaxW.Multiplier,
		},
	}
	if p := dto.SetMaxVA; p != nil {
		m.MaxVaValue, m.MaxVaMultiplier = splitPower(p.Value, p.Multiplier)
	}
	if p := dto.SetMaxVar; p != nil {
		m.MaxVarValue, m.MaxVarMultiplier = splitPower(p.Value, p.Multiplier)
	}
	if p := dto.SetMaxVarNeg; p != nil {
		m.MaxVarNegValue, m.MaxVarNegMultiplier = splitPower(p.Value, p.Multiplier)
	}
	if p := dto.SetMaxChargeRateW; p != nil {
		m.MaxChargeRateWValue, m.MaxChargeRateWMult = splitPower(p.Value, p.Multiplier)
	}
	if p := dto.SetVRef; p != nil {
		m.VRefValue, m.VRefMultiplier = splitPower(p.Value, p.Multiplier)
	}
	if p := dto.SetVRefOfs; p != nil {
		m.VRefOfsValue, m.VRefOfsMultiplier = splitPower(p.Value, p.Multiplier)
	}
	return m, nil
}

// ToDerAvailability projects the stored availability record.
func ToDerAvailability(ctx Ctx, siteID, derID uint64, m *models.SiteDERAvailabilityModel) sep2.DERAvailability {
	return sep2.DERAvailability{
		Xmlns:                sep2.NamespaceSep2,
		Href:                 ctx.Hrefs.DerAvailability(siteID, derID),
		AvailabilityDuration: m.AvailabilityDuration,
		MaxChargeDuration:    m.MaxChargeDuration,
		ReadingTime:          epoch(m.ChangedTime),
		ReserveChargePercent: m.ReservedChargePercent,
		ReservePercent:       m.ReservedDeliverPercent,
		StatVarAvail:         reactivePower(m.EstimatedVarAvailValue, m.EstimatedVarAvailMult),
		StatWAvail:           activePower(m.EstimatedWAvailValue, m.EstimatedWAvailMult),
	}
}

// FromDerAvailability translates a posted availability record.
func FromDerAvailability(dto *sep2.DERAvailability, siteDERID uint64) (*models.SiteDERAvailabilityModel, error) {
	m := &models.SiteDERAvailabilityModel{
		SiteDERAvailabilityFields: models.SiteDERAvailabilityFields{
			SiteDERID:              siteDERID,
			AvailabilityDuration:   dto.AvailabilityDuration,
			MaxChargeDuration:      dto.MaxChargeDuration,
			ReservedChargePercent:  dto.ReserveChargePercent,
			ReservedDeliverPercent: dto.ReservePercent,
		},
	}
	if p := dto.StatVarAvail; p != nil {
		m.EstimatedVarAvailValue, m.EstimatedVarAvailMult = splitPower(p.Value, p.Multiplier)
	}
	if p := dto.StatWAvail; p != nil {
		m.EstimatedWAvailValue, m.EstimatedWAvailMult = splitPower(p.Value, p.Multiplier)
	}
	return m, nil
}

// ToDerStatus projects the stored status record.
func ToDerStatus(ctx Ctx, siteID, derID uint64, m *models.SiteDERStatusModel) sep2.DERStatus {
	status := sep2.DERStatus{
		Xmlns:       sep2.NamespaceSep2,
		Href:        ctx.Hrefs.DerStatus(siteID, derID),
		ReadingTime: epoch(m.ChangedTime),
	}
	if m.AlarmStatus != nil {
		status.AlarmStatus = hexField(int64(*m.AlarmStatus))
	}
	if m.GeneratorConnectStatus != nil && m.GeneratorConnectStatusTime != nil {
		status.GenConnectStatus = &sep2.ConnectStatusType{
			DateTime: epoch(*m.GeneratorConnectStatusTime),
			Value:    hexField(int64(*m.GeneratorConnectStatus)),
		}
	}
	status.InverterStatus = statusValue(m.InverterStatus, m.InverterStatusTime)
	status.LocalControlModeStatus = statusValue(m.LocalControlModeStatus, m.LocalControlModeStatusTime)
	if m.ManufacturerStatus != nil && m.ManufacturerStatusTime != nil {
		status.ManufacturerStatus = &sep2.ManufacturerStatusValue{
			DateTime: epoch(*m.ManufacturerStatusTime),
			Value:    *m.ManufacturerStatus,
		}
	}
	status.OperationalModeStatus = statusValue(m.OperationalModeStatus, m.OperationalModeStatusTime)
	status.StateOfChargeStatus = statusValue(m.StateOfChargeStatus, m.StateOfChargeStatusTime)
	status.StorageModeStatus = statusValue(m.StorageModeStatus, m.StorageModeStatusTime)
	return status
}

func statusValue(v *int32, t *time.Time) *sep2.StatusValue {
	if v == nil || t == nil {
		return nil
	}
	return &sep2.StatusValue{DateTime: epoch(*t), Value: *v}
}

// FromDerStatus translates a posted status record. Each status element
// carries its own observation time.
func FromDerStatus(dto *sep2.DERStatus, siteDERID uint64) (*models.SiteDERStatusModel, error) {
	m := &models.SiteDERStatusModel{
		SiteDERStatusFields: models.SiteDERStatusFields{SiteDERID: siteDERID},
	}
	if dto.AlarmStatus != "" {
		alarm, err := parseHexFlags(dto.AlarmStatus)
		if err != nil {
			return nil, err
		}
		v := int32(*alarm)
		m.AlarmStatus = &v
	}
	if s := dto.GenConnectStatus; s != nil {
		flags, err := parseHexFlags(s.Value)
		if err != nil {
			return nil, err
		}
		v := int32(*flags)
		t := time.Unix(int64(s.DateTime), 0).UTC()
		m.GeneratorConnectStatus, m.GeneratorConnectStatusTime = &v, &t
	}
	m.InverterStatus, m.InverterStatusTime = fromStatusValue(dto.InverterStatus)
	m.LocalControlModeStatus, m.LocalControlModeStatusTime = fromStatusValue(dto.LocalControlModeStatus)
	if s := dto.ManufacturerStatus; s != nil {
		value := s.Value
		t := time.Unix(int64(s.DateTime), 0).UTC()
		m.ManufacturerStatus, m.ManufacturerStatusTime = &value, &t
	}
	m.OperationalModeStatus, m.OperationalModeStatusTime = fromStatusValue(dto.OperationalModeStatus)
	m.StateOfChargeStatus, m.StateOfChargeStatusTime = fromStatusValue(dto.StateOfChargeStatus)
	m.StorageModeStatus, m.StorageModeStatusTime = fromStatusValue(dto.StorageModeStatus)
	return m, nil
}

func fromStatusValue(s *sep2.StatusValue) (*int32, *time.Time) {
	if s == nil {
		return nil, nil
	}
	v := s.Value
	t := time.Unix(int64(s.DateTime), 0).UTC()
	return &v, &t
}
