package admin

import (
	"enverge/internal/infrastructure/persistence/models"
	admindto "enverge/internal/interfaces/dto/admin"
)

func runtimeConfigResponse(cfg *models.RuntimeServerConfigModel) admindto.RuntimeConfigResponse {
	return admindto.RuntimeConfigResponse{
		DcapPollRateSeconds:      cfg.DcapPollRateSeconds,
		EdevlPollRateSeconds:     cfg.EdevlPollRateSeconds,
		FsalPollRateSeconds:      cfg.FsalPollRateSeconds,
		DerplPollRateSeconds:     cfg.DerplPollRateSeconds,
		DerlPollRateSeconds:      cfg.DerlPollRateSeconds,
		MupPostRateSeconds:       cfg.MupPostRateSeconds,
		SiteControlPow10Encoding: cfg.SiteControlPow10Encoding,
		DisableEdevRegistration:  cfg.DisableEdevRegistration,
	}
}
