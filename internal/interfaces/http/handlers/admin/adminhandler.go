// Package admin implements the JSON operator surface. It mirrors the
// 2030.5 resource space without aggregator scoping and adds the bulk
// write operations the device surface never exposes.
package admin

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"enverge/internal/application/manager"
	admindto "enverge/internal/interfaces/dto/admin"
	"enverge/internal/shared/errors"
	"enverge/internal/shared/logger"
)

const (
	defaultPageLimit = 100
)

// Handler wraps the unscoped admin manager and the runtime config
// manager behind JSON endpoints.
type Handler struct {
	admin  *manager.AdminManager
	config *manager.ConfigManager
	logger logger.Interface
}

func NewHandler(adminMgr *manager.AdminManager, configMgr *manager.ConfigManager, log logger.Interface) *Handler {
	return &Handler{admin: adminMgr, config: configMgr, logger: log}
}

func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// --- aggregators ---

func (h *Handler) CreateAggregator(c *gin.Context) {
	var req admindto.AggregatorRequest
	if !bindJSON(c, &req) {
		return
	}
	resp, err := h.admin.CreateAggregator(c.Request.Context(), &req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *Handler) ListAggregators(c *gin.Context) {
	start, limit := pageParams(c)
	resp, err := h.admin.ListAggregators(c.Request.Context(), start, limit)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) GetAggregator(c *gin.Context) {
	id, ok := pathID(c, "aggregator_id")
	if !ok {
		return
	}
	resp, err := h.admin.GetAggregator(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) UpdateAggregatorDomains(c *gin.Context) {
	id, ok := pathID(c, "aggregator_id")
	if !ok {
		return
	}
	var req admindto.AggregatorRequest
	if !bindJSON(c, &req) {
		return
	}
	resp, err := h.admin.UpdateAggregatorDomains(c.Request.Context(), id, &req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// --- certificates ---

func (h *Handler) RegisterCertificate(c *gin.Context) {
	var req admindto.CertificateRequest
	if !bindJSON(c, &req) {
		return
	}
	resp, err := h.admin.RegisterCertificate(c.Request.Context(), &req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// --- sites ---

func (h *Handler) ListSites(c *gin.Context) {
	aggregatorID, ok := pathID(c, "aggregator_id")
	if !ok {
		return
	}
	start, limit := pageParams(c)
	resp, err := h.admin.ListSites(c.Request.Context(), aggregatorID, start, limit)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) UpsertSite(c *gin.Context) {
	var req admindto.SiteRequest
	if !bindJSON(c, &req) {
		return
	}
	resp, err := h.admin.UpsertSite(c.Request.Context(), &req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *Handler) DeleteSite(c *gin.Context) {
	aggregatorID, ok := pathID(c, "aggregator_id")
	if !ok {
		return
	}
	siteID, ok := pathID(c, "site_id")
	if !ok {
		return
	}
	if err := h.admin.DeleteSite(c.Request.Context(), siteID, aggregatorID); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) SetDefaultSiteControl(c *gin.Context) {
	siteID, ok := pathID(c, "site_id")
	if !ok {
		return
	}
	var req admindto.DefaultSiteControlRequest
	if !bindJSON(c, &req) {
		return
	}
	if err := h.admin.SetDefaultSiteControl(c.Request.Context(), siteID, &req); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// --- site control groups and controls ---

func (h *Handler) CreateGroup(c *gin.Context) {
	var req admindto.SiteControlGroupRequest
	if !bindJSON(c, &req) {
		return
	}
	resp, err := h.admin.CreateGroup(c.Request.Context(), &req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *Handler) ListGroups(c *gin.Context) {
	start, limit := pageParams(c)
	resp, err := h.admin.ListGroups(c.Request.Context(), start, limit)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) UpdateGroupPrimacy(c *gin.Context) {
	groupID, ok := pathID(c, "group_id")
	if !ok {
		return
	}
	var req admindto.PrimacyRequest
	if !bindJSON(c, &req) {
		return
	}
	if err := h.admin.UpdateGroupPrimacy(c.Request.Context(), groupID, &req); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) SetGroupDefault(c *gin.Context) {
	groupID, ok := pathID(c, "group_id")
	if !ok {
		return
	}
	var req admindto.DefaultSiteControlRequest
	if !bindJSON(c, &req) {
		return
	}
	if err := h.admin.SetGroupDefault(c.Request.Context(), groupID, &req); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) UpsertControls(c *gin.Context) {
	groupID, ok := pathID(c, "group_id")
	if !ok {
		return
	}
	var req admindto.SiteControlUpsertRequest
	if !bindJSON(c, &req) {
		return
	}
	if err := h.admin.UpsertControls(c.Request.Context(), groupID, &req); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusCreated)
}

func (h *Handler) DeleteControlsInRange(c *gin.Context) {
	groupID, ok := pathID(c, "group_id")
	if !ok {
		return
	}
	var req admindto.SiteControlRangeDeleteRequest
	if !bindJSON(c, &req) {
		return
	}
	if err := h.admin.DeleteControlsInRange(c.Request.Context(), groupID, &req); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// --- tariffs and rates ---

func (h *Handler) CreateTariff(c *gin.Context) {
	var req admindto.TariffRequest
	if !bindJSON(c, &req) {
		return
	}
	resp, err := h.admin.CreateTariff(c.Request.Context(), &req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *Handler) UpdateTariff(c *gin.Context) {
	tariffID, ok := pathID(c, "tariff_id")
	if !ok {
		return
	}
	var req admindto.TariffRequest
	if !bindJSON(c, &req) {
		return
	}
	resp, err := h.admin.UpdateTariff(c.Request.Context(), tariffID, &req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) ListTariffs(c *gin.Context) {
	start, limit := pageParams(c)
	resp, err := h.admin.ListTariffs(c.Request.Context(), start, limit)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) UpsertRates(c *gin.Context) {
	tariffID, ok := pathID(c, "tariff_id")
	if !ok {
		return
	}
	var req admindto.RateUpsertRequest
	if !bindJSON(c, &req) {
		return
	}
	if err := h.admin.UpsertRates(c.Request.Context(), tariffID, &req); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusCreated)
}

func (h *Handler) DeleteRatesInRange(c *gin.Context) {
	tariffID, ok := pathID(c, "tariff_id")
	if !ok {
		return
	}
	var req admindto.SiteControlRangeDeleteRequest
	if !bindJSON(c, &req) {
		return
	}
	if err := h.admin.DeleteRatesInRange(c.Request.Context(), tariffID, &req); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// --- calculation logs ---

func (h *Handler) CreateCalculationLog(c *gin.Context) {
	var req admindto.CalculationLogRequest
	if !bindJSON(c, &req) {
		return
	}
	resp, err := h.admin.CreateCalculationLog(c.Request.Context(), &req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *Handler) GetCalculationLog(c *gin.Context) {
	resp, err := h.admin.GetCalculationLog(c.Request.Context(), c.Param("external_id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// --- archive retrieval ---

func (h *Handler) ArchivedControls(c *gin.Context) {
	q, ok := bindArchiveQuery(c)
	if !ok {
		return
	}
	rows, err := h.admin.ArchivedControls(c.Request.Context(), q)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, rows)
}

func (h *Handler) ArchivedRates(c *gin.Context) {
	q, ok := bindArchiveQuery(c)
	if !ok {
		return
	}
	rows, err := h.admin.ArchivedRates(c.Request.Context(), q)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, rows)
}

func (h *Handler) ArchivedSites(c *gin.Context) {
	q, ok := bindArchiveQuery(c)
	if !ok {
		return
	}
	rows, err := h.admin.ArchivedSites(c.Request.Context(), q)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, rows)
}

// --- runtime config ---

func (h *Handler) GetRuntimeConfig(c *gin.Context) {
	cfg, err := h.config.Current(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, runtimeConfigResponse(cfg))
}

func (h *Handler) UpdateRuntimeConfig(c *gin.Context) {
	var req admindto.RuntimeConfigRequest
	if !bindJSON(c, &req) {
		return
	}
	cfg, err := h.config.Update(c.Request.Context(), &req, time.Now().UTC())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, runtimeConfigResponse(cfg))
}

// --- helpers ---

func bindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return false
	}
	return true
}

func bindArchiveQuery(c *gin.Context) (*admindto.ArchiveQuery, bool) {
	var q admindto.ArchiveQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return nil, false
	}
	return &q, true
}

func pathID(c *gin.Context, name string) (uint64, bool) {
	v, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + name})
		return 0, false
	}
	return v, true
}

func pageParams(c *gin.Context) (int, int) {
	start := 0
	limit := defaultPageLimit
	if v, err := strconv.Atoi(c.Query("start")); err == nil && v >= 0 {
		start = v
	}
	if v, err := strconv.Atoi(c.Query("limit")); err == nil && v > 0 {
		limit = v
	}
	return start, limit
}

func writeError(c *gin.Context, err error) {
	appErr := errors.GetAppError(err)
	if appErr == nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}
	body := gin.H{"error": appErr.Message}
	if len(appErr.Details) > 0 {
		body["details"] = appErr.Details
	}
	c.JSON(appErr.Code, body)
}
