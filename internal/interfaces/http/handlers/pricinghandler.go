package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"enverge/internal/application/manager"
	"enverge/internal/domain/scope"
	"enverge/internal/shared/errors"
)

// PricingHandler serves the tariff tree. Below the RateComponent level
// the path segments are virtual coordinates (local day, reading type,
// minute of day, price) rather than row ids.
type PricingHandler struct {
	manager *manager.PricingManager
}

func NewPricingHandler(m *manager.PricingManager) *PricingHandler {
	return &PricingHandler{manager: m}
}

// rateCoords extracts the (site, tariff, day, prt) coordinate shared by
// the rate component subtree.
func rateCoords(c *gin.Context) (scope.Claims, uint64, uint64, string, int, bool) {
	claims, ok := currentClaims(c)
	if !ok {
		return scope.Claims{}, 0, 0, "", 0, false
	}
	siteID, ok := pathID(c, "site_id")
	if !ok {
		return scope.Claims{}, 0, 0, "", 0, false
	}
	tariffID, ok := pathID(c, "tariff_id")
	if !ok {
		return scope.Claims{}, 0, 0, "", 0, false
	}
	prt, err := strconv.Atoi(c.Param("prt"))
	if err != nil {
		writeError(c, errors.NewNotFoundError("RateComponent not found"))
		return scope.Claims{}, 0, 0, "", 0, false
	}
	return claims, siteID, tariffID, c.Param("day"), prt, true
}

func (h *PricingHandler) ListTariffs(c *gin.Context) {
	claims, ok := currentClaims(c)
	if !ok {
		return
	}
	list, err := h.manager.ListTariffs(c.Request.Context(), claims, parseListQuery(c))
	if err != nil {
		writeError(c, err)
		return
	}
	writeXML(c, http.StatusOK, list)
}

func (h *PricingHandler) GetTariff(c *gin.Context) {
	claims, ok := currentClaims(c)
	if !ok {
		return
	}
	tariffID, ok := pathID(c, "tariff_id")
	if !ok {
		return
	}
	tariff, err := h.manager.GetTariff(c.Request.Context(), claims, tariffID)
	if err != nil {
		writeError(c, err)
		return
	}
	writeXML(c, http.StatusOK, tariff)
}

func (h *PricingHandler) ListSiteTariffs(c *gin.Context) {
	claims, ok := currentClaims(c)
	if !ok {
		return
	}
	siteID, ok := pathID(c, "site_id")
	if !ok {
		return
	}
	list, err := h.manager.ListSiteTariffs(c.Request.Context(), claims, siteID, parseListQuery(c))
	if err != nil {
		writeError(c, err)
		return
	}
	writeXML(c, http.StatusOK, list)
}

func (h *PricingHandler) GetSiteTariff(c *gin.Context) {
	claims, ok := currentClaims(c)
	if !ok {
		return
	}
	siteID, ok := pathID(c, "site_id")
	if !ok {
		return
	}
	tariffID, ok := pathID(c, "tariff_id")
	if !ok {
		return
	}
	tariff, err := h.manager.GetSiteTariff(c.Request.Context(), claims, siteID, tariffID)
	if err != nil {
		writeError(c, err)
		return
	}
	writeXML(c, http.StatusOK, tariff)
}

func (h *PricingHandler) ListRateComponents(c *gin.Context) {
	claims, ok := currentClaims(c)
	if !ok {
		return
	}
	siteID, ok := pathID(c, "site_id")
	if !ok {
		return
	}
	tariffID, ok := pathID(c, "tariff_id")
	if !ok {
		return
	}
	list, err := h.manager.ListRateComponents(c.Request.Context(), claims, siteID, tariffID, parseListQuery(c))
	if err != nil {
		writeError(c, err)
		return
	}
	writeXML(c, http.StatusOK, list)
}

func (h *PricingHandler) GetRateComponent(c *gin.Context) {
	claims, siteID, tariffID, day, prt, ok := rateCoords(c)
	if !ok {
		return
	}
	rc, err := h.manager.GetRateComponent(c.Request.Context(), claims, siteID, tariffID, day, prt)
	if err != nil {
		writeError(c, err)
		return
	}
	writeXML(c, http.StatusOK, rc)
}

func (h *PricingHandler) ListTimeTariffIntervals(c *gin.Context) {
	claims, siteID, tariffID, day, prt, ok := rateCoords(c)
	if !ok {
		return
	}
	list, err := h.manager.ListTimeTariffIntervals(c.Request.Context(), claims, siteID, tariffID, day, prt, parseListQuery(c))
	if err != nil {
		writeError(c, err)
		return
	}
	writeXML(c, http.StatusOK, list)
}

func (h *PricingHandler) GetTimeTariffInterval(c *gin.Context) {
	claims, siteID, tariffID, day, prt, ok := rateCoords(c)
	if !ok {
		return
	}
	tti, err := h.manager.GetTimeTariffInterval(c.Request.Context(), claims, siteID, tariffID, day, prt, c.Param("tod"))
	if err != nil {
		writeError(c, err)
		return
	}
	writeXML(c, http.StatusOK, tti)
}

func (h *PricingHandler) ListConsumptionTariffIntervals(c *gin.Context) {
	claims, siteID, tariffID, day, prt, ok := rateCoords(c)
	if !ok {
		return
	}
	price, ok := pathPrice(c)
	if !ok {
		return
	}
	list, err := h.manager.ListConsumptionTariffIntervals(c.Request.Context(), claims, siteID, tariffID, day, prt, c.Param("tod"), price)
	if err != nil {
		writeError(c, err)
		return
	}
	writeXML(c, http.StatusOK, list)
}

func (h *PricingHandler) GetConsumptionTariffInterval(c *gin.Context) {
	claims, siteID, tariffID, day, prt, ok := rateCoords(c)
	if !ok {
		return
	}
	price, ok := pathPrice(c)
	if !ok {
		return
	}
	cti, err := h.manager.GetConsumptionTariffInterval(c.Request.Context(), claims, siteID, tariffID, day, prt, c.Param("tod"), price)
	if err != nil {
		writeError(c, err)
		return
	}
	writeXML(c, http.StatusOK, cti)
}
