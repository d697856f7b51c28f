package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"enverge/internal/application/manager"
	"enverge/internal/domain/scope"
	"enverge/internal/interfaces/dto/sep2"
)

// DERHandler serves the per-site DER list and the four writable DER
// subresources clients report into.
type DERHandler struct {
	manager *manager.DERManager
}

func NewDERHandler(m *manager.DERManager) *DERHandler {
	return &DERHandler{manager: m}
}

// derIDs extracts the (site, der) path pair shared by every route here.
func derIDs(c *gin.Context) (scope.Claims, uint64, uint64, bool) {
	claims, ok := currentClaims(c)
	if !ok {
		return scope.Claims{}, 0, 0, false
	}
	siteID, ok := pathID(c, "site_id")
	if !ok {
		return scope.Claims{}, 0, 0, false
	}
	derID, ok := pathID(c, "der_id")
	if !ok {
		return scope.Claims{}, 0, 0, false
	}
	return claims, siteID, derID, true
}

func (h *DERHandler) List(c *gin.Context) {
	claims, ok := currentClaims(c)
	if !ok {
		return
	}
	siteID, ok := pathID(c, "site_id")
	if !ok {
		return
	}
	list, err := h.manager.List(c.Request.Context(), claims, siteID, parseListQuery(c))
	if err != nil {
		writeError(c, err)
		return
	}
	writeXML(c, http.StatusOK, list)
}

func (h *DERHandler) Get(c *gin.Context) {
	claims, siteID, derID, ok := derIDs(c)
	if !ok {
		return
	}
	der, err := h.manager.Get(c.Request.Context(), claims, siteID, derID)
	if err != nil {
		writeError(c, err)
		return
	}
	writeXML(c, http.StatusOK, der)
}

func (h *DERHandler) GetCapability(c *gin.Context) {
	claims, siteID, derID, ok := derIDs(c)
	if !ok {
		return
	}
	cap, err := h.manager.GetCapability(c.Request.Context(), claims, siteID, derID)
	if err != nil {
		writeError(c, err)
		return
	}
	writeXML(c, http.StatusOK, cap)
}

func (h *DERHandler) PutCapability(c *gin.Context) {
	claims, siteID, derID, ok := derIDs(c)
	if !ok {
		return
	}
	var dto sep2.DERCapability
	if !bindXML(c, &dto) {
		return
	}
	if err := h.manager.PutCapability(c.Request.Context(), claims, siteID, derID, &dto); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *DERHandler) GetSettings(c *gin.Context) {
	claims, siteID, derID, ok := derIDs(c)
	if !ok {
		return
	}
	settings, err := h.manager.GetSettings(c.Request.Context(), claims, siteID, derID)
	if err != nil {
		writeError(c, err)
		return
	}
	writeXML(c, http.StatusOK, settings)
}

func (h *DERHandler) PutSettings(c *gin.Context) {
	claims, siteID, derID, ok := derIDs(c)
	if !ok {
		return
	}
	var dto sep2.DERSettings
	if !bindXML(c, &dto) {
		return
	}
	if err := h.manager.PutSettings(c.Request.Context(), claims, siteID, derID, &dto); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *DERHandler) GetAvailability(c *gin.Context) {
	claims, siteID, derID, ok := derIDs(c)
	if !ok {
		return
	}
	avail, err := h.manager.GetAvailability(c.Request.Context(), claims, siteID, derID)
	if err != nil {
		writeError(c, err)
		return
	}
	writeXML(c, http.StatusOK, avail)
}

func (h *DERHandler) PutAvailability(c *gin.Context) {
	claims, siteID, derID, ok := derIDs(c)
	if !ok {
		return
	}
	var dto sep2.DERAvailability
	if !bindXML(c, &dto) {
		return
	}
	if err := h.manager.PutAvailability(c.Request.Context(), claims, siteID, derID, &dto); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *DERHandler) GetStatus(c *gin.Context) {
	claims, siteID, derID, ok := derIDs(c)
	if !ok {
		return
	}
	status, err := h.manager.GetStatus(c.Request.Context(), claims, siteID, derID)
	if err != nil {
		writeError(c, err)
		return
	}
	writeXML(c, http.StatusOK, status)
}

func (h *DERHandler) PutStatus(c *gin.Context) {
	claims, siteID, derID, ok := derIDs(c)
	if !ok {
		return
	}
	var dto sep2.DERStatus
	if !bindXML(c, &dto) {
		return
	}
	if err := h.manager.PutStatus(c.Request.Context(), claims, siteID, derID, &dto); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
