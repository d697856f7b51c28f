package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"enverge/internal/application/manager"
	"enverge/internal/domain/ident"
	"enverge/internal/interfaces/dto/sep2"
)

// EndDeviceHandler serves the discovery roots and the EndDevice tree:
// /dcap, /tm, /edev, registration, connection point and function set
// assignments.
type EndDeviceHandler struct {
	manager *manager.EndDeviceManager
	hrefs   ident.HrefBuilder
}

func NewEndDeviceHandler(m *manager.EndDeviceManager, hrefs ident.HrefBuilder) *EndDeviceHandler {
	return &EndDeviceHandler{manager: m, hrefs: hrefs}
}

func (h *EndDeviceHandler) DeviceCapability(c *gin.Context) {
	claims, ok := currentClaims(c)
	if !ok {
		return
	}
	dcap, err := h.manager.DeviceCapability(c.Request.Context(), claims)
	if err != nil {
		writeError(c, err)
		return
	}
	writeXML(c, http.StatusOK, dcap)
}

func (h *EndDeviceHandler) Time(c *gin.Context) {
	claims, ok := currentClaims(c)
	if !ok {
		return
	}
	tm, err := h.manager.CurrentTime(c.Request.Context(), claims)
	if err != nil {
		writeError(c, err)
		return
	}
	writeXML(c, http.StatusOK, tm)
}

func (h *EndDeviceHandler) List(c *gin.Context) {
	claims, ok := currentClaims(c)
	if !ok {
		return
	}
	list, err := h.manager.List(c.Request.Context(), claims, parseListQuery(c))
	if err != nil {
		writeError(c, err)
		return
	}
	writeXML(c, http.StatusOK, list)
}

func (h *EndDeviceHandler) Get(c *gin.Context) {
	claims, ok := currentClaims(c)
	if !ok {
		return
	}
	siteID, ok := pathID(c, "site_id")
	if !ok {
		return
	}
	edev, err := h.manager.Get(c.Request.Context(), claims, siteID)
	if err != nil {
		writeError(c, err)
		return
	}
	writeXML(c, http.StatusOK, edev)
}

func (h *EndDeviceHandler) Register(c *gin.Context) {
	claims, ok := currentClaims(c)
	if !ok {
		return
	}
	var dto sep2.EndDevice
	if !bindXML(c, &dto) {
		return
	}
	site, err := h.manager.Register(c.Request.Context(), claims, &dto)
	if err != nil {
		writeError(c, err)
		return
	}
	writeCreated(c, h.hrefs.EndDevice(site.ID))
}

func (h *EndDeviceHandler) Delete(c *gin.Context) {
	claims, ok := currentClaims(c)
	if !ok {
		return
	}
	siteID, ok := pathID(c, "site_id")
	if !ok {
		return
	}
	if err := h.manager.Delete(c.Request.Context(), claims, siteID); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *EndDeviceHandler) Registration(c *gin.Context) {
	claims, ok := currentClaims(c)
	if !ok {
		return
	}
	siteID, ok := pathID(c, "site_id")
	if !ok {
		return
	}
	reg, err := h.manager.Registration(c.Request.Context(), claims, siteID)
	if err != nil {
		writeError(c, err)
		return
	}
	writeXML(c, http.StatusOK, reg)
}

func (h *EndDeviceHandler) GetConnectionPoint(c *gin.Context) {
	claims, ok := currentClaims(c)
	if !ok {
		return
	}
	siteID, ok := pathID(c, "site_id")
	if !ok {
		return
	}
	cp, err := h.manager.GetConnectionPoint(c.Request.Context(), claims, siteID)
	if err != nil {
		writeError(c, err)
		return
	}
	writeXML(c, http.StatusOK, cp)
}

func (h *EndDeviceHandler) PutConnectionPoint(c *gin.Context) {
	claims, ok := currentClaims(c)
	if !ok {
		return
	}
	siteID, ok := pathID(c, "site_id")
	if !ok {
		return
	}
	var dto sep2.ConnectionPoint
	if !bindXML(c, &dto) {
		return
	}
	if err := h.manager.PutConnectionPoint(c.Request.Context(), claims, siteID, &dto); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *EndDeviceHandler) ListFsa(c *gin.Context) {
	claims, ok := currentClaims(c)
	if !ok {
		return
	}
	siteID, ok := pathID(c, "site_id")
	if !ok {
		return
	}
	list, err := h.manager.ListFsa(c.Request.Context(), claims, siteID, parseListQuery(c))
	if err != nil {
		writeError(c, err)
		return
	}
	writeXML(c, http.StatusOK, list)
}

func (h *EndDeviceHandler) GetFsa(c *gin.Context) {
	claims, ok := currentClaims(c)
	if !ok {
		return
	}
	siteID, ok := pathID(c, "site_id")
	if !ok {
		return
	}
	fsaID, ok := pathID(c, "fsa_id")
	if !ok {
		return
	}
	fsa, err := h.manager.GetFsa(c.Request.Context(), claims, siteID, fsaID)
	if err != nil {
		writeError(c, err)
		return
	}
	writeXML(c, http.StatusOK, fsa)
}
