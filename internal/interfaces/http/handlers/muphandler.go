package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"enverge/internal/application/manager"
	"enverge/internal/interfaces/dto/sep2"
)

// MUPHandler serves the MirrorUsagePoint tree, the one resource family
// an unregistered device certificate may reach.
type MUPHandler struct {
	manager *manager.MUPManager
}

func NewMUPHandler(m *manager.MUPManager) *MUPHandler {
	return &MUPHandler{manager: m}
}

func (h *MUPHandler) List(c *gin.Context) {
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

func (h *MUPHandler) Create(c *gin.Context) {
	claims, ok := currentClaims(c)
	if !ok {
		return
	}
	var dto sep2.MirrorUsagePoint
	if !bindXML(c, &dto) {
		return
	}
	location, err := h.manager.Create(c.Request.Context(), claims, &dto)
	if err != nil {
		writeError(c, err)
		return
	}
	writeCreated(c, location)
}

func (h *MUPHandler) Get(c *gin.Context) {
	claims, ok := currentClaims(c)
	if !ok {
		return
	}
	mupID, ok := pathID(c, "mup_id")
	if !ok {
		return
	}
	mup, err := h.manager.Get(c.Request.Context(), claims, mupID)
	if err != nil {
		writeError(c, err)
		return
	}
	writeXML(c, http.StatusOK, mup)
}

func (h *MUPHandler) Replace(c *gin.Context) {
	claims, ok := currentClaims(c)
	if !ok {
		return
	}
	mupID, ok := pathID(c, "mup_id")
	if !ok {
		return
	}
	var dto sep2.MirrorUsagePoint
	if !bindXML(c, &dto) {
		return
	}
	location, err := h.manager.Replace(c.Request.Context(), claims, mupID, &dto)
	if err != nil {
		writeError(c, err)
		return
	}
	c.Header("Location", location)
	c.Status(http.StatusNoContent)
}

func (h *MUPHandler) Delete(c *gin.Context) {
	claims, ok := currentClaims(c)
	if !ok {
		return
	}
	mupID, ok := pathID(c, "mup_id")
	if !ok {
		return
	}
	if err := h.manager.Delete(c.Request.Context(), claims, mupID); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// PostReadings accepts a MirrorMeterReading batch posted at the mirror.
func (h *MUPHandler) PostReadings(c *gin.Context) {
	claims, ok := currentClaims(c)
	if !ok {
		return
	}
	mupID, ok := pathID(c, "mup_id")
	if !ok {
		return
	}
	var dto sep2.MirrorMeterReading
	if !bindXML(c, &dto) {
		return
	}
	if err := h.manager.PostReadings(c.Request.Context(), claims, mupID, &dto); err != nil {
		writeError(c, err)
		return
	}
	writeCreated(c, c.Request.URL.Path)
}
