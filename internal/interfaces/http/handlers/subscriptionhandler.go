package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"enverge/internal/application/manager"
	"enverge/internal/interfaces/dto/sep2"
)

// SubscriptionHandler serves the per-EndDevice subscription list.
type SubscriptionHandler struct {
	manager *manager.SubscriptionManager
}

func NewSubscriptionHandler(m *manager.SubscriptionManager) *SubscriptionHandler {
	return &SubscriptionHandler{manager: m}
}

func (h *SubscriptionHandler) List(c *gin.Context) {
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

func (h *SubscriptionHandler) Get(c *gin.Context) {
	claims, ok := currentClaims(c)
	if !ok {
		return
	}
	siteID, ok := pathID(c, "site_id")
	if !ok {
		return
	}
	subID, ok := pathID(c, "sub_id")
	if !ok {
		return
	}
	sub, err := h.manager.Get(c.Request.Context(), claims, siteID, subID)
	if err != nil {
		writeError(c, err)
		return
	}
	writeXML(c, http.StatusOK, sub)
}

func (h *SubscriptionHandler) Create(c *gin.Context) {
	claims, ok := currentClaims(c)
	if !ok {
		return
	}
	siteID, ok := pathID(c, "site_id")
	if !ok {
		return
	}
	var dto sep2.Subscription
	if !bindXML(c, &dto) {
		return
	}
	location, err := h.manager.Create(c.Request.Context(), claims, siteID, &dto)
	if err != nil {
		writeError(c, err)
		return
	}
	writeCreated(c, location)
}

func (h *SubscriptionHandler) Delete(c *gin.Context) {
	claims, ok := currentClaims(c)
	if !ok {
		return
	}
	siteID, ok := pathID(c, "site_id")
	if !ok {
		return
	}
	subID, ok := pathID(c, "sub_id")
	if !ok {
		return
	}
	if err := h.manager.Delete(c.Request.Context(), claims, siteID, subID); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
