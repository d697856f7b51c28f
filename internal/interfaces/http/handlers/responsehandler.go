package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"enverge/internal/application/manager"
	"enverge/internal/domain/scope"
	"enverge/internal/interfaces/dto/sep2"
)

// ResponseHandler serves the per-EndDevice response sets clients post
// control and rate acknowledgements into.
type ResponseHandler struct {
	manager *manager.ResponseManager
}

func NewResponseHandler(m *manager.ResponseManager) *ResponseHandler {
	return &ResponseHandler{manager: m}
}

func responseSetCoords(c *gin.Context) (scope.Claims, uint64, string, bool) {
	claims, ok := currentClaims(c)
	if !ok {
		return scope.Claims{}, 0, "", false
	}
	siteID, ok := pathID(c, "site_id")
	if !ok {
		return scope.Claims{}, 0, "", false
	}
	setType, err := manager.ParseResponseSetType(c.Param("set_type"))
	if err != nil {
		writeError(c, err)
		return scope.Claims{}, 0, "", false
	}
	return claims, siteID, setType, true
}

func (h *ResponseHandler) ListSets(c *gin.Context) {
	claims, ok := currentClaims(c)
	if !ok {
		return
	}
	siteID, ok := pathID(c, "site_id")
	if !ok {
		return
	}
	list, err := h.manager.ListSets(c.Request.Context(), claims, siteID)
	if err != nil {
		writeError(c, err)
		return
	}
	writeXML(c, http.StatusOK, list)
}

func (h *ResponseHandler) GetSet(c *gin.Context) {
	claims, siteID, setType, ok := responseSetCoords(c)
	if !ok {
		return
	}
	set, err := h.manager.GetSet(c.Request.Context(), claims, siteID, setType)
	if err != nil {
		writeError(c, err)
		return
	}
	writeXML(c, http.StatusOK, set)
}

func (h *ResponseHandler) ListResponses(c *gin.Context) {
	claims, siteID, setType, ok := responseSetCoords(c)
	if !ok {
		return
	}
	list, err := h.manager.ListResponses(c.Request.Context(), claims, siteID, setType, parseListQuery(c))
	if err != nil {
		writeError(c, err)
		return
	}
	writeXML(c, http.StatusOK, list)
}

func (h *ResponseHandler) CreateResponse(c *gin.Context) {
	claims, siteID, setType, ok := responseSetCoords(c)
	if !ok {
		return
	}
	var dto sep2.Response
	if !bindXML(c, &dto) {
		return
	}
	if err := h.manager.CreateResponse(c.Request.Context(), claims, siteID, setType, &dto); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusCreated)
}
