package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"enverge/internal/application/manager"
	"enverge/internal/domain/scope"
)

// DerProgramHandler serves the DERProgram tree: program list, controls,
// active controls and the default control. The program path segment
// accepts the historical "doe" alias alongside integer group ids.
type DerProgramHandler struct {
	manager *manager.DerProgramManager
}

func NewDerProgramHandler(m *manager.DerProgramManager) *DerProgramHandler {
	return &DerProgramHandler{manager: m}
}

func programIDs(c *gin.Context) (scope.Claims, uint64, uint64, bool) {
	claims, ok := currentClaims(c)
	if !ok {
		return scope.Claims{}, 0, 0, false
	}
	siteID, ok := pathID(c, "site_id")
	if !ok {
		return scope.Claims{}, 0, 0, false
	}
	groupID, err := manager.ParseGroupID(c.Param("derp_id"))
	if err != nil {
		writeError(c, err)
		return scope.Claims{}, 0, 0, false
	}
	return claims, siteID, groupID, true
}

func (h *DerProgramHandler) List(c *gin.Context) {
	claims, ok := currentClaims(c)
	if !ok {
		return
	}
	siteID, ok := pathID(c, "site_id")
	if !ok {
		return
	}
	list, err := h.manager.ListPrograms(c.Request.Context(), claims, siteID, parseListQuery(c))
	if err != nil {
		writeError(c, err)
		return
	}
	writeXML(c, http.StatusOK, list)
}

func (h *DerProgramHandler) Get(c *gin.Context) {
	claims, siteID, groupID, ok := programIDs(c)
	if !ok {
		return
	}
	program, err := h.manager.GetProgram(c.Request.Context(), claims, siteID, groupID)
	if err != nil {
		writeError(c, err)
		return
	}
	writeXML(c, http.StatusOK, program)
}

func (h *DerProgramHandler) ListControls(c *gin.Context) {
	claims, siteID, groupID, ok := programIDs(c)
	if !ok {
		return
	}
	list, err := h.manager.ListControls(c.Request.Context(), claims, siteID, groupID, parseListQuery(c))
	if err != nil {
		writeError(c, err)
		return
	}
	writeXML(c, http.StatusOK, list)
}

func (h *DerProgramHandler) ListActiveControls(c *gin.Context) {
	claims, siteID, groupID, ok := programIDs(c)
	if !ok {
		return
	}
	list, err := h.manager.ListActiveControls(c.Request.Context(), claims, siteID, groupID, parseListQuery(c))
	if err != nil {
		writeError(c, err)
		return
	}
	writeXML(c, http.StatusOK, list)
}

func (h *DerProgramHandler) GetControl(c *gin.Context) {
	claims, siteID, groupID, ok := programIDs(c)
	if !ok {
		return
	}
	doeID, ok := pathID(c, "derc_id")
	if !ok {
		return
	}
	control, err := h.manager.GetControl(c.Request.Context(), claims, siteID, groupID, doeID)
	if err != nil {
		writeError(c, err)
		return
	}
	writeXML(c, http.StatusOK, control)
}

func (h *DerProgramHandler) GetDefaultControl(c *gin.Context) {
	claims, siteID, groupID, ok := programIDs(c)
	if !ok {
		return
	}
	control, err := h.manager.GetDefaultControl(c.Request.Context(), claims, siteID, groupID)
	if err != nil {
		writeError(c, err)
		return
	}
	writeXML(c, http.StatusOK, control)
}
