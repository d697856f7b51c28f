// Package handlers implements the IEEE 2030.5 device-facing HTTP
// handlers. Each handler is a thin adapter: it derives claims and path
// parameters, delegates to an application manager, and renders the
// result as sep+xml.
package handlers

import (
	"encoding/xml"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"enverge/internal/application/manager"
	"enverge/internal/domain/scope"
	"enverge/internal/interfaces/dto/sep2"
	"enverge/internal/shared/constants"
	"enverge/internal/shared/errors"
)

// currentClaims fetches the claims placed by the certificate middleware.
// A route reached without the middleware is a wiring bug.
func currentClaims(c *gin.Context) (scope.Claims, bool) {
	v, ok := c.Get(constants.ContextKeyClaims)
	if !ok {
		writeError(c, errors.NewInternalError("request reached handler without certificate claims"))
		return scope.Claims{}, false
	}
	claims, ok := v.(scope.Claims)
	if !ok {
		writeError(c, errors.NewInternalError("certificate claims have unexpected type"))
		return scope.Claims{}, false
	}
	return claims, true
}

// parseListQuery reads the s / a / l list parameters. They arrive in
// list form for historical client compatibility; only the first value
// of each is honoured.
func parseListQuery(c *gin.Context) manager.ListQuery {
	q := manager.ListQuery{
		Start: constants.DefaultListStart,
		Limit: constants.DefaultListLimit,
	}
	values := c.Request.URL.Query()

	if raw, ok := values["s"]; ok && len(raw) > 0 {
		if v, err := strconv.Atoi(raw[0]); err == nil && v >= 0 {
			q.Start = v
		}
	}
	if raw, ok := values["l"]; ok && len(raw) > 0 {
		if v, err := strconv.Atoi(raw[0]); err == nil && v >= 0 {
			q.Limit = v
		}
	}
	if raw, ok := values["a"]; ok && len(raw) > 0 {
		if v, err := strconv.ParseInt(raw[0], 10, 64); err == nil && v > 0 {
			q.ChangedAfter = time.Unix(v, 0).UTC()
		}
	}
	return q
}

// pathID parses a numeric path parameter. Non-numeric values map to 404
// rather than 400: the resource space is numeric, so /edev/abc simply
// does not exist.
func pathID(c *gin.Context, name string) (uint64, bool) {
	v, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil {
		writeError(c, errors.NewNotFoundError("resource not found"))
		return 0, false
	}
	return v, true
}

func pathPrice(c *gin.Context) (int64, bool) {
	v, err := strconv.ParseInt(c.Param("price"), 10, 64)
	if err != nil {
		writeError(c, errors.NewNotFoundError("resource not found"))
		return 0, false
	}
	return v, true
}

// writeXML renders a payload as application/sep+xml with the standard
// XML declaration prepended.
func writeXML(c *gin.Context, status int, payload any) {
	body, err := xml.Marshal(payload)
	if err != nil {
		writeError(c, errors.NewInternalError("failed to serialise response"))
		return
	}
	c.Header(constants.HeaderContentType, constants.ContentTypeSep2XML)
	c.String(status, xml.Header+string(body))
}

// writeCreated responds 201 with the Location of the created resource.
func writeCreated(c *gin.Context, location string) {
	c.Header(constants.HeaderLocation, location)
	c.Status(http.StatusCreated)
}

// writeError maps an application error onto its HTTP status and renders
// the 2030.5 Error element. Unclassified errors surface as 500 without
// leaking their cause.
func writeError(c *gin.Context, err error) {
	appErr := errors.GetAppError(err)
	status := http.StatusInternalServerError
	message := "internal server error"
	if appErr != nil {
		status = appErr.Code
		message = appErr.Message
	}

	var reason int32
	if status == http.StatusBadRequest {
		reason = 1
	}

	body := sep2.ErrorResponse{
		Xmlns:      sep2.NamespaceSep2,
		ReasonCode: reason,
		Message:    message,
	}
	payload, marshalErr := xml.Marshal(body)
	if marshalErr != nil {
		c.Status(http.StatusInternalServerError)
		return
	}
	c.Header(constants.HeaderContentType, constants.ContentTypeSep2XML)
	c.String(status, xml.Header+string(payload))
}

// bindXML decodes a sep+xml request body, surfacing malformed payloads
// as 400.
func bindXML(c *gin.Context, dst any) bool {
	if err := xml.NewDecoder(c.Request.Body).Decode(dst); err != nil {
		writeError(c, errors.NewBadRequestError("malformed XML request body", err.Error()))
		return false
	}
	return true
}
