// Package middleware holds the gin middleware of both HTTP surfaces:
// certificate claims derivation for the device surface and bearer auth
// for the operator surface.
package middleware

import (
	"encoding/xml"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"enverge/internal/domain/ident"
	"enverge/internal/domain/scope"
	"enverge/internal/infrastructure/repository"
	"enverge/internal/interfaces/dto/sep2"
	"enverge/internal/shared/constants"
	"enverge/internal/shared/errors"
	"enverge/internal/shared/logger"
)

// CertAuth resolves the forwarded client certificate into scope.Claims.
// The TLS terminator in front of the server has already verified the
// certificate; this middleware only maps its identity onto a registered
// aggregator or device partition.
type CertAuth struct {
	aggregators *repository.AggregatorRepository
	sites       *repository.SiteRepository
	header      string
	pen         uint32
	hrefPrefix  string
	logger      logger.Interface
}

func NewCertAuth(
	aggregators *repository.AggregatorRepository,
	sites *repository.SiteRepository,
	header string,
	pen uint32,
	hrefPrefix string,
	log logger.Interface,
) *CertAuth {
	return &CertAuth{
		aggregators: aggregators,
		sites:       sites,
		header:      header,
		pen:         pen,
		hrefPrefix:  hrefPrefix,
		logger:      log,
	}
}

// Require derives claims or aborts the request. A missing header is a
// deployment fault, not a client fault, and surfaces as 500.
func (m *CertAuth) Require() gin.HandlerFunc {
	return func(c *gin.Context) {
		encodedPEM := c.GetHeader(m.header)
		if encodedPEM == "" {
			abortSep2(c, errors.NewAuthHeaderMissingError())
			return
		}

		lfdi, err := ident.LfdiFromPEM(encodedPEM)
		if err != nil {
			m.logger.Warnw("rejected unparseable client certificate", "error", err)
			abortSep2(c, errors.NewForbiddenError("client certificate could not be parsed"))
			return
		}

		now := time.Now().UTC()
		assignment, err := m.aggregators.ResolveCertificate(c.Request.Context(), lfdi, now)
		if err != nil {
			abortSep2(c, err)
			return
		}
		if assignment == nil {
			abortSep2(c, errors.NewForbiddenError("client certificate is not registered"))
			return
		}

		sfdi, err := ident.SfdiFromLfdi(lfdi)
		if err != nil {
			abortSep2(c, errors.NewInternalError("failed to derive SFDI from certificate"))
			return
		}

		claims := scope.Claims{
			Lfdi:       lfdi,
			Sfdi:       sfdi,
			IanaPEN:    m.pen,
			HrefPrefix: m.hrefPrefix,
		}
		if assignment.AggregatorID != nil {
			claims.Source = scope.SourceAggregatorCertificate
			claims.AggregatorID = assignment.AggregatorID
		} else {
			claims.Source = scope.SourceDeviceCertificate
			site, err := m.sites.GetByLfdi(c.Request.Context(), lfdi, constants.NullAggregatorID)
			if err != nil {
				abortSep2(c, err)
				return
			}
			if site != nil {
				siteID := site.ID
				claims.SiteID = &siteID
			}
		}

		c.Set(constants.ContextKeyClaims, claims)
		c.Next()
	}
}

// abortSep2 renders an error as the 2030.5 Error element and stops the
// chain. Handlers use the render helpers in the handlers package; the
// middleware cannot import them without a cycle, so it carries its own.
func abortSep2(c *gin.Context, err error) {
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
		c.AbortWithStatus(http.StatusInternalServerError)
		return
	}

	c.Header(constants.HeaderContentType, constants.ContentTypeSep2XML)
	c.String(status, xml.Header+string(payload))
	c.Abort()
}
