package middleware

import (
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"encoding/xml"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"enverge/internal/domain/scope"
	"enverge/internal/infrastructure/persistence/models"
	"enverge/internal/infrastructure/repository"
	"enverge/internal/shared/constants"
	"enverge/internal/shared/errors"
	"enverge/internal/shared/logger"
)

const certHeader = "X-Forwarded-Client-Cert"

func setupAuthDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	err = db.AutoMigrate(
		&models.AggregatorModel{},
		&models.CertificateModel{},
		&models.AggregatorCertificateAssignmentModel{},
		&models.SiteModel{},
	)
	require.NoError(t, err)
	return db
}

// encodePEM wraps DER bytes the way the TLS terminator forwards them and
// returns the encoded header value plus the derived lfdi.
func encodePEM(der []byte) (header string, lfdi string) {
	sum := sha256.Sum256(der)
	lfdi = "0x" + hex.EncodeToString(sum[:])[:40]
	pem := "-----BEGIN CERTIFICATE-----\n" +
		base64.StdEncoding.EncodeToString(der) +
		"\n-----END CERTIFICATE-----"
	return url.QueryEscape(pem), lfdi
}

func registerCertificate(t *testing.T, db *gorm.DB, lfdi string, aggregatorID *uint64) {
	cert := &models.CertificateModel{
		Lfdi:   lfdi,
		Expiry: time.Now().UTC().Add(24 * time.Hour),
	}
	require.NoError(t, db.Create(cert).Error)
	if aggregatorID != nil {
		require.NoError(t, db.Create(&models.AggregatorCertificateAssignmentModel{
			AggregatorID:  *aggregatorID,
			CertificateID: cert.ID,
		}).Error)
	}
}

func newAuthRouter(db *gorm.DB) (*gin.Engine, *scope.Claims) {
	gin.SetMode(gin.TestMode)
	log := logger.NewLogger()
	auth := NewCertAuth(
		repository.NewAggregatorRepository(db, log),
		repository.NewSiteRepository(db, log),
		certHeader, 1234, "", log,
	)

	captured := &scope.Claims{}
	r := gin.New()
	r.GET("/probe", auth.Require(), func(c *gin.Context) {
		v, _ := c.Get(constants.ContextKeyClaims)
		*captured = v.(scope.Claims)
		c.Status(http.StatusOK)
	})
	return r, captured
}

func TestCertAuthRequire(t *testing.T) {
	t.Run("missing header is a deployment fault", func(t *testing.T) {
		db := setupAuthDB(t)
		r, _ := newAuthRouter(db)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/probe", nil)
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.Contains(t, w.Header().Get(constants.HeaderContentType), constants.ContentTypeSep2XML)
		assert.Contains(t, w.Body.String(), "<Error")
	})

	t.Run("unparseable certificate is forbidden", func(t *testing.T) {
		db := setupAuthDB(t)
		r, _ := newAuthRouter(db)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/probe", nil)
		req.Header.Set(certHeader, "not-a-pem")
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("unregistered certificate is forbidden", func(t *testing.T) {
		db := setupAuthDB(t)
		r, _ := newAuthRouter(db)

		header, _ := encodePEM([]byte("unknown cert"))
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/probe", nil)
		req.Header.Set(certHeader, header)
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusForbidden, w.Code)
		assert.Contains(t, w.Body.String(), "not registered")
	})

	t.Run("expired certificate is forbidden", func(t *testing.T) {
		db := setupAuthDB(t)
		r, _ := newAuthRouter(db)

		header, lfdi := encodePEM([]byte("expired cert"))
		require.NoError(t, db.Create(&models.CertificateModel{
			Lfdi:   lfdi,
			Expiry: time.Now().UTC().Add(-time.Hour),
		}).Error)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/probe", nil)
		req.Header.Set(certHeader, header)
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("aggregator certificate yields aggregator claims", func(t *testing.T) {
		db := setupAuthDB(t)
		r, captured := newAuthRouter(db)

		header, lfdi := encodePEM([]byte("aggregator cert"))
		aggID := uint64(3)
		registerCertificate(t, db, lfdi, &aggID)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/probe", nil)
		req.Header.Set(certHeader, header)
		r.ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, scope.SourceAggregatorCertificate, captured.Source)
		require.NotNil(t, captured.AggregatorID)
		assert.Equal(t, uint64(3), *captured.AggregatorID)
		assert.Nil(t, captured.SiteID)
		assert.Equal(t, lfdi, captured.Lfdi)
		assert.Equal(t, uint32(1234), captured.IanaPEN)
	})

	t.Run("device certificate before registration has no site", func(t *testing.T) {
		db := setupAuthDB(t)
		r, captured := newAuthRouter(db)

		header, lfdi := encodePEM([]byte("new device cert"))
		registerCertificate(t, db, lfdi, nil)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/probe", nil)
		req.Header.Set(certHeader, header)
		r.ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, scope.SourceDeviceCertificate, captured.Source)
		assert.Nil(t, captured.AggregatorID)
		assert.Nil(t, captured.SiteID)
	})

	t.Run("device certificate resolves its registered site", func(t *testing.T) {
		db := setupAuthDB(t)
		r, captured := newAuthRouter(db)

		header, lfdi := encodePEM([]byte("registered device cert"))
		registerCertificate(t, db, lfdi, nil)

		site := &models.SiteModel{
			SiteFields: models.SiteFields{
				AggregatorID:    constants.NullAggregatorID,
				Sfdi:            167261211391,
				Lfdi:            lfdi,
				TimezoneID:      "Australia/Brisbane",
				RegistrationPin: 12345,
				CreatedTime:     time.Now().UTC(),
				ChangedTime:     time.Now().UTC(),
			},
		}
		require.NoError(t, db.Create(site).Error)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/probe", nil)
		req.Header.Set(certHeader, header)
		r.ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, scope.SourceDeviceCertificate, captured.Source)
		require.NotNil(t, captured.SiteID)
		assert.Equal(t, site.ID, *captured.SiteID)
	})
}

func TestAbortSep2ReasonCode(t *testing.T) {
	gin.SetMode(gin.TestMode)

	t.Run("forbidden carries reason code zero", func(t *testing.T) {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

		abortSep2(c, errors.NewForbiddenError("certificate is scoped to EndDevice 22"))

		assert.Equal(t, http.StatusForbidden, w.Code)
		assert.Contains(t, w.Body.String(), "<reasonCode>0</reasonCode>")
		assert.Contains(t, w.Body.String(), "scoped to EndDevice 22")
	})

	t.Run("bad request carries reason code one", func(t *testing.T) {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

		abortSep2(c, errors.NewBadRequestError("malformed request"))

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "<reasonCode>1</reasonCode>")
	})

	t.Run("body is a namespaced Error element", func(t *testing.T) {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

		abortSep2(c, errors.NewForbiddenError("forbidden"))

		body := w.Body.String()
		assert.True(t, strings.HasPrefix(body, xml.Header), "body should start with the XML declaration")
		assert.Contains(t, body, `xmlns="urn:ieee:std:2030.5:ns"`)
	})
}
