package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"enverge/internal/interfaces/dto/sep2"
	"enverge/internal/shared/constants"
	"enverge/internal/shared/errors"
)

func testContext(t *testing.T, target string) (*gin.Context, *httptest.ResponseRecorder) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, target, nil)
	return c, w
}

func TestParseListQuery(t *testing.T) {
	tests := []struct {
		name             string
		query            string
		wantStart        int
		wantLimit        int
		wantChangedAfter time.Time
	}{
		{
			name:      "defaults",
			query:     "",
			wantStart: 0,
			wantLimit: 1,
		},
		{
			name:      "explicit values",
			query:     "s=5&l=20",
			wantStart: 5,
			wantLimit: 20,
		},
		{
			name:             "changed after as epoch seconds",
			query:            "a=1717243200",
			wantStart:        0,
			wantLimit:        1,
			wantChangedAfter: time.Unix(1717243200, 0).UTC(),
		},
		{
			name:      "only first value of repeated parameters",
			query:     "s=3&s=9&l=2&l=50",
			wantStart: 3,
			wantLimit: 2,
		},
		{
			name:      "non numeric values fall back to defaults",
			query:     "s=abc&l=xyz&a=later",
			wantStart: 0,
			wantLimit: 1,
		},
		{
			name:      "negative values fall back to defaults",
			query:     "s=-1&l=-5",
			wantStart: 0,
			wantLimit: 1,
		},
		{
			name:      "zero limit honoured",
			query:     "l=0",
			wantStart: 0,
			wantLimit: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := testContext(t, "/?"+tt.query)
			q := parseListQuery(c)
			assert.Equal(t, tt.wantStart, q.Start)
			assert.Equal(t, tt.wantLimit, q.Limit)
			assert.True(t, q.ChangedAfter.Equal(tt.wantChangedAfter))
		})
	}
}

func TestPathID(t *testing.T) {
	t.Run("numeric id", func(t *testing.T) {
		c, _ := testContext(t, "/")
		c.Params = gin.Params{{Key: "site_id", Value: "42"}}
		id, ok := pathID(c, "site_id")
		require.True(t, ok)
		assert.Equal(t, uint64(42), id)
	})

	t.Run("non numeric id is not found", func(t *testing.T) {
		c, w := testContext(t, "/")
		c.Params = gin.Params{{Key: "site_id", Value: "abc"}}
		_, ok := pathID(c, "site_id")
		require.False(t, ok)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("negative id is not found", func(t *testing.T) {
		c, w := testContext(t, "/")
		c.Params = gin.Params{{Key: "site_id", Value: "-1"}}
		_, ok := pathID(c, "site_id")
		require.False(t, ok)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestPathPrice(t *testing.T) {
	t.Run("negative price is valid", func(t *testing.T) {
		c, _ := testContext(t, "/")
		c.Params = gin.Params{{Key: "price", Value: "-500"}}
		price, ok := pathPrice(c)
		require.True(t, ok)
		assert.Equal(t, int64(-500), price)
	})

	t.Run("non numeric price is not found", func(t *testing.T) {
		c, w := testContext(t, "/")
		c.Params = gin.Params{{Key: "price", Value: "cheap"}}
		_, ok := pathPrice(c)
		require.False(t, ok)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestWriteError(t *testing.T) {
	t.Run("bad request sets reason code one", func(t *testing.T) {
		c, w := testContext(t, "/")
		writeError(c, errors.NewBadRequestError("malformed XML request body"))

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Header().Get(constants.HeaderContentType), constants.ContentTypeSep2XML)
		assert.Contains(t, w.Body.String(), "<reasonCode>1</reasonCode>")
	})

	t.Run("forbidden keeps reason code zero and carries the message", func(t *testing.T) {
		c, w := testContext(t, "/")
		writeError(c, errors.NewForbiddenError("certificate is scoped to EndDevice 22"))

		assert.Equal(t, http.StatusForbidden, w.Code)
		assert.Contains(t, w.Body.String(), "<reasonCode>0</reasonCode>")
		assert.Contains(t, w.Body.String(), "certificate is scoped to EndDevice 22")
	})

	t.Run("unclassified errors never leak their cause", func(t *testing.T) {
		c, w := testContext(t, "/")
		writeError(c, assertionError{})

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.NotContains(t, w.Body.String(), "secret detail")
		assert.Contains(t, w.Body.String(), "internal server error")
	})
}

type assertionError struct{}

func (assertionError) Error() string { return "secret detail" }

func TestWriteXML(t *testing.T) {
	c, w := testContext(t, "/")
	writeXML(c, http.StatusOK, sep2.Time{
		Xmlns:       sep2.NamespaceSep2,
		CurrentTime: 1717243200,
	})

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get(constants.HeaderContentType), constants.ContentTypeSep2XML)
	body := w.Body.String()
	assert.True(t, strings.HasPrefix(body, "<?xml"), "body should start with the XML declaration")
	assert.Contains(t, body, "<currentTime>1717243200</currentTime>")
}

func TestWriteCreated(t *testing.T) {
	c, w := testContext(t, "/")
	writeCreated(c, "/edev/7")
	// Outside a full engine gin defers the status write until the body
	// or the handler chain flushes it.
	c.Writer.WriteHeaderNow()

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "/edev/7", w.Header().Get(constants.HeaderLocation))
}
