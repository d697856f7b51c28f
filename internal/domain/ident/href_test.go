package ident

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestHrefBuilderPrefix(t *testing.T) {
	h := NewHrefBuilder("/api/v2")

	assert.Equal(t, "/api/v2/dcap", h.DeviceCapability())
	assert.Equal(t, "/api/v2/tm", h.Time())
	assert.Equal(t, "/api/v2/edev/5", h.EndDevice(5))
	assert.Equal(t, "/api/v2/edev/5/derp/1/derc/9", h.DerControl(5, 1, 9))
	assert.Equal(t, "/api/v2/edev/5/derp/doe/derc", h.DoeDerControlList(5))
	assert.Equal(t, "/api/v2/upt/5/mr/3/rs/all/r", h.ReadingList(5, 3))
}

func TestHrefBuilderPricingTree(t *testing.T) {
	h := NewHrefBuilder("")
	day := time.Date(2024, time.March, 15, 0, 0, 0, 0, time.UTC)
	tod := time.Date(2024, time.March, 15, 14, 30, 0, 0, time.UTC)

	assert.Equal(t, "/edev/5/tp/2/rc", h.RateComponentList(5, 2))
	assert.Equal(t, "/edev/5/tp/2/rc/2024-03-15/1", h.RateComponent(5, 2, day, 1))
	assert.Equal(t, "/edev/5/tp/2/rc/2024-03-15/1/tti/14:30", h.TimeTariffInterval(5, 2, day, 1, tod))
	assert.Equal(t, "/edev/5/tp/2/rc/2024-03-15/1/tti/14:30/cti/-12345",
		h.ConsumptionTariffIntervalList(5, 2, day, 1, tod, -12345))
	assert.Equal(t, "/edev/5/tp/2/rc/2024-03-15/1/tti/14:30/cti/-12345/1",
		h.ConsumptionTariffInterval(5, 2, day, 1, tod, -12345))
}
