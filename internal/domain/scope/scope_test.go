package scope

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"enverge/internal/shared/constants"
	apperrors "enverge/internal/shared/errors"
)

func uintPtr(v uint64) *uint64 { return &v }

func aggregatorClaims(aggID uint64) Claims {
	return Claims{
		Source:       SourceAggregatorCertificate,
		Lfdi:         "0x3e4f45ab31edfe5b67e343e5e4562e31984e23e5",
		Sfdi:         167261211391,
		IanaPEN:      1234,
		HrefPrefix:   "",
		AggregatorID: uintPtr(aggID),
	}
}

func deviceClaims(siteID *uint64) Claims {
	return Claims{
		Source:     SourceDeviceCertificate,
		Lfdi:       "0x3e4f45ab31edfe5b67e343e5e4562e31984e23e5",
		Sfdi:       167261211391,
		IanaPEN:    1234,
		HrefPrefix: "",
		SiteID:     siteID,
	}
}

func TestNewDeviceOrAggregatorScope(t *testing.T) {
	t.Run("aggregator cert requesting concrete site", func(t *testing.T) {
		s, err := NewDeviceOrAggregatorScope(aggregatorClaims(3), 22)
		require.NoError(t, err)
		assert.Equal(t, uint64(3), s.AggregatorID)
		assert.Equal(t, uint64(22), s.DisplaySiteID)
		require.NotNil(t, s.SiteID)
		assert.Equal(t, uint64(22), *s.SiteID)
		assert.False(t, s.IsVirtual())
	})

	t.Run("aggregator cert requesting virtual end device", func(t *testing.T) {
		s, err := NewDeviceOrAggregatorScope(aggregatorClaims(3), constants.VirtualEndDeviceSiteID)
		require.NoError(t, err)
		assert.Equal(t, uint64(3), s.AggregatorID)
		assert.Nil(t, s.SiteID)
		assert.True(t, s.IsVirtual())
	})

	t.Run("device cert requesting own site", func(t *testing.T) {
		s, err := NewDeviceOrAggregatorScope(deviceClaims(uintPtr(22)), 22)
		require.NoError(t, err)
		assert.Equal(t, constants.NullAggregatorID, s.AggregatorID)
		require.NotNil(t, s.SiteID)
		assert.Equal(t, uint64(22), *s.SiteID)
	})

	t.Run("device cert requesting another site is forbidden", func(t *testing.T) {
		_, err := NewDeviceOrAggregatorScope(deviceClaims(uintPtr(22)), 23)
		require.Error(t, err)
		appErr := apperrors.GetAppError(err)
		require.NotNil(t, appErr)
		assert.Equal(t, apperrors.ErrorTypeForbidden, appErr.Type)
		assert.Equal(t, "certificate is scoped to EndDevice 22", appErr.Message)
	})

	t.Run("unregistered device cert is forbidden", func(t *testing.T) {
		_, err := NewDeviceOrAggregatorScope(deviceClaims(nil), 22)
		require.Error(t, err)
		assert.True(t, apperrors.IsForbiddenError(err))
	})
}

func TestNewAggregatorScope(t *testing.T) {
	t.Run("aggregator cert accepted", func(t *testing.T) {
		s, err := NewAggregatorScope(aggregatorClaims(3), 22)
		require.NoError(t, err)
		assert.Equal(t, uint64(3), s.AggregatorID)
	})

	t.Run("device cert rejected", func(t *testing.T) {
		_, err := NewAggregatorScope(deviceClaims(uintPtr(22)), 22)
		require.Error(t, err)
		assert.True(t, apperrors.IsForbiddenError(err))
	})
}

func TestNewSiteScope(t *testing.T) {
	t.Run("concrete site accepted", func(t *testing.T) {
		s, err := NewSiteScope(aggregatorClaims(3), 22)
		require.NoError(t, err)
		assert.Equal(t, uint64(22), s.SiteID)
	})

	t.Run("virtual end device rejected", func(t *testing.T) {
		_, err := NewSiteScope(aggregatorClaims(3), constants.VirtualEndDeviceSiteID)
		require.Error(t, err)
		assert.True(t, apperrors.IsForbiddenError(err))
	})

	t.Run("device cert own site accepted", func(t *testing.T) {
		s, err := NewSiteScope(deviceClaims(uintPtr(22)), 22)
		require.NoError(t, err)
		assert.Equal(t, uint64(22), s.SiteID)
		assert.Equal(t, constants.NullAggregatorID, s.AggregatorID)
	})
}

func TestNewMUPListScope(t *testing.T) {
	t.Run("aggregator cert", func(t *testing.T) {
		s := NewMUPListScope(aggregatorClaims(3))
		assert.Equal(t, uint64(3), s.AggregatorID)
		assert.Nil(t, s.SiteID)
	})

	t.Run("registered device cert", func(t *testing.T) {
		s := NewMUPListScope(deviceClaims(uintPtr(22)))
		assert.Equal(t, constants.NullAggregatorID, s.AggregatorID)
		require.NotNil(t, s.SiteID)
		assert.Equal(t, uint64(22), *s.SiteID)
	})

	t.Run("unregistered device cert still admitted", func(t *testing.T) {
		s := NewMUPListScope(deviceClaims(nil))
		assert.Equal(t, constants.NullAggregatorID, s.AggregatorID)
		assert.Nil(t, s.SiteID)
	})
}

func TestNewUnregisteredScope(t *testing.T) {
	s := NewUnregisteredScope(deviceClaims(nil))
	assert.Equal(t, constants.NullAggregatorID, s.AggregatorID)
	assert.Equal(t, uint64(167261211391), s.Sfdi)

	s = NewUnregisteredScope(aggregatorClaims(9))
	assert.Equal(t, uint64(9), s.AggregatorID)
}
