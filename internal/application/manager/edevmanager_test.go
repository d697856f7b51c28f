package manager

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"enverge/internal/domain/ident"
	"enverge/internal/domain/scope"
	"enverge/internal/infrastructure/persistence/models"
	"enverge/internal/infrastructure/repository"
	"enverge/internal/interfaces/dto/sep2"
	"enverge/internal/shared/constants"
	"enverge/internal/shared/logger"
)

func setupEndDeviceManager(t *testing.T) (*gorm.DB, *EndDeviceManager) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	err = db.AutoMigrate(
		&models.SiteModel{},
		&models.ArchiveSiteModel{},
		&models.RuntimeServerConfigModel{},
	)
	require.NoError(t, err)

	log := logger.NewLogger()
	config := NewConfigManager(repository.NewRuntimeConfigRepository(db, log), ident.NewHrefBuilder(""), 12345, nil, log)
	m := NewEndDeviceManager(
		repository.NewSiteRepository(db, log),
		repository.NewTariffRepository(db, log),
		config,
		nil,
		"Australia/Brisbane",
		log,
	)
	return db, m
}

func TestRegister(t *testing.T) {
	ctx := context.Background()

	t.Run("device certificate self registers under the null partition", func(t *testing.T) {
		db, m := setupEndDeviceManager(t)

		claims := scope.Claims{
			Source: scope.SourceDeviceCertificate,
			Lfdi:   "0x3e4f45ab31edfe5b67e343e5e4562e31984e23e5",
			Sfdi:   167261211391,
		}
		site, err := m.Register(ctx, claims, &sep2.EndDevice{DeviceCategory: "0x0A"})
		require.NoError(t, err)

		assert.Equal(t, constants.NullAggregatorID, site.AggregatorID)
		assert.Equal(t, claims.Lfdi, site.Lfdi)
		assert.Equal(t, claims.Sfdi, site.Sfdi)
		assert.Equal(t, int64(10), site.DeviceCategory)
		assert.Equal(t, "Australia/Brisbane", site.TimezoneID)

		var stored models.SiteModel
		require.NoError(t, db.First(&stored, site.ID).Error)
		assert.Equal(t, constants.NullAggregatorID, stored.AggregatorID)
	})

	t.Run("aggregator certificate registers by lfdi with derived sfdi", func(t *testing.T) {
		_, m := setupEndDeviceManager(t)

		aggID := uint64(4)
		claims := scope.Claims{
			Source:       scope.SourceAggregatorCertificate,
			AggregatorID: &aggID,
		}
		lfdi := "0x3E4F45AB31EDFE5B67E343E5E4562E31984E23E5"
		site, err := m.Register(ctx, claims, &sep2.EndDevice{LFDI: lfdi})
		require.NoError(t, err)

		assert.Equal(t, aggID, site.AggregatorID)
		assert.Equal(t, "0x3e4f45ab31edfe5b67e343e5e4562e31984e23e5", site.Lfdi)

		wantSfdi, err := ident.SfdiFromLfdi(lfdi)
		require.NoError(t, err)
		assert.Equal(t, wantSfdi, site.Sfdi)
	})

	t.Run("aggregator certificate without lfdi is rejected", func(t *testing.T) {
		_, m := setupEndDeviceManager(t)

		aggID := uint64(4)
		claims := scope.Claims{
			Source:       scope.SourceAggregatorCertificate,
			AggregatorID: &aggID,
		}
		_, err := m.Register(ctx, claims, &sep2.EndDevice{})
		require.Error(t, err)
	})
}
