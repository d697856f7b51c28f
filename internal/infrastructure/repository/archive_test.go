package repository

import (
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"enverge/internal/infrastructure/persistence/models"
)

// Archive shadows embed the same field structs as their live tables, so
// their index declarations must stay table-local. SQLite index names are
// database-global, which makes one migration over every pair the
// strictest check.
func TestArchiveShadowsMigrateAlongsideLive(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	err = db.AutoMigrate(
		&models.SiteModel{},
		&models.ArchiveSiteModel{},
		&models.DynamicOperatingEnvelopeModel{},
		&models.ArchiveDoeModel{},
		&models.DefaultSiteControlModel{},
		&models.ArchiveDefaultSiteControlModel{},
		&models.TariffGeneratedRateModel{},
		&models.ArchiveTariffGeneratedRateModel{},
		&models.SiteReadingModel{},
		&models.ArchiveSiteReadingModel{},
		&models.SubscriptionModel{},
		&models.ArchiveSubscriptionModel{},
		&models.SiteDERModel{},
		&models.ArchiveSiteDERModel{},
		&models.SiteDERRatingModel{},
		&models.ArchiveSiteDERRatingModel{},
		&models.SiteDERSettingModel{},
		&models.ArchiveSiteDERSettingModel{},
		&models.SiteDERAvailabilityModel{},
		&models.ArchiveSiteDERAvailabilityModel{},
		&models.SiteDERStatusModel{},
		&models.ArchiveSiteDERStatusModel{},
	)
	require.NoError(t, err)
}
