package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"enverge/internal/infrastructure/persistence/models"
	"enverge/internal/shared/logger"
)

func setupRateDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	err = db.AutoMigrate(
		&models.SiteModel{},
		&models.TariffGeneratedRateModel{},
		&models.ArchiveTariffGeneratedRateModel{},
	)
	require.NoError(t, err)
	return db
}

// newTestRate builds a rate for a local Brisbane day. Brisbane is UTC+10
// with no DST, so the local derivations stay stable in tests.
func newTestRate(tariffID, siteID uint64, localDay string, minuteOfDay int32, importPrice int64) models.TariffGeneratedRateModel {
	day, _ := time.Parse("2006-01-02", localDay)
	start := day.Add(time.Duration(minuteOfDay)*time.Minute - 10*time.Hour)
	return models.TariffGeneratedRateModel{
		TariffGeneratedRateFields: models.TariffGeneratedRateFields{
			TariffID:          tariffID,
			SiteID:            siteID,
			StartTime:         start,
			DurationSeconds:   300,
			LocalStartDay:     localDay,
			LocalMinuteOfDay:  minuteOfDay,
			ImportActivePrice: importPrice,
		},
	}
}

func TestUpsertRates(t *testing.T) {
	db := setupRateDB(t)
	repo := NewRateRepository(db, logger.NewLogger())
	ctx := context.Background()

	t0 := time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC)

	t.Run("fresh batch inserts with a shared changed time", func(t *testing.T) {
		batch := []models.TariffGeneratedRateModel{
			newTestRate(1, 1, "2024-06-02", 0, 1000),
			newTestRate(1, 1, "2024-06-02", 5, 2000),
		}
		require.NoError(t, repo.UpsertRates(ctx, batch, t0))

		var rows []models.TariffGeneratedRateModel
		require.NoError(t, db.Find(&rows).Error)
		require.Len(t, rows, 2)
		for _, row := range rows {
			assert.True(t, row.ChangedTime.Equal(t0))
		}
	})

	t.Run("colliding start time replaces in place and archives", func(t *testing.T) {
		t1 := t0.Add(time.Hour)
		batch := []models.TariffGeneratedRateModel{
			newTestRate(1, 1, "2024-06-02", 0, 9999),
		}
		require.NoError(t, repo.UpsertRates(ctx, batch, t1))

		var rows []models.TariffGeneratedRateModel
		require.NoError(t, db.Order("local_minute_of_day ASC").Find(&rows).Error)
		require.Len(t, rows, 2)
		assert.Equal(t, int64(9999), rows[0].ImportActivePrice)
		assert.True(t, rows[0].ChangedTime.Equal(t1))
		// created_time survives the replacement
		assert.True(t, rows[0].CreatedTime.Equal(t0))

		var archived []models.ArchiveTariffGeneratedRateModel
		require.NoError(t, db.Find(&archived).Error)
		require.Len(t, archived, 1)
		assert.Equal(t, int64(1000), archived[0].ImportActivePrice)
		assert.Nil(t, archived[0].DeletedTime)
	})

	t.Run("empty batch is a no-op", func(t *testing.T) {
		require.NoError(t, repo.UpsertRates(ctx, nil, t0))
	})
}

func TestSelectRateDailyStats(t *testing.T) {
	db := setupRateDB(t)
	repo := NewRateRepository(db, logger.NewLogger())
	ctx := context.Background()

	t0 := time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC)
	epoch := time.Unix(0, 0).UTC()

	batch := []models.TariffGeneratedRateModel{
		newTestRate(1, 1, "2024-06-02", 0, 1000),
		newTestRate(1, 1, "2024-06-02", 5, 1100),
		newTestRate(1, 1, "2024-06-03", 0, 1200),
		newTestRate(1, 2, "2024-06-04", 0, 1300),
		newTestRate(2, 1, "2024-06-05", 0, 1400),
	}
	require.NoError(t, repo.UpsertRates(ctx, batch, t0))

	stats, err := repo.SelectRateDailyStats(ctx, 1, 1, epoch, 0, 10)
	require.NoError(t, err)
	require.Len(t, stats, 2)
	assert.Equal(t, "2024-06-02", stats[0].LocalStartDay)
	assert.Equal(t, int64(2), stats[0].RateCount)
	assert.Equal(t, "2024-06-03", stats[1].LocalStartDay)
	assert.Equal(t, int64(1), stats[1].RateCount)

	count, err := repo.CountRateDays(ctx, 1, 1, epoch)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	t.Run("day paging", func(t *testing.T) {
		stats, err := repo.SelectRateDailyStats(ctx, 1, 1, epoch, 1, 10)
		require.NoError(t, err)
		require.Len(t, stats, 1)
		assert.Equal(t, "2024-06-03", stats[0].LocalStartDay)
	})

	t.Run("changed after hides older batches", func(t *testing.T) {
		count, err := repo.CountRateDays(ctx, 1, 1, t0.Add(time.Minute))
		require.NoError(t, err)
		assert.Equal(t, int64(0), count)
	})
}

func TestSelectRatesForDay(t *testing.T) {
	db := setupRateDB(t)
	repo := NewRateRepository(db, logger.NewLogger())
	ctx := context.Background()

	t0 := time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC)
	epoch := time.Unix(0, 0).UTC()

	batch := []models.TariffGeneratedRateModel{
		newTestRate(1, 1, "2024-06-02", 30, 1100),
		newTestRate(1, 1, "2024-06-02", 0, 1000),
		newTestRate(1, 1, "2024-06-03", 0, 1200),
	}
	require.NoError(t, repo.UpsertRates(ctx, batch, t0))

	rates, err := repo.SelectRatesForDay(ctx, 1, 1, "2024-06-02", epoch, 0, 10)
	require.NoError(t, err)
	require.Len(t, rates, 2)
	assert.Equal(t, int32(0), rates[0].LocalMinuteOfDay)
	assert.Equal(t, int32(30), rates[1].LocalMinuteOfDay)

	count, err := repo.CountRatesForDay(ctx, 1, 1, "2024-06-02", epoch)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)
}

func TestSelectRateForDayTime(t *testing.T) {
	db := setupRateDB(t)
	repo := NewRateRepository(db, logger.NewLogger())
	ctx := context.Background()

	t0 := time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, repo.UpsertRates(ctx, []models.TariffGeneratedRateModel{
		newTestRate(1, 1, "2024-06-02", 870, 1500),
	}, t0))

	t.Run("exact match", func(t *testing.T) {
		rate, err := repo.SelectRateForDayTime(ctx, 1, 1, "2024-06-02", 870)
		require.NoError(t, err)
		require.NotNil(t, rate)
		assert.Equal(t, int64(1500), rate.ImportActivePrice)
	})

	t.Run("no containing interval fallback", func(t *testing.T) {
		rate, err := repo.SelectRateForDayTime(ctx, 1, 1, "2024-06-02", 871)
		require.NoError(t, err)
		assert.Nil(t, rate)
	})
}

func TestDeleteRatesWithStartTimeInRange(t *testing.T) {
	db := setupRateDB(t)
	repo := NewRateRepository(db, logger.NewLogger())
	ctx := context.Background()

	t0 := time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC)
	batch := []models.TariffGeneratedRateModel{
		newTestRate(1, 1, "2024-06-02", 0, 1000),
		newTestRate(1, 1, "2024-06-03", 0, 1100),
	}
	require.NoError(t, repo.UpsertRates(ctx, batch, t0))

	deleteAt := t0.Add(time.Hour)
	from := batch[0].StartTime.Add(-time.Minute)
	to := batch[0].StartTime.Add(time.Minute)
	require.NoError(t, repo.DeleteRatesWithStartTimeInRange(ctx, 1, from, to, deleteAt))

	var live []models.TariffGeneratedRateModel
	require.NoError(t, db.Find(&live).Error)
	require.Len(t, live, 1)
	assert.Equal(t, "2024-06-03", live[0].LocalStartDay)

	var archived []models.ArchiveTariffGeneratedRateModel
	require.NoError(t, db.Find(&archived).Error)
	require.Len(t, archived, 1)
	require.NotNil(t, archived[0].DeletedTime)
	assert.True(t, archived[0].DeletedTime.Equal(deleteAt))
}
