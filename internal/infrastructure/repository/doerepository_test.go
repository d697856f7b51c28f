package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"enverge/internal/domain/envelope"
	"enverge/internal/infrastructure/persistence/models"
	"enverge/internal/shared/logger"
)

func setupDoeDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	err = db.AutoMigrate(
		&models.SiteModel{},
		&models.DynamicOperatingEnvelopeModel{},
		&models.ArchiveDoeModel{},
	)
	require.NoError(t, err)

	return db
}

func createTestSite(t *testing.T, db *gorm.DB, aggregatorID uint64) *models.SiteModel {
	site := &models.SiteModel{
		SiteFields: models.SiteFields{
			AggregatorID:    aggregatorID,
			Sfdi:            167261211391,
			Lfdi:            "0x3e4f45ab31edfe5b67e343e5e4562e31984e23e5",
			TimezoneID:      "Australia/Brisbane",
			RegistrationPin: 12345,
			CreatedTime:     time.Now().UTC(),
			ChangedTime:     time.Now().UTC(),
		},
	}
	require.NoError(t, db.Create(site).Error)
	return site
}

func newTestDoe(groupID, siteID uint64, start time.Time, durationSeconds int32) *models.DynamicOperatingEnvelopeModel {
	exportLimit := int64(5000)
	return &models.DynamicOperatingEnvelopeModel{
		DoeFields: models.DoeFields{
			SiteControlGroupID: groupID,
			SiteID:             siteID,
			StartTime:          start,
			DurationSeconds:    durationSeconds,
			EndTime:            start.Add(time.Duration(durationSeconds) * time.Second),
			ExportLimitWatts:   &exportLimit,
		},
	}
}

func TestCancelThenInsertDoes(t *testing.T) {
	db := setupDoeDB(t)
	repo := NewDoeRepository(db, logger.NewLogger())
	ctx := context.Background()

	start := time.Date(2024, time.June, 1, 10, 0, 0, 0, time.UTC)

	t.Run("rejects mismatched end time", func(t *testing.T) {
		doe := newTestDoe(1, 1, start, 3600)
		doe.EndTime = start.Add(time.Hour + time.Minute)
		err := repo.CancelThenInsertDoes(ctx, []*models.DynamicOperatingEnvelopeModel{doe}, time.Now().UTC())
		assert.Error(t, err)
	})

	t.Run("first insert creates without archiving", func(t *testing.T) {
		doe := newTestDoe(1, 1, start, 3600)
		err := repo.CancelThenInsertDoes(ctx, []*models.DynamicOperatingEnvelopeModel{doe}, time.Now().UTC())
		require.NoError(t, err)

		var liveCount, archiveCount int64
		db.Model(&models.DynamicOperatingEnvelopeModel{}).Count(&liveCount)
		db.Model(&models.ArchiveDoeModel{}).Count(&archiveCount)
		assert.Equal(t, int64(1), liveCount)
		assert.Equal(t, int64(0), archiveCount)
	})

	t.Run("resubmission cancel replaces the old row", func(t *testing.T) {
		deletedAt := time.Date(2024, time.June, 1, 9, 0, 0, 0, time.UTC)
		replacement := newTestDoe(1, 1, start, 3600)
		newLimit := int64(2000)
		replacement.ExportLimitWatts = &newLimit

		err := repo.CancelThenInsertDoes(ctx, []*models.DynamicOperatingEnvelopeModel{replacement}, deletedAt)
		require.NoError(t, err)

		var live []models.DynamicOperatingEnvelopeModel
		require.NoError(t, db.Find(&live).Error)
		require.Len(t, live, 1)
		assert.Equal(t, int64(2000), *live[0].ExportLimitWatts)

		var archived []models.ArchiveDoeModel
		require.NoError(t, db.Find(&archived).Error)
		require.Len(t, archived, 1)
		require.NotNil(t, archived[0].DeletedTime)
		assert.True(t, archived[0].DeletedTime.Equal(deletedAt))
		assert.Equal(t, int64(5000), *archived[0].ExportLimitWatts)
	})
}

func TestSupersedeThenInsertDoes(t *testing.T) {
	ctx := context.Background()
	start := time.Date(2024, time.June, 1, 10, 0, 0, 0, time.UTC)
	primacies := map[uint64]int32{1: 1, 2: 0, 3: 5}

	t.Run("more authoritative group supersedes overlap", func(t *testing.T) {
		db := setupDoeDB(t)
		repo := NewDoeRepository(db, logger.NewLogger())

		existing := newTestDoe(1, 1, start, 7200)
		require.NoError(t, repo.CancelThenInsertDoes(ctx, []*models.DynamicOperatingEnvelopeModel{existing}, start))

		incoming := newTestDoe(2, 1, start.Add(time.Hour), 7200)
		err := repo.SupersedeThenInsertDoes(ctx, []*models.DynamicOperatingEnvelopeModel{incoming}, primacies, start.Add(time.Minute))
		require.NoError(t, err)

		var old models.DynamicOperatingEnvelopeModel
		require.NoError(t, db.Where("site_control_group_id = ?", 1).First(&old).Error)
		assert.True(t, old.Superseded)

		// pre-image lands in the archive without a deletion instant
		var archived []models.ArchiveDoeModel
		require.NoError(t, db.Find(&archived).Error)
		require.Len(t, archived, 1)
		assert.Nil(t, archived[0].DeletedTime)
		assert.False(t, archived[0].Superseded)

		var liveCount int64
		db.Model(&models.DynamicOperatingEnvelopeModel{}).Count(&liveCount)
		assert.Equal(t, int64(2), liveCount)
	})

	t.Run("less authoritative group leaves overlap untouched", func(t *testing.T) {
		db := setupDoeDB(t)
		repo := NewDoeRepository(db, logger.NewLogger())

		existing := newTestDoe(1, 1, start, 7200)
		require.NoError(t, repo.CancelThenInsertDoes(ctx, []*models.DynamicOperatingEnvelopeModel{existing}, start))

		incoming := newTestDoe(3, 1, start.Add(time.Hour), 7200)
		err := repo.SupersedeThenInsertDoes(ctx, []*models.DynamicOperatingEnvelopeModel{incoming}, primacies, start.Add(time.Minute))
		require.NoError(t, err)

		var old models.DynamicOperatingEnvelopeModel
		require.NoError(t, db.Where("site_control_group_id = ?", 1).First(&old).Error)
		assert.False(t, old.Superseded)
	})

	t.Run("non overlapping windows never supersede", func(t *testing.T) {
		db := setupDoeDB(t)
		repo := NewDoeRepository(db, logger.NewLogger())

		existing := newTestDoe(1, 1, start, 3600)
		require.NoError(t, repo.CancelThenInsertDoes(ctx, []*models.DynamicOperatingEnvelopeModel{existing}, start))

		// adjacent window starting exactly at the old end
		incoming := newTestDoe(2, 1, start.Add(time.Hour), 3600)
		err := repo.SupersedeThenInsertDoes(ctx, []*models.DynamicOperatingEnvelopeModel{incoming}, primacies, start.Add(time.Minute))
		require.NoError(t, err)

		var old models.DynamicOperatingEnvelopeModel
		require.NoError(t, db.Where("site_control_group_id = ?", 1).First(&old).Error)
		assert.False(t, old.Superseded)
	})

	t.Run("adjacent window ending at a later start never supersedes", func(t *testing.T) {
		db := setupDoeDB(t)
		repo := NewDoeRepository(db, logger.NewLogger())

		existing := newTestDoe(1, 1, start.Add(time.Hour), 3600)
		require.NoError(t, repo.CancelThenInsertDoes(ctx, []*models.DynamicOperatingEnvelopeModel{existing}, start))

		// incoming window ending exactly where the old one starts
		incoming := newTestDoe(2, 1, start, 3600)
		err := repo.SupersedeThenInsertDoes(ctx, []*models.DynamicOperatingEnvelopeModel{incoming}, primacies, start.Add(time.Minute))
		require.NoError(t, err)

		var old models.DynamicOperatingEnvelopeModel
		require.NoError(t, db.Where("site_control_group_id = ?", 1).First(&old).Error)
		assert.False(t, old.Superseded)
	})
}

func TestSelectActiveDoesIncludeDeleted(t *testing.T) {
	db := setupDoeDB(t)
	repo := NewDoeRepository(db, logger.NewLogger())
	ctx := context.Background()

	base := time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC)
	epoch := time.Unix(0, 0).UTC()

	first := newTestDoe(1, 1, base.Add(1*time.Hour), 3600)
	second := newTestDoe(1, 1, base.Add(2*time.Hour), 3600)
	require.NoError(t, repo.CancelThenInsertDoes(ctx, []*models.DynamicOperatingEnvelopeModel{first, second}, base))

	// cancel the later envelope so it surfaces from the archive
	cancelAt := base.Add(30 * time.Minute)
	require.NoError(t, repo.DeleteDoesWithStartTimeInRange(ctx, 1, nil,
		base.Add(90*time.Minute), base.Add(150*time.Minute), cancelAt))

	records, err := repo.SelectActiveDoesIncludeDeleted(ctx, 1, 1, base, epoch, 0, 10)
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, envelope.OriginLive, records[0].Origin)
	assert.True(t, records[0].StartTime.Equal(base.Add(1*time.Hour)))

	assert.Equal(t, envelope.OriginArchive, records[1].Origin)
	assert.True(t, records[1].IsDeleted())
	assert.True(t, records[1].ChangedTime.Equal(cancelAt))

	count, err := repo.CountActiveDoesIncludeDeleted(ctx, 1, 1, base, epoch)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	t.Run("expired envelopes drop out", func(t *testing.T) {
		afterAll := base.Add(4 * time.Hour)
		count, err := repo.CountActiveDoesIncludeDeleted(ctx, 1, 1, afterAll, epoch)
		require.NoError(t, err)
		assert.Equal(t, int64(0), count)
	})

	t.Run("changed after filters both arms", func(t *testing.T) {
		count, err := repo.CountActiveDoesIncludeDeleted(ctx, 1, 1, base, base.Add(time.Hour))
		require.NoError(t, err)
		assert.Equal(t, int64(0), count)
	})

	t.Run("paging window applies after the merge", func(t *testing.T) {
		records, err := repo.SelectActiveDoesIncludeDeleted(ctx, 1, 1, base, epoch, 1, 10)
		require.NoError(t, err)
		require.Len(t, records, 1)
		assert.Equal(t, envelope.OriginArchive, records[0].Origin)
	})
}

func TestSelectDoeByID(t *testing.T) {
	db := setupDoeDB(t)
	repo := NewDoeRepository(db, logger.NewLogger())
	ctx := context.Background()

	site := createTestSite(t, db, 3)
	start := time.Date(2024, time.June, 1, 10, 0, 0, 0, time.UTC)
	doe := newTestDoe(1, site.ID, start, 3600)
	require.NoError(t, repo.CancelThenInsertDoes(ctx, []*models.DynamicOperatingEnvelopeModel{doe}, start))

	t.Run("found within the aggregator partition", func(t *testing.T) {
		record, err := repo.SelectDoeByID(ctx, doe.ID, 3, site.ID)
		require.NoError(t, err)
		require.NotNil(t, record)
		assert.Equal(t, doe.ID, record.ID)
	})

	t.Run("other aggregator partition sees nothing", func(t *testing.T) {
		record, err := repo.SelectDoeByID(ctx, doe.ID, 4, site.ID)
		require.NoError(t, err)
		assert.Nil(t, record)
	})

	t.Run("wrong site sees nothing", func(t *testing.T) {
		record, err := repo.SelectDoeByID(ctx, doe.ID, 3, site.ID+1)
		require.NoError(t, err)
		assert.Nil(t, record)
	})
}

func TestSelectDoesAtTimestamp(t *testing.T) {
	db := setupDoeDB(t)
	repo := NewDoeRepository(db, logger.NewLogger())
	ctx := context.Background()

	site := createTestSite(t, db, 3)
	base := time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC)
	epoch := time.Unix(0, 0).UTC()

	active := newTestDoe(1, site.ID, base.Add(1*time.Hour), 7200)
	later := newTestDoe(1, site.ID, base.Add(5*time.Hour), 3600)
	require.NoError(t, repo.CancelThenInsertDoes(ctx, []*models.DynamicOperatingEnvelopeModel{active, later}, base))

	records, err := repo.SelectDoesAtTimestamp(ctx, 1, 3, nil, base.Add(2*time.Hour), epoch, 0, 10)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, active.ID, records[0].ID)

	count, err := repo.CountDoesAtTimestamp(ctx, 1, 3, nil, base.Add(2*time.Hour), epoch)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	t.Run("window start is inclusive and end exclusive", func(t *testing.T) {
		count, err := repo.CountDoesAtTimestamp(ctx, 1, 3, nil, base.Add(1*time.Hour), epoch)
		require.NoError(t, err)
		assert.Equal(t, int64(1), count)

		count, err = repo.CountDoesAtTimestamp(ctx, 1, 3, nil, base.Add(3*time.Hour), epoch)
		require.NoError(t, err)
		assert.Equal(t, int64(0), count)
	})

	t.Run("other aggregator partition sees nothing", func(t *testing.T) {
		count, err := repo.CountDoesAtTimestamp(ctx, 1, 4, nil, base.Add(2*time.Hour), epoch)
		require.NoError(t, err)
		assert.Equal(t, int64(0), count)
	})
}
