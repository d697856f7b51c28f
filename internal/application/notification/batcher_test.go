package notification

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"enverge/internal/domain/ident"
	"enverge/internal/domain/subscription"
	"enverge/internal/infrastructure/persistence/models"
	"enverge/internal/infrastructure/repository"
	"enverge/internal/infrastructure/tasks"
	"enverge/internal/shared/logger"
)

// captureQueue records enqueued transmit tasks instead of handing them
// to a worker.
type captureQueue struct {
	tasks []tasks.TransmitTask
}

func (q *captureQueue) EnqueueTransmit(_ context.Context, task tasks.TransmitTask) error {
	q.tasks = append(q.tasks, task)
	return nil
}

func (q *captureQueue) tasksFor(remoteURI string) []tasks.TransmitTask {
	var out []tasks.TransmitTask
	for _, task := range q.tasks {
		if task.RemoteURI == remoteURI {
			out = append(out, task)
		}
	}
	return out
}

func setupBatcher(t *testing.T) (*gorm.DB, *Batcher, *captureQueue) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	err = db.AutoMigrate(
		&models.SiteModel{},
		&models.TariffGeneratedRateModel{},
		&models.ArchiveTariffGeneratedRateModel{},
		&models.SubscriptionModel{},
		&models.SubscriptionConditionModel{},
		&models.RuntimeServerConfigModel{},
	)
	require.NoError(t, err)

	log := logger.NewLogger()
	queue := &captureQueue{}
	batcher := NewBatcher(
		repository.NewSiteRepository(db, log),
		repository.NewDoeRepository(db, log),
		repository.NewRateRepository(db, log),
		repository.NewReadingRepository(db, log),
		repository.NewDERRepository(db, log),
		repository.NewSubscriptionRepository(db, log),
		repository.NewRuntimeConfigRepository(db, log),
		queue,
		ident.NewHrefBuilder(""),
		12345,
		log,
	)
	return db, batcher, queue
}

func createBatcherSite(t *testing.T, db *gorm.DB, id, aggregatorID uint64) {
	t.Helper()
	now := time.Now().UTC()
	require.NoError(t, db.Create(&models.SiteModel{
		ID: id,
		SiteFields: models.SiteFields{
			AggregatorID: aggregatorID,
			Sfdi:         id * 111,
			Lfdi:         fmt.Sprintf("%040x", id),
			TimezoneID:   "Australia/Brisbane",
			CreatedTime:  now,
			ChangedTime:  now,
		},
	}).Error)
}

func createRateSubscription(t *testing.T, db *gorm.DB, aggregatorID, siteID, tariffID uint64, remoteURI string) {
	t.Helper()
	now := time.Now().UTC()
	require.NoError(t, db.Create(&models.SubscriptionModel{
		SubscriptionFields: models.SubscriptionFields{
			AggregatorID:    aggregatorID,
			ResourceType:    int32(subscription.ResourceTariffGeneratedRate),
			ResourceID:      &tariffID,
			ScopedSiteID:    &siteID,
			NotificationURI: remoteURI,
			EntityLimit:     100,
			CreatedTime:     now,
			ChangedTime:     now,
		},
	}).Error)
}

func batcherRate(tariffID, siteID uint64, localDay string, minuteOfDay int32, ts time.Time) models.TariffGeneratedRateModel {
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
			ImportActivePrice: 1000,
			CreatedTime:       ts,
			ChangedTime:       ts,
		},
	}
}

func TestRateNotificationsFanOutPerDayAndReadingType(t *testing.T) {
	db, batcher, queue := setupBatcher(t)
	ctx := context.Background()

	createBatcherSite(t, db, 7, 1)
	createRateSubscription(t, db, 1, 7, 5, "https://agg1.example.com/hook")

	ts := time.Date(2024, time.June, 1, 4, 0, 0, 0, time.UTC)
	rates := []models.TariffGeneratedRateModel{
		batcherRate(5, 7, "2024-06-02", 0, ts),
		batcherRate(5, 7, "2024-06-03", 30, ts),
	}
	require.NoError(t, db.Create(&rates).Error)

	require.NoError(t, batcher.CheckChangedOrDeleted(ctx, subscription.ResourceTariffGeneratedRate, ts))

	// 2 days times 4 pricing reading types, one rate per day page.
	require.Len(t, queue.tasks, 8)

	seen := make(map[string]int)
	for _, task := range queue.tasks {
		xml := string(task.XML)
		for _, day := range []string{"2024-06-02", "2024-06-03"} {
			for prt := 1; prt <= 4; prt++ {
				href := fmt.Sprintf("/edev/7/tp/5/rc/%s/%d/tti", day, prt)
				if strings.Contains(xml, "<subscribedResource>"+href+"</subscribedResource>") {
					seen[href]++
				}
			}
		}
		assert.Contains(t, xml, `all="1"`)
	}
	require.Len(t, seen, 8)
	for href, count := range seen {
		assert.Equal(t, 1, count, href)
	}

	// A day's page never carries the other day's intervals.
	for _, task := range queue.tasks {
		xml := string(task.XML)
		if strings.Contains(xml, "/rc/2024-06-02/") {
			assert.NotContains(t, xml, "2024-06-03")
		}
		if strings.Contains(xml, "/rc/2024-06-03/") {
			assert.NotContains(t, xml, "2024-06-02")
		}
	}
}

func TestRateSubscriptionOutsideChangedAggregatorGetsEmptyList(t *testing.T) {
	db, batcher, queue := setupBatcher(t)
	ctx := context.Background()

	createBatcherSite(t, db, 7, 1)
	createBatcherSite(t, db, 9, 2)
	createRateSubscription(t, db, 1, 7, 5, "https://agg1.example.com/hook")
	createRateSubscription(t, db, 2, 9, 5, "https://agg2.example.com/hook")

	ts := time.Date(2024, time.June, 1, 4, 0, 0, 0, time.UTC)
	rates := []models.TariffGeneratedRateModel{
		batcherRate(5, 7, "2024-06-02", 0, ts),
	}
	require.NoError(t, db.Create(&rates).Error)

	require.NoError(t, batcher.CheckChangedOrDeleted(ctx, subscription.ResourceTariffGeneratedRate, ts))

	// Aggregator 1's subscription gets its 4 reading type pages.
	assert.Len(t, queue.tasksFor("https://agg1.example.com/hook"), 4)

	// Aggregator 2 saw no rate change, so its subscription still gets
	// one empty list notification against its own tariff profile.
	idle := queue.tasksFor("https://agg2.example.com/hook")
	require.Len(t, idle, 1)
	xml := string(idle[0].XML)
	assert.Contains(t, xml, "<subscribedResource>/edev/9/tp/5/rc</subscribedResource>")
	assert.Contains(t, xml, `all="0"`)
	assert.Contains(t, xml, `results="0"`)
}
