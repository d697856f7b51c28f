package repository

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"enverge/internal/domain/envelope"
	"enverge/internal/infrastructure/persistence/models"
	"enverge/internal/shared/db"
	"enverge/internal/shared/errors"
	"enverge/internal/shared/logger"
)

// doeOrdering is the 2030.5 mandated DERControl list order. The archive
// arm substitutes deleted_time for changed_time before this applies.
const doeOrdering = "start_time ASC, changed_time DESC, id DESC"

// doeUnionColumns is the shared projection of the live/archive UNION ALL.
const doeUnionColumns = `id, site_control_group_id, site_id, start_time, end_time, duration_seconds,
randomize_start_seconds, import_limit_active_watts, export_limit_watts,
generation_limit_active_watts, load_limit_active_watts, set_energized, set_connected,
set_point_percentage, ramp_time_seconds, superseded, created_time`

type DoeRepository struct {
	db     *gorm.DB
	tm     *db.TransactionManager
	logger logger.Interface
}

func NewDoeRepository(gormDB *gorm.DB, logger logger.Interface) *DoeRepository {
	return &DoeRepository{
		db:     gormDB,
		tm:     db.NewTransactionManager(gormDB),
		logger: logger,
	}
}

// validateWindow asserts the materialised end_time invariant before any
// envelope reaches the windowed indexes.
func validateWindow(doe *models.DynamicOperatingEnvelopeModel) error {
	expected := doe.StartTime.Add(time.Duration(doe.DurationSeconds) * time.Second)
	if !doe.EndTime.Equal(expected) {
		return errors.NewBadRequestError(fmt.Sprintf(
			"envelope end time %s does not equal start %s plus %d seconds",
			doe.EndTime.UTC().Format(time.RFC3339), doe.StartTime.UTC().Format(time.RFC3339), doe.DurationSeconds))
	}
	return nil
}

// CancelThenInsertDoes replaces any envelope sharing the submitted
// (group, start_time, site) key: the old row is archived with the delete
// instant and the new row inserted. Runs as a single transaction.
func (r *DoeRepository) CancelThenInsertDoes(ctx context.Context, does []*models.DynamicOperatingEnvelopeModel, now time.Time) error {
	for _, doe := range does {
		if err := validateWindow(doe); err != nil {
			return err
		}
	}

	return r.tm.RunInTransaction(ctx, func(txCtx context.Context) error {
		tx := r.tm.GetTx(txCtx)
		for _, doe := range does {
			err := deleteIntoArchive(tx,
				&models.DynamicOperatingEnvelopeModel{}, &models.ArchiveDoeModel{}, now,
				"site_control_group_id = ? AND start_time = ? AND site_id = ?",
				doe.SiteControlGroupID, doe.StartTime, doe.SiteID)
			if err != nil {
				return err
			}

			doe.CreatedTime = now
			doe.ChangedTime = now
			if err := tx.Create(doe).Error; err != nil {
				return fmt.Errorf("failed to insert envelope: %w", err)
			}
		}
		return nil
	})
}

// SupersedeThenInsertDoes inserts new envelopes after marking any
// overlapping envelope from an equal or lower priority group as
// superseded. Marking archives the pre-image as an update, not a delete.
// Envelopes sharing the exact (group, start_time, site) key are cancel
// replaced so the unique key holds.
func (r *DoeRepository) SupersedeThenInsertDoes(ctx context.Context, does []*models.DynamicOperatingEnvelopeModel, primacyByGroup map[uint64]int32, now time.Time) error {
	for _, doe := range does {
		if err := validateWindow(doe); err != nil {
			return err
		}
	}

	return r.tm.RunInTransaction(ctx, func(txCtx context.Context) error {
		tx := r.tm.GetTx(txCtx)
		for _, doe := range does {
			newPrimacy := envelope.PrimacyOf(primacyByGroup, doe.SiteControlGroupID)

			// The query prefilters on end_time; the half open window
			// comparison is the envelope rule, not SQL's.
			var existing []models.DynamicOperatingEnvelopeModel
			err := tx.
				Where("site_id = ? AND superseded = ? AND end_time > ?",
					doe.SiteID, false, doe.StartTime).
				Find(&existing).Error
			if err != nil {
				return fmt.Errorf("failed to select overlapping envelopes: %w", err)
			}

			for i := range existing {
				old := &existing[i]
				if !envelope.Overlaps(old.StartTime, old.EndTime, doe.StartTime, doe.EndTime) {
					continue
				}
				oldPrimacy := envelope.PrimacyOf(primacyByGroup, old.SiteControlGroupID)
				if !envelope.Supersedes(oldPrimacy, newPrimacy) {
					continue
				}
				if err := copyIntoArchive(tx,
					&models.DynamicOperatingEnvelopeModel{}, &models.ArchiveDoeModel{},
					"id = ?", old.ID); err != nil {
					return err
				}
				err := tx.Model(&models.DynamicOperatingEnvelopeModel{}).
					Where("id = ?", old.ID).
					Updates(map[string]interface{}{"superseded": true, "changed_time": now}).Error
				if err != nil {
					return fmt.Errorf("failed to mark envelope %d superseded: %w", old.ID, err)
				}
			}

			err = deleteIntoArchive(tx,
				&models.DynamicOperatingEnvelopeModel{}, &models.ArchiveDoeModel{}, now,
				"site_control_group_id = ? AND start_time = ? AND site_id = ?",
				doe.SiteControlGroupID, doe.StartTime, doe.SiteID)
			if err != nil {
				return err
			}

			doe.CreatedTime = now
			doe.ChangedTime = now
			if err := tx.Create(doe).Error; err != nil {
				return fmt.Errorf("failed to insert envelope: %w", err)
			}
		}
		return nil
	})
}

// DeleteDoesWithStartTimeInRange archives every envelope whose start_time
// falls in [periodStart, periodEnd) for the group, optionally bounded to
// one site.
func (r *DoeRepository) DeleteDoesWithStartTimeInRange(ctx context.Context, groupID uint64, siteID *uint64, periodStart, periodEnd, now time.Time) error {
	return r.tm.RunInTransaction(ctx, func(txCtx context.Context) error {
		tx := r.tm.GetTx(txCtx)
		where := "site_control_group_id = ? AND start_time >= ? AND start_time < ?"
		args := []interface{}{groupID, periodStart, periodEnd}
		if siteID != nil {
			where += " AND site_id = ?"
			args = append(args, *siteID)
		}
		return deleteIntoArchive(tx,
			&models.DynamicOperatingEnvelopeModel{}, &models.ArchiveDoeModel{}, now,
			where, args...)
	})
}

// doeUnionRow is the scan target of the live/archive UNION ALL.
type doeUnionRow struct {
	IsArchive          bool
	ID                 uint64
	SiteControlGroupID uint64
	SiteID             uint64
	StartTime          time.Time
	EndTime            time.Time
	DurationSeconds    int32

	RandomizeStartSeconds      *int16
	ImportLimitActiveWatts     *int64
	ExportLimitWatts           *int64
	GenerationLimitActiveWatts *int64
	LoadLimitActiveWatts       *int64
	SetEnergized               *bool
	SetConnected               *bool
	SetPointPercentage         *int64
	RampTimeSeconds            *int64

	Superseded  bool
	CreatedTime time.Time
	ChangedTime time.Time
	DeletedTime *time.Time
}

func (row doeUnionRow) toRecord() envelope.DoeRecord {
	origin := envelope.OriginLive
	if row.IsArchive {
		origin = envelope.OriginArchive
	}
	return envelope.DoeRecord{
		Origin:                     origin,
		ID:                         row.ID,
		SiteControlGroupID:         row.SiteControlGroupID,
		SiteID:                     row.SiteID,
		StartTime:                  row.StartTime,
		EndTime:                    row.EndTime,
		DurationSeconds:            row.DurationSeconds,
		RandomizeStartSeconds:      row.RandomizeStartSeconds,
		ImportLimitActiveWatts:     row.ImportLimitActiveWatts,
		ExportLimitWatts:           row.ExportLimitWatts,
		GenerationLimitActiveWatts: row.GenerationLimitActiveWatts,
		LoadLimitActiveWatts:       row.LoadLimitActiveWatts,
		SetEnergized:               row.SetEnergized,
		SetConnected:               row.SetConnected,
		SetPointPercentage:         row.SetPointPercentage,
		RampTimeSeconds:            row.RampTimeSeconds,
		Superseded:                 row.Superseded,
		CreatedTime:                row.CreatedTime,
		ChangedTime:                row.ChangedTime,
		DeletedTime:                row.DeletedTime,
	}
}

// doeUnionSQL builds the UNION ALL across the live table and its shadow.
// The union at the database level is load bearing: the 2030.5 ordering
// must hold across both origins in a single sort, so a page can span the
// live/archive boundary.
func doeUnionSQL(extraWhere string) string {
	liveArm := fmt.Sprintf(
		"SELECT 0 AS is_archive, %s, changed_time, NULL AS deleted_time FROM dynamic_operating_envelopes WHERE site_control_group_id = ? AND site_id = ? AND end_time > ? AND changed_time >= ?%s",
		doeUnionColumns, extraWhere)
	archiveArm := fmt.Sprintf(
		"SELECT 1 AS is_archive, %s, deleted_time AS changed_time, deleted_time FROM archive_dynamic_operating_envelopes WHERE site_control_group_id = ? AND site_id = ? AND end_time > ? AND deleted_time IS NOT NULL AND deleted_time >= ?%s",
		doeUnionColumns, extraWhere)
	return liveArm + " UNION ALL " + archiveArm
}

// SelectActiveDoesIncludeDeleted returns every not-yet-expired envelope
// for the site within the group, live or recently cancelled, ordered by
// (start_time ASC, changed_time DESC, id DESC) where a cancelled row
// orders by its deletion instant.
func (r *DoeRepository) SelectActiveDoesIncludeDeleted(ctx context.Context, groupID, siteID uint64, now, changedAfter time.Time, start, limit int) ([]envelope.DoeRecord, error) {
	sql := fmt.Sprintf("SELECT * FROM (%s) AS u ORDER BY %s LIMIT ? OFFSET ?", doeUnionSQL(""), doeOrdering)

	var rows []doeUnionRow
	err := r.db.WithContext(ctx).Raw(sql,
		groupID, siteID, now, changedAfter,
		groupID, siteID, now, changedAfter,
		limit, start,
	).Scan(&rows).Error
	if err != nil {
		r.logger.Errorw("failed to select active envelopes", "group_id", groupID, "site_id", siteID, "error", err)
		return nil, fmt.Errorf("failed to select active envelopes: %w", err)
	}

	records := make([]envelope.DoeRecord, 0, len(rows))
	for _, row := range rows {
		records = append(records, row.toRecord())
	}
	return records, nil
}

// CountActiveDoesIncludeDeleted counts the union the list query pages over.
func (r *DoeRepository) CountActiveDoesIncludeDeleted(ctx context.Context, groupID, siteID uint64, now, changedAfter time.Time) (int64, error) {
	sql := fmt.Sprintf("SELECT COUNT(*) FROM (%s) AS u", doeUnionSQL(""))

	var count int64
	err := r.db.WithContext(ctx).Raw(sql,
		groupID, siteID, now, changedAfter,
		groupID, siteID, now, changedAfter,
	).Scan(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count active envelopes: %w", err)
	}
	return count, nil
}

// SelectDoesAtTimestamp returns the envelopes whose window contains the
// timestamp, bounded to the aggregator partition (via the sites table)
// and optionally one site. Live rows only; same list ordering.
func (r *DoeRepository) SelectDoesAtTimestamp(ctx context.Context, groupID, aggregatorID uint64, siteID *uint64, ts, changedAfter time.Time, start, limit int) ([]envelope.DoeRecord, error) {
	query := r.db.WithContext(ctx).
		Model(&models.DynamicOperatingEnvelopeModel{}).
		Joins("JOIN sites ON sites.id = dynamic_operating_envelopes.site_id").
		Where("dynamic_operating_envelopes.site_control_group_id = ?", groupID).
		Where("sites.aggregator_id = ?", aggregatorID).
		Where("dynamic_operating_envelopes.start_time <= ? AND dynamic_operating_envelopes.end_time > ?", ts, ts).
		Where("dynamic_operating_envelopes.changed_time >= ?", changedAfter)
	if siteID != nil {
		query = query.Where("dynamic_operating_envelopes.site_id = ?", *siteID)
	}

	var rows []models.DynamicOperatingEnvelopeModel
	err := query.
		Order("dynamic_operating_envelopes.start_time ASC, dynamic_operating_envelopes.changed_time DESC, dynamic_operating_envelopes.id DESC").
		Limit(limit).Offset(start).
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to select envelopes at timestamp: %w", err)
	}

	records := make([]envelope.DoeRecord, 0, len(rows))
	for _, row := range rows {
		records = append(records, liveDoeRecord(row))
	}
	return records, nil
}

// CountDoesAtTimestamp counts the point-in-time selection.
func (r *DoeRepository) CountDoesAtTimestamp(ctx context.Context, groupID, aggregatorID uint64, siteID *uint64, ts, changedAfter time.Time) (int64, error) {
	query := r.db.WithContext(ctx).
		Model(&models.DynamicOperatingEnvelopeModel{}).
		Joins("JOIN sites ON sites.id = dynamic_operating_envelopes.site_id").
		Where("dynamic_operating_envelopes.site_control_group_id = ?", groupID).
		Where("sites.aggregator_id = ?", aggregatorID).
		Where("dynamic_operating_envelopes.start_time <= ? AND dynamic_operating_envelopes.end_time > ?", ts, ts).
		Where("dynamic_operating_envelopes.changed_time >= ?", changedAfter)
	if siteID != nil {
		query = query.Where("dynamic_operating_envelopes.site_id = ?", *siteID)
	}

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count envelopes at timestamp: %w", err)
	}
	return count, nil
}

// SelectDoeByID fetches one live envelope bounded to an aggregator
// partition and site.
func (r *DoeRepository) SelectDoeByID(ctx context.Context, doeID, aggregatorID, siteID uint64) (*envelope.DoeRecord, error) {
	var row models.DynamicOperatingEnvelopeModel
	err := r.db.WithContext(ctx).
		Joins("JOIN sites ON sites.id = dynamic_operating_envelopes.site_id").
		Where("dynamic_operating_envelopes.id = ? AND dynamic_operating_envelopes.site_id = ? AND sites.aggregator_id = ?",
			doeID, siteID, aggregatorID).
		First(&row).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to select envelope: %w", err)
	}
	record := liveDoeRecord(row)
	return &record, nil
}

func liveDoeRecord(row models.DynamicOperatingEnvelopeModel) envelope.DoeRecord {
	return envelope.DoeRecord{
		Origin:                     envelope.OriginLive,
		ID:                         row.ID,
		SiteControlGroupID:         row.SiteControlGroupID,
		SiteID:                     row.SiteID,
		StartTime:                  row.StartTime,
		EndTime:                    row.EndTime,
		DurationSeconds:            row.DurationSeconds,
		RandomizeStartSeconds:      row.RandomizeStartSeconds,
		ImportLimitActiveWatts:     row.ImportLimitActiveWatts,
		ExportLimitWatts:           row.ExportLimitWatts,
		GenerationLimitActiveWatts: row.GenerationLimitActiveWatts,
		LoadLimitActiveWatts:       row.LoadLimitActiveWatts,
		SetEnergized:               row.SetEnergized,
		SetConnected:               row.SetConnected,
		SetPointPercentage:         row.SetPointPercentage,
		RampTimeSeconds:            row.RampTimeSeconds,
		Superseded:                 row.Superseded,
		CreatedTime:                row.CreatedTime,
		ChangedTime:                row.ChangedTime,
	}
}

func archiveDoeRecord(row models.ArchiveDoeModel) envelope.DoeRecord {
	changed := row.ChangedTime
	if row.DeletedTime != nil {
		changed = *row.DeletedTime
	}
	return envelope.DoeRecord{
		Origin:                     envelope.OriginArchive,
		ID:                         row.ID,
		SiteControlGroupID:         row.SiteControlGroupID,
		SiteID:                     row.SiteID,
		StartTime:                  row.StartTime,
		EndTime:                    row.EndTime,
		DurationSeconds:            row.DurationSeconds,
		RandomizeStartSeconds:      row.RandomizeStartSeconds,
		ImportLimitActiveWatts:     row.ImportLimitActiveWatts,
		ExportLimitWatts:           row.ExportLimitWatts,
		GenerationLimitActiveWatts: row.GenerationLimitActiveWatts,
		LoadLimitActiveWatts:       row.LoadLimitActiveWatts,
		SetEnergized:               row.SetEnergized,
		SetConnected:               row.SetConnected,
		SetPointPercentage:         row.SetPointPercentage,
		RampTimeSeconds:            row.RampTimeSeconds,
		Superseded:                 row.Superseded,
		CreatedTime:                row.CreatedTime,
		ChangedTime:                changed,
		DeletedTime:                row.DeletedTime,
	}
}

// SelectDoesChangedAt fetches every live envelope whose changed_time is
// exactly the trigger instant, joined with its owning site's aggregator
// for batch keying.
func (r *DoeRepository) SelectDoesChangedAt(ctx context.Context, ts time.Time) ([]ChangedDoe, error) {
	var rows []ChangedDoe
	err := r.db.WithContext(ctx).
		Model(&models.DynamicOperatingEnvelopeModel{}).
		Select("dynamic_operating_envelopes.*, sites.aggregator_id AS aggregator_id, sites.timezone_id AS timezone_id").
		Joins("JOIN sites ON sites.id = dynamic_operating_envelopes.site_id").
		Where("dynamic_operating_envelopes.changed_time = ?", ts).
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to select changed envelopes: %w", err)
	}
	return rows, nil
}

// SelectDoesDeletedAt fetches every archived envelope whose deleted_time
// is exactly the trigger instant.
func (r *DoeRepository) SelectDoesDeletedAt(ctx context.Context, ts time.Time) ([]DeletedDoe, error) {
	var rows []DeletedDoe
	err := r.db.WithContext(ctx).
		Model(&models.ArchiveDoeModel{}).
		Select("archive_dynamic_operating_envelopes.*, sites.aggregator_id AS aggregator_id, sites.timezone_id AS timezone_id").
		Joins("JOIN sites ON sites.id = archive_dynamic_operating_envelopes.site_id").
		Where("archive_dynamic_operating_envelopes.deleted_time = ?", ts).
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to select deleted envelopes: %w", err)
	}
	return rows, nil
}

// ChangedDoe is a live envelope annotated with its owner for batching.
type ChangedDoe struct {
	models.DynamicOperatingEnvelopeModel
	AggregatorID uint64 `gorm:"column:aggregator_id"`
	TimezoneID   string `gorm:"column:timezone_id"`
}

// DeletedDoe is an archived envelope annotated with its owner.
type DeletedDoe struct {
	models.ArchiveDoeModel
	AggregatorID uint64 `gorm:"column:aggregator_id"`
	TimezoneID   string `gorm:"column:timezone_id"`
}

// Record converts to the domain view used by control mapping.
func (c ChangedDoe) Record() envelope.DoeRecord {
	return liveDoeRecord(c.DynamicOperatingEnvelopeModel)
}

func (d DeletedDoe) Record() envelope.DoeRecord {
	return archiveDoeRecord(d.ArchiveDoeModel)
}

// SelectArchivedDoes pages the envelope archive by archive period.
func (r *DoeRepository) SelectArchivedDoes(ctx context.Context, periodStart, periodEnd time.Time, deletedOnly bool) ([]models.ArchiveDoeModel, error) {
	return selectArchived[models.ArchiveDoeModel](ctx, r.db, periodStart, periodEnd, deletedOnly)
}
