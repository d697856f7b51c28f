// Package repository implements the GORM persistence layer. Every query
// here is bounded by an aggregator or site predicate supplied by a typed
// request scope; unscoped reads exist only on the admin surface.
package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"
)

// archiveColumns lists the database columns of a model, excluding
// relations. The archive shadow shares this exact column set plus
// archive_id, archive_time and deleted_time.
func archiveColumns(db *gorm.DB, model interface{}) (table string, cols []string, err error) {
	stmt := &gorm.Statement{DB: db}
	if err := stmt.Parse(model); err != nil {
		return "", nil, fmt.Errorf("failed to parse model schema: %w", err)
	}
	cols = make([]string, 0, len(stmt.Schema.Fields))
	for _, f := range stmt.Schema.Fields {
		if f.DBName == "" {
			continue
		}
		cols = append(cols, f.DBName)
	}
	return stmt.Schema.Table, cols, nil
}

// copyIntoArchive inserts the pre-image of every live row matching the
// predicate into the archive table with deleted_time left NULL. Callers
// invoke this inside the same transaction as the update it shadows.
func copyIntoArchive(tx *gorm.DB, live interface{}, archive interface{}, where string, args ...interface{}) error {
	liveTable, cols, err := archiveColumns(tx, live)
	if err != nil {
		return err
	}
	archiveTable, _, err := archiveColumns(tx, archive)
	if err != nil {
		return err
	}

	colList := strings.Join(cols, ", ")
	sql := fmt.Sprintf(
		"INSERT INTO %s (archive_time, deleted_time, %s) SELECT ?, NULL, %s FROM %s WHERE %s",
		archiveTable, colList, colList, liveTable, where,
	)
	sqlArgs := append([]interface{}{time.Now().UTC()}, args...)
	if err := tx.Exec(sql, sqlArgs...).Error; err != nil {
		return fmt.Errorf("failed to copy rows into %s: %w", archiveTable, err)
	}
	return nil
}

// deleteIntoArchive copies every live row matching the predicate into the
// archive table with the supplied deleted_time, then deletes them from
// the live table. Runs in the caller's transaction.
func deleteIntoArchive(tx *gorm.DB, live interface{}, archive interface{}, deletedTime time.Time, where string, args ...interface{}) error {
	liveTable, cols, err := archiveColumns(tx, live)
	if err != nil {
		return err
	}
	archiveTable, _, err := archiveColumns(tx, archive)
	if err != nil {
		return err
	}

	colList := strings.Join(cols, ", ")
	insertSQL := fmt.Sprintf(
		"INSERT INTO %s (archive_time, deleted_time, %s) SELECT ?, ?, %s FROM %s WHERE %s",
		archiveTable, colList, colList, liveTable, where,
	)
	insertArgs := append([]interface{}{time.Now().UTC(), deletedTime}, args...)
	if err := tx.Exec(insertSQL, insertArgs...).Error; err != nil {
		return fmt.Errorf("failed to copy rows into %s: %w", archiveTable, err)
	}

	deleteSQL := fmt.Sprintf("DELETE FROM %s WHERE %s", liveTable, where)
	if err := tx.Exec(deleteSQL, args...).Error; err != nil {
		return fmt.Errorf("failed to delete rows from %s: %w", liveTable, err)
	}
	return nil
}

// selectArchived pages an archive shadow by the instant rows were
// archived, optionally restricted to deletions.
func selectArchived[A any](ctx context.Context, db *gorm.DB, periodStart, periodEnd time.Time, deletedOnly bool) ([]A, error) {
	query := db.WithContext(ctx).
		Where("archive_time >= ? AND archive_time < ?", periodStart, periodEnd)
	if deletedOnly {
		query = query.Where("deleted_time IS NOT NULL")
	}
	var rows []A
	if err := query.Order("archive_id ASC").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to select archived rows: %w", err)
	}
	return rows, nil
}
