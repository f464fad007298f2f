package sqlite

import (
	"context"
	"crypto/rand"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
)

// migrateTo brings the live schema in line with the target schema.
//
// The migration is declarative: the target schema is created in a scratch
// in-memory database attached as schemaTarget, and the live schema is diffed
// against it. Deleted tables are dropped, new tables created, and changed
// tables rebuilt with the 12-step procedure from
// https://www.sqlite.org/lang_altertable.html#otheralter. Indexes are
// synchronised last. Inspired by
// https://david.rothlis.net/declarative-schema-migration-for-sqlite/
func (db *Database) migrateTo(ctx context.Context, schemaDefinition string) (err error) {
	start := time.Now()

	detach, err := db.attachSchemaTarget(ctx, schemaDefinition)
	if err != nil {
		return fmt.Errorf("attach schema target: %w", err)
	}
	defer detach()

	// Table rebuilds temporarily violate foreign keys.
	if _, err = db.ReadWrite.ExecContext(ctx, "PRAGMA foreign_keys = OFF"); err != nil {
		return fmt.Errorf("disable foreign keys: %w", err)
	}
	defer func() {
		if _, fkErr := db.ReadWrite.ExecContext(ctx, "PRAGMA foreign_keys = ON"); fkErr != nil {
			err = errors.Join(err, fmt.Errorf("re-enable foreign keys: %w", fkErr))
		}
	}()

	tx, err := db.ReadWrite.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if rollbackErr := tx.Rollback(); rollbackErr != nil && !errors.Is(rollbackErr, sql.ErrTxDone) {
			err = errors.Join(err, fmt.Errorf("rollback transaction: %w", rollbackErr))
		}
	}()

	if err = db.migrateTables(ctx, tx); err != nil {
		return fmt.Errorf("migrate tables: %w", err)
	}
	if err = db.migrateIndexes(ctx, tx); err != nil {
		return fmt.Errorf("migrate indexes: %w", err)
	}

	if _, err = tx.ExecContext(ctx, "PRAGMA foreign_key_check"); err != nil {
		return fmt.Errorf("foreign key check: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}

	db.logger.LogAttrs(ctx, slog.LevelInfo, "migrated database", slog.Duration("duration", time.Since(start)))
	return nil
}

// attachSchemaTarget creates the target schema in a scratch database and
// attaches it as schemaTarget. The returned function detaches it.
func (db *Database) attachSchemaTarget(ctx context.Context, schemaDefinition string) (func(), error) {
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", rand.Text())
	scratch, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("open scratch database: %w", err)
	}
	if _, err = scratch.ExecContext(ctx, schemaDefinition); err != nil {
		return nil, errors.Join(fmt.Errorf("create target schema: %w", err), scratch.Close())
	}
	if _, err = db.ReadWrite.ExecContext(ctx, "ATTACH DATABASE ? AS schemaTarget", dsn); err != nil {
		return nil, errors.Join(fmt.Errorf("attach schema target: %w", err), scratch.Close())
	}
	return func() {
		if _, detachErr := db.ReadWrite.ExecContext(ctx, "DETACH DATABASE schemaTarget"); detachErr != nil {
			db.logger.LogAttrs(ctx, slog.LevelError, "failed to detach schema target", slog.Any("error", detachErr))
		}
		if closeErr := scratch.Close(); closeErr != nil {
			db.logger.LogAttrs(ctx, slog.LevelError, "failed to close scratch database", slog.Any("error", closeErr))
		}
	}, nil
}

func (db *Database) migrateTables(ctx context.Context, tx *sql.Tx) error {
	deleted, err := queryStrings(ctx, tx, `
		SELECT live.name
		FROM sqlite_schema AS live
		         LEFT JOIN schemaTarget.sqlite_schema AS target
		                   ON live.name = target.name AND live.type = target.type
		WHERE live.type = 'table'
		  AND target.type IS NULL
		  AND live.name NOT LIKE 'sqlite_%'`)
	if err != nil {
		return fmt.Errorf("query deleted tables: %w", err)
	}
	for _, table := range deleted {
		db.logger.LogAttrs(ctx, slog.LevelInfo, "dropping table", slog.String("table", table))
		if _, err = tx.ExecContext(ctx, "DROP TABLE "+table); err != nil {
			return fmt.Errorf("drop table %s: %w", table, err)
		}
	}

	created, err := queryStrings(ctx, tx, `
		SELECT target.sql
		FROM schemaTarget.sqlite_schema AS target
		         LEFT JOIN sqlite_schema AS live
		                   ON live.name = target.name AND live.type = target.type
		WHERE target.type = 'table'
		  AND live.type IS NULL
		  AND target.name NOT LIKE 'sqlite_%'`)
	if err != nil {
		return fmt.Errorf("query new tables: %w", err)
	}
	for _, createSQL := range created {
		db.logger.LogAttrs(ctx, slog.LevelInfo, "creating table", slog.String("query", createSQL))
		if _, err = tx.ExecContext(ctx, createSQL); err != nil {
			return fmt.Errorf("create table: %w", err)
		}
	}

	return db.rebuildChangedTables(ctx, tx)
}

// rebuildChangedTables rebuilds tables whose definition differs from the
// target: create under a temporary name, copy the common columns, drop the
// old table, rename.
func (db *Database) rebuildChangedTables(ctx context.Context, tx *sql.Tx) error {
	// Table renames quote the name in sqlite_schema, strip quotes for the diff.
	rows, err := tx.QueryContext(ctx, `
		SELECT live.name, target.sql
		FROM sqlite_schema AS live
		         JOIN schemaTarget.sqlite_schema AS target
		              ON live.name = target.name AND live.type = target.type
		WHERE live.type = 'table'
		  AND live.name NOT LIKE 'sqlite_%'
		  AND REPLACE(live.sql, '"', '') <> REPLACE(target.sql, '"', '')`)
	if err != nil {
		return fmt.Errorf("query changed tables: %w", err)
	}
	defer rows.Close()

	type changed struct{ name, targetSQL string }
	var changedTables []changed
	for rows.Next() {
		var c changed
		if err = rows.Scan(&c.name, &c.targetSQL); err != nil {
			return fmt.Errorf("scan changed table: %w", err)
		}
		changedTables = append(changedTables, c)
	}
	if err = rows.Err(); err != nil {
		return fmt.Errorf("iterate changed tables: %w", err)
	}

	for _, table := range changedTables {
		db.logger.LogAttrs(ctx, slog.LevelInfo, "rebuilding table", slog.String("table", table.name))

		tempName := table.name + "_migration_temp"
		if _, err = tx.ExecContext(ctx, strings.Replace(table.targetSQL, table.name, tempName, 1)); err != nil {
			return fmt.Errorf("create temporary table %s: %w", tempName, err)
		}

		var commonColumns []string
		// Quote column names in case one is an SQLite keyword.
		if commonColumns, err = queryStrings(ctx, tx, `
			SELECT '"' || target.name || '"'
			FROM PRAGMA_TABLE_INFO(:table_name) AS live
			         JOIN PRAGMA_TABLE_INFO(:table_name, 'schemaTarget') AS target ON target.name = live.name`,
			sql.Named("table_name", table.name)); err != nil {
			return fmt.Errorf("query common columns: %w", err)
		}
		common := strings.Join(commonColumns, ", ")
		copySQL := fmt.Sprintf("INSERT INTO %s (%s) SELECT %s FROM %s;", //nolint:gosec // identifiers come from sqlite_schema.
			tempName, common, common, table.name)
		if _, err = tx.ExecContext(ctx, copySQL); err != nil {
			return fmt.Errorf("copy data: %w", err)
		}

		if _, err = tx.ExecContext(ctx, "DROP TABLE "+table.name); err != nil {
			return fmt.Errorf("drop old table %s: %w", table.name, err)
		}
		if _, err = tx.ExecContext(ctx,
			fmt.Sprintf("ALTER TABLE %s RENAME TO %s", tempName, table.name)); err != nil {
			return fmt.Errorf("rename %s to %s: %w", tempName, table.name, err)
		}
	}
	return nil
}

func (db *Database) migrateIndexes(ctx context.Context, tx *sql.Tx) error {
	deleted, err := queryStrings(ctx, tx, `
		SELECT live.name
		FROM sqlite_schema AS live
		         LEFT JOIN schemaTarget.sqlite_schema AS target
		                   ON live.name = target.name AND live.type = target.type
		WHERE live.type = 'index'
		  AND target.type IS NULL
		  AND live.name NOT LIKE 'sqlite_%'`)
	if err != nil {
		return fmt.Errorf("query deleted indexes: %w", err)
	}
	for _, name := range deleted {
		db.logger.LogAttrs(ctx, slog.LevelInfo, "dropping index", slog.String("index", name))
		if _, err = tx.ExecContext(ctx, "DROP INDEX "+name); err != nil {
			return fmt.Errorf("drop index %s: %w", name, err)
		}
	}

	// Changed indexes are dropped and recreated in one pass: any live index
	// whose definition differs from the target also shows up here.
	changed, err := queryStrings(ctx, tx, `
		SELECT live.name
		FROM sqlite_schema AS live
		         JOIN schemaTarget.sqlite_schema AS target
		              ON live.name = target.name AND live.type = target.type
		WHERE live.type = 'index'
		  AND live.name NOT LIKE 'sqlite_%'
		  AND live.sql <> target.sql`)
	if err != nil {
		return fmt.Errorf("query changed indexes: %w", err)
	}
	for _, name := range changed {
		if _, err = tx.ExecContext(ctx, "DROP INDEX "+name); err != nil {
			return fmt.Errorf("drop changed index %s: %w", name, err)
		}
	}

	created, err := queryStrings(ctx, tx, `
		SELECT target.sql
		FROM schemaTarget.sqlite_schema AS target
		         LEFT JOIN sqlite_schema AS live
		                   ON live.name = target.name AND live.type = target.type
		WHERE target.type = 'index'
		  AND live.type IS NULL
		  AND target.name NOT LIKE 'sqlite_%'`)
	if err != nil {
		return fmt.Errorf("query new indexes: %w", err)
	}
	for _, createSQL := range created {
		db.logger.LogAttrs(ctx, slog.LevelInfo, "creating index", slog.String("query", createSQL))
		if _, err = tx.ExecContext(ctx, createSQL); err != nil {
			return fmt.Errorf("create index: %w", err)
		}
	}
	return nil
}

// queryStrings returns a single string column from a query.
func queryStrings(ctx context.Context, tx *sql.Tx, query string, args ...any) (_ []string, err error) {
	rows, err := tx.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			err = errors.Join(err, fmt.Errorf("close rows: %w", closeErr))
		}
	}()

	var results []string
	for rows.Next() {
		var result string
		if err = rows.Scan(&result); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		results = append(results, result)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}
	return results, nil
}
