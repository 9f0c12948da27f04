// Package store persists dashboard operator accounts. Fleet telemetry,
// orders and alerts are never written here.
package store

import (
	"database/sql"
	"fmt"

	"agvdash/config"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"
)

type DB struct {
	*sql.DB
	driver string
}

// Open connects to the configured database and applies pending migrations.
func Open(cfg *config.DatabaseConfig) (*DB, error) {
	driver := cfg.Driver
	if driver == "" {
		driver = "sqlite"
	}
	sqlDriver, dsn, err := dataSource(driver, cfg)
	if err != nil {
		return nil, err
	}
	sqlDB, err := sql.Open(sqlDriver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", driver, err)
	}
	if driver == "sqlite" {
		// One writer; the dashboard only touches accounts at login.
		sqlDB.SetMaxOpenConns(1)
	}
	db := &DB{DB: sqlDB, driver: driver}
	if err := db.migrate(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("migrate %s: %w", driver, err)
	}
	return db, nil
}

func dataSource(driver string, cfg *config.DatabaseConfig) (sqlDriver, dsn string, err error) {
	switch driver {
	case "sqlite":
		return "sqlite", fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)", cfg.SQLite.Path), nil
	case "postgres":
		pg := cfg.Postgres
		return "pgx", fmt.Sprintf("host=%s port=%d dbname=%s user=%s password=%s sslmode=%s",
			pg.Host, pg.Port, pg.Database, pg.User, pg.Password, pg.SSLMode), nil
	}
	return "", "", fmt.Errorf("unsupported database driver: %s", driver)
}

func (db *DB) Driver() string { return db.driver }

// Q adapts a query written with ? placeholders to the open driver.
func (db *DB) Q(query string) string {
	if db.driver == "postgres" {
		return Rebind(query)
	}
	return query
}

// now is the driver's current-timestamp expression.
func (db *DB) now() string {
	if db.driver == "postgres" {
		return "NOW()"
	}
	return "datetime('now','localtime')"
}

// migrate applies every migration newer than the recorded schema version,
// each in its own transaction.
func (db *DB) migrate() error {
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS schema_migrations (version INTEGER PRIMARY KEY)`); err != nil {
		return err
	}
	current, err := db.SchemaVersion()
	if err != nil {
		return err
	}
	for _, m := range migrations {
		if m.version <= current {
			continue
		}
		if err := db.apply(m); err != nil {
			return fmt.Errorf("migration %d (%s): %w", m.version, m.name, err)
		}
	}
	return nil
}

func (db *DB) apply(m migration) error {
	stmt := m.sqlite
	if db.driver == "postgres" {
		stmt = m.postgres
	}
	tx, err := db.Begin()
	if err != nil {
		return err
	}
	if _, err := tx.Exec(stmt); err != nil {
		tx.Rollback()
		return err
	}
	if _, err := tx.Exec(db.Q(`INSERT INTO schema_migrations (version) VALUES (?)`), m.version); err != nil {
		tx.Rollback()
		return err
	}
	return tx.Commit()
}

// SchemaVersion is the highest migration applied, 0 for an empty database.
func (db *DB) SchemaVersion() (int, error) {
	var v sql.NullInt64
	if err := db.QueryRow(`SELECT MAX(version) FROM schema_migrations`).Scan(&v); err != nil {
		return 0, err
	}
	return int(v.Int64), nil
}
