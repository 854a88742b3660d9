package db

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // driver: pgx
	_ "github.com/lib/pq"              // driver: postgres (lib/pq)
	_ "modernc.org/sqlite"             // driver: sqlite
)

type Driver string

const (
	DriverSQLite   Driver = "sqlite"
	DriverPostgres Driver = "postgres" // pgx stdlib
	DriverPQ       Driver = "pq"       // lib/pq
)

// Open opens a DB, tunes the pool and ensures schema exists.
func Open(ctx context.Context, driver Driver, dsn string) (*sql.DB, error) {
	var drvName string
	switch driver {
	case DriverSQLite:
		drvName = "sqlite" // modernc driver
		if dsn == "" {
			dsn = "file:learnpath.db?cache=shared&mode=rwc&_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)"
		}
	case DriverPostgres:
		drvName = "pgx" // pgx stdlib driver
		if dsn == "" {
			dsn = "postgres://localhost:5432/learnpath?sslmode=disable"
		}
	case DriverPQ:
		drvName = "postgres" // lib/pq registers "postgres"
		if dsn == "" {
			dsn = "postgres://localhost:5432/learnpath?sslmode=disable"
		}
	default:
		return nil, fmt.Errorf("unsupported driver: %s", driver)
	}

	dbh, err := sql.Open(drvName, dsn)
	if err != nil {
		return nil, fmt.Errorf("db: open: %w", err)
	}
	tunePool(driver, dbh)

	if err := dbh.PingContext(ctx); err != nil {
		_ = dbh.Close()
		return nil, fmt.Errorf("db: ping: %w", err)
	}
	if driver == DriverSQLite {
		if err := applySQLitePragmas(ctx, dbh, dsn); err != nil {
			_ = dbh.Close()
			return nil, err
		}
	}
	if err := Migrate(ctx, dbh, driver); err != nil {
		_ = dbh.Close()
		return nil, err
	}
	return dbh, nil
}

// Migrate applies the idempotent schema for driver. If the driver rejects a
// multi-statement script it falls back to running statements one by one.
func Migrate(ctx context.Context, dbh *sql.DB, driver Driver) error {
	var schema string
	switch driver {
	case DriverSQLite:
		schema = schemaSQLite
	case DriverPostgres, DriverPQ:
		schema = schemaPostgres
	default:
		return fmt.Errorf("unsupported driver %q (expected sqlite/postgres/pq)", driver)
	}

	if _, err := dbh.ExecContext(ctx, schema); err != nil {
		for _, stmt := range splitSQL(schema) {
			if _, e := dbh.ExecContext(ctx, stmt); e != nil {
				return fmt.Errorf("db: migration failed at: %s\nerror: %w", firstLine(stmt), e)
			}
		}
	}
	return nil
}

func tunePool(driver Driver, dbh *sql.DB) {
	switch driver {
	case DriverSQLite:
		// single writer; one connection also keeps in-memory databases alive
		dbh.SetMaxOpenConns(1)
		dbh.SetMaxIdleConns(1)
		dbh.SetConnMaxLifetime(0)
		dbh.SetConnMaxIdleTime(0)
	default:
		dbh.SetMaxOpenConns(20)
		dbh.SetMaxIdleConns(10)
		dbh.SetConnMaxLifetime(45 * time.Minute)
		dbh.SetConnMaxIdleTime(15 * time.Minute)
	}
}

// sqlitePragmas lists the connection pragmas for dsn. In-memory databases
// have no journal file, so WAL is only requested for file databases.
func sqlitePragmas(dsn string) []string {
	pragmas := []string{"PRAGMA foreign_keys = ON;"}
	if !strings.Contains(dsn, "mode=memory") && !strings.Contains(dsn, ":memory:") {
		pragmas = append(pragmas, "PRAGMA journal_mode = WAL;")
	}
	return append(pragmas,
		"PRAGMA synchronous = NORMAL;",
		"PRAGMA busy_timeout = 5000;",
	)
}

func applySQLitePragmas(ctx context.Context, dbh *sql.DB, dsn string) error {
	for _, p := range sqlitePragmas(dsn) {
		if _, err := dbh.ExecContext(ctx, p); err != nil {
			return fmt.Errorf("db: sqlite pragma %q: %w", p, err)
		}
	}
	return nil
}

// splitSQL naively splits on ';' boundaries; enough for plain DDL.
func splitSQL(s string) []string {
	parts := strings.Split(s, ";")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p+";")
		}
	}
	return out
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
