package repos

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/pressly/goose/v3"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"hoteldesk/internal/repos/migrations"
)

type Options struct {
	Driver          string // sqlite | postgres
	DSN             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

type dialect struct {
	driver string
	goose  goose.Dialect
	dir    string
}

var dialects = map[string]dialect{
	"sqlite":   {driver: "sqlite", goose: goose.DialectSQLite3, dir: "sqlite"},
	"postgres": {driver: "pgx", goose: goose.DialectPostgres, dir: "postgres"},
}

// OpenDB opens the shared connection pool and applies pending migrations.
func OpenDB(ctx context.Context, o Options) (*sqlx.DB, error) {
	if o.Driver == "" {
		o.Driver = "sqlite"
	}
	d, ok := dialects[o.Driver]
	if !ok {
		return nil, fmt.Errorf("unsupported db driver %q", o.Driver)
	}
	db, err := sqlx.Open(d.driver, o.DSN)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	configurePool(db, o)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping db: %w", err)
	}
	if err := migrate(ctx, db, d); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

func configurePool(db *sqlx.DB, o Options) {
	if o.Driver == "sqlite" && isMemoryDSN(o.DSN) {
		// every new connection to :memory: is a fresh, empty database
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
		db.SetConnMaxLifetime(0)
		db.SetConnMaxIdleTime(0)
		return
	}
	if o.MaxOpenConns > 0 {
		db.SetMaxOpenConns(o.MaxOpenConns)
	}
	if o.MaxIdleConns > 0 {
		db.SetMaxIdleConns(o.MaxIdleConns)
	}
	if o.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(o.ConnMaxLifetime)
	}
}

func isMemoryDSN(dsn string) bool {
	return strings.Contains(dsn, ":memory:") || strings.Contains(dsn, "mode=memory")
}

func migrate(ctx context.Context, db *sqlx.DB, d dialect) error {
	fsys, err := fs.Sub(migrations.FS, d.dir)
	if err != nil {
		return fmt.Errorf("migrations fs: %w", err)
	}
	p, err := goose.NewProvider(d.goose, db.DB, fsys)
	if err != nil {
		return fmt.Errorf("migrations init: %w", err)
	}
	if _, err := p.Up(ctx); err != nil {
		return fmt.Errorf("migrations up: %w", err)
	}
	return nil
}

// SeedDemoHotels inserts a few hotels when the table is empty.
func SeedDemoHotels(ctx context.Context, db *sqlx.DB) (bool, error) {
	var n int
	if err := db.GetContext(ctx, &n, `SELECT COUNT(*) FROM hotels`); err != nil {
		return false, err
	}
	if n > 0 {
		return false, nil
	}

	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return false, err
	}
	defer func() { _ = tx.Rollback() }()

	demo := []struct{ name, desc string }{
		{"Grand Budapest", "Alpine resort hotel with a famous pink facade."},
		{"Seaside Inn", "Small family-run inn two minutes from the beach."},
		{"City Central", "Business hotel next to the main railway station."},
	}
	for _, h := range demo {
		if _, err := tx.ExecContext(ctx, tx.Rebind(`INSERT INTO hotels(name, description) VALUES(?, ?)`), h.name, h.desc); err != nil {
			return false, err
		}
	}
	return true, tx.Commit()
}

// isUniqueViolation reports whether err is a UNIQUE constraint failure from either driver.
func isUniqueViolation(err error) bool {
	var se *sqlite.Error
	if errors.As(err, &se) {
		code := se.Code()
		return code == sqlite3.SQLITE_CONSTRAINT_UNIQUE ||
			(code&0xff == sqlite3.SQLITE_CONSTRAINT && strings.Contains(se.Error(), "UNIQUE"))
	}
	var pe *pgconn.PgError
	if errors.As(err, &pe) {
		return pe.Code == "23505"
	}
	return false
}
