package repository

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"

	"github.com/joseph-ayodele/eventforms/constants"
	"github.com/joseph-ayodele/eventforms/internal/common"
)

type Dialect string

const (
	Postgres Dialect = "postgres"
	SQLite   Dialect = "sqlite"
)

type Config struct {
	DSN              string
	MaxConns         int32
	MinConns         int32
	MaxConnLifetime  time.Duration
	MaxConnIdleTime  time.Duration
	DialTimeout      time.Duration
	StatementTimeout time.Duration
}

// DB is the ledger connection. Postgres goes through a pgx pool, everything else is a
// SQLite file (or ":memory:").
type DB struct {
	*sql.DB
	dialect Dialect
	pool    *pgxpool.Pool
}

func (db *DB) Dialect() Dialect { return db.dialect }

// DialectFor picks the driver from the DSN scheme.
func DialectFor(dsn string) Dialect {
	lower := strings.ToLower(dsn)
	if strings.HasPrefix(lower, "postgres://") || strings.HasPrefix(lower, "postgresql://") {
		return Postgres
	}
	return SQLite
}

// Open connects to the ledger and creates its tables.
func Open(ctx context.Context, cfg Config, logger *slog.Logger) (*DB, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if strings.TrimSpace(cfg.DSN) == "" {
		return nil, common.NewAppError("CONFIG_ERROR", "database DSN is required", common.ErrInvalidInput)
	}

	var (
		db  *DB
		err error
	)
	switch DialectFor(cfg.DSN) {
	case Postgres:
		logger.Info("connecting to database", "dialect", Postgres)
		db, err = openPostgres(ctx, cfg)
	default:
		logger.Info("opening database", "dialect", SQLite, "path", cfg.DSN)
		db, err = openSQLite(cfg)
	}
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		return nil, fmt.Errorf("%w: %w", common.ErrDatabase, err)
	}

	if err := HealthCheck(ctx, db, cfg.DialTimeout, logger); err != nil {
		Close(db, logger)
		return nil, fmt.Errorf("%w: ping: %w", common.ErrDatabase, err)
	}
	if err := migrate(ctx, db); err != nil {
		Close(db, logger)
		return nil, fmt.Errorf("%w: migrate: %w", common.ErrDatabase, err)
	}
	logger.Info("successfully connected to database")
	return db, nil
}

func openPostgres(ctx context.Context, cfg Config) (*DB, error) {
	pc, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, err
	}
	if cfg.MaxConns > 0 {
		pc.MaxConns = cfg.MaxConns
	}
	pc.MinConns = cfg.MinConns
	if cfg.MaxConnLifetime > 0 {
		pc.MaxConnLifetime = cfg.MaxConnLifetime
	}
	if cfg.MaxConnIdleTime > 0 {
		pc.MaxConnIdleTime = cfg.MaxConnIdleTime
	}
	pc.ConnConfig.RuntimeParams["application_name"] = "eventforms"
	if cfg.StatementTimeout > 0 {
		pc.ConnConfig.RuntimeParams["statement_timeout"] = strconv.FormatInt(cfg.StatementTimeout.Milliseconds(), 10)
	}

	dialCtx, cancel := common.WithTimeout(ctx, cfg.DialTimeout)
	defer cancel()
	pool, err := pgxpool.NewWithConfig(dialCtx, pc)
	if err != nil {
		return nil, err
	}
	return &DB{DB: stdlib.OpenDBFromPool(pool), dialect: Postgres, pool: pool}, nil
}

func openSQLite(cfg Config) (*DB, error) {
	sqlDB, err := sql.Open("sqlite", cfg.DSN)
	if err != nil {
		return nil, err
	}
	// one connection: ":memory:" databases are per connection and SQLite serializes writes
	sqlDB.SetMaxOpenConns(1)
	return &DB{DB: sqlDB, dialect: SQLite}, nil
}

// Close closes the database connections gracefully
func Close(db *DB, logger *slog.Logger) {
	if db == nil {
		return
	}
	if logger == nil {
		logger = slog.Default()
	}
	logger.Info("closing database connections")
	if err := db.DB.Close(); err != nil {
		logger.Error("failed to close database", "error", err)
	}
	if db.pool != nil {
		db.pool.Close()
	}
	logger.Info("database connections closed")
}

// HealthCheck pings using database/sql to catch DSN issues early.
func HealthCheck(ctx context.Context, db *DB, timeout time.Duration, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}
	ctx, cancel := common.WithTimeout(ctx, timeout)
	defer cancel()
	logger.Debug("pinging database")
	if err := db.PingContext(ctx); err != nil {
		return err
	}
	logger.Debug("database ping successful")
	return nil
}

// rebind rewrites "?" placeholders to "$n" for Postgres.
func (db *DB) rebind(query string) string {
	if db.dialect != Postgres {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func layoutList() string {
	quoted := make([]string, 0, 8)
	for _, l := range constants.Layouts() {
		quoted = append(quoted, "'"+string(l)+"'")
	}
	return strings.Join(quoted, ", ")
}

func migrate(ctx context.Context, db *DB) error {
	idColumn := "INTEGER PRIMARY KEY AUTOINCREMENT"
	tsType := "TIMESTAMP"
	if db.dialect == Postgres {
		idColumn = "BIGSERIAL PRIMARY KEY"
		tsType = "TIMESTAMPTZ"
	}
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id          TEXT PRIMARY KEY,
			input_dir   TEXT NOT NULL,
			started_at  ` + tsType + ` NOT NULL,
			finished_at ` + tsType + `,
			processed   INTEGER NOT NULL DEFAULT 0,
			failed      INTEGER NOT NULL DEFAULT 0
		)`,
		`CREATE TABLE IF NOT EXISTS documents (
			id           ` + idColumn + `,
			run_id       TEXT NOT NULL REFERENCES runs(id),
			filename     TEXT NOT NULL,
			source_path  TEXT NOT NULL,
			content_hash TEXT NOT NULL DEFAULT '',
			layout       TEXT NOT NULL CHECK (layout IN (` + layoutList() + `)),
			status       TEXT NOT NULL,
			fields       TEXT,
			created_at   ` + tsType + ` NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS documents_run_id_idx ON documents (run_id)`,
		`CREATE INDEX IF NOT EXISTS documents_content_hash_idx ON documents (content_hash)`,
	}
	for _, s := range stmts {
		if _, err := db.ExecContext(ctx, s); err != nil {
			return err
		}
	}
	return nil
}
