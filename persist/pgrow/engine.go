// Package pgrow stores values as JSON payload rows in PostgreSQL, one row per
// key. The payload column is TEXT so the key order of documents survives.
package pgrow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"reflect"
	"regexp"
	"sync"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"tree-mapper/mapper"
	"tree-mapper/persist"
	"tree-mapper/tree"
)

var ErrInvalidName = errors.New("pgrow: invalid identifier")

var namePattern = regexp.MustCompile(`^[A-Za-z0-9_]+$`)

// DB is the part of a pgx connection or pool the engine uses.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

var _ DB = (*pgxpool.Pool)(nil)

type Config struct {
	Table         string
	IDColumn      string
	PayloadColumn string
	// AutoCreate issues CREATE TABLE IF NOT EXISTS before the first query.
	AutoCreate bool
}

func DefaultConfig() Config {
	return Config{
		Table:         "documents",
		IDColumn:      "id",
		PayloadColumn: "payload",
		AutoCreate:    true,
	}
}

func (c Config) validate() error {
	for label, name := range map[string]string{"table": c.Table, "id column": c.IDColumn, "payload column": c.PayloadColumn} {
		if !namePattern.MatchString(name) {
			return fmt.Errorf("%w: %s %q", ErrInvalidName, label, name)
		}
	}

	return nil
}

// Engine is a persist.Engine for KeyRef references.
type Engine struct {
	db     DB
	closer func()
	m      *mapper.Mapper
	logger *slog.Logger

	table, id, payload string
	autoCreate         bool

	tableMu    sync.Mutex
	tableReady bool
}

var _ persist.Engine = (*Engine)(nil)

// New creates an engine over db. Close does not close db.
func New(db DB, m *mapper.Mapper, cfg Config, logger *slog.Logger) (*Engine, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	return &Engine{
		db:         db,
		m:          m,
		logger:     logger,
		table:      pgx.Identifier{cfg.Table}.Sanitize(),
		id:         pgx.Identifier{cfg.IDColumn}.Sanitize(),
		payload:    pgx.Identifier{cfg.PayloadColumn}.Sanitize(),
		autoCreate: cfg.AutoCreate,
	}, nil
}

// Open connects a pool to dsn; Close closes the pool.
func Open(ctx context.Context, dsn string, m *mapper.Mapper, cfg Config, logger *slog.Logger) (*Engine, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("pgrow: connect: %w", err)
	}

	e, err := New(pool, m, cfg, logger)
	if err != nil {
		pool.Close()
		return nil, err
	}

	e.closer = pool.Close

	return e, nil
}

// ensureTable creates the table once; a failed attempt is retried on the next
// call.
func (e *Engine) ensureTable(ctx context.Context) error {
	if !e.autoCreate {
		return nil
	}

	e.tableMu.Lock()
	defer e.tableMu.Unlock()

	if e.tableReady {
		return nil
	}

	ddl := fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (%s VARCHAR(191) NOT NULL PRIMARY KEY, %s TEXT NOT NULL)",
		e.table, e.id, e.payload)
	if _, err := e.db.Exec(ctx, ddl); err != nil {
		return fmt.Errorf("pgrow: create table %s: %w", e.table, err)
	}

	e.tableReady = true
	e.logger.Debug("table ready", "table", e.table)

	return nil
}

func (e *Engine) prepare(ctx context.Context, ref persist.Ref) (string, error) {
	key, err := persist.KeyOf(ref)
	if err != nil {
		return "", err
	}

	return key, e.ensureTable(ctx)
}

func (e *Engine) Load(ctx context.Context, ref persist.Ref, t reflect.Type, defaults func() any) (any, error) {
	key, err := e.prepare(ctx, ref)
	if err != nil {
		return nil, err
	}

	var payload string

	query := fmt.Sprintf("SELECT %s FROM %s WHERE %s = $1 LIMIT 1", e.payload, e.table, e.id)

	err = e.db.QueryRow(ctx, query, key).Scan(&payload)
	if errors.Is(err, pgx.ErrNoRows) {
		v := persist.Defaults(t, defaults)
		if err := e.Save(ctx, ref, v); err != nil {
			return nil, err
		}

		e.logger.Info("defaults written", "table", e.table, "key", key)

		return v, nil
	}

	if err != nil {
		return nil, fmt.Errorf("pgrow: load %s: %w", key, err)
	}

	n, err := tree.UnmarshalJSON([]byte(payload))
	if err != nil {
		return nil, fmt.Errorf("pgrow: %s: %w", key, err)
	}

	v, err := e.m.Decode(n, t)
	if err != nil {
		return nil, fmt.Errorf("pgrow: decode %s: %w", key, err)
	}

	return v, nil
}

// Save upserts the row of ref.
func (e *Engine) Save(ctx context.Context, ref persist.Ref, v any) error {
	key, err := e.prepare(ctx, ref)
	if err != nil {
		return err
	}

	n, err := e.m.Encode(v)
	if err != nil {
		return fmt.Errorf("pgrow: encode %s: %w", key, err)
	}

	payload, err := tree.MarshalJSON(n)
	if err != nil {
		return fmt.Errorf("pgrow: encode %s: %w", key, err)
	}

	upsert := fmt.Sprintf("INSERT INTO %s (%s, %s) VALUES ($1, $2) ON CONFLICT (%s) DO UPDATE SET %s = EXCLUDED.%s",
		e.table, e.id, e.payload, e.id, e.payload, e.payload)
	if _, err := e.db.Exec(ctx, upsert, key, string(payload)); err != nil {
		return fmt.Errorf("pgrow: save %s: %w", key, err)
	}

	return nil
}

func (e *Engine) Exists(ctx context.Context, ref persist.Ref) (bool, error) {
	key, err := e.prepare(ctx, ref)
	if err != nil {
		return false, err
	}

	var one int

	query := fmt.Sprintf("SELECT 1 FROM %s WHERE %s = $1 LIMIT 1", e.table, e.id)

	err = e.db.QueryRow(ctx, query, key).Scan(&one)

	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, pgx.ErrNoRows):
		return false, nil
	default:
		return false, fmt.Errorf("pgrow: exists %s: %w", key, err)
	}
}

func (e *Engine) Delete(ctx context.Context, ref persist.Ref) error {
	key, err := e.prepare(ctx, ref)
	if err != nil {
		return err
	}

	if _, err := e.db.Exec(ctx, fmt.Sprintf("DELETE FROM %s WHERE %s = $1", e.table, e.id), key); err != nil {
		return fmt.Errorf("pgrow: delete %s: %w", key, err)
	}

	return nil
}

func (e *Engine) Close() error {
	if e.closer != nil {
		e.closer()
	}

	return nil
}
