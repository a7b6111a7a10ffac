// Package pgdoc stores slot documents in a single Postgres table, upserted
// by (tenant_id, slot_key). System documents use the reserved tenant id
// "@system".
package pgdoc

import (
	"context"
	"database/sql"
	"embed"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/pkg/errors"
	"github.com/pressly/goose/v3"

	"github.com/trezcool/shule/core"
	"github.com/trezcool/shule/core/store"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// systemTenant partitions system-scoped documents; "@" keeps it out of the
// uuid tenant id space.
const systemTenant = "@system"

type Store struct {
	db *sqlx.DB
}

var _ store.RemoteStore = (*Store)(nil)

func New(db *sqlx.DB) *Store {
	return &Store{db: db}
}

// Open connects to the Postgres instance configured in conf.
func Open(conf *core.Config) (*Store, error) {
	db, err := sqlx.Connect("postgres", conf.Sync.PostgresDSN)
	if err != nil {
		return nil, errors.Wrap(err, "connecting to postgres")
	}
	return New(db), nil
}

// DB exposes the underlying handle for migrations.
func (s *Store) DB() *sql.DB { return s.db.DB }

// Migrate applies the embedded goose migrations.
func Migrate(db *sql.DB, command string, args ...string) error {
	goose.SetBaseFS(migrationsFS)
	if err := goose.SetDialect("postgres"); err != nil {
		return errors.Wrap(err, "setting goose dialect")
	}
	return errors.Wrap(goose.RunContext(context.Background(), command, db, "migrations", args...), "running migrations")
}

func (s *Store) get(ctx context.Context, tenantID, slotKey string) ([]byte, error) {
	var raw []byte
	err := s.db.GetContext(ctx, &raw,
		`SELECT doc FROM slot_documents WHERE tenant_id = $1 AND slot_key = $2`, tenantID, slotKey)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNoDocument
		}
		return nil, errors.Wrapf(err, "getting document %s/%s", tenantID, slotKey)
	}
	return raw, nil
}

func (s *Store) set(ctx context.Context, tenantID, slotKey string, val []byte) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO slot_documents (tenant_id, slot_key, doc, updated_at)
		 VALUES ($1, $2, $3, now())
		 ON CONFLICT (tenant_id, slot_key)
		 DO UPDATE SET doc = EXCLUDED.doc, updated_at = now()`,
		tenantID, slotKey, val)
	return errors.Wrapf(err, "setting document %s/%s", tenantID, slotKey)
}

func (s *Store) GetSlot(ctx context.Context, tenantID, slotKey string) ([]byte, error) {
	return s.get(ctx, tenantID, slotKey)
}

func (s *Store) SetSlot(ctx context.Context, tenantID, slotKey string, val []byte) error {
	return s.set(ctx, tenantID, slotKey, val)
}

func (s *Store) GetSystem(ctx context.Context, key string) ([]byte, error) {
	return s.get(ctx, systemTenant, key)
}

func (s *Store) SetSystem(ctx context.Context, key string, val []byte) error {
	return s.set(ctx, systemTenant, key, val)
}

func (s *Store) Close() error { return s.db.Close() }
