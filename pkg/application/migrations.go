package application

import (
	"context"
	"database/sql"
	"embed"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

// MigrationManager collects the schema filesystems modules embed and applies
// them with goose in registration order.
type MigrationManager interface {
	RegisterSchema(fs *embed.FS, dir string)
	Run(ctx context.Context) error
}

type schemaSource struct {
	fs  *embed.FS
	dir string
}

type migrationManager struct {
	pool    *pgxpool.Pool
	schemas []schemaSource
}

func NewMigrationManager(pool *pgxpool.Pool) MigrationManager {
	return &migrationManager{pool: pool}
}

func (m *migrationManager) RegisterSchema(fs *embed.FS, dir string) {
	m.schemas = append(m.schemas, schemaSource{fs: fs, dir: dir})
}

func (m *migrationManager) Run(ctx context.Context) error {
	if len(m.schemas) == 0 {
		return nil
	}

	db := stdlib.OpenDBFromPool(m.pool)
	defer func() { _ = db.Close() }()

	if err := goose.SetDialect("postgres"); err != nil {
		return err
	}

	for _, src := range m.schemas {
		if err := m.apply(ctx, db, src); err != nil {
			return fmt.Errorf("failed to apply schema %s: %w", src.dir, err)
		}
	}
	return nil
}

func (m *migrationManager) apply(ctx context.Context, db *sql.DB, src schemaSource) error {
	goose.SetBaseFS(src.fs)
	defer goose.SetBaseFS(nil)
	return goose.UpContext(ctx, db, src.dir)
}
