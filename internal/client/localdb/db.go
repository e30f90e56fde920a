// Package localdb opens the client's SQLite state file and applies its
// migrations.
package localdb

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/photogallery/internal/client/migrations"
	"github.com/dmitrijs2005/photogallery/internal/client/repositories/exports"
	"github.com/dmitrijs2005/photogallery/internal/client/repositories/metadata"
	"github.com/pressly/goose/v3"

	_ "modernc.org/sqlite"
)

type Repositories struct {
	Metadata metadata.Repository
	Exports  exports.Repository

	db *sql.DB
}

func RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)

	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("set goose dialect: %w", err)
	}

	if err := goose.UpContext(ctx, db, "."); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}

// InitDatabase opens dsn with the pure-Go sqlite driver and migrates it.
func InitDatabase(ctx context.Context, dsn string) (*Repositories, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", dsn, err)
	}
	// A single connection keeps ":memory:" databases coherent.
	db.SetMaxOpenConns(1)

	if err := RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Repositories{
		Metadata: metadata.NewSQLiteRepository(db),
		Exports:  exports.NewSQLiteRepository(db),
		db:       db,
	}, nil
}

func (r *Repositories) Close() error {
	return r.db.Close()
}
