package objects

import (
	"context"

	"github.com/koustreak/dbframe/internal/database"
	"github.com/koustreak/dbframe/internal/database/duckdb"
	"github.com/koustreak/dbframe/internal/database/mysql"
	"github.com/koustreak/dbframe/internal/database/postgres"
	"github.com/koustreak/dbframe/internal/dialect"
	"github.com/koustreak/dbframe/internal/errs"
	"github.com/koustreak/dbframe/internal/logger"
)

// Connect opens the driver named by cfg and wraps it in a Database.
func Connect(ctx context.Context, cfg *database.Config, log *logger.Logger) (*Database, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	conn, d, err := open(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return New(conn, d, log), nil
}

func open(ctx context.Context, cfg *database.Config) (database.DB, dialect.Dialect, error) {
	switch cfg.Driver {
	case database.DriverPostgres:
		conn, err := postgres.New(ctx, cfg)
		if err != nil {
			return nil, 0, err
		}
		return conn, dialect.Postgres, nil
	case database.DriverMySQL:
		conn, err := mysql.New(ctx, cfg)
		if err != nil {
			return nil, 0, err
		}
		return conn, dialect.MySQL, nil
	case database.DriverDuckDB:
		conn, err := duckdb.New(ctx, cfg)
		if err != nil {
			return nil, 0, err
		}
		return conn, dialect.DuckDB, nil
	}
	return nil, 0, errs.Newf(errs.ErrKindInvalidInput, "unknown database driver %q", cfg.Driver)
}
