package biosdb

import (
	"context"
	"fmt"
	"strings"

	_ "github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	_ "modernc.org/sqlite"

	"github.com/endpointlab/biosmgr/internal/settings"
)

// DB wraps the sqlx handle opened for a single logical operation. Callers open
// a fresh handle per operation and close it when the operation completes.
type DB struct {
	*sqlx.DB
}

// Querier is the read surface the statement helpers need.
type Querier interface {
	sqlx.QueryerContext
}

// Execer is the full read-write surface the statement helpers need.
type Execer interface {
	sqlx.ExtContext
}

// Open connects to the database described by cfg and verifies the connection.
// Schema bootstrap is the caller's concern (see EnsureSchema).
func Open(ctx context.Context, cfg *settings.Settings) (*DB, error) {
	driver, dsn, err := buildDSN(cfg)
	if err != nil {
		return nil, err
	}
	db, err := sqlx.Open(driver, dsn)
	if err != nil {
		return nil, errors.Wrapf(ErrConnection, "open %s database failed: %v", driver, err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, errors.Wrapf(ErrConnection, "ping %s database failed: %v", driver, err)
	}
	if driver == settings.DriverSQLite {
		// modernc sqlite serializes writers; a single connection avoids
		// SQLITE_BUSY on interleaved statements and keeps the pragma below
		// in effect for every statement on this handle.
		db.SetMaxOpenConns(1)
		// sqlite leaves foreign keys off per connection unless asked.
		if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys = ON;"); err != nil {
			db.Close()
			return nil, errors.Wrapf(ErrConnection, "enable sqlite foreign keys failed: %v", err)
		}
	}
	return &DB{DB: db}, nil
}

func buildDSN(cfg *settings.Settings) (driver, dsn string, err error) {
	if cfg == nil {
		return "", "", settings.ErrSettingsMissing
	}
	switch cfg.Driver {
	case settings.DriverSQLite:
		return "sqlite", cfg.Database, nil
	case settings.DriverMySQL, "":
		net := strings.TrimSpace(cfg.NetworkLibrary)
		if net == "" {
			net = "tcp"
		}
		cred := ""
		if cfg.DatabaseUser != "" {
			cred = cfg.DatabaseUser
			if cfg.DatabasePassword != "" {
				cred += ":" + cfg.DatabasePassword
			}
			cred += "@"
		}
		return "mysql", fmt.Sprintf("%s%s(%s)/%s?parseTime=true", cred, net, cfg.DatabaseServer, cfg.Database), nil
	default:
		return "", "", errors.Errorf("unsupported driver %q", cfg.Driver)
	}
}
