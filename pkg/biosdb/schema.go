package biosdb

import (
	"context"

	"github.com/pkg/errors"
)

var sqliteSchema = []string{
	`CREATE TABLE IF NOT EXISTS device_identity (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	make TEXT NOT NULL,
	model TEXT NOT NULL
);`,
	`CREATE TABLE IF NOT EXISTS bios_settings (
	id INTEGER NOT NULL REFERENCES device_identity(id),
	type TEXT NOT NULL,
	target_bios_date TEXT NOT NULL,
	flash_bios_cmd TEXT NOT NULL,
	bios_package TEXT NOT NULL UNIQUE
);`,
}

var mysqlSchema = []string{
	`CREATE TABLE IF NOT EXISTS device_identity (
	id BIGINT NOT NULL AUTO_INCREMENT PRIMARY KEY,
	make VARCHAR(64) NOT NULL,
	model VARCHAR(128) NOT NULL
);`,
	`CREATE TABLE IF NOT EXISTS bios_settings (
	id BIGINT NOT NULL,
	type VARCHAR(32) NOT NULL,
	target_bios_date CHAR(8) NOT NULL,
	flash_bios_cmd VARCHAR(255) NOT NULL,
	bios_package VARCHAR(32) NOT NULL UNIQUE,
	FOREIGN KEY (id) REFERENCES device_identity(id)
);`,
}

// EnsureSchema creates the two record tables when absent. The foreign key from
// bios_settings.id to device_identity.id hardens the pairing the manager
// otherwise maintains by issuing both statements together.
func EnsureSchema(ctx context.Context, db *DB) error {
	stmts := mysqlSchema
	if db.DriverName() == "sqlite" {
		stmts = sqliteSchema
	}
	for _, stmt := range stmts {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return errors.Wrapf(ErrStatement, "ensure schema failed: %v", err)
		}
	}
	return nil
}
