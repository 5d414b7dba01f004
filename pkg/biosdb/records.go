package biosdb

import (
	"context"
	"database/sql"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

// SettingType is the discriminator tag stored on every bios_settings row.
const SettingType = "BIOSUPDATE"

// Record is the joined view of a device identity and its BIOS setting row.
type Record struct {
	ID             int64  `db:"id"`
	Make           string `db:"make"`
	Model          string `db:"model"`
	TargetBiosDate string `db:"target_bios_date"`
	FlashBiosCmd   string `db:"flash_bios_cmd"`
	BiosPackage    string `db:"bios_package"`
}

// UpdateColumns names the bios_settings columns a partial update may set.
// Empty fields are left untouched.
type UpdateColumns struct {
	TargetBiosDate string
	FlashBiosCmd   string
	BiosPackage    string
}

// IsZero reports whether no column was supplied.
func (u UpdateColumns) IsZero() bool {
	return u.TargetBiosDate == "" && u.FlashBiosCmd == "" && u.BiosPackage == ""
}

// InsertIdentity inserts a device_identity row and returns the generated ID.
func InsertIdentity(ctx context.Context, db Execer, makeName, model string) (int64, error) {
	const query = `INSERT INTO device_identity (make, model) VALUES (?, ?)`
	log.Debug().Msg(formatSQLForLog(query, makeName, model))
	res, err := db.ExecContext(ctx, query, makeName, model)
	if err != nil {
		return 0, errors.Wrapf(ErrStatement, "insert device identity failed: %v", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, errors.Wrapf(ErrStatement, "read generated identity failed: %v", err)
	}
	return id, nil
}

// InsertSetting inserts the bios_settings row keyed to a device identity.
func InsertSetting(ctx context.Context, db Execer, id int64, targetBiosDate, flashBiosCmd, biosPackage string) error {
	const query = `INSERT INTO bios_settings (id, type, target_bios_date, flash_bios_cmd, bios_package) VALUES (?, ?, ?, ?, ?)`
	log.Debug().Msg(formatSQLForLog(query, id, SettingType, targetBiosDate, flashBiosCmd, biosPackage))
	if _, err := db.ExecContext(ctx, query, id, SettingType, targetBiosDate, flashBiosCmd, biosPackage); err != nil {
		return errors.Wrapf(ErrStatement, "insert bios setting failed: %v", err)
	}
	return nil
}

// GetByPackage returns the record whose BIOSPACKAGE equals biosPackage.
func GetByPackage(ctx context.Context, db Querier, biosPackage string) (*Record, error) {
	const query = `SELECT d.id, d.make, d.model, s.target_bios_date, s.flash_bios_cmd, s.bios_package
	FROM bios_settings s JOIN device_identity d ON d.id = s.id
	WHERE s.bios_package = ?`
	var rec Record
	err := sqlx.GetContext(ctx, db, &rec, query, biosPackage)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, errors.Wrapf(ErrNotFound, "bios package %s", biosPackage)
	}
	if err != nil {
		return nil, errors.Wrapf(ErrStatement, "select bios setting failed: %v", err)
	}
	return &rec, nil
}

// UpdateByPackage updates every supplied column of the bios_settings row
// addressed by biosPackage in one combined statement and returns the number
// of affected rows.
func UpdateByPackage(ctx context.Context, db Execer, biosPackage string, cols UpdateColumns) (int64, error) {
	sets := make([]string, 0, 3)
	args := make([]interface{}, 0, 4)
	if cols.TargetBiosDate != "" {
		sets = append(sets, "target_bios_date = ?")
		args = append(args, cols.TargetBiosDate)
	}
	if cols.FlashBiosCmd != "" {
		sets = append(sets, "flash_bios_cmd = ?")
		args = append(args, cols.FlashBiosCmd)
	}
	if cols.BiosPackage != "" {
		sets = append(sets, "bios_package = ?")
		args = append(args, cols.BiosPackage)
	}
	if len(sets) == 0 {
		return 0, errors.Wrap(ErrStatement, "no columns to update")
	}
	query := "UPDATE bios_settings SET " + strings.Join(sets, ", ") + " WHERE bios_package = ?"
	args = append(args, biosPackage)
	log.Debug().Msg(formatSQLForLog(query, args...))
	res, err := db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, errors.Wrapf(ErrStatement, "update bios setting failed: %v", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, errors.Wrapf(ErrStatement, "read affected rows failed: %v", err)
	}
	return affected, nil
}

// ResolveIDByPackage returns the device identity ID linked to biosPackage.
func ResolveIDByPackage(ctx context.Context, db Querier, biosPackage string) (int64, error) {
	const query = `SELECT id FROM bios_settings WHERE bios_package = ?`
	var id int64
	err := sqlx.GetContext(ctx, db, &id, query, biosPackage)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, errors.Wrapf(ErrNotFound, "bios package %s", biosPackage)
	}
	if err != nil {
		return 0, errors.Wrapf(ErrStatement, "resolve identity by package failed: %v", err)
	}
	return id, nil
}

// ResolveIDByMakeModel returns the device identity ID for a make/model pair.
func ResolveIDByMakeModel(ctx context.Context, db Querier, makeName, model string) (int64, error) {
	const query = `SELECT id FROM device_identity WHERE make = ? AND model = ?`
	var id int64
	err := sqlx.GetContext(ctx, db, &id, query, makeName, model)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, errors.Wrapf(ErrNotFound, "%s %s", makeName, model)
	}
	if err != nil {
		return 0, errors.Wrapf(ErrStatement, "resolve identity by model failed: %v", err)
	}
	return id, nil
}

// DeleteRecord removes the bios_settings row and then the device_identity row
// for id, in that order so the FK reference never dangles. The returned count
// is the number of deleted setting rows.
func DeleteRecord(ctx context.Context, db Execer, id int64) (int64, error) {
	const deleteSetting = `DELETE FROM bios_settings WHERE id = ?`
	log.Debug().Msg(formatSQLForLog(deleteSetting, id))
	res, err := db.ExecContext(ctx, deleteSetting, id)
	if err != nil {
		return 0, errors.Wrapf(ErrStatement, "delete bios setting failed: %v", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, errors.Wrapf(ErrStatement, "read affected rows failed: %v", err)
	}

	const deleteIdentity = `DELETE FROM device_identity WHERE id = ?`
	log.Debug().Msg(formatSQLForLog(deleteIdentity, id))
	if _, err := db.ExecContext(ctx, deleteIdentity, id); err != nil {
		return affected, errors.Wrapf(ErrStatement, "delete device identity failed: %v", err)
	}
	return affected, nil
}
