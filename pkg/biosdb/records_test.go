package biosdb

import (
	"context"
	"testing"

	"github.com/pkg/errors"

	"github.com/endpointlab/biosmgr/internal/settings"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	cfg := &settings.Settings{Driver: settings.DriverSQLite, Database: ":memory:"}
	db, err := Open(context.Background(), cfg)
	if err != nil {
		t.Fatalf("open test database failed: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	if err := EnsureSchema(context.Background(), db); err != nil {
		t.Fatalf("ensure schema failed: %v", err)
	}
	return db
}

func insertTestRecord(t *testing.T, db *DB, makeName, model, biosPackage string) int64 {
	t.Helper()
	ctx := context.Background()
	id, err := InsertIdentity(ctx, db, makeName, model)
	if err != nil {
		t.Fatalf("insert identity failed: %v", err)
	}
	if err := InsertSetting(ctx, db, id, "20240101", "FlashBios.cmd", biosPackage); err != nil {
		t.Fatalf("insert setting failed: %v", err)
	}
	return id
}

func TestInsertAndGetByPackage(t *testing.T) {
	db := openTestDB(t)
	id := insertTestRecord(t, db, "Dell", "7520", "CM00123")

	rec, err := GetByPackage(context.Background(), db, "CM00123")
	if err != nil {
		t.Fatalf("get by package failed: %v", err)
	}
	if rec.ID != id {
		t.Fatalf("identity mismatch, want %d got %d", id, rec.ID)
	}
	if rec.Make != "Dell" || rec.Model != "7520" {
		t.Fatalf("make/model mismatch: %+v", rec)
	}
	if rec.TargetBiosDate != "20240101" || rec.FlashBiosCmd != "FlashBios.cmd" || rec.BiosPackage != "CM00123" {
		t.Fatalf("setting columns mismatch: %+v", rec)
	}
}

func TestInsertSettingRequiresIdentity(t *testing.T) {
	db := openTestDB(t)
	err := InsertSetting(context.Background(), db, 999, "20240101", "FlashBios.cmd", "CM00999")
	if !errors.Is(err, ErrStatement) {
		t.Fatalf("expected ErrStatement for a dangling identity id, got %v", err)
	}
	if _, err := GetByPackage(context.Background(), db, "CM00999"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("no setting row should exist without its identity, got %v", err)
	}
}

func TestGetByPackageNotFound(t *testing.T) {
	db := openTestDB(t)
	_, err := GetByPackage(context.Background(), db, "CM99999")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestUpdateByPackageCombined(t *testing.T) {
	db := openTestDB(t)
	insertTestRecord(t, db, "Dell", "7520", "CM00123")

	affected, err := UpdateByPackage(context.Background(), db, "CM00123", UpdateColumns{
		TargetBiosDate: "20250301",
		FlashBiosCmd:   "Flash64.cmd",
	})
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if affected != 1 {
		t.Fatalf("affected rows mismatch, want 1 got %d", affected)
	}

	rec, err := GetByPackage(context.Background(), db, "CM00123")
	if err != nil {
		t.Fatalf("get after update failed: %v", err)
	}
	if rec.TargetBiosDate != "20250301" {
		t.Fatalf("target date not updated: %+v", rec)
	}
	if rec.FlashBiosCmd != "Flash64.cmd" {
		t.Fatalf("flash command not updated: %+v", rec)
	}
	if rec.BiosPackage != "CM00123" {
		t.Fatalf("package id should be unchanged: %+v", rec)
	}
}

func TestUpdateByPackageNewPackageID(t *testing.T) {
	db := openTestDB(t)
	insertTestRecord(t, db, "Dell", "7520", "CM00123")

	affected, err := UpdateByPackage(context.Background(), db, "CM00123", UpdateColumns{BiosPackage: "CM00456"})
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if affected != 1 {
		t.Fatalf("affected rows mismatch, want 1 got %d", affected)
	}
	if _, err := GetByPackage(context.Background(), db, "CM00123"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("old package id should be gone, got %v", err)
	}
	if _, err := GetByPackage(context.Background(), db, "CM00456"); err != nil {
		t.Fatalf("new package id lookup failed: %v", err)
	}
}

func TestResolveIDBothModes(t *testing.T) {
	db := openTestDB(t)
	id := insertTestRecord(t, db, "Lenovo", "T14", "CM00200")

	byPackage, err := ResolveIDByPackage(context.Background(), db, "CM00200")
	if err != nil {
		t.Fatalf("resolve by package failed: %v", err)
	}
	byModel, err := ResolveIDByMakeModel(context.Background(), db, "Lenovo", "T14")
	if err != nil {
		t.Fatalf("resolve by make/model failed: %v", err)
	}
	if byPackage != id || byModel != id {
		t.Fatalf("resolution mismatch, want %d got %d and %d", id, byPackage, byModel)
	}
}

func TestDeleteRecord(t *testing.T) {
	db := openTestDB(t)
	id := insertTestRecord(t, db, "Dell", "7520", "CM00123")

	affected, err := DeleteRecord(context.Background(), db, id)
	if err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if affected != 1 {
		t.Fatalf("affected rows mismatch, want 1 got %d", affected)
	}
	if _, err := GetByPackage(context.Background(), db, "CM00123"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("setting row should be gone, got %v", err)
	}
	if _, err := ResolveIDByMakeModel(context.Background(), db, "Dell", "7520"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("identity row should be gone, got %v", err)
	}
}
