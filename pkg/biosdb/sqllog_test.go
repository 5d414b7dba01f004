package biosdb

import "testing"

func TestFormatSQLForLog(t *testing.T) {
	got := formatSQLForLog("INSERT INTO device_identity (make, model) VALUES (?, ?)", "Dell", "7520")
	want := "INSERT INTO device_identity (make, model) VALUES ('Dell', '7520')"
	if got != want {
		t.Fatalf("formatted statement mismatch, want %q got %q", want, got)
	}
}

func TestFormatSQLForLogEscapesQuotes(t *testing.T) {
	got := formatSQLForLog("UPDATE bios_settings SET flash_bios_cmd = ?", "run 'flash'")
	want := "UPDATE bios_settings SET flash_bios_cmd = 'run ''flash'''"
	if got != want {
		t.Fatalf("quote escaping mismatch, want %q got %q", want, got)
	}
}

func TestFormatSQLForLogNoArgs(t *testing.T) {
	query := "SELECT id FROM bios_settings"
	if got := formatSQLForLog(query); got != query {
		t.Fatalf("expected query unchanged, got %q", got)
	}
}
