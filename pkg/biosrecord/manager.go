package biosrecord

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"github.com/endpointlab/biosmgr/internal/settings"
	"github.com/endpointlab/biosmgr/pkg/biosdb"
	"github.com/endpointlab/biosmgr/pkg/sccm"
)

// ErrInvalidArguments indicates the caller supplied zero or a contradictory
// combination of parameters. Nothing was written.
var ErrInvalidArguments = errors.New("invalid arguments")

const (
	// TargetDateToday is accepted anywhere a target BIOS date is expected and
	// resolves to the current date at call time.
	TargetDateToday = "today"

	dateLayout = "20060102"

	packageNamePrefix = "BIOS UPDATE - "
)

// Catalog is the package-catalog surface the manager needs.
type Catalog interface {
	CreatePackage(ctx context.Context, in sccm.PackageInput) (string, error)
}

// ConfirmFunc decides whether a mutating operation proceeds. It receives a
// human-readable summary of the pending action. Returning false aborts the
// operation as a clean no-op.
type ConfirmFunc func(summary string) bool

// Options configures a Manager.
type Options struct {
	// Settings describe the database to operate on. Required.
	Settings *settings.Settings
	// Catalog creates packages during CreatePackage. Optional for the other
	// operations.
	Catalog Catalog
	// Confirm gates every mutating operation. Nil auto-confirms.
	Confirm ConfirmFunc
	// Clock resolves the "today" date token. Nil uses time.Now.
	Clock func() time.Time
}

// Manager validates operator input, derives the statements and catalog calls
// for the four record operations, and reports outcomes. Each operation opens
// a fresh database handle and closes it before returning.
type Manager struct {
	settings *settings.Settings
	catalog  Catalog
	confirm  ConfirmFunc
	clock    func() time.Time
}

// NewManager builds a Manager. Missing settings are a fatal precondition for
// every operation, so they are rejected here.
func NewManager(opts Options) (*Manager, error) {
	if opts.Settings == nil {
		return nil, settings.ErrSettingsMissing
	}
	clock := opts.Clock
	if clock == nil {
		clock = time.Now
	}
	return &Manager{
		settings: opts.Settings,
		catalog:  opts.Catalog,
		confirm:  opts.Confirm,
		clock:    clock,
	}, nil
}

// CreateInput carries the fields for CreatePackage.
type CreateInput struct {
	Make           string
	Model          string
	TargetBiosDate string
	FlashCommand   string
	ContentPath    string
	Version        string
}

// CreatePackage creates the catalog package for a make/model pairing and the
// linked DeviceIdentity and BiosSetting rows. It returns the catalog package
// identifier, or "" when the operator declines the confirmation.
//
// The catalog create and the database inserts cannot be committed atomically
// across the two systems. A database failure after the catalog call leaves an
// orphaned catalog package; the returned error names it so the operator can
// remove it manually.
func (m *Manager) CreatePackage(ctx context.Context, in CreateInput) (string, error) {
	in.Make = strings.TrimSpace(in.Make)
	in.Model = strings.TrimSpace(in.Model)
	in.TargetBiosDate = strings.TrimSpace(in.TargetBiosDate)
	in.FlashCommand = strings.TrimSpace(in.FlashCommand)
	in.ContentPath = strings.TrimSpace(in.ContentPath)
	for field, value := range map[string]string{
		"make":             in.Make,
		"model":            in.Model,
		"target bios date": in.TargetBiosDate,
		"flash command":    in.FlashCommand,
		"content path":     in.ContentPath,
	} {
		if value == "" {
			return "", errors.Wrapf(ErrInvalidArguments, "%s must not be empty", field)
		}
	}
	targetDate, err := m.resolveTargetDate(in.TargetBiosDate)
	if err != nil {
		return "", err
	}
	if m.catalog == nil {
		return "", errors.New("package catalog client not configured")
	}

	packageName := packageNamePrefix + in.Make + " " + in.Model
	summary := fmt.Sprintf("Create catalog package %q (source %s, version %s) and a BIOS update record for %s %s targeting BIOS date %s",
		packageName, in.ContentPath, in.Version, in.Make, in.Model, targetDate)
	if !m.confirmed(summary) {
		log.Info().Str("model", in.Model).Msg("create declined by operator, nothing changed")
		return "", nil
	}

	packageID, err := m.catalog.CreatePackage(ctx, sccm.PackageInput{
		Name:         packageName,
		SourcePath:   in.ContentPath,
		Version:      in.Version,
		Manufacturer: in.Make,
	})
	if err != nil {
		return "", err
	}

	db, err := m.openDB(ctx)
	if err != nil {
		return "", errors.Wrapf(err, "catalog package %s was created and must be removed manually", packageID)
	}
	defer db.Close()

	identityID, err := biosdb.InsertIdentity(ctx, db, in.Make, in.Model)
	if err != nil {
		return "", errors.Wrapf(err, "catalog package %s was created and must be removed manually", packageID)
	}
	if err := biosdb.InsertSetting(ctx, db, identityID, targetDate, in.FlashCommand, packageID); err != nil {
		return "", errors.Wrapf(err, "catalog package %s was created and must be removed manually", packageID)
	}

	log.Info().
		Str("package_id", packageID).
		Int64("identity_id", identityID).
		Str("make", in.Make).
		Str("model", in.Model).
		Str("target_bios_date", targetDate).
		Msg("bios update record created")
	return packageID, nil
}

// GetPackage returns the record whose catalog package identifier equals
// packageID. Read-only; no confirmation, no side effects.
func (m *Manager) GetPackage(ctx context.Context, packageID string) (*biosdb.Record, error) {
	packageID = strings.TrimSpace(packageID)
	if packageID == "" {
		return nil, errors.Wrap(ErrInvalidArguments, "package id must not be empty")
	}
	db, err := m.openDB(ctx)
	if err != nil {
		return nil, err
	}
	defer db.Close()
	return biosdb.GetByPackage(ctx, db, packageID)
}

// UpdateInput carries the optional fields for UpdatePackage. Empty fields are
// left unchanged; at least one must be supplied.
type UpdateInput struct {
	NewPackageID      string
	NewFlashCommand   string
	NewTargetBiosDate string
}

// UpdatePackage updates every supplied field of the record addressed by
// packageID in one combined statement and returns the number of affected
// rows, or 0 when the operator declines the confirmation.
func (m *Manager) UpdatePackage(ctx context.Context, packageID string, in UpdateInput) (int64, error) {
	packageID = strings.TrimSpace(packageID)
	if packageID == "" {
		return 0, errors.Wrap(ErrInvalidArguments, "package id must not be empty")
	}
	cols := biosdb.UpdateColumns{
		BiosPackage:  strings.TrimSpace(in.NewPackageID),
		FlashBiosCmd: strings.TrimSpace(in.NewFlashCommand),
	}
	if date := strings.TrimSpace(in.NewTargetBiosDate); date != "" {
		resolved, err := m.resolveTargetDate(date)
		if err != nil {
			return 0, err
		}
		cols.TargetBiosDate = resolved
	}
	if cols.IsZero() {
		return 0, errors.Wrap(ErrInvalidArguments, "at least one field to update must be supplied")
	}

	summary := fmt.Sprintf("Update BIOS update record %s: %s", packageID, describeUpdate(cols))
	if !m.confirmed(summary) {
		log.Info().Str("package_id", packageID).Msg("update declined by operator, nothing changed")
		return 0, nil
	}

	db, err := m.openDB(ctx)
	if err != nil {
		return 0, err
	}
	defer db.Close()

	affected, err := biosdb.UpdateByPackage(ctx, db, packageID, cols)
	if err != nil {
		return 0, err
	}
	if affected == 0 {
		return 0, errors.Wrapf(biosdb.ErrNotFound, "bios package %s", packageID)
	}
	log.Info().Str("package_id", packageID).Int64("rows", affected).Msg("bios update record updated")
	return affected, nil
}

// RemoveInput addresses the record to remove, either by catalog package
// identifier or by make and model together.
type RemoveInput struct {
	PackageID string
	Make      string
	Model     string
}

// RemovePackage deletes the BiosSetting row and its DeviceIdentity row in one
// logical operation and returns the number of removed records, or 0 when the
// operator declines the confirmation. The catalog package itself is not
// deleted; that removal is performed separately by the operator.
func (m *Manager) RemovePackage(ctx context.Context, in RemoveInput) (int64, error) {
	in.PackageID = strings.TrimSpace(in.PackageID)
	in.Make = strings.TrimSpace(in.Make)
	in.Model = strings.TrimSpace(in.Model)

	byPackage := in.PackageID != ""
	byModel := in.Make != "" || in.Model != ""
	switch {
	case byPackage && byModel:
		return 0, errors.Wrap(ErrInvalidArguments, "address by package id or by make/model, not both")
	case byModel && (in.Make == "" || in.Model == ""):
		return 0, errors.Wrap(ErrInvalidArguments, "make and model must be supplied together")
	case !byPackage && !byModel:
		return 0, errors.Wrap(ErrInvalidArguments, "a package id or a make/model pair is required")
	}

	db, err := m.openDB(ctx)
	if err != nil {
		return 0, err
	}
	defer db.Close()

	var identityID int64
	var target string
	if byPackage {
		identityID, err = biosdb.ResolveIDByPackage(ctx, db, in.PackageID)
		target = in.PackageID
	} else {
		identityID, err = biosdb.ResolveIDByMakeModel(ctx, db, in.Make, in.Model)
		target = in.Make + " " + in.Model
	}
	if err != nil {
		return 0, err
	}

	summary := fmt.Sprintf("Remove the BIOS update record for %s (the catalog package is kept and must be removed separately)", target)
	if !m.confirmed(summary) {
		log.Info().Str("target", target).Msg("remove declined by operator, nothing changed")
		return 0, nil
	}

	affected, err := biosdb.DeleteRecord(ctx, db, identityID)
	if err != nil {
		return 0, err
	}
	log.Info().Str("target", target).Int64("rows", affected).Msg("bios update record removed")
	return affected, nil
}

func (m *Manager) openDB(ctx context.Context) (*biosdb.DB, error) {
	db, err := biosdb.Open(ctx, m.settings)
	if err != nil {
		return nil, err
	}
	if err := biosdb.EnsureSchema(ctx, db); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

func (m *Manager) confirmed(summary string) bool {
	if m.confirm == nil {
		return true
	}
	return m.confirm(summary)
}

// resolveTargetDate substitutes the "today" token and rejects values that are
// not yyyyMMdd dates. The provisioning step compares the stored value against
// the installed BIOS date, so a malformed value would silently disable
// flashing.
func (m *Manager) resolveTargetDate(value string) (string, error) {
	if strings.EqualFold(value, TargetDateToday) {
		return m.clock().Format(dateLayout), nil
	}
	if _, err := time.Parse(dateLayout, value); err != nil {
		return "", errors.Wrapf(ErrInvalidArguments, "target bios date %q is not a yyyyMMdd date", value)
	}
	return value, nil
}

func describeUpdate(cols biosdb.UpdateColumns) string {
	parts := make([]string, 0, 3)
	if cols.TargetBiosDate != "" {
		parts = append(parts, "target bios date -> "+cols.TargetBiosDate)
	}
	if cols.FlashBiosCmd != "" {
		parts = append(parts, "flash command -> "+cols.FlashBiosCmd)
	}
	if cols.BiosPackage != "" {
		parts = append(parts, "package id -> "+cols.BiosPackage)
	}
	return strings.Join(parts, ", ")
}
