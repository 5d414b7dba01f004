package biosdb

import (
	"github.com/pkg/errors"
)

var (
	// ErrConnection indicates the database could not be reached or opened.
	ErrConnection = errors.New("database connection failed")
	// ErrStatement indicates the engine rejected or failed an issued statement.
	ErrStatement = errors.New("statement execution failed")
	// ErrNotFound indicates a lookup by package identifier or make/model
	// resolved no row.
	ErrNotFound = errors.New("no matching bios update record")
)
