// Package all registers every storage backend with the factory.
//
// The binary blank-imports this package so the configured kind selects the
// backend at runtime without the CLI importing any backend directly.
package all

import (
	_ "nullinject/internal/storage/mssql"
	_ "nullinject/internal/storage/postgres"
	_ "nullinject/internal/storage/sqlite"
)
