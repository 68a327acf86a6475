// Package migrations carries the SQL schemas compiled into the binary, so
// `propamm run` can bootstrap a fresh database with no files on disk.
package migrations

import "embed"

// PostgresFS holds the run-receipt schema, applied in lexical order.
//
//go:embed postgres/*.sql
var PostgresFS embed.FS

// ClickhouseFS holds the capital-weight trajectory schema.
//
//go:embed clickhouse/*.sql
var ClickhouseFS embed.FS
