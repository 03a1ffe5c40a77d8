package wanttowatch

import (
	"embed"
	"io/fs"
)

//go:embed db/migrations/*.sql
var migrationFiles embed.FS

// MigrationsFS returns the embedded SQL migrations rooted at db/migrations.
func MigrationsFS() (fs.FS, error) {
	return fs.Sub(migrationFiles, "db/migrations")
}
