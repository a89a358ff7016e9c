// Package appfs holds the files embedded in the binaries.
package appfs

import "embed"

//go:embed migrations/*.sql templates/email/* assets/common-passwords.txt
var FS embed.FS

const (
	MigrationsDir       = "migrations"
	EmailTemplatesDir   = "templates/email"
	CommonPasswordsFile = "assets/common-passwords.txt"
)
