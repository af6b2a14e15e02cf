package migrations

import (
	"io/fs"

	rbac "github.com/goliatone/go-rbac"
)

func init() {
	coreFS, err := fs.Sub(rbac.GetMigrationsFS(), "data/sql/migrations")
	if err != nil {
		return
	}
	Register(coreFS)
}
