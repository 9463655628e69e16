package migrations

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"sort"

	log "github.com/sirupsen/logrus"
)

//go:embed sql/*.sql
var files embed.FS

// Apply runs every embedded migration in file name order. Migrations are idempotent.
func Apply(ctx context.Context, db *sql.DB) error {
	entries, err := files.ReadDir("sql")
	if err != nil {
		return err
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		names = append(names, entry.Name())
	}
	sort.Strings(names)

	for _, name := range names {
		statement, err := files.ReadFile("sql/" + name)
		if err != nil {
			return err
		}

		if _, err = db.ExecContext(ctx, string(statement)); err != nil {
			return fmt.Errorf("migration %s: %w", name, err)
		}

		log.Debugf("[migrations] %s applied", name)
	}

	return nil
}
