/*
Package migrations creates and updates the portfolio's SQLite schema.
Every file under sql/ whose name starts with "commit" is executed in name
order on startup. Scripts must be safe to run more than once.
*/
package migrations

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"log/slog"
	"path"
	"sort"
	"strings"
	"time"

	"github.com/rfberaldo/sqlz"
)

//go:embed sql
var scriptsFS embed.FS

/*
Scripts returns the names of the migration scripts in the order they
run.
*/
func Scripts() ([]string, error) {
	var (
		err  error
		dirs []fs.DirEntry
	)

	if dirs, err = scriptsFS.ReadDir("sql"); err != nil {
		return nil, fmt.Errorf("error reading migration scripts: %w", err)
	}

	result := []string{}

	for _, d := range dirs {
		if d.IsDir() || !strings.HasPrefix(d.Name(), "commit") {
			continue
		}

		result = append(result, d.Name())
	}

	sort.Strings(result)
	return result, nil
}

func Migrate(db *sqlz.DB) error {
	var (
		err     error
		scripts []string
		b       []byte
	)

	if scripts, err = Scripts(); err != nil {
		return err
	}

	for _, name := range scripts {
		if b, err = fs.ReadFile(scriptsFS, path.Join("sql", name)); err != nil {
			return fmt.Errorf("error reading migration '%s': %w", name, err)
		}

		if err = runScript(db, b); err != nil {
			if !IsIgnorableError(err) {
				return fmt.Errorf("error running migration '%s': %w", name, err)
			}

			slog.Debug("ignoring migration error", "script", name, "error", err)
		}
	}

	slog.Info("database migrated", "scripts", len(scripts))
	return nil
}

func runScript(db *sqlz.DB, script []byte) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second*30)
	defer cancel()

	_, err := db.Exec(ctx, string(script))
	return err
}

/*
IsIgnorableError reports errors that only mean a script already ran,
such as re-adding a column.
*/
func IsIgnorableError(err error) bool {
	if err == nil {
		return false
	}

	msg := err.Error()
	return strings.Contains(msg, "duplicate column") || strings.Contains(msg, "already exists")
}
