// Package test opens throwaway databases for the db package tests.
package test

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pathwayhq/pathway/pkg/db"
)

// OpenSqlite opens an empty SQLite database named after the running test.
// The file lives in tb.TempDir and the handle is closed on cleanup.
func OpenSqlite(ctx context.Context, tb testing.TB) (*db.DB, error) {
	if ctx == nil {
		ctx = context.TODO()
	}
	name := strings.NewReplacer("/", "_", " ", "_").Replace(tb.Name())
	dsn := fmt.Sprintf("%s?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)",
		filepath.Join(tb.TempDir(), name+".db"))
	dbx, err := db.Open(ctx, "sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", name, err)
	}
	tb.Cleanup(func() {
		if err := dbx.Close(); err != nil {
			tb.Errorf("close %s: %v", name, err)
		}
	})
	return dbx, nil
}
