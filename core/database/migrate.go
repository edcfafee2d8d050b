package database

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"

	"github.com/m3rciful/shopbot/core/logger"
)

const readyTimeout = 30 * time.Second

// Migrator applies the migrations found in a filesystem to the configured database.
type Migrator struct {
	Source fs.FS
	// Dir is the path inside Source holding the *.sql files; "." when empty.
	Dir string
}

// Run waits for the server, then applies all pending up migrations.
// An up-to-date schema is not an error. Cancelling ctx stops after the
// migration in flight.
func (m Migrator) Run(ctx context.Context, cfg Config) error {
	if m.Source == nil {
		return errors.New("migrate: nil source filesystem")
	}
	dir := m.Dir
	if dir == "" {
		dir = "."
	}

	if err := WaitForPostgres(ctx, cfg.DSN(), readyTimeout); err != nil {
		m.fail(ctx, "wait", err)
		return fmt.Errorf("database not ready: %w", err)
	}

	files := listMigrationFiles(m.Source, dir)
	preview, truncated := logger.SummarizeStrings(files, 6)
	logger.LogEvent(ctx, logger.MIG, slog.LevelDebug, "resolve",
		slog.Int("files_total", len(files)),
		slog.String("files_preview", preview),
		slog.Bool("files_truncated", truncated),
	)

	src, err := iofs.New(m.Source, dir)
	if err != nil {
		return fmt.Errorf("open migration source: %w", err)
	}
	mg, err := migrate.NewWithSourceInstance("iofs", src, cfg.URL())
	if err != nil {
		m.fail(ctx, "init", err)
		return fmt.Errorf("initialize migrations: %w", err)
	}
	defer mg.Close()

	stop := context.AfterFunc(ctx, func() {
		select {
		case mg.GracefulStop <- true:
		default:
		}
	})
	defer stop()

	from, _, _ := mg.Version()
	start := time.Now()
	if err := mg.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		m.fail(ctx, "apply", err)
		return fmt.Errorf("apply migrations: %w", err)
	}
	to, _, _ := mg.Version()

	applied := selectApplied(files, uint64(from), uint64(to))
	appliedPreview, _ := logger.SummarizeStrings(applied, 6)
	logger.LogEvent(ctx, logger.MIG, slog.LevelInfo, "summary",
		slog.Uint64("from_ver", uint64(from)),
		slog.Uint64("to_ver", uint64(to)),
		slog.Int("files", len(applied)),
		slog.String("files_preview", appliedPreview),
		slog.Duration("duration", logger.Took(start)),
	)
	return nil
}

func (Migrator) fail(ctx context.Context, step string, err error) {
	logger.LogEvent(ctx, logger.MIG, slog.LevelError, step,
		slog.String("status", "fail"),
		slog.String("err", err.Error()),
	)
}

// listMigrationFiles returns the *.up.sql names in dir, sorted.
func listMigrationFiles(fsys fs.FS, dir string) []string {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return nil
	}
	var names []string
	for _, e := range entries {
		if name := e.Name(); !e.IsDir() && strings.HasSuffix(name, ".up.sql") {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

func parseVersion(name string) uint64 {
	head, _, _ := strings.Cut(name, "_")
	v, _ := strconv.ParseUint(head, 10, 64)
	return v
}

// selectApplied picks the files with a version in (from, to].
func selectApplied(files []string, from, to uint64) []string {
	var out []string
	for _, f := range files {
		if v := parseVersion(f); v > from && v <= to {
			out = append(out, f)
		}
	}
	return out
}
