package main

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/example/room-booking/internal/persistence/sqlite"
)

func TestRootCommandRegistersSubcommands(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	root := newRootCommand(logger)

	for _, name := range []string{"serve", "migrate"} {
		found := false
		for _, cmd := range root.Commands() {
			if cmd.Name() == name {
				found = true
				break
			}
		}
		if !found {
			t.Fatalf("expected %q subcommand to be registered", name)
		}
	}
}

func TestMigrateCommand(t *testing.T) {
	dsn := filepath.Join(t.TempDir(), "roombook.db")
	t.Setenv("ROOMBOOK_CONFIG_FILE", "")
	t.Setenv("ROOMBOOK_SQLITE_DSN", dsn)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	root := newRootCommand(logger)
	root.SetArgs([]string{"migrate"})
	root.SetOut(io.Discard)
	root.SetErr(io.Discard)

	if err := root.Execute(); err != nil {
		t.Fatalf("migrate command failed: %v", err)
	}

	// A second run sees an up to date schema and still succeeds.
	root = newRootCommand(logger)
	root.SetArgs([]string{"migrate"})
	if err := root.Execute(); err != nil {
		t.Fatalf("second migrate run failed: %v", err)
	}

	store, err := sqlite.Open(dsn)
	if err != nil {
		t.Fatalf("failed to reopen migrated database: %v", err)
	}
	defer store.Close()

	if _, err := store.ListRooms(context.Background(), false); err != nil {
		t.Fatalf("expected rooms table to exist after migrate: %v", err)
	}
}
