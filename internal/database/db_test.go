package database

import (
	"context"
	"io/fs"
	"strings"
	"testing"
)

func TestConnect_Validation(t *testing.T) {
	if _, err := Connect(context.Background(), ""); err == nil {
		t.Fatalf("expected error for empty dsn")
	}

	if _, err := Connect(context.Background(), "invalid-dsn"); err == nil {
		t.Fatalf("expected error for invalid dsn")
	}
}

func TestMigrationsEmbedded(t *testing.T) {
	files, err := fs.Glob(migrationsFS, "migrations/*.sql")
	if err != nil {
		t.Fatalf("glob migrations: %v", err)
	}
	if len(files) == 0 {
		t.Fatalf("expected embedded migrations")
	}

	raw, err := fs.ReadFile(migrationsFS, files[0])
	if err != nil {
		t.Fatalf("read migration: %v", err)
	}
	body := string(raw)
	for _, marker := range []string{"-- +goose Up", "-- +goose Down", "deals_match_id_key", "matches_business_id_buyer_id_key", "users_email_key"} {
		if !strings.Contains(body, marker) {
			t.Fatalf("migration missing %q", marker)
		}
	}
}
