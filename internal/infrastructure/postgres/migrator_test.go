package postgres

import "testing"

func TestRunMigrationsInvalidSource(t *testing.T) {
	err := RunMigrations("postgres://invalid:5432/db?sslmode=disable", "/nonexistent/migrations")
	if err == nil {
		t.Fatalf("expected error for missing migrations directory")
	}
}
