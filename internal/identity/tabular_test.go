package identity

import (
	"database/sql"
	"os"
	"path/filepath"
	"testing"
)

func createStore(t *testing.T, path string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("Failed to create store directory: %v", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatalf("Failed to open store: %v", err)
	}
	defer db.Close()

	stmts := []string{
		`CREATE TABLE devices (id INTEGER PRIMARY KEY, machineId TEXT, label TEXT)`,
		`CREATE TABLE auth (id INTEGER PRIMARY KEY, session TEXT, keep TEXT)`,
		`INSERT INTO devices (machineId, label) VALUES ('m1', 'first'), ('m2', 'second'), (NULL, 'third')`,
		`INSERT INTO auth (session, keep) VALUES ('tok-a', 'k1'), (NULL, 'k2')`,
	}
	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			t.Fatalf("Failed to execute %q: %v", stmt, err)
		}
	}
}

func TestMutateStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.vscdb")
	createStore(t, path)

	m := New(testIdentityKeys, testSessionKeys)
	res, err := m.MutateStore(path, "fresh-token")
	if err != nil {
		t.Fatalf("Failed to mutate store: %v", err)
	}
	if res.Updated != 2 {
		t.Errorf("Updated = %d, want 2 (NULL machineId untouched)", res.Updated)
	}
	if res.Deleted != 1 {
		t.Errorf("Deleted = %d, want 1 (NULL session row kept)", res.Deleted)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatalf("Failed to reopen store: %v", err)
	}
	defer db.Close()

	rows, err := db.Query(`SELECT machineId FROM devices WHERE machineId IS NOT NULL`)
	if err != nil {
		t.Fatalf("Failed to query devices: %v", err)
	}
	defer rows.Close()
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			t.Fatalf("Failed to scan: %v", err)
		}
		if id != "fresh-token" {
			t.Errorf("machineId = %q, want the pass token", id)
		}
	}

	var remaining int
	if err := db.QueryRow(`SELECT COUNT(*) FROM auth`).Scan(&remaining); err != nil {
		t.Fatalf("Failed to count auth rows: %v", err)
	}
	if remaining != 1 {
		t.Errorf("auth rows = %d, want 1 (only the NULL-session row)", remaining)
	}

	// The unrelated column survives intact.
	var keep string
	if err := db.QueryRow(`SELECT keep FROM auth`).Scan(&keep); err != nil {
		t.Fatalf("Failed to read surviving row: %v", err)
	}
	if keep != "k2" {
		t.Errorf("keep = %q, want %q", keep, "k2")
	}
}

func TestWipeDatabases(t *testing.T) {
	dir := t.TempDir()
	createStore(t, filepath.Join(dir, "a.db"))
	createStore(t, filepath.Join(dir, "sub", "b.sqlite3"))

	wiped, records, failed := WipeDatabases(dir)
	if wiped != 2 {
		t.Errorf("wiped = %d, want 2", wiped)
	}
	if records != 10 {
		t.Errorf("records = %d, want 10 (5 rows per store)", records)
	}
	if failed != 0 {
		t.Errorf("failed = %d, want 0", failed)
	}

	db, err := sql.Open("sqlite", filepath.Join(dir, "a.db"))
	if err != nil {
		t.Fatalf("Failed to reopen store: %v", err)
	}
	defer db.Close()

	// Tables survive, rows do not.
	var count int
	if err := db.QueryRow(`SELECT COUNT(*) FROM devices`).Scan(&count); err != nil {
		t.Fatalf("devices table missing after wipe: %v", err)
	}
	if count != 0 {
		t.Errorf("devices rows = %d, want 0", count)
	}
}
