package store

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"agvdash/config"
)

// testDB creates a temporary SQLite database for testing.
func testDB(t *testing.T) *DB {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")

	db, err := Open(&config.DatabaseConfig{
		Driver: "sqlite",
		SQLite: config.SQLiteConfig{Path: dbPath},
	})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestOpenUnsupportedDriver(t *testing.T) {
	if _, err := Open(&config.DatabaseConfig{Driver: "oracle"}); err == nil {
		t.Fatal("expected error for unsupported driver")
	}
}

func TestAdminUsers(t *testing.T) {
	db := testDB(t)

	exists, err := db.AdminUserExists()
	if err != nil {
		t.Fatalf("exists: %v", err)
	}
	if exists {
		t.Fatal("fresh db should have no users")
	}

	if err := db.CreateAdminUser("admin", "hash-1"); err != nil {
		t.Fatalf("create: %v", err)
	}
	exists, _ = db.AdminUserExists()
	if !exists {
		t.Fatal("user should exist after create")
	}

	u, err := db.GetAdminUser("admin")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if u.ID == 0 {
		t.Error("ID should be assigned")
	}
	if u.PasswordHash != "hash-1" {
		t.Errorf("PasswordHash = %q, want %q", u.PasswordHash, "hash-1")
	}
	if u.CreatedAt.IsZero() {
		t.Error("CreatedAt should be parsed")
	}
	if !u.PasswordChangedAt.IsZero() {
		t.Error("PasswordChangedAt should be zero before any change")
	}

	// Duplicate username
	if err := db.CreateAdminUser("admin", "hash-2"); err == nil {
		t.Error("duplicate username should fail")
	}
}

func TestGetAdminUserNotFound(t *testing.T) {
	db := testDB(t)
	if _, err := db.GetAdminUser("nobody"); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("err = %v, want ErrUserNotFound", err)
	}
}

func TestUpdateAdminPassword(t *testing.T) {
	db := testDB(t)
	if err := db.CreateAdminUser("ops", "old"); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := db.UpdateAdminPassword("ops", "new"); err != nil {
		t.Fatalf("update: %v", err)
	}
	u, _ := db.GetAdminUser("ops")
	if u.PasswordHash != "new" {
		t.Errorf("PasswordHash = %q, want %q", u.PasswordHash, "new")
	}
	if u.PasswordChangedAt.IsZero() {
		t.Error("PasswordChangedAt should be set after a change")
	}

	if err := db.UpdateAdminPassword("ghost", "x"); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("update missing user: err = %v, want ErrUserNotFound", err)
	}
}

func TestRebind(t *testing.T) {
	got := Rebind(`UPDATE t SET a=?, b=? WHERE c=?`)
	want := `UPDATE t SET a=$1, b=$2 WHERE c=$3`
	if got != want {
		t.Errorf("Rebind = %q, want %q", got, want)
	}
}

func TestMigrationsApplyOnce(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reopen.db")
	cfg := &config.DatabaseConfig{Driver: "sqlite", SQLite: config.SQLiteConfig{Path: path}}

	db, err := Open(cfg)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := db.CreateAdminUser("admin", "h"); err != nil {
		t.Fatalf("create: %v", err)
	}
	v, err := db.SchemaVersion()
	if err != nil {
		t.Fatalf("version: %v", err)
	}
	if v != len(migrations) {
		t.Errorf("SchemaVersion = %d, want %d", v, len(migrations))
	}
	db.Close()

	// Reopening must not re-run ALTER TABLE or lose data.
	db, err = Open(cfg)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer db.Close()
	if exists, _ := db.AdminUserExists(); !exists {
		t.Error("user lost across reopen")
	}
}

func TestQ(t *testing.T) {
	lite := &DB{driver: "sqlite"}
	pg := &DB{driver: "postgres"}
	q := `SELECT 1 FROM t WHERE a=?`
	if got := lite.Q(q); got != q {
		t.Errorf("sqlite Q = %q", got)
	}
	if got := pg.Q(q); got != `SELECT 1 FROM t WHERE a=$1` {
		t.Errorf("postgres Q = %q", got)
	}
}

func TestScanTime(t *testing.T) {
	ref := time.Date(2024, 5, 1, 12, 30, 0, 0, time.UTC)
	cases := []struct {
		in   any
		want time.Time
	}{
		{ref, ref},
		{"2024-05-01 12:30:00", ref},
		{"2024-05-01T12:30:00Z", ref},
		{[]byte("2024-05-01 12:30:00"), ref},
		{"", time.Time{}},
		{nil, time.Time{}},
		{42, time.Time{}},
	}
	for _, c := range cases {
		if got := scanTime(c.in); !got.Equal(c.want) {
			t.Errorf("scanTime(%v) = %v, want %v", c.in, got, c.want)
		}
	}
}
