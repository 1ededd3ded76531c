package repo

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	sqlite "github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/tbourn/go-pickset-backend/internal/domain"
)

func TestOpenSQLite_ErrorOnBadPath(t *testing.T) {
	bad := filepath.Join(t.TempDir(), "does-not-exist", "app.db")

	db, err := OpenSQLite(bad)
	if err == nil || db != nil {
		t.Fatalf("expected error opening %q, got db=%v err=%v", bad, db, err)
	}
	lower := strings.ToLower(err.Error())
	if !(os.IsNotExist(err) ||
		strings.Contains(lower, "unable to open database file") ||
		strings.Contains(lower, "no such file or directory")) {
		t.Fatalf("unexpected error opening %q: %v", bad, err)
	}
}

func TestOpenSQLite_PragmasOnEveryConnection_AndAutoMigrate(t *testing.T) {
	db, err := OpenSQLite(filepath.Join(t.TempDir(), "app.db"))
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("db.DB(): %v", err)
	}
	t.Cleanup(func() { _ = sqlDB.Close() })

	var (
		journalMode string
		fkOn        int
		busyMS      int
	)
	if err := db.Raw("PRAGMA journal_mode;").Row().Scan(&journalMode); err != nil || strings.ToLower(journalMode) != "wal" {
		t.Fatalf("journal_mode = %q err=%v", journalMode, err)
	}
	if err := db.Raw("PRAGMA foreign_keys;").Row().Scan(&fkOn); err != nil || fkOn != 1 {
		t.Fatalf("foreign_keys = %d err=%v", fkOn, err)
	}
	if err := db.Raw("PRAGMA busy_timeout;").Row().Scan(&busyMS); err != nil || busyMS != 5000 {
		t.Fatalf("busy_timeout = %d err=%v", busyMS, err)
	}
	if stats := sqlDB.Stats(); stats.MaxOpenConnections != 10 {
		t.Fatalf("expected MaxOpenConnections=10, got %d", stats.MaxOpenConnections)
	}

	if err := AutoMigrate(db); err != nil {
		t.Fatalf("AutoMigrate: %v", err)
	}
	m := db.Migrator()
	for _, tbl := range []any{&domain.Queue{}, &domain.ImageGroup{}, &domain.Image{}, &domain.Selection{}, &domain.UserProgress{}, &domain.ImportRun{}} {
		if !m.HasTable(tbl) {
			t.Fatalf("expected table for %T to exist", tbl)
		}
	}
}

func TestOpen_UnknownDriver(t *testing.T) {
	if _, err := Open("oracle", "x"); err == nil {
		t.Fatal("expected error for unsupported driver")
	}
	if _, err := Open(DriverPostgres, "  "); err == nil {
		t.Fatal("expected error for empty postgres DSN")
	}
}

func TestIsDuplicate(t *testing.T) {
	cases := []struct {
		err  error
		want bool
	}{
		{nil, false},
		{gorm.ErrDuplicatedKey, true},
		{ErrDuplicate, true},
		{errors.New("UNIQUE constraint failed: images.queue_id"), true},
		{errors.New("ERROR: duplicate key value violates unique constraint"), true},
		{errors.New("disk I/O error"), false},
	}
	for _, c := range cases {
		if got := IsDuplicate(c.err); got != c.want {
			t.Fatalf("IsDuplicate(%v) = %v; want %v", c.err, got, c.want)
		}
	}
}

func TestSQLiteDSN(t *testing.T) {
	cases := []struct{ path, prefix string }{
		{"app.db", "app.db?_pragma=busy_timeout(5000)&"},
		{"file:app.db?mode=rwc", "file:app.db?mode=rwc&_pragma=busy_timeout(5000)&"},
	}
	for _, c := range cases {
		got := sqliteDSN(c.path)
		if !strings.HasPrefix(got, c.prefix) || !strings.HasSuffix(got, "&_txlock=immediate") {
			t.Fatalf("sqliteDSN(%q) = %q", c.path, got)
		}
	}
}

func TestGormLogger_SkipsNotFound_LogsErrors(t *testing.T) {
	var buf bytes.Buffer
	dsn := "file:gormlog_" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: newGormLogger(zerolog.New(&buf))})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := AutoMigrate(db); err != nil {
		t.Fatalf("AutoMigrate: %v", err)
	}
	buf.Reset()

	if _, err := GetQueue(context.Background(), db, uuid.NewString()); !errors.Is(err, ErrNotFound) {
		t.Fatalf("want ErrNotFound, got %v", err)
	}
	if buf.Len() != 0 {
		t.Fatalf("record-not-found must not be logged, got %q", buf.String())
	}

	_ = db.Exec("SELECT * FROM no_such_table").Error
	out := buf.String()
	if !strings.Contains(out, "no_such_table") || !strings.Contains(out, `"component":"gorm"`) {
		t.Fatalf("SQL error should be logged through zerolog, got %q", out)
	}
}

// Compile-time guard to ensure signature stability.
var _ func(string) (*gorm.DB, error) = OpenSQLite
