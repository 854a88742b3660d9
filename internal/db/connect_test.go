package db

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
)

func TestSQLitePragmas(t *testing.T) {
	cases := []struct {
		dsn     string
		wantWAL bool
	}{
		{"file:learnpath.db?cache=shared&mode=rwc", true},
		{"file:t1?mode=memory&cache=shared", false},
		{":memory:", false},
	}
	for _, tc := range cases {
		got := strings.Join(sqlitePragmas(tc.dsn), " ")
		if strings.Contains(got, "journal_mode = WAL") != tc.wantWAL {
			t.Errorf("%s: pragmas %q, want WAL=%v", tc.dsn, got, tc.wantWAL)
		}
		if !strings.Contains(got, "foreign_keys = ON") {
			t.Errorf("%s: foreign keys not enabled", tc.dsn)
		}
	}
}

func TestIsUniqueViolation_Drivers(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"plain", errors.New("boom"), false},
		{"pgx unique", &pgconn.PgError{Code: "23505"}, true},
		{"pgx wrapped", fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23505"}), true},
		{"pgx fk", &pgconn.PgError{Code: "23503"}, false},
		{"pq unique", &pq.Error{Code: "23505"}, true},
		{"pq not null", &pq.Error{Code: "23502"}, false},
	}
	for _, tc := range cases {
		if got := IsUniqueViolation(tc.err); got != tc.want {
			t.Errorf("%s: IsUniqueViolation = %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestIsUniqueViolation_SQLite(t *testing.T) {
	ctx := context.Background()
	dbh, err := Open(ctx, DriverSQLite, "file:db_unique?mode=memory&cache=shared&_pragma=foreign_keys(1)")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer dbh.Close()

	insert := `INSERT INTO users (username,email,password_hash,created_at,updated_at) VALUES ($1,$2,'x',0,0)`
	if _, err := dbh.ExecContext(ctx, insert, "ada", "ada@example.test"); err != nil {
		t.Fatalf("first insert: %v", err)
	}
	_, err = dbh.ExecContext(ctx, insert, "ada", "other@example.test")
	if !IsUniqueViolation(err) {
		t.Fatalf("duplicate username: IsUniqueViolation(%v) = false", err)
	}

	// a foreign key failure is not a uniqueness failure
	_, err = dbh.ExecContext(ctx, `INSERT INTO courses (title,description,educator_id,created_at,updated_at) VALUES ('t','',999,0,0)`)
	if err == nil {
		t.Fatal("orphan course accepted")
	}
	if IsUniqueViolation(err) {
		t.Fatalf("fk error classified as unique violation: %v", err)
	}
}
