package storage

import (
	"strings"
	"testing"
)

func TestSQLiteAdapt_Placeholders(t *testing.T) {
	d := newSQLiteDialect()
	got := d.Adapt("SELECT id FROM records WHERE slip_no = %s AND date = %s")
	want := "SELECT id FROM records WHERE slip_no = ? AND date = ?"
	if got != want {
		t.Fatalf("adapt placeholders: got %q want %q", got, want)
	}
}

func TestSQLiteAdapt_StripsReturning(t *testing.T) {
	d := newSQLiteDialect()
	got := d.Adapt("INSERT INTO schedules (date, content, status) VALUES (%s, %s, %s) RETURNING id")
	if strings.Contains(strings.ToUpper(got), "RETURNING") {
		t.Fatalf("RETURNING clause survived: %q", got)
	}
	if strings.Count(got, "?") != 3 {
		t.Fatalf("placeholder count changed: %q", got)
	}
	if !strings.HasPrefix(got, "INSERT INTO schedules") {
		t.Fatalf("statement mangled: %q", got)
	}
}

func TestSQLiteAdapt_UpsertBecomesReplace(t *testing.T) {
	d := newSQLiteDialect()
	canonical := `INSERT INTO records (slip_no, date, amount) VALUES (%s, %s, %s)
	ON CONFLICT (slip_no) DO UPDATE SET
		date = EXCLUDED.date,
		amount = EXCLUDED.amount`
	got := d.Adapt(canonical)
	if !strings.HasPrefix(got, "INSERT OR REPLACE INTO records") {
		t.Fatalf("expected INSERT OR REPLACE, got %q", got)
	}
	if strings.Contains(strings.ToUpper(got), "ON CONFLICT") {
		t.Fatalf("conflict clause survived: %q", got)
	}
	if strings.Count(got, "?") != 3 {
		t.Fatalf("placeholder count changed: %q", got)
	}
}

func TestSQLiteAdapt_PassthroughWhenNothingMatches(t *testing.T) {
	d := newSQLiteDialect()
	q := "SELECT COUNT(*) FROM records"
	if got := d.Adapt(q); got != q {
		t.Fatalf("plain statement changed: %q", got)
	}
}

func TestPostgresAdapt_NumbersPlaceholdersInOrder(t *testing.T) {
	d := newPostgresDialect()
	got := d.Adapt("UPDATE records SET status = %s, note1 = %s WHERE id = %s")
	want := "UPDATE records SET status = $1, note1 = $2 WHERE id = $3"
	if got != want {
		t.Fatalf("got %q want %q", got, want)
	}
}

func TestPostgresAdapt_KeepsCanonicalClauses(t *testing.T) {
	d := newPostgresDialect()
	canonical := "INSERT INTO records (slip_no) VALUES (%s) ON CONFLICT (slip_no) DO UPDATE SET date = EXCLUDED.date RETURNING id"
	got := d.Adapt(canonical)
	if !strings.Contains(got, "ON CONFLICT (slip_no) DO UPDATE SET") {
		t.Fatalf("conflict clause lost: %q", got)
	}
	if !strings.Contains(got, "RETURNING id") {
		t.Fatalf("returning clause lost: %q", got)
	}
	if !strings.Contains(got, "$1") || strings.Contains(got, "%s") {
		t.Fatalf("placeholder not numbered: %q", got)
	}
}

func TestAdapt_PlaceholderCountsMatch(t *testing.T) {
	statements := []string{
		insertRecordSQL,
		insertLiquidSQL,
		"DELETE FROM liquid_waste WHERE year_month = %s",
		"UPDATE records SET status = %s WHERE id = %s",
	}
	for _, stmt := range statements {
		canonical := strings.Count(stmt, "%s")
		if n := strings.Count(newSQLiteDialect().Adapt(stmt), "?"); n != canonical {
			t.Fatalf("sqlite placeholder count %d != %d for %q", n, canonical, stmt)
		}
		pg := newPostgresDialect().Adapt(stmt)
		if n := strings.Count(pg, "$"); n != canonical {
			t.Fatalf("postgres placeholder count %d != %d for %q", n, canonical, stmt)
		}
	}
}
