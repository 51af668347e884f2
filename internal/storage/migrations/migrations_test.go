package migrations

import (
	"strings"
	"testing"
)

func TestEmbeddedFiles(t *testing.T) {
	pg, err := readSQLFiles(PostgresFS, "postgres")
	if err != nil {
		t.Fatalf("read postgres files: %v", err)
	}
	if len(pg) != 2 || pg[0].name != "001_subsidy_rules.sql" || pg[1].name != "002_indicator_snapshots.sql" {
		t.Errorf("unexpected postgres files: %+v", pg)
	}

	ch, err := readSQLFiles(ClickhouseFS, "clickhouse")
	if err != nil {
		t.Fatalf("read clickhouse files: %v", err)
	}
	for _, f := range ch {
		if err := validateNoSemicolonInStrings(f.content); err != nil {
			t.Errorf("%s: %v", f.name, err)
		}
		for _, stmt := range splitStatements(f.content) {
			if !strings.HasPrefix(stmt, "CREATE") {
				t.Errorf("%s: unexpected statement start %q", f.name, stmt[:min(20, len(stmt))])
			}
		}
	}
}

func TestSplitStatements(t *testing.T) {
	in := `-- header
CREATE TABLE a (x UInt8) ENGINE = Memory;

-- second
CREATE TABLE b (y String) ENGINE = Memory;
`
	stmts := splitStatements(in)
	if len(stmts) != 2 {
		t.Fatalf("expected 2 statements, got %d: %q", len(stmts), stmts)
	}
	if stmts[1] != "CREATE TABLE b (y String) ENGINE = Memory" {
		t.Errorf("unexpected statement %q", stmts[1])
	}
}

func TestValidateNoSemicolonInStrings(t *testing.T) {
	if err := validateNoSemicolonInStrings(`SELECT 'a;b'`); err == nil {
		t.Error("expected error for semicolon in literal")
	}
	if err := validateNoSemicolonInStrings(`SELECT 'it''s'; SELECT 1;`); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestDatabaseFromDSN(t *testing.T) {
	db, err := databaseFromDSN("clickhouse://default@localhost:9000/subsidy")
	if err != nil || db != "subsidy" {
		t.Errorf("got %q, %v", db, err)
	}
	if _, err := databaseFromDSN("clickhouse://localhost:9000"); err == nil {
		t.Error("expected error without database")
	}
}
