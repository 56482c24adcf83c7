package db

import (
	"testing"
)

func TestParseURL(t *testing.T) {
	tests := []struct {
		url        string
		wantDriver string
		wantSource string
		wantErr    bool
	}{
		{url: "sqlite://data/formkeeper.db", wantDriver: DriverSQLite, wantSource: "data/formkeeper.db"},
		{url: "sqlite:///var/lib/formkeeper.db", wantDriver: DriverSQLite, wantSource: "/var/lib/formkeeper.db"},
		{url: "sqlite:///tmp/fk.db?_busy_timeout=5000", wantDriver: DriverSQLite, wantSource: "/tmp/fk.db?_busy_timeout=5000"},
		{url: "sqlite::memory:", wantDriver: DriverSQLite, wantSource: ":memory:"},
		{url: "postgres://fk:pw@db:5432/formkeeper?sslmode=disable", wantDriver: DriverPostgres, wantSource: "postgres://fk:pw@db:5432/formkeeper?sslmode=disable"},
		{url: "postgresql://db/formkeeper", wantDriver: DriverPostgres, wantSource: "postgresql://db/formkeeper"},
		{url: "sqlite://", wantErr: true},
		{url: "mysql://db/formkeeper", wantErr: true},
		{url: "://bad", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			driver, source, err := ParseURL(tt.url)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseURL() error = %v, wantErr %v", err, tt.wantErr)
			}
			if driver != tt.wantDriver {
				t.Errorf("driver = %s, want %s", driver, tt.wantDriver)
			}
			if source != tt.wantSource {
				t.Errorf("dataSource = %s, want %s", source, tt.wantSource)
			}
		})
	}
}

func TestSplitStatements(t *testing.T) {
	sql := `-- leading comment
CREATE TABLE a (id TEXT);
  -- indented comment
CREATE INDEX idx ON a (id);

`
	got := splitStatements(sql)
	want := []string{"CREATE TABLE a (id TEXT)", "CREATE INDEX idx ON a (id)"}
	if len(got) != len(want) {
		t.Fatalf("splitStatements() = %q, want %q", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("statement[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestEmbeddedMigrationsMatchAcrossDialects(t *testing.T) {
	var ids [2][]string
	for i, driver := range []string{DriverSQLite, DriverPostgres} {
		src, err := migrationSource(driver)
		if err != nil {
			t.Fatalf("migrationSource(%s) error = %v", driver, err)
		}
		ms, err := parseMigrations(src)
		if err != nil {
			t.Fatalf("parseMigrations(%s) error = %v", driver, err)
		}
		if len(ms) == 0 {
			t.Fatalf("no %s migrations embedded", driver)
		}
		for _, m := range ms {
			ids[i] = append(ids[i], m.ID)
		}
	}
	if len(ids[0]) != len(ids[1]) {
		t.Fatalf("sqlite migrations %v, postgres migrations %v", ids[0], ids[1])
	}
	for i := range ids[0] {
		if ids[0][i] != ids[1][i] {
			t.Errorf("migration %d: sqlite %s, postgres %s", i, ids[0][i], ids[1][i])
		}
	}

	if _, err := migrationSource("mysql"); err == nil {
		t.Error("migrationSource(mysql) error = nil, want error")
	}
}
