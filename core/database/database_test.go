package database

import (
	"context"
	"net/url"
	"reflect"
	"testing"
	"testing/fstest"

	"github.com/lib/pq"
)

func TestConfigMissingNamesEveryField(t *testing.T) {
	got := Config{Host: "db"}.Missing()
	want := []string{"DB_PORT", "DB_USER", "DB_PASSWORD", "DB_NAME"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Missing() = %v, want %v", got, want)
	}
}

func TestConfigNormalizeAndDSN(t *testing.T) {
	cfg := Config{Host: "db", Port: "5432", User: "shop", Password: "secret", Name: "shop"}
	cfg.Normalize()
	if cfg.SSLMode != "disable" || cfg.MaxConnections != 10 {
		t.Fatalf("defaults not applied: %+v", cfg)
	}
	if got := cfg.DSN(); got != "user='shop' password='secret' host='db' port='5432' dbname='shop' sslmode='disable'" {
		t.Fatalf("DSN() = %q", got)
	}
	if got := cfg.URL(); got != "postgres://shop:secret@db:5432/shop?sslmode=disable" {
		t.Fatalf("URL() = %q", got)
	}
}

func TestConnectionStringsEscapeCredentials(t *testing.T) {
	cfg := Config{Host: "db", Port: "5432", User: "shop owner", Password: `p@ss/w#rd x'\`, Name: "shop"}
	cfg.Normalize()

	u, err := url.Parse(cfg.URL())
	if err != nil {
		t.Fatalf("parse URL: %v", err)
	}
	pass, _ := u.User.Password()
	if u.User.Username() != cfg.User || pass != cfg.Password {
		t.Fatalf("user info = %q/%q", u.User.Username(), pass)
	}
	if u.Hostname() != "db" || u.Port() != "5432" || u.Path != "/shop" || u.Query().Get("sslmode") != "disable" {
		t.Fatalf("unexpected URL parts: %s", u.Redacted())
	}

	want := `user='shop owner' password='p@ss/w#rd x\'\\' host='db' port='5432' dbname='shop' sslmode='disable'`
	if got := cfg.DSN(); got != want {
		t.Fatalf("DSN() = %q, want %q", got, want)
	}
	if _, err := pq.NewConnector(cfg.DSN()); err != nil {
		t.Fatalf("lib/pq rejects DSN: %v", err)
	}
}

func TestListMigrationFilesAndSelectApplied(t *testing.T) {
	fsys := fstest.MapFS{
		"000002_b.up.sql":   {Data: []byte("SELECT 1;")},
		"000001_a.up.sql":   {Data: []byte("SELECT 1;")},
		"000001_a.down.sql": {Data: []byte("SELECT 1;")},
		"README.md":         {Data: []byte("x")},
	}
	files := listMigrationFiles(fsys, ".")
	if !reflect.DeepEqual(files, []string{"000001_a.up.sql", "000002_b.up.sql"}) {
		t.Fatalf("listMigrationFiles = %v", files)
	}
	if got := selectApplied(files, 1, 2); !reflect.DeepEqual(got, []string{"000002_b.up.sql"}) {
		t.Fatalf("selectApplied(1,2) = %v", got)
	}
	if got := selectApplied(files, 2, 2); got != nil {
		t.Fatalf("selectApplied(2,2) = %v, want nil", got)
	}
}

func TestMigratorRejectsNilSource(t *testing.T) {
	if err := (Migrator{}).Run(context.Background(), Config{}); err == nil {
		t.Fatal("expected error for nil source")
	}
}
