package database

import (
	"path/filepath"
	"testing"
)

func TestConfigDefaultsAndDSN(t *testing.T) {
	cfg := Config{
		Host:     "localhost",
		Port:     "5432",
		User:     "jusbr",
		Password: "segredo",
		DBName:   "jusbr",
		SSLMode:  "disable",
	}
	cfg.applyDefaults()

	if cfg.MaxOpenConns != 5 || cfg.MaxIdleConns != 2 {
		t.Errorf("pool padrão inesperado: %+v", cfg)
	}
	if cfg.ConnMaxLifetime != 5 || cfg.ConnMaxIdleTime != 2 {
		t.Errorf("tempos padrão inesperados: %+v", cfg)
	}

	want := "host=localhost port=5432 user=jusbr password=segredo dbname=jusbr sslmode=disable"
	if got := cfg.DSN(); got != want {
		t.Errorf("DSN() = %q, esperado %q", got, want)
	}
}

func TestOpenSQLiteCreatesDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "jusbr.db")

	db, err := OpenSQLite(path)
	if err != nil {
		t.Fatalf("OpenSQLite() erro: %v", err)
	}
	defer Close(db)

	var mode string
	if err := db.QueryRow(`PRAGMA journal_mode;`).Scan(&mode); err != nil {
		t.Fatalf("ler journal_mode: %v", err)
	}
	if mode != "wal" {
		t.Errorf("journal_mode = %q, esperado wal", mode)
	}

	if stats := GetPoolStats(db); stats.MaxOpenConnections != 1 {
		t.Errorf("MaxOpenConnections = %d, esperado 1", stats.MaxOpenConnections)
	}
}
