package migration

import (
	"database/sql"
	"fmt"
	"sort"

	"github.com/cleberrangel/jusbr-consulta/internal/logger"
)

// Dialect identifica o banco alvo das migrações
type Dialect string

const (
	Postgres Dialect = "postgres"
	SQLite   Dialect = "sqlite"
)

// Migration representa uma migração de banco de dados
type Migration struct {
	Version int
	Name    string
	Up      map[Dialect]string
	Down    map[Dialect]string
}

// Migrator gerencia as migrações do banco de dados
type Migrator struct {
	db         *sql.DB
	dialect    Dialect
	migrations []Migration
}

// NewMigrator cria um novo migrator para o dialeto informado
func NewMigrator(db *sql.DB, dialect Dialect) *Migrator {
	return &Migrator{
		db:         db,
		dialect:    dialect,
		migrations: getAllMigrations(),
	}
}

// Run executa todas as migrações pendentes
func (m *Migrator) Run() error {
	log := logger.Global()

	if err := m.createMigrationsTable(); err != nil {
		return fmt.Errorf("erro ao criar tabela de migrações: %w", err)
	}

	currentVersion, err := m.CurrentVersion()
	if err != nil {
		return fmt.Errorf("erro ao obter versão atual: %w", err)
	}

	log.Info().
		Int("current_version", currentVersion).
		Str("dialect", string(m.dialect)).
		Msg("Versão atual do banco de dados")

	sort.Slice(m.migrations, func(i, j int) bool {
		return m.migrations[i].Version < m.migrations[j].Version
	})

	for _, migration := range m.migrations {
		if migration.Version <= currentVersion {
			continue
		}

		log.Info().
			Int("version", migration.Version).
			Str("name", migration.Name).
			Msg("Executando migração")

		if err := m.runMigration(migration); err != nil {
			return fmt.Errorf("erro ao executar migração %d (%s): %w",
				migration.Version, migration.Name, err)
		}
	}

	return nil
}

func (m *Migrator) createMigrationsTable() error {
	query := `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)
	`
	_, err := m.db.Exec(query)
	return err
}

// CurrentVersion retorna a maior versão aplicada
func (m *Migrator) CurrentVersion() (int, error) {
	var version int
	err := m.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations").Scan(&version)
	if err != nil {
		return 0, err
	}
	return version, nil
}

func (m *Migrator) placeholder() string {
	if m.dialect == Postgres {
		return "$1"
	}
	return "?"
}

func (m *Migrator) runMigration(migration Migration) error {
	up, ok := migration.Up[m.dialect]
	if !ok {
		return fmt.Errorf("migração sem SQL para o dialeto %s", m.dialect)
	}

	tx, err := m.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(up); err != nil {
		return err
	}

	if _, err := tx.Exec(
		"INSERT INTO schema_migrations (version) VALUES ("+m.placeholder()+")",
		migration.Version,
	); err != nil {
		return err
	}

	return tx.Commit()
}
