package migration

// getAllMigrations retorna todas as migrações disponíveis
func getAllMigrations() []Migration {
	return []Migration{
		{
			Version: 1,
			Name:    "create_mirror_slots",
			Up: map[Dialect]string{
				Postgres: `
					CREATE TABLE IF NOT EXISTS mirror_slots (
						slot VARCHAR(50) PRIMARY KEY,
						payload JSONB NOT NULL,
						updated_at TIMESTAMP NOT NULL DEFAULT NOW()
					);
				`,
				SQLite: `
					CREATE TABLE IF NOT EXISTS mirror_slots (
						slot TEXT PRIMARY KEY,
						payload TEXT NOT NULL,
						updated_at TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP
					);
				`,
			},
			Down: map[Dialect]string{
				Postgres: `DROP TABLE IF EXISTS mirror_slots;`,
				SQLite:   `DROP TABLE IF EXISTS mirror_slots;`,
			},
		},
	}
}
