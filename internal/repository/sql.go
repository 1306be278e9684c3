package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/cleberrangel/jusbr-consulta/internal/logger"
	"github.com/cleberrangel/jusbr-consulta/internal/migration"
)

// SQLMirror persiste os slots na tabela mirror_slots (PostgreSQL ou SQLite)
type SQLMirror struct {
	db      *sql.DB
	dialect migration.Dialect
	upsert  string
}

// NewPostgresMirror cria o espelho sobre uma conexão lib/pq já migrada
func NewPostgresMirror(db *sql.DB) *SQLMirror {
	return &SQLMirror{
		db:      db,
		dialect: migration.Postgres,
		upsert: `
			INSERT INTO mirror_slots (slot, payload, updated_at)
			VALUES ($1, $2, NOW())
			ON CONFLICT (slot) DO UPDATE SET payload = EXCLUDED.payload, updated_at = NOW()
		`,
	}
}

// NewSQLiteMirror cria o espelho sobre um arquivo SQLite já migrado
func NewSQLiteMirror(db *sql.DB) *SQLMirror {
	return &SQLMirror{
		db:      db,
		dialect: migration.SQLite,
		upsert: `
			INSERT INTO mirror_slots (slot, payload, updated_at)
			VALUES (?, ?, CURRENT_TIMESTAMP)
			ON CONFLICT (slot) DO UPDATE SET payload = excluded.payload, updated_at = CURRENT_TIMESTAMP
		`,
	}
}

// Load lê os dois slots
func (r *SQLMirror) Load(ctx context.Context) (Snapshot, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT slot, payload FROM mirror_slots`)
	if err != nil {
		return Snapshot{}, fmt.Errorf("erro ao ler espelho: %w", err)
	}
	defer rows.Close()

	slots := make(map[string][]byte, 2)
	for rows.Next() {
		var slot string
		var payload []byte
		if err := rows.Scan(&slot, &payload); err != nil {
			return Snapshot{}, fmt.Errorf("erro ao ler slot: %w", err)
		}
		slots[slot] = payload
	}
	if err := rows.Err(); err != nil {
		return Snapshot{}, fmt.Errorf("erro ao iterar slots: %w", err)
	}

	snap, err := decodeSnapshot(slots)
	if err != nil {
		return Snapshot{}, err
	}

	logger.Global().Debug().
		Str("dialect", string(r.dialect)).
		Int("fila", len(snap.Queue)).
		Int("resultados", len(snap.Results)).
		Msg("Espelho carregado")
	return snap, nil
}

// Save grava os dois slots numa única transação
func (r *SQLMirror) Save(ctx context.Context, snap Snapshot) error {
	slots, err := encodeSnapshot(snap)
	if err != nil {
		return err
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("erro ao iniciar transação: %w", err)
	}
	defer tx.Rollback()

	for _, slot := range []string{SlotQueue, SlotResults} {
		// string: lib/pq enviaria []byte como bytea
		if _, err := tx.ExecContext(ctx, r.upsert, slot, string(slots[slot])); err != nil {
			return fmt.Errorf("erro ao gravar slot %s: %w", slot, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("erro ao confirmar espelho: %w", err)
	}
	return nil
}

func (r *SQLMirror) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

func (r *SQLMirror) Close() error {
	return r.db.Close()
}
