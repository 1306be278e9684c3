// Package app monta as dependências compartilhadas pelo servidor HTTP e pela CLI.
package app

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/cleberrangel/jusbr-consulta/internal/client"
	"github.com/cleberrangel/jusbr-consulta/internal/config"
	"github.com/cleberrangel/jusbr-consulta/internal/database"
	"github.com/cleberrangel/jusbr-consulta/internal/logger"
	"github.com/cleberrangel/jusbr-consulta/internal/migration"
	"github.com/cleberrangel/jusbr-consulta/internal/repository"
	"github.com/cleberrangel/jusbr-consulta/internal/service"
)

// App reúne coordenador, espelho e clientes remotos
type App struct {
	Config  *config.Config
	Mirror  repository.MirrorRepository
	Lookup  *client.Lookup
	Service *service.ProcessoService
}

// New abre o espelho conforme STORAGE_DRIVER e cria o coordenador. notifier pode ser nil.
func New(ctx context.Context, cfg *config.Config, notifier service.Notifier) (*App, error) {
	mirror, err := OpenMirror(cfg)
	if err != nil {
		return nil, err
	}

	var registry client.RegistryClient
	if cfg.DataJudAPIKey != "" {
		registry = client.NewDataJudClient(cfg.DataJudURL, cfg.DataJudAPIKey, cfg.DataJudTimeout)
	} else {
		logger.Get(ctx).Warn().Msg("DATAJUD_API_KEY não configurada, sistema ficará N/A")
	}
	detail := client.NewJusBRClient(cfg.JusBRURL, cfg.JusBRTimeout)
	lookup := client.NewLookup(registry, detail, cfg.RegistryCacheTTL)

	svc, err := service.NewProcessoService(ctx, mirror, lookup, service.Options{
		BatchSize: cfg.BatchSize,
		MaxQueue:  cfg.MaxQueue,
		Interval:  cfg.LookupInterval,
		Notifier:  notifier,
	})
	if err != nil {
		lookup.Close()
		mirror.Close()
		return nil, err
	}

	return &App{
		Config:  cfg,
		Mirror:  mirror,
		Lookup:  lookup,
		Service: svc,
	}, nil
}

// OpenMirror abre e migra o armazenamento do espelho
func OpenMirror(cfg *config.Config) (repository.MirrorRepository, error) {
	log := logger.Global()

	switch cfg.StorageDriver {
	case config.StorageMemory:
		log.Warn().Msg("Espelho em memória: fila e resultados serão perdidos ao encerrar")
		return repository.NewMemoryMirror(), nil

	case config.StorageSQLite:
		db, err := database.OpenSQLite(cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		if err := migrate(db, migration.SQLite); err != nil {
			return nil, err
		}
		return repository.NewSQLiteMirror(db), nil

	case config.StoragePostgres:
		db, err := database.Connect(database.Config{
			Host:     cfg.Database.Host,
			Port:     cfg.Database.Port,
			User:     cfg.Database.User,
			Password: cfg.Database.Password,
			DBName:   cfg.Database.Name,
			SSLMode:  cfg.Database.SSLMode,
		})
		if err != nil {
			return nil, err
		}
		if err := migrate(db, migration.Postgres); err != nil {
			return nil, err
		}
		return repository.NewPostgresMirror(db), nil
	}

	return nil, config.ErrInvalidStorage
}

func migrate(db *sql.DB, dialect migration.Dialect) error {
	if err := migration.NewMigrator(db, dialect).Run(); err != nil {
		database.Close(db)
		return fmt.Errorf("executar migrações: %w", err)
	}
	return nil
}

// Close libera o cache de sistemas e o armazenamento
func (a *App) Close() error {
	a.Lookup.Close()
	return a.Mirror.Close()
}
