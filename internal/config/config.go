package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Drivers de armazenamento suportados para o espelho durável
const (
	StorageSQLite   = "sqlite"
	StoragePostgres = "postgres"
	StorageMemory   = "memory"
)

// Config armazena as configurações da aplicação
type Config struct {
	TokenAPI     string `env:"TOKEN_API"`
	TokenAPIHash string `env:"TOKEN_API_HASH"`
	Port         string `env:"PORT" envDefault:"8080"`
	GinMode      string `env:"GIN_MODE" envDefault:"debug"`
	LogLevel     string `env:"LOG_LEVEL" envDefault:"info"`
	LogJSON      bool   `env:"LOG_JSON" envDefault:"false"`

	StorageDriver string `env:"STORAGE_DRIVER" envDefault:"sqlite"`
	DataDir       string `env:"DATA_DIR" envDefault:"data"`
	SQLitePath    string `env:"SQLITE_PATH"`
	Database      DatabaseConfig

	DataJudURL     string        `env:"DATAJUD_URL" envDefault:"https://api-publica.datajud.cnj.jus.br"`
	DataJudAPIKey  string        `env:"DATAJUD_API_KEY"`
	DataJudTimeout time.Duration `env:"DATAJUD_TIMEOUT" envDefault:"30s"`
	JusBRURL       string        `env:"JUSBR_URL" envDefault:"https://rpa.juscash.com.br/jusbr/api/processo"`
	JusBRTimeout   time.Duration `env:"JUSBR_TIMEOUT" envDefault:"10m"`

	BatchSize        int           `env:"BATCH_SIZE" envDefault:"10"`
	MaxQueue         int           `env:"MAX_QUEUE" envDefault:"500"`
	LookupInterval   time.Duration `env:"LOOKUP_INTERVAL" envDefault:"500ms"`
	AutoDrain        bool          `env:"AUTO_DRAIN" envDefault:"false"`
	AutoDrainEvery   time.Duration `env:"AUTO_DRAIN_INTERVAL" envDefault:"5s"`
	RegistryCacheTTL time.Duration `env:"REGISTRY_CACHE_TTL" envDefault:"1h"`
	Timezone         string        `env:"TIMEZONE" envDefault:"America/Sao_Paulo"`
}

// DatabaseConfig agrupa a conexão com o PostgreSQL (STORAGE_DRIVER=postgres)
type DatabaseConfig struct {
	Host     string `env:"DB_HOST" envDefault:"127.0.0.1"`
	Port     string `env:"DB_PORT" envDefault:"5432"`
	User     string `env:"DB_USER" envDefault:"postgres"`
	Password string `env:"DB_PASSWORD"`
	Name     string `env:"DB_NAME" envDefault:"jusbr"`
	SSLMode  string `env:"DB_SSLMODE" envDefault:"disable"`
}

var (
	// ErrMissingToken indica que o token da API não foi configurado
	ErrMissingToken = errors.New("TOKEN_API ou TOKEN_API_HASH não configurado")

	// ErrInvalidStorage indica um STORAGE_DRIVER desconhecido
	ErrInvalidStorage = errors.New("STORAGE_DRIVER inválido (use sqlite, postgres ou memory)")
)

// Load carrega as configurações do ambiente
func Load() (*Config, error) {
	// Tenta carregar .env de múltiplos locais
	_ = godotenv.Load()
	_ = godotenv.Load("../.env")

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("ler variáveis de ambiente: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	if cfg.SQLitePath == "" {
		cfg.SQLitePath = filepath.Join(cfg.DataDir, "jusbr.db")
	}

	return cfg, nil
}

func (c *Config) validate() error {
	switch c.StorageDriver {
	case StorageSQLite, StoragePostgres, StorageMemory:
	default:
		return ErrInvalidStorage
	}

	if c.BatchSize <= 0 {
		return fmt.Errorf("BATCH_SIZE deve ser positivo: %d", c.BatchSize)
	}

	if c.MaxQueue <= 0 {
		return fmt.Errorf("MAX_QUEUE deve ser positivo: %d", c.MaxQueue)
	}

	return nil
}

// RequireToken valida que o servidor HTTP tem uma credencial estática configurada
func (c *Config) RequireToken() error {
	if c.TokenAPI == "" && c.TokenAPIHash == "" {
		return ErrMissingToken
	}
	return nil
}

// Location retorna o fuso usado para formatar datas, com fallback para o fuso local
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
}
