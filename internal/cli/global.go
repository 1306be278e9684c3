package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/cleberrangel/jusbr-consulta/internal/app"
	"github.com/cleberrangel/jusbr-consulta/internal/config"
	"github.com/cleberrangel/jusbr-consulta/internal/logger"
)

const (
	tableFormat = "table"
	jsonFormat  = "json"
)

var legalOutputTypes = []string{tableFormat, jsonFormat}

// GlobalOptions são as flags comuns a todos os subcomandos
type GlobalOptions struct {
	LogLevel string
}

func DefaultGlobalOptions() GlobalOptions {
	return GlobalOptions{
		LogLevel: zerolog.LevelWarnValue,
	}
}

func (o *GlobalOptions) Bind(fs *pflag.FlagSet) {
	fs.StringVar(&o.LogLevel, "log-level", o.LogLevel, "Nível de log (debug, info, warn, error)")
}

// Open carrega a configuração e abre o coordenador sobre o espelho durável
func (o *GlobalOptions) Open(ctx context.Context, cmd *cobra.Command) (*app.App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("carregar configuração: %w", err)
	}

	// logs vão para stderr para não misturar com a saída do comando
	logger.InitWithWriter(o.LogLevel, cfg.LogJSON, cmd.ErrOrStderr())

	a, err := app.New(ctx, cfg, nil)
	if err != nil {
		return nil, fmt.Errorf("inicializar coordenador: %w", err)
	}
	return a, nil
}

// OutputOptions adiciona a flag -o aos comandos de listagem
type OutputOptions struct {
	Output string
}

func (o *OutputOptions) Bind(fs *pflag.FlagSet) {
	fs.StringVarP(&o.Output, "output", "o", tableFormat, fmt.Sprintf("Formato de saída. Um de: (%s).", strings.Join(legalOutputTypes, ", ")))
}

func (o *OutputOptions) Validate() error {
	if !slices.Contains(legalOutputTypes, o.Output) {
		return fmt.Errorf("formato de saída deve ser um de %s", strings.Join(legalOutputTypes, ", "))
	}
	return nil
}

func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func exitOnHelp(cmd *cobra.Command) {
	_ = cmd.Help()
	os.Exit(1)
}
