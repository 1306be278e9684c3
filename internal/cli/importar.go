package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/cleberrangel/jusbr-consulta/internal/service"
)

type ImportarOptions struct {
	GlobalOptions

	Processar bool
}

func NewCmdImportar() *cobra.Command {
	o := &ImportarOptions{GlobalOptions: DefaultGlobalOptions()}
	cmd := &cobra.Command{
		Use:   "importar PLANILHA",
		Short: "Enfileira os números da primeira coluna de uma planilha XLSX ou CSV.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return o.Run(cmd.Context(), cmd, args[0])
		},
		SilenceUsage: true,
	}
	o.GlobalOptions.Bind(cmd.Flags())
	cmd.Flags().BoolVar(&o.Processar, "processar", false, "Processa um lote após importar")
	return cmd
}

func (o *ImportarOptions) Run(ctx context.Context, cmd *cobra.Command, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("abrir planilha: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("ler planilha: %w", err)
	}

	a, err := o.Open(ctx, cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	result, err := service.Ingest(filepath.Base(path), f, info.Size(), a.Service.MaxQueue())
	if err != nil {
		return fmt.Errorf("importar %s: %w", path, err)
	}

	if err := a.Service.EnqueueMany(ctx, result.Numeros); err != nil {
		return fmt.Errorf("enfileirar: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%d processos importados (%d linhas ignoradas)\n", len(result.Numeros), result.Ignorada)

	resp := a.Service.Stats()
	if o.Processar {
		if resp, err = a.Service.DrainBatch(ctx); err != nil {
			return fmt.Errorf("processar fila: %w", err)
		}
	}
	printStats(out, resp)
	return nil
}
