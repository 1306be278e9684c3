package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/cleberrangel/jusbr-consulta/internal/service"
)

type ExportarOptions struct {
	GlobalOptions

	Arquivo string
	Ordenar string
	Desc    bool
}

func NewCmdExportar() *cobra.Command {
	o := &ExportarOptions{GlobalOptions: DefaultGlobalOptions()}
	cmd := &cobra.Command{
		Use:   "exportar",
		Short: "Gera a planilha XLSX com os resultados.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return o.Run(cmd.Context(), cmd)
		},
		SilenceUsage: true,
	}
	o.GlobalOptions.Bind(cmd.Flags())
	cmd.Flags().StringVarP(&o.Arquivo, "output", "o", "", "Arquivo de saída (padrão consulta_jusbr_AAAA-MM-DD.xlsx)")
	cmd.Flags().StringVar(&o.Ordenar, "ordenar", "", "Coluna de ordenação")
	cmd.Flags().BoolVar(&o.Desc, "desc", false, "Ordem decrescente")
	return cmd
}

func (o *ExportarOptions) Run(ctx context.Context, cmd *cobra.Command) error {
	a, err := o.Open(ctx, cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	loc := a.Config.Location()
	records, err := service.SortRecords(a.Service.Results(), o.Ordenar, o.Desc)
	if err != nil {
		return err
	}

	buf, err := service.NewExcelExporter(loc).Export(records)
	if err != nil {
		return fmt.Errorf("gerar planilha: %w", err)
	}

	path := o.Arquivo
	if path == "" {
		path = service.ExportFilename(time.Now(), loc)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("gravar %s: %w", path, err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%d resultados exportados para %s\n", len(records), path)
	return nil
}
