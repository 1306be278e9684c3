package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/cleberrangel/jusbr-consulta/internal/model"
)

type ProcessarOptions struct {
	GlobalOptions

	Todos bool
}

func NewCmdProcessar() *cobra.Command {
	o := &ProcessarOptions{GlobalOptions: DefaultGlobalOptions()}
	cmd := &cobra.Command{
		Use:   "processar",
		Short: "Processa um lote da fila (ou todos com --todos).",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return o.Run(cmd.Context(), cmd)
		},
		SilenceUsage: true,
	}
	o.GlobalOptions.Bind(cmd.Flags())
	cmd.Flags().BoolVar(&o.Todos, "todos", false, "Processa lotes até esvaziar a fila")
	return cmd
}

func (o *ProcessarOptions) Run(ctx context.Context, cmd *cobra.Command) error {
	a, err := o.Open(ctx, cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	var resp model.ConsultaResponse
	if o.Todos {
		resp, err = a.Service.DrainAll(ctx)
	} else {
		resp, err = a.Service.DrainBatch(ctx)
	}
	if err != nil {
		return fmt.Errorf("processar fila: %w", err)
	}

	printStats(cmd.OutOrStdout(), resp)
	return nil
}

func printStats(w io.Writer, resp model.ConsultaResponse) {
	fmt.Fprintf(w, "Na fila: %d | Processados: %d\n", resp.TotalNaFila, resp.TotalProcessado)
}
