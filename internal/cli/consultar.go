package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cleberrangel/jusbr-consulta/internal/cnj"
	"github.com/cleberrangel/jusbr-consulta/internal/model"
)

type ConsultarOptions struct {
	GlobalOptions
	OutputOptions
}

func NewCmdConsultar() *cobra.Command {
	o := &ConsultarOptions{GlobalOptions: DefaultGlobalOptions()}
	cmd := &cobra.Command{
		Use:   "consultar NUMERO",
		Short: "Enfileira um número e processa um lote.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := o.Validate(); err != nil {
				return err
			}
			return o.Run(cmd.Context(), cmd, args[0])
		},
		SilenceUsage: true,
	}
	o.GlobalOptions.Bind(cmd.Flags())
	o.OutputOptions.Bind(cmd.Flags())
	return cmd
}

func (o *ConsultarOptions) Run(ctx context.Context, cmd *cobra.Command, numero string) error {
	a, err := o.Open(ctx, cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	resp, err := a.Service.RunOne(ctx, numero)
	if err != nil {
		return fmt.Errorf("consultar %s: %w", numero, err)
	}

	// o número consultado pode ter saído da fila em um lote anterior ou estar mais atrás
	digits := cnj.Normalize(numero)
	var found []model.ProcessRecord
	for _, r := range a.Service.Results() {
		if cnj.Normalize(r.NumeroProcesso) == digits {
			found = append(found, r)
		}
	}

	out := cmd.OutOrStdout()
	if o.Output == jsonFormat {
		return printJSON(out, map[string]interface{}{"lote": resp, "resultados": found})
	}

	if err := printRecords(out, a.Config.Location(), found); err != nil {
		return err
	}
	printStats(out, resp)
	return nil
}
