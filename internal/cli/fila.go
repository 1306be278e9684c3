package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cleberrangel/jusbr-consulta/internal/cnj"
)

type FilaOptions struct {
	GlobalOptions
	OutputOptions
}

func NewCmdFila() *cobra.Command {
	o := &FilaOptions{GlobalOptions: DefaultGlobalOptions()}
	cmd := &cobra.Command{
		Use:   "fila",
		Short: "Lista os processos aguardando consulta.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := o.Validate(); err != nil {
				return err
			}
			return o.Run(cmd.Context(), cmd)
		},
		SilenceUsage: true,
	}
	o.GlobalOptions.Bind(cmd.Flags())
	o.OutputOptions.Bind(cmd.Flags())
	return cmd
}

func (o *FilaOptions) Run(ctx context.Context, cmd *cobra.Command) error {
	a, err := o.Open(ctx, cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	queue := a.Service.Queue()
	out := cmd.OutOrStdout()
	if o.Output == jsonFormat {
		return printJSON(out, queue)
	}

	for i, numero := range queue {
		fmt.Fprintf(out, "%3d  %s\n", i+1, cnj.Format(numero))
	}
	printStats(out, a.Service.Stats())
	return nil
}
