package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

const (
	alvoFila       = "fila"
	alvoResultados = "resultados"
)

type LimparOptions struct {
	GlobalOptions
}

func NewCmdLimpar() *cobra.Command {
	o := &LimparOptions{GlobalOptions: DefaultGlobalOptions()}
	cmd := &cobra.Command{
		Use:       "limpar (fila | resultados)",
		Short:     "Esvazia a fila ou a lista de resultados.",
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{alvoFila, alvoResultados},
		RunE: func(cmd *cobra.Command, args []string) error {
			return o.Run(cmd.Context(), cmd, args[0])
		},
		SilenceUsage: true,
	}
	o.GlobalOptions.Bind(cmd.Flags())
	return cmd
}

func (o *LimparOptions) Run(ctx context.Context, cmd *cobra.Command, alvo string) error {
	a, err := o.Open(ctx, cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	switch alvo {
	case alvoFila:
		err = a.Service.ClearQueue(ctx)
	case alvoResultados:
		err = a.Service.ClearResults(ctx)
	}
	if err != nil {
		return fmt.Errorf("limpar %s: %w", alvo, err)
	}

	printStats(cmd.OutOrStdout(), a.Service.Stats())
	return nil
}
