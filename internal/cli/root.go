package cli

import (
	"github.com/spf13/cobra"
)

// NewRootCommand monta a árvore de subcomandos do jusbr
func NewRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "jusbr [comando]",
		Short: "jusbr consulta processos judiciais no JusBR e no DataJud.",
		Run: func(cmd *cobra.Command, args []string) {
			exitOnHelp(cmd)
		},
		SilenceUsage: true,
	}

	cmd.AddCommand(NewCmdConsultar())
	cmd.AddCommand(NewCmdImportar())
	cmd.AddCommand(NewCmdProcessar())
	cmd.AddCommand(NewCmdFila())
	cmd.AddCommand(NewCmdResultados())
	cmd.AddCommand(NewCmdExportar())
	cmd.AddCommand(NewCmdLimpar())

	return cmd
}
