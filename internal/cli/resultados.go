package cli

import (
	"context"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/cleberrangel/jusbr-consulta/internal/cnj"
	"github.com/cleberrangel/jusbr-consulta/internal/model"
	"github.com/cleberrangel/jusbr-consulta/internal/service"
)

type ResultadosOptions struct {
	GlobalOptions
	OutputOptions

	Ordenar string
	Desc    bool
}

func NewCmdResultados() *cobra.Command {
	o := &ResultadosOptions{GlobalOptions: DefaultGlobalOptions()}
	cmd := &cobra.Command{
		Use:   "resultados",
		Short: "Lista os resultados das consultas.",
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
	cmd.Flags().StringVar(&o.Ordenar, "ordenar", "", fmt.Sprintf("Coluna de ordenação (%s)", strings.Join(service.SortFields(), ", ")))
	cmd.Flags().BoolVar(&o.Desc, "desc", false, "Ordem decrescente")
	return cmd
}

func (o *ResultadosOptions) Run(ctx context.Context, cmd *cobra.Command) error {
	a, err := o.Open(ctx, cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	records, err := service.SortRecords(a.Service.Results(), o.Ordenar, o.Desc)
	if err != nil {
		return fmt.Errorf("%w: %s", err, o.Ordenar)
	}

	out := cmd.OutOrStdout()
	if o.Output == jsonFormat {
		return printJSON(out, records)
	}
	return printRecords(out, a.Config.Location(), records)
}

func printRecords(out io.Writer, loc *time.Location, records []model.ProcessRecord) error {
	w := tabwriter.NewWriter(out, 0, 8, 1, '\t', 0)
	fmt.Fprintln(w, "NÚMERO\tTRIBUNAL\tSISTEMA\tATIVO\tVALOR\tÚLT. MOV.\tSTATUS")
	for _, r := range records {
		status := "Sucesso"
		if r.Erro {
			status = "Erro"
			if r.MensagemErro != nil {
				status += ": " + *r.MensagemErro
			}
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			cnj.Format(r.NumeroProcesso),
			r.SiglaTribunal,
			r.Sistema,
			r.Ativo,
			service.FormatCurrency(r.ValorAcao),
			service.FormatOptionalDate(r.DataUltMov, loc),
			status,
		)
	}
	return w.Flush()
}
