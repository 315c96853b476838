package cli

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"valuation-service/internal/core/port"
	"valuation-service/internal/core/port/usecases_port"
	"valuation-service/internal/core/usecase"
)

// NewCoefficientsCmd печатает таблицу коэффициентов узуфрукта без обращения к базе
func NewCoefficientsCmd(opts *RootOptions) *cobra.Command {
	var age int

	cmd := &cobra.Command{
		Use:   "coefficients",
		Short: "Print the usufruct coefficient table or the band for one age",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(opts)
			if err != nil {
				return err
			}

			uc := usecase.NewUsufructCoefficientsUseCase(nil, port.NoopMetrics{}, cfg.Valuation.FallbackLegalRate)
			if cmd.Flags().Changed("age") {
				return printCoefficientByAge(cmd.Context(), uc, age, cmd.OutOrStdout())
			}
			return printCoefficientTable(cmd.Context(), uc, cmd.OutOrStdout())
		},
	}

	cmd.Flags().IntVar(&age, "age", 0, "usufructuary age (0-100)")

	return cmd
}

func printCoefficientTable(ctx context.Context, uc usecases_port.UsufructCoefficientsPort, out io.Writer) error {
	table, err := uc.List(ctx)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "Tasso legale: %.2f%%", table.LegalRate*100)
	if table.FallbackRate {
		fmt.Fprint(out, " (valore di riserva)")
	}
	fmt.Fprintln(out)

	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ETÀ\tCOEFFICIENTE\tUSUFRUTTO\tNUDA PROPRIETÀ")
	for _, b := range table.Bands {
		fmt.Fprintf(tw, "%d-%d\t%d\t%d%%\t%d%%\n", b.MinAge, b.MaxAge, b.Coefficient, b.UsufructPercent, b.BarePercent)
	}
	return tw.Flush()
}

func printCoefficientByAge(ctx context.Context, uc usecases_port.UsufructCoefficientsPort, age int, out io.Writer) error {
	band, err := uc.ByAge(ctx, age)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(out, "Età %d (fascia %d-%d): coefficiente %d, usufrutto %d%%, nuda proprietà %d%%\n",
		age, band.MinAge, band.MaxAge, band.Coefficient, band.UsufructPercent, band.BarePercent)
	return err
}
