package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"valuation-service/internal/configs"
)

// Version подставляется при сборке через ldflags
var Version = "dev"

// RootOptions - глобальные флаги
type RootOptions struct {
	EnvPath string
}

// NewRootCommand создает корневую команду со всеми подкомандами
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "valuation-service",
		Short: "Valutazione della nuda proprietà su quotazioni OMI",
		Long: "Servizio di valutazione della nuda proprietà: stima il valore di mercato\n" +
			"dalle quotazioni OMI, applica i coefficienti di merito e i coefficienti\n" +
			"fiscali dell'usufrutto e valuta la convenienza del prezzo richiesto.",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&opts.EnvPath, "env", "", "path to .env file (default: ./.env if present)")

	cmd.AddCommand(
		NewServeCmd(opts),
		NewValuateCmd(opts),
		NewCoefficientsCmd(opts),
		NewImportOMICmd(opts),
		NewMigrateCmd(opts),
	)

	return cmd
}

// Execute - точка входа бинарника
func Execute() error {
	return NewRootCommand().Execute()
}

func loadConfig(opts *RootOptions) (*configs.AppConfig, error) {
	cfg, err := configs.LoadConfig(opts.EnvPath)
	if err != nil {
		return nil, fmt.Errorf("error loading application configuration: %w", err)
	}
	return cfg, nil
}
