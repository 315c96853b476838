package cli

import (
	"github.com/spf13/cobra"

	"valuation-service/internal"
)

// NewServeCmd запускает REST API и, если включено, консьюмер RabbitMQ
func NewServeCmd(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the REST API and the valuation request consumer",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(opts)
			if err != nil {
				return err
			}

			application, err := internal.NewApp(cfg)
			if err != nil {
				return err
			}
			return application.Run()
		},
	}
}
