package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"valuation-service/internal"
	"valuation-service/internal/contextkeys"
	"valuation-service/internal/contracts"
	"valuation-service/internal/core/port"
	"valuation-service/internal/core/port/usecases_port"
	"valuation-service/internal/core/valuation"
)

const (
	outputText = "text"
	outputJSON = "json"
)

type valuateOutput struct {
	Valutazione contracts.ValuationDTO `json:"valutazione"`
	Report      string                 `json:"report"`
}

// NewValuateCmd - одна оценка по JSON-файлу запроса.
// Логи идут в stderr, в stdout только отчет.
func NewValuateCmd(opts *RootOptions) *cobra.Command {
	var (
		filePath string
		output   string
	)

	cmd := &cobra.Command{
		Use:   "valuate",
		Short: "Valuate a single property from a request JSON file",
		Example: "  valuation-service valuate --file immobile.json\n" +
			"  valuation-service valuate --file immobile.json --output json",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if output != outputText && output != outputJSON {
				return fmt.Errorf("unsupported output format %q (text, json)", output)
			}

			body, err := os.ReadFile(filePath)
			if err != nil {
				return fmt.Errorf("failed to read request file: %w", err)
			}

			cfg, err := loadConfig(opts)
			if err != nil {
				return err
			}

			b, err := internal.NewBootstrap(cfg, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer b.Close()

			ctx := contextkeys.ContextWithLogger(cmd.Context(), b.Logger.WithFields(port.Fields{"command": "valuate"}))
			ctx, _ = contextkeys.EnsureTraceID(ctx, "")

			uc, err := b.ValuatePropertyUseCase(ctx)
			if err != nil {
				return err
			}
			return runValuate(ctx, uc, body, output, cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVarP(&filePath, "file", "f", "", "request JSON file (ValuationRequest schema)")
	cmd.Flags().StringVarP(&output, "output", "o", outputText, "output format (text, json)")
	_ = cmd.MarkFlagRequired("file")

	return cmd
}

func runValuate(ctx context.Context, uc usecases_port.ValuatePropertyPort, body []byte, output string, out io.Writer) error {
	req, err := contracts.ParseValuationRequest(body)
	if err != nil {
		return err
	}

	result, err := uc.Execute(ctx, req.ToDomain())
	if err != nil {
		return err
	}

	report := valuation.RenderReport(*result)
	if output == outputJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(valuateOutput{Valutazione: contracts.NewValuationDTO(*result), Report: report})
	}

	_, err = fmt.Fprintln(out, report)
	return err
}
