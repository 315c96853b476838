package cli

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"valuation-service/internal"
	"valuation-service/internal/adapters/omicsv"
	postgres_adapter "valuation-service/internal/adapters/postgres"
	"valuation-service/internal/contextkeys"
	"valuation-service/internal/core/domain"
	"valuation-service/internal/core/port"
	"valuation-service/internal/core/usecase"
)

// NewImportOMICmd загружает выгрузку OMI (зоны и котировки) в Postgres
func NewImportOMICmd(opts *RootOptions) *cobra.Command {
	var (
		zonesPath      string
		quotationsPath string
		semester       string
		surveyDate     string
		batchSize      int
	)

	cmd := &cobra.Command{
		Use:   "import-omi",
		Short: "Import OMI zone and quotation CSV files into PostgreSQL",
		Example: "  valuation-service import-omi --zones QI_2025_1_ZONE.csv --quotations QI_2025_1_VALORI.csv \\\n" +
			"    --semester 2025/1 --survey-date 2025-01-15",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if zonesPath == "" && quotationsPath == "" {
				return fmt.Errorf("at least one of --zones or --quotations is required")
			}

			cfg, err := loadConfig(opts)
			if err != nil {
				return err
			}

			req := domain.OMIImportRequest{
				ZonesPath:      zonesPath,
				QuotationsPath: quotationsPath,
				Meta: domain.OMIDatasetMeta{
					Semester:   firstNonEmpty(semester, cfg.OMIImport.Semester),
					SurveyDate: firstNonEmpty(surveyDate, cfg.OMIImport.SurveyDate),
				},
				BatchSize: batchSize,
			}
			if req.BatchSize <= 0 {
				req.BatchSize = cfg.OMIImport.BatchSize
			}

			b, err := internal.NewBootstrap(cfg, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer b.Close()

			ctx := contextkeys.ContextWithLogger(cmd.Context(), b.Logger.WithFields(port.Fields{"command": "import-omi"}))

			pool, err := b.Database(ctx)
			if err != nil {
				return err
			}
			repo, err := postgres_adapter.NewPostgresOMIImportAdapter(pool)
			if err != nil {
				return err
			}

			uc := usecase.NewImportOMIDataUseCase(omicsv.NewReader(), repo, b.BusinessMetrics())
			stats, err := uc.Execute(ctx, req)
			if err != nil {
				return err
			}
			return printImportStats(cmd.OutOrStdout(), stats)
		},
	}

	cmd.Flags().StringVar(&zonesPath, "zones", "", "OMI zones CSV file")
	cmd.Flags().StringVar(&quotationsPath, "quotations", "", "OMI quotations CSV file")
	cmd.Flags().StringVar(&semester, "semester", "", "dataset semester, e.g. 2025/1 (default from OMI_SEMESTER)")
	cmd.Flags().StringVar(&surveyDate, "survey-date", "", "survey date YYYY-MM-DD (default from OMI_SURVEY_DATE)")
	cmd.Flags().IntVar(&batchSize, "batch-size", 0, "rows per COPY batch (default from OMI_IMPORT_BATCH_SIZE)")

	return cmd
}

func printImportStats(out io.Writer, stats []domain.ImportStats) error {
	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "TABLE\tREAD\tIMPORTED\tFAILED")
	for _, s := range stats {
		fmt.Fprintf(tw, "%s\t%d\t%d\t%d\n", s.Table, s.Read, s.Imported, s.Failed)
	}
	return tw.Flush()
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
