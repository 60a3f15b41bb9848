package cli

import (
	"fmt"
	"path/filepath"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/cobra"

	"systemscheck/internal/model"
)

func newWorkbookCmd(a *app) *cobra.Command {
	var (
		dryRun    bool
		overrides model.WorkbookOverrides
	)
	cmd := &cobra.Command{
		Use:   "workbook <file.xlsx>...",
		Short: "Import one or more scorecard workbooks",
		Long: `Extract each workbook, match rows to the criteria catalog, compute scores and validate.
Valid scorecards are committed in one transaction unless --dry-run is given.
Use "-" to read a single workbook from stdin. A file that cannot be opened fails its own row only.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validator.New().Struct(&overrides); err != nil {
				return fmt.Errorf("invalid overrides: %w", err)
			}
			inputs := make([]model.WorkbookInput, 0, len(args))
			for _, path := range args {
				in := model.WorkbookInput{Name: filepath.Base(path), Path: filepath.Clean(path), Overrides: overrides}
				if path == "-" {
					data, err := readInput(path)
					if err != nil {
						return err
					}
					in = model.WorkbookInput{Name: "stdin", Data: data, Overrides: overrides}
				}
				inputs = append(inputs, in)
			}

			out := cmd.OutOrStdout()
			if dryRun {
				report, err := a.imp.ValidateWorkbooks(cmd.Context(), inputs)
				if err != nil {
					return err
				}
				if a.jsonOut {
					return writeJSON(out, report)
				}
				printReport(out, &report.ValidateReport)
				fmt.Fprintf(out, "scorecards ready to commit: %d\n", len(report.Scorecards))
				return nil
			}

			res, err := a.imp.CommitWorkbooks(cmd.Context(), inputs)
			if res != nil {
				if a.jsonOut {
					if werr := writeJSON(out, res); werr != nil {
						return werr
					}
				} else {
					printResult(out, res)
				}
			}
			return err
		},
	}
	f := cmd.Flags()
	f.BoolVar(&dryRun, "dry-run", false, "Validate only, do not commit")
	f.StringVar(&overrides.FacilityName, "facility", "", "Facility name override")
	f.IntVar(&overrides.Month, "month", 0, "Month override (1-12)")
	f.IntVar(&overrides.Year, "year", 0, "Year override")
	return cmd
}
