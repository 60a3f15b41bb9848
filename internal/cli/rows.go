package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"systemscheck/internal/model"
)

func newValidateCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "validate <rows.json>",
		Short: "Validate batch rows without writing anything",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rows, err := loadRows(args[0])
			if err != nil {
				return err
			}
			report, err := a.imp.ValidateRows(cmd.Context(), rows)
			if err != nil {
				return err
			}
			if a.jsonOut {
				return writeJSON(cmd.OutOrStdout(), report)
			}
			printReport(cmd.OutOrStdout(), report)
			return nil
		},
	}
}

func newImportCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "import <rows.json>",
		Short: "Validate batch rows and commit the valid ones in one transaction",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rows, err := loadRows(args[0])
			if err != nil {
				return err
			}
			res, err := a.imp.CommitRows(cmd.Context(), rows)
			if res != nil {
				if a.jsonOut {
					if werr := writeJSON(cmd.OutOrStdout(), res); werr != nil {
						return werr
					}
				} else {
					printResult(cmd.OutOrStdout(), res)
				}
			}
			return err
		},
	}
}

// loadRows 支持 JSON 数组或 {"rows": [...]}；"-" 表示标准输入
func loadRows(path string) ([]model.BatchRow, error) {
	data, err := readInput(path)
	if err != nil {
		return nil, err
	}
	data = bytes.TrimSpace(data)
	var rows []model.BatchRow
	if len(data) > 0 && data[0] == '[' {
		err = json.Unmarshal(data, &rows)
	} else {
		var wrapped struct {
			Rows []model.BatchRow `json:"rows"`
		}
		err = json.Unmarshal(data, &wrapped)
		rows = wrapped.Rows
	}
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%s contains no rows", path)
	}
	return rows, nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func printReport(w io.Writer, report *model.ValidateReport) {
	for _, r := range report.Rows {
		status := "OK"
		if !r.IsValid {
			status = "FAIL"
		}
		fmt.Fprintf(w, "row %-4d %-4s %-40s %04d-%02d total=%.2f\n", r.Row, status, r.FacilityName, r.Year, r.Month, r.TotalScore)
		for _, e := range r.Errors {
			fmt.Fprintf(w, "    error: %s\n", e)
		}
		for _, warn := range r.Warnings {
			fmt.Fprintf(w, "    warning: %s\n", warn)
		}
	}
	fmt.Fprintf(w, "%d rows: %d valid, %d invalid\n", report.Total, report.Valid, report.Invalid)
}

func printResult(w io.Writer, res *model.ImportBatchResult) {
	for _, e := range res.Errors {
		fmt.Fprintf(w, "row %-4d error: %s\n", e.Row, e.Error)
	}
	for _, warn := range res.Warnings {
		fmt.Fprintf(w, "row %-4d warning: %s\n", warn.Row, warn.Warning)
	}
	fmt.Fprintf(w, "batch %s: %d committed, %d failed\n", res.BatchID, res.Success, res.Failed)
}
