package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jonathan/inspection-reports/internal/assembly"
	"github.com/jonathan/inspection-reports/internal/rendering"
)

var assembleCmd = &cobra.Command{
	Use:   "assemble",
	Short: "Assemble a job's report and write it to a file",
	Long:  "Loads a job and its template from storage, assembles the report and renders it as JSON, LaTeX or XLSX.",
	RunE:  runAssemble,
}

var (
	assembleJobID  string
	assembleFormat string
	assembleOut    string
)

func init() {
	assembleCmd.Flags().StringVarP(&assembleJobID, "job", "j", "", "Job ID (required)")
	assembleCmd.Flags().StringVarP(&assembleFormat, "format", "f", "json", "Output format: json, tex or xlsx")
	assembleCmd.Flags().StringVarP(&assembleOut, "out", "o", "", "Output file (default <job>.<ext>)")
	_ = assembleCmd.MarkFlagRequired("job")
	rootCmd.AddCommand(assembleCmd)
}

func runAssemble(cmd *cobra.Command, _ []string) error {
	e, err := loadEnv(cmd)
	if err != nil {
		return err
	}
	renderer, err := rendering.ForFormat(assembleFormat)
	if err != nil {
		return err
	}
	switch r := renderer.(type) {
	case *rendering.LaTeXRenderer:
		r.TemplatePath = e.cfg.LaTeXTemplate
		r.Font = e.cfg.LaTeXFont
	case *rendering.XLSXRenderer:
		r.EmbedImages = e.cfg.EmbedImages
	}

	ctx := cmd.Context()
	stores, closeStores, err := e.openStores(ctx)
	if err != nil {
		return err
	}
	defer closeStores()

	report, err := assembly.New(stores, e.cfg.AssemblyOptions(e.logger)).Assemble(ctx, assembleJobID)
	if err != nil {
		return fmt.Errorf("failed to assemble report: %w", err)
	}

	outPath := assembleOut
	if outPath == "" {
		outPath = assembleJobID + renderer.Extension()
	}
	f, err := os.Create(outPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	if err := renderer.Render(f, report); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to write output file: %w", err)
	}

	if e.cfg.Verbose {
		e.printer.PrintReportSummary(report)
	} else if len(report.Skipped) > 0 {
		e.printer.PrintSkipped(report.Skipped)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", outPath)
	return nil
}
