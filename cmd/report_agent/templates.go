package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonathan/inspection-reports/internal/templates"
)

var validateTemplateCmd = &cobra.Command{
	Use:   "validate-template <file>",
	Short: "Parse a template definition and report its warnings",
	Args:  cobra.ExactArgs(1),
	RunE:  runValidateTemplate,
}

var importTemplateCmd = &cobra.Command{
	Use:   "import-template <file>",
	Short: "Parse a template definition and store it",
	Long:  "Parses a template definition and stores it, replacing any template with the same ID. Unsupported fields are kept as placeholders and reported as warnings.",
	Args:  cobra.ExactArgs(1),
	RunE:  runImportTemplate,
}

var validateStrict bool

func init() {
	validateTemplateCmd.Flags().BoolVar(&validateStrict, "strict", false, "Fail when the template has warnings")
	rootCmd.AddCommand(validateTemplateCmd)
	rootCmd.AddCommand(importTemplateCmd)
}

func runValidateTemplate(cmd *cobra.Command, args []string) error {
	e, err := loadEnv(cmd)
	if err != nil {
		return err
	}
	result, err := templates.ParseFile(args[0])
	if err != nil {
		return err
	}
	e.printer.PrintTemplateResult(result)
	if validateStrict && len(result.Warnings) > 0 {
		return fmt.Errorf("template %s has %d warnings", result.Template.ID, len(result.Warnings))
	}
	return nil
}

func runImportTemplate(cmd *cobra.Command, args []string) error {
	e, err := loadEnv(cmd)
	if err != nil {
		return err
	}
	result, err := templates.ParseFile(args[0])
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	stores, closeStores, err := e.openStores(ctx)
	if err != nil {
		return err
	}
	defer closeStores()

	if err := stores.UpdateTemplate(ctx, result.Template); err != nil {
		return fmt.Errorf("failed to store template: %w", err)
	}
	if e.cfg.Verbose || len(result.Warnings) > 0 {
		e.printer.PrintTemplateResult(result)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Imported template %s\n", result.Template.ID)
	return nil
}
