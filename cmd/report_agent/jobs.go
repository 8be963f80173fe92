package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonathan/inspection-reports/internal/jobdata"
	"github.com/jonathan/inspection-reports/internal/overrides"
)

var resetOverrideCmd = &cobra.Command{
	Use:   "reset-override",
	Short: "Remove a job's custom content override",
	Long:  "Removes a job's custom content override so its reports use the template default again.",
	RunE:  runResetOverride,
}

var migrateFindingsCmd = &cobra.Command{
	Use:   "migrate-findings",
	Short: "Move a job's ungrouped findings into one category",
	RunE:  runMigrateFindings,
}

var (
	resetJobID   string
	migrateJobID string
	migrateTitle string
)

func init() {
	resetOverrideCmd.Flags().StringVarP(&resetJobID, "job", "j", "", "Job ID (required)")
	_ = resetOverrideCmd.MarkFlagRequired("job")

	migrateFindingsCmd.Flags().StringVarP(&migrateJobID, "job", "j", "", "Job ID (required)")
	migrateFindingsCmd.Flags().StringVarP(&migrateTitle, "title", "t", "", "Category title (default "+jobdata.DefaultLegacyCategoryTitle+")")
	_ = migrateFindingsCmd.MarkFlagRequired("job")

	rootCmd.AddCommand(resetOverrideCmd)
	rootCmd.AddCommand(migrateFindingsCmd)
}

func runResetOverride(cmd *cobra.Command, _ []string) error {
	e, err := loadEnv(cmd)
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	stores, closeStores, err := e.openStores(ctx)
	if err != nil {
		return err
	}
	defer closeStores()

	editor := jobdata.NewEditor(stores, stores, jobdata.WithLogger(e.logger))
	resolver := overrides.NewResolver(stores, editor, e.logger)
	if err := resolver.ResetToDefault(ctx, resetJobID); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Reset custom content of job %s\n", resetJobID)
	return nil
}

func runMigrateFindings(cmd *cobra.Command, _ []string) error {
	e, err := loadEnv(cmd)
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	stores, closeStores, err := e.openStores(ctx)
	if err != nil {
		return err
	}
	defer closeStores()

	editor := jobdata.NewEditor(stores, stores, jobdata.WithLogger(e.logger))
	var categoryID string
	changed, err := editor.Update(ctx, migrateJobID, func(doc *jobdata.Document) bool {
		var ok bool
		categoryID, ok = doc.MigrateLegacyFindings(migrateTitle)
		return ok
	})
	if err != nil {
		return err
	}
	if !changed {
		fmt.Fprintf(cmd.OutOrStdout(), "Job %s has no ungrouped findings to migrate\n", migrateJobID)
		return nil
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Migrated findings of job %s into category %s\n", migrateJobID, categoryID)
	return nil
}
