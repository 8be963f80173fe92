package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/jonathan/inspection-reports/internal/server"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the REST API server",
	Long:  `Start an HTTP server that exposes REST endpoints for templates, jobs and reports.`,
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Address to listen on (default from config, :8080)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	e, err := loadEnv(cmd)
	if err != nil {
		return err
	}
	addr := e.cfg.ListenAddr
	if serveAddr != "" {
		addr = serveAddr
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	stores, closeStores, err := e.openStores(ctx)
	if err != nil {
		return err
	}
	defer closeStores()

	srv := server.New(stores, server.Config{
		Addr:          addr,
		Assembly:      e.cfg.AssemblyOptions(e.logger),
		LaTeXTemplate: e.cfg.LaTeXTemplate,
		LaTeXFont:     e.cfg.LaTeXFont,
		EmbedImages:   e.cfg.EmbedImages,
		Logger:        e.logger,
	})
	if err := srv.Start(ctx); err != nil {
		return fmt.Errorf("failed to serve: %w", err)
	}
	return nil
}
