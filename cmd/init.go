package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/whiteboxllms/clever-widget-factory-sub001/internal/config"
	"github.com/whiteboxllms/clever-widget-factory-sub001/internal/store"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize a workshop database and config in the current directory",
	Long:  `Creates .cwf/config.yaml with default settings and an empty .cwf/cwf.db database.`,
	RunE:  runInit,
}

func init() {
	rootCmd.AddCommand(initCmd)
}

func runInit(cmd *cobra.Command, args []string) error {
	if err := config.WriteDefaultConfig(config.DefaultConfigPath); err != nil {
		return fmt.Errorf("creating config file: %w", err)
	}
	fmt.Printf("Created %s\n", config.DefaultConfigPath)

	dbPath := config.Default().DB.DBPath()
	s, err := store.Open(dbPath)
	if err != nil {
		return fmt.Errorf("creating database: %w", err)
	}
	if err := s.Close(); err != nil {
		return fmt.Errorf("closing database: %w", err)
	}
	fmt.Printf("Created %s\n", dbPath)
	return nil
}
