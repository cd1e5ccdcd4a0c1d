package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/newthinker/sigchart/internal/storage/source"
)

var dataCmd = &cobra.Command{
	Use:   "data",
	Short: "Dataset operations",
	Long:  `Commands for listing and uploading CSV datasets in the configured data source.`,
}

var dataListCmd = &cobra.Command{
	Use:   "ls",
	Short: "List CSV datasets",
	RunE:  runDataList,
}

var dataPushCmd = &cobra.Command{
	Use:   "push <file>",
	Short: "Upload a CSV file to the data source",
	Args:  cobra.ExactArgs(1),
	RunE:  runDataPush,
}

var pushName string

func init() {
	rootCmd.AddCommand(dataCmd)
	dataCmd.AddCommand(dataListCmd)
	dataCmd.AddCommand(dataPushCmd)

	dataPushCmd.Flags().StringVar(&pushName, "name", "", "dataset name (default: the file's base name)")
}

// withSource handles common config and source setup.
func withSource(fn func(src source.Source, log *zap.Logger) error) error {
	log := newLogger()
	defer log.Sync()

	cfg, err := loadConfig(log)
	if err != nil {
		return err
	}

	src, err := source.New(cfg.Data)
	if err != nil {
		return fmt.Errorf("creating data source: %w", err)
	}
	return fn(src, log)
}

func runDataList(cmd *cobra.Command, args []string) error {
	return withSource(func(src source.Source, log *zap.Logger) error {
		names, err := src.List(context.Background())
		if err != nil {
			return fmt.Errorf("listing datasets: %w", err)
		}

		out := cmd.OutOrStdout()
		if len(names) == 0 {
			fmt.Fprintln(out, "No datasets found.")
			return nil
		}
		for _, name := range names {
			fmt.Fprintln(out, name)
		}

		log.Debug("datasets listed", zap.Int("count", len(names)))
		return nil
	})
}

func runDataPush(cmd *cobra.Command, args []string) error {
	return withSource(func(src source.Source, log *zap.Logger) error {
		path := args[0]
		name := pushName
		if name == "" {
			name = filepath.Base(path)
		}

		f, err := os.Open(path)
		if err != nil {
			return fmt.Errorf("opening %s: %w", path, err)
		}
		defer f.Close()

		if err := src.Put(context.Background(), name, f); err != nil {
			return fmt.Errorf("uploading %s: %w", name, err)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Uploaded %s\n", name)
		log.Info("dataset uploaded", zap.String("name", name), zap.String("path", path))
		return nil
	})
}
