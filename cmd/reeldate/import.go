package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/heimdex/reeldate/internal/catalog"
)

var importCmd = &cobra.Command{
	Use:   "import <dir>",
	Short: "Add the media files under a folder to the catalog",
	Long: `Walks dir, skipping hidden directories, and registers every video,
image and audio file in the catalog's root bin. Files already in the
catalog are left as they are.`,
	Args: cobra.ExactArgs(1),
	RunE: runImport,
}

func init() {
	rootCmd.AddCommand(importCmd)
}

func runImport(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	var result catalog.ImportResult
	_, err = a.service.Track(cmd.Context(), catalog.RunOpImport, false, func(ctx context.Context) (any, error) {
		var err error
		result, err = a.service.Import(ctx, args[0])
		return result, err
	})
	if err != nil {
		return fmt.Errorf("import failed: %w", err)
	}

	cmd.Printf("Imported %d new, %d already present, %d failed.\n", result.Added, result.Existing, result.Failed)
	return nil
}
