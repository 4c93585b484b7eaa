package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewExportCmd creates the export command
func NewExportCmd() *cobra.Command {
	var outPath string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the full memory snapshot",
		Long:  "Write every user's memory record as one JSON document, to stdout or a file",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, cleanup, err := openStore()
			if err != nil {
				return err
			}
			defer cleanup()

			snapshot, err := store.Snapshot(context.Background())
			if err != nil {
				return fmt.Errorf("failed to snapshot memory: %w", err)
			}

			out, err := json.MarshalIndent(snapshot, "", "  ")
			if err != nil {
				return fmt.Errorf("failed to encode snapshot: %w", err)
			}

			if outPath == "" {
				fmt.Println(string(out))
				return nil
			}
			if err := os.WriteFile(outPath, append(out, '\n'), 0o600); err != nil {
				return fmt.Errorf("failed to write %s: %w", outPath, err)
			}
			fmt.Printf("Exported %d users to %s\n", len(snapshot), outPath)
			return nil
		},
	}

	cmd.Flags().StringVarP(&outPath, "out", "o", "", "file to write instead of stdout")
	return cmd
}
