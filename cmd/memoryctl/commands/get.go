package commands

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

// NewGetCmd creates the get command
func NewGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <userId>",
		Short: "Show one user's memory record",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, cleanup, err := openStore()
			if err != nil {
				return err
			}
			defer cleanup()

			rec, found, err := store.Get(context.Background(), args[0])
			if err != nil {
				return fmt.Errorf("failed to read memory: %w", err)
			}
			if !found {
				fmt.Printf("No memory stored for %s\n", args[0])
				return nil
			}

			out, err := json.MarshalIndent(rec, "", "  ")
			if err != nil {
				return fmt.Errorf("failed to encode record: %w", err)
			}
			fmt.Println(string(out))
			return nil
		},
	}
}
