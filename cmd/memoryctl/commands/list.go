package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

// NewListCmd creates the list command
func NewListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List known users",
		Long:  "List the IDs of all users with a stored memory record",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, cleanup, err := openStore()
			if err != nil {
				return err
			}
			defer cleanup()

			users, err := store.Users(context.Background())
			if err != nil {
				return fmt.Errorf("failed to list users: %w", err)
			}

			if len(users) == 0 {
				fmt.Println("No user memories stored")
				return nil
			}
			for _, id := range users {
				fmt.Println(id)
			}
			return nil
		},
	}
}
