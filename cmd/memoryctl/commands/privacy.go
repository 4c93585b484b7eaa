package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aimeelabs/aimee-backend/internal/models"
)

// NewPrivacyCmd creates the privacy command
func NewPrivacyCmd() *cobra.Command {
	var enable, disable bool

	cmd := &cobra.Command{
		Use:   "privacy <userId>",
		Short: "Show or change a user's privacy mode",
		Long:  "Without flags, prints the user's privacy settings. With --enable or --disable, toggles privacy mode.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if enable && disable {
				return fmt.Errorf("--enable and --disable are mutually exclusive")
			}

			store, cleanup, err := openStore()
			if err != nil {
				return err
			}
			defer cleanup()

			ctx := context.Background()
			userID := args[0]

			if !enable && !disable {
				rec, found, err := store.Get(ctx, userID)
				if err != nil {
					return fmt.Errorf("failed to read memory: %w", err)
				}
				if !found {
					fmt.Printf("No memory stored for %s\n", userID)
					return nil
				}
				settings := rec.ActivePrivacy()
				fmt.Printf("Privacy mode: %v\n", settings.Enabled)
				fmt.Printf("Consent to store: %v\n", settings.ConsentToStore)
				fmt.Printf("Retention days: %d\n", settings.DataRetentionDays)
				return nil
			}

			enabled := enable
			settings, err := store.SetPrivacy(ctx, userID, &models.PrivacyPatch{Enabled: &enabled})
			if err != nil {
				return fmt.Errorf("failed to update privacy: %w", err)
			}
			fmt.Printf("Privacy mode for %s is now %v\n", userID, settings.Enabled)
			return nil
		},
	}

	cmd.Flags().BoolVar(&enable, "enable", false, "turn privacy mode on")
	cmd.Flags().BoolVar(&disable, "disable", false, "turn privacy mode off")
	return cmd
}
