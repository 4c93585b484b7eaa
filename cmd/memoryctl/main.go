package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/aimeelabs/aimee-backend/cmd/memoryctl/commands"
)

func main() {
	var rootCmd = &cobra.Command{
		Use:   "memoryctl",
		Short: "Memory store tool for the AImee backend",
		Long:  "CLI tool for inspecting and maintaining the user memory file",
	}

	rootCmd.AddCommand(commands.NewListCmd())
	rootCmd.AddCommand(commands.NewGetCmd())
	rootCmd.AddCommand(commands.NewExportCmd())
	rootCmd.AddCommand(commands.NewPrivacyCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
