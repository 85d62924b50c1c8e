package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func main() {
	_ = godotenv.Load()

	rootCmd := &cobra.Command{
		Use:           "rmsctl",
		Short:         "Hotel revenue management CLI",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().String("config", "", "path to YAML config (defaults to RMS_CONFIG_PATH)")

	rootCmd.AddCommand(
		migrateCmd(),
		seedCmd(),
		cycleCmd(),
		priceCmd(),
		overrideCmd(),
		simulateCmd(),
		parityCmd(),
		runsCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
