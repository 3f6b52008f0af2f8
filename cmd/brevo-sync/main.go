package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var (
	version   = "dev"
	buildTime = "unknown"
)

var configFile string

var rootCmd = &cobra.Command{
	Use:           "brevo-sync",
	Short:         "Brevo contact connector",
	Long:          `brevo-sync connects to a Brevo account, keeps its webhook subscription in place and ingests contact notifications.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "brevo-sync %s (built %s)\n", version, buildTime)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "brevo.yaml", "Path to configuration file")
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(connectCmd)
	rootCmd.AddCommand(infoCmd)
	rootCmd.AddCommand(webhooksCmd)
	rootCmd.AddCommand(configCmd)
}

func main() {
	// .env is optional
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
