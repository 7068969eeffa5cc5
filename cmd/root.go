package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/tfkr-ae/taxreg/cmd/serve"
	"github.com/tfkr-ae/taxreg/cmd/user"
)

const (
	Version = "1.0.0"
)

var (

	// RootCmd represents the base command when called without any subcommands
	RootCmd = &cobra.Command{
		Use:   "taxreg",
		Short: "taxpayer registry server and client",
		Long: fmt.Sprintf(`taxreg (v%s)

A taxpayer registry service with a TCP JSON protocol, SQLite
storage and a command-line client.`, Version),
	}
	versionCmd = &cobra.Command{
		Use:   "version",
		Short: "Print the version number of taxreg",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("taxreg v%s\n", Version)
		},
	}
)

func init() {
	// Add Commands
	RootCmd.AddCommand(serve.ServeCmd)
	RootCmd.AddCommand(user.UserCommands)
	RootCmd.AddCommand(versionCmd)
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the RootCmd.
func Execute() {
	if err := RootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
