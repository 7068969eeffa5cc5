package user

import (
	"github.com/spf13/cobra"
	"github.com/tfkr-ae/taxreg"
	"github.com/tfkr-ae/taxreg/cmd/util"
)

var (
	client *taxreg.Client

	// UserCommands represents the user command group
	UserCommands = &cobra.Command{
		Use:               "user",
		Short:             "Perform registry operations against a running server",
		PersistentPreRunE: setupClient,
	}
)

func init() {
	// Initialize viper
	cobra.OnInitialize(util.InitConfig)

	// Add common connection flags to the user command
	util.SetupClientFlags(UserCommands)

	// Add subcommands
	UserCommands.AddCommand(loginCmd)
	UserCommands.AddCommand(registerCmd)
	UserCommands.AddCommand(saveCmd)
	UserCommands.AddCommand(findCmd)
	UserCommands.AddCommand(retrieveCmd)
}

// setupClient initializes the registry client
func setupClient(cmd *cobra.Command, _ []string) error {
	// Bind command flags to viper
	if err := util.BindCommandFlags(cmd); err != nil {
		return err
	}

	client = util.GetClient()
	return nil
}
