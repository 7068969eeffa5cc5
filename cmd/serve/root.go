package serve

import (
	"fmt"
	"os"
	"path"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/tfkr-ae/taxreg"
	cmdUtil "github.com/tfkr-ae/taxreg/cmd/util"
	"github.com/tfkr-ae/taxreg/db"
	"github.com/tfkr-ae/taxreg/domain"
)

var (
	// ServeCmd represents the serve command
	ServeCmd = &cobra.Command{
		Use:   "serve",
		Short: "Start the taxreg server",
		Long:  `Start the taxreg server with the specified configuration. The configuration can be set via command line flags or environment variables. The format of the environment variables is TAXREG_<flag> (e.g. TAXREG_PORT=65432)`,
		RunE:  run,
	}
)

func init() {
	// initialize viper
	cobra.OnInitialize(cmdUtil.InitConfig)

	// add flags
	key := "config-dir"
	ServeCmd.PersistentFlags().String(key, "", cmdUtil.WrapString("Configuration directory. Defaults to the taxreg folder under the user configuration directory"))

	key = "address"
	ServeCmd.PersistentFlags().String(key, "", cmdUtil.WrapString("The address on which the server will listen. Overrides the configured default"))

	key = "port"
	ServeCmd.PersistentFlags().String(key, "", cmdUtil.WrapString("The port on which the server will listen. Overrides the configured default"))

	key = "read-timeout"
	ServeCmd.PersistentFlags().Int(key, -1, cmdUtil.WrapString("Per-connection deadline in seconds. Zero disables deadlines. Overrides the configured default"))

	key = "verbose"
	ServeCmd.PersistentFlags().Bool(key, false, cmdUtil.WrapString("Print every persisted log entry to stdout"))
}

// run builds the server from the resolved configuration and serves until the
// listener is closed.
func run(cmd *cobra.Command, _ []string) error {
	if err := cmdUtil.BindCommandFlags(cmd); err != nil {
		return err
	}

	configDir := viper.GetString("config-dir")
	if configDir == "" {
		userConfigDir, err := os.UserConfigDir()
		if err != nil {
			return fmt.Errorf("resolving user config dir : %w", err)
		}
		configDir = path.Join(userConfigDir, "taxreg")
	}

	options := []func(*taxreg.Server) error{
		taxreg.WithConfigDir(configDir),
	}
	if viper.GetBool("verbose") {
		options = append(options, taxreg.WithLogHandler(func(entry domain.Log) error {
			fmt.Printf("[%s] %s %s\n", entry.Level, entry.Timestamp.Format(time.RFC3339), entry.Message)
			return nil
		}))
	}

	server, err := taxreg.New(options...)
	if err != nil {
		return fmt.Errorf("creating server : %w", err)
	}

	dbConn, err := db.New(path.Join(configDir, server.Config.DatabaseFile))
	if err != nil {
		return fmt.Errorf("opening database : %w", err)
	}
	if err := server.WithOptions(taxreg.WithRepo(db.NewRegistryRepo(dbConn))); err != nil {
		return err
	}

	address := server.Addr
	if flagAddress := viper.GetString("address"); flagAddress != "" {
		address = flagAddress
	}
	port := server.Port
	if flagPort := viper.GetString("port"); flagPort != "" {
		port = flagPort
	}
	if readTimeout := viper.GetInt("read-timeout"); readTimeout >= 0 {
		if err := server.WithOptions(taxreg.WithReadTimeout(time.Duration(readTimeout) * time.Second)); err != nil {
			return err
		}
	}

	l, err := server.GetListener(address, port)
	if err != nil {
		return fmt.Errorf("binding %s:%s : %w", address, port, err)
	}
	defer server.Close()

	fmt.Printf("taxreg server listening on %s:%s\n", address, port)
	return server.Serve(l)
}
