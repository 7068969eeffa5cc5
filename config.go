package taxreg

import (
	"fmt"

	"github.com/spf13/viper"
)

// Config is the persisted server configuration, read from and written back to
// config.yaml inside the configuration directory.
type Config struct {
	viper          *viper.Viper
	ConfigDir      string `mapstructure:"config_dir"`      // Current config dir
	DefaultAddress string `mapstructure:"default_address"` // Address the server binds by default
	DefaultPort    string `mapstructure:"default_port"`    // Port the server binds by default
	DatabaseFile   string `mapstructure:"database_file"`   // SQLite database filename inside the config dir
	ReadTimeout    int    `mapstructure:"read_timeout"`    // Per-connection deadline in seconds, 0 disables
}

// SetEndpoint updates the default address and port and persists the change.
func (cfg *Config) SetEndpoint(address string, port string) error {
	cfg.DefaultAddress = address
	cfg.DefaultPort = port
	cfg.viper.Set("default_address", address)
	cfg.viper.Set("default_port", port)
	if err := cfg.viper.WriteConfig(); err != nil {
		return fmt.Errorf("failed to save configuration: %w", err)
	}
	if err := cfg.viper.Unmarshal(&cfg); err != nil {
		return fmt.Errorf("unmarshalling config to struct : %w", err)
	}
	return nil
}
