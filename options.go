package taxreg

import (
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/spf13/viper"
	"github.com/tfkr-ae/taxreg/domain"
)

// WithOptions applies a series of configuration functions to the server
// instance. Each option function can modify the server configuration and
// return an error if it fails.
func (server *Server) WithOptions(options ...func(*Server) error) error {
	for _, option := range options {
		err := option(server)
		if err != nil {
			return fmt.Errorf("applying option on taxreg : %w", err)
		}
	}
	return nil
}

// WithConfigDir configures the server to use the specified configuration
// directory. It creates the directory if it doesn't exist and initializes the
// configuration file using Viper.
func WithConfigDir(appConfigDir string) func(*Server) error {
	return func(server *Server) error {
		_, err := os.ReadDir(appConfigDir)
		if err != nil {
			if os.IsNotExist(err) {
				log.Println("[*] creating config dir")
				err := os.MkdirAll(appConfigDir, 0700)
				if err != nil {
					return fmt.Errorf("creating config dir %s: %w", appConfigDir, err)
				}
			} else {
				return fmt.Errorf("checking if directory exists %s: %w", appConfigDir, err)
			}
		}
		// At this point, the directory exists or was created successfully
		server.ConfigDir = appConfigDir

		// VIPER
		v := viper.New()
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(appConfigDir)
		v.SetDefault("default_address", "127.0.0.1")
		v.SetDefault("default_port", "65432")
		v.SetDefault("database_file", "taxreg.db")
		v.SetDefault("read_timeout", 30)
		err = v.ReadInConfig()
		if err != nil {
			// need to check if the error is config file doesn't exist
			if _, ok := err.(viper.ConfigFileNotFoundError); ok {
				// Config file is not found
				err = v.SafeWriteConfig()
				if err != nil {
					return fmt.Errorf("writing config file : %w", err)
				}
			} else {
				return fmt.Errorf("reading config file : %w", err)
			}
		}
		server.Config = &Config{viper: v}
		if err := v.Unmarshal(server.Config); err != nil {
			return fmt.Errorf("unmarshalling config to struct : %w", err)
		}

		server.Config.ConfigDir = appConfigDir
		server.Addr = server.Config.DefaultAddress
		server.Port = server.Config.DefaultPort
		server.ReadTimeout = time.Duration(server.Config.ReadTimeout) * time.Second
		// Rewrite entire file from struct
		err = v.WriteConfig()
		if err != nil {
			return fmt.Errorf("writing config after unmarshalling : %w", err)
		}
		return nil
	}
}

// WithRepo will take the Repository interface, closing any previously
// configured repository first.
func WithRepo(repo Repository) func(*Server) error {
	return func(server *Server) error {
		if server.Repo != nil {
			if err := server.Repo.Close(); err != nil {
				return err
			}
			server.Repo = nil
		}
		server.Repo = repo
		return nil
	}
}

// WithEndpoint overrides the address and port the server binds.
func WithEndpoint(address string, port string) func(*Server) error {
	return func(server *Server) error {
		if address == "" || port == "" {
			return errors.New("address and port must both be set")
		}
		server.Addr = address
		server.Port = port
		return nil
	}
}

// WithReadTimeout overrides the per-connection deadline. Zero disables
// deadlines entirely.
func WithReadTimeout(timeout time.Duration) func(*Server) error {
	return func(server *Server) error {
		if timeout < 0 {
			return errors.New("read timeout cannot be negative")
		}
		server.ReadTimeout = timeout
		return nil
	}
}

// WithLogHandler takes a handler function that will be executed on each Log
func WithLogHandler(handler func(log domain.Log) error) func(*Server) error {
	return func(server *Server) error {
		if server.OnLog != nil {
			return errors.New("server already has a log handler defined")
		}
		server.OnLog = handler
		return nil
	}
}
