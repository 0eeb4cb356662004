package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// Config holds saved connection defaults. Flags always win over the
// file.
type Config struct {
	Port    string `yaml:"port"`
	Baud    int    `yaml:"baud"`
	URL     string `yaml:"url"`
	RobotID string `yaml:"robot_id"`
	NATSURL string `yaml:"nats_url"`
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() *Config {
	return &Config{
		Baud:    115200,
		RobotID: "dashan",
		NATSURL: "nats://localhost:4222",
	}
}

func defaultConfigPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "dashan-host.yaml"
	}
	return filepath.Join(dir, "dashan-host", "config.yaml")
}

// LoadConfig reads the YAML config, falling back to defaults when the
// file is missing or malformed.
func LoadConfig(path string) *Config {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		log.Printf("[config] error parsing %s: %v, using defaults", path, err)
		return DefaultConfig()
	}
	return cfg
}

// Save writes the config, creating the parent directory if needed.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}
	return os.WriteFile(path, data, 0644)
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show the effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := Config{
			Port:    portName,
			Baud:    baudRate,
			URL:     wsURL,
			RobotID: robotID,
			NATSURL: natsURL,
		}
		data, err := yaml.Marshal(&cfg)
		if err != nil {
			return err
		}
		fmt.Printf("# %s\n%s", configPath, data)
		return nil
	},
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write the current settings to the config file",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := Config{
			Port:    portName,
			Baud:    baudRate,
			URL:     wsURL,
			RobotID: robotID,
			NATSURL: natsURL,
		}
		if err := cfg.Save(configPath); err != nil {
			return fmt.Errorf("failed to write config: %w", err)
		}
		fmt.Printf("Wrote %s\n", configPath)
		return nil
	},
}

func init() {
	configCmd.AddCommand(configInitCmd)
	rootCmd.AddCommand(configCmd)
}
