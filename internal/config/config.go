// Copyright 2023 Blink Labs Software
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://opensource.org/licenses/MIT.

package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/blinklabs-io/powtarget/consensus"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

type Config struct {
	Logging  LoggingConfig `yaml:"logging"`
	Metrics  MetricsConfig `yaml:"metrics"`
	Debug    DebugConfig   `yaml:"debug"`
	State    StateConfig   `yaml:"state"`
	Network  NetworkConfig `yaml:"network"`
	Replay   ReplayConfig  `yaml:"replay"`
	Profiles []string      `yaml:"profiles" envconfig:"PROFILES"`
}

const (
	LogFormatJSON    = "json"
	LogFormatConsole = "console"
)

type LoggingConfig struct {
	Level       string `yaml:"level"       envconfig:"LOGGING_LEVEL"`
	Debug       bool   `yaml:"debug"       envconfig:"LOGGING_DEBUG"`
	Format      string `yaml:"format"      envconfig:"LOGGING_FORMAT"`
	Development bool   `yaml:"development" envconfig:"LOGGING_DEVELOPMENT"`
}

type DebugConfig struct {
	ListenAddress string `yaml:"address" envconfig:"DEBUG_ADDRESS"`
	ListenPort    uint   `yaml:"port"    envconfig:"DEBUG_PORT"`
}

type MetricsConfig struct {
	ListenAddress string `yaml:"address" envconfig:"METRICS_LISTEN_ADDRESS"`
	ListenPort    uint   `yaml:"port"    envconfig:"METRICS_LISTEN_PORT"`
}

type StateConfig struct {
	Directory string `yaml:"dir" envconfig:"STATE_DIR"`
}

type NetworkConfig struct {
	Name string `yaml:"name" envconfig:"NETWORK"`
}

type ReplayConfig struct {
	Workers    int    `yaml:"workers"    envconfig:"REPLAY_WORKERS"`
	ImportFile string `yaml:"importFile" envconfig:"REPLAY_IMPORT_FILE"`
	FailFast   bool   `yaml:"failFast"   envconfig:"REPLAY_FAIL_FAST"`
}

// Singleton config instance with default values
var globalConfig = &Config{
	Logging: LoggingConfig{
		Level:  "info",
		Format: LogFormatJSON,
	},
	Debug: DebugConfig{
		ListenAddress: "localhost",
		ListenPort:    0,
	},
	Metrics: MetricsConfig{
		ListenAddress: "",
		ListenPort:    8081,
	},
	State: StateConfig{
		Directory: "./.state",
	},
	Network: NetworkConfig{
		Name: string(consensus.Mainnet),
	},
	Replay: ReplayConfig{
		Workers: 4,
	},
}

func Load(configFile string) (*Config, error) {
	// Load config file as YAML if provided
	if configFile != "" {
		buf, err := os.ReadFile(configFile)
		if err != nil {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		err = yaml.Unmarshal(buf, globalConfig)
		if err != nil {
			return nil, fmt.Errorf("error parsing config file: %w", err)
		}
	}
	// Load config values from environment variables
	// We use "dummy" as the app name here to (mostly) prevent picking up env
	// vars that we hadn't explicitly specified in annotations above
	err := envconfig.Process("dummy", globalConfig)
	if err != nil {
		return nil, fmt.Errorf("error processing environment: %w", err)
	}
	if globalConfig.Logging.Debug {
		globalConfig.Logging.Level = "debug"
	}
	switch globalConfig.Logging.Format {
	case LogFormatJSON, LogFormatConsole:
	default:
		return nil, fmt.Errorf(
			"invalid logging format: %s: must be %s or %s",
			globalConfig.Logging.Format,
			LogFormatJSON,
			LogFormatConsole,
		)
	}
	if globalConfig.Replay.Workers < 1 {
		return nil, fmt.Errorf(
			"invalid replay worker count: %d",
			globalConfig.Replay.Workers,
		)
	}
	// Check profiles
	availableProfiles := GetAvailableProfiles()
	for _, profile := range globalConfig.Profiles {
		if _, ok := Profiles[profile]; !ok {
			return nil, fmt.Errorf(
				"unknown profile: %s: available profiles: %s",
				profile,
				strings.Join(availableProfiles, ","),
			)
		}
	}
	// Make sure the network and profiles produce usable parameters
	if _, err := globalConfig.ConsensusParams(); err != nil {
		return nil, err
	}
	return globalConfig, nil
}

// ConsensusParams returns the parameters of the configured network with
// any configured profiles applied
func (c *Config) ConsensusParams() (*consensus.Params, error) {
	params, err := consensus.SelectNetwork(c.Network.Name)
	if err != nil {
		return nil, err
	}
	for _, name := range c.Profiles {
		profile, ok := Profiles[name]
		if !ok {
			return nil, fmt.Errorf("unknown profile: %s", name)
		}
		profile.apply(params)
	}
	if err := params.Validate(); err != nil {
		return nil, fmt.Errorf("invalid consensus params: %w", err)
	}
	return params, nil
}

// GetConfig returns the global config instance
func GetConfig() *Config {
	return globalConfig
}
