// Package config provides a reusable loader for the indexer's configuration
// files and environment variables.
//
// Version: v0.1.0
package config

import (
	"fmt"

	"github.com/spf13/viper"

	"dfiindexer/pkg/utils"
)

// Version is the semantic version of this configuration package.
const Version = "v0.1.0"

// Config represents the unified configuration for the indexer and its
// query tools. It mirrors the structure of the YAML files under
// cmd/config.
type Config struct {
	RPC struct {
		DriverPath string `mapstructure:"driver_path" json:"driver_path"`
		TimeoutMS  int    `mapstructure:"timeout_ms" json:"timeout_ms"`
	} `mapstructure:"rpc" json:"rpc"`

	Store struct {
		SqlitePath    string `mapstructure:"sqlite_path" json:"sqlite_path"`
		CommitEvery   int    `mapstructure:"commit_every" json:"commit_every"`
		PrevoutCache  int    `mapstructure:"prevout_cache" json:"prevout_cache"`
	} `mapstructure:"store" json:"store"`

	Graph struct {
		DataPath    string `mapstructure:"data_path" json:"data_path"`
		MetaPath    string `mapstructure:"meta_path" json:"meta_path"`
		BufferBytes int    `mapstructure:"buffer_bytes" json:"buffer_bytes"`
	} `mapstructure:"graph" json:"graph"`

	Log struct {
		DefidLogPath   string `mapstructure:"defid_log_path" json:"defid_log_path"`
		IcxMatcher     string `mapstructure:"icx_matcher" json:"icx_matcher"`
		IcxCalcMatcher string `mapstructure:"icx_calc_matcher" json:"icx_calc_matcher"`
		SwapMatcher    string `mapstructure:"swap_matcher" json:"swap_matcher"`
		Level          string `mapstructure:"level" json:"level"`
	} `mapstructure:"log" json:"log"`

	Status struct {
		Addr string `mapstructure:"addr" json:"addr"`
	} `mapstructure:"status" json:"status"`
}

// AppConfig holds the configuration loaded via Load or LoadFromEnv.
var AppConfig Config

// Load reads configuration files and merges any environment specific
// overrides. The resulting configuration is stored in AppConfig and returned.
//
// The function uses the provided environment name to merge additional config
// files. If env is empty, only the default configuration is loaded.
func Load(env string) (*Config, error) {
	viper.SetConfigName("default")
	viper.AddConfigPath("cmd/config")
	viper.AddConfigPath("config")
	viper.SetConfigType("yaml")
	setDefaults()
	if err := viper.ReadInConfig(); err != nil {
		if _, notFound := err.(viper.ConfigFileNotFoundError); !notFound {
			return nil, utils.Wrap(err, "load config")
		}
	}

	if env != "" {
		viper.SetConfigName(env)
		if err := viper.MergeInConfig(); err != nil {
			return nil, utils.Wrap(err, fmt.Sprintf("merge %s config", env))
		}
	}

	viper.AutomaticEnv() // picks up from .env / OS env

	if err := viper.Unmarshal(&AppConfig); err != nil {
		return nil, utils.Wrap(err, "unmarshal config")
	}
	return &AppConfig, nil
}

// LoadFromEnv loads configuration using the IDX_ENV environment variable.
func LoadFromEnv() (*Config, error) {
	return Load(utils.EnvOrDefault("IDX_ENV", ""))
}

func setDefaults() {
	viper.SetDefault("rpc.driver_path", "defi-cli")
	viper.SetDefault("rpc.timeout_ms", 30000)
	viper.SetDefault("store.sqlite_path", "data/index.sqlite")
	viper.SetDefault("store.commit_every", 10000)
	viper.SetDefault("store.prevout_cache", 100000)
	viper.SetDefault("graph.data_path", "data/graph.bin")
	viper.SetDefault("graph.meta_path", "data/graph.meta.bin")
	viper.SetDefault("graph.buffer_bytes", 64*1024*1024)
	viper.SetDefault("log.defid_log_path", "data/debug.log.gz")
	viper.SetDefault("log.icx_matcher", "ICX:")
	viper.SetDefault("log.icx_calc_matcher", "ICXCalc:")
	viper.SetDefault("log.swap_matcher", "SwapResult:")
	viper.SetDefault("log.level", "info")
	viper.SetDefault("status.addr", "")
}
