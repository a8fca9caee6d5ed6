package config

import (
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	ConfigDebug        = "debug"
	ConfigDataPath     = "data-path"
	ConfigConfigFile   = "config-file"
	ConfigThreads      = "threads"
	ConfigSolveTimeout = "solve-timeout"
	ConfigNatsURL      = "nats-url"
	ConfigNatsSubject  = "nats-subject"
	ConfigDBPath       = "db-path"
	ConfigCPUProfile   = "cpu-profile"
	ConfigMemProfile   = "mem-profile"
	ConfigLargeNumbers = "large-numbers"
	ConfigMetricsAddr  = "metrics-addr"
)

type Config struct {
	*viper.Viper
	args []string
}

func DefaultConfig() *Config {
	c := &Config{}
	if err := c.Load(nil); err != nil {
		// defaults alone can't fail to parse.
		panic(err)
	}
	return c
}

// Load reads settings from, in increasing order of precedence, defaults,
// an optional YAML config file, COUNTDOWN_* environment variables, and
// --key=value arguments. Positional arguments are kept and returned by
// Args.
func (c *Config) Load(args []string) error {
	c.Viper = viper.New()

	c.SetDefault(ConfigDebug, false)
	c.SetDefault(ConfigDataPath, "./data")
	c.SetDefault(ConfigThreads, max(1, runtime.NumCPU()-1))
	c.SetDefault(ConfigSolveTimeout, 60*time.Second)
	c.SetDefault(ConfigNatsURL, "nats://localhost:4222")
	c.SetDefault(ConfigNatsSubject, "countdown.solve")
	c.SetDefault(ConfigDBPath, "")
	c.SetDefault(ConfigLargeNumbers, 1)
	c.SetDefault(ConfigMetricsAddr, ":9100")

	c.SetEnvPrefix("countdown")
	c.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	c.AutomaticEnv()

	fs := pflag.NewFlagSet("countdown", pflag.ContinueOnError)
	fs.Bool(ConfigDebug, false, "debug logging on")
	fs.String(ConfigDataPath, "./data", "directory holding puzzle sets and scripts")
	fs.String(ConfigConfigFile, "", "optional YAML config file")
	fs.Int(ConfigThreads, 0, "number of solver threads for batch runs")
	fs.Duration(ConfigSolveTimeout, 0, "maximum time for a single solve")
	fs.String(ConfigNatsURL, "", "NATS server URL")
	fs.String(ConfigNatsSubject, "", "NATS subject for solve requests")
	fs.String(ConfigDBPath, "", "sqlite database for batch results")
	fs.String(ConfigCPUProfile, "", "write a CPU profile to this file")
	fs.String(ConfigMemProfile, "", "write a memory profile to this file")
	fs.Int(ConfigLargeNumbers, 0, "number of large tiles in random deals")
	fs.String(ConfigMetricsAddr, "", "listen address for the metrics endpoint")
	if err := fs.Parse(args); err != nil {
		return err
	}
	c.args = fs.Args()

	// only explicitly passed flags override the environment.
	fs.Visit(func(f *pflag.Flag) {
		c.Set(f.Name, f.Value.String())
	})

	if cfgFile := c.GetString(ConfigConfigFile); cfgFile != "" {
		c.SetConfigFile(cfgFile)
		c.SetConfigType("yaml")
		if err := c.MergeInConfig(); err != nil {
			return err
		}
		log.Debug().Str("file", cfgFile).Msg("merged-config-file")
	}
	return nil
}

// Args returns the positional arguments left over after flag parsing.
func (c *Config) Args() []string {
	return c.args
}

// AdjustRelativePaths makes a relative data path relative to the
// executable's directory.
func (c *Config) AdjustRelativePaths(basepath string) {
	dp := c.GetString(ConfigDataPath)
	if filepath.IsAbs(dp) {
		return
	}
	c.Set(ConfigDataPath, filepath.Join(basepath, dp))
}

func (c *Config) SanitizedSettings() map[string]any {
	return c.AllSettings()
}
