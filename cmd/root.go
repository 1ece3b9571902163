package cmd

import (
	"log"

	"github.com/mkamenskiy/greenboard/internal/source"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const (
	app = "greenboard"
)

type Config struct {
	Sources  *SourcesConfig  `mapstructure:"sources"`
	Postgres *PostgresConfig `mapstructure:"postgres"`
	Redis    *RedisConfig    `mapstructure:"redis"`
	AI       *AIConfig       `mapstructure:"ai"`
	MinScore int             `mapstructure:"min-score"`
	Interval string          `mapstructure:"interval"`
}

type SourcesConfig struct {
	Adzuna *source.AdzunaConfig `mapstructure:"adzuna"`
	Reed   *source.ReedConfig   `mapstructure:"reed"`
}

type PostgresConfig struct {
	DSN string `mapstructure:"dsn"`
}

type RedisConfig struct {
	URL string `mapstructure:"url"`
}

type AIConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Provider string        `mapstructure:"provider"`
	Gemini   *GeminiConfig `mapstructure:"gemini"`
}

type GeminiConfig struct {
	APIKeyFile   string `mapstructure:"api-key-file"`
	Model        string `mapstructure:"model"`
	MaxLogLength int    `mapstructure:"max-log-length"`
}

var (
	// Used for flags.
	cfgFile string

	rootCmd = &cobra.Command{
		Use:   app,
		Short: "greenboard collects sustainability job postings, checks visa sponsorship prospects and ranks them",
	}
)

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	if err := viper.BindEnv("postgres.dsn", "GREENBOARD_POSTGRES_DSN"); err != nil {
		log.Fatalf("binding GREENBOARD_POSTGRES_DSN environment variable: %v", err)
	}
	if err := viper.BindEnv("redis.url", "GREENBOARD_REDIS_URL"); err != nil {
		log.Fatalf("binding GREENBOARD_REDIS_URL environment variable: %v", err)
	}

	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "a config file (default is greenboard.yaml in current directory)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")

	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
}

func initConfig() {
	// The version command works without a config file.
	if versionCmd.CalledAs() != "" {
		return
	}

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName(app + ".yaml")
	}

	// We can't proceed if the config file parsed with error.
	if err := viper.ReadInConfig(); err != nil {
		log.Fatal(err)
	}
}

func getConfig() (*Config, error) {
	var config *Config
	err := viper.Unmarshal(&config)
	if err != nil {
		return config, err
	}

	return config, nil
}
