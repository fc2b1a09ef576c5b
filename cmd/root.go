package cmd

import (
	"log"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const (
	app = "jobmatch"
)

type Config struct {
	Server   *ServerConfig   `mapstructure:"server"`
	Search   *SearchConfig   `mapstructure:"search"`
	Provider *ProviderConfig `mapstructure:"provider"`
	AI       *AIConfig       `mapstructure:"ai"`
	Sink     *SinkConfig     `mapstructure:"sink"`
}

type ServerConfig struct {
	Address string `mapstructure:"address"`
}

type SearchConfig struct {
	Location      string   `mapstructure:"location"`
	FallbackQuery string   `mapstructure:"fallback-query"`
	MaxResults    int      `mapstructure:"max-results"`
	TopK          int      `mapstructure:"top-k"`
	Blocklist     []string `mapstructure:"blocklist"`
}

type ProviderConfig struct {
	APIKeyFile        string  `mapstructure:"api-key-file"`
	APIURL            string  `mapstructure:"api-url"`
	UserAgent         string  `mapstructure:"user-agent"`
	RequestsPerSecond float64 `mapstructure:"requests-per-second"`
	Burst             int     `mapstructure:"burst"`
}

type AIConfig struct {
	Enabled         bool   `mapstructure:"enabled"`
	Model           string `mapstructure:"model"`
	APIKeyFile      string `mapstructure:"api-key-file"`
	CooldownSeconds int    `mapstructure:"cooldown-seconds"`
	MaxLogLength    int    `mapstructure:"max-log-length"`
}

type SinkConfig struct {
	Path string `mapstructure:"path"`
}

var (
	// Used for flags.
	cfgFile string

	rootCmd = &cobra.Command{
		Use:   app,
		Short: "jobmatch turns a candidate search signal into a ranked, filtered list of job postings",
	}
)

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	if err := viper.BindEnv("provider.api-key-file", "JOOBLE_KEY_FILE"); err != nil {
		log.Fatalf("binding JOOBLE_KEY_FILE environment variable: %v", err)
	}
	if err := viper.BindEnv("ai.api-key-file", "GEMINI_API_KEY_FILE"); err != nil {
		log.Fatalf("binding GEMINI_API_KEY_FILE environment variable: %v", err)
	}

	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "a config file (default is jobmatch.yaml in current directory)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")

	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
}

func initConfig() {
	// Config needed only for serve and search commands. If there is no
	// config, we can skip initialization
	if serveCmd.CalledAs() == "" && searchCmd.CalledAs() == "" {
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
