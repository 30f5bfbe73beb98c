package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/spigell/hackmatch/internal/hackathon"
	"github.com/spigell/hackmatch/internal/recommend"
)

const (
	app       = "hackmatch"
	envPrefix = "HACKMATCH"
)

type Config struct {
	Source      SourceConfig   `mapstructure:"source"`
	Skills      []string       `mapstructure:"skills"`
	Mode        string         `mapstructure:"mode" validate:"oneof=lexical combined"`
	Limit       int            `mapstructure:"limit" validate:"gte=1,lte=50"`
	ExcludeFile string         `mapstructure:"exclude-file"`
	Keywords    KeywordsConfig `mapstructure:"keywords"`
	Filters     FiltersConfig  `mapstructure:"filters"`
	Semantic    SemanticConfig `mapstructure:"semantic"`
	Review      ReviewConfig   `mapstructure:"review"`
	Database    DatabaseConfig `mapstructure:"database"`
}

type SourceConfig struct {
	CSV     string        `mapstructure:"csv"`
	Devpost DevpostConfig `mapstructure:"devpost"`
}

type DevpostConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	URL       string `mapstructure:"url" validate:"required_if=Enabled true,omitempty,url"`
	UserAgent string `mapstructure:"user-agent"`
}

type KeywordsConfig struct {
	CacheSize int `mapstructure:"cache-size" validate:"gte=0"`
}

type FiltersConfig struct {
	MinScore float64 `mapstructure:"min-score" validate:"gte=0,lte=1"`
	// DropUnmatched is nil when the mode default applies.
	DropUnmatched *bool `mapstructure:"drop-unmatched"`
}

type SemanticConfig struct {
	Model             string        `mapstructure:"model"`
	APIKey            string        `mapstructure:"api-key" json:"-"`
	APIKeyFile        string        `mapstructure:"api-key-file"`
	Timeout           time.Duration `mapstructure:"timeout" validate:"gt=0"`
	RequestsPerSecond float64       `mapstructure:"requests-per-second" validate:"gte=0"`
	MaxRetries        int           `mapstructure:"max-retries" validate:"gte=0"`
	Breaker           BreakerConfig `mapstructure:"breaker"`
}

type BreakerConfig struct {
	Failures uint32        `mapstructure:"failures"`
	Cooldown time.Duration `mapstructure:"cooldown" validate:"gte=0"`
}

type ReviewConfig struct {
	Enabled      bool   `mapstructure:"enabled"`
	Model        string `mapstructure:"model"`
	MaxLogLength int    `mapstructure:"max-log-length" validate:"gte=0"`
}

type DatabaseConfig struct {
	DSN string `mapstructure:"dsn" json:"-"`
}

var (
	// Used for flags.
	cfgFile string

	rootCmd = &cobra.Command{
		Use:   app,
		Short: "hackmatch ranks hackathons by how well they fit your skills",
	}
)

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "a config file (default is hackmatch.yaml in current directory)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")

	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))

	setDefaults(viper.GetViper())
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("mode", string(recommend.ModeLexical))
	v.SetDefault("limit", recommend.DefaultLimit)
	v.SetDefault("keywords.cache-size", 1024)
	v.SetDefault("source.devpost.url", hackathon.DevpostURL)
	v.SetDefault("semantic.timeout", 10*time.Second)
	v.SetDefault("semantic.requests-per-second", 5)
	v.SetDefault("semantic.max-retries", 3)
	v.SetDefault("semantic.breaker.failures", 5)
	v.SetDefault("semantic.breaker.cooldown", 30*time.Second)
	v.SetDefault("review.max-log-length", 2000)
}

func initConfig() {
	// A missing .env is fine, it only provides optional overrides.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Printf("loading .env: %v", err)
	}

	viper.SetEnvPrefix(envPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName(app)
		viper.SetConfigType("yaml")
	}

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		// Without an explicit --config the defaults and env are enough.
		if cfgFile != "" || !errors.As(err, &notFound) {
			log.Fatal(err)
		}
	}
}

func getConfig() (*Config, error) {
	return decodeConfig(viper.GetViper())
}

func decodeConfig(v *viper.Viper) (*Config, error) {
	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	config.Mode = strings.ToLower(strings.TrimSpace(config.Mode))
	if err := validator.New().Struct(&config); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &config, nil
}
