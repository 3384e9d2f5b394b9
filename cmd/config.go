package cmd

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/taskbridge/clickup-mcp/internal/upstream"
	"github.com/taskbridge/clickup-mcp/types"
)

const (
	configName = ".clickup-mcp"
	envPrefix  = "CLICKUP_MCP"
)

// GlobalAppConfig holds the global application configuration instance.
var GlobalAppConfig types.AppConfig

// validate is a single validator instance; it caches struct info.
var validate *validator.Validate

func init() {
	validate = validator.New()
}

func validateAppConfig(config *types.AppConfig) error {
	return validate.Struct(config)
}

// InitConfig reads in config file and ENV variables if set.
func InitConfig() {
	// Load .env file first if present; missing files are fine.
	_ = godotenv.Load()

	viper.SetEnvPrefix(envPrefix) // e.g., CLICKUP_MCP_UPSTREAM_APITOKEN
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if cfgFileFlag := viper.GetString("config"); cfgFileFlag != "" {
		viper.SetConfigFile(cfgFileFlag)
	} else {
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)
		viper.AddConfigPath(".")
		viper.AddConfigPath(home)
		viper.SetConfigName(configName)
	}

	if err := viper.ReadInConfig(); err == nil {
		if viper.GetBool("verbose") {
			fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
		}
	} else if _, notFound := err.(viper.ConfigFileNotFoundError); !notFound {
		fmt.Fprintln(os.Stderr, "Error reading config file:", viper.ConfigFileUsed(), "-", err)
	}

	// Keys without a natural default still need one registered, otherwise
	// AutomaticEnv never surfaces them to Unmarshal.
	viper.SetDefault("upstream.apiToken", "")
	viper.SetDefault("upstream.defaultTeamId", "")
	viper.SetDefault("upstream.baseUrl", upstream.DefaultBaseURL)
	viper.SetDefault("upstream.timeoutMs", 30000)

	viper.SetDefault("cache.hierarchyTtlMs", 300000)
	viper.SetDefault("cache.taskTtlMs", 60000)
	viper.SetDefault("cache.listPageTtlMs", 60000)
	viper.SetDefault("cache.searchTtlMs", 30000)

	viper.SetDefault("bulk.concurrency", 3)

	viper.SetDefault("writeAccess.mode", "open")
	viper.SetDefault("writeAccess.allowedSpaces", []string{})
	viper.SetDefault("writeAccess.allowedLists", []string{})
	viper.SetDefault("writeAccess.maxResolutions", 5)

	viper.SetDefault("fuzzy.resultLimit", 5)

	if err := viper.Unmarshal(&GlobalAppConfig); err != nil {
		fmt.Fprintf(os.Stderr, "Error unmarshaling config: %s\n", err)
		os.Exit(1)
	}

	if err := validateAppConfig(&GlobalAppConfig); err != nil {
		fmt.Fprintf(os.Stderr, "Configuration validation error: %s\n", err)
		os.Exit(1)
	}
}

// GetConfig returns a pointer to the global types.AppConfig instance.
func GetConfig() *types.AppConfig {
	return &GlobalAppConfig
}

// NewGateway builds the upstream HTTP client from the loaded configuration.
func NewGateway() *upstream.Client {
	cfg := GetConfig()
	return upstream.NewClient(upstream.ClientConfig{
		APIToken:      cfg.Upstream.APIToken,
		BaseURL:       cfg.Upstream.BaseURL,
		DefaultTeamID: cfg.Upstream.DefaultTeamID,
		Timeout:       time.Duration(cfg.Upstream.TimeoutMS) * time.Millisecond,
	})
}
