package config

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"strings"

	"trust-bot/model"
	"trust-bot/trust"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Load loads the configuration from environment variables, the trust
// policy YAML and the per-guild JSON file.
func Load() (*model.Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("Info: .env file not found, relying on environment variables")
	}

	token := os.Getenv("BOT_TOKEN")
	if token == "" {
		log.Fatal("Error: BOT_TOKEN environment variable not set")
	}

	appID := os.Getenv("APP_ID")
	if appID == "" {
		log.Fatal("Error: APP_ID environment variable not set")
	}

	logChannelID := os.Getenv("LOG_CHANNEL_ID")
	if logChannelID == "" {
		log.Println("Warning: LOG_CHANNEL_ID not set, audit logging will be disabled")
	}

	dashboardAddr := os.Getenv("DASHBOARD_ADDR")
	if dashboardAddr == "" {
		dashboardAddr = ":8321"
	}

	dbPath := os.Getenv("TRUST_DB_PATH")
	if dbPath == "" {
		dbPath = "data/trust.db"
	}

	cfg := &model.Config{
		BotToken:          token,
		AppID:             appID,
		LogChannelID:      logChannelID,
		DashboardAddr:     dashboardAddr,
		DashboardToken:    os.Getenv("DASHBOARD_TOKEN"),
		TrustDBPath:       dbPath,
		DeveloperUserIDs:  splitList(os.Getenv("DEVELOPER_USER_IDS")),
		SuperAdminRoleIDs: splitList(os.Getenv("SUPER_ADMIN_ROLE_IDS")),
		ServerConfigs:     make(map[string]model.ServerConfig),
	}

	policy, err := loadTrustPolicy()
	if err != nil {
		return nil, err
	}
	cfg.TrustPolicy = policy

	if err := loadJSON("data/server_config.json", &cfg.ServerConfigs); err != nil {
		return nil, err
	}

	return cfg, nil
}

// loadTrustPolicy reads the escalation thresholds from
// config/trust_policy.yaml with sane defaults, overridable via
// TRUST_* environment variables.
func loadTrustPolicy() (model.TrustPolicyConfig, error) {
	v := viper.New()
	v.SetConfigName("trust_policy")
	v.SetConfigType("yaml")
	v.AddConfigPath("config")
	v.AddConfigPath(".")
	v.SetEnvPrefix("trust")
	v.AutomaticEnv()

	v.SetDefault("enabled", true)
	v.SetDefault("base", 30)
	v.SetDefault("min", 0)
	v.SetDefault("max", 100)
	v.SetDefault("warn_penalty", 5)
	v.SetDefault("mute_penalty", 15)
	v.SetDefault("regen_per_day", 1)
	v.SetDefault("regen_max_days", 7)
	v.SetDefault("low_threshold", 10)
	v.SetDefault("high_threshold", 60)
	v.SetDefault("low_trust_mute_multiplier", 2.0)
	v.SetDefault("high_trust_mute_multiplier", 0.5)
	v.SetDefault("max_warnings", 3)
	v.SetDefault("mute_base_duration_ms", 600000)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return model.TrustPolicyConfig{}, fmt.Errorf("failed to read trust policy config: %w", err)
		}
		log.Println("Warning: trust_policy.yaml not found, using defaults")
	}

	var policy model.TrustPolicyConfig
	if err := v.Unmarshal(&policy); err != nil {
		return model.TrustPolicyConfig{}, fmt.Errorf("failed to unmarshal trust policy config: %w", err)
	}
	if err := trust.ValidatePolicyConfig(policy); err != nil {
		return model.TrustPolicyConfig{}, err
	}

	return policy, nil
}

func loadJSON(path string, v interface{}) error {
	configFile, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			log.Printf("Warning: Config file not found at %s, skipping.", path)
			return nil
		}
		return err
	}
	return json.Unmarshal(configFile, v)
}

func splitList(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, ",")
}
