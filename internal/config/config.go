package config

import (
	"strings"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Server   ServerConfig
	MongoDB  MongoDBConfig
	JWT      JWTConfig
	Auction  AuctionConfig
	LogLevel string
}

// ServerConfig holds server-specific configuration
type ServerConfig struct {
	Port         string
	AllowedHosts []string
}

// MongoDBConfig holds MongoDB-specific configuration
type MongoDBConfig struct {
	URI      string
	Database string
}

// JWTConfig holds JWT-specific configuration
type JWTConfig struct {
	Secret    string
	ExpiresIn int // seconds
}

// AuctionConfig holds auction engine policy knobs
type AuctionConfig struct {
	// DefaultRoundSeconds is the round duration used when the operator
	// does not pass one explicitly
	DefaultRoundSeconds int
	// MinExtensionSeconds rejects noise extensions below this threshold
	MinExtensionSeconds int
	// InitialBudget is the budget assigned to newly registered teams
	InitialBudget int64
	// ShortfallAllocation awards teams that bid on fewer players than
	// required their best remaining player at the round's average winning
	// price
	ShortfallAllocation bool
}

// LoadConfig reads configuration from environment variables (and an optional
// config file in the given path), applying defaults for local development
func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(path)

	v.SetDefault("server.port", "8080")
	v.SetDefault("server.allowedhosts", []string{"*"})
	v.SetDefault("mongodb.uri", "mongodb://localhost:27017")
	v.SetDefault("mongodb.database", "auction")
	v.SetDefault("jwt.secret", "")
	v.SetDefault("jwt.expiresin", 86400)
	v.SetDefault("auction.defaultroundseconds", 48*3600)
	v.SetDefault("auction.minextensionseconds", 300)
	v.SetDefault("auction.initialbudget", 100000)
	v.SetDefault("auction.shortfallallocation", true)
	v.SetDefault("loglevel", "info")

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// The config file is optional; env vars are authoritative
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
