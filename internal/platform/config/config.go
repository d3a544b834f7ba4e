package config

import (
	"log"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds application configuration, bound through viper so every
// setting has one source of truth with a typed default.
type Config struct {
	DatabaseURL   string
	Port          string
	IsProduction  bool
	EnableDBCheck bool

	// JWTSecret verifies the bearer token the external session/organization
	// collaborator issues; TenantContext uses it to resolve organizationID
	// and actorID for every request (see spec §1, §5).
	JWTSecret string
}

// LoadConfig loads configuration from environment variables, with a local
// .env file (if present) loaded first so viper's AutomaticEnv picks it up.
func LoadConfig() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("PORT", "8080")
	v.SetDefault("IS_PRODUCTION", false)
	v.SetDefault("ENABLE_DB_CHECK", false)
	v.SetDefault("JWT_SECRET", "a-very-secret-key-should-be-longer-and-random")

	cfg := &Config{
		DatabaseURL:   v.GetString("PGSQL_URL"),
		Port:          v.GetString("PORT"),
		IsProduction:  v.GetBool("IS_PRODUCTION"),
		EnableDBCheck: v.GetBool("ENABLE_DB_CHECK"),
		JWTSecret:     v.GetString("JWT_SECRET"),
	}

	if cfg.DatabaseURL == "" {
		log.Println("Warning: PGSQL_URL environment variable not set.")
	}
	if cfg.JWTSecret == "a-very-secret-key-should-be-longer-and-random" {
		log.Println("Warning: JWT_SECRET environment variable not set. Using default insecure key.")
	}

	return cfg, nil
}
