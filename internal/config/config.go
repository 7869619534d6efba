package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/rs/zerolog"
)

// Config holds the application configuration, parsed from the environment.
type Config struct {
	Port          string `env:"PORT"           envDefault:"8080"`
	MongoURI      string `env:"MONGO_URI"      envDefault:"mongodb://localhost:27017"`
	MongoDatabase string `env:"MONGO_DATABASE" envDefault:"jotter"`

	// AppBaseURL is the frontend base used to build verification and
	// password reset links embedded in emails.
	AppBaseURL string `env:"APP_BASE_URL" envDefault:"http://localhost:3000"`

	Token    TokenConfig
	Key      KeyConfig
	Provider ProviderConfig
}

// TokenConfig configures JWT issuance. Access and refresh tokens are
// signed with distinct secrets.
type TokenConfig struct {
	Issuer                string        `env:"TOKEN_ISSUER"            envDefault:"jotter-api"`
	AccessTokenSecret     string        `env:"ACCESS_TOKEN_SECRET"`
	RefreshTokenSecret    string        `env:"REFRESH_TOKEN_SECRET"`
	AccessTokenExpiresIn  time.Duration `env:"ACCESS_TOKEN_EXPIRES_IN"  envDefault:"15m"`
	RefreshTokenExpiresIn time.Duration `env:"REFRESH_TOKEN_EXPIRES_IN" envDefault:"168h"`
}

// KeyConfig configures one-time verification/reset keys.
type KeyConfig struct {
	TTL time.Duration `env:"ONE_TIME_KEY_TTL" envDefault:"5m"`
}

// ProviderConfig carries OAuth provider endpoint overrides. Empty values
// mean the production endpoints.
type ProviderConfig struct {
	GoogleUserInfoURL string `env:"GOOGLE_USERINFO_URL"`
	GoogleRevokeURL   string `env:"GOOGLE_REVOKE_URL"`
	FacebookGraphURL  string `env:"FACEBOOK_GRAPH_URL"`
}

// Load parses the configuration from environment variables.
func Load(logger *zerolog.Logger) *Config {
	cfg, err := env.ParseAs[Config]()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to parse environment variables")
	}

	if err := cfg.validate(); err != nil {
		logger.Fatal().Err(err).Msg("failed to validate configuration")
	}

	return &cfg
}

func (c *Config) validate() error {
	if c.Token.AccessTokenSecret == "" {
		return fmt.Errorf("missing ACCESS_TOKEN_SECRET environment variable")
	}
	if c.Token.RefreshTokenSecret == "" {
		return fmt.Errorf("missing REFRESH_TOKEN_SECRET environment variable")
	}

	return nil
}
