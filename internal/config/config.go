package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	envPrefix           = "VISION"
	defaultHTTPAddress  = "127.0.0.1:8090"
	defaultDatabasePath = "vision.db"
	defaultLogLevel     = "info"
	defaultTokenTTL     = 720 // minutes
	defaultStudentUser  = "usuario8977"
	defaultStudentPass  = "believe777"
	defaultAdminUser    = "edgar2026"
	defaultAdminPass    = "believe2026"
)

// AppConfig captures runtime configuration for the catalog service.
type AppConfig struct {
	HTTPAddress   string
	DatabasePath  string
	LogLevel      string
	GatewayURL    string
	SigningSecret string
	TokenTTL      time.Duration
	StudentUser   string
	StudentPass   string
	AdminUser     string
	AdminPass     string
}

// NewViper returns a viper instance with defaults and env bindings configured.
func NewViper() *viper.Viper {
	configViper := viper.New()
	ApplyDefaults(configViper)
	return configViper
}

// ApplyDefaults configures defaults and env bindings on the provided viper instance.
func ApplyDefaults(configViper *viper.Viper) {
	configViper.SetEnvPrefix(envPrefix)
	configViper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	configViper.AutomaticEnv()

	configViper.SetDefault("http.address", defaultHTTPAddress)
	configViper.SetDefault("database.path", defaultDatabasePath)
	configViper.SetDefault("log.level", defaultLogLevel)
	configViper.SetDefault("gateway.url", "")
	configViper.SetDefault("session.token_ttl_minutes", defaultTokenTTL)
	configViper.SetDefault("credentials.student.user", defaultStudentUser)
	configViper.SetDefault("credentials.student.pass", defaultStudentPass)
	configViper.SetDefault("credentials.admin.user", defaultAdminUser)
	configViper.SetDefault("credentials.admin.pass", defaultAdminPass)
}

// Load parses runtime configuration from viper.
func Load(configViper *viper.Viper) (AppConfig, error) {
	cfg := AppConfig{
		HTTPAddress:   configViper.GetString("http.address"),
		DatabasePath:  configViper.GetString("database.path"),
		LogLevel:      configViper.GetString("log.level"),
		GatewayURL:    configViper.GetString("gateway.url"),
		SigningSecret: configViper.GetString("session.signing_secret"),
		TokenTTL:      time.Duration(configViper.GetInt("session.token_ttl_minutes")) * time.Minute,
		StudentUser:   configViper.GetString("credentials.student.user"),
		StudentPass:   configViper.GetString("credentials.student.pass"),
		AdminUser:     configViper.GetString("credentials.admin.user"),
		AdminPass:     configViper.GetString("credentials.admin.pass"),
	}

	if err := cfg.validate(); err != nil {
		return AppConfig{}, err
	}

	return cfg, nil
}

func (c AppConfig) validate() error {
	if strings.TrimSpace(c.SigningSecret) == "" {
		return fmt.Errorf("session.signing_secret is required")
	}
	if strings.TrimSpace(c.DatabasePath) == "" {
		return fmt.Errorf("database.path is required")
	}
	if strings.TrimSpace(c.StudentUser) == "" || strings.TrimSpace(c.AdminUser) == "" {
		return fmt.Errorf("credentials for both roles are required")
	}
	return nil
}
