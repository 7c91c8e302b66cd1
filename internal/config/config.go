package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Version information - set by GoReleaser during build
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// GetVersionInfo returns a formatted version string
func GetVersionInfo() string {
	return fmt.Sprintf("realtor version %s, commit %s, built at %s", version, commit, date)
}

type Config struct {
	Cognito        CognitoConfig  `mapstructure:"cognito"`
	EndpointConfig EndpointConfig `mapstructure:"endpoint"`
	Logging        LoggingConfig  `mapstructure:"logging"`
	Session        SessionConfig  `mapstructure:"session"`
	Server         ServerConfig   `mapstructure:"server"`
	Guard          GuardConfig    `mapstructure:"guard"`
	Output         string         `mapstructure:"output"`
}

// CognitoConfig identifies the user pool the auth gate signs in against.
type CognitoConfig struct {
	UserPoolID string `mapstructure:"user_pool_id"`
	ClientID   string `mapstructure:"client_id"`
	Region     string `mapstructure:"region"`
}

// Validate reports missing pool settings. Region falls back to the pool id prefix.
func (c *CognitoConfig) Validate() error {
	if c.UserPoolID == "" || c.ClientID == "" {
		return ErrCognitoNotConfigured
	}
	if c.Region == "" {
		region, _, ok := strings.Cut(c.UserPoolID, "_")
		if !ok || region == "" {
			return fmt.Errorf("cannot derive region from user pool id %q, set cognito.region", c.UserPoolID)
		}
		c.Region = region
	}
	return nil
}

// ErrCognitoNotConfigured is returned when the user pool id or client id is missing
var ErrCognitoNotConfigured = errors.New("cognito user pool id and client id are required, set REALTOR_COGNITO_USER_POOL_ID and REALTOR_COGNITO_CLIENT_ID")

// AuthType represents the type of authentication to use
type AuthType string

const (
	AuthTypeNone    AuthType = "none"
	AuthTypeBearer  AuthType = "bearer"
	AuthTypeSession AuthType = "session"
)

type EndpointConfig struct {
	BaseURL          string            `json:"base_url" mapstructure:"base_url"`
	Timeout          time.Duration     `json:"timeout" mapstructure:"timeout"`
	AuthType         AuthType          `json:"auth_type" mapstructure:"auth_type"`
	AuthConfig       map[string]string `json:"auth_config" mapstructure:"auth_config"`
	Headers          map[string]string `json:"headers" mapstructure:"headers"`
	ValidateContract bool              `json:"validate_contract" mapstructure:"validate_contract"`
}

type ServerMode string

const (
	ServerModeSSE   ServerMode = "sse"
	ServerModeSTDIO ServerMode = "stdio"
	ServerModeHTTP  ServerMode = "http"
)

// App names one of the three front ends the console server can host.
type App string

const (
	AppAdmin App = "admin"
	AppChat  App = "chat"
	AppPrefs App = "app"
)

type ServerConfig struct {
	Port      int        `mapstructure:"port"`
	Host      string     `mapstructure:"host"`
	Mode      ServerMode `mapstructure:"mode"`
	Name      string     `mapstructure:"name"`
	Version   string     `mapstructure:"version"`
	StaticDir string     `mapstructure:"static_dir"`
	App       App        `mapstructure:"app"`
}

type LoggingConfig struct {
	Level             string `mapstructure:"level"`
	Format            string `mapstructure:"format"`
	Color             bool   `mapstructure:"color"`
	DisableStacktrace bool   `mapstructure:"disable_stacktrace"`
	OutputPath        string `mapstructure:"output_path"`
	AppendToFile      bool   `mapstructure:"append_to_file"`
	DisableConsole    bool   `mapstructure:"disable_console"`
}

type SessionConfig struct {
	Path string `mapstructure:"path"`
}

// GuardConfig holds the login and home routes of the page guard.
type GuardConfig struct {
	LoginPath      string   `mapstructure:"login_path"`
	HomePath       string   `mapstructure:"home_path"`
	PublicPrefixes []string `mapstructure:"public_prefixes"`
}

// InitFlags registers the persistent flags shared by every command
func InitFlags(fs *pflag.FlagSet) {
	fs.String("config", "", "Path to a config file (default ./config.yaml)")
	fs.String("base-url", "", "Backend base URL")
	fs.String("log-level", "", "Log level (debug|info|warn|error)")
	fs.StringP("output", "o", "table", "Output format (table|json|yaml)")
}

func setDefaults(v *viper.Viper) {
	home, _ := os.UserHomeDir()

	// every key needs a default so AutomaticEnv can reach it through Unmarshal
	v.SetDefault("cognito.user_pool_id", "")
	v.SetDefault("cognito.client_id", "")
	v.SetDefault("cognito.region", "")

	v.SetDefault("endpoint.base_url", "http://localhost:8080")
	v.SetDefault("endpoint.validate_contract", false)
	v.SetDefault("endpoint.timeout", "30s")
	v.SetDefault("endpoint.auth_type", string(AuthTypeSession))

	v.SetDefault("logging.level", "warn")
	v.SetDefault("logging.format", "console")

	v.SetDefault("session.path", filepath.Join(home, ".config", "realtor", "session.yaml"))

	v.SetDefault("server.host", "localhost")
	v.SetDefault("server.port", 5173)
	v.SetDefault("server.mode", string(ServerModeSTDIO))
	v.SetDefault("server.name", "Realtor Admin")
	v.SetDefault("server.version", version)
	v.SetDefault("server.app", string(AppAdmin))
	v.SetDefault("server.static_dir", "")

	v.SetDefault("guard.login_path", "")
	v.SetDefault("guard.home_path", "")

	v.SetDefault("output", "table")
}

// Load reads configuration from defaults, config files, environment and flags.
// A missing config file is not an error.
func Load(fs *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("REALTOR")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if fs != nil {
		for flag, key := range map[string]string{
			"base-url":  "endpoint.base_url",
			"log-level": "logging.level",
			"output":    "output",
		} {
			if f := fs.Lookup(flag); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, err
				}
			}
		}
	}

	configFile := ""
	if fs != nil {
		configFile, _ = fs.GetString("config")
	}
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", "realtor"))
		}
		v.AddConfigPath("/etc/realtor")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}

	switch cfg.Server.Mode {
	case ServerModeSSE, ServerModeSTDIO, ServerModeHTTP:
	default:
		return nil, fmt.Errorf("unsupported server mode: %s", cfg.Server.Mode)
	}

	cfg.EndpointConfig.BaseURL = strings.TrimRight(cfg.EndpointConfig.BaseURL, "/")
	cfg.Guard = cfg.Guard.WithDefaults(cfg.Server.App)

	return &cfg, nil
}

// WithDefaults fills the guard routes each front end uses.
func (g GuardConfig) WithDefaults(app App) GuardConfig {
	login, home := "/login", "/"
	if app == AppAdmin {
		login, home = "/admin/login", "/admin/"
	}
	if g.LoginPath == "" {
		g.LoginPath = login
	}
	if g.HomePath == "" {
		g.HomePath = home
	}
	if len(g.PublicPrefixes) == 0 {
		g.PublicPrefixes = []string{"/_app/", "/favicon", "/assets/"}
		if app == AppAdmin {
			// the admin build is served under /admin
			g.PublicPrefixes = append(g.PublicPrefixes, "/admin/_app/", "/admin/favicon", "/admin/assets/")
		}
	}
	return g
}
