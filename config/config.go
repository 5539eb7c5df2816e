package config

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

type BackupConfig struct {
	SFTPHost     string `json:"sftp_host" mapstructure:"sftp_host"`
	SFTPPort     int    `json:"sftp_port" mapstructure:"sftp_port"`
	SFTPUser     string `json:"sftp_user" mapstructure:"sftp_user"`
	SFTPPassword string `json:"sftp_password" mapstructure:"sftp_password"`
	SFTPKeyFile  string `json:"sftp_key_file" mapstructure:"sftp_key_file"`
	// SFTPHostKey is the expected SHA256 fingerprint of the remote host key
	SFTPHostKey string `json:"sftp_host_key" mapstructure:"sftp_host_key"`
	SFTPDir     string `json:"sftp_dir" mapstructure:"sftp_dir"`
}

// Enabled reports whether enough is configured to attempt an upload
func (b BackupConfig) Enabled() bool {
	return b.SFTPHost != "" && b.SFTPUser != "" && (b.SFTPPassword != "" || b.SFTPKeyFile != "")
}

type Config struct {
	ServerPort           string       `json:"server_port" mapstructure:"server_port"`
	DatabaseDriver       string       `json:"db_driver" mapstructure:"db_driver"`
	DatabasePath         string       `json:"database_path" mapstructure:"database_path"`
	DatabaseURL          string       `json:"database_url,omitempty" mapstructure:"database_url"`
	JWTSecret            string       `json:"jwt_secret" mapstructure:"jwt_secret"`
	Production           bool         `json:"production" mapstructure:"production"`
	SessionDurationHours int          `json:"session_duration_hours" mapstructure:"session_duration_hours"`
	AllowOrigins         string       `json:"allow_origins" mapstructure:"allow_origins"`
	LogLevel             string       `json:"log_level" mapstructure:"log_level"`
	LogDir               string       `json:"log_dir,omitempty" mapstructure:"log_dir"`
	Backup               BackupConfig `json:"backup" mapstructure:"backup"`

	path string
}

var (
	instance *Config
	mu       sync.Mutex
)

func generateSecret(length int) string {
	bytes := make([]byte, length)
	if _, err := rand.Read(bytes); err != nil {
		panic(err)
	}
	return hex.EncodeToString(bytes)
}

// DefaultPath resolves config.json under HABITUAL_CONFIG_DIR or ~/.habitual
func DefaultPath() string {
	configDir := os.Getenv("HABITUAL_CONFIG_DIR")
	if configDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			configDir = "."
		} else {
			configDir = filepath.Join(homeDir, ".habitual")
		}
	}
	return filepath.Join(configDir, "config.json")
}

// Load reads the config file at path (DefaultPath when empty), applies
// environment overrides and persists any generated secrets.
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultPath()
	}

	// A missing .env is normal outside development
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("json")

	v.SetDefault("server_port", "5000")
	v.SetDefault("db_driver", DriverSQLite)
	v.SetDefault("session_duration_hours", 24)
	v.SetDefault("allow_origins", "http://localhost:5000,http://localhost:5173,http://localhost:3000")
	v.SetDefault("log_level", "info")
	v.SetDefault("backup.sftp_port", 22)
	v.SetDefault("backup.sftp_dir", "habitual-backups")

	_ = v.BindEnv("server_port", "HABITUAL_PORT")
	_ = v.BindEnv("db_driver", "HABITUAL_DB_DRIVER")
	_ = v.BindEnv("database_path", "HABITUAL_DB_PATH")
	_ = v.BindEnv("database_url", "HABITUAL_DATABASE_URL")
	_ = v.BindEnv("jwt_secret", "HABITUAL_JWT_SECRET")
	_ = v.BindEnv("production", "HABITUAL_PRODUCTION")
	_ = v.BindEnv("log_level", "HABITUAL_LOG_LEVEL")
	_ = v.BindEnv("log_dir", "HABITUAL_LOG_DIR")

	if _, err := os.Stat(path); err == nil {
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config %s: %w", path, err)
		}
	} else if !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to stat config %s: %w", path, err)
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	cfg.path = path

	if cfg.SessionDurationHours <= 0 {
		cfg.SessionDurationHours = 24
	}
	if cfg.DatabaseDriver != DriverSQLite && cfg.DatabaseDriver != DriverPostgres {
		return nil, fmt.Errorf("unsupported db_driver %q", cfg.DatabaseDriver)
	}
	if cfg.DatabaseDriver == DriverPostgres && cfg.DatabaseURL == "" {
		return nil, errors.New("database_url is required for the postgres driver")
	}

	// Generate what is missing and remember it for the next start
	needsSave := false
	if cfg.JWTSecret == "" {
		cfg.JWTSecret = generateSecret(32)
		needsSave = true
	}
	if cfg.DatabaseDriver == DriverSQLite && cfg.DatabasePath == "" {
		cfg.DatabasePath = filepath.Join(filepath.Dir(path), "habitual.db")
		needsSave = true
	}

	if needsSave {
		if err := cfg.Save(); err != nil {
			return nil, fmt.Errorf("failed to save config: %w", err)
		}
	}

	return cfg, nil
}

// GetConfig returns the process-wide config, loading the default file on first use
func GetConfig() *Config {
	mu.Lock()
	defer mu.Unlock()

	if instance == nil {
		cfg, err := Load("")
		if err != nil {
			panic(err)
		}
		instance = cfg
	}
	return instance
}

// SetConfig replaces the process-wide config
func SetConfig(cfg *Config) {
	mu.Lock()
	defer mu.Unlock()
	instance = cfg
}

// Path is the file this config is saved to
func (c *Config) Path() string {
	return c.path
}

func (c *Config) Save() error {
	configPath := c.path
	if configPath == "" {
		configPath = DefaultPath()
	}

	configDir := filepath.Dir(configPath)
	if err := os.MkdirAll(configDir, 0700); err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(configPath, data, 0600)
}
