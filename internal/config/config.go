package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	DBDriver      string `mapstructure:"db_driver"`
	DBDSN         string `mapstructure:"db_dsn"`
	ServerPort    string `mapstructure:"server_port"`
	SessionSecret string `mapstructure:"session_secret"`
	GinMode       string `mapstructure:"gin_mode"`
	LogLevel      string `mapstructure:"log_level"`

	// админ, которого создаём при первом запуске
	AdminEmployeeID string `mapstructure:"admin_employee_id"`
	AdminName       string `mapstructure:"admin_name"`

	CORSOrigins []string `mapstructure:"cors_origins"`

	Report ReportConfig `mapstructure:",squash"`
	S3     S3Config     `mapstructure:",squash"`
}

type ReportConfig struct {
	Store           string `mapstructure:"report_store"` // local | s3
	Dir             string `mapstructure:"report_dir"`
	LogoPath        string `mapstructure:"report_logo_path"`
	WkhtmltopdfPath string `mapstructure:"report_wkhtmltopdf_path"`
	FontPath        string `mapstructure:"report_font_path"` // UTF-8 TTF для встроенного рендера
}

type S3Config struct {
	Bucket    string `mapstructure:"s3_bucket"`
	Region    string `mapstructure:"s3_region"`
	Endpoint  string `mapstructure:"s3_endpoint"`
	AccessKey string `mapstructure:"s3_access_key"`
	SecretKey string `mapstructure:"s3_secret_key"`
}

var defaults = map[string]any{
	"db_driver":               "postgres",
	"db_dsn":                  "",
	"server_port":             "8080",
	"session_secret":          "",
	"gin_mode":                "release",
	"log_level":               "info",
	"admin_employee_id":       "",
	"admin_name":              "Administrator",
	"cors_origins":            []string{},
	"report_store":            "local",
	"report_dir":              "./reports",
	"report_logo_path":        "logo.png",
	"report_wkhtmltopdf_path": "",
	"report_font_path":        "",
	"s3_bucket":               "",
	"s3_region":               "us-east-1",
	"s3_endpoint":             "",
	"s3_access_key":           "",
	"s3_secret_key":           "",
}

// Load читает .env, переменные окружения и (если есть) config.yaml.
func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	for k, val := range defaults {
		v.SetDefault(k, val)
	}
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	cfg.CORSOrigins = splitList(cfg.CORSOrigins)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	switch c.DBDriver {
	case "postgres", "sqlite":
	default:
		return fmt.Errorf("DB_DRIVER must be postgres or sqlite, got %q", c.DBDriver)
	}
	if c.DBDSN == "" {
		return errors.New("DB_DSN is not set")
	}
	if c.SessionSecret == "" {
		return errors.New("SESSION_SECRET is not set")
	}
	switch c.Report.Store {
	case "local":
	case "s3":
		if c.S3.Bucket == "" {
			return errors.New("S3_BUCKET is not set")
		}
	default:
		return fmt.Errorf("REPORT_STORE must be local or s3, got %q", c.Report.Store)
	}
	return nil
}

// из env список приходит одной строкой через запятую
func splitList(in []string) []string {
	var out []string
	for _, item := range in {
		for _, part := range strings.Split(item, ",") {
			if p := strings.TrimSpace(part); p != "" {
				out = append(out, p)
			}
		}
	}
	return out
}
