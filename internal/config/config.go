package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Log      LogConfig      `yaml:"log"`
	Database DatabaseConfig `yaml:"database"`
	JWT      JWTConfig      `yaml:"jwt"`
	Cookie   CookieConfig   `yaml:"cookie"`
	CORS     CORSConfig     `yaml:"cors"`
	Upload   UploadConfig   `yaml:"upload"`
}

type ServerConfig struct {
	Host string `yaml:"host"`
	Port string `yaml:"port"`
	Mode string `yaml:"mode"` // debug, release, test
}

type LogConfig struct {
	Level string `yaml:"level"`
}

type DatabaseConfig struct {
	Driver string `yaml:"driver"` // sqlite, mysql, postgres
	DSN    string `yaml:"dsn"`
}

// JWTConfig holds the two signing secrets and lifetimes used by the token issuer.
type JWTConfig struct {
	AccessSecret  string        `yaml:"access_secret"`
	AccessTTL     time.Duration `yaml:"access_ttl"`
	RefreshSecret string        `yaml:"refresh_secret"`
	RefreshTTL    time.Duration `yaml:"refresh_ttl"`
}

type CookieConfig struct {
	Secure   bool   `yaml:"secure"`
	SameSite string `yaml:"same_site"` // lax, strict, none
	Domain   string `yaml:"domain"`
	Path     string `yaml:"path"`
}

type CORSConfig struct {
	Origins []string `yaml:"origins"`
}

// UploadConfig selects and configures the media upload backend.
type UploadConfig struct {
	Driver      string   `yaml:"driver"`   // local, s3
	TempDir     string   `yaml:"temp_dir"` // where multipart files land before upload
	MaxFileSize int64    `yaml:"max_file_size"`
	Local       LocalFS  `yaml:"local"`
	S3          S3Config `yaml:"s3"`
}

type LocalFS struct {
	Dir       string `yaml:"dir"`
	PublicURL string `yaml:"public_url"` // URL prefix the directory is served under
}

type S3Config struct {
	Bucket    string `yaml:"bucket"`
	Region    string `yaml:"region"`
	Endpoint  string `yaml:"endpoint"` // empty for AWS, set for MinIO and friends
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
	PublicURL string `yaml:"public_url"` // base URL objects are reachable under
	Prefix    string `yaml:"prefix"`
}

func Load(configPath string) (*Config, error) {
	if configPath == "" {
		configPath = "config.yaml"
	}

	var cfg *Config

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		cfg = DefaultConfig()
	} else {
		data, err := os.ReadFile(configPath)
		if err != nil {
			return nil, err
		}

		cfg = DefaultConfig()
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", configPath, err)
		}
	}

	// .env is optional; real environment variables win over it.
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	if err := cfg.overrideFromEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: "8000",
			Mode: "debug",
		},
		Log: LogConfig{Level: "info"},
		Database: DatabaseConfig{
			Driver: "sqlite",
			DSN:    "tubeaccounts.db",
		},
		JWT: JWTConfig{
			AccessSecret:  "tubeaccounts-access-secret-change-in-production",
			AccessTTL:     24 * time.Hour,
			RefreshSecret: "tubeaccounts-refresh-secret-change-in-production",
			RefreshTTL:    10 * 24 * time.Hour,
		},
		Cookie: CookieConfig{
			Secure:   true,
			SameSite: "lax",
			Path:     "/",
		},
		CORS: CORSConfig{
			Origins: []string{"http://localhost:3000"},
		},
		Upload: UploadConfig{
			Driver:      "local",
			TempDir:     "./public/temp",
			MaxFileSize: 10 << 20,
			Local: LocalFS{
				Dir:       "./public/media",
				PublicURL: "http://localhost:8000/media",
			},
			S3: S3Config{
				Region: "us-east-1",
				Prefix: "users",
			},
		},
	}
}

func (c *Config) overrideFromEnv() error {
	setString("SERVER_HOST", &c.Server.Host)
	setString("SERVER_PORT", &c.Server.Port)
	// PORT is what most hosting platforms inject.
	setString("PORT", &c.Server.Port)
	setString("SERVER_MODE", &c.Server.Mode)
	setString("LOG_LEVEL", &c.Log.Level)
	setString("DB_DRIVER", &c.Database.Driver)
	setString("DB_DSN", &c.Database.DSN)
	setString("ACCESS_TOKEN_SECRET", &c.JWT.AccessSecret)
	setString("REFRESH_TOKEN_SECRET", &c.JWT.RefreshSecret)
	if err := setDuration("ACCESS_TOKEN_EXPIRY", &c.JWT.AccessTTL); err != nil {
		return err
	}
	if err := setDuration("REFRESH_TOKEN_EXPIRY", &c.JWT.RefreshTTL); err != nil {
		return err
	}
	if origins := os.Getenv("CORS_ORIGIN"); origins != "" {
		c.CORS.Origins = splitAndTrim(origins, ",")
	}
	if secure := os.Getenv("COOKIE_SECURE"); secure != "" {
		v, err := strconv.ParseBool(secure)
		if err != nil {
			return fmt.Errorf("invalid COOKIE_SECURE %q: %w", secure, err)
		}
		c.Cookie.Secure = v
	}
	setString("COOKIE_SAMESITE", &c.Cookie.SameSite)
	setString("COOKIE_DOMAIN", &c.Cookie.Domain)
	setString("UPLOAD_DRIVER", &c.Upload.Driver)
	setString("UPLOAD_TEMP_DIR", &c.Upload.TempDir)
	setString("UPLOAD_LOCAL_DIR", &c.Upload.Local.Dir)
	setString("UPLOAD_PUBLIC_URL", &c.Upload.Local.PublicURL)
	setString("S3_BUCKET", &c.Upload.S3.Bucket)
	setString("S3_REGION", &c.Upload.S3.Region)
	setString("S3_ENDPOINT", &c.Upload.S3.Endpoint)
	setString("S3_ACCESS_KEY", &c.Upload.S3.AccessKey)
	setString("S3_SECRET_KEY", &c.Upload.S3.SecretKey)
	setString("S3_PUBLIC_URL", &c.Upload.S3.PublicURL)
	return nil
}

// Validate reports the first configuration problem that would make the
// service unusable.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.JWT.AccessSecret) == "" || strings.TrimSpace(c.JWT.RefreshSecret) == "" {
		return errors.New("jwt: access and refresh secrets are required")
	}
	if c.JWT.AccessSecret == c.JWT.RefreshSecret {
		return errors.New("jwt: access and refresh secrets must differ")
	}
	if c.JWT.AccessTTL <= 0 || c.JWT.RefreshTTL <= 0 {
		return errors.New("jwt: token lifetimes must be positive")
	}
	switch c.Database.Driver {
	case "sqlite", "mysql", "postgres":
	default:
		return fmt.Errorf("unsupported database driver: %s", c.Database.Driver)
	}
	switch strings.ToLower(c.Cookie.SameSite) {
	case "", "lax", "strict":
	case "none":
		if !c.Cookie.Secure {
			return errors.New("cookie: SameSite=None requires a secure cookie")
		}
	default:
		return fmt.Errorf("cookie: invalid same_site %q", c.Cookie.SameSite)
	}
	switch c.Upload.Driver {
	case "local":
		if c.Upload.Local.Dir == "" {
			return errors.New("upload: local dir is required")
		}
	case "s3":
		if c.Upload.S3.Bucket == "" {
			return errors.New("upload: s3 bucket is required")
		}
	default:
		return fmt.Errorf("unsupported upload driver: %s", c.Upload.Driver)
	}
	return nil
}

// Addr is the listen address of the HTTP server.
func (c *Config) Addr() string {
	return c.Server.Host + ":" + c.Server.Port
}

func setString(key string, dst *string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

// setDuration accepts Go durations ("15m") and the "<n>d" day suffix that
// the JS world likes for token expiries.
func setDuration(key string, dst *time.Duration) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	d, err := ParseDuration(v)
	if err != nil {
		return fmt.Errorf("invalid %s %q: %w", key, v, err)
	}
	*dst = d
	return nil
}

// ParseDuration is time.ParseDuration plus a whole-day "d" suffix.
func ParseDuration(v string) (time.Duration, error) {
	v = strings.TrimSpace(v)
	if days, ok := strings.CutSuffix(v, "d"); ok {
		n, err := strconv.Atoi(days)
		if err != nil {
			return 0, err
		}
		return time.Duration(n) * 24 * time.Hour, nil
	}
	return time.ParseDuration(v)
}

func splitAndTrim(s, sep string) []string {
	var out []string
	for _, part := range strings.Split(s, sep) {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
