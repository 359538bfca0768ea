package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/cmlabs-hris/timesheet-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/timesheet-backend-go/internal/pkg/clock"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Database DatabaseConfig
	JWT      JWTConfig
	App      AppConfig
	Storage  StorageConfig
	Policy   attendance.Policy
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	SSLMode  string
	MaxConns int32
	MinConns int32
}

// JWTConfig holds JWT configuration
type JWTConfig struct {
	Secret           string
	AccessExpiration string
}

// AppConfig holds application configuration
type AppConfig struct {
	Port        int
	Env         string
	LogLevel    string
	CORSOrigins []string
	// ReconcileInterval is how often cached balances are checked against
	// the ledger. Zero disables the job.
	ReconcileInterval time.Duration
}

// StorageConfig is where uploaded punch exports are archived.
type StorageConfig struct {
	Path    string
	BaseURL string
}

// policyFile mirrors attendance.Policy with human-readable values.
type policyFile struct {
	OfficialStart  string `yaml:"official_start"`
	LunchDeduction string `yaml:"lunch_deduction"`
	LunchThreshold string `yaml:"lunch_threshold"`
	StandardShift  string `yaml:"standard_shift"`
	ForcedExit     string `yaml:"forced_exit"`
}

func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}

	config := &Config{}

	// Database configuration
	dbPort, err := strconv.Atoi(getEnv("DB_PORT", "5432"))
	if err != nil {
		return nil, fmt.Errorf("invalid DB_PORT: %w", err)
	}

	config.Database = DatabaseConfig{
		Host:     getEnv("DB_HOST", "localhost"),
		Port:     dbPort,
		User:     getEnv("DB_USER", "postgres"),
		Password: getEnv("DB_PASSWORD", ""),
		Name:     getEnv("DB_NAME", "timesheet"),
		SSLMode:  getEnv("DB_SSL_MODE", "disable"),
	}
	maxConns, err := strconv.ParseInt(getEnv("DB_MAX_CONNS", "25"), 10, 32)
	if err != nil {
		return nil, fmt.Errorf("invalid DB_MAX_CONNS: %w", err)
	}
	minConns, err := strconv.ParseInt(getEnv("DB_MIN_CONNS", "5"), 10, 32)
	if err != nil {
		return nil, fmt.Errorf("invalid DB_MIN_CONNS: %w", err)
	}
	config.Database.MaxConns = int32(maxConns)
	config.Database.MinConns = int32(minConns)

	// Application configuration
	appPort, err := strconv.Atoi(getEnv("APP_PORT", "8080"))
	if err != nil {
		return nil, fmt.Errorf("invalid APP_PORT: %w", err)
	}
	reconcile, err := time.ParseDuration(getEnv("RECONCILE_INTERVAL", "24h"))
	if err != nil {
		return nil, fmt.Errorf("invalid RECONCILE_INTERVAL: %w", err)
	}

	config.App = AppConfig{
		Port:              appPort,
		Env:               getEnv("APP_ENV", "development"),
		LogLevel:          getEnv("LOG_LEVEL", "info"),
		CORSOrigins:       getEnvSlice("CORS_ALLOWED_ORIGINS", "http://localhost:3000"),
		ReconcileInterval: reconcile,
	}

	// JWT configuration
	config.JWT = JWTConfig{
		Secret:           getEnv("JWT_SECRET_KEY", ""),
		AccessExpiration: getEnv("JWT_ACCESS_EXPIRATION_TIME", "8h"),
	}

	config.Storage = StorageConfig{
		Path:    getEnv("STORAGE_PATH", "./storage"),
		BaseURL: getEnv("STORAGE_BASE_URL", "/files"),
	}

	policy, err := LoadPolicy(getEnv("POLICY_FILE", ""))
	if err != nil {
		return nil, err
	}
	config.Policy = policy

	// Validate required fields
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

// LoadPolicy starts from the default policy, applies POLICY_* variables and
// then the YAML file at path, if any.
func LoadPolicy(path string) (attendance.Policy, error) {
	f := policyFile{
		OfficialStart:  os.Getenv("POLICY_OFFICIAL_START"),
		LunchDeduction: os.Getenv("POLICY_LUNCH_DEDUCTION"),
		LunchThreshold: os.Getenv("POLICY_LUNCH_THRESHOLD"),
		StandardShift:  os.Getenv("POLICY_STANDARD_SHIFT"),
		ForcedExit:     os.Getenv("POLICY_FORCED_EXIT"),
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return attendance.Policy{}, fmt.Errorf("failed to read policy file: %w", err)
		}
		var fromFile policyFile
		if err := yaml.Unmarshal(data, &fromFile); err != nil {
			return attendance.Policy{}, fmt.Errorf("invalid policy file %s: %w", path, err)
		}
		f.merge(fromFile)
		slog.Info("policy file loaded", "path", path)
	}

	return f.apply(attendance.DefaultPolicy())
}

func (f *policyFile) merge(o policyFile) {
	for _, p := range []struct{ dst, src *string }{
		{&f.OfficialStart, &o.OfficialStart},
		{&f.LunchDeduction, &o.LunchDeduction},
		{&f.LunchThreshold, &o.LunchThreshold},
		{&f.StandardShift, &o.StandardShift},
		{&f.ForcedExit, &o.ForcedExit},
	} {
		if *p.src != "" {
			*p.dst = *p.src
		}
	}
}

func (f policyFile) apply(p attendance.Policy) (attendance.Policy, error) {
	var err error
	if f.OfficialStart != "" {
		if p.OfficialStart, err = clock.Parse(f.OfficialStart); err != nil {
			return p, fmt.Errorf("invalid official_start: %w", err)
		}
	}
	if f.ForcedExit != "" {
		if p.ForcedExitTime, err = clock.Parse(f.ForcedExit); err != nil {
			return p, fmt.Errorf("invalid forced_exit: %w", err)
		}
	}
	if f.LunchDeduction != "" {
		if p.LunchDeduction, err = time.ParseDuration(f.LunchDeduction); err != nil {
			return p, fmt.Errorf("invalid lunch_deduction: %w", err)
		}
	}
	if f.LunchThreshold != "" {
		if p.LunchThreshold, err = time.ParseDuration(f.LunchThreshold); err != nil {
			return p, fmt.Errorf("invalid lunch_threshold: %w", err)
		}
	}
	if f.StandardShift != "" {
		if p.StandardShift, err = time.ParseDuration(f.StandardShift); err != nil {
			return p, fmt.Errorf("invalid standard_shift: %w", err)
		}
	}
	return p, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Database.Password == "" {
		return fmt.Errorf("DB_PASSWORD is required")
	}
	if c.JWT.Secret == "" {
		return fmt.Errorf("JWT_SECRET_KEY is required")
	}
	if _, err := time.ParseDuration(c.JWT.AccessExpiration); err != nil {
		return fmt.Errorf("invalid JWT_ACCESS_EXPIRATION_TIME: %w", err)
	}
	if c.Storage.Path == "" {
		return fmt.Errorf("STORAGE_PATH is required")
	}
	if err := c.Policy.Validate(); err != nil {
		return err
	}
	return nil
}

// DatabaseURL returns the PostgreSQL connection string
func (c *Config) DatabaseURL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
		c.Database.SSLMode,
	)
}

// SlogLevel maps LOG_LEVEL onto slog, defaulting to info.
func (c *Config) SlogLevel() slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.App.LogLevel)); err != nil {
		return slog.LevelInfo
	}
	return level
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvSlice(key, fallback string) []string {
	value := getEnv(key, fallback)
	if value == "" {
		return []string{}
	}
	var result []string
	for _, v := range strings.Split(value, ",") {
		if v = strings.TrimSpace(v); v != "" {
			result = append(result, v)
		}
	}
	return result
}
