/*
Package config loads service settings.

SOURCES (later wins):
  1. Built-in defaults
  2. Optional config file (YAML, TOML or JSON; viper picks by extension)
  3. .env file in the working directory, if present
  4. Environment variables prefixed STIPEND_, dots replaced by underscores
     (STIPEND_HTTP_PORT, STIPEND_DB_PATH, ...)

KEYS:
  http.port                  8080
  http.read_timeout          15s
  http.write_timeout         15s
  http.idle_timeout          60s
  db.path                    ./stipend.db
  master.file                "" (no import at start-up)
  calendar.timezone          Asia/Tokyo
  workflow.deadline_day      10
  cors.allowed_origins       [http://localhost:3000, http://localhost:5173]
*/
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config is the resolved service configuration.
type Config struct {
	HTTP     HTTPConfig
	DB       DBConfig
	Master   MasterConfig
	Calendar CalendarConfig
	Workflow WorkflowConfig
	CORS     CORSConfig
}

type HTTPConfig struct {
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

type DBConfig struct {
	Path string
}

type MasterConfig struct {
	File string
}

type CalendarConfig struct {
	Timezone string
}

type WorkflowConfig struct {
	DeadlineDay int
}

type CORSConfig struct {
	AllowedOrigins []string
}

// Addr is the listen address for http.Server.
func (c HTTPConfig) Addr() string { return fmt.Sprintf(":%d", c.Port) }

// Location resolves the calendar timezone.
func (c CalendarConfig) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("calendar.timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

// New returns a viper instance with defaults and environment binding.
func New() *viper.Viper {
	v := viper.New()
	v.SetTypeByDefaultValue(true)

	v.SetDefault("http.port", 8080)
	v.SetDefault("http.read_timeout", 15*time.Second)
	v.SetDefault("http.write_timeout", 15*time.Second)
	v.SetDefault("http.idle_timeout", 60*time.Second)
	v.SetDefault("db.path", "./stipend.db")
	v.SetDefault("master.file", "")
	v.SetDefault("calendar.timezone", "Asia/Tokyo")
	v.SetDefault("workflow.deadline_day", 10)
	v.SetDefault("cors.allowed_origins", []string{"http://localhost:3000", "http://localhost:5173"})

	v.SetEnvPrefix("stipend")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// Load reads configFile (optional) and the environment into a Config.
func Load(v *viper.Viper, configFile string) (*Config, error) {
	// load .env if it exists (ignore if it does not)
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(".env"); err != nil {
			return nil, fmt.Errorf("load .env: %w", err)
		}
	}

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", configFile, err)
		}
	}

	cfg := &Config{
		HTTP: HTTPConfig{
			Port:         v.GetInt("http.port"),
			ReadTimeout:  v.GetDuration("http.read_timeout"),
			WriteTimeout: v.GetDuration("http.write_timeout"),
			IdleTimeout:  v.GetDuration("http.idle_timeout"),
		},
		DB:       DBConfig{Path: v.GetString("db.path")},
		Master:   MasterConfig{File: v.GetString("master.file")},
		Calendar: CalendarConfig{Timezone: v.GetString("calendar.timezone")},
		Workflow: WorkflowConfig{DeadlineDay: v.GetInt("workflow.deadline_day")},
		CORS:     CORSConfig{AllowedOrigins: v.GetStringSlice("cors.allowed_origins")},
	}
	return cfg, cfg.Validate()
}

// Validate checks value ranges.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port %d out of range", c.HTTP.Port)
	}
	if c.DB.Path == "" {
		return fmt.Errorf("db.path is required")
	}
	if c.Workflow.DeadlineDay < 1 || c.Workflow.DeadlineDay > 28 {
		return fmt.Errorf("workflow.deadline_day %d must be between 1 and 28", c.Workflow.DeadlineDay)
	}
	if _, err := c.Calendar.Location(); err != nil {
		return err
	}
	return nil
}
