package config

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the structure of config.yml used by the tool.
// Only the fields currently needed by commands are modeled.
type Config struct {
	API struct {
		URL            string `yaml:"url"`
		Token          string `yaml:"token"`
		Method         string `yaml:"method"`
		TimeoutSeconds int    `yaml:"timeout_seconds"`
	} `yaml:"api"`
	Data struct {
		Dir       string `yaml:"dir"`
		LocalFile string `yaml:"local_file"`
	} `yaml:"data"`
	Dashboard struct {
		TopNCost  int `yaml:"top_n_cost"`
		TopNHours int `yaml:"top_n_hours"`
	} `yaml:"dashboard"`
}

// Defaults mirror the original deployment: the labor-cost report method
// hanging off the ERP's /api/method base, a 2 minute fetch window, and
// the bundled fallback dataset.
const (
	defaultURL            = "https://spread-erp.ddns.net/api/method"
	defaultMethod         = "spread_app.app_gestion_spread.report.costo_mano_de_obra.costo_mano_de_obra.get_labor_cost_no_quotation"
	defaultTimeoutSeconds = 120
)

// Timeout is the fetch window for one ERP request.
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.API.TimeoutSeconds) * time.Second
}

// Load parses the YAML configuration file at path and fills defaults for
// anything the file leaves out. A missing file is not an error: the tool
// runs on defaults plus environment overrides.
func Load(path string) (*Config, error) {
	var c Config
	b, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(b, &c); err != nil {
			return nil, fmt.Errorf("config: parsing %s: %w", path, err)
		}
		slog.Info("config.loaded", "path", path)
	case os.IsNotExist(err):
		slog.Info("config.defaults", "path", path)
	default:
		return nil, err
	}

	if c.API.URL == "" {
		c.API.URL = defaultURL
	}
	if c.API.Method == "" {
		c.API.Method = defaultMethod
	}
	if c.API.TimeoutSeconds == 0 {
		c.API.TimeoutSeconds = defaultTimeoutSeconds
	}
	if c.API.Token == "" {
		c.API.Token = os.Getenv("API_TOKEN")
	}
	if c.Data.Dir == "" {
		c.Data.Dir = "data"
	}
	if c.Data.LocalFile == "" {
		c.Data.LocalFile = "data/db.json"
	}
	if c.Dashboard.TopNCost == 0 {
		c.Dashboard.TopNCost = 10
	}
	if c.Dashboard.TopNHours == 0 {
		c.Dashboard.TopNHours = 10
	}
	return &c, nil
}

// Path resolves the config file location from CONFIG_PATH, defaulting to
// ./config.yml (same convention as the rest of the tooling).
func Path() string {
	if p := os.Getenv("CONFIG_PATH"); p != "" {
		return p
	}
	return "./config.yml"
}
