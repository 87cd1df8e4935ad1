package config

import (
	"errors"
	"fmt"
	"holdingsbuilder/internal/util"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

const (
	PathEnvVar       = "HOLDINGS_CONFIG"
	DbPasswordEnvVar = "HOLDINGS_DB_PASSWORD"
	JwtSecretEnvVar  = "HOLDINGS_JWT_SECRET"

	DefaultPath     = "config.yaml"
	DefaultNotional = 10_000_000
	DefaultApiPort  = 3009

	SourceCsv      = "csv"
	SourcePostgres = "postgres"
)

// Config is the on-disk configuration shape (YAML)
type Config struct {
	// last date a rebalance may happen on, e.g. 2012-11-30
	EndDate string `yaml:"end_date"`
	// starting portfolio value every date is sized against
	Notional float64 `yaml:"notional"`
	Workers  int     `yaml:"workers"`
	// exact | previous_trading_day
	PriceLookup string       `yaml:"price_lookup"`
	Filter      FilterConfig `yaml:"filter"`
	Data        DataConfig   `yaml:"data"`
	Db          DbSecrets    `yaml:"db"`
	Api         ApiConfig    `yaml:"api"`
}

type FilterConfig struct {
	// goval expression over the filter window statistics. empty
	// means the built in default
	Expression        string `yaml:"expression"`
	FirstWindowMonths int    `yaml:"first_window_months"`
}

type DataConfig struct {
	Source         string `yaml:"source"`
	PricesPath     string `yaml:"prices_path"`
	CandidatesPath string `yaml:"candidates_path"`
	// holdings are written here when set
	OutputPath string `yaml:"output_path"`
}

type DbSecrets struct {
	Host      string `yaml:"host"`
	User      string `yaml:"user"`
	Port      string `yaml:"port"`
	Password  string `yaml:"password"`
	Database  string `yaml:"database"`
	EnableSsl bool   `yaml:"enable_ssl"`
}

func (t DbSecrets) ToConnectionStr() string {
	x := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s",
		t.Host, t.Port, t.User, t.Password, t.Database)
	if !t.EnableSsl {
		x += " sslmode=disable"
	}
	return x
}

type ApiConfig struct {
	Port int `yaml:"port"`
	// requests need a bearer token signed with this when set
	JwtSecret string `yaml:"jwt_secret"`
}

// Path is where the config is read from when no path is given
func Path() string {
	if p := os.Getenv(PathEnvVar); p != "" {
		return p
	}
	return DefaultPath
}

func Load(path string) (*Config, error) {
	c, err := LoadUnchecked(path)
	if err != nil {
		return nil, err
	}
	c.applyDefaults()
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// LoadUnchecked reads the file and applies env overrides, but does
// not fill defaults or validate
func LoadUnchecked(path string) (*Config, error) {
	// a missing .env is fine
	_ = godotenv.Load()

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	var c Config
	if err := yaml.Unmarshal(raw, &c); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}

	// relative data paths are relative to the config file
	dir := filepath.Dir(path)
	c.Data.PricesPath = resolvePath(dir, c.Data.PricesPath)
	c.Data.CandidatesPath = resolvePath(dir, c.Data.CandidatesPath)
	c.Data.OutputPath = resolvePath(dir, c.Data.OutputPath)

	if v := os.Getenv(DbPasswordEnvVar); v != "" {
		c.Db.Password = v
	}
	if v := os.Getenv(JwtSecretEnvVar); v != "" {
		c.Api.JwtSecret = v
	}

	return &c, nil
}

func resolvePath(dir, p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(dir, p)
}

func (c *Config) applyDefaults() {
	if c.Notional == 0 {
		c.Notional = DefaultNotional
	}
	if c.PriceLookup == "" {
		c.PriceLookup = "exact"
	}
	if c.Data.Source == "" {
		c.Data.Source = SourceCsv
	}
	if c.Api.Port == 0 {
		c.Api.Port = DefaultApiPort
	}
}

func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config is nil")
	}
	if c.EndDate == "" {
		return errors.New("end_date is required")
	}
	if _, err := util.ParseDate(c.EndDate); err != nil {
		return fmt.Errorf("end_date invalid: %w", err)
	}
	if c.Notional <= 0 {
		return fmt.Errorf("notional must be positive, got %f", c.Notional)
	}
	if c.Workers < 0 {
		return fmt.Errorf("workers cannot be negative, got %d", c.Workers)
	}
	if c.PriceLookup != "exact" && c.PriceLookup != "previous_trading_day" {
		return fmt.Errorf("price_lookup must be exact or previous_trading_day, got %q", c.PriceLookup)
	}
	if c.Filter.FirstWindowMonths < 0 {
		return fmt.Errorf("filter.first_window_months cannot be negative, got %d", c.Filter.FirstWindowMonths)
	}

	switch c.Data.Source {
	case SourceCsv:
		if c.Data.PricesPath == "" || c.Data.CandidatesPath == "" {
			return errors.New("data.prices_path and data.candidates_path are required for csv source")
		}
	case SourcePostgres:
		if c.Db.Host == "" || c.Db.Database == "" {
			return errors.New("db.host and db.database are required for postgres source")
		}
	default:
		return fmt.Errorf("data.source must be csv or postgres, got %q", c.Data.Source)
	}

	return nil
}

// End is EndDate parsed. Only valid after Validate.
func (c Config) End() time.Time {
	t, _ := util.ParseDate(c.EndDate)
	return t
}

func (c Config) NotionalValue() decimal.Decimal {
	return decimal.NewFromFloat(c.Notional)
}
