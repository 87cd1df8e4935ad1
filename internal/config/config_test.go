package config

import (
	"holdingsbuilder/internal/util"
	"os"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoad(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		path := writeConfig(t, `
end_date: 2012/11/30
data:
  prices_path: prices.csv
  candidates_path: /abs/candidates.csv
`)
		c, err := Load(path)
		require.NoError(t, err)

		require.Equal(t, util.NewDate(2012, 11, 30), c.End())
		require.True(t, decimal.NewFromInt(10_000_000).Equal(c.NotionalValue()))
		require.Equal(t, "exact", c.PriceLookup)
		require.Equal(t, SourceCsv, c.Data.Source)
		require.Equal(t, DefaultApiPort, c.Api.Port)
		require.Equal(t, filepath.Join(filepath.Dir(path), "prices.csv"), c.Data.PricesPath)
		require.Equal(t, "/abs/candidates.csv", c.Data.CandidatesPath)
		require.Equal(t, "", c.Data.OutputPath)
	})

	t.Run("full config", func(t *testing.T) {
		path := writeConfig(t, `
end_date: 2012-11-30
notional: 2500000
workers: 8
price_lookup: previous_trading_day
filter:
  expression: "missing <= 2 && minPrice > 1.0"
  first_window_months: 3
data:
  source: postgres
db:
  host: localhost
  port: "5432"
  user: postgres
  password: postgres
  database: holdings
api:
  port: 8080
`)
		c, err := Load(path)
		require.NoError(t, err)

		require.Equal(t, 8, c.Workers)
		require.Equal(t, "previous_trading_day", c.PriceLookup)
		require.Equal(t, "missing <= 2 && minPrice > 1.0", c.Filter.Expression)
		require.Equal(t, 3, c.Filter.FirstWindowMonths)
		require.Equal(t, 8080, c.Api.Port)
		require.True(t, decimal.NewFromInt(2_500_000).Equal(c.NotionalValue()))
		require.Equal(
			t,
			"host=localhost port=5432 user=postgres password=postgres dbname=holdings sslmode=disable",
			c.Db.ToConnectionStr(),
		)
	})

	t.Run("env overrides secrets", func(t *testing.T) {
		t.Setenv(DbPasswordEnvVar, "from-env")
		t.Setenv(JwtSecretEnvVar, "jwt-from-env")
		path := writeConfig(t, `
end_date: 2012-11-30
data:
  source: postgres
db:
  host: localhost
  database: holdings
  password: from-file
`)
		c, err := Load(path)
		require.NoError(t, err)
		require.Equal(t, "from-env", c.Db.Password)
		require.Equal(t, "jwt-from-env", c.Api.JwtSecret)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
		require.Error(t, err)
	})

	t.Run("bad yaml", func(t *testing.T) {
		_, err := Load(writeConfig(t, "end_date: [2012"))
		require.Error(t, err)
	})
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			EndDate:     "2012-11-30",
			Notional:    1,
			PriceLookup: "exact",
			Data: DataConfig{
				Source:         SourceCsv,
				PricesPath:     "p.csv",
				CandidatesPath: "c.csv",
			},
		}
	}
	require.NoError(t, valid().Validate())

	cases := map[string]func(c *Config){
		"no end date":         func(c *Config) { c.EndDate = "" },
		"bad end date":        func(c *Config) { c.EndDate = "30/11/2012" },
		"negative notional":   func(c *Config) { c.Notional = -5 },
		"negative workers":    func(c *Config) { c.Workers = -1 },
		"unknown lookup":      func(c *Config) { c.PriceLookup = "nearest" },
		"negative lookback":   func(c *Config) { c.Filter.FirstWindowMonths = -1 },
		"csv without prices":  func(c *Config) { c.Data.PricesPath = "" },
		"unknown data source": func(c *Config) { c.Data.Source = "s3" },
		"postgres without db": func(c *Config) { c.Data.Source = SourcePostgres },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			c := valid()
			mutate(c)
			require.Error(t, c.Validate())
		})
	}

	var nilConfig *Config
	require.Error(t, nilConfig.Validate())
}
