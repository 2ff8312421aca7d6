package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg, e := Load("")
	require.Nil(t, e)

	assert.Equal(t, "csv", cfg.Source.Kind)
	assert.Equal(t, "data/ab_data.csv", cfg.Source.Path)
	assert.Equal(t, []string{"EMP", "WAGE", "W", "N", "K", "YS", "ID", "YEAR", "IND"}, cfg.Columns)
	assert.Equal(t, "outputs/pl1.png", cfg.Plot.Path)
	assert.Equal(t, "W ~ N + K + YS | ID + YEAR", cfg.Model.Formula)
	assert.Equal(t, "W ~ N + K + YS | csw0(ID, YEAR)", cfg.Model.Stepwise)
	assert.Equal(t, "CRV1:ID", cfg.Model.Vcov)
	assert.Equal(t, "IND", cfg.Model.Split)
	assert.Equal(t, "YEAR >= 1980", cfg.Model.Sample)
	assert.Equal(t, 1e-8, cfg.Model.Tol)
	assert.Equal(t, 100000, cfg.Model.MaxIter)
	assert.Equal(t, []float64{0.01, 0.05, 0.1}, cfg.Report.SignifCodes)
	assert.False(t, cfg.Report.ShowSEType)
	assert.Equal(t, "Log employment", cfg.Report.Labels["N"])
	assert.Equal(t, 9, len(cfg.Report.Labels))
	assert.Equal(t, "info", cfg.Logging.Level)
}

func TestLoad_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "abwage.yaml")
	yml := `
source:
  path: /tmp/other.csv
model:
  split: ""
report:
  format: markdown
  labels:
    N: Employment (log)
`
	require.Nil(t, os.WriteFile(path, []byte(yml), 0o644))

	cfg, e := Load(path)
	require.Nil(t, e)
	assert.Equal(t, "/tmp/other.csv", cfg.Source.Path)
	assert.Equal(t, "csv", cfg.Source.Kind)
	assert.Equal(t, "", cfg.Model.Split)
	assert.Equal(t, "markdown", cfg.Report.Format)
	assert.Equal(t, "Employment (log)", cfg.Report.Labels["N"])
	assert.Equal(t, "Log capital", cfg.Report.Labels["K"])

	require.Nil(t, os.WriteFile(path, []byte("modle:\n  formula: W ~ N\n"), 0o644))
	_, e = Load(path)
	assert.NotNil(t, e)

	_, e = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.NotNil(t, e)
}

func TestLoad_Env(t *testing.T) {
	t.Setenv("ABWAGE_SOURCE_PATH", "env.csv")
	t.Setenv("ABWAGE_MODEL_MAXITER", "50")
	t.Setenv("ABWAGE_REPORT_SHOWSETYPE", "true")
	t.Setenv("ABWAGE_LOGGING_LEVEL", "debug")

	cfg, e := Load("")
	require.Nil(t, e)
	assert.Equal(t, "env.csv", cfg.Source.Path)
	assert.Equal(t, 50, cfg.Model.MaxIter)
	assert.True(t, cfg.Report.ShowSEType)
	assert.Equal(t, "debug", cfg.Logging.Level)

	t.Setenv("ABWAGE_MODEL_MAXITER", "many")
	_, e = Load("")
	assert.NotNil(t, e)
}

func TestValidate(t *testing.T) {
	bad := []func(c *Config){
		func(c *Config) { c.Source.Kind = "excel" },
		func(c *Config) { c.Source.Path = "" },
		func(c *Config) { c.Source.Kind = "postgres" },
		func(c *Config) { c.Plot.X = "SALES" },
		func(c *Config) { c.Plot.Width = 10 },
		func(c *Config) { c.Model.Formula = "" },
		func(c *Config) { c.Model.Stepwise = "W ~ N | csw0(ID" },
		func(c *Config) { c.Model.Vcov = "CRV2:ID" },
		func(c *Config) { c.Model.FixefK = "half" },
		func(c *Config) { c.Model.Tol = 0 },
		func(c *Config) { c.Model.MaxIter = 0 },
		func(c *Config) { c.Report.Format = "latex" },
		func(c *Config) { c.Report.SignifCodes = []float64{0.1, 0.05, 0.01} },
		func(c *Config) { c.Report.Digits = 20 },
		func(c *Config) { c.Logging.Level = "loud" },
	}

	for ind, mod := range bad {
		cfg, e := Default()
		require.Nil(t, e)
		assert.Nil(t, cfg.Validate())

		mod(cfg)
		assert.NotNil(t, cfg.Validate(), ind)
	}

	cfg, _ := Default()
	cfg.Source.Kind, cfg.Source.Host, cfg.Source.Query = "clickhouse", "127.0.0.1:9000", "SELECT * FROM ab"
	assert.Nil(t, cfg.Validate())
}
