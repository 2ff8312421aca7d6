package pipeline

import (
	"image/png"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/invertedv/panelfe/fe"
	"github.com/invertedv/panelfe/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const sampleFile = "../../data/ab_sample.csv"

func testConfig(t *testing.T) *config.Config {
	cfg, e := config.Default()
	require.Nil(t, e)

	cfg.Source.Path = sampleFile
	cfg.Plot.Path = filepath.Join(t.TempDir(), "outputs", "pl1.png")

	return cfg
}

func TestLoad(t *testing.T) {
	cfg := testConfig(t)

	data, e := Load(cfg.Source, cfg.Columns, zap.NewNop())
	require.Nil(t, e)
	assert.Equal(t, cfg.Columns, data.ColumnNames())
	assert.Equal(t, 312, data.RowCount())

	_, e = Load(config.SourceConfig{Kind: "csv", Path: "nope.csv"}, cfg.Columns, zap.NewNop())
	assert.ErrorIs(t, e, fs.ErrNotExist)
	assert.Contains(t, e.Error(), "source.path")

	_, e = Load(config.SourceConfig{Kind: "csv", Path: sampleFile}, []string{"EMP", "SALES"}, zap.NewNop())
	assert.NotNil(t, e)

	_, e = Load(config.SourceConfig{Kind: "parquet"}, nil, zap.NewNop())
	assert.NotNil(t, e)
}

func TestLoad_DB(t *testing.T) {
	host, user, password := os.Getenv("host"), os.Getenv("user"), os.Getenv("password")
	if host == "" || user == "" || password == "" {
		t.Skip("host, user and password not set")
	}

	src := config.SourceConfig{Kind: "clickhouse", Host: host, User: user, Password: password, DB: os.Getenv("db"),
		Query: "SELECT toInt64(number) AS ID, toFloat64(number)/10 AS W FROM system.numbers LIMIT 10"}
	data, e := Load(src, nil, zap.NewNop())
	require.Nil(t, e)
	assert.Equal(t, 10, data.RowCount())
	assert.Equal(t, []string{"ID", "W"}, data.ColumnNames())
}

func TestPlot(t *testing.T) {
	cfg := testConfig(t)
	data, e := Load(cfg.Source, cfg.Columns, zap.NewNop())
	require.Nil(t, e)

	slope, intercept, e := Plot(data, cfg.Plot)
	require.Nil(t, e)
	assert.False(t, slope == 0 && intercept == 0)

	f, e := os.Open(cfg.Plot.Path)
	require.Nil(t, e)
	defer func() { _ = f.Close() }()

	img, e := png.DecodeConfig(f)
	require.Nil(t, e)
	assert.Equal(t, cfg.Plot.Width, img.Width)
	assert.Equal(t, cfg.Plot.Height, img.Height)

	cfg.Plot.X = "SALES"
	_, _, e = Plot(data, cfg.Plot)
	assert.NotNil(t, e)
}

func TestEstimate(t *testing.T) {
	cfg := testConfig(t)
	data, e := Load(cfg.Source, cfg.Columns, zap.NewNop())
	require.Nil(t, e)

	ests, e := Estimate(data, cfg.Model, zap.NewNop())
	require.Nil(t, e)
	require.Equal(t, 4, len(ests))

	base, _ := ests[0].Fit.Model(0)
	assert.Equal(t, 1, ests[0].Fit.Len())
	assert.Equal(t, []string{"N", "K", "YS"}, base.Coefnames)
	assert.Equal(t, 312, base.N)
	assert.Equal(t, 40, base.G)
	assert.Equal(t, fe.VcovCRV1, base.VcovType)
	assert.Equal(t, "ID", base.ClusterVar)

	assert.Equal(t, 3, ests[1].Fit.Len())
	m0, _ := ests[1].Fit.Model(0)
	assert.Equal(t, []string{fe.Intercept, "N", "K", "YS"}, m0.Coefnames)
	m2, _ := ests[1].Fit.Model(2)
	assert.InDeltaSlice(t, base.Coef, m2.Coef, 1e-12)

	assert.Equal(t, 4, ests[2].Fit.Len())
	for ind, m := range ests[2].Fit.Models() {
		assert.Equal(t, base.K, m.K)
		assert.Equal(t, "IND", m.SampleVar)
		assert.Equal(t, []string{"1", "2", "3", "4"}[ind], m.SampleValue)
	}

	assert.Equal(t, 1, ests[3].Fit.Len())
	m4, _ := ests[3].Fit.Model(0)
	assert.Equal(t, 192, m4.N)

	cfg.Model.Stepwise, cfg.Model.Split, cfg.Model.Sample = "", "", ""
	ests, e = Estimate(data, cfg.Model, zap.NewNop())
	require.Nil(t, e)
	assert.Equal(t, 1, len(ests))

	cfg.Model.Sample = "SALES > 3"
	_, e = Estimate(data, cfg.Model, zap.NewNop())
	assert.NotNil(t, e)
}

func TestRun(t *testing.T) {
	cfg := testConfig(t)

	var out1, out2 strings.Builder
	require.Nil(t, Run(cfg, zap.NewNop(), &out1))
	require.Nil(t, Run(cfg, zap.NewNop(), &out2))
	assert.Equal(t, "", cmp.Diff(out1.String(), out2.String()))

	out := out1.String()
	for _, want := range []string{"Summary statistics", "Baseline", "Log employment", "Log industry output",
		"Firm", "Observations", "R2 Within", "Industry = 4", "Significance levels"} {
		assert.Contains(t, out, want)
	}

	// labels replace the raw names
	assert.NotContains(t, out, "| YS ")

	_, e := os.Stat(cfg.Plot.Path)
	assert.Nil(t, e)

	cfg.Source.Path = "missing.csv"
	assert.NotNil(t, Run(cfg, zap.NewNop(), &out1))
}
