package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/invertedv/panelfe/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestNewLogger(t *testing.T) {
	l, e := newLogger(config.LoggingConfig{Level: "warn"}, false)
	require.Nil(t, e)
	assert.True(t, l.Core().Enabled(zapcore.WarnLevel))
	assert.False(t, l.Core().Enabled(zapcore.InfoLevel))

	l, e = newLogger(config.LoggingConfig{Level: "warn", Development: true}, true)
	require.Nil(t, e)
	assert.True(t, l.Core().Enabled(zapcore.DebugLevel))

	_, e = newLogger(config.LoggingConfig{Level: "chatty"}, false)
	assert.NotNil(t, e)
}

func TestDescribeCmd(t *testing.T) {
	sample, e := filepath.Abs("../../data/ab_sample.csv")
	require.Nil(t, e)

	path := filepath.Join(t.TempDir(), "abwage.yaml")
	require.Nil(t, os.WriteFile(path, []byte("source:\n  path: "+sample+"\nlogging:\n  level: error\n"), 0o644))

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"describe", "--config", path})
	require.Nil(t, rootCmd.Execute())
	assert.Contains(t, out.String(), "Summary statistics")
	assert.Contains(t, out.String(), "312 rows")
}

func TestRootHelp(t *testing.T) {
	assert.Contains(t, rootCmd.Long, "data/ab_data.csv")
	assert.Contains(t, rootCmd.Long, "must be supplied")

	cfg, e := config.Default()
	require.Nil(t, e)
	assert.Equal(t, "data/ab_data.csv", cfg.Source.Path)
}
