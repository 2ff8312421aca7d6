// Package config loads the pipeline settings: embedded defaults, then an optional YAML file,
// then ABWAGE_* environment variables.
package config

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"

	d "github.com/invertedv/panelfe"
	"github.com/invertedv/panelfe/etable"
	"github.com/invertedv/panelfe/fe"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment override. Keys are the upper-cased field names,
// e.g. ABWAGE_SOURCE_PATH or ABWAGE_MODEL_MAXITER.
const EnvPrefix = "ABWAGE"

//go:embed default.yaml
var defaults []byte

type Config struct {
	Source  SourceConfig  `yaml:"source"`
	Columns []string      `yaml:"columns"`
	Plot    PlotConfig    `yaml:"plot"`
	Model   ModelConfig   `yaml:"model"`
	Report  ReportConfig  `yaml:"report"`
	Logging LoggingConfig `yaml:"logging"`
}

// SourceConfig says where the panel comes from. Kind is csv, postgres or clickhouse; the database
// fields are used only for the latter two.
type SourceConfig struct {
	Kind     string `yaml:"kind"`
	Path     string `yaml:"path"`
	Host     string `yaml:"host"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	DB       string `yaml:"db"`
	Query    string `yaml:"query"`
}

type PlotConfig struct {
	Path       string `yaml:"path"`
	X          string `yaml:"x"`
	Y          string `yaml:"y"`
	XLabel     string `yaml:"xlabel"`
	YLabel     string `yaml:"ylabel"`
	Title      string `yaml:"title"`
	Width      int    `yaml:"width"`
	Height     int    `yaml:"height"`
	PointColor string `yaml:"point_color"`
	LineColor  string `yaml:"line_color"`
}

// ModelConfig holds the four specifications: Formula on the full sample, Stepwise, Formula split by
// Split and Formula on the rows satisfying Sample.
type ModelConfig struct {
	Formula  string  `yaml:"formula"`
	Stepwise string  `yaml:"stepwise"`
	Vcov     string  `yaml:"vcov"`
	Split    string  `yaml:"split"`
	Sample   string  `yaml:"sample"`
	FixefK   string  `yaml:"fixef_k"`
	Tol      float64 `yaml:"tol"`
	MaxIter  int     `yaml:"max_iter"`
}

type ReportConfig struct {
	Format      string            `yaml:"format"`
	SignifCodes []float64         `yaml:"signif_codes"`
	Digits      int               `yaml:"digits"`
	ShowSEType  bool              `yaml:"show_se_type"`
	Summary     bool              `yaml:"summary"`
	Labels      map[string]string `yaml:"labels"`
}

type LoggingConfig struct {
	Level       string `yaml:"level"`
	Development bool   `yaml:"development"`
}

// Default returns the embedded defaults.
func Default() (*Config, error) {
	cfg := &Config{}
	if e := yaml.Unmarshal(defaults, cfg); e != nil {
		return nil, fmt.Errorf("embedded defaults: %w", e)
	}

	return cfg, nil
}

// Load layers the YAML file at path (skipped if path is empty) and the environment over the defaults
// and validates the result.
func Load(path string) (*Config, error) {
	var (
		cfg *Config
		e   error
	)
	if cfg, e = Default(); e != nil {
		return nil, e
	}

	if path != "" {
		var data []byte
		if data, e = os.ReadFile(path); e != nil {
			return nil, fmt.Errorf("config file: %w", e)
		}

		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if e = dec.Decode(cfg); e != nil {
			return nil, fmt.Errorf("config file %s: %w", path, e)
		}
	}

	if e = envconfig.Process(EnvPrefix, cfg); e != nil {
		return nil, fmt.Errorf("config from env: %w", e)
	}

	if e = cfg.Validate(); e != nil {
		return nil, fmt.Errorf("config validation failed: %w", e)
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	switch c.Source.Kind {
	case "csv":
		if c.Source.Path == "" {
			return fmt.Errorf("source.path is required for csv")
		}
	case "postgres", "clickhouse":
		if c.Source.Host == "" || c.Source.Query == "" {
			return fmt.Errorf("source.host and source.query are required for %s", c.Source.Kind)
		}
	default:
		return fmt.Errorf("source.kind must be csv, postgres or clickhouse, got %q", c.Source.Kind)
	}

	for _, need := range []string{c.Plot.X, c.Plot.Y, c.Model.Split} {
		if need != "" && len(c.Columns) > 0 && !d.Has(need, c.Columns) {
			return fmt.Errorf("column %s is not among the columns loaded", need)
		}
	}

	if c.Plot.Path == "" {
		return fmt.Errorf("plot.path is required")
	}

	if c.Plot.Width < 50 || c.Plot.Height < 50 {
		return fmt.Errorf("plot must be at least 50x50, got %dx%d", c.Plot.Width, c.Plot.Height)
	}

	for _, fml := range []string{c.Model.Formula, c.Model.Stepwise} {
		if fml == "" {
			continue
		}

		if _, e := fe.ParseFormula(fml); e != nil {
			return fmt.Errorf("model: %w", e)
		}
	}

	if c.Model.Formula == "" {
		return fmt.Errorf("model.formula is required")
	}

	if c.Model.Vcov != "" {
		if _, e := fe.ParseVcov(c.Model.Vcov); e != nil {
			return fmt.Errorf("model.vcov: %w", e)
		}
	}

	if e := (fe.SSC{FixefK: c.Model.FixefK}).Validate(); e != nil {
		return fmt.Errorf("model.fixef_k: %w", e)
	}

	if c.Model.Tol <= 0 || c.Model.Tol >= 1 {
		return fmt.Errorf("model.tol must be in (0,1), got %v", c.Model.Tol)
	}

	if c.Model.MaxIter < 1 {
		return fmt.Errorf("model.max_iter must be positive, got %d", c.Model.MaxIter)
	}

	if _, e := etable.ParseFormat(c.Report.Format); e != nil {
		return fmt.Errorf("report.format: %w", e)
	}

	if _, e := etable.New([]*fe.Model{{}}, etable.SignifCodes(c.Report.SignifCodes), etable.Digits(c.Report.Digits)); e != nil {
		return fmt.Errorf("report: %w", e)
	}

	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be debug, info, warn or error, got %q", c.Logging.Level)
	}

	return nil
}
