package config

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"

	yaml "gopkg.in/yaml.v3"

	"github.com/rupor-github/gencfg"
)

//go:embed config.yaml.tmpl
var ConfigTmpl []byte

type (
	PageConfig struct {
		Width        float64 `yaml:"width" validate:"gt=0"`
		Height       float64 `yaml:"height" validate:"gt=0"`
		MarginTop    float64 `yaml:"margin_top" validate:"gte=0"`
		MarginBottom float64 `yaml:"margin_bottom" validate:"gte=0"`
		MarginLeft   float64 `yaml:"margin_left" validate:"gte=0"`
		MarginRight  float64 `yaml:"margin_right" validate:"gte=0"`
	}

	DocumentConfig struct {
		Page            PageConfig `yaml:"page"`
		ColumnGutter    int        `yaml:"column_gutter" validate:"min=0"`
		BaseFont        string     `yaml:"base_font" validate:"required"`
		BaseFontSize    int        `yaml:"base_font_size" validate:"min=6,max=24"`
		TitleFontSize   int        `yaml:"title_font_size" validate:"min=10,max=48"`
		ImageWidth      float64    `yaml:"image_width" validate:"gt=0"`
		FormulaWidth    float64    `yaml:"formula_width" validate:"gt=0"`
		FormulaFontSize float64    `yaml:"formula_font_size" validate:"gt=0"`
		FixZip          bool       `yaml:"fix_zip"`
		WorkDir         string     `yaml:"work_dir,omitempty"`
	}

	ServerConfig struct {
		Address     string `yaml:"address" validate:"required,hostname_port"`
		RateLimit   int    `yaml:"rate_limit" validate:"min=0"`
		MaxUploadMB int64  `yaml:"max_upload_mb" validate:"min=1"`
	}

	SimilarityConfig struct {
		Threshold   float64 `yaml:"threshold" validate:"gte=0,lte=1"`
		ShingleSize int     `yaml:"shingle_size" validate:"min=1,max=8"`
	}

	Config struct {
		Version    int              `yaml:"version" validate:"eq=1"`
		Document   DocumentConfig   `yaml:"document"`
		Server     ServerConfig     `yaml:"server"`
		Similarity SimilarityConfig `yaml:"similarity"`
		Logging    LoggingConfig    `yaml:"logging"`
		Reporting  ReporterConfig   `yaml:"reporting"`
	}
)

// Page geometry is specified in inches, column gutter in twips - the units the
// wordprocessing container uses natively.

func unmarshalConfig(data []byte, cfg *Config, process bool) (*Config, error) {
	// We want to use only fields we defined so we cannot use yaml.Unmarshal
	// directly here
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		return nil, fmt.Errorf("failed to decode configuration data: %w", err)
	}
	if process {
		// sanitize and validate what has been loaded
		if err := gencfg.Sanitize(cfg); err != nil {
			return nil, err
		}
		if err := gencfg.Validate(cfg); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

// LoadConfiguration reads the configuration from the file at the given path,
// superimposes its values on top of expanded configuration template to provide
// sane defaults and performs validation.
func LoadConfiguration(path string, options ...func(*gencfg.ProcessingOptions)) (*Config, error) {
	haveFile := len(path) > 0

	data, err := gencfg.Process(ConfigTmpl, options...)
	if err != nil {
		return nil, fmt.Errorf("failed to process configuration template: %w", err)
	}
	cfg, err := unmarshalConfig(data, &Config{}, !haveFile)
	if err != nil {
		return nil, fmt.Errorf("failed to process configuration template: %w", err)
	}
	if !haveFile {
		return cfg, nil
	}

	// overwrite cfg values with values from the file
	data, err = os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	cfg, err = unmarshalConfig(data, cfg, haveFile)
	if err != nil {
		return nil, fmt.Errorf("failed to process configuration file: %w", err)
	}
	return cfg, nil
}

// Prepare generates configuration file from template and returns it as a byte
// slice.
func Prepare() ([]byte, error) {
	return gencfg.Process(ConfigTmpl)
}

func Dump(cfg *Config) ([]byte, error) {
	data, err := yaml.Marshal(*cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal config to yaml: %v", err)
	}
	return data, nil
}
