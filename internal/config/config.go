// Package config loads glyptodon settings from a YAML file and the
// environment.
//
// Precedence, lowest to highest: built-in defaults, the YAML file, GLYPTODON_*
// environment variables, and finally command-line flags, which the caller
// applies on the returned Config.
//
//	root: /srv/manuscripts
//	log_level: debug
//	ocr_language: grc+ell
//	default_centuries: [1, 20]
package config

import (
	"bytes"
	"errors"
	"io"
	"io/fs"
	"os"
	"strings"

	"github.com/charmbracelet/log"
	"gopkg.in/yaml.v3"

	errs "github.com/ironsheep/glyptodon/internal/errors"
	"github.com/ironsheep/glyptodon/internal/manuscript"
)

// Environment variables that override the file.
const (
	EnvRoot        = "GLYPTODON_ROOT"
	EnvLogLevel    = "GLYPTODON_LOG_LEVEL"
	EnvOCRLanguage = "GLYPTODON_OCR_LANGUAGE"
)

// Defaults.
const (
	DefaultRoot        = "./manuscripts"
	DefaultLogLevel    = "info"
	DefaultOCRLanguage = "eng"
)

// Config holds the runtime settings.
type Config struct {
	// Root is the directory holding one subdirectory per manuscript.
	Root string `yaml:"root"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level"`

	// OCRLanguage is the Tesseract language code used for OCR.
	OCRLanguage string `yaml:"ocr_language"`

	// DefaultCenturies is the [first, last] century range preselected when
	// a manuscript has no dating.
	DefaultCenturies [2]int `yaml:"default_centuries"`
}

// Default returns the built-in settings.
func Default() *Config {
	return &Config{
		Root:             DefaultRoot,
		LogLevel:         DefaultLogLevel,
		OCRLanguage:      DefaultOCRLanguage,
		DefaultCenturies: manuscript.DefaultCenturies,
	}
}

// Load returns the defaults overlaid with the YAML file at path (skipped when
// path is empty) and the process environment. The result is validated.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil, errs.Wrap(errs.ErrCodeNotFound, err, path, "config file does not exist")
			}
			return nil, errs.Wrap(errs.ErrCodeIO, err, path, "failed to read config file")
		}
		if err := cfg.decode(data); err != nil {
			return nil, errs.Wrap(errs.ErrCodeInvalidInput, err, path, "invalid config file")
		}
	}
	cfg.ApplyEnv(os.Getenv)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// decode overlays YAML data onto c. Unknown keys are rejected so typos do
// not go unnoticed.
func (c *Config) decode(data []byte) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil && err != io.EOF {
		return err
	}
	return nil
}

// ApplyEnv overrides settings from environment variables read with getenv.
// Empty variables are ignored.
func (c *Config) ApplyEnv(getenv func(string) string) {
	if v := strings.TrimSpace(getenv(EnvRoot)); v != "" {
		c.Root = v
	}
	if v := strings.TrimSpace(getenv(EnvLogLevel)); v != "" {
		c.LogLevel = v
	}
	if v := strings.TrimSpace(getenv(EnvOCRLanguage)); v != "" {
		c.OCRLanguage = v
	}
}

// Validate checks that every setting is usable.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Root) == "" {
		return errs.New(errs.ErrCodeInvalidInput, "root", "root directory must not be empty")
	}
	if _, err := log.ParseLevel(c.LogLevel); err != nil {
		return errs.Wrap(errs.ErrCodeInvalidInput, err, "log_level", "unknown log level %q", c.LogLevel)
	}
	if strings.TrimSpace(c.OCRLanguage) == "" {
		return errs.New(errs.ErrCodeInvalidInput, "ocr_language", "OCR language must not be empty")
	}
	first, last := c.DefaultCenturies[0], c.DefaultCenturies[1]
	if first < 1 || last < first {
		return errs.New(errs.ErrCodeInvalidInput, "default_centuries", "invalid century range [%d, %d]", first, last)
	}
	return nil
}

// Level returns the parsed log level, falling back to info.
func (c *Config) Level() log.Level {
	level, err := log.ParseLevel(c.LogLevel)
	if err != nil {
		return log.InfoLevel
	}
	return level
}
