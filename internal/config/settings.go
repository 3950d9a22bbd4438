package config

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"
	"time"

	"github.com/rupor-github/gencfg"
	yaml "gopkg.in/yaml.v3"

	ioutils "github.com/jrnewell/goog-webfont-dl/internal/io"
	"github.com/jrnewell/goog-webfont-dl/internal/model"
)

//go:embed config.yaml.tmpl
var SettingsTmpl []byte

type (
	UserAgents struct {
		TTF   string `yaml:"ttf" validate:"required"`
		EOT   string `yaml:"eot" validate:"required"`
		WOFF  string `yaml:"woff" validate:"required"`
		WOFF2 string `yaml:"woff2" validate:"required"`
		SVG   string `yaml:"svg" validate:"required"`
	}

	FetchConfig struct {
		Endpoint   string        `yaml:"endpoint" validate:"required,url"`
		Timeout    time.Duration `yaml:"timeout" validate:"gte=0"`
		Proxy      string        `yaml:"proxy" validate:"omitempty,url"`
		UserAgents UserAgents    `yaml:"user_agents"`
	}

	PreviewConfig struct {
		Enable bool    `yaml:"enable"`
		Size   float64 `yaml:"size" validate:"gte=8,lte=256"`
		Width  int     `yaml:"width" validate:"min=200,max=8000"`
		Text   string  `yaml:"text" validate:"required"`
	}

	DownloadConfig struct {
		MaxConcurrent int           `yaml:"max_concurrent" validate:"min=1,max=64"`
		UserAgent     string        `yaml:"user_agent" validate:"required"`
		Preview       PreviewConfig `yaml:"preview"`
	}

	// Settings holds the program settings that are not part of a single run.
	Settings struct {
		Version  int            `yaml:"version" validate:"eq=1"`
		Fetch    FetchConfig    `yaml:"fetch"`
		Download DownloadConfig `yaml:"download"`
		Logging  LoggingConfig  `yaml:"logging"`
	}
)

// For returns the User-Agent that makes the provider answer with format.
func (u UserAgents) For(format model.Format) string {
	switch format {
	case model.FormatTTF:
		return u.TTF
	case model.FormatEOT:
		return u.EOT
	case model.FormatWOFF:
		return u.WOFF
	case model.FormatWOFF2:
		return u.WOFF2
	case model.FormatSVG:
		return u.SVG
	default:
		return ""
	}
}

func unmarshalSettings(data []byte, s *Settings, process bool) (*Settings, error) {
	// Unknown keys are errors, so yaml.Unmarshal is not enough.
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(s); err != nil {
		return nil, fmt.Errorf("failed to decode settings: %w", err)
	}
	if process {
		if err := gencfg.Sanitize(s); err != nil {
			return nil, err
		}
		if err := gencfg.Validate(s); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// LoadSettings reads settings from the YAML file at path, superimposing its
// values on top of the expanded defaults template, and validates the result.
// An empty path returns the defaults.
func LoadSettings(path string, options ...func(*gencfg.ProcessingOptions)) (*Settings, error) {
	haveFile := len(path) > 0

	data, err := gencfg.Process(SettingsTmpl, options...)
	if err != nil {
		return nil, fmt.Errorf("failed to process settings template: %w", err)
	}
	s, err := unmarshalSettings(data, &Settings{}, !haveFile)
	if err != nil {
		return nil, fmt.Errorf("failed to process settings template: %w", err)
	}
	if !haveFile {
		return s, nil
	}

	data, err = os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read settings file: %w", err)
	}
	s, err = unmarshalSettings(data, s, true)
	if err != nil {
		return nil, fmt.Errorf("failed to process settings file: %w", err)
	}
	return s, nil
}

// DefaultSettings returns settings with default values.
func DefaultSettings() (*Settings, error) {
	return LoadSettings("")
}

// Prepare expands the settings template and returns it.
func Prepare() ([]byte, error) {
	return gencfg.Process(SettingsTmpl)
}

// Dump returns s as YAML.
func Dump(s *Settings) ([]byte, error) {
	data, err := yaml.Marshal(*s)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal settings to yaml: %w", err)
	}
	return data, nil
}

// Save writes s as YAML to path, creating parent directories.
func (s *Settings) Save(path string) error {
	data, err := Dump(s)
	if err != nil {
		return err
	}
	return ioutils.WriteFileAtomic(path, data)
}
