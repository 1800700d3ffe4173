// Package config loads decoder settings for the command line tools.
package config

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	i3s "github.com/flywave/go-i3s"
)

type Config struct {
	Decoder DecoderConfig `yaml:"decoder" toml:"decoder"`
	Logging LoggingConfig `yaml:"logging" toml:"logging"`
}

type DecoderConfig struct {
	CoordinateSystem string `yaml:"coordinate_system" toml:"coordinate_system"`
	DecodeTextures   bool   `yaml:"decode_textures" toml:"decode_textures"`
	Token            string `yaml:"token" toml:"token"`
	// Geodesy is "wgs84" or "proj".
	Geodesy          string `yaml:"geodesy" toml:"geodesy"`
	TextureTimeoutMS int    `yaml:"texture_timeout_ms" toml:"texture_timeout_ms"`
}

type LoggingConfig struct {
	Level   string `yaml:"level" toml:"level"`
	LogFile string `yaml:"log_file" toml:"log_file"`
}

func Default() *Config {
	return &Config{
		Decoder: DecoderConfig{
			CoordinateSystem: i3s.METER_OFFSETS.String(),
			DecodeTextures:   true,
			Geodesy:          "wgs84",
			TextureTimeoutMS: 10000,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Load returns the defaults overlaid with the file at path, if any. The
// format follows the extension: .yaml, .yml or .toml.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("loading config from %s: %w", path, err)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, cfg)
	case ".toml":
		err = toml.Unmarshal(data, cfg)
	default:
		return nil, fmt.Errorf("loading config from %s: unknown format", path)
	}
	if err != nil {
		return nil, fmt.Errorf("loading config from %s: %w", path, err)
	}
	return cfg, nil
}

// Options converts the decoder section to parser options.
func (c *Config) Options() (i3s.Options, error) {
	opts := i3s.DefaultOptions()
	cs, err := i3s.ParseCoordinateSystem(c.Decoder.CoordinateSystem)
	if err != nil {
		return opts, err
	}
	opts.CoordinateSystem = cs
	opts.DecodeTextures = c.Decoder.DecodeTextures
	opts.Token = c.Decoder.Token

	switch strings.ToLower(c.Decoder.Geodesy) {
	case "", "wgs84":
		opts.Geodesy = i3s.WGS84
	case "proj":
		opts.Geodesy = i3s.ProjGeodesy{}
	default:
		return opts, fmt.Errorf("unknown geodesy %q", c.Decoder.Geodesy)
	}
	return opts, nil
}

// HTTPClient returns a client honoring the configured texture timeout.
func (c *Config) HTTPClient() *http.Client {
	return &http.Client{Timeout: time.Duration(c.Decoder.TextureTimeoutMS) * time.Millisecond}
}
