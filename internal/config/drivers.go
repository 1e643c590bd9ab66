package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/ItsNotGoodName/wlbar/internal/core"
	"gopkg.in/yaml.v3"
)

func NewYAML(filePath string) YAML {
	return YAML{
		filePath: filePath,
	}
}

type YAML struct {
	filePath string
}

// Exists implements Driver.
func (y YAML) Exists() (bool, error) {
	return core.FileExists(y.filePath)
}

func (y YAML) Read() (Config, error) {
	return read(y.filePath, func(r io.Reader, cfg *Config) error {
		return yaml.NewDecoder(r).Decode(cfg)
	})
}

func (y YAML) Write(cfg Config) error {
	return write(y.filePath, func(w io.Writer) error {
		return yaml.NewEncoder(w).Encode(cfg)
	})
}

func NewJSON(filePath string) JSON {
	return JSON{
		filePath: filePath,
	}
}

type JSON struct {
	filePath string
}

// Exists implements Driver.
func (j JSON) Exists() (bool, error) {
	return core.FileExists(j.filePath)
}

func (j JSON) Read() (Config, error) {
	return read(j.filePath, func(r io.Reader, cfg *Config) error {
		return json.NewDecoder(r).Decode(cfg)
	})
}

func (j JSON) Write(cfg Config) error {
	return write(j.filePath, func(w io.Writer) error {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(cfg)
	})
}

func read(filePath string, decode func(r io.Reader, cfg *Config) error) (Config, error) {
	file, err := os.Open(filePath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return defaultConfig, nil
		}
		return Config{}, err
	}
	defer file.Close()

	// Missing keys keep their defaults.
	cfg := defaultConfig
	if err := decode(file, &cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("decode %s: %w", filePath, err)
	}
	return cfg, nil
}

func write(filePath string, encode func(w io.Writer) error) error {
	filePathTmp := filePath + ".tmp"
	file, err := os.OpenFile(filePathTmp, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return err
	}

	if err := encode(file); err != nil {
		file.Close()
		return err
	}
	file.Close()

	return os.Rename(filePathTmp, filePath)
}
