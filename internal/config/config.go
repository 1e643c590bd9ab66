package config

import (
	"fmt"
	"path/filepath"
	"strings"
)

type Driver interface {
	Exists() (bool, error)
	Write(config Config) error
	Read() (Config, error)
}

// NewDriver picks a driver from the file extension. Anything that is not
// JSON is treated as YAML.
func NewDriver(filePath string) Driver {
	switch strings.ToLower(filepath.Ext(filePath)) {
	case ".json":
		return NewJSON(filePath)
	default:
		return NewYAML(filePath)
	}
}

func NewStore(driver Driver) (Store, error) {
	exists, err := driver.Exists()
	if err != nil {
		return Store{}, err
	}
	if !exists {
		if err := driver.Write(defaultConfig); err != nil {
			return Store{}, fmt.Errorf("write default config: %w", err)
		}
	}

	return Store{
		driver: driver,
	}, nil
}

type Store struct {
	driver Driver
}

// GetConfig reads the current configuration with defaults applied.
func (p Store) GetConfig() (Config, error) {
	cfg, err := p.driver.Read()
	if err != nil {
		return Config{}, err
	}
	return cfg.Normalize(), nil
}

func (p Store) UpdateConfig(fn func(cfg Config) (Config, error)) error {
	cfg, err := p.driver.Read()
	if err != nil {
		return err
	}

	cfg, err = fn(cfg)
	if err != nil {
		return err
	}

	return p.driver.Write(cfg)
}
